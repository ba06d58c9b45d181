package services

import "errors"

// Rejections surfaced to callers. Handlers map them to notices.
var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotLoggedIn        = errors.New("login required")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrCheckoutBlocked    = errors.New("checkout blocked")
	ErrNotConfirmed       = errors.New("order not confirmed")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("admin role required")
)
