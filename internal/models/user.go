package models

// User is an entry in the user directory of a client context.
// Users are created by registration and never mutated or deleted.
type User struct {
	Email    string `json:"email" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Company  string `json:"company" validate:"required"`
	Password string `json:"password" validate:"required"` // bcrypt hash once stored
}

// Session records which user is signed in within a client context.
type Session struct {
	Email string `json:"email"`
}
