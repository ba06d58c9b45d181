package services

import (
	"context"
	"fmt"
	"strings"

	"wholesale/internal/logger"
	"wholesale/internal/models"
	"wholesale/internal/repositories"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and logout within a client context.
type AuthService struct {
	state      *repositories.StateRepository
	validate   *validator.Validate
	bcryptCost int
	log        *logger.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(state *repositories.StateRepository, bcryptCost int, log *logger.Logger) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		state:      state,
		validate:   validator.New(),
		bcryptCost: bcryptCost,
		log:        log.With("service", "AuthService"),
	}
}

// Register adds a user to the directory and signs them in.
// The returned user carries the stored password hash.
func (s *AuthService) Register(ctx context.Context, clientID string, user models.User) (*models.User, error) {
	if err := s.validate.Struct(user); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(verrs))
			for _, e := range verrs {
				fields = append(fields, strings.ToLower(e.Field()))
			}
			return nil, fmt.Errorf("%w: missing %s", ErrMissingFields, strings.Join(fields, ", "))
		}
		return nil, fmt.Errorf("%w: %v", ErrMissingFields, err)
	}

	users, err := s.state.Users(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == user.Email {
			return nil, fmt.Errorf("%w: '%s'", ErrEmailTaken, user.Email)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)

	users = append(users, user)
	if err := s.state.SaveUsers(ctx, clientID, users); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	if err := s.state.SaveSession(ctx, clientID, models.Session{Email: user.Email}); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	s.log.Info("user registered", "client_id", clientID, "email", user.Email)
	return &user, nil
}

// Login starts a session when email and password match a registered user.
// The existing session is left untouched on failure.
func (s *AuthService) Login(ctx context.Context, clientID, email, password string) (*models.Session, error) {
	users, err := s.state.Users(ctx, clientID)
	if err != nil {
		return nil, err
	}

	var found *models.User
	for i := range users {
		if users[i].Email == email {
			found = &users[i]
			break
		}
	}
	if found == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session := models.Session{Email: found.Email}
	if err := s.state.SaveSession(ctx, clientID, session); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	s.log.Info("user logged in", "client_id", clientID, "email", email)
	return &session, nil
}

// Logout ends the session and abandons the cart.
func (s *AuthService) Logout(ctx context.Context, clientID string) error {
	if err := s.state.ClearSession(ctx, clientID); err != nil {
		return err
	}
	if err := s.state.ClearCart(ctx, clientID); err != nil {
		return err
	}
	s.log.Info("user logged out", "client_id", clientID)
	return nil
}

// CurrentSession returns the active session, or nil when signed out.
func (s *AuthService) CurrentSession(ctx context.Context, clientID string) (*models.Session, error) {
	return s.state.Session(ctx, clientID)
}

// IsLoggedIn reports whether a session exists.
func (s *AuthService) IsLoggedIn(ctx context.Context, clientID string) (bool, error) {
	session, err := s.state.Session(ctx, clientID)
	if err != nil {
		return false, err
	}
	return session != nil, nil
}
