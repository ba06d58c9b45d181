package services

import (
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// ContextService issues and validates client context tokens. A client
// context is the server-side equivalent of one browser's local storage:
// every record the storefront keeps is namespaced by its ID.
type ContextService struct {
	secret []byte
	ttl    time.Duration
}

// NewContextService creates a new ContextService.
func NewContextService(secret string, ttl time.Duration) *ContextService {
	return &ContextService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue creates a fresh client context and returns its signed token.
func (s *ContextService) Issue() (token string, clientID string, err error) {
	clientID = uuid.New().String()
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"client_id": clientID,
		"iat":       now.Unix(),
		"exp":       now.Add(s.ttl).Unix(),
	})
	token, err = t.SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign context token: %w", err)
	}
	return token, clientID, nil
}

// roleAdmin marks catalog administrator tokens. Client context tokens carry
// no role claim.
const roleAdmin = "admin"

// Validate parses a token and returns the client context ID it carries.
func (s *ContextService) Validate(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}
	clientID, _ := claims["client_id"].(string)
	if _, err := uuid.Parse(clientID); err != nil {
		return "", fmt.Errorf("%w: bad client_id", ErrInvalidToken)
	}
	return clientID, nil
}

// IssueAdmin signs a catalog administrator token. It carries no client
// context, so it cannot be used on the storefront routes.
func (s *ContextService) IssueAdmin() (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": roleAdmin,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	})
	token, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}
	return token, nil
}

// ValidateAdmin returns ErrInvalidToken for tokens that do not verify and
// ErrForbidden for valid tokens without the admin role.
func (s *ContextService) ValidateAdmin(tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return err
	}
	if role, _ := claims["role"].(string); role != roleAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *ContextService) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
