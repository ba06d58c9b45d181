package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"wholesale/internal/logger"
	"wholesale/internal/models"
)

// Record names within a client context namespace.
const (
	sessionRecord = "session"
	usersRecord   = "users"
	cartRecord    = "cart"
)

// StateRepository reads and writes the three independent records of a
// client context (session, user directory, cart) on top of a KVStore.
//
// Absent or corrupt records are replaced by empty defaults and never
// surfaced as errors. Backend failures are returned as-is.
type StateRepository struct {
	store KVStore
	log   *logger.Logger
}

// NewStateRepository creates a new StateRepository.
func NewStateRepository(store KVStore, log *logger.Logger) *StateRepository {
	return &StateRepository{
		store: store,
		log:   log.With("repository", "StateRepository"),
	}
}

func recordKey(clientID, record string) string {
	return clientID + ":" + record
}

// load decodes the record into out. It reports false when the record was
// absent or could not be decoded, leaving out untouched.
func (r *StateRepository) load(ctx context.Context, clientID, record string, out interface{}) (bool, error) {
	key := recordKey(clientID, record)
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load %s: %w", record, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		r.log.Warn("discarding corrupt record", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (r *StateRepository) save(ctx context.Context, clientID, record string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", record, err)
	}
	if err := r.store.Set(ctx, recordKey(clientID, record), raw); err != nil {
		return fmt.Errorf("failed to save %s: %w", record, err)
	}
	return nil
}

func (r *StateRepository) clear(ctx context.Context, clientID, record string) error {
	if err := r.store.Clear(ctx, recordKey(clientID, record)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", record, err)
	}
	return nil
}

// Session returns the current session, or nil when nobody is signed in.
func (r *StateRepository) Session(ctx context.Context, clientID string) (*models.Session, error) {
	var s *models.Session
	ok, err := r.load(ctx, clientID, sessionRecord, &s)
	if err != nil || !ok {
		return nil, err
	}
	if s == nil || s.Email == "" {
		return nil, nil
	}
	return s, nil
}

// SaveSession replaces the session record.
func (r *StateRepository) SaveSession(ctx context.Context, clientID string, s models.Session) error {
	return r.save(ctx, clientID, sessionRecord, s)
}

// ClearSession removes the session record.
func (r *StateRepository) ClearSession(ctx context.Context, clientID string) error {
	return r.clear(ctx, clientID, sessionRecord)
}

// Users returns the user directory. It is never nil.
func (r *StateRepository) Users(ctx context.Context, clientID string) ([]models.User, error) {
	var users []models.User
	ok, err := r.load(ctx, clientID, usersRecord, &users)
	if err != nil {
		return nil, err
	}
	if !ok || users == nil {
		return []models.User{}, nil
	}
	return users, nil
}

// SaveUsers replaces the user directory.
func (r *StateRepository) SaveUsers(ctx context.Context, clientID string, users []models.User) error {
	return r.save(ctx, clientID, usersRecord, users)
}

// Cart returns the cart items in insertion order. It is never nil.
func (r *StateRepository) Cart(ctx context.Context, clientID string) ([]models.CartItem, error) {
	var items []models.CartItem
	ok, err := r.load(ctx, clientID, cartRecord, &items)
	if err != nil {
		return nil, err
	}
	if !ok || items == nil {
		return []models.CartItem{}, nil
	}
	return items, nil
}

// SaveCart replaces the cart.
func (r *StateRepository) SaveCart(ctx context.Context, clientID string, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	return r.save(ctx, clientID, cartRecord, items)
}

// ClearCart removes the cart record.
func (r *StateRepository) ClearCart(ctx context.Context, clientID string) error {
	return r.clear(ctx, clientID, cartRecord)
}
