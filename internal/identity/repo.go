package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/roadtrack-backend/pkg/kv"
)

const (
	userPrefix      = "user:"
	userEmailPrefix = "user_email:"
)

// ErrUserNotFound is returned when no record matches.
var ErrUserNotFound = errors.New("user not found")

// Repository persists users in the KV store: the record under user:<id> and a
// lookup entry user_email:<email> holding the id.
type Repository struct {
	store kv.Store
}

func NewRepository(store kv.Store) *Repository {
	return &Repository{store: store}
}

func userKey(id string) string { return userPrefix + id }

func emailKey(email string) string { return userEmailPrefix + normalizeEmail(email) }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *Repository) FindByID(ctx context.Context, id string) (*record, error) {
	rec, err := kv.GetJSON[record](ctx, r.store, userKey(id))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*record, error) {
	id, err := kv.GetJSON[string](ctx, r.store, emailKey(email))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Save writes the record first so a crash never leaves an email entry pointing
// at nothing.
func (r *Repository) Save(ctx context.Context, rec *record) error {
	if err := kv.SetJSON(ctx, r.store, userKey(rec.ID), rec); err != nil {
		return err
	}
	return kv.SetJSON(ctx, r.store, emailKey(rec.Email), rec.ID)
}
