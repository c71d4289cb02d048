package projects

import (
	"context"
	"errors"

	"github.com/angelmondragon/roadtrack-backend/pkg/kv"
)

const keyPrefix = "project:"

// ErrNotFound is returned when no project is stored under the id.
var ErrNotFound = errors.New("project not found")

// Repository stores projects under project:<id>.
type Repository struct {
	store kv.Store
}

func NewRepository(store kv.Store) *Repository {
	return &Repository{store: store}
}

func Key(id string) string { return keyPrefix + id }

func (r *Repository) List(ctx context.Context) ([]Project, []string, error) {
	return kv.ListJSON[Project](ctx, r.store, keyPrefix)
}

func (r *Repository) Get(ctx context.Context, id string) (*Project, error) {
	p, err := kv.GetJSON[Project](ctx, r.store, Key(id))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Save(ctx context.Context, p *Project) error {
	return kv.SetJSON(ctx, r.store, Key(p.ID), p)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.store.Del(ctx, Key(id))
}
