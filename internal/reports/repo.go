package reports

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/angelmondragon/roadtrack-backend/pkg/kv"
)

const (
	keyPrefix   = "report:"
	indexPrefix = "report_index:"
)

var ErrNotFound = errors.New("report not found")

// Repository stores reports under report:<projectId>:<id> plus an id index
// report_index:<id> pointing at that key.
type Repository struct {
	store kv.Store
}

func NewRepository(store kv.Store) *Repository {
	return &Repository{store: store}
}

func Key(projectID, id string) string { return keyPrefix + projectID + ":" + id }

func indexKey(id string) string { return indexPrefix + id }

func (r *Repository) ListByProject(ctx context.Context, projectID string) ([]Report, []string, error) {
	return kv.ListJSON[Report](ctx, r.store, keyPrefix+projectID+":")
}

func (r *Repository) ListAll(ctx context.Context) ([]Report, []string, error) {
	return kv.ListJSON[Report](ctx, r.store, keyPrefix)
}

// Create writes the report and its index entry.
func (r *Repository) Create(ctx context.Context, rep *Report) error {
	key := Key(rep.ProjectID, rep.ID)
	if err := kv.SetJSON(ctx, r.store, key, rep); err != nil {
		return err
	}
	return kv.SetJSON(ctx, r.store, indexKey(rep.ID), key)
}

// SaveAt overwrites the report stored at key.
func (r *Repository) SaveAt(ctx context.Context, key string, rep *Report) error {
	return kv.SetJSON(ctx, r.store, key, rep)
}

// Find resolves a report by id alone. The index answers directly; reports
// written without an index entry are found by scanning every report: key, and
// the index is backfilled.
func (r *Repository) Find(ctx context.Context, id string) (string, *Report, error) {
	key, err := kv.GetJSON[string](ctx, r.store, indexKey(id))
	switch {
	case err == nil:
		rep, getErr := kv.GetJSON[Report](ctx, r.store, key)
		if getErr == nil && rep.ID == id {
			return key, &rep, nil
		}
		if getErr != nil && !errors.Is(getErr, kv.ErrNotFound) {
			return "", nil, getErr
		}
	case !errors.Is(err, kv.ErrNotFound):
		return "", nil, err
	}

	entries, err := r.store.GetByPrefix(ctx, keyPrefix)
	if err != nil {
		return "", nil, err
	}
	for _, e := range entries {
		var rep Report
		if err := json.Unmarshal(e.Value, &rep); err != nil || rep.ID != id {
			continue
		}
		if err := kv.SetJSON(ctx, r.store, indexKey(id), e.Key); err != nil {
			return "", nil, err
		}
		return e.Key, &rep, nil
	}
	return "", nil, ErrNotFound
}
