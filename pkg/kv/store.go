// Package kv is the key-value persistence layer for projects, reports and users.
// Values are JSON documents; keys follow the "<type>:<id>" layout so a prefix scan
// returns every record of a kind.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("kv: key not found")

// Entry is a single key/value pair returned by a prefix scan.
type Entry struct {
	Key   string
	Value []byte
}

// Store is implemented by every backend (redis, SQL, memory).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	GetByPrefix(ctx context.Context, prefix string) ([]Entry, error)
	Ping(ctx context.Context) error
	Close() error
}

// GetJSON loads key and decodes it into T.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, error) {
	var out T
	raw, err := s.Get(ctx, key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// ListJSON decodes every value under prefix. Entries that fail to decode are skipped
// and reported through skipped so one corrupt record cannot hide the rest.
func ListJSON[T any](ctx context.Context, s Store, prefix string) (items []T, skipped []string, err error) {
	entries, err := s.GetByPrefix(ctx, prefix)
	if err != nil {
		return nil, nil, err
	}
	items = make([]T, 0, len(entries))
	for _, e := range entries {
		var v T
		if err := json.Unmarshal(e.Value, &v); err != nil {
			skipped = append(skipped, e.Key)
			continue
		}
		items = append(items, v)
	}
	return items, skipped, nil
}
