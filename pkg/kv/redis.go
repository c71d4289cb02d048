package kv

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/angelmondragon/roadtrack-backend/pkg/redis"
)

const mgetBatch = 500

type redisBackend interface {
	Get(ctx context.Context, key string) (string, error)
	MGet(ctx context.Context, keys ...string) ([]*string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	ScanPrefix(ctx context.Context, prefix string) ([]string, error)
	KVKey(key string) string
	KVKeyTrim(key string) string
	Ping(ctx context.Context) error
}

// RedisStore stores each value as a plain string key under the "<ns>:kv:" namespace.
type RedisStore struct {
	client redisBackend
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.client.KVKey(key))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(v), nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.client.KVKey(key), string(value), 0)
}

func (s *RedisStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.client.KVKey(key))
}

// GetByPrefix scans matching keys then fetches values in MGET batches. Keys deleted
// between the scan and the fetch are dropped.
func (s *RedisStore) GetByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	keys, err := s.client.ScanPrefix(ctx, s.client.KVKey(prefix))
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	out := make([]Entry, 0, len(keys))
	for start := 0; start < len(keys); start += mgetBatch {
		end := start + mgetBatch
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]
		vals, err := s.client.MGet(ctx, batch...)
		if err != nil {
			return nil, err
		}
		for i, v := range vals {
			if v == nil {
				continue
			}
			out = append(out, Entry{Key: s.client.KVKeyTrim(batch[i]), Value: []byte(*v)})
		}
	}
	return out, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close is a no-op: the redis client is shared with sessions and rate limiting
// and is closed by its owner.
func (s *RedisStore) Close() error {
	return nil
}
