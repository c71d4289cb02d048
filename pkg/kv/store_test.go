package kv

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/roadtrack-backend/pkg/config"
	"github.com/angelmondragon/roadtrack-backend/pkg/db"
	"github.com/angelmondragon/roadtrack-backend/pkg/metrics"
	"github.com/angelmondragon/roadtrack-backend/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func runStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "project:missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "project:1", []byte(`{"id":"1"}`)))
	require.NoError(t, s.Set(ctx, "project:2", []byte(`{"id":"2"}`)))
	require.NoError(t, s.Set(ctx, "report:1:a", []byte(`{"id":"a"}`)))
	require.NoError(t, s.Set(ctx, "report:10:b", []byte(`{"id":"b"}`)))
	require.NoError(t, s.Set(ctx, "report_index:a", []byte(`"report:1:a"`)))

	got, err := s.Get(ctx, "project:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(got))

	require.NoError(t, s.Set(ctx, "project:1", []byte(`{"id":"1","name":"new"}`)))
	got, err = s.Get(ctx, "project:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","name":"new"}`, string(got), "last write wins")

	projects, err := s.GetByPrefix(ctx, "project:")
	require.NoError(t, err)
	assert.Equal(t, []string{"project:1", "project:2"}, keysOf(projects))

	reports, err := s.GetByPrefix(ctx, "report:1:")
	require.NoError(t, err)
	assert.Equal(t, []string{"report:1:a"}, keysOf(reports), "prefix must not bleed into report:10:")

	all, err := s.GetByPrefix(ctx, "report:")
	require.NoError(t, err)
	assert.Len(t, all, 2, "report_index entries are not reports")

	empty, err := s.GetByPrefix(ctx, "nothing:")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, s.Del(ctx, "project:2"))
	require.NoError(t, s.Del(ctx, "project:2"), "delete is idempotent")
	_, err = s.Get(ctx, "project:2")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Ping(ctx))
}

func keysOf(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	sort.Strings(out)
	return out
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	buf := []byte(`{"a":1}`)
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[2] = 'z'
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
}

func TestSQLStoreContract(t *testing.T) {
	runStoreContract(t, newSQLiteStore(t))
}

func TestSQLStoreEscapesLikeWildcards(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "report:a_b:1", []byte(`{}`)))
	require.NoError(t, s.Set(ctx, "report:axb:1", []byte(`{}`)))

	entries, err := s.GetByPrefix(ctx, "report:a_b:")
	require.NoError(t, err)
	assert.Equal(t, []string{"report:a_b:1"}, keysOf(entries))
}

func newSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&kvRow{}))
	return NewSQLStore(db.NewFromGorm(conn, config.KVDriverSQLite))
}

func TestRedisStoreContract(t *testing.T) {
	runStoreContract(t, &RedisStore{client: newFakeRedis()})
}

func TestJSONHelpers(t *testing.T) {
	type doc struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, s, "project:1", doc{ID: "1", Name: "Route 7"}))
	require.NoError(t, s.Set(ctx, "project:2", []byte("not json")))

	one, err := GetJSON[doc](ctx, s, "project:1")
	require.NoError(t, err)
	assert.Equal(t, "Route 7", one.Name)

	_, err = GetJSON[doc](ctx, s, "project:2")
	require.Error(t, err)

	items, skipped, err := ListJSON[doc](ctx, s, "project:")
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, []string{"project:2"}, skipped)
}

func TestInstrumentedRecordsFailuresButNotMisses(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewInstrumented(failingStore{Store: NewMemoryStore()}, metrics.NewKVMetrics(reg, "memory"))
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.Error(t, s.Set(ctx, "k", []byte("v")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var failures float64
	for _, mf := range mfs {
		if mf.GetName() != "kv_operation_failures_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "op" && l.GetValue() == "get" {
					t.Fatalf("not found must not count as failure")
				}
			}
			failures += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(1), failures)
}

func TestCloseAllCombinesErrors(t *testing.T) {
	err := CloseAll(NewMemoryStore(), failingStore{Store: NewMemoryStore()}, nil, failingStore{Store: NewMemoryStore()})
	require.Error(t, err)
	assert.Equal(t, 2, strings.Count(err.Error(), "close failed"))
}

type failingStore struct {
	Store
}

func (failingStore) Set(context.Context, string, []byte) error { return errors.New("write failed") }
func (failingStore) Close() error                              { return errors.New("close failed") }

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeRedis) MGet(_ context.Context, keys ...string) ([]*string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*string, len(keys))
	for i, k := range keys {
		if v, ok := f.data[k]; ok {
			v := v
			out[i] = &v
		}
	}
	return out, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.(string)
	return nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeRedis) ScanPrefix(_ context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (f *fakeRedis) KVKey(key string) string     { return "rt:kv:" + key }
func (f *fakeRedis) KVKeyTrim(key string) string { return strings.TrimPrefix(key, "rt:kv:") }
func (f *fakeRedis) Ping(context.Context) error  { return nil }
