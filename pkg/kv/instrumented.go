package kv

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/roadtrack-backend/pkg/metrics"
	"go.uber.org/multierr"
)

// Instrumented wraps a Store and records operation metrics. A missing key is not
// counted as a failure.
type Instrumented struct {
	next    Store
	metrics *metrics.KVMetrics
}

func NewInstrumented(next Store, m *metrics.KVMetrics) *Instrumented {
	return &Instrumented{next: next, metrics: m}
}

func (i *Instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	v, err := i.next.Get(ctx, key)
	i.metrics.Observe("get", start, ignoreNotFound(err))
	return v, err
}

func (i *Instrumented) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := i.next.Set(ctx, key, value)
	i.metrics.Observe("set", start, err)
	return err
}

func (i *Instrumented) Del(ctx context.Context, key string) error {
	start := time.Now()
	err := i.next.Del(ctx, key)
	i.metrics.Observe("del", start, err)
	return err
}

func (i *Instrumented) GetByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	start := time.Now()
	entries, err := i.next.GetByPrefix(ctx, prefix)
	i.metrics.Observe("get_by_prefix", start, err)
	return entries, err
}

func (i *Instrumented) Ping(ctx context.Context) error {
	return i.next.Ping(ctx)
}

func (i *Instrumented) Close() error {
	return i.next.Close()
}

// CloseAll closes every store and combines the failures.
func CloseAll(stores ...Store) error {
	var err error
	for _, s := range stores {
		if s == nil {
			continue
		}
		err = multierr.Append(err, s.Close())
	}
	return err
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
