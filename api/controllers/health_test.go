package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/roadtrack-backend/pkg/logger"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthAllUp(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	rec := httptest.NewRecorder()
	Health(map[string]Pinger{"kv": ok, "redis": ok}, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[healthResponse](t, rec)
	assert.Equal(t, "healthy", body.Status)
	assert.NotEmpty(t, body.Timestamp)
	assert.Equal(t, map[string]string{"kv": "up", "redis": "up"}, body.Checks)
}

func TestHealthDegraded(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })
	rec := httptest.NewRecorder()
	Health(map[string]Pinger{"kv": ok, "gcs": down, "skipped": nil}, logger.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody[healthResponse](t, rec)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "down", body.Checks["gcs"])
	assert.NotContains(t, body.Checks, "skipped")
}
