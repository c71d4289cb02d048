package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/roadtrack-backend/api/middleware"
	"github.com/angelmondragon/roadtrack-backend/api/responses"
	"github.com/angelmondragon/roadtrack-backend/internal/identity"
	"github.com/angelmondragon/roadtrack-backend/pkg/enums"
)

var (
	generalManager = identity.User{ID: "gm-1", Name: "Grace", Role: enums.RoleGeneralManager}
	projectManager = identity.User{ID: "pm-1", Name: "Pablo", Role: enums.RoleProjectManager}
	engineer       = identity.User{ID: "en-1", Name: "Elena", Role: enums.RoleEngineer}
	observer       = identity.User{ID: "ob-1", Name: "Omar", Role: enums.RoleObserver}
)

func jsonRequest(method, target, body string, actor *identity.User) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), *actor))
	}
	return req
}

func withURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[responses.ErrorBody](t, rec).Code
}
