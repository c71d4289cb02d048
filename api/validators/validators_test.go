package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/roadtrack-backend/pkg/errors"
)

type sampleBody struct {
	Name   string `json:"name" validate:"required"`
	Status string `json:"status" validate:"omitempty,oneof=planning active"`
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"x","extra":1}`))
	var body sampleBody
	if err := DecodeJSONBody(r, &body); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyRunsValidation(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"status":"paused"}`))
	var body sampleBody
	err := DecodeJSONBody(r, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if details["name"] != "is required" {
		t.Fatalf("unexpected name detail %q", details["name"])
	}
	if details["status"] != "must be one of planning, active" {
		t.Fatalf("unexpected status detail %q", details["status"])
	}
}

func TestDecodeJSONBodyOK(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Road","status":"active"}`))
	var body sampleBody
	if err := DecodeJSONBody(r, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Name != "Road" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]bool{
		"Bearer abc":  true,
		"bearer abc ": true,
		"Bearer ":     false,
		"Basic abc":   false,
		"":            false,
	}
	for header, ok := range cases {
		token, err := BearerToken(header)
		if ok && (err != nil || token != "abc") {
			t.Errorf("BearerToken(%q) = %q, %v", header, token, err)
		}
		if !ok && err == nil {
			t.Errorf("BearerToken(%q) expected error", header)
		}
	}
}

func TestQueryString(t *testing.T) {
	r := httptest.NewRequest("GET", "/?type=+financial+", nil)
	v, err := QueryString(r, "type", 20)
	if err != nil || v != "financial" {
		t.Fatalf("unexpected %q %v", v, err)
	}
	r = httptest.NewRequest("GET", "/?period="+strings.Repeat("x", 50), nil)
	if _, err := QueryString(r, "period", 20); err == nil {
		t.Fatal("expected length error")
	}
}
