package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows every origin; clients authenticate with bearer tokens, not cookies.
func CORS() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Requested-With", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           600,
	}).Handler
}
