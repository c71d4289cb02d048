package middleware

import (
	"net/http"

	"github.com/angelmondragon/roadtrack-backend/api/responses"
	"github.com/angelmondragon/roadtrack-backend/api/validators"
	"github.com/angelmondragon/roadtrack-backend/internal/identity"
	pkgerrors "github.com/angelmondragon/roadtrack-backend/pkg/errors"
	"github.com/angelmondragon/roadtrack-backend/pkg/logger"
)

// Auth validates the bearer token through the identity provider and seeds the
// request context with the stored user.
func Auth(verifier identity.Verifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := validators.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			user, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithActor(r.Context(), *user)
			if logg != nil {
				ctx = logg.WithUserID(ctx, user.ID)
				ctx = logg.WithActorRole(ctx, string(user.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
