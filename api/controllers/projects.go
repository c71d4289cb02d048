package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/roadtrack-backend/api/middleware"
	"github.com/angelmondragon/roadtrack-backend/api/responses"
	"github.com/angelmondragon/roadtrack-backend/api/validators"
	"github.com/angelmondragon/roadtrack-backend/internal/identity"
	"github.com/angelmondragon/roadtrack-backend/internal/projects"
	pkgerrors "github.com/angelmondragon/roadtrack-backend/pkg/errors"
	"github.com/angelmondragon/roadtrack-backend/pkg/logger"
)

// ProjectList returns the projects visible to the caller's role.
func ProjectList(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		items, err := svc.List(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"projects": items})
	}
}

// ProjectGet fetches a single project. Visibility is not filtered here.
func ProjectGet(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathParam(w, r, logg, "projectId", "project id")
		if !ok {
			return
		}
		ctx := logg.WithProjectID(r.Context(), id)
		project, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"project": project})
	}
}

func ProjectCreate(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		var body projects.CreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		project, err := svc.Create(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"project": project})
	}
}

// ProjectUpdate merges the supplied fields; arrays are replaced, not appended.
func ProjectUpdate(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathParam(w, r, logg, "projectId", "project id")
		if !ok {
			return
		}
		ctx := logg.WithProjectID(r.Context(), id)

		var body projects.UpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		project, err := svc.Update(ctx, actor, id, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"project": project})
	}
}

func ProjectDelete(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathParam(w, r, logg, "projectId", "project id")
		if !ok {
			return
		}
		ctx := logg.WithProjectID(r.Context(), id)

		if err := svc.Delete(ctx, actor, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"success": true})
	}
}

func requireActor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (identity.User, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return identity.User{}, false
	}
	return actor, true
}

func pathParam(w http.ResponseWriter, r *http.Request, logg *logger.Logger, key, label string) (string, bool) {
	value := strings.TrimSpace(chi.URLParam(r, key))
	if value == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, label+" is required"))
		return "", false
	}
	return value, true
}
