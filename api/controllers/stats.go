package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/roadtrack-backend/api/responses"
	"github.com/angelmondragon/roadtrack-backend/internal/identity"
	"github.com/angelmondragon/roadtrack-backend/internal/stats"
	"github.com/angelmondragon/roadtrack-backend/pkg/logger"
)

type StatsService interface {
	Dashboard(ctx context.Context, actor identity.User) (*stats.Dashboard, error)
	ProjectsByStatus(ctx context.Context) (*stats.StatusCounts, error)
}

// StatsDashboard aggregates the caller's visible projects and every report.
func StatsDashboard(svc StatsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}
		dash, err := svc.Dashboard(r.Context(), actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"stats": dash})
	}
}

func StatsProjectsByStatus(svc StatsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := svc.ProjectsByStatus(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"data": counts})
	}
}
