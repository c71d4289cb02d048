package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/roadtrack-backend/api/controllers"
	"github.com/angelmondragon/roadtrack-backend/api/middleware"
	"github.com/angelmondragon/roadtrack-backend/internal/identity"
	"github.com/angelmondragon/roadtrack-backend/internal/policy"
	"github.com/angelmondragon/roadtrack-backend/internal/projects"
	"github.com/angelmondragon/roadtrack-backend/internal/reports"
	"github.com/angelmondragon/roadtrack-backend/pkg/config"
	"github.com/angelmondragon/roadtrack-backend/pkg/logger"
	"github.com/angelmondragon/roadtrack-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/roadtrack-backend/pkg/redis"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Dependencies carries every client and service the HTTP layer needs. Built once
// in cmd/api.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	Identity identity.Service
	Projects projects.Service
	Reports  reports.Service
	Stats    controllers.StatsService
	Uploads  controllers.UploadService
	Exports  controllers.ExportService

	RateLimiter rateLimiter
	Idempotency pkgredis.IdempotencyStore

	// HealthChecks are pinged by /health, keyed by dependency name.
	HealthChecks map[string]controllers.Pinger

	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(deps.Metrics),
	)

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)

	idempotent := middleware.Idempotency(deps.Idempotency, middleware.DefaultIdempotencyTTL, logg)

	api := func(r chi.Router) {
		r.Get("/health", controllers.Health(deps.HealthChecks, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(signupPolicy, deps.RateLimiter, logg)).Post("/signup", controllers.AuthSignup(deps.Identity, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, deps.RateLimiter, logg)).Post("/login", controllers.AuthLogin(deps.Identity, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Identity, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Identity, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(deps.Identity, logg))
				r.Get("/profile", controllers.AuthProfile(logg))
				r.Put("/profile", controllers.AuthUpdateProfile(deps.Identity, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Identity, logg))

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", controllers.ProjectList(deps.Projects, logg))
				r.With(middleware.Authorize(policy.ActionCreateProject, logg), idempotent).Post("/", controllers.ProjectCreate(deps.Projects, logg))

				r.Route("/{projectId}", func(r chi.Router) {
					r.Get("/", controllers.ProjectGet(deps.Projects, logg))
					r.With(middleware.Authorize(policy.ActionUpdateProject, logg)).Put("/", controllers.ProjectUpdate(deps.Projects, logg))
					r.With(middleware.Authorize(policy.ActionDeleteProject, logg)).Delete("/", controllers.ProjectDelete(deps.Projects, logg))

					r.Get("/reports", controllers.ReportList(deps.Reports, logg))
					r.With(middleware.Authorize(policy.ActionCreateReport, logg), idempotent).Post("/reports", controllers.ReportCreate(deps.Reports, logg))
				})
			})

			r.With(middleware.Authorize(policy.ActionSetReportStatus, logg)).Put("/reports/{reportId}/status", controllers.ReportSetStatus(deps.Reports, logg))

			r.Post("/upload", controllers.Upload(deps.Uploads, cfg.Upload.MaxMemoryBytes(), logg))
			r.Get("/files/*", controllers.FileURL(deps.Uploads, logg))

			r.Get("/stats", controllers.StatsDashboard(deps.Stats, logg))
			r.Get("/stats/projects-by-status", controllers.StatsProjectsByStatus(deps.Stats, logg))

			r.Get("/exports/projects.csv", controllers.ExportProjectsCSV(deps.Exports, logg))
		})
	}

	if prefix := cfg.App.Prefix(); prefix != "" {
		r.Route(prefix, api)
	} else {
		r.Group(api)
	}

	return r
}
