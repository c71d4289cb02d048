package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/roadtrack-backend/api/controllers"
	"github.com/angelmondragon/roadtrack-backend/api/routes"
	"github.com/angelmondragon/roadtrack-backend/internal/exports"
	"github.com/angelmondragon/roadtrack-backend/internal/identity"
	"github.com/angelmondragon/roadtrack-backend/internal/projects"
	"github.com/angelmondragon/roadtrack-backend/internal/reports"
	"github.com/angelmondragon/roadtrack-backend/internal/stats"
	"github.com/angelmondragon/roadtrack-backend/internal/uploads"
	"github.com/angelmondragon/roadtrack-backend/pkg/auth/session"
	"github.com/angelmondragon/roadtrack-backend/pkg/config"
	"github.com/angelmondragon/roadtrack-backend/pkg/db"
	"github.com/angelmondragon/roadtrack-backend/pkg/instance"
	"github.com/angelmondragon/roadtrack-backend/pkg/kv"
	"github.com/angelmondragon/roadtrack-backend/pkg/logger"
	"github.com/angelmondragon/roadtrack-backend/pkg/metrics"
	"github.com/angelmondragon/roadtrack-backend/pkg/migrate"
	"github.com/angelmondragon/roadtrack-backend/pkg/redis"
	"github.com/angelmondragon/roadtrack-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "roadtrack-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "roadtrack-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	redisClient, err := redis.New(ctx, cfg.Redis, cfg.KV.Namespace, logg)
	if err != nil {
		return fmt.Errorf("bootstrap redis: %w", err)
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	store, dbClient, err := openStore(ctx, cfg, logg, redisClient)
	if err != nil {
		return err
	}
	store = kv.NewInstrumented(store, metrics.NewKVMetrics(reg, cfg.KV.Driver))
	defer func() {
		err = multierr.Append(err, kv.CloseAll(store))
	}()

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	if err != nil {
		return fmt.Errorf("bootstrap gcs: %w", err)
	}
	defer func() {
		err = multierr.Append(err, gcsClient.Close())
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return fmt.Errorf("create session manager: %w", err)
	}

	identitySvc, err := identity.NewService(identity.ServiceParams{
		Store:          store,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return fmt.Errorf("create identity service: %w", err)
	}
	projectSvc, err := projects.NewService(store, logg)
	if err != nil {
		return fmt.Errorf("create project service: %w", err)
	}
	reportSvc, err := reports.NewService(store, logg)
	if err != nil {
		return fmt.Errorf("create report service: %w", err)
	}
	statsSvc, err := stats.NewService(projectSvc, reportSvc)
	if err != nil {
		return fmt.Errorf("create stats service: %w", err)
	}
	exportSvc, err := exports.NewService(projectSvc, statsSvc)
	if err != nil {
		return fmt.Errorf("create export service: %w", err)
	}
	uploadSvc, err := uploads.NewService(gcsClient, uploads.Config{
		DefaultFolder:   cfg.Upload.DefaultFolder,
		UploadURLExpiry: cfg.GCS.UploadURLExpiry,
		FileURLExpiry:   cfg.GCS.FileURLExpiry,
	}, logg)
	if err != nil {
		return fmt.Errorf("create upload service: %w", err)
	}

	checks := map[string]controllers.Pinger{
		"kv":    store,
		"redis": redisClient,
		"gcs":   gcsClient,
	}
	if dbClient != nil {
		checks["db"] = dbClient
	}

	handler := routes.NewRouter(routes.Dependencies{
		Config:       cfg,
		Logger:       logg,
		Identity:     identitySvc,
		Projects:     projectSvc,
		Reports:      reportSvc,
		Stats:        statsSvc,
		Uploads:      uploadSvc,
		Exports:      exportSvc,
		RateLimiter:  redisClient,
		Idempotency:  redisClient,
		HealthChecks: checks,
		Metrics:      metrics.NewHTTPMetrics(reg),
		Gatherer:     reg,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"instance":  instance.GetID(),
		"kv_driver": cfg.KV.Driver,
		"prefix":    cfg.App.Prefix(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// openStore returns the KV backend named by ROADTRACK_KV_DRIVER. The db client is
// non-nil only for SQL drivers and is closed through the store.
func openStore(ctx context.Context, cfg *config.Config, logg *logger.Logger, redisClient *redis.Client) (kv.Store, *db.Client, error) {
	switch cfg.KV.Driver {
	case config.KVDriverRedis:
		return kv.NewRedisStore(redisClient), nil, nil
	case config.KVDriverMemory:
		logg.Warn(ctx, "using in-memory kv store; data is lost on restart")
		return kv.NewMemoryStore(), nil, nil
	case config.KVDriverPostgres, config.KVDriverSQLite:
		dbClient, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap database: %w", err)
		}
		if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
			_ = dbClient.Close()
			return nil, nil, fmt.Errorf("run dev migrations: %w", err)
		}
		return kv.NewSQLStore(dbClient), dbClient, nil
	}
	return nil, nil, fmt.Errorf("unsupported kv driver %q", cfg.KV.Driver)
}
