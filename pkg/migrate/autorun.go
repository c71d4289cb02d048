package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/roadtrack-backend/pkg/config"
	"github.com/angelmondragon/roadtrack-backend/pkg/db"
	"github.com/angelmondragon/roadtrack-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations when running in dev with auto-migrate
// enabled, or always for sqlite where the database usually starts empty.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client == nil {
		return nil
	}
	auto := cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate
	if !auto && client.Driver() != config.KVDriverSQLite {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "db_driver": client.Driver()})
	logg.Info(ctx, "running goose migrations (auto-run)")

	if err := Run(ctx, sqlDB, client.Driver(), "", "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
