package migrate

import (
	"context"
	"fmt"

	"github.com/nmtruong/shophub-backend/pkg/config"
	"github.com/nmtruong/shophub-backend/pkg/db"
	"github.com/nmtruong/shophub-backend/pkg/db/models"
	"github.com/nmtruong/shophub-backend/pkg/logger"
)

// MaybeRunDev executes migrations automatically when the app is running in dev mode and
// the feature flag is enabled. SQLite deployments skip goose and let gorm build the
// schema, since the migration SQL targets Postgres.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	if cfg.FeatureFlags.UseSQLite {
		logg.Info(ctx, "auto-migrating schema via gorm (sqlite)")
		return AutoMigrateSQLite(client)
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	meta := map[string]any{"env": cfg.App.Env, "dir": DefaultDir}
	ctx = logg.WithFields(ctx, meta)
	logg.Info(ctx, "running Goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "Goose migrations completed")
	return nil
}

// AutoMigrateSQLite builds the full schema through gorm for embedded deployments.
func AutoMigrateSQLite(client *db.Client) error {
	return client.DB().AutoMigrate(
		&models.User{},
		&models.UserAddress{},
		&models.Category{},
		&models.Product{},
		&models.CartLine{},
		&models.OrderGroup{},
		&models.Order{},
		&models.Review{},
		&models.Chat{},
		&models.ChatMessage{},
		&models.WishlistItem{},
	)
}
