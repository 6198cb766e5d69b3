package postgres

import (
	"context"

	"pointshop/internal/errors"
	"pointshop/internal/infra/persistence/model"

	"gorm.io/gorm"
)

// Migrate creates or updates every table, then seeds a settings row for each
// shop. Safe to run on every start.
func Migrate(ctx context.Context, db *gorm.DB, shops []string) error {
	if err := db.WithContext(ctx).AutoMigrate(model.AllModels()...); err != nil {
		return errors.Wrap(err, "failed to migrate schema")
	}

	if err := NewShopSettingsRepository(db).EnsureShops(ctx, shops); err != nil {
		return errors.Wrap(err, "failed to seed shop settings")
	}

	return nil
}
