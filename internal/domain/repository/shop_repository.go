package repository

import (
	"context"
	"errors"

	"pointshop/internal/domain/entity"
)

var (
	ErrShopSettingsNotFound   = errors.New("shop settings not found")
	ErrAllowlistEntryNotFound = errors.New("allowlist entry not found")
)

type ShopSettingsRepository interface {
	FindByShop(ctx context.Context, shop string) (*entity.ShopSettings, error)

	List(ctx context.Context) ([]*entity.ShopSettings, error)

	// Save upserts the window of settings.Shop.
	Save(ctx context.Context, settings *entity.ShopSettings) error

	// EnsureShops inserts an empty settings row for every shop that lacks one.
	EnsureShops(ctx context.Context, shops []string) error
}

type AllowlistRepository interface {
	Exists(ctx context.Context, handle, shop string) (bool, error)

	Create(ctx context.Context, entry *entity.AllowlistEntry) error

	// List returns every entry in insertion order.
	List(ctx context.Context) ([]*entity.AllowlistEntry, error)

	ListHandles(ctx context.Context, shop string) ([]string, error)

	Delete(ctx context.Context, id int64) error

	DeleteByShop(ctx context.Context, shop string) (int64, error)
}
