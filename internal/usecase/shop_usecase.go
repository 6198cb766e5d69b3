package usecase

import (
	"context"
	"time"

	"pointshop/internal/domain/entity"
)

// ShopStatus is what a caller sees about one shop on the landing page.
type ShopStatus struct {
	Shop      string
	Label     string
	HasAccess bool
	IsOpen    bool
	OpensAt   *time.Time
	ClosesAt  *time.Time
}

// ShopUsecase evaluates access and opening hours and serves the shopper catalog.
type ShopUsecase interface {
	// HasAccess is true iff an allow-list entry exists for the exact pair.
	HasAccess(ctx context.Context, handle, shop string) (bool, error)
	// IsShopOpen compares the shop window with the current time. Missing
	// settings mean closed.
	IsShopOpen(ctx context.Context, shop string) (bool, error)
	ShopStatuses(ctx context.Context, identity entity.Identity) ([]*ShopStatus, error)
	// ShopCatalog returns active products with their active variants.
	ShopCatalog(ctx context.Context, identity entity.Identity, shop string) ([]*entity.Product, error)
	ProductDetail(ctx context.Context, identity entity.Identity, shop string, productID int64) (*entity.Product, error)
}
