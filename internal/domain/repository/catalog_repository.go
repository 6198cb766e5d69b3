package repository

import (
	"context"
	"errors"

	"pointshop/internal/domain/entity"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("variant not found")
)

// ProductFilter narrows product listings. Empty Shop means every shop.
type ProductFilter struct {
	Shop       string
	ActiveOnly bool
}

type CatalogRepository interface {
	// CreateProduct inserts product with its Variants and assigns IDs.
	CreateProduct(ctx context.Context, product *entity.Product) error

	// UpdateProduct writes the product's own fields. Variants are untouched.
	UpdateProduct(ctx context.Context, product *entity.Product) error

	// FindProduct loads a product with all of its variants.
	FindProduct(ctx context.Context, id int64) (*entity.Product, error)

	// ListProducts orders by position then creation time, variants likewise.
	ListProducts(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)

	// DeleteProduct removes the product and every variant it owns.
	DeleteProduct(ctx context.Context, id int64) error

	// FindVariant loads a variant together with its product.
	FindVariant(ctx context.Context, id int64) (*entity.ProductVariant, error)

	CreateVariant(ctx context.Context, variant *entity.ProductVariant) error

	UpdateVariant(ctx context.Context, variant *entity.ProductVariant) error

	DeleteVariant(ctx context.Context, id int64) error

	// DecrementStock takes one unit only while stock is above zero.
	// ok is false when no row qualified. Unlimited variants never qualify.
	DecrementStock(ctx context.Context, variantID int64) (ok bool, err error)
}
