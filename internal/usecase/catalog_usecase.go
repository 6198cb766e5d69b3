package usecase

import (
	"context"

	"pointshop/internal/domain/entity"
	"pointshop/internal/domain/service"
)

// ProductInput defines the data required to create a product.
type ProductInput struct {
	Shop        string
	Title       string
	Description string
	Position    int
	Active      bool
	// VariantsRaw is one variant per line: "label|cost[|stock]".
	VariantsRaw string
	// Image takes precedence over ImageURL when both are given.
	Image    *service.ImageUpload
	ImageURL string
}

// ProductUpdateInput defines the editable fields of a product.
type ProductUpdateInput struct {
	Title       string
	Description string
	Position    int
	Active      bool
	Image       *service.ImageUpload
	// ImageURL replaces the image when non-nil. An empty value clears it.
	ImageURL *string
}

// VariantInput defines the editable fields of a variant.
type VariantInput struct {
	Label      string
	PointsCost int
	Stock      *int
	// Position keeps the current value when nil, or 0 for a new variant.
	Position *int
	Active   bool
}

// ShopProducts groups the back office catalog by shop.
type ShopProducts struct {
	Shop     string
	Products []*entity.Product
}

type CatalogUsecase interface {
	ListProducts(ctx context.Context) ([]*ShopProducts, error)
	CreateProduct(ctx context.Context, input ProductInput) (*entity.Product, error)
	UpdateProduct(ctx context.Context, productID int64, input ProductUpdateInput) (*entity.Product, error)
	DeleteProductImage(ctx context.Context, productID int64) (*entity.Product, error)
	// DeleteProduct removes the product, its variants and its stored image.
	DeleteProduct(ctx context.Context, productID int64) error
	AddVariant(ctx context.Context, productID int64, input VariantInput) (*entity.ProductVariant, error)
	UpdateVariant(ctx context.Context, variantID int64, input VariantInput) (*entity.ProductVariant, error)
	DeleteVariant(ctx context.Context, variantID int64) error
}
