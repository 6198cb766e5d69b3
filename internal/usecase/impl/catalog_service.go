package impl

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"pointshop/config"
	deliverycontext "pointshop/internal/delivery/context"
	"pointshop/internal/domain/entity"
	domainerrors "pointshop/internal/domain/errors"
	"pointshop/internal/domain/repository"
	"pointshop/internal/domain/service"
	"pointshop/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type catalogService struct {
	txManager   repository.TransactionManager
	catalogRepo repository.CatalogRepository
	images      service.ImageStorage
	shops       []string
	logger      *slog.Logger
}

// CatalogServiceParams holds dependencies for CatalogService, injected by Fx.
type CatalogServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	CatalogRepo repository.CatalogRepository
	Images      service.ImageStorage
	Config      *config.Config
	Logger      *slog.Logger
}

func NewCatalogService(params CatalogServiceParams) usecase.CatalogUsecase {
	return &catalogService{
		txManager:   params.TxManager,
		catalogRepo: params.CatalogRepo,
		images:      params.Images,
		shops:       params.Config.App.Shops,
		logger:      params.Logger,
	}
}

func (srv *catalogService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *catalogService) ListProducts(ctx context.Context) ([]*usecase.ShopProducts, error) {
	products, err := srv.catalogRepo.ListProducts(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	groups := make([]*usecase.ShopProducts, len(srv.shops))
	byShop := make(map[string]*usecase.ShopProducts, len(srv.shops))
	for i, shop := range srv.shops {
		groups[i] = &usecase.ShopProducts{Shop: shop, Products: []*entity.Product{}}
		byShop[shop] = groups[i]
	}
	for _, product := range products {
		// Products of a shop removed from app.shops stay hidden until it returns.
		if group, ok := byShop[product.Shop]; ok {
			group.Products = append(group.Products, product)
		}
	}

	return groups, nil
}

func (srv *catalogService) CreateProduct(ctx context.Context, input usecase.ProductInput) (*entity.Product, error) {
	if !slices.Contains(srv.shops, input.Shop) {
		return nil, domainerrors.ErrInvalidShop
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("title is required")
	}

	imageURL, uploaded, err := srv.resolveImage(ctx, input.Image, optionalString(input.ImageURL))
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		Shop:        input.Shop,
		Title:       title,
		Description: optionalString(input.Description),
		ImageURL:    imageURL,
		IsActive:    input.Active,
		Position:    input.Position,
		Variants:    ParseVariants(input.VariantsRaw),
	}

	if err := srv.catalogRepo.CreateProduct(ctx, product); err != nil {
		if uploaded {
			srv.discardImage(ctx, *imageURL)
		}

		return nil, errors.Wrap(err, "failed to create product")
	}

	srv.log(ctx).Info("Product created",
		slog.Int64("productID", product.ID),
		slog.String("shop", product.Shop),
		slog.Int("variants", len(product.Variants)),
	)

	return product, nil
}

func (srv *catalogService) UpdateProduct(ctx context.Context, productID int64, input usecase.ProductUpdateInput) (*entity.Product, error) {
	product, err := srv.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("title is required")
	}

	var replacement *string
	if input.ImageURL != nil {
		replacement = optionalString(*input.ImageURL)
	}
	imageURL, uploaded, err := srv.resolveImage(ctx, input.Image, replacement)
	if err != nil {
		return nil, err
	}

	previous := product.ImageURL
	if uploaded || input.ImageURL != nil {
		product.ImageURL = imageURL
	}
	product.Title = title
	product.Description = optionalString(input.Description)
	product.Position = input.Position
	product.IsActive = input.Active

	if err := srv.catalogRepo.UpdateProduct(ctx, product); err != nil {
		if uploaded {
			srv.discardImage(ctx, *imageURL)
		}

		return nil, errors.Wrap(err, "failed to update product")
	}

	if previous != nil && (product.ImageURL == nil || *previous != *product.ImageURL) {
		srv.discardImage(ctx, *previous)
	}

	return product, nil
}

func (srv *catalogService) DeleteProductImage(ctx context.Context, productID int64) (*entity.Product, error) {
	product, err := srv.findProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.ImageURL == nil {
		return product, nil
	}

	previous := *product.ImageURL
	product.ImageURL = nil
	if err := srv.catalogRepo.UpdateProduct(ctx, product); err != nil {
		return nil, errors.Wrap(err, "failed to clear product image")
	}
	srv.discardImage(ctx, previous)

	return product, nil
}

func (srv *catalogService) DeleteProduct(ctx context.Context, productID int64) error {
	product, err := srv.findProduct(ctx, productID)
	if err != nil {
		return err
	}

	if err := srv.catalogRepo.DeleteProduct(ctx, productID); err != nil {
		return errors.Wrap(err, "failed to delete product")
	}
	if product.ImageURL != nil {
		srv.discardImage(ctx, *product.ImageURL)
	}

	srv.log(ctx).Info("Product deleted", slog.Int64("productID", productID), slog.Int("variants", len(product.Variants)))

	return nil
}

func (srv *catalogService) AddVariant(ctx context.Context, productID int64, input usecase.VariantInput) (*entity.ProductVariant, error) {
	label, err := validateVariant(input)
	if err != nil {
		return nil, err
	}
	if _, err := srv.findProduct(ctx, productID); err != nil {
		return nil, err
	}

	variant := &entity.ProductVariant{
		ProductID:  productID,
		Label:      label,
		PointsCost: input.PointsCost,
		Stock:      input.Stock,
		IsActive:   input.Active,
	}
	if input.Position != nil {
		variant.Position = *input.Position
	}

	if err := srv.catalogRepo.CreateVariant(ctx, variant); err != nil {
		return nil, errors.Wrap(err, "failed to create variant")
	}

	return variant, nil
}

func (srv *catalogService) UpdateVariant(ctx context.Context, variantID int64, input usecase.VariantInput) (*entity.ProductVariant, error) {
	label, err := validateVariant(input)
	if err != nil {
		return nil, err
	}

	// Price edits never touch existing orders: points_spent was captured at redemption.
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		catalogRepo := repoFactory.CatalogRepo()

		variant, err := catalogRepo.FindVariant(ctx, variantID)
		if errors.Is(err, repository.ErrVariantNotFound) {
			return domainerrors.ErrVariantNotFound
		}
		if err != nil {
			return errors.Wrap(err, "failed to find variant")
		}

		variant.Label = label
		variant.PointsCost = input.PointsCost
		variant.Stock = input.Stock
		variant.IsActive = input.Active
		if input.Position != nil {
			variant.Position = *input.Position
		}

		return errors.Wrap(catalogRepo.UpdateVariant(ctx, variant), "failed to update variant")
	})
	if err != nil {
		return nil, err
	}

	return srv.catalogRepo.FindVariant(ctx, variantID)
}

func (srv *catalogService) DeleteVariant(ctx context.Context, variantID int64) error {
	err := srv.catalogRepo.DeleteVariant(ctx, variantID)
	if errors.Is(err, repository.ErrVariantNotFound) {
		return domainerrors.ErrVariantNotFound
	}

	return errors.Wrap(err, "failed to delete variant")
}

func (srv *catalogService) findProduct(ctx context.Context, productID int64) (*entity.Product, error) {
	product, err := srv.catalogRepo.FindProduct(ctx, productID)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, domainerrors.ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find product")
	}

	return product, nil
}

// resolveImage stores upload when present, otherwise returns url unchanged.
func (srv *catalogService) resolveImage(ctx context.Context, upload *service.ImageUpload, url *string) (*string, bool, error) {
	if upload == nil || upload.Body == nil {
		return url, false, nil
	}

	stored, err := srv.images.Save(ctx, upload)
	if err != nil {
		return nil, false, err
	}

	return &stored, true, nil
}

func (srv *catalogService) discardImage(ctx context.Context, ref string) {
	if err := srv.images.Delete(ctx, ref); err != nil {
		srv.log(ctx).Warn("Failed to delete stored image", slog.String("ref", ref), slog.Any("error", err))
	}
}

func validateVariant(input usecase.VariantInput) (string, error) {
	label := strings.TrimSpace(input.Label)
	if label == "" {
		return "", domainerrors.ErrValidationFailed.WrapMessage("label is required")
	}
	if input.PointsCost < 0 {
		return "", domainerrors.ErrValidationFailed.WrapMessage("points cost must not be negative")
	}

	return label, nil
}

func optionalString(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	return &raw
}
