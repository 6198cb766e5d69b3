package impl

import (
	"context"
	"log/slog"
	"slices"

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

type shopService struct {
	settingsRepo  repository.ShopSettingsRepository
	allowlistRepo repository.AllowlistRepository
	catalogRepo   repository.CatalogRepository
	clock         service.Clock
	shops         []string
	logger        *slog.Logger
}

// ShopServiceParams holds dependencies for ShopService, injected by Fx.
type ShopServiceParams struct {
	fx.In

	SettingsRepo  repository.ShopSettingsRepository
	AllowlistRepo repository.AllowlistRepository
	CatalogRepo   repository.CatalogRepository
	Clock         service.Clock
	Config        *config.Config
	Logger        *slog.Logger
}

func NewShopService(params ShopServiceParams) usecase.ShopUsecase {
	return &shopService{
		settingsRepo:  params.SettingsRepo,
		allowlistRepo: params.AllowlistRepo,
		catalogRepo:   params.CatalogRepo,
		clock:         params.Clock,
		shops:         params.Config.App.Shops,
		logger:        params.Logger,
	}
}

func (srv *shopService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *shopService) HasAccess(ctx context.Context, handle, shop string) (bool, error) {
	return hasAccess(ctx, srv.allowlistRepo, handle, shop)
}

func (srv *shopService) IsShopOpen(ctx context.Context, shop string) (bool, error) {
	settings, err := findSettings(ctx, srv.settingsRepo, shop)
	if err != nil {
		return false, err
	}

	return settings.IsOpen(srv.clock.Now()), nil
}

func (srv *shopService) ShopStatuses(ctx context.Context, identity entity.Identity) ([]*usecase.ShopStatus, error) {
	if !identity.Authenticated() {
		return nil, domainerrors.ErrUnauthorized
	}

	now := srv.clock.Now()
	statuses := make([]*usecase.ShopStatus, 0, len(srv.shops))
	for _, shop := range srv.shops {
		allowed, err := hasAccess(ctx, srv.allowlistRepo, identity.Handle, shop)
		if err != nil {
			return nil, err
		}
		settings, err := findSettings(ctx, srv.settingsRepo, shop)
		if err != nil {
			return nil, err
		}

		status := &usecase.ShopStatus{
			Shop:      shop,
			Label:     entity.ShopLabel(shop),
			HasAccess: allowed,
			IsOpen:    settings.IsOpen(now),
		}
		if settings != nil {
			status.OpensAt = settings.OpensAt
			status.ClosesAt = settings.ClosesAt
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

// enter applies the shop gates in decline order.
func (srv *shopService) enter(ctx context.Context, identity entity.Identity, shop string) error {
	if !identity.Authenticated() {
		return domainerrors.ErrUnauthorized
	}
	if !slices.Contains(srv.shops, shop) {
		return domainerrors.ErrInvalidShop
	}

	allowed, err := hasAccess(ctx, srv.allowlistRepo, identity.Handle, shop)
	if err != nil {
		return err
	}
	if !allowed {
		return domainerrors.ErrAccessDenied
	}

	open, err := srv.IsShopOpen(ctx, shop)
	if err != nil {
		return err
	}
	if !open {
		return domainerrors.ErrShopClosed
	}

	return nil
}

func (srv *shopService) ShopCatalog(ctx context.Context, identity entity.Identity, shop string) ([]*entity.Product, error) {
	if err := srv.enter(ctx, identity, shop); err != nil {
		return nil, err
	}

	products, err := srv.catalogRepo.ListProducts(ctx, repository.ProductFilter{Shop: shop, ActiveOnly: true})
	if err != nil {
		srv.log(ctx).Error("Failed to list shop catalog", slog.String("shop", shop), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list products")
	}

	for _, product := range products {
		product.Variants = product.ActiveVariants()
	}

	return products, nil
}

func (srv *shopService) ProductDetail(ctx context.Context, identity entity.Identity, shop string, productID int64) (*entity.Product, error) {
	if err := srv.enter(ctx, identity, shop); err != nil {
		return nil, err
	}

	product, err := srv.catalogRepo.FindProduct(ctx, productID)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, domainerrors.ErrItemUnavailable
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find product")
	}
	if !product.IsActive || product.Shop != shop {
		return nil, domainerrors.ErrItemUnavailable
	}

	product.Variants = product.ActiveVariants()

	return product, nil
}

func hasAccess(ctx context.Context, repo repository.AllowlistRepository, handle, shop string) (bool, error) {
	if handle == "" {
		return false, nil
	}

	ok, err := repo.Exists(ctx, handle, shop)
	if err != nil {
		return false, errors.Wrap(err, "failed to check allow-list")
	}

	return ok, nil
}

// findSettings returns nil settings, which read as closed, when the shop has no row.
func findSettings(ctx context.Context, repo repository.ShopSettingsRepository, shop string) (*entity.ShopSettings, error) {
	settings, err := repo.FindByShop(ctx, shop)
	if errors.Is(err, repository.ErrShopSettingsNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find shop settings")
	}

	return settings, nil
}
