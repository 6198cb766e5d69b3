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
	"pointshop/internal/infra/metrics"
	"pointshop/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type redemptionService struct {
	txManager     repository.TransactionManager
	userRepo      repository.UserRepository
	catalogRepo   repository.CatalogRepository
	settingsRepo  repository.ShopSettingsRepository
	allowlistRepo repository.AllowlistRepository
	clock         service.Clock
	shops         []string
	logger        *slog.Logger
}

// RedemptionServiceParams holds dependencies for RedemptionService, injected by Fx.
type RedemptionServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	UserRepo      repository.UserRepository
	CatalogRepo   repository.CatalogRepository
	SettingsRepo  repository.ShopSettingsRepository
	AllowlistRepo repository.AllowlistRepository
	Clock         service.Clock
	Config        *config.Config
	Logger        *slog.Logger
}

func NewRedemptionService(params RedemptionServiceParams) usecase.RedemptionUsecase {
	return &redemptionService{
		txManager:     params.TxManager,
		userRepo:      params.UserRepo,
		catalogRepo:   params.CatalogRepo,
		settingsRepo:  params.SettingsRepo,
		allowlistRepo: params.AllowlistRepo,
		clock:         params.Clock,
		shops:         params.Config.App.Shops,
		logger:        params.Logger,
	}
}

func (srv *redemptionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// declines lists every expected business outcome. Anything else is a ServerError.
var declines = []*domainerrors.BaseError{
	domainerrors.ErrUnauthorized,
	domainerrors.ErrItemUnavailable,
	domainerrors.ErrInvalidShop,
	domainerrors.ErrAccessDenied,
	domainerrors.ErrShopClosed,
	domainerrors.ErrOutOfStock,
	domainerrors.ErrInsufficientPoints,
}

func (srv *redemptionService) Redeem(ctx context.Context, identity entity.Identity, variantID int64) (*usecase.RedemptionResult, error) {
	result, err := srv.redeem(ctx, identity, variantID)
	if err != nil {
		for _, decline := range declines {
			if errors.Is(err, decline) {
				metrics.RedemptionsTotal.WithLabelValues(decline.ErrorCode()).Inc()
				srv.log(ctx).Info("Redemption declined",
					slog.String("handle", identity.Handle),
					slog.Int64("variantID", variantID),
					slog.String("reason", decline.ErrorCode()),
				)

				return nil, decline
			}
		}

		metrics.RedemptionsTotal.WithLabelValues(domainerrors.ErrServerError.ErrorCode()).Inc()
		srv.log(ctx).Error("Redemption failed",
			slog.String("handle", identity.Handle),
			slog.Int64("variantID", variantID),
			slog.Any("error", err),
		)

		return nil, domainerrors.ErrServerError
	}

	metrics.RedemptionsTotal.WithLabelValues("success").Inc()
	metrics.PointsRedeemedTotal.Add(float64(result.PointsSpent))
	srv.log(ctx).Info("Redemption committed",
		slog.String("handle", result.Handle),
		slog.Int64("orderID", result.OrderID),
		slog.Int("pointsSpent", result.PointsSpent),
	)

	return result, nil
}

func (srv *redemptionService) redeem(ctx context.Context, identity entity.Identity, variantID int64) (*usecase.RedemptionResult, error) {
	user, err := srv.precheck(ctx, identity, variantID)
	if err != nil {
		return nil, err
	}

	var result *usecase.RedemptionResult
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		catalogRepo := repoFactory.CatalogRepo()
		userRepo := repoFactory.UserRepo()

		// The variant may have changed since the pre-check.
		variant, err := catalogRepo.FindVariant(ctx, variantID)
		if errors.Is(err, repository.ErrVariantNotFound) {
			return domainerrors.ErrItemUnavailable
		}
		if err != nil {
			return errors.Wrap(err, "failed to reload variant")
		}
		if !variant.Redeemable() {
			return domainerrors.ErrItemUnavailable
		}
		if variant.SoldOut() {
			return domainerrors.ErrOutOfStock
		}

		debited, err := userRepo.DebitPoints(ctx, user.ID, variant.PointsCost)
		if err != nil {
			return errors.Wrap(err, "failed to debit points")
		}
		if !debited {
			return domainerrors.ErrInsufficientPoints
		}

		if variant.Stock != nil {
			taken, err := catalogRepo.DecrementStock(ctx, variant.ID)
			if err != nil {
				return errors.Wrap(err, "failed to decrement stock")
			}
			if !taken {
				return domainerrors.ErrOutOfStock
			}
		}

		order := &entity.Order{
			Handle:      user.Handle,
			VariantID:   variant.ID,
			PointsSpent: variant.PointsCost,
			Status:      entity.OrderStatusNew,
		}
		if err := repoFactory.OrderRepo().Create(ctx, order); err != nil {
			return errors.Wrap(err, "failed to create order")
		}

		updated, err := userRepo.FindByHandle(ctx, user.Handle)
		if err != nil {
			return errors.Wrap(err, "failed to read balance")
		}

		result = &usecase.RedemptionResult{
			OrderID:      order.ID,
			Handle:       user.Handle,
			Shop:         variant.Product.Shop,
			ProductTitle: variant.Product.Title,
			VariantLabel: variant.Label,
			PointsSpent:  variant.PointsCost,
			Balance:      updated.Points,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// precheck runs the read-only gates in decline order outside the transaction.
func (srv *redemptionService) precheck(ctx context.Context, identity entity.Identity, variantID int64) (*entity.User, error) {
	if !identity.Authenticated() {
		return nil, domainerrors.ErrUnauthorized
	}
	user, err := srv.userRepo.FindByHandle(ctx, identity.Handle)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrUnauthorized
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}

	variant, err := srv.catalogRepo.FindVariant(ctx, variantID)
	if errors.Is(err, repository.ErrVariantNotFound) {
		return nil, domainerrors.ErrItemUnavailable
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find variant")
	}
	if !variant.Redeemable() {
		return nil, domainerrors.ErrItemUnavailable
	}

	shop := variant.Product.Shop
	if !slices.Contains(srv.shops, shop) {
		return nil, domainerrors.ErrInvalidShop
	}

	allowed, err := hasAccess(ctx, srv.allowlistRepo, user.Handle, shop)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domainerrors.ErrAccessDenied
	}

	settings, err := findSettings(ctx, srv.settingsRepo, shop)
	if err != nil {
		return nil, err
	}
	if !settings.IsOpen(srv.clock.Now()) {
		return nil, domainerrors.ErrShopClosed
	}

	return user, nil
}
