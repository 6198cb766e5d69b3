package impl

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"pointshop/config"
	deliverycontext "pointshop/internal/delivery/context"
	"pointshop/internal/domain/constants"
	"pointshop/internal/domain/entity"
	domainerrors "pointshop/internal/domain/errors"
	"pointshop/internal/domain/repository"
	"pointshop/internal/domain/service"
	"pointshop/internal/usecase"
	"pointshop/internal/util"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

var scheduleLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

type adminService struct {
	txManager     repository.TransactionManager
	userRepo      repository.UserRepository
	allowlistRepo repository.AllowlistRepository
	settingsRepo  repository.ShopSettingsRepository
	clock         service.Clock
	shops         []string
	logger        *slog.Logger
}

// AdminServiceParams holds dependencies for AdminService, injected by Fx.
type AdminServiceParams struct {
	fx.In

	TxManager     repository.TransactionManager
	UserRepo      repository.UserRepository
	AllowlistRepo repository.AllowlistRepository
	SettingsRepo  repository.ShopSettingsRepository
	Clock         service.Clock
	Config        *config.Config
	Logger        *slog.Logger
}

func NewAdminService(params AdminServiceParams) usecase.AdminUsecase {
	return &adminService{
		txManager:     params.TxManager,
		userRepo:      params.UserRepo,
		allowlistRepo: params.AllowlistRepo,
		settingsRepo:  params.SettingsRepo,
		clock:         params.Clock,
		shops:         params.Config.App.Shops,
		logger:        params.Logger,
	}
}

func (srv *adminService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *adminService) checkShop(shop string) error {
	if !slices.Contains(srv.shops, shop) {
		return domainerrors.ErrInvalidShop
	}

	return nil
}

func (srv *adminService) ListAllowlist(ctx context.Context) ([]*entity.AllowlistEntry, error) {
	entries, err := srv.allowlistRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list allow-list")
	}

	return entries, nil
}

func (srv *adminService) AddToAllowlist(ctx context.Context, rawHandle, shop string) (*entity.AllowlistEntry, error) {
	if err := srv.checkShop(shop); err != nil {
		return nil, err
	}
	handle, ok := entity.NormalizeHandle(rawHandle)
	if !ok {
		return nil, domainerrors.ErrInvalidHandle
	}

	entry := &entity.AllowlistEntry{Handle: handle, Shop: shop}
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		allowlistRepo := repoFactory.AllowlistRepo()

		exists, err := allowlistRepo.Exists(ctx, handle, shop)
		if err != nil {
			return errors.Wrap(err, "failed to check allow-list")
		}
		if exists {
			entry = nil

			return nil
		}

		return errors.Wrap(allowlistRepo.Create(ctx, entry), "failed to create allow-list entry")
	})
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return srv.findEntry(ctx, handle, shop)
	}

	srv.log(ctx).Info("Allow-list entry added", slog.String("handle", handle), slog.String("shop", shop))

	return entry, nil
}

func (srv *adminService) findEntry(ctx context.Context, handle, shop string) (*entity.AllowlistEntry, error) {
	entries, err := srv.ListAllowlist(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Handle == handle && e.Shop == shop {
			return e, nil
		}
	}

	return nil, domainerrors.ErrAllowlistEntryNotFound
}

func (srv *adminService) RemoveFromAllowlist(ctx context.Context, entryID int64) error {
	err := srv.allowlistRepo.Delete(ctx, entryID)
	if errors.Is(err, repository.ErrAllowlistEntryNotFound) {
		return domainerrors.ErrAllowlistEntryNotFound
	}

	return errors.Wrap(err, "failed to delete allow-list entry")
}

func (srv *adminService) AllowAllUsers(ctx context.Context, shop string) (int, error) {
	if err := srv.checkShop(shop); err != nil {
		return 0, err
	}

	added := 0
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		allowlistRepo := repoFactory.AllowlistRepo()

		existing, err := allowlistRepo.ListHandles(ctx, shop)
		if err != nil {
			return errors.Wrap(err, "failed to list allow-listed handles")
		}
		handles, err := repoFactory.UserRepo().ListHandles(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to list users")
		}

		for _, handle := range handles {
			if slices.Contains(existing, handle) {
				continue
			}
			if err := allowlistRepo.Create(ctx, &entity.AllowlistEntry{Handle: handle, Shop: shop}); err != nil {
				return errors.Wrap(err, "failed to create allow-list entry")
			}
			added++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	srv.log(ctx).Info("Allow-listed every user", slog.String("shop", shop), slog.Int("added", added))

	return added, nil
}

func (srv *adminService) RevokeShop(ctx context.Context, shop string) (int64, error) {
	if err := srv.checkShop(shop); err != nil {
		return 0, err
	}

	removed, err := srv.allowlistRepo.DeleteByShop(ctx, shop)
	if err != nil {
		return 0, errors.Wrap(err, "failed to clear allow-list")
	}

	srv.log(ctx).Info("Allow-list cleared", slog.String("shop", shop), slog.Int64("removed", removed))

	return removed, nil
}

func (srv *adminService) SetPoints(ctx context.Context, rawHandle string, points int) (*entity.User, error) {
	handle, ok := entity.NormalizeHandle(rawHandle)
	if !ok {
		return nil, domainerrors.ErrInvalidHandle
	}

	user, err := srv.userRepo.SetPoints(ctx, handle, points)
	if err != nil {
		return nil, errors.Wrap(err, "failed to set points")
	}

	srv.log(ctx).Info("Points set", slog.String("handle", handle), slog.Int("points", points))

	return user, nil
}

func (srv *adminService) ListUsers(ctx context.Context, page int) (*usecase.UsersPage, error) {
	total, err := srv.userRepo.Count(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count users")
	}

	pages := util.TotalPages(total, constants.UsersPageSize)
	page = util.ClampPage(page, pages)

	users, err := srv.userRepo.ListByPoints(ctx, util.Offset(page, constants.UsersPageSize), constants.UsersPageSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	return &usecase.UsersPage{
		Users:      users,
		Page:       page,
		TotalPages: pages,
		Total:      total,
	}, nil
}

func (srv *adminService) ListShopSettings(ctx context.Context) ([]*entity.ShopSettings, error) {
	settings, err := srv.settingsRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list shop settings")
	}

	return settings, nil
}

func (srv *adminService) SetShopSchedule(ctx context.Context, shop, opensAt, closesAt string) (*entity.ShopSettings, error) {
	if err := srv.checkShop(shop); err != nil {
		return nil, err
	}

	loc := srv.clock.Location()
	opens, err := parseScheduleTime(opensAt, loc)
	if err != nil {
		return nil, domainerrors.ErrInvalidSchedule.WrapMessage("opens_at: " + opensAt)
	}
	closes, err := parseScheduleTime(closesAt, loc)
	if err != nil {
		return nil, domainerrors.ErrInvalidSchedule.WrapMessage("closes_at: " + closesAt)
	}

	settings := &entity.ShopSettings{Shop: shop, OpensAt: opens, ClosesAt: closes}
	if err := srv.settingsRepo.Save(ctx, settings); err != nil {
		return nil, errors.Wrap(err, "failed to save shop settings")
	}

	srv.log(ctx).Info("Shop schedule updated", slog.String("shop", shop), slog.Bool("open", settings.IsOpen(srv.clock.Now())))

	return settings, nil
}

// parseScheduleTime reads a local ISO-8601 datetime in loc. Blank means unset.
func parseScheduleTime(raw string, loc *time.Location) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var lastErr error
	for _, layout := range scheduleLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return &t, nil
		}
		lastErr = err
	}

	return nil, errors.WithStack(lastErr)
}
