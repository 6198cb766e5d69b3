// Package persistence selects the storage driver and exposes its repositories to Fx.
package persistence

import (
	"context"
	"log/slog"

	"pointshop/config"
	"pointshop/internal/domain/repository"
	"pointshop/internal/errors"
	"pointshop/internal/infra/persistence/memory"
	"pointshop/internal/infra/persistence/postgres"

	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// Repositories is the full set of repositories backed by one driver.
type Repositories struct {
	fx.Out

	TxManager     repository.TransactionManager
	UserRepo      repository.UserRepository
	CatalogRepo   repository.CatalogRepository
	OrderRepo     repository.OrderRepository
	SettingsRepo  repository.ShopSettingsRepository
	AllowlistRepo repository.AllowlistRepository
}

// New opens the configured driver. Both drivers seed shop settings on start.
func New(params Params) (Repositories, error) {
	switch params.Config.Storage.Driver {
	case config.StorageDriverPostgres:
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lc,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return Repositories{}, err
		}
		params.Logger.Info("Using PostgreSQL storage")

		return Repositories{
			TxManager:     postgres.NewTransactionManager(db),
			UserRepo:      postgres.NewUserRepository(db),
			CatalogRepo:   postgres.NewCatalogRepository(db),
			OrderRepo:     postgres.NewOrderRepository(db),
			SettingsRepo:  postgres.NewShopSettingsRepository(db),
			AllowlistRepo: postgres.NewAllowlistRepository(db),
		}, nil

	case config.StorageDriverMemory:
		store := memory.NewStore()
		repos := Repositories{
			TxManager:     memory.NewTransactionManager(store),
			UserRepo:      memory.NewUserRepository(store),
			CatalogRepo:   memory.NewCatalogRepository(store),
			OrderRepo:     memory.NewOrderRepository(store),
			SettingsRepo:  memory.NewShopSettingsRepository(store),
			AllowlistRepo: memory.NewAllowlistRepository(store),
		}
		params.Logger.Warn("Using in-memory storage, data is lost on restart")

		params.Lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return repos.SettingsRepo.EnsureShops(ctx, params.Config.App.Shops)
			},
		})

		return repos, nil

	default:
		return Repositories{}, errors.Errorf("unknown storage driver: %s", params.Config.Storage.Driver)
	}
}

// Module provides the repository FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(New),
)
