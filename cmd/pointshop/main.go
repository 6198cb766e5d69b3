package main

import (
	"context"
	"log/slog"
	"os"

	"pointshop/config"
	"pointshop/internal/delivery"
	"pointshop/internal/delivery/http"
	"pointshop/internal/delivery/http/middleware"
	"pointshop/internal/delivery/http/router/handler"
	"pointshop/internal/infra/auth"
	"pointshop/internal/infra/clock"
	logs "pointshop/internal/infra/log"
	"pointshop/internal/infra/notification"
	"pointshop/internal/infra/persistence"
	"pointshop/internal/infra/storage"
	"pointshop/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
			clock.New,
		),
		storage.Module,
		notification.Module,
	)
}

func injectRepo() fx.Option {
	return persistence.Module
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewSessionTokenService,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewShopService,
			impl.NewRedemptionService,
			impl.NewNotificationService,
			impl.NewAdminService,
			impl.NewCatalogService,
			impl.NewOrderService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewSessionMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewShopHandler,
			handler.NewRedemptionHandler,
			handler.NewUploadHandler,
			handler.NewAdminHandler,
			handler.NewCatalogHandler,
			handler.NewOrderHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// startServer serves once every earlier OnStart hook (migrations, shop seeding) has run.
func startServer(ctx context.Context, params startServerParams) {
	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, delivery := range params.Deliveries {
				go func() {
					if err := delivery.Serve(ctx); err != nil {
						slog.Error("Failed to start server", slog.Any("error", err))
						os.Exit(1)
					}
				}()
			}

			return nil
		},
	})
}
