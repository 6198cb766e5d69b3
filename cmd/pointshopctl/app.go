package main

import (
	"context"

	"pointshop/config"
	"pointshop/internal/domain/lifecycle"
	"pointshop/internal/domain/service"
	"pointshop/internal/infra/clock"
	logs "pointshop/internal/infra/log"
	"pointshop/internal/infra/persistence"
	"pointshop/internal/usecase"
	"pointshop/internal/usecase/impl"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// app holds the usecases the CLI drives. It reuses the portal's storage wiring.
type app struct {
	admin  usecase.AdminUsecase
	orders usecase.OrderUsecase
	clock  service.Clock
}

func withApp(ctx context.Context, run func(*app) error) error {
	var a app

	fxApp := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.New,
			logs.NewStderr,
			clock.New,
			impl.NewAdminService,
			impl.NewOrderService,
		),
		persistence.Module,
		fx.Populate(&a.admin, &a.orders, &a.clock),
	)
	if err := fxApp.Err(); err != nil {
		return errors.Wrap(err, "failed to build application")
	}

	startCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return errors.Wrap(err, "failed to start")
	}

	runErr := run(&a)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), lifecycle.DefaultTimeout)
	defer cancelStop()
	if err := fxApp.Stop(stopCtx); err != nil && runErr == nil {
		return errors.Wrap(err, "failed to stop")
	}

	return runErr
}
