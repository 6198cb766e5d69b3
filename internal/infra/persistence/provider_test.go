package persistence

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"pointshop/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func TestNew_MemorySeedsShopsOnStart(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = config.StorageDriverMemory
	cfg.App.Shops = []string{"regular", "premium"}
	lc := fxtest.NewLifecycle(t)

	repos, err := New(Params{Lc: lc, Config: cfg, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)

	lc.RequireStart()
	defer lc.RequireStop()

	settings, err := repos.SettingsRepo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, settings, 2)
	assert.False(t, settings[0].IsOpen(settings[0].UpdatedAt))
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = "sqlite"

	_, err := New(Params{Lc: fxtest.NewLifecycle(t), Config: cfg, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	assert.ErrorContains(t, err, "unknown storage driver")
}
