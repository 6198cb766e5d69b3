package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"pointshop/config"
	"pointshop/internal/domain/entity"
	"pointshop/internal/domain/repository"
	"pointshop/internal/infra/auth"
	"pointshop/internal/infra/clock"
	"pointshop/internal/infra/persistence/memory"

	"github.com/stretchr/testify/require"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.TZ = "UTC"
	cfg.App.Shops = []string{"regular", "premium"}
	cfg.Admin.Password = "s3cret-admin"
	cfg.Auth.BcryptCost = 4
	cfg.Auth.MinPasswordLength = 6
	cfg.Auth.MaxPasswordLength = 128

	return cfg
}

func intPtr(v int) *int { return &v }

// testEnv wires every repository to one in-memory store.
type testEnv struct {
	t         *testing.T
	ctx       context.Context
	cfg       *config.Config
	store     *memory.Store
	clock     *clock.Fixed
	txManager repository.TransactionManager
	users     repository.UserRepository
	catalog   repository.CatalogRepository
	orders    repository.OrderRepository
	settings  repository.ShopSettingsRepository
	allowlist repository.AllowlistRepository
}

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	env := &testEnv{
		t:         t,
		ctx:       context.Background(),
		cfg:       newTestConfig(),
		store:     store,
		clock:     &clock.Fixed{At: testNow, Loc: time.UTC},
		txManager: memory.NewTransactionManager(store),
		users:     memory.NewUserRepository(store),
		catalog:   memory.NewCatalogRepository(store),
		orders:    memory.NewOrderRepository(store),
		settings:  memory.NewShopSettingsRepository(store),
		allowlist: memory.NewAllowlistRepository(store),
	}
	require.NoError(t, env.settings.EnsureShops(env.ctx, env.cfg.App.Shops))

	return env
}

func (env *testEnv) user(handle string, points int) *entity.User {
	env.t.Helper()
	user, err := env.users.SetPoints(env.ctx, handle, points)
	require.NoError(env.t, err)

	return user
}

func (env *testEnv) allow(handle, shop string) {
	env.t.Helper()
	require.NoError(env.t, env.allowlist.Create(env.ctx, &entity.AllowlistEntry{Handle: handle, Shop: shop}))
}

func (env *testEnv) window(shop string, opens, closes time.Time) {
	env.t.Helper()
	require.NoError(env.t, env.settings.Save(env.ctx, &entity.ShopSettings{Shop: shop, OpensAt: &opens, ClosesAt: &closes}))
}

// openShop opens shop for an hour around testNow.
func (env *testEnv) openShop(shop string) {
	env.window(shop, testNow.Add(-time.Hour), testNow.Add(time.Hour))
}

func (env *testEnv) product(shop, title string, variants ...*entity.ProductVariant) *entity.Product {
	env.t.Helper()
	product := &entity.Product{Shop: shop, Title: title, IsActive: true, Variants: variants}
	require.NoError(env.t, env.catalog.CreateProduct(env.ctx, product))

	return product
}

func variant(label string, cost int, stock *int) *entity.ProductVariant {
	return &entity.ProductVariant{Label: label, PointsCost: cost, Stock: stock, IsActive: true}
}

func (env *testEnv) redemptionService() *redemptionService {
	return NewRedemptionService(RedemptionServiceParams{
		TxManager:     env.txManager,
		UserRepo:      env.users,
		CatalogRepo:   env.catalog,
		SettingsRepo:  env.settings,
		AllowlistRepo: env.allowlist,
		Clock:         env.clock,
		Config:        env.cfg,
		Logger:        newDiscardLogger(),
	}).(*redemptionService)
}

func (env *testEnv) shopService() *shopService {
	return NewShopService(ShopServiceParams{
		SettingsRepo:  env.settings,
		AllowlistRepo: env.allowlist,
		CatalogRepo:   env.catalog,
		Clock:         env.clock,
		Config:        env.cfg,
		Logger:        newDiscardLogger(),
	}).(*shopService)
}

func (env *testEnv) authService() *authService {
	return NewAuthService(AuthServiceParams{
		TxManager: env.txManager,
		UserRepo:  env.users,
		Hasher:    auth.NewBcryptHasher(env.cfg),
		Config:    env.cfg,
		Logger:    newDiscardLogger(),
	}).(*authService)
}

func (env *testEnv) adminService() *adminService {
	return NewAdminService(AdminServiceParams{
		TxManager:     env.txManager,
		UserRepo:      env.users,
		AllowlistRepo: env.allowlist,
		SettingsRepo:  env.settings,
		Clock:         env.clock,
		Config:        env.cfg,
		Logger:        newDiscardLogger(),
	}).(*adminService)
}

func (env *testEnv) orderService() *orderService {
	return NewOrderService(OrderServiceParams{
		OrderRepo: env.orders,
		Clock:     env.clock,
		Logger:    newDiscardLogger(),
	}).(*orderService)
}
