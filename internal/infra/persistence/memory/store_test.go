package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"pointshop/internal/domain/entity"
	"pointshop/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	users := NewUserRepository(store)
	_, err := users.SetPoints(ctx, "@alice", 100)
	require.NoError(t, err)

	alice, err := users.FindByHandle(ctx, "@alice")
	require.NoError(t, err)

	errAbort := errors.New("abort")
	err = NewTransactionManager(store).Execute(ctx, func(f repository.RepositoryFactory) error {
		ok, err := f.UserRepo().DebitPoints(ctx, alice.ID, 80)
		require.NoError(t, err)
		require.True(t, ok)

		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	after, err := users.FindByHandle(ctx, "@alice")
	require.NoError(t, err)
	assert.Equal(t, 100, after.Points)
}

func TestTransactionManager_RollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	users := NewUserRepository(store)
	_, err := users.SetPoints(ctx, "@bob", 10)
	require.NoError(t, err)

	assert.Panics(t, func() {
		_ = NewTransactionManager(store).Execute(ctx, func(f repository.RepositoryFactory) error {
			_, _ = f.UserRepo().SetPoints(ctx, "@bob", 0)
			panic("boom")
		})
	})

	bob, err := users.FindByHandle(ctx, "@bob")
	require.NoError(t, err)
	assert.Equal(t, 10, bob.Points)
}

func TestUserRepository_DebitPointsIsConditional(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(NewStore())
	u, err := users.SetPoints(ctx, "@carol", 50)
	require.NoError(t, err)

	ok, err := users.DebitPoints(ctx, u.ID, 80)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = users.DebitPoints(ctx, u.ID, 50)
	require.NoError(t, err)
	assert.True(t, ok)

	after, err := users.FindByHandle(ctx, "@carol")
	require.NoError(t, err)
	assert.Equal(t, 0, after.Points)
}

func TestUserRepository_CreateRejectsDuplicateHandle(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(NewStore())

	require.NoError(t, users.Create(ctx, &entity.User{Handle: "@dave"}))
	err := users.Create(ctx, &entity.User{Handle: "@dave"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestCatalogRepository_DecrementStock(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalogRepository(NewStore())
	product := &entity.Product{
		Shop:     "regular",
		Title:    "Mug",
		IsActive: true,
		Variants: []*entity.ProductVariant{
			{Label: "Red", PointsCost: 10, Stock: intPtr(1), IsActive: true},
			{Label: "Blue", PointsCost: 10, IsActive: true},
		},
	}
	require.NoError(t, catalog.CreateProduct(ctx, product))

	red, blue := product.Variants[0].ID, product.Variants[1].ID

	ok, err := catalog.DecrementStock(ctx, red)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = catalog.DecrementStock(ctx, red)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = catalog.DecrementStock(ctx, blue)
	require.NoError(t, err)
	assert.False(t, ok, "unlimited stock is never decremented")

	variant, err := catalog.FindVariant(ctx, red)
	require.NoError(t, err)
	require.NotNil(t, variant.Stock)
	assert.Equal(t, 0, *variant.Stock)
	require.NotNil(t, variant.Product)
	assert.Equal(t, "Mug", variant.Product.Title)
}

func TestCatalogRepository_DeleteProductCascades(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalogRepository(NewStore())
	product := &entity.Product{
		Shop:     "premium",
		Title:    "Hoodie",
		IsActive: true,
		Variants: []*entity.ProductVariant{{Label: "M", PointsCost: 300, IsActive: true}},
	}
	require.NoError(t, catalog.CreateProduct(ctx, product))

	require.NoError(t, catalog.DeleteProduct(ctx, product.ID))

	_, err := catalog.FindVariant(ctx, product.Variants[0].ID)
	assert.ErrorIs(t, err, repository.ErrVariantNotFound)
	assert.ErrorIs(t, catalog.DeleteProduct(ctx, product.ID), repository.ErrProductNotFound)
}

func TestCatalogRepository_ListProductsOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	store.SetNow(func() time.Time {
		tick++

		return base.Add(time.Duration(tick) * time.Minute)
	})
	catalog := NewCatalogRepository(store)

	for _, p := range []*entity.Product{
		{Shop: "regular", Title: "B", Position: 1, IsActive: true},
		{Shop: "regular", Title: "A", Position: 0, IsActive: true},
		{Shop: "regular", Title: "C", Position: 1, IsActive: false},
		{Shop: "premium", Title: "P", Position: 0, IsActive: true},
	} {
		require.NoError(t, catalog.CreateProduct(ctx, p))
	}

	all, err := catalog.ListProducts(ctx, repository.ProductFilter{Shop: "regular"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{all[0].Title, all[1].Title, all[2].Title})

	active, err := catalog.ListProducts(ctx, repository.ProductFilter{Shop: "regular", ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestOrderRepository_ViewsSurviveCatalogDeletion(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	catalog := NewCatalogRepository(store)
	orders := NewOrderRepository(store)

	product := &entity.Product{
		Shop:     "regular",
		Title:    "Sticker",
		IsActive: true,
		Variants: []*entity.ProductVariant{{Label: "Pack", PointsCost: 5, IsActive: true}},
	}
	require.NoError(t, catalog.CreateProduct(ctx, product))

	order := &entity.Order{Handle: "@eve", VariantID: product.Variants[0].ID, PointsSpent: 5, Status: entity.OrderStatusNew}
	require.NoError(t, orders.Create(ctx, order))

	views, err := orders.List(ctx, entity.OrderFilter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Sticker", views[0].ProductTitle)
	assert.Equal(t, "regular", views[0].Shop)

	require.NoError(t, catalog.DeleteProduct(ctx, product.ID))

	var streamed []*entity.OrderView
	require.NoError(t, orders.Stream(ctx, entity.OrderFilter{}, func(v *entity.OrderView) error {
		streamed = append(streamed, v)

		return nil
	}))
	require.Len(t, streamed, 1)
	assert.Empty(t, streamed[0].ProductTitle)
	assert.Equal(t, 5, streamed[0].PointsSpent)
}

func TestShopSettingsRepository_EnsureShopsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	settings := NewShopSettingsRepository(NewStore())
	opens := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, settings.EnsureShops(ctx, []string{"regular", "premium"}))
	require.NoError(t, settings.Save(ctx, &entity.ShopSettings{Shop: "regular", OpensAt: &opens}))
	require.NoError(t, settings.EnsureShops(ctx, []string{"regular", "premium"}))

	list, err := settings.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	regular, err := settings.FindByShop(ctx, "regular")
	require.NoError(t, err)
	require.NotNil(t, regular.OpensAt)
	assert.True(t, opens.Equal(*regular.OpensAt))
}
