package impl

import (
	"strings"
	"testing"

	domainerrors "pointshop/internal/domain/errors"
	"pointshop/internal/domain/service"
	mockService "pointshop/internal/mocks/service"
	"pointshop/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func (env *testEnv) catalogService(images service.ImageStorage) *catalogService {
	return NewCatalogService(CatalogServiceParams{
		TxManager:   env.txManager,
		CatalogRepo: env.catalog,
		Images:      images,
		Config:      env.cfg,
		Logger:      newDiscardLogger(),
	}).(*catalogService)
}

func imageUpload() *service.ImageUpload {
	return &service.ImageUpload{Filename: "hoodie.png", ContentType: "image/png", Body: strings.NewReader("png")}
}

func TestCreateProduct_WithVariantsAndUpload(t *testing.T) {
	env := newTestEnv(t)
	images := mockService.NewMockImageStorage(t)
	upload := imageUpload()
	images.On("Save", mock.Anything, upload).Return("/static/uploads/abc.png", nil).Once()

	product, err := env.catalogService(images).CreateProduct(env.ctx, usecase.ProductInput{
		Shop:        "regular",
		Title:       "  Hoodie ",
		Description: " Warm ",
		Active:      true,
		Position:    3,
		VariantsRaw: "Red|100|5\nBlue|120\nBad Line",
		Image:       upload,
		ImageURL:    "https://cdn.example.com/ignored.png",
	})

	require.NoError(t, err)
	assert.Equal(t, "Hoodie", product.Title)
	assert.Equal(t, "Warm", *product.Description)
	assert.Equal(t, "/static/uploads/abc.png", *product.ImageURL)

	stored, err := env.catalog.FindProduct(env.ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Position)
	require.Len(t, stored.Variants, 2)
	assert.Equal(t, "Red", stored.Variants[0].Label)
	assert.Equal(t, 5, *stored.Variants[0].Stock)
	assert.Nil(t, stored.Variants[1].Stock)
}

func TestCreateProduct_ImageURLWithoutUpload(t *testing.T) {
	env := newTestEnv(t)

	product, err := env.catalogService(mockService.NewMockImageStorage(t)).CreateProduct(env.ctx, usecase.ProductInput{
		Shop:     "premium",
		Title:    "Watch",
		ImageURL: "https://cdn.example.com/watch.png",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/watch.png", *product.ImageURL)
	assert.Empty(t, product.Variants)
	assert.Nil(t, product.Description)
}

func TestCreateProduct_Rejects(t *testing.T) {
	env := newTestEnv(t)
	images := mockService.NewMockImageStorage(t)
	images.On("Save", mock.Anything, mock.Anything).Return("", domainerrors.ErrInvalidImage).Once()
	srv := env.catalogService(images)

	_, err := srv.CreateProduct(env.ctx, usecase.ProductInput{Shop: "vip", Title: "Hoodie"})
	assert.Same(t, domainerrors.ErrInvalidShop, err)

	_, err = srv.CreateProduct(env.ctx, usecase.ProductInput{Shop: "regular", Title: "   "})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	_, err = srv.CreateProduct(env.ctx, usecase.ProductInput{Shop: "regular", Title: "Hoodie", Image: imageUpload()})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidImage)

	groups, err := srv.ListProducts(env.ctx)
	require.NoError(t, err)
	for _, group := range groups {
		assert.Empty(t, group.Products)
	}
}

func TestListProducts_GroupsByConfiguredShops(t *testing.T) {
	env := newTestEnv(t)
	env.product("premium", "Watch")
	env.product("regular", "Hoodie")
	env.product("retired", "Ghost")

	groups, err := env.catalogService(mockService.NewMockImageStorage(t)).ListProducts(env.ctx)

	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "regular", groups[0].Shop)
	require.Len(t, groups[0].Products, 1)
	assert.Equal(t, "Hoodie", groups[0].Products[0].Title)
	assert.Equal(t, "premium", groups[1].Shop)
	require.Len(t, groups[1].Products, 1)
}

func TestUpdateProduct_ReplacesImage(t *testing.T) {
	env := newTestEnv(t)
	images := mockService.NewMockImageStorage(t)
	product := env.product("regular", "Hoodie")
	old := "/static/uploads/old.png"
	product.ImageURL = &old
	require.NoError(t, env.catalog.UpdateProduct(env.ctx, product))

	upload := imageUpload()
	images.On("Save", mock.Anything, upload).Return("/static/uploads/new.png", nil).Once()
	images.On("Delete", mock.Anything, old).Return(nil).Once()

	updated, err := env.catalogService(images).UpdateProduct(env.ctx, product.ID, usecase.ProductUpdateInput{
		Title:  "Hoodie v2",
		Active: true,
		Image:  upload,
	})

	require.NoError(t, err)
	assert.Equal(t, "Hoodie v2", updated.Title)
	assert.Equal(t, "/static/uploads/new.png", *updated.ImageURL)
}

func TestUpdateProduct_KeepsImageWhenUntouched(t *testing.T) {
	env := newTestEnv(t)
	product := env.product("regular", "Hoodie")
	old := "https://cdn.example.com/a.png"
	product.ImageURL = &old
	require.NoError(t, env.catalog.UpdateProduct(env.ctx, product))

	updated, err := env.catalogService(mockService.NewMockImageStorage(t)).UpdateProduct(env.ctx, product.ID, usecase.ProductUpdateInput{
		Title: "Hoodie",
	})

	require.NoError(t, err)
	assert.Equal(t, old, *updated.ImageURL)
	assert.False(t, updated.IsActive)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalogService(mockService.NewMockImageStorage(t)).UpdateProduct(env.ctx, 404, usecase.ProductUpdateInput{Title: "x"})

	assert.Same(t, domainerrors.ErrProductNotFound, err)
}

func TestDeleteProductImage(t *testing.T) {
	env := newTestEnv(t)
	images := mockService.NewMockImageStorage(t)
	product := env.product("regular", "Hoodie")
	ref := "/static/uploads/old.png"
	product.ImageURL = &ref
	require.NoError(t, env.catalog.UpdateProduct(env.ctx, product))

	// A failed blob delete only logs.
	images.On("Delete", mock.Anything, ref).Return(errors.New("bucket offline")).Once()

	updated, err := env.catalogService(images).DeleteProductImage(env.ctx, product.ID)

	require.NoError(t, err)
	assert.Nil(t, updated.ImageURL)
	stored, err := env.catalog.FindProduct(env.ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ImageURL)
}

func TestDeleteProduct_CascadesVariantsAndImage(t *testing.T) {
	env := newTestEnv(t)
	images := mockService.NewMockImageStorage(t)
	v := variant("Red", 10, nil)
	product := env.product("regular", "Hoodie", v)
	ref := "/static/uploads/old.png"
	product.ImageURL = &ref
	require.NoError(t, env.catalog.UpdateProduct(env.ctx, product))
	images.On("Delete", mock.Anything, ref).Return(nil).Once()
	srv := env.catalogService(images)

	require.NoError(t, srv.DeleteProduct(env.ctx, product.ID))

	_, err := env.catalog.FindVariant(env.ctx, v.ID)
	assert.Error(t, err)
	assert.Same(t, domainerrors.ErrProductNotFound, srv.DeleteProduct(env.ctx, product.ID))
}

func TestVariantLifecycle(t *testing.T) {
	env := newTestEnv(t)
	product := env.product("regular", "Hoodie")
	srv := env.catalogService(mockService.NewMockImageStorage(t))

	added, err := srv.AddVariant(env.ctx, product.ID, usecase.VariantInput{
		Label:      " XL ",
		PointsCost: 150,
		Stock:      intPtr(4),
		Active:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "XL", added.Label)
	assert.Equal(t, 0, added.Position)

	updated, err := srv.UpdateVariant(env.ctx, added.ID, usecase.VariantInput{
		Label:      "XXL",
		PointsCost: 175,
		Position:   intPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, "XXL", updated.Label)
	assert.Equal(t, 175, updated.PointsCost)
	assert.Nil(t, updated.Stock)
	assert.Equal(t, 2, updated.Position)
	assert.False(t, updated.IsActive)

	require.NoError(t, srv.DeleteVariant(env.ctx, added.ID))
	assert.Same(t, domainerrors.ErrVariantNotFound, srv.DeleteVariant(env.ctx, added.ID))
	_, err = srv.UpdateVariant(env.ctx, added.ID, usecase.VariantInput{Label: "S"})
	assert.Same(t, domainerrors.ErrVariantNotFound, err)
}

func TestVariantValidation(t *testing.T) {
	env := newTestEnv(t)
	product := env.product("regular", "Hoodie")
	srv := env.catalogService(mockService.NewMockImageStorage(t))

	_, err := srv.AddVariant(env.ctx, product.ID, usecase.VariantInput{Label: " ", PointsCost: 1})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	_, err = srv.AddVariant(env.ctx, product.ID, usecase.VariantInput{Label: "S", PointsCost: -1})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	_, err = srv.AddVariant(env.ctx, 404, usecase.VariantInput{Label: "S", PointsCost: 1})
	assert.Same(t, domainerrors.ErrProductNotFound, err)
}
