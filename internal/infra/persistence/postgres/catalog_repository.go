package postgres

import (
	"context"

	"pointshop/internal/domain/entity"
	"pointshop/internal/domain/repository"
	"pointshop/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

func orderedVariants(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC").Order("created_at ASC").Order("id ASC")
}

func (repo *catalogRepository) CreateProduct(ctx context.Context, product *entity.Product) error {
	productM := fromProductDomain(product)

	if err := repo.db.WithContext(ctx).Create(productM).Error; err != nil {
		return errors.Wrap(err, "failed to create product")
	}

	product.ID = productM.ID
	product.CreatedAt = productM.CreatedAt
	for i := range productM.Variants {
		if i < len(product.Variants) {
			product.Variants[i].ID = productM.Variants[i].ID
			product.Variants[i].ProductID = productM.ID
			product.Variants[i].CreatedAt = productM.Variants[i].CreatedAt
		}
	}

	return nil
}

func (repo *catalogRepository) UpdateProduct(ctx context.Context, product *entity.Product) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ProductModel{}).
		Where("id = ?", product.ID).
		Select("shop_type", "title", "description", "image_url", "is_active", "position").
		Updates(&model.ProductModel{
			Shop:        product.Shop,
			Title:       product.Title,
			Description: product.Description,
			ImageURL:    product.ImageURL,
			IsActive:    product.IsActive,
			Position:    product.Position,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update product")
	}
	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

func (repo *catalogRepository) FindProduct(ctx context.Context, id int64) (*entity.Product, error) {
	var productM model.ProductModel
	err := repo.db.WithContext(ctx).
		Preload("Variants", orderedVariants).
		First(&productM, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}

		return nil, errors.Wrap(err, "failed to find product")
	}

	return toProductDomain(&productM), nil
}

func (repo *catalogRepository) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	query := repo.db.WithContext(ctx)
	if filter.Shop != "" {
		query = query.Where("shop_type = ?", filter.Shop)
	}

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true).
			Preload("Variants", func(db *gorm.DB) *gorm.DB {
				return orderedVariants(db.Where("is_active = ?", true))
			})
	} else {
		query = query.Preload("Variants", orderedVariants)
	}

	var productMs []model.ProductModel
	if err := query.Order("position ASC").Order("created_at ASC").Order("id ASC").Find(&productMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	products := make([]*entity.Product, 0, len(productMs))
	for i := range productMs {
		products = append(products, toProductDomain(&productMs[i]))
	}

	return products, nil
}

// DeleteProduct removes variants explicitly so the cascade holds even on
// tables created without the ON DELETE CASCADE constraint.
func (repo *catalogRepository) DeleteProduct(ctx context.Context, id int64) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&model.ProductVariantModel{}).Error; err != nil {
			return errors.Wrap(err, "failed to delete product variants")
		}

		result := tx.Delete(&model.ProductModel{}, id)
		if result.Error != nil {
			return errors.Wrap(result.Error, "failed to delete product")
		}
		if result.RowsAffected == 0 {
			return repository.ErrProductNotFound
		}

		return nil
	})
}

// FindVariant reads from the primary; its result feeds redemption checks.
func (repo *catalogRepository) FindVariant(ctx context.Context, id int64) (*entity.ProductVariant, error) {
	db := repo.db.WithContext(ctx).Clauses(dbresolver.Write)

	var variantM model.ProductVariantModel
	if err := db.First(&variantM, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrVariantNotFound
		}

		return nil, errors.Wrap(err, "failed to find variant")
	}

	variant := toVariantDomain(&variantM)

	var productM model.ProductModel
	err := db.First(&productM, variantM.ProductID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Orphaned variant. Leaving Product nil makes it unredeemable.
	case err != nil:
		return nil, errors.Wrap(err, "failed to find variant product")
	default:
		variant.Product = toProductDomain(&productM)
	}

	return variant, nil
}

func (repo *catalogRepository) CreateVariant(ctx context.Context, variant *entity.ProductVariant) error {
	variantM := fromVariantDomain(variant)
	if err := repo.db.WithContext(ctx).Create(variantM).Error; err != nil {
		return errors.Wrap(err, "failed to create variant")
	}

	variant.ID = variantM.ID
	variant.CreatedAt = variantM.CreatedAt

	return nil
}

func (repo *catalogRepository) UpdateVariant(ctx context.Context, variant *entity.ProductVariant) error {
	result := repo.db.WithContext(ctx).
		Model(&model.ProductVariantModel{}).
		Where("id = ?", variant.ID).
		Select("label", "points_cost", "stock", "is_active", "position").
		Updates(&model.ProductVariantModel{
			Label:      variant.Label,
			PointsCost: variant.PointsCost,
			Stock:      variant.Stock,
			IsActive:   variant.IsActive,
			Position:   variant.Position,
		})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update variant")
	}
	if result.RowsAffected == 0 {
		return repository.ErrVariantNotFound
	}

	return nil
}

func (repo *catalogRepository) DeleteVariant(ctx context.Context, id int64) error {
	result := repo.db.WithContext(ctx).Delete(&model.ProductVariantModel{}, id)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete variant")
	}
	if result.RowsAffected == 0 {
		return repository.ErrVariantNotFound
	}

	return nil
}

func (repo *catalogRepository) DecrementStock(ctx context.Context, variantID int64) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.ProductVariantModel{}).
		Where("id = ? AND stock IS NOT NULL AND stock > 0", variantID).
		Update("stock", gorm.Expr("stock - 1"))
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "failed to decrement stock")
	}

	return result.RowsAffected == 1, nil
}

func toProductDomain(data *model.ProductModel) *entity.Product {
	product := &entity.Product{
		ID:          data.ID,
		Shop:        data.Shop,
		Title:       data.Title,
		Description: data.Description,
		ImageURL:    data.ImageURL,
		IsActive:    data.IsActive,
		Position:    data.Position,
		CreatedAt:   data.CreatedAt,
		Variants:    make([]*entity.ProductVariant, 0, len(data.Variants)),
	}
	for i := range data.Variants {
		product.Variants = append(product.Variants, toVariantDomain(&data.Variants[i]))
	}

	return product
}

func fromProductDomain(data *entity.Product) *model.ProductModel {
	productM := &model.ProductModel{
		ID:          data.ID,
		Shop:        data.Shop,
		Title:       data.Title,
		Description: data.Description,
		ImageURL:    data.ImageURL,
		IsActive:    data.IsActive,
		Position:    data.Position,
		CreatedAt:   data.CreatedAt,
	}
	for _, v := range data.Variants {
		productM.Variants = append(productM.Variants, *fromVariantDomain(v))
	}

	return productM
}

func toVariantDomain(data *model.ProductVariantModel) *entity.ProductVariant {
	return &entity.ProductVariant{
		ID:         data.ID,
		ProductID:  data.ProductID,
		Label:      data.Label,
		PointsCost: data.PointsCost,
		Stock:      data.Stock,
		IsActive:   data.IsActive,
		Position:   data.Position,
		CreatedAt:  data.CreatedAt,
	}
}

func fromVariantDomain(data *entity.ProductVariant) *model.ProductVariantModel {
	return &model.ProductVariantModel{
		ID:         data.ID,
		ProductID:  data.ProductID,
		Label:      data.Label,
		PointsCost: data.PointsCost,
		Stock:      data.Stock,
		IsActive:   data.IsActive,
		Position:   data.Position,
		CreatedAt:  data.CreatedAt,
	}
}
