package postgres

import (
	"context"

	"pointshop/internal/domain/entity"
	"pointshop/internal/domain/repository"
	"pointshop/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type shopSettingsRepository struct {
	db *gorm.DB
}

func NewShopSettingsRepository(db *gorm.DB) repository.ShopSettingsRepository {
	return &shopSettingsRepository{db: db}
}

func (repo *shopSettingsRepository) FindByShop(ctx context.Context, shop string) (*entity.ShopSettings, error) {
	var settingsM model.ShopSettingsModel
	err := repo.db.WithContext(ctx).Where("shop_type = ?", shop).First(&settingsM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrShopSettingsNotFound
		}

		return nil, errors.Wrap(err, "failed to find shop settings")
	}

	return toShopSettingsDomain(&settingsM), nil
}

func (repo *shopSettingsRepository) List(ctx context.Context) ([]*entity.ShopSettings, error) {
	var settingsMs []model.ShopSettingsModel
	if err := repo.db.WithContext(ctx).Order("id ASC").Find(&settingsMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list shop settings")
	}

	settings := make([]*entity.ShopSettings, 0, len(settingsMs))
	for i := range settingsMs {
		settings = append(settings, toShopSettingsDomain(&settingsMs[i]))
	}

	return settings, nil
}

func (repo *shopSettingsRepository) Save(ctx context.Context, settings *entity.ShopSettings) error {
	settingsM := &model.ShopSettingsModel{
		Shop:     settings.Shop,
		OpensAt:  settings.OpensAt,
		ClosesAt: settings.ClosesAt,
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shop_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"opens_at", "closes_at", "updated_at"}),
		}).
		Create(settingsM).Error
	if err != nil {
		return errors.Wrap(err, "failed to save shop settings")
	}

	settings.UpdatedAt = settingsM.UpdatedAt

	return nil
}

func (repo *shopSettingsRepository) EnsureShops(ctx context.Context, shops []string) error {
	if len(shops) == 0 {
		return nil
	}

	rows := make([]model.ShopSettingsModel, 0, len(shops))
	for _, shop := range shops {
		rows = append(rows, model.ShopSettingsModel{Shop: shop})
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "shop_type"}}, DoNothing: true}).
		Create(&rows).Error
	if err != nil {
		return errors.Wrap(err, "failed to ensure shop settings")
	}

	return nil
}

type allowlistRepository struct {
	db *gorm.DB
}

func NewAllowlistRepository(db *gorm.DB) repository.AllowlistRepository {
	return &allowlistRepository{db: db}
}

func (repo *allowlistRepository) Exists(ctx context.Context, handle, shop string) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.AllowlistModel{}).
		Where("tg_username = ? AND shop_type = ?", handle, shop).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check allowlist")
	}

	return count > 0, nil
}

func (repo *allowlistRepository) Create(ctx context.Context, entry *entity.AllowlistEntry) error {
	entryM := &model.AllowlistModel{Handle: entry.Handle, Shop: entry.Shop}
	if err := repo.db.WithContext(ctx).Create(entryM).Error; err != nil {
		return errors.Wrap(err, "failed to create allowlist entry")
	}

	entry.ID = entryM.ID
	entry.CreatedAt = entryM.CreatedAt

	return nil
}

func (repo *allowlistRepository) List(ctx context.Context) ([]*entity.AllowlistEntry, error) {
	var entryMs []model.AllowlistModel
	if err := repo.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&entryMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list allowlist")
	}

	entries := make([]*entity.AllowlistEntry, 0, len(entryMs))
	for _, entryM := range entryMs {
		entries = append(entries, &entity.AllowlistEntry{
			ID:        entryM.ID,
			Handle:    entryM.Handle,
			Shop:      entryM.Shop,
			CreatedAt: entryM.CreatedAt,
		})
	}

	return entries, nil
}

func (repo *allowlistRepository) ListHandles(ctx context.Context, shop string) ([]string, error) {
	var handles []string
	err := repo.db.WithContext(ctx).
		Model(&model.AllowlistModel{}).
		Where("shop_type = ?", shop).
		Pluck("tg_username", &handles).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list allowlist handles")
	}

	return handles, nil
}

func (repo *allowlistRepository) Delete(ctx context.Context, id int64) error {
	result := repo.db.WithContext(ctx).Delete(&model.AllowlistModel{}, id)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete allowlist entry")
	}
	if result.RowsAffected == 0 {
		return repository.ErrAllowlistEntryNotFound
	}

	return nil
}

func (repo *allowlistRepository) DeleteByShop(ctx context.Context, shop string) (int64, error) {
	result := repo.db.WithContext(ctx).Where("shop_type = ?", shop).Delete(&model.AllowlistModel{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to clear allowlist")
	}

	return result.RowsAffected, nil
}

func toShopSettingsDomain(data *model.ShopSettingsModel) *entity.ShopSettings {
	return &entity.ShopSettings{
		ID:        data.ID,
		Shop:      data.Shop,
		OpensAt:   data.OpensAt,
		ClosesAt:  data.ClosesAt,
		UpdatedAt: data.UpdatedAt,
	}
}
