package model

import "time"

// ShopSettingsModel mirrors the 'shop_settings' table, one row per shop.
type ShopSettingsModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Shop      string `gorm:"column:shop_type;type:varchar(32);uniqueIndex;not null"`
	OpensAt   *time.Time
	ClosesAt  *time.Time
	UpdatedAt time.Time
}

func (ShopSettingsModel) TableName() string {
	return "shop_settings"
}

// AllowlistModel mirrors the 'allowlist' table. The (handle, shop) pair is
// kept unique by the application, not by an index.
type AllowlistModel struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Handle    string `gorm:"column:tg_username;type:varchar(64);index:idx_allowlist_handle_shop;not null"`
	Shop      string `gorm:"column:shop_type;type:varchar(32);index:idx_allowlist_handle_shop;not null"`
	CreatedAt time.Time
}

func (AllowlistModel) TableName() string {
	return "allowlist"
}
