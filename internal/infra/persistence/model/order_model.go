package model

import "time"

// OrderModel mirrors the 'orders' table. variant_id carries no foreign key
// so orders outlive catalog deletions.
type OrderModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Handle      string    `gorm:"column:tg_username;type:varchar(64);index;not null"`
	VariantID   int64     `gorm:"index;not null"`
	PointsSpent int       `gorm:"not null"`
	Status      string    `gorm:"type:varchar(32);not null;default:new;index"`
	CreatedAt   time.Time `gorm:"index"`
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderRow is the result shape of the orders/variants/products outer join.
type OrderRow struct {
	OrderModel
	Shop         *string
	ProductTitle *string
	VariantLabel *string
}

// AllModels lists every table for migrations.
func AllModels() []any {
	return []any{
		&UserModel{},
		&ShopSettingsModel{},
		&AllowlistModel{},
		&ProductModel{},
		&ProductVariantModel{},
		&OrderModel{},
	}
}
