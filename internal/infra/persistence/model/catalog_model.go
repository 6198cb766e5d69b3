package model

import "time"

// ProductModel mirrors the 'products' table.
type ProductModel struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	Shop        string  `gorm:"column:shop_type;type:varchar(32);index;not null"`
	Title       string  `gorm:"type:varchar(255);not null"`
	Description *string `gorm:"type:text"`
	ImageURL    *string `gorm:"type:varchar(1024)"`
	IsActive    bool    `gorm:"not null"`
	Position    int     `gorm:"not null;default:0"`
	CreatedAt   time.Time

	Variants []ProductVariantModel `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (ProductModel) TableName() string {
	return "products"
}

// ProductVariantModel mirrors the 'product_variants' table. A NULL stock is unlimited.
type ProductVariantModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	ProductID  int64  `gorm:"index;not null"`
	Label      string `gorm:"type:varchar(255);not null"`
	PointsCost int    `gorm:"not null"`
	Stock      *int
	IsActive   bool `gorm:"not null"`
	Position   int  `gorm:"not null;default:0"`
	CreatedAt  time.Time
}

func (ProductVariantModel) TableName() string {
	return "product_variants"
}
