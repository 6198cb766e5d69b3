package entity

import "time"

// Product belongs to one shop and exclusively owns its variants.
type Product struct {
	ID          int64
	Shop        string
	Title       string
	Description *string
	ImageURL    *string
	IsActive    bool
	Position    int
	CreatedAt   time.Time
	Variants    []*ProductVariant // Ordered by Position, then CreatedAt.
}

// ActiveVariants returns the variants a shopper may pick.
func (p *Product) ActiveVariants() []*ProductVariant {
	active := make([]*ProductVariant, 0, len(p.Variants))
	for _, v := range p.Variants {
		if v.IsActive {
			active = append(active, v)
		}
	}

	return active
}

// ProductVariant is one purchasable option of a product.
type ProductVariant struct {
	ID         int64
	ProductID  int64
	Label      string
	PointsCost int
	Stock      *int // Nil means unlimited.
	IsActive   bool
	Position   int
	CreatedAt  time.Time

	// Product is populated by lookups that feed redemption.
	Product *Product
}

// SoldOut reports whether a tracked stock has run out.
func (v *ProductVariant) SoldOut() bool {
	return v.Stock != nil && *v.Stock <= 0
}

// Redeemable reports whether the variant and its owning product are both active.
func (v *ProductVariant) Redeemable() bool {
	return v.IsActive && v.Product != nil && v.Product.IsActive
}
