package entity

import "time"

// ShopSettings holds the opening window of one shop.
type ShopSettings struct {
	ID        int64
	Shop      string
	OpensAt   *time.Time
	ClosesAt  *time.Time
	UpdatedAt time.Time
}

// IsOpen reports whether now falls within [OpensAt, ClosesAt].
// A shop with either bound unset is closed.
func (s *ShopSettings) IsOpen(now time.Time) bool {
	if s == nil || s.OpensAt == nil || s.ClosesAt == nil {
		return false
	}

	return !now.Before(*s.OpensAt) && !now.After(*s.ClosesAt)
}

// AllowlistEntry grants Handle access to Shop.
type AllowlistEntry struct {
	ID        int64
	Handle    string
	Shop      string
	CreatedAt time.Time
}

// ShopLabel returns the display name of a shop used in notifications and reports.
func ShopLabel(shop string) string {
	switch shop {
	case "premium":
		return "Premium"
	case "regular":
		return "Regular"
	default:
		return shop
	}
}
