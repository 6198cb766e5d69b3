package entity

import "time"

type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusProcessing,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusNew, OrderStatusProcessing, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}

	return false
}

// Label is the human readable status used in exports.
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusNew:
		return "New"
	case OrderStatusProcessing:
		return "Processing"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// ParseOrderStatus returns ok=false for anything outside the enum.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	status := OrderStatus(raw)

	return status, status.Valid()
}

// Order records one redemption. PointsSpent is the variant cost at redemption time.
type Order struct {
	ID          int64
	Handle      string
	VariantID   int64
	PointsSpent int
	Status      OrderStatus
	CreatedAt   time.Time
}

// OrderView is an order joined with its catalog data. Catalog fields are
// empty when the variant or product has since been deleted.
type OrderView struct {
	Order
	Shop         string
	ProductTitle string
	VariantLabel string
}

// OrderFilter narrows order listings and exports. Zero values disable a criterion.
type OrderFilter struct {
	Status *OrderStatus
	From   *time.Time
	To     *time.Time
}
