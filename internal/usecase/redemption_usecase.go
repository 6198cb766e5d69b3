package usecase

import (
	"context"

	"pointshop/internal/domain/entity"
)

// RedemptionResult describes a committed redemption.
type RedemptionResult struct {
	OrderID      int64
	Handle       string
	Shop         string
	ProductTitle string
	VariantLabel string
	PointsSpent  int
	// Balance is the user's balance right after the debit.
	Balance int
}

// RedemptionUsecase exchanges points for one unit of a variant.
type RedemptionUsecase interface {
	// Redeem either commits a debit, a stock decrement and a new order together
	// or changes nothing. Declines are returned as domain errors.
	Redeem(ctx context.Context, identity entity.Identity, variantID int64) (*RedemptionResult, error)
}

// NotificationUsecase announces redemptions to the operators.
type NotificationUsecase interface {
	// OrderPlaced formats result and hands it to the notifier. It never fails.
	OrderPlaced(ctx context.Context, result *RedemptionResult)
}
