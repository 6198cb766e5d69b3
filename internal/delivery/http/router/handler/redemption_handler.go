package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "pointshop/internal/delivery/context"
	"pointshop/internal/delivery/http/response"
	"pointshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// RedemptionHandler exchanges points for items.
type RedemptionHandler struct {
	uc       usecase.RedemptionUsecase
	notifier usecase.NotificationUsecase
	logger   *slog.Logger
}

func NewRedemptionHandler(uc usecase.RedemptionUsecase, notifier usecase.NotificationUsecase, logger *slog.Logger) *RedemptionHandler {
	return &RedemptionHandler{
		uc:       uc,
		notifier: notifier,
		logger:   logger,
	}
}

// Redeem places one order. Declines come back as their domain error so the
// error handler renders the stable code.
func (h *RedemptionHandler) Redeem(c echo.Context) error {
	var req redeemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	result, err := h.uc.Redeem(ctx, deliverycontext.GetIdentity(c), req.VariantID)
	if err != nil {
		return errors.WithStack(err)
	}

	h.notifier.OrderPlaced(ctx, result)

	return response.Success(c, http.StatusCreated, &redeemResponse{
		OrderID:      result.OrderID,
		Shop:         result.Shop,
		ProductTitle: result.ProductTitle,
		VariantLabel: result.VariantLabel,
		PointsSpent:  result.PointsSpent,
		Balance:      result.Balance,
	}, "Order placed")
}
