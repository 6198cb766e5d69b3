package impl

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	deliverycontext "pointshop/internal/delivery/context"
	"pointshop/internal/domain/entity"
	"pointshop/internal/domain/service"
	"pointshop/internal/usecase"

	"go.uber.org/fx"
)

type notificationService struct {
	notifier service.Notifier
	logger   *slog.Logger
}

// NotificationServiceParams holds dependencies for NotificationService, injected by Fx.
type NotificationServiceParams struct {
	fx.In

	Notifier service.Notifier
	Logger   *slog.Logger
}

func NewNotificationService(params NotificationServiceParams) usecase.NotificationUsecase {
	return &notificationService{
		notifier: params.Notifier,
		logger:   params.Logger,
	}
}

func (srv *notificationService) OrderPlaced(ctx context.Context, result *usecase.RedemptionResult) {
	if result == nil {
		return
	}

	srv.notifier.Notify(ctx, FormatOrderMessage(result))
	deliverycontext.GetLoggerOrDefault(ctx, srv.logger).Debug("Order notification queued", slog.Int64("orderID", result.OrderID))
}

// FormatOrderMessage renders the Telegram HTML announcement of a new order.
func FormatOrderMessage(result *usecase.RedemptionResult) string {
	var b strings.Builder
	b.WriteString("<b>New order</b>\n")
	fmt.Fprintf(&b, "User: %s\n", html.EscapeString(result.Handle))
	fmt.Fprintf(&b, "Shop: %s\n", html.EscapeString(entity.ShopLabel(result.Shop)))
	fmt.Fprintf(&b, "Product: %s\n", html.EscapeString(result.ProductTitle))
	fmt.Fprintf(&b, "Variant: %s\n", html.EscapeString(result.VariantLabel))
	fmt.Fprintf(&b, "Spent: %d points\n", result.PointsSpent)
	fmt.Fprintf(&b, "Order ID: %d", result.OrderID)

	return b.String()
}
