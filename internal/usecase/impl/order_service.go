package impl

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	deliverycontext "pointshop/internal/delivery/context"
	"pointshop/internal/domain/constants"
	"pointshop/internal/domain/entity"
	domainerrors "pointshop/internal/domain/errors"
	"pointshop/internal/domain/repository"
	"pointshop/internal/domain/service"
	"pointshop/internal/infra/metrics"
	"pointshop/internal/usecase"
	"pointshop/internal/util"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

var exportHeader = []string{
	"order_id",
	"created_at",
	"handle",
	"shop",
	"product_title",
	"variant_label",
	"points_spent",
	"status_label",
}

// Accepted layouts for datetime filter values, tried in order.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

const dateLayout = "2006-01-02"

type orderService struct {
	orderRepo repository.OrderRepository
	clock     service.Clock
	logger    *slog.Logger
}

// OrderServiceParams holds dependencies for OrderService, injected by Fx.
type OrderServiceParams struct {
	fx.In

	OrderRepo repository.OrderRepository
	Clock     service.Clock
	Logger    *slog.Logger
}

func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	return &orderService{
		orderRepo: params.OrderRepo,
		clock:     params.Clock,
		logger:    params.Logger,
	}
}

func (srv *orderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *orderService) ParseFilter(query usecase.OrderQuery) entity.OrderFilter {
	var filter entity.OrderFilter

	if status, ok := entity.ParseOrderStatus(strings.TrimSpace(query.Status)); ok {
		filter.Status = &status
	}

	loc := srv.clock.Location()
	filter.From = parseDateInput(query.DateFrom, false, loc)
	filter.To = parseDateInput(query.DateTo, true, loc)

	return filter
}

// parseDateInput reads a datetime, or a date expanded to the first or last
// instant of that day. Unparseable input yields nil.
func parseDateInput(raw string, endOfDay bool, loc *time.Location) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.Contains(raw, "T") {
		for _, layout := range datetimeLayouts {
			if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
				return &t
			}
		}

		return nil
	}

	day, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return nil
	}
	if endOfDay {
		day = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	return &day
}

func (srv *orderService) ListOrders(ctx context.Context, query usecase.OrderQuery) (*usecase.OrderPage, error) {
	filter := srv.ParseFilter(query)

	total, err := srv.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count orders")
	}

	pages := util.TotalPages(total, constants.OrdersPageSize)
	page := util.ClampPage(query.Page, pages)

	orders, err := srv.orderRepo.List(ctx, filter, util.Offset(page, constants.OrdersPageSize), constants.OrdersPageSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	return &usecase.OrderPage{
		Orders:     orders,
		Filter:     filter,
		Page:       page,
		TotalPages: pages,
		Total:      total,
	}, nil
}

func (srv *orderService) ExportOrders(ctx context.Context, query usecase.OrderQuery, w io.Writer) (int, error) {
	filter := srv.ParseFilter(query)
	loc := srv.clock.Location()

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return 0, errors.Wrap(err, "failed to write csv header")
	}

	rows := 0
	err := srv.orderRepo.Stream(ctx, filter, func(order *entity.OrderView) error {
		rows++

		return writer.Write([]string{
			strconv.FormatInt(order.ID, 10),
			order.CreatedAt.In(loc).Format(time.RFC3339),
			order.Handle,
			order.Shop,
			order.ProductTitle,
			order.VariantLabel,
			strconv.Itoa(order.PointsSpent),
			order.Status.Label(),
		})
	})
	if err != nil {
		return rows, errors.Wrap(err, "failed to export orders")
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return rows, errors.Wrap(err, "failed to flush csv")
	}

	metrics.OrdersExportedTotal.Add(float64(rows))
	srv.log(ctx).Info("Orders exported", slog.Int("rows", rows))

	return rows, nil
}

func (srv *orderService) ExportFilename(now time.Time) string {
	return "orders_" + now.UTC().Format("20060102_1504") + ".csv"
}

func (srv *orderService) UpdateStatus(ctx context.Context, orderID int64, status string) (*entity.Order, error) {
	parsed, ok := entity.ParseOrderStatus(strings.TrimSpace(status))
	if !ok {
		return nil, domainerrors.ErrInvalidStatus
	}

	order, err := srv.orderRepo.FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, domainerrors.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find order")
	}

	if err := srv.orderRepo.UpdateStatus(ctx, orderID, parsed); err != nil {
		return nil, errors.Wrap(err, "failed to update order status")
	}

	srv.log(ctx).Info("Order status changed",
		slog.Int64("orderID", orderID),
		slog.String("from", string(order.Status)),
		slog.String("to", string(parsed)),
	)
	order.Status = parsed

	return order, nil
}
