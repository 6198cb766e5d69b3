package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"pointshop/internal/delivery/http/response"
	"pointshop/internal/domain/service"
	"pointshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type OrderHandler struct {
	uc     usecase.OrderUsecase
	clock  service.Clock
	logger *slog.Logger
}

func NewOrderHandler(uc usecase.OrderUsecase, clock service.Clock, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		uc:     uc,
		clock:  clock,
		logger: logger,
	}
}

func orderQuery(c echo.Context) usecase.OrderQuery {
	return usecase.OrderQuery{
		Status:   c.QueryParam("status"),
		DateFrom: c.QueryParam("date_from"),
		DateTo:   c.QueryParam("date_to"),
		Page:     queryPage(c),
	}
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	page, err := h.uc.ListOrders(c.Request().Context(), orderQuery(c))
	if err != nil {
		return errors.WithStack(err)
	}

	orders := make([]*orderResponse, 0, len(page.Orders))
	for _, o := range page.Orders {
		orders = append(orders, newOrderResponse(o))
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"orders": orders,
		"page":   pageResponse{Page: page.Page, TotalPages: page.TotalPages, Total: page.Total},
	}, "")
}

// ExportOrders streams the filtered orders as a CSV download.
func (h *OrderHandler) ExportOrders(c echo.Context) error {
	filename := h.uc.ExportFilename(h.clock.Now())

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))

	// Nothing is committed until the CSV buffer first flushes, so early failures still render as JSON.
	if _, err := h.uc.ExportOrders(c.Request().Context(), orderQuery(c), res); err != nil {
		if !res.Committed {
			res.Header().Del(echo.HeaderContentDisposition)
		}

		return errors.Wrap(err, "order export interrupted")
	}

	return nil
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req statusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	order, err := h.uc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"id":           order.ID,
		"status":       order.Status,
		"status_label": order.Status.Label(),
	}, "Status updated")
}
