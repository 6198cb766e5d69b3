package usecase

import (
	"context"
	"io"
	"time"

	"pointshop/internal/domain/entity"
)

// OrderQuery carries raw filter input as typed by an admin.
type OrderQuery struct {
	Status   string
	DateFrom string
	DateTo   string
	Page     int
}

type OrderPage struct {
	Orders     []*entity.OrderView
	Filter     entity.OrderFilter
	Page       int
	TotalPages int
	Total      int64
}

type OrderUsecase interface {
	// ParseFilter drops any criterion it cannot understand.
	ParseFilter(query OrderQuery) entity.OrderFilter
	ListOrders(ctx context.Context, query OrderQuery) (*OrderPage, error)
	// ExportOrders writes every order matching query as CSV and returns the row count.
	ExportOrders(ctx context.Context, query OrderQuery, w io.Writer) (int, error)
	ExportFilename(now time.Time) string
	UpdateStatus(ctx context.Context, orderID int64, status string) (*entity.Order, error)
}
