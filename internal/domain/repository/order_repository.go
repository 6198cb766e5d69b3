package repository

import (
	"context"
	"errors"

	"pointshop/internal/domain/entity"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error

	FindByID(ctx context.Context, id int64) (*entity.Order, error)

	UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus) error

	// List returns matching orders newest first.
	List(ctx context.Context, filter entity.OrderFilter, offset, limit int) ([]*entity.OrderView, error)

	Count(ctx context.Context, filter entity.OrderFilter) (int64, error)

	// Stream visits every matching order newest first without paging.
	// Iteration stops at the first error returned by fn.
	Stream(ctx context.Context, filter entity.OrderFilter, fn func(*entity.OrderView) error) error
}
