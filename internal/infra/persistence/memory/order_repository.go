package memory

import (
	"cmp"
	"context"
	"slices"

	"pointshop/internal/domain/entity"
	"pointshop/internal/domain/repository"
)

type orderRepository struct {
	scope scope
}

func (repo *orderRepository) Create(_ context.Context, order *entity.Order) error {
	return repo.scope.write(func(d *dataset) error {
		d.seq.order++
		order.ID = d.seq.order
		order.CreatedAt = repo.scope.now()
		d.orders[order.ID] = *order

		return nil
	})
}

func (repo *orderRepository) FindByID(_ context.Context, id int64) (*entity.Order, error) {
	var order entity.Order
	err := repo.scope.read(func(d *dataset) error {
		o, ok := d.orders[id]
		if !ok {
			return repository.ErrOrderNotFound
		}
		order = o

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (repo *orderRepository) UpdateStatus(_ context.Context, id int64, status entity.OrderStatus) error {
	return repo.scope.write(func(d *dataset) error {
		o, ok := d.orders[id]
		if !ok {
			return repository.ErrOrderNotFound
		}
		o.Status = status
		d.orders[id] = o

		return nil
	})
}

func matchesOrder(o entity.Order, filter entity.OrderFilter) bool {
	if filter.Status != nil && o.Status != *filter.Status {
		return false
	}
	if filter.From != nil && o.CreatedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && o.CreatedAt.After(*filter.To) {
		return false
	}

	return true
}

// views snapshots matching orders, newest first, joined with catalog data.
func (repo *orderRepository) views(filter entity.OrderFilter) ([]*entity.OrderView, error) {
	var views []*entity.OrderView
	err := repo.scope.read(func(d *dataset) error {
		for _, o := range d.orders {
			if !matchesOrder(o, filter) {
				continue
			}
			view := &entity.OrderView{Order: o}
			if v, ok := d.variants[o.VariantID]; ok {
				view.VariantLabel = v.Label
				if p, ok := d.products[v.ProductID]; ok {
					view.Shop = p.Shop
					view.ProductTitle = p.Title
				}
			}
			views = append(views, view)
		}

		return nil
	})
	slices.SortFunc(views, func(a, b *entity.OrderView) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(b.ID, a.ID)
	})

	return views, err
}

func (repo *orderRepository) List(_ context.Context, filter entity.OrderFilter, offset, limit int) ([]*entity.OrderView, error) {
	views, err := repo.views(filter)
	if err != nil {
		return nil, err
	}

	return page(views, offset, limit), nil
}

func (repo *orderRepository) Count(_ context.Context, filter entity.OrderFilter) (int64, error) {
	var count int64
	err := repo.scope.read(func(d *dataset) error {
		for _, o := range d.orders {
			if matchesOrder(o, filter) {
				count++
			}
		}

		return nil
	})

	return count, err
}

// Stream releases the store lock before visiting, so fn may be slow.
func (repo *orderRepository) Stream(ctx context.Context, filter entity.OrderFilter, fn func(*entity.OrderView) error) error {
	views, err := repo.views(filter)
	if err != nil {
		return err
	}

	for _, view := range views {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(view); err != nil {
			return err
		}
	}

	return nil
}
