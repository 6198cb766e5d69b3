package postgres

import (
	"context"

	"pointshop/internal/domain/entity"
	"pointshop/internal/domain/repository"
	"pointshop/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const orderViewColumns = "orders.id, orders.tg_username, orders.variant_id, orders.points_spent, orders.status, orders.created_at, " +
	"products.shop_type AS shop, products.title AS product_title, product_variants.label AS variant_label"

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (repo *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	orderM := &model.OrderModel{
		Handle:      order.Handle,
		VariantID:   order.VariantID,
		PointsSpent: order.PointsSpent,
		Status:      string(order.Status),
	}
	if err := repo.db.WithContext(ctx).Create(orderM).Error; err != nil {
		return errors.Wrap(err, "failed to create order")
	}

	order.ID = orderM.ID
	order.CreatedAt = orderM.CreatedAt

	return nil
}

func (repo *orderRepository) FindByID(ctx context.Context, id int64) (*entity.Order, error) {
	var orderM model.OrderModel
	if err := repo.db.WithContext(ctx).First(&orderM, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	return toOrderDomain(&orderM), nil
}

func (repo *orderRepository) UpdateStatus(ctx context.Context, id int64, status entity.OrderStatus) error {
	result := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update order status")
	}
	if result.RowsAffected == 0 {
		return repository.ErrOrderNotFound
	}

	return nil
}

// viewQuery joins orders to the catalog with outer joins so orders of
// deleted variants still appear.
func (repo *orderRepository) viewQuery(ctx context.Context, filter entity.OrderFilter) *gorm.DB {
	query := repo.db.WithContext(ctx).
		Table("orders").
		Select(orderViewColumns).
		Joins("LEFT JOIN product_variants ON product_variants.id = orders.variant_id").
		Joins("LEFT JOIN products ON products.id = product_variants.product_id")

	return applyOrderFilter(query, filter).Order("orders.created_at DESC").Order("orders.id DESC")
}

func applyOrderFilter(query *gorm.DB, filter entity.OrderFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("orders.status = ?", string(*filter.Status))
	}
	if filter.From != nil {
		query = query.Where("orders.created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("orders.created_at <= ?", *filter.To)
	}

	return query
}

func (repo *orderRepository) List(ctx context.Context, filter entity.OrderFilter, offset, limit int) ([]*entity.OrderView, error) {
	var rows []model.OrderRow
	if err := repo.viewQuery(ctx, filter).Offset(offset).Limit(limit).Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	views := make([]*entity.OrderView, 0, len(rows))
	for i := range rows {
		views = append(views, toOrderViewDomain(&rows[i]))
	}

	return views, nil
}

func (repo *orderRepository) Count(ctx context.Context, filter entity.OrderFilter) (int64, error) {
	var count int64
	query := applyOrderFilter(repo.db.WithContext(ctx).Model(&model.OrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count orders")
	}

	return count, nil
}

func (repo *orderRepository) Stream(ctx context.Context, filter entity.OrderFilter, fn func(*entity.OrderView) error) error {
	query := repo.viewQuery(ctx, filter)

	rows, err := query.Rows()
	if err != nil {
		return errors.Wrap(err, "failed to stream orders")
	}
	defer rows.Close()

	for rows.Next() {
		var row model.OrderRow
		if err := query.ScanRows(rows, &row); err != nil {
			return errors.Wrap(err, "failed to scan order row")
		}
		if err := fn(toOrderViewDomain(&row)); err != nil {
			return err
		}
	}

	return errors.Wrap(rows.Err(), "failed to iterate orders")
}

func toOrderDomain(data *model.OrderModel) *entity.Order {
	return &entity.Order{
		ID:          data.ID,
		Handle:      data.Handle,
		VariantID:   data.VariantID,
		PointsSpent: data.PointsSpent,
		Status:      entity.OrderStatus(data.Status),
		CreatedAt:   data.CreatedAt,
	}
}

func toOrderViewDomain(data *model.OrderRow) *entity.OrderView {
	view := &entity.OrderView{Order: *toOrderDomain(&data.OrderModel)}
	if data.Shop != nil {
		view.Shop = *data.Shop
	}
	if data.ProductTitle != nil {
		view.ProductTitle = *data.ProductTitle
	}
	if data.VariantLabel != nil {
		view.VariantLabel = *data.VariantLabel
	}

	return view
}
