package impl

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"pointshop/internal/domain/entity"
	domainerrors "pointshop/internal/domain/errors"
	"pointshop/internal/domain/repository"
	mockRepo "pointshop/internal/mocks/repository"
	"pointshop/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// placeOrder stores an order created at the given instant.
func (env *testEnv) placeOrder(handle string, v *entity.ProductVariant, at time.Time) *entity.Order {
	env.t.Helper()
	env.store.SetNow(func() time.Time { return at })
	order := &entity.Order{Handle: handle, VariantID: v.ID, PointsSpent: v.PointsCost, Status: entity.OrderStatusNew}
	require.NoError(env.t, env.orders.Create(env.ctx, order))

	return order
}

func TestParseFilter(t *testing.T) {
	env := newTestEnv(t)
	srv := env.orderService()

	tests := []struct {
		name     string
		query    usecase.OrderQuery
		wantFrom *time.Time
		wantTo   *time.Time
		status   entity.OrderStatus
	}{
		{
			name: "empty query",
		},
		{
			name:     "date only expands to whole days",
			query:    usecase.OrderQuery{DateFrom: "2026-03-01", DateTo: "2026-03-02"},
			wantFrom: timePtr(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
			wantTo:   timePtr(time.Date(2026, 3, 2, 23, 59, 59, 999999999, time.UTC)),
		},
		{
			name:     "datetime without seconds",
			query:    usecase.OrderQuery{DateFrom: "2026-03-01T08:30"},
			wantFrom: timePtr(time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)),
		},
		{
			name:   "datetime with offset",
			query:  usecase.OrderQuery{DateTo: "2026-03-01T10:00:00+02:00"},
			wantTo: timePtr(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)),
		},
		{
			name:   "valid status",
			query:  usecase.OrderQuery{Status: "delivered"},
			status: entity.OrderStatusDelivered,
		},
		{
			name:  "garbage is ignored",
			query: usecase.OrderQuery{Status: "shipped", DateFrom: "yesterday", DateTo: "2026-13-45"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := srv.ParseFilter(tt.query)

			if tt.status == "" {
				assert.Nil(t, filter.Status)
			} else {
				require.NotNil(t, filter.Status)
				assert.Equal(t, tt.status, *filter.Status)
			}
			assertTimePtr(t, tt.wantFrom, filter.From)
			assertTimePtr(t, tt.wantTo, filter.To)
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func assertTimePtr(t *testing.T, want, got *time.Time) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got)

		return
	}
	require.NotNil(t, got)
	assert.True(t, want.Equal(*got), "want %s, got %s", want, got)
}

func TestParseFilter_UsesClockLocation(t *testing.T) {
	env := newTestEnv(t)
	loc := time.FixedZone("UTC+3", 3*60*60)
	env.clock.Loc = loc

	filter := env.orderService().ParseFilter(usecase.OrderQuery{DateFrom: "2026-03-01"})

	require.NotNil(t, filter.From)
	assert.True(t, filter.From.Equal(time.Date(2026, 2, 28, 21, 0, 0, 0, time.UTC)))
}

func TestListOrders_FiltersAndPages(t *testing.T) {
	env := newTestEnv(t)
	v := variant("Red", 10, nil)
	env.product("regular", "Hoodie", v)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := range 65 {
		env.placeOrder("@alice", v, base.Add(time.Duration(i)*time.Minute))
	}
	late := env.placeOrder("@bob", v, time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC))
	srv := env.orderService()

	page, err := srv.ListOrders(env.ctx, usecase.OrderQuery{Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 66, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Orders, 60)
	assert.Equal(t, late.ID, page.Orders[0].ID)
	assert.Equal(t, "Hoodie", page.Orders[0].ProductTitle)
	assert.Equal(t, "regular", page.Orders[0].Shop)

	page, err = srv.ListOrders(env.ctx, usecase.OrderQuery{Page: 99})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Orders, 6)

	page, err = srv.ListOrders(env.ctx, usecase.OrderQuery{DateFrom: "2026-03-05"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, "@bob", page.Orders[0].Handle)

	_, err = srv.UpdateStatus(env.ctx, late.ID, "cancelled")
	require.NoError(t, err)
	page, err = srv.ListOrders(env.ctx, usecase.OrderQuery{Status: "new", DateTo: "2026-03-05"})
	require.NoError(t, err)
	assert.EqualValues(t, 65, page.Total)
}

func TestListOrders_EmptyHasOnePage(t *testing.T) {
	env := newTestEnv(t)

	page, err := env.orderService().ListOrders(env.ctx, usecase.OrderQuery{Page: 0})

	require.NoError(t, err)
	assert.Empty(t, page.Orders)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
}

func TestExportOrders(t *testing.T) {
	env := newTestEnv(t)
	v := variant("Red, large", 80, nil)
	env.product("regular", `Hoodie "Classic"`, v)
	first := env.placeOrder("@alice", v, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	env.placeOrder("@bob", v, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	_, err := env.orderService().UpdateStatus(env.ctx, first.ID, "processing")
	require.NoError(t, err)

	var buf bytes.Buffer
	rows, err := env.orderService().ExportOrders(env.ctx, usecase.OrderQuery{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{
		"order_id", "created_at", "handle", "shop", "product_title", "variant_label", "points_spent", "status_label",
	}, records[0])
	assert.Equal(t, []string{
		"2", "2026-03-02T09:00:00Z", "@bob", "regular", `Hoodie "Classic"`, "Red, large", "80", "New",
	}, records[1])
	assert.Equal(t, "1", records[2][0])
	assert.Equal(t, "Processing", records[2][7])
}

func TestExportOrders_DeletedCatalogLeavesBlanks(t *testing.T) {
	env := newTestEnv(t)
	v := variant("Red", 80, nil)
	p := env.product("regular", "Hoodie", v)
	env.placeOrder("@alice", v, testNow)
	require.NoError(t, env.catalog.DeleteProduct(env.ctx, p.ID))

	var buf bytes.Buffer
	rows, err := env.orderService().ExportOrders(env.ctx, usecase.OrderQuery{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2026-03-14T12:00:00Z", "@alice", "", "", "", "80", "New"}, records[1])
}

func TestExportFilename(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2026, 3, 14, 15, 4, 59, 0, time.FixedZone("UTC+2", 2*60*60))

	assert.Equal(t, "orders_20260314_1304.csv", env.orderService().ExportFilename(now))
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	v := variant("Red", 80, nil)
	env.product("regular", "Hoodie", v)
	order := env.placeOrder("@alice", v, testNow)
	srv := env.orderService()

	updated, err := srv.UpdateStatus(env.ctx, order.ID, " delivered ")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, updated.Status)

	stored, err := env.orders.FindByID(env.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, stored.Status)

	_, err = srv.UpdateStatus(env.ctx, order.ID, "shipped")
	assert.Same(t, domainerrors.ErrInvalidStatus, err)

	_, err = srv.UpdateStatus(env.ctx, 999, "new")
	assert.Same(t, domainerrors.ErrOrderNotFound, err)
}

func TestOrderService_RepositoryFailures(t *testing.T) {
	orderRepo := mockRepo.NewMockOrderRepository(t)
	env := newTestEnv(t)
	srv := env.orderService()
	srv.orderRepo = orderRepo

	dbErr := errors.New("connection refused")
	orderRepo.On("Count", mock.Anything, mock.Anything).Return(int64(0), dbErr).Once()
	orderRepo.On("FindByID", mock.Anything, int64(7)).Return(nil, repository.ErrOrderNotFound).Once()
	orderRepo.On("FindByID", mock.Anything, int64(8)).Return(&entity.Order{ID: 8, Status: entity.OrderStatusNew}, nil).Once()
	orderRepo.On("UpdateStatus", mock.Anything, int64(8), entity.OrderStatusCancelled).Return(dbErr).Once()

	_, err := srv.ListOrders(env.ctx, usecase.OrderQuery{})
	assert.ErrorIs(t, err, dbErr)

	_, err = srv.UpdateStatus(env.ctx, 7, "cancelled")
	assert.Same(t, domainerrors.ErrOrderNotFound, err)

	_, err = srv.UpdateStatus(env.ctx, 8, "cancelled")
	assert.ErrorIs(t, err, dbErr)
}
