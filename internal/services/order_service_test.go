package services

import (
	"context"
	"testing"

	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/internal/repository"
	"github.com/nimasrn/marketplace/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderMocks struct {
	orders    *MockOrderRepository
	products  *MockProductBatchGetter
	employees *MockEmployeeGetter
	events    *recordingEmitter
}

func newOrderService() (*OrderService, orderMocks) {
	m := orderMocks{
		orders:    new(MockOrderRepository),
		products:  new(MockProductBatchGetter),
		employees: new(MockEmployeeGetter),
		events:    &recordingEmitter{},
	}
	return NewOrderService(inlineTx{}, m.orders, m.products, m.employees, nil, m.events), m
}

func TestOrderService_Create(t *testing.T) {
	catalog := map[int64]*model.Product{
		1: {ID: 1, ManufacturerID: 9, Name: "OPC 53", Price: dec("380.50"), IsActive: true},
		2: {ID: 2, ManufacturerID: 9, Name: "TMT bar", Price: dec("62"), IsActive: true},
	}

	t.Run("prices items and infers the manufacturer", func(t *testing.T) {
		svc, m := newOrderService()
		m.products.On("GetByIDs", mock.Anything, []int64{1, 2}).Return(catalog, nil)
		m.orders.On("Create", mock.Anything, mock.MatchedBy(func(o *model.Order) bool {
			return o.Status == model.OrderStatusPending &&
				o.ManufacturerID != nil && *o.ManufacturerID == 9 &&
				o.TotalAmount.Equal(dec("885")) &&
				len(o.Items) == 2 &&
				o.Items[0].TotalPrice.Equal(dec("761"))
		})).Return(&model.Order{ID: 77}, nil)

		order, err := svc.Create(context.Background(), model.OrderCreateRequest{
			CustomerName:    " Ravi ",
			DeliveryAddress: "Plot 4, Guntur",
			Items: []model.OrderItemRequest{
				{ProductID: 1, Quantity: 2},
				{ProductID: 2, Quantity: 2},
			},
		})
		require.NoError(t, err)
		assert.EqualValues(t, 77, order.ID)
		m.orders.AssertExpectations(t)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, m := newOrderService()
		m.products.On("GetByIDs", mock.Anything, []int64{5}).Return(map[int64]*model.Product{}, nil)

		_, err := svc.Create(context.Background(), model.OrderCreateRequest{
			CustomerName:    "Ravi",
			DeliveryAddress: "Guntur",
			Items:           []model.OrderItemRequest{{ProductID: 5, Quantity: 1}},
		})
		assert.ErrorIs(t, err, ErrUnknownProduct)
		m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("product of another manufacturer", func(t *testing.T) {
		svc, m := newOrderService()
		m.products.On("GetByIDs", mock.Anything, []int64{1}).Return(catalog, nil)

		_, err := svc.Create(context.Background(), model.OrderCreateRequest{
			CustomerName:    "Ravi",
			DeliveryAddress: "Guntur",
			ManufacturerID:  ptr(int64(4)),
			Items:           []model.OrderItemRequest{{ProductID: 1, Quantity: 1}},
		})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("empty items", func(t *testing.T) {
		svc, _ := newOrderService()
		_, err := svc.Create(context.Background(), model.OrderCreateRequest{CustomerName: "Ravi", DeliveryAddress: "Guntur"})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("quantity above int column", func(t *testing.T) {
		svc, m := newOrderService()
		_, err := svc.Create(context.Background(), model.OrderCreateRequest{
			CustomerName:    "Ravi",
			DeliveryAddress: "Guntur",
			Items:           []model.OrderItemRequest{{ProductID: 1, Quantity: 3_000_000_000}},
		})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		m.products.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
	})

	t.Run("total above numeric column", func(t *testing.T) {
		svc, m := newOrderService()
		m.products.On("GetByIDs", mock.Anything, []int64{3}).Return(map[int64]*model.Product{
			3: {ID: 3, ManufacturerID: 9, Name: "Excavator", Price: dec("4500000"), IsActive: true},
		}, nil)

		_, err := svc.Create(context.Background(), model.OrderCreateRequest{
			CustomerName:    "Ravi",
			DeliveryAddress: "Guntur",
			Items:           []model.OrderItemRequest{{ProductID: 3, Quantity: 1_000_000}},
		})
		assert.ErrorIs(t, err, ErrAmountTooLarge)
		m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	t.Run("pending to in progress", func(t *testing.T) {
		svc, m := newOrderService()
		m.orders.On("GetByID", mock.Anything, int64(3)).Return(&model.Order{ID: 3, Status: model.OrderStatusPending}, nil)
		m.orders.On("UpdateStatus", mock.Anything, int64(3), model.OrderStatusPending, model.OrderStatusInProgress).Return(nil)

		order, err := svc.UpdateStatus(context.Background(), 3, model.OrderStatusInProgress)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusInProgress, order.Status)

		emitted := m.events.ofType(events.OrderStatusChanged)
		require.Len(t, emitted, 1)
		assert.Equal(t, OrderStatusChanged{OrderID: 3, From: model.OrderStatusPending, To: model.OrderStatusInProgress}, emitted[0].Payload)
	})

	t.Run("completed is final", func(t *testing.T) {
		svc, m := newOrderService()
		m.orders.On("GetByID", mock.Anything, int64(3)).Return(&model.Order{ID: 3, Status: model.OrderStatusCompleted}, nil)

		_, err := svc.UpdateStatus(context.Background(), 3, model.OrderStatusCancelled)
		assert.ErrorIs(t, err, ErrInvalidOrderStatus)
		m.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Empty(t, m.events.ofType(events.OrderStatusChanged))
	})

	t.Run("unknown status", func(t *testing.T) {
		svc, _ := newOrderService()
		_, err := svc.UpdateStatus(context.Background(), 3, "SHIPPED")
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}

func TestOrderService_Update(t *testing.T) {
	svc, m := newOrderService()
	m.orders.On("GetByID", mock.Anything, int64(8)).Return(&model.Order{ID: 8, Status: model.OrderStatusInProgress}, nil)

	name := "Someone Else"
	_, err := svc.Update(context.Background(), 8, model.OrderUpdateRequest{CustomerName: &name})
	assert.ErrorIs(t, err, ErrOrderItemsImmutable)
}

func TestOrderService_Assign(t *testing.T) {
	t.Run("truck owner", func(t *testing.T) {
		svc, m := newOrderService()
		m.orders.On("GetByID", mock.Anything, int64(5)).Return(&model.Order{ID: 5, Status: model.OrderStatusPending}, nil)
		m.employees.On("GetByID", mock.Anything, int64(12)).Return(&model.Employee{ID: 12, Role: model.RoleTruckOwner}, nil)
		m.orders.On("UpdateFields", mock.Anything, int64(5), map[string]any{"assigned_truck_owner_id": int64(12)}).Return(nil)

		_, err := svc.Assign(context.Background(), nil, 5, 12)
		require.NoError(t, err)
		m.orders.AssertExpectations(t)
	})

	t.Run("driver is refused", func(t *testing.T) {
		svc, m := newOrderService()
		m.orders.On("GetByID", mock.Anything, int64(5)).Return(&model.Order{ID: 5, Status: model.OrderStatusPending}, nil)
		m.employees.On("GetByID", mock.Anything, int64(13)).Return(&model.Employee{ID: 13, Role: model.RoleDriver}, nil)

		_, err := svc.Assign(context.Background(), nil, 5, 13)
		assert.ErrorIs(t, err, ErrNotTruckOwner)
	})

	t.Run("closed order", func(t *testing.T) {
		svc, m := newOrderService()
		m.orders.On("GetByID", mock.Anything, int64(5)).Return(&model.Order{ID: 5, Status: model.OrderStatusCancelled}, nil)

		_, err := svc.Assign(context.Background(), nil, 5, 12)
		assert.ErrorIs(t, err, ErrInvalidOrderStatus)
	})

	t.Run("missing order", func(t *testing.T) {
		svc, m := newOrderService()
		m.orders.On("GetByID", mock.Anything, int64(6)).Return(nil, repository.ErrOrderNotFound)

		_, err := svc.Assign(context.Background(), nil, 6, 12)
		assert.ErrorIs(t, err, repository.ErrOrderNotFound)
	})
}
