package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/pkg/apperr"
	"github.com/shopspring/decimal"
)

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context, f model.OrderFilter) ([]*model.Order, int64, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	UpdateStatus(ctx context.Context, id int64, from, to model.OrderStatus) error
	Delete(ctx context.Context, id int64) error
}

type ProductBatchGetter interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Product, error)
}

type EmployeeGetter interface {
	GetByID(ctx context.Context, id int64) (*model.Employee, error)
}

type OrderStatusChanged struct {
	OrderID int64             `json:"orderId"`
	From    model.OrderStatus `json:"from"`
	To      model.OrderStatus `json:"to"`
}

type OrderService struct {
	tx        Transactor
	orders    OrderRepository
	products  ProductBatchGetter
	employees EmployeeGetter
	audit     AuditWriter
	events    Emitter
}

func NewOrderService(tx Transactor, orders OrderRepository, products ProductBatchGetter, employees EmployeeGetter, audit AuditWriter, emitter Emitter) *OrderService {
	return &OrderService{
		tx:        tx,
		orders:    orders,
		products:  products,
		employees: employees,
		audit:     audit,
		events:    orNopEmitter(emitter),
	}
}

// Create prices every item from the current product price. When no
// manufacturer is given and all products share one, the order is attributed
// to it.
func (s *OrderService) Create(ctx context.Context, req model.OrderCreateRequest) (*model.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	order := &model.Order{
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		Status:          model.OrderStatusPending,
		ManufacturerID:  req.ManufacturerID,
		TotalAmount:     decimal.Zero,
	}
	manufacturers := map[int64]struct{}{}
	for _, it := range req.Items {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, ErrUnknownProduct.With(fmt.Sprintf("product %d", it.ProductID))
		}
		if !p.IsActive {
			return nil, ErrProductUnavailable.With(p.Name)
		}
		if req.ManufacturerID != nil && p.ManufacturerID != *req.ManufacturerID {
			return nil, apperr.Newf(apperr.KindValidation, "product %d does not belong to manufacturer %d", p.ID, *req.ManufacturerID)
		}
		manufacturers[p.ManufacturerID] = struct{}{}

		line := p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		if line.GreaterThan(model.MaxAmount) || order.TotalAmount.Add(line).GreaterThan(model.MaxAmount) {
			return nil, ErrAmountTooLarge.With(fmt.Sprintf("order total cannot exceed %s", model.MaxAmount.StringFixed(2)))
		}
		order.Items = append(order.Items, &model.OrderItem{
			ProductID:  p.ID,
			Quantity:   it.Quantity,
			UnitPrice:  p.Price,
			TotalPrice: line,
		})
		order.TotalAmount = order.TotalAmount.Add(line)
	}
	if order.ManufacturerID == nil && len(manufacturers) == 1 {
		for id := range manufacturers {
			order.ManufacturerID = &id
		}
	}

	return s.orders.Create(ctx, order)
}

func (s *OrderService) Get(ctx context.Context, id int64) (*model.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) List(ctx context.Context, f model.OrderFilter) ([]*model.Order, int64, error) {
	return s.orders.List(ctx, f)
}

// Update edits customer details of a pending order.
func (s *OrderService) Update(ctx context.Context, id int64, req model.OrderUpdateRequest) (*model.Order, error) {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order.Status != model.OrderStatusPending {
			return ErrOrderItemsImmutable
		}

		fields := map[string]any{}
		if req.CustomerName != nil {
			name := strings.TrimSpace(*req.CustomerName)
			if name == "" {
				return apperr.New(apperr.KindValidation, "customerName cannot be empty")
			}
			fields["customer_name"] = name
		}
		if req.CustomerPhone != nil {
			fields["customer_phone"] = strings.TrimSpace(*req.CustomerPhone)
		}
		if req.DeliveryAddress != nil {
			fields["delivery_address"] = strings.TrimSpace(*req.DeliveryAddress)
		}
		if len(fields) == 0 {
			return nil
		}
		return s.orders.UpdateFields(ctx, id, fields)
	})
	if err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id int64, next model.OrderStatus) (*model.Order, error) {
	if !next.Valid() {
		return nil, apperr.Newf(apperr.KindValidation, "unknown order status %q", next)
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, ErrInvalidOrderStatus.With(fmt.Sprintf("%s to %s", order.Status, next))
	}
	if err := s.orders.UpdateStatus(ctx, id, order.Status, next); err != nil {
		return nil, err
	}

	s.events.Emit(ctx, events.OrderStatusChanged, 0, OrderStatusChanged{OrderID: id, From: order.Status, To: next})
	order.Status = next
	return order, nil
}

// Assign hands an open order to a truck-owner employee.
func (s *OrderService) Assign(ctx context.Context, actorID *int64, id, truckOwnerID int64) (*model.Order, error) {
	if truckOwnerID <= 0 {
		return nil, apperr.New(apperr.KindValidation, "truckOwnerId is required")
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order.Status == model.OrderStatusCompleted || order.Status == model.OrderStatusCancelled {
			return ErrInvalidOrderStatus.With("order is closed")
		}

		owner, err := s.employees.GetByID(ctx, truckOwnerID)
		if err != nil {
			return err
		}
		if !owner.IsTruckOwner() {
			return ErrNotTruckOwner
		}

		if err := s.orders.UpdateFields(ctx, id, map[string]any{"assigned_truck_owner_id": truckOwnerID}); err != nil {
			return err
		}
		return audit(ctx, s.audit, actorID, model.AuditOrderAssign, "order", id, "truck owner "+strconv.FormatInt(truckOwnerID, 10))
	})
	if err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) Delete(ctx context.Context, id int64) error {
	return s.orders.Delete(ctx, id)
}
