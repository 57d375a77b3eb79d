package model

import (
	"time"

	"github.com/nimasrn/marketplace/pkg/apperr"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusInProgress, OrderStatusCancelled},
	OrderStatusInProgress: {OrderStatusCompleted, OrderStatusCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID                   int64           `json:"id"`
	CustomerName         string          `json:"customerName"`
	CustomerPhone        string          `json:"customerPhone,omitempty"`
	Status               OrderStatus     `json:"status"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	DeliveryAddress      string          `json:"deliveryAddress"`
	ManufacturerID       *int64          `json:"manufacturerId,omitempty"`
	AssignedTruckOwnerID *int64          `json:"assignedTruckOwnerId,omitempty"`
	Items                []*OrderItem    `json:"items,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

type OrderItem struct {
	ID         int64           `json:"id"`
	OrderID    int64           `json:"orderId"`
	ProductID  int64           `json:"productId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type OrderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type OrderCreateRequest struct {
	CustomerName    string             `json:"customerName"`
	CustomerPhone   string             `json:"customerPhone"`
	DeliveryAddress string             `json:"deliveryAddress"`
	ManufacturerID  *int64             `json:"manufacturerId"`
	Items           []OrderItemRequest `json:"items"`
}

func (p OrderCreateRequest) Validate() error {
	if err := required("customerName", p.CustomerName); err != nil {
		return err
	}
	if err := required("deliveryAddress", p.DeliveryAddress); err != nil {
		return err
	}
	if len(p.Items) == 0 {
		return apperr.New(apperr.KindValidation, "items cannot be empty")
	}
	for _, it := range p.Items {
		if it.ProductID <= 0 || it.Quantity <= 0 {
			return apperr.New(apperr.KindValidation, "each item needs a productId and a positive quantity")
		}
		if err := validQuantity(it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

type OrderUpdateRequest struct {
	CustomerName    *string `json:"customerName"`
	CustomerPhone   *string `json:"customerPhone"`
	DeliveryAddress *string `json:"deliveryAddress"`
}

type OrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

type OrderAssignRequest struct {
	TruckOwnerID int64 `json:"truckOwnerId"`
}

type OrderFilter struct {
	Status               *OrderStatus
	ManufacturerID       *int64
	AssignedTruckOwnerID *int64
	Page
}
