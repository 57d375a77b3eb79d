package repository

import (
	"time"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/shopspring/decimal"
)

type OrderEntity struct {
	ID                   int64              `db:"id"                      gorm:"primaryKey;autoIncrement;column:id"`
	CustomerName         string             `db:"customer_name"           gorm:"column:customer_name;not null"`
	CustomerPhone        string             `db:"customer_phone"          gorm:"column:customer_phone;not null;default:''"`
	Status               string             `db:"status"                  gorm:"column:status;not null;index"`
	TotalAmount          decimal.Decimal    `db:"total_amount"            gorm:"column:total_amount;type:decimal(14,2);not null;default:0"`
	DeliveryAddress      string             `db:"delivery_address"        gorm:"column:delivery_address;not null"`
	ManufacturerID       *int64             `db:"manufacturer_id"         gorm:"column:manufacturer_id;index"`
	AssignedTruckOwnerID *int64             `db:"assigned_truck_owner_id" gorm:"column:assigned_truck_owner_id;index"`
	Items                []*OrderItemEntity `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time          `db:"created_at"              gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time          `db:"updated_at"              gorm:"column:updated_at;autoUpdateTime"`
}

func (OrderEntity) TableName() string {
	return "orders"
}

type OrderItemEntity struct {
	ID         int64           `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	OrderID    int64           `db:"order_id"    gorm:"column:order_id;not null;index"`
	ProductID  int64           `db:"product_id"  gorm:"column:product_id;not null;index"`
	Quantity   int             `db:"quantity"    gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal `db:"unit_price"  gorm:"column:unit_price;type:decimal(14,2);not null"`
	TotalPrice decimal.Decimal `db:"total_price" gorm:"column:total_price;type:decimal(14,2);not null"`
}

func (OrderItemEntity) TableName() string {
	return "order_items"
}

func toOrderEntity(m *model.Order) *OrderEntity {
	if m == nil {
		return nil
	}
	e := &OrderEntity{
		ID:                   m.ID,
		CustomerName:         m.CustomerName,
		CustomerPhone:        m.CustomerPhone,
		Status:               string(m.Status),
		TotalAmount:          m.TotalAmount,
		DeliveryAddress:      m.DeliveryAddress,
		ManufacturerID:       m.ManufacturerID,
		AssignedTruckOwnerID: m.AssignedTruckOwnerID,
	}
	for _, it := range m.Items {
		e.Items = append(e.Items, &OrderItemEntity{
			ID:         it.ID,
			OrderID:    it.OrderID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}
	return e
}

func toOrderModel(e *OrderEntity) *model.Order {
	if e == nil {
		return nil
	}
	m := &model.Order{
		ID:                   e.ID,
		CustomerName:         e.CustomerName,
		CustomerPhone:        e.CustomerPhone,
		Status:               model.OrderStatus(e.Status),
		TotalAmount:          e.TotalAmount,
		DeliveryAddress:      e.DeliveryAddress,
		ManufacturerID:       e.ManufacturerID,
		AssignedTruckOwnerID: e.AssignedTruckOwnerID,
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
	for _, it := range e.Items {
		m.Items = append(m.Items, &model.OrderItem{
			ID:         it.ID,
			OrderID:    it.OrderID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}
	return m
}
