package repository

import (
	"time"

	"github.com/nimasrn/marketplace/internal/model"
)

type TruckEntity struct {
	ID          int64           `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	OwnerID     int64           `db:"owner_id"     gorm:"column:owner_id;not null;index"`
	Owner       *EmployeeEntity `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE"`
	TruckNumber string          `db:"truck_number" gorm:"column:truck_number;not null;uniqueIndex"`
	Model       string          `db:"model"        gorm:"column:model;not null;default:''"`
	Capacity    int             `db:"capacity"     gorm:"column:capacity;not null;default:0"`
	Status      string          `db:"status"       gorm:"column:status;not null"`
	CreatedAt   time.Time       `db:"created_at"   gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `db:"updated_at"   gorm:"column:updated_at;autoUpdateTime"`
}

func (TruckEntity) TableName() string {
	return "trucks"
}

type TripEntity struct {
	ID          int64        `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	TruckID     int64        `db:"truck_id"     gorm:"column:truck_id;not null;index"`
	Truck       *TruckEntity `gorm:"foreignKey:TruckID;references:ID;constraint:OnDelete:RESTRICT"`
	DriverID    int64        `db:"driver_id"    gorm:"column:driver_id;not null;index"`
	OrderID     *int64       `db:"order_id"     gorm:"column:order_id;index"`
	Origin      string       `db:"origin"       gorm:"column:origin;not null"`
	Destination string       `db:"destination"  gorm:"column:destination;not null"`
	Status      string       `db:"status"       gorm:"column:status;not null;index"`
	StartedAt   *time.Time   `db:"started_at"   gorm:"column:started_at"`
	CompletedAt *time.Time   `db:"completed_at" gorm:"column:completed_at"`
	CreatedAt   time.Time    `db:"created_at"   gorm:"column:created_at;autoCreateTime"`
}

func (TripEntity) TableName() string {
	return "trips"
}

func toTruckModel(e *TruckEntity) *model.Truck {
	if e == nil {
		return nil
	}
	return &model.Truck{
		ID:          e.ID,
		OwnerID:     e.OwnerID,
		TruckNumber: e.TruckNumber,
		Model:       e.Model,
		Capacity:    e.Capacity,
		Status:      model.TruckStatus(e.Status),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toTripModel(e *TripEntity) *model.Trip {
	if e == nil {
		return nil
	}
	return &model.Trip{
		ID:          e.ID,
		TruckID:     e.TruckID,
		DriverID:    e.DriverID,
		OrderID:     e.OrderID,
		Origin:      e.Origin,
		Destination: e.Destination,
		Status:      model.TripStatus(e.Status),
		StartedAt:   e.StartedAt,
		CompletedAt: e.CompletedAt,
		CreatedAt:   e.CreatedAt,
	}
}
