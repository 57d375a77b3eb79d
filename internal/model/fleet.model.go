package model

import (
	"time"

	"github.com/nimasrn/marketplace/pkg/apperr"
)

type TruckStatus string

const (
	TruckAvailable   TruckStatus = "AVAILABLE"
	TruckOnTrip      TruckStatus = "ON_TRIP"
	TruckMaintenance TruckStatus = "MAINTENANCE"
)

type Truck struct {
	ID          int64       `json:"id"`
	OwnerID     int64       `json:"ownerId"`
	TruckNumber string      `json:"truckNumber"`
	Model       string      `json:"model,omitempty"`
	Capacity    int         `json:"capacity"`
	Status      TruckStatus `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type TruckRequest struct {
	TruckNumber string      `json:"truckNumber" binding:"required"`
	Model       string      `json:"model"`
	Capacity    int         `json:"capacity" binding:"gte=0"`
	Status      TruckStatus `json:"status"`
}

func (p TruckRequest) Validate() error {
	if err := required("truckNumber", p.TruckNumber); err != nil {
		return err
	}
	switch p.Status {
	case "", TruckAvailable, TruckMaintenance:
	default:
		return apperr.New(apperr.KindValidation, "status must be AVAILABLE or MAINTENANCE")
	}
	return nil
}

type TripStatus string

const (
	TripScheduled  TripStatus = "SCHEDULED"
	TripInProgress TripStatus = "IN_PROGRESS"
	TripCompleted  TripStatus = "COMPLETED"
	TripCancelled  TripStatus = "CANCELLED"
)

var tripTransitions = map[TripStatus][]TripStatus{
	TripScheduled:  {TripInProgress, TripCancelled},
	TripInProgress: {TripCompleted, TripCancelled},
}

func (s TripStatus) CanTransitionTo(next TripStatus) bool {
	for _, allowed := range tripTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Trip struct {
	ID          int64      `json:"id"`
	TruckID     int64      `json:"truckId"`
	DriverID    int64      `json:"driverId"`
	OrderID     *int64     `json:"orderId,omitempty"`
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	Status      TripStatus `json:"status"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type TripCreateRequest struct {
	TruckID     int64  `json:"truckId" binding:"required"`
	DriverID    int64  `json:"driverId" binding:"required"`
	OrderID     *int64 `json:"orderId"`
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

func (p TripCreateRequest) Validate() error {
	if err := positiveID("truckId", p.TruckID); err != nil {
		return err
	}
	if err := positiveID("driverId", p.DriverID); err != nil {
		return err
	}
	if err := required("origin", p.Origin); err != nil {
		return err
	}
	return required("destination", p.Destination)
}

type TripStatusRequest struct {
	Status TripStatus `json:"status" binding:"required"`
}

type TripFilter struct {
	OwnerID int64
	Status  *TripStatus
	Page
}
