package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/internal/repository"
	"github.com/nimasrn/marketplace/pkg/apperr"
)

type TruckRepository interface {
	Create(ctx context.Context, ownerID int64, req model.TruckRequest) (*model.Truck, error)
	Get(ctx context.Context, ownerID, id int64) (*model.Truck, error)
	List(ctx context.Context, ownerID int64, page model.Page) ([]*model.Truck, int64, error)
	Update(ctx context.Context, ownerID, id int64, req model.TruckRequest) error
	SetStatus(ctx context.Context, id int64, from []model.TruckStatus, to model.TruckStatus) error
	Delete(ctx context.Context, ownerID, id int64) error
}

type TripRepository interface {
	Create(ctx context.Context, req model.TripCreateRequest) (*model.Trip, error)
	Get(ctx context.Context, ownerID, id int64) (*model.Trip, error)
	List(ctx context.Context, f model.TripFilter) ([]*model.Trip, int64, error)
	UpdateStatus(ctx context.Context, id int64, from, to model.TripStatus, at time.Time) error
}

type FleetLabourStore interface {
	GetByID(ctx context.Context, id int64) (*model.ActingLabour, error)
	List(ctx context.Context, f model.LabourFilter) ([]*model.ActingLabour, int64, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
}

type FleetOrderStore interface {
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context, f model.OrderFilter) ([]*model.Order, int64, error)
	UpdateStatus(ctx context.Context, id int64, from, to model.OrderStatus) error
}

// FleetService backs the truck owner portal. Every call is scoped to the
// calling owner, identified by employee id.
type FleetService struct {
	tx        Transactor
	employees EmployeeGetter
	trucks    TruckRepository
	trips     TripRepository
	labours   FleetLabourStore
	orders    FleetOrderStore
	events    Emitter
	now       Clock
}

func NewFleetService(tx Transactor, employees EmployeeGetter, trucks TruckRepository, trips TripRepository, labours FleetLabourStore, orders FleetOrderStore, emitter Emitter) *FleetService {
	return &FleetService{
		tx:        tx,
		employees: employees,
		trucks:    trucks,
		trips:     trips,
		labours:   labours,
		orders:    orders,
		events:    orNopEmitter(emitter),
		now:       utcNow,
	}
}

// Profile returns the caller's employee record and fails with Forbidden when
// the caller is not a truck owner.
func (s *FleetService) Profile(ctx context.Context, ownerID int64) (*model.Employee, error) {
	e, err := s.employees.GetByID(ctx, ownerID)
	if errors.Is(err, repository.ErrEmployeeNotFound) {
		return nil, ErrNotPortalUser
	}
	if err != nil {
		return nil, err
	}
	if !e.IsTruckOwner() {
		return nil, ErrNotPortalUser
	}
	return e, nil
}

func (s *FleetService) ListTrucks(ctx context.Context, ownerID int64, page model.Page) ([]*model.Truck, int64, error) {
	return s.trucks.List(ctx, ownerID, page)
}

func (s *FleetService) GetTruck(ctx context.Context, ownerID, id int64) (*model.Truck, error) {
	return s.trucks.Get(ctx, ownerID, id)
}

func (s *FleetService) CreateTruck(ctx context.Context, ownerID int64, req model.TruckRequest) (*model.Truck, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.TruckNumber = strings.ToUpper(strings.TrimSpace(req.TruckNumber))
	return s.trucks.Create(ctx, ownerID, req)
}

// UpdateTruck edits truck details. A truck on a trip keeps its status.
func (s *FleetService) UpdateTruck(ctx context.Context, ownerID, id int64, req model.TruckRequest) (*model.Truck, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.TruckNumber = strings.ToUpper(strings.TrimSpace(req.TruckNumber))

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		truck, err := s.trucks.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if truck.Status == model.TruckOnTrip && req.Status != "" {
			return ErrTruckUnavailable.With("truck is on a trip")
		}
		return s.trucks.Update(ctx, ownerID, id, req)
	})
	if err != nil {
		return nil, err
	}
	return s.trucks.Get(ctx, ownerID, id)
}

func (s *FleetService) DeleteTruck(ctx context.Context, ownerID, id int64) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		truck, err := s.trucks.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if truck.Status == model.TruckOnTrip {
			return ErrTruckUnavailable.With("truck is on a trip")
		}
		return s.trucks.Delete(ctx, ownerID, id)
	})
}

// ListDrivers lists the acting labours assigned to the owner.
func (s *FleetService) ListDrivers(ctx context.Context, ownerID int64, page model.Page) ([]*model.ActingLabour, int64, error) {
	target := model.TargetTruckOwner
	return s.labours.List(ctx, model.LabourFilter{
		AssignedToID:   &ownerID,
		AssignedToType: &target,
		Page:           page,
	})
}

func (s *FleetService) ListOrders(ctx context.Context, ownerID int64, f model.OrderFilter) ([]*model.Order, int64, error) {
	f.AssignedTruckOwnerID = &ownerID
	return s.orders.List(ctx, f)
}

func (s *FleetService) ListTrips(ctx context.Context, f model.TripFilter) ([]*model.Trip, int64, error) {
	return s.trips.List(ctx, f)
}

func (s *FleetService) GetTrip(ctx context.Context, ownerID, id int64) (*model.Trip, error) {
	return s.trips.Get(ctx, ownerID, id)
}

// CreateTrip schedules a trip on one of the owner's available trucks with a
// driver assigned to the owner. An order, when given, must be assigned to the
// owner too.
func (s *FleetService) CreateTrip(ctx context.Context, ownerID int64, req model.TripCreateRequest) (*model.Trip, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Origin = strings.TrimSpace(req.Origin)
	req.Destination = strings.TrimSpace(req.Destination)

	var trip *model.Trip
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		truck, err := s.trucks.Get(ctx, ownerID, req.TruckID)
		if err != nil {
			return err
		}
		if truck.Status != model.TruckAvailable {
			return ErrTruckUnavailable
		}

		driver, err := s.labours.GetByID(ctx, req.DriverID)
		if err != nil {
			return err
		}
		if !driver.AssignedTo(model.TargetTruckOwner, ownerID) {
			return ErrDriverNotAssigned
		}
		if driver.Status == model.LabourBusy {
			return repository.ErrLabourUnavailable.With("driver is on another trip")
		}

		if req.OrderID != nil {
			order, err := s.orders.GetByID(ctx, *req.OrderID)
			if err != nil {
				return err
			}
			if order.AssignedTruckOwnerID == nil || *order.AssignedTruckOwnerID != ownerID {
				return ErrOrderNotAssigned
			}
		}

		trip, err = s.trips.Create(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return trip, nil
}

// UpdateTripStatus moves a trip forward. Starting a trip puts the truck
// ON_TRIP and the driver BUSY; finishing or cancelling a started trip frees
// both. The linked order follows the trip when its own transitions allow it.
func (s *FleetService) UpdateTripStatus(ctx context.Context, ownerID, id int64, next model.TripStatus) (*model.Trip, error) {
	var changed *OrderStatusChanged
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		changed = nil

		trip, err := s.trips.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if !trip.Status.CanTransitionTo(next) {
			return ErrInvalidTripStatus.With(string(trip.Status) + " to " + string(next))
		}
		if err := s.trips.UpdateStatus(ctx, id, trip.Status, next, s.now()); err != nil {
			return err
		}

		switch {
		case next == model.TripInProgress:
			err = s.trucks.SetStatus(ctx, trip.TruckID, []model.TruckStatus{model.TruckAvailable}, model.TruckOnTrip)
			if errors.Is(err, repository.ErrStatusChanged) {
				return ErrTruckUnavailable
			}
			if err != nil {
				return err
			}
			if err := s.labours.UpdateFields(ctx, trip.DriverID, map[string]any{"status": string(model.LabourBusy)}); err != nil {
				return err
			}
		case trip.Status == model.TripInProgress:
			err = s.trucks.SetStatus(ctx, trip.TruckID, []model.TruckStatus{model.TruckOnTrip}, model.TruckAvailable)
			if err != nil && !errors.Is(err, repository.ErrStatusChanged) {
				return err
			}
			if err := s.labours.UpdateFields(ctx, trip.DriverID, map[string]any{"status": string(model.LabourAssigned)}); err != nil {
				return err
			}
		}

		if trip.OrderID == nil {
			return nil
		}
		changed, err = s.advanceOrder(ctx, *trip.OrderID, next)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed != nil {
		s.events.Emit(ctx, events.OrderStatusChanged, 0, changed)
	}
	return s.trips.Get(ctx, ownerID, id)
}

func (s *FleetService) advanceOrder(ctx context.Context, orderID int64, trip model.TripStatus) (*OrderStatusChanged, error) {
	var target model.OrderStatus
	switch trip {
	case model.TripInProgress:
		target = model.OrderStatusInProgress
	case model.TripCompleted:
		target = model.OrderStatusCompleted
	default:
		return nil, nil
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, nil
	}
	if err := s.orders.UpdateStatus(ctx, orderID, order.Status, target); err != nil {
		return nil, err
	}
	return &OrderStatusChanged{OrderID: orderID, From: order.Status, To: target}, nil
}

// ParseTripStatus validates a status sent by a client.
func ParseTripStatus(raw string) (model.TripStatus, error) {
	s := model.TripStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case model.TripScheduled, model.TripInProgress, model.TripCompleted, model.TripCancelled:
		return s, nil
	}
	return "", apperr.Newf(apperr.KindValidation, "unknown trip status %q", raw)
}
