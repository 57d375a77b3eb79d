package repository

import (
	"context"
	"time"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/pkg/pg"
)

// TruckRepository scopes every query by owner so one truck owner can never
// see or touch another owner's trucks.
type TruckRepository struct {
	*pg.DB
}

func NewTruckRepository(db *pg.DB) *TruckRepository {
	return &TruckRepository{
		db,
	}
}

func (r *TruckRepository) Create(ctx context.Context, ownerID int64, req model.TruckRequest) (*model.Truck, error) {
	status := req.Status
	if status == "" {
		status = model.TruckAvailable
	}
	entity := &TruckEntity{
		OwnerID:     ownerID,
		TruckNumber: req.TruckNumber,
		Model:       req.Model,
		Capacity:    req.Capacity,
		Status:      string(status),
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, translate(err, nil, ErrDuplicateTruck)
	}
	return toTruckModel(entity), nil
}

func (r *TruckRepository) Get(ctx context.Context, ownerID, id int64) (*model.Truck, error) {
	var entity TruckEntity
	err := r.Read(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&entity).
		Error
	if err != nil {
		return nil, translate(err, ErrTruckNotFound, nil)
	}
	return toTruckModel(&entity), nil
}

func (r *TruckRepository) List(ctx context.Context, ownerID int64, page model.Page) ([]*model.Truck, int64, error) {
	q := r.Read(ctx).Model(&TruckEntity{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var entities []*TruckEntity
	if err := paginate(q.Order("id"), page.Limit, page.Offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*model.Truck, len(entities))
	for i, e := range entities {
		out[i] = toTruckModel(e)
	}
	return out, total, nil
}

func (r *TruckRepository) Update(ctx context.Context, ownerID, id int64, req model.TruckRequest) error {
	fields := map[string]any{
		"truck_number": req.TruckNumber,
		"model":        req.Model,
		"capacity":     req.Capacity,
	}
	if req.Status != "" {
		fields["status"] = string(req.Status)
	}
	res := r.Write(ctx).
		Model(&TruckEntity{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(fields)
	if res.Error != nil {
		return translate(res.Error, nil, ErrDuplicateTruck)
	}
	if res.RowsAffected == 0 {
		return ErrTruckNotFound
	}
	return nil
}

// SetStatus changes the truck status only while it is in one of from.
func (r *TruckRepository) SetStatus(ctx context.Context, id int64, from []model.TruckStatus, to model.TruckStatus) error {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}
	res := r.Write(ctx).
		Model(&TruckEntity{}).
		Where("id = ? AND status IN ?", id, statuses).
		Update("status", string(to))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *TruckRepository) Delete(ctx context.Context, ownerID, id int64) error {
	res := r.Write(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&TruckEntity{})
	if res.Error != nil {
		return translate(res.Error, nil, nil)
	}
	if res.RowsAffected == 0 {
		return ErrTruckNotFound
	}
	return nil
}

type TripRepository struct {
	*pg.DB
}

func NewTripRepository(db *pg.DB) *TripRepository {
	return &TripRepository{
		db,
	}
}

func (r *TripRepository) Create(ctx context.Context, req model.TripCreateRequest) (*model.Trip, error) {
	entity := &TripEntity{
		TruckID:     req.TruckID,
		DriverID:    req.DriverID,
		OrderID:     req.OrderID,
		Origin:      req.Origin,
		Destination: req.Destination,
		Status:      string(model.TripScheduled),
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, translate(err, nil, nil)
	}
	return toTripModel(entity), nil
}

// Get loads a trip if it runs on one of the owner's trucks.
func (r *TripRepository) Get(ctx context.Context, ownerID, id int64) (*model.Trip, error) {
	var entity TripEntity
	err := r.Read(ctx).
		Joins("JOIN trucks ON trucks.id = trips.truck_id").
		Where("trips.id = ? AND trucks.owner_id = ?", id, ownerID).
		First(&entity).
		Error
	if err != nil {
		return nil, translate(err, ErrTripNotFound, nil)
	}
	return toTripModel(&entity), nil
}

func (r *TripRepository) List(ctx context.Context, f model.TripFilter) ([]*model.Trip, int64, error) {
	q := r.Read(ctx).
		Model(&TripEntity{}).
		Joins("JOIN trucks ON trucks.id = trips.truck_id").
		Where("trucks.owner_id = ?", f.OwnerID)
	if f.Status != nil {
		q = q.Where("trips.status = ?", string(*f.Status))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page.Normalize()
	var entities []*TripEntity
	if err := paginate(q.Order("trips.id DESC"), page.Limit, page.Offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*model.Trip, len(entities))
	for i, e := range entities {
		out[i] = toTripModel(e)
	}
	return out, total, nil
}

// UpdateStatus moves a trip between statuses and stamps the start or
// completion time. A concurrent change yields ErrStatusChanged.
func (r *TripRepository) UpdateStatus(ctx context.Context, id int64, from, to model.TripStatus, at time.Time) error {
	fields := map[string]any{"status": string(to)}
	switch to {
	case model.TripInProgress:
		fields["started_at"] = at
	case model.TripCompleted, model.TripCancelled:
		fields["completed_at"] = at
	}
	res := r.Write(ctx).
		Model(&TripEntity{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}
