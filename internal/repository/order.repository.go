package repository

import (
	"context"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/pkg/pg"
)

type OrderRepository struct {
	*pg.DB
}

func NewOrderRepository(db *pg.DB) *OrderRepository {
	return &OrderRepository{
		db,
	}
}

// Create inserts the order with its items.
func (r *OrderRepository) Create(ctx context.Context, o *model.Order) (*model.Order, error) {
	entity := toOrderEntity(o)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, translate(err, nil, nil)
	}
	return toOrderModel(entity), nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var entity OrderEntity
	err := r.Read(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		return nil, translate(err, ErrOrderNotFound, nil)
	}
	return toOrderModel(&entity), nil
}

func (r *OrderRepository) List(ctx context.Context, f model.OrderFilter) ([]*model.Order, int64, error) {
	q := r.Read(ctx).Model(&OrderEntity{})
	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}
	if f.ManufacturerID != nil {
		q = q.Where("manufacturer_id = ?", *f.ManufacturerID)
	}
	if f.AssignedTruckOwnerID != nil {
		q = q.Where("assigned_truck_owner_id = ?", *f.AssignedTruckOwnerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page.Normalize()
	var entities []*OrderEntity
	if err := paginate(q.Preload("Items").Order("id DESC"), page.Limit, page.Offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*model.Order, len(entities))
	for i, e := range entities {
		out[i] = toOrderModel(e)
	}
	return out, total, nil
}

func (r *OrderRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	res := r.Write(ctx).Model(&OrderEntity{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// UpdateStatus moves the order from one status to the next; a concurrent
// change of the current status yields ErrStatusChanged.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, from, to model.OrderStatus) error {
	res := r.Write(ctx).
		Model(&OrderEntity{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := r.Write(ctx).Where("order_id = ?", id).Delete(&OrderItemEntity{}).Error; err != nil {
			return err
		}
		res := r.Write(ctx).Where("id = ?", id).Delete(&OrderEntity{})
		if res.Error != nil {
			return translate(res.Error, nil, nil)
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotFound
		}
		return nil
	})
}
