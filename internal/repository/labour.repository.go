package repository

import (
	"context"
	"time"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/pkg/pg"
)

type LabourRepository struct {
	*pg.DB
}

func NewLabourRepository(db *pg.DB) *LabourRepository {
	return &LabourRepository{
		db,
	}
}

func (r *LabourRepository) Create(ctx context.Context, req model.LabourCreateRequest) (*model.ActingLabour, error) {
	entity := &ActingLabourEntity{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Skill:       req.Skill,
		Status:      string(model.LabourAvailable),
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, translate(err, nil, ErrDuplicateLabourPhone)
	}
	return toLabourModel(entity), nil
}

func (r *LabourRepository) GetByID(ctx context.Context, id int64) (*model.ActingLabour, error) {
	var entity ActingLabourEntity
	if err := r.Read(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, translate(err, ErrLabourNotFound, nil)
	}
	return toLabourModel(&entity), nil
}

func (r *LabourRepository) List(ctx context.Context, f model.LabourFilter) ([]*model.ActingLabour, int64, error) {
	q := r.Read(ctx).Model(&ActingLabourEntity{})
	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}
	if f.AssignedToID != nil {
		q = q.Where("assigned_to_id = ?", *f.AssignedToID)
	}
	if f.AssignedToType != nil {
		q = q.Where("assigned_to_type = ?", string(*f.AssignedToType))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page.Normalize()
	var entities []*ActingLabourEntity
	if err := paginate(q.Order("id"), page.Limit, page.Offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*model.ActingLabour, len(entities))
	for i, e := range entities {
		out[i] = toLabourModel(e)
	}
	return out, total, nil
}

func (r *LabourRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	res := r.Write(ctx).Model(&ActingLabourEntity{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error, nil, ErrDuplicateLabourPhone)
	}
	if res.RowsAffected == 0 {
		return ErrLabourNotFound
	}
	return nil
}

// Assign hands an AVAILABLE labour to a target. Two racing assignments of the
// same labour cannot both succeed; the loser gets ErrLabourUnavailable.
func (r *LabourRepository) Assign(ctx context.Context, id int64, targetType model.AssignTargetType, targetID int64, at time.Time) error {
	res := r.Write(ctx).
		Model(&ActingLabourEntity{}).
		Where("id = ? AND status = ?", id, string(model.LabourAvailable)).
		Updates(map[string]any{
			"status":           string(model.LabourAssigned),
			"assigned_to_id":   targetID,
			"assigned_to_type": string(targetType),
			"assigned_at":      at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrLabourUnavailable
	}
	return nil
}

// Unassign clears the assignment and returns the labour to AVAILABLE.
func (r *LabourRepository) Unassign(ctx context.Context, id int64) error {
	res := r.Write(ctx).
		Model(&ActingLabourEntity{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":           string(model.LabourAvailable),
			"assigned_to_id":   nil,
			"assigned_to_type": nil,
			"assigned_at":      nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLabourNotFound
	}
	return nil
}

func (r *LabourRepository) Delete(ctx context.Context, id int64) error {
	res := r.Write(ctx).Where("id = ?", id).Delete(&ActingLabourEntity{})
	if res.Error != nil {
		return translate(res.Error, nil, nil)
	}
	if res.RowsAffected == 0 {
		return ErrLabourNotFound
	}
	return nil
}
