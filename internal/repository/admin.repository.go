package repository

import (
	"context"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/pkg/pg"
)

type AdminRepository struct {
	*pg.DB
}

func NewAdminRepository(db *pg.DB) *AdminRepository {
	return &AdminRepository{
		db,
	}
}

func (r *AdminRepository) Create(ctx context.Context, a *model.Admin) (*model.Admin, error) {
	entity := &AdminEntity{
		Email:        a.Email,
		Name:         a.Name,
		PasswordHash: a.PasswordHash,
		IsSuperAdmin: a.IsSuperAdmin,
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, translate(err, nil, ErrDuplicateAdmin)
	}
	return toAdminModel(entity), nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*model.Admin, error) {
	var entity AdminEntity
	if err := r.Read(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, translate(err, ErrAdminNotFound, nil)
	}
	return toAdminModel(&entity), nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var entity AdminEntity
	if err := r.Read(ctx).Where("LOWER(email) = LOWER(?)", email).First(&entity).Error; err != nil {
		return nil, translate(err, ErrAdminNotFound, nil)
	}
	return toAdminModel(&entity), nil
}

func (r *AdminRepository) List(ctx context.Context, page model.Page) ([]*model.Admin, int64, error) {
	q := r.Read(ctx).Model(&AdminEntity{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page = page.Normalize()
	var entities []*AdminEntity
	if err := paginate(q.Order("id"), page.Limit, page.Offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*model.Admin, len(entities))
	for i, e := range entities {
		out[i] = toAdminModel(e)
	}
	return out, total, nil
}

func (r *AdminRepository) CountSuperAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.Write(ctx).Model(&AdminEntity{}).Where("is_super_admin = ?", true).Count(&n).Error
	return n, err
}

func (r *AdminRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	res := r.Write(ctx).Model(&AdminEntity{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error, nil, ErrDuplicateAdmin)
	}
	if res.RowsAffected == 0 {
		return ErrAdminNotFound
	}
	return nil
}

func (r *AdminRepository) Delete(ctx context.Context, id int64) error {
	res := r.Write(ctx).Where("id = ?", id).Delete(&AdminEntity{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAdminNotFound
	}
	return nil
}

type AuditRepository struct {
	*pg.DB
}

func NewAuditRepository(db *pg.DB) *AuditRepository {
	return &AuditRepository{
		db,
	}
}

func (r *AuditRepository) Create(ctx context.Context, l *model.AuditLog) error {
	entity := &AuditLogEntity{
		ActorID:    l.ActorID,
		Action:     l.Action,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Details:    l.Details,
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return err
	}
	l.ID = entity.ID
	l.CreatedAt = entity.CreatedAt
	return nil
}

func (r *AuditRepository) List(ctx context.Context, f model.AuditFilter) ([]*model.AuditLog, int64, error) {
	q := r.Read(ctx).Model(&AuditLogEntity{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != nil {
		q = q.Where("entity_id = ?", *f.EntityID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := f.Page.Normalize()
	var entities []*AuditLogEntity
	if err := paginate(q.Order("id DESC"), page.Limit, page.Offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*model.AuditLog, len(entities))
	for i, e := range entities {
		out[i] = toAuditModel(e)
	}
	return out, total, nil
}
