package repository

import (
	"context"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/pkg/pg"
	"gorm.io/gorm/clause"
)

type AgentRepository struct {
	*pg.DB
}

func NewAgentRepository(db *pg.DB) *AgentRepository {
	return &AgentRepository{db}
}

func (r *AgentRepository) Create(ctx context.Context, userID int64, region string) (*model.Agent, error) {
	entity := &AgentEntity{UserID: userID, Region: region}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, translate(err, nil, ErrDuplicateRole)
	}
	return toAgentModel(entity), nil
}

// EnsureForUser creates the agent row unless one already exists for the user.
func (r *AgentRepository) EnsureForUser(ctx context.Context, userID int64) (*model.Agent, error) {
	entity := &AgentEntity{UserID: userID}
	err := r.Write(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(entity).
		Error
	if err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, userID)
}

func (r *AgentRepository) GetByID(ctx context.Context, id int64) (*model.Agent, error) {
	var entity AgentEntity
	if err := r.Read(ctx).Preload("User.Profile").Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, translate(err, ErrAgentNotFound, nil)
	}
	return toAgentModel(&entity), nil
}

func (r *AgentRepository) GetByUserID(ctx context.Context, userID int64) (*model.Agent, error) {
	var entity AgentEntity
	if err := r.Write(ctx).Where("user_id = ?", userID).First(&entity).Error; err != nil {
		return nil, translate(err, ErrAgentNotFound, nil)
	}
	return toAgentModel(&entity), nil
}

func (r *AgentRepository) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.Read(ctx).Model(&AgentEntity{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *AgentRepository) List(ctx context.Context, page model.Page) ([]*model.Agent, int64, error) {
	var total int64
	if err := r.Read(ctx).Model(&AgentEntity{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page = page.Normalize()
	var entities []*AgentEntity
	err := paginate(r.Read(ctx).Preload("User.Profile").Order("id DESC"), page.Limit, page.Offset).
		Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}
	out := make([]*model.Agent, len(entities))
	for i, e := range entities {
		out[i] = toAgentModel(e)
	}
	return out, total, nil
}

func (r *AgentRepository) Update(ctx context.Context, id int64, region string) error {
	res := r.Write(ctx).Model(&AgentEntity{}).Where("id = ?", id).Update("region", region)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAgentNotFound
	}
	return nil
}

func (r *AgentRepository) Delete(ctx context.Context, id int64) error {
	res := r.Write(ctx).Where("id = ?", id).Delete(&AgentEntity{})
	if res.Error != nil {
		return translate(res.Error, nil, nil)
	}
	if res.RowsAffected == 0 {
		return ErrAgentNotFound
	}
	return nil
}

type ManufacturerRepository struct {
	*pg.DB
}

func NewManufacturerRepository(db *pg.DB) *ManufacturerRepository {
	return &ManufacturerRepository{db}
}

func (r *ManufacturerRepository) Create(ctx context.Context, m *model.Manufacturer) (*model.Manufacturer, error) {
	entity := &ManufacturerEntity{
		UserID:      m.UserID,
		CompanyName: m.CompanyName,
		GSTNumber:   m.GSTNumber,
		IsVerified:  m.IsVerified,
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, translate(err, nil, ErrDuplicateRole)
	}
	return toManufacturerModel(entity), nil
}

// EnsureForUser creates an unverified manufacturer row unless one exists.
func (r *ManufacturerRepository) EnsureForUser(ctx context.Context, userID int64, companyName string) (*model.Manufacturer, error) {
	entity := &ManufacturerEntity{UserID: userID, CompanyName: companyName}
	err := r.Write(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(entity).
		Error
	if err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, userID)
}

func (r *ManufacturerRepository) GetByID(ctx context.Context, id int64) (*model.Manufacturer, error) {
	var entity ManufacturerEntity
	if err := r.Read(ctx).Preload("User.Profile").Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, translate(err, ErrManufacturerNotFound, nil)
	}
	return toManufacturerModel(&entity), nil
}

func (r *ManufacturerRepository) GetByUserID(ctx context.Context, userID int64) (*model.Manufacturer, error) {
	var entity ManufacturerEntity
	if err := r.Write(ctx).Where("user_id = ?", userID).First(&entity).Error; err != nil {
		return nil, translate(err, ErrManufacturerNotFound, nil)
	}
	return toManufacturerModel(&entity), nil
}

func (r *ManufacturerRepository) List(ctx context.Context, f model.ManufacturerFilter) ([]*model.Manufacturer, int64, error) {
	q := r.Read(ctx).Model(&ManufacturerEntity{})
	if f.VerifiedOnly {
		q = q.Where("is_verified = ?", true)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page := f.Page.Normalize()
	var entities []*ManufacturerEntity
	if err := paginate(q.Preload("User.Profile").Order("id DESC"), page.Limit, page.Offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*model.Manufacturer, len(entities))
	for i, e := range entities {
		out[i] = toManufacturerModel(e)
	}
	return out, total, nil
}

func (r *ManufacturerRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	res := r.Write(ctx).Model(&ManufacturerEntity{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrManufacturerNotFound
	}
	return nil
}

func (r *ManufacturerRepository) Delete(ctx context.Context, id int64) error {
	res := r.Write(ctx).Where("id = ?", id).Delete(&ManufacturerEntity{})
	if res.Error != nil {
		return translate(res.Error, nil, nil)
	}
	if res.RowsAffected == 0 {
		return ErrManufacturerNotFound
	}
	return nil
}

type EmployeeRepository struct {
	*pg.DB
}

func NewEmployeeRepository(db *pg.DB) *EmployeeRepository {
	return &EmployeeRepository{db}
}

func (r *EmployeeRepository) Create(ctx context.Context, m *model.Employee) (*model.Employee, error) {
	entity := &EmployeeEntity{
		UserID:         m.UserID,
		ManufacturerID: m.ManufacturerID,
		Role:           m.Role,
		Designation:    m.Designation,
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, translate(err, nil, ErrDuplicateRole)
	}
	return toEmployeeModel(entity), nil
}

// EnsureForUser creates the employee row with the given role, or updates the
// role of the existing row.
func (r *EmployeeRepository) EnsureForUser(ctx context.Context, userID int64, role string) (*model.Employee, error) {
	entity := &EmployeeEntity{UserID: userID, Role: role}
	err := r.Write(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).
		Create(entity).
		Error
	if err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, userID)
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*model.Employee, error) {
	var entity EmployeeEntity
	if err := r.Read(ctx).Preload("User.Profile").Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, translate(err, ErrEmployeeNotFound, nil)
	}
	return toEmployeeModel(&entity), nil
}

func (r *EmployeeRepository) GetByUserID(ctx context.Context, userID int64) (*model.Employee, error) {
	var entity EmployeeEntity
	if err := r.Write(ctx).Preload("User.Profile").Where("user_id = ?", userID).First(&entity).Error; err != nil {
		return nil, translate(err, ErrEmployeeNotFound, nil)
	}
	return toEmployeeModel(&entity), nil
}

func (r *EmployeeRepository) ListByManufacturer(ctx context.Context, manufacturerID int64) ([]*model.Employee, error) {
	var entities []*EmployeeEntity
	err := r.Read(ctx).
		Preload("User.Profile").
		Where("manufacturer_id = ?", manufacturerID).
		Order("id").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	out := make([]*model.Employee, len(entities))
	for i, e := range entities {
		out[i] = toEmployeeModel(e)
	}
	return out, nil
}

func (r *EmployeeRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	res := r.Write(ctx).Model(&EmployeeEntity{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// Detach removes the employee from a manufacturer without deleting the row.
func (r *EmployeeRepository) Detach(ctx context.Context, manufacturerID, employeeID int64) error {
	res := r.Write(ctx).
		Model(&EmployeeEntity{}).
		Where("id = ? AND manufacturer_id = ?", employeeID, manufacturerID).
		Update("manufacturer_id", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}
