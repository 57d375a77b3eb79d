package services

import (
	"context"
	"strings"
	"time"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/internal/repository"
	"github.com/nimasrn/marketplace/pkg/apperr"
)

type LabourRepository interface {
	Create(ctx context.Context, req model.LabourCreateRequest) (*model.ActingLabour, error)
	GetByID(ctx context.Context, id int64) (*model.ActingLabour, error)
	List(ctx context.Context, f model.LabourFilter) ([]*model.ActingLabour, int64, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	Assign(ctx context.Context, id int64, targetType model.AssignTargetType, targetID int64, at time.Time) error
	Unassign(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type ManufacturerGetter interface {
	GetByID(ctx context.Context, id int64) (*model.Manufacturer, error)
}

type LabourService struct {
	labours       LabourRepository
	manufacturers ManufacturerGetter
	employees     EmployeeGetter
	now           Clock
}

func NewLabourService(labours LabourRepository, manufacturers ManufacturerGetter, employees EmployeeGetter) *LabourService {
	return &LabourService{
		labours:       labours,
		manufacturers: manufacturers,
		employees:     employees,
		now:           utcNow,
	}
}

func (s *LabourService) Create(ctx context.Context, req model.LabourCreateRequest) (*model.ActingLabour, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	return s.labours.Create(ctx, req)
}

func (s *LabourService) Get(ctx context.Context, id int64) (*model.ActingLabour, error) {
	return s.labours.GetByID(ctx, id)
}

func (s *LabourService) List(ctx context.Context, f model.LabourFilter) ([]*model.ActingLabour, int64, error) {
	return s.labours.List(ctx, f)
}

func (s *LabourService) ListAvailable(ctx context.Context, page model.Page) ([]*model.ActingLabour, int64, error) {
	status := model.LabourAvailable
	return s.labours.List(ctx, model.LabourFilter{Status: &status, Page: page})
}

func (s *LabourService) Update(ctx context.Context, id int64, req model.LabourUpdateRequest) (*model.ActingLabour, error) {
	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.New(apperr.KindValidation, "name cannot be empty")
		}
		fields["name"] = name
	}
	if req.PhoneNumber != nil {
		phone := strings.TrimSpace(*req.PhoneNumber)
		if phone == "" {
			return nil, apperr.New(apperr.KindValidation, "phoneNumber cannot be empty")
		}
		fields["phone_number"] = phone
	}
	if req.Skill != nil {
		fields["skill"] = strings.TrimSpace(*req.Skill)
	}
	if len(fields) > 0 {
		if err := s.labours.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.labours.GetByID(ctx, id)
}

func (s *LabourService) Delete(ctx context.Context, id int64) error {
	return s.labours.Delete(ctx, id)
}

// Assign hands an AVAILABLE labour to a verified manufacturer or to a truck
// owner employee.
func (s *LabourService) Assign(ctx context.Context, id int64, req model.LabourAssignRequest) (*model.ActingLabour, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	switch req.TargetType {
	case model.TargetManufacturer:
		m, err := s.manufacturers.GetByID(ctx, req.TargetID)
		if err != nil {
			return nil, err
		}
		if !m.IsVerified {
			return nil, ErrUnverifiedTarget
		}
	case model.TargetTruckOwner:
		e, err := s.employees.GetByID(ctx, req.TargetID)
		if err != nil {
			return nil, err
		}
		if !e.IsTruckOwner() {
			return nil, ErrNotTruckOwner
		}
	}

	if err := s.labours.Assign(ctx, id, req.TargetType, req.TargetID, s.now()); err != nil {
		return nil, err
	}
	return s.labours.GetByID(ctx, id)
}

// Unassign returns the labour to AVAILABLE. A labour driving a trip stays
// assigned until the trip ends.
func (s *LabourService) Unassign(ctx context.Context, id int64) (*model.ActingLabour, error) {
	l, err := s.labours.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Status == model.LabourBusy {
		return nil, repository.ErrLabourUnavailable.With("labour is on a trip")
	}
	if err := s.labours.Unassign(ctx, id); err != nil {
		return nil, err
	}
	return s.labours.GetByID(ctx, id)
}
