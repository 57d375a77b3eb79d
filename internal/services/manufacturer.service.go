package services

import (
	"context"
	"errors"
	"strings"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/internal/repository"
)

type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

type ManufacturerRepository interface {
	Create(ctx context.Context, m *model.Manufacturer) (*model.Manufacturer, error)
	GetByID(ctx context.Context, id int64) (*model.Manufacturer, error)
	List(ctx context.Context, f model.ManufacturerFilter) ([]*model.Manufacturer, int64, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	Delete(ctx context.Context, id int64) error
}

type EmployeeRepository interface {
	Create(ctx context.Context, m *model.Employee) (*model.Employee, error)
	GetByID(ctx context.Context, id int64) (*model.Employee, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Employee, error)
	ListByManufacturer(ctx context.Context, manufacturerID int64) ([]*model.Employee, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	Detach(ctx context.Context, manufacturerID, employeeID int64) error
}

type ManufacturerService struct {
	tx            Transactor
	users         UserGetter
	manufacturers ManufacturerRepository
	employees     EmployeeRepository
}

func NewManufacturerService(tx Transactor, users UserGetter, manufacturers ManufacturerRepository, employees EmployeeRepository) *ManufacturerService {
	return &ManufacturerService{
		tx:            tx,
		users:         users,
		manufacturers: manufacturers,
		employees:     employees,
	}
}

func (s *ManufacturerService) Create(ctx context.Context, req model.ManufacturerRequest) (*model.Manufacturer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		return nil, err
	}
	m := &model.Manufacturer{
		UserID:      req.UserID,
		CompanyName: strings.TrimSpace(req.CompanyName),
		GSTNumber:   strings.TrimSpace(req.GSTNumber),
	}
	if req.IsVerified != nil {
		m.IsVerified = *req.IsVerified
	}
	return s.manufacturers.Create(ctx, m)
}

func (s *ManufacturerService) Get(ctx context.Context, id int64) (*model.Manufacturer, error) {
	return s.manufacturers.GetByID(ctx, id)
}

func (s *ManufacturerService) List(ctx context.Context, f model.ManufacturerFilter) ([]*model.Manufacturer, int64, error) {
	return s.manufacturers.List(ctx, f)
}

// Update changes company details and the verification flag. The owning user
// cannot be changed.
func (s *ManufacturerService) Update(ctx context.Context, id int64, req model.ManufacturerRequest) (*model.Manufacturer, error) {
	fields := map[string]any{}
	if name := strings.TrimSpace(req.CompanyName); name != "" {
		fields["company_name"] = name
	}
	if req.GSTNumber != "" {
		fields["gst_number"] = strings.TrimSpace(req.GSTNumber)
	}
	if req.IsVerified != nil {
		fields["is_verified"] = *req.IsVerified
	}
	if len(fields) > 0 {
		if err := s.manufacturers.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.manufacturers.GetByID(ctx, id)
}

// Delete fails with a conflict while products still reference the manufacturer.
func (s *ManufacturerService) Delete(ctx context.Context, id int64) error {
	return s.manufacturers.Delete(ctx, id)
}

func (s *ManufacturerService) ListEmployees(ctx context.Context, manufacturerID int64) ([]*model.Employee, error) {
	if _, err := s.manufacturers.GetByID(ctx, manufacturerID); err != nil {
		return nil, err
	}
	return s.employees.ListByManufacturer(ctx, manufacturerID)
}

// AddEmployee attaches the user to the manufacturer, reusing the user's
// employee row when one exists.
func (s *ManufacturerService) AddEmployee(ctx context.Context, manufacturerID int64, req model.EmployeeRequest) (*model.Employee, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out *model.Employee
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.manufacturers.GetByID(ctx, manufacturerID); err != nil {
			return err
		}
		if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
			return err
		}

		existing, err := s.employees.GetByUserID(ctx, req.UserID)
		switch {
		case errors.Is(err, repository.ErrEmployeeNotFound):
			out, err = s.employees.Create(ctx, &model.Employee{
				UserID:         req.UserID,
				ManufacturerID: &manufacturerID,
				Role:           strings.TrimSpace(req.Role),
				Designation:    strings.TrimSpace(req.Designation),
			})
			return err
		case err != nil:
			return err
		}

		err = s.employees.UpdateFields(ctx, existing.ID, map[string]any{
			"manufacturer_id": manufacturerID,
			"role":            strings.TrimSpace(req.Role),
			"designation":     strings.TrimSpace(req.Designation),
		})
		if err != nil {
			return err
		}
		out, err = s.employees.GetByID(ctx, existing.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ManufacturerService) RemoveEmployee(ctx context.Context, manufacturerID, employeeID int64) error {
	return s.employees.Detach(ctx, manufacturerID, employeeID)
}
