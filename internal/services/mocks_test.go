package services

import (
	"context"
	"time"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/stretchr/testify/mock"
)

// inlineTx runs fn directly; mocks do not share a database.
type inlineTx struct{}

func (inlineTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, o *model.Order) (*model.Order, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, f model.OrderFilter) ([]*model.Order, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id int64, from, to model.OrderStatus) error {
	return m.Called(ctx, id, from, to).Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockProductBatchGetter struct {
	mock.Mock
}

func (m *MockProductBatchGetter) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*model.Product), args.Error(1)
}

type MockEmployeeGetter struct {
	mock.Mock
}

func (m *MockEmployeeGetter) GetByID(ctx context.Context, id int64) (*model.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Employee), args.Error(1)
}

type MockManufacturerGetter struct {
	mock.Mock
}

func (m *MockManufacturerGetter) GetByID(ctx context.Context, id int64) (*model.Manufacturer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Manufacturer), args.Error(1)
}

type MockLabourRepository struct {
	mock.Mock
}

func (m *MockLabourRepository) Create(ctx context.Context, req model.LabourCreateRequest) (*model.ActingLabour, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ActingLabour), args.Error(1)
}

func (m *MockLabourRepository) GetByID(ctx context.Context, id int64) (*model.ActingLabour, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ActingLabour), args.Error(1)
}

func (m *MockLabourRepository) List(ctx context.Context, f model.LabourFilter) ([]*model.ActingLabour, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.ActingLabour), args.Get(1).(int64), args.Error(2)
}

func (m *MockLabourRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *MockLabourRepository) Assign(ctx context.Context, id int64, targetType model.AssignTargetType, targetID int64, at time.Time) error {
	return m.Called(ctx, id, targetType, targetID, at).Error(0)
}

func (m *MockLabourRepository) Unassign(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockLabourRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Create(ctx context.Context, a *model.Admin) (*model.Admin, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Admin), args.Error(1)
}

func (m *MockAdminRepository) GetByID(ctx context.Context, id int64) (*model.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Admin), args.Error(1)
}

func (m *MockAdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Admin), args.Error(1)
}

func (m *MockAdminRepository) List(ctx context.Context, page model.Page) ([]*model.Admin, int64, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Admin), args.Get(1).(int64), args.Error(2)
}

func (m *MockAdminRepository) CountSuperAdmins(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAdminRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *MockAdminRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type fakeTokenIssuer struct {
	subject int64
	roles   []string
}

func (f *fakeTokenIssuer) Issue(subject int64, roles []string) (string, time.Time, error) {
	f.subject = subject
	f.roles = roles
	return "signed-token", time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC), nil
}
