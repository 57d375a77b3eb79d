package services

import (
	"context"
	"strings"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/shopspring/decimal"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context, f model.UserFilter) ([]*model.User, int64, error)
	Update(ctx context.Context, id int64, req model.UserUpdateRequest) (*model.User, error)
	TransitionStatus(ctx context.Context, id int64, from []model.UserStatus, next model.UserStatus, fields map[string]any) error
}

type UserService struct {
	users UserRepository
}

func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users}
}

// Create registers a user in PENDING with a zero balance.
func (s *UserService) Create(ctx context.Context, req model.UserCreateRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	userType := strings.TrimSpace(req.UserType)
	if userType == "" {
		userType = req.Roles[0]
	}
	return s.users.Create(ctx, &model.User{
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		UserType:    userType,
		Roles:       req.Roles,
		Status:      model.UserStatusPending,
		Balance:     decimal.Zero,
		Profile: &model.UserProfile{
			Name:    strings.TrimSpace(req.Name),
			Email:   strings.TrimSpace(req.Email),
			Address: req.Address,
		},
	})
}

func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, f model.UserFilter) ([]*model.User, int64, error) {
	return s.users.List(ctx, f)
}

func (s *UserService) Update(ctx context.Context, id int64, req model.UserUpdateRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.users.Update(ctx, id, req)
}

// Delete deactivates the user. Ledger rows keep referencing it, so the row
// itself is never removed.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Status == model.UserStatusInactive {
		return nil
	}
	return s.users.TransitionStatus(ctx, id,
		[]model.UserStatus{model.UserStatusPending, model.UserStatusApproved, model.UserStatusRejected},
		model.UserStatusInactive,
		nil,
	)
}
