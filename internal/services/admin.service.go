package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type AdminRepository interface {
	Create(ctx context.Context, a *model.Admin) (*model.Admin, error)
	GetByID(ctx context.Context, id int64) (*model.Admin, error)
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	List(ctx context.Context, page model.Page) ([]*model.Admin, int64, error)
	CountSuperAdmins(ctx context.Context) (int64, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	Delete(ctx context.Context, id int64) error
}

type AuditReader interface {
	List(ctx context.Context, f model.AuditFilter) ([]*model.AuditLog, int64, error)
}

// TokenIssuer signs access tokens for a subject and its roles.
type TokenIssuer interface {
	Issue(subject int64, roles []string) (string, time.Time, error)
}

const RoleSuperAdmin = "SuperAdmin"

type AdminService struct {
	tx     Transactor
	admins AdminRepository
	audits AuditReader
	tokens TokenIssuer
	cost   int
}

func NewAdminService(tx Transactor, admins AdminRepository, audits AuditReader, tokens TokenIssuer) *AdminService {
	return &AdminService{
		tx:     tx,
		admins: admins,
		audits: audits,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost for new password hashes.
func (s *AdminService) WithHashCost(cost int) *AdminService {
	s.cost = cost
	return s
}

// Login checks the password and issues a token carrying the Admin role. An
// unknown email and a wrong password fail the same way.
func (s *AdminService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResult, error) {
	if s.tokens == nil {
		return nil, ErrTokenLoginDisabled
	}
	if req.Email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}
	admin, err := s.admins.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, repository.ErrAdminNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	roles := []string{model.RoleAdmin}
	if admin.IsSuperAdmin {
		roles = append(roles, RoleSuperAdmin)
	}
	token, expires, err := s.tokens.Issue(admin.ID, roles)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &model.LoginResult{Token: token, ExpiresAt: expires, Admin: admin}, nil
}

func (s *AdminService) Create(ctx context.Context, req model.AdminCreateRequest) (*model.Admin, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.admins.Create(ctx, &model.Admin{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		IsSuperAdmin: req.IsSuperAdmin,
	})
}

func (s *AdminService) Get(ctx context.Context, id int64) (*model.Admin, error) {
	return s.admins.GetByID(ctx, id)
}

func (s *AdminService) List(ctx context.Context, page model.Page) ([]*model.Admin, int64, error) {
	return s.admins.List(ctx, page)
}

func (s *AdminService) Update(ctx context.Context, id int64, req model.AdminUpdateRequest) (*model.Admin, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.admins.GetByID(ctx, id)
		if err != nil {
			return err
		}

		fields := map[string]any{}
		if req.Name != nil {
			fields["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.cost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fields["password_hash"] = string(hash)
		}
		if req.IsSuperAdmin != nil {
			if current.IsSuperAdmin && !*req.IsSuperAdmin {
				if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
					return err
				}
			}
			fields["is_super_admin"] = *req.IsSuperAdmin
		}
		if len(fields) == 0 {
			return nil
		}
		return s.admins.UpdateFields(ctx, id, fields)
	})
	if err != nil {
		return nil, err
	}
	return s.admins.GetByID(ctx, id)
}

func (s *AdminService) Delete(ctx context.Context, id int64) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.admins.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.IsSuperAdmin {
			if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
				return err
			}
		}
		return s.admins.Delete(ctx, id)
	})
}

func (s *AdminService) ensureAnotherSuperAdmin(ctx context.Context) error {
	n, err := s.admins.CountSuperAdmins(ctx)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastSuperAdmin
	}
	return nil
}

func (s *AdminService) ListAudit(ctx context.Context, f model.AuditFilter) ([]*model.AuditLog, int64, error) {
	return s.audits.List(ctx, f)
}
