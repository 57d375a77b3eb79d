package services

import (
	"context"
	"strings"

	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/internal/model"
)

type UserLister interface {
	List(ctx context.Context, f model.UserFilter) ([]*model.User, int64, error)
}

type AgentEnsurer interface {
	EnsureForUser(ctx context.Context, userID int64) (*model.Agent, error)
}

type ManufacturerEnsurer interface {
	EnsureForUser(ctx context.Context, userID int64, companyName string) (*model.Manufacturer, error)
}

type EmployeeEnsurer interface {
	EnsureForUser(ctx context.Context, userID int64, role string) (*model.Employee, error)
}

type UserApproved struct {
	Roles []string `json:"roles"`
}

type UserRejected struct {
	Reason string `json:"reason,omitempty"`
}

type ApprovalService struct {
	tx            Transactor
	users         UserStore
	lister        UserLister
	agents        AgentEnsurer
	manufacturers ManufacturerEnsurer
	employees     EmployeeEnsurer
	audit         AuditWriter
	events        Emitter
	now           Clock
}

func NewApprovalService(tx Transactor, users UserStore, lister UserLister, agents AgentEnsurer, manufacturers ManufacturerEnsurer, employees EmployeeEnsurer, audit AuditWriter, emitter Emitter) *ApprovalService {
	return &ApprovalService{
		tx:            tx,
		users:         users,
		lister:        lister,
		agents:        agents,
		manufacturers: manufacturers,
		employees:     employees,
		audit:         audit,
		events:        orNopEmitter(emitter),
		now:           utcNow,
	}
}

// Approve moves a pending or rejected user to APPROVED and creates the role
// rows its declared roles call for.
func (s *ApprovalService) Approve(ctx context.Context, actorID *int64, userID int64) (*model.User, error) {
	var roles []string
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		switch user.Status {
		case model.UserStatusApproved:
			return ErrAlreadyApproved
		case model.UserStatusInactive:
			return ErrInactiveAccount
		}

		err = s.users.TransitionStatus(ctx, userID,
			[]model.UserStatus{model.UserStatusPending, model.UserStatusRejected},
			model.UserStatusApproved,
			map[string]any{"approved_at": s.now(), "rejection_reason": nil},
		)
		if err != nil {
			return err
		}

		roles, err = s.createRoleRows(ctx, user)
		if err != nil {
			return err
		}
		return audit(ctx, s.audit, actorID, model.AuditUserApproved, "user", userID, strings.Join(roles, ","))
	})
	if err != nil {
		return nil, err
	}

	s.events.Emit(ctx, events.UserApproved, userID, UserApproved{Roles: roles})
	return s.users.GetByID(ctx, userID)
}

// createRoleRows upserts one agent, manufacturer and employee row at most. A
// user declaring several employee roles gets the first of Truck Owner, Driver
// and Employee.
func (s *ApprovalService) createRoleRows(ctx context.Context, user *model.User) ([]string, error) {
	declared := user.Roles
	if len(declared) == 0 && user.UserType != "" {
		declared = []string{user.UserType}
	}
	has := func(role string) bool {
		for _, r := range declared {
			if strings.EqualFold(strings.TrimSpace(r), role) {
				return true
			}
		}
		return false
	}

	var created []string
	if has(model.RoleAgent) {
		if _, err := s.agents.EnsureForUser(ctx, user.ID); err != nil {
			return nil, err
		}
		created = append(created, model.RoleAgent)
	}
	if has(model.RoleManufacturer) {
		company := user.PhoneNumber
		if user.Profile != nil && user.Profile.Name != "" {
			company = user.Profile.Name
		}
		if _, err := s.manufacturers.EnsureForUser(ctx, user.ID, company); err != nil {
			return nil, err
		}
		created = append(created, model.RoleManufacturer)
	}
	for _, role := range []string{model.RoleTruckOwner, model.RoleDriver, model.RoleEmployee} {
		if !has(role) {
			continue
		}
		if _, err := s.employees.EnsureForUser(ctx, user.ID, role); err != nil {
			return nil, err
		}
		created = append(created, role)
		break
	}
	return created, nil
}

// Reject is allowed only from PENDING.
func (s *ApprovalService) Reject(ctx context.Context, actorID *int64, userID int64, reason string) (*model.User, error) {
	reason = strings.TrimSpace(reason)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		switch user.Status {
		case model.UserStatusApproved:
			return ErrCannotReject
		case model.UserStatusRejected:
			return ErrAlreadyRejected
		case model.UserStatusInactive:
			return ErrInactiveAccount
		}

		fields := map[string]any{"rejection_reason": nil}
		if reason != "" {
			fields["rejection_reason"] = reason
		}
		err = s.users.TransitionStatus(ctx, userID,
			[]model.UserStatus{model.UserStatusPending},
			model.UserStatusRejected,
			fields,
		)
		if err != nil {
			return err
		}
		return audit(ctx, s.audit, actorID, model.AuditUserRejected, "user", userID, reason)
	})
	if err != nil {
		return nil, err
	}

	s.events.Emit(ctx, events.UserRejected, userID, UserRejected{Reason: reason})
	return s.users.GetByID(ctx, userID)
}

func (s *ApprovalService) ListPending(ctx context.Context, page model.Page) ([]*model.User, int64, error) {
	status := model.UserStatusPending
	return s.lister.List(ctx, model.UserFilter{Status: &status, Page: page})
}
