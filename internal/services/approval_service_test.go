package services

import (
	"context"
	"testing"

	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApprovalService(env *testEnv) *ApprovalService {
	return NewApprovalService(env.db, env.users, env.users, env.agents, env.manufacturers, env.employees, env.audits, env.events)
}

func TestApprovalService_ApproveAgentCreatesOneRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newApprovalService(env)
	admin := int64(1)

	user := env.seedUser(t, model.UserStatusPending, "0", model.RoleAgent)

	approved, err := svc.Approve(ctx, &admin, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusApproved, approved.Status)
	assert.NotNil(t, approved.ApprovedAt)

	n, err := env.agents.CountByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = svc.Approve(ctx, &admin, user.ID)
	assert.ErrorIs(t, err, ErrAlreadyApproved)

	n, err = env.agents.CountByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	emitted := env.events.ofType(events.UserApproved)
	require.Len(t, emitted, 1)
	assert.Equal(t, []string{model.RoleAgent}, emitted[0].Payload.(UserApproved).Roles)

	logs, _, err := env.audits.List(ctx, model.AuditFilter{EntityType: "user", EntityID: &user.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditUserApproved, logs[0].Action)
}

func TestApprovalService_ApproveManufacturer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newApprovalService(env)

	user := env.seedUser(t, model.UserStatusPending, "0", model.RoleManufacturer, model.RoleAgent)
	_, err := svc.Approve(ctx, nil, user.ID)
	require.NoError(t, err)

	m, err := env.manufacturers.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kiran Stores", m.CompanyName)
	assert.False(t, m.IsVerified)

	n, err := env.agents.CountByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestApprovalService_EmployeeRolePrecedence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newApprovalService(env)

	user := env.seedUser(t, model.UserStatusPending, "0", model.RoleDriver, model.RoleTruckOwner)
	_, err := svc.Approve(ctx, nil, user.ID)
	require.NoError(t, err)

	emp, err := env.employees.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleTruckOwner, emp.Role)

	emitted := env.events.ofType(events.UserApproved)
	require.Len(t, emitted, 1)
	assert.Equal(t, []string{model.RoleTruckOwner}, emitted[0].Payload.(UserApproved).Roles)
}

func TestApprovalService_Reject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newApprovalService(env)
	admin := int64(2)

	user := env.seedUser(t, model.UserStatusPending, "0", model.RoleAgent)

	rejected, err := svc.Reject(ctx, &admin, user.ID, "  incomplete documents ")
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusRejected, rejected.Status)
	assert.Equal(t, "incomplete documents", rejected.RejectionReason)

	_, err = svc.Reject(ctx, &admin, user.ID, "again")
	assert.ErrorIs(t, err, ErrAlreadyRejected)

	n, err := env.agents.CountByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	// a rejected user can still be approved later
	approved, err := svc.Approve(ctx, &admin, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusApproved, approved.Status)
	assert.Empty(t, approved.RejectionReason)

	_, err = svc.Reject(ctx, &admin, user.ID, "")
	assert.ErrorIs(t, err, ErrCannotReject)

	require.Len(t, env.events.ofType(events.UserRejected), 1)
}

func TestApprovalService_InactiveUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newApprovalService(env)

	user := env.seedUser(t, model.UserStatusInactive, "0", model.RoleAgent)
	_, err := svc.Approve(ctx, nil, user.ID)
	assert.ErrorIs(t, err, ErrInactiveAccount)
	_, err = svc.Reject(ctx, nil, user.ID, "")
	assert.ErrorIs(t, err, ErrInactiveAccount)
}

func TestApprovalService_ListPending(t *testing.T) {
	env := newTestEnv(t)
	svc := newApprovalService(env)

	pending := env.seedUser(t, model.UserStatusPending, "0", model.RoleAgent)
	env.seedUser(t, model.UserStatusApproved, "0", model.RoleAgent)

	users, total, err := svc.ListPending(context.Background(), model.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, pending.ID, users[0].ID)
}
