package services

import (
	"context"
	"testing"
	"time"

	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newPinService(env *testEnv, clock *fakeClock) *PinService {
	return NewPinService(env.db, env.users, env.audits, env.events,
		WithHashCost(bcrypt.MinCost),
		WithPinClock(clock.Now),
	)
}

func TestPinService_SetPin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newPinService(env, newFakeClock())
	user := env.seedUser(t, model.UserStatusApproved, "0")

	assert.True(t, apperr.IsKind(svc.SetPin(ctx, user.ID, "12ab"), apperr.KindValidation))

	require.NoError(t, svc.SetPin(ctx, user.ID, "4321"))
	got, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.HasPin)
	assert.NotEqual(t, "4321", got.PinHash)

	assert.ErrorIs(t, svc.SetPin(ctx, user.ID, "9999"), ErrPinExists)

	admin := int64(1)
	require.NoError(t, svc.ResetPin(ctx, &admin, user.ID))
	require.NoError(t, svc.SetPin(ctx, user.ID, "9999"))
	require.NoError(t, svc.VerifyPin(ctx, user.ID, "9999"))

	logs, _, err := env.audits.List(ctx, model.AuditFilter{EntityType: "user", EntityID: &user.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditPinReset, logs[0].Action)
}

func TestPinService_VerifyWithoutPin(t *testing.T) {
	env := newTestEnv(t)
	svc := newPinService(env, newFakeClock())
	user := env.seedUser(t, model.UserStatusApproved, "0")

	assert.ErrorIs(t, svc.VerifyPin(context.Background(), user.ID, "1234"), ErrPinNotSet)
}

func TestPinService_LocksAfterThreeFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	clock := newFakeClock()
	svc := newPinService(env, clock)

	user := env.seedUser(t, model.UserStatusApproved, "0")
	require.NoError(t, svc.SetPin(ctx, user.ID, "2468"))

	assert.ErrorIs(t, svc.VerifyPin(ctx, user.ID, "0000"), ErrInvalidPin)
	assert.ErrorIs(t, svc.VerifyPin(ctx, user.ID, "0000"), ErrInvalidPin)

	got, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.PinAttempts)
	assert.Nil(t, got.PinLockedUntil)

	err = svc.VerifyPin(ctx, user.ID, "0000")
	assert.ErrorIs(t, err, ErrPinLocked)
	assert.Equal(t, apperr.KindLocked, apperr.KindOf(err))

	got, err = env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.PinAttempts)
	require.NotNil(t, got.PinLockedUntil)
	assert.WithinDuration(t, clock.Now().Add(15*time.Minute), *got.PinLockedUntil, time.Second)
	require.Len(t, env.events.ofType(events.PinLocked), 1)

	// the correct pin is refused while locked and does not touch the counter
	assert.ErrorIs(t, svc.VerifyPin(ctx, user.ID, "2468"), ErrPinLocked)
	got, err = env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.PinAttempts)

	clock.Advance(16 * time.Minute)
	require.NoError(t, svc.VerifyPin(ctx, user.ID, "2468"))

	got, err = env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, got.PinAttempts)
	assert.Nil(t, got.PinLockedUntil)
}

func TestPinService_ExpiredLockStartsFreshCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	clock := newFakeClock()
	svc := newPinService(env, clock)

	user := env.seedUser(t, model.UserStatusApproved, "0")
	require.NoError(t, svc.SetPin(ctx, user.ID, "2468"))
	for i := 0; i < 3; i++ {
		_ = svc.VerifyPin(ctx, user.ID, "1111")
	}

	clock.Advance(16 * time.Minute)
	assert.ErrorIs(t, svc.VerifyPin(ctx, user.ID, "1111"), ErrInvalidPin)

	got, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.PinAttempts)
	assert.Nil(t, got.PinLockedUntil)
}

func TestPinService_Unlock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newPinService(env, newFakeClock())

	user := env.seedUser(t, model.UserStatusApproved, "0")
	require.NoError(t, svc.SetPin(ctx, user.ID, "2468"))
	for i := 0; i < 3; i++ {
		_ = svc.VerifyPin(ctx, user.ID, "1111")
	}
	require.ErrorIs(t, svc.VerifyPin(ctx, user.ID, "2468"), ErrPinLocked)

	admin := int64(7)
	require.NoError(t, svc.Unlock(ctx, &admin, user.ID))
	require.NoError(t, svc.VerifyPin(ctx, user.ID, "2468"))

	logs, _, err := env.audits.List(ctx, model.AuditFilter{EntityType: "user", EntityID: &user.ID})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditPinUnlocked, logs[0].Action)
	require.NotNil(t, logs[0].ActorID)
	assert.Equal(t, admin, *logs[0].ActorID)
}

func TestPinService_CustomPolicy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewPinService(env.db, env.users, nil, nil,
		WithHashCost(bcrypt.MinCost),
		WithPinPolicy(1, time.Minute),
	)

	user := env.seedUser(t, model.UserStatusApproved, "0")
	require.NoError(t, svc.SetPin(ctx, user.ID, "2468"))
	assert.ErrorIs(t, svc.VerifyPin(ctx, user.ID, "1111"), ErrPinLocked)
}
