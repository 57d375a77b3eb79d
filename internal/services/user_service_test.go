package services

import (
	"context"
	"testing"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/internal/repository"
	"github.com/nimasrn/marketplace/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewUserService(env.users)

	u, err := svc.Create(ctx, model.UserCreateRequest{
		PhoneNumber: " +919811122233 ",
		Roles:       []string{model.RoleAgent},
		Name:        "Lakshmi Traders",
		Email:       "lakshmi@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusPending, u.Status)
	assert.True(t, u.Balance.IsZero())
	assert.Equal(t, model.RoleAgent, u.UserType)
	assert.Equal(t, "+919811122233", u.PhoneNumber)

	_, err = svc.Create(ctx, model.UserCreateRequest{
		PhoneNumber: "+919811122233",
		Roles:       []string{model.RoleAgent},
		Name:        "Duplicate",
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateUser)

	_, err = svc.Create(ctx, model.UserCreateRequest{PhoneNumber: "+919800000000", Name: "No Role"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUserService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewUserService(env.users)
	user := env.seedUser(t, model.UserStatusApproved, "0", model.RoleAgent)

	address := "Main Road, Ongole"
	got, err := svc.Update(ctx, user.ID, model.UserUpdateRequest{Address: &address})
	require.NoError(t, err)
	require.NotNil(t, got.Profile)
	assert.Equal(t, address, got.Profile.Address)
	assert.Equal(t, "Kiran Stores", got.Profile.Name)

	blank := " "
	_, err = svc.Update(ctx, user.ID, model.UserUpdateRequest{Name: &blank})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUserService_DeleteDeactivates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewUserService(env.users)
	user := env.seedUser(t, model.UserStatusApproved, "25")

	require.NoError(t, svc.Delete(ctx, user.ID))
	require.NoError(t, svc.Delete(ctx, user.ID))

	got, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusInactive, got.Status)
	assert.True(t, dec("25").Equal(got.Balance))

	assert.ErrorIs(t, svc.Delete(ctx, 4040), repository.ErrUserNotFound)
}
