package repository

import (
	"context"
	"testing"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentRepository_EnsureForUserIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAgentRepository(db.DB)
	ctx := context.Background()
	u := seedUser(t, db, model.UserStatusApproved, "0", model.RoleAgent)

	first, err := repo.EnsureForUser(ctx, u.ID)
	require.NoError(t, err)
	second, err := repo.EnsureForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	n, err := repo.CountByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.Create(ctx, u.ID, "north")
	assert.ErrorIs(t, err, ErrDuplicateRole)
}

func TestAgentRepository_GetLoadsUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAgentRepository(db.DB)
	ctx := context.Background()
	u := seedUser(t, db, model.UserStatusApproved, "0", model.RoleAgent)

	a, err := repo.Create(ctx, u.ID, "west")
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "west", got.Region)
	require.NotNil(t, got.User)
	assert.Equal(t, u.PhoneNumber, got.User.PhoneNumber)
	require.NotNil(t, got.User.Profile)

	require.NoError(t, repo.Update(ctx, a.ID, "east"))
	require.NoError(t, repo.Delete(ctx, a.ID))
	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestManufacturerRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewManufacturerRepository(db.DB)
	ctx := context.Background()

	verified := seedManufacturer(t, db)
	seedManufacturer(t, db)
	require.NoError(t, repo.UpdateFields(ctx, verified.ID, map[string]any{"is_verified": true}))

	got, total, err := repo.List(ctx, model.ManufacturerFilter{VerifiedOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, verified.ID, got[0].ID)
	assert.True(t, got[0].IsVerified)
}

func TestEmployeeRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewEmployeeRepository(db.DB)
	ctx := context.Background()
	m := seedManufacturer(t, db)
	u := seedUser(t, db, model.UserStatusApproved, "0", model.RoleEmployee)

	e, err := repo.EnsureForUser(ctx, u.ID, model.RoleEmployee)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateFields(ctx, e.ID, map[string]any{"manufacturer_id": m.ID}))

	e2, err := repo.EnsureForUser(ctx, u.ID, model.RoleTruckOwner)
	require.NoError(t, err)
	assert.Equal(t, e.ID, e2.ID)
	assert.True(t, e2.IsTruckOwner())

	staff, err := repo.ListByManufacturer(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, staff, 1)

	require.NoError(t, repo.Detach(ctx, m.ID, e.ID))
	assert.ErrorIs(t, repo.Detach(ctx, m.ID, e.ID), ErrEmployeeNotFound)
}
