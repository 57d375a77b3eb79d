package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.DB)
	ctx := context.Background()

	t.Run("creates user with profile", func(t *testing.T) {
		created, err := repo.Create(ctx, &model.User{
			PhoneNumber: "+919800000001",
			Roles:       []string{model.RoleAgent, model.RoleDriver},
			Status:      model.UserStatusPending,
			Balance:     dec("0"),
			Profile:     &model.UserProfile{Name: "Ravi", Email: "ravi@example.com"},
		})
		require.NoError(t, err)
		assert.NotZero(t, created.ID)

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{model.RoleAgent, model.RoleDriver}, got.Roles)
		assert.Equal(t, model.UserStatusPending, got.Status)
		require.NotNil(t, got.Profile)
		assert.Equal(t, "Ravi", got.Profile.Name)
		assert.Equal(t, "ravi@example.com", got.Profile.Email)
		assert.False(t, got.HasPin)
	})

	t.Run("duplicate phone is a conflict", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.User{PhoneNumber: "+919800000001", Status: model.UserStatusPending})
		assert.ErrorIs(t, err, ErrDuplicateUser)
	})

	t.Run("duplicate email rolls back the user row", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.User{
			PhoneNumber: "+919800000002",
			Status:      model.UserStatusPending,
			Profile:     &model.UserProfile{Name: "Other", Email: "ravi@example.com"},
		})
		assert.ErrorIs(t, err, ErrDuplicateUser)

		_, err = repo.GetByPhone(ctx, "+919800000002")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := NewUserRepository(db.DB).GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.DB)
	ctx := context.Background()

	seedUser(t, db, model.UserStatusPending, "0", model.RoleAgent)
	seedUser(t, db, model.UserStatusPending, "0", model.RoleManufacturer)
	seedUser(t, db, model.UserStatusApproved, "0", model.RoleAgent)

	status := model.UserStatusPending
	users, total, err := repo.List(ctx, model.UserFilter{Status: &status})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)

	role := model.RoleAgent
	users, total, err = repo.List(ctx, model.UserFilter{Role: &role, Page: model.Page{Limit: 1}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 1)
}

func TestUserRepository_UpdateBalance(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.DB)
	ctx := context.Background()
	u := seedUser(t, db, model.UserStatusApproved, "1000")

	t.Run("applies when before matches", func(t *testing.T) {
		now := time.Now().UTC()
		require.NoError(t, repo.UpdateBalance(ctx, u.ID, dec("1000"), dec("400"), &now))

		got, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(dec("400")), "balance %s", got.Balance)
		assert.NotNil(t, got.LastLogin)
	})

	t.Run("stale before is rejected", func(t *testing.T) {
		err := repo.UpdateBalance(ctx, u.ID, dec("1000"), dec("900"), nil)
		assert.ErrorIs(t, err, ErrConcurrentUpdate)

		got, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(dec("400")))
	})
}

func TestUserRepository_PinState(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.DB)
	ctx := context.Background()
	u := seedUser(t, db, model.UserStatusApproved, "0")

	hash := "hashed"
	require.NoError(t, repo.SetPin(ctx, u.ID, &hash))

	until := time.Now().Add(15 * time.Minute).UTC()
	require.NoError(t, repo.UpdatePinState(ctx, u.ID, 3, &until))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.HasPin)
	assert.Equal(t, 3, got.PinAttempts)
	assert.True(t, got.PinLocked(time.Now()))

	require.NoError(t, repo.SetPin(ctx, u.ID, &hash))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, got.PinAttempts)
	assert.Nil(t, got.PinLockedUntil)
}

func TestUserRepository_TransitionStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.DB)
	ctx := context.Background()
	u := seedUser(t, db, model.UserStatusPending, "0")

	now := time.Now().UTC()
	err := repo.TransitionStatus(ctx, u.ID, []model.UserStatus{model.UserStatusPending}, model.UserStatusApproved,
		map[string]any{"approved_at": now})
	require.NoError(t, err)

	err = repo.TransitionStatus(ctx, u.ID, []model.UserStatus{model.UserStatusPending}, model.UserStatusRejected, nil)
	assert.ErrorIs(t, err, ErrStatusChanged)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusApproved, got.Status)
	assert.NotNil(t, got.ApprovedAt)
}

func TestUserRepository_GetForUpdateInsideTransaction(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.DB)
	u := seedUser(t, db, model.UserStatusApproved, "50")

	errBoom := errors.New("boom")
	err := db.WithinTransaction(context.Background(), func(ctx context.Context) error {
		locked, err := repo.GetForUpdate(ctx, u.ID)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateBalance(ctx, locked.ID, locked.Balance, dec("0"), nil))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(dec("50")), "rolled back balance %s", got.Balance)
}

func TestUserRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.DB)
	ctx := context.Background()

	u := seedUser(t, db, model.UserStatusPending, "0", model.RoleAgent)

	roles := []string{model.RoleManufacturer}
	got, err := repo.Update(ctx, u.ID, model.UserUpdateRequest{
		Roles:   &roles,
		Name:    ptr("Asha Traders"),
		Address: ptr("Pune"),
	})
	require.NoError(t, err)
	assert.Equal(t, roles, got.Roles)
	require.NotNil(t, got.Profile)
	assert.Equal(t, "Asha Traders", got.Profile.Name)
	assert.Equal(t, "Pune", got.Profile.Address)

	_, err = repo.Update(ctx, 999, model.UserUpdateRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
