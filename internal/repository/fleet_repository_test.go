package repository

import (
	"context"
	"testing"
	"time"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTruckOwner(t *testing.T, db *testDB) *model.Employee {
	t.Helper()
	u := seedUser(t, db, model.UserStatusApproved, "0", model.RoleTruckOwner)
	e, err := NewEmployeeRepository(db.DB).EnsureForUser(context.Background(), u.ID, model.RoleTruckOwner)
	require.NoError(t, err)
	return e
}

func TestTruckRepository_OwnerScope(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTruckRepository(db.DB)
	ctx := context.Background()
	owner := seedTruckOwner(t, db)
	intruder := seedTruckOwner(t, db)

	truck, err := repo.Create(ctx, owner.ID, model.TruckRequest{TruckNumber: "MH12AB1234", Capacity: 10})
	require.NoError(t, err)
	assert.Equal(t, model.TruckAvailable, truck.Status)

	_, err = repo.Create(ctx, intruder.ID, model.TruckRequest{TruckNumber: "MH12AB1234"})
	assert.ErrorIs(t, err, ErrDuplicateTruck)

	_, err = repo.Get(ctx, intruder.ID, truck.ID)
	assert.ErrorIs(t, err, ErrTruckNotFound)
	assert.ErrorIs(t, repo.Update(ctx, intruder.ID, truck.ID, model.TruckRequest{TruckNumber: "X"}), ErrTruckNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, intruder.ID, truck.ID), ErrTruckNotFound)

	trucks, total, err := repo.List(ctx, intruder.ID, model.Page{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, trucks)

	require.NoError(t, repo.Update(ctx, owner.ID, truck.ID, model.TruckRequest{TruckNumber: "MH12AB1234", Capacity: 12, Status: model.TruckMaintenance}))
	got, err := repo.Get(ctx, owner.ID, truck.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Capacity)
	assert.Equal(t, model.TruckMaintenance, got.Status)
}

func TestTripRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	trucks := NewTruckRepository(db.DB)
	trips := NewTripRepository(db.DB)
	ctx := context.Background()
	owner := seedTruckOwner(t, db)
	other := seedTruckOwner(t, db)

	truck, err := trucks.Create(ctx, owner.ID, model.TruckRequest{TruckNumber: "KA01"})
	require.NoError(t, err)

	trip, err := trips.Create(ctx, model.TripCreateRequest{TruckID: truck.ID, DriverID: 5, Origin: "Pune", Destination: "Mumbai"})
	require.NoError(t, err)
	assert.Equal(t, model.TripScheduled, trip.Status)

	_, err = trips.Get(ctx, other.ID, trip.ID)
	assert.ErrorIs(t, err, ErrTripNotFound)

	now := time.Now().UTC()
	require.NoError(t, trips.UpdateStatus(ctx, trip.ID, model.TripScheduled, model.TripInProgress, now))
	assert.ErrorIs(t, trips.UpdateStatus(ctx, trip.ID, model.TripScheduled, model.TripCancelled, now), ErrStatusChanged)

	got, err := trips.Get(ctx, owner.ID, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TripInProgress, got.Status)
	assert.NotNil(t, got.StartedAt)

	listed, total, err := trips.List(ctx, model.TripFilter{OwnerID: owner.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, trip.ID, listed[0].ID)

	require.NoError(t, trucks.SetStatus(ctx, truck.ID, []model.TruckStatus{model.TruckAvailable}, model.TruckOnTrip))
	assert.ErrorIs(t, trucks.SetStatus(ctx, truck.ID, []model.TruckStatus{model.TruckAvailable}, model.TruckOnTrip), ErrStatusChanged)
}
