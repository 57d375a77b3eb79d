package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabourRepository_Assign(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLabourRepository(db.DB)
	ctx := context.Background()

	l, err := repo.Create(ctx, model.LabourCreateRequest{Name: "Suresh", PhoneNumber: "+919811111111", Skill: "loading"})
	require.NoError(t, err)
	assert.Equal(t, model.LabourAvailable, l.Status)

	_, err = repo.Create(ctx, model.LabourCreateRequest{Name: "Dup", PhoneNumber: "+919811111111"})
	assert.ErrorIs(t, err, ErrDuplicateLabourPhone)

	require.NoError(t, repo.Assign(ctx, l.ID, model.TargetManufacturer, 7, time.Now()))

	got, err := repo.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LabourAssigned, got.Status)
	assert.True(t, got.AssignedTo(model.TargetManufacturer, 7))

	err = repo.Assign(ctx, l.ID, model.TargetTruckOwner, 9, time.Now())
	assert.ErrorIs(t, err, ErrLabourUnavailable)

	assert.ErrorIs(t, repo.Assign(ctx, 999, model.TargetTruckOwner, 9, time.Now()), ErrLabourNotFound)

	require.NoError(t, repo.Unassign(ctx, l.ID))
	got, err = repo.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LabourAvailable, got.Status)
	assert.Nil(t, got.AssignedToID)
	assert.Nil(t, got.AssignedToType)
}

func TestLabourRepository_ConcurrentAssign(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLabourRepository(db.DB)
	ctx := context.Background()

	l, err := repo.Create(ctx, model.LabourCreateRequest{Name: "Mahesh", PhoneNumber: "+919822222222"})
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := int64(1); i <= 5; i++ {
		wg.Add(1)
		go func(target int64) {
			defer wg.Done()
			if err := repo.Assign(ctx, l.ID, model.TargetManufacturer, target, time.Now()); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, successes)
}

func TestLabourRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLabourRepository(db.DB)
	ctx := context.Background()

	a, err := repo.Create(ctx, model.LabourCreateRequest{Name: "A", PhoneNumber: "1"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.LabourCreateRequest{Name: "B", PhoneNumber: "2"})
	require.NoError(t, err)
	require.NoError(t, repo.Assign(ctx, a.ID, model.TargetTruckOwner, 3, time.Now()))

	status := model.LabourAvailable
	got, total, err := repo.List(ctx, model.LabourFilter{Status: &status})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "B", got[0].Name)

	target := model.TargetTruckOwner
	_, total, err = repo.List(ctx, model.LabourFilter{AssignedToID: ptr(int64(3)), AssignedToType: &target})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
