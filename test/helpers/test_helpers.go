package helpers

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/internal/repository"
	"github.com/nimasrn/marketplace/pkg/pg"
	"github.com/nimasrn/marketplace/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var phoneSeq atomic.Int64

func SetupTestDB(t *testing.T) *pg.DB {
	t.Helper()
	db := repository.OpenTestDB(t)
	return pg.New(db, db)
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	adapter := redis.FromClient(client, "test:")
	t.Cleanup(func() { _ = adapter.Close() })

	return mr, adapter
}

func CreateTestUser(t *testing.T, db *pg.DB, status model.UserStatus, balance string, roles ...string) *model.User {
	t.Helper()
	u, err := repository.NewUserRepository(db).Create(context.Background(), &model.User{
		PhoneNumber: fmt.Sprintf("+9197%08d", phoneSeq.Add(1)),
		UserType:    "business",
		Roles:       roles,
		Status:      status,
		Balance:     decimal.RequireFromString(balance),
		Profile:     &model.UserProfile{Name: "Test User"},
	})
	require.NoError(t, err)
	return u
}

func CreateTestManufacturer(t *testing.T, db *pg.DB) *model.Manufacturer {
	t.Helper()
	owner := CreateTestUser(t, db, model.UserStatusApproved, "0", model.RoleManufacturer)
	m, err := repository.NewManufacturerRepository(db).Create(context.Background(), &model.Manufacturer{
		UserID:      owner.ID,
		CompanyName: "Test Bricks Ltd",
	})
	require.NoError(t, err)
	return m
}

func CreateTestProduct(t *testing.T, db *pg.DB, manufacturerID int64, name, price string, stock int) *model.Product {
	t.Helper()
	p, err := repository.NewProductRepository(db).Create(context.Background(), &model.Product{
		ManufacturerID: manufacturerID,
		Name:           name,
		Category:       "bricks",
		Price:          decimal.RequireFromString(price),
		Stock:          stock,
		IsActive:       true,
	})
	require.NoError(t, err)
	return p
}

func GetBalance(t *testing.T, db *pg.DB, userID int64) decimal.Decimal {
	t.Helper()
	u, err := repository.NewUserRepository(db).GetByID(context.Background(), userID)
	require.NoError(t, err)
	return u.Balance
}

func GetStock(t *testing.T, db *pg.DB, productID int64) int {
	t.Helper()
	p, err := repository.NewProductRepository(db).GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

// WaitFor polls cond until it holds or timeout passes.
func WaitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, timeout, 10*time.Millisecond)
}
