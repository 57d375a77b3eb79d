package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var phoneSeq atomic.Int64

func ptr[T any](v T) *T {
	return &v
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedUser(t *testing.T, db *testDB, status model.UserStatus, balance string, roles ...string) *model.User {
	t.Helper()
	u, err := NewUserRepository(db.DB).Create(context.Background(), &model.User{
		PhoneNumber: fmt.Sprintf("+9198%08d", phoneSeq.Add(1)),
		UserType:    "business",
		Roles:       roles,
		Status:      status,
		Balance:     dec(balance),
		Profile:     &model.UserProfile{Name: "Seed User"},
	})
	require.NoError(t, err)
	return u
}

func seedManufacturer(t *testing.T, db *testDB) *model.Manufacturer {
	t.Helper()
	u := seedUser(t, db, model.UserStatusApproved, "0", model.RoleManufacturer)
	m, err := NewManufacturerRepository(db.DB).Create(context.Background(), &model.Manufacturer{
		UserID:      u.ID,
		CompanyName: "Acme Bricks",
	})
	require.NoError(t, err)
	return m
}

func seedProduct(t *testing.T, db *testDB, manufacturerID int64, price string, stock int) *model.Product {
	t.Helper()
	p, err := NewProductRepository(db.DB).Create(context.Background(), &model.Product{
		ManufacturerID: manufacturerID,
		Name:           "Red brick",
		Category:       "bricks",
		Price:          dec(price),
		Stock:          stock,
		IsActive:       true,
	})
	require.NoError(t, err)
	return p
}
