package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/internal/repository"
	"github.com/nimasrn/marketplace/pkg/pg"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// testEnv wires the real repositories over an in-memory sqlite database.
type testEnv struct {
	db            *pg.DB
	users         *repository.UserRepository
	products      *repository.ProductRepository
	manufacturers *repository.ManufacturerRepository
	employees     *repository.EmployeeRepository
	agents        *repository.AgentRepository
	ledger        *repository.TransactionRepository
	purchases     *repository.PurchaseRepository
	recharges     *repository.RechargeRepository
	orders        *repository.OrderRepository
	labours       *repository.LabourRepository
	trucks        *repository.TruckRepository
	trips         *repository.TripRepository
	audits        *repository.AuditRepository
	events        *recordingEmitter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := repository.OpenTestDB(t)
	db := pg.New(gdb, gdb)
	return &testEnv{
		db:            db,
		users:         repository.NewUserRepository(db),
		products:      repository.NewProductRepository(db),
		manufacturers: repository.NewManufacturerRepository(db),
		employees:     repository.NewEmployeeRepository(db),
		agents:        repository.NewAgentRepository(db),
		ledger:        repository.NewTransactionRepository(db),
		purchases:     repository.NewPurchaseRepository(db),
		recharges:     repository.NewRechargeRepository(db),
		orders:        repository.NewOrderRepository(db),
		labours:       repository.NewLabourRepository(db),
		trucks:        repository.NewTruckRepository(db),
		trips:         repository.NewTripRepository(db),
		audits:        repository.NewAuditRepository(db),
		events:        &recordingEmitter{},
	}
}

var phoneSeq atomic.Int64

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

func (e *testEnv) seedUser(t *testing.T, status model.UserStatus, balance string, roles ...string) *model.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), &model.User{
		PhoneNumber: fmt.Sprintf("+9197%08d", phoneSeq.Add(1)),
		UserType:    "business",
		Roles:       roles,
		Status:      status,
		Balance:     dec(balance),
		Profile:     &model.UserProfile{Name: "Kiran Stores"},
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) seedManufacturer(t *testing.T, verified bool) *model.Manufacturer {
	t.Helper()
	u := e.seedUser(t, model.UserStatusApproved, "0", model.RoleManufacturer)
	m, err := e.manufacturers.Create(context.Background(), &model.Manufacturer{
		UserID:      u.ID,
		CompanyName: "Deccan Cement",
		IsVerified:  verified,
	})
	require.NoError(t, err)
	return m
}

func (e *testEnv) seedProduct(t *testing.T, manufacturerID int64, name, price string, stock int) *model.Product {
	t.Helper()
	p, err := e.products.Create(context.Background(), &model.Product{
		ManufacturerID: manufacturerID,
		Name:           name,
		Category:       "cement",
		Price:          dec(price),
		Stock:          stock,
		IsActive:       true,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) seedEmployee(t *testing.T, role string) *model.Employee {
	t.Helper()
	u := e.seedUser(t, model.UserStatusApproved, "0", role)
	emp, err := e.employees.Create(context.Background(), &model.Employee{UserID: u.ID, Role: role})
	require.NoError(t, err)
	return emp
}

func (e *testEnv) balanceOf(t *testing.T, userID int64) decimal.Decimal {
	t.Helper()
	u, err := e.users.GetByID(context.Background(), userID)
	require.NoError(t, err)
	return u.Balance
}

func (e *testEnv) stockOf(t *testing.T, productID int64) int {
	t.Helper()
	p, err := e.products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func (e *testEnv) transactionsOf(t *testing.T, userID int64) []*model.Transaction {
	t.Helper()
	txns, _, err := e.ledger.List(context.Background(), model.TransactionFilter{UserID: &userID})
	require.NoError(t, err)
	return txns
}

type emitted struct {
	Type    events.Type
	UserID  int64
	Payload any
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (r *recordingEmitter) Emit(_ context.Context, t events.Type, userID int64, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{Type: t, UserID: userID, Payload: payload})
}

func (r *recordingEmitter) ofType(t events.Type) []emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []emitted
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// fakeClock is a settable Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
