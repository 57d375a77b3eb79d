package model

import (
	"math"
	"testing"
	"time"

	"github.com/nimasrn/marketplace/pkg/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusInProgress, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusCompleted, false},
		{OrderStatusInProgress, OrderStatusCompleted, true},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTransaction_Consistent(t *testing.T) {
	debit := &Transaction{
		Type:          TransactionPurchase,
		Amount:        decimal.NewFromInt(600),
		BalanceBefore: decimal.NewFromInt(1000),
		BalanceAfter:  decimal.NewFromInt(400),
	}
	assert.True(t, debit.Consistent())

	credit := &Transaction{
		Type:          TransactionRecharge,
		Amount:        decimal.NewFromInt(50),
		BalanceBefore: decimal.NewFromInt(400),
		BalanceAfter:  decimal.NewFromInt(450),
	}
	assert.True(t, credit.Consistent())

	credit.BalanceAfter = decimal.NewFromInt(350)
	assert.False(t, credit.Consistent())
}

func TestPurchaseRequest_Validate(t *testing.T) {
	ok := PurchaseRequest{UserID: 1, Items: []PurchaseItem{{ProductID: 1, Quantity: 2}}}
	assert.NoError(t, ok.Validate(10))

	cases := map[string]PurchaseRequest{
		"missing user":  {Items: []PurchaseItem{{ProductID: 1, Quantity: 1}}},
		"no items":      {UserID: 1},
		"zero quantity": {UserID: 1, Items: []PurchaseItem{{ProductID: 1, Quantity: 0}}},
		"no product":    {UserID: 1, Items: []PurchaseItem{{Quantity: 1}}},
		"quantity above int column": {UserID: 1, Items: []PurchaseItem{
			{ProductID: 1, Quantity: MaxQuantity + 1},
		}},
		"repeated product wraps": {UserID: 1, Items: []PurchaseItem{
			{ProductID: 1, Quantity: math.MaxInt},
			{ProductID: 1, Quantity: math.MaxInt},
		}},
		"repeated product sums past bound": {UserID: 1, Items: []PurchaseItem{
			{ProductID: 1, Quantity: MaxQuantity},
			{ProductID: 1, Quantity: 1},
		}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			err := req.Validate(10)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation), "got %v", err)
		})
	}

	atBound := PurchaseRequest{UserID: 1, Items: []PurchaseItem{
		{ProductID: 1, Quantity: MaxQuantity - 1},
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: MaxQuantity},
	}}
	assert.NoError(t, atBound.Validate(10))

	tooMany := PurchaseRequest{UserID: 1, Items: make([]PurchaseItem, 3)}
	for i := range tooMany.Items {
		tooMany.Items[i] = PurchaseItem{ProductID: int64(i + 1), Quantity: 1}
	}
	assert.Error(t, tooMany.Validate(2))
}

func TestRechargeRequest_Validate(t *testing.T) {
	req := RechargeRequest{UserID: 1, Amount: decimal.NewFromInt(100), PaymentMethod: PaymentUPI}
	assert.NoError(t, req.Validate())

	req.PaymentMethod = "Cheque"
	assert.Error(t, req.Validate())

	req.PaymentMethod = PaymentCash
	req.Amount = decimal.Zero
	assert.Error(t, req.Validate())
}

func TestBalanceUpdateRequest_Validate(t *testing.T) {
	req := BalanceUpdateRequest{UserID: 1, Amount: decimal.NewFromInt(5), Operation: BalanceSubtract}
	assert.NoError(t, req.Validate())

	req.Operation = "multiply"
	assert.Error(t, req.Validate())

	req.Operation = BalanceAdd
	req.Amount = decimal.NewFromInt(-5)
	assert.Error(t, req.Validate())
}

func TestUser_PinLocked(t *testing.T) {
	now := time.Now()
	until := now.Add(time.Minute)
	u := &User{PinLockedUntil: &until}
	assert.True(t, u.PinLocked(now))
	assert.False(t, u.PinLocked(now.Add(2*time.Minute)))
	assert.False(t, (&User{}).PinLocked(now))
}

func TestUser_HasRole(t *testing.T) {
	u := &User{Roles: []string{"agent", "Truck Owner"}}
	assert.True(t, u.HasRole(RoleAgent))
	assert.True(t, u.HasRole(RoleTruckOwner))
	assert.False(t, u.HasRole(RoleManufacturer))
}

func TestValidatePin(t *testing.T) {
	assert.NoError(t, ValidatePin("1234"))
	assert.NoError(t, ValidatePin("123456"))
	assert.Error(t, ValidatePin("123"))
	assert.Error(t, ValidatePin("12a4"))
}

func TestPage_Normalize(t *testing.T) {
	assert.Equal(t, Page{Limit: DefaultLimit}, Page{}.Normalize())
	assert.Equal(t, Page{Limit: MaxLimit, Offset: 0}, Page{Limit: 10_000, Offset: -3}.Normalize())
}

func TestOrderCreateRequest_Validate(t *testing.T) {
	ok := OrderCreateRequest{
		CustomerName:    "Ravi",
		DeliveryAddress: "Plot 4, Guntur",
		Items:           []OrderItemRequest{{ProductID: 1, Quantity: 2}},
	}
	assert.NoError(t, ok.Validate())

	huge := ok
	huge.Items = []OrderItemRequest{{ProductID: 1, Quantity: 3_000_000_000}}
	err := huge.Validate()
	assert.True(t, apperr.IsKind(err, apperr.KindValidation), "got %v", err)

	zero := ok
	zero.Items = []OrderItemRequest{{ProductID: 1}}
	assert.True(t, apperr.IsKind(zero.Validate(), apperr.KindValidation))
}
