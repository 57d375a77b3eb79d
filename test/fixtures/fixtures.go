package fixtures

import (
	"encoding/json"
	"fmt"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/shopspring/decimal"
)

const (
	BrickPrice  = "12.50"
	CementPrice = "30.00"
)

var (
	// TestBuyerBalance covers a few brick purchases and little else.
	TestBuyerBalance = "100.00"

	TestRegistration = model.UserCreateRequest{
		PhoneNumber: "+919800000001",
		UserType:    "business",
		Roles:       []string{model.RoleManufacturer},
		Name:        "Ravi Kiln Works",
	}
)

func NewPurchaseRequest(userID int64, items ...model.PurchaseItem) model.PurchaseRequest {
	return model.PurchaseRequest{UserID: userID, Items: items}
}

func Item(productID int64, quantity int) model.PurchaseItem {
	return model.PurchaseItem{ProductID: productID, Quantity: quantity}
}

// PurchaseBody is the JSON body of POST /api/purchases.
func PurchaseBody(userID int64, items ...model.PurchaseItem) []byte {
	b, err := json.Marshal(map[string]any{"userId": userID, "items": items})
	if err != nil {
		panic(fmt.Sprintf("marshal purchase body: %v", err))
	}
	return b
}

// Total is the price of quantity units at price.
func Total(price string, quantity int) decimal.Decimal {
	return decimal.RequireFromString(price).Mul(decimal.NewFromInt(int64(quantity)))
}
