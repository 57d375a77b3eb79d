package model

import (
	"time"

	"github.com/nimasrn/marketplace/pkg/apperr"
	"github.com/shopspring/decimal"
)

type Purchase struct {
	ID            int64           `json:"id"`
	TransactionID int64           `json:"transactionId"`
	UserID        int64           `json:"userId"`
	ProductID     int64           `json:"productId"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type PurchaseItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type PurchaseRequest struct {
	UserID int64          `json:"userId"`
	Items  []PurchaseItem `json:"items"`
	// IdempotencyKey is stored as the transaction reference.
	IdempotencyKey string `json:"-"`
}

func (p PurchaseRequest) Validate(maxItems int) error {
	if err := positiveID("userId", p.UserID); err != nil {
		return err
	}
	if len(p.Items) == 0 {
		return apperr.New(apperr.KindValidation, "items cannot be empty")
	}
	if maxItems > 0 && len(p.Items) > maxItems {
		return apperr.Newf(apperr.KindValidation, "at most %d items per purchase", maxItems)
	}
	perProduct := make(map[int64]int, len(p.Items))
	for _, it := range p.Items {
		if it.ProductID <= 0 {
			return apperr.New(apperr.KindValidation, "productId is required")
		}
		if err := validQuantity(it.Quantity); err != nil {
			return err
		}
		// both operands are within MaxQuantity, so the comparison cannot wrap
		if perProduct[it.ProductID] > MaxQuantity-it.Quantity {
			return apperr.Newf(apperr.KindValidation, "total quantity of product %d cannot exceed %d", it.ProductID, MaxQuantity)
		}
		perProduct[it.ProductID] += it.Quantity
	}
	return nil
}

type PurchaseResult struct {
	TransactionID int64           `json:"transactionId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	Purchases     []*Purchase     `json:"purchases"`
	// Replayed is set when an idempotency key matched an earlier purchase.
	Replayed bool `json:"replayed,omitempty"`
}

type PurchaseFilter struct {
	UserID        *int64
	TransactionID *int64
	Page
}
