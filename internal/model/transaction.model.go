package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionPurchase TransactionType = "Purchase"
	TransactionRecharge TransactionType = "Recharge"
	TransactionCredit   TransactionType = "Credit"
	TransactionDebit    TransactionType = "Debit"
)

// IsCredit reports whether the type increases the balance.
func (t TransactionType) IsCredit() bool {
	return t == TransactionRecharge || t == TransactionCredit
}

// Transaction is an immutable ledger row.
type Transaction struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	Description   string          `json:"description,omitempty"`
	Reference     *string         `json:"reference,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Consistent checks balanceAfter == balanceBefore ± amount for the type.
func (t *Transaction) Consistent() bool {
	if t.Type.IsCredit() {
		return t.BalanceBefore.Add(t.Amount).Equal(t.BalanceAfter)
	}
	return t.BalanceBefore.Sub(t.Amount).Equal(t.BalanceAfter)
}

type TransactionFilter struct {
	UserID *int64
	Type   *TransactionType
	From   *time.Time
	To     *time.Time
	Page
}
