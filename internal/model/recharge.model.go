package model

import (
	"time"

	"github.com/nimasrn/marketplace/pkg/apperr"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "Cash"
	PaymentUPI          PaymentMethod = "UPI"
	PaymentCard         PaymentMethod = "Card"
	PaymentBankTransfer PaymentMethod = "BankTransfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentUPI, PaymentCard, PaymentBankTransfer:
		return true
	}
	return false
}

type Recharge struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	TransactionID int64           `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	RechargedBy   string          `json:"rechargedBy,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type RechargeRequest struct {
	UserID        int64           `json:"-"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	RechargedBy   string          `json:"rechargedBy"`
	Notes         string          `json:"notes"`
}

func (p RechargeRequest) Validate() error {
	if err := positiveID("userId", p.UserID); err != nil {
		return err
	}
	if !p.Amount.IsPositive() {
		return apperr.New(apperr.KindValidation, "amount must be greater than 0")
	}
	if !p.PaymentMethod.Valid() {
		return apperr.New(apperr.KindValidation, "paymentMethod must be one of Cash, UPI, Card, BankTransfer")
	}
	return nil
}

type RechargeResult struct {
	Recharge    *Recharge    `json:"recharge"`
	Transaction *Transaction `json:"transaction"`
}
