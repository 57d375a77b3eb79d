package repository

import (
	"time"

	"github.com/nimasrn/marketplace/internal/model"
	"github.com/shopspring/decimal"
)

type TransactionEntity struct {
	ID            int64           `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	UserID        int64           `db:"user_id"        gorm:"column:user_id;not null;index"`
	User          *UserEntity     `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:RESTRICT"`
	Type          string          `db:"type"           gorm:"column:type;not null"`
	Amount        decimal.Decimal `db:"amount"         gorm:"column:amount;type:decimal(14,2);not null"`
	BalanceBefore decimal.Decimal `db:"balance_before" gorm:"column:balance_before;type:decimal(14,2);not null"`
	BalanceAfter  decimal.Decimal `db:"balance_after"  gorm:"column:balance_after;type:decimal(14,2);not null"`
	Description   string          `db:"description"    gorm:"column:description;not null;default:''"`
	Reference     *string         `db:"reference"      gorm:"column:reference;uniqueIndex"`
	CreatedAt     time.Time       `db:"created_at"     gorm:"column:created_at;autoCreateTime"`
}

func (TransactionEntity) TableName() string {
	return "transactions"
}

type PurchaseEntity struct {
	ID            int64           `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	TransactionID int64           `db:"transaction_id" gorm:"column:transaction_id;not null;index"`
	UserID        int64           `db:"user_id"        gorm:"column:user_id;not null;index"`
	ProductID     int64           `db:"product_id"     gorm:"column:product_id;not null;index"`
	Quantity      int             `db:"quantity"       gorm:"column:quantity;not null"`
	UnitPrice     decimal.Decimal `db:"unit_price"     gorm:"column:unit_price;type:decimal(14,2);not null"`
	TotalPrice    decimal.Decimal `db:"total_price"    gorm:"column:total_price;type:decimal(14,2);not null"`
	CreatedAt     time.Time       `db:"created_at"     gorm:"column:created_at;autoCreateTime"`
}

func (PurchaseEntity) TableName() string {
	return "purchases"
}

type RechargeEntity struct {
	ID            int64           `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	UserID        int64           `db:"user_id"        gorm:"column:user_id;not null;index"`
	TransactionID int64           `db:"transaction_id" gorm:"column:transaction_id;not null;uniqueIndex"`
	Amount        decimal.Decimal `db:"amount"         gorm:"column:amount;type:decimal(14,2);not null"`
	PaymentMethod string          `db:"payment_method" gorm:"column:payment_method;not null"`
	RechargedBy   string          `db:"recharged_by"   gorm:"column:recharged_by;not null;default:''"`
	Notes         string          `db:"notes"          gorm:"column:notes;not null;default:''"`
	CreatedAt     time.Time       `db:"created_at"     gorm:"column:created_at;autoCreateTime"`
}

func (RechargeEntity) TableName() string {
	return "recharges"
}

func toTransactionEntity(m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	return &TransactionEntity{
		ID:            m.ID,
		UserID:        m.UserID,
		Type:          string(m.Type),
		Amount:        m.Amount,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		Description:   m.Description,
		Reference:     m.Reference,
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	return &model.Transaction{
		ID:            e.ID,
		UserID:        e.UserID,
		Type:          model.TransactionType(e.Type),
		Amount:        e.Amount,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		Description:   e.Description,
		Reference:     e.Reference,
		CreatedAt:     e.CreatedAt,
	}
}

func toPurchaseEntity(m *model.Purchase) *PurchaseEntity {
	return &PurchaseEntity{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		UserID:        m.UserID,
		ProductID:     m.ProductID,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		TotalPrice:    m.TotalPrice,
	}
}

func toPurchaseModel(e *PurchaseEntity) *model.Purchase {
	return &model.Purchase{
		ID:            e.ID,
		TransactionID: e.TransactionID,
		UserID:        e.UserID,
		ProductID:     e.ProductID,
		Quantity:      e.Quantity,
		UnitPrice:     e.UnitPrice,
		TotalPrice:    e.TotalPrice,
		CreatedAt:     e.CreatedAt,
	}
}

func toRechargeModel(e *RechargeEntity) *model.Recharge {
	return &model.Recharge{
		ID:            e.ID,
		UserID:        e.UserID,
		TransactionID: e.TransactionID,
		Amount:        e.Amount,
		PaymentMethod: model.PaymentMethod(e.PaymentMethod),
		RechargedBy:   e.RechargedBy,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
	}
}
