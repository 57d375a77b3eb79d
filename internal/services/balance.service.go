package services

import (
	"context"
	"fmt"

	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/pkg/prom"
	"github.com/shopspring/decimal"
)

type RechargeStore interface {
	Create(ctx context.Context, m *model.Recharge) (*model.Recharge, error)
	ListByUser(ctx context.Context, userID int64, page model.Page) ([]*model.Recharge, int64, error)
}

type BalanceRecharged struct {
	RechargeID    int64               `json:"rechargeId"`
	Amount        decimal.Decimal     `json:"amount"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	BalanceAfter  decimal.Decimal     `json:"balanceAfter"`
}

// BalanceService owns every balance movement that is not a purchase.
type BalanceService struct {
	tx        Transactor
	users     UserStore
	ledger    LedgerStore
	recharges RechargeStore
	audit     AuditWriter
	events    Emitter
}

func NewBalanceService(tx Transactor, users UserStore, ledger LedgerStore, recharges RechargeStore, audit AuditWriter, emitter Emitter) *BalanceService {
	return &BalanceService{
		tx:        tx,
		users:     users,
		ledger:    ledger,
		recharges: recharges,
		audit:     audit,
		events:    orNopEmitter(emitter),
	}
}

// UpdateBalance adds to or subtracts from the balance and records a Credit or
// Debit transaction.
func (s *BalanceService) UpdateBalance(ctx context.Context, actorID *int64, req model.BalanceUpdateRequest) (*model.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var created *model.Transaction
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.GetForUpdate(ctx, req.UserID)
		if err != nil {
			return err
		}

		txnType := model.TransactionCredit
		after := user.Balance.Add(req.Amount)
		if req.Operation == model.BalanceSubtract {
			if req.Amount.GreaterThan(user.Balance) {
				return ErrInsufficientBalance
			}
			txnType = model.TransactionDebit
			after = user.Balance.Sub(req.Amount)
		}

		description := req.Description
		if description == "" {
			description = fmt.Sprintf("balance %s by admin", req.Operation)
		}
		created, err = s.ledger.Create(ctx, &model.Transaction{
			UserID:        user.ID,
			Type:          txnType,
			Amount:        req.Amount,
			BalanceBefore: user.Balance,
			BalanceAfter:  after,
			Description:   description,
		})
		if err != nil {
			return err
		}
		if err := s.users.UpdateBalance(ctx, user.ID, user.Balance, after, nil); err != nil {
			return err
		}
		return audit(ctx, s.audit, actorID, model.AuditBalanceSet, "user", user.ID,
			fmt.Sprintf("%s %s", req.Operation, req.Amount.StringFixed(2)))
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Recharge credits the user and records the Recharge row with its mirrored
// Recharge transaction.
func (s *BalanceService) Recharge(ctx context.Context, req model.RechargeRequest) (*model.RechargeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var res model.RechargeResult
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.GetForUpdate(ctx, req.UserID)
		if err != nil {
			return err
		}
		after := user.Balance.Add(req.Amount)

		res.Transaction, err = s.ledger.Create(ctx, &model.Transaction{
			UserID:        user.ID,
			Type:          model.TransactionRecharge,
			Amount:        req.Amount,
			BalanceBefore: user.Balance,
			BalanceAfter:  after,
			Description:   fmt.Sprintf("recharge via %s", req.PaymentMethod),
		})
		if err != nil {
			return err
		}

		res.Recharge, err = s.recharges.Create(ctx, &model.Recharge{
			UserID:        user.ID,
			TransactionID: res.Transaction.ID,
			Amount:        req.Amount,
			PaymentMethod: req.PaymentMethod,
			RechargedBy:   req.RechargedBy,
			Notes:         req.Notes,
		})
		if err != nil {
			return err
		}
		return s.users.UpdateBalance(ctx, user.ID, user.Balance, after, nil)
	})
	if err != nil {
		return nil, err
	}

	prom.RecordRecharge(string(req.PaymentMethod))
	s.events.Emit(ctx, events.BalanceRecharged, req.UserID, BalanceRecharged{
		RechargeID:    res.Recharge.ID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		BalanceAfter:  res.Transaction.BalanceAfter,
	})
	return &res, nil
}

func (s *BalanceService) ListTransactions(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error) {
	return s.ledger.List(ctx, f)
}

func (s *BalanceService) ListRecharges(ctx context.Context, userID int64, page model.Page) ([]*model.Recharge, int64, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.recharges.ListByUser(ctx, userID, page)
}
