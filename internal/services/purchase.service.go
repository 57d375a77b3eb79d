package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/internal/repository"
	"github.com/nimasrn/marketplace/pkg/prom"
	"github.com/shopspring/decimal"
)

type ProductStockStore interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Product, error)
	DecrementStock(ctx context.Context, id int64, quantity int) error
}

type PurchaseStore interface {
	CreateBatch(ctx context.Context, purchases []*model.Purchase) ([]*model.Purchase, error)
	List(ctx context.Context, f model.PurchaseFilter) ([]*model.Purchase, int64, error)
}

type PurchaseCompleted struct {
	TransactionID int64           `json:"transactionId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	Items         int             `json:"items"`
}

type PurchaseService struct {
	tx        Transactor
	users     UserStore
	products  ProductStockStore
	ledger    LedgerStore
	purchases PurchaseStore
	events    Emitter
	maxItems  int
	retries   int
	now       Clock
}

type PurchaseOption func(*PurchaseService)

func WithMaxItems(n int) PurchaseOption {
	return func(s *PurchaseService) { s.maxItems = n }
}

// WithRetries sets how often a purchase that lost a balance race is retried.
func WithRetries(n int) PurchaseOption {
	return func(s *PurchaseService) { s.retries = n }
}

func WithPurchaseClock(c Clock) PurchaseOption {
	return func(s *PurchaseService) { s.now = c }
}

func NewPurchaseService(tx Transactor, users UserStore, products ProductStockStore, ledger LedgerStore, purchases PurchaseStore, emitter Emitter, opts ...PurchaseOption) *PurchaseService {
	s := &PurchaseService{
		tx:        tx,
		users:     users,
		products:  products,
		ledger:    ledger,
		purchases: purchases,
		events:    orNopEmitter(emitter),
		maxItems:  50,
		retries:   3,
		now:       utcNow,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Purchase debits the user and decrements stock for every item in one
// database transaction. Nothing is written when any check fails.
func (s *PurchaseService) Purchase(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseResult, error) {
	if err := req.Validate(s.maxItems); err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		res, err := s.replay(ctx, req)
		if err != nil || res != nil {
			return res, err
		}
	}

	var (
		res *model.PurchaseResult
		err error
	)
	backoff := 10 * time.Millisecond
	for attempt := 0; ; attempt++ {
		res, err = s.purchaseOnce(ctx, req)
		if !errors.Is(err, repository.ErrConcurrentUpdate) || attempt >= s.retries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if err != nil {
		prom.RecordPurchase(purchaseResult(err), 0)
		return nil, err
	}

	total, _ := res.TotalAmount.Float64()
	prom.RecordPurchase("ok", total)
	s.events.Emit(ctx, events.PurchaseCompleted, req.UserID, PurchaseCompleted{
		TransactionID: res.TransactionID,
		TotalAmount:   res.TotalAmount,
		BalanceAfter:  res.BalanceAfter,
		Items:         len(res.Purchases),
	})
	return res, nil
}

func (s *PurchaseService) purchaseOnce(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseResult, error) {
	quantities, ids, err := aggregateItems(req.Items)
	if err != nil {
		return nil, err
	}

	var res *model.PurchaseResult
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.GetForUpdate(ctx, req.UserID)
		if err != nil {
			return err
		}
		if !user.IsActive() {
			return ErrInactiveUser
		}

		products, err := s.products.GetByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}

		total := decimal.Zero
		for _, id := range ids {
			p, ok := products[id]
			if !ok {
				return ErrUnknownProduct.With(fmt.Sprintf("product %d", id))
			}
			if !p.IsActive {
				return ErrProductUnavailable.With(p.Name)
			}
			if p.Stock < quantities[id] {
				return repository.ErrOutOfStock.With(p.Name)
			}
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(quantities[id]))))
		}

		if total.GreaterThan(user.Balance) {
			return ErrInsufficientBalance
		}
		after := user.Balance.Sub(total)

		txn := &model.Transaction{
			UserID:        user.ID,
			Type:          model.TransactionPurchase,
			Amount:        total,
			BalanceBefore: user.Balance,
			BalanceAfter:  after,
			Description:   fmt.Sprintf("purchase of %d item(s)", len(req.Items)),
		}
		if req.IdempotencyKey != "" {
			key := req.IdempotencyKey
			txn.Reference = &key
		}
		txn, err = s.ledger.Create(ctx, txn)
		if err != nil {
			return err
		}

		rows := make([]*model.Purchase, 0, len(req.Items))
		for _, it := range req.Items {
			p := products[it.ProductID]
			rows = append(rows, &model.Purchase{
				TransactionID: txn.ID,
				UserID:        user.ID,
				ProductID:     p.ID,
				Quantity:      it.Quantity,
				UnitPrice:     p.Price,
				TotalPrice:    p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
			})
		}
		created, err := s.purchases.CreateBatch(ctx, rows)
		if err != nil {
			return fmt.Errorf("create purchases: %w", err)
		}

		// DecrementStock re-checks stock in its WHERE clause.
		for _, id := range ids {
			if err := s.products.DecrementStock(ctx, id, quantities[id]); err != nil {
				return err
			}
		}

		now := s.now()
		if err := s.users.UpdateBalance(ctx, user.ID, user.Balance, after, &now); err != nil {
			return err
		}

		res = &model.PurchaseResult{
			TransactionID: txn.ID,
			TotalAmount:   total,
			BalanceAfter:  after,
			Purchases:     created,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// replay returns the stored result when the idempotency key was already used
// by the same user, and nil when the key is new.
func (s *PurchaseService) replay(ctx context.Context, req model.PurchaseRequest) (*model.PurchaseResult, error) {
	txn, err := s.ledger.GetByReference(ctx, req.IdempotencyKey)
	if errors.Is(err, repository.ErrTransactionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if txn.UserID != req.UserID || txn.Type != model.TransactionPurchase {
		return nil, ErrIdempotencyMismatch
	}

	purchases, _, err := s.purchases.List(ctx, model.PurchaseFilter{
		TransactionID: &txn.ID,
		Page:          model.Page{Limit: model.MaxLimit},
	})
	if err != nil {
		return nil, err
	}
	return &model.PurchaseResult{
		TransactionID: txn.ID,
		TotalAmount:   txn.Amount,
		BalanceAfter:  txn.BalanceAfter,
		Purchases:     purchases,
		Replayed:      true,
	}, nil
}

func (s *PurchaseService) List(ctx context.Context, f model.PurchaseFilter) ([]*model.Purchase, int64, error) {
	return s.purchases.List(ctx, f)
}

// aggregateItems sums quantities per product so a product listed twice is
// checked against its stock once. ids come back sorted, which keeps the row
// lock order stable across concurrent purchases. A non-positive quantity or a
// per-product sum above model.MaxQuantity is rejected before it can wrap.
func aggregateItems(items []model.PurchaseItem) (map[int64]int, []int64, error) {
	quantities := make(map[int64]int, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 || it.Quantity > model.MaxQuantity {
			return nil, nil, ErrQuantityTooLarge.With(fmt.Sprintf("product %d", it.ProductID))
		}
		sum, seen := quantities[it.ProductID]
		if !seen {
			ids = append(ids, it.ProductID)
		}
		if sum > model.MaxQuantity-it.Quantity {
			return nil, nil, ErrQuantityTooLarge.With(fmt.Sprintf("product %d", it.ProductID))
		}
		quantities[it.ProductID] = sum + it.Quantity
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return quantities, ids, nil
}

func purchaseResult(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, repository.ErrOutOfStock), errors.Is(err, ErrProductUnavailable):
		return "out_of_stock"
	case errors.Is(err, ErrInactiveUser):
		return "inactive_user"
	}
	return "error"
}
