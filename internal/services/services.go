package services

import (
	"context"
	"time"

	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/internal/model"
	"github.com/shopspring/decimal"
)

// Transactor runs fn inside one database transaction. Repositories called
// with the ctx passed to fn join that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Emitter publishes domain events after commit and never fails the caller.
type Emitter interface {
	Emit(ctx context.Context, t events.Type, userID int64, payload any)
}

type AuditWriter interface {
	Create(ctx context.Context, l *model.AuditLog) error
}

// UserStore is the user repository surface shared by the ledger, pin and
// approval services.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetForUpdate(ctx context.Context, id int64) (*model.User, error)
	UpdateBalance(ctx context.Context, id int64, before, after decimal.Decimal, lastLogin *time.Time) error
	UpdatePinState(ctx context.Context, id int64, attempts int, lockedUntil *time.Time) error
	SetPin(ctx context.Context, id int64, hash *string) error
	TransitionStatus(ctx context.Context, id int64, from []model.UserStatus, next model.UserStatus, fields map[string]any) error
}

type LedgerStore interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*model.Transaction, error)
	List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error)
}

type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, events.Type, int64, any) {}

func orNopEmitter(e Emitter) Emitter {
	if e == nil {
		return nopEmitter{}
	}
	return e
}

func audit(ctx context.Context, w AuditWriter, actorID *int64, action, entityType string, entityID int64, details string) error {
	if w == nil {
		return nil
	}
	return w.Create(ctx, &model.AuditLog{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	})
}
