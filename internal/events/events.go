package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/marketplace/pkg/logger"
	"github.com/nimasrn/marketplace/pkg/prom"
)

type Type string

const (
	PurchaseCompleted  Type = "purchase.completed"
	BalanceRecharged   Type = "balance.recharged"
	UserApproved       Type = "user.approved"
	UserRejected       Type = "user.rejected"
	OrderStatusChanged Type = "order.status_changed"
	PinLocked          Type = "pin.locked"
)

// Event is the envelope shared by every backend.
type Event struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	UserID     int64           `json:"userId,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

func New(t Type, userID int64, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// Decode parses an envelope produced by any publisher.
func Decode(body []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, err
	}
	if e.ID == "" || e.Type == "" {
		return Event{}, fmt.Errorf("event without id or type")
	}
	return e, nil
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Emitter publishes after the caller's transaction committed. Failures are
// logged and counted, never returned.
type Emitter struct {
	pub Publisher
	log logger.Logger
}

func NewEmitter(pub Publisher) *Emitter {
	if pub == nil {
		pub = Noop{}
	}
	return &Emitter{pub: pub, log: logger.With("component", "events")}
}

func (e *Emitter) Emit(ctx context.Context, t Type, userID int64, payload any) {
	ev, err := New(t, userID, payload)
	if err != nil {
		e.log.Error("build event failed", "type", t, "error", err)
		prom.RecordEventPublished(string(t), false)
		return
	}
	if err := e.pub.Publish(ctx, ev); err != nil {
		e.log.Warn("publish event failed", "type", t, "id", ev.ID, "error", err)
		prom.RecordEventPublished(string(t), false)
		return
	}
	prom.RecordEventPublished(string(t), true)
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
