package processor

import (
	"context"
	"errors"

	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/pkg/logger"
)

// Deliverer sends one event to the notification receivers.
type Deliverer interface {
	Deliver(ctx context.Context, ev events.Event) error
}

// NotificationHandler forwards domain events to webhooks exactly once per
// event id while the processed marker lives.
type NotificationHandler struct {
	deliverer   Deliverer
	idempotency *IdempotencyService
	log         logger.Logger
}

func NewNotificationHandler(deliverer Deliverer, idempotency *IdempotencyService) *NotificationHandler {
	return &NotificationHandler{
		deliverer:   deliverer,
		idempotency: idempotency,
		log:         logger.With("component", "notifications"),
	}
}

func (h *NotificationHandler) Name() string {
	return "notification"
}

// Handle returns nil to ack and an error to have the event redelivered.
func (h *NotificationHandler) Handle(ctx context.Context, ev events.Event) error {
	attempt, err := h.idempotency.Begin(ctx, ev.ID)
	switch {
	case errors.Is(err, ErrAlreadyProcessed):
		h.log.Debug("event already delivered", "event_id", ev.ID)
		return nil
	case errors.Is(err, ErrMaxRetriesExceeded):
		h.log.Error("giving up on event", "event_id", ev.ID, "type", ev.Type)
		return nil
	case err != nil:
		return err
	}
	defer h.idempotency.Release(ctx, attempt)

	if err := h.deliverer.Deliver(ctx, ev); err != nil {
		h.idempotency.Fail(ctx, attempt, err)
		return err
	}
	if err := h.idempotency.Succeed(ctx, attempt); err != nil {
		// delivered; a redelivery may duplicate the webhook
		h.log.Error("mark processed failed", "event_id", ev.ID, "error", err)
	}
	h.log.Info("event delivered", "event_id", ev.ID, "type", ev.Type, "retry", attempt.IsRetry())
	return nil
}
