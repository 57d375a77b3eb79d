package events

import (
	"context"

	"github.com/nimasrn/marketplace/internal/queue"
)

// QueuePublisher appends events to a redis stream queue.
type QueuePublisher struct {
	q *queue.Queue
}

func NewQueuePublisher(q *queue.Queue) *QueuePublisher {
	return &QueuePublisher{q: q}
}

func (p *QueuePublisher) Publish(ctx context.Context, e Event) error {
	_, err := p.q.PublishJSON(ctx, e, map[string]string{"type": string(e.Type), "event_id": e.ID})
	return err
}
