package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/marketplace/internal/queue"
	"github.com/nimasrn/marketplace/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func TestNewAndDecode(t *testing.T) {
	ev, err := New(PurchaseCompleted, 7, map[string]any{"transactionId": 3})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, int64(7), ev.UserID)

	body, err := json.Marshal(ev)
	require.NoError(t, err)

	decoded, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, decoded.ID)
	assert.Equal(t, PurchaseCompleted, decoded.Type)
	assert.JSONEq(t, `{"transactionId":3}`, string(decoded.Payload))

	_, err = Decode([]byte(`{"type":"x"}`))
	assert.Error(t, err)
}

func TestEmitter(t *testing.T) {
	t.Run("publishes", func(t *testing.T) {
		pub := &recordingPublisher{}
		NewEmitter(pub).Emit(context.Background(), UserApproved, 1, map[string]int64{"userId": 1})
		require.Len(t, pub.events, 1)
		assert.Equal(t, UserApproved, pub.events[0].Type)
	})

	t.Run("swallows publisher errors", func(t *testing.T) {
		pub := &recordingPublisher{err: errors.New("down")}
		assert.NotPanics(t, func() {
			NewEmitter(pub).Emit(context.Background(), PinLocked, 1, nil)
		})
	})

	t.Run("unencodable payload is dropped", func(t *testing.T) {
		pub := &recordingPublisher{}
		NewEmitter(pub).Emit(context.Background(), PinLocked, 1, make(chan int))
		assert.Empty(t, pub.events)
	})

	t.Run("nil publisher is noop", func(t *testing.T) {
		assert.NotPanics(t, func() {
			NewEmitter(nil).Emit(context.Background(), PinLocked, 1, nil)
		})
	})
}

func TestQueuePublisher(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewUniversalClient(&goredis.UniversalOptions{Addrs: []string{mr.Addr()}})
	t.Cleanup(func() { _ = client.Close() })

	q, err := queue.NewQueue(redis.FromClient(client, ""), queue.QueueConfig{
		Name:         "events",
		PollInterval: 20 * time.Millisecond,
	})
	require.NoError(t, err)
	defer q.Stop(time.Second)

	ev, err := New(BalanceRecharged, 9, map[string]string{"amount": "100"})
	require.NoError(t, err)
	require.NoError(t, NewQueuePublisher(q).Publish(context.Background(), ev))

	got := make(chan Event, 1)
	require.NoError(t, q.Consume(func(ctx context.Context, msg *queue.Message) error {
		decoded, err := Decode(msg.Data)
		if err != nil {
			return err
		}
		assert.Equal(t, string(BalanceRecharged), msg.Metadata["type"])
		got <- decoded
		return nil
	}))

	select {
	case decoded := <-got:
		assert.Equal(t, ev.ID, decoded.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("event not consumed")
	}
}
