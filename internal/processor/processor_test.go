package processor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeliverer struct {
	mu        sync.Mutex
	failFirst int
	calls     []string
}

func (f *fakeDeliverer) Deliver(_ context.Context, ev events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ev.ID)
	if f.failFirst > 0 {
		f.failFirst--
		return errors.New("receiver unavailable")
	}
	return nil
}

func (f *fakeDeliverer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newEvent(t *testing.T, typ events.Type) events.Event {
	t.Helper()
	ev, err := events.New(typ, 3, map[string]string{"status": "APPROVED"})
	require.NoError(t, err)
	return ev
}

func TestNotificationHandler_DeliversOnce(t *testing.T) {
	_, idem := newIdempotency(t, 3)
	d := &fakeDeliverer{}
	h := NewNotificationHandler(d, idem)
	ctx := context.Background()
	ev := newEvent(t, events.UserApproved)

	require.NoError(t, h.Handle(ctx, ev))
	require.NoError(t, h.Handle(ctx, ev))
	assert.Equal(t, 1, d.count())
}

func TestNotificationHandler_RetriesThenGivesUp(t *testing.T) {
	_, idem := newIdempotency(t, 2)
	d := &fakeDeliverer{failFirst: 10}
	h := NewNotificationHandler(d, idem)
	ctx := context.Background()
	ev := newEvent(t, events.PinLocked)

	assert.Error(t, h.Handle(ctx, ev))
	assert.Error(t, h.Handle(ctx, ev))
	// past the retry budget the event is acked without another delivery
	assert.NoError(t, h.Handle(ctx, ev))
	assert.Equal(t, 2, d.count())
}

func TestNotificationHandler_RecoversAfterFailure(t *testing.T) {
	_, idem := newIdempotency(t, 3)
	d := &fakeDeliverer{failFirst: 1}
	h := NewNotificationHandler(d, idem)
	ctx := context.Background()
	ev := newEvent(t, events.BalanceRecharged)

	assert.Error(t, h.Handle(ctx, ev))
	assert.NoError(t, h.Handle(ctx, ev))

	done, err := idem.IsProcessed(ctx, ev.ID)
	require.NoError(t, err)
	assert.True(t, done)
}

type recordingHandler struct {
	mu   sync.Mutex
	seen []events.Type
	err  error
}

func (r *recordingHandler) Name() string { return "recording" }

func (r *recordingHandler) Handle(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, ev.Type)
	return r.err
}

func (r *recordingHandler) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Type(nil), r.seen...)
}

func TestService_Dispatch(t *testing.T) {
	h := &recordingHandler{}
	svc := NewService(h, 2)
	svc.Start()
	defer svc.Stop()

	require.NoError(t, svc.Dispatch(context.Background(), newEvent(t, events.OrderStatusChanged)))
	assert.Equal(t, []events.Type{events.OrderStatusChanged}, h.types())

	st := svc.Metrics().Snapshot()
	assert.Equal(t, int64(1), st.Processed)
	assert.Zero(t, st.Failed)
}

func TestService_DispatchReturnsHandlerError(t *testing.T) {
	h := &recordingHandler{err: errors.New("boom")}
	svc := NewService(h, 1)
	svc.Start()
	defer svc.Stop()

	assert.EqualError(t, svc.Dispatch(context.Background(), newEvent(t, events.UserRejected)), "boom")
	assert.Equal(t, int64(1), svc.Metrics().Snapshot().Failed)
}

func TestService_DispatchAfterStop(t *testing.T) {
	svc := NewService(&recordingHandler{}, 1)
	svc.Start()
	svc.Stop()

	assert.ErrorIs(t, svc.Dispatch(context.Background(), newEvent(t, events.UserApproved)), ErrStopped)
}

func TestService_ConsumesQueue(t *testing.T) {
	_, adapter := setupTestRedis(t)
	q, err := queue.NewQueue(adapter, queue.QueueConfig{
		Name:          "events",
		ConsumerGroup: "notifier",
		ConsumerName:  "test",
		PollInterval:  20 * time.Millisecond,
	})
	require.NoError(t, err)

	h := &recordingHandler{}
	svc := NewService(h, 2)
	svc.Start()
	defer svc.Stop()
	require.NoError(t, svc.ConsumeQueue(q))

	pub := events.NewQueuePublisher(q)
	ctx := context.Background()
	require.NoError(t, pub.Publish(ctx, newEvent(t, events.PurchaseCompleted)))
	_, err = q.Publish(ctx, []byte("not json"), nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(h.types()) == 1
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, events.PurchaseCompleted, h.types()[0])
	assert.Eventually(t, func() bool {
		return svc.Metrics().Snapshot().Failed == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestServiceMetrics(t *testing.T) {
	m := NewServiceMetrics()
	m.RecordSuccess(10 * time.Millisecond)
	m.RecordSuccess(30 * time.Millisecond)
	m.RecordFailure()

	st := m.Snapshot()
	assert.Equal(t, int64(2), st.Processed)
	assert.Equal(t, int64(1), st.Failed)
	assert.Equal(t, 20*time.Millisecond, st.AvgDuration)

	m.Reset()
	assert.Zero(t, m.Snapshot().Processed)
}
