package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/internal/queue"
	"github.com/nimasrn/marketplace/pkg/logger"
	"github.com/nimasrn/marketplace/pkg/prom"
	"github.com/nimasrn/marketplace/pkg/worker"
)

const (
	ProcessingTimeout = 10 * time.Second
	ReportInterval    = 30 * time.Second
	ShutdownTimeout   = 30 * time.Second
)

var ErrStopped = errors.New("processor is stopped")

// Handler processes one event. A nil error acks it.
type Handler interface {
	Handle(ctx context.Context, ev events.Event) error
	Name() string
}

// Service fans events from one or more sources into a worker pool.
type Service struct {
	handler Handler
	metrics *ServiceMetrics
	worker  *worker.WorkerManager
	queues  []*queue.Queue
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	log     logger.Logger
}

func NewService(handler Handler, workers int) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		handler: handler,
		metrics: NewServiceMetrics(),
		worker:  worker.NewWorkerManager(workers*4, workers, nil),
		ctx:     ctx,
		cancel:  cancel,
		log:     logger.With("component", "processor", "handler", handler.Name()),
	}
}

// Start runs the worker pool and the metrics reporter. Sources are attached
// afterwards with ConsumeQueue or ConsumeSQS.
func (s *Service) Start() {
	s.worker.SetWorker(s.work)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := s.worker.Start(); err != nil && !errors.Is(err, worker.ErrWorkersTerminated) {
			s.log.Error("worker pool stopped", "error", err)
		}
	}()
	go s.reporter()

	s.log.Info("processor started")
}

// ConsumeQueue attaches a redis stream consumer.
func (s *Service) ConsumeQueue(q *queue.Queue) error {
	if err := q.Consume(s.handleMessage); err != nil {
		return fmt.Errorf("consume %s: %w", q.Name(), err)
	}
	s.queues = append(s.queues, q)
	return nil
}

// ConsumeSQS polls an SQS queue until Stop.
func (s *Service) ConsumeSQS(src *events.SQSSource) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := src.Run(s.ctx, s.Dispatch); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error("sqs source stopped", "error", err)
		}
	}()
}

// handleMessage acks undecodable messages; retrying them cannot help.
func (s *Service) handleMessage(ctx context.Context, msg *queue.Message) error {
	ev, err := events.Decode(msg.Data)
	if err != nil {
		s.log.Warn("dropping undecodable message", "id", msg.ID, "error", err)
		s.metrics.RecordFailure()
		return nil
	}
	return s.Dispatch(ctx, ev)
}

type job struct {
	ctx    context.Context
	ev     events.Event
	result chan error
}

// Dispatch hands the event to the pool and waits for its result.
func (s *Service) Dispatch(ctx context.Context, ev events.Event) error {
	ctx, cancel := context.WithTimeout(ctx, ProcessingTimeout)
	defer cancel()

	j := &job{ctx: ctx, ev: ev, result: make(chan error, 1)}
	if !s.worker.Enqueue(j) {
		return ErrStopped
	}
	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return fmt.Errorf("waiting for worker: %w", ctx.Err())
	}
}

func (s *Service) work(index int, raw interface{}) {
	j, ok := raw.(*job)
	if !ok {
		s.log.Error("unexpected job type", "worker", index)
		return
	}
	if j.ctx.Err() != nil {
		j.result <- j.ctx.Err()
		return
	}

	start := time.Now()
	err := s.handler.Handle(j.ctx, j.ev)
	elapsed := time.Since(start)

	prom.RecordEventProcessed(string(j.ev.Type), err == nil, elapsed.Seconds())
	if err != nil {
		s.metrics.RecordFailure()
		s.log.Warn("event handling failed", "worker", index, "event_id", j.ev.ID, "type", j.ev.Type, "error", err)
	} else {
		s.metrics.RecordSuccess(elapsed)
	}
	// buffered; never blocks even when Dispatch gave up waiting
	j.result <- err
}

func (s *Service) reporter() {
	defer s.wg.Done()
	ticker := time.NewTicker(ReportInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.report()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Service) report() {
	st := s.metrics.Snapshot()
	s.log.Info("processor stats",
		"processed", st.Processed,
		"failed", st.Failed,
		"rate_per_second", st.RatePerSecond,
		"avg_duration_ms", st.AvgDuration.Milliseconds(),
		"backlog", s.worker.GetUnreadCount(),
	)
	for _, q := range s.queues {
		if qs, err := q.GetStats(s.ctx); err == nil {
			s.log.Info("queue stats", "queue", q.Name(), "total", qs.TotalMessages, "pending", qs.PendingMessages)
		}
	}
}

func (s *Service) Metrics() *ServiceMetrics {
	return s.metrics
}

// Stop stops the sources first so no new job arrives, then the pool.
func (s *Service) Stop() {
	s.log.Info("shutting down processor")
	s.cancel()

	var qwg sync.WaitGroup
	for _, q := range s.queues {
		qwg.Add(1)
		go func(q *queue.Queue) {
			defer qwg.Done()
			if err := q.Stop(ShutdownTimeout); err != nil {
				s.log.Error("queue stop failed", "queue", q.Name(), "error", err)
			}
		}(q)
	}
	qwg.Wait()

	s.worker.Exit()
	s.wg.Wait()
	s.report()
	s.log.Info("processor stopped")
}
