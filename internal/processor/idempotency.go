package processor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nimasrn/marketplace/pkg/logger"
	"github.com/nimasrn/marketplace/pkg/redis"
)

var (
	ErrAlreadyProcessed   = errors.New("event already processed")
	ErrLockAcquireFailed  = errors.New("event is being processed by another consumer")
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")
)

type IdempotencyConfig struct {
	// LockTTL bounds how long a crashed consumer blocks an event.
	LockTTL time.Duration
	// ProcessedTTL is how long a delivered event is remembered.
	ProcessedTTL time.Duration
	MaxRetries   int

	LockKeyPrefix      string
	RetryKeyPrefix     string
	ProcessedKeyPrefix string
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		LockTTL:            30 * time.Second,
		ProcessedTTL:       24 * time.Hour,
		MaxRetries:         5,
		LockKeyPrefix:      "notify:lock:",
		RetryKeyPrefix:     "notify:retry:",
		ProcessedKeyPrefix: "notify:done:",
	}
}

// IdempotencyService makes event handling at most once per event id across
// consumers and redeliveries.
type IdempotencyService struct {
	redis  redis.RedisAdapter
	config IdempotencyConfig
	log    logger.Logger
}

func NewIdempotencyService(adapter redis.RedisAdapter, config IdempotencyConfig) *IdempotencyService {
	return &IdempotencyService{
		redis:  adapter,
		config: config,
		log:    logger.With("component", "idempotency"),
	}
}

// Attempt is a held processing lock for one event.
type Attempt struct {
	EventID    string
	RetryCount int
	held       bool
}

func (a *Attempt) IsRetry() bool { return a.RetryCount > 0 }

// Begin takes the processing lock for an event. It fails with
// ErrAlreadyProcessed, ErrMaxRetriesExceeded or ErrLockAcquireFailed.
func (s *IdempotencyService) Begin(ctx context.Context, eventID string) (*Attempt, error) {
	n, err := s.redis.Exist(ctx, s.config.ProcessedKeyPrefix+eventID)
	if err != nil {
		// a lost marker check risks a duplicate webhook, not a lost one
		s.log.Warn("processed marker check failed", "event_id", eventID, "error", err)
	} else if n > 0 {
		return nil, ErrAlreadyProcessed
	}

	retries, err := s.RetryCount(ctx, eventID)
	if err != nil {
		s.log.Warn("retry counter read failed", "event_id", eventID, "error", err)
	}
	if retries >= s.config.MaxRetries {
		return nil, fmt.Errorf("%w: event_id=%s retries=%d", ErrMaxRetriesExceeded, eventID, retries)
	}

	stamp := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
	ok, err := s.redis.SetNX(ctx, s.config.LockKeyPrefix+eventID, stamp, s.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	if !ok {
		return nil, ErrLockAcquireFailed
	}
	return &Attempt{EventID: eventID, RetryCount: retries, held: true}, nil
}

// Succeed records the event as processed and drops its lock and counter.
func (s *IdempotencyService) Succeed(ctx context.Context, a *Attempt) error {
	if err := s.redis.Set(ctx, s.config.ProcessedKeyPrefix+a.EventID, []byte("1"), s.config.ProcessedTTL); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	s.del(ctx, s.config.RetryKeyPrefix+a.EventID)
	s.Release(ctx, a)
	return nil
}

// Fail bumps the retry counter and releases the lock so a redelivery can
// try again.
func (s *IdempotencyService) Fail(ctx context.Context, a *Attempt, reason error) {
	next := a.RetryCount + 1
	if err := s.redis.Set(ctx, s.config.RetryKeyPrefix+a.EventID, []byte(strconv.Itoa(next)), s.config.ProcessedTTL); err != nil {
		s.log.Error("retry counter write failed", "event_id", a.EventID, "error", err)
	}
	s.Release(ctx, a)
	s.log.Warn("event processing failed", "event_id", a.EventID, "retry_count", next, "max_retries", s.config.MaxRetries, "reason", reason)
}

func (s *IdempotencyService) Release(ctx context.Context, a *Attempt) {
	if a == nil || !a.held {
		return
	}
	s.del(ctx, s.config.LockKeyPrefix+a.EventID)
	a.held = false
}

func (s *IdempotencyService) RetryCount(ctx context.Context, eventID string) (int, error) {
	raw, err := s.redis.Get(ctx, s.config.RetryKeyPrefix+eventID)
	if errors.Is(err, redis.NilError) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("corrupt retry counter %q: %w", raw, err)
	}
	return n, nil
}

func (s *IdempotencyService) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := s.redis.Exist(ctx, s.config.ProcessedKeyPrefix+eventID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *IdempotencyService) del(ctx context.Context, key string) {
	if err := s.redis.Del(ctx, key); err != nil {
		s.log.Warn("redis delete failed", "key", key, "error", err)
	}
}
