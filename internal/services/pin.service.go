package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nimasrn/marketplace/internal/events"
	"github.com/nimasrn/marketplace/internal/model"
	"github.com/nimasrn/marketplace/pkg/apperr"
	"github.com/nimasrn/marketplace/pkg/prom"
	"golang.org/x/crypto/bcrypt"
)

type PinLocked struct {
	Attempts    int       `json:"attempts"`
	LockedUntil time.Time `json:"lockedUntil"`
}

type PinService struct {
	tx           Transactor
	users        UserStore
	audit        AuditWriter
	events       Emitter
	maxAttempts  int
	lockDuration time.Duration
	cost         int
	now          Clock
}

type PinOption func(*PinService)

func WithPinPolicy(maxAttempts int, lockDuration time.Duration) PinOption {
	return func(s *PinService) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		if lockDuration > 0 {
			s.lockDuration = lockDuration
		}
	}
}

// WithHashCost sets the bcrypt cost used for new PIN hashes.
func WithHashCost(cost int) PinOption {
	return func(s *PinService) { s.cost = cost }
}

func WithPinClock(c Clock) PinOption {
	return func(s *PinService) { s.now = c }
}

func NewPinService(tx Transactor, users UserStore, audit AuditWriter, emitter Emitter, opts ...PinOption) *PinService {
	s := &PinService{
		tx:           tx,
		users:        users,
		audit:        audit,
		events:       orNopEmitter(emitter),
		maxAttempts:  3,
		lockDuration: 15 * time.Minute,
		cost:         bcrypt.DefaultCost,
		now:          utcNow,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetPin stores the first PIN of a user. A user who already has one must go
// through an admin reset.
func (s *PinService) SetPin(ctx context.Context, userID int64, pin string) error {
	if err := model.ValidatePin(pin); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), s.cost)
	if err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if user.PinHash != "" {
			return ErrPinExists
		}
		h := string(hash)
		return s.users.SetPin(ctx, userID, &h)
	})
}

// VerifyPin checks pin against the stored hash. Failed attempts are counted
// and committed even though the call returns an error; reaching the limit
// locks verification until the lock expires or an admin unlocks it.
func (s *PinService) VerifyPin(ctx context.Context, userID int64, pin string) error {
	if pin == "" {
		return apperr.New(apperr.KindValidation, "pin is required")
	}

	var (
		verifyErr error
		lockedAt  *PinLocked
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		verifyErr, lockedAt = nil, nil

		user, err := s.users.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if user.PinHash == "" {
			return ErrPinNotSet
		}

		now := s.now()
		if user.PinLocked(now) {
			return ErrPinLocked.With("locked until " + user.PinLockedUntil.UTC().Format(time.RFC3339))
		}

		attempts := user.PinAttempts
		if user.PinLockedUntil != nil {
			// lock expired
			attempts = 0
		}

		cmpErr := bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(pin))
		if cmpErr == nil {
			if attempts == 0 && user.PinLockedUntil == nil {
				return nil
			}
			return s.users.UpdatePinState(ctx, userID, 0, nil)
		}
		if !errors.Is(cmpErr, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("compare pin: %w", cmpErr)
		}

		attempts++
		if attempts >= s.maxAttempts {
			until := now.Add(s.lockDuration)
			lockedAt = &PinLocked{Attempts: attempts, LockedUntil: until}
			verifyErr = ErrPinLocked.With("too many failed attempts")
			return s.users.UpdatePinState(ctx, userID, attempts, &until)
		}
		verifyErr = ErrInvalidPin.With(fmt.Sprintf("%d attempt(s) left", s.maxAttempts-attempts))
		return s.users.UpdatePinState(ctx, userID, attempts, nil)
	})
	if err != nil {
		return err
	}

	if lockedAt != nil {
		prom.RecordPinLockout()
		s.events.Emit(ctx, events.PinLocked, userID, lockedAt)
	}
	return verifyErr
}

// ResetPin removes the PIN so the user can set a new one.
func (s *PinService) ResetPin(ctx context.Context, actorID *int64, userID int64) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.SetPin(ctx, userID, nil); err != nil {
			return err
		}
		return audit(ctx, s.audit, actorID, model.AuditPinReset, "user", userID, "")
	})
}

// Unlock clears the failed attempt counter and any active lock.
func (s *PinService) Unlock(ctx context.Context, actorID *int64, userID int64) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.UpdatePinState(ctx, userID, 0, nil); err != nil {
			return err
		}
		return audit(ctx, s.audit, actorID, model.AuditPinUnlocked, "user", userID, "")
	})
}
