// Package sweep expires reservations whose pickup window has elapsed.
//
// The sweeper lists the elapsed pickups and expires them concurrently, bounded by a limit.
// Each Expire is its own decision, so a member picking the copy up while the sweep runs simply
// wins: the expiry then fails with InvalidState and is counted as skipped.
package sweep

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/library-circulation/circulation/engine"
	"github.com/AntonStoeckl/library-circulation/circulation/features/query/expiredpickups"
	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
	"github.com/AntonStoeckl/library-circulation/eventstore"
)

const (
	defaultInterval    = time.Hour
	defaultConcurrency = 4

	logMsgSweepCompleted = "expiry sweep: completed"
	logMsgSweepFailed    = "expiry sweep: failed"
	logMsgExpireFailed   = "expiry sweep: expiring reservation failed"
	logMsgExpired        = "expiry sweep: reservation expired"
)

var (
	ErrInvalidInterval    = errors.New("sweep interval must be positive")
	ErrInvalidConcurrency = errors.New("sweep concurrency must be positive")
)

// Target is what the sweeper needs from the engine.
type Target interface {
	ExpiredPickups(ctx context.Context) (expiredpickups.ExpiredPickups, error)
	Expire(ctx context.Context, reservationID core.ReservationIDString) (engine.ReleaseReceipt, error)
}

// Report counts the outcome of one sweep.
type Report struct {
	Found   int
	Expired int
	Skipped int // already expired, picked up or cancelled in the meantime
	Failed  int
}

// ExpirySweeper runs sweeps periodically.
type ExpirySweeper struct {
	target      Target
	interval    time.Duration
	concurrency int
	instr       eventstore.Instrumentation
}

// Option configures an ExpirySweeper.
type Option func(*ExpirySweeper) error

func WithInterval(interval time.Duration) Option {
	return func(s *ExpirySweeper) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}

		s.interval = interval

		return nil
	}
}

// WithConcurrency limits how many reservations are expired at the same time.
func WithConcurrency(limit int) Option {
	return func(s *ExpirySweeper) error {
		if limit <= 0 {
			return ErrInvalidConcurrency
		}

		s.concurrency = limit

		return nil
	}
}

func WithLogger(logger eventstore.Logger) Option {
	return func(s *ExpirySweeper) error {
		s.instr.Logger = logger
		return nil
	}
}

func WithContextualLogger(logger eventstore.ContextualLogger) Option {
	return func(s *ExpirySweeper) error {
		s.instr.ContextualLogger = logger
		return nil
	}
}

func NewExpirySweeper(target Target, opts ...Option) (*ExpirySweeper, error) {
	s := &ExpirySweeper{
		target:      target,
		interval:    defaultInterval,
		concurrency: defaultConcurrency,
		instr:       eventstore.Instrumentation{Engine: "sweep"},
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Run sweeps once right away and then on every tick until ctx is done.
// Failed sweeps are logged and do not stop the loop.
func (s *ExpirySweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
			s.instr.Error(ctx, logMsgSweepFailed, err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// SweepOnce expires every elapsed pickup. The error joins the individual failures;
// the Report is valid either way.
func (s *ExpirySweeper) SweepOnce(ctx context.Context) (Report, error) {
	pickups, err := s.target.ExpiredPickups(ctx)
	if err != nil {
		return Report{}, err
	}

	var expired, skipped, failed atomic.Int64
	failures := make([]error, len(pickups.Reservations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, pickup := range pickups.Reservations {
		g.Go(func() error {
			receipt, expireErr := s.target.Expire(gctx, pickup.ReservationID)

			switch {
			case expireErr == nil && receipt.Idempotent:
				skipped.Add(1)
			case expireErr == nil:
				expired.Add(1)
				s.instr.Info(gctx, logMsgExpired, "reservation_id", pickup.ReservationID, "handed_to", receipt.HandedTo)
			case errors.Is(expireErr, core.ErrInvalidState), errors.Is(expireErr, core.ErrNotFound):
				skipped.Add(1)
			case errors.Is(expireErr, context.Canceled), errors.Is(expireErr, context.DeadlineExceeded):
				return expireErr
			default:
				failed.Add(1)
				failures[i] = expireErr
				s.instr.Error(gctx, logMsgExpireFailed, expireErr, "reservation_id", pickup.ReservationID)
			}

			return nil
		})
	}

	waitErr := g.Wait()

	report := Report{
		Found:   len(pickups.Reservations),
		Expired: int(expired.Load()),
		Skipped: int(skipped.Load()),
		Failed:  int(failed.Load()),
	}

	s.instr.Info(ctx, logMsgSweepCompleted,
		"found", report.Found, "expired", report.Expired, "skipped", report.Skipped, "failed", report.Failed)

	return report, errors.Join(waitErr, errors.Join(failures...))
}
