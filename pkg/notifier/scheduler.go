package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fleettrack/notifier/pkg/logger"
)

// RunFunc is the unit of work the scheduler drives; Runner.Run satisfies it.
type RunFunc func(ctx context.Context) error

// Scheduler fires the notification pipeline on a fixed interval. It holds a
// single-flight guard: a tick arriving while the previous run is still in
// flight is skipped. A failed run is logged and retried at the next tick; it
// never stops the scheduler.
type Scheduler struct {
	run      RunFunc
	interval time.Duration
	running  atomic.Bool
	log      *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithInterval sets the tick interval. Defaults to one minute.
func WithInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSchedulerLogger sets the logger for the Scheduler.
func WithSchedulerLogger(log *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}

// NewScheduler creates a scheduler around the given run function.
func NewScheduler(run RunFunc, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		run:      run,
		interval: time.Minute,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs immediately, then on every tick, until ctx is canceled. It
// returns ctx.Err() after the in-flight run, if any, has finished: a run is
// never torn down mid-delivery, so a send that already succeeded cannot lose
// its acknowledgment to shutdown.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("notification scheduler shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// TriggerNow performs one run outside the tick cadence, honoring the
// single-flight guard. Useful for admin-initiated flushes and tests.
func (s *Scheduler) TriggerNow(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunInProgress
	}
	defer s.running.Store(false)
	return s.guarded(ctx)
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("previous notification run still in flight, skipping tick")
		return
	}
	defer s.running.Store(false)

	started := time.Now()
	if err := s.guarded(ctx); err != nil {
		s.log.Error("notification run failed",
			logger.Error(err),
			slog.Duration("elapsed", time.Since(started)),
		)
	}
}

// guarded invokes the run with panic containment and detached cancellation.
// The run keeps the parent's values but survives its cancellation, so a
// shutdown lets in-flight delivery attempts and the acknowledgment commit
// finish instead of aborting between a successful send and its commit.
func (s *Scheduler) guarded(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("notification run panicked: %v", rec)
		}
	}()
	return s.run(context.WithoutCancel(ctx))
}
