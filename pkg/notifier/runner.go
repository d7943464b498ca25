package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/fleettrack/notifier/pkg/fleet"
	"github.com/fleettrack/notifier/pkg/logger"
)

// Runner executes one notification run end to end: fetch unsent events, fan
// them out to recipients, deliver per recipient over all channels, then
// commit the sent acknowledgment as a single batch.
//
// Every failure below the run level is contained and converted into a skip of
// the affected recipient or channel; only store-level failures fail the run.
type Runner struct {
	store       fleet.EventStore
	authz       fleet.GeoFenceAuthorizer
	channels    []Channel
	subjectTag  string
	concurrency int
	log         *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSubjectTag sets the fixed subject of composed messages.
func WithSubjectTag(tag string) RunnerOption {
	return func(r *Runner) {
		if tag != "" {
			r.subjectTag = tag
		}
	}
}

// WithDeliveryConcurrency bounds how many recipients are delivered to in
// parallel within one run. Defaults to 4.
func WithDeliveryConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithRunnerLogger sets the logger for the Runner.
func WithRunnerLogger(log *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRunner creates a run pipeline over the given store, authorizer and
// delivery channels. A nil authz falls back to the access lists on the user
// records.
func NewRunner(store fleet.EventStore, authz fleet.GeoFenceAuthorizer, channels []Channel, opts ...RunnerOption) (*Runner, error) {
	if store == nil {
		return nil, ErrStoreNil
	}
	if authz == nil {
		authz = fleet.AccessListAuthorizer{}
	}

	r := &Runner{
		store:       store,
		authz:       authz,
		channels:    channels,
		subjectTag:  "[fleettrack] Notification",
		concurrency: 4,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run performs one notification run. It is safe to re-run after a partial
// failure: only events acknowledged by a committed run are excluded from the
// next one.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.NewString()

	types, err := r.store.ListSubscribedEventTypes(ctx)
	if err != nil {
		return fmt.Errorf("list subscribed event types: %w", err)
	}
	if len(types) == 0 {
		r.log.LogAttrs(ctx, slog.LevelDebug, "no user subscribes to any event type, skipping run",
			logger.RunID(runID))
		return nil
	}

	events, err := r.store.ListUnsentEvents(ctx, types)
	if err != nil {
		return fmt.Errorf("list unsent events: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	users, err := r.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	admins, err := r.store.ListAdministrators(ctx)
	if err != nil {
		return fmt.Errorf("list administrators: %w", err)
	}

	dir := fleet.NewDirectory(users)
	fanOut := NewFanOut(dir, r.authz, admins, r.log)
	agg := NewAggregator()

	for _, event := range events {
		for _, recipient := range fanOut.Recipients(ctx, event) {
			agg.AddEvent(recipient, event)
		}
	}

	resolver := NewResolver(r.store, dir)

	// Work is partitioned by recipient after fan-out: each recipient's
	// resolution, composition and channel attempts run on their own
	// goroutine, bounded by a semaphore. The aggregator is the only shared
	// state and synchronizes internally.
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup
	for _, recipient := range agg.Recipients() {
		sem <- struct{}{}
		wg.Add(1)
		go func(u fleet.User) {
			defer wg.Done()
			defer func() { <-sem }()
			r.deliverTo(ctx, runID, resolver, agg, u)
		}(recipient)
	}
	wg.Wait()

	sentIDs := agg.SentEventIDs()
	if len(sentIDs) > 0 {
		// One durable batch; if it fails the run fails and the events are
		// simply reconsidered, and possibly re-delivered, on the next tick.
		if err := r.store.CommitSentEvents(ctx, sentIDs); err != nil {
			return fmt.Errorf("commit sent events: %w", err)
		}
	}

	r.log.LogAttrs(ctx, slog.LevelInfo, "notification run complete",
		logger.RunID(runID),
		slog.Int("events", len(events)),
		slog.Int("recipients", len(agg.Recipients())),
		slog.Int("acknowledged", len(sentIDs)),
	)
	return nil
}

// deliverTo handles one recipient: resolve settings, compose, attempt every
// channel, and record delivery when at least one succeeded.
func (r *Runner) deliverTo(ctx context.Context, runID string, resolver *Resolver, agg *Aggregator, u fleet.User) {
	if !u.HasEmail() {
		r.log.LogAttrs(ctx, slog.LevelWarn, "recipient has no email on file, skipping",
			logger.RunID(runID),
			logger.UserID(u.ID),
			logger.Login(u.Login),
		)
		return
	}

	settings, err := resolver.Resolve(ctx, u)
	if err != nil {
		r.log.LogAttrs(ctx, slog.LevelError, "settings resolution failed, skipping recipient",
			logger.RunID(runID),
			logger.UserID(u.ID),
			logger.Error(err),
		)
		return
	}
	if settings == nil {
		r.log.LogAttrs(ctx, slog.LevelWarn, "no notification settings found at any level, recipient will not be notified",
			logger.RunID(runID),
			logger.UserID(u.ID),
			logger.Login(u.Login),
		)
		return
	}

	subject, body := Compose(r.subjectTag, agg.OfflineEvents(u.ID), agg.GeoFenceEvents(u.ID))

	delivered := false
	for _, ch := range r.channels {
		ok, err := ch.Deliver(ctx, *settings, u, subject, body)
		if err != nil {
			r.log.LogAttrs(ctx, slog.LevelError, "channel delivery failed",
				logger.RunID(runID),
				logger.UserID(u.ID),
				logger.Channel(ch.Name()),
				logger.Error(err),
			)
			continue
		}
		if ok {
			delivered = true
		}
	}

	if delivered {
		agg.MarkDelivered(u.ID)
	}
}
