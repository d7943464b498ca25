package notifier

import (
	"github.com/fleettrack/notifier/pkg/fleet"
)

// Engine bundles the delivery channels, the runner and the scheduler of one
// deployment. Embedding applications that need a different channel set build
// the parts directly instead.
type Engine struct {
	Runner    *Runner
	Scheduler *Scheduler
	Channels  []Channel
}

// NewEngine wires the three delivery channels, the runner and the scheduler
// from the given configuration. Extra runner options override the ones
// derived from cfg.
func NewEngine(cfg Config, store fleet.EventStore, authz fleet.GeoFenceAuthorizer, opts ...RunnerOption) (*Engine, error) {
	channels := []Channel{
		NewMailChannel(WithMailTimeout(cfg.ChannelTimeout)),
		NewPushChannel(
			WithPushEndpoint(cfg.PushEndpoint),
			WithPushIdentityURL(cfg.PushIdentityURL),
		),
		NewPostmarkChannel(),
	}

	runnerOpts := append([]RunnerOption{
		WithSubjectTag(cfg.SubjectTag),
		WithDeliveryConcurrency(cfg.DeliveryConcurrency),
	}, opts...)

	runner, err := NewRunner(store, authz, channels, runnerOpts...)
	if err != nil {
		return nil, err
	}

	return &Engine{
		Runner:    runner,
		Scheduler: NewScheduler(runner.Run, WithInterval(cfg.RunInterval)),
		Channels:  channels,
	}, nil
}
