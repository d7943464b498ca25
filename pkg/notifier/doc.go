// Package notifier implements the periodic notification engine of the
// fleet-tracking platform: it computes which users must hear about which
// device events, aggregates events per recipient, resolves each recipient's
// effective delivery settings through the management chain, composes a
// message and attempts delivery over every configured channel.
//
// # Architecture
//
// One notification run flows through a fixed pipeline:
//
//   - FanOut computes the recipient set of each unsent event (device owners
//     filtered by subscription and geo-fence access, their manager chains,
//     and all administrators).
//   - Aggregator buckets events per recipient, deduplicated by event id.
//   - Resolver finds the effective NotificationSettings for a recipient,
//     walking user -> manager chain -> admin default.
//   - Compose renders the recipient's buckets into subject and body text.
//   - Channel implementations (SMTP mail, push, Postmark) each attempt one
//     delivery; a recipient counts as reached when any channel succeeds.
//   - Runner drives the pipeline and commits the sent acknowledgment for all
//     reached events as one batch.
//   - Scheduler fires Runner.Run on a fixed interval with a single-flight
//     guard; a failed run is logged and retried at the next tick.
//
// Delivery is best-effort: there is no retry queue and no exactly-once
// guarantee. A crash between a successful channel send and the acknowledgment
// commit re-delivers on the next run by design.
//
// # Basic Usage
//
//	store := fleet.NewMemoryStore()
//	runner, err := notifier.NewRunner(store, fleet.AccessListAuthorizer{},
//		[]notifier.Channel{
//			notifier.NewMailChannel(),
//			notifier.NewPushChannel(),
//		},
//	)
//	if err != nil {
//		return err
//	}
//	sched := notifier.NewScheduler(runner.Run, notifier.WithInterval(time.Minute))
//	go sched.Start(ctx)
//
// NewEngine wires the default channel set, runner and scheduler from a
// Config in one call.
package notifier
