package notifier

import (
	"context"
	"log/slog"

	"github.com/fleettrack/notifier/pkg/fleet"
	"github.com/fleettrack/notifier/pkg/logger"
)

// FanOut computes the recipient set of a single event: the device's owners
// filtered by subscription and geo-fence access, their manager chains, and
// every administrator. It is built once per run; the manager chain of each
// owner is cached for the run's duration since the forest cannot change
// mid-run.
type FanOut struct {
	dir    fleet.Directory
	authz  fleet.GeoFenceAuthorizer
	admins []fleet.User
	chains map[int64][]fleet.User
	log    *slog.Logger
}

// NewFanOut creates a fan-out over the given user directory, authorizer and
// administrator list. A nil log defaults to slog.Default().
func NewFanOut(dir fleet.Directory, authz fleet.GeoFenceAuthorizer, admins []fleet.User, log *slog.Logger) *FanOut {
	if log == nil {
		log = slog.Default()
	}
	return &FanOut{
		dir:    dir,
		authz:  authz,
		admins: admins,
		chains: make(map[int64][]fleet.User),
		log:    log,
	}
}

// Recipients returns the users the event must reach, deduplicated by user id.
// Order is deterministic: owners in device order, then their managers bottom
// up, then administrators.
func (f *FanOut) Recipients(ctx context.Context, event fleet.DeviceEvent) []fleet.User {
	var out []fleet.User
	seen := make(map[int64]struct{})

	add := func(u fleet.User) {
		if _, dup := seen[u.ID]; dup {
			return
		}
		seen[u.ID] = struct{}{}
		out = append(out, u)
	}

	for _, ownerID := range event.Device.UserIDs {
		owner, ok := f.dir.Lookup(ownerID)
		if !ok {
			f.log.LogAttrs(ctx, slog.LevelWarn, "device refers to unknown user",
				logger.DeviceID(event.Device.ID),
				logger.UserID(ownerID),
			)
			continue
		}

		// An owner who does not subscribe, or may not see the geo-fence,
		// is skipped entirely: no escalation happens on their behalf.
		if !f.eligible(ctx, owner, event) {
			continue
		}

		add(owner)

		for _, manager := range f.managerChain(owner) {
			if f.eligible(ctx, manager, event) {
				add(manager)
			}
		}
	}

	// Administrators receive every event regardless of ownership or their
	// own subscription list.
	for _, admin := range f.admins {
		add(admin)
	}

	return out
}

// eligible applies the per-recipient filters: subscription to the event type
// and, for geo-fence events, access to the fence (admins always pass).
func (f *FanOut) eligible(ctx context.Context, u fleet.User, event fleet.DeviceEvent) bool {
	if !u.SubscribedTo(event.Type) {
		return false
	}
	if !event.Type.IsGeoFence() || u.Admin {
		return true
	}
	if event.GeoFence == nil {
		return false
	}
	ok, err := f.authz.CanAccessGeoFence(ctx, u, *event.GeoFence)
	if err != nil {
		// An authorization failure denies access for this run; the event
		// stays unsent and is reconsidered on the next tick.
		f.log.LogAttrs(ctx, slog.LevelError, "geo-fence authorization check failed",
			logger.UserID(u.ID),
			logger.EventID(event.ID),
			logger.Error(err),
		)
		return false
	}
	return ok
}

// managerChain returns the owner's managers bottom up, keeping only managers
// with a non-empty subscription list. The walk carries a visited set so a
// corrupted managedBy cycle terminates instead of spinning.
func (f *FanOut) managerChain(owner fleet.User) []fleet.User {
	if chain, ok := f.chains[owner.ID]; ok {
		return chain
	}

	visited := map[int64]struct{}{owner.ID: {}}
	var chain []fleet.User

	current := owner
	for {
		manager, ok := f.dir.Manager(current)
		if !ok {
			break
		}
		if _, cycle := visited[manager.ID]; cycle {
			f.log.Warn("management chain contains a cycle",
				logger.UserID(owner.ID),
				slog.Int64("repeated_user_id", manager.ID),
			)
			break
		}
		visited[manager.ID] = struct{}{}

		if manager.HasSubscriptions() {
			chain = append(chain, manager)
		}
		current = manager
	}

	f.chains[owner.ID] = chain
	return chain
}
