package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/fleettrack/notifier/pkg/fleet"
)

// Resolver finds the effective notification settings of a recipient.
// Resolution order, first hit wins: settings owned by the user, settings of
// the nearest ancestor in the management chain, the lowest-id administrator's
// settings as a global default, then none.
type Resolver struct {
	store fleet.EventStore
	dir   fleet.Directory
}

// NewResolver creates a resolver over the given store and user directory.
func NewResolver(store fleet.EventStore, dir fleet.Directory) *Resolver {
	return &Resolver{store: store, dir: dir}
}

// Resolve returns the settings to use for the user, or nil when nothing is
// found at any level. A nil result is not an error: the caller skips
// delivery for the recipient and logs.
func (r *Resolver) Resolve(ctx context.Context, user fleet.User) (*fleet.NotificationSettings, error) {
	ns, err := r.findOwn(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if ns != nil {
		return ns, nil
	}

	// Walk the management chain upward, guarding against a corrupted cycle.
	visited := map[int64]struct{}{user.ID: {}}
	current := user
	for {
		manager, ok := r.dir.Manager(current)
		if !ok {
			break
		}
		if _, cycle := visited[manager.ID]; cycle {
			break
		}
		visited[manager.ID] = struct{}{}

		ns, err = r.findOwn(ctx, manager.ID)
		if err != nil {
			return nil, err
		}
		if ns != nil {
			return ns, nil
		}
		current = manager
	}

	// Global fallback: settings of the first admin ordered by user id.
	adminSettings, err := r.store.ListAdminSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list admin settings: %w", err)
	}
	if len(adminSettings) > 0 {
		out := adminSettings[0]
		return &out, nil
	}

	return nil, nil
}

func (r *Resolver) findOwn(ctx context.Context, userID int64) (*fleet.NotificationSettings, error) {
	ns, err := r.store.FindSettings(ctx, userID)
	if err != nil {
		if errors.Is(err, fleet.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find settings for user %d: %w", userID, err)
	}
	return ns, nil
}
