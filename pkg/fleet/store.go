package fleet

import (
	"context"
)

// EventStore is the gateway to the platform's persistence layer. The engine
// only reads through it and commits the sent acknowledgment; everything else
// about storage is the surrounding application's concern.
type EventStore interface {
	// ListSubscribedEventTypes returns the union of all users' subscribed
	// event types. An empty result means a notification run has no work.
	ListSubscribedEventTypes(ctx context.Context) ([]EventType, error)

	// ListUnsentEvents returns events of the given types that have not been
	// acknowledged yet, each joined with its position and geo-fence, in
	// stable storage order.
	ListUnsentEvents(ctx context.Context, types []EventType) ([]DeviceEvent, error)

	// ListUsers returns every user account, with manager links, event
	// subscriptions and geo-fence access lists populated.
	ListUsers(ctx context.Context) ([]User, error)

	// ListAdministrators returns all admin users ordered by id ascending.
	ListAdministrators(ctx context.Context) ([]User, error)

	// FindSettings returns the notification settings owned by the given
	// user, or ErrNotFound when the user has none.
	FindSettings(ctx context.Context, userID int64) (*NotificationSettings, error)

	// ListAdminSettings returns the settings records owned by admin users,
	// ordered by owning-user id ascending.
	ListAdminSettings(ctx context.Context) ([]NotificationSettings, error)

	// CommitSentEvents durably marks the given events as sent. The commit is
	// a single idempotent batch: re-applying the same ids is a no-op.
	CommitSentEvents(ctx context.Context, eventIDs []int64) error
}

// GeoFenceAuthorizer answers the yes/no question whether a user may see
// events of a given geo-fence. Enforcement infrastructure lives outside the
// engine; only the decision is consumed here.
type GeoFenceAuthorizer interface {
	CanAccessGeoFence(ctx context.Context, user User, fence GeoFence) (bool, error)
}

// AccessListAuthorizer decides geo-fence access from the access list loaded
// onto the User record. It is the default authorizer; deployments with an
// external policy engine supply their own GeoFenceAuthorizer instead.
type AccessListAuthorizer struct{}

func (AccessListAuthorizer) CanAccessGeoFence(_ context.Context, user User, fence GeoFence) (bool, error) {
	for _, id := range user.GeoFenceIDs {
		if id == fence.ID {
			return true, nil
		}
	}
	return false, nil
}

// Directory is an indexed view over the user table, built once per
// notification run. Manager links are parent pointers into the index.
type Directory map[int64]User

// NewDirectory indexes the given users by id.
func NewDirectory(users []User) Directory {
	dir := make(Directory, len(users))
	for _, u := range users {
		dir[u.ID] = u
	}
	return dir
}

// Lookup returns the user with the given id.
func (d Directory) Lookup(id int64) (User, bool) {
	u, ok := d[id]
	return u, ok
}

// Manager returns the direct manager of the given user, if any.
func (d Directory) Manager(u User) (User, bool) {
	if u.ManagerID == nil {
		return User{}, false
	}
	m, ok := d[*u.ManagerID]
	return m, ok
}
