package notifier

import (
	"context"

	"github.com/fleettrack/notifier/pkg/fleet"
)

// Channel attempts delivery of one composed message to one recipient.
//
// Deliver returns (true, nil) on success, (false, nil) when the settings do
// not configure this channel (a silent skip, not a failure) and (false, err)
// on a transport failure. Channels never abort a run; the caller logs the
// error and continues. A recipient counts as reached when any configured
// channel returns true.
type Channel interface {
	// Name identifies the channel in logs.
	Name() string

	Deliver(ctx context.Context, settings fleet.NotificationSettings, recipient fleet.User, subject, body string) (bool, error)
}

// Validator is the synchronous settings check reused by the application's
// settings-editing surface, outside the aggregation pipeline. A nil return
// means the configuration is usable for its channel.
type Validator interface {
	Validate(ctx context.Context, settings fleet.NotificationSettings) error
}
