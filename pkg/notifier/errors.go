package notifier

import "errors"

var (
	// ErrRunInProgress is returned when a run is requested while the
	// previous one is still in flight.
	ErrRunInProgress = errors.New("notifier: run already in progress")

	// ErrStoreNil is returned when a Runner is constructed without a store.
	ErrStoreNil = errors.New("notifier: event store is nil")

	// ErrMissingMailConfig indicates settings without a server or
	// from-address; the mail channel skips such recipients silently.
	ErrMissingMailConfig = errors.New("notifier: mail server or from-address not configured")

	// ErrMissingPushToken indicates settings without a push access token.
	ErrMissingPushToken = errors.New("notifier: push access token not configured")

	// ErrPushRejected is returned when the push provider answers with a
	// non-success status.
	ErrPushRejected = errors.New("notifier: push provider rejected the request")
)
