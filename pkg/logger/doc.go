// Package logger provides a small factory around Go's slog package with
// functional options for format, level and output, plus helper attribute
// constructors used across the notification engine.
//
// All engine components accept a *slog.Logger and default to slog.Default(),
// so embedding applications keep full control over log routing. The helpers
// in attr.go (Error, UserID, DeviceID, EventID, RunID, Channel, ...) keep
// attribute naming consistent across packages.
package logger
