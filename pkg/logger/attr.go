package logger

import (
	"log/slog"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
func UserID(id int64) slog.Attr {
	return slog.Int64("user_id", id)
}

// Login records the user login under the key "login".
func Login(login string) slog.Attr {
	return slog.String("login", login)
}

// DeviceID records the device identifier under the key "device_id".
func DeviceID(id int64) slog.Attr {
	return slog.Int64("device_id", id)
}

// EventID records the device event identifier under the key "event_id".
func EventID(id int64) slog.Attr {
	return slog.Int64("event_id", id)
}

// EventType records the event type under the key "event_type".
func EventType(t string) slog.Attr {
	return slog.String("event_type", t)
}

// RunID records the notification run identifier under the key "run_id".
func RunID(id string) slog.Attr {
	return slog.String("run_id", id)
}

// Channel records a delivery channel name under the key "channel".
func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}
