package fleet

import (
	"time"
)

// EventType identifies the kind of device event.
type EventType string

const (
	EventOffline       EventType = "offline"
	EventGeoFenceEnter EventType = "geofence_enter"
	EventGeoFenceExit  EventType = "geofence_exit"
)

// IsGeoFence reports whether the event type relates to a geo-fence boundary.
func (t EventType) IsGeoFence() bool {
	return t == EventGeoFenceEnter || t == EventGeoFenceExit
}

// SecureConnection selects the transport security mode for SMTP delivery.
type SecureConnection string

const (
	SecureNone     SecureConnection = "none"
	SecureTLS      SecureConnection = "tls"      // implicit TLS on connect
	SecureStartTLS SecureConnection = "starttls" // plaintext connect, mandatory STARTTLS upgrade
)

// Position is a recorded device location. Geo-fence events carry the position
// that triggered them; its timestamp is used for display ordering.
type Position struct {
	ID        int64     `json:"id"`
	DeviceID  int64     `json:"device_id"`
	Time      time.Time `json:"time"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// GeoFence is a named geographic boundary devices can enter or exit.
type GeoFence struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Device is a tracked unit. UserIDs holds the identifiers of the users who
// own the device; ownership is many-to-many.
type Device struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	UniqueID string  `json:"unique_id"`
	UserIDs  []int64 `json:"user_ids"`
}

// User is a platform account. ManagerID forms a forest: each user has at most
// one manager. Admin users implicitly receive every event regardless of
// device ownership or geo-fence access.
type User struct {
	ID              int64       `json:"id"`
	Login           string      `json:"login"`
	Email           string      `json:"email"`
	Admin           bool        `json:"admin"`
	ManagerID       *int64      `json:"manager_id,omitempty"`
	SubscribedTypes []EventType `json:"subscribed_types,omitempty"`
	GeoFenceIDs     []int64     `json:"geofence_ids,omitempty"`
}

// SubscribedTo reports whether the user opted in to events of the given type.
func (u User) SubscribedTo(t EventType) bool {
	for _, st := range u.SubscribedTypes {
		if st == t {
			return true
		}
	}
	return false
}

// HasSubscriptions reports whether the user opted in to any event type at all.
func (u User) HasSubscriptions() bool {
	return len(u.SubscribedTypes) > 0
}

// HasEmail reports whether the user has a usable contact address on file.
func (u User) HasEmail() bool {
	return len(u.Email) > 0
}

// DeviceEvent is an immutable record of something that happened to a device.
// Sent is the only mutable field; it flips from false to true exactly once,
// through EventStore.CommitSentEvents, and never back.
type DeviceEvent struct {
	ID         int64     `json:"id"`
	Type       EventType `json:"type"`
	Device     Device    `json:"device"`
	Position   *Position `json:"position,omitempty"`
	GeoFence   *GeoFence `json:"geofence,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Sent       bool      `json:"sent"`
}

// DisplayTime returns the timestamp used for presentation ordering: the
// position time for geo-fence events, the event's own time otherwise.
func (e DeviceEvent) DisplayTime() time.Time {
	if e.Type.IsGeoFence() && e.Position != nil {
		return e.Position.Time
	}
	return e.OccurredAt
}

// NotificationSettings holds the delivery configuration owned by one user.
// Zero-or-one record exists per user; absence is legal and triggers fallback
// resolution through the management chain and the admin default.
//
// Each channel is gated on its own fields: SMTP needs Server and FromAddress,
// push needs PushToken, Postmark needs PostmarkServerToken and FromAddress.
type NotificationSettings struct {
	UserID              int64            `json:"user_id"`
	Server              string           `json:"server"`
	Port                int              `json:"port"`
	Secure              SecureConnection `json:"secure"`
	UseAuth             bool             `json:"use_auth"`
	Username            string           `json:"username"`
	Password            string           `json:"password"`
	FromAddress         string           `json:"from_address"`
	PushToken           string           `json:"push_token"`
	PostmarkServerToken string           `json:"postmark_server_token"`
}
