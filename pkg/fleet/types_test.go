package fleet_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fleettrack/notifier/pkg/fleet"
)

func TestEventType_IsGeoFence(t *testing.T) {
	t.Parallel()

	assert.False(t, fleet.EventOffline.IsGeoFence())
	assert.True(t, fleet.EventGeoFenceEnter.IsGeoFence())
	assert.True(t, fleet.EventGeoFenceExit.IsGeoFence())
}

func TestUser_SubscribedTo(t *testing.T) {
	t.Parallel()

	u := fleet.User{SubscribedTypes: []fleet.EventType{fleet.EventOffline}}
	assert.True(t, u.SubscribedTo(fleet.EventOffline))
	assert.False(t, u.SubscribedTo(fleet.EventGeoFenceEnter))
	assert.True(t, u.HasSubscriptions())

	var empty fleet.User
	assert.False(t, empty.SubscribedTo(fleet.EventOffline))
	assert.False(t, empty.HasSubscriptions())
}

func TestDeviceEvent_DisplayTime(t *testing.T) {
	t.Parallel()

	occurred := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	positioned := occurred.Add(-5 * time.Minute)

	offline := fleet.DeviceEvent{Type: fleet.EventOffline, OccurredAt: occurred}
	assert.Equal(t, occurred, offline.DisplayTime())

	enter := fleet.DeviceEvent{
		Type:       fleet.EventGeoFenceEnter,
		OccurredAt: occurred,
		Position:   &fleet.Position{Time: positioned},
	}
	assert.Equal(t, positioned, enter.DisplayTime())

	// A geo-fence event without a joined position falls back to its own time.
	enterNoPos := fleet.DeviceEvent{Type: fleet.EventGeoFenceEnter, OccurredAt: occurred}
	assert.Equal(t, occurred, enterNoPos.DisplayTime())
}
