package notifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleettrack/notifier/pkg/fleet"
)

var aggBase = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func offlineEvent(id int64, device string, at time.Time) fleet.DeviceEvent {
	return fleet.DeviceEvent{
		ID:         id,
		Type:       fleet.EventOffline,
		Device:     fleet.Device{ID: id, Name: device},
		OccurredAt: at,
	}
}

func geoFenceEvent(id int64, device string, posTime time.Time) fleet.DeviceEvent {
	return fleet.DeviceEvent{
		ID:         id,
		Type:       fleet.EventGeoFenceEnter,
		Device:     fleet.Device{ID: id, Name: device},
		GeoFence:   &fleet.GeoFence{ID: 1, Name: "Depot"},
		Position:   &fleet.Position{Time: posTime},
		OccurredAt: posTime.Add(time.Minute),
	}
}

func TestAggregator_BucketsByCategory(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	u := fleet.User{ID: 1}

	agg.AddEvent(u, offlineEvent(1, "alpha", aggBase))
	agg.AddEvent(u, geoFenceEvent(2, "alpha", aggBase))

	assert.Len(t, agg.OfflineEvents(1), 1)
	assert.Len(t, agg.GeoFenceEvents(1), 1)
	require.Len(t, agg.Recipients(), 1)
	assert.Equal(t, int64(1), agg.Recipients()[0].ID)
}

func TestAggregator_DeduplicatesByEventID(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	u := fleet.User{ID: 1}
	e := offlineEvent(1, "alpha", aggBase)

	agg.AddEvent(u, e)
	agg.AddEvent(u, e)

	assert.Len(t, agg.OfflineEvents(1), 1)
}

func TestAggregator_Ordering(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	u := fleet.User{ID: 1}

	// Insert out of order: ordering is by device name, then time.
	agg.AddEvent(u, offlineEvent(3, "bravo", aggBase))
	agg.AddEvent(u, offlineEvent(2, "alpha", aggBase.Add(time.Hour)))
	agg.AddEvent(u, offlineEvent(1, "alpha", aggBase))

	got := agg.OfflineEvents(1)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, int64(3), got[2].ID)
}

func TestAggregator_GeoFenceOrderedByPositionTime(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	u := fleet.User{ID: 1}

	later := geoFenceEvent(1, "alpha", aggBase.Add(time.Hour))
	earlier := geoFenceEvent(2, "alpha", aggBase)
	agg.AddEvent(u, later)
	agg.AddEvent(u, earlier)

	got := agg.GeoFenceEvents(1)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
}

func TestAggregator_SentEventIDs(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	a := fleet.User{ID: 1}
	b := fleet.User{ID: 2}
	shared := offlineEvent(10, "alpha", aggBase)

	agg.AddEvent(a, shared)
	agg.AddEvent(a, geoFenceEvent(11, "alpha", aggBase))
	agg.AddEvent(b, shared)

	// Nothing delivered yet.
	assert.Empty(t, agg.SentEventIDs())

	agg.MarkDelivered(a.ID)
	assert.Equal(t, []int64{10, 11}, agg.SentEventIDs())

	// The shared event appears once even when both recipients were reached.
	agg.MarkDelivered(b.ID)
	assert.Equal(t, []int64{10, 11}, agg.SentEventIDs())
}

func TestAggregator_MarkDeliveredUnknownRecipient(t *testing.T) {
	t.Parallel()

	agg := NewAggregator()
	agg.MarkDelivered(99)
	assert.Empty(t, agg.SentEventIDs())
}
