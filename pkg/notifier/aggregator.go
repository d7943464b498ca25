package notifier

import (
	"sort"
	"sync"

	"github.com/fleettrack/notifier/pkg/fleet"
)

// Aggregator accumulates events per recipient for the duration of one run.
// Each recipient owns two buckets, offline and geo-fence, deduplicated by
// event id. After delivery, MarkDelivered records which recipients were
// reached; SentEventIDs yields the union of their event ids for the commit
// phase.
type Aggregator struct {
	mu      sync.Mutex
	buckets map[int64]*bucket
}

type bucket struct {
	recipient fleet.User
	offline   map[int64]fleet.DeviceEvent
	geoFence  map[int64]fleet.DeviceEvent
	delivered bool
}

// NewAggregator creates an empty per-run aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{buckets: make(map[int64]*bucket)}
}

// AddEvent places the event in the recipient's bucket for its category.
// Adding the same event to the same recipient twice is a no-op, so multiple
// fan-out paths cannot duplicate an event.
func (a *Aggregator) AddEvent(recipient fleet.User, event fleet.DeviceEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.buckets[recipient.ID]
	if !ok {
		b = &bucket{
			recipient: recipient,
			offline:   make(map[int64]fleet.DeviceEvent),
			geoFence:  make(map[int64]fleet.DeviceEvent),
		}
		a.buckets[recipient.ID] = b
	}

	if event.Type.IsGeoFence() {
		b.geoFence[event.ID] = event
	} else {
		b.offline[event.ID] = event
	}
}

// Recipients returns every recipient holding a non-empty bucket, ordered by
// user id for deterministic processing.
func (a *Aggregator) Recipients() []fleet.User {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]fleet.User, 0, len(a.buckets))
	for _, b := range a.buckets {
		out = append(out, b.recipient)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// OfflineEvents returns the recipient's offline bucket in presentation order.
func (a *Aggregator) OfflineEvents(recipientID int64) []fleet.DeviceEvent {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.buckets[recipientID]
	if !ok {
		return nil
	}
	return sortedEvents(b.offline)
}

// GeoFenceEvents returns the recipient's geo-fence bucket in presentation order.
func (a *Aggregator) GeoFenceEvents(recipientID int64) []fleet.DeviceEvent {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.buckets[recipientID]
	if !ok {
		return nil
	}
	return sortedEvents(b.geoFence)
}

// MarkDelivered records that at least one channel reached the recipient.
// The recipient's events become part of the run's acknowledgment batch.
func (a *Aggregator) MarkDelivered(recipientID int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if b, ok := a.buckets[recipientID]; ok {
		b.delivered = true
	}
}

// SentEventIDs returns the union of event ids across all delivered
// recipients, sorted ascending. An event reached through any recipient is
// acknowledged exactly once.
func (a *Aggregator) SentEventIDs() []int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	seen := make(map[int64]struct{})
	var ids []int64
	for _, b := range a.buckets {
		if !b.delivered {
			continue
		}
		for id := range b.offline {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
		for id := range b.geoFence {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// sortedEvents orders a bucket for presentation: device name first, event
// display time second. Ordering is computed lazily here, not maintained on
// insert.
func sortedEvents(m map[int64]fleet.DeviceEvent) []fleet.DeviceEvent {
	if len(m) == 0 {
		return nil
	}
	out := make([]fleet.DeviceEvent, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Device.Name != out[j].Device.Name {
			return out[i].Device.Name < out[j].Device.Name
		}
		return out[i].DisplayTime().Before(out[j].DisplayTime())
	})
	return out
}
