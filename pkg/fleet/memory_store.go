package fleet

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory implementation of EventStore.
// Suitable for development and testing.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[int64]User
	events     map[int64]DeviceEvent
	eventOrder []int64
	settings   map[int64]NotificationSettings
}

// NewMemoryStore creates an empty in-memory event store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[int64]User),
		events:   make(map[int64]DeviceEvent),
		settings: make(map[int64]NotificationSettings),
	}
}

// PutUser inserts or replaces a user record.
func (s *MemoryStore) PutUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// PutEvent inserts or replaces an event. Insertion order is preserved for
// ListUnsentEvents.
func (s *MemoryStore) PutEvent(e DeviceEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.events[e.ID]; !exists {
		s.eventOrder = append(s.eventOrder, e.ID)
	}
	s.events[e.ID] = e
}

// PutSettings inserts or replaces the settings record owned by its user.
func (s *MemoryStore) PutSettings(ns NotificationSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[ns.UserID] = ns
}

// Event returns a copy of the stored event with the given id.
func (s *MemoryStore) Event(id int64) (DeviceEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	return e, ok
}

func (s *MemoryStore) ListSubscribedEventTypes(_ context.Context) ([]EventType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[EventType]struct{})
	var types []EventType
	for _, u := range s.users {
		for _, t := range u.SubscribedTypes {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				types = append(types, t)
			}
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types, nil
}

func (s *MemoryStore) ListUnsentEvents(_ context.Context, types []EventType) ([]DeviceEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[EventType]struct{}, len(types))
	for _, t := range types {
		wanted[t] = struct{}{}
	}

	var events []DeviceEvent
	for _, id := range s.eventOrder {
		e := s.events[id]
		if e.Sent {
			continue
		}
		if _, ok := wanted[e.Type]; !ok {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *MemoryStore) ListAdministrators(ctx context.Context) ([]User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	admins := users[:0:0]
	for _, u := range users {
		if u.Admin {
			admins = append(admins, u)
		}
	}
	return admins, nil
}

func (s *MemoryStore) FindSettings(_ context.Context, userID int64) (*NotificationSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.settings[userID]
	if !ok {
		return nil, ErrNotFound
	}
	// Return a copy to prevent external mutation of stored data.
	out := ns
	return &out, nil
}

func (s *MemoryStore) ListAdminSettings(_ context.Context) ([]NotificationSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []NotificationSettings
	for userID, ns := range s.settings {
		if u, ok := s.users[userID]; ok && u.Admin {
			out = append(out, ns)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *MemoryStore) CommitSentEvents(_ context.Context, eventIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range eventIDs {
		if e, ok := s.events[id]; ok {
			e.Sent = true
			s.events[id] = e
		}
	}
	return nil
}

var _ EventStore = (*MemoryStore)(nil)
