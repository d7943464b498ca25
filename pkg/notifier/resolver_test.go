package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleettrack/notifier/pkg/fleet"
)

func TestResolver_Precedence(t *testing.T) {
	t.Parallel()

	// user(1) -> manager(2) -> senior manager(3); admin(9) is unrelated.
	users := []fleet.User{
		{ID: 1, ManagerID: ptr(2)},
		{ID: 2, ManagerID: ptr(3)},
		{ID: 3},
		{ID: 9, Admin: true},
	}

	tests := []struct {
		name       string
		settings   []fleet.NotificationSettings
		wantServer string
		wantNil    bool
	}{
		{
			name: "own settings win over everything",
			settings: []fleet.NotificationSettings{
				{UserID: 1, Server: "own"},
				{UserID: 2, Server: "manager"},
				{UserID: 9, Server: "admin"},
			},
			wantServer: "own",
		},
		{
			name: "nearest manager wins over admin default",
			settings: []fleet.NotificationSettings{
				{UserID: 2, Server: "manager"},
				{UserID: 3, Server: "senior"},
				{UserID: 9, Server: "admin"},
			},
			wantServer: "manager",
		},
		{
			name: "higher ancestor found when nearer one has none",
			settings: []fleet.NotificationSettings{
				{UserID: 3, Server: "senior"},
			},
			wantServer: "senior",
		},
		{
			name: "admin default as last resort",
			settings: []fleet.NotificationSettings{
				{UserID: 9, Server: "admin"},
			},
			wantServer: "admin",
		},
		{
			name:    "nothing found anywhere",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := fleet.NewMemoryStore()
			for _, u := range users {
				store.PutUser(u)
			}
			for _, ns := range tt.settings {
				store.PutSettings(ns)
			}

			r := NewResolver(store, fleet.NewDirectory(users))
			got, err := r.Resolve(context.Background(), users[0])
			require.NoError(t, err)

			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantServer, got.Server)
		})
	}
}

func TestResolver_AdminFallbackLowestID(t *testing.T) {
	t.Parallel()

	store := fleet.NewMemoryStore()
	store.PutUser(fleet.User{ID: 1})
	store.PutUser(fleet.User{ID: 5, Admin: true})
	store.PutUser(fleet.User{ID: 6, Admin: true})
	store.PutSettings(fleet.NotificationSettings{UserID: 6, Server: "second-admin"})
	store.PutSettings(fleet.NotificationSettings{UserID: 5, Server: "first-admin"})

	r := NewResolver(store, fleet.NewDirectory([]fleet.User{{ID: 1}}))
	got, err := r.Resolve(context.Background(), fleet.User{ID: 1})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "first-admin", got.Server)
}

func TestResolver_ManagerCycleTerminates(t *testing.T) {
	t.Parallel()

	users := []fleet.User{
		{ID: 1, ManagerID: ptr(2)},
		{ID: 2, ManagerID: ptr(1)},
	}
	store := fleet.NewMemoryStore()
	for _, u := range users {
		store.PutUser(u)
	}

	r := NewResolver(store, fleet.NewDirectory(users))
	got, err := r.Resolve(context.Background(), users[0])
	require.NoError(t, err)
	assert.Nil(t, got)
}

// failingStore wraps a MemoryStore and fails FindSettings, to verify store
// errors surface instead of being mistaken for absence.
type failingStore struct {
	*fleet.MemoryStore
}

func (s *failingStore) FindSettings(context.Context, int64) (*fleet.NotificationSettings, error) {
	return nil, errors.New("connection reset")
}

func TestResolver_StoreErrorPropagates(t *testing.T) {
	t.Parallel()

	store := &failingStore{fleet.NewMemoryStore()}
	r := NewResolver(store, fleet.NewDirectory(nil))

	_, err := r.Resolve(context.Background(), fleet.User{ID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
