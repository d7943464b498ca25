package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleettrack/notifier/pkg/fleet"
)

func TestNewEngine(t *testing.T) {
	t.Parallel()

	cfg := Config{
		RunInterval:         time.Minute,
		DeliveryConcurrency: 2,
		ChannelTimeout:      5 * time.Second,
		SubjectTag:          "[fleettrack] Notification",
		PushEndpoint:        "https://push.example.com/v2/pushes",
		PushIdentityURL:     "https://push.example.com/v2/users/me",
	}

	eng, err := NewEngine(cfg, fleet.NewMemoryStore(), nil)
	require.NoError(t, err)
	require.NotNil(t, eng.Runner)
	require.NotNil(t, eng.Scheduler)
	require.Len(t, eng.Channels, 3)
	assert.Equal(t, "mail", eng.Channels[0].Name())
	assert.Equal(t, "push", eng.Channels[1].Name())
	assert.Equal(t, "postmark", eng.Channels[2].Name())
}

func TestNewEngine_NilStore(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(Config{}, nil, nil)
	assert.ErrorIs(t, err, ErrStoreNil)
}

func TestNewEngine_RunsAgainstEmptyStore(t *testing.T) {
	t.Parallel()

	eng, err := NewEngine(Config{}, fleet.NewMemoryStore(), nil,
		WithRunnerLogger(quietLogger()))
	require.NoError(t, err)
	assert.NoError(t, eng.Runner.Run(context.Background()))
}
