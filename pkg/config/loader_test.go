package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleettrack/notifier/pkg/config"
)

type schedulerConfig struct {
	Interval time.Duration `env:"TEST_SCHED_INTERVAL" envDefault:"1m"`
	Workers  int           `env:"TEST_SCHED_WORKERS" envDefault:"4"`
}

type requiredConfig struct {
	Token string `env:"TEST_REQUIRED_TOKEN,required"`
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_SCHED_INTERVAL", "30s")

	var cfg schedulerConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, 30*time.Second, cfg.Interval)
	assert.Equal(t, 4, cfg.Workers, "unset variables fall back to defaults")
}

func TestLoad_CachesPerType(t *testing.T) {
	t.Setenv("TEST_SCHED_INTERVAL", "30s")

	var first schedulerConfig
	require.NoError(t, config.Load(&first))

	// The first parse wins even when the environment changes afterward.
	t.Setenv("TEST_SCHED_INTERVAL", "2h")
	var second schedulerConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, first, second)
}

func TestLoad_NilPointer(t *testing.T) {
	t.Parallel()

	err := config.Load[schedulerConfig](nil)
	assert.ErrorIs(t, err, config.ErrNilPointer)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Parallel()

	var cfg requiredConfig
	err := config.Load(&cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestMustLoad_PanicsOnFailure(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}
