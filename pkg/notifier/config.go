package notifier

import (
	"time"

	"github.com/fleettrack/notifier/pkg/config"
)

// Config holds engine settings loaded from the environment.
type Config struct {
	RunInterval         time.Duration `env:"NOTIFIER_RUN_INTERVAL" envDefault:"1m"`                                          // RunInterval is the fixed interval between notification runs.
	DeliveryConcurrency int           `env:"NOTIFIER_DELIVERY_CONCURRENCY" envDefault:"4"`                                   // DeliveryConcurrency bounds parallel per-recipient delivery within a run.
	ChannelTimeout      time.Duration `env:"NOTIFIER_CHANNEL_TIMEOUT" envDefault:"10s"`                                      // ChannelTimeout caps each channel's transport attempt.
	SubjectTag          string        `env:"NOTIFIER_SUBJECT_TAG" envDefault:"[fleettrack] Notification"`                    // SubjectTag is the fixed subject of every notification message.
	PushEndpoint        string        `env:"NOTIFIER_PUSH_ENDPOINT" envDefault:"https://api.pushbullet.com/v2/pushes"`       // PushEndpoint receives push notification POSTs.
	PushIdentityURL     string        `env:"NOTIFIER_PUSH_IDENTITY_URL" envDefault:"https://api.pushbullet.com/v2/users/me"` // PushIdentityURL is probed to validate a push access token.
}

// LoadConfig reads the engine settings from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
