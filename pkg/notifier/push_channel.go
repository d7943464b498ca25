package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fleettrack/notifier/pkg/fleet"
)

const (
	defaultPushEndpoint    = "https://api.pushbullet.com/v2/pushes"
	defaultPushIdentityURL = "https://api.pushbullet.com/v2/users/me"
)

// PushChannel delivers notifications as push notes through an HTTP provider.
// Recipients whose settings lack an access token are skipped without a
// request.
type PushChannel struct {
	client      *http.Client
	endpoint    string
	identityURL string
}

// PushChannelOption configures a PushChannel.
type PushChannelOption func(*PushChannel)

// WithPushEndpoint overrides the provider endpoint receiving push POSTs.
func WithPushEndpoint(url string) PushChannelOption {
	return func(c *PushChannel) {
		if url != "" {
			c.endpoint = url
		}
	}
}

// WithPushIdentityURL overrides the endpoint probed by Validate.
func WithPushIdentityURL(url string) PushChannelOption {
	return func(c *PushChannel) {
		if url != "" {
			c.identityURL = url
		}
	}
}

// WithPushHTTPClient sets a custom HTTP client, for tests or custom transports.
func WithPushHTTPClient(client *http.Client) PushChannelOption {
	return func(c *PushChannel) {
		if client != nil {
			c.client = client
		}
	}
}

// NewPushChannel creates the push delivery channel. The default client reuses
// pooled connections and caps each request at 10s.
func NewPushChannel(opts ...PushChannelOption) *PushChannel {
	c := &PushChannel{
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		endpoint:    defaultPushEndpoint,
		identityURL: defaultPushIdentityURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *PushChannel) Name() string { return "push" }

// pushNote is the provider's wire format for one push.
type pushNote struct {
	Email string `json:"email"`
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (c *PushChannel) Deliver(ctx context.Context, settings fleet.NotificationSettings, recipient fleet.User, subject, body string) (bool, error) {
	if settings.PushToken == "" {
		return false, nil
	}

	payload, err := json.Marshal(pushNote{
		Email: recipient.Email,
		Type:  "note",
		Title: subject,
		Body:  body,
	})
	if err != nil {
		return false, fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+settings.PushToken)
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req); err != nil {
		return false, err
	}
	return true, nil
}

// Validate probes the provider's identity endpoint with the configured token.
// Reused by the settings editing surface.
func (c *PushChannel) Validate(ctx context.Context, settings fleet.NotificationSettings) error {
	if settings.PushToken == "" {
		return ErrMissingPushToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.identityURL, nil)
	if err != nil {
		return fmt.Errorf("build push identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+settings.PushToken)

	return c.do(req)
}

func (c *PushChannel) do(req *http.Request) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrPushRejected, resp.StatusCode)
	}
	return nil
}

var (
	_ Channel   = (*PushChannel)(nil)
	_ Validator = (*PushChannel)(nil)
)
