package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/fleettrack/notifier/pkg/fleet"
)

// userAgent is stamped on outgoing mail, mirroring an X-Mailer header.
const userAgent = "fleettrack-notifier"

// MailChannel delivers notifications over SMTP using the server configured in
// the recipient's resolved settings. Recipients whose settings lack a server
// or from-address are skipped without a connection attempt.
type MailChannel struct {
	timeout time.Duration
}

// MailChannelOption configures a MailChannel.
type MailChannelOption func(*MailChannel)

// WithMailTimeout caps the SMTP dial and send cycle. Defaults to 10s so one
// unreachable server cannot stall a run.
func WithMailTimeout(d time.Duration) MailChannelOption {
	return func(c *MailChannel) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewMailChannel creates the SMTP delivery channel.
func NewMailChannel(opts ...MailChannelOption) *MailChannel {
	c := &MailChannel{timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MailChannel) Name() string { return "mail" }

func (c *MailChannel) Deliver(ctx context.Context, settings fleet.NotificationSettings, recipient fleet.User, subject, body string) (bool, error) {
	if settings.Server == "" || settings.FromAddress == "" {
		return false, nil
	}

	msg, err := c.buildMessage(settings, recipient, subject, body)
	if err != nil {
		return false, err
	}

	client, err := c.buildClient(settings)
	if err != nil {
		return false, err
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return false, fmt.Errorf("smtp send via %s: %w", settings.Server, err)
	}
	return true, nil
}

// Validate dials the configured SMTP server and closes the session without
// sending, and verifies the from-address is usable. Reused by the settings
// editing surface.
func (c *MailChannel) Validate(ctx context.Context, settings fleet.NotificationSettings) error {
	if settings.Server == "" || settings.FromAddress == "" {
		return ErrMissingMailConfig
	}

	probe := mail.NewMsg()
	if err := probe.From(settings.FromAddress); err != nil {
		return fmt.Errorf("invalid from-address %q: %w", settings.FromAddress, err)
	}

	client, err := c.buildClient(settings)
	if err != nil {
		return err
	}
	if err := client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("smtp dial %s: %w", settings.Server, err)
	}
	return client.Close()
}

func (c *MailChannel) buildMessage(settings fleet.NotificationSettings, recipient fleet.User, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(settings.FromAddress); err != nil {
		return nil, fmt.Errorf("invalid from-address %q: %w", settings.FromAddress, err)
	}
	if err := msg.AddToFormat(recipient.Login, recipient.Email); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", recipient.Email, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	msg.SetUserAgent(userAgent)
	return msg, nil
}

func (c *MailChannel) buildClient(settings fleet.NotificationSettings) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithTimeout(c.timeout),
	}
	if settings.Port > 0 {
		opts = append(opts, mail.WithPort(settings.Port))
	}

	switch settings.Secure {
	case fleet.SecureTLS:
		opts = append(opts, mail.WithSSL())
	case fleet.SecureStartTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if settings.UseAuth {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(settings.Username),
			mail.WithPassword(settings.Password),
		)
	}

	client, err := mail.NewClient(settings.Server, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client for %s: %w", settings.Server, err)
	}
	return client, nil
}

var (
	_ Channel   = (*MailChannel)(nil)
	_ Validator = (*MailChannel)(nil)
)
