package notifier

import (
	"context"
	"fmt"

	"github.com/mrz1836/postmark"

	"github.com/fleettrack/notifier/pkg/fleet"
)

// postmarkSender is the slice of the Postmark API this channel uses; the real
// client satisfies it, tests substitute their own.
type postmarkSender interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// PostmarkChannel delivers notifications as transactional email through
// Postmark. Recipients whose settings lack a server token or from-address are
// skipped without a request. The channel builds one API client per distinct
// server token, since the token lives in each recipient's resolved settings.
type PostmarkChannel struct {
	tag string
	// newClient is swapped out in tests.
	newClient func(serverToken string) postmarkSender
}

// PostmarkChannelOption configures a PostmarkChannel.
type PostmarkChannelOption func(*PostmarkChannel)

// WithPostmarkTag sets the tag attached to outgoing Postmark emails.
func WithPostmarkTag(tag string) PostmarkChannelOption {
	return func(c *PostmarkChannel) {
		if tag != "" {
			c.tag = tag
		}
	}
}

// NewPostmarkChannel creates the Postmark delivery channel.
func NewPostmarkChannel(opts ...PostmarkChannelOption) *PostmarkChannel {
	c := &PostmarkChannel{
		tag: "fleet-notification",
		newClient: func(serverToken string) postmarkSender {
			return postmark.NewClient(serverToken, "")
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *PostmarkChannel) Name() string { return "postmark" }

func (c *PostmarkChannel) Deliver(ctx context.Context, settings fleet.NotificationSettings, recipient fleet.User, subject, body string) (bool, error) {
	if settings.PostmarkServerToken == "" || settings.FromAddress == "" {
		return false, nil
	}

	client := c.newClient(settings.PostmarkServerToken)
	resp, err := client.SendEmail(ctx, postmark.Email{
		From:     settings.FromAddress,
		To:       recipient.Email,
		Subject:  subject,
		TextBody: body,
		Tag:      c.tag,
	})
	if err != nil {
		return false, fmt.Errorf("postmark send: %w", err)
	}
	if resp.ErrorCode > 0 {
		return false, fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message)
	}
	return true, nil
}

var _ Channel = (*PostmarkChannel)(nil)
