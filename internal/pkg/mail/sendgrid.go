package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrSendGridAPIKeyRequired is returned when no API key is configured.
var ErrSendGridAPIKeyRequired = errors.New("mail: sendgrid api key is required")

// SendGridConfig configures the SendGrid implementation.
type SendGridConfig struct {
	// APIKey authenticates against the SendGrid v3 API.
	APIKey string
	// From is the default sender address.
	From string
	// FromName is the display name of the default sender.
	FromName string
}

// SendGrid is a Mail implementation backed by the SendGrid v3 API.
type SendGrid struct {
	client      *sendgrid.Client
	defaultFrom string
	fromName    string
}

// NewSendGrid constructs a SendGrid mail sender.
func NewSendGrid(cfg SendGridConfig) (*SendGrid, error) {
	if cfg.APIKey == "" {
		return nil, ErrSendGridAPIKeyRequired
	}

	return &SendGrid{
		client:      sendgrid.NewSendClient(cfg.APIKey),
		defaultFrom: cfg.From,
		fromName:    cfg.FromName,
	}, nil
}

// Send delivers a message through the SendGrid API.
func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	from, _, err := msg.envelope(s.defaultFrom)
	if err != nil {
		return err
	}

	resp, err := s.client.SendWithContext(ctx, buildSendGridMessage(sgmail.NewEmail(s.fromName, from), msg))
	if err != nil {
		return fmt.Errorf("mail: sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail: sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}

	return nil
}

// Close implements io.Closer.
func (s *SendGrid) Close() error {
	return nil
}

func buildSendGridMessage(from *sgmail.Email, msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail("", to))
	}
	for _, cc := range msg.Cc {
		p.AddCCs(sgmail.NewEmail("", cc))
	}
	for _, bcc := range msg.Bcc {
		p.AddBCCs(sgmail.NewEmail("", bcc))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(from)
	m.Subject = msg.Subject
	m.AddPersonalizations(p)

	if msg.TextBody != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextBody))
	}
	if msg.HTMLBody != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLBody))
	}

	return m
}
