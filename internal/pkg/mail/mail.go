package mail

import (
	"context"
	"errors"
)

var (
	ErrNoRecipients = errors.New("mail: no recipients provided")
	ErrNoSender     = errors.New("mail: no sender provided")
)

// Message is a single email. From may be empty to use the driver default.
// When both bodies are set the message is sent as multipart/alternative.
type Message struct {
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	TextBody string
	HTMLBody string
}

// envelope resolves the sender and the full recipient list, Bcc included.
func (m Message) envelope(defaultFrom string) (from string, rcpt []string, err error) {
	rcpt = make([]string, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	for _, group := range [][]string{m.To, m.Cc, m.Bcc} {
		rcpt = append(rcpt, group...)
	}
	if len(rcpt) == 0 {
		return "", nil, ErrNoRecipients
	}

	from = m.From
	if from == "" {
		from = defaultFrom
	}
	if from == "" {
		return "", nil, ErrNoSender
	}
	return from, rcpt, nil
}

// Mail delivers messages through one provider.
type Mail interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}
