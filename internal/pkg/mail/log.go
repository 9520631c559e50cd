package mail

import (
	"context"
	"log/slog"
)

// Log is a Mail implementation for local development. It records the
// envelope only and never writes message bodies.
type Log struct{}

// NewLog returns a Log sender.
func NewLog() *Log {
	return &Log{}
}

// Send logs the message envelope.
func (*Log) Send(ctx context.Context, msg Message) error {
	if _, _, err := msg.envelope("log"); err != nil {
		return err
	}

	slog.InfoContext(ctx, "mail delivered to log driver", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Close implements io.Closer.
func (*Log) Close() error {
	return nil
}
