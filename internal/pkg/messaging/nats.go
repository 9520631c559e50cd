package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
)

// ErrNATSURLRequired is returned when no server URL is configured.
var ErrNATSURLRequired = errors.New("messaging: nats url is required")

type NATSConfig struct {
	URL     string
	Options []nats.Option
}

// NATS publishes with core NATS and flushes before returning, so an error
// means the server did not get the message.
type NATS struct {
	lifecycle
	conn *nats.Conn
}

func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrNATSURLRequired
	}

	conn, err := nats.Connect(cfg.URL, cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}
	return &NATS{conn: conn}, nil
}

func (n *NATS) Publish(ctx context.Context, subject string, msg Message) error {
	if err := n.check(ctx, subject); err != nil {
		return err
	}

	nm := &nats.Msg{Subject: subject, Data: msg.Body, Header: nats.Header{}}
	for k, v := range msg.Headers {
		nm.Header.Set(k, v)
	}
	if msg.Key != "" {
		nm.Header.Set("key", msg.Key)
	}

	if err := n.conn.PublishMsg(nm); err != nil {
		return fmt.Errorf("messaging: nats publish: %w", err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("messaging: nats flush: %w", err)
	}
	return nil
}

// Close drains in-flight messages before disconnecting.
func (n *NATS) Close() error {
	return n.shutdown(func() error {
		err := n.conn.Drain()
		n.conn.Close()
		return err
	})
}
