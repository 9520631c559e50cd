package messaging

import (
	"context"
	"errors"
	"fmt"

	nsq "github.com/nsqio/go-nsq"
)

// ErrNSQAddrRequired is returned when no nsqd address is configured.
var ErrNSQAddrRequired = errors.New("messaging: nsq producer address is required")

type NSQConfig struct {
	// ProducerAddr is the nsqd TCP address.
	ProducerAddr string
	// Config overrides nsq.NewConfig().
	Config *nsq.Config
}

// NSQ publishes through a single nsqd producer. Keys and headers are not
// supported by the protocol and are dropped.
type NSQ struct {
	lifecycle
	producer *nsq.Producer
}

func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	if cfg.ProducerAddr == "" {
		return nil, ErrNSQAddrRequired
	}
	if cfg.Config == nil {
		cfg.Config = nsq.NewConfig()
	}

	p, err := nsq.NewProducer(cfg.ProducerAddr, cfg.Config)
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq producer: %w", err)
	}
	p.SetLoggerLevel(nsq.LogLevelError)

	return &NSQ{producer: p}, nil
}

func (n *NSQ) Publish(ctx context.Context, topic string, msg Message) error {
	if err := n.check(ctx, topic); err != nil {
		return err
	}

	// go-nsq has no context aware publish. The async variant lets the wait
	// honour ctx.
	done := make(chan *nsq.ProducerTransaction, 1)
	if err := n.producer.PublishAsync(topic, msg.Body, done); err != nil {
		return fmt.Errorf("messaging: nsq publish: %w", err)
	}

	select {
	case tx := <-done:
		if tx.Error != nil {
			return fmt.Errorf("messaging: nsq publish: %w", tx.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *NSQ) Close() error {
	return n.shutdown(func() error {
		n.producer.Stop()
		return nil
	})
}
