package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Driver names accepted by New.
const (
	DriverNSQ          = "nsq"
	DriverNATS         = "nats"
	DriverKafka        = "kafka"
	DriverGooglePubSub = "google-pubsub"
	DriverNone         = "none"
)

// ErrUnknownDriver indicates an unsupported messaging driver.
var ErrUnknownDriver = errors.New("messaging: unknown driver")

// Options holds the settings of every driver. Only the selected one is read.
type Options struct {
	NSQ    NSQConfig
	Kafka  KafkaConfig
	NATS   NATSConfig
	PubSub PubSubConfig
}

var drivers = map[string]func(context.Context, Options) (Publisher, error){
	DriverNSQ:          func(_ context.Context, o Options) (Publisher, error) { return NewNSQ(o.NSQ) },
	DriverKafka:        func(_ context.Context, o Options) (Publisher, error) { return NewKafka(o.Kafka) },
	DriverNATS:         func(_ context.Context, o Options) (Publisher, error) { return NewNATS(o.NATS) },
	DriverGooglePubSub: func(ctx context.Context, o Options) (Publisher, error) { return NewPubSub(ctx, o.PubSub) },
	DriverNone:         func(context.Context, Options) (Publisher, error) { return Discard{}, nil },
}

// New returns the Publisher for driver. An empty driver means DriverNone.
func New(ctx context.Context, driver string, opts Options) (Publisher, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = DriverNone
	}
	build, ok := drivers[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	return build(ctx, opts)
}

// Discard drops every message. It backs DriverNone and tests.
type Discard struct{}

func (Discard) Publish(ctx context.Context, topic string, _ Message) error {
	if topic == "" {
		return ErrTopicRequired
	}
	return ctx.Err()
}

func (Discard) Close() error { return nil }
