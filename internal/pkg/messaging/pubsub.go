package messaging

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"
)

// ErrPubSubProjectRequired is returned when neither a client nor a project
// id is configured.
var ErrPubSubProjectRequired = errors.New("messaging: pubsub project id is required")

type PubSubConfig struct {
	ProjectID string
	// Client is used as is when set. Close still closes it.
	Client        *pubsub.Client
	ClientOptions []option.ClientOption
}

// PubSub publishes to Google Pub/Sub and waits for the server ack. Key is
// sent as the "key" attribute.
type PubSub struct {
	lifecycle
	client     *pubsub.Client
	publishers *perTopic[*pubsub.Publisher]
}

func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSub, error) {
	client := cfg.Client
	if client == nil {
		if cfg.ProjectID == "" {
			return nil, ErrPubSubProjectRequired
		}
		var err error
		if client, err = pubsub.NewClient(ctx, cfg.ProjectID, cfg.ClientOptions...); err != nil {
			return nil, fmt.Errorf("messaging: pubsub client: %w", err)
		}
	}

	return &PubSub{
		client:     client,
		publishers: newPerTopic(client.Publisher),
	}, nil
}

func (p *PubSub) Publish(ctx context.Context, topic string, msg Message) error {
	if err := p.check(ctx, topic); err != nil {
		return err
	}

	attrs := make(map[string]string, len(msg.Headers)+1)
	for k, v := range msg.Headers {
		attrs[k] = v
	}
	if msg.Key != "" {
		attrs["key"] = msg.Key
	}

	res := p.publishers.get(topic).Publish(ctx, &pubsub.Message{Data: msg.Body, Attributes: attrs})
	if _, err := res.Get(ctx); err != nil {
		return fmt.Errorf("messaging: pubsub publish: %w", err)
	}
	return nil
}

func (p *PubSub) Close() error {
	return p.shutdown(func() error {
		for _, pub := range p.publishers.drain() {
			pub.Stop()
		}
		return p.client.Close()
	})
}
