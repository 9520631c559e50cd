package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// ErrKafkaBrokersRequired is returned when no broker is configured.
var ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")

const defaultKafkaBatchTimeout = 10 * time.Millisecond

type KafkaConfig struct {
	Brokers []string
	// BatchTimeout bounds how long a writer waits to fill a batch.
	BatchTimeout time.Duration
	// RequiredAcks defaults to kafka.RequireOne.
	RequiredAcks kafka.RequiredAcks
}

// Kafka keeps one kafka-go writer per topic. Messages with the same Key land
// on the same partition.
type Kafka struct {
	lifecycle
	writers *perTopic[*kafka.Writer]
}

func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}
	if cfg.RequiredAcks == 0 {
		cfg.RequiredAcks = kafka.RequireOne
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = defaultKafkaBatchTimeout
	}
	addr := kafka.TCP(cfg.Brokers...)

	return &Kafka{writers: newPerTopic(func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:                   addr,
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           cfg.BatchTimeout,
			RequiredAcks:           cfg.RequiredAcks,
			AllowAutoTopicCreation: true,
		}
	})}, nil
}

func (k *Kafka) Publish(ctx context.Context, topic string, msg Message) error {
	if err := k.check(ctx, topic); err != nil {
		return err
	}

	km := kafka.Message{Key: []byte(msg.Key), Value: msg.Body, Time: time.Now()}
	for key, val := range msg.Headers {
		km.Headers = append(km.Headers, kafka.Header{Key: key, Value: []byte(val)})
	}

	if err := k.writers.get(topic).WriteMessages(ctx, km); err != nil {
		return fmt.Errorf("messaging: kafka publish: %w", err)
	}
	return nil
}

// Close flushes pending batches.
func (k *Kafka) Close() error {
	return k.shutdown(func() error {
		var errs []error
		for _, w := range k.writers.drain() {
			errs = append(errs, w.Close())
		}
		return errors.Join(errs...)
	})
}
