package messaging

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrTopicRequired is returned by every driver for an empty topic.
	ErrTopicRequired = errors.New("messaging: topic is required")
	// ErrClosed is returned by Publish after Close.
	ErrClosed = errors.New("messaging: publisher closed")
)

// Message is a broker agnostic payload. Key picks the Kafka partition and is
// a plain header elsewhere. Headers travel as Kafka headers, NATS headers or
// Pub/Sub attributes. NSQ only carries Body.
type Message struct {
	Key     string
	Body    []byte
	Headers map[string]string
}

// Publisher sends messages to a topic (NATS subject). A failed Publish is
// reported to the caller and never retried here.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg Message) error
	Close() error
}

// lifecycle is embedded by drivers to make Close idempotent and to reject
// publishing afterwards.
type lifecycle struct {
	closed atomic.Bool
	once   sync.Once
	err    error
}

func (l *lifecycle) check(ctx context.Context, topic string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}
	if l.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (l *lifecycle) shutdown(fn func() error) error {
	l.once.Do(func() {
		l.closed.Store(true)
		l.err = fn()
	})
	return l.err
}

// perTopic lazily creates and caches one client handle per topic.
type perTopic[T any] struct {
	mu    sync.Mutex
	items map[string]T
	open  func(topic string) T
}

func newPerTopic[T any](open func(topic string) T) *perTopic[T] {
	return &perTopic[T]{items: map[string]T{}, open: open}
}

func (p *perTopic[T]) get(topic string) T {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.items[topic]; ok {
		return v
	}
	v := p.open(topic)
	p.items[topic] = v
	return v
}

// drain empties the cache and returns what it held.
func (p *perTopic[T]) drain() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]T, 0, len(p.items))
	for _, v := range p.items {
		out = append(out, v)
	}
	clear(p.items)
	return out
}
