package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/venuehub/reservations/internal/kafka"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// Dispatcher publishes reservation events off the request path. Emit never
// blocks: when the buffer is full the event is dropped and logged.
type Dispatcher struct {
	publisher Publisher
	topics    []string
	timeout   time.Duration
	log       *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan kafka.ReservationEvent
	done   chan struct{}
}

type Option func(*Dispatcher)

// WithTopics sets the topics every event is written to, in order. Empty
// names are skipped.
func WithTopics(topics ...string) Option {
	return func(d *Dispatcher) {
		d.topics = d.topics[:0]
		for _, t := range topics {
			if t != "" {
				d.topics = append(d.topics, t)
			}
		}
	}
}

func WithBuffer(size int) Option {
	return func(d *Dispatcher) {
		if size > 0 {
			d.queue = make(chan kafka.ReservationEvent, size)
		}
	}
}

func WithPublishTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

func NewDispatcher(publisher Publisher, log *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		publisher: publisher,
		timeout:   5 * time.Second,
		log:       log.With(zap.String("component", "event_dispatcher")),
		queue:     make(chan kafka.ReservationEvent, 256),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.run()
	return d
}

// Emit queues event for publishing and reports whether it was accepted.
func (d *Dispatcher) Emit(event kafka.ReservationEvent) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("dispatcher closed, dropping event",
			zap.String("type", event.Type), zap.String("reservation_id", event.ReservationID))
		return false
	}
	select {
	case d.queue <- event:
		return true
	default:
		d.log.Warn("event buffer full, dropping event",
			zap.String("type", event.Type), zap.String("reservation_id", event.ReservationID))
		return false
	}
}

// Close stops accepting events and waits for queued ones to be published or
// for ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for event := range d.queue {
		d.publish(event)
	}
}

func (d *Dispatcher) publish(event kafka.ReservationEvent) {
	for _, topic := range d.topics {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.publisher.Publish(ctx, topic, event.ReservationID, event)
		cancel()
		if err != nil {
			d.log.Error("failed to publish event",
				zap.String("topic", topic),
				zap.String("type", event.Type),
				zap.String("reservation_id", event.ReservationID),
				zap.Error(err))
			continue
		}
		d.log.Debug("event published", zap.String("topic", topic), zap.String("type", event.Type))
	}
}

// LogPublisher stands in for Kafka when it is disabled and writes events to
// the log instead.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log.With(zap.String("component", "event_log"))}
}

func (p *LogPublisher) Publish(_ context.Context, topic, key string, payload interface{}) error {
	p.log.Info("event", zap.String("topic", topic), zap.String("key", key), zap.Any("payload", payload))
	return nil
}

var (
	_ Publisher = (*kafka.Producer)(nil)
	_ Publisher = (*LogPublisher)(nil)
)
