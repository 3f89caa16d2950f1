package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/venuehub/reservations/internal/kafka"
	"github.com/venuehub/reservations/internal/service/reservation"
)

type Sweeper interface {
	Sweep(ctx context.Context) (reservation.SweepResult, error)
}

// EventSource delivers reservation events until ctx ends.
type EventSource interface {
	ConsumeEvents(ctx context.Context, handler func(context.Context, kafka.ReservationEvent) error) error
}

type Notifier interface {
	Notify(ctx context.Context, event kafka.ReservationEvent) error
}

type Worker struct {
	sweeper  Sweeper
	interval time.Duration
	events   EventSource
	notifier Notifier
	log      *zap.Logger
}

type Option func(*Worker)

// WithNotifications makes the worker forward consumed events to notifier.
func WithNotifications(events EventSource, notifier Notifier) Option {
	return func(w *Worker) {
		w.events = events
		w.notifier = notifier
	}
}

func New(sweeper Sweeper, interval time.Duration, log *zap.Logger, opts ...Option) *Worker {
	w := &Worker{
		sweeper:  sweeper,
		interval: interval,
		log:      log.With(zap.String("component", "worker")),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run sweeps once immediately and then on every tick until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	if w.events != nil && w.notifier != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := w.events.ConsumeEvents(ctx, w.notifier.Notify)
			if err != nil && !errors.Is(err, context.Canceled) {
				w.log.Error("consumer stopped", zap.Error(err))
			}
		}()
	}
	defer wg.Wait()

	w.sweep(ctx)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker stopping")
			return nil
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	result, err := w.sweeper.Sweep(ctx)
	if err != nil {
		w.log.Error("sweep failed", zap.Error(err))
	}
	if result.Completed > 0 || result.Expired > 0 {
		w.log.Info("sweep advanced reservations",
			zap.Int("completed", result.Completed),
			zap.Int("expired", result.Expired))
	}
}
