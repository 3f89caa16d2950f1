package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/venuehub/reservations/config"
	"github.com/venuehub/reservations/internal/bootstrap"
	"github.com/venuehub/reservations/internal/cache"
	"github.com/venuehub/reservations/internal/events"
	"github.com/venuehub/reservations/internal/kafka"
	"github.com/venuehub/reservations/internal/lock"
	"github.com/venuehub/reservations/internal/repository"
	"github.com/venuehub/reservations/internal/service/availability"
	"github.com/venuehub/reservations/internal/service/reservation"
)

const closeTimeout = 10 * time.Second

// app holds the infrastructure shared by every command.
type app struct {
	cfg          *config.Config
	log          *zap.Logger
	pool         *pgxpool.Pool
	resources    repository.ResourceRepository
	reservations repository.ReservationRepository
	locker       reservation.Locker
	dispatcher   *events.Dispatcher
	health       map[string]bootstrap.HealthCheck
	closers      []func() error
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{
		cfg:    cfg,
		log:    log,
		health: make(map[string]bootstrap.HealthCheck),
	}
	if err := a.openStorage(ctx); err != nil {
		a.close()
		return nil, err
	}

	a.locker = lock.NewKeyedMutex()
	if cfg.Redis.Enabled {
		rc := cache.NewRedisCache(cfg.Redis, cfg.Booking.ResourceCacheTTL(), cfg.Booking.LockTTL(), log)
		a.closers = append(a.closers, rc.Close)
		a.health["redis"] = rc.Ping
		a.resources = cache.NewCachedResources(a.resources, rc, log)
		if cfg.Booking.LockBackend == config.LockBackendRedis {
			a.locker = rc
		}
	}

	var publisher events.Publisher = events.NewLogPublisher(log)
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		a.closers = append(a.closers, producer.Close)
		a.health["kafka"] = producer.CheckConnection
		publisher = producer
	}
	a.dispatcher = events.NewDispatcher(publisher, log,
		events.WithTopics(cfg.Kafka.ReservationEventsTopic, cfg.Kafka.NotificationsTopic),
		events.WithBuffer(cfg.Booking.EventBuffer),
		events.WithPublishTimeout(cfg.Booking.PublishTimeout()),
	)
	return a, nil
}

func (a *app) openStorage(ctx context.Context) error {
	switch a.cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := repository.NewMemoryStore()
		a.resources = store.Resources()
		a.reservations = store.Reservations()
		if a.cfg.Storage.SeedFile != "" {
			n, err := repository.LoadSeed(ctx, a.cfg.Storage.SeedFile, a.resources)
			if err != nil {
				return err
			}
			a.log.Info("seeded memory store", zap.Int("resources", n))
		}
		return nil
	default:
		pool, err := pgxpool.New(ctx, a.cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		a.pool = pool
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		a.health["postgres"] = pool.Ping
		a.resources = repository.NewResourceRepository(pool)
		a.reservations = repository.NewReservationRepository(pool)
		return nil
	}
}

func (a *app) availability() *availability.AvailabilityService {
	return availability.NewAvailabilityService(a.resources, a.reservations, a.log,
		availability.WithSlotMinutes(a.cfg.Booking.SlotMinutes),
		availability.WithMaxMonths(a.cfg.Booking.MaxMonths),
	)
}

func (a *app) reservationService() *reservation.ReservationService {
	return reservation.NewReservationService(a.resources, a.reservations, a.locker, a.log,
		reservation.WithEvents(a.dispatcher),
		reservation.WithCancellationCutoff(a.cfg.Booking.CancellationCutoff()),
	)
}

// close drains queued events before releasing connections.
func (a *app) close() {
	if a.dispatcher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		if err := a.dispatcher.Close(ctx); err != nil {
			a.log.Warn("event dispatcher did not drain", zap.Error(err))
		}
		cancel()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Warn("close resources", zap.Error(err))
	}
	_ = a.log.Sync()
}
