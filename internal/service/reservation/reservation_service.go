package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/venuehub/reservations/internal/calendar"
	"github.com/venuehub/reservations/internal/domain"
	"github.com/venuehub/reservations/internal/kafka"
	"github.com/venuehub/reservations/internal/pricing"
	"github.com/venuehub/reservations/internal/repository"
)

type ReservationUseCase interface {
	ValidateAndPrice(ctx context.Context, input QuoteInput) (domain.PriceBreakdown, error)
	Commit(ctx context.Context, input CommitInput) (*domain.Reservation, error)
	Get(ctx context.Context, id string) (*domain.Reservation, error)
	Transition(ctx context.Context, id string, action domain.Action) (*domain.Reservation, error)
	Sweep(ctx context.Context) (SweepResult, error)
}

// Locker serialises commits on one (resource, date) key. The returned func
// releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type EventEmitter interface {
	Emit(event kafka.ReservationEvent) bool
}

type ReservationService struct {
	resources    repository.ResourceRepository
	reservations repository.ReservationRepository
	locker       Locker
	events       EventEmitter
	validate     *validator.Validate
	cutoff       time.Duration
	now          func() time.Time
	log          *zap.Logger
}

type ReservationServiceOption func(*ReservationService)

func WithEvents(events EventEmitter) ReservationServiceOption {
	return func(s *ReservationService) {
		s.events = events
	}
}

// WithCancellationCutoff sets how long before its start a confirmed
// reservation can still be cancelled.
func WithCancellationCutoff(cutoff time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		s.cutoff = cutoff
	}
}

func WithClock(now func() time.Time) ReservationServiceOption {
	return func(s *ReservationService) {
		s.now = now
	}
}

func NewReservationService(
	resources repository.ResourceRepository,
	reservations repository.ReservationRepository,
	locker Locker,
	log *zap.Logger,
	opts ...ReservationServiceOption,
) *ReservationService {
	s := &ReservationService{
		resources:    resources,
		reservations: reservations,
		locker:       locker,
		validate:     newValidator(),
		cutoff:       24 * time.Hour,
		now:          time.Now,
		log:          log.With(zap.String("service", "reservation")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// checked is a proposal that passed every rule, with its resource and price.
type checked struct {
	res   *domain.Resource
	p     proposal
	price domain.PriceBreakdown
}

func (s *ReservationService) ValidateAndPrice(ctx context.Context, input QuoteInput) (domain.PriceBreakdown, error) {
	c, err := s.check(ctx, input)
	if err != nil {
		s.logRejection("quote rejected", input, err)
		return domain.PriceBreakdown{}, err
	}
	return c.price, nil
}

// Commit validates input against a fresh snapshot and persists it as a
// PENDING reservation. The availability check is repeated inside the storage
// critical section so that only one of several racing commits can win.
func (s *ReservationService) Commit(ctx context.Context, input CommitInput) (*domain.Reservation, error) {
	if err := checkShape(s.validate, input); err != nil {
		return nil, err
	}
	c, err := s.check(ctx, input.QuoteInput)
	if err != nil {
		s.logRejection("commit rejected", input.QuoteInput, err)
		return nil, err
	}

	key := c.res.ID + "|" + c.p.date.String()
	unlock, err := s.locker.Lock(ctx, key)
	if err != nil {
		s.log.Error("failed to acquire commit lock", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: commit lock %s: %w", domain.ErrStorage, key, err)
	}
	defer unlock()

	created, err := s.reservations.Commit(ctx, c.res.ID, c.p.date, func(active []domain.Reservation) (*domain.Reservation, error) {
		snap := calendar.Aggregate(c.res, c.p.date, active)
		if _, ok := snap.RangeContaining(c.p.rng); !ok {
			return nil, fmt.Errorf("%w: %s on %s was taken", domain.ErrSlotConflict, c.p.rng, c.p.date)
		}
		return &domain.Reservation{
			ID:         uuid.NewString(),
			ResourceID: c.res.ID,
			HolderID:   input.HolderID,
			Date:       c.p.date,
			Start:      c.p.rng.Start,
			End:        c.p.rng.End,
			GuestCount: c.p.guestCount,
			Price:      c.price,
			Status:     domain.ReservationStatusPending,
		}, nil
	})
	if err != nil {
		s.logRejection("commit failed", input.QuoteInput, err)
		return nil, err
	}

	s.log.Info("reservation created",
		zap.String("reservation_id", created.ID),
		zap.String("resource_id", created.ResourceID),
		zap.Stringer("date", created.Date),
		zap.Stringer("range", created.Range()),
		zap.Int64("total", int64(created.Price.Total)))
	s.emit(kafka.EventReservationCreated, created)
	return created, nil
}

func (s *ReservationService) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("reservation %s: %w", id, domain.ErrReservationNotFound)
	}
	return s.reservations.GetByID(ctx, id)
}

// Transition applies a caller-requested action. Illegal moves are integration
// errors and are logged at error level.
func (s *ReservationService) Transition(ctx context.Context, id string, action domain.Action) (*domain.Reservation, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.resources.GetByID(ctx, current.ResourceID)
	if err != nil {
		return nil, err
	}

	updated, err := s.apply(ctx, res, current, action)
	if err != nil {
		if errors.Is(err, domain.ErrLifecycleViolation) {
			s.log.Error("lifecycle violation",
				zap.String("reservation_id", id),
				zap.String("status", string(current.Status)),
				zap.String("action", string(action)),
				zap.Error(err))
		}
		return nil, err
	}
	return updated, nil
}

// apply checks the state machine and the time guards, then compare-and-sets
// the new status.
func (s *ReservationService) apply(ctx context.Context, res *domain.Resource, r *domain.Reservation, action domain.Action) (*domain.Reservation, error) {
	if r.Status.Terminal() {
		return nil, fmt.Errorf("%w: reservation %s is already %s", domain.ErrLifecycleViolation, r.ID, r.Status)
	}
	next, err := r.Status.Next(action)
	if err != nil {
		return nil, err
	}

	now := s.now()
	loc := res.Location()
	startsAt, endsAt := r.StartsAt(loc), r.EndsAt(loc)

	var reason domain.CancelReason
	switch action {
	case domain.ActionConfirm:
		if !now.Before(startsAt) {
			return nil, fmt.Errorf("%w: reservation %s already started", domain.ErrLifecycleViolation, r.ID)
		}
	case domain.ActionReject:
		reason = domain.CancelReasonRejected
	case domain.ActionCancel:
		deadline := startsAt
		reason = domain.CancelReasonWithdrawn
		if r.Status == domain.ReservationStatusConfirmed {
			deadline = startsAt.Add(-s.cutoff)
			reason = domain.CancelReasonCancelled
		}
		if !now.Before(deadline) {
			return nil, fmt.Errorf("%w: cancellation deadline %s has passed", domain.ErrLifecycleViolation, deadline.Format(time.RFC3339))
		}
	case domain.ActionComplete:
		if now.Before(endsAt) {
			return nil, fmt.Errorf("%w: reservation %s has not ended", domain.ErrLifecycleViolation, r.ID)
		}
	}

	updated, err := s.reservations.UpdateStatus(ctx, r.ID, r.Status, next, reason)
	if err != nil {
		return nil, err
	}

	s.log.Info("reservation transitioned",
		zap.String("reservation_id", updated.ID),
		zap.String("from", string(r.Status)),
		zap.String("to", string(updated.Status)),
		zap.String("reason", string(reason)))
	s.emit(eventFor(updated.Status), updated)
	return updated, nil
}

// check runs shape validation and the domain rules in their fixed order, then
// prices the proposal.
func (s *ReservationService) check(ctx context.Context, input QuoteInput) (checked, error) {
	if err := checkShape(s.validate, input); err != nil {
		return checked{}, err
	}
	p, err := parseProposal(input)
	if err != nil {
		return checked{}, err
	}
	res, err := s.resources.GetByID(ctx, input.ResourceID)
	if err != nil {
		return checked{}, err
	}

	if err := s.checkNotPast(res, p); err != nil {
		return checked{}, err
	}

	snap := calendar.Aggregate(res, p.date, nil)
	if snap.Status == domain.DayClosed || snap.Status == domain.DayBlocked {
		return checked{}, fmt.Errorf("%w: %s is %s", domain.ErrUnavailableDate, p.date, snap.Status)
	}

	if err := checkDuration(res, p.rng); err != nil {
		return checked{}, err
	}
	if err := checkCapacity(res, p.guestCount); err != nil {
		return checked{}, err
	}

	active, err := s.reservations.ListActive(ctx, res.ID, p.date, p.date)
	if err != nil {
		return checked{}, err
	}
	snap = calendar.Aggregate(res, p.date, active)
	if _, ok := snap.RangeContaining(p.rng); !ok {
		return checked{}, fmt.Errorf("%w: %s on %s is not free", domain.ErrSlotConflict, p.rng, p.date)
	}

	return checked{
		res:   res,
		p:     p,
		price: pricing.Calculate(res.Pricing, p.rng.Minutes(), p.guestCount),
	}, nil
}

func (s *ReservationService) checkNotPast(res *domain.Resource, p proposal) error {
	now := s.now().In(res.Location())
	today := domain.DateOf(now)
	if p.date.Before(today) {
		return fmt.Errorf("%w: %s is before %s", domain.ErrPastDate, p.date, today)
	}
	if p.date == today && p.rng.Start < domain.NewTimeOfDay(now.Hour(), now.Minute()) {
		return fmt.Errorf("%w: %s today has passed", domain.ErrPastDate, p.rng.Start)
	}
	return nil
}

func checkDuration(res *domain.Resource, r domain.TimeRange) error {
	if r.Empty() {
		return fmt.Errorf("%w: start %s must be before end %s", domain.ErrInvalidDuration, r.Start, r.End)
	}
	minutes := r.Minutes()
	if minutes < res.MinDuration() {
		return fmt.Errorf("%w: %d minutes is below the %d hour minimum", domain.ErrInvalidDuration, minutes, res.MinHours)
	}
	if maxDur := res.MaxDuration(); maxDur > 0 && minutes > maxDur {
		return fmt.Errorf("%w: %d minutes exceeds the %d hour maximum", domain.ErrInvalidDuration, minutes, res.MaxHours)
	}
	return nil
}

func checkCapacity(res *domain.Resource, guests int) error {
	if guests < 1 || guests < res.MinCapacity {
		return fmt.Errorf("%w: %d guests is below the minimum of %d", domain.ErrInvalidCapacity, guests, max(res.MinCapacity, 1))
	}
	if res.MaxCapacity > 0 && guests > res.MaxCapacity {
		return fmt.Errorf("%w: %d guests exceeds the maximum of %d", domain.ErrInvalidCapacity, guests, res.MaxCapacity)
	}
	return nil
}

// logRejection keeps user mistakes at info and everything else at error.
func (s *ReservationService) logRejection(msg string, input QuoteInput, err error) {
	fields := []zap.Field{
		zap.String("resource_id", input.ResourceID),
		zap.String("date", input.Date),
		zap.String("start", input.Start),
		zap.String("end", input.End),
		zap.String("code", domain.Code(err)),
		zap.Error(err),
	}
	if domain.IsUserError(err) {
		s.log.Info(msg, fields...)
		return
	}
	s.log.Error(msg, fields...)
}

func (s *ReservationService) emit(eventType string, r *domain.Reservation) {
	if s.events == nil || eventType == "" {
		return
	}
	s.events.Emit(kafka.NewReservationEvent(eventType, r, s.now()))
}

func eventFor(status domain.ReservationStatus) string {
	switch status {
	case domain.ReservationStatusPending:
		return kafka.EventReservationCreated
	case domain.ReservationStatusConfirmed:
		return kafka.EventReservationConfirmed
	case domain.ReservationStatusCancelled:
		return kafka.EventReservationCancelled
	case domain.ReservationStatusCompleted:
		return kafka.EventReservationCompleted
	}
	return ""
}

var _ ReservationUseCase = (*ReservationService)(nil)
