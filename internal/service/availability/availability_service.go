package availability

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/venuehub/reservations/internal/calendar"
	"github.com/venuehub/reservations/internal/domain"
	"github.com/venuehub/reservations/internal/repository"
)

type AvailabilityUseCase interface {
	GetAvailability(ctx context.Context, resourceID string, from, to domain.Month) (map[domain.Date]domain.Snapshot, error)
	StartTimes(ctx context.Context, resourceID string, date domain.Date) ([]domain.TimeOfDay, error)
	EndTimes(ctx context.Context, resourceID string, date domain.Date, start domain.TimeOfDay) ([]domain.TimeOfDay, error)
}

type AvailabilityService struct {
	resources    repository.ResourceRepository
	reservations repository.ReservationRepository
	step         int
	maxMonths    int
	now          func() time.Time
	log          *zap.Logger
}

type AvailabilityServiceOption func(*AvailabilityService)

func WithSlotMinutes(step int) AvailabilityServiceOption {
	return func(s *AvailabilityService) {
		if step > 0 {
			s.step = step
		}
	}
}

// WithMaxMonths caps how many months one availability query may span.
func WithMaxMonths(n int) AvailabilityServiceOption {
	return func(s *AvailabilityService) {
		if n > 0 {
			s.maxMonths = n
		}
	}
}

func WithClock(now func() time.Time) AvailabilityServiceOption {
	return func(s *AvailabilityService) {
		s.now = now
	}
}

func NewAvailabilityService(
	resources repository.ResourceRepository,
	reservations repository.ReservationRepository,
	log *zap.Logger,
	opts ...AvailabilityServiceOption,
) *AvailabilityService {
	s := &AvailabilityService{
		resources:    resources,
		reservations: reservations,
		step:         calendar.Granularity,
		maxMonths:    12,
		now:          time.Now,
		log:          log.With(zap.String("service", "availability")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetAvailability returns one display snapshot per date of the months from
// through to, inclusive.
func (s *AvailabilityService) GetAvailability(ctx context.Context, resourceID string, from, to domain.Month) (map[domain.Date]domain.Snapshot, error) {
	months := from.MonthsUntil(to)
	if months == 0 {
		return nil, fmt.Errorf("%w: month range %s..%s is reversed", domain.ErrInvalidInput, from, to)
	}
	if months > s.maxMonths {
		return nil, fmt.Errorf("%w: month range spans %d months, limit is %d", domain.ErrInvalidInput, months, s.maxMonths)
	}

	res, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	first, last := from.FirstDay(), to.LastDay()
	active, err := s.reservations.ListActive(ctx, resourceID, first, last)
	if err != nil {
		return nil, err
	}

	byDate := make(map[domain.Date][]domain.Reservation)
	for _, r := range active {
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	out := make(map[domain.Date]domain.Snapshot)
	for d := first; !d.After(last); d = d.AddDays(1) {
		out[d] = calendar.Display(calendar.Aggregate(res, d, byDate[d]))
	}

	s.log.Debug("availability computed",
		zap.String("resource_id", resourceID),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Int("reservations", len(active)))
	return out, nil
}

// StartTimes lists slot starts on date from which at least a minimum-length
// reservation fits. On today's date starts already passed are left out.
func (s *AvailabilityService) StartTimes(ctx context.Context, resourceID string, date domain.Date) ([]domain.TimeOfDay, error) {
	res, snap, floor, err := s.day(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}

	starts := []domain.TimeOfDay{}
	if !snap.Status.Bookable() {
		return starts, nil
	}
	for _, a := range snap.Available {
		grid := domain.TimeRange{Start: snap.Window.Start, End: a.End}
		for t := range calendar.Slots(grid, s.step, max(a.Start, floor)) {
			if fits(calendar.EndSlots(t, a.End, s.step, res.MinDuration(), res.MaxDuration())) {
				starts = append(starts, t)
			}
		}
	}
	return starts, nil
}

// EndTimes lists valid end times for a reservation starting at start, bounded
// by the available range start falls in.
func (s *AvailabilityService) EndTimes(ctx context.Context, resourceID string, date domain.Date, start domain.TimeOfDay) ([]domain.TimeOfDay, error) {
	res, snap, floor, err := s.day(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}
	if start < floor {
		return nil, fmt.Errorf("%w: %s on %s has passed", domain.ErrPastDate, start, date)
	}

	a, ok := snap.RangeContaining(domain.TimeRange{Start: start, End: start + 1})
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s is not free", domain.ErrSlotConflict, start, date)
	}
	return slices.AppendSeq([]domain.TimeOfDay{}, calendar.EndSlots(start, a.End, s.step, res.MinDuration(), res.MaxDuration())), nil
}

// day loads the raw snapshot of date and the earliest start still bookable on
// it. Past, closed and blocked dates are rejected.
func (s *AvailabilityService) day(ctx context.Context, resourceID string, date domain.Date) (*domain.Resource, domain.Snapshot, domain.TimeOfDay, error) {
	res, err := s.resources.GetByID(ctx, resourceID)
	if err != nil {
		return nil, domain.Snapshot{}, 0, err
	}

	now := s.now().In(res.Location())
	today := domain.DateOf(now)
	if date.Before(today) {
		return nil, domain.Snapshot{}, 0, fmt.Errorf("%w: %s", domain.ErrPastDate, date)
	}
	var floor domain.TimeOfDay
	if date == today {
		floor = domain.NewTimeOfDay(now.Hour(), now.Minute())
	}

	active, err := s.reservations.ListActive(ctx, resourceID, date, date)
	if err != nil {
		return nil, domain.Snapshot{}, 0, err
	}
	snap := calendar.Aggregate(res, date, active)
	if snap.Status == domain.DayClosed || snap.Status == domain.DayBlocked {
		return nil, domain.Snapshot{}, 0, fmt.Errorf("%w: %s is %s", domain.ErrUnavailableDate, date, snap.Status)
	}
	return res, snap, floor, nil
}

func fits(ends iter.Seq[domain.TimeOfDay]) bool {
	for range ends {
		return true
	}
	return false
}

var _ AvailabilityUseCase = (*AvailabilityService)(nil)
