package reservation

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/venuehub/reservations/internal/domain"
)

type SweepResult struct {
	Completed int `json:"completed"`
	Expired   int `json:"expired"`
}

// Sweep advances reservations whose time has come: confirmed ones that have
// ended are completed, pending ones whose start passed unconfirmed are
// cancelled as expired. A reservation moved concurrently by someone else is
// skipped.
func (s *ReservationService) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	// One day ahead of UTC covers every zone east of it.
	until := domain.DateOf(s.now().UTC()).AddDays(1)
	resources := make(map[string]*domain.Resource)

	pending, err := s.reservations.ListByStatusUntil(ctx, domain.ReservationStatusPending, until)
	if err != nil {
		return result, err
	}
	var errs []error
	for i := range pending {
		moved, err := s.sweepOne(ctx, resources, &pending[i],
			func(r *domain.Reservation, loc *time.Location) bool { return !s.now().Before(r.StartsAt(loc)) },
			func(_ *domain.Resource, r *domain.Reservation) error { return s.expire(ctx, r) })
		if err != nil {
			errs = append(errs, err)
		}
		if moved {
			result.Expired++
		}
	}

	confirmed, err := s.reservations.ListByStatusUntil(ctx, domain.ReservationStatusConfirmed, until)
	if err != nil {
		return result, errors.Join(append(errs, err)...)
	}
	for i := range confirmed {
		moved, err := s.sweepOne(ctx, resources, &confirmed[i],
			func(r *domain.Reservation, loc *time.Location) bool { return !s.now().Before(r.EndsAt(loc)) },
			func(res *domain.Resource, r *domain.Reservation) error {
				_, err := s.apply(ctx, res, r, domain.ActionComplete)
				return err
			})
		if err != nil {
			errs = append(errs, err)
		}
		if moved {
			result.Completed++
		}
	}

	if result.Expired > 0 || result.Completed > 0 {
		s.log.Info("sweep finished", zap.Int("expired", result.Expired), zap.Int("completed", result.Completed))
	}
	return result, errors.Join(errs...)
}

func (s *ReservationService) sweepOne(
	ctx context.Context,
	cache map[string]*domain.Resource,
	r *domain.Reservation,
	due func(*domain.Reservation, *time.Location) bool,
	move func(*domain.Resource, *domain.Reservation) error,
) (bool, error) {
	res, ok := cache[r.ResourceID]
	if !ok {
		var err error
		res, err = s.resources.GetByID(ctx, r.ResourceID)
		if err != nil {
			return false, err
		}
		cache[r.ResourceID] = res
	}
	if !due(r, res.Location()) {
		return false, nil
	}

	err := move(res, r)
	if errors.Is(err, domain.ErrLifecycleViolation) {
		s.log.Warn("sweep skipped reservation", zap.String("reservation_id", r.ID), zap.Error(err))
		return false, nil
	}
	return err == nil, err
}

// expire cancels a pending reservation that was never confirmed.
func (s *ReservationService) expire(ctx context.Context, r *domain.Reservation) error {
	updated, err := s.reservations.UpdateStatus(ctx, r.ID, domain.ReservationStatusPending, domain.ReservationStatusCancelled, domain.CancelReasonExpired)
	if err != nil {
		return err
	}
	s.log.Info("reservation expired", zap.String("reservation_id", updated.ID))
	s.emit(eventFor(updated.Status), updated)
	return nil
}
