package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/venuehub/reservations/internal/domain"
)

type ResourceRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Resource, error)
	Save(ctx context.Context, res *domain.Resource) error
}

// CommitFunc runs inside the commit critical section with the active
// reservations of the locked (resource, date) read fresh from storage. It
// returns the reservation to insert, or an error that aborts the commit.
type CommitFunc func(active []domain.Reservation) (*domain.Reservation, error)

type ReservationRepository interface {
	// ListActive returns PENDING and CONFIRMED reservations of a resource
	// with from <= date <= to, ordered by date and start.
	ListActive(ctx context.Context, resourceID string, from, to domain.Date) ([]domain.Reservation, error)
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	// Commit serialises writers on (resourceID, date), hands the fresh
	// active set to fn and inserts its result atomically.
	Commit(ctx context.Context, resourceID string, date domain.Date, fn CommitFunc) (*domain.Reservation, error)
	// UpdateStatus moves a reservation from one status to another. It fails
	// with ErrLifecycleViolation when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to domain.ReservationStatus, reason domain.CancelReason) (*domain.Reservation, error)
	// ListByStatusUntil returns reservations in status whose date is on or
	// before until.
	ListByStatusUntil(ctx context.Context, status domain.ReservationStatus, until domain.Date) ([]domain.Reservation, error)
}

const pgExclusionViolation = "23P01"

// storageErr tags driver failures so callers can tell them from domain
// outcomes. Domain errors pass through untouched.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation {
		return fmt.Errorf("%s: %w", op, domain.ErrSlotConflict)
	}
	if domain.Code(err) != domain.CodeInternal {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func commitKey(resourceID string, date domain.Date) string {
	return resourceID + "|" + date.String()
}
