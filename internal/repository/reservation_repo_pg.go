package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuehub/reservations/internal/domain"
)

const reservationColumns = `id::text, resource_id, holder_id, date, start_minute, end_minute, guest_count,
	duration_minutes, base_price, extra_guests, surcharge, fees, total,
	status, cancel_reason, created_at, updated_at`

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

func (r *PGReservationRepository) ListActive(ctx context.Context, resourceID string, from, to domain.Date) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE resource_id=$1 AND date BETWEEN $2 AND $3 AND status = ANY($4)
		ORDER BY date, start_minute`,
		resourceID, from.In(time.UTC), to.In(time.UTC), activeStatusStrings())
	if err != nil {
		return nil, storageErr("list reservations", err)
	}
	list, err := collectReservations(rows)
	return list, storageErr("list reservations", err)
}

func (r *PGReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=$1`, id)
	res, err := scanReservation(row)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("reservation %s: %w", id, domain.ErrReservationNotFound)
		}
		return nil, storageErr("get reservation", err)
	}
	return res, nil
}

func (r *PGReservationRepository) Commit(ctx context.Context, resourceID string, date domain.Date, fn CommitFunc) (*domain.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, storageErr("begin commit", err)
	}
	defer tx.Rollback(ctx)

	// Transaction-scoped: released on commit or rollback.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, commitKey(resourceID, date)); err != nil {
		return nil, storageErr("acquire commit lock", err)
	}

	rows, err := tx.Query(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE resource_id=$1 AND date=$2 AND status = ANY($3)
		ORDER BY start_minute`,
		resourceID, date.In(time.UTC), activeStatusStrings())
	if err != nil {
		return nil, storageErr("read active reservations", err)
	}
	active, err := collectReservations(rows)
	if err != nil {
		return nil, storageErr("read active reservations", err)
	}

	res, err := fn(active)
	if err != nil {
		return nil, err
	}

	p := res.Price
	if err := tx.QueryRow(ctx, `INSERT INTO reservations (id, resource_id, holder_id, date, start_minute, end_minute, guest_count,
			duration_minutes, base_price, extra_guests, surcharge, fees, total, status, cancel_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`,
		res.ID, res.ResourceID, res.HolderID, res.Date.In(time.UTC), int(res.Start), int(res.End), res.GuestCount,
		p.DurationMinutes, int64(p.BasePrice), p.ExtraGuests, int64(p.Surcharge), int64(p.Fees), int64(p.Total),
		string(res.Status), string(res.CancelReason)).
		Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, storageErr("insert reservation", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageErr("commit reservation", err)
	}
	return res, nil
}

func (r *PGReservationRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ReservationStatus, reason domain.CancelReason) (*domain.Reservation, error) {
	row := r.db.QueryRow(ctx, `UPDATE reservations SET status=$1, cancel_reason=$2, updated_at=now()
		WHERE id=$3 AND status=$4
		RETURNING `+reservationColumns, string(to), string(reason), id, string(from))
	res, err := scanReservation(row)
	if err == nil {
		return res, nil
	}
	if !isNoRows(err) {
		return nil, storageErr("update reservation status", err)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: reservation %s is %s, expected %s", domain.ErrLifecycleViolation, id, current.Status, from)
}

func (r *PGReservationRepository) ListByStatusUntil(ctx context.Context, status domain.ReservationStatus, until domain.Date) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reservationColumns+` FROM reservations
		WHERE status=$1 AND date <= $2
		ORDER BY date, start_minute`, string(status), until.In(time.UTC))
	if err != nil {
		return nil, storageErr("list reservations by status", err)
	}
	list, err := collectReservations(rows)
	return list, storageErr("list reservations by status", err)
}

func activeStatusStrings() []string {
	out := make([]string, len(domain.ActiveStatuses))
	for i, s := range domain.ActiveStatuses {
		out[i] = string(s)
	}
	return out
}

func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	defer rows.Close()

	list := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *res)
	}
	return list, rows.Err()
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var (
		res                        domain.Reservation
		date                       time.Time
		start, end                 int
		base, surcharge, fees, tot int64
		status, reason             string
	)
	if err := row.Scan(&res.ID, &res.ResourceID, &res.HolderID, &date, &start, &end, &res.GuestCount,
		&res.Price.DurationMinutes, &base, &res.Price.ExtraGuests, &surcharge, &fees, &tot,
		&status, &reason, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}
	res.Date = domain.DateOf(date)
	res.Start = domain.TimeOfDay(start)
	res.End = domain.TimeOfDay(end)
	res.Price.BasePrice = domain.Money(base)
	res.Price.Surcharge = domain.Money(surcharge)
	res.Price.Fees = domain.Money(fees)
	res.Price.Total = domain.Money(tot)
	res.Status = domain.ReservationStatus(status)
	res.CancelReason = domain.CancelReason(reason)
	return &res, nil
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
