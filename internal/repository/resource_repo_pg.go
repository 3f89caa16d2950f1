package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuehub/reservations/internal/domain"
)

type PGResourceRepository struct {
	db *pgxpool.Pool
}

func NewResourceRepository(db *pgxpool.Pool) ResourceRepository {
	return &PGResourceRepository{db: db}
}

func (r *PGResourceRepository) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, timezone, has_schedule, min_capacity, max_capacity, min_hours, max_hours,
		hourly_rate, included_guests, extra_guest_rate, service_fee, created_at, updated_at
		FROM resources WHERE id=$1`, id)

	var (
		res                    domain.Resource
		hourly, extraRate, fee int64
	)
	if err := row.Scan(&res.ID, &res.Name, &res.Timezone, &res.HasSchedule, &res.MinCapacity, &res.MaxCapacity,
		&res.MinHours, &res.MaxHours, &hourly, &res.Pricing.IncludedGuests, &extraRate, &fee,
		&res.CreatedAt, &res.UpdatedAt); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("resource %s: %w", id, domain.ErrResourceNotFound)
		}
		return nil, storageErr("get resource", err)
	}
	res.Pricing.HourlyRate = domain.Money(hourly)
	res.Pricing.ExtraGuestRate = domain.Money(extraRate)
	res.Pricing.ServiceFee = domain.Money(fee)

	rows, err := r.db.Query(ctx, `SELECT weekday, closed, is_24_hours, start_minute, end_minute
		FROM resource_schedules WHERE resource_id=$1`, id)
	if err != nil {
		return nil, storageErr("get resource schedule", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			weekday    int
			day        domain.DaySchedule
			start, end int
		)
		if err := rows.Scan(&weekday, &day.Closed, &day.Is24Hours, &start, &end); err != nil {
			return nil, storageErr("get resource schedule", err)
		}
		if weekday < 0 || weekday > 6 {
			continue
		}
		day.Start = domain.TimeOfDay(start)
		day.End = domain.TimeOfDay(end)
		res.Schedule[weekday] = day
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get resource schedule", err)
	}

	blocked, err := r.db.Query(ctx, `SELECT date FROM resource_blocked_dates WHERE resource_id=$1 ORDER BY date`, id)
	if err != nil {
		return nil, storageErr("get blocked dates", err)
	}
	defer blocked.Close()
	for blocked.Next() {
		var d time.Time
		if err := blocked.Scan(&d); err != nil {
			return nil, storageErr("get blocked dates", err)
		}
		res.BlockedDates = append(res.BlockedDates, domain.DateOf(d))
	}
	if err := blocked.Err(); err != nil {
		return nil, storageErr("get blocked dates", err)
	}

	return &res, nil
}

// Save upserts a resource with its schedule and blocked dates. Used for
// seeding; hosts manage listings elsewhere.
func (r *PGResourceRepository) Save(ctx context.Context, res *domain.Resource) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return storageErr("begin save resource", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO resources (id, name, timezone, has_schedule, min_capacity, max_capacity, min_hours, max_hours,
			hourly_rate, included_guests, extra_guest_rate, service_fee)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, timezone=EXCLUDED.timezone, has_schedule=EXCLUDED.has_schedule,
			min_capacity=EXCLUDED.min_capacity, max_capacity=EXCLUDED.max_capacity,
			min_hours=EXCLUDED.min_hours, max_hours=EXCLUDED.max_hours,
			hourly_rate=EXCLUDED.hourly_rate, included_guests=EXCLUDED.included_guests,
			extra_guest_rate=EXCLUDED.extra_guest_rate, service_fee=EXCLUDED.service_fee, updated_at=now()`,
		res.ID, res.Name, res.Timezone, res.HasSchedule, res.MinCapacity, res.MaxCapacity, res.MinHours, res.MaxHours,
		int64(res.Pricing.HourlyRate), res.Pricing.IncludedGuests, int64(res.Pricing.ExtraGuestRate), int64(res.Pricing.ServiceFee)); err != nil {
		return storageErr("save resource", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM resource_schedules WHERE resource_id=$1`, res.ID); err != nil {
		return storageErr("save resource schedule", err)
	}
	if res.HasSchedule {
		batch := &pgx.Batch{}
		for weekday, day := range res.Schedule {
			batch.Queue(`INSERT INTO resource_schedules (resource_id, weekday, closed, is_24_hours, start_minute, end_minute)
				VALUES ($1, $2, $3, $4, $5, $6)`, res.ID, weekday, day.Closed, day.Is24Hours, int(day.Start), int(day.End))
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return storageErr("save resource schedule", err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM resource_blocked_dates WHERE resource_id=$1`, res.ID); err != nil {
		return storageErr("save blocked dates", err)
	}
	for _, d := range res.BlockedDates {
		if _, err := tx.Exec(ctx, `INSERT INTO resource_blocked_dates (resource_id, date) VALUES ($1, $2)`, res.ID, d.In(time.UTC)); err != nil {
			return storageErr("save blocked dates", err)
		}
	}

	return storageErr("commit resource", tx.Commit(ctx))
}

var _ ResourceRepository = (*PGResourceRepository)(nil)
