package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE EXTENSION IF NOT EXISTS btree_gist;

CREATE TABLE IF NOT EXISTS resources (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	timezone TEXT NOT NULL DEFAULT 'UTC',
	has_schedule BOOLEAN NOT NULL DEFAULT false,
	min_capacity INT NOT NULL DEFAULT 1,
	max_capacity INT NOT NULL,
	min_hours INT NOT NULL DEFAULT 1,
	max_hours INT NOT NULL DEFAULT 0,
	hourly_rate BIGINT NOT NULL DEFAULT 0,
	included_guests INT NOT NULL DEFAULT 0,
	extra_guest_rate BIGINT NOT NULL DEFAULT 0,
	service_fee BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS resource_schedules (
	resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
	weekday SMALLINT NOT NULL CHECK (weekday BETWEEN 0 AND 6),
	closed BOOLEAN NOT NULL DEFAULT false,
	is_24_hours BOOLEAN NOT NULL DEFAULT false,
	start_minute INT NOT NULL DEFAULT 0,
	end_minute INT NOT NULL DEFAULT 0,
	PRIMARY KEY (resource_id, weekday)
);

CREATE TABLE IF NOT EXISTS resource_blocked_dates (
	resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
	date DATE NOT NULL,
	PRIMARY KEY (resource_id, date)
);

CREATE TABLE IF NOT EXISTS reservations (
	id UUID PRIMARY KEY,
	resource_id TEXT NOT NULL REFERENCES resources(id),
	holder_id TEXT NOT NULL,
	date DATE NOT NULL,
	start_minute INT NOT NULL,
	end_minute INT NOT NULL,
	guest_count INT NOT NULL,
	duration_minutes INT NOT NULL,
	base_price BIGINT NOT NULL,
	extra_guests INT NOT NULL,
	surcharge BIGINT NOT NULL,
	fees BIGINT NOT NULL,
	total BIGINT NOT NULL,
	status TEXT NOT NULL,
	cancel_reason TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (start_minute >= 0 AND end_minute <= 1440 AND start_minute < end_minute),
	CONSTRAINT reservations_no_overlap EXCLUDE USING gist (
		resource_id WITH =,
		date WITH =,
		int4range(start_minute, end_minute) WITH &&
	) WHERE (status IN ('PENDING', 'CONFIRMED'))
);

CREATE INDEX IF NOT EXISTS idx_reservations_resource_date ON reservations(resource_id, date);
CREATE INDEX IF NOT EXISTS idx_reservations_status_date ON reservations(status, date);
`

// Migrate applies the schema. Statements are idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}
