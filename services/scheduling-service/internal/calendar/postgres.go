package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/md-rashed-zaman/schedassist/libs/db"
	"github.com/md-rashed-zaman/schedassist/services/scheduling-service/internal/availability"
)

// PostgresCalendar implements Calendar against an appointments table for
// self-hosted deployments. Overlap protection lives in the database as an
// exclusion constraint on tstzrange(start_time, end_time), so two concurrent
// bookers racing for the same slot are serialized there; the losing insert
// fails with SQLSTATE 23P01 and surfaces as ErrConflict.
type PostgresCalendar struct {
	pool *db.Pool
	loc  *time.Location
}

func NewPostgresCalendar(pool *db.Pool, loc *time.Location) *PostgresCalendar {
	if loc == nil {
		loc = time.UTC
	}
	return &PostgresCalendar{pool: pool, loc: loc}
}

func (c *PostgresCalendar) FetchBusy(ctx context.Context, day time.Time) ([]availability.Interval, error) {
	d := day.In(c.loc)
	dayStart := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, c.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := c.pool.Query(ctx, `
		SELECT start_time, end_time
		FROM appointments
		WHERE status = 'booked'
			AND start_time < $2
			AND end_time > $1
		ORDER BY start_time ASC
	`, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("query busy intervals: %w", err)
	}
	defer rows.Close()

	var busy []availability.Interval
	for rows.Next() {
		var start, end time.Time
		if err := rows.Scan(&start, &end); err != nil {
			return nil, err
		}
		busy = append(busy, availability.Interval{Start: start.In(c.loc), End: end.In(c.loc)})
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return busy, nil
}

func (c *PostgresCalendar) CreateEvent(ctx context.Context, iv availability.Interval, meta EventMetadata) (string, error) {
	id := uuid.NewString()
	_, err := c.pool.Exec(ctx, `
		INSERT INTO appointments
			(id, summary, description, client_name, client_email, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'booked')
	`, id, meta.Summary, meta.Description, meta.ClientName, meta.ClientEmail, iv.Start, iv.End)
	if err != nil {
		if isExclusionViolation(err) {
			return "", ErrConflict
		}
		return "", fmt.Errorf("insert appointment: %w", err)
	}
	return id, nil
}

func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}
