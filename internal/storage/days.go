package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jbrinkw/coachbyte/internal/models"
)

// EnsureDay inserts the day unless its date exists, then selects it.
func (db *DB) EnsureDay(ctx context.Context, date string) (uuid.UUID, bool, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO daily_logs (id, log_date) VALUES ($1, $2::date) ON CONFLICT (log_date) DO NOTHING`,
		uuid.New(), date)
	if err != nil {
		return uuid.Nil, false, classify(fmt.Errorf("inserting day: %w", err))
	}

	var id uuid.UUID
	if err := db.Pool.QueryRow(ctx,
		`SELECT id FROM daily_logs WHERE log_date = $1::date`, date).Scan(&id); err != nil {
		return uuid.Nil, false, classify(fmt.Errorf("selecting day: %w", err))
	}
	return id, tag.RowsAffected() > 0, nil
}

func (db *DB) GetDay(ctx context.Context, id uuid.UUID) (*models.Day, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	var d models.Day
	err := db.Pool.QueryRow(ctx,
		`SELECT id, to_char(log_date, 'YYYY-MM-DD'), summary FROM daily_logs WHERE id = $1`, id).
		Scan(&d.ID, &d.Date, &d.Summary)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("day %s", id)
	}
	if err != nil {
		return nil, classify(fmt.Errorf("querying day: %w", err))
	}
	return &d, nil
}

func (db *DB) ListDays(ctx context.Context) ([]models.DaySummary, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	rows, err := db.Pool.Query(ctx,
		`SELECT d.id, to_char(d.log_date, 'YYYY-MM-DD'), d.summary, COUNT(cs.id)
		 FROM daily_logs d
		 LEFT JOIN completed_sets cs ON cs.log_id = d.id
		 GROUP BY d.id, d.log_date, d.summary
		 ORDER BY d.log_date DESC`)
	if err != nil {
		return nil, classify(fmt.Errorf("querying days: %w", err))
	}
	defer rows.Close()

	days := []models.DaySummary{}
	for rows.Next() {
		var d models.DaySummary
		if err := rows.Scan(&d.ID, &d.Date, &d.Summary, &d.CompletedCount); err != nil {
			return nil, fmt.Errorf("scanning day: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (db *DB) DeleteDay(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `DELETE FROM daily_logs WHERE id = $1`, id)
	if err != nil {
		return classify(fmt.Errorf("deleting day: %w", err))
	}
	return checkAffected(tag, "day %s", id)
}

func (db *DB) UpdateSummary(ctx context.Context, id uuid.UUID, summary string) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `UPDATE daily_logs SET summary = $1 WHERE id = $2`, summary, id)
	if err != nil {
		return classify(fmt.Errorf("updating summary: %w", err))
	}
	return checkAffected(tag, "day %s", id)
}

// ApplySplitIfEmpty clones the weekday template into the day. The day row
// is locked so concurrent first reads serialize on the emptiness check.
func (db *DB) ApplySplitIfEmpty(ctx context.Context, dayID uuid.UUID, weekday int) (int, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	var cloned int64
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var applied bool
		err := tx.QueryRow(ctx,
			`SELECT split_applied FROM daily_logs WHERE id = $1 FOR UPDATE`, dayID).Scan(&applied)
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("day %s", dayID)
		}
		if err != nil {
			return classify(fmt.Errorf("locking day: %w", err))
		}
		if applied {
			return nil
		}

		var count int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM planned_sets WHERE log_id = $1`, dayID).Scan(&count); err != nil {
			return classify(fmt.Errorf("counting planned sets: %w", err))
		}
		if count > 0 {
			return nil
		}

		tag, err := tx.Exec(ctx,
			`INSERT INTO planned_sets (log_id, exercise_id, order_num, reps, load, rest, relative)
			 SELECT $1, exercise_id, order_num, reps, load, rest, relative
			 FROM split_sets WHERE day_of_week = $2
			 ORDER BY order_num, id`, dayID, weekday)
		if err != nil {
			return classify(fmt.Errorf("cloning split: %w", err))
		}
		cloned = tag.RowsAffected()
		if cloned == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx,
			`UPDATE daily_logs SET split_applied = TRUE WHERE id = $1`, dayID); err != nil {
			return classify(fmt.Errorf("marking split applied: %w", err))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(cloned), nil
}
