package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jbrinkw/coachbyte/internal/models"
)

// EnsureDay inserts the day unless its date exists, then selects it.
func (s *Store) EnsureDay(ctx context.Context, date string) (uuid.UUID, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_logs (id, log_date) VALUES (?, ?) ON CONFLICT (log_date) DO NOTHING`,
		uuid.New(), date)
	if err != nil {
		return uuid.Nil, false, classify(fmt.Errorf("inserting day: %w", err))
	}
	n, _ := res.RowsAffected()

	var id uuid.UUID
	if err := s.db.QueryRowContext(ctx,
		`SELECT id FROM daily_logs WHERE log_date = ?`, date).Scan(&id); err != nil {
		return uuid.Nil, false, classify(fmt.Errorf("selecting day: %w", err))
	}
	return id, n > 0, nil
}

func (s *Store) GetDay(ctx context.Context, id uuid.UUID) (*models.Day, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var d models.Day
	err := s.db.QueryRowContext(ctx,
		`SELECT id, log_date, summary FROM daily_logs WHERE id = ?`, id).
		Scan(&d.ID, &d.Date, &d.Summary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("day %s", id)
	}
	if err != nil {
		return nil, classify(fmt.Errorf("querying day: %w", err))
	}
	return &d, nil
}

func (s *Store) ListDays(ctx context.Context) ([]models.DaySummary, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.log_date, d.summary, COUNT(cs.id)
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

func (s *Store) DeleteDay(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM daily_logs WHERE id = ?`, id)
	if err != nil {
		return classify(fmt.Errorf("deleting day: %w", err))
	}
	return checkAffected(res, "day %s", id)
}

func (s *Store) UpdateSummary(ctx context.Context, id uuid.UUID, summary string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `UPDATE daily_logs SET summary = ? WHERE id = ?`, summary, id)
	if err != nil {
		return classify(fmt.Errorf("updating summary: %w", err))
	}
	return checkAffected(res, "day %s", id)
}

// ApplySplitIfEmpty clones the weekday template into the day. The emptiness
// check and the insert share one transaction on the single connection.
func (s *Store) ApplySplitIfEmpty(ctx context.Context, dayID uuid.UUID, weekday int) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var cloned int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var applied bool
		var count int
		err := tx.QueryRowContext(ctx,
			`SELECT d.split_applied, (SELECT COUNT(*) FROM planned_sets ps WHERE ps.log_id = d.id)
			 FROM daily_logs d WHERE d.id = ?`, dayID).Scan(&applied, &count)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("day %s", dayID)
		}
		if err != nil {
			return classify(fmt.Errorf("checking day plan: %w", err))
		}
		if applied || count > 0 {
			return nil
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO planned_sets (log_id, exercise_id, order_num, reps, load, rest, relative)
			 SELECT ?, exercise_id, order_num, reps, load, rest, relative
			 FROM split_sets WHERE day_of_week = ?
			 ORDER BY order_num, id`, dayID, weekday)
		if err != nil {
			return classify(fmt.Errorf("cloning split: %w", err))
		}
		if cloned, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("reading rows affected: %w", err)
		}
		if cloned == 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE daily_logs SET split_applied = 1 WHERE id = ?`, dayID); err != nil {
			return classify(fmt.Errorf("marking split applied: %w", err))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(cloned), nil
}
