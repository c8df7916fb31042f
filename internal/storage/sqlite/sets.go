package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jbrinkw/coachbyte/internal/coach"
	"github.com/jbrinkw/coachbyte/internal/models"
	"github.com/jbrinkw/coachbyte/internal/prs"
)

const plannedColumns = `ps.id, ps.log_id, e.name, ps.reps, ps.load, ps.rest, ps.order_num, ps.relative`

const completedColumns = `cs.id, cs.log_id, cs.planned_set_id, e.name, cs.reps_done, cs.load_done, cs.completed_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPlanned(row scanner) (models.PlannedSet, error) {
	var p models.PlannedSet
	err := row.Scan(&p.ID, &p.DayID, &p.Exercise, &p.Reps, &p.Load, &p.Rest, &p.OrderNum, &p.Relative)
	return p, err
}

func scanCompleted(row scanner) (models.CompletedSet, error) {
	var c models.CompletedSet
	var at *string
	if err := row.Scan(&c.ID, &c.DayID, &c.PlannedSetID, &c.Exercise, &c.RepsDone, &c.LoadDone, &at); err != nil {
		return c, err
	}
	t, err := parseTime(at)
	if err != nil {
		return c, err
	}
	c.CompletedAt = t
	return c, nil
}

func (s *Store) ActiveQueue(ctx context.Context, dayID uuid.UUID) ([]models.PlannedSet, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+plannedColumns+`
		 FROM planned_sets ps
		 JOIN exercises e ON e.id = ps.exercise_id
		 WHERE ps.log_id = ?
		   AND NOT EXISTS (SELECT 1 FROM completed_sets cs WHERE cs.planned_set_id = ps.id)
		 ORDER BY ps.order_num, ps.id`, dayID)
	if err != nil {
		return nil, classify(fmt.Errorf("querying queue: %w", err))
	}
	defer rows.Close()

	queue := []models.PlannedSet{}
	for rows.Next() {
		p, err := scanPlanned(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning planned set: %w", err)
		}
		queue = append(queue, p)
	}
	return queue, rows.Err()
}

func (s *Store) GetPlannedSet(ctx context.Context, id int64) (*models.PlannedSet, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p, err := scanPlanned(s.db.QueryRowContext(ctx,
		`SELECT `+plannedColumns+`
		 FROM planned_sets ps JOIN exercises e ON e.id = ps.exercise_id
		 WHERE ps.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("planned set %d", id)
	}
	if err != nil {
		return nil, classify(fmt.Errorf("querying planned set: %w", err))
	}
	return &p, nil
}

// AddPlannedSet inserts a planned set. Order 0 appends after the day's
// highest order, -1 prepends before its lowest.
func (s *Store) AddPlannedSet(ctx context.Context, dayID uuid.UUID, in models.PlannedSetInput) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM daily_logs WHERE id = ?`, dayID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("day %s", dayID)
		}
		if err != nil {
			return classify(fmt.Errorf("checking day: %w", err))
		}

		exID, _, err := exerciseID(ctx, tx, in.Exercise)
		if err != nil {
			return err
		}

		order := in.Order
		switch order {
		case 0:
			err = tx.QueryRowContext(ctx,
				`SELECT COALESCE(MAX(order_num), 0) + 1 FROM planned_sets WHERE log_id = ?`, dayID).Scan(&order)
		case -1:
			err = tx.QueryRowContext(ctx,
				`SELECT COALESCE(MIN(order_num), 1) - 1 FROM planned_sets WHERE log_id = ?`, dayID).Scan(&order)
		}
		if err != nil {
			return classify(fmt.Errorf("computing order: %w", err))
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO planned_sets (log_id, exercise_id, order_num, reps, load, rest, relative)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			dayID, exID, order, in.Reps, in.Load, in.RestSeconds(), in.Relative)
		if err != nil {
			return classify(fmt.Errorf("inserting planned set: %w", err))
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

func (s *Store) UpdatePlannedSet(ctx context.Context, set models.PlannedSet) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		exID, _, err := exerciseID(ctx, tx, set.Exercise)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE planned_sets
			 SET exercise_id = ?, reps = ?, load = ?, rest = ?, order_num = ?, relative = ?
			 WHERE id = ?`,
			exID, set.Reps, set.Load, set.Rest, set.OrderNum, set.Relative, set.ID)
		if err != nil {
			return classify(fmt.Errorf("updating planned set: %w", err))
		}
		return checkAffected(res, "planned set %d", set.ID)
	})
}

// DeletePlannedSet removes a queued planned set. A set that already has a
// completion is rejected with coach.ErrConflict.
func (s *Store) DeletePlannedSet(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		var completed bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM completed_sets WHERE planned_set_id = ps.id)
			 FROM planned_sets ps WHERE ps.id = ?`, id).Scan(&completed)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("planned set %d", id)
		}
		if err != nil {
			return classify(fmt.Errorf("checking planned set: %w", err))
		}
		if completed {
			return fmt.Errorf("planned set %d is completed: %w", id, coach.ErrConflict)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM planned_sets WHERE id = ?`, id); err != nil {
			return classify(fmt.Errorf("deleting planned set: %w", err))
		}
		return nil
	})
}

// CompleteSet records a completion. A linked completion locks in the next
// queued set before inserting, all within one transaction.
func (s *Store) CompleteSet(ctx context.Context, dayID uuid.UUID, in models.CompletionInput, at time.Time) (*models.CompletionResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result := &models.CompletionResult{}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		exercise := in.Exercise
		if in.PlannedSetID != nil {
			planned := *in.PlannedSetID
			var logID uuid.UUID
			var plannedExercise string
			err := tx.QueryRowContext(ctx,
				`SELECT ps.log_id, e.name FROM planned_sets ps
				 JOIN exercises e ON e.id = ps.exercise_id WHERE ps.id = ?`, planned).
				Scan(&logID, &plannedExercise)
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("planned set %d", planned)
			}
			if err != nil {
				return classify(fmt.Errorf("querying planned set: %w", err))
			}
			if logID != dayID {
				return fmt.Errorf("%w: planned set %d belongs to another day", coach.ErrValidation, planned)
			}

			existing, err := scanCompleted(tx.QueryRowContext(ctx,
				`SELECT `+completedColumns+`
				 FROM completed_sets cs JOIN exercises e ON e.id = cs.exercise_id
				 WHERE cs.planned_set_id = ?`, planned))
			if err == nil {
				result.Completed = existing
				result.Duplicate = true
				return nil
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return classify(fmt.Errorf("checking existing completion: %w", err))
			}

			next, err := scanPlanned(tx.QueryRowContext(ctx,
				`SELECT `+plannedColumns+`
				 FROM planned_sets ps
				 JOIN exercises e ON e.id = ps.exercise_id
				 WHERE ps.log_id = ? AND ps.id <> ?
				   AND NOT EXISTS (SELECT 1 FROM completed_sets cs WHERE cs.planned_set_id = ps.id)
				 ORDER BY ps.order_num, ps.id
				 LIMIT 1`, dayID, planned))
			switch {
			case err == nil:
				result.Next = &next
			case !errors.Is(err, sql.ErrNoRows):
				return classify(fmt.Errorf("querying next set: %w", err))
			}

			if exercise == "" {
				exercise = plannedExercise
			}
		} else {
			var exists int
			err := tx.QueryRowContext(ctx, `SELECT 1 FROM daily_logs WHERE id = ?`, dayID).Scan(&exists)
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("day %s", dayID)
			}
			if err != nil {
				return classify(fmt.Errorf("checking day: %w", err))
			}
		}

		exID, name, err := exerciseID(ctx, tx, exercise)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO completed_sets (log_id, planned_set_id, exercise_id, reps_done, load_done, completed_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			dayID, in.PlannedSetID, exID, in.RepsDone, in.LoadDone, formatTime(at))
		if err != nil {
			return classify(fmt.Errorf("inserting completed set: %w", err))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading completed set id: %w", err)
		}

		stamp := at.UTC()
		result.Completed = models.CompletedSet{
			ID:           id,
			DayID:        dayID,
			PlannedSetID: in.PlannedSetID,
			Exercise:     name,
			RepsDone:     in.RepsDone,
			LoadDone:     in.LoadDone,
			CompletedAt:  &stamp,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) GetCompletedSet(ctx context.Context, id int64) (*models.CompletedSet, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	c, err := scanCompleted(s.db.QueryRowContext(ctx,
		`SELECT `+completedColumns+`
		 FROM completed_sets cs JOIN exercises e ON e.id = cs.exercise_id
		 WHERE cs.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("completed set %d", id)
	}
	if err != nil {
		return nil, classify(fmt.Errorf("querying completed set: %w", err))
	}
	return &c, nil
}

func (s *Store) ListCompletedSets(ctx context.Context, dayID uuid.UUID) ([]models.CompletedSet, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+completedColumns+`
		 FROM completed_sets cs JOIN exercises e ON e.id = cs.exercise_id
		 WHERE cs.log_id = ?
		 ORDER BY cs.completed_at IS NULL, cs.completed_at DESC, cs.id DESC`, dayID)
	if err != nil {
		return nil, classify(fmt.Errorf("querying completed sets: %w", err))
	}
	defer rows.Close()

	sets := []models.CompletedSet{}
	for rows.Next() {
		c, err := scanCompleted(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning completed set: %w", err)
		}
		sets = append(sets, c)
	}
	return sets, rows.Err()
}

func (s *Store) UpdateCompletedSet(ctx context.Context, set models.CompletedSet) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var at *string
	if set.CompletedAt != nil {
		v := formatTime(*set.CompletedAt)
		at = &v
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		exID, _, err := exerciseID(ctx, tx, set.Exercise)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE completed_sets
			 SET exercise_id = ?, reps_done = ?, load_done = ?, completed_at = ?
			 WHERE id = ?`,
			exID, set.RepsDone, set.LoadDone, at, set.ID)
		if err != nil {
			return classify(fmt.Errorf("updating completed set: %w", err))
		}
		return checkAffected(res, "completed set %d", set.ID)
	})
}

func (s *Store) DeleteCompletedSet(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM completed_sets WHERE id = ?`, id)
	if err != nil {
		return classify(fmt.Errorf("deleting completed set: %w", err))
	}
	return checkAffected(res, "completed set %d", id)
}

func (s *Store) Completions(ctx context.Context) ([]prs.Completion, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT e.name, cs.reps_done, cs.load_done
		 FROM completed_sets cs JOIN exercises e ON e.id = cs.exercise_id`)
	if err != nil {
		return nil, classify(fmt.Errorf("querying completions: %w", err))
	}
	defer rows.Close()

	var out []prs.Completion
	for rows.Next() {
		var c prs.Completion
		if err := rows.Scan(&c.Exercise, &c.Reps, &c.Load); err != nil {
			return nil, fmt.Errorf("scanning completion: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// History lists planned sets with their completions, then ad-hoc
// completions, per day newest first.
func (s *Store) History(ctx context.Context, since string) ([]models.HistoryRow, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT log_date, exercise, reps, load, relative, reps_done, load_done FROM (
			SELECT d.log_date, e.name AS exercise, ps.reps, ps.load, ps.relative,
			       cs.reps_done, cs.load_done, 0 AS kind, ps.order_num AS seq, ps.id AS row_id
			FROM planned_sets ps
			JOIN daily_logs d ON d.id = ps.log_id
			JOIN exercises e ON e.id = ps.exercise_id
			LEFT JOIN completed_sets cs ON cs.planned_set_id = ps.id
			WHERE d.log_date >= ?
			UNION ALL
			SELECT d.log_date, e.name, NULL, NULL, 0,
			       cs.reps_done, cs.load_done, 1, 0, cs.id
			FROM completed_sets cs
			JOIN daily_logs d ON d.id = cs.log_id
			JOIN exercises e ON e.id = cs.exercise_id
			WHERE cs.planned_set_id IS NULL AND d.log_date >= ?
		) h
		ORDER BY log_date DESC, kind, seq, row_id`, since, since)
	if err != nil {
		return nil, classify(fmt.Errorf("querying history: %w", err))
	}
	defer rows.Close()

	out := []models.HistoryRow{}
	for rows.Next() {
		var h models.HistoryRow
		if err := rows.Scan(&h.Date, &h.Exercise, &h.Reps, &h.Load, &h.Relative, &h.RepsDone, &h.LoadDone); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
