package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jbrinkw/coachbyte/internal/coach"
	"github.com/jbrinkw/coachbyte/internal/models"
	"github.com/jbrinkw/coachbyte/internal/prs"
)

const plannedColumns = `ps.id, ps.log_id, e.name, ps.reps, ps.load, ps.rest, ps.order_num, ps.relative`

const completedColumns = `cs.id, cs.log_id, cs.planned_set_id, e.name, cs.reps_done, cs.load_done, cs.completed_at`

func scanPlanned(row pgx.Row) (models.PlannedSet, error) {
	var p models.PlannedSet
	err := row.Scan(&p.ID, &p.DayID, &p.Exercise, &p.Reps, &p.Load, &p.Rest, &p.OrderNum, &p.Relative)
	return p, err
}

func scanCompleted(row pgx.Row) (models.CompletedSet, error) {
	var c models.CompletedSet
	err := row.Scan(&c.ID, &c.DayID, &c.PlannedSetID, &c.Exercise, &c.RepsDone, &c.LoadDone, &c.CompletedAt)
	return c, err
}

// ActiveQueue returns the day's planned sets that have no completion.
func (db *DB) ActiveQueue(ctx context.Context, dayID uuid.UUID) ([]models.PlannedSet, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	rows, err := db.Pool.Query(ctx,
		`SELECT `+plannedColumns+`
		 FROM planned_sets ps
		 JOIN exercises e ON e.id = ps.exercise_id
		 LEFT JOIN completed_sets cs ON cs.planned_set_id = ps.id
		 WHERE ps.log_id = $1 AND cs.id IS NULL
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

func (db *DB) GetPlannedSet(ctx context.Context, id int64) (*models.PlannedSet, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	p, err := scanPlanned(db.Pool.QueryRow(ctx,
		`SELECT `+plannedColumns+`
		 FROM planned_sets ps JOIN exercises e ON e.id = ps.exercise_id
		 WHERE ps.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("planned set %d", id)
	}
	if err != nil {
		return nil, classify(fmt.Errorf("querying planned set: %w", err))
	}
	return &p, nil
}

// AddPlannedSet inserts a planned set. Order 0 appends after the day's
// highest order, -1 prepends before its lowest. The day row is locked while
// the order is computed.
func (db *DB) AddPlannedSet(ctx context.Context, dayID uuid.UUID, in models.PlannedSetInput) (int64, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	var id int64
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM daily_logs WHERE id = $1 FOR UPDATE`, dayID).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("day %s", dayID)
		}
		if err != nil {
			return classify(fmt.Errorf("locking day: %w", err))
		}

		exID, _, err := exerciseID(ctx, tx, in.Exercise)
		if err != nil {
			return err
		}

		order := in.Order
		switch order {
		case 0:
			err = tx.QueryRow(ctx,
				`SELECT COALESCE(MAX(order_num), 0) + 1 FROM planned_sets WHERE log_id = $1`, dayID).Scan(&order)
		case -1:
			err = tx.QueryRow(ctx,
				`SELECT COALESCE(MIN(order_num), 1) - 1 FROM planned_sets WHERE log_id = $1`, dayID).Scan(&order)
		}
		if err != nil {
			return classify(fmt.Errorf("computing order: %w", err))
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO planned_sets (log_id, exercise_id, order_num, reps, load, rest, relative)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			dayID, exID, order, in.Reps, in.Load, in.RestSeconds(), in.Relative).Scan(&id)
		if err != nil {
			return classify(fmt.Errorf("inserting planned set: %w", err))
		}
		return nil
	})
	return id, err
}

func (db *DB) UpdatePlannedSet(ctx context.Context, set models.PlannedSet) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	return db.inTx(ctx, func(tx pgx.Tx) error {
		exID, _, err := exerciseID(ctx, tx, set.Exercise)
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`UPDATE planned_sets
			 SET exercise_id = $1, reps = $2, load = $3, rest = $4, order_num = $5, relative = $6
			 WHERE id = $7`,
			exID, set.Reps, set.Load, set.Rest, set.OrderNum, set.Relative, set.ID)
		if err != nil {
			return classify(fmt.Errorf("updating planned set: %w", err))
		}
		return checkAffected(tag, "planned set %d", set.ID)
	})
}

// DeletePlannedSet removes a queued planned set. A set that already has a
// completion is rejected with coach.ErrConflict; the lock on the planned row
// orders this against a concurrent CompleteSet.
func (db *DB) DeletePlannedSet(ctx context.Context, id int64) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	return db.inTx(ctx, func(tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM planned_sets WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("planned set %d", id)
		}
		if err != nil {
			return classify(fmt.Errorf("locking planned set: %w", err))
		}

		var completed bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM completed_sets WHERE planned_set_id = $1)`, id).Scan(&completed); err != nil {
			return classify(fmt.Errorf("checking completion: %w", err))
		}
		if completed {
			return fmt.Errorf("planned set %d is completed: %w", id, coach.ErrConflict)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM planned_sets WHERE id = $1`, id); err != nil {
			return classify(fmt.Errorf("deleting planned set: %w", err))
		}
		return nil
	})
}

// CompleteSet records a completion. A linked completion locks its planned
// set, resolves the next queued set, and claims the planned set through the
// unique planned_set_id index; losing the claim returns the winner's record.
func (db *DB) CompleteSet(ctx context.Context, dayID uuid.UUID, in models.CompletionInput, at time.Time) (*models.CompletionResult, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	result := &models.CompletionResult{}
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		exercise := in.Exercise
		if in.PlannedSetID != nil {
			planned := *in.PlannedSetID
			var logID uuid.UUID
			var plannedExercise string
			err := tx.QueryRow(ctx,
				`SELECT ps.log_id, e.name FROM planned_sets ps
				 JOIN exercises e ON e.id = ps.exercise_id
				 WHERE ps.id = $1
				 FOR UPDATE OF ps`, planned).Scan(&logID, &plannedExercise)
			if errors.Is(err, pgx.ErrNoRows) {
				return notFound("planned set %d", planned)
			}
			if err != nil {
				return classify(fmt.Errorf("locking planned set: %w", err))
			}
			if logID != dayID {
				return fmt.Errorf("%w: planned set %d belongs to another day", coach.ErrValidation, planned)
			}

			existing, err := db.completionOf(ctx, tx, planned)
			if err != nil {
				return err
			}
			if existing != nil {
				result.Completed = *existing
				result.Duplicate = true
				return nil
			}

			next, err := scanPlanned(tx.QueryRow(ctx,
				`SELECT `+plannedColumns+`
				 FROM planned_sets ps
				 JOIN exercises e ON e.id = ps.exercise_id
				 LEFT JOIN completed_sets cs ON cs.planned_set_id = ps.id
				 WHERE ps.log_id = $1 AND ps.id <> $2 AND cs.id IS NULL
				 ORDER BY ps.order_num, ps.id
				 LIMIT 1`, dayID, planned))
			switch {
			case err == nil:
				result.Next = &next
			case !errors.Is(err, pgx.ErrNoRows):
				return classify(fmt.Errorf("querying next set: %w", err))
			}

			if exercise == "" {
				exercise = plannedExercise
			}
		} else {
			var exists uuid.UUID
			err := tx.QueryRow(ctx, `SELECT id FROM daily_logs WHERE id = $1`, dayID).Scan(&exists)
			if errors.Is(err, pgx.ErrNoRows) {
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

		c := models.CompletedSet{
			DayID:        dayID,
			PlannedSetID: in.PlannedSetID,
			Exercise:     name,
			RepsDone:     in.RepsDone,
			LoadDone:     in.LoadDone,
		}
		err = tx.QueryRow(ctx,
			`INSERT INTO completed_sets (log_id, planned_set_id, exercise_id, reps_done, load_done, completed_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (planned_set_id) WHERE planned_set_id IS NOT NULL DO NOTHING
			 RETURNING id, completed_at`,
			dayID, in.PlannedSetID, exID, in.RepsDone, in.LoadDone, at).Scan(&c.ID, &c.CompletedAt)
		if errors.Is(err, pgx.ErrNoRows) && in.PlannedSetID != nil {
			existing, err := db.completionOf(ctx, tx, *in.PlannedSetID)
			if err != nil {
				return err
			}
			if existing == nil {
				return fmt.Errorf("planned set %d claim lost without a winner: %w", *in.PlannedSetID, coach.ErrConflict)
			}
			result.Completed = *existing
			result.Next = nil
			result.Duplicate = true
			return nil
		}
		if err != nil {
			return classify(fmt.Errorf("inserting completed set: %w", err))
		}
		result.Completed = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (db *DB) completionOf(ctx context.Context, q querier, plannedID int64) (*models.CompletedSet, error) {
	c, err := scanCompleted(q.QueryRow(ctx,
		`SELECT `+completedColumns+`
		 FROM completed_sets cs JOIN exercises e ON e.id = cs.exercise_id
		 WHERE cs.planned_set_id = $1`, plannedID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("querying completion of planned set %d: %w", plannedID, err))
	}
	return &c, nil
}

func (db *DB) GetCompletedSet(ctx context.Context, id int64) (*models.CompletedSet, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	c, err := scanCompleted(db.Pool.QueryRow(ctx,
		`SELECT `+completedColumns+`
		 FROM completed_sets cs JOIN exercises e ON e.id = cs.exercise_id
		 WHERE cs.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("completed set %d", id)
	}
	if err != nil {
		return nil, classify(fmt.Errorf("querying completed set: %w", err))
	}
	return &c, nil
}

func (db *DB) ListCompletedSets(ctx context.Context, dayID uuid.UUID) ([]models.CompletedSet, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	rows, err := db.Pool.Query(ctx,
		`SELECT `+completedColumns+`
		 FROM completed_sets cs JOIN exercises e ON e.id = cs.exercise_id
		 WHERE cs.log_id = $1
		 ORDER BY cs.completed_at DESC NULLS LAST, cs.id DESC`, dayID)
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

func (db *DB) UpdateCompletedSet(ctx context.Context, set models.CompletedSet) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	return db.inTx(ctx, func(tx pgx.Tx) error {
		exID, _, err := exerciseID(ctx, tx, set.Exercise)
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`UPDATE completed_sets
			 SET exercise_id = $1, reps_done = $2, load_done = $3, completed_at = $4
			 WHERE id = $5`,
			exID, set.RepsDone, set.LoadDone, set.CompletedAt, set.ID)
		if err != nil {
			return classify(fmt.Errorf("updating completed set: %w", err))
		}
		return checkAffected(tag, "completed set %d", set.ID)
	})
}

func (db *DB) DeleteCompletedSet(ctx context.Context, id int64) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `DELETE FROM completed_sets WHERE id = $1`, id)
	if err != nil {
		return classify(fmt.Errorf("deleting completed set: %w", err))
	}
	return checkAffected(tag, "completed set %d", id)
}

func (db *DB) Completions(ctx context.Context) ([]prs.Completion, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	rows, err := db.Pool.Query(ctx,
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
func (db *DB) History(ctx context.Context, since string) ([]models.HistoryRow, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	rows, err := db.Pool.Query(ctx,
		`SELECT to_char(log_date, 'YYYY-MM-DD'), exercise, reps, load, relative, reps_done, load_done FROM (
			SELECT d.log_date, e.name AS exercise, ps.reps, ps.load, ps.relative,
			       cs.reps_done, cs.load_done, 0 AS kind, ps.order_num AS seq, ps.id AS row_id
			FROM planned_sets ps
			JOIN daily_logs d ON d.id = ps.log_id
			JOIN exercises e ON e.id = ps.exercise_id
			LEFT JOIN completed_sets cs ON cs.planned_set_id = ps.id
			WHERE d.log_date >= $1::date
			UNION ALL
			SELECT d.log_date, e.name, NULL, NULL, FALSE,
			       cs.reps_done, cs.load_done, 1, 0, cs.id
			FROM completed_sets cs
			JOIN daily_logs d ON d.id = cs.log_id
			JOIN exercises e ON e.id = cs.exercise_id
			WHERE cs.planned_set_id IS NULL AND d.log_date >= $1::date
		) h
		ORDER BY log_date DESC, kind, seq, row_id`, since)
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
