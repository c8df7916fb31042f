package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jbrinkw/coachbyte/internal/models"
	"github.com/jbrinkw/coachbyte/internal/prs"
)

func (db *DB) TrackedExercises(ctx context.Context) ([]string, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	rows, err := db.Pool.Query(ctx,
		`SELECT e.name FROM tracked_exercises t
		 JOIN exercises e ON e.id = t.exercise_id
		 ORDER BY e.name_key`)
	if err != nil {
		return nil, classify(fmt.Errorf("querying tracked exercises: %w", err))
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning tracked exercise: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (db *DB) AddTrackedExercise(ctx context.Context, name string) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	return db.inTx(ctx, func(tx pgx.Tx) error {
		exID, _, err := exerciseID(ctx, tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO tracked_exercises (exercise_id) VALUES ($1) ON CONFLICT DO NOTHING`, exID); err != nil {
			return classify(fmt.Errorf("tracking exercise: %w", err))
		}
		return nil
	})
}

func (db *DB) RemoveTrackedExercise(ctx context.Context, name string) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM tracked_exercises
		 WHERE exercise_id = (SELECT id FROM exercises WHERE name_key = $1)`, prs.Key(name))
	if err != nil {
		return classify(fmt.Errorf("untracking exercise: %w", err))
	}
	return checkAffected(tag, "tracked exercise %q", name)
}

func (db *DB) PRTargets(ctx context.Context) ([]models.PRTarget, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	rows, err := db.Pool.Query(ctx,
		`SELECT e.name, t.reps, t.max_load FROM tracked_prs t
		 JOIN exercises e ON e.id = t.exercise_id
		 ORDER BY e.name_key, t.reps`)
	if err != nil {
		return nil, classify(fmt.Errorf("querying pr targets: %w", err))
	}
	defer rows.Close()

	targets := []models.PRTarget{}
	for rows.Next() {
		var t models.PRTarget
		if err := rows.Scan(&t.Exercise, &t.Reps, &t.MaxLoad); err != nil {
			return nil, fmt.Errorf("scanning pr target: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

func (db *DB) UpsertPRTarget(ctx context.Context, target models.PRTarget) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	return db.inTx(ctx, func(tx pgx.Tx) error {
		exID, _, err := exerciseID(ctx, tx, target.Exercise)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO tracked_prs (exercise_id, reps, max_load) VALUES ($1, $2, $3)
			 ON CONFLICT (exercise_id, reps) DO UPDATE SET max_load = EXCLUDED.max_load`,
			exID, target.Reps, target.MaxLoad); err != nil {
			return classify(fmt.Errorf("saving pr target: %w", err))
		}
		return nil
	})
}

func (db *DB) DeletePRTarget(ctx context.Context, exercise string, reps int) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM tracked_prs
		 WHERE exercise_id = (SELECT id FROM exercises WHERE name_key = $1) AND reps = $2`,
		prs.Key(exercise), reps)
	if err != nil {
		return classify(fmt.Errorf("deleting pr target: %w", err))
	}
	return checkAffected(tag, "pr target %s x%d", exercise, reps)
}

func (db *DB) SetTimer(ctx context.Context, endsAt time.Time) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	_, err := db.Pool.Exec(ctx,
		`INSERT INTO timer (id, timer_end_time) VALUES (1, $1)
		 ON CONFLICT (id) DO UPDATE SET timer_end_time = EXCLUDED.timer_end_time`, endsAt)
	if err != nil {
		return classify(fmt.Errorf("setting timer: %w", err))
	}
	return nil
}

// Timer returns the shared timer's end instant, or nil when none was set.
func (db *DB) Timer(ctx context.Context) (*time.Time, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	var end time.Time
	err := db.Pool.QueryRow(ctx, `SELECT timer_end_time FROM timer WHERE id = 1`).Scan(&end)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("querying timer: %w", err))
	}
	end = end.UTC()
	return &end, nil
}
