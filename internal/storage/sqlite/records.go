package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jbrinkw/coachbyte/internal/models"
	"github.com/jbrinkw/coachbyte/internal/prs"
)

func (s *Store) TrackedExercises(ctx context.Context) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
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

func (s *Store) AddTrackedExercise(ctx context.Context, name string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		exID, _, err := exerciseID(ctx, tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tracked_exercises (exercise_id) VALUES (?) ON CONFLICT DO NOTHING`, exID); err != nil {
			return classify(fmt.Errorf("tracking exercise: %w", err))
		}
		return nil
	})
}

func (s *Store) RemoveTrackedExercise(ctx context.Context, name string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tracked_exercises
		 WHERE exercise_id = (SELECT id FROM exercises WHERE name_key = ?)`, prs.Key(name))
	if err != nil {
		return classify(fmt.Errorf("untracking exercise: %w", err))
	}
	return checkAffected(res, "tracked exercise %q", name)
}

func (s *Store) PRTargets(ctx context.Context) ([]models.PRTarget, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
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

func (s *Store) UpsertPRTarget(ctx context.Context, target models.PRTarget) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		exID, _, err := exerciseID(ctx, tx, target.Exercise)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tracked_prs (exercise_id, reps, max_load) VALUES (?, ?, ?)
			 ON CONFLICT (exercise_id, reps) DO UPDATE SET max_load = excluded.max_load`,
			exID, target.Reps, target.MaxLoad); err != nil {
			return classify(fmt.Errorf("saving pr target: %w", err))
		}
		return nil
	})
}

func (s *Store) DeletePRTarget(ctx context.Context, exercise string, reps int) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tracked_prs
		 WHERE exercise_id = (SELECT id FROM exercises WHERE name_key = ?) AND reps = ?`, prs.Key(exercise), reps)
	if err != nil {
		return classify(fmt.Errorf("deleting pr target: %w", err))
	}
	return checkAffected(res, "pr target %s x%d", exercise, reps)
}

func (s *Store) SetTimer(ctx context.Context, endsAt time.Time) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO timer (id, timer_end_time) VALUES (1, ?)
		 ON CONFLICT (id) DO UPDATE SET timer_end_time = excluded.timer_end_time`,
		formatTime(endsAt))
	if err != nil {
		return classify(fmt.Errorf("setting timer: %w", err))
	}
	return nil
}

func (s *Store) Timer(ctx context.Context) (*time.Time, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var end string
	err := s.db.QueryRowContext(ctx, `SELECT timer_end_time FROM timer WHERE id = 1`).Scan(&end)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("querying timer: %w", err))
	}
	return parseTime(&end)
}
