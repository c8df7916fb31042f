package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jbrinkw/coachbyte/internal/models"
)

const splitColumns = `ss.id, ss.day_of_week, e.name, ss.reps, ss.load, ss.rest, ss.order_num, ss.relative`

func scanSplit(row scanner) (models.SplitSet, error) {
	var s models.SplitSet
	err := row.Scan(&s.ID, &s.Weekday, &s.Exercise, &s.Reps, &s.Load, &s.Rest, &s.OrderNum, &s.Relative)
	return s, err
}

func (s *Store) SplitSets(ctx context.Context, weekday *int) ([]models.SplitSet, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + splitColumns + `
		FROM split_sets ss JOIN exercises e ON e.id = ss.exercise_id`
	var args []any
	if weekday != nil {
		query += ` WHERE ss.day_of_week = ?`
		args = append(args, *weekday)
	}
	query += ` ORDER BY ss.day_of_week, ss.order_num, ss.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("querying split: %w", err))
	}
	defer rows.Close()

	sets := []models.SplitSet{}
	for rows.Next() {
		set, err := scanSplit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning split set: %w", err)
		}
		sets = append(sets, set)
	}
	return sets, rows.Err()
}

func (s *Store) GetSplitSet(ctx context.Context, id int64) (*models.SplitSet, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	set, err := scanSplit(s.db.QueryRowContext(ctx,
		`SELECT `+splitColumns+`
		 FROM split_sets ss JOIN exercises e ON e.id = ss.exercise_id
		 WHERE ss.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("split set %d", id)
	}
	if err != nil {
		return nil, classify(fmt.Errorf("querying split set: %w", err))
	}
	return &set, nil
}

func insertSplit(ctx context.Context, tx *sql.Tx, in models.SplitSetInput) (int64, error) {
	exID, _, err := exerciseID(ctx, tx, in.Exercise)
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO split_sets (day_of_week, exercise_id, order_num, reps, load, rest, relative)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.Weekday, exID, in.Order, in.Reps, in.Load, in.RestSeconds(), in.Relative)
	if err != nil {
		return 0, classify(fmt.Errorf("inserting split set: %w", err))
	}
	return res.LastInsertId()
}

func (s *Store) AddSplitSet(ctx context.Context, in models.SplitSetInput) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = insertSplit(ctx, tx, in)
		return err
	})
	return id, err
}

func (s *Store) UpdateSplitSet(ctx context.Context, set models.SplitSet) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		exID, _, err := exerciseID(ctx, tx, set.Exercise)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE split_sets
			 SET day_of_week = ?, exercise_id = ?, reps = ?, load = ?, rest = ?, order_num = ?, relative = ?
			 WHERE id = ?`,
			set.Weekday, exID, set.Reps, set.Load, set.Rest, set.OrderNum, set.Relative, set.ID)
		if err != nil {
			return classify(fmt.Errorf("updating split set: %w", err))
		}
		return checkAffected(res, "split set %d", set.ID)
	})
}

func (s *Store) DeleteSplitSet(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `DELETE FROM split_sets WHERE id = ?`, id)
	if err != nil {
		return classify(fmt.Errorf("deleting split set: %w", err))
	}
	return checkAffected(res, "split set %d", id)
}

func (s *Store) ReplaceSplitDay(ctx context.Context, weekday int, items []models.SplitSetInput) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		return replaceDay(ctx, tx, weekday, items)
	})
}

func (s *Store) ReplaceSplit(ctx context.Context, days map[int][]models.SplitSetInput, notes *string, at time.Time) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for weekday, items := range days {
			if err := replaceDay(ctx, tx, weekday, items); err != nil {
				return err
			}
		}
		if notes != nil {
			return saveNotes(ctx, tx, *notes, at)
		}
		return nil
	})
}

func replaceDay(ctx context.Context, tx *sql.Tx, weekday int, items []models.SplitSetInput) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM split_sets WHERE day_of_week = ?`, weekday); err != nil {
		return classify(fmt.Errorf("clearing split day: %w", err))
	}
	for _, in := range items {
		in.Weekday = weekday
		if _, err := insertSplit(ctx, tx, in); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) SplitNotes(ctx context.Context) (*models.SplitNotes, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var notes models.SplitNotes
	var at string
	err := s.db.QueryRowContext(ctx,
		`SELECT notes, updated_at FROM split_notes WHERE id = 1`).Scan(&notes.Notes, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.SplitNotes{}, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("querying split notes: %w", err))
	}
	if notes.UpdatedAt, err = parseTime(&at); err != nil {
		return nil, err
	}
	return &notes, nil
}

func (s *Store) SetSplitNotes(ctx context.Context, notes string, at time.Time) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return saveNotes(ctx, s.db, notes, at)
}

func saveNotes(ctx context.Context, q querier, notes string, at time.Time) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO split_notes (id, notes, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET notes = excluded.notes, updated_at = excluded.updated_at`,
		notes, formatTime(at))
	if err != nil {
		return classify(fmt.Errorf("saving split notes: %w", err))
	}
	return nil
}
