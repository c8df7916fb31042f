package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jbrinkw/coachbyte/internal/models"
)

const splitColumns = `ss.id, ss.day_of_week, e.name, ss.reps, ss.load, ss.rest, ss.order_num, ss.relative`

func scanSplit(row pgx.Row) (models.SplitSet, error) {
	var s models.SplitSet
	err := row.Scan(&s.ID, &s.Weekday, &s.Exercise, &s.Reps, &s.Load, &s.Rest, &s.OrderNum, &s.Relative)
	return s, err
}

func (db *DB) SplitSets(ctx context.Context, weekday *int) ([]models.SplitSet, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + splitColumns + `
		FROM split_sets ss JOIN exercises e ON e.id = ss.exercise_id`
	var args []any
	if weekday != nil {
		query += ` WHERE ss.day_of_week = $1`
		args = append(args, *weekday)
	}
	query += ` ORDER BY ss.day_of_week, ss.order_num, ss.id`

	rows, err := db.Pool.Query(ctx, query, args...)
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

func (db *DB) GetSplitSet(ctx context.Context, id int64) (*models.SplitSet, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	set, err := scanSplit(db.Pool.QueryRow(ctx,
		`SELECT `+splitColumns+`
		 FROM split_sets ss JOIN exercises e ON e.id = ss.exercise_id
		 WHERE ss.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("split set %d", id)
	}
	if err != nil {
		return nil, classify(fmt.Errorf("querying split set: %w", err))
	}
	return &set, nil
}

func insertSplit(ctx context.Context, tx pgx.Tx, in models.SplitSetInput) (int64, error) {
	exID, _, err := exerciseID(ctx, tx, in.Exercise)
	if err != nil {
		return 0, err
	}
	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO split_sets (day_of_week, exercise_id, order_num, reps, load, rest, relative)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		in.Weekday, exID, in.Order, in.Reps, in.Load, in.RestSeconds(), in.Relative).Scan(&id)
	if err != nil {
		return 0, classify(fmt.Errorf("inserting split set: %w", err))
	}
	return id, nil
}

func (db *DB) AddSplitSet(ctx context.Context, in models.SplitSetInput) (int64, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	var id int64
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		id, err = insertSplit(ctx, tx, in)
		return err
	})
	return id, err
}

func (db *DB) UpdateSplitSet(ctx context.Context, set models.SplitSet) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	return db.inTx(ctx, func(tx pgx.Tx) error {
		exID, _, err := exerciseID(ctx, tx, set.Exercise)
		if err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`UPDATE split_sets
			 SET day_of_week = $1, exercise_id = $2, reps = $3, load = $4, rest = $5, order_num = $6, relative = $7
			 WHERE id = $8`,
			set.Weekday, exID, set.Reps, set.Load, set.Rest, set.OrderNum, set.Relative, set.ID)
		if err != nil {
			return classify(fmt.Errorf("updating split set: %w", err))
		}
		return checkAffected(tag, "split set %d", set.ID)
	})
}

func (db *DB) DeleteSplitSet(ctx context.Context, id int64) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `DELETE FROM split_sets WHERE id = $1`, id)
	if err != nil {
		return classify(fmt.Errorf("deleting split set: %w", err))
	}
	return checkAffected(tag, "split set %d", id)
}

// ReplaceSplitDay swaps a weekday's template for items in one transaction.
func (db *DB) ReplaceSplitDay(ctx context.Context, weekday int, items []models.SplitSetInput) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	return db.inTx(ctx, func(tx pgx.Tx) error {
		return replaceDay(ctx, tx, weekday, items)
	})
}

// ReplaceSplit swaps several weekdays and optionally the notes at once.
func (db *DB) ReplaceSplit(ctx context.Context, days map[int][]models.SplitSetInput, notes *string, at time.Time) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	return db.inTx(ctx, func(tx pgx.Tx) error {
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

func replaceDay(ctx context.Context, tx pgx.Tx, weekday int, items []models.SplitSetInput) error {
	if _, err := tx.Exec(ctx, `DELETE FROM split_sets WHERE day_of_week = $1`, weekday); err != nil {
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

func (db *DB) SplitNotes(ctx context.Context) (*models.SplitNotes, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	var notes models.SplitNotes
	var at time.Time
	err := db.Pool.QueryRow(ctx,
		`SELECT notes, updated_at FROM split_notes WHERE id = 1`).Scan(&notes.Notes, &at)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.SplitNotes{}, nil
	}
	if err != nil {
		return nil, classify(fmt.Errorf("querying split notes: %w", err))
	}
	at = at.UTC()
	notes.UpdatedAt = &at
	return &notes, nil
}

func (db *DB) SetSplitNotes(ctx context.Context, notes string, at time.Time) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	return saveNotes(ctx, db.Pool, notes, at)
}

func saveNotes(ctx context.Context, q querier, notes string, at time.Time) error {
	_, err := q.Exec(ctx,
		`INSERT INTO split_notes (id, notes, updated_at) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at`,
		notes, at)
	if err != nil {
		return classify(fmt.Errorf("saving split notes: %w", err))
	}
	return nil
}
