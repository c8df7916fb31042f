package coach

import (
	"context"
	"fmt"
	"strings"

	"github.com/jbrinkw/coachbyte/internal/calendar"
	"github.com/jbrinkw/coachbyte/internal/models"
)

// SplitTemplate returns the weekly template, or one weekday of it.
func (s *Service) SplitTemplate(ctx context.Context, weekday *int) ([]models.SplitSet, error) {
	if weekday != nil {
		if err := checkWeekday(*weekday); err != nil {
			return nil, err
		}
	}
	sets, err := s.store.SplitSets(ctx, weekday)
	if err != nil {
		return nil, fmt.Errorf("loading split: %w", err)
	}
	return sets, nil
}

// AddSplitSet adds a template row and returns its id.
func (s *Service) AddSplitSet(ctx context.Context, in models.SplitSetInput) (int64, error) {
	in, err := checkSplitInput(in)
	if err != nil {
		return 0, err
	}
	id, err := s.store.AddSplitSet(ctx, in)
	if err != nil {
		return 0, fmt.Errorf("adding split set: %w", err)
	}
	return id, nil
}

// UpdateSplitSet applies patch to a template row.
func (s *Service) UpdateSplitSet(ctx context.Context, id int64, patch models.SplitSetPatch) (*models.SplitSet, error) {
	set, err := s.store.GetSplitSet(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting split set %d: %w", id, err)
	}
	if patch.Weekday != nil {
		set.Weekday = *patch.Weekday
	}
	if patch.Exercise != nil {
		name, err := cleanExercise(*patch.Exercise)
		if err != nil {
			return nil, err
		}
		set.Exercise = name
	}
	if patch.Reps != nil {
		set.Reps = *patch.Reps
	}
	if patch.Load != nil {
		set.Load = *patch.Load
	}
	if patch.Rest != nil {
		set.Rest = *patch.Rest
	}
	if patch.OrderNum != nil {
		set.OrderNum = *patch.OrderNum
	}
	if patch.Relative != nil {
		set.Relative = *patch.Relative
	}
	if err := checkWeekday(set.Weekday); err != nil {
		return nil, err
	}
	if err := checkPlannedSet(models.PlannedSet{Reps: set.Reps, Load: set.Load, Rest: set.Rest, Relative: set.Relative}); err != nil {
		return nil, err
	}
	if err := s.store.UpdateSplitSet(ctx, *set); err != nil {
		return nil, fmt.Errorf("updating split set %d: %w", id, err)
	}
	return set, nil
}

// DeleteSplitSet removes a template row.
func (s *Service) DeleteSplitSet(ctx context.Context, id int64) error {
	if err := s.store.DeleteSplitSet(ctx, id); err != nil {
		return fmt.Errorf("deleting split set %d: %w", id, err)
	}
	return nil
}

// ReplaceSplitDay replaces every template row of weekday with items. Items
// without an order keep their list position. An empty list clears the day.
func (s *Service) ReplaceSplitDay(ctx context.Context, weekday int, items []models.SplitSetInput) ([]models.SplitSet, error) {
	checked, err := ValidateSplitDay(weekday, items)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceSplitDay(ctx, weekday, checked); err != nil {
		return nil, fmt.Errorf("replacing %s split: %w", calendar.WeekdayName(weekday), err)
	}
	s.log.Info("split day replaced", "weekday", calendar.WeekdayName(weekday), "sets", len(checked))
	return s.SplitTemplate(ctx, &weekday)
}

// ReplaceSplit validates every weekday in days, then replaces them together
// with the notes, when notes is non-nil, in a single store transaction.
// Weekdays missing from days are left untouched.
func (s *Service) ReplaceSplit(ctx context.Context, days map[int][]models.SplitSetInput, notes *string) error {
	checked := make(map[int][]models.SplitSetInput, len(days))
	sets := 0
	for weekday, items := range days {
		c, err := ValidateSplitDay(weekday, items)
		if err != nil {
			return fmt.Errorf("weekday %d: %w", weekday, err)
		}
		checked[weekday] = c
		sets += len(c)
	}
	if notes != nil {
		trimmed := strings.TrimSpace(*notes)
		notes = &trimmed
	}
	if err := s.store.ReplaceSplit(ctx, checked, notes, s.now()); err != nil {
		return fmt.Errorf("replacing split: %w", err)
	}
	s.log.Info("split replaced", "days", len(checked), "sets", sets, "notes", notes != nil)
	return nil
}

// ValidateSplitDay checks items as ReplaceSplitDay would store them for
// weekday, filling in the weekday, default rest and list-position order.
func ValidateSplitDay(weekday int, items []models.SplitSetInput) ([]models.SplitSetInput, error) {
	if err := checkWeekday(weekday); err != nil {
		return nil, err
	}
	checked := make([]models.SplitSetInput, len(items))
	for i, item := range items {
		item.Weekday = weekday
		if item.Order == 0 {
			item.Order = i + 1
		}
		c, err := checkSplitInput(item)
		if err != nil {
			return nil, fmt.Errorf("set %d: %w", i+1, err)
		}
		checked[i] = c
	}
	return checked, nil
}

// SplitNotes returns the template notes.
func (s *Service) SplitNotes(ctx context.Context) (*models.SplitNotes, error) {
	notes, err := s.store.SplitNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading split notes: %w", err)
	}
	return notes, nil
}

// SetSplitNotes replaces the template notes.
func (s *Service) SetSplitNotes(ctx context.Context, notes string) (*models.SplitNotes, error) {
	at := s.now()
	notes = strings.TrimSpace(notes)
	if err := s.store.SetSplitNotes(ctx, notes, at); err != nil {
		return nil, fmt.Errorf("saving split notes: %w", err)
	}
	return &models.SplitNotes{Notes: notes, UpdatedAt: &at}, nil
}
