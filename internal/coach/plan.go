package coach

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jbrinkw/coachbyte/internal/models"
)

// AddPlannedSet queues a set on a day and returns its id. The day's
// template is applied first so a manual addition never suppresses it.
func (s *Service) AddPlannedSet(ctx context.Context, dayID uuid.UUID, in models.PlannedSetInput) (int64, error) {
	in, err := checkPlannedInput(in)
	if err != nil {
		return 0, err
	}
	day, err := s.store.GetDay(ctx, dayID)
	if err != nil {
		return 0, fmt.Errorf("getting day %s: %w", dayID, err)
	}
	if _, err := s.ApplySplitIfEmpty(ctx, day.ID, day.Date); err != nil {
		return 0, err
	}
	id, err := s.store.AddPlannedSet(ctx, dayID, in)
	if err != nil {
		return 0, fmt.Errorf("adding planned set: %w", err)
	}
	return id, nil
}

// AddTodayPlan queues items on the current logical day. All items are
// validated before anything is written.
func (s *Service) AddTodayPlan(ctx context.Context, items []models.PlannedSetInput) ([]int64, error) {
	if len(items) == 0 {
		return nil, invalid("at least one set is required")
	}
	checked := make([]models.PlannedSetInput, len(items))
	for i, item := range items {
		c, err := checkPlannedInput(item)
		if err != nil {
			return nil, fmt.Errorf("set %d: %w", i+1, err)
		}
		checked[i] = c
	}

	dayID, err := s.EnsureTodayPlan(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(checked))
	for _, in := range checked {
		id, err := s.store.AddPlannedSet(ctx, dayID, in)
		if err != nil {
			return ids, fmt.Errorf("adding planned set: %w", err)
		}
		ids = append(ids, id)
	}
	s.log.Info("plan updated", "date", s.LogicalToday(), "sets", len(ids))
	return ids, nil
}

// TodayPlan returns the active queue of the current logical day.
func (s *Service) TodayPlan(ctx context.Context) ([]models.ResolvedSet, error) {
	view, err := s.Today(ctx)
	if err != nil {
		return nil, err
	}
	return view.Plan, nil
}

// UpdatePlannedSet applies patch to a planned set.
func (s *Service) UpdatePlannedSet(ctx context.Context, id int64, patch models.PlannedSetPatch) (*models.PlannedSet, error) {
	set, err := s.store.GetPlannedSet(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting planned set %d: %w", id, err)
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
	if err := checkPlannedSet(*set); err != nil {
		return nil, err
	}
	if err := s.store.UpdatePlannedSet(ctx, *set); err != nil {
		return nil, fmt.Errorf("updating planned set %d: %w", id, err)
	}
	return set, nil
}

// DeletePlannedSet removes a planned set from its day.
func (s *Service) DeletePlannedSet(ctx context.Context, id int64) error {
	if err := s.store.DeletePlannedSet(ctx, id); err != nil {
		return fmt.Errorf("deleting planned set %d: %w", id, err)
	}
	return nil
}
