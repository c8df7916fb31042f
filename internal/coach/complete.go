package coach

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jbrinkw/coachbyte/internal/calendar"
	"github.com/jbrinkw/coachbyte/internal/metrics"
	"github.com/jbrinkw/coachbyte/internal/models"
	"github.com/jbrinkw/coachbyte/internal/prs"
)

// CompleteSet records a performed set on a day. Completing a planned set
// resets the rest timer to the rest of the next queued set.
func (s *Service) CompleteSet(ctx context.Context, dayID uuid.UUID, in models.CompletionInput) (*models.CompletedSet, error) {
	res, err := s.complete(ctx, dayID, in)
	if err != nil {
		return nil, err
	}
	return &res.Completed, nil
}

// CompleteNext completes the first queued set of the current logical day,
// or the first queued set of in.Exercise. Reps and load default to the
// planned reps and the resolved load.
func (s *Service) CompleteNext(ctx context.Context, in models.CompleteNextInput) (*models.CompletionResult, error) {
	dayID, err := s.EnsureTodayPlan(ctx)
	if err != nil {
		return nil, err
	}
	queue, err := s.store.ActiveQueue(ctx, dayID)
	if err != nil {
		return nil, fmt.Errorf("loading queue: %w", err)
	}

	var target *models.PlannedSet
	for i := range queue {
		if in.Exercise == "" || prs.Key(queue[i].Exercise) == prs.Key(in.Exercise) {
			target = &queue[i]
			break
		}
	}
	if target == nil {
		if in.Exercise != "" {
			return nil, fmt.Errorf("no queued sets for %q: %w", in.Exercise, ErrNotFound)
		}
		return nil, fmt.Errorf("no queued sets: %w", ErrNotFound)
	}

	table, err := s.oneRepMaxes(ctx)
	if err != nil {
		return nil, err
	}
	planned := resolve(*target, table)

	reps, load := planned.Reps, planned.CalculatedLoad
	if in.Reps != nil {
		reps = *in.Reps
	}
	if in.Load != nil {
		load = *in.Load
	}

	id := planned.ID
	res, err := s.complete(ctx, dayID, models.CompletionInput{
		Exercise:     planned.Exercise,
		RepsDone:     reps,
		LoadDone:     load,
		PlannedSetID: &id,
	})
	if err != nil {
		return nil, err
	}
	res.Planned = &planned
	return res, nil
}

// LogTodaySet records an ad-hoc completion on the current logical day.
func (s *Service) LogTodaySet(ctx context.Context, exercise string, reps int, load float64) (*models.CompletedSet, error) {
	dayID, err := s.EnsureTodayPlan(ctx)
	if err != nil {
		return nil, err
	}
	return s.CompleteSet(ctx, dayID, models.CompletionInput{
		Exercise: exercise,
		RepsDone: reps,
		LoadDone: load,
	})
}

func (s *Service) complete(ctx context.Context, dayID uuid.UUID, in models.CompletionInput) (*models.CompletionResult, error) {
	in, err := checkCompletion(in)
	if err != nil {
		return nil, err
	}
	res, err := s.store.CompleteSet(ctx, dayID, in, s.now())
	if err != nil {
		return nil, fmt.Errorf("completing set: %w", err)
	}
	if res.Duplicate {
		s.metrics.CounterDuplicateCompletions.Inc()
		s.log.Info("planned set already completed", "planned_set_id", *in.PlannedSetID, "completed_id", res.Completed.ID)
		return res, nil
	}

	if in.PlannedSetID == nil {
		s.metrics.CompletedSet(metrics.KindAdHoc)
		return res, nil
	}
	s.metrics.CompletedSet(metrics.KindPlanned)
	if res.Next != nil {
		res.TimerSet = s.resetTimer(context.WithoutCancel(ctx), res.Next.Rest)
	}
	return res, nil
}

// resetTimer starts the rest countdown after a completion. The completion is
// already committed, so failures are logged and not returned.
func (s *Service) resetTimer(ctx context.Context, rest int) bool {
	if err := s.store.SetTimer(ctx, s.now().Add(time.Duration(rest)*time.Second)); err != nil {
		s.metrics.CounterTimerResetFailures.Inc()
		s.log.Warn("rest timer reset failed", "rest", rest, "error", err)
		return false
	}
	s.metrics.CounterTimerResets.Inc()
	return true
}

// UpdateCompletedSet applies patch to a completed set.
func (s *Service) UpdateCompletedSet(ctx context.Context, id int64, patch models.CompletedSetPatch) (*models.CompletedSet, error) {
	set, err := s.store.GetCompletedSet(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting completed set %d: %w", id, err)
	}
	if patch.Exercise != nil {
		name, err := cleanExercise(*patch.Exercise)
		if err != nil {
			return nil, err
		}
		set.Exercise = name
	}
	if patch.RepsDone != nil {
		set.RepsDone = *patch.RepsDone
	}
	if patch.LoadDone != nil {
		set.LoadDone = *patch.LoadDone
	}
	if patch.CompletedAt != nil {
		at := *patch.CompletedAt
		set.CompletedAt = &at
	}
	if err := checkReps(set.RepsDone); err != nil {
		return nil, err
	}
	if err := checkLoad(set.LoadDone, false); err != nil {
		return nil, err
	}
	if err := s.store.UpdateCompletedSet(ctx, *set); err != nil {
		return nil, fmt.Errorf("updating completed set %d: %w", id, err)
	}
	return set, nil
}

// DeleteCompletedSet removes a completion. A planned set it fulfilled
// returns to the queue.
func (s *Service) DeleteCompletedSet(ctx context.Context, id int64) error {
	if err := s.store.DeleteCompletedSet(ctx, id); err != nil {
		return fmt.Errorf("deleting completed set %d: %w", id, err)
	}
	return nil
}

// RecentHistory returns planned and completed rows for the last days
// logical days, today included.
func (s *Service) RecentHistory(ctx context.Context, days int) ([]models.HistoryRow, error) {
	if days < 1 || days > MaxHistoryDays {
		return nil, invalid("days must be between 1 and %d, got %d", MaxHistoryDays, days)
	}
	since, err := calendar.AddDays(s.LogicalToday(), -(days - 1))
	if err != nil {
		return nil, err
	}
	rows, err := s.store.History(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("loading history since %s: %w", since, err)
	}
	return rows, nil
}
