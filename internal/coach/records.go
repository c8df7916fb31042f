package coach

import (
	"context"
	"fmt"

	"github.com/jbrinkw/coachbyte/internal/models"
	"github.com/jbrinkw/coachbyte/internal/prs"
)

// PRs returns the best load per rep count for tracked exercises, keyed by
// lowercase exercise name.
func (s *Service) PRs(ctx context.Context) (map[string][]prs.Record, error) {
	tracked, err := s.store.TrackedExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tracked exercises: %w", err)
	}
	if len(tracked) == 0 {
		return map[string][]prs.Record{}, nil
	}
	completions, err := s.store.Completions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading completions: %w", err)
	}
	return prs.Estimate(completions, tracked), nil
}

// DisplayPRs is PRs with an estimated single added where none was lifted.
func (s *Service) DisplayPRs(ctx context.Context) (map[string][]prs.Record, error) {
	records, err := s.PRs(ctx)
	if err != nil {
		return nil, err
	}
	return prs.Display(records), nil
}

func (s *Service) oneRepMaxes(ctx context.Context) (map[string]float64, error) {
	records, err := s.PRs(ctx)
	if err != nil {
		return nil, err
	}
	return prs.OneRepMaxes(records), nil
}

// PRTargets returns the goal loads.
func (s *Service) PRTargets(ctx context.Context) ([]models.PRTarget, error) {
	targets, err := s.store.PRTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading pr targets: %w", err)
	}
	return targets, nil
}

// UpsertPRTarget sets the goal load for an exercise at a rep count.
func (s *Service) UpsertPRTarget(ctx context.Context, target models.PRTarget) error {
	name, err := cleanExercise(target.Exercise)
	if err != nil {
		return err
	}
	target.Exercise = name
	if err := checkReps(target.Reps); err != nil {
		return err
	}
	if err := checkLoad(target.MaxLoad, false); err != nil {
		return err
	}
	if err := s.store.UpsertPRTarget(ctx, target); err != nil {
		return fmt.Errorf("saving pr target: %w", err)
	}
	return nil
}

// DeletePRTarget removes the goal for an exercise at a rep count.
func (s *Service) DeletePRTarget(ctx context.Context, exercise string, reps int) error {
	name, err := cleanExercise(exercise)
	if err != nil {
		return err
	}
	if err := s.store.DeletePRTarget(ctx, name, reps); err != nil {
		return fmt.Errorf("deleting pr target %s x%d: %w", name, reps, err)
	}
	return nil
}

// TrackedExercises returns the exercises PRs are computed for.
func (s *Service) TrackedExercises(ctx context.Context) ([]string, error) {
	names, err := s.store.TrackedExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tracked exercises: %w", err)
	}
	return names, nil
}

// AddTrackedExercise starts tracking PRs for an exercise.
func (s *Service) AddTrackedExercise(ctx context.Context, name string) error {
	name, err := cleanExercise(name)
	if err != nil {
		return err
	}
	if err := s.store.AddTrackedExercise(ctx, name); err != nil {
		return fmt.Errorf("tracking %s: %w", name, err)
	}
	return nil
}

// RemoveTrackedExercise stops tracking PRs for an exercise.
func (s *Service) RemoveTrackedExercise(ctx context.Context, name string) error {
	name, err := cleanExercise(name)
	if err != nil {
		return err
	}
	if err := s.store.RemoveTrackedExercise(ctx, name); err != nil {
		return fmt.Errorf("untracking %s: %w", name, err)
	}
	return nil
}
