package coach

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jbrinkw/coachbyte/internal/calendar"
	"github.com/jbrinkw/coachbyte/internal/models"
	"github.com/jbrinkw/coachbyte/internal/prs"
)

// EnsureDay returns the id of the day for date, creating it on first use.
func (s *Service) EnsureDay(ctx context.Context, date string) (uuid.UUID, error) {
	date = strings.TrimSpace(date)
	if _, err := calendar.ParseDate(date); err != nil {
		return uuid.Nil, invalid("%v", err)
	}
	id, created, err := s.store.EnsureDay(ctx, date)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ensuring day %s: %w", date, err)
	}
	if created {
		s.log.Info("day created", "date", date, "id", id)
	}
	return id, nil
}

// ApplySplitIfEmpty clones the weekly template for date's weekday into an
// empty day. Calling it again is a no-op.
func (s *Service) ApplySplitIfEmpty(ctx context.Context, dayID uuid.UUID, date string) (int, error) {
	weekday, err := calendar.Weekday(date)
	if err != nil {
		return 0, invalid("%v", err)
	}
	n, err := s.store.ApplySplitIfEmpty(ctx, dayID, weekday)
	if err != nil {
		return 0, fmt.Errorf("applying split to %s: %w", date, err)
	}
	if n > 0 {
		s.metrics.Materialized(n)
		s.log.Info("split applied", "date", date, "weekday", calendar.WeekdayName(weekday), "sets", n)
	}
	return n, nil
}

// EnsureTodayPlan materializes the current logical day and its template.
func (s *Service) EnsureTodayPlan(ctx context.Context) (uuid.UUID, error) {
	today := s.LogicalToday()
	id, err := s.EnsureDay(ctx, today)
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := s.ApplySplitIfEmpty(ctx, id, today); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// ListDays returns all days, newest first. Today is materialized first.
func (s *Service) ListDays(ctx context.Context) ([]models.DaySummary, error) {
	if _, err := s.EnsureTodayPlan(ctx); err != nil {
		return nil, err
	}
	days, err := s.store.ListDays(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing days: %w", err)
	}
	return days, nil
}

// CreateDay returns the id of the day for date. An existing day is returned
// as is.
func (s *Service) CreateDay(ctx context.Context, date string) (uuid.UUID, error) {
	return s.EnsureDay(ctx, date)
}

// DeleteDay removes a day with its planned and completed sets.
func (s *Service) DeleteDay(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteDay(ctx, id); err != nil {
		return fmt.Errorf("deleting day %s: %w", id, err)
	}
	return nil
}

// GetDay returns a day with its active queue and completions. The day's
// template is applied first if it is still empty.
func (s *Service) GetDay(ctx context.Context, id uuid.UUID) (*models.DayView, error) {
	day, err := s.store.GetDay(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting day %s: %w", id, err)
	}
	if _, err := s.ApplySplitIfEmpty(ctx, day.ID, day.Date); err != nil {
		return nil, err
	}
	return s.dayView(ctx, day)
}

// Today returns the current logical day view.
func (s *Service) Today(ctx context.Context) (*models.DayView, error) {
	id, err := s.EnsureTodayPlan(ctx)
	if err != nil {
		return nil, err
	}
	day, err := s.store.GetDay(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting today: %w", err)
	}
	return s.dayView(ctx, day)
}

// UpdateSummary replaces a day's summary text.
func (s *Service) UpdateSummary(ctx context.Context, id uuid.UUID, summary string) error {
	if err := s.store.UpdateSummary(ctx, id, strings.TrimSpace(summary)); err != nil {
		return fmt.Errorf("updating summary of %s: %w", id, err)
	}
	return nil
}

// UpdateTodaySummary replaces the summary of the current logical day.
func (s *Service) UpdateTodaySummary(ctx context.Context, summary string) (uuid.UUID, error) {
	id, err := s.EnsureTodayPlan(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return id, s.UpdateSummary(ctx, id, summary)
}

func (s *Service) dayView(ctx context.Context, day *models.Day) (*models.DayView, error) {
	queue, err := s.store.ActiveQueue(ctx, day.ID)
	if err != nil {
		return nil, fmt.Errorf("loading queue of %s: %w", day.Date, err)
	}
	completed, err := s.store.ListCompletedSets(ctx, day.ID)
	if err != nil {
		return nil, fmt.Errorf("loading completions of %s: %w", day.Date, err)
	}
	table, err := s.oneRepMaxes(ctx)
	if err != nil {
		return nil, err
	}

	view := &models.DayView{
		Log:       *day,
		Plan:      make([]models.ResolvedSet, 0, len(queue)),
		Completed: completed,
	}
	if view.Completed == nil {
		view.Completed = []models.CompletedSet{}
	}
	for _, set := range queue {
		view.Plan = append(view.Plan, resolve(set, table))
	}
	return view, nil
}

func resolve(set models.PlannedSet, table map[string]float64) models.ResolvedSet {
	r := prs.Resolve(set.Exercise, set.Load, set.Relative, table)
	return models.ResolvedSet{
		PlannedSet:     set,
		CalculatedLoad: r.CalculatedLoad,
		OriginalLoad:   r.OriginalLoad,
	}
}
