package mcp

import (
	"context"

	"github.com/google/uuid"

	"github.com/jbrinkw/coachbyte/internal/coach"
	"github.com/jbrinkw/coachbyte/internal/models"
	"github.com/jbrinkw/coachbyte/internal/prs"
)

// DataSource abstracts the training engine for MCP tools. Both
// *coach.Service (local) and HTTPClient (remote via REST API) satisfy this
// interface.
type DataSource interface {
	Today(ctx context.Context) (*models.DayView, error)
	TodayPlan(ctx context.Context) ([]models.ResolvedSet, error)
	AddTodayPlan(ctx context.Context, items []models.PlannedSetInput) ([]int64, error)
	CompleteNext(ctx context.Context, in models.CompleteNextInput) (*models.CompletionResult, error)
	LogTodaySet(ctx context.Context, exercise string, reps int, load float64) (*models.CompletedSet, error)
	UpdateTodaySummary(ctx context.Context, summary string) (uuid.UUID, error)
	RecentHistory(ctx context.Context, days int) ([]models.HistoryRow, error)
	SplitTemplate(ctx context.Context, weekday *int) ([]models.SplitSet, error)
	ReplaceSplitDay(ctx context.Context, weekday int, items []models.SplitSetInput) ([]models.SplitSet, error)
	SetTimerMinutes(ctx context.Context, minutes int) (*models.TimerStatus, error)
	TimerStatus(ctx context.Context) (*models.TimerStatus, error)
	DisplayPRs(ctx context.Context) (map[string][]prs.Record, error)
}

// Compile-time check: *coach.Service satisfies DataSource.
var _ DataSource = (*coach.Service)(nil)
