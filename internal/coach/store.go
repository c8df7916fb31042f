package coach

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jbrinkw/coachbyte/internal/models"
	"github.com/jbrinkw/coachbyte/internal/prs"
)

// Store is the transactional persistence behind Service. Implementations
// report missing rows as ErrNotFound and connectivity failures as
// ErrStoreUnavailable. Exercise names are resolved case-insensitively and
// created on first use.
type Store interface {
	// EnsureDay returns the day for date, creating it if needed. created
	// reports whether this call inserted the row.
	EnsureDay(ctx context.Context, date string) (id uuid.UUID, created bool, err error)
	GetDay(ctx context.Context, id uuid.UUID) (*models.Day, error)
	ListDays(ctx context.Context) ([]models.DaySummary, error)
	DeleteDay(ctx context.Context, id uuid.UUID) error
	UpdateSummary(ctx context.Context, id uuid.UUID, summary string) error
	// ApplySplitIfEmpty clones the weekday's template rows into the day in
	// one transaction when the day has no planned sets and has never
	// received a template. It returns the number of rows cloned.
	ApplySplitIfEmpty(ctx context.Context, dayID uuid.UUID, weekday int) (int, error)

	// ActiveQueue returns the day's planned sets without a completion,
	// ordered by order_num then id.
	ActiveQueue(ctx context.Context, dayID uuid.UUID) ([]models.PlannedSet, error)
	GetPlannedSet(ctx context.Context, id int64) (*models.PlannedSet, error)
	AddPlannedSet(ctx context.Context, dayID uuid.UUID, in models.PlannedSetInput) (int64, error)
	UpdatePlannedSet(ctx context.Context, set models.PlannedSet) error
	DeletePlannedSet(ctx context.Context, id int64) error

	// CompleteSet records a completion in one transaction. For a linked
	// completion it verifies the planned set belongs to dayID, resolves the
	// next queued set excluding it, and treats an existing completion of the
	// same planned set as a duplicate.
	CompleteSet(ctx context.Context, dayID uuid.UUID, in models.CompletionInput, at time.Time) (*models.CompletionResult, error)
	GetCompletedSet(ctx context.Context, id int64) (*models.CompletedSet, error)
	// ListCompletedSets orders by completed_at descending, nulls last.
	ListCompletedSets(ctx context.Context, dayID uuid.UUID) ([]models.CompletedSet, error)
	UpdateCompletedSet(ctx context.Context, set models.CompletedSet) error
	DeleteCompletedSet(ctx context.Context, id int64) error
	// Completions returns every completion for PR estimation.
	Completions(ctx context.Context) ([]prs.Completion, error)
	// History returns planned and completed rows for days on or after since.
	History(ctx context.Context, since string) ([]models.HistoryRow, error)

	// SplitSets returns template rows, for one weekday when weekday is set.
	SplitSets(ctx context.Context, weekday *int) ([]models.SplitSet, error)
	GetSplitSet(ctx context.Context, id int64) (*models.SplitSet, error)
	AddSplitSet(ctx context.Context, in models.SplitSetInput) (int64, error)
	UpdateSplitSet(ctx context.Context, set models.SplitSet) error
	DeleteSplitSet(ctx context.Context, id int64) error
	// ReplaceSplitDay swaps all rows of a weekday for items in one transaction.
	ReplaceSplitDay(ctx context.Context, weekday int, items []models.SplitSetInput) error
	// ReplaceSplit swaps every weekday in days, and the notes when notes is
	// non-nil, in one transaction.
	ReplaceSplit(ctx context.Context, days map[int][]models.SplitSetInput, notes *string, at time.Time) error
	SplitNotes(ctx context.Context) (*models.SplitNotes, error)
	SetSplitNotes(ctx context.Context, notes string, at time.Time) error

	TrackedExercises(ctx context.Context) ([]string, error)
	AddTrackedExercise(ctx context.Context, name string) error
	RemoveTrackedExercise(ctx context.Context, name string) error
	PRTargets(ctx context.Context) ([]models.PRTarget, error)
	UpsertPRTarget(ctx context.Context, target models.PRTarget) error
	DeletePRTarget(ctx context.Context, exercise string, reps int) error

	// SetTimer replaces the single timer row.
	SetTimer(ctx context.Context, endsAt time.Time) error
	// Timer returns the timer end, or nil when no timer was ever set.
	Timer(ctx context.Context) (*time.Time, error)
}
