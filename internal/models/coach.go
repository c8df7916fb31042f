package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRest is the rest period in seconds when none is given.
const DefaultRest = 60

// Day is one canonical daily log. Date is a logical "YYYY-MM-DD" date.
type Day struct {
	ID      uuid.UUID `json:"id"`
	Date    string    `json:"log_date"`
	Summary string    `json:"summary"`
}

// DaySummary is a day with its completed set count, as listed by ListDays.
type DaySummary struct {
	Day
	CompletedCount int `json:"completed_count"`
}

// PlannedSet is a queued set on a day. Load holds either an absolute weight
// or, when Relative is set, a percentage of the exercise's 1RM.
type PlannedSet struct {
	ID       int64     `json:"id"`
	DayID    uuid.UUID `json:"log_id"`
	Exercise string    `json:"exercise"`
	Reps     int       `json:"reps"`
	Load     float64   `json:"load"`
	Rest     int       `json:"rest"`
	OrderNum int       `json:"order_num"`
	Relative bool      `json:"relative"`
}

// ResolvedSet is a planned set with its load converted to a concrete weight.
type ResolvedSet struct {
	PlannedSet
	CalculatedLoad float64 `json:"calculated_load"`
	OriginalLoad   float64 `json:"original_load"`
}

// PlannedSetInput describes a new planned set. Order 0 appends to the queue,
// -1 prepends, and any other value is stored as given.
type PlannedSetInput struct {
	Exercise string  `json:"exercise"`
	Reps     int     `json:"reps"`
	Load     float64 `json:"load"`
	Rest     *int    `json:"rest,omitempty"`
	Order    int     `json:"order"`
	Relative bool    `json:"relative"`
}

// RestSeconds returns Rest or DefaultRest when unset.
func (in PlannedSetInput) RestSeconds() int {
	if in.Rest == nil {
		return DefaultRest
	}
	return *in.Rest
}

// PlannedSetPatch holds the fields to change on a planned set.
type PlannedSetPatch struct {
	Exercise *string  `json:"exercise,omitempty"`
	Reps     *int     `json:"reps,omitempty"`
	Load     *float64 `json:"load,omitempty"`
	Rest     *int     `json:"rest,omitempty"`
	OrderNum *int     `json:"order_num,omitempty"`
	Relative *bool    `json:"relative,omitempty"`
}

// CompletedSet is a set that was actually performed.
type CompletedSet struct {
	ID           int64      `json:"id"`
	DayID        uuid.UUID  `json:"log_id"`
	PlannedSetID *int64     `json:"planned_set_id"`
	Exercise     string     `json:"exercise"`
	RepsDone     int        `json:"reps_done"`
	LoadDone     float64    `json:"load_done"`
	CompletedAt  *time.Time `json:"completed_at"`
}

// CompletionInput records a performed set. A nil PlannedSetID is an ad-hoc
// completion; an empty Exercise on a linked completion uses the planned one.
type CompletionInput struct {
	Exercise     string  `json:"exercise"`
	RepsDone     int     `json:"reps_done"`
	LoadDone     float64 `json:"load_done"`
	PlannedSetID *int64  `json:"planned_set_id,omitempty"`
}

// CompletedSetPatch holds the fields to change on a completed set.
type CompletedSetPatch struct {
	Exercise    *string    `json:"exercise,omitempty"`
	RepsDone    *int       `json:"reps_done,omitempty"`
	LoadDone    *float64   `json:"load_done,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CompletionResult is the outcome of recording a completion. Next is the head
// of the queue after the completion. Duplicate is set when the planned set had
// already been completed and Completed is the earlier record.
type CompletionResult struct {
	Completed CompletedSet `json:"completed"`
	Planned   *ResolvedSet `json:"planned,omitempty"`
	Next      *PlannedSet  `json:"next,omitempty"`
	TimerSet  bool         `json:"timer_set"`
	Duplicate bool         `json:"duplicate,omitempty"`
}

// CompleteNextInput optionally narrows the next queued set to an exercise
// and overrides its reps or load.
type CompleteNextInput struct {
	Exercise string   `json:"exercise,omitempty"`
	Reps     *int     `json:"reps,omitempty"`
	Load     *float64 `json:"load,omitempty"`
}

// DayView is a day with its active queue and completions.
type DayView struct {
	Log       Day            `json:"log"`
	Plan      []ResolvedSet  `json:"plan"`
	Completed []CompletedSet `json:"completed"`
}

// SplitSet is a weekly template row. Weekday is 0=Sunday..6=Saturday.
type SplitSet struct {
	ID       int64   `json:"id"`
	Weekday  int     `json:"day_of_week"`
	Exercise string  `json:"exercise"`
	Reps     int     `json:"reps"`
	Load     float64 `json:"load"`
	Rest     int     `json:"rest"`
	OrderNum int     `json:"order_num"`
	Relative bool    `json:"relative"`
}

// SplitSetInput describes a new template row.
type SplitSetInput struct {
	Weekday  int     `json:"day_of_week" yaml:"-"`
	Exercise string  `json:"exercise" yaml:"exercise"`
	Reps     int     `json:"reps" yaml:"reps"`
	Load     float64 `json:"load" yaml:"load"`
	Rest     *int    `json:"rest,omitempty" yaml:"rest,omitempty"`
	Order    int     `json:"order" yaml:"order"`
	Relative bool    `json:"relative" yaml:"relative"`
}

// RestSeconds returns Rest or DefaultRest when unset.
func (in SplitSetInput) RestSeconds() int {
	if in.Rest == nil {
		return DefaultRest
	}
	return *in.Rest
}

// SplitSetPatch holds the fields to change on a template row.
type SplitSetPatch struct {
	Weekday  *int     `json:"day_of_week,omitempty"`
	Exercise *string  `json:"exercise,omitempty"`
	Reps     *int     `json:"reps,omitempty"`
	Load     *float64 `json:"load,omitempty"`
	Rest     *int     `json:"rest,omitempty"`
	OrderNum *int     `json:"order_num,omitempty"`
	Relative *bool    `json:"relative,omitempty"`
}

// SplitNotes is the free-text note attached to the weekly template.
type SplitNotes struct {
	Notes     string     `json:"notes"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// PRTarget is a goal load for an exercise at a rep count.
type PRTarget struct {
	Exercise string  `json:"exercise"`
	Reps     int     `json:"reps"`
	MaxLoad  float64 `json:"max_load"`
}

// HistoryRow pairs a planned set with the completion that fulfilled it.
// Ad-hoc completions have nil planned fields; unperformed sets nil done fields.
type HistoryRow struct {
	Date     string   `json:"log_date"`
	Exercise string   `json:"exercise"`
	Reps     *int     `json:"reps"`
	Load     *float64 `json:"load"`
	Relative bool     `json:"relative"`
	RepsDone *int     `json:"reps_done"`
	LoadDone *float64 `json:"load_done"`
}

// Timer states reported by TimerStatus.
const (
	TimerNone    = "no_timer"
	TimerRunning = "running"
	TimerExpired = "expired"
)

// TimerStatus is the state of the global rest timer.
type TimerStatus struct {
	State            string     `json:"state"`
	RemainingSeconds int        `json:"remaining_seconds"`
	ExpiredSeconds   int        `json:"expired_seconds,omitempty"`
	EndsAt           *time.Time `json:"ends_at,omitempty"`
}
