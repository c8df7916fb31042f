package split

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jbrinkw/coachbyte/internal/coach"
	"github.com/jbrinkw/coachbyte/internal/models"
)

const sample = `
notes: Upper/lower
days:
  monday:
    - exercise: Bench Press
      reps: 5
      load: 80
      relative: true
      rest: 120
    - exercise: Row
      reps: 10
      load: 135
  "4": []
`

// fakeTarget records the single split write.
type fakeTarget struct {
	days  map[int][]models.SplitSetInput
	notes *string
	calls int
	fail  bool
}

func (f *fakeTarget) ReplaceSplit(_ context.Context, days map[int][]models.SplitSetInput, notes *string) error {
	f.calls++
	if f.fail {
		return coach.ErrStoreUnavailable
	}
	f.days = days
	f.notes = notes
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestParseAndPlan verifies weekday keys resolve and sets pick up defaults.
func TestParseAndPlan(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	if f.Notes == nil || *f.Notes != "Upper/lower" {
		t.Errorf("notes = %v", f.Notes)
	}

	days, err := f.Plan()
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	if days[0].Weekday != 1 || days[1].Weekday != 4 {
		t.Errorf("weekdays = %d, %d, want 1, 4", days[0].Weekday, days[1].Weekday)
	}
	mon := days[0].Sets
	if len(mon) != 2 {
		t.Fatalf("monday sets = %d, want 2", len(mon))
	}
	if !mon[0].Relative || mon[0].RestSeconds() != 120 || mon[0].Order != 1 {
		t.Errorf("first set = %+v", mon[0])
	}
	if mon[1].RestSeconds() != models.DefaultRest || mon[1].Order != 2 || mon[1].Weekday != 1 {
		t.Errorf("second set = %+v", mon[1])
	}
	if len(days[1].Sets) != 0 {
		t.Errorf("thursday sets = %d, want 0", len(days[1].Sets))
	}
}

// TestParseErrors verifies malformed files are rejected before any write.
func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ""},
		{"nothing listed", "days: {}\n"},
		{"unknown key", "dayz:\n  monday: []\n"},
		{"not yaml", "days: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// TestPlanErrors verifies bad weekdays, duplicates and invalid sets.
func TestPlanErrors(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantValid bool
	}{
		{"bad weekday", "days:\n  someday: []\n", false},
		{"duplicate weekday", "days:\n  monday: []\n  \"1\": []\n", false},
		{"invalid reps", "days:\n  monday:\n    - {exercise: Squat, reps: 0, load: 100}\n", true},
		{"relative over limit", "days:\n  friday:\n    - {exercise: Squat, reps: 3, load: 160, relative: true}\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(strings.NewReader(tt.yaml))
			if err != nil {
				t.Fatal(err)
			}
			_, err = f.Plan()
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, coach.ErrValidation); got != tt.wantValid {
				t.Errorf("errors.Is(ErrValidation) = %v, want %v (%v)", got, tt.wantValid, err)
			}
		})
	}
}

// TestImport verifies each listed weekday is replaced and notes are saved.
func TestImport(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	target := &fakeTarget{}
	stats, err := New(target, quietLogger(), false).Import(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if stats.DaysReplaced != 1 || stats.DaysCleared != 1 || stats.SetsWritten != 2 || !stats.NotesUpdated {
		t.Errorf("stats = %+v", stats)
	}
	if target.calls != 1 {
		t.Errorf("writes = %d, want 1", target.calls)
	}
	if len(target.days) != 2 || len(target.days[1]) != 2 || len(target.days[4]) != 0 {
		t.Errorf("days = %+v", target.days)
	}
	if _, ok := target.days[4]; !ok {
		t.Error("cleared thursday missing from the write")
	}
	if target.notes == nil || *target.notes != "Upper/lower" {
		t.Errorf("notes = %v", target.notes)
	}
}

// TestImportDryRun verifies dry runs count without writing.
func TestImportDryRun(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	target := &fakeTarget{}
	stats, err := New(target, quietLogger(), true).Import(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if stats.SetsWritten != 2 || !stats.NotesUpdated {
		t.Errorf("stats = %+v", stats)
	}
	if target.calls != 0 {
		t.Errorf("dry run wrote %d times", target.calls)
	}
}

// TestImportWriteFailure verifies a failed write reports nothing imported.
func TestImportWriteFailure(t *testing.T) {
	f, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	target := &fakeTarget{fail: true}
	stats, err := New(target, quietLogger(), false).Import(context.Background(), f)
	if !errors.Is(err, coach.ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
	if *stats != (Stats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
}

// TestLoad verifies reading a split file from disk.
func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "split.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Days) != 2 {
		t.Errorf("days = %d, want 2", len(f.Days))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
