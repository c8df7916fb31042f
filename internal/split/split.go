// Package split imports a weekly split template from a YAML file.
//
// A file lists sets per weekday and optional template notes:
//
//	notes: Upper/lower, deload every fourth week
//	days:
//	  monday:
//	    - exercise: Bench Press
//	      reps: 5
//	      load: 80
//	      relative: true
//	  thursday: []
//
// Every listed weekday is replaced in full; an empty list clears it.
// Weekdays that are not listed are left alone. The file is applied in one
// transaction, so a failed import changes nothing.
package split

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/jbrinkw/coachbyte/internal/calendar"
	"github.com/jbrinkw/coachbyte/internal/coach"
	"github.com/jbrinkw/coachbyte/internal/models"
)

// File is a parsed split template file.
type File struct {
	Notes *string                           `yaml:"notes"`
	Days  map[string][]models.SplitSetInput `yaml:"days"`
}

// Day is one weekday's validated sets.
type Day struct {
	Weekday int
	Sets    []models.SplitSetInput
}

// Stats tracks import progress.
type Stats struct {
	DaysReplaced int
	DaysCleared  int
	SetsWritten  int
	NotesUpdated bool
}

// Target receives the imported template in one write. *coach.Service
// satisfies it.
type Target interface {
	ReplaceSplit(ctx context.Context, days map[int][]models.SplitSetInput, notes *string) error
}

var _ Target = (*coach.Service)(nil)

// Load reads and parses a split file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading split file: %w", err)
	}
	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a split file. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("split file is empty")
		}
		return nil, err
	}
	if len(f.Days) == 0 && f.Notes == nil {
		return nil, errors.New("split file lists no days and no notes")
	}
	return &f, nil
}

// Plan resolves weekday keys and validates every set, returning days in
// weekday order. A weekday given twice ("monday" and "1") is an error.
func (f *File) Plan() ([]Day, error) {
	seen := make(map[int]string, len(f.Days))
	days := make([]Day, 0, len(f.Days))
	for key, sets := range f.Days {
		weekday, err := calendar.ParseWeekday(key)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[weekday]; ok {
			return nil, fmt.Errorf("weekday %s listed twice (%q and %q)", calendar.WeekdayName(weekday), prev, key)
		}
		seen[weekday] = key

		checked, err := coach.ValidateSplitDay(weekday, sets)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", calendar.WeekdayName(weekday), err)
		}
		days = append(days, Day{Weekday: weekday, Sets: checked})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Weekday < days[j].Weekday })
	return days, nil
}

// Importer writes split files to a Target.
type Importer struct {
	target Target
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer. With dryRun set nothing is written and Stats
// reports what would have been.
func New(target Target, log *slog.Logger, dryRun bool) *Importer {
	if log == nil {
		log = slog.Default()
	}
	return &Importer{target: target, log: log, dryRun: dryRun}
}

// Import validates the whole file, then replaces every listed weekday and
// the notes in a single write. A failed write leaves the template unchanged
// and Stats empty.
func (imp *Importer) Import(ctx context.Context, f *File) (*Stats, error) {
	days, err := f.Plan()
	if err != nil {
		return &imp.stats, err
	}

	var planned Stats
	write := make(map[int][]models.SplitSetInput, len(days))
	for _, day := range days {
		write[day.Weekday] = day.Sets
		if len(day.Sets) == 0 {
			planned.DaysCleared++
		} else {
			planned.DaysReplaced++
		}
		planned.SetsWritten += len(day.Sets)
		imp.log.Info("split day", "weekday", calendar.WeekdayName(day.Weekday), "sets", len(day.Sets), "dry_run", imp.dryRun)
	}
	planned.NotesUpdated = f.Notes != nil

	if !imp.dryRun {
		if err := imp.target.ReplaceSplit(ctx, write, f.Notes); err != nil {
			return &imp.stats, fmt.Errorf("writing split: %w", err)
		}
	}
	imp.stats = planned
	return &imp.stats, nil
}
