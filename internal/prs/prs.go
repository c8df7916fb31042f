// Package prs derives personal records from completed sets and resolves
// percentage-of-max loads into concrete weights.
package prs

import (
	"math"
	"sort"
	"strings"
)

// Completion is the subset of a completed set that PR estimation needs.
type Completion struct {
	Exercise string
	Reps     int
	Load     float64
}

// Record is the best observed load at one rep count.
type Record struct {
	Reps      int     `json:"reps"`
	MaxLoad   float64 `json:"max_load"`
	Estimated bool    `json:"estimated,omitempty"`
}

// Key normalizes an exercise name for case-insensitive lookups.
func Key(exercise string) string {
	return strings.ToLower(strings.TrimSpace(exercise))
}

// Estimate groups qualifying completions of tracked exercises by rep count
// and keeps the maximum load per rep count. Records are ordered by reps
// ascending. Exercises without qualifying completions are absent.
func Estimate(completions []Completion, tracked []string) map[string][]Record {
	isTracked := make(map[string]bool, len(tracked))
	for _, name := range tracked {
		isTracked[Key(name)] = true
	}

	best := make(map[string]map[int]float64)
	for _, c := range completions {
		if c.Reps <= 0 || c.Load <= 0 {
			continue
		}
		key := Key(c.Exercise)
		if !isTracked[key] {
			continue
		}
		byReps, ok := best[key]
		if !ok {
			byReps = make(map[int]float64)
			best[key] = byReps
		}
		if c.Load > byReps[c.Reps] {
			byReps[c.Reps] = c.Load
		}
	}

	out := make(map[string][]Record, len(best))
	for key, byReps := range best {
		records := make([]Record, 0, len(byReps))
		for reps, load := range byReps {
			records = append(records, Record{Reps: reps, MaxLoad: load})
		}
		sort.Slice(records, func(i, j int) bool { return records[i].Reps < records[j].Reps })
		out[key] = records
	}
	return out
}

// EstimateSingle returns the Epley one-rep-max estimate for a record.
func EstimateSingle(r Record) float64 {
	if r.Reps == 1 {
		return r.MaxLoad
	}
	return r.MaxLoad * (1 + float64(r.Reps)/30)
}

// OneRepMax returns the estimated 1RM across records, or 0 when empty.
// A true single is authoritative; otherwise the largest estimate wins.
func OneRepMax(records []Record) float64 {
	var best float64
	for _, r := range records {
		if r.Estimated {
			continue
		}
		if r.Reps == 1 {
			return r.MaxLoad
		}
		if e := EstimateSingle(r); e > best {
			best = e
		}
	}
	return best
}

// OneRepMaxes builds the exercise to 1RM table used by Resolve.
func OneRepMaxes(records map[string][]Record) map[string]float64 {
	out := make(map[string]float64, len(records))
	for key, recs := range records {
		if orm := OneRepMax(recs); orm > 0 {
			out[Key(key)] = orm
		}
	}
	return out
}

// WithEstimatedSingle prepends a synthesized 1-rep record derived from the
// lowest-rep record when no true single exists. The input is not modified.
func WithEstimatedSingle(records []Record) []Record {
	if len(records) == 0 {
		return records
	}
	lowest := records[0]
	for _, r := range records {
		if r.Reps == 1 {
			return records
		}
		if r.Reps < lowest.Reps {
			lowest = r
		}
	}
	out := make([]Record, 0, len(records)+1)
	out = append(out, Record{Reps: 1, MaxLoad: math.Round(EstimateSingle(lowest)), Estimated: true})
	return append(out, records...)
}

// Display applies WithEstimatedSingle to every exercise.
func Display(records map[string][]Record) map[string][]Record {
	out := make(map[string][]Record, len(records))
	for key, recs := range records {
		out[key] = WithEstimatedSingle(recs)
	}
	return out
}
