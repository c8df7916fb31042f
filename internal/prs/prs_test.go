package prs

import (
	"math"
	"testing"
)

// TestEstimateGroupsByReps verifies max load per rep count, ordering, and filtering.
func TestEstimateGroupsByReps(t *testing.T) {
	completions := []Completion{
		{Exercise: "Bench Press", Reps: 5, Load: 185},
		{Exercise: "bench press", Reps: 5, Load: 195},
		{Exercise: "Bench Press", Reps: 1, Load: 225},
		{Exercise: "Bench Press", Reps: 3, Load: 0},
		{Exercise: "Bench Press", Reps: 0, Load: 200},
		{Exercise: "Squat", Reps: 5, Load: 275},
		{Exercise: "Curl", Reps: 10, Load: 40},
	}
	got := Estimate(completions, []string{"BENCH PRESS", "squat", "deadlift"})

	bench := got["bench press"]
	if len(bench) != 2 {
		t.Fatalf("bench records = %d, want 2: %+v", len(bench), bench)
	}
	if bench[0].Reps != 1 || bench[0].MaxLoad != 225 {
		t.Errorf("bench[0] = %+v, want 1x225", bench[0])
	}
	if bench[1].Reps != 5 || bench[1].MaxLoad != 195 {
		t.Errorf("bench[1] = %+v, want 5x195", bench[1])
	}
	if len(got["squat"]) != 1 {
		t.Errorf("squat records = %d, want 1", len(got["squat"]))
	}
	if _, ok := got["deadlift"]; ok {
		t.Error("deadlift has no completions and should be absent")
	}
	if _, ok := got["curl"]; ok {
		t.Error("curl is untracked and should be absent")
	}
}

// TestOneRepMax verifies the Epley estimate and true-single precedence.
func TestOneRepMax(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		want    float64
	}{
		{"true single", []Record{{Reps: 1, MaxLoad: 100}}, 100},
		{"estimated from five", []Record{{Reps: 5, MaxLoad: 90}}, 105},
		{"single beats estimate", []Record{{Reps: 1, MaxLoad: 100}, {Reps: 5, MaxLoad: 90}}, 100},
		{"largest estimate", []Record{{Reps: 3, MaxLoad: 100}, {Reps: 10, MaxLoad: 90}}, 120},
		{"synthesized ignored", []Record{{Reps: 1, MaxLoad: 500, Estimated: true}, {Reps: 5, MaxLoad: 90}}, 105},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OneRepMax(tt.records)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("OneRepMax = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestWithEstimatedSingle verifies the display-only synthesized single.
func TestWithEstimatedSingle(t *testing.T) {
	records := []Record{{Reps: 5, MaxLoad: 90}, {Reps: 8, MaxLoad: 80}}
	got := WithEstimatedSingle(records)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if !got[0].Estimated || got[0].Reps != 1 || got[0].MaxLoad != 105 {
		t.Errorf("got[0] = %+v, want estimated 1x105", got[0])
	}
	if len(records) != 2 || records[0].Estimated {
		t.Error("input records were modified")
	}

	withSingle := []Record{{Reps: 1, MaxLoad: 100}, {Reps: 5, MaxLoad: 90}}
	if got := WithEstimatedSingle(withSingle); len(got) != 2 || got[0].Estimated {
		t.Errorf("true single should not be overridden: %+v", got)
	}
	if got := WithEstimatedSingle(nil); len(got) != 0 {
		t.Errorf("empty input = %+v, want empty", got)
	}
}

// TestOneRepMaxesTable verifies the lowercase exercise table skips empty records.
func TestOneRepMaxesTable(t *testing.T) {
	table := OneRepMaxes(map[string][]Record{
		"Bench": {{Reps: 5, MaxLoad: 90}},
		"row":   {},
	})
	if math.Round(table["bench"]) != 105 {
		t.Errorf("bench 1RM = %v, want 105", table["bench"])
	}
	if _, ok := table["row"]; ok {
		t.Error("row without records should be absent")
	}
}

// TestResolve verifies absolute pass-through and relative percentage conversion.
func TestResolve(t *testing.T) {
	table := map[string]float64{"bench": 105}

	abs := Resolve("Bench", 135, false, table)
	if abs.CalculatedLoad != 135 || abs.OriginalLoad != 135 {
		t.Errorf("absolute = %+v, want 135/135", abs)
	}

	rel := Resolve("BENCH", 80, true, table)
	if rel.CalculatedLoad != 84 || rel.OriginalLoad != 80 {
		t.Errorf("relative = %+v, want 84/80", rel)
	}

	missing := Resolve("Squat", 80, true, table)
	if missing.CalculatedLoad != 0 || missing.OriginalLoad != 80 {
		t.Errorf("missing = %+v, want 0/80", missing)
	}
}
