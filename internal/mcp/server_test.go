package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jbrinkw/coachbyte/internal/coach"
	"github.com/jbrinkw/coachbyte/internal/models"
	"github.com/jbrinkw/coachbyte/internal/storage/sqlite"
)

var fixedNow = time.Date(2024, 3, 20, 15, 0, 0, 0, time.UTC) // Wednesday

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) *coach.Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coachbyte.db")
	if err := sqlite.RunMigrations(path); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	store, err := sqlite.Open(context.Background(), path, 5*time.Second)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return coach.New(store, time.UTC, 0, quietLogger(),
		coach.WithClock(func() time.Time { return fixedNow }))
}

func newTestHandlers(t *testing.T) (*handlers, *coach.Service) {
	t.Helper()
	svc := newTestService(t)
	return &handlers{ds: svc, log: quietLogger()}, svc
}

type toolFunc func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func call(t *testing.T, fn toolFunc, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := fn(context.Background(), req)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", name, err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	return text.Text
}

func decodeResult[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	var v T
	if err := json.Unmarshal([]byte(resultText(t, res)), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

// TestNewRegistersTools verifies every tool is registered on the server.
func TestNewRegistersTools(t *testing.T) {
	s := New(newTestService(t), "test", quietLogger())
	tools := s.ListTools()
	for _, name := range []string{
		"new_daily_plan", "get_today_plan", "complete_next_set", "log_completed_set",
		"update_summary", "get_recent_history", "update_weekly_split_day",
		"get_weekly_split", "set_timer", "get_timer", "get_prs",
	} {
		if _, ok := tools[name]; !ok {
			t.Errorf("tool %q not registered", name)
		}
	}
	if len(tools) != 11 {
		t.Errorf("registered %d tools, want 11", len(tools))
	}
}

// TestPlanCompleteAndTimer verifies planning, completing the head of the
// queue and the timer reset to the following set's rest.
func TestPlanCompleteAndTimer(t *testing.T) {
	h, _ := newTestHandlers(t)

	res := call(t, h.newDailyPlan, "new_daily_plan", map[string]any{
		"items": []map[string]any{
			{"exercise": "Squat", "reps": 5, "load": 225},
			{"exercise": "Squat", "reps": 5, "load": 225, "rest": 120},
		},
	})
	added := decodeResult[map[string]any](t, res)
	if added["added"] != float64(2) {
		t.Errorf("added = %v, want 2", added["added"])
	}

	plan := decodeResult[[]models.ResolvedSet](t, call(t, h.getTodayPlan, "get_today_plan", nil))
	if len(plan) != 2 || plan[0].CalculatedLoad != 225 {
		t.Fatalf("plan = %+v", plan)
	}

	done := decodeResult[models.CompletionResult](t, call(t, h.completeNextSet, "complete_next_set", nil))
	if done.Completed.RepsDone != 5 || done.Completed.LoadDone != 225 {
		t.Errorf("completed = %+v", done.Completed)
	}
	if !done.TimerSet || done.Next == nil || done.Next.Rest != 120 {
		t.Errorf("result = %+v", done)
	}

	timer := decodeResult[models.TimerStatus](t, call(t, h.getTimer, "get_timer", nil))
	if timer.State != models.TimerRunning || timer.RemainingSeconds != 120 {
		t.Errorf("timer = %+v", timer)
	}
}

// TestCompleteNextOverrides verifies the exercise filter and reps/load
// overrides reach the engine.
func TestCompleteNextOverrides(t *testing.T) {
	h, _ := newTestHandlers(t)
	call(t, h.newDailyPlan, "new_daily_plan", map[string]any{
		"items": []map[string]any{
			{"exercise": "Squat", "reps": 5, "load": 225},
			{"exercise": "Bench Press", "reps": 8, "load": 155},
		},
	})

	done := decodeResult[models.CompletionResult](t, call(t, h.completeNextSet, "complete_next_set", map[string]any{
		"exercise": "bench press",
		"reps":     6,
		"load":     150.5,
	}))
	if done.Completed.Exercise != "Bench Press" {
		t.Errorf("exercise = %q, want Bench Press", done.Completed.Exercise)
	}
	if done.Completed.RepsDone != 6 || done.Completed.LoadDone != 150.5 {
		t.Errorf("completed = %+v", done.Completed)
	}
}

// TestLogSummaryAndHistory verifies ad-hoc logging, the summary and the
// history window default.
func TestLogSummaryAndHistory(t *testing.T) {
	h, _ := newTestHandlers(t)

	set := decodeResult[models.CompletedSet](t, call(t, h.logCompletedSet, "log_completed_set", map[string]any{
		"exercise": "Curl", "reps": 12, "load": 30,
	}))
	if set.PlannedSetID != nil {
		t.Errorf("ad-hoc set has planned id %v", *set.PlannedSetID)
	}

	summary := decodeResult[map[string]any](t, call(t, h.updateSummary, "update_summary", map[string]any{
		"text": "arms",
	}))
	if summary["summary"] != "arms" {
		t.Errorf("summary = %v", summary)
	}

	rows := decodeResult[[]models.HistoryRow](t, call(t, h.getRecentHistory, "get_recent_history", nil))
	if len(rows) != 1 || rows[0].Reps != nil || rows[0].RepsDone == nil || *rows[0].RepsDone != 12 {
		t.Errorf("history = %+v", rows)
	}
}

// TestWeeklySplitTools verifies replacing a weekday by name or number and
// reading it back.
func TestWeeklySplitTools(t *testing.T) {
	h, _ := newTestHandlers(t)

	res := decodeResult[map[string]json.RawMessage](t, call(t, h.updateWeeklySplitDay, "update_weekly_split_day", map[string]any{
		"day": "Monday",
		"items": []map[string]any{
			{"exercise": "Deadlift", "reps": 3, "load": 85, "relative": true},
			{"exercise": "Row", "reps": 10, "load": 135},
		},
	}))
	if string(res["day"]) != `"monday"` {
		t.Errorf("day = %s, want monday", res["day"])
	}

	call(t, h.updateWeeklySplitDay, "update_weekly_split_day", map[string]any{
		"day":   float64(3),
		"items": []map[string]any{{"exercise": "Squat", "reps": 5, "load": 200}},
	})

	monday := decodeResult[[]models.SplitSet](t, call(t, h.getWeeklySplit, "get_weekly_split", map[string]any{"day": "1"}))
	if len(monday) != 2 || !monday[0].Relative || monday[0].OrderNum != 1 || monday[1].OrderNum != 2 {
		t.Errorf("monday = %+v", monday)
	}
	week := decodeResult[[]models.SplitSet](t, call(t, h.getWeeklySplit, "get_weekly_split", nil))
	if len(week) != 3 {
		t.Errorf("week has %d sets, want 3", len(week))
	}

	// fixedNow is a Wednesday, so today's plan picks the template up.
	plan := decodeResult[[]models.ResolvedSet](t, call(t, h.getTodayPlan, "get_today_plan", nil))
	if len(plan) != 1 || plan[0].Exercise != "Squat" {
		t.Errorf("plan = %+v", plan)
	}
}

// TestGetPRsEstimatedSingle verifies get_prs adds an estimated single.
func TestGetPRsEstimatedSingle(t *testing.T) {
	h, svc := newTestHandlers(t)
	ctx := context.Background()
	if err := svc.AddTrackedExercise(ctx, "Bench Press"); err != nil {
		t.Fatal(err)
	}
	call(t, h.logCompletedSet, "log_completed_set", map[string]any{
		"exercise": "Bench Press", "reps": 5, "load": 200,
	})

	records := decodeResult[map[string][]map[string]any](t, call(t, h.getPRs, "get_prs", nil))
	bench := records["bench press"]
	if len(bench) != 2 {
		t.Fatalf("bench = %v, want estimated single plus 5RM", bench)
	}
	if bench[0]["reps"] != float64(1) || bench[0]["estimated"] != true {
		t.Errorf("first record = %v", bench[0])
	}
}

// TestToolErrors verifies rejected input and empty queues come back as tool
// errors rather than protocol errors.
func TestToolErrors(t *testing.T) {
	h, _ := newTestHandlers(t)

	tests := []struct {
		name string
		fn   toolFunc
		args map[string]any
	}{
		{"empty queue", h.completeNextSet, nil},
		{"empty plan", h.newDailyPlan, map[string]any{"items": []map[string]any{}}},
		{"invalid reps", h.newDailyPlan, map[string]any{"items": []map[string]any{{"exercise": "Squat", "reps": 0, "load": 100}}}},
		{"missing exercise", h.logCompletedSet, map[string]any{"reps": 5, "load": 100}},
		{"missing summary", h.updateSummary, map[string]any{}},
		{"history window", h.getRecentHistory, map[string]any{"days": 400}},
		{"bad weekday", h.updateWeeklySplitDay, map[string]any{"day": "someday", "items": []map[string]any{}}},
		{"bad weekday filter", h.getWeeklySplit, map[string]any{"day": "9"}},
		{"timer minutes", h.setTimer, map[string]any{"minutes": 0}},
		{"timer too long", h.setTimer, map[string]any{"minutes": 181}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, tt.fn, tt.name, tt.args)
			if !res.IsError {
				t.Errorf("IsError = false, result %s", resultText(t, res))
			}
		})
	}
}

// TestSetTimerMinutes verifies the minute argument becomes a running timer.
func TestSetTimerMinutes(t *testing.T) {
	h, _ := newTestHandlers(t)
	status := decodeResult[models.TimerStatus](t, call(t, h.setTimer, "set_timer", map[string]any{"minutes": 3}))
	if status.State != models.TimerRunning || status.RemainingSeconds != 180 {
		t.Errorf("status = %+v", status)
	}
}

// TestParseDayArg verifies weekday arguments as names, strings and numbers.
func TestParseDayArg(t *testing.T) {
	tests := []struct {
		in      any
		want    int
		wantErr bool
	}{
		{"sunday", 0, false},
		{"SATURDAY", 6, false},
		{"4", 4, false},
		{float64(2), 2, false},
		{float64(7), 0, true},
		{"", 0, true},
		{nil, 0, true},
		{true, 0, true},
	}
	for _, tt := range tests {
		got, err := parseDayArg(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDayArg(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseDayArg(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// TestResources verifies the today and split resources return JSON.
func TestResources(t *testing.T) {
	h, _ := newTestHandlers(t)
	ctx := context.Background()
	call(t, h.updateWeeklySplitDay, "update_weekly_split_day", map[string]any{
		"day":   "wednesday",
		"items": []map[string]any{{"exercise": "Press", "reps": 5, "load": 95}},
	})

	var req mcp.ReadResourceRequest
	req.Params.URI = "coachbyte://today"
	contents, err := h.today(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	text := contents[0].(mcp.TextResourceContents)
	var today struct {
		Log  models.Day           `json:"log"`
		Plan []models.ResolvedSet `json:"plan"`
	}
	if err := json.Unmarshal([]byte(text.Text), &today); err != nil {
		t.Fatal(err)
	}
	if today.Log.Date != "2024-03-20" || len(today.Plan) != 1 {
		t.Errorf("today = %+v", today)
	}

	req.Params.URI = "coachbyte://split"
	contents, err = h.split(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	var week map[string][]models.SplitSet
	if err := json.Unmarshal([]byte(contents[0].(mcp.TextResourceContents).Text), &week); err != nil {
		t.Fatal(err)
	}
	if len(week["wednesday"]) != 1 {
		t.Errorf("split = %+v", week)
	}
}
