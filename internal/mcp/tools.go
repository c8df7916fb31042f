package mcp

import (
	"context"
	"errors"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jbrinkw/coachbyte/internal/calendar"
	"github.com/jbrinkw/coachbyte/internal/coach"
	"github.com/jbrinkw/coachbyte/internal/models"
)

// defaultHistoryDays is the get_recent_history window when none is given.
const defaultHistoryDays = 7

// --- Tool definitions ---

var toolNewDailyPlan = mcp.NewTool("new_daily_plan",
	mcp.WithDescription("Add planned sets to today's queue. Sets with order 0 are appended, -1 prepends. A relative set's load is a percentage of the exercise's estimated 1RM."),
	mcp.WithArray("items", mcp.Required(),
		mcp.Description("Sets to plan"),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"exercise": map[string]any{"type": "string"},
				"reps":     map[string]any{"type": "integer", "minimum": 1, "maximum": 100},
				"load":     map[string]any{"type": "number", "minimum": 0},
				"rest":     map[string]any{"type": "integer", "minimum": 0, "maximum": 600, "description": "Rest after the set in seconds. Defaults to 60."},
				"order":    map[string]any{"type": "integer", "description": "Queue position. 0 appends, -1 prepends."},
				"relative": map[string]any{"type": "boolean", "description": "Load is a percentage of 1RM."},
			},
			"required": []string{"exercise", "reps", "load"},
		}),
	),
)

var toolGetTodayPlan = mcp.NewTool("get_today_plan",
	mcp.WithDescription("List today's remaining planned sets in queue order with resolved loads. Applies the weekly split first when today has no sets."),
)

var toolCompleteNextSet = mcp.NewTool("complete_next_set",
	mcp.WithDescription("Complete the next queued set, optionally the next one for a given exercise, and start the rest timer for the set after it."),
	mcp.WithString("exercise", mcp.Description("Only complete the next set of this exercise")),
	mcp.WithNumber("reps", mcp.Description("Reps actually done. Defaults to the planned reps.")),
	mcp.WithNumber("load", mcp.Description("Load actually lifted. Defaults to the resolved planned load.")),
)

var toolLogCompletedSet = mcp.NewTool("log_completed_set",
	mcp.WithDescription("Record an extra set that was not in today's plan. Does not touch the queue or the timer."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Reps done")),
	mcp.WithNumber("load", mcp.Required(), mcp.Description("Load lifted")),
)

var toolUpdateSummary = mcp.NewTool("update_summary",
	mcp.WithDescription("Set the free-text summary for today's log."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Summary text")),
)

var toolGetRecentHistory = mcp.NewTool("get_recent_history",
	mcp.WithDescription("Planned versus completed sets for the last N days, newest first. Ad-hoc sets have no planned fields."),
	mcp.WithNumber("days", mcp.Description("Number of days including today (1-365). Defaults to 7.")),
)

var toolUpdateWeeklySplitDay = mcp.NewTool("update_weekly_split_day",
	mcp.WithDescription("Replace every template set for one weekday. An empty list clears the day."),
	mcp.WithString("day", mcp.Required(), mcp.Description("Weekday name (monday) or index (0=Sunday..6=Saturday)")),
	mcp.WithArray("items", mcp.Required(),
		mcp.Description("Template sets in order"),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"exercise": map[string]any{"type": "string"},
				"reps":     map[string]any{"type": "integer", "minimum": 1, "maximum": 100},
				"load":     map[string]any{"type": "number", "minimum": 0},
				"rest":     map[string]any{"type": "integer", "minimum": 0, "maximum": 600},
				"order":    map[string]any{"type": "integer"},
				"relative": map[string]any{"type": "boolean"},
			},
			"required": []string{"exercise", "reps", "load"},
		}),
	),
)

var toolGetWeeklySplit = mcp.NewTool("get_weekly_split",
	mcp.WithDescription("Get the weekly split template, optionally for one weekday."),
	mcp.WithString("day", mcp.Description("Weekday name or index. Omit for the whole week.")),
)

var toolSetTimer = mcp.NewTool("set_timer",
	mcp.WithDescription("Start the rest timer for a number of minutes, replacing any running timer."),
	mcp.WithNumber("minutes", mcp.Required(), mcp.Description("Duration in minutes (1-180)")),
)

var toolGetTimer = mcp.NewTool("get_timer",
	mcp.WithDescription("Get the rest timer state: running with seconds remaining, expired with seconds since expiry, or no_timer."),
)

var toolGetPRs = mcp.NewTool("get_prs",
	mcp.WithDescription("Personal records for tracked exercises: best load per rep count. Exercises without a true single get an estimated 1-rep record."),
)

// --- Tool handlers ---

// toolError converts an engine error into a tool result. Validation and
// not-found errors are the caller's problem and are not logged.
func (h *handlers) toolError(tool string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, coach.ErrValidation), errors.Is(err, coach.ErrNotFound), errors.Is(err, coach.ErrConflict):
	default:
		h.log.Error("mcp "+tool, "error", err)
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) *mcp.CallToolResult {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed")
	}
	return result
}

func (h *handlers) newDailyPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Items []models.PlannedSetInput `json:"items"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	if len(args.Items) == 0 {
		return mcp.NewToolResultError("items must not be empty"), nil
	}

	ids, err := h.ds.AddTodayPlan(ctx, args.Items)
	if err != nil {
		return h.toolError("new_daily_plan", err), nil
	}
	return jsonResult(map[string]any{"added": len(ids), "ids": ids}), nil
}

func (h *handlers) getTodayPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plan, err := h.ds.TodayPlan(ctx)
	if err != nil {
		return h.toolError("get_today_plan", err), nil
	}
	return jsonResult(plan), nil
}

func (h *handlers) completeNextSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := models.CompleteNextInput{Exercise: req.GetString("exercise", "")}
	args := req.GetArguments()
	if _, ok := args["reps"]; ok {
		reps := req.GetInt("reps", 0)
		in.Reps = &reps
	}
	if _, ok := args["load"]; ok {
		load := req.GetFloat("load", 0)
		in.Load = &load
	}

	res, err := h.ds.CompleteNext(ctx, in)
	if err != nil {
		return h.toolError("complete_next_set", err), nil
	}
	return jsonResult(res), nil
}

func (h *handlers) logCompletedSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	reps, err := req.RequireInt("reps")
	if err != nil {
		return mcp.NewToolResultError("reps parameter is required"), nil
	}
	load, err := req.RequireFloat("load")
	if err != nil {
		return mcp.NewToolResultError("load parameter is required"), nil
	}

	set, err := h.ds.LogTodaySet(ctx, exercise, reps, load)
	if err != nil {
		return h.toolError("log_completed_set", err), nil
	}
	return jsonResult(set), nil
}

func (h *handlers) updateSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	id, err := h.ds.UpdateTodaySummary(ctx, text)
	if err != nil {
		return h.toolError("update_summary", err), nil
	}
	return jsonResult(map[string]any{"id": id, "summary": text}), nil
}

func (h *handlers) getRecentHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := req.GetInt("days", defaultHistoryDays)

	rows, err := h.ds.RecentHistory(ctx, days)
	if err != nil {
		return h.toolError("get_recent_history", err), nil
	}
	return jsonResult(rows), nil
}

func (h *handlers) updateWeeklySplitDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Day   any                    `json:"day"`
		Items []models.SplitSetInput `json:"items"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	weekday, err := parseDayArg(args.Day)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sets, err := h.ds.ReplaceSplitDay(ctx, weekday, args.Items)
	if err != nil {
		return h.toolError("update_weekly_split_day", err), nil
	}
	return jsonResult(map[string]any{
		"day":  calendar.WeekdayName(weekday),
		"sets": sets,
	}), nil
}

func (h *handlers) getWeeklySplit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var weekday *int
	if v := req.GetString("day", ""); v != "" {
		day, err := calendar.ParseWeekday(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		weekday = &day
	}

	sets, err := h.ds.SplitTemplate(ctx, weekday)
	if err != nil {
		return h.toolError("get_weekly_split", err), nil
	}
	return jsonResult(sets), nil
}

func (h *handlers) setTimer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	minutes, err := req.RequireInt("minutes")
	if err != nil {
		return mcp.NewToolResultError("minutes parameter is required"), nil
	}

	status, err := h.ds.SetTimerMinutes(ctx, minutes)
	if err != nil {
		return h.toolError("set_timer", err), nil
	}
	return jsonResult(status), nil
}

func (h *handlers) getTimer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := h.ds.TimerStatus(ctx)
	if err != nil {
		return h.toolError("get_timer", err), nil
	}
	return jsonResult(status), nil
}

func (h *handlers) getPRs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.ds.DisplayPRs(ctx)
	if err != nil {
		return h.toolError("get_prs", err), nil
	}
	return jsonResult(records), nil
}

// parseDayArg accepts a weekday as a name, a numeric string or a JSON number.
func parseDayArg(v any) (int, error) {
	switch d := v.(type) {
	case string:
		return calendar.ParseWeekday(d)
	case float64:
		return calendar.ParseWeekday(strconv.Itoa(int(d)))
	case nil:
		return 0, errors.New("day parameter is required")
	default:
		return 0, errors.New("day must be a weekday name or index")
	}
}
