package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jbrinkw/coachbyte/internal/calendar"
	"github.com/jbrinkw/coachbyte/internal/models"
)

func (h *handlers) today(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	view, err := h.ds.Today(ctx)
	if err != nil {
		return nil, err
	}

	timer, err := h.ds.TimerStatus(ctx)
	if err != nil {
		h.log.Warn("today resource: timer query failed", "error", err)
	}

	return jsonContents(req.Params.URI, map[string]any{
		"log":       view.Log,
		"plan":      view.Plan,
		"completed": view.Completed,
		"timer":     timer,
	})
}

func (h *handlers) split(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sets, err := h.ds.SplitTemplate(ctx, nil)
	if err != nil {
		return nil, err
	}

	week := make(map[string][]models.SplitSet, 7)
	for _, s := range sets {
		name := calendar.WeekdayName(s.Weekday)
		week[name] = append(week[name], s)
	}
	return jsonContents(req.Params.URI, week)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
