package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jbrinkw/coachbyte/internal/coach"
	"github.com/jbrinkw/coachbyte/internal/models"
	"github.com/jbrinkw/coachbyte/internal/prs"
)

// HTTPClient implements DataSource by calling the CoachByte REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the engine runs on the server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, in, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("httpclient: encode %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w: %w", path, coach.ErrStoreUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(path, resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

// statusError maps an error response back to the engine's sentinel errors so
// tool handlers treat remote and local failures alike.
func statusError(path string, code int, body []byte) error {
	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}

	var sentinel error
	switch code {
	case http.StatusBadRequest:
		sentinel = coach.ErrValidation
	case http.StatusNotFound:
		sentinel = coach.ErrNotFound
	case http.StatusConflict:
		sentinel = coach.ErrConflict
	case http.StatusServiceUnavailable:
		sentinel = coach.ErrStoreUnavailable
	default:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, code, msg)
	}
	return &remoteError{msg: msg, sentinel: sentinel}
}

// remoteError carries the server's message while matching the sentinel.
type remoteError struct {
	msg      string
	sentinel error
}

func (e *remoteError) Error() string { return e.msg }

func (e *remoteError) Is(target error) bool { return target == e.sentinel }

func (c *HTTPClient) Today(ctx context.Context) (*models.DayView, error) {
	var view models.DayView
	if err := c.do(ctx, http.MethodGet, "/api/v1/today", nil, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *HTTPClient) TodayPlan(ctx context.Context) ([]models.ResolvedSet, error) {
	var plan []models.ResolvedSet
	if err := c.do(ctx, http.MethodGet, "/api/v1/today/plan", nil, nil, &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (c *HTTPClient) AddTodayPlan(ctx context.Context, items []models.PlannedSetInput) ([]int64, error) {
	var resp struct {
		IDs []int64 `json:"ids"`
	}
	in := map[string]any{"items": items}
	if err := c.do(ctx, http.MethodPost, "/api/v1/today/plan", nil, in, &resp); err != nil {
		return nil, err
	}
	return resp.IDs, nil
}

func (c *HTTPClient) CompleteNext(ctx context.Context, in models.CompleteNextInput) (*models.CompletionResult, error) {
	var res models.CompletionResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/complete-next", nil, in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) LogTodaySet(ctx context.Context, exercise string, reps int, load float64) (*models.CompletedSet, error) {
	in := map[string]any{"exercise": exercise, "reps_done": reps, "load_done": load}
	var set models.CompletedSet
	if err := c.do(ctx, http.MethodPost, "/api/v1/today/completed", nil, in, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

func (c *HTTPClient) UpdateTodaySummary(ctx context.Context, summary string) (uuid.UUID, error) {
	var resp struct {
		ID uuid.UUID `json:"id"`
	}
	in := map[string]string{"summary": summary}
	if err := c.do(ctx, http.MethodPut, "/api/v1/today/summary", nil, in, &resp); err != nil {
		return uuid.Nil, err
	}
	return resp.ID, nil
}

func (c *HTTPClient) RecentHistory(ctx context.Context, days int) ([]models.HistoryRow, error) {
	params := url.Values{}
	params.Set("days", strconv.Itoa(days))

	var rows []models.HistoryRow
	if err := c.do(ctx, http.MethodGet, "/api/v1/history", params, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *HTTPClient) SplitTemplate(ctx context.Context, weekday *int) ([]models.SplitSet, error) {
	params := url.Values{}
	if weekday != nil {
		params.Set("weekday", strconv.Itoa(*weekday))
	}

	var sets []models.SplitSet
	if err := c.do(ctx, http.MethodGet, "/api/v1/split", params, nil, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (c *HTTPClient) ReplaceSplitDay(ctx context.Context, weekday int, items []models.SplitSetInput) ([]models.SplitSet, error) {
	if items == nil {
		items = []models.SplitSetInput{}
	}
	var sets []models.SplitSet
	path := "/api/v1/split/day/" + strconv.Itoa(weekday)
	if err := c.do(ctx, http.MethodPut, path, nil, map[string]any{"items": items}, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// SetTimerMinutes checks the minute range locally since the REST endpoint
// takes seconds and clamps instead of rejecting.
func (c *HTTPClient) SetTimerMinutes(ctx context.Context, minutes int) (*models.TimerStatus, error) {
	if minutes < 1 || minutes > coach.MaxTimerMinutes {
		return nil, fmt.Errorf("%w: minutes must be between 1 and %d, got %d",
			coach.ErrValidation, coach.MaxTimerMinutes, minutes)
	}
	var status models.TimerStatus
	in := map[string]int{"seconds": minutes * 60}
	if err := c.do(ctx, http.MethodPost, "/api/v1/timer", nil, in, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *HTTPClient) TimerStatus(ctx context.Context) (*models.TimerStatus, error) {
	var status models.TimerStatus
	if err := c.do(ctx, http.MethodGet, "/api/v1/timer", nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *HTTPClient) DisplayPRs(ctx context.Context) (map[string][]prs.Record, error) {
	params := url.Values{}
	params.Set("estimated", "true")

	records := map[string][]prs.Record{}
	if err := c.do(ctx, http.MethodGet, "/api/v1/prs", params, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

