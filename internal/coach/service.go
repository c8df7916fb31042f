// Package coach implements the training day engine: one canonical day per
// logical date, lazy template materialization, the planned set queue with
// its completions, PR-based load resolution and the global rest timer.
package coach

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jbrinkw/coachbyte/internal/calendar"
	"github.com/jbrinkw/coachbyte/internal/metrics"
)

// Service exposes the training operations over a Store.
type Service struct {
	store    Store
	loc      *time.Location
	dayStart int
	now      func() time.Time
	metrics  *metrics.Manager
	log      *slog.Logger
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics records engine counters on m.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a Service. loc and dayStartMinutes define the logical day
// boundary; a nil loc uses calendar.DefaultTimezone.
func New(store Store, loc *time.Location, dayStartMinutes int, log *slog.Logger, opts ...Option) *Service {
	if loc == nil {
		if def, err := calendar.LoadLocation(""); err == nil {
			loc = def
		} else {
			loc = time.UTC
		}
	}
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		store:    store,
		loc:      loc,
		dayStart: dayStartMinutes,
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewManager("coachbyte", "engine", prometheus.NewRegistry())
	}
	return s
}

// LogicalToday returns the current logical date.
func (s *Service) LogicalToday() string {
	return calendar.LogicalDate(s.now(), s.loc, s.dayStart)
}
