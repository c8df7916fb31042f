package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"tailscale.com/client/local"

	"github.com/jbrinkw/coachbyte/internal/coach"
	"github.com/jbrinkw/coachbyte/internal/metrics"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc     *coach.Service
	metrics *metrics.Manager
	gather  prometheus.Gatherer
	log     *slog.Logger
	ts      *local.Client
	mcp     http.Handler
	router  chi.Router
}

// New creates a new Server. SetTailscale and SetMCP must be called before
// the first request.
func New(svc *coach.Service, m *metrics.Manager, gather prometheus.Gatherer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		svc:     svc,
		metrics: m,
		gather:  gather,
		log:     log,
	}
}

// SetTailscale enables caller identity lookups through the tsnet local client.
func (s *Server) SetTailscale(lc *local.Client) {
	s.ts = lc
}

// SetMCP mounts the streamable HTTP MCP endpoint at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.mcp = h
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	if s.router == nil {
		s.router = chi.NewRouter()
		s.routes()
	}
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler().ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(Recover(s.log, s.metrics))
	if s.metrics != nil {
		s.router.Use(RequestMetrics(s.metrics))
	}
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	if s.ts != nil {
		s.router.Use(TailscaleIdentity(s.ts, s.log))
	} else {
		s.router.Use(DevIdentity)
	}

	s.router.Get("/health", s.handleHealth)
	if s.gather != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	}
	if s.mcp != nil {
		s.router.Handle("/mcp", s.mcp)
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)

		r.Get("/days", s.handleListDays)
		r.Post("/days", s.handleCreateDay)
		r.Get("/days/{id}", s.handleGetDay)
		r.Delete("/days/{id}", s.handleDeleteDay)
		r.Put("/days/{id}/summary", s.handleUpdateSummary)
		r.Post("/days/{id}/plan", s.handleAddPlannedSet)
		r.Post("/days/{id}/completed", s.handleCompleteSet)

		r.Patch("/plan/{id}", s.handleUpdatePlannedSet)
		r.Delete("/plan/{id}", s.handleDeletePlannedSet)
		r.Patch("/completed/{id}", s.handleUpdateCompletedSet)
		r.Delete("/completed/{id}", s.handleDeleteCompletedSet)

		r.Get("/today", s.handleToday)
		r.Get("/today/plan", s.handleTodayPlan)
		r.Post("/today/plan", s.handleAddTodayPlan)
		r.Post("/today/completed", s.handleLogTodaySet)
		r.Put("/today/summary", s.handleUpdateTodaySummary)
		r.Post("/complete-next", s.handleCompleteNext)
		r.Get("/history", s.handleHistory)

		r.Get("/split", s.handleSplit)
		r.Post("/split", s.handleAddSplitSet)
		r.Get("/split/notes", s.handleSplitNotes)
		r.Put("/split/notes", s.handleSetSplitNotes)
		r.Put("/split/day/{weekday}", s.handleReplaceSplitDay)
		r.Patch("/split/{id}", s.handleUpdateSplitSet)
		r.Delete("/split/{id}", s.handleDeleteSplitSet)

		r.Get("/prs", s.handlePRs)
		r.Get("/prs/targets", s.handlePRTargets)
		r.Put("/prs/targets", s.handleUpsertPRTarget)
		r.Delete("/prs/targets", s.handleDeletePRTarget)
		r.Get("/tracked-exercises", s.handleTrackedExercises)
		r.Post("/tracked-exercises", s.handleAddTrackedExercise)
		r.Delete("/tracked-exercises/{name}", s.handleRemoveTrackedExercise)

		r.Get("/timer", s.handleTimer)
		r.Post("/timer", s.handleSetTimer)
	})
}
