package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Completion kinds used as the "kind" label of CounterCompletedSets.
const (
	KindPlanned = "planned"
	KindAdHoc   = "adhoc"
)

type Manager struct {
	// counters
	CounterRequests             *prometheus.CounterVec
	CounterCompletedSets        *prometheus.CounterVec
	CounterDuplicateCompletions prometheus.Counter
	CounterTimerResets          prometheus.Counter
	CounterTimerResetFailures   prometheus.Counter
	CounterDaysMaterialized     prometheus.Counter
	CounterTemplateSetsCloned   prometheus.Counter
	CounterRequestPanics        prometheus.Counter

	// histograms
	HistogramRequestDuration *prometheus.HistogramVec
}

// NewRegistry returns a registry with build info, Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewTestManager() *Manager {
	return NewManager("coachbyte", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("coachbyte", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterCompletedSets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "completed_sets",
			Help:      "The total number of recorded set completions",
		}, []string{"kind"}),
		CounterDuplicateCompletions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "duplicate_completions",
			Help:      "Completions of an already completed planned set",
		}),
		CounterTimerResets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "timer_resets",
			Help:      "Rest timer resets triggered by completions",
		}),
		CounterTimerResetFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "timer_reset_failures",
			Help:      "Rest timer resets that failed after a completion",
		}),
		CounterDaysMaterialized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "days_materialized",
			Help:      "Days that received their split template",
		}),
		CounterTemplateSetsCloned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "template_sets_cloned",
			Help:      "Planned sets cloned from the split template",
		}),
		CounterRequestPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_panics",
			Help:      "Requests whose handler panicked",
		}),
		HistogramRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status_code"}),
	}
}

// CompletedSet records one completion of the given kind.
func (m *Manager) CompletedSet(kind string) {
	m.CounterCompletedSets.WithLabelValues(kind).Inc()
}

// Materialized records a template application that cloned n sets.
func (m *Manager) Materialized(n int) {
	if n <= 0 {
		return
	}
	m.CounterDaysMaterialized.Inc()
	m.CounterTemplateSetsCloned.Add(float64(n))
}
