package offtarget

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every offtarget metric. It is private so a CLI run only
// exports its own series.
var Registry = prometheus.NewRegistry()

var (
	factory = promauto.With(Registry)

	toolRuns = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "offtarget_tool_runs_total",
		Help: "External tool invocations by tool and outcome",
	}, []string{"tool", "outcome"})

	toolDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "offtarget_tool_duration_seconds",
		Help:    "Wall time of external tool invocations",
		Buckets: prometheus.ExponentialBuckets(0.1, 4, 8),
	}, []string{"tool"})

	cacheLookups = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "offtarget_cache_lookups_total",
		Help: "Annotation cache lookups by result (hit, miss, error)",
	}, []string{"result"})

	fetches = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "offtarget_fetches_total",
		Help: "Entrez fetches by outcome",
	}, []string{"outcome"})
)

func observeToolRun(tool string, start time.Time, err error) {
	toolDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
	toolRuns.WithLabelValues(tool, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// WriteMetrics writes the registry in Prometheus text format, for node_exporter's textfile collector.
func WriteMetrics(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
