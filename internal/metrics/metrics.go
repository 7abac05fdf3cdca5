// Package metrics exposes gridbench timings as prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality; nothing is labelled per agent
type Metrics struct {
	Rebuild     prometheus.Histogram
	HashUpdate  prometheus.Histogram
	QueryBatch  prometheus.Histogram
	Neighbours  prometheus.Gauge
	Frames      prometheus.Counter
	HashMisses  prometheus.Counter
	CrossChecks *prometheus.CounterVec
	registry    *prometheus.Registry
}

// New registers a fresh set of metrics on their own registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Rebuild: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridbench_rebuild_duration_seconds",
			Help:    "Time spent rebuilding the fixed size grid snapshot",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		HashUpdate: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridbench_hash_update_duration_seconds",
			Help:    "Time spent moving points in the unbounded spatial hash",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		QueryBatch: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridbench_query_batch_duration_seconds",
			Help:    "Time spent running one frame of radius queries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
		Neighbours: f.NewGauge(prometheus.GaugeOpts{
			Name: "gridbench_neighbours_per_query",
			Help: "Average number of neighbours returned per query in the last frame",
		}),
		Frames: f.NewCounter(prometheus.CounterOpts{
			Name: "gridbench_frames_total",
			Help: "Frames simulated",
		}),
		HashMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "gridbench_hash_update_misses_total",
			Help: "Hash updates whose old position was not found",
		}),
		CrossChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gridbench_cross_checks_total",
			Help: "Grid queries compared against the same query on the hash",
		}, []string{"result"}), // Bounded: "match", "mismatch"
		registry: reg,
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Router serves /metrics and /healthz
func (m *Metrics) Router() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
