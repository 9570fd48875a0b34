package metrics

import (
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// Namespace prefixes every metric name.
const Namespace = "medboot"

// Metrics records bootstrap activity. A nil *Metrics is valid and records
// nothing, so library callers need not wire one.
type Metrics struct {
	registry   *prometheus.Registry
	runs       *prometheus.CounterVec
	iterations prometheus.Counter
	failed     prometheus.Counter
	duration   *prometheus.HistogramVec
	heap       prometheus.Gauge
	handler    http.Handler
}

// NewMetrics creates a Metrics with its own registry, including the Go
// runtime collector.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Bootstrap runs by execution mode and outcome.",
		}, []string{"mode", "outcome"}),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "iterations_total",
			Help:      "Completed bootstrap iterations.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "iterations_failed_total",
			Help:      "Bootstrap iterations whose estimation failed.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of bootstrap runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"mode"}),
		heap: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "heap_alloc_bytes",
			Help:      "Heap bytes in use after the last run.",
		}),
	}
	reg.MustRegister(m.runs, m.iterations, m.failed, m.duration, m.heap, collectors.NewGoCollector())
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m
}

// IterationDone counts one completed iteration.
func (m *Metrics) IterationDone() {
	if m == nil {
		return
	}
	m.iterations.Inc()
}

// IterationFailed counts one failed iteration.
func (m *Metrics) IterationFailed() {
	if m == nil {
		return
	}
	m.failed.Inc()
}

// ObserveRun records the outcome of a run.
func (m *Metrics) ObserveRun(mode string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.runs.WithLabelValues(mode, outcome).Inc()
	m.duration.WithLabelValues(mode).Observe(d.Seconds())
}

// ObserveMemory publishes a memory snapshot.
func (m *Metrics) ObserveMemory(s MemorySnapshot) {
	if m == nil {
		return
	}
	m.heap.Set(float64(s.HeapAlloc))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WritePrometheus serves the metrics in the Prometheus exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// WriteText writes every metric family in the text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
