// Package prometheus collects and optionally exposes the pipeline's
// operational metrics.  Components record through PipelineMetrics; exposure
// over HTTP is opt-in via Serve so that purely local batch runs carry no
// network surface.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// namespace prefixes every metric emitted by the pipeline.
const namespace = "chemconf"

// PipelineMetrics holds all conformer-pipeline metrics.
type PipelineMetrics struct {
	// Sampling
	ConformersGenerated *prometheus.CounterVec // raw candidates, by strategy
	ConformersAccepted  prometheus.Counter     // passed the uniqueness filter
	ConformersRejected  prometheus.Counter     // rejected as duplicates
	SamplingDuration    *prometheus.HistogramVec
	SamplingFailures    *prometheus.CounterVec

	// Refinement
	RefinementsTotal   *prometheus.CounterVec // by method and outcome
	RefinementDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// Sampling and refinement run from sub-second toy systems to hour-scale
// batch jobs, hence the wide bucket spread.
var durationBuckets = []float64{.1, .5, 1, 5, 10, 30, 60, 300, 600, 1800, 3600}

// NewPipelineMetrics registers all pipeline metrics on a fresh registry and
// returns the populated struct.
func NewPipelineMetrics() *PipelineMetrics {
	reg := prometheus.NewRegistry()
	factory := func(name, help string, labels ...string) *prometheus.CounterVec {
		cv := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
		reg.MustRegister(cv)
		return cv
	}

	m := &PipelineMetrics{registry: reg}

	m.ConformersGenerated = factory("conformers_generated_total",
		"Candidate conformer geometries produced, before uniqueness filtering", "strategy")
	m.SamplingFailures = factory("sampling_failures_total",
		"Failed conformer sampling batches", "strategy")
	m.RefinementsTotal = factory("refinements_total",
		"Geometry refinement calls", "method", "outcome")

	m.ConformersAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conformers_accepted_total",
		Help:      "Conformers accepted by the uniqueness filter",
	})
	m.ConformersRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conformers_rejected_total",
		Help:      "Conformers rejected as RMSD duplicates",
	})
	reg.MustRegister(m.ConformersAccepted, m.ConformersRejected)

	m.SamplingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sampling_duration_seconds",
		Help:      "Wall time of a full conformer generation pass",
		Buckets:   durationBuckets,
	}, []string{"strategy"})
	m.RefinementDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "refinement_duration_seconds",
		Help:      "Wall time of a single refinement engine call",
		Buckets:   durationBuckets,
	}, []string{"method"})
	reg.MustRegister(m.SamplingDuration, m.RefinementDuration)

	return m
}

// Gather exposes the underlying registry's gather function for tests.
func (m *PipelineMetrics) Gather() ([]*dto.MetricFamily, error) {
	return m.registry.Gather()
}

// Handler returns the HTTP handler serving this registry in the Prometheus
// exposition format.
func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts a blocking HTTP listener exposing /metrics on addr.  Callers
// run it in a goroutine; errors after startup are returned, matching
// http.ListenAndServe semantics.
func (m *PipelineMetrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return http.ListenAndServe(addr, mux)
}
