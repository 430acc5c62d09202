// Package metrics holds the Prometheus collectors for the diagnostic
// pipeline. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "paesdiag"

// Metrics groups every collector the service exports.
type Metrics struct {
	analysisDuration  *prometheus.HistogramVec
	analyses          *prometheus.CounterVec
	routesPerAnalysis prometheus.Histogram
	masteryRecords    *prometheus.CounterVec
	dataWarnings      *prometheus.CounterVec
	completions       *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// analysisDuration measures a full learning-potential analysis.
		// Labels: outcome (ok, error)
		analysisDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Learning potential analysis latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"outcome"}),

		analyses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "total",
			Help:      "Learning potential analyses by outcome",
		}, []string{"outcome"}),

		routesPerAnalysis: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "routes",
			Help:      "Number of learning routes produced per analysis",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		}),

		// masteryRecords counts persisted mastery rows.
		// Labels: status (mastered, not_mastered, not_started)
		masteryRecords: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mastery",
			Name:      "records_saved_total",
			Help:      "Mastery records written to the store",
		}, []string{"status"}),

		// dataWarnings counts reference-data problems tolerated at runtime.
		// Labels: kind (dangling_prerequisite, unknown_atom_link, graph_integrity,
		// unknown_axis, duplicate_question)
		dataWarnings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reference",
			Name:      "warnings_total",
			Help:      "Reference data integrity warnings",
		}, []string{"kind"}),

		completions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "diagnostic",
			Name:      "completions_total",
			Help:      "Completed diagnostics by status and route",
		}, []string{"status", "route"}),
	}
}

// ObserveAnalysis records one analysis.
func (m *Metrics) ObserveAnalysis(d time.Duration, err error, routes int) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.analysisDuration.WithLabelValues(outcome).Observe(d.Seconds())
	m.analyses.WithLabelValues(outcome).Inc()
	if err == nil {
		m.routesPerAnalysis.Observe(float64(routes))
	}
}

// AddMasteryRecords counts n saved records with the given status.
func (m *Metrics) AddMasteryRecords(status string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.masteryRecords.WithLabelValues(status).Add(float64(n))
}

// DataWarning counts n reference-data problems of kind.
func (m *Metrics) DataWarning(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.dataWarnings.WithLabelValues(kind).Add(float64(n))
}

// Completion counts a finished diagnostic.
func (m *Metrics) Completion(status, route string) {
	if m == nil {
		return
	}
	m.completions.WithLabelValues(status, route).Inc()
}
