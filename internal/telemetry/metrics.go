// Package telemetry exposes Prometheus instrumentation for the feature
// pipeline and the splitters.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Registry holds the puckcast Prometheus collectors.
type Registry struct {
	PassDuration *prometheus.HistogramVec

	RowsProcessed       prometheus.Counter
	FeaturesAdded       *prometheus.CounterVec
	MalformedTimestamps prometheus.Counter

	PipelineRuns   prometheus.Counter
	PipelineErrors *prometheus.CounterVec
	SplitsTotal    *prometheus.CounterVec
}

// NewRegistry creates the collectors. Call Register to attach them to a
// Prometheus registerer.
func NewRegistry() *Registry {
	return &Registry{
		PassDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "puckcast_pass_duration_seconds",
				Help:    "Duration of each feature pass in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"pass", "phase"},
		),

		RowsProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "puckcast_rows_processed_total",
				Help: "Total rows consumed by pipeline runs",
			},
		),

		FeaturesAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "puckcast_features_added_total",
				Help: "Total feature columns produced, by pass",
			},
			[]string{"pass"},
		),

		MalformedTimestamps: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "puckcast_malformed_timestamps_total",
				Help: "Rows excluded from grouped series due to unparsable timestamps",
			},
		),

		PipelineRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "puckcast_pipeline_runs_total",
				Help: "Total pipeline runs initiated",
			},
		),

		PipelineErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "puckcast_pipeline_errors_total",
				Help: "Total pipeline errors, by pass",
			},
			[]string{"pass"},
		),

		SplitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "puckcast_splits_total",
				Help: "Total fold sets produced, by splitter kind",
			},
			[]string{"kind"},
		),
	}
}

// Register attaches every collector to the given registerer.
func (r *Registry) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		r.PassDuration,
		r.RowsProcessed,
		r.FeaturesAdded,
		r.MalformedTimestamps,
		r.PipelineRuns,
		r.PipelineErrors,
		r.SplitsTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
