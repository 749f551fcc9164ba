package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects training metrics on its own registry, so several
// recorders can coexist in one process.
type Recorder struct {
	registry     *prometheus.Registry
	fitAttempts  *prometheus.CounterVec
	fitDuration  *prometheus.HistogramVec
	outcomes     *prometheus.CounterVec
	seriesPoints *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fitAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricecast_fit_attempts_total",
				Help: "Model fit attempts by selection stage and result",
			},
			[]string{"stage", "result"},
		),
		fitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pricecast_fit_duration_seconds",
				Help:    "Duration of model fit attempts in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricecast_training_outcomes_total",
				Help: "Training outcomes per (source, crop) pair",
			},
			[]string{"outcome"},
		),
		seriesPoints: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pricecast_series_points",
				Help: "Number of monthly observations in the last prepared series of a crop",
			},
			[]string{"crop"},
		),
	}
}

// Registry exposes the recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordFitAttempt records one attempt of a selection stage.
func (r *Recorder) RecordFitAttempt(stage string, success bool, took time.Duration) {
	result := "failure"
	if success {
		result = "success"
	}
	r.fitAttempts.WithLabelValues(stage, result).Inc()
	r.fitDuration.WithLabelValues(stage).Observe(took.Seconds())
}

// RecordOutcome records how a (source, crop) pair ended: trained, skipped or failed.
func (r *Recorder) RecordOutcome(outcome string) {
	r.outcomes.WithLabelValues(outcome).Inc()
}

// RecordSeriesPoints records the length of a prepared series.
func (r *Recorder) RecordSeriesPoints(crop string, points int) {
	r.seriesPoints.WithLabelValues(crop).Set(float64(points))
}

// WriteTextfile writes all metrics in the text exposition format, for the
// node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
