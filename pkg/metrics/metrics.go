// Package metrics exports validation outcomes as Prometheus metrics
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "acidwave"

// Recorder holds the validation metrics. It satisfies validate.Recorder.
type Recorder struct {
	registry *prometheus.Registry

	ValidationsTotal *prometheus.CounterVec
	RewardHistogram  prometheus.Histogram
	ElementChecks    *prometheus.CounterVec
}

// NewRecorder registers the metrics on a fresh registry
func NewRecorder() *Recorder {
	return NewRecorderWithRegistry(prometheus.NewRegistry())
}

func NewRecorderWithRegistry(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		ValidationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Total number of task validations by outcome",
			},
			[]string{"outcome"},
		),

		RewardHistogram: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "validation_reward",
				Help:      "Reward returned by task validations",
				Buckets:   []float64{0, 0.2, 0.4, 0.6, 0.7, 0.8, 0.9, 0.95, 0.98, 1},
			},
		),

		ElementChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "element_checks_total",
				Help:      "Total number of program_html element checks by result",
			},
			[]string{"result"},
		),
	}
}

func (r *Recorder) ObserveValidation(outcome string, reward float64) {
	r.ValidationsTotal.WithLabelValues(outcome).Inc()
	r.RewardHistogram.Observe(reward)
}

func (r *Recorder) ObserveElementCheck(passed bool) {
	result := "failed"
	if passed {
		result = "passed"
	}
	r.ElementChecks.WithLabelValues(result).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteFile writes the metrics in the text exposition format, for the node
// exporter textfile collector
func (r *Recorder) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}

	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to '%s': %w", path, err)
	}

	return nil
}
