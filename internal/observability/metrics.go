package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "utei"

// Metrics holds the Prometheus collectors for one pipeline run.
type Metrics struct {
	registry *prometheus.Registry

	RowsLoaded  *prometheus.CounterVec // labels: table={training,prediction}
	RowsDropped *prometheus.CounterVec // labels: table={training,prediction}
	RowsScored  prometheus.Counter
	StageErrors *prometheus.CounterVec // labels: stage

	StageDuration *prometheus.HistogramVec // labels: stage

	// Training fit quality, measured on the training rows.
	TrainRMSE        prometheus.Gauge
	TrainMAE         prometheus.Gauge
	TrainR2          prometheus.Gauge
	ModelCoefficient *prometheus.GaugeVec // labels: feature

	LastSuccess prometheus.Gauge
}

// NewMetrics creates the pipeline metrics on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Rows read from an input table, after cleaning.",
		}, []string{"table"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows discarded during cleaning because of missing values.",
		}, []string{"table"}),
		RowsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_scored_total",
			Help:      "Prediction rows with a UTEI value.",
		}),
		StageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Pipeline stage failures.",
		}, []string{"stage"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		TrainRMSE: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "train_rmse",
			Help:      "Root mean squared error of the model on its training rows.",
		}),
		TrainMAE: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "train_mae",
			Help:      "Mean absolute error of the model on its training rows.",
		}),
		TrainR2: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "train_r2",
			Help:      "Coefficient of determination on the training rows.",
		}),
		ModelCoefficient: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_coefficient",
			Help:      "Fitted Lasso coefficient per feature; feature=intercept for the intercept.",
		}, []string{"feature"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		}),
	}

	m.registry.MustRegister(
		m.RowsLoaded,
		m.RowsDropped,
		m.RowsScored,
		m.StageErrors,
		m.StageDuration,
		m.TrainRMSE,
		m.TrainMAE,
		m.TrainR2,
		m.ModelCoefficient,
		m.LastSuccess,
	)

	return m
}

// Registry exposes the collectors, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps the current values in the node-exporter textfile
// format. The write is atomic.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
