package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PredictionsServed counts predictions by model and outcome (ok/error)
var PredictionsServed = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "continuum_predictions_total",
		Help: "Total number of predictions served by the engine",
	},
	[]string{"model", "outcome"},
)

// PredictionLatency records latency distribution for single predictions
var PredictionLatency = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "continuum_prediction_latency_seconds",
		Help:    "Latency in seconds to serve individual predictions",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
	},
)

// TrainingRuns counts training cycles by model and outcome (ok/failed)
var TrainingRuns = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "continuum_training_runs_total",
		Help: "Total number of training cycles executed by the scheduler",
	},
	[]string{"model", "outcome"},
)

// TrainingDuration records how long training cycles take
var TrainingDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "continuum_training_duration_seconds",
		Help:    "Duration in seconds of model training cycles",
		Buckets: prometheus.DefBuckets,
	},
)

// Drift and queue metrics
var (
	DriftEvaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "continuum_drift_evaluations_total",
			Help: "Total number of drift evaluations by model and verdict",
		},
		[]string{"model", "drifted"},
	)

	TrainingQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "continuum_training_queue_depth",
			Help: "Number of examples currently queued for training",
		},
		[]string{"model"},
	)

	ModelVersion = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "continuum_model_version",
			Help: "Currently published model version number",
		},
		[]string{"model"},
	)

	RegisteredModels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "continuum_registered_models",
			Help: "Number of models currently registered",
		},
	)
)

func init() {
	prometheus.MustRegister(PredictionsServed, PredictionLatency)
	prometheus.MustRegister(TrainingRuns, TrainingDuration)
	prometheus.MustRegister(DriftEvaluations, TrainingQueueDepth, ModelVersion, RegisteredModels)
}
