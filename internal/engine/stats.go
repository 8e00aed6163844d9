package engine

import (
	"fmt"
	"sync/atomic"
	"time"
)

// ModelStats tracks per-model hot counters with atomics so the prediction
// path never takes a lock to record itself.
type ModelStats struct {
	predictions      atomic.Uint64
	predictionErrors atomic.Uint64
	trainingRuns     atomic.Uint64
	trainingFailures atomic.Uint64

	lastPredictionMicros atomic.Int64
	lastTrainingMillis   atomic.Int64
	lastTrainedUnixNano  atomic.Int64

	createdAt time.Time
}

func newModelStats() *ModelStats {
	return &ModelStats{createdAt: time.Now()}
}

func (s *ModelStats) recordPrediction(d time.Duration, err error) {
	if err != nil {
		s.predictionErrors.Add(1)
		return
	}
	s.predictions.Add(1)
	s.lastPredictionMicros.Store(d.Microseconds())
}

func (s *ModelStats) recordTraining(d time.Duration, err error) {
	if err != nil {
		s.trainingFailures.Add(1)
		return
	}
	s.trainingRuns.Add(1)
	s.lastTrainingMillis.Store(d.Milliseconds())
	s.lastTrainedUnixNano.Store(time.Now().UnixNano())
}

// lastTrained returns the time of the last successful training, or the zero
// time if the model has never been trained.
func (s *ModelStats) lastTrained() time.Time {
	ns := s.lastTrainedUnixNano.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// StatsSnapshot is a point-in-time copy of a model's counters.
type StatsSnapshot struct {
	Predictions          uint64    `json:"predictions"`
	PredictionErrors     uint64    `json:"prediction_errors"`
	TrainingRuns         uint64    `json:"training_runs"`
	TrainingFailures     uint64    `json:"training_failures"`
	LastPredictionMicros int64     `json:"last_prediction_us"`
	LastTrainingMillis   int64     `json:"last_training_ms"`
	CreatedAt            time.Time `json:"created_at"`
	UptimeSeconds        int64     `json:"uptime_seconds"`
}

// Snapshot reads all counters without blocking writers.
func (s *ModelStats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Predictions:          s.predictions.Load(),
		PredictionErrors:     s.predictionErrors.Load(),
		TrainingRuns:         s.trainingRuns.Load(),
		TrainingFailures:     s.trainingFailures.Load(),
		LastPredictionMicros: s.lastPredictionMicros.Load(),
		LastTrainingMillis:   s.lastTrainingMillis.Load(),
		CreatedAt:            s.createdAt,
		UptimeSeconds:        int64(time.Since(s.createdAt).Seconds()),
	}
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf("predictions=%d training_runs=%d errors=%d/%d latency=%dus/%dms",
		s.Predictions, s.TrainingRuns,
		s.PredictionErrors, s.TrainingFailures,
		s.LastPredictionMicros, s.LastTrainingMillis)
}
