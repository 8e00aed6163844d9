package engine

import (
	"fmt"
	"time"
)

// LearningConfig controls when the scheduler retrains one model. It is fixed
// at registration time and read-only afterwards; replacing a model's config
// means unregistering and registering again.
type LearningConfig struct {
	// MinSamples is the minimum number of queued examples before a retrain
	// is allowed. It also sizes the drift evaluation window.
	MinSamples int `json:"min_samples"`

	// Interval is the minimum wall-clock spacing between retrain attempts.
	Interval time.Duration `json:"interval"`

	// MaxQueueSize bounds the training queue. The oldest examples are
	// evicted first when the queue is full.
	MaxQueueSize int `json:"max_queue_size"`

	// DriftDetection gates retraining on a detected distribution shift.
	// When false every eligible retrain proceeds unconditionally.
	DriftDetection bool `json:"drift_detection"`

	// DriftThreshold is the relative increase in mean absolute residual
	// (over the post-training baseline) that counts as drift, in [0, 1].
	DriftThreshold float64 `json:"drift_threshold"`
}

// DefaultLearningConfig returns the process-wide defaults: retrain at most
// once a minute once 100 examples have accumulated.
func DefaultLearningConfig() LearningConfig {
	return LearningConfig{
		MinSamples:     100,
		Interval:       60 * time.Second,
		MaxQueueSize:   10000,
		DriftDetection: true,
		DriftThreshold: 0.25,
	}
}

// FrequentUpdatesConfig returns a preset tuned for fast-moving data: small
// batches, short spacing, a more sensitive drift threshold.
func FrequentUpdatesConfig() LearningConfig {
	return LearningConfig{
		MinSamples:     10,
		Interval:       10 * time.Second,
		MaxQueueSize:   10000,
		DriftDetection: true,
		DriftThreshold: 0.1,
	}
}

// Validate rejects configs the scheduler cannot honor.
func (c LearningConfig) Validate() error {
	if c.MinSamples < 2 {
		return fmt.Errorf("min_samples must be at least 2, got %d", c.MinSamples)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.MaxQueueSize < c.MinSamples {
		return fmt.Errorf("max_queue_size %d is smaller than min_samples %d", c.MaxQueueSize, c.MinSamples)
	}
	if c.DriftThreshold < 0 || c.DriftThreshold > 1 {
		return fmt.Errorf("drift_threshold must be in [0, 1], got %g", c.DriftThreshold)
	}
	return nil
}
