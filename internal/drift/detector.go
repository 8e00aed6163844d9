// Package drift detects distribution shift between the data a model was
// trained on and the examples it has seen since.
//
// The statistic is the mean absolute residual (prediction minus label) over
// the most recent window of examples, compared against a baseline recorded
// right after the last successful training. Drift is flagged when the
// relative increase exceeds the configured threshold, so the threshold reads
// as "retrain when the error grew by more than this fraction".
package drift

import (
	"math"
	"sync"
)

// baselineFloor keeps the relative-increase ratio finite when the baseline
// residual is at or near zero (a near-perfect fit).
const baselineFloor = 1e-9

// Report is the outcome of one drift evaluation.
type Report struct {
	// Drifted is true when the relative residual increase exceeded the
	// detector's threshold.
	Drifted bool `json:"drifted"`

	// Score is the relative increase clamped to [0, 1]. Zero means the
	// window residuals match the baseline (or no baseline exists yet).
	Score float64 `json:"score"`

	// WindowMAE is the mean absolute residual over the evaluated window.
	WindowMAE float64 `json:"window_mae"`

	// BaselineMAE is the reference residual recorded after the last
	// successful training, zero when no baseline exists.
	BaselineMAE float64 `json:"baseline_mae"`
}

// Detector holds the rolling baseline for one model. It is safe for
// concurrent use; evaluation and baseline updates are both short critical
// sections over two floats.
type Detector struct {
	mu          sync.Mutex
	threshold   float64
	baseline    float64
	hasBaseline bool
}

// NewDetector creates a detector with the given relative-increase threshold.
func NewDetector(threshold float64) *Detector {
	return &Detector{threshold: threshold}
}

// SetBaseline records the post-training residual level. The scheduler calls
// it after every successful training cycle, so the baseline always reflects
// the data the current version was fitted on.
func (d *Detector) SetBaseline(mae float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.baseline = mae
	d.hasBaseline = true
}

// Reset clears the baseline, e.g. when the model is re-registered.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.baseline = 0
	d.hasBaseline = false
}

// Evaluate scores the given window residuals against the baseline. With no
// baseline or an empty window it reports no drift and lets the caller's
// bootstrap rule decide whether to train.
func (d *Detector) Evaluate(residuals []float64) Report {
	if len(residuals) == 0 {
		return Report{}
	}

	sum := 0.0
	for _, r := range residuals {
		sum += math.Abs(r)
	}
	windowMAE := sum / float64(len(residuals))

	d.mu.Lock()
	baseline, ok := d.baseline, d.hasBaseline
	d.mu.Unlock()

	if !ok {
		return Report{WindowMAE: windowMAE}
	}

	increase := (windowMAE - baseline) / math.Max(baseline, baselineFloor)
	score := increase
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return Report{
		Drifted:     increase > d.threshold,
		Score:       score,
		WindowMAE:   windowMAE,
		BaselineMAE: baseline,
	}
}

// MAE returns the mean absolute value of the residuals, zero for an empty
// slice. Exposed for callers that need the raw statistic to seed a baseline.
func MAE(residuals []float64) float64 {
	if len(residuals) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range residuals {
		sum += math.Abs(r)
	}
	return sum / float64(len(residuals))
}
