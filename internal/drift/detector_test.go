package drift

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateWithoutBaseline(t *testing.T) {
	d := NewDetector(0.25)

	report := d.Evaluate([]float64{1, -1, 2})
	assert.False(t, report.Drifted)
	assert.Zero(t, report.Score)
	assert.InDelta(t, 4.0/3.0, report.WindowMAE, 1e-9)
}

func TestEvaluateEmptyWindow(t *testing.T) {
	d := NewDetector(0.25)
	d.SetBaseline(1.0)

	report := d.Evaluate(nil)
	assert.False(t, report.Drifted)
}

func TestStableResidualsDoNotDrift(t *testing.T) {
	d := NewDetector(0.25)
	d.SetBaseline(1.0)

	// Window MAE 1.1 is a 10% increase, below the 25% threshold.
	report := d.Evaluate([]float64{1.1, -1.1, 1.1, -1.1})
	assert.False(t, report.Drifted)
	assert.InDelta(t, 0.1, report.Score, 1e-9)
}

func TestShiftedResidualsDrift(t *testing.T) {
	d := NewDetector(0.25)
	d.SetBaseline(1.0)

	report := d.Evaluate([]float64{2, -2, 2, -2})
	assert.True(t, report.Drifted)
	assert.Equal(t, 1.0, report.Score, "relative increase is clamped to 1")
	assert.InDelta(t, 2.0, report.WindowMAE, 1e-9)
	assert.InDelta(t, 1.0, report.BaselineMAE, 1e-9)
}

func TestImprovedResidualsScoreZero(t *testing.T) {
	d := NewDetector(0.25)
	d.SetBaseline(1.0)

	report := d.Evaluate([]float64{0.5, -0.5})
	assert.False(t, report.Drifted)
	assert.Zero(t, report.Score)
}

func TestZeroBaselineUsesFloor(t *testing.T) {
	d := NewDetector(0.25)
	d.SetBaseline(0)

	// Any nonzero residual on a perfect-fit baseline is drift.
	report := d.Evaluate([]float64{0.01})
	assert.True(t, report.Drifted)
	assert.Equal(t, 1.0, report.Score)
}

func TestResetClearsBaseline(t *testing.T) {
	d := NewDetector(0.25)
	d.SetBaseline(1.0)
	d.Reset()

	report := d.Evaluate([]float64{100})
	assert.False(t, report.Drifted)
}

func TestMAE(t *testing.T) {
	assert.Zero(t, MAE(nil))
	assert.InDelta(t, 1.5, MAE([]float64{1, -2}), 1e-9)
}
