package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func column(xs ...float64) [][]float64 {
	rows := make([][]float64, len(xs))
	for i, x := range xs {
		rows[i] = []float64{x}
	}
	return rows
}

func TestLinearFitRecoversLine(t *testing.T) {
	variant, err := New(KindLinear)
	require.NoError(t, err)

	// y = 2x + 3
	features := column(1, 2, 3, 4)
	targets := []float64{5, 7, 9, 11}

	fitted, err := variant.Fit(features, targets, Parameters{
		WithBias:      true,
		LearningRate:  0.05,
		MaxIterations: 5000,
	})
	require.NoError(t, err)

	assert.InDelta(t, 2.0, fitted.Weights()[0], 0.1)
	assert.InDelta(t, 3.0, fitted.Bias(), 0.2)

	pred, err := fitted.Predict([]float64{5})
	require.NoError(t, err)
	assert.InDelta(t, 13.0, pred, 0.3)
}

func TestLinearFitWithoutBias(t *testing.T) {
	variant, _ := New(KindLinear)

	// y = 2x, no intercept
	fitted, err := variant.Fit(column(1, 2, 3, 4), []float64{2, 4, 6, 8}, Parameters{
		WithBias:      false,
		LearningRate:  0.05,
		MaxIterations: 5000,
	})
	require.NoError(t, err)

	assert.InDelta(t, 2.0, fitted.Weights()[0], 0.05)
	assert.InDelta(t, 0.0, fitted.Bias(), 1e-9)

	pred, err := fitted.Predict([]float64{5})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, pred, 0.2)
}

func TestLinearFitMultidimensional(t *testing.T) {
	variant, _ := New(KindLinear)

	// y = 1 + 2*x1 + 3*x2
	features := [][]float64{{1, 1}, {2, 1}, {1, 2}, {2, 2}, {3, 1}, {1, 3}}
	targets := []float64{6, 8, 9, 11, 10, 12}

	fitted, err := variant.Fit(features, targets, Parameters{
		WithBias:      true,
		LearningRate:  0.05,
		MaxIterations: 10000,
	})
	require.NoError(t, err)
	require.Equal(t, 2, fitted.Dimension())

	pred, err := fitted.Predict([]float64{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 19.0, pred, 0.5)
}

func TestLinearFitRejectsTinyBatches(t *testing.T) {
	variant, _ := New(KindLinear)

	_, err := variant.Fit(nil, nil, DefaultParameters())
	assert.ErrorIs(t, err, ErrTrainingFailed)

	_, err = variant.Fit(column(1), []float64{2}, DefaultParameters())
	assert.ErrorIs(t, err, ErrTrainingFailed)
}

func TestLinearFitRejectsRaggedRows(t *testing.T) {
	variant, _ := New(KindLinear)

	_, err := variant.Fit([][]float64{{1, 2}, {3}}, []float64{1, 2}, DefaultParameters())
	assert.ErrorIs(t, err, ErrTrainingFailed)
}

func TestLinearFitDetectsDivergence(t *testing.T) {
	variant, _ := New(KindLinear)

	// A learning rate far above the stability limit blows the weights up to
	// infinity; the fit must surface that as a training failure, not a panic.
	_, err := variant.Fit(column(100, 200, 300, 400), []float64{1, 2, 3, 4}, Parameters{
		LearningRate:  10,
		MaxIterations: 1000,
	})
	assert.ErrorIs(t, err, ErrTrainingFailed)
}

func TestPredictDimensionMismatch(t *testing.T) {
	variant, _ := New(KindLinear)

	fitted, err := variant.Fit(column(1, 2, 3), []float64{2, 4, 6}, Parameters{
		LearningRate:  0.05,
		MaxIterations: 2000,
	})
	require.NoError(t, err)

	_, err = fitted.Predict([]float64{1, 2})
	var dimErr *DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 1, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Actual)
}

func TestUnknownKind(t *testing.T) {
	_, err := New(Kind("prophet"))
	assert.Error(t, err)
}
