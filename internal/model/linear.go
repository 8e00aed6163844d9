package model

import (
	"fmt"
	"math"
)

// convergenceTol stops gradient descent once the largest per-step parameter
// change falls below it.
const convergenceTol = 1e-8

type linearVariant struct{}

func (linearVariant) Kind() Kind { return KindLinear }

func (linearVariant) Fit(features [][]float64, targets []float64, params Parameters) (Fitted, error) {
	return fitGradientDescent(features, targets, params.normalized(), 0)
}

// linearFit is the fitted state shared by the linear and ridge variants.
// Instances are never mutated after fitGradientDescent returns them.
type linearFit struct {
	weights  []float64
	bias     float64
	withBias bool
}

func (f *linearFit) Predict(features []float64) (float64, error) {
	if len(features) != len(f.weights) {
		return 0, &DimensionError{Expected: len(f.weights), Actual: len(features)}
	}
	pred := f.bias
	for i, w := range f.weights {
		pred += w * features[i]
	}
	return pred, nil
}

func (f *linearFit) Dimension() int { return len(f.weights) }

func (f *linearFit) Weights() []float64 {
	out := make([]float64, len(f.weights))
	copy(out, f.weights)
	return out
}

func (f *linearFit) Bias() float64 { return f.bias }

// fitGradientDescent runs batch gradient descent on squared error with an
// optional L2 penalty. The bias term is never regularized.
func fitGradientDescent(features [][]float64, targets []float64, params Parameters, alpha float64) (Fitted, error) {
	n := len(features)
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 examples, got %d", ErrTrainingFailed, n)
	}
	if len(targets) != n {
		return nil, fmt.Errorf("%w: %d feature rows but %d targets", ErrTrainingFailed, n, len(targets))
	}
	dim := len(features[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: empty feature vectors", ErrTrainingFailed)
	}
	for i, row := range features {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: row %d has %d features, expected %d", ErrTrainingFailed, i, len(row), dim)
		}
	}

	weights := make([]float64, dim)
	bias := 0.0
	gradW := make([]float64, dim)
	scale := -2.0 / float64(n)

	for iter := 0; iter < params.MaxIterations; iter++ {
		for j := range gradW {
			gradW[j] = 0
		}
		gradB := 0.0

		for i, row := range features {
			pred := bias
			for j, w := range weights {
				pred += w * row[j]
			}
			err := targets[i] - pred
			for j, x := range row {
				gradW[j] += err * x
			}
			gradB += err
		}

		maxDelta := 0.0
		for j := range weights {
			g := scale*gradW[j] + alpha*weights[j]
			delta := params.LearningRate * g
			weights[j] -= delta
			if d := math.Abs(delta); d > maxDelta {
				maxDelta = d
			}
		}
		if params.WithBias {
			delta := params.LearningRate * scale * gradB
			bias -= delta
			if d := math.Abs(delta); d > maxDelta {
				maxDelta = d
			}
		}

		if !finite(weights, bias) {
			return nil, fmt.Errorf("%w: numerical divergence after %d iterations", ErrTrainingFailed, iter+1)
		}
		if maxDelta < convergenceTol {
			break
		}
	}

	return &linearFit{weights: weights, bias: bias, withBias: params.WithBias}, nil
}

func finite(weights []float64, bias float64) bool {
	if math.IsNaN(bias) || math.IsInf(bias, 0) {
		return false
	}
	for _, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return false
		}
	}
	return true
}
