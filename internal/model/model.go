// Package model defines the trainable model variants served by the engine.
//
// A Variant knows how to fit a parameter snapshot from a batch of examples;
// the resulting Fitted state is immutable and safe for concurrent reads.
package model

import (
	"errors"
	"fmt"
)

// Kind identifies a model family.
type Kind string

const (
	KindLinear Kind = "linear"
	KindRidge  Kind = "ridge"
)

// ErrTrainingFailed is returned when a fit cannot produce a usable model.
// The caller is expected to keep serving the previous version.
var ErrTrainingFailed = errors.New("training failed")

// DimensionError reports a feature vector whose length disagrees with the
// dimension a model was trained on.
type DimensionError struct {
	Expected int
	Actual   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d features, got %d", e.Expected, e.Actual)
}

// Parameters configures a training run. A copy is taken when the run starts,
// so mutating the caller's struct afterwards has no effect on the run.
type Parameters struct {
	WithBias       bool    `json:"with_bias"`
	LearningRate   float64 `json:"learning_rate"`
	MaxIterations  int     `json:"max_iterations"`
	Regularization float64 `json:"regularization"`
}

// DefaultParameters returns the parameter set used when a caller registers a
// model without overriding anything.
func DefaultParameters() Parameters {
	return Parameters{
		WithBias:      true,
		LearningRate:  0.01,
		MaxIterations: 1000,
	}
}

func (p Parameters) normalized() Parameters {
	if p.LearningRate <= 0 {
		p.LearningRate = 0.01
	}
	if p.MaxIterations <= 0 {
		p.MaxIterations = 1000
	}
	return p
}

// Fitted is an immutable trained parameter snapshot.
type Fitted interface {
	// Predict evaluates the model on a single feature vector.
	Predict(features []float64) (float64, error)

	// Dimension returns the input width the model was trained on.
	Dimension() int

	// Weights returns a copy of the fitted coefficient vector.
	Weights() []float64

	// Bias returns the fitted intercept, zero when bias is disabled.
	Bias() float64
}

// Variant is the capability set a model family must provide. New variants
// plug in without changes to the registry or scheduler.
type Variant interface {
	Kind() Kind

	// Fit trains a fresh snapshot from the given batch. It never mutates
	// previously returned Fitted values.
	Fit(features [][]float64, targets []float64, params Parameters) (Fitted, error)
}

// New returns the variant for the given kind.
func New(kind Kind) (Variant, error) {
	switch kind {
	case KindLinear:
		return linearVariant{}, nil
	case KindRidge:
		return ridgeVariant{}, nil
	default:
		return nil, fmt.Errorf("unknown model kind %q", kind)
	}
}
