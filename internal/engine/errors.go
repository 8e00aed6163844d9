package engine

import "errors"

// Caller-facing failures. Every exported operation returns one of these (or
// a model.DimensionError / model.ErrTrainingFailed) instead of aborting.
var (
	// ErrDuplicateModel is returned by Register when the name is taken.
	ErrDuplicateModel = errors.New("model already registered")

	// ErrUnknownModel is returned when no model with the given name exists.
	ErrUnknownModel = errors.New("unknown model")

	// ErrModelNotReady is returned by Predict for a registered model that
	// has never completed a successful training cycle.
	ErrModelNotReady = errors.New("model not ready: no trained version")

	// ErrAlreadyRunning is returned by Start when the scheduler is active.
	ErrAlreadyRunning = errors.New("continuous learning already running")

	// ErrNotRunning is returned by Stop when the scheduler is not active.
	ErrNotRunning = errors.New("continuous learning not running")
)
