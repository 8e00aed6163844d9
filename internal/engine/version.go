package engine

import (
	"sync/atomic"
	"time"

	"github.com/continuum-ml/continuum/internal/model"
)

// ModelVersion is an immutable fitted snapshot. Once published through a
// slot it is never mutated; superseded versions stay valid for any caller
// still holding a reference.
type ModelVersion struct {
	// Number is strictly increasing per model name, starting at 1 for the
	// first successful training cycle. Numbers are never reused.
	Number uint64

	// Fitted holds the trained parameters.
	Fitted model.Fitted

	// TrainingSetSize is the number of examples the fit consumed.
	TrainingSetSize int

	// CreatedAt is when the version was published.
	CreatedAt time.Time
}

// modelSlot holds the single live reference to a model's current version.
// Readers load the pointer without any lock; the scheduler is the only
// writer. A nil load means the model has never been trained.
//
// The atomic pointer swap is what makes updates zero-downtime: a reader
// observes either the old version or the new one, never a partial state.
type modelSlot struct {
	current atomic.Pointer[ModelVersion]
}

// Load returns the current version, or nil before the first training.
func (s *modelSlot) Load() *ModelVersion {
	return s.current.Load()
}

// Publish atomically replaces the current version.
func (s *modelSlot) Publish(v *ModelVersion) {
	s.current.Store(v)
}
