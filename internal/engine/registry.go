// Package engine implements the concurrent model-lifecycle core: a registry
// of live models, atomically swappable version slots, bounded training
// queues, and the background scheduler that retrains and republishes models
// with zero interruption to prediction traffic.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/continuum-ml/continuum/internal/drift"
	"github.com/continuum-ml/continuum/internal/model"
	"github.com/continuum-ml/continuum/pkg/metrics"
)

// defaultTick is the scheduler wake interval. It must stay at or below the
// smallest configured LearningConfig.Interval; eligibility itself is gated
// per model, so waking more often than needed only costs a map scan.
const defaultTick = time.Second

// Engine is the top-level registry and the single entry point for callers.
// It is an explicit instance rather than package state so tests and
// embedders can run several independent engines in one process.
type Engine struct {
	logger   *zap.SugaredLogger
	defaults LearningConfig
	tick     time.Duration

	mu      sync.RWMutex
	models  map[string]*managedModel
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// managedModel is one registry entry. The slot and stats are read without
// locks on the prediction path; the queue has its own short-held mutex; the
// remaining fields are immutable after registration.
type managedModel struct {
	name    string
	variant model.Variant
	params  model.Parameters
	cfg     LearningConfig

	slot     modelSlot
	queue    *trainingQueue
	stats    *ModelStats
	detector *drift.Detector

	registeredAt time.Time
	training     atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTickInterval overrides the scheduler wake interval. Tests use short
// ticks; production keeps the default.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) { e.tick = d }
}

// WithDefaults overrides the process-wide default LearningConfig applied to
// models registered without an explicit config.
func WithDefaults(cfg LearningConfig) Option {
	return func(e *Engine) { e.defaults = cfg }
}

// NewEngine creates an engine with no registered models and a stopped
// scheduler.
func NewEngine(logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		logger:   logger.Sugar(),
		defaults: DefaultLearningConfig(),
		tick:     defaultTick,
		models:   make(map[string]*managedModel),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register creates a registry entry for a new model. The model starts
// untrained: predictions fail with ErrModelNotReady until the first
// successful training cycle publishes version 1.
func (e *Engine) Register(name string, kind model.Kind, params model.Parameters, cfg *LearningConfig) error {
	if name == "" {
		return fmt.Errorf("model name must not be empty")
	}

	effective := e.defaults
	if cfg != nil {
		effective = *cfg
	}
	if err := effective.Validate(); err != nil {
		return fmt.Errorf("invalid learning config for %q: %w", name, err)
	}

	variant, err := model.New(kind)
	if err != nil {
		return err
	}

	m := &managedModel{
		name:         name,
		variant:      variant,
		params:       params,
		cfg:          effective,
		queue:        newTrainingQueue(effective.MaxQueueSize),
		stats:        newModelStats(),
		detector:     drift.NewDetector(effective.DriftThreshold),
		registeredAt: time.Now(),
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.models[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateModel, name)
	}
	e.models[name] = m

	metrics.RegisteredModels.Inc()
	e.logger.Infow("model registered",
		"model", name,
		"kind", kind,
		"min_samples", effective.MinSamples,
		"interval", effective.Interval,
		"drift_detection", effective.DriftDetection)
	return nil
}

// Unregister removes a model and stops scheduling it. An in-flight training
// cycle for the model finishes against its private snapshot and its result
// is discarded.
func (e *Engine) Unregister(name string) error {
	e.mu.Lock()
	_, exists := e.models[name]
	if !exists {
		e.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	delete(e.models, name)
	e.mu.Unlock()

	metrics.RegisteredModels.Dec()
	metrics.TrainingQueueDepth.DeleteLabelValues(name)
	metrics.ModelVersion.DeleteLabelValues(name)
	e.logger.Infow("model unregistered", "model", name)
	return nil
}

// SubmitExample enqueues a labeled example for background training. The
// queue applies FIFO eviction when full, so the call never blocks on a
// training cycle and never fails for capacity reasons.
func (e *Engine) SubmitExample(name string, features []float64, label float64, resample bool) error {
	m, err := e.lookup(name)
	if err != nil {
		return err
	}

	// The dimension contract is established by the first successful
	// training; before that any width is accepted.
	if v := m.slot.Load(); v != nil && len(features) != v.Fitted.Dimension() {
		return &model.DimensionError{Expected: v.Fitted.Dimension(), Actual: len(features)}
	}

	m.queue.Add(Example{Features: features, Label: label, Resample: resample})
	metrics.TrainingQueueDepth.WithLabelValues(name).Set(float64(m.queue.Len()))
	return nil
}

// Prediction is the result of a single predict call.
type Prediction struct {
	Value   float64 `json:"prediction"`
	Version uint64  `json:"model_version"`
}

// Predict evaluates the model's current published version. It is a pure
// read: one atomic slot load plus the dot product, so its latency does not
// depend on any in-flight training.
func (e *Engine) Predict(name string, features []float64) (Prediction, error) {
	m, err := e.lookup(name)
	if err != nil {
		return Prediction{}, err
	}

	v := m.slot.Load()
	if v == nil {
		return Prediction{}, fmt.Errorf("%w: %q", ErrModelNotReady, name)
	}

	start := time.Now()
	value, err := v.Fitted.Predict(features)
	elapsed := time.Since(start)

	m.stats.recordPrediction(elapsed, err)
	if err != nil {
		metrics.PredictionsServed.WithLabelValues(name, "error").Inc()
		return Prediction{}, err
	}
	metrics.PredictionsServed.WithLabelValues(name, "ok").Inc()
	metrics.PredictionLatency.Observe(elapsed.Seconds())

	return Prediction{Value: value, Version: v.Number}, nil
}

// BatchPrediction is the result of a batch predict call. All rows are
// evaluated against a single slot load, so the version is consistent across
// the whole batch.
type BatchPrediction struct {
	Values  []float64 `json:"predictions"`
	Version uint64    `json:"model_version"`
}

// PredictBatch evaluates every row against the same published version.
func (e *Engine) PredictBatch(name string, rows [][]float64) (BatchPrediction, error) {
	m, err := e.lookup(name)
	if err != nil {
		return BatchPrediction{}, err
	}

	v := m.slot.Load()
	if v == nil {
		return BatchPrediction{}, fmt.Errorf("%w: %q", ErrModelNotReady, name)
	}

	values := make([]float64, len(rows))
	for i, row := range rows {
		value, err := v.Fitted.Predict(row)
		if err != nil {
			m.stats.recordPrediction(0, err)
			metrics.PredictionsServed.WithLabelValues(name, "error").Inc()
			return BatchPrediction{}, fmt.Errorf("row %d: %w", i, err)
		}
		values[i] = value
	}

	m.stats.recordPrediction(0, nil)
	metrics.PredictionsServed.WithLabelValues(name, "ok").Add(float64(len(rows)))
	return BatchPrediction{Values: values, Version: v.Number}, nil
}

// ModelInfo is the read-only management view of one registry entry.
type ModelInfo struct {
	Name            string         `json:"name"`
	Kind            model.Kind     `json:"kind"`
	Version         uint64         `json:"version"`
	TrainedAt       *time.Time     `json:"trained_at,omitempty"`
	TrainingSetSize int            `json:"training_set_size"`
	QueueDepth      int            `json:"queue_depth"`
	Training        bool           `json:"training"`
	Weights         []float64      `json:"weights,omitempty"`
	Bias            float64        `json:"bias"`
	Config          LearningConfig `json:"config"`
	Stats           StatsSnapshot  `json:"stats"`
}

// Info returns the management view for one model without blocking training.
func (e *Engine) Info(name string) (ModelInfo, error) {
	m, err := e.lookup(name)
	if err != nil {
		return ModelInfo{}, err
	}

	info := ModelInfo{
		Name:       m.name,
		Kind:       m.variant.Kind(),
		QueueDepth: m.queue.Len(),
		Training:   m.training.Load(),
		Config:     m.cfg,
		Stats:      m.stats.Snapshot(),
	}
	if v := m.slot.Load(); v != nil {
		info.Version = v.Number
		created := v.CreatedAt
		info.TrainedAt = &created
		info.TrainingSetSize = v.TrainingSetSize
		info.Weights = v.Fitted.Weights()
		info.Bias = v.Fitted.Bias()
	}
	return info, nil
}

// ListModels returns the registered model names.
func (e *Engine) ListModels() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.models))
	for name := range e.models {
		names = append(names, name)
	}
	return names
}

func (e *Engine) lookup(name string) (*managedModel, error) {
	e.mu.RLock()
	m, exists := e.models[name]
	e.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return m, nil
}

func (e *Engine) snapshotModels() []*managedModel {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*managedModel, 0, len(e.models))
	for _, m := range e.models {
		out = append(out, m)
	}
	return out
}

// stillRegistered reports whether this exact entry is still the one mapped
// under its name; a model re-registered under the same name counts as gone.
func (e *Engine) stillRegistered(m *managedModel) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.models[m.name] == m
}

func driftedLabel(drifted bool) string {
	return strconv.FormatBool(drifted)
}
