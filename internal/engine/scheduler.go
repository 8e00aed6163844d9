package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/continuum-ml/continuum/internal/drift"
	"github.com/continuum-ml/continuum/pkg/metrics"
)

// ErrTrainingInFlight is returned by TrainNow when a training cycle for the
// model is already running; per-model training is single-writer.
var ErrTrainingInFlight = errors.New("training already in progress")

// Start launches the background scheduler. It wakes on a fixed tick, checks
// each model's trigger conditions, and runs at most one training cycle per
// model at a time. Cancellation is cooperative: Stop lets the in-flight
// cycle reach its publish-or-abandon checkpoint before the loop exits.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return ErrAlreadyRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.running = true
	e.cancel = cancel
	e.done = make(chan struct{})

	go e.schedulerLoop(runCtx, e.done)
	return nil
}

// Stop signals the scheduler to finish the current cycle and exit, then
// waits for it.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return ErrNotRunning
	}
	e.running = false
	cancel, done := e.cancel, e.done
	e.mu.Unlock()

	cancel()
	<-done
	return nil
}

// Running reports whether the scheduler is active.
func (e *Engine) Running() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.running
}

func (e *Engine) schedulerLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	e.logger.Infow("continuous learning started", "tick", e.tick)
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("continuous learning stopped")
			return
		case <-ticker.C:
			for _, m := range e.snapshotModels() {
				if ctx.Err() != nil {
					e.logger.Info("continuous learning stopped")
					return
				}
				e.maybeTrain(m)
			}
		}
	}
}

// maybeTrain runs the per-model state machine for one tick:
// Idle -> Evaluating when the sample and spacing triggers are met,
// Evaluating -> Training unless drift gating says the model is still fresh,
// then Training -> Swapping inside trainAndPublish.
func (e *Engine) maybeTrain(m *managedModel) {
	if m.queue.Len() < m.cfg.MinSamples {
		return
	}
	last := m.stats.lastTrained()
	if last.IsZero() {
		last = m.registeredAt
	}
	if time.Since(last) < m.cfg.Interval {
		return
	}

	current := m.slot.Load()
	if m.cfg.DriftDetection && current != nil {
		report := e.evaluateDrift(m, current)
		metrics.DriftEvaluations.WithLabelValues(m.name, driftedLabel(report.Drifted)).Inc()
		if !report.Drifted {
			// The residual distribution still matches the trained
			// baseline; retraining would be churn.
			return
		}
		e.logger.Infow("drift detected, retraining",
			"model", m.name,
			"score", report.Score,
			"window_mae", report.WindowMAE,
			"baseline_mae", report.BaselineMAE)
	}
	// With drift detection enabled but no trained version yet, training
	// proceeds regardless: the bootstrap fit is what creates the baseline.

	if err := e.trainAndPublish(m); err != nil && !errors.Is(err, ErrTrainingInFlight) {
		e.logger.Warnw("training cycle failed, keeping current version",
			"model", m.name, "error", err)
	}
}

// evaluateDrift scores the most recent MinSamples examples against the
// current version. Examples whose width no longer matches are skipped; they
// cannot have come from the trained distribution.
func (e *Engine) evaluateDrift(m *managedModel, current *ModelVersion) drift.Report {
	window := m.queue.Tail(m.cfg.MinSamples)
	residuals := make([]float64, 0, len(window))
	for _, ex := range window {
		pred, err := current.Fitted.Predict(ex.Features)
		if err != nil {
			continue
		}
		residuals = append(residuals, pred-ex.Label)
	}
	return m.detector.Evaluate(residuals)
}

// TrainNow forces one immediate training cycle for the named model,
// bypassing the interval and drift gates. Failure isolation is the same as
// for scheduled cycles: on error the queue is untouched and the current
// version keeps serving.
func (e *Engine) TrainNow(name string) error {
	m, err := e.lookup(name)
	if err != nil {
		return err
	}
	return e.trainAndPublish(m)
}

// trainAndPublish runs one full training cycle against a queue snapshot and
// atomically publishes the result. It is the single writer for the model's
// slot: the training flag serializes scheduled and forced cycles.
func (e *Engine) trainAndPublish(m *managedModel) error {
	if !m.training.CompareAndSwap(false, true) {
		return ErrTrainingInFlight
	}
	defer m.training.Store(false)

	cycleID := uuid.NewString()
	snapshot, upto := m.queue.Snapshot()

	features := make([][]float64, len(snapshot))
	targets := make([]float64, len(snapshot))
	for i, ex := range snapshot {
		features[i] = ex.Features
		targets[i] = ex.Label
	}

	start := time.Now()
	fitted, err := m.variant.Fit(features, targets, m.params)
	elapsed := time.Since(start)

	m.stats.recordTraining(elapsed, err)
	metrics.TrainingDuration.Observe(elapsed.Seconds())
	if err != nil {
		metrics.TrainingRuns.WithLabelValues(m.name, "failed").Inc()
		return fmt.Errorf("cycle %s: %w", cycleID, err)
	}
	metrics.TrainingRuns.WithLabelValues(m.name, "ok").Inc()

	// The model may have been unregistered while the fit ran; the result
	// is discarded and the scheduler carries on.
	if !e.stillRegistered(m) {
		e.logger.Infow("model unregistered during training, discarding result",
			"model", m.name, "cycle", cycleID)
		return nil
	}

	var number uint64 = 1
	if prev := m.slot.Load(); prev != nil {
		number = prev.Number + 1
	}
	version := &ModelVersion{
		Number:          number,
		Fitted:          fitted,
		TrainingSetSize: len(snapshot),
		CreatedAt:       time.Now(),
	}
	m.slot.Publish(version)

	// Drain exactly the examples this cycle consumed; anything submitted
	// during the fit stays queued for the next cycle.
	m.queue.DrainThrough(upto)

	e.reseedBaseline(m, version, snapshot)

	metrics.ModelVersion.WithLabelValues(m.name).Set(float64(number))
	metrics.TrainingQueueDepth.WithLabelValues(m.name).Set(float64(m.queue.Len()))
	e.logger.Infow("model version published",
		"model", m.name,
		"cycle", cycleID,
		"version", number,
		"examples", len(snapshot),
		"duration_ms", elapsed.Milliseconds())
	return nil
}

// reseedBaseline records the new version's residual level over the most
// recent window of its own training set. Subsequent drift evaluations
// compare fresh traffic against this.
func (e *Engine) reseedBaseline(m *managedModel, v *ModelVersion, snapshot []Example) {
	window := snapshot
	if len(window) > m.cfg.MinSamples {
		window = window[len(window)-m.cfg.MinSamples:]
	}
	residuals := make([]float64, 0, len(window))
	for _, ex := range window {
		pred, err := v.Fitted.Predict(ex.Features)
		if err != nil {
			continue
		}
		residuals = append(residuals, pred-ex.Label)
	}
	m.detector.SetBaseline(drift.MAE(residuals))
}
