package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/continuum-ml/continuum/internal/engine"
	"github.com/continuum-ml/continuum/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

// statusFor translates engine and model errors into HTTP status codes.
// Unrecognized errors are treated as bad requests rather than server faults:
// the engine reports internal failures only through logs and metrics.
func statusFor(err error) int {
	var dimErr *model.DimensionError
	switch {
	case errors.Is(err, engine.ErrUnknownModel):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrDuplicateModel),
		errors.Is(err, engine.ErrModelNotReady),
		errors.Is(err, engine.ErrAlreadyRunning),
		errors.Is(err, engine.ErrNotRunning),
		errors.Is(err, engine.ErrTrainingInFlight):
		return http.StatusConflict
	case errors.Is(err, model.ErrTrainingFailed):
		return http.StatusUnprocessableEntity
	case errors.As(err, &dimErr):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"running": s.engine.Running(),
	})
}

// learningConfigRequest is the wire form of engine.LearningConfig; the
// interval crosses the API in seconds.
type learningConfigRequest struct {
	MinSamples      int     `json:"min_samples"`
	IntervalSeconds float64 `json:"interval_seconds"`
	MaxQueueSize    int     `json:"max_queue_size"`
	DriftDetection  *bool   `json:"drift_detection"`
	DriftThreshold  float64 `json:"drift_threshold"`
}

// toConfig overlays the provided fields on the engine defaults, so a partial
// config body behaves like the defaults with overrides.
func (r learningConfigRequest) toConfig(defaults engine.LearningConfig) engine.LearningConfig {
	cfg := defaults
	if r.MinSamples > 0 {
		cfg.MinSamples = r.MinSamples
	}
	if r.IntervalSeconds > 0 {
		cfg.Interval = time.Duration(r.IntervalSeconds * float64(time.Second))
	}
	if r.MaxQueueSize > 0 {
		cfg.MaxQueueSize = r.MaxQueueSize
	}
	if r.DriftDetection != nil {
		cfg.DriftDetection = *r.DriftDetection
	}
	if r.DriftThreshold > 0 {
		cfg.DriftThreshold = r.DriftThreshold
	}
	return cfg
}

type registerRequest struct {
	Name       string                 `json:"name" binding:"required"`
	Kind       string                 `json:"kind" binding:"required"`
	Parameters *model.Parameters      `json:"parameters"`
	Config     *learningConfigRequest `json:"config"`
}

func (s *Server) registerModel(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	params := model.DefaultParameters()
	if req.Parameters != nil {
		params = *req.Parameters
	}

	var cfg *engine.LearningConfig
	if req.Config != nil {
		resolved := req.Config.toConfig(engine.DefaultLearningConfig())
		cfg = &resolved
	}

	if err := s.engine.Register(req.Name, model.Kind(req.Kind), params, cfg); err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": req.Name, "kind": req.Kind})
}

func (s *Server) unregisterModel(c *gin.Context) {
	if err := s.engine.Unregister(c.Param("name")); err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listModels(c *gin.Context) {
	names := s.engine.ListModels()
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"models": names})
}

func (s *Server) modelInfo(c *gin.Context) {
	info, err := s.engine.Info(c.Param("name"))
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, info)
}

type exampleRequest struct {
	Features []float64 `json:"features" binding:"required"`
	Label    float64   `json:"label"`
	Resample bool      `json:"is_resample"`
}

func (s *Server) submitExample(c *gin.Context) {
	var req exampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	if err := s.engine.SubmitExample(c.Param("name"), req.Features, req.Label, req.Resample); err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.Status(http.StatusAccepted)
}

type predictRequest struct {
	Features []float64 `json:"features" binding:"required"`
}

func (s *Server) predict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	pred, err := s.engine.Predict(c.Param("name"), req.Features)
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, pred)
}

type predictBatchRequest struct {
	Features [][]float64 `json:"features" binding:"required"`
}

func (s *Server) predictBatch(c *gin.Context) {
	var req predictBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	batch, err := s.engine.PredictBatch(c.Param("name"), req.Features)
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (s *Server) trainNow(c *gin.Context) {
	name := c.Param("name")
	if err := s.engine.TrainNow(name); err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}

	info, err := s.engine.Info(name)
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "version": info.Version})
}

func (s *Server) startLearning(c *gin.Context) {
	// The request context dies with the request; the scheduler's lifetime
	// is bounded by the stop endpoint and process shutdown instead.
	if err := s.engine.Start(context.Background()); err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

func (s *Server) stopLearning(c *gin.Context) {
	if err := s.engine.Stop(); err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}
