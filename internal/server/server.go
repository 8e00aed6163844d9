// Package server exposes the engine over HTTP. It is a thin binding layer:
// every handler parses a request, calls one engine operation, and translates
// the typed error into a status code.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/continuum-ml/continuum/internal/engine"
)

// Server wraps the gin router around one engine instance.
type Server struct {
	router *gin.Engine
	engine *engine.Engine
	logger *zap.Logger
}

// NewServer builds the router with logging, recovery, and CORS middleware
// and registers all routes.
func NewServer(logger *zap.Logger, eng *engine.Engine) *Server {
	s := &Server{
		engine: eng,
		logger: logger,
	}

	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	s.router = router
	s.registerRoutes()
	return s
}

// Router returns the gin engine, primarily for tests and for mounting into
// an http.Server.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		models := v1.Group("/models")
		{
			models.POST("", s.registerModel)
			models.GET("", s.listModels)
			models.GET("/:name", s.modelInfo)
			models.DELETE("/:name", s.unregisterModel)
			models.POST("/:name/examples", s.submitExample)
			models.POST("/:name/predict", s.predict)
			models.POST("/:name/predict-batch", s.predictBatch)
			models.POST("/:name/train", s.trainNow)
		}

		learning := v1.Group("/learning")
		{
			learning.POST("/start", s.startLearning)
			learning.POST("/stop", s.stopLearning)
		}
	}
}
