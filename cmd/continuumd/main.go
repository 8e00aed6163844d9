package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/continuum-ml/continuum/internal/config"
	"github.com/continuum-ml/continuum/internal/engine"
	"github.com/continuum-ml/continuum/internal/server"
	"github.com/continuum-ml/continuum/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONTINUUM_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	eng := engine.NewEngine(zapLogger,
		engine.WithDefaults(cfg.Learning.EngineDefaults()),
		engine.WithTickInterval(cfg.Learning.Tick),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := eng.Start(ctx); err != nil {
		zapLogger.Fatal("Failed to start continuous learning", zap.Error(err))
	}

	srv := server.NewServer(zapLogger, eng)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	// The scheduler may already have exited with the signal context; a
	// second stop is a no-op worth tolerating here.
	if err := eng.Stop(); err != nil && !errors.Is(err, engine.ErrNotRunning) {
		zapLogger.Error("Scheduler stop failed", zap.Error(err))
	}
	zapLogger.Info("Shutdown complete")
}
