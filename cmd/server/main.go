package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/flood-risk-service/internal/adapter/api"
	kafkaadapter "github.com/couchcryptid/flood-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-risk-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/flood-risk-service/internal/config"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
	"github.com/couchcryptid/flood-risk-service/internal/scheduler"
	"github.com/couchcryptid/flood-risk-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	weather := openmeteo.NewClient(cfg, metrics, logger)

	risk := service.New(weather, service.Options{
		WindowHours:   cfg.RiskWindowHours,
		HorizonDays:   cfg.ForecastDays,
		GridStep:      cfg.GridStep,
		NormalizeGrid: cfg.GridNormalize,
		NullPolicy:    cfg.Policy(),
	}, logger, metrics)

	srv := api.NewServer(cfg.HTTPAddr, risk, weather, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Periodic prediction job (feature-flagged via PREDICTIONS_ENABLED).
	var writer *kafkaadapter.Writer
	if cfg.PredictionsEnabled {
		locations, err := cfg.Locations()
		if err != nil {
			logger.Error("invalid prediction locations", "error", err)
			os.Exit(1)
		}

		writer = kafkaadapter.NewWriter(cfg, logger)
		job := scheduler.NewJob(risk, writer, scheduler.JobConfig{
			Locations:   locations,
			Interval:    cfg.PredictionInterval,
			Concurrency: cfg.PredictionConcurrency,
		}, logger, metrics)
		logger.Info("prediction job enabled",
			"locations", len(locations), "interval", cfg.PredictionInterval)

		go func() {
			if err := job.Run(ctx); err != nil {
				logger.Error("prediction job error", "error", err)
			}
		}()
	} else {
		logger.Info("prediction job disabled")
	}

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
