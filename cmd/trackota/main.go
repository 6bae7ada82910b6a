package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/trackota-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/trackota-etl/internal/adapter/kafka"
	"github.com/couchcryptid/trackota-etl/internal/analysis"
	"github.com/couchcryptid/trackota-etl/internal/config"
	"github.com/couchcryptid/trackota-etl/internal/dataset"
	"github.com/couchcryptid/trackota-etl/internal/observability"
	"github.com/couchcryptid/trackota-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	locator := dataset.NewLocator(cfg.DatasetsDir, cfg.DatasetTracks)
	service := analysis.NewService(locator, analysis.Options{
		RowLimit:          cfg.RowLimit,
		TelemetryRowLimit: cfg.TelemetryRowLimit,
	}, logger, metrics)
	logger.Info("datasets configured", "dir", locator.Base(), "tracks", cfg.DatasetTracks)

	ready := []httpadapter.ReadinessChecker{service}

	// Report publisher (feature-flagged via KAFKA_ENABLED).
	var (
		publisher *pipeline.Pipeline
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = pipeline.New(service, pipeline.NewTransformer(service), writer, logger, metrics, pipeline.Options{
			BatchSize:   cfg.BatchSize,
			Concurrency: cfg.PublishConcurrency,
			Interval:    cfg.PublishInterval,
		})
		ready = append(ready, publisher)
		logger.Info("report publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("report publishing disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.AllReady(ready...), service, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start report publisher.
	if publisher != nil {
		go func() {
			if err := publisher.Run(ctx); err != nil {
				logger.Error("publisher error", "error", err)
			}
		}()
	}

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
