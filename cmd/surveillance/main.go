package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/health-surveillance-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/health-surveillance-service/internal/adapter/kafka"
	"github.com/couchcryptid/health-surveillance-service/internal/config"
	"github.com/couchcryptid/health-surveillance-service/internal/observability"
	"github.com/couchcryptid/health-surveillance-service/internal/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	analyzer := pipeline.NewAnalyzer(metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		ready  httpadapter.ReadinessChecker = httpadapter.AlwaysReady
		reader *kafkaadapter.Reader
		writer *kafkaadapter.Writer
	)

	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(reader, analyzer, writer, logger, metrics, cfg.BatchSize)
		ready = p

		// Start analysis pipeline.
		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
		logger.Info("kafka pipeline enabled",
			"brokers", cfg.KafkaBrokers,
			"source_topic", cfg.KafkaSourceTopic,
			"sink_topic", cfg.KafkaSinkTopic,
		)
	} else {
		logger.Info("kafka pipeline disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, analyzer, ready, cfg.MaxBodyBytes, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
