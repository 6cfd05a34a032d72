package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/userdex/internal/db/elastic"
	"github.com/kailas-cloud/userdex/internal/metrics"
	userrepo "github.com/kailas-cloud/userdex/internal/repository/user"
	kafkaTransport "github.com/kailas-cloud/userdex/internal/transport/kafka"
	useruc "github.com/kailas-cloud/userdex/internal/usecase/user"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the Kafka consumer that applies user events to Elasticsearch",
		RunE:  runWorker,
	}
}

func runWorker(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	logger, cfg := rt.logger, rt.cfg
	defer func() { _ = logger.Sync() }()

	if err := cfg.ValidateWorker(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	store, err := elastic.NewStore(elastic.Config{
		Addrs:         cfg.Elasticsearch.Addrs,
		Username:      cfg.Elasticsearch.Username,
		Password:      cfg.Elasticsearch.Password,
		SkipTLSVerify: cfg.Elasticsearch.SkipTLSVerify,
	})
	if err != nil {
		return fmt.Errorf("create elasticsearch store: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Elasticsearch.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("elasticsearch not ready: %w", err)
	}

	metrics.RegisterStoreMetrics()
	if cfg.Kafka.MetricsPort > 0 {
		stopMetrics := serveWorkerMetrics(newMetricsServer(cfg.Kafka.MetricsPort), logger)
		defer stopMetrics()
	}

	repo := userrepo.New(store, cfg.Elasticsearch.DefaultIndex).WithRefresh(cfg.Elasticsearch.Refresh)

	logger.Info("Starting worker",
		zap.String("group_id", cfg.Kafka.GroupID),
		zap.Strings("topics", cfg.Kafka.Topics),
		zap.String("index", cfg.Elasticsearch.DefaultIndex),
	)
	err = kafkaTransport.RunConsumer(ctx, kafkaTransport.ReaderConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.GroupID,
		Topics:  cfg.Kafka.Topics,
	}, useruc.New(repo), logger)
	if err != nil {
		return fmt.Errorf("worker: %w", err)
	}

	logger.Info("Worker stopped")
	return nil
}

// newMetricsServer exposes the process metrics registry for the worker.
func newMetricsServer(port int) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// serveWorkerMetrics runs srv in the background; the returned func shuts it down.
func serveWorkerMetrics(srv *http.Server, logger *zap.Logger) func() {
	go func() {
		logger.Info("Starting metrics listener", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics listener failed", zap.Error(err))
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Metrics listener shutdown failed", zap.Error(err))
		}
	}
}
