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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/userdex/internal/db/elastic"
	"github.com/kailas-cloud/userdex/internal/metrics"
	userrepo "github.com/kailas-cloud/userdex/internal/repository/user"
	chiTransport "github.com/kailas-cloud/userdex/internal/transport/chi"
	kafkaTransport "github.com/kailas-cloud/userdex/internal/transport/kafka"
	healthuc "github.com/kailas-cloud/userdex/internal/usecase/health"
	useruc "github.com/kailas-cloud/userdex/internal/usecase/user"
	"github.com/kailas-cloud/userdex/internal/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server (default)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	logger, cfg := rt.logger, rt.cfg
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting userdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", rt.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("es_addrs", cfg.Elasticsearch.Addrs),
		zap.String("index", cfg.Elasticsearch.DefaultIndex),
	)

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

	readiness := time.Duration(cfg.Elasticsearch.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		return fmt.Errorf("elasticsearch not ready: %w", err)
	}
	logger.Info("Connected to Elasticsearch")

	metrics.RegisterStoreMetrics()

	repo := userrepo.New(store, cfg.Elasticsearch.DefaultIndex).WithRefresh(cfg.Elasticsearch.Refresh)
	userSvc := useruc.New(repo)

	healthSvc := healthuc.New(store)
	if len(cfg.Kafka.Brokers) > 0 {
		healthSvc.WithCheck("kafka", kafkaTransport.BrokerPinger{Brokers: cfg.Kafka.Brokers})
	}
	logger.Info("Health checks registered", zap.Strings("checks", healthSvc.Names()))

	server := chiTransport.NewServer(userSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Routes(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
