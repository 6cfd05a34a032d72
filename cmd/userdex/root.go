package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/userdex/internal/config"
	logpkg "github.com/kailas-cloud/userdex/internal/logger"
	userdex "github.com/kailas-cloud/userdex/pkg/sdk"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "userdex",
		Short:         "HTTP API over an Elasticsearch user index",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.PersistentFlags().String("env", "", "config environment (overrides ENV)")

	root.AddCommand(
		newServeCmd(),
		newWorkerCmd(),
		newCreateIndexCmd(),
		newBulkLoadCmd(),
		newPurgeCmd(),
		newVersionCmd(),
	)
	return root
}

// runtimeEnv bundles what every long-running command needs.
type runtimeEnv struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
}

// loadRuntime reads .env files, configuration and builds the logger.
func loadRuntime(cmd *cobra.Command) (*runtimeEnv, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	env, _ := cmd.Flags().GetString("env")
	if env == "" {
		env = config.GetEnv()
	}

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	return &runtimeEnv{env: env, cfg: cfg, logger: logger}, nil
}

// newSDKClient connects the embedded client for one-shot admin commands.
func newSDKClient(cmd *cobra.Command, rt *runtimeEnv) (*userdex.Client, error) {
	es := rt.cfg.Elasticsearch
	opts := []userdex.Option{
		userdex.WithElasticsearch(es.Addrs...),
		userdex.WithCredentials(es.Username, es.Password),
		userdex.WithIndex(es.DefaultIndex),
		userdex.WithRefresh(es.Refresh),
		userdex.WithReadinessTimeout(time.Duration(es.ReadinessTimeout) * time.Second),
		userdex.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))),
	}
	if es.SkipTLSVerify {
		opts = append(opts, userdex.WithSkipTLSVerify())
	}

	c, err := userdex.New(cmd.Context(), opts...)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return c, nil
}
