package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dealmind/internal/infra/affiliate"
	"dealmind/internal/infra/backend"
	"dealmind/internal/infra/config"
	"dealmind/internal/infra/gateway"
	"dealmind/internal/infra/telemetry"
	"dealmind/internal/infra/usage"
)

const sweepInterval = time.Hour

type serveOptions struct {
	configPath     string
	backendBaseURL string
	predictURL     string
	affiliateTag   string
	dailyLimit     int
	premiumURL     string
	storePath      string
	userID         string
	obsAddr        string
	logger         *zap.Logger
}

func main() {
	opts := serveOptions{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "dealmind-mcp",
		Short: "DealMind price-tracking tool gateway (MCP over stdio)",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg := zap.NewProductionConfig()
			log, err := cfg.Build()
			if err != nil {
				return err
			}
			opts.logger = log
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = opts.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags(), &opts)
			if err != nil {
				return err
			}
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()
			return serve(ctx, cfg, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "optional YAML config file")
	root.PersistentFlags().StringVar(&opts.backendBaseURL, "backend", "", "backend API base URL")
	root.PersistentFlags().StringVar(&opts.predictURL, "predict", "", "prediction service URL")
	root.PersistentFlags().StringVar(&opts.affiliateTag, "affiliate-tag", "", "affiliate partner identifier")
	root.PersistentFlags().IntVar(&opts.dailyLimit, "daily-limit", 0, "free-tier daily call quota")
	root.PersistentFlags().StringVar(&opts.premiumURL, "premium-url", "", "premium subscription check endpoint")
	root.PersistentFlags().StringVar(&opts.storePath, "usage-store", "", "path to a persistent usage store (in-memory when empty)")
	root.PersistentFlags().StringVar(&opts.userID, "user", "", "user id charged for tool calls")
	root.PersistentFlags().StringVar(&opts.obsAddr, "observability", "", "metrics/health listen address (disabled when empty)")

	root.AddCommand(newToolsCommand(&opts))
	root.AddCommand(newConfigCommand(&opts))

	if err := root.Execute(); err != nil {
		opts.logger.Fatal("command failed", zap.Error(err))
	}
}

// loadConfig reads file/env config, then lets explicitly set flags win.
func loadConfig(flags *pflag.FlagSet, opts *serveOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend.BaseURL = opts.backendBaseURL
		case "predict":
			cfg.Backend.PredictURL = opts.predictURL
		case "affiliate-tag":
			cfg.Affiliate.Tag = opts.affiliateTag
		case "daily-limit":
			cfg.Quota.DailyLimit = opts.dailyLimit
		case "premium-url":
			cfg.Quota.PremiumURL = opts.premiumURL
		case "usage-store":
			cfg.Quota.StorePath = opts.storePath
		case "user":
			cfg.User.ID = opts.userID
		case "observability":
			cfg.Observability.ListenAddress = opts.obsAddr
		}
	})
	return cfg, nil
}

func serve(ctx context.Context, cfg config.Config, opts serveOptions) error {
	logger := opts.logger
	timeout := time.Duration(cfg.Backend.TimeoutSeconds) * time.Second

	var store usage.Store = usage.NewMemoryStore()
	if cfg.Quota.StorePath != "" {
		boltStore, err := usage.OpenBoltStore(cfg.Quota.StorePath)
		if err != nil {
			return err
		}
		defer func() { _ = boltStore.Close() }()
		store = boltStore
	}

	var premium usage.PremiumChecker = usage.StaticChecker{}
	if cfg.Quota.PremiumURL != "" {
		premium = usage.NewHTTPChecker(cfg.Quota.PremiumURL, timeout)
	}

	ledger := usage.NewLedger(store, premium, cfg.Quota.DailyLimit, logger)
	tagger := affiliate.New(cfg.Affiliate.Tag)
	client := backend.NewClient(backend.Config{
		BaseURL:    cfg.Backend.BaseURL,
		PredictURL: cfg.Backend.PredictURL,
		Timeout:    timeout,
	}, logger)
	metrics := telemetry.NewPrometheusMetrics(prometheus.DefaultRegisterer)
	gw := gateway.NewGateway(client, ledger, tagger, metrics, cfg.User.ID, logger)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return gw.Run(groupCtx)
	})
	group.Go(func() error {
		return telemetry.StartHTTPServer(groupCtx, telemetry.HTTPServerOptions{
			Addr: cfg.Observability.ListenAddress,
		}, logger)
	})
	group.Go(func() error {
		return ledger.RunSweeper(groupCtx, sweepInterval, cfg.Quota.SweepDays)
	})
	go config.Watch(groupCtx, opts.configPath, logger, func(next config.Config) {
		ledger.SetLimit(next.Quota.DailyLimit)
		tagger.Retag(next.Affiliate.Tag)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newToolsCommand(opts *serveOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tool catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for i, spec := range gateway.Catalog() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s - %s\n", i+1, spec.Name, spec.Description)
				for _, param := range spec.Params {
					kind := "optional"
					if param.Required {
						kind = "required"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "   %s (%s, %s)", param.Name, param.Type, kind)
					if param.Default != nil {
						fmt.Fprintf(cmd.OutOrStdout(), " default=%v", param.Default)
					}
					fmt.Fprintln(cmd.OutOrStdout())
				}
			}
			return nil
		},
	}
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
