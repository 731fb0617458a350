package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vanshika/wealthnet/internal/app"
	"github.com/vanshika/wealthnet/internal/config"
	"github.com/vanshika/wealthnet/internal/layout"
	"github.com/vanshika/wealthnet/internal/logging"
	"github.com/vanshika/wealthnet/internal/metrics"
	"github.com/vanshika/wealthnet/internal/server"
	"github.com/vanshika/wealthnet/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wealthnet-server: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "wealthnet-server",
		Short:         "Serve wealth network, layout and intro-path APIs over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "path to a YAML config file (default ./"+config.DefaultFile+" when present)")
	f.String("host", "", "listen host")
	f.Int("port", 0, "listen port")
	f.Bool("metrics", true, "expose /metrics")
	f.String("origins", "", "comma-separated CORS origins")
	f.String("backend", "", "graph backend: memory or neo4j")
	f.String("graph-uri", "", "neo4j bolt URI")
	f.String("graph-db", "", "neo4j database name")
	f.String("graph-user", "", "neo4j username")
	f.String("graph-pass", "", "neo4j password")
	f.Int64("seed", 0, "generator seed for the memory backend")
	f.String("dataset", "", "dataset file (.json or .yaml) for the memory backend")
	f.String("log-level", "", "debug, info, warn or error")
	f.String("log-format", "", "text or json")
	f.String("algorithm", "", "default layout algorithm")
	f.Int("iterations", 0, "force-directed iterations")
	f.Int("max-hops", 0, "default intro-path hop limit")
	f.Duration("path-timeout", 0, "intro-path search deadline")
	return cmd
}

func run(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.New(cfg.Logging)
	collector := metrics.NewCollector()

	backend, err := app.OpenBackend(ctx, cfg, logger, app.BackendOptions{
		OnBreakerStateChange: collector.BreakerStateChanged,
	})
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.Graph.Backend, err)
	}
	defer func() {
		if err := backend.Close(context.Background()); err != nil {
			logger.Warn("closing graph backend failed", "error", err)
		}
	}()

	svc := service.NewNetworkService(backend.Store, app.ServiceOptions(cfg, logger, collector))
	algorithm, err := layout.ParseAlgorithm(cfg.Layout.Algorithm)
	if err != nil {
		return err
	}
	apiHandlers := server.NewAPIHandlers(logger, svc, server.LayoutDefaults{
		Algorithm: algorithm,
		Width:     cfg.Layout.Width,
		Height:    cfg.Layout.Height,
	})

	deps := server.RouterDependencies{
		Health:           server.StoreHealthService{Store: svc},
		API:              apiHandlers,
		AllowedOrigins:   cfg.HTTP.AllowedOrigins(),
		AllowCredentials: cfg.HTTP.AllowCredentials,
	}
	if cfg.HTTP.MetricsEnabled {
		deps.Metrics = collector
	}
	srv := server.New(logger, cfg.HTTP, server.NewRouter(logger, deps))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", "cause", context.Cause(gctx))
		return srv.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
