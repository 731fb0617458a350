package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vanshika/wealthnet/internal/app"
	"github.com/vanshika/wealthnet/internal/client"
	"github.com/vanshika/wealthnet/internal/config"
	"github.com/vanshika/wealthnet/internal/explorer"
	"github.com/vanshika/wealthnet/internal/layout"
	"github.com/vanshika/wealthnet/internal/logging"
	"github.com/vanshika/wealthnet/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wealthnet-explorer: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "wealthnet-explorer",
		Short: "Browse an owner's wealth network in the terminal",
		Long: `wealthnet-explorer draws the network reachable from an owner and finds
warm introduction paths to prospects. With --server it talks to a running
wealthnet-server; otherwise it serves data from a local in-memory network.`,
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
	f.StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	f.String("owner", "", "owner (relationship manager) id to explore")
	f.String("server", "", "wealthnet-server base URL; empty runs against a local network")
	f.String("algorithm", "", "initial layout: force-directed, radial or circular")
	f.Int("iterations", 0, "force-directed iterations")
	f.Int("max-hops", 0, "intro-path hop limit")
	f.Duration("path-timeout", 0, "deadline for each fetch")
	f.Int64("seed", 0, "generator seed for the local network")
	f.String("dataset", "", "dataset file for the local network")
	f.String("log-file", "", "append logs to this file")
	f.String("log-level", "", "debug, info, warn or error")
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, closer, err := logging.NewFile(cfg.Logging)
	if err != nil {
		return err
	}
	defer closer.Close()

	src, cleanup, err := openSources(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	algorithm, err := layout.ParseAlgorithm(cfg.Layout.Algorithm)
	if err != nil {
		return err
	}

	model := explorer.New(ctx, src, explorer.Config{
		OwnerID:       cfg.Explorer.OwnerID,
		Algorithm:     algorithm,
		MaxHops:       cfg.Paths.MaxHops,
		Timeout:       cfg.Paths.Timeout,
		LayoutOptions: app.LayoutOptions(cfg.Layout),
		Logger:        logger,
	})
	_, err = tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	).Run()
	return err
}

func openSources(ctx context.Context, cfg config.Config, logger *slog.Logger) (explorer.Sources, func(), error) {
	if cfg.Explorer.ServerURL != "" {
		c, err := client.New(cfg.Explorer.ServerURL, client.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		if err := c.Health(ctx); err != nil {
			logger.Warn("server health check failed", "url", cfg.Explorer.ServerURL, "error", err)
		}
		return c, func() {}, nil
	}

	backend, err := app.OpenBackend(ctx, cfg, logger, app.BackendOptions{})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := backend.Close(context.Background()); err != nil {
			logger.Warn("closing graph backend failed", "error", err)
		}
	}
	return service.NewNetworkService(backend.Store, app.ServiceOptions(cfg, logger, nil)), cleanup, nil
}
