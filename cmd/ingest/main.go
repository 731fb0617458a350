package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanshika/wealthnet/internal/app"
	"github.com/vanshika/wealthnet/internal/config"
	"github.com/vanshika/wealthnet/internal/generator"
	"github.com/vanshika/wealthnet/internal/logging"
	"github.com/vanshika/wealthnet/internal/service"
)

var errMissingDataset = errors.New("dataset path is required (--dataset)")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wealthnet-ingest: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath   string
	workers      int
	validateOnly bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "wealthnet-ingest",
		Short:         "Load a generated network dataset into Neo4j",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath, cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	f.String("dataset", "", "dataset file (.json or .yaml) produced by wealthnet-datagen")
	f.IntVar(&opts.workers, "workers", 4, "concurrent upsert workers")
	f.BoolVar(&opts.validateOnly, "validate-only", false, "check the dataset without writing it")
	f.String("graph-uri", "", "neo4j bolt URI")
	f.String("graph-db", "", "neo4j database name")
	f.String("graph-user", "", "neo4j username")
	f.String("graph-pass", "", "neo4j password")
	f.String("log-level", "", "debug, info, warn or error")
	f.String("log-format", "", "text or json")
	return cmd
}

func run(parent context.Context, cfg config.Config, opts options) error {
	if parent == nil {
		parent = context.Background()
	}
	logger := logging.New(cfg.Logging).With("component", "ingest")

	if cfg.Graph.DatasetPath == "" {
		return errMissingDataset
	}
	ds, err := generator.ReadDataset(cfg.Graph.DatasetPath)
	if err != nil {
		return err
	}
	if len(ds.Nodes) == 0 {
		return fmt.Errorf("dataset %s has no nodes", cfg.Graph.DatasetPath)
	}
	if err := ds.Network().Validate(); err != nil {
		return fmt.Errorf("dataset %s: %w", cfg.Graph.DatasetPath, err)
	}
	logger.Info("dataset valid", "path", cfg.Graph.DatasetPath, "nodes", len(ds.Nodes), "edges", len(ds.Edges))
	if opts.validateOnly {
		return nil
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := app.OpenRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	svc := service.NewNetworkService(backend.Store, app.ServiceOptions(cfg, logger, nil))
	ingestor := service.NewBulkIngestor(svc, opts.workers)

	start := time.Now()
	logger.Info("ingesting network", "workers", opts.workers)
	summary, err := ingestor.Ingest(ctx, ds.Nodes, ds.Edges)
	logger.Info("ingestion finished",
		"duration", time.Since(start).String(),
		"nodes", summary.Nodes,
		"edges", summary.Edges,
	)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	return nil
}
