// Package app assembles the runtime pieces shared by the commands: the
// network store selected by configuration and the service options derived
// from it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vanshika/wealthnet/internal/config"
	"github.com/vanshika/wealthnet/internal/generator"
	"github.com/vanshika/wealthnet/internal/graph"
	"github.com/vanshika/wealthnet/internal/layout"
	"github.com/vanshika/wealthnet/internal/repository"
	"github.com/vanshika/wealthnet/internal/service"
)

// Backend is an opened network store.
type Backend struct {
	Name  string
	Store service.NetworkStore
	close func(context.Context) error
}

// Close releases the underlying connections, if any.
func (b *Backend) Close(ctx context.Context) error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// BackendOptions carries optional hooks for OpenBackend.
type BackendOptions struct {
	// OnBreakerStateChange observes circuit breaker transitions of the
	// neo4j backend.
	OnBreakerStateChange func(name, from, to string)
}

// OpenBackend builds the store named by cfg.Graph.Backend.
func OpenBackend(ctx context.Context, cfg config.Config, logger *slog.Logger, opts BackendOptions) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Graph.Backend {
	case config.BackendMemory, "":
		store, err := openMemory(ctx, cfg.Graph)
		if err != nil {
			return nil, err
		}
		logger.Info("memory backend ready", "dataset", cfg.Graph.DatasetPath, "seed", cfg.Graph.Seed)
		return &Backend{Name: config.BackendMemory, Store: store}, nil
	case config.BackendNeo4j:
		repo, client, err := openNeo4j(ctx, cfg, logger, opts)
		if err != nil {
			return nil, err
		}
		logger.Info("neo4j backend ready", "uri", cfg.Graph.URI, "database", cfg.Graph.Database)
		return &Backend{Name: config.BackendNeo4j, Store: repo, close: client.Close}, nil
	default:
		return nil, fmt.Errorf("unknown graph backend %q", cfg.Graph.Backend)
	}
}

// OpenRepository opens the neo4j repository directly, for commands that write
// through it regardless of the configured backend.
func OpenRepository(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backend, error) {
	if cfg.Graph.URI == "" {
		return nil, graph.ErrMissingURI
	}
	cfg.Graph.Backend = config.BackendNeo4j
	return OpenBackend(ctx, cfg, logger, BackendOptions{})
}

func openMemory(ctx context.Context, cfg config.GraphConfig) (*repository.MemoryStore, error) {
	var (
		ds  generator.Dataset
		err error
	)
	if cfg.DatasetPath != "" {
		ds, err = generator.ReadDataset(cfg.DatasetPath)
	} else {
		genCfg := generator.DefaultConfig()
		genCfg.Seed = cfg.Seed
		ds, err = generator.New(genCfg).Generate(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load memory dataset: %w", err)
	}
	return repository.NewMemoryStoreFrom(ds.Network(), repository.WithTraversalDepth(cfg.TraversalDepth))
}

func openNeo4j(ctx context.Context, cfg config.Config, logger *slog.Logger, opts BackendOptions) (*repository.Repository, graph.Client, error) {
	client, err := graph.NewNeo4jClient(ctx, graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect graph database: %w", err)
	}
	guarded := graph.NewBreakerClient(client, graph.BreakerSettings{
		Name:          "neo4j",
		MaxRequests:   cfg.Breaker.MaxRequests,
		Interval:      cfg.Breaker.Interval,
		Timeout:       cfg.Breaker.Timeout,
		FailureRatio:  cfg.Breaker.FailureRatio,
		MinRequests:   cfg.Breaker.MinRequests,
		OnStateChange: opts.OnBreakerStateChange,
	}, logger)

	repo := repository.New(guarded, repository.WithTraversalDepth(cfg.Graph.TraversalDepth))
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, nil, errors.Join(fmt.Errorf("ensure schema: %w", err), client.Close(context.Background()))
	}
	return repo, guarded, nil
}

// ServiceOptions maps configuration onto service.Options. A nil observer
// leaves the service's no-op default in place.
func ServiceOptions(cfg config.Config, logger *slog.Logger, observer service.Observer) service.Options {
	return service.Options{
		Logger:        logger,
		Observer:      observer,
		MaxHops:       cfg.Paths.MaxHops,
		Alternatives:  cfg.Paths.Alternatives,
		MaxCandidates: cfg.Paths.MaxCandidates,
		PathTimeout:   cfg.Paths.Timeout,
		Layout:        LayoutOptions(cfg.Layout),
	}
}

// LayoutOptions maps layout configuration onto layout options.
func LayoutOptions(cfg config.LayoutConfig) []layout.Option {
	return []layout.Option{
		layout.WithIterations(cfg.Iterations),
		layout.WithMargin(cfg.Margin),
	}
}
