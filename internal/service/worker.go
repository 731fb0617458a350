package service

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vanshika/wealthnet/internal/domain"
)

// TaskError accumulates multiple errors produced during bulk ingestion.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

// BulkIngestor loads large networks using a bounded worker pool. Nodes are
// written before edges so every edge finds its endpoints.
type BulkIngestor struct {
	service *NetworkService
	workers int
}

// NewBulkIngestor creates a new BulkIngestor instance with the provided concurrency.
func NewBulkIngestor(service *NetworkService, workers int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	return &BulkIngestor{
		service: service,
		workers: workers,
	}
}

// Ingest writes all nodes, then all edges. Edges are skipped when any node
// failed, since their endpoints may be missing.
func (bi *BulkIngestor) Ingest(ctx context.Context, nodes []domain.Node, edges []domain.Edge) (IngestSummary, error) {
	var summary IngestSummary
	written, err := bi.IngestNodes(ctx, nodes)
	summary.Nodes = written
	if err != nil {
		return summary, err
	}
	summary.Edges, err = bi.IngestEdges(ctx, edges)
	return summary, err
}

// IngestNodes upserts nodes concurrently and returns how many succeeded.
func (bi *BulkIngestor) IngestNodes(ctx context.Context, nodes []domain.Node) (int, error) {
	return bi.run(ctx, len(nodes), func(ctx context.Context, idx int) error {
		_, err := bi.service.UpsertNode(ctx, nodes[idx])
		return err
	})
}

// IngestEdges upserts edges concurrently and returns how many succeeded.
func (bi *BulkIngestor) IngestEdges(ctx context.Context, edges []domain.Edge) (int, error) {
	return bi.run(ctx, len(edges), func(ctx context.Context, idx int) error {
		_, err := bi.service.UpsertEdge(ctx, edges[idx])
		return err
	})
}

// run keeps going past individual failures and only stops early on
// cancellation.
func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(ctx context.Context, idx int) error) (int, error) {
	if total == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bi.workers)

	var (
		mu      sync.Mutex
		taskErr TaskError
		done    int
	)
	for i := 0; i < total; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			err := workerFn(gctx, i)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				taskErr.Errors = append(taskErr.Errors, err)
				return nil
			}
			done++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return done, err
	}
	if err := ctx.Err(); err != nil {
		return done, err
	}
	if len(taskErr.Errors) > 0 {
		return done, &taskErr
	}
	return done, nil
}
