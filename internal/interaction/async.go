package interaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vanshika/wealthnet/internal/domain"
)

// DefaultTimeout bounds each collaborator call.
const DefaultTimeout = 10 * time.Second

// NetworkSource supplies the nodes and edges visible to an owner.
type NetworkSource interface {
	FetchNetwork(ctx context.Context, q domain.NetworkQuery) (domain.Network, error)
}

// IntroPathSource answers introduction-path queries.
type IntroPathSource interface {
	FindIntroPath(ctx context.Context, q domain.IntroPathQuery) (domain.IntroPathResult, error)
}

// NetworkLoaded carries a fetch result back to the owning goroutine.
type NetworkLoaded struct {
	Ticket  uint64
	Network domain.Network
	Err     error
}

// IntroPathLoaded carries a path result back to the owning goroutine.
type IntroPathLoaded struct {
	Ticket uint64
	Result domain.IntroPathResult
	Err    error
}

// LoadNetwork runs a fetch with a timeout. Every failure is reported as a
// retryable domain.ErrDataFetch.
func LoadNetwork(ctx context.Context, src NetworkSource, req GraphRequest, timeout time.Duration) NetworkLoaded {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	network, err := src.FetchNetwork(ctx, req.Query)
	if err != nil {
		return NetworkLoaded{Ticket: req.Ticket, Err: classify(ctx, err, timeout)}
	}
	return NetworkLoaded{Ticket: req.Ticket, Network: network}
}

// QueryIntroPath runs a path query with a timeout. Invalid-request and
// not-found results pass through; anything else becomes domain.ErrDataFetch.
func QueryIntroPath(ctx context.Context, src IntroPathSource, req PathRequest, timeout time.Duration) IntroPathLoaded {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	result, err := src.FindIntroPath(ctx, req.Query)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidPathRequest) && !isNotFound(err) {
			err = classify(ctx, err, timeout)
		}
		return IntroPathLoaded{Ticket: req.Ticket, Err: err}
	}
	return IntroPathLoaded{Ticket: req.Ticket, Result: result}
}

// Apply routes an async result to the matching Apply method.
func (c *Controller) Apply(msg any) bool {
	switch m := msg.(type) {
	case NetworkLoaded:
		return c.ApplyNetwork(m.Ticket, m.Network, m.Err)
	case IntroPathLoaded:
		return c.ApplyIntroPath(m.Ticket, m.Result, m.Err)
	}
	return false
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func classify(ctx context.Context, err error, timeout time.Duration) error {
	if errors.Is(err, domain.ErrDataFetch) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		return fmt.Errorf("%w: timed out after %s", domain.ErrDataFetch, timeout)
	}
	return fmt.Errorf("%w: %w", domain.ErrDataFetch, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrPathNotFound)
}
