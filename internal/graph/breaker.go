package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSettings tunes BreakerClient.
type BreakerSettings struct {
	Name         string
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
	// OnStateChange is called after every transition, e.g. to export metrics.
	OnStateChange func(name, from, to string)
}

// BreakerClient guards a Client with a circuit breaker. While the breaker is
// open calls fail fast with ErrUnavailable.
type BreakerClient struct {
	next Client
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerClient wraps next.
func NewBreakerClient(next Client, s BreakerSettings, logger *slog.Logger) *BreakerClient {
	if logger == nil {
		logger = slog.Default()
	}
	if s.Name == "" {
		s.Name = "graph"
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("graph circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			if s.OnStateChange != nil {
				s.OnStateChange(name, from.String(), to.String())
			}
		},
		// Caller cancellations say nothing about database health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &BreakerClient{next: next, cb: cb}
}

func (b *BreakerClient) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return b.run(func() (Result, error) { return b.next.ExecuteWrite(ctx, cypher, params) })
}

func (b *BreakerClient) ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return b.run(func() (Result, error) { return b.next.ExecuteRead(ctx, cypher, params) })
}

func (b *BreakerClient) VerifyConnectivity(ctx context.Context) error {
	_, err := b.run(func() (Result, error) { return Result{}, b.next.VerifyConnectivity(ctx) })
	return err
}

func (b *BreakerClient) Close(ctx context.Context) error {
	return b.next.Close(ctx)
}

// State reports the breaker state name.
func (b *BreakerClient) State() string {
	return b.cb.State().String()
}

func (b *BreakerClient) run(fn func() (Result, error)) (Result, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil {
		return Result{}, err
	}
	res, _ := out.(Result)
	return res, nil
}
