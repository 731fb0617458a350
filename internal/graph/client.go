package graph

import (
	"context"
	"errors"
)

// Client defines the minimal contract required by the repositories to interact
// with the underlying graph database.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result is a simplified representation of a query response.
type Result struct {
	Records []Record
}

// First returns the first record, if any.
func (r Result) First() (Record, bool) {
	if len(r.Records) == 0 {
		return nil, false
	}
	return r.Records[0], true
}

// Record groups key-value pairs returned from the graph engine.
type Record map[string]any

// String returns the string value stored under key.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// Int returns the integer value stored under key. Bolt integers decode as
// int64; JSON-backed fakes may carry float64.
func (r Record) Int(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

var (
	// ErrMissingURI indicates the graph URI is not provided.
	ErrMissingURI = errors.New("graph URI is required")
	// ErrUnavailable marks calls rejected while the circuit breaker is open.
	ErrUnavailable = errors.New("graph database unavailable")
)
