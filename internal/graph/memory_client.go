package graph

import (
	"context"
	"maps"
	"strings"
	"sync"
)

// ExecutedQuery captures a cypher statement and parameters executed against the graph.
type ExecutedQuery struct {
	Query  string
	Params map[string]any
}

// Responder computes a canned result for a matching statement.
type Responder func(params map[string]any) (Result, error)

type route struct {
	fragment string
	respond  Responder
}

// MemoryClient is a scripted Client for tests. Statements are answered by
// the first responder whose fragment they contain, then by queued results.
type MemoryClient struct {
	mu           sync.Mutex
	calls        []ExecutedQuery
	writes       []ExecutedQuery
	routes       []route
	readQueue    []Result
	writeQueue   []Result
	err          error
	connectivity error
}

// NewMemoryClient instantiates an empty scripted client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithError configures the client to return the provided error for subsequent calls.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// On registers a responder for statements containing fragment.
func (m *MemoryClient) On(fragment string, fn Responder) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, route{fragment: fragment, respond: fn})
	return m
}

// PushReadResult queues a result for the next unmatched read.
func (m *MemoryClient) PushReadResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readQueue = append(m.readQueue, res)
}

// PushWriteResult queues a result for the next unmatched write.
func (m *MemoryClient) PushWriteResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeQueue = append(m.writeQueue, res)
}

func (m *MemoryClient) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return m.execute(ctx, cypher, params, true)
}

func (m *MemoryClient) ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return m.execute(ctx, cypher, params, false)
}

func (m *MemoryClient) execute(ctx context.Context, cypher string, params map[string]any, write bool) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if m.err != nil {
		return Result{}, m.err
	}

	call := ExecutedQuery{Query: cypher, Params: maps.Clone(params)}
	if write {
		m.writes = append(m.writes, call)
	} else {
		m.calls = append(m.calls, call)
	}

	for _, r := range m.routes {
		if strings.Contains(cypher, r.fragment) {
			return r.respond(params)
		}
	}

	queue := &m.readQueue
	if write {
		queue = &m.writeQueue
	}
	if len(*queue) == 0 {
		return Result{}, nil
	}
	res := (*queue)[0]
	*queue = (*queue)[1:]
	return res, nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	return nil
}

// WriteCalls returns a snapshot of executed write queries.
func (m *MemoryClient) WriteCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.writes...)
}

// ReadCalls returns a snapshot of executed read queries.
func (m *MemoryClient) ReadCalls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.calls...)
}
