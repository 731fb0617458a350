package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vanshika/wealthnet/internal/domain"
)

// MemoryStore keeps a network in process and answers fetches with the same
// reachability and filter semantics as Repository.
type MemoryStore struct {
	mu        sync.RWMutex
	depth     int
	nodes     []domain.Node
	nodeIndex map[string]int
	edges     []domain.Edge
	edgeIndex map[string]int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := applyOptions(opts)
	return &MemoryStore{
		depth:     s.depth,
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[string]int),
	}
}

// NewMemoryStoreFrom validates network and loads it into a new store.
// Dangling edges are dropped.
func NewMemoryStoreFrom(network domain.Network, opts ...Option) (*MemoryStore, error) {
	if err := network.Validate(); err != nil {
		return nil, err
	}
	store := NewMemoryStore(opts...)
	ctx := context.Background()
	for _, n := range network.Nodes {
		if err := store.UpsertNode(ctx, n); err != nil {
			return nil, err
		}
	}
	for _, e := range network.Edges {
		err := store.UpsertEdge(ctx, e)
		if errors.Is(err, ErrMissingEndpoint) {
			continue
		}
		if err != nil {
			return nil, err
		}
	}
	return store, nil
}

func (s *MemoryStore) UpsertNode(_ context.Context, node domain.Node) error {
	if err := checkNode(node); err != nil {
		return err
	}
	if node.Properties == nil {
		node.Properties, _ = domain.NewProperties(node.Type)
	}
	node.Position = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.nodeIndex[node.ID]; ok {
		s.nodes[i] = node
		return nil
	}
	s.nodeIndex[node.ID] = len(s.nodes)
	s.nodes = append(s.nodes, node)
	return nil
}

func (s *MemoryStore) UpsertEdge(_ context.Context, edge domain.Edge) error {
	if err := checkEdge(edge); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, okSource := s.nodeIndex[edge.Source]
	_, okTarget := s.nodeIndex[edge.Target]
	if !okSource || !okTarget {
		return fmt.Errorf("upsert edge %s (%s -> %s): %w", edge.ID, edge.Source, edge.Target, ErrMissingEndpoint)
	}
	if i, ok := s.edgeIndex[edge.ID]; ok {
		s.edges[i] = edge
		return nil
	}
	s.edgeIndex[edge.ID] = len(s.edges)
	s.edges = append(s.edges, edge)
	return nil
}

func (s *MemoryStore) FetchNetwork(ctx context.Context, q domain.NetworkQuery) (domain.Network, error) {
	if q.OwnerID == "" {
		return domain.Network{}, errors.New("owner id is required")
	}
	if err := ctx.Err(); err != nil {
		return domain.Network{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.nodeIndex[q.OwnerID]; !ok {
		return emptyNetwork(), nil
	}

	ix := domain.NewIndex(s.nodes, s.edges)
	reached := map[string]struct{}{q.OwnerID: {}}
	frontier := []string{q.OwnerID}
	for hop, depth := 0, depthFor(q, s.depth); hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, id := range frontier {
			for _, nb := range ix.NeighborIDs(id) {
				if _, seen := reached[nb]; seen {
					continue
				}
				reached[nb] = struct{}{}
				next = append(next, nb)
			}
		}
		frontier = next
	}

	nodes := make([]domain.Node, 0, len(reached))
	for _, n := range s.nodes {
		if _, ok := reached[n.ID]; ok {
			nodes = append(nodes, n)
		}
	}
	edges := make([]domain.Edge, 0, len(s.edges))
	for _, e := range s.edges {
		_, okSource := reached[e.Source]
		_, okTarget := reached[e.Target]
		if okSource && okTarget {
			edges = append(edges, e)
		}
	}
	return assemble(nodes, edges, q), nil
}

// Snapshot returns a copy of everything stored.
func (s *MemoryStore) Snapshot() domain.Network {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes := append([]domain.Node(nil), s.nodes...)
	edges := append([]domain.Edge(nil), s.edges...)
	return domain.Network{Nodes: nodes, Edges: edges, Stats: domain.ComputeStats(nodes, edges)}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
