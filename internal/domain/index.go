package domain

import (
	"fmt"
	"slices"
)

// Adjacent is one incident edge seen from a node.
type Adjacent struct {
	NodeID string
	Edge   Edge
}

// Index provides id lookup and undirected adjacency over a node/edge set.
// Edges with unknown endpoints and self loops are ignored.
type Index struct {
	nodes []Node
	pos   map[string]int
	adj   map[string][]Adjacent
}

// NewIndex builds an index. Later duplicates of a node id are ignored.
func NewIndex(nodes []Node, edges []Edge) *Index {
	ix := &Index{
		nodes: nodes,
		pos:   make(map[string]int, len(nodes)),
		adj:   make(map[string][]Adjacent, len(nodes)),
	}
	for i, n := range nodes {
		if _, dup := ix.pos[n.ID]; !dup {
			ix.pos[n.ID] = i
		}
	}
	for _, e := range edges {
		if e.Source == e.Target {
			continue
		}
		if !ix.Has(e.Source) || !ix.Has(e.Target) {
			continue
		}
		ix.adj[e.Source] = append(ix.adj[e.Source], Adjacent{NodeID: e.Target, Edge: e})
		ix.adj[e.Target] = append(ix.adj[e.Target], Adjacent{NodeID: e.Source, Edge: e})
	}
	return ix
}

// Has reports whether id is a known node.
func (ix *Index) Has(id string) bool {
	_, ok := ix.pos[id]
	return ok
}

// Node returns the node with the given id.
func (ix *Index) Node(id string) (Node, bool) {
	i, ok := ix.pos[id]
	if !ok {
		return Node{}, false
	}
	return ix.nodes[i], true
}

// Position returns the input offset of id.
func (ix *Index) Position(id string) (int, bool) {
	i, ok := ix.pos[id]
	return i, ok
}

// Neighbors returns the incident edges of id in input edge order.
func (ix *Index) Neighbors(id string) []Adjacent {
	return ix.adj[id]
}

// NeighborIDs returns the distinct ids adjacent to id, sorted.
func (ix *Index) NeighborIDs(id string) []string {
	var ids []string
	for _, a := range ix.adj[id] {
		ids = append(ids, a.NodeID)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// Degree returns the number of valid incident edges of id.
func (ix *Index) Degree(id string) int {
	return len(ix.adj[id])
}

// Validate checks node ids, node types, property variants and edge types.
// Dangling edges are tolerated; consumers skip them.
func (n Network) Validate() error {
	seen := make(map[string]struct{}, len(n.Nodes))
	for i, node := range n.Nodes {
		if node.ID == "" {
			return fmt.Errorf("%w: node %d has no id", ErrInvalidNetwork, i)
		}
		if _, dup := seen[node.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalidNetwork, node.ID)
		}
		seen[node.ID] = struct{}{}
		if !node.Type.Valid() {
			return fmt.Errorf("%w: node %q has unknown type %q", ErrInvalidNetwork, node.ID, node.Type)
		}
		if node.Properties != nil && node.Properties.NodeType() != node.Type {
			return fmt.Errorf("%w: node %q of type %s carries %s properties",
				ErrInvalidNetwork, node.ID, node.Type, node.Properties.NodeType())
		}
	}
	for i, e := range n.Edges {
		if e.Source == "" || e.Target == "" {
			return fmt.Errorf("%w: edge %d is missing an endpoint", ErrInvalidNetwork, i)
		}
		if !e.Type.Valid() {
			return fmt.Errorf("%w: edge %q has unknown type %q", ErrInvalidNetwork, e.ID, e.Type)
		}
	}
	return nil
}
