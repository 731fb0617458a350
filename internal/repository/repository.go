package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/vanshika/wealthnet/internal/domain"
	"github.com/vanshika/wealthnet/internal/graph"
)

// DefaultTraversalDepth bounds how many hops from the owner a fetch reaches.
const DefaultTraversalDepth = 4

// ErrMissingEndpoint is returned when an edge references an unknown node.
var ErrMissingEndpoint = errors.New("edge endpoint not found")

// Repository encapsulates graph persistence operations.
type Repository struct {
	client graph.Client
	depth  int
}

// Option customises a Repository or MemoryStore.
type Option func(*settings)

type settings struct {
	depth int
}

// WithTraversalDepth overrides DefaultTraversalDepth. Non-positive values are ignored.
func WithTraversalDepth(depth int) Option {
	return func(s *settings) {
		if depth > 0 {
			s.depth = depth
		}
	}
}

func applyOptions(opts []Option) settings {
	s := settings{depth: DefaultTraversalDepth}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client, opts ...Option) *Repository {
	s := applyOptions(opts)
	return &Repository{client: client, depth: s.depth}
}

// EnsureSchema creates the uniqueness constraints the upserts rely on.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaCypher {
		if _, err := r.client.ExecuteWrite(ctx, stmt, nil); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Ping checks the graph database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.VerifyConnectivity(ctx)
}

// UpsertNode ensures a node exists with the latest label, properties and metadata.
func (r *Repository) UpsertNode(ctx context.Context, node domain.Node) error {
	if err := checkNode(node); err != nil {
		return err
	}
	propsJSON, err := json.Marshal(node.Properties)
	if err != nil {
		return fmt.Errorf("encode properties for %s: %w", node.ID, err)
	}

	sector, _ := node.Sector()
	params := map[string]any{
		"nodeId":         node.ID,
		"type":           string(node.Type),
		"label":          node.Label,
		"propertiesJson": string(propsJSON),
		"linkedClientId": node.LinkedClientID(),
		"sector":         sector,
		"isClient":       node.IsClient(),
	}

	if _, err := r.client.ExecuteWrite(ctx, upsertNodeCypher, params); err != nil {
		return fmt.Errorf("upsert node %s: %w", node.ID, err)
	}
	return nil
}

// UpsertEdge ensures a relationship exists between two stored nodes.
func (r *Repository) UpsertEdge(ctx context.Context, edge domain.Edge) error {
	if err := checkEdge(edge); err != nil {
		return err
	}
	params := map[string]any{
		"edgeId":   edge.ID,
		"sourceId": edge.Source,
		"targetId": edge.Target,
		"type":     string(edge.Type),
		"label":    edge.Label,
	}

	res, err := r.client.ExecuteWrite(ctx, upsertEdgeCypher, params)
	if err != nil {
		return fmt.Errorf("upsert edge %s: %w", edge.ID, err)
	}
	if _, ok := res.First(); !ok {
		return fmt.Errorf("upsert edge %s (%s -> %s): %w", edge.ID, edge.Source, edge.Target, ErrMissingEndpoint)
	}
	return nil
}

// FetchNetwork returns the owner's neighbourhood, bounded by the traversal
// depth, with the query filters applied. An unknown owner yields an empty
// network.
func (r *Repository) FetchNetwork(ctx context.Context, q domain.NetworkQuery) (domain.Network, error) {
	if q.OwnerID == "" {
		return domain.Network{}, errors.New("owner id is required")
	}

	res, err := r.client.ExecuteRead(ctx, fmt.Sprintf(networkNodesCypherTemplate, depthFor(q, r.depth)), map[string]any{
		"ownerId": q.OwnerID,
	})
	if err != nil {
		return domain.Network{}, fmt.Errorf("network nodes query: %w", err)
	}

	nodes := make([]domain.Node, 0, len(res.Records))
	for _, rec := range res.Records {
		node, err := nodeFromRecord(rec)
		if err != nil {
			return domain.Network{}, err
		}
		nodes = append(nodes, node)
	}
	if len(nodes) == 0 {
		return emptyNetwork(), nil
	}

	res, err = r.client.ExecuteRead(ctx, networkEdgesCypher, map[string]any{
		"nodeIds": domain.NodeIDs(nodes),
	})
	if err != nil {
		return domain.Network{}, fmt.Errorf("network edges query: %w", err)
	}

	edges := make([]domain.Edge, 0, len(res.Records))
	for _, rec := range res.Records {
		edges = append(edges, domain.Edge{
			ID:     rec.String("edgeId"),
			Source: rec.String("sourceId"),
			Target: rec.String("targetId"),
			Type:   domain.EdgeType(rec.String("type")),
			Label:  rec.String("label"),
		})
	}

	return assemble(nodes, edges, q), nil
}

func assemble(nodes []domain.Node, edges []domain.Edge, q domain.NetworkQuery) domain.Network {
	nodes, edges = domain.FilterNetwork(nodes, edges, q.Filters.Normalize(), q.OwnerID)
	return domain.Network{
		Nodes: nodes,
		Edges: edges,
		Stats: domain.ComputeStats(nodes, edges),
	}
}

func depthFor(q domain.NetworkQuery, fallback int) int {
	if q.Depth > 0 {
		return q.Depth
	}
	return fallback
}

func emptyNetwork() domain.Network {
	return domain.Network{
		Nodes: []domain.Node{},
		Edges: []domain.Edge{},
		Stats: domain.ComputeStats(nil, nil),
	}
}

func nodeFromRecord(rec graph.Record) (domain.Node, error) {
	node := domain.Node{
		ID:    rec.String("nodeId"),
		Type:  domain.NodeType(rec.String("type")),
		Label: rec.String("label"),
	}
	props, err := domain.DecodeProperties(node.Type, []byte(rec.String("propertiesJson")))
	if err != nil {
		return domain.Node{}, fmt.Errorf("node %s: %w", node.ID, err)
	}
	node.Properties = props
	if linked := rec.String("linkedClientId"); linked != "" {
		node.Metadata = &domain.NodeMetadata{LinkedClientID: linked}
	}
	return node, nil
}

func checkNode(n domain.Node) error {
	if n.ID == "" {
		return fmt.Errorf("%w: node id is required", domain.ErrInvalidNetwork)
	}
	if !n.Type.Valid() {
		return fmt.Errorf("%w: node %s has unknown type %q", domain.ErrInvalidNetwork, n.ID, n.Type)
	}
	if n.Properties != nil && n.Properties.NodeType() != n.Type {
		return fmt.Errorf("%w: node %s carries %s properties", domain.ErrInvalidNetwork, n.ID, n.Properties.NodeType())
	}
	return nil
}

func checkEdge(e domain.Edge) error {
	if e.ID == "" {
		return fmt.Errorf("%w: edge id is required", domain.ErrInvalidNetwork)
	}
	if e.Source == "" || e.Target == "" {
		return fmt.Errorf("%w: edge %s needs both endpoints", domain.ErrInvalidNetwork, e.ID)
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: edge %s has unknown type %q", domain.ErrInvalidNetwork, e.ID, e.Type)
	}
	return nil
}

var schemaCypher = []string{
	`CREATE CONSTRAINT network_node_id IF NOT EXISTS FOR (n:NetworkNode) REQUIRE n.nodeId IS UNIQUE`,
	`CREATE INDEX network_node_type IF NOT EXISTS FOR (n:NetworkNode) ON (n.type)`,
}

const upsertNodeCypher = `
MERGE (n:NetworkNode {nodeId: $nodeId})
SET n.type = $type,
	n.label = $label,
	n.propertiesJson = $propertiesJson,
	n.linkedClientId = $linkedClientId,
	n.sector = $sector,
	n.isClient = $isClient,
	n.updatedAt = datetime()
RETURN n.nodeId AS nodeId
`

const upsertEdgeCypher = `
MATCH (a:NetworkNode {nodeId: $sourceId})
MATCH (b:NetworkNode {nodeId: $targetId})
MERGE (a)-[r:RELATES {edgeId: $edgeId}]->(b)
SET r.type = $type,
	r.label = $label
RETURN r.edgeId AS edgeId
`

// networkNodesCypherTemplate takes the traversal depth; variable-length
// bounds cannot be parameterised.
const networkNodesCypherTemplate = `
MATCH (owner:NetworkNode {nodeId: $ownerId})-[:RELATES*0..%d]-(n:NetworkNode)
WITH DISTINCT n
RETURN n.nodeId AS nodeId,
	n.type AS type,
	n.label AS label,
	n.propertiesJson AS propertiesJson,
	n.linkedClientId AS linkedClientId
ORDER BY nodeId
`

const networkEdgesCypher = `
MATCH (a:NetworkNode)-[r:RELATES]->(b:NetworkNode)
WHERE a.nodeId IN $nodeIds AND b.nodeId IN $nodeIds
RETURN r.edgeId AS edgeId,
	a.nodeId AS sourceId,
	b.nodeId AS targetId,
	r.type AS type,
	r.label AS label
ORDER BY edgeId
`
