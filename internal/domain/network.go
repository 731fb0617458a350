package domain

// NodeType classifies a vertex in the relationship network.
type NodeType string

const (
	NodePerson         NodeType = "person"
	NodeCompany        NodeType = "company"
	NodeLiquidityEvent NodeType = "liquidity_event"
	NodeNetwork        NodeType = "network"
	NodeRM             NodeType = "rm"
)

// NodeTypes lists every supported node type in display order.
func NodeTypes() []NodeType {
	return []NodeType{NodePerson, NodeCompany, NodeLiquidityEvent, NodeNetwork, NodeRM}
}

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	switch t {
	case NodePerson, NodeCompany, NodeLiquidityEvent, NodeNetwork, NodeRM:
		return true
	}
	return false
}

// EdgeType classifies a relationship between two nodes.
type EdgeType string

const (
	EdgeManages    EdgeType = "manages"
	EdgePromoterOf EdgeType = "promoter_of"
	EdgeDirectorOf EdgeType = "director_of"
	EdgeInvestorIn EdgeType = "investor_in"
	EdgeMemberOf   EdgeType = "member_of"
	EdgeKnows      EdgeType = "knows"
	EdgeAffects    EdgeType = "affects"
	EdgeInvolves   EdgeType = "involves"
)

// EdgeTypes lists every supported edge type.
func EdgeTypes() []EdgeType {
	return []EdgeType{
		EdgeManages, EdgePromoterOf, EdgeDirectorOf, EdgeInvestorIn,
		EdgeMemberOf, EdgeKnows, EdgeAffects, EdgeInvolves,
	}
}

// Valid reports whether t is a known edge type.
func (t EdgeType) Valid() bool {
	for _, known := range EdgeTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Point is a 2D coordinate in graph space.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodeMetadata carries references into the surrounding CRM.
type NodeMetadata struct {
	LinkedClientID string `json:"linkedClientId,omitempty" yaml:"linkedClientId,omitempty"`
}

// Node is a vertex of the relationship network. Position is nil until a
// layout has been computed.
type Node struct {
	ID         string
	Type       NodeType
	Label      string
	Properties Properties
	Position   *Point
	Metadata   *NodeMetadata
}

// Person returns the person properties when n is a person node.
func (n Node) Person() (PersonProperties, bool) {
	p, ok := n.Properties.(PersonProperties)
	return p, ok && n.Type == NodePerson
}

// IsClient reports whether n is a person already onboarded as a client.
func (n Node) IsClient() bool {
	p, ok := n.Person()
	return ok && p.IsClient
}

// Sector returns the node's sector, if the node type carries one.
func (n Node) Sector() (string, bool) {
	switch p := n.Properties.(type) {
	case PersonProperties:
		return p.Sector, p.Sector != ""
	case CompanyProperties:
		return p.Sector, p.Sector != ""
	}
	return "", false
}

// LinkedClientID returns the CRM client id attached to n, if any.
func (n Node) LinkedClientID() string {
	if n.Metadata == nil {
		return ""
	}
	return n.Metadata.LinkedClientID
}

// WithPosition returns a copy of n placed at p.
func (n Node) WithPosition(p Point) Node {
	n.Position = &p
	return n
}

// Edge is a typed relationship between two nodes.
type Edge struct {
	ID     string   `json:"id" yaml:"id"`
	Source string   `json:"source" yaml:"source"`
	Target string   `json:"target" yaml:"target"`
	Type   EdgeType `json:"type" yaml:"type"`
	Label  string   `json:"label,omitempty" yaml:"label,omitempty"`
}

// Other returns the endpoint of e opposite to id.
func (e Edge) Other(id string) string {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}

// NetworkStats summarises a network payload.
type NetworkStats struct {
	TotalNodes     int              `json:"totalNodes"`
	TotalEdges     int              `json:"totalEdges"`
	NodeTypeCounts map[NodeType]int `json:"nodeTypeCounts"`
}

// Network is the payload exchanged between the data collaborator and the
// graph view.
type Network struct {
	Nodes []Node       `json:"nodes"`
	Edges []Edge       `json:"edges"`
	Stats NetworkStats `json:"stats"`
}

// NetworkQuery requests the network visible to an owner. Depth overrides
// the store's traversal depth when positive.
type NetworkQuery struct {
	OwnerID string       `json:"ownerId" validate:"required"`
	Filters GraphFilters `json:"filters"`
	Depth   int          `json:"depth,omitempty" validate:"gte=0,lte=8"`
}

// ComputeStats counts nodes, edges and nodes per type.
func ComputeStats(nodes []Node, edges []Edge) NetworkStats {
	counts := make(map[NodeType]int)
	for _, n := range nodes {
		counts[n.Type]++
	}
	return NetworkStats{
		TotalNodes:     len(nodes),
		TotalEdges:     len(edges),
		NodeTypeCounts: counts,
	}
}

// NodeIDs returns the ids of nodes in order.
func NodeIDs(nodes []Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
