package domain

import (
	"slices"
	"strings"
)

// GraphFilters narrows the network returned by the data collaborator. Empty
// sets mean no restriction.
type GraphFilters struct {
	NodeTypes   []NodeType `json:"nodeTypes,omitempty" yaml:"nodeTypes,omitempty" validate:"dive,oneof=person company liquidity_event network rm"`
	Sectors     []string   `json:"sectors,omitempty" yaml:"sectors,omitempty"`
	OnlyClients bool       `json:"onlyClients,omitempty" yaml:"onlyClients,omitempty"`
}

// Normalize trims, lowercases, sorts and dedupes the filter sets.
func (f GraphFilters) Normalize() GraphFilters {
	out := GraphFilters{OnlyClients: f.OnlyClients}
	for _, t := range f.NodeTypes {
		t = NodeType(strings.ToLower(strings.TrimSpace(string(t))))
		if t != "" {
			out.NodeTypes = append(out.NodeTypes, t)
		}
	}
	for _, s := range f.Sectors {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out.Sectors = append(out.Sectors, s)
		}
	}
	slices.Sort(out.NodeTypes)
	out.NodeTypes = slices.Compact(out.NodeTypes)
	slices.Sort(out.Sectors)
	out.Sectors = slices.Compact(out.Sectors)
	return out
}

// IsZero reports whether f places no restriction on the network.
func (f GraphFilters) IsZero() bool {
	return len(f.NodeTypes) == 0 && len(f.Sectors) == 0 && !f.OnlyClients
}

// Matches reports whether n passes f. Sector filters only apply to nodes
// carrying a sector and the client filter only applies to persons.
func (f GraphFilters) Matches(n Node) bool {
	if len(f.NodeTypes) > 0 && !slices.Contains(f.NodeTypes, n.Type) {
		return false
	}
	if len(f.Sectors) > 0 {
		if sector, ok := n.Sector(); ok {
			matched := false
			for _, s := range f.Sectors {
				if strings.EqualFold(s, sector) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	if f.OnlyClients && n.Type == NodePerson && !n.IsClient() {
		return false
	}
	return true
}

// FilterNetwork applies f to nodes and keeps edges whose endpoints both
// survive. The owner node is always kept.
func FilterNetwork(nodes []Node, edges []Edge, f GraphFilters, ownerID string) ([]Node, []Edge) {
	keptNodes := make([]Node, 0, len(nodes))
	kept := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if n.ID == ownerID || f.Matches(n) {
			keptNodes = append(keptNodes, n)
			kept[n.ID] = struct{}{}
		}
	}

	keptEdges := make([]Edge, 0, len(edges))
	for _, e := range edges {
		_, okSource := kept[e.Source]
		_, okTarget := kept[e.Target]
		if okSource && okTarget {
			keptEdges = append(keptEdges, e)
		}
	}
	return keptNodes, keptEdges
}
