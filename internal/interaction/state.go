// Package interaction holds the graph view state and the actions that
// mutate it. A Controller is owned by a single goroutine; asynchronous
// fetches report back through tickets so superseded responses are dropped.
package interaction

import (
	"slices"

	"github.com/vanshika/wealthnet/internal/domain"
	"github.com/vanshika/wealthnet/internal/layout"
	"github.com/vanshika/wealthnet/internal/viewport"
)

// Status tracks an asynchronous request.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Canvas is the drawable area handed to the layout engine.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// State is a serializable snapshot of the graph view.
type State struct {
	OwnerID   string              `json:"ownerId"`
	Filters   domain.GraphFilters `json:"filters"`
	Algorithm layout.Algorithm    `json:"algorithm"`
	Canvas    Canvas              `json:"canvas"`
	Viewport  viewport.Viewport   `json:"viewport"`
	Network   domain.Network      `json:"network"`

	SelectedNodeID     string   `json:"selectedNodeId,omitempty"`
	HighlightedNodeIDs []string `json:"highlightedNodeIds,omitempty"`
	HoveredNodeID      string   `json:"hoveredNodeId,omitempty"`

	IntroPath        *domain.IntroPath  `json:"introPath,omitempty"`
	PathAlternatives []domain.IntroPath `json:"pathAlternatives,omitempty"`
	PathTargetID     string             `json:"pathTargetId,omitempty"`
	PathNotFound     bool               `json:"pathNotFound,omitempty"`

	GraphStatus    Status `json:"graphStatus"`
	GraphError     string `json:"graphError,omitempty"`
	GraphRetryable bool   `json:"graphRetryable,omitempty"`
	PathStatus     Status `json:"pathStatus"`
	PathError      string `json:"pathError,omitempty"`
}

// IsHighlighted reports whether id is in the highlight set.
func (s State) IsHighlighted(id string) bool {
	_, found := slices.BinarySearch(s.HighlightedNodeIDs, id)
	return found
}

// OnPath reports whether the edge between a and b is a hop of the current
// introduction path.
func (s State) OnPath(a, b string) bool {
	if s.IntroPath == nil {
		return false
	}
	ids := s.IntroPath.NodeIDs()
	for i := 1; i < len(ids); i++ {
		if (ids[i-1] == a && ids[i] == b) || (ids[i-1] == b && ids[i] == a) {
			return true
		}
	}
	return false
}

func (s State) clone() State {
	out := s
	out.Filters.NodeTypes = slices.Clone(s.Filters.NodeTypes)
	out.Filters.Sectors = slices.Clone(s.Filters.Sectors)
	out.Network.Nodes = slices.Clone(s.Network.Nodes)
	out.Network.Edges = slices.Clone(s.Network.Edges)
	out.HighlightedNodeIDs = slices.Clone(s.HighlightedNodeIDs)
	out.PathAlternatives = slices.Clone(s.PathAlternatives)
	if s.IntroPath != nil {
		p := *s.IntroPath
		out.IntroPath = &p
	}
	return out
}

// NavigationTarget is emitted when a node with a linked CRM record is opened.
type NavigationTarget struct {
	NodeID   string          `json:"nodeId"`
	Type     domain.NodeType `json:"type"`
	ClientID string          `json:"clientId"`
}

// GraphRequest is a ticketed network fetch.
type GraphRequest struct {
	Ticket uint64
	Query  domain.NetworkQuery
}

// PathRequest is a ticketed introduction-path query.
type PathRequest struct {
	Ticket uint64
	Query  domain.IntroPathQuery
}
