package service

import (
	"github.com/goccy/go-json"

	"github.com/vanshika/wealthnet/internal/domain"
)

// NodeInput is the inbound payload for a node upsert. It stays separate
// from domain.Node so the wire shape can be validated before decoding
// properties.
type NodeInput struct {
	ID             string          `json:"id" validate:"required,max=128"`
	Type           domain.NodeType `json:"type" validate:"required,oneof=person company liquidity_event network rm"`
	Label          string          `json:"label" validate:"max=256"`
	Properties     json.RawMessage `json:"properties,omitempty"`
	LinkedClientID string          `json:"linkedClientId,omitempty" validate:"max=128"`
}

// EdgeInput is the inbound payload for an edge upsert. A missing id is
// derived from the endpoints and type.
type EdgeInput struct {
	ID     string          `json:"id,omitempty" validate:"max=128"`
	Source string          `json:"source" validate:"required,nefield=Target"`
	Target string          `json:"target" validate:"required"`
	Type   domain.EdgeType `json:"type" validate:"required,oneof=manages promoter_of director_of investor_in member_of knows affects involves"`
	Label  string          `json:"label,omitempty" validate:"max=256"`
}

// Node decodes the input into a domain node.
func (in NodeInput) Node() (domain.Node, error) {
	props, err := domain.DecodeProperties(in.Type, in.Properties)
	if err != nil {
		return domain.Node{}, err
	}
	node := domain.Node{
		ID:         in.ID,
		Type:       in.Type,
		Label:      in.Label,
		Properties: props,
	}
	if in.LinkedClientID != "" {
		node.Metadata = &domain.NodeMetadata{LinkedClientID: in.LinkedClientID}
	}
	return node, nil
}

// Edge converts the input into a domain edge.
func (in EdgeInput) Edge() domain.Edge {
	return domain.Edge{
		ID:     in.ID,
		Source: in.Source,
		Target: in.Target,
		Type:   in.Type,
		Label:  in.Label,
	}
}

// IngestSummary reports what a bulk load wrote.
type IngestSummary struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}
