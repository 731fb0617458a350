package domain

import (
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

type nodeJSON struct {
	ID         string          `json:"id"`
	Type       NodeType        `json:"type"`
	Label      string          `json:"label"`
	Properties json.RawMessage `json:"properties,omitempty"`
	Position   *Point          `json:"position,omitempty"`
	Metadata   *NodeMetadata   `json:"metadata,omitempty"`
}

// MarshalJSON encodes the node with its properties inlined as an object.
func (n Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		ID:       n.ID,
		Type:     n.Type,
		Label:    n.Label,
		Position: n.Position,
		Metadata: n.Metadata,
	}
	if n.Properties != nil {
		raw, err := json.Marshal(n.Properties)
		if err != nil {
			return nil, fmt.Errorf("encode node %s properties: %w", n.ID, err)
		}
		out.Properties = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the node, selecting the properties variant by type.
func (n *Node) UnmarshalJSON(data []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	props, err := DecodeProperties(in.Type, in.Properties)
	if err != nil {
		return fmt.Errorf("node %q: %w", in.ID, err)
	}
	*n = Node{
		ID:         in.ID,
		Type:       in.Type,
		Label:      in.Label,
		Properties: props,
		Position:   in.Position,
		Metadata:   in.Metadata,
	}
	return nil
}

type nodeYAML struct {
	ID         string         `yaml:"id"`
	Type       NodeType       `yaml:"type"`
	Label      string         `yaml:"label"`
	Properties map[string]any `yaml:"properties,omitempty"`
	Position   *Point         `yaml:"position,omitempty"`
	Metadata   *NodeMetadata  `yaml:"metadata,omitempty"`
}

// MarshalYAML implements yaml.Marshaler.
func (n Node) MarshalYAML() (any, error) {
	props, err := PropertiesToMap(n.Properties)
	if err != nil {
		return nil, fmt.Errorf("encode node %s properties: %w", n.ID, err)
	}
	return nodeYAML{
		ID:         n.ID,
		Type:       n.Type,
		Label:      n.Label,
		Properties: props,
		Position:   n.Position,
		Metadata:   n.Metadata,
	}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var in nodeYAML
	if err := value.Decode(&in); err != nil {
		return err
	}
	props, err := PropertiesFromMap(in.Type, in.Properties)
	if err != nil {
		return fmt.Errorf("node %q: %w", in.ID, err)
	}
	*n = Node{
		ID:         in.ID,
		Type:       in.Type,
		Label:      in.Label,
		Properties: props,
		Position:   in.Position,
		Metadata:   in.Metadata,
	}
	return nil
}
