package domain

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Properties is the type-specific payload of a node. Each node type has
// exactly one concrete variant.
type Properties interface {
	NodeType() NodeType
}

// PersonProperties describes prospects, clients and other individuals.
type PersonProperties struct {
	Designation  string  `json:"designation,omitempty" yaml:"designation,omitempty"`
	NetWorth     float64 `json:"netWorth,omitempty" yaml:"netWorth,omitempty"`
	Sector       string  `json:"sector,omitempty" yaml:"sector,omitempty"`
	IsClient     bool    `json:"isClient" yaml:"isClient"`
	IsInfluencer bool    `json:"isInfluencer,omitempty" yaml:"isInfluencer,omitempty"`
	Email        string  `json:"email,omitempty" yaml:"email,omitempty"`
}

func (PersonProperties) NodeType() NodeType { return NodePerson }

// CompanyProperties describes a corporate entity.
type CompanyProperties struct {
	CIN       string  `json:"cin,omitempty" yaml:"cin,omitempty"`
	Sector    string  `json:"sector,omitempty" yaml:"sector,omitempty"`
	Valuation float64 `json:"valuation,omitempty" yaml:"valuation,omitempty"`
	Founded   int     `json:"founded,omitempty" yaml:"founded,omitempty"`
}

func (CompanyProperties) NodeType() NodeType { return NodeCompany }

// LiquidityEventProperties describes an IPO, acquisition or similar event
// that unlocks wealth.
type LiquidityEventProperties struct {
	Amount    float64 `json:"amount,omitempty" yaml:"amount,omitempty"`
	Date      string  `json:"date,omitempty" yaml:"date,omitempty"`
	EventKind string  `json:"eventKind,omitempty" yaml:"eventKind,omitempty"`
}

func (LiquidityEventProperties) NodeType() NodeType { return NodeLiquidityEvent }

// NetworkProperties describes a club, association or alumni group.
type NetworkProperties struct {
	MemberCount int    `json:"memberCount,omitempty" yaml:"memberCount,omitempty"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
}

func (NetworkProperties) NodeType() NodeType { return NodeNetwork }

// RMProperties describes a relationship manager.
type RMProperties struct {
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	Role  string `json:"role,omitempty" yaml:"role,omitempty"`
}

func (RMProperties) NodeType() NodeType { return NodeRM }

// NewProperties returns the zero-valued variant for t.
func NewProperties(t NodeType) (Properties, error) {
	switch t {
	case NodePerson:
		return PersonProperties{}, nil
	case NodeCompany:
		return CompanyProperties{}, nil
	case NodeLiquidityEvent:
		return LiquidityEventProperties{}, nil
	case NodeNetwork:
		return NetworkProperties{}, nil
	case NodeRM:
		return RMProperties{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown node type %q", ErrInvalidNetwork, t)
	}
}

// DecodeProperties decodes raw JSON into the variant selected by t. Empty
// input yields the zero-valued variant.
func DecodeProperties(t NodeType, raw []byte) (Properties, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return NewProperties(t)
	}

	var (
		props Properties
		err   error
	)
	switch t {
	case NodePerson:
		var p PersonProperties
		err = json.Unmarshal(raw, &p)
		props = p
	case NodeCompany:
		var p CompanyProperties
		err = json.Unmarshal(raw, &p)
		props = p
	case NodeLiquidityEvent:
		var p LiquidityEventProperties
		err = json.Unmarshal(raw, &p)
		props = p
	case NodeNetwork:
		var p NetworkProperties
		err = json.Unmarshal(raw, &p)
		props = p
	case NodeRM:
		var p RMProperties
		err = json.Unmarshal(raw, &p)
		props = p
	default:
		return nil, fmt.Errorf("%w: unknown node type %q", ErrInvalidNetwork, t)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s properties: %v", ErrInvalidNetwork, t, err)
	}
	return props, nil
}

// PropertiesFromMap converts a loosely typed property bag into the variant
// selected by t.
func PropertiesFromMap(t NodeType, values map[string]any) (Properties, error) {
	if len(values) == 0 {
		return NewProperties(t)
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s properties: %v", ErrInvalidNetwork, t, err)
	}
	return DecodeProperties(t, raw)
}

// PropertiesToMap flattens a variant into a property bag.
func PropertiesToMap(p Properties) (map[string]any, error) {
	if p == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
