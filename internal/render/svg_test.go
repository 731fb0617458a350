package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/wealthnet/internal/domain"
	"github.com/vanshika/wealthnet/internal/layout"
)

func laidOut(t *testing.T) domain.Network {
	t.Helper()
	nodes := []domain.Node{
		{ID: "rm-1", Type: domain.NodeRM, Label: "Riya"},
		{ID: "p1", Type: domain.NodePerson, Label: "Aarav & Sons"},
		{ID: "p2", Type: domain.NodePerson, Label: "Meera"},
		{ID: "co", Type: domain.NodeCompany, Label: "Orion"},
	}
	edges := []domain.Edge{
		{ID: "e1", Source: "rm-1", Target: "p1", Type: domain.EdgeManages},
		{ID: "e2", Source: "p1", Target: "p2", Type: domain.EdgeKnows},
		{ID: "e3", Source: "p2", Target: "co", Type: domain.EdgeDirectorOf},
		{ID: "e4", Source: "p2", Target: "ghost", Type: domain.EdgeKnows},
	}
	positioned, err := layout.Compute(nodes, edges, 400, 300, layout.Circular)
	require.NoError(t, err)
	return domain.Network{Nodes: positioned, Edges: edges}
}

func TestSVGDrawsNodesAndEdges(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, laidOut(t), Options{Width: 400, Height: 300, Title: "rm-1 network", Labels: true}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "<?xml"))
	assert.Equal(t, 4, strings.Count(out, "<circle"))
	assert.Equal(t, 3, strings.Count(out, "<line"), "dangling edge skipped")
	assert.Contains(t, out, "Aarav &amp; Sons")
	assert.Contains(t, out, "<title>rm-1 network</title>")
	assert.NotContains(t, out, "opacity", "nothing dimmed without highlights")
}

func TestSVGHighlightsPath(t *testing.T) {
	network := laidOut(t)
	path := &domain.IntroPath{
		Path:          []domain.Node{network.Nodes[1], network.Nodes[2]},
		Relationships: []domain.EdgeType{domain.EdgeKnows},
	}

	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, network, Options{Width: 400, Height: 300, Path: path}))

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, colorPath))
	assert.Equal(t, 2, strings.Count(out, "stroke:"+colorHighlight))
	assert.Equal(t, 2, strings.Count(out, "fill-opacity:0.3"))
}

func TestSVGSkipsUnpositionedNodes(t *testing.T) {
	network := laidOut(t)
	network.Nodes[3].Position = nil

	var buf bytes.Buffer
	require.NoError(t, SVG(&buf, network, Options{Width: 400, Height: 300}))
	assert.Equal(t, 3, strings.Count(buf.String(), "<circle"))
	assert.Equal(t, 2, strings.Count(buf.String(), "<line"))
}

func TestSVGRejectsBadSize(t *testing.T) {
	err := SVG(&bytes.Buffer{}, domain.Network{}, Options{Width: 0, Height: 10})
	assert.ErrorIs(t, err, ErrInvalidSize)
}
