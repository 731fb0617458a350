package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"pgregory.net/rapid"

	"github.com/vanshika/wealthnet/internal/domain"
)

const eps = 1e-6

func people(n int) []domain.Node {
	nodes := make([]domain.Node, n)
	for i := range nodes {
		nodes[i] = domain.Node{
			ID:         fmt.Sprintf("p%d", i),
			Type:       domain.NodePerson,
			Properties: domain.PersonProperties{},
		}
	}
	return nodes
}

func dist(a, b domain.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func TestComputeEveryNodeFiniteAndInBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 40).Draw(t, "nodes")
		width := rapid.Float64Range(20, 2000).Draw(t, "width")
		height := rapid.Float64Range(20, 2000).Draw(t, "height")
		algorithm := rapid.SampledFrom(Algorithms()).Draw(t, "algorithm")

		nodes := people(n)
		var edges []domain.Edge
		edgeCount := rapid.IntRange(0, 3*n).Draw(t, "edges")
		for i := 0; i < edgeCount; i++ {
			s := rapid.IntRange(0, n).Draw(t, "source")
			d := rapid.IntRange(0, n-1).Draw(t, "target")
			edges = append(edges, domain.Edge{
				Source: fmt.Sprintf("p%d", s),
				Target: fmt.Sprintf("p%d", d),
				Type:   domain.EdgeKnows,
			})
		}

		out, err := Compute(nodes, edges, width, height, algorithm, WithIterations(15))
		if err != nil {
			t.Fatalf("compute: %v", err)
		}
		if len(out) != n {
			t.Fatalf("got %d nodes, want %d", len(out), n)
		}
		for i, node := range out {
			if node.ID != nodes[i].ID {
				t.Fatalf("node %d reordered: %s", i, node.ID)
			}
			p := node.Position
			if p == nil {
				t.Fatalf("node %s has no position", node.ID)
			}
			if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
				t.Fatalf("node %s has non-finite position %+v", node.ID, *p)
			}
			if p.X < -eps || p.X > width+eps || p.Y < -eps || p.Y > height+eps {
				t.Fatalf("node %s at %+v outside %vx%v", node.ID, *p, width, height)
			}
		}
	})
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	nodes := people(3)
	_, err := Compute(nodes, nil, 400, 300, ForceDirected)
	require.NoError(t, err)
	for _, n := range nodes {
		assert.Nil(t, n.Position)
	}
}

func TestComputeDegenerateAndInvalidInput(t *testing.T) {
	out, err := Compute(nil, nil, 800, 600, Radial)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = Compute(people(2), nil, 0, 600, Circular)
	assert.ErrorIs(t, err, ErrInvalidCanvas)

	_, err = Compute(people(2), nil, 800, 600, Algorithm("spiral"))
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestSingleNodeIsCentred(t *testing.T) {
	for _, algorithm := range Algorithms() {
		t.Run(string(algorithm), func(t *testing.T) {
			out, err := Compute(people(1), nil, 800, 600, algorithm)
			require.NoError(t, err)
			assert.InDelta(t, 400, out[0].Position.X, eps)
			assert.InDelta(t, 300, out[0].Position.Y, eps)
		})
	}
}

func TestCircularSpacingAndRadius(t *testing.T) {
	const n = 7
	out, err := Compute(people(n), nil, 800, 600, Circular)
	require.NoError(t, err)

	centre := domain.Point{X: 400, Y: 300}
	wantRadius := 600.0/2 - DefaultMargin
	step := 2 * math.Pi / n

	for i, node := range out {
		assert.InDelta(t, wantRadius, dist(*node.Position, centre), 1e-9)

		next := *out[(i+1)%n].Position
		a1 := math.Atan2(node.Position.Y-centre.Y, node.Position.X-centre.X)
		a2 := math.Atan2(next.Y-centre.Y, next.X-centre.X)
		delta := math.Mod(a2-a1+2*math.Pi, 2*math.Pi)
		assert.InDelta(t, step, delta, 1e-9)
	}

	assert.InDelta(t, centre.X, out[0].Position.X, 1e-9, "first node starts at 12 o'clock")
	assert.Less(t, out[0].Position.Y, centre.Y)
}

func TestRadialRingsGrowWithHopDistance(t *testing.T) {
	nodes := append([]domain.Node{{ID: "rm-1", Type: domain.NodeRM, Properties: domain.RMProperties{}}}, people(7)...)
	edges := []domain.Edge{
		{Source: "rm-1", Target: "p0", Type: domain.EdgeManages},
		{Source: "rm-1", Target: "p1", Type: domain.EdgeKnows},
		{Source: "p0", Target: "p2", Type: domain.EdgeKnows},
		{Source: "p3", Target: "p1", Type: domain.EdgeKnows},
		{Source: "p2", Target: "p4", Type: domain.EdgeMemberOf},
		{Source: "p4", Target: "ghost", Type: domain.EdgeKnows},
		{Source: "p5", Target: "p6", Type: domain.EdgeKnows},
	}
	wantHops := map[string]int{"rm-1": 0, "p0": 1, "p1": 1, "p2": 2, "p3": 2, "p4": 3, "p5": 4, "p6": 4}

	out, err := Compute(nodes, edges, 1000, 800, Radial)
	require.NoError(t, err)

	centre := domain.Point{X: 500, Y: 400}
	maxByHop := map[int]float64{}
	minByHop := map[int]float64{}
	for _, node := range out {
		h := wantHops[node.ID]
		d := dist(*node.Position, centre)
		if cur, ok := maxByHop[h]; !ok || d > cur {
			maxByHop[h] = d
		}
		if cur, ok := minByHop[h]; !ok || d < cur {
			minByHop[h] = d
		}
	}

	assert.InDelta(t, 0, maxByHop[0], eps, "single RM sits at the centre")
	for h := 1; h <= 4; h++ {
		assert.Greater(t, minByHop[h], maxByHop[h-1], "hop %d ring must lie outside hop %d", h, h-1)
	}
}

func TestRadialWithoutRMUsesHighestDegree(t *testing.T) {
	nodes := people(4)
	edges := []domain.Edge{
		{Source: "p0", Target: "p2", Type: domain.EdgeKnows},
		{Source: "p1", Target: "p2", Type: domain.EdgeKnows},
		{Source: "p3", Target: "p2", Type: domain.EdgeKnows},
	}
	out, err := Compute(nodes, edges, 600, 600, Radial)
	require.NoError(t, err)
	assert.InDelta(t, 300, out[2].Position.X, eps)
	assert.InDelta(t, 300, out[2].Position.Y, eps)
}

func TestRadialMultipleCentresShareInnerRing(t *testing.T) {
	nodes := []domain.Node{
		{ID: "rm-1", Type: domain.NodeRM, Properties: domain.RMProperties{}},
		{ID: "rm-2", Type: domain.NodeRM, Properties: domain.RMProperties{}},
		people(1)[0],
	}
	edges := []domain.Edge{{Source: "rm-1", Target: "p0", Type: domain.EdgeManages}}

	out, err := Compute(nodes, edges, 600, 600, Radial)
	require.NoError(t, err)

	centre := domain.Point{X: 300, Y: 300}
	d1 := dist(*out[0].Position, centre)
	d2 := dist(*out[1].Position, centre)
	assert.InDelta(t, d1, d2, eps)
	assert.Greater(t, d1, 0.0)
	assert.Greater(t, dist(*out[2].Position, centre), d1)
}

func TestForceDirectedSeparatesNodes(t *testing.T) {
	nodes := people(6)
	edges := []domain.Edge{
		{Source: "p0", Target: "p1", Type: domain.EdgeKnows},
		{Source: "p1", Target: "p2", Type: domain.EdgeKnows},
		{Source: "p3", Target: "p4", Type: domain.EdgeKnows},
	}
	out, err := Compute(nodes, edges, 800, 600, ForceDirected, WithIterations(60))
	require.NoError(t, err)

	distinct := map[domain.Point]struct{}{}
	for _, n := range out {
		distinct[*n.Position] = struct{}{}
	}
	assert.Greater(t, len(distinct), 1)
}

func TestSmallCanvasShrinksMargin(t *testing.T) {
	b := newBox(40, 40, DefaultMargin)
	assert.InDelta(t, 10, b.minX, eps)
	assert.InDelta(t, 30, b.maxX, eps)
}

func TestFitFallsBackOnNonFiniteInput(t *testing.T) {
	b := newBox(100, 100, 10)
	fallback := circular(2, b)
	nan := math.NaN()

	points := fit([]r2.Vec{{X: nan, Y: 0}, {X: nan, Y: nan}}, fallback, b)
	assert.Equal(t, fallback, points)
}

func TestParseAlgorithm(t *testing.T) {
	cases := map[string]Algorithm{"": ForceDirected, "force": ForceDirected, "Radial": Radial, " circular ": Circular}
	for in, want := range cases {
		got, err := ParseAlgorithm(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseAlgorithm("grid")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
	assert.Equal(t, Radial, ForceDirected.Next())
	assert.Equal(t, ForceDirected, Circular.Next())
}
