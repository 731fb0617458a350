package layout

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/vanshika/wealthnet/internal/domain"
)

// innerRingFactor sizes the ring shared by multiple centre nodes relative to
// the spacing between hop rings.
const innerRingFactor = 0.35

// radial places centre nodes in the middle of b and every other node on a
// ring whose radius grows with its hop distance from the nearest centre.
// Nodes unreachable from any centre share the outermost ring.
func radial(nodes []domain.Node, edges []domain.Edge, b box) []domain.Point {
	ix := domain.NewIndex(nodes, edges)
	centres := radialCentres(nodes, ix)
	hops := hopDistances(nodes, edges, centres)

	maxHop := 0
	unreachable := false
	for _, h := range hops {
		if h < 0 {
			unreachable = true
		} else if h > maxHop {
			maxHop = h
		}
	}
	outer := maxHop
	if unreachable {
		outer = maxHop + 1
	}

	rings := make([][]int, outer+1)
	for i, h := range hops {
		if h < 0 {
			h = outer
		}
		rings[h] = append(rings[h], i)
	}

	c := b.center()
	step := b.radius()
	if outer > 0 {
		step = b.radius() / float64(outer)
	}

	points := make([]domain.Point, len(nodes))
	for ring, members := range rings {
		r := float64(ring) * step
		if ring == 0 {
			r = 0
			if len(members) > 1 {
				r = step * innerRingFactor
			}
		}
		for j, i := range members {
			if r == 0 {
				points[i] = c
				continue
			}
			points[i] = onCircle(c, r, j, len(members))
		}
	}
	return points
}

// radialCentres returns the offsets of every relationship manager, or the
// single highest-degree node when the network has none. Ties keep input
// order.
func radialCentres(nodes []domain.Node, ix *domain.Index) []int {
	var centres []int
	for i, n := range nodes {
		if n.Type == domain.NodeRM {
			centres = append(centres, i)
		}
	}
	if len(centres) > 0 {
		return centres
	}

	best := 0
	for i, n := range nodes {
		if ix.Degree(n.ID) > ix.Degree(nodes[best].ID) {
			best = i
		}
	}
	return []int{best}
}

// hopDistances returns the undirected hop count from the nearest centre for
// each node, or -1 when unreachable. A virtual source linked to every centre
// turns the multi-source search into one breadth-first walk.
func hopDistances(nodes []domain.Node, edges []domain.Edge, centres []int) []int {
	g := undirected(nodes, edges)
	source := simple.Node(len(nodes))
	g.AddNode(source)
	for _, c := range centres {
		g.SetEdge(g.NewEdge(source, simple.Node(c)))
	}

	hops := make([]int, len(nodes))
	for i := range hops {
		hops[i] = -1
	}

	var bfs traverse.BreadthFirst
	bfs.Walk(g, source, func(n graph.Node, depth int) bool {
		if id := n.ID(); id < int64(len(nodes)) {
			hops[id] = depth - 1
		}
		return false
	})
	return hops
}
