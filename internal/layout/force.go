package layout

import (
	"math"

	gonumlayout "gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanshika/wealthnet/internal/domain"
)

// undirected builds a gonum graph whose node ids are input offsets. Self
// loops and edges with unknown endpoints are skipped.
func undirected(nodes []domain.Node, edges []domain.Edge) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	ix := domain.NewIndex(nodes, edges)
	for i := range nodes {
		g.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		u, okU := ix.Position(e.Source)
		v, okV := ix.Position(e.Target)
		if !okU || !okV || u == v {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(u), simple.Node(v)))
	}
	return g
}

// forceDirected runs a fixed number of Eades spring-embedder updates with
// Barnes-Hut repulsion, then scales the result into b.
func forceDirected(nodes []domain.Node, edges []domain.Edge, b box, o Options) []domain.Point {
	fallback := circular(len(nodes), b)
	if len(nodes) == 1 {
		return fallback
	}

	g := undirected(nodes, edges)
	eades := gonumlayout.EadesR2{
		Repulsion: o.Repulsion,
		Rate:      o.Rate,
		Updates:   o.Iterations,
		Theta:     o.Theta,
	}
	optimizer := gonumlayout.NewOptimizerR2(g, eades.Update)
	for optimizer.Update() {
	}

	raw := make([]r2.Vec, len(nodes))
	for i := range nodes {
		raw[i] = optimizer.LayoutNodeR2(int64(i)).Coord2
	}
	return fit(raw, fallback, b)
}

// fit scales raw simulation coordinates into b preserving aspect ratio and
// centring the drawing. Non-finite coordinates take the fallback position;
// a drawing with no extent falls back entirely.
func fit(raw []r2.Vec, fallback []domain.Point, b box) []domain.Point {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	finite := 0
	for _, v := range raw {
		if !isFinite(v) {
			continue
		}
		finite++
		minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
		minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
	}

	spanX, spanY := maxX-minX, maxY-minY
	if finite == 0 || (spanX == 0 && spanY == 0) {
		return fallback
	}

	scale := math.Inf(1)
	if spanX > 0 {
		scale = b.width() / spanX
	}
	if spanY > 0 {
		scale = math.Min(scale, b.height()/spanY)
	}

	c := b.center()
	midX, midY := (minX+maxX)/2, (minY+maxY)/2
	points := make([]domain.Point, len(raw))
	for i, v := range raw {
		if !isFinite(v) {
			points[i] = fallback[i]
			continue
		}
		points[i] = domain.Point{
			X: c.X + (v.X-midX)*scale,
			Y: c.Y + (v.Y-midY)*scale,
		}
	}
	return points
}

func isFinite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
