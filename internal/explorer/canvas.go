package explorer

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanshika/wealthnet/internal/domain"
	"github.com/vanshika/wealthnet/internal/interaction"
)

// Terminal cells are mapped onto a pixel-like screen space so the viewport
// and hit-testing behave as they would on a real canvas.
const (
	cellWidth  = 8.0
	cellHeight = 16.0
)

type cellKind int

const (
	cellBlank cellKind = iota
	cellEdgeDim
	cellEdge
	cellPath
	cellLabel
	cellNodeDim
	cellNode
	cellSelected
)

type cell struct {
	r     rune
	kind  cellKind
	style lipgloss.Style
}

type grid struct {
	cols, rows int
	cells      [][]cell
}

func newGrid(cols, rows int) *grid {
	g := &grid{cols: cols, rows: rows, cells: make([][]cell, rows)}
	for y := range g.cells {
		g.cells[y] = make([]cell, cols)
		for x := range g.cells[y] {
			g.cells[y][x] = cell{r: ' '}
		}
	}
	return g
}

func (g *grid) set(x, y int, c cell) {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return
	}
	g.cells[y][x] = c
}

func (g *grid) at(x, y int) (cell, bool) {
	if x < 0 || y < 0 || x >= g.cols || y >= g.rows {
		return cell{}, false
	}
	return g.cells[y][x], true
}

// line draws a Bresenham segment, leaving both endpoints untouched.
func (g *grid) line(x0, y0, x1, y1 int, c cell) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	x, y := x0, y0
	for {
		if (x != x0 || y != y0) && (x != x1 || y != y1) {
			if existing, ok := g.at(x, y); ok && existing.kind < c.kind {
				g.set(x, y, c)
			}
		}
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func (g *grid) text(x, y int, s string, style lipgloss.Style) {
	for _, r := range s {
		if existing, ok := g.at(x, y); !ok || existing.kind >= cellNodeDim {
			return
		}
		g.set(x, y, cell{r: r, kind: cellLabel, style: style})
		x++
	}
}

func (g *grid) String() string {
	var b strings.Builder
	for y, row := range g.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].kind == row[start].kind && uniform(row[x].kind) {
				continue
			}
			run := make([]rune, 0, x-start)
			for _, c := range row[start:x] {
				run = append(run, c.r)
			}
			if row[start].kind == cellBlank {
				b.WriteString(string(run))
			} else {
				b.WriteString(row[start].style.Render(string(run)))
			}
			start = x
		}
	}
	return b.String()
}

// uniform reports whether every cell of kind shares one style, so runs of
// it can be rendered together.
func uniform(kind cellKind) bool {
	switch kind {
	case cellNode, cellSelected:
		return false
	}
	return true
}

// toCell maps a screen-space point to a terminal cell.
func toCell(p domain.Point) (int, int, bool) {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return 0, 0, false
	}
	return int(math.Floor(p.X / cellWidth)), int(math.Floor(p.Y / cellHeight)), true
}

// cellCentre is the screen-space point at the middle of a cell.
func cellCentre(x, y int) (float64, float64) {
	return (float64(x) + 0.5) * cellWidth, (float64(y) + 0.5) * cellHeight
}

// drawNetwork renders the state's network through its viewport.
func drawNetwork(st interaction.State, cols, rows int) string {
	g := newGrid(cols, rows)
	dimming := len(st.HighlightedNodeIDs) > 0

	type placed struct{ x, y int }
	at := make(map[string]placed, len(st.Network.Nodes))
	for _, n := range st.Network.Nodes {
		if n.Position == nil {
			continue
		}
		x, y, ok := toCell(st.Viewport.ToScreen(*n.Position))
		if !ok {
			continue
		}
		at[n.ID] = placed{x: x, y: y}
	}

	for _, e := range st.Network.Edges {
		a, okA := at[e.Source]
		b, okB := at[e.Target]
		if !okA || !okB {
			continue
		}
		c := cell{r: '·', kind: cellEdge, style: edgeStyle}
		switch {
		case st.OnPath(e.Source, e.Target):
			c = cell{r: '•', kind: cellPath, style: pathStyle}
		case dimming && !(st.IsHighlighted(e.Source) && st.IsHighlighted(e.Target)):
			c = cell{r: '·', kind: cellEdgeDim, style: edgeDimStyle}
		}
		g.line(a.x, a.y, b.x, b.y, c)
	}

	for _, n := range st.Network.Nodes {
		p, ok := at[n.ID]
		if !ok {
			continue
		}
		style, ok := typeStyles[n.Type]
		if !ok {
			style = labelStyle
		}
		kind := cellNode
		switch {
		case n.ID == st.SelectedNodeID:
			kind, style = cellSelected, style.Reverse(true).Bold(true)
		case dimming && !st.IsHighlighted(n.ID):
			kind, style = cellNodeDim, dimStyle
		case st.IsHighlighted(n.ID) || n.ID == st.HoveredNodeID:
			style = style.Bold(true)
		}
		g.set(p.x, p.y, cell{r: glyph(n), kind: kind, style: style})
	}

	for _, n := range st.Network.Nodes {
		p, ok := at[n.ID]
		if !ok {
			continue
		}
		if n.ID == st.SelectedNodeID || n.ID == st.HoveredNodeID || (dimming && st.IsHighlighted(n.ID)) {
			g.text(p.x+2, p.y, n.Label, labelStyle)
		}
	}
	return g.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
