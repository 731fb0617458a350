// Package render draws laid-out networks as SVG snapshots.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/vanshika/wealthnet/internal/domain"
)

// ErrInvalidSize is returned for non-positive canvas dimensions.
var ErrInvalidSize = errors.New("render: canvas size must be positive")

const (
	nodeRadius      = 10
	highlightRadius = 13
	colorBackdrop   = "#0f172a"
	colorEdge       = "#475569"
	colorPath       = "#f59e0b"
	colorLabel      = "#e2e8f0"
	colorHighlight  = "#facc15"
)

var typeColors = map[domain.NodeType]string{
	domain.NodePerson:         "#38bdf8",
	domain.NodeCompany:        "#a78bfa",
	domain.NodeLiquidityEvent: "#f472b6",
	domain.NodeNetwork:        "#34d399",
	domain.NodeRM:             "#fb923c",
}

// Options configures a snapshot.
type Options struct {
	Width, Height int
	Title         string
	// Highlight dims every node not listed.
	Highlight []string
	Path      *domain.IntroPath
	Labels    bool
}

// SVG writes network to w. Nodes without a position are skipped, as are
// edges touching them.
func SVG(w io.Writer, network domain.Network, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return ErrInvalidSize
	}

	highlighted := make(map[string]bool, len(opts.Highlight))
	for _, id := range opts.Highlight {
		highlighted[id] = true
	}
	pathEdges := make(map[[2]string]bool)
	if opts.Path != nil {
		for i := 1; i < len(opts.Path.Path); i++ {
			a, b := opts.Path.Path[i-1].ID, opts.Path.Path[i].ID
			pathEdges[[2]string{a, b}] = true
			pathEdges[[2]string{b, a}] = true
			highlighted[a], highlighted[b] = true, true
		}
	}
	dimming := len(highlighted) > 0

	positions := make(map[string]domain.Point, len(network.Nodes))
	for _, n := range network.Nodes {
		if n.Position != nil && finite(*n.Position) {
			positions[n.ID] = *n.Position
		}
	}

	canvas := svg.New(w)
	canvas.Start(opts.Width, opts.Height)
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:"+colorBackdrop)

	canvas.Gid("edges")
	for _, e := range network.Edges {
		from, okFrom := positions[e.Source]
		to, okTo := positions[e.Target]
		if !okFrom || !okTo {
			continue
		}
		style := fmt.Sprintf("stroke:%s;stroke-width:1.2", colorEdge)
		switch {
		case pathEdges[[2]string{e.Source, e.Target}]:
			style = fmt.Sprintf("stroke:%s;stroke-width:3", colorPath)
		case dimming && !(highlighted[e.Source] && highlighted[e.Target]):
			style += ";stroke-opacity:0.25"
		}
		canvas.Line(round(from.X), round(from.Y), round(to.X), round(to.Y), style, fmt.Sprintf(`data-type="%s"`, e.Type))
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for _, n := range network.Nodes {
		p, ok := positions[n.ID]
		if !ok {
			continue
		}
		fill, ok := typeColors[n.Type]
		if !ok {
			fill = colorLabel
		}
		r := nodeRadius
		style := "fill:" + fill
		switch {
		case highlighted[n.ID]:
			r = highlightRadius
			style += fmt.Sprintf(";stroke:%s;stroke-width:2", colorHighlight)
		case dimming:
			style += ";fill-opacity:0.3"
		}
		canvas.Circle(round(p.X), round(p.Y), r, style, fmt.Sprintf(`data-id="%s"`, attrEscape(n.ID)))
		if opts.Labels {
			canvas.Text(round(p.X), round(p.Y)+r+12, n.Label,
				fmt.Sprintf("fill:%s;font-size:11px;font-family:sans-serif;text-anchor:middle", colorLabel))
		}
	}
	canvas.Gend()

	canvas.End()
	return nil
}

func round(v float64) int {
	return int(math.Round(v))
}

func finite(p domain.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func attrEscape(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '"', '<', '>', '&':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
