// Package layout assigns 2D canvas positions to network nodes.
package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/vanshika/wealthnet/internal/domain"
)

// Algorithm names a layout strategy.
type Algorithm string

const (
	ForceDirected Algorithm = "force-directed"
	Radial        Algorithm = "radial"
	Circular      Algorithm = "circular"
)

// DefaultMargin is the inset kept between positioned nodes and the canvas
// border. Canvases smaller than four margins shrink it to a quarter of the
// shorter side.
const DefaultMargin = 24.0

// DefaultIterations is the force-directed simulation budget.
const DefaultIterations = 120

var (
	ErrInvalidCanvas    = errors.New("layout: canvas width and height must be positive")
	ErrUnknownAlgorithm = errors.New("layout: unknown algorithm")
)

// Algorithms lists the supported strategies, default first.
func Algorithms() []Algorithm {
	return []Algorithm{ForceDirected, Radial, Circular}
}

// ParseAlgorithm resolves a user supplied name. "force" is accepted as an
// alias for the force-directed layout.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", ForceDirected, "force":
		return ForceDirected, nil
	case Radial:
		return Radial, nil
	case Circular:
		return Circular, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
}

// Next returns the algorithm after a in Algorithms, wrapping around.
func (a Algorithm) Next() Algorithm {
	all := Algorithms()
	for i, candidate := range all {
		if candidate == a {
			return all[(i+1)%len(all)]
		}
	}
	return ForceDirected
}

// Options tunes a layout run.
type Options struct {
	Margin     float64
	Iterations int
	Repulsion  float64
	Rate       float64
	Theta      float64
}

// Option mutates Options.
type Option func(*Options)

// WithMargin overrides DefaultMargin.
func WithMargin(m float64) Option {
	return func(o *Options) {
		if m >= 0 {
			o.Margin = m
		}
	}
}

// WithIterations overrides the force-directed iteration budget.
func WithIterations(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Iterations = n
		}
	}
}

func defaultOptions() Options {
	return Options{
		Margin:     DefaultMargin,
		Iterations: DefaultIterations,
		Repulsion:  1,
		Rate:       0.05,
		Theta:      0.2,
	}
}

// Compute returns a copy of nodes with Position set by the chosen algorithm.
// Every position lies within the canvas inset by the effective margin. Edges
// referencing unknown nodes are ignored.
func Compute(nodes []domain.Node, edges []domain.Edge, width, height float64, algorithm Algorithm, opts ...Option) ([]domain.Node, error) {
	if len(nodes) == 0 {
		return []domain.Node{}, nil
	}
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return nil, fmt.Errorf("%w: %vx%v", ErrInvalidCanvas, width, height)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	b := newBox(width, height, o.Margin)

	var points []domain.Point
	switch algorithm {
	case ForceDirected:
		points = forceDirected(nodes, edges, b, o)
	case Radial:
		points = radial(nodes, edges, b)
	case Circular:
		points = circular(len(nodes), b)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}

	out := make([]domain.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.WithPosition(b.clamp(points[i]))
	}
	return out, nil
}

// box is the drawable region of the canvas after the margin is applied.
type box struct {
	minX, minY float64
	maxX, maxY float64
}

func newBox(width, height, margin float64) box {
	m := math.Min(margin, math.Min(width, height)/4)
	return box{minX: m, minY: m, maxX: width - m, maxY: height - m}
}

func (b box) width() float64  { return b.maxX - b.minX }
func (b box) height() float64 { return b.maxY - b.minY }

func (b box) center() domain.Point {
	return domain.Point{X: (b.minX + b.maxX) / 2, Y: (b.minY + b.maxY) / 2}
}

// radius is the largest circle that fits inside b.
func (b box) radius() float64 {
	return math.Min(b.width(), b.height()) / 2
}

func (b box) clamp(p domain.Point) domain.Point {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) {
		return b.center()
	}
	return domain.Point{
		X: math.Max(b.minX, math.Min(b.maxX, p.X)),
		Y: math.Max(b.minY, math.Min(b.maxY, p.Y)),
	}
}

// onCircle places the i-th of n points around c, starting at 12 o'clock.
func onCircle(c domain.Point, r float64, i, n int) domain.Point {
	angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
	return domain.Point{X: c.X + r*math.Cos(angle), Y: c.Y + r*math.Sin(angle)}
}
