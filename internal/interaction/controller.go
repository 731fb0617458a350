package interaction

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/vanshika/wealthnet/internal/domain"
	"github.com/vanshika/wealthnet/internal/layout"
	"github.com/vanshika/wealthnet/internal/pathfinder"
	"github.com/vanshika/wealthnet/internal/viewport"
)

const (
	DefaultWidth  = 1200.0
	DefaultHeight = 800.0
)

// LayoutObserver is notified after every layout run.
type LayoutObserver func(algorithm layout.Algorithm, nodes int, elapsed time.Duration)

// Option configures a Controller.
type Option func(*Controller)

// WithAlgorithm sets the initial layout algorithm.
func WithAlgorithm(a layout.Algorithm) Option {
	return func(c *Controller) { c.state.Algorithm = a }
}

// WithCanvas sets the initial canvas size.
func WithCanvas(width, height float64) Option {
	return func(c *Controller) { c.state.Canvas = Canvas{Width: width, Height: height} }
}

// WithFilters sets the initial filters.
func WithFilters(f domain.GraphFilters) Option {
	return func(c *Controller) { c.state.Filters = f.Normalize() }
}

// WithMaxHops sets the hop budget for introduction-path requests.
func WithMaxHops(n int) Option {
	return func(c *Controller) { c.maxHops = n }
}

// WithLayoutOptions forwards options to every layout run.
func WithLayoutOptions(opts ...layout.Option) Option {
	return func(c *Controller) { c.layoutOpts = append(c.layoutOpts, opts...) }
}

// WithLayoutObserver registers a callback for layout timings.
func WithLayoutObserver(fn LayoutObserver) Option {
	return func(c *Controller) { c.observer = fn }
}

// Controller owns the graph view state. It is not safe for concurrent use.
type Controller struct {
	state      State
	index      *domain.Index
	graphSeq   uint64
	pathSeq    uint64
	maxHops    int
	layoutOpts []layout.Option
	observer   LayoutObserver
}

// New creates a controller for the network owned by ownerID.
func New(ownerID string, opts ...Option) *Controller {
	c := &Controller{
		state: State{
			OwnerID:     ownerID,
			Algorithm:   layout.ForceDirected,
			Canvas:      Canvas{Width: DefaultWidth, Height: DefaultHeight},
			Viewport:    viewport.New(),
			GraphStatus: StatusIdle,
			PathStatus:  StatusIdle,
		},
		index:   domain.NewIndex(nil, nil),
		maxHops: pathfinder.DefaultMaxHops,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state.clone()
}

// SetFilters replaces the filters and starts a refetch.
func (c *Controller) SetFilters(f domain.GraphFilters) GraphRequest {
	c.state.Filters = f.Normalize()
	return c.Refresh()
}

// Refresh starts a refetch with the current filters. Any in-flight fetch is
// superseded.
func (c *Controller) Refresh() GraphRequest {
	c.graphSeq++
	c.state.GraphStatus = StatusLoading
	c.state.GraphError = ""
	c.state.GraphRetryable = false
	return GraphRequest{
		Ticket: c.graphSeq,
		Query: domain.NetworkQuery{
			OwnerID: c.state.OwnerID,
			Filters: c.state.Filters,
		},
	}
}

// ApplyNetwork installs a fetch result. Responses for superseded tickets
// are discarded and false is returned. A failed fetch clears the graph.
func (c *Controller) ApplyNetwork(ticket uint64, network domain.Network, err error) bool {
	if ticket != c.graphSeq {
		return false
	}
	if err == nil {
		if verr := network.Validate(); verr != nil {
			err = fmt.Errorf("%w: %w", domain.ErrDataFetch, verr)
		}
	}

	var positioned []domain.Node
	if err == nil {
		positioned, err = c.layout(network.Nodes, network.Edges)
	}
	if err != nil {
		c.fail(err)
		return true
	}

	if network.Stats.TotalNodes != len(network.Nodes) || network.Stats.NodeTypeCounts == nil {
		network.Stats = domain.ComputeStats(network.Nodes, network.Edges)
	}
	network.Nodes = positioned
	c.state.Network = network
	c.index = domain.NewIndex(network.Nodes, network.Edges)
	c.state.GraphStatus = StatusReady
	c.state.GraphError = ""
	c.state.GraphRetryable = false

	if !c.index.Has(c.state.SelectedNodeID) {
		c.state.SelectedNodeID = ""
	}
	if !c.index.Has(c.state.HoveredNodeID) {
		c.state.HoveredNodeID = ""
	}
	if p := c.state.IntroPath; p != nil {
		for _, id := range p.NodeIDs() {
			if !c.index.Has(id) {
				c.clearPath()
				break
			}
		}
	}
	c.rehighlight()
	return true
}

func (c *Controller) fail(err error) {
	c.state.Network = domain.Network{}
	c.index = domain.NewIndex(nil, nil)
	c.state.GraphStatus = StatusFailed
	c.state.GraphError = err.Error()
	c.state.GraphRetryable = domain.IsRetryable(err)
	c.state.SelectedNodeID = ""
	c.state.HoveredNodeID = ""
	c.supersedePath()
	c.rehighlight()
}

// SetAlgorithm switches the layout, recomputes every position and resets
// the viewport.
func (c *Controller) SetAlgorithm(a layout.Algorithm) error {
	parsed, err := layout.ParseAlgorithm(string(a))
	if err != nil {
		return err
	}
	c.state.Algorithm = parsed
	c.state.Viewport.Reset()
	return c.relayout()
}

// CycleAlgorithm switches to the next layout algorithm. The algorithm is
// switched even when the relayout fails; the error is returned.
func (c *Controller) CycleAlgorithm() (layout.Algorithm, error) {
	next := c.state.Algorithm.Next()
	return next, c.SetAlgorithm(next)
}

// SetCanvas resizes the canvas and recomputes positions.
func (c *Controller) SetCanvas(width, height float64) error {
	if !(width > 0) || !(height > 0) {
		return fmt.Errorf("%w: %vx%v", layout.ErrInvalidCanvas, width, height)
	}
	c.state.Canvas = Canvas{Width: width, Height: height}
	return c.relayout()
}

func (c *Controller) relayout() error {
	if len(c.state.Network.Nodes) == 0 {
		return nil
	}
	positioned, err := c.layout(c.state.Network.Nodes, c.state.Network.Edges)
	if err != nil {
		return err
	}
	c.state.Network.Nodes = positioned
	c.index = domain.NewIndex(positioned, c.state.Network.Edges)
	return nil
}

func (c *Controller) layout(nodes []domain.Node, edges []domain.Edge) ([]domain.Node, error) {
	start := time.Now()
	positioned, err := layout.Compute(nodes, edges, c.state.Canvas.Width, c.state.Canvas.Height, c.state.Algorithm, c.layoutOpts...)
	if err != nil {
		return nil, err
	}
	if c.observer != nil {
		c.observer(c.state.Algorithm, len(nodes), time.Since(start))
	}
	return positioned, nil
}

// SelectNode selects id and highlights it with its direct neighbours. Any
// introduction path is superseded.
func (c *Controller) SelectNode(id string) bool {
	if !c.index.Has(id) {
		return false
	}
	c.state.SelectedNodeID = id
	c.supersedePath()
	c.rehighlight()
	return true
}

// ClickBackground clears selection, path and highlights. An in-flight path
// query is dropped when it completes.
func (c *Controller) ClickBackground() {
	c.state.SelectedNodeID = ""
	c.supersedePath()
	c.rehighlight()
}

// ClearSelection is an alias of ClickBackground for keyboard driven UIs.
func (c *Controller) ClearSelection() {
	c.ClickBackground()
}

// Hover marks id as hovered. An empty or unknown id clears the hover.
func (c *Controller) Hover(id string) {
	if !c.index.Has(id) {
		id = ""
	}
	c.state.HoveredNodeID = id
}

// DoubleClick returns the CRM navigation target for person nodes with a
// linked client record.
func (c *Controller) DoubleClick(id string) (NavigationTarget, bool) {
	n, ok := c.index.Node(id)
	if !ok || n.Type != domain.NodePerson || n.LinkedClientID() == "" {
		return NavigationTarget{}, false
	}
	return NavigationTarget{NodeID: n.ID, Type: n.Type, ClientID: n.LinkedClientID()}, true
}

// Details returns the full node record for id.
func (c *Controller) Details(id string) (domain.Node, bool) {
	return c.index.Node(id)
}

// Neighbors returns the ids adjacent to id.
func (c *Controller) Neighbors(id string) []string {
	return c.index.NeighborIDs(id)
}

// RequestIntroPath validates the target and starts a path query. Invalid
// requests are rejected synchronously without a ticket.
func (c *Controller) RequestIntroPath(targetID string) (PathRequest, error) {
	if err := pathfinder.Validate(c.state.Network, targetID); err != nil {
		c.supersedePath()
		c.state.PathStatus = StatusFailed
		c.state.PathError = err.Error()
		c.rehighlight()
		return PathRequest{}, err
	}
	c.supersedePath()
	c.state.PathTargetID = targetID
	c.state.PathStatus = StatusLoading
	c.rehighlight()
	return PathRequest{
		Ticket: c.pathSeq,
		Query: domain.IntroPathQuery{
			OwnerID:        c.state.OwnerID,
			TargetPersonID: targetID,
			MaxHops:        c.maxHops,
		},
	}, nil
}

// ApplyIntroPath installs a path result. A found path overrides the
// highlight set with its nodes; not-found is recorded as a negative result.
func (c *Controller) ApplyIntroPath(ticket uint64, result domain.IntroPathResult, err error) bool {
	if ticket != c.pathSeq {
		return false
	}
	switch {
	case err == nil:
		p := result.Recommended
		c.state.IntroPath = &p
		c.state.PathAlternatives = slices.Clone(result.Alternatives)
		c.state.PathNotFound = false
		c.state.PathStatus = StatusReady
		c.state.PathError = ""
	case isNotFound(err):
		c.state.IntroPath = nil
		c.state.PathAlternatives = nil
		c.state.PathNotFound = true
		c.state.PathStatus = StatusReady
		c.state.PathError = ""
	default:
		c.state.IntroPath = nil
		c.state.PathAlternatives = nil
		c.state.PathNotFound = false
		c.state.PathStatus = StatusFailed
		c.state.PathError = err.Error()
	}
	c.rehighlight()
	return true
}

// ClearIntroPath drops the current path and any in-flight query.
func (c *Controller) ClearIntroPath() {
	c.supersedePath()
	c.rehighlight()
}

func (c *Controller) supersedePath() {
	c.pathSeq++
	c.clearPath()
}

func (c *Controller) clearPath() {
	c.state.IntroPath = nil
	c.state.PathAlternatives = nil
	c.state.PathTargetID = ""
	c.state.PathNotFound = false
	c.state.PathStatus = StatusIdle
	c.state.PathError = ""
}

// rehighlight derives the highlight set: path nodes win over selection.
// Only nodes of the displayed network are highlighted; a path may pass
// through nodes the current filters hide.
func (c *Controller) rehighlight() {
	var ids []string
	switch {
	case c.state.IntroPath != nil:
		for _, id := range c.state.IntroPath.NodeIDs() {
			if c.index.Has(id) {
				ids = append(ids, id)
			}
		}
	case c.state.SelectedNodeID != "":
		ids = append(c.index.NeighborIDs(c.state.SelectedNodeID), c.state.SelectedNodeID)
	}
	slices.Sort(ids)
	c.state.HighlightedNodeIDs = slices.Compact(ids)
}

// ZoomIn zooms the viewport one step.
func (c *Controller) ZoomIn() { c.state.Viewport.ZoomIn() }

// ZoomOut zooms the viewport out one step.
func (c *Controller) ZoomOut() { c.state.Viewport.ZoomOut() }

// ZoomAt zooms around a screen point.
func (c *Controller) ZoomAt(cx, cy, delta float64) { c.state.Viewport.ZoomAtPoint(cx, cy, delta) }

// Wheel applies a scroll notch around a screen point.
func (c *Controller) Wheel(cx, cy, deltaY float64) { c.state.Viewport.Wheel(cx, cy, deltaY) }

// Pan moves the viewport.
func (c *Controller) Pan(dx, dy float64) { c.state.Viewport.Pan(dx, dy) }

// ResetViewport restores the default camera.
func (c *Controller) ResetViewport() { c.state.Viewport.Reset() }

// PointerDown routes a press: a press on a node selects it, a press on the
// background clears selection and starts a pan.
func (c *Controller) PointerDown(px, py float64) {
	if id, ok := c.NodeAt(px, py); ok {
		c.SelectNode(id)
		return
	}
	c.ClickBackground()
	c.state.Viewport.BeginDrag(viewport.TargetBackground, px, py)
}

// PointerMove continues a pan or updates the hover.
func (c *Controller) PointerMove(px, py float64) {
	if c.state.Viewport.Dragging() {
		c.state.Viewport.Drag(px, py)
		return
	}
	id, _ := c.NodeAt(px, py)
	c.Hover(id)
}

// PointerUp ends a pan.
func (c *Controller) PointerUp() { c.state.Viewport.EndDrag() }

// HitRadius is the screen-space distance within which a press hits a node.
const HitRadius = 14.0

// NodeAt returns the node nearest to a screen point within HitRadius.
func (c *Controller) NodeAt(px, py float64) (string, bool) {
	best, bestDist := "", math.Inf(1)
	for _, n := range c.state.Network.Nodes {
		if n.Position == nil {
			continue
		}
		s := c.state.Viewport.ToScreen(*n.Position)
		d := math.Hypot(s.X-px, s.Y-py)
		if d <= HitRadius && d < bestDist {
			best, bestDist = n.ID, d
		}
	}
	return best, best != ""
}
