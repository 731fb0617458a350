// Package pathfinder searches the relationship network for warm
// introduction routes to a prospect.
package pathfinder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/vanshika/wealthnet/internal/domain"
)

const (
	DefaultMaxHops       = 3
	MaxHopsLimit         = 6
	DefaultMaxCandidates = 5000
	DefaultAlternatives  = 3

	// hopDecay is the strength multiplier applied per additional hop.
	hopDecay = 0.7
	// defaultTrust applies to edge types without an explicit weight.
	defaultTrust = 0.5
)

// trust weights how reliable a relationship type is for an introduction.
var trust = map[domain.EdgeType]float64{
	domain.EdgeKnows:      1.0,
	domain.EdgeManages:    0.95,
	domain.EdgeMemberOf:   0.7,
	domain.EdgeInvestorIn: 0.6,
}

// Trust returns the weight of an edge type in [0.5, 1].
func Trust(t domain.EdgeType) float64 {
	if w, ok := trust[t]; ok {
		return w
	}
	return defaultTrust
}

// Strength scores a path from its relationship types. An h-hop path always
// scores at least as high as any (h+1)-hop path.
func Strength(relationships []domain.EdgeType) int {
	if len(relationships) == 0 {
		return 0
	}
	var sum float64
	for _, r := range relationships {
		sum += Trust(r)
	}
	mean := sum / float64(len(relationships))
	score := 100 * math.Pow(hopDecay, float64(len(relationships)-1)) * (0.5 + 0.5*mean)
	return int(math.Round(score))
}

// Source identifies who is asking for the introduction. When Contacts is nil
// the owner's direct contacts are derived from the network.
type Source struct {
	OwnerID  string
	Contacts []string
}

// Options tunes a Finder.
type Options struct {
	EdgeTypes     []domain.EdgeType
	MaxCandidates int
	Alternatives  int
}

// Option mutates Options.
type Option func(*Options)

// WithEdgeTypes replaces the traversable relationship types.
func WithEdgeTypes(types ...domain.EdgeType) Option {
	return func(o *Options) {
		o.EdgeTypes = append([]domain.EdgeType(nil), types...)
	}
}

// WithMaxCandidates bounds the number of partial paths explored.
func WithMaxCandidates(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxCandidates = n
		}
	}
}

// WithAlternatives sets how many runner-up paths are returned.
func WithAlternatives(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.Alternatives = n
		}
	}
}

// Finder runs bounded breadth-first searches for introduction paths. It holds
// no state between calls and is safe for concurrent use.
type Finder struct {
	opts Options
}

// New constructs a Finder.
func New(opts ...Option) *Finder {
	o := Options{
		EdgeTypes: []domain.EdgeType{
			domain.EdgeKnows, domain.EdgeManages, domain.EdgeMemberOf, domain.EdgeInvestorIn,
		},
		MaxCandidates: DefaultMaxCandidates,
		Alternatives:  DefaultAlternatives,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Finder{opts: o}
}

// Find runs a default Finder.
func Find(ctx context.Context, network domain.Network, src Source, targetID string, maxHops int) (domain.IntroPathResult, error) {
	return New().Find(ctx, network, src, targetID, maxHops)
}

// candidate is a partial or complete path through the index.
type candidate struct {
	nodes []string
	rels  []domain.EdgeType
}

func (c candidate) extend(next string, rel domain.EdgeType) candidate {
	return candidate{
		nodes: append(slices.Clip(c.nodes), next),
		rels:  append(slices.Clip(c.rels), rel),
	}
}

func (c candidate) contains(id string) bool {
	return slices.Contains(c.nodes, id)
}

// ErrSearchBudget marks a search stopped by MaxCandidates before it found
// any path. It is always wrapped together with domain.ErrInvalidPathRequest.
var ErrSearchBudget = errors.New("path search budget exceeded")

// Find returns the strongest introduction path to targetID. Requests for
// unknown, non-person or existing-client targets fail with
// domain.ErrInvalidPathRequest before any search; an exhausted search
// returns domain.ErrPathNotFound. A search cut short by MaxCandidates
// returns the paths found so far, or ErrSearchBudget when there are none.
func (f *Finder) Find(ctx context.Context, network domain.Network, src Source, targetID string, maxHops int) (domain.IntroPathResult, error) {
	ix := domain.NewIndex(network.Nodes, network.Edges)

	target, err := validateTarget(ix, targetID)
	if err != nil {
		return domain.IntroPathResult{}, err
	}
	if maxHops <= 0 {
		maxHops = DefaultMaxHops
	}
	maxHops = min(maxHops, MaxHopsLimit)

	starts := startSet(ix, src, targetID)
	if len(starts) == 0 {
		return domain.IntroPathResult{}, fmt.Errorf("%w: requester %q has no reachable contacts", domain.ErrInvalidPathRequest, src.OwnerID)
	}
	inStart := make(map[string]struct{}, len(starts))
	for _, s := range starts {
		inStart[s] = struct{}{}
	}

	want := 1 + f.opts.Alternatives
	var found []candidate
	frontier := make([]candidate, 0, len(starts))
	for _, s := range starts {
		frontier = append(frontier, candidate{nodes: []string{s}})
	}
	explored := len(frontier)
	truncated := false

	for hop := 1; hop <= maxHops && len(frontier) > 0; hop++ {
		if err := ctx.Err(); err != nil {
			return domain.IntroPathResult{}, err
		}

		var next []candidate
		for _, c := range frontier {
			tail := c.nodes[len(c.nodes)-1]
			for _, adj := range ix.Neighbors(tail) {
				if !slices.Contains(f.opts.EdgeTypes, adj.Edge.Type) {
					continue
				}
				if adj.NodeID == targetID {
					found = append(found, c.extend(adj.NodeID, adj.Edge.Type))
					continue
				}
				if hop == maxHops || c.contains(adj.NodeID) {
					continue
				}
				if _, start := inStart[adj.NodeID]; start {
					continue
				}
				// Once the budget is spent the rest of this layer is still
				// checked for the target, but nothing deeper is queued.
				if explored >= f.opts.MaxCandidates {
					truncated = true
					continue
				}
				explored++
				next = append(next, c.extend(adj.NodeID, adj.Edge.Type))
			}
		}
		// Shorter paths always outscore longer ones, so a full result set
		// cannot improve by searching deeper.
		if len(found) >= want || truncated {
			break
		}
		frontier = next
	}

	if len(found) == 0 {
		if truncated {
			return domain.IntroPathResult{}, fmt.Errorf("%w: %w: %d candidates explored without reaching %s",
				domain.ErrInvalidPathRequest, ErrSearchBudget, explored, targetID)
		}
		return domain.IntroPathResult{}, fmt.Errorf("%w: %s within %d hops", domain.ErrPathNotFound, targetID, maxHops)
	}

	paths := make([]domain.IntroPath, 0, len(found))
	for _, c := range found {
		paths = append(paths, materialize(ix, c, src.OwnerID, target))
	}
	slices.SortStableFunc(paths, comparePaths)

	result := domain.IntroPathResult{Recommended: paths[0]}
	if rest := paths[1:]; len(rest) > 0 {
		result.Alternatives = rest[:min(len(rest), f.opts.Alternatives)]
	}
	return result, nil
}

// Validate checks a request without searching.
func Validate(network domain.Network, targetID string) error {
	_, err := validateTarget(domain.NewIndex(network.Nodes, network.Edges), targetID)
	return err
}

func validateTarget(ix *domain.Index, targetID string) (domain.Node, error) {
	target, ok := ix.Node(targetID)
	switch {
	case targetID == "" || !ok:
		return domain.Node{}, fmt.Errorf("%w: target %q not found", domain.ErrInvalidPathRequest, targetID)
	case target.Type != domain.NodePerson:
		return domain.Node{}, fmt.Errorf("%w: target %q is a %s, not a person", domain.ErrInvalidPathRequest, targetID, target.Type)
	case target.IsClient():
		return domain.Node{}, fmt.Errorf("%w: target %q is already a client", domain.ErrInvalidPathRequest, targetID)
	}
	return target, nil
}

// startSet returns the owner plus the owner's direct person or RM contacts,
// excluding the target, sorted with the owner first.
func startSet(ix *domain.Index, src Source, targetID string) []string {
	seen := map[string]struct{}{targetID: {}}
	var starts []string
	add := func(id string) {
		if _, dup := seen[id]; dup || !ix.Has(id) {
			return
		}
		seen[id] = struct{}{}
		starts = append(starts, id)
	}

	add(src.OwnerID)
	var contacts []string
	if src.Contacts != nil {
		contacts = append(contacts, src.Contacts...)
	} else {
		for _, adj := range ix.Neighbors(src.OwnerID) {
			if adj.Edge.Type != domain.EdgeKnows && adj.Edge.Type != domain.EdgeManages {
				continue
			}
			if n, _ := ix.Node(adj.NodeID); n.Type == domain.NodePerson || n.Type == domain.NodeRM {
				contacts = append(contacts, adj.NodeID)
			}
		}
	}
	slices.Sort(contacts)
	for _, c := range contacts {
		add(c)
	}
	return starts
}

func materialize(ix *domain.Index, c candidate, ownerID string, target domain.Node) domain.IntroPath {
	path := make([]domain.Node, len(c.nodes))
	for i, id := range c.nodes {
		path[i], _ = ix.Node(id)
	}
	return domain.IntroPath{
		Path:          path,
		Relationships: c.rels,
		Strength:      Strength(c.rels),
		Suggestion:    suggestion(path, c.rels, ownerID, target),
	}
}

// comparePaths orders by strength, then hop count, then node ids.
func comparePaths(a, b domain.IntroPath) int {
	if a.Strength != b.Strength {
		return b.Strength - a.Strength
	}
	if a.Hops() != b.Hops() {
		return a.Hops() - b.Hops()
	}
	if c := slices.Compare(a.NodeIDs(), b.NodeIDs()); c != 0 {
		return c
	}
	return slices.Compare(a.Relationships, b.Relationships)
}

func suggestion(path []domain.Node, rels []domain.EdgeType, ownerID string, target domain.Node) string {
	if path[0].ID == ownerID {
		if len(path) == 2 {
			return fmt.Sprintf("Reach out to %s directly; you already have a %s relationship",
				label(target), strings.ReplaceAll(string(rels[0]), "_", " "))
		}
		path = path[1:]
	}

	introducer := path[0]
	via := make([]string, 0, len(path))
	for _, n := range path[1 : len(path)-1] {
		via = append(via, label(n))
	}
	if len(via) == 0 {
		return fmt.Sprintf("Ask %s to introduce you to %s", label(introducer), label(target))
	}
	return fmt.Sprintf("Ask %s to introduce you to %s via %s",
		label(introducer), label(target), strings.Join(via, " → "))
}

func label(n domain.Node) string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}
