package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/vanshika/wealthnet/internal/domain"
	"github.com/vanshika/wealthnet/internal/layout"
	"github.com/vanshika/wealthnet/internal/pathfinder"
)

// ErrInvalidInput marks requests rejected by validation.
var ErrInvalidInput = errors.New("invalid input")

// NetworkStore is the storage contract required by the network service.
type NetworkStore interface {
	FetchNetwork(ctx context.Context, q domain.NetworkQuery) (domain.Network, error)
	UpsertNode(ctx context.Context, node domain.Node) error
	UpsertEdge(ctx context.Context, edge domain.Edge) error
	Ping(ctx context.Context) error
}

// Observer receives timing signals, typically for metrics.
type Observer interface {
	ObserveLayout(algorithm layout.Algorithm, nodes int, elapsed time.Duration)
	ObservePathSearch(outcome string, elapsed time.Duration)
}

// Path search outcomes reported to the Observer.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

type nopObserver struct{}

func (nopObserver) ObserveLayout(layout.Algorithm, int, time.Duration) {}
func (nopObserver) ObservePathSearch(string, time.Duration)            {}

// Options tunes NetworkService.
type Options struct {
	Logger        *slog.Logger
	Observer      Observer
	MaxHops       int
	Alternatives  int
	MaxCandidates int
	PathTimeout   time.Duration
	Layout        []layout.Option
}

// NetworkService answers network, layout and intro-path requests over a
// NetworkStore.
type NetworkService struct {
	store    NetworkStore
	logger   *slog.Logger
	observer Observer
	finder   *pathfinder.Finder
	maxHops  int
	timeout  time.Duration
	layout   []layout.Option
	validate *validator.Validate
	group    singleflight.Group
	nowFn    func() time.Time
}

// NewNetworkService constructs a NetworkService.
func NewNetworkService(store NetworkStore, opts Options) *NetworkService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.MaxHops <= 0 {
		opts.MaxHops = pathfinder.DefaultMaxHops
	}
	return &NetworkService{
		store:    store,
		logger:   opts.Logger.With("component", "network_service"),
		observer: opts.Observer,
		finder: pathfinder.New(
			pathfinder.WithAlternatives(opts.Alternatives),
			pathfinder.WithMaxCandidates(opts.MaxCandidates),
		),
		maxHops:  min(opts.MaxHops, pathfinder.MaxHopsLimit),
		timeout:  opts.PathTimeout,
		layout:   opts.Layout,
		validate: NewValidator(),
		nowFn:    time.Now,
	}
}

// NewValidator returns the validator used for inbound payloads.
func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// WithClock overrides the time provider (used primarily in tests).
func (s *NetworkService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Ping reports whether the store is reachable.
func (s *NetworkService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// FetchNetwork returns the owner's filtered network. Identical concurrent
// queries share one store call. Store failures and malformed payloads are
// reported as domain.ErrDataFetch.
func (s *NetworkService) FetchNetwork(ctx context.Context, q domain.NetworkQuery) (domain.Network, error) {
	q.OwnerID = strings.TrimSpace(q.OwnerID)
	q.Filters = q.Filters.Normalize()
	if err := s.validate.Struct(q); err != nil {
		return domain.Network{}, fmt.Errorf("%w: %s", ErrInvalidInput, describe(err))
	}

	v, err, shared := s.group.Do(queryKey(q), func() (any, error) {
		network, err := s.store.FetchNetwork(ctx, q)
		if err != nil {
			return domain.Network{}, err
		}
		if err := network.Validate(); err != nil {
			return domain.Network{}, err
		}
		return network, nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return domain.Network{}, err
		}
		s.logger.Warn("network fetch failed", "owner_id", q.OwnerID, "error", err)
		return domain.Network{}, fmt.Errorf("%w: %w", domain.ErrDataFetch, err)
	}
	network := v.(domain.Network)
	s.logger.Debug("network fetched", "owner_id", q.OwnerID, "nodes", network.Stats.TotalNodes,
		"edges", network.Stats.TotalEdges, "shared", shared)
	return network, nil
}

// LayoutNetwork fetches the network and positions it on a width×height canvas.
func (s *NetworkService) LayoutNetwork(ctx context.Context, q domain.NetworkQuery, algorithm layout.Algorithm, width, height float64) (domain.Network, error) {
	network, err := s.FetchNetwork(ctx, q)
	if err != nil {
		return domain.Network{}, err
	}

	start := s.nowFn()
	nodes, err := layout.Compute(network.Nodes, network.Edges, width, height, algorithm, s.layout...)
	if err != nil {
		return domain.Network{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	s.observer.ObserveLayout(algorithm, len(nodes), s.nowFn().Sub(start))

	network.Nodes = nodes
	return network, nil
}

// FindIntroPath searches the owner's network for the strongest warm
// introduction to the target person.
func (s *NetworkService) FindIntroPath(ctx context.Context, q domain.IntroPathQuery) (result domain.IntroPathResult, err error) {
	start := s.nowFn()
	defer func() {
		s.observer.ObservePathSearch(outcomeOf(err), s.nowFn().Sub(start))
	}()

	q.OwnerID = strings.TrimSpace(q.OwnerID)
	q.TargetPersonID = strings.TrimSpace(q.TargetPersonID)
	if err := s.validate.Struct(q); err != nil {
		return domain.IntroPathResult{}, fmt.Errorf("%w: %s", domain.ErrInvalidPathRequest, describe(err))
	}
	maxHops := q.MaxHops
	if maxHops <= 0 {
		maxHops = s.maxHops
	}
	maxHops = min(maxHops, pathfinder.MaxHopsLimit)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	// Contacts sit one hop from the owner, so the search needs one extra hop of reach.
	network, err := s.FetchNetwork(ctx, domain.NetworkQuery{OwnerID: q.OwnerID, Depth: maxHops + 1})
	if err != nil {
		return domain.IntroPathResult{}, err
	}

	result, err = s.finder.Find(ctx, network, pathfinder.Source{OwnerID: q.OwnerID}, q.TargetPersonID, maxHops)
	switch {
	case err == nil:
		s.logger.Info("intro path found", "owner_id", q.OwnerID, "target_id", q.TargetPersonID,
			"hops", result.Recommended.Hops(), "strength", result.Recommended.Strength)
	case errors.Is(err, context.DeadlineExceeded):
		return domain.IntroPathResult{}, fmt.Errorf("%w: path search timed out: %w", domain.ErrDataFetch, err)
	}
	return result, err
}

// UpsertNode normalises and stores a node.
func (s *NetworkService) UpsertNode(ctx context.Context, node domain.Node) (domain.Node, error) {
	node = normalizeNode(node)
	if err := s.store.UpsertNode(ctx, node); err != nil {
		return domain.Node{}, err
	}
	return node, nil
}

// UpsertNodeInput validates and stores a wire payload.
func (s *NetworkService) UpsertNodeInput(ctx context.Context, in NodeInput) (domain.Node, error) {
	in.ID = strings.TrimSpace(in.ID)
	if err := s.validate.Struct(in); err != nil {
		return domain.Node{}, fmt.Errorf("%w: %s", ErrInvalidInput, describe(err))
	}
	node, err := in.Node()
	if err != nil {
		return domain.Node{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.UpsertNode(ctx, node)
}

// UpsertEdge normalises and stores an edge.
func (s *NetworkService) UpsertEdge(ctx context.Context, edge domain.Edge) (domain.Edge, error) {
	edge = normalizeEdge(edge)
	if err := s.store.UpsertEdge(ctx, edge); err != nil {
		return domain.Edge{}, err
	}
	return edge, nil
}

// UpsertEdgeInput validates and stores a wire payload.
func (s *NetworkService) UpsertEdgeInput(ctx context.Context, in EdgeInput) (domain.Edge, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.Edge{}, fmt.Errorf("%w: %s", ErrInvalidInput, describe(err))
	}
	return s.UpsertEdge(ctx, in.Edge())
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeFound
	case errors.Is(err, domain.ErrPathNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrInvalidPathRequest):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

func queryKey(q domain.NetworkQuery) string {
	var b strings.Builder
	b.WriteString(q.OwnerID)
	fmt.Fprintf(&b, "|%d|", q.Depth)
	for _, t := range q.Filters.NodeTypes {
		b.WriteString(string(t))
		b.WriteByte(',')
	}
	b.WriteByte('|')
	b.WriteString(strings.Join(q.Filters.Sectors, ","))
	if q.Filters.OnlyClients {
		b.WriteString("|clients")
	}
	return b.String()
}

// describe renders validator errors as "field: rule" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fe.Namespace()+": "+rule)
	}
	return strings.Join(parts, "; ")
}
