package pathfinder

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/vanshika/wealthnet/internal/domain"
)

func rm(id string) domain.Node {
	return domain.Node{ID: id, Type: domain.NodeRM, Label: id, Properties: domain.RMProperties{}}
}

func prospect(id string) domain.Node {
	return domain.Node{ID: id, Type: domain.NodePerson, Label: id, Properties: domain.PersonProperties{}}
}

func client(id string) domain.Node {
	return domain.Node{ID: id, Type: domain.NodePerson, Label: id, Properties: domain.PersonProperties{IsClient: true}}
}

func edge(source, target string, t domain.EdgeType) domain.Edge {
	return domain.Edge{ID: source + "-" + target, Source: source, Target: target, Type: t}
}

func TestEndToEndScenario(t *testing.T) {
	network := domain.Network{
		Nodes: []domain.Node{rm("rm-1"), prospect("p1"), client("p2")},
		Edges: []domain.Edge{
			edge("rm-1", "p1", domain.EdgeKnows),
			edge("rm-1", "p2", domain.EdgeManages),
		},
	}
	src := Source{OwnerID: "rm-1"}

	res, err := Find(context.Background(), network, src, "p1", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"rm-1", "p1"}, res.Recommended.NodeIDs())
	assert.Equal(t, []domain.EdgeType{domain.EdgeKnows}, res.Recommended.Relationships)
	assert.Greater(t, res.Recommended.Strength, 0)
	assert.Equal(t, 100, res.Recommended.Strength)
	assert.Contains(t, res.Recommended.Suggestion, "p1")

	_, err = Find(context.Background(), network, src, "p2", 3)
	assert.ErrorIs(t, err, domain.ErrInvalidPathRequest)
}

func TestDirectContactKnowsTarget(t *testing.T) {
	network := domain.Network{
		Nodes: []domain.Node{rm("rm-1"), client("A"), prospect("T")},
		Edges: []domain.Edge{
			edge("rm-1", "A", domain.EdgeManages),
			edge("A", "T", domain.EdgeKnows),
		},
	}

	res, err := Find(context.Background(), network, Source{OwnerID: "rm-1"}, "T", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "T"}, res.Recommended.NodeIDs())
	assert.Equal(t, 1, res.Recommended.Hops())
	assert.Equal(t, "Ask A to introduce you to T", res.Recommended.Suggestion)
}

func TestMaxHopsBoundsSearch(t *testing.T) {
	network := domain.Network{
		Nodes: []domain.Node{rm("rm-1"), client("A"), prospect("B"), prospect("T")},
		Edges: []domain.Edge{
			edge("rm-1", "A", domain.EdgeManages),
			edge("A", "B", domain.EdgeKnows),
			edge("B", "T", domain.EdgeKnows),
		},
	}
	src := Source{OwnerID: "rm-1"}

	_, err := Find(context.Background(), network, src, "T", 1)
	assert.ErrorIs(t, err, domain.ErrPathNotFound)

	res, err := Find(context.Background(), network, src, "T", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "T"}, res.Recommended.NodeIDs())
	assert.Equal(t, "Ask A to introduce you to T via B", res.Recommended.Suggestion)
}

func TestCandidateBudgetIsNotReportedAsNotFound(t *testing.T) {
	network := domain.Network{
		Nodes: []domain.Node{rm("rm-1"), prospect("a"), prospect("b"), prospect("t")},
		Edges: []domain.Edge{
			edge("rm-1", "a", domain.EdgeKnows),
			edge("a", "b", domain.EdgeKnows),
			edge("b", "t", domain.EdgeKnows),
		},
	}
	src := Source{OwnerID: "rm-1"}

	_, err := New(WithMaxCandidates(2)).Find(context.Background(), network, src, "t", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSearchBudget)
	assert.ErrorIs(t, err, domain.ErrInvalidPathRequest)
	assert.NotErrorIs(t, err, domain.ErrPathNotFound)

	res, err := New().Find(context.Background(), network, src, "t", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "t"}, res.Recommended.NodeIDs())
}

func TestCandidateBudgetKeepsTargetHitsInCurrentLayer(t *testing.T) {
	network := domain.Network{
		Nodes: []domain.Node{rm("rm-1"), client("a"), client("c"), prospect("x1"), prospect("x2"), prospect("t")},
		Edges: []domain.Edge{
			edge("rm-1", "a", domain.EdgeManages),
			edge("rm-1", "c", domain.EdgeManages),
			edge("a", "x1", domain.EdgeKnows),
			edge("a", "x2", domain.EdgeKnows),
			edge("c", "t", domain.EdgeKnows),
		},
	}

	// Three start nodes leave room for one more candidate, so the budget
	// runs out at a's second contact, before c is expanded.
	res, err := New(WithMaxCandidates(4)).Find(context.Background(), network, Source{OwnerID: "rm-1"}, "t", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "t"}, res.Recommended.NodeIDs())
}

func TestInvalidTargetsRejectedBeforeSearch(t *testing.T) {
	network := domain.Network{
		Nodes: []domain.Node{
			rm("rm-1"), client("c1"),
			{ID: "co", Type: domain.NodeCompany, Properties: domain.CompanyProperties{}},
		},
		Edges: []domain.Edge{edge("rm-1", "c1", domain.EdgeManages)},
	}

	for _, target := range []string{"", "missing", "co", "c1", "rm-1"} {
		t.Run(target, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := Find(ctx, network, Source{OwnerID: "rm-1"}, target, 3)
			assert.ErrorIs(t, err, domain.ErrInvalidPathRequest)
			assert.ErrorIs(t, Validate(network, target), domain.ErrInvalidPathRequest)
		})
	}
}

func TestStrongerRelationshipWinsAtEqualHops(t *testing.T) {
	network := domain.Network{
		Nodes: []domain.Node{rm("rm-1"), client("A"), client("B"), prospect("T")},
		Edges: []domain.Edge{
			edge("rm-1", "A", domain.EdgeManages),
			edge("rm-1", "B", domain.EdgeManages),
			edge("A", "T", domain.EdgeInvestorIn),
			edge("B", "T", domain.EdgeKnows),
		},
	}

	res, err := Find(context.Background(), network, Source{OwnerID: "rm-1"}, "T", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "T"}, res.Recommended.NodeIDs())
	require.Len(t, res.Alternatives, 1)
	assert.Equal(t, []string{"A", "T"}, res.Alternatives[0].NodeIDs())
	assert.Greater(t, res.Recommended.Strength, res.Alternatives[0].Strength)
}

func TestTraversesClubMembership(t *testing.T) {
	network := domain.Network{
		Nodes: []domain.Node{
			rm("rm-1"), prospect("T"),
			{ID: "club", Type: domain.NodeNetwork, Label: "Harbour Club", Properties: domain.NetworkProperties{}},
		},
		Edges: []domain.Edge{
			edge("rm-1", "club", domain.EdgeMemberOf),
			edge("T", "club", domain.EdgeMemberOf),
		},
	}

	res, err := Find(context.Background(), network, Source{OwnerID: "rm-1"}, "T", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"rm-1", "club", "T"}, res.Recommended.NodeIDs())
	assert.Equal(t, []domain.EdgeType{domain.EdgeMemberOf, domain.EdgeMemberOf}, res.Recommended.Relationships)
}

func TestIgnoresNonTraversableEdges(t *testing.T) {
	network := domain.Network{
		Nodes: []domain.Node{rm("rm-1"), client("A"), prospect("T")},
		Edges: []domain.Edge{
			edge("rm-1", "A", domain.EdgeManages),
			edge("A", "T", domain.EdgeDirectorOf),
		},
	}
	_, err := Find(context.Background(), network, Source{OwnerID: "rm-1"}, "T", 3)
	assert.ErrorIs(t, err, domain.ErrPathNotFound)

	res, err := New(WithEdgeTypes(domain.EdgeDirectorOf)).Find(context.Background(), network, Source{OwnerID: "rm-1"}, "T", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "T"}, res.Recommended.NodeIDs())
}

func TestExplicitContacts(t *testing.T) {
	network := domain.Network{
		Nodes: []domain.Node{rm("rm-1"), prospect("X"), prospect("T")},
		Edges: []domain.Edge{edge("X", "T", domain.EdgeKnows)},
	}
	res, err := Find(context.Background(), network, Source{OwnerID: "rm-1", Contacts: []string{"X"}}, "T", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "T"}, res.Recommended.NodeIDs())
}

func TestCancelledContextStopsSearch(t *testing.T) {
	network := domain.Network{
		Nodes: []domain.Node{rm("rm-1"), prospect("T")},
		Edges: []domain.Edge{edge("rm-1", "T", domain.EdgeKnows)},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Find(ctx, network, Source{OwnerID: "rm-1"}, "T", 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStrengthMonotoneInHops(t *testing.T) {
	types := append(domain.EdgeTypes(), "unknown")
	rapid.Check(t, func(t *rapid.T) {
		hops := rapid.IntRange(1, MaxHopsLimit-1).Draw(t, "hops")
		short := rapid.SliceOfN(rapid.SampledFrom(types), hops, hops).Draw(t, "short")
		long := rapid.SliceOfN(rapid.SampledFrom(types), hops+1, hops+1).Draw(t, "long")

		s, l := Strength(short), Strength(long)
		if s < l {
			t.Fatalf("%d-hop strength %d below %d-hop strength %d", hops, s, hops+1, l)
		}
		if s < 0 || s > 100 {
			t.Fatalf("strength %d out of range", s)
		}
	})
}

func TestPathShape(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 12).Draw(t, "people")
		nodes := []domain.Node{rm("rm-1")}
		for i := 0; i < n; i++ {
			nodes = append(nodes, prospect(fmt.Sprintf("p%d", i)))
		}
		var edges []domain.Edge
		edgeCount := rapid.IntRange(0, 3*n).Draw(t, "edges")
		for i := 0; i < edgeCount; i++ {
			a := rapid.IntRange(0, n).Draw(t, "a")
			b := rapid.IntRange(0, n).Draw(t, "b")
			edges = append(edges, edge(nodes[a].ID, nodes[b].ID, rapid.SampledFrom(domain.EdgeTypes()).Draw(t, "type")))
		}
		maxHops := rapid.IntRange(1, 4).Draw(t, "maxHops")
		target := nodes[rapid.IntRange(1, n).Draw(t, "target")].ID

		res, err := Find(context.Background(), domain.Network{Nodes: nodes, Edges: edges}, Source{OwnerID: "rm-1"}, target, maxHops)
		if err != nil {
			if !errors.Is(err, domain.ErrPathNotFound) {
				t.Fatalf("unexpected error: %v", err)
			}
			return
		}
		all := append([]domain.IntroPath{res.Recommended}, res.Alternatives...)
		for _, p := range all {
			if len(p.Path) < 2 || len(p.Relationships) != len(p.Path)-1 {
				t.Fatalf("malformed path %v / %v", p.NodeIDs(), p.Relationships)
			}
			if p.Hops() > maxHops {
				t.Fatalf("path of %d hops exceeds max %d", p.Hops(), maxHops)
			}
			if p.Path[len(p.Path)-1].ID != target {
				t.Fatalf("path ends at %s, want %s", p.Path[len(p.Path)-1].ID, target)
			}
			if p.Strength > res.Recommended.Strength {
				t.Fatalf("alternative stronger than recommendation")
			}
		}
	})
}
