package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/wealthnet/internal/domain"
	"github.com/vanshika/wealthnet/internal/graph"
)

func TestRepository_UpsertNode(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	node := domain.Node{
		ID:    "p-1",
		Type:  domain.NodePerson,
		Label: "Aarav Mehta",
		Properties: domain.PersonProperties{
			Designation: "Founder",
			NetWorth:    1.2e9,
			Sector:      "fintech",
			IsClient:    true,
		},
		Metadata: &domain.NodeMetadata{LinkedClientID: "CL-9"},
	}
	require.NoError(t, repo.UpsertNode(context.Background(), node))

	calls := mem.WriteCalls()
	require.Len(t, calls, 1)
	assert.True(t, strings.Contains(calls[0].Query, "MERGE (n:NetworkNode {nodeId: $nodeId})"))

	params := calls[0].Params
	assert.Equal(t, "p-1", params["nodeId"])
	assert.Equal(t, "person", params["type"])
	assert.Equal(t, "CL-9", params["linkedClientId"])
	assert.Equal(t, "fintech", params["sector"])
	assert.Equal(t, true, params["isClient"])
	assert.Contains(t, params["propertiesJson"], `"netWorth":1200000000`)
}

func TestRepository_UpsertNodeRejectsInvalid(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	ctx := context.Background()

	cases := map[string]domain.Node{
		"missing id":       {Type: domain.NodePerson},
		"unknown type":     {ID: "x", Type: "alien"},
		"variant mismatch": {ID: "x", Type: domain.NodeCompany, Properties: domain.PersonProperties{}},
	}
	for name, node := range cases {
		t.Run(name, func(t *testing.T) {
			err := repo.UpsertNode(ctx, node)
			assert.ErrorIs(t, err, domain.ErrInvalidNetwork)
		})
	}
}

func TestRepository_UpsertEdge(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)
	mem.PushWriteResult(graph.Result{Records: []graph.Record{{"edgeId": "e-1"}}})

	edge := domain.Edge{ID: "e-1", Source: "rm-1", Target: "p-1", Type: domain.EdgeManages, Label: "manages"}
	require.NoError(t, repo.UpsertEdge(context.Background(), edge))

	calls := mem.WriteCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "rm-1", calls[0].Params["sourceId"])
	assert.Equal(t, "p-1", calls[0].Params["targetId"])
	assert.Equal(t, "manages", calls[0].Params["type"])
}

func TestRepository_UpsertEdgeMissingEndpoint(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	edge := domain.Edge{ID: "e-1", Source: "rm-1", Target: "ghost", Type: domain.EdgeKnows}

	err := repo.UpsertEdge(context.Background(), edge)
	assert.ErrorIs(t, err, ErrMissingEndpoint)
}

func TestRepository_FetchNetwork(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem, WithTraversalDepth(2))

	mem.On("RETURN n.nodeId AS nodeId", func(params map[string]any) (graph.Result, error) {
		if params["ownerId"] != "rm-1" {
			return graph.Result{}, nil
		}
		return graph.Result{Records: []graph.Record{
			{"nodeId": "c-1", "type": "company", "label": "Acme", "propertiesJson": `{"sector":"energy"}`},
			{"nodeId": "p-1", "type": "person", "label": "Aarav", "propertiesJson": `{"sector":"fintech","isClient":false}`, "linkedClientId": "CL-1"},
			{"nodeId": "rm-1", "type": "rm", "label": "Riya", "propertiesJson": `{"role":"senior"}`},
		}}, nil
	})
	mem.On("MATCH (a:NetworkNode)-[r:RELATES]->(b:NetworkNode)", func(params map[string]any) (graph.Result, error) {
		return graph.Result{Records: []graph.Record{
			{"edgeId": "e-1", "sourceId": "rm-1", "targetId": "p-1", "type": "manages", "label": "manages"},
			{"edgeId": "e-2", "sourceId": "p-1", "targetId": "c-1", "type": "promoter_of"},
		}}, nil
	})

	network, err := repo.FetchNetwork(context.Background(), domain.NetworkQuery{
		OwnerID: "rm-1",
		Filters: domain.GraphFilters{Sectors: []string{" FinTech "}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"p-1", "rm-1"}, domain.NodeIDs(network.Nodes))
	require.Len(t, network.Edges, 1)
	assert.Equal(t, "e-1", network.Edges[0].ID)
	assert.Equal(t, 2, network.Stats.TotalNodes)
	assert.Equal(t, 1, network.Stats.TotalEdges)

	person, ok := network.Nodes[0].Person()
	require.True(t, ok)
	assert.Equal(t, "fintech", person.Sector)
	assert.Equal(t, "CL-1", network.Nodes[0].LinkedClientID())

	reads := mem.ReadCalls()
	require.Len(t, reads, 2)
	assert.Contains(t, reads[0].Query, "[:RELATES*0..2]")
	assert.ElementsMatch(t, []string{"c-1", "p-1", "rm-1"}, reads[1].Params["nodeIds"])
}

func TestRepository_FetchNetworkUnknownOwner(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	network, err := repo.FetchNetwork(context.Background(), domain.NetworkQuery{OwnerID: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, network.Nodes)
	assert.Empty(t, network.Edges)
	assert.Len(t, mem.ReadCalls(), 1, "edge query skipped when no nodes are reachable")
}

func TestRepository_FetchNetworkBadProperties(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"nodeId": "x", "type": "spaceship", "propertiesJson": "{}"},
	}})

	_, err := New(mem).FetchNetwork(context.Background(), domain.NetworkQuery{OwnerID: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidNetwork)
}

func TestRepository_FetchNetworkClientError(t *testing.T) {
	boom := errors.New("bolt down")
	repo := New(graph.NewMemoryClient().WithError(boom))

	_, err := repo.FetchNetwork(context.Background(), domain.NetworkQuery{OwnerID: "rm-1"})
	assert.ErrorIs(t, err, boom)
}

func TestRepository_EnsureSchema(t *testing.T) {
	mem := graph.NewMemoryClient()
	require.NoError(t, New(mem).EnsureSchema(context.Background()))
	calls := mem.WriteCalls()
	require.Len(t, calls, len(schemaCypher))
	assert.Contains(t, calls[0].Query, "REQUIRE n.nodeId IS UNIQUE")
}
