package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/wealthnet/internal/config"
	"github.com/vanshika/wealthnet/internal/domain"
	"github.com/vanshika/wealthnet/internal/generator"
	"github.com/vanshika/wealthnet/internal/graph"
	"github.com/vanshika/wealthnet/internal/layout"
	"github.com/vanshika/wealthnet/internal/service"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	return cfg
}

func TestOpenBackendGeneratesMemoryNetwork(t *testing.T) {
	cfg := testConfig(t)
	cfg.Graph.Seed = 11

	b, err := OpenBackend(context.Background(), cfg, nil, BackendOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close(context.Background()) })
	assert.Equal(t, config.BackendMemory, b.Name)

	network, err := b.Store.FetchNetwork(context.Background(), domain.NetworkQuery{OwnerID: generator.RMID(1)})
	require.NoError(t, err)
	require.NotEmpty(t, network.Nodes)
	assert.Equal(t, generator.RMID(1), network.Nodes[0].ID)
	assert.NoError(t, network.Validate())
}

func TestOpenBackendReadsDataset(t *testing.T) {
	ds := generator.Dataset{
		Nodes: []domain.Node{
			{ID: "rm-1", Type: domain.NodeRM, Label: "Riya", Properties: domain.RMProperties{}},
			{ID: "p1", Type: domain.NodePerson, Label: "Asha", Properties: domain.PersonProperties{IsClient: true}},
		},
		Edges: []domain.Edge{{ID: "e1", Source: "rm-1", Target: "p1", Type: domain.EdgeManages}},
	}
	path := filepath.Join(t.TempDir(), "network.yaml")
	require.NoError(t, generator.WriteDataset(ds, path))

	cfg := testConfig(t)
	cfg.Graph.DatasetPath = path
	b, err := OpenBackend(context.Background(), cfg, nil, BackendOptions{})
	require.NoError(t, err)

	network, err := b.Store.FetchNetwork(context.Background(), domain.NetworkQuery{OwnerID: "rm-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"rm-1", "p1"}, domain.NodeIDs(network.Nodes))
}

func TestOpenBackendMissingDataset(t *testing.T) {
	cfg := testConfig(t)
	cfg.Graph.DatasetPath = filepath.Join(t.TempDir(), "absent.json")
	_, err := OpenBackend(context.Background(), cfg, nil, BackendOptions{})
	assert.Error(t, err)
}

func TestOpenBackendRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Graph.Backend = "sqlite"
	_, err := OpenBackend(context.Background(), cfg, nil, BackendOptions{})
	assert.ErrorContains(t, err, "unknown graph backend")
}

func TestOpenRepositoryRequiresURI(t *testing.T) {
	cfg := testConfig(t)
	_, err := OpenRepository(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, graph.ErrMissingURI)
}

func TestNilBackendClose(t *testing.T) {
	var b *Backend
	assert.NoError(t, b.Close(context.Background()))
}

func TestServiceOptionsFromConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.MaxHops = 2
	cfg.Layout.Iterations = 10

	opts := ServiceOptions(cfg, nil, nil)
	assert.Equal(t, 2, opts.MaxHops)
	assert.Equal(t, cfg.Paths.Timeout, opts.PathTimeout)
	assert.Nil(t, opts.Observer)
	assert.Len(t, opts.Layout, 2)

	b, err := OpenBackend(context.Background(), cfg, nil, BackendOptions{})
	require.NoError(t, err)
	svc := service.NewNetworkService(b.Store, opts)
	network, err := svc.LayoutNetwork(context.Background(), domain.NetworkQuery{OwnerID: generator.RMID(1)}, layout.Circular, 400, 300)
	require.NoError(t, err)
	for _, n := range network.Nodes {
		require.NotNil(t, n.Position, n.ID)
	}
}
