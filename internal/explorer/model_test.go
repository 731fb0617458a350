package explorer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/wealthnet/internal/domain"
	"github.com/vanshika/wealthnet/internal/interaction"
	"github.com/vanshika/wealthnet/internal/layout"
	"github.com/vanshika/wealthnet/internal/viewport"
)

type fakeSource struct {
	mu      sync.Mutex
	network domain.Network
	err     error
	queries []domain.NetworkQuery
	path    domain.IntroPathResult
	pathErr error
}

func (f *fakeSource) FetchNetwork(_ context.Context, q domain.NetworkQuery) (domain.Network, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return domain.Network{}, f.err
	}
	return f.network, nil
}

func (f *fakeSource) FindIntroPath(context.Context, domain.IntroPathQuery) (domain.IntroPathResult, error) {
	return f.path, f.pathErr
}

func (f *fakeSource) lastQuery() domain.NetworkQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

func sampleNetwork() domain.Network {
	nodes := []domain.Node{
		{ID: "rm-1", Type: domain.NodeRM, Label: "Riya", Properties: domain.RMProperties{Role: "Senior RM"}},
		{ID: "p1", Type: domain.NodePerson, Label: "Aarav", Properties: domain.PersonProperties{IsClient: true, Sector: "fintech"},
			Metadata: &domain.NodeMetadata{LinkedClientID: "CL-00001"}},
		{ID: "p2", Type: domain.NodePerson, Label: "Meera", Properties: domain.PersonProperties{Sector: "pharma", Designation: "Founder"}},
	}
	edges := []domain.Edge{
		{ID: "e1", Source: "rm-1", Target: "p1", Type: domain.EdgeManages},
		{ID: "e2", Source: "p1", Target: "p2", Type: domain.EdgeKnows},
	}
	return domain.Network{Nodes: nodes, Edges: edges, Stats: domain.ComputeStats(nodes, edges)}
}

func newModel(src *fakeSource) Model {
	return New(context.Background(), src, Config{
		OwnerID:   "rm-1",
		Algorithm: layout.Circular,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// run executes cmd synchronously and feeds its message back into m.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	updated, _ := m.Update(cmd())
	return updated.(Model)
}

func press(m Model, key string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch key {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		msg = tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func loaded(t *testing.T, src *fakeSource) Model {
	t.Helper()
	m := newModel(src)
	m = run(t, m, m.Init())
	require.Equal(t, interaction.StatusReady, m.State().GraphStatus)
	return m
}

func TestInitLoadsNetwork(t *testing.T) {
	m := loaded(t, &fakeSource{network: sampleNetwork()})

	st := m.State()
	require.Len(t, st.Network.Nodes, 3)
	for _, n := range st.Network.Nodes {
		assert.NotNil(t, n.Position, n.ID)
	}
	view := m.View()
	assert.Contains(t, view, "3 nodes / 2 edges")
	assert.Contains(t, view, "◆")
	assert.Contains(t, view, "◉")
}

func TestTabCyclesSelection(t *testing.T) {
	m := loaded(t, &fakeSource{network: sampleNetwork()})

	m, _ = press(m, "tab")
	assert.Equal(t, "rm-1", m.State().SelectedNodeID)
	m, _ = press(m, "tab")
	assert.Equal(t, "p1", m.State().SelectedNodeID)
	assert.ElementsMatch(t, []string{"p1", "p2", "rm-1"}, m.State().HighlightedNodeIDs)
	m, _ = press(m, "shift+tab")
	assert.Equal(t, "rm-1", m.State().SelectedNodeID)
	m, _ = press(m, "shift+tab")
	assert.Equal(t, "p2", m.State().SelectedNodeID)

	m, _ = press(m, "esc")
	assert.Empty(t, m.State().SelectedNodeID)
	assert.Empty(t, m.State().HighlightedNodeIDs)
}

func TestDetailsAndLinkedClient(t *testing.T) {
	m := loaded(t, &fakeSource{network: sampleNetwork()})
	m, _ = press(m, "tab")
	m, _ = press(m, "tab")

	m, _ = press(m, "enter")
	view := m.View()
	assert.Contains(t, view, "Aarav")
	assert.Contains(t, view, "linked client: CL-00001")

	m, _ = press(m, "o")
	assert.Contains(t, m.View(), "open client record CL-00001 for p1")

	m, _ = press(m, "esc")
	m, _ = press(m, "tab")
	m, _ = press(m, "o")
	assert.Contains(t, m.View(), "no linked client record")
}

func TestIntroPathKey(t *testing.T) {
	network := sampleNetwork()
	src := &fakeSource{
		network: network,
		path: domain.IntroPathResult{Recommended: domain.IntroPath{
			Path:          []domain.Node{network.Nodes[1], network.Nodes[2]},
			Relationships: []domain.EdgeType{domain.EdgeKnows},
			Strength:      100,
			Suggestion:    "Ask Aarav for an introduction",
		}},
	}
	m := loaded(t, src)

	m, _ = press(m, "shift+tab")
	require.Equal(t, "p2", m.State().SelectedNodeID)
	m, cmd := press(m, "p")
	assert.Equal(t, interaction.StatusLoading, m.State().PathStatus)

	m = run(t, m, cmd)
	st := m.State()
	require.NotNil(t, st.IntroPath)
	assert.Equal(t, []string{"p1", "p2"}, st.IntroPath.NodeIDs())
	assert.True(t, st.OnPath("p1", "p2"))
	assert.Contains(t, m.View(), "strength 100")
}

func TestIntroPathRejectsClientTarget(t *testing.T) {
	m := loaded(t, &fakeSource{network: sampleNetwork()})
	m, _ = press(m, "tab")
	m, _ = press(m, "tab")

	m, cmd := press(m, "p")
	assert.Nil(t, cmd)
	assert.Equal(t, interaction.StatusFailed, m.State().PathStatus)
	assert.Contains(t, m.View(), "intro path:")
}

func TestIntroPathNotFound(t *testing.T) {
	m := loaded(t, &fakeSource{network: sampleNetwork(), pathErr: domain.ErrPathNotFound})
	m, _ = press(m, "shift+tab")

	m, cmd := press(m, "p")
	m = run(t, m, cmd)
	assert.True(t, m.State().PathNotFound)
	assert.Contains(t, m.View(), "no warm introduction path found")
}

func TestEscapeDiscardsPendingIntroPath(t *testing.T) {
	network := sampleNetwork()
	src := &fakeSource{
		network: network,
		path: domain.IntroPathResult{Recommended: domain.IntroPath{
			Path:          []domain.Node{network.Nodes[1], network.Nodes[2]},
			Relationships: []domain.EdgeType{domain.EdgeKnows},
			Strength:      100,
		}},
	}
	m := loaded(t, src)
	m, _ = press(m, "shift+tab")

	m, cmd := press(m, "p")
	m, _ = press(m, "esc")
	m = run(t, m, cmd)

	st := m.State()
	assert.Nil(t, st.IntroPath)
	assert.Empty(t, st.SelectedNodeID)
	assert.Empty(t, st.HighlightedNodeIDs)
}

func TestFilterKeysRefetch(t *testing.T) {
	src := &fakeSource{network: sampleNetwork()}
	m := loaded(t, src)

	m, cmd := press(m, "c")
	m = run(t, m, cmd)
	assert.True(t, src.lastQuery().Filters.OnlyClients)
	assert.True(t, m.State().Filters.OnlyClients)

	m, cmd = press(m, "t")
	m = run(t, m, cmd)
	assert.Equal(t, []domain.NodeType{domain.NodePerson}, src.lastQuery().Filters.NodeTypes)
	assert.Equal(t, "clients only, type=person", describeFilters(m.State().Filters))

	for i := 1; i < len(typeFilterCycle); i++ {
		m, cmd = press(m, "t")
		m = run(t, m, cmd)
	}
	assert.Empty(t, src.lastQuery().Filters.NodeTypes)
}

func TestFailedFetchOffersRetry(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	m := newModel(src)
	m = run(t, m, m.Init())

	st := m.State()
	assert.Equal(t, interaction.StatusFailed, st.GraphStatus)
	assert.True(t, st.GraphRetryable)
	assert.Contains(t, m.View(), "press r to retry")

	src.mu.Lock()
	src.err, src.network = nil, sampleNetwork()
	src.mu.Unlock()

	m, cmd := press(m, "r")
	m = run(t, m, cmd)
	assert.Equal(t, interaction.StatusReady, m.State().GraphStatus)
}

func TestStaleFetchIsDropped(t *testing.T) {
	src := &fakeSource{network: sampleNetwork()}
	m := loaded(t, src)

	_, first := press(m, "r")
	m, second := press(m, "r")
	staleMsg := first()

	m = run(t, m, second)
	require.Equal(t, interaction.StatusReady, m.State().GraphStatus)

	updated, _ := m.Update(staleMsg)
	m = updated.(Model)
	assert.Equal(t, interaction.StatusReady, m.State().GraphStatus)
}

func TestViewportKeys(t *testing.T) {
	m := loaded(t, &fakeSource{network: sampleNetwork()})

	m, _ = press(m, "+")
	assert.InDelta(t, viewport.DefaultZoom+viewport.ZoomStep, m.State().Viewport.Zoom, 1e-9)
	m, _ = press(m, "-")
	m, _ = press(m, "-")
	assert.InDelta(t, viewport.DefaultZoom-viewport.ZoomStep, m.State().Viewport.Zoom, 1e-9)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m = updated.(Model)
	assert.InDelta(t, panStep, m.State().Viewport.X, 1e-9)

	m, _ = press(m, "0")
	assert.Equal(t, viewport.New(), m.State().Viewport)

	m, _ = press(m, "l")
	assert.Equal(t, layout.Circular.Next(), m.State().Algorithm)
}

func TestWindowResizeUpdatesCanvas(t *testing.T) {
	m := loaded(t, &fakeSource{network: sampleNetwork()})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(Model)

	canvas := m.State().Canvas
	assert.Equal(t, 120*cellWidth, canvas.Width)
	assert.Equal(t, float64(40-chromeRows)*cellHeight, canvas.Height)
}

func TestMouseClickSelectsNode(t *testing.T) {
	m := loaded(t, &fakeSource{network: sampleNetwork()})

	st := m.State()
	var target domain.Node
	for _, n := range st.Network.Nodes {
		if n.ID == "p2" {
			target = n
		}
	}
	x, y, ok := toCell(st.Viewport.ToScreen(*target.Position))
	require.True(t, ok)

	updated, _ := m.Update(tea.MouseMsg{X: x, Y: y + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = updated.(Model)
	assert.Equal(t, "p2", m.State().SelectedNodeID)
}

func TestQuit(t *testing.T) {
	m := loaded(t, &fakeSource{network: sampleNetwork()})
	m, cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestDrawNetworkPlacesGlyphs(t *testing.T) {
	at := func(x, y float64) *domain.Point { return &domain.Point{X: x, Y: y} }
	st := interaction.State{
		Viewport: viewport.New(),
		Network: domain.Network{
			Nodes: []domain.Node{
				{ID: "a", Type: domain.NodeCompany, Label: "Orion", Position: at(4, 8)},
				{ID: "b", Type: domain.NodeNetwork, Label: "Club", Position: at(84, 8)},
				{ID: "c", Type: domain.NodePerson, Label: "Off", Position: at(-100, 8)},
			},
			Edges: []domain.Edge{{ID: "e", Source: "a", Target: "b", Type: domain.EdgeMemberOf}},
		},
	}

	lines := strings.Split(drawNetwork(st, 12, 2), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "■·········◎ ", lines[0])
	assert.Equal(t, strings.Repeat(" ", 12), lines[1])

	st.SelectedNodeID = "a"
	st.HighlightedNodeIDs = []string{"a", "b"}
	lines = strings.Split(drawNetwork(st, 12, 2), "\n")
	assert.Equal(t, "■·Orion···◎ ", lines[0])
}
