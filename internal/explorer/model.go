// Package explorer is a terminal front end for browsing an owner's wealth
// network. It drives an interaction.Controller from bubbletea messages and
// draws the laid-out graph on a character canvas.
package explorer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanshika/wealthnet/internal/domain"
	"github.com/vanshika/wealthnet/internal/interaction"
	"github.com/vanshika/wealthnet/internal/layout"
)

const (
	// chromeRows is the number of terminal rows reserved for the header,
	// status and help lines.
	chromeRows = 3
	panStep    = 6 * cellWidth

	defaultCols = 100
	defaultRows = 32
)

var typeFilterCycle = []domain.NodeType{
	"",
	domain.NodePerson,
	domain.NodeCompany,
	domain.NodeLiquidityEvent,
	domain.NodeNetwork,
	domain.NodeRM,
}

// Sources supplies network data and introduction paths.
type Sources interface {
	interaction.NetworkSource
	interaction.IntroPathSource
}

// Config tunes a Model.
type Config struct {
	OwnerID       string
	Algorithm     layout.Algorithm
	MaxHops       int
	Timeout       time.Duration
	LayoutOptions []layout.Option
	Logger        *slog.Logger
}

// Model is the bubbletea model of the explorer.
type Model struct {
	ctx     context.Context
	src     Sources
	ctrl    *interaction.Controller
	logger  *slog.Logger
	timeout time.Duration

	cols, rows  int
	order       []string
	showDetails bool
	typeFilter  int
	notice      string
	quitting    bool
}

// New builds a model. ctx bounds every fetch the model starts.
func New(ctx context.Context, src Sources, cfg Config) Model {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	logger := cfg.Logger.With("component", "explorer")
	opts := []interaction.Option{
		interaction.WithCanvas(defaultCols*cellWidth, (defaultRows-chromeRows)*cellHeight),
		interaction.WithLayoutOptions(cfg.LayoutOptions...),
		interaction.WithLayoutObserver(func(a layout.Algorithm, nodes int, elapsed time.Duration) {
			logger.Debug("layout computed", "algorithm", a, "nodes", nodes, "elapsed", elapsed)
		}),
	}
	if cfg.Algorithm != "" {
		opts = append(opts, interaction.WithAlgorithm(cfg.Algorithm))
	}
	if cfg.MaxHops > 0 {
		opts = append(opts, interaction.WithMaxHops(cfg.MaxHops))
	}
	return Model{
		ctx:     ctx,
		src:     src,
		ctrl:    interaction.New(cfg.OwnerID, opts...),
		logger:  logger,
		timeout: cfg.Timeout,
		cols:    defaultCols,
		rows:    defaultRows,
	}
}

// State exposes the controller state.
func (m Model) State() interaction.State {
	return m.ctrl.State()
}

// Init starts the first network fetch.
func (m Model) Init() tea.Cmd {
	return m.fetch(m.ctrl.Refresh())
}

func (m Model) fetch(req interaction.GraphRequest) tea.Cmd {
	ctx, src, timeout := m.ctx, m.src, m.timeout
	return func() tea.Msg {
		return interaction.LoadNetwork(ctx, src, req, timeout)
	}
}

func (m Model) queryPath(req interaction.PathRequest) tea.Cmd {
	ctx, src, timeout := m.ctx, m.src, m.timeout
	return func() tea.Msg {
		return interaction.QueryIntroPath(ctx, src, req, timeout)
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = max(msg.Width, 1), max(msg.Height, chromeRows+1)
		w, h := m.canvasSize()
		if err := m.ctrl.SetCanvas(w, h); err != nil {
			m.logger.Warn("resize failed", "error", err)
		}
		return m, nil

	case interaction.NetworkLoaded:
		if !m.ctrl.Apply(msg) {
			m.logger.Debug("stale network response dropped", "ticket", msg.Ticket)
			return m, nil
		}
		st := m.ctrl.State()
		if st.GraphStatus == interaction.StatusFailed {
			m.logger.Warn("network fetch failed", "owner_id", st.OwnerID, "error", st.GraphError)
		}
		order := make([]string, 0, len(st.Network.Nodes))
		for _, n := range st.Network.Nodes {
			order = append(order, n.ID)
		}
		m.order = order
		if st.SelectedNodeID == "" {
			m.showDetails = false
		}
		return m, nil

	case interaction.IntroPathLoaded:
		if m.ctrl.Apply(msg) && msg.Err != nil && !domain.IsRetryable(msg.Err) {
			m.logger.Info("intro path query finished", "error", msg.Err)
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.ctrl.State()
	m.notice = ""

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		m.cycleSelection(st, 1)
	case "shift+tab":
		m.cycleSelection(st, -1)
	case "enter":
		if st.SelectedNodeID != "" {
			m.showDetails = !m.showDetails
		}
	case "o":
		if target, ok := m.ctrl.DoubleClick(st.SelectedNodeID); ok {
			m.notice = fmt.Sprintf("open client record %s for %s", target.ClientID, target.NodeID)
			m.logger.Info("open linked client", "node_id", target.NodeID, "client_id", target.ClientID)
		} else {
			m.notice = "no linked client record"
		}
	case "p":
		if st.SelectedNodeID == "" {
			m.notice = "select a person first"
			return m, nil
		}
		req, err := m.ctrl.RequestIntroPath(st.SelectedNodeID)
		if err != nil {
			return m, nil
		}
		return m, m.queryPath(req)
	case "l":
		next, err := m.ctrl.CycleAlgorithm()
		m.notice = "layout: " + string(next)
		if err != nil {
			m.logger.Warn("relayout failed", "algorithm", next, "error", err)
			m.notice += " (" + err.Error() + ")"
		}
	case "+", "=":
		m.ctrl.ZoomIn()
	case "-":
		m.ctrl.ZoomOut()
	case "0":
		m.ctrl.ResetViewport()
	case "up":
		m.ctrl.Pan(0, panStep)
	case "down":
		m.ctrl.Pan(0, -panStep)
	case "left":
		m.ctrl.Pan(panStep, 0)
	case "right":
		m.ctrl.Pan(-panStep, 0)
	case "c":
		f := st.Filters
		f.OnlyClients = !f.OnlyClients
		return m, m.fetch(m.ctrl.SetFilters(f))
	case "t":
		m.typeFilter = (m.typeFilter + 1) % len(typeFilterCycle)
		f := st.Filters
		f.NodeTypes = nil
		if t := typeFilterCycle[m.typeFilter]; t != "" {
			f.NodeTypes = []domain.NodeType{t}
		}
		return m, m.fetch(m.ctrl.SetFilters(f))
	case "r":
		return m, m.fetch(m.ctrl.Refresh())
	case "esc":
		m.showDetails = false
		m.ctrl.ClearSelection()
	}
	return m, nil
}

func (m *Model) cycleSelection(st interaction.State, delta int) {
	if len(m.order) == 0 {
		return
	}
	next := 0
	if delta < 0 {
		next = len(m.order) - 1
	}
	for i, id := range m.order {
		if id == st.SelectedNodeID {
			next = (i + delta + len(m.order)) % len(m.order)
			break
		}
	}
	m.ctrl.SelectNode(m.order[next])
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	px, py := cellCentre(msg.X, msg.Y-1)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.ctrl.Wheel(px, py, -1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.ctrl.Wheel(px, py, 1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.ctrl.PointerDown(px, py)
	case msg.Action == tea.MouseActionMotion:
		m.ctrl.PointerMove(px, py)
	case msg.Action == tea.MouseActionRelease:
		m.ctrl.PointerUp()
	}
	return m
}

func (m Model) canvasSize() (float64, float64) {
	return float64(m.cols) * cellWidth, float64(m.rows-chromeRows) * cellHeight
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	st := m.ctrl.State()
	body := m.body(st)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(st),
		body,
		m.status(st),
		mutedStyle.Render(helpLine),
	)
}

const helpLine = "tab select · enter details · o open client · p intro path · l layout · +/- zoom · arrows pan · 0 reset · c clients · t type · r retry · esc clear · q quit"

func (m Model) header(st interaction.State) string {
	parts := []string{
		"wealthnet",
		"owner " + st.OwnerID,
		"layout " + string(st.Algorithm),
		fmt.Sprintf("%d nodes / %d edges", st.Network.Stats.TotalNodes, st.Network.Stats.TotalEdges),
		fmt.Sprintf("zoom %.1fx", st.Viewport.Zoom),
	}
	if filters := describeFilters(st.Filters); filters != "" {
		parts = append(parts, filters)
	}
	return headerStyle.Width(m.cols).MaxHeight(1).Render(strings.Join(parts, " · "))
}

func (m Model) body(st interaction.State) string {
	height := m.rows - chromeRows
	var content string
	switch {
	case st.GraphStatus == interaction.StatusFailed:
		msg := "failed to load network: " + st.GraphError
		if st.GraphRetryable {
			msg += "  (press r to retry)"
		}
		content = errorStyle.Render(msg)
	case st.GraphStatus == interaction.StatusLoading && len(st.Network.Nodes) == 0:
		content = mutedStyle.Render("loading network…")
	case m.showDetails && st.SelectedNodeID != "":
		content = m.details(st.SelectedNodeID)
	default:
		return drawNetwork(st, m.cols, height)
	}
	return lipgloss.Place(m.cols, height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) details(id string) string {
	n, ok := m.ctrl.Details(id)
	if !ok {
		return ""
	}
	lines := []string{
		labelStyle.Bold(true).Render(n.Label),
		mutedStyle.Render(fmt.Sprintf("%s · %s", n.ID, n.Type)),
		"",
	}
	switch p := n.Properties.(type) {
	case domain.PersonProperties:
		lines = append(lines,
			"designation: "+p.Designation,
			"sector:      "+p.Sector,
			fmt.Sprintf("net worth:   %.0f", p.NetWorth),
			fmt.Sprintf("client:      %t", p.IsClient),
		)
		if p.IsInfluencer {
			lines = append(lines, "influencer")
		}
	case domain.CompanyProperties:
		lines = append(lines,
			"cin:       "+p.CIN,
			"sector:    "+p.Sector,
			fmt.Sprintf("valuation: %.0f", p.Valuation),
		)
	case domain.LiquidityEventProperties:
		lines = append(lines, fmt.Sprintf("amount: %.0f", p.Amount))
	case domain.RMProperties:
		lines = append(lines, "role:  "+p.Role, "email: "+p.Email)
	}
	if client := n.LinkedClientID(); client != "" {
		lines = append(lines, "", "linked client: "+client+" (press o)")
	}
	lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("%d connections", len(m.ctrl.Neighbors(id)))))
	return detailsStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) status(st interaction.State) string {
	switch {
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	case st.PathStatus == interaction.StatusLoading:
		return mutedStyle.Render("searching introduction path to " + st.PathTargetID + "…")
	case st.PathStatus == interaction.StatusFailed:
		return errorStyle.Render("intro path: " + st.PathError)
	case st.PathNotFound:
		return noticeStyle.Render("no warm introduction path found")
	case st.IntroPath != nil:
		return pathStyle.Render(describePath(*st.IntroPath, len(st.PathAlternatives)))
	case st.SelectedNodeID != "":
		if n, ok := m.ctrl.Details(st.SelectedNodeID); ok {
			return labelStyle.Render(fmt.Sprintf("%s (%s)", n.Label, n.Type))
		}
	}
	return ""
}

func describePath(p domain.IntroPath, alternatives int) string {
	labels := make([]string, len(p.Path))
	for i, n := range p.Path {
		labels[i] = n.Label
	}
	out := fmt.Sprintf("path %s · strength %d", strings.Join(labels, " → "), p.Strength)
	if alternatives > 0 {
		out += fmt.Sprintf(" · %d alternatives", alternatives)
	}
	if p.Suggestion != "" {
		out += " · " + p.Suggestion
	}
	return out
}

func describeFilters(f domain.GraphFilters) string {
	var parts []string
	if f.OnlyClients {
		parts = append(parts, "clients only")
	}
	for _, t := range f.NodeTypes {
		parts = append(parts, "type="+string(t))
	}
	if len(f.Sectors) > 0 {
		parts = append(parts, "sectors="+strings.Join(f.Sectors, ","))
	}
	return strings.Join(parts, ", ")
}
