package explorer

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vanshika/wealthnet/internal/domain"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e2e8f0")).Background(lipgloss.Color("#1e293b")).Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748b"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171")).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#facc15"))
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e2e8f0"))

	edgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#475569"))
	edgeDimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1e293b"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#334155"))

	detailsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#38bdf8")).
			Padding(0, 1)
)

var typeStyles = map[domain.NodeType]lipgloss.Style{
	domain.NodePerson:         lipgloss.NewStyle().Foreground(lipgloss.Color("#38bdf8")),
	domain.NodeCompany:        lipgloss.NewStyle().Foreground(lipgloss.Color("#a78bfa")),
	domain.NodeLiquidityEvent: lipgloss.NewStyle().Foreground(lipgloss.Color("#f472b6")),
	domain.NodeNetwork:        lipgloss.NewStyle().Foreground(lipgloss.Color("#34d399")),
	domain.NodeRM:             lipgloss.NewStyle().Foreground(lipgloss.Color("#fb923c")),
}

func glyph(n domain.Node) rune {
	switch n.Type {
	case domain.NodeRM:
		return '◆'
	case domain.NodePerson:
		if n.IsClient() {
			return '◉'
		}
		return '●'
	case domain.NodeCompany:
		return '■'
	case domain.NodeLiquidityEvent:
		return '▲'
	case domain.NodeNetwork:
		return '◎'
	}
	return '?'
}
