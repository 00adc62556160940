package tui

import "github.com/charmbracelet/lipgloss"

var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	borderCol = lipgloss.Color("#243141")
	errorFg   = lipgloss.Color("#F87171")

	appStyle   = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(baseDimFg)
	errStyle   = lipgloss.NewStyle().Foreground(errorFg)

	tabStyle       = lipgloss.NewStyle().Foreground(baseDimFg).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Foreground(baseFg).Background(accentFg).Bold(true).Padding(0, 1)
	labelStyle     = lipgloss.NewStyle().Foreground(baseDimFg).Width(11)
	focusStyle     = lipgloss.NewStyle().Foreground(accentFg).Bold(true).Width(11)

	// Map layers, lowest first.
	overlayStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	finalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	previewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FACC15"))
	hoverStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
)
