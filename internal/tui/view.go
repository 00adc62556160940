package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	contentWidth := max(10, m.width)
	_, _, mapWidth, mapHeight := m.mapRect()

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render(" geoshape "), " ", m.renderTabs())
	header = lipgloss.NewStyle().Width(contentWidth).MaxHeight(headerHeight).Render(header)

	var sidebar string
	switch {
	case m.showFiles:
		sidebar = lipgloss.NewStyle().Width(sidebarWidth).Height(mapHeight).Render(m.files.View())
	case m.showPicker:
		sidebar = lipgloss.NewStyle().Width(sidebarWidth).Height(mapHeight).Render(m.picker.View())
	default:
		sidebar = m.renderForm(mapHeight)
	}

	var mapView string
	if m.showAttrs {
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 2
		}
		maxW := min(mapWidth, max(32, colW+4))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(mapHeight-2, 20))
		attrsBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(mapWidth, mapHeight, lipgloss.Center, lipgloss.Center, attrsBox)
	} else {
		var hover *[2]int
		if m.hovering {
			hover = &[2]int{m.hoverCellX, m.hoverCellY}
		}
		mapView = lipgloss.NewStyle().Width(mapWidth).Height(mapHeight).Render(m.canvas.render(hover))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)

	rows := []string{header, body}
	if m.entryMode {
		rows = append(rows, titleStyle.Render(" coordinate ")+m.entry.View())
	}
	rows = append(rows, m.renderFooter(contentWidth))
	ui := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

func (m Model) renderFooter(width int) string {
	st := dimStyle
	if m.statusErr {
		st = errStyle
	}
	status := st.Render(" " + truncate(m.status, max(10, width/2)) + " ")

	coords := ""
	if m.hovering && m.hoverHasGeo {
		coords = dimStyle.Render(fmt.Sprintf("  %s  ", m.formatHover()))
	}
	spacerW := max(0, width-lipgloss.Width(status)-lipgloss.Width(coords))
	line := lipgloss.JoinHorizontal(lipgloss.Bottom, status, strings.Repeat(" ", spacerW), coords)
	return lipgloss.JoinVertical(lipgloss.Left, line, m.renderHelp())
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	var keys []string
	switch {
	case m.entryMode:
		keys = []string{"Enter place point", "Esc cancel"}
	case m.showAttrs:
		keys = []string{"↑↓ scroll", "e export", "E format:" + m.exportFormat, "Esc close"}
	case m.showPicker, m.showFiles:
		keys = []string{"↑↓ select", "Enter choose", "Esc close"}
	case m.focus != focusMap:
		keys = []string{"Enter/Tab apply+next", "Shift+Tab prev", "Esc map"}
	default:
		keys = []string{
			"1-4/Tab tool", "click point", "Enter commit", "f fields", "m mode",
			"u/b units", "t travel", "c line type", "p coord", "n notation",
			"a shapes", "e export", "o overlay", "x clear", "+/- zoom", "z fit", "h help", "q quit",
		}
	}
	return dimStyle.Render(" " + strings.Join(keys, "  "))
}
