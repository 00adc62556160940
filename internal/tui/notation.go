package tui

import (
	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"geoshape/internal/coord"
)

type notationItem struct {
	format coord.Format
	sample string
}

func (n notationItem) Title() string       { return n.format.String() }
func (n notationItem) Description() string { return n.sample }
func (n notationItem) FilterValue() string { return n.format.String() }

// sampleAt is where the picker shows each notation's example.
var sampleAt = coord.Point{Lat: 34.0522, Lon: -118.2437}

func newNotationPicker(current coord.Format) list.Model {
	items := make([]list.Item, 0, len(coord.Formats))
	sel := 0
	for i, f := range coord.Formats {
		s, err := coord.FormatPoint(sampleAt, f)
		if err != nil {
			s = ""
		}
		items = append(items, notationItem{format: f, sample: s})
		if f == current {
			sel = i
		}
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Notation"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Select(sel)
	return l
}

func (m Model) pickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "n":
		m.showPicker = false
		return m, nil
	case "enter":
		if it, ok := m.picker.SelectedItem().(notationItem); ok {
			m.report(m.ctrl.OnNotationChanged(it.format), "notation: "+it.format.String())
		}
		m.showPicker = false
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}
