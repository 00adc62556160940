package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"geoshape/internal/graphics"
	"geoshape/internal/shape"
)

const formWidth = 36

type formField struct {
	field shape.Field
	input textinput.Model
}

// rebuildForm recreates the inputs when the active builder's field list
// changed, then refreshes their text.
func (m *Model) rebuildForm() {
	b := m.ctrl.Builder()
	fields := b.Fields()
	same := len(fields) == len(m.form)
	for i := 0; same && i < len(fields); i++ {
		same = m.form[i].field == fields[i]
	}
	if !same {
		m.form = make([]formField, len(fields))
		for i, f := range fields {
			in := textinput.New()
			in.Prompt = ""
			in.CharLimit = 80
			in.Width = formWidth - 16
			m.form[i] = formField{field: f, input: in}
		}
		m.focus = focusMap
	}
	m.syncForm()
}

// syncForm copies the builder's field text into every input except the
// one being edited.
func (m *Model) syncForm() {
	b := m.ctrl.Builder()
	for i := range m.form {
		if i == m.focus {
			continue
		}
		m.form[i].input.SetValue(b.FieldText(m.form[i].field))
	}
}

// moveFocus steps through editable fields; stepping past either end
// returns focus to the map.
func (m *Model) moveFocus(step int) tea.Cmd {
	b := m.ctrl.Builder()
	if m.focus >= 0 && m.focus < len(m.form) {
		m.form[m.focus].input.Blur()
	}
	i := m.focus
	for {
		if i == focusMap {
			if step > 0 {
				i = 0
			} else {
				i = len(m.form) - 1
			}
		} else {
			i += step
		}
		if i < 0 || i >= len(m.form) {
			m.focus = focusMap
			m.syncForm()
			return nil
		}
		if !b.ReadOnly(m.form[i].field) {
			break
		}
	}
	m.focus = i
	m.syncForm()
	return m.form[i].input.Focus()
}

// applyField sends the focused input to the controller.
func (m *Model) applyField() {
	if m.focus < 0 || m.focus >= len(m.form) {
		return
	}
	ff := m.form[m.focus]
	m.report(m.ctrl.OnFieldChanged(ff.field, ff.input.Value()), fmt.Sprintf("%s set", ff.field))
}

func (m Model) fieldUnit(f shape.Field) string {
	u := m.ctrl.Builder().Units()
	switch f {
	case shape.FieldDistance, shape.FieldRadius, shape.FieldMajor, shape.FieldMinor,
		shape.FieldInterval, shape.FieldIntervals:
		return u.Length.Abbrev()
	case shape.FieldAzimuth, shape.FieldOrientation:
		return u.Angle.Abbrev()
	case shape.FieldTravelRate:
		return u.Rate.String()
	case shape.FieldTravelTime:
		return u.Time.Abbrev()
	}
	return ""
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(graphics.Tools))
	for i, t := range graphics.Tools {
		label := fmt.Sprintf("%d %s", i+1, t)
		if t == m.ctrl.Active() {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderForm(height int) string {
	b := m.ctrl.Builder()
	var rows []string
	head := b.Tool().String()
	if modes := b.Modes(); len(modes) > 0 {
		head += " · " + b.Mode().String()
	}
	if tr, ok := b.(shape.Traveler); ok && tr.Travel() {
		head += " · travel"
	}
	rows = append(rows, titleStyle.Render(head), "")

	for i, ff := range m.form {
		label := labelStyle.Render(ff.field.String())
		if i == m.focus {
			label = focusStyle.Render(ff.field.String())
		}
		val := ff.input.View()
		if b.ReadOnly(ff.field) {
			val = dimStyle.Render(truncate(ff.input.Value(), formWidth-16))
		}
		rows = append(rows, label+val+" "+dimStyle.Render(m.fieldUnit(ff.field)))
	}

	u := b.Units()
	rows = append(rows, "",
		dimStyle.Render(fmt.Sprintf("units %s %s", u.Length.Abbrev(), u.Angle.Abbrev())),
	)
	if _, ok := b.(shape.Traveler); ok {
		rows = append(rows, dimStyle.Render(fmt.Sprintf("rate %s  time %s", u.Rate, u.Time.Abbrev())))
	}
	rows = append(rows,
		dimStyle.Render(fmt.Sprintf("notation %s", m.ctrl.Notation())),
		dimStyle.Render(fmt.Sprintf("state %s", b.State())),
	)
	if n := m.store.Len(); n > 0 {
		rows = append(rows, dimStyle.Render(fmt.Sprintf("committed %d", n)))
	}
	body := strings.Join(rows, "\n")
	return boxStyle.Width(formWidth - 2).Height(max(1, height-2)).Render(body)
}
