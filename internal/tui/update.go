package tui

import (
	"fmt"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"geoshape/internal/coord"
	"geoshape/internal/geodesy"
	"geoshape/internal/graphics"
	"geoshape/internal/shape"
	"geoshape/internal/units"
)

// Layout constants shared by View and mouse hit testing.
const (
	headerHeight = 1
	footerHeight = 2
	sidebarWidth = formWidth
)

// mapRect returns the map's origin and size in screen cells.
func (m Model) mapRect() (x, y, w, h int) {
	contentHeight := max(4, m.height-headerHeight-footerHeight)
	if m.entryMode {
		contentHeight = max(4, contentHeight-1)
	}
	w = max(10, m.width-sidebarWidth-1)
	return sidebarWidth + 1, headerHeight, w, contentHeight
}

// report records the outcome of a controller call in the status line and
// refreshes the form.
func (m *Model) report(err error, ok string) {
	m.rebuildForm()
	if err != nil {
		m.status = err.Error()
		m.statusErr = true
		return
	}
	m.status = ok
	m.statusErr = false
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		_, _, w, h := m.mapRect()
		m.canvas.resize(w, h)
		m.files.SetSize(sidebarWidth-2, h-2)
		m.picker.SetSize(sidebarWidth-2, h-2)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.entryMode:
		return m.entryKey(msg)
	case m.showPicker:
		return m.pickerKey(msg)
	case m.showFiles:
		return m.filesKey(msg)
	case m.showAttrs:
		return m.attrsKey(msg)
	case m.focus != focusMap:
		return m.formKey(msg)
	}

	b := m.ctrl.Builder()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1", "2", "3", "4":
		t := graphics.Tools[int(msg.String()[0]-'1')]
		m.report(m.ctrl.OnTabActivated(t), t.String())
	case "tab", "shift+tab":
		step := 1
		if msg.String() == "shift+tab" {
			step = len(graphics.Tools) - 1
		}
		t := graphics.Tools[(int(m.ctrl.Active())+step)%len(graphics.Tools)]
		m.report(m.ctrl.OnTabActivated(t), t.String())
	case "f", "i":
		return m, m.moveFocus(1)
	case "m":
		modes := b.Modes()
		if len(modes) == 0 {
			m.report(nil, "no modes for "+b.Tool().String())
			break
		}
		next := modes[0]
		for i, md := range modes {
			if md == b.Mode() {
				next = modes[(i+1)%len(modes)]
			}
		}
		m.report(m.ctrl.OnModeChanged(next), "mode: "+next.String())
	case "u":
		u := units.NextLength(b.Units().Length)
		m.report(m.ctrl.OnUnitChanged(shape.UnitDistance, u), "distance unit: "+u.String())
	case "b":
		u := units.NextAngle(b.Units().Angle)
		m.report(m.ctrl.OnUnitChanged(shape.UnitAngle, u), "angle unit: "+u.String())
	case "r":
		u := units.NextLength(b.Units().Rate.Length)
		m.report(m.ctrl.OnUnitChanged(shape.UnitRateLength, u), "rate: "+u.Abbrev())
	case "R":
		u := units.NextTime(b.Units().Rate.Per)
		if u == units.Minutes {
			u = units.NextTime(u)
		}
		m.report(m.ctrl.OnUnitChanged(shape.UnitRatePer, u), "rate per: "+u.String())
	case "w":
		u := units.NextTime(b.Units().Time)
		m.report(m.ctrl.OnUnitChanged(shape.UnitTime, u), "time unit: "+u.String())
	case "t":
		on := false
		if tr, ok := b.(shape.Traveler); ok {
			on = !tr.Travel()
		}
		m.report(m.ctrl.OnTravelToggled(on), fmt.Sprintf("travel: %v", on))
	case "c":
		m.report(m.cycleCurve(), "line type: "+b.FieldText(shape.FieldLineType))
	case "enter":
		m.report(m.ctrl.OnEnterPressed(), b.State().String())
		if b.State() == shape.Committed {
			m.status = fmt.Sprintf("committed %s (%d stored)", b.Tool(), m.store.Len())
		}
	case "x", "esc":
		m.report(m.ctrl.OnClear(), "cleared")
	case "X":
		n := m.store.RemoveTool(m.ctrl.Active())
		m.report(m.ctrl.OnClearCommitted(), fmt.Sprintf("removed %d committed %s shapes", n, m.ctrl.Active()))
	case "p":
		m.entryMode = true
		m.entry.SetValue("")
		_, _, w, h := m.mapRect()
		m.canvas.resize(w, h)
		return m, m.entry.Focus()
	case "n":
		m.showPicker = true
		m.status = "pick a notation"
	case "o":
		m.showFiles = true
		m.refreshDir()
	case "a":
		m.showAttrs = true
		m.refreshAttrs()
	case "e":
		m.export()
	case "E":
		m.exportFormat = nextExportFormat(m.exportFormat)
		m.status = "export format: " + m.exportFormat
		m.statusErr = false
	case "z":
		if b, ok := m.canvas.extent(); ok {
			_ = m.canvas.ZoomToExtent(b)
			m.status = "zoomed to extent"
		}
	case "h":
		m.helpVisible = !m.helpVisible
	case "+", "=":
		m.canvas.zoom(1.5)
		m.status = fmt.Sprintf("span: %.4g°", m.canvas.span)
	case "-", "_":
		m.canvas.zoom(1 / 1.5)
		m.status = fmt.Sprintf("span: %.4g°", m.canvas.span)
	case "up":
		m.canvas.pan(0, 0.1)
	case "down":
		m.canvas.pan(0, -0.1)
	case "left":
		m.canvas.pan(-0.1, 0)
	case "right":
		m.canvas.pan(0.1, 0)
	}
	return m, nil
}

func (m *Model) cycleCurve() error {
	b := m.ctrl.Builder()
	if b.Tool() != graphics.LineTool {
		return fmt.Errorf("line type applies to %s only", graphics.LineTool)
	}
	cur, err := geodesy.ParseCurveType(b.FieldText(shape.FieldLineType))
	if err != nil {
		cur = geodesy.Geodesic
	}
	next := geodesy.CurveTypes[(int(cur)+1)%len(geodesy.CurveTypes)]
	return m.ctrl.OnFieldChanged(shape.FieldLineType, next.String())
}

func (m Model) formKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form[m.focus].input.Blur()
		m.focus = focusMap
		m.syncForm()
		return m, nil
	case "enter":
		m.applyField()
		return m, m.moveFocus(1)
	case "tab", "down":
		m.applyField()
		return m, m.moveFocus(1)
	case "shift+tab", "up":
		m.applyField()
		return m, m.moveFocus(-1)
	}
	var cmd tea.Cmd
	m.form[m.focus].input, cmd = m.form[m.focus].input.Update(msg)
	return m, cmd
}

func (m Model) entryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeEntry()
		m.status = "entry cancelled"
		return m, nil
	case "enter":
		text := m.entry.Value()
		f, err := m.ctrl.OnCoordinateEntered(text)
		if err != nil {
			m.report(err, "")
			return m, nil
		}
		m.report(nil, fmt.Sprintf("placed %s point", f))
		m.closeEntry()
		return m, nil
	}
	var cmd tea.Cmd
	m.entry, cmd = m.entry.Update(msg)
	if f := m.codec.Detect(m.entry.Value()); f != coord.Unknown {
		m.status = "detected " + f.String()
		m.statusErr = false
	}
	return m, cmd
}

func (m *Model) closeEntry() {
	m.entryMode = false
	m.entry.Blur()
	_, _, w, h := m.mapRect()
	m.canvas.resize(w, h)
}

func (m Model) filesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.files.FilterState() != list.Filtering {
		switch msg.String() {
		case "esc", "o":
			m.showFiles = false
			return m, nil
		case "enter":
			if it, ok := m.files.SelectedItem().(fileItem); ok {
				m.loadPath(it.path)
				m.showFiles = false
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.files, cmd = m.files.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	ox, oy, w, h := m.mapRect()
	cx, cy := msg.X-ox, msg.Y-oy
	if cx < 0 || cy < 0 || cx >= w || cy >= h || m.showAttrs {
		m.hovering = false
		return m, nil
	}
	m.hovering = true
	m.hoverCellX, m.hoverCellY = cx, cy
	lon, lat, ok := m.canvas.cellToLonLat(cx, cy)
	m.hoverHasGeo = ok
	m.hoverLon, m.hoverLat = lon, lat
	if !ok {
		return m, nil
	}
	p := coord.Point{Lat: lat, Lon: lon}

	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		before := m.store.Len()
		err := m.ctrl.OnMapPoint(p)
		status := "point " + m.formatHover()
		if m.store.Len() > before {
			status = fmt.Sprintf("committed %s (%d stored)", m.ctrl.Active(), m.store.Len())
		}
		m.report(err, status)
	case msg.Action == tea.MouseActionMotion:
		if err := m.ctrl.OnMapMove(p); err != nil {
			m.report(err, "")
		} else {
			m.syncForm()
		}
	}
	return m, nil
}

// formatHover renders the hover position in the display notation.
func (m Model) formatHover() string {
	p := coord.Point{Lat: m.hoverLat, Lon: m.hoverLon}
	s, err := m.codec.Format(p, m.ctrl.Notation())
	if err != nil {
		return p.String()
	}
	return s
}
