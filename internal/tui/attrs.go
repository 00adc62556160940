package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	table "github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"geoshape/internal/config"
	"geoshape/internal/geoerr"
	"geoshape/internal/geom"
)

// attrColumns are the geom.Columns shown in the table, with widths.
var attrColumns = []struct {
	name  string
	width int
}{
	{"tool", 11},
	{"kind", 7},
	{"label", 24},
	{"origin", 22},
	{"distance", 10},
	{"azimuth", 8},
	{"length_unit", 5},
	{"curve", 10},
	{"created", 20},
}

// refreshAttrs rebuilds the table from the committed shapes.
func (m *Model) refreshAttrs() {
	features := m.store.Features()
	if len(features) == 0 {
		m.showAttrs = false
		m.status = "no committed shapes"
		m.statusErr = false
		return
	}
	index := make(map[string]int, len(geom.Columns))
	for i, c := range geom.Columns {
		index[c] = i
	}

	cols := make([]table.Column, 0, len(attrColumns)+1)
	cols = append(cols, table.Column{Title: "#", Width: 4})
	for _, c := range attrColumns {
		cols = append(cols, table.Column{Title: c.name, Width: c.width})
	}
	rows := make([]table.Row, 0, len(features))
	for i, f := range features {
		vals := f.Values()
		row := table.Row{fmt.Sprintf("%d", i+1)}
		for _, c := range attrColumns {
			row = append(row, vals[index[c.name]])
		}
		rows = append(rows, row)
	}
	// clear rows first so they never disagree with the new columns
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(cols)
	m.tbl.SetRows(rows)
}

func (m Model) attrsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "a", "q":
		m.showAttrs = false
		return m, nil
	case "e":
		m.export()
		return m, nil
	case "E":
		m.exportFormat = nextExportFormat(m.exportFormat)
		m.status = "export format: " + m.exportFormat
		return m, nil
	}
	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

// export writes the committed shapes in the selected format.
func (m *Model) export() {
	features := m.store.Features()
	paths, err := geom.Export(m.exportDir, m.exportFormat, features, time.Now())
	if err != nil {
		m.statusErr = true
		if errors.Is(err, geoerr.ErrPreconditionNotMet) {
			m.status = "nothing to export"
			return
		}
		m.log.Error("export", "format", m.exportFormat, "dir", m.exportDir, "error", err)
		m.status = err.Error()
		return
	}
	m.log.Info("exported", "format", m.exportFormat, "features", len(features), "paths", paths)
	m.status = fmt.Sprintf("exported %d shapes to %s", len(features), strings.Join(paths, ", "))
	m.statusErr = false
}

func nextExportFormat(cur string) string {
	for i, f := range config.ExportFormats {
		if strings.EqualFold(f, cur) {
			return config.ExportFormats[(i+1)%len(config.ExportFormats)]
		}
	}
	return config.ExportFormats[0]
}
