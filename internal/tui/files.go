package tui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"

	"geoshape/internal/geom"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

// refreshDir lists the overlay files in the working directory.
func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		m.statusErr = true
		return
	}
	var items []list.Item
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !geom.Supported(name) {
			continue
		}
		items = append(items, fileItem{title: name, desc: strings.ToLower(filepath.Ext(name)), path: filepath.Join(m.cwd, name)})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	m.files.SetItems(items)
	if len(items) == 0 {
		m.status = "no overlay files in current directory"
	}
}

// loadPath draws a file under the shapes and zooms to it.
func (m *Model) loadPath(p string) {
	o, err := geom.Load(p, m.codec)
	if err != nil {
		m.log.Warn("load overlay", "path", p, "error", err)
		m.status = "load error: " + err.Error()
		m.statusErr = true
		return
	}
	m.canvas.overlay = o
	_ = m.canvas.ZoomToExtent(o.Bound())
	m.log.Info("overlay loaded", "path", p, "points", len(o.Points), "lines", len(o.Lines), "polygons", len(o.Polygons))
	m.status = "loaded: " + o.Name + "  " + o.Summary()
	m.statusErr = false
}
