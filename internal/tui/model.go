// Package tui is the terminal host for the shape tools: a braille map,
// one tab per tool with its form fields, coordinate entry, a notation
// picker, the committed-shape table and overlay loading.
package tui

import (
	"log/slog"
	"os"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"geoshape/internal/coord"
	"geoshape/internal/feedback"
	"geoshape/internal/geom"
	"geoshape/internal/graphics"
	"geoshape/internal/shape"
	"geoshape/internal/units"
)

// Options configures the host.
type Options struct {
	Deps   shape.Deps
	Length units.LengthUnit
	Angle  units.AngleUnit
	// Initial viewport.
	Center orb.Point
	Span   float64

	ExportDir    string
	ExportFormat string
	// Overlay is a file drawn under the shapes at start, if set.
	Overlay string
	Logger  *slog.Logger
}

// focusMap means keys go to the map rather than a form field.
const focusMap = -1

type Model struct {
	width  int
	height int

	helpVisible bool
	status      string
	statusErr   bool

	ctrl   *feedback.Controller
	canvas *canvas
	store  *geom.Collection
	codec  *coord.Codec
	log    *slog.Logger

	exportDir    string
	exportFormat string

	// tool form
	form  []formField
	focus int

	// coordinate entry
	entryMode bool
	entry     textinput.Model

	// notation picker
	showPicker bool
	picker     list.Model

	// overlay file browser
	showFiles bool
	cwd       string
	files     list.Model

	// committed shapes
	showAttrs bool
	tbl       table.Model

	// hover state
	hovering    bool
	hoverCellX  int
	hoverCellY  int
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64
}

// New builds the host and its controller. The canvas is the controller's
// renderer and the collection its sink.
func New(o Options) (Model, error) {
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}
	cv := newCanvas(o.Center, o.Span)
	store := geom.NewCollection()
	ctrl, err := feedback.New(feedback.Options{
		Layer:  graphics.NewLayer(cv, graphics.NewLedger()),
		Sink:   store,
		Deps:   o.Deps,
		Logger: log,
		Length: o.Length,
		Angle:  o.Angle,
	})
	if err != nil {
		return Model{}, err
	}

	m := Model{
		helpVisible:  true,
		status:       "geoshape ready",
		ctrl:         ctrl,
		canvas:       cv,
		store:        store,
		codec:        ctrl.Codec(),
		log:          log,
		exportDir:    o.ExportDir,
		exportFormat: o.ExportFormat,
		focus:        focusMap,
	}
	if m.exportDir == "" {
		m.exportDir = "."
	}
	if m.exportFormat == "" {
		m.exportFormat = "geojson"
	}
	m.cwd, _ = os.Getwd()

	m.entry = textinput.New()
	m.entry.Placeholder = "coordinate in any notation, e.g. 34.0522 N 118.2437 W or 11SLT8564970180"
	m.entry.CharLimit = 64
	m.entry.Width = 60

	m.picker = newNotationPicker(ctrl.Notation())

	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.files = list.New(nil, d, 0, 0)
	m.files.Title = "Overlays"
	m.files.SetShowHelp(false)
	m.files.SetShowStatusBar(false)
	m.files.SetFilteringEnabled(true)

	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)

	m.rebuildForm()
	if o.Overlay != "" {
		m.loadPath(o.Overlay)
	}
	return m, nil
}

func (m Model) Init() tea.Cmd { return nil }
