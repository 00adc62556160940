package tui

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoshape/internal/coord"
	"geoshape/internal/graphics"
	"geoshape/internal/shape"
)

func hasBraille(s string) bool {
	for _, r := range s {
		if r > 0x2800 && r <= 0x28FF {
			return true
		}
	}
	return false
}

func TestCanvas_CellRoundTrip(t *testing.T) {
	c := newCanvas(orb.Point{0, 0}, 360)
	c.resize(80, 20)

	lon, lat, ok := c.cellToLonLat(40, 10)
	require.True(t, ok)
	assert.InDelta(t, 2.25, lon, 1e-9)
	assert.InDelta(t, -4.5, lat, 1e-9)

	mx, my := c.screenXYMicro(orb.Point{lon, lat})
	assert.Equal(t, 40, mx/2)
	assert.Equal(t, 10, my/4)

	lon, lat, ok = c.cellToLonLat(0, 0)
	require.True(t, ok)
	assert.InDelta(t, -177.75, lon, 1e-9)
	assert.InDelta(t, 85.5, lat, 1e-9)

	_, _, ok = c.cellToLonLat(-1, 0)
	assert.False(t, ok)
	_, _, ok = c.cellToLonLat(80, 0)
	assert.False(t, ok)
}

func TestCanvas_ZoomAndPan(t *testing.T) {
	c := newCanvas(orb.Point{0, 0}, 0)
	c.resize(80, 20)
	assert.Equal(t, maxSpan, c.span)

	require.NoError(t, c.ZoomToExtent(orb.Bound{Min: orb.Point{10, 10}, Max: orb.Point{12, 11}}))
	assert.InDelta(t, 11, c.center.Lon(), 1e-9)
	assert.InDelta(t, 10.5, c.center.Lat(), 1e-9)
	assert.InDelta(t, 2.4, c.span, 1e-9)

	assert.Error(t, c.ZoomToExtent(orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{-1, -1}}))

	c.zoom(1e12)
	assert.Equal(t, minSpan, c.span)
	c.zoom(1e-12)
	assert.Equal(t, maxSpan, c.span)

	c.pan(0, 10)
	assert.Equal(t, 90.0, c.center.Lat())
}

func TestCanvas_Renderer(t *testing.T) {
	c := newCanvas(orb.Point{0, 0}, 40)
	c.resize(40, 10)

	_, err := c.AddGraphic(graphics.Geometry{Kind: graphics.KindLine}, graphics.StyleFinal, false)
	assert.Error(t, err)

	h, err := c.AddGraphic(graphics.Geometry{
		Kind:  graphics.KindLine,
		Paths: orb.MultiLineString{{{-10, 0}, {10, 0}}},
	}, graphics.StylePreview, true)
	require.NoError(t, err)
	out := c.render(nil)
	assert.True(t, hasBraille(out))
	assert.Len(t, strings.Split(out, "\n"), 10)

	require.NoError(t, c.RemoveGraphic(h))
	assert.False(t, hasBraille(c.render(nil)))
	assert.Error(t, c.RemoveGraphic(h))

	assert.Contains(t, c.render(&[2]int{3, 3}), "+")
}

func TestCanvas_FarSegmentsAreClipped(t *testing.T) {
	c := newCanvas(orb.Point{0, 0}, minSpan)
	c.resize(40, 10)
	_, err := c.AddGraphic(graphics.Geometry{
		Kind:  graphics.KindLine,
		Paths: orb.MultiLineString{{{-170, 0}, {170, 0}}, {{-170, 50}, {0, 50}, {170, 50}}},
	}, graphics.StyleFinal, false)
	require.NoError(t, err)
	out := c.render(nil)
	assert.False(t, hasBraille(out), "antimeridian jump and off-screen line draw nothing")
}

func TestClipSegment(t *testing.T) {
	ax, ay, bx, by, ok := clipSegment(-10, 5, 10, 5, 0, 0, 8, 8)
	require.True(t, ok)
	assert.InDelta(t, 0, ax, 1e-9)
	assert.InDelta(t, 5, ay, 1e-9)
	assert.InDelta(t, 8, bx, 1e-9)
	assert.InDelta(t, 5, by, 1e-9)

	_, _, _, _, ok = clipSegment(-5, -5, -1, -1, 0, 0, 8, 8)
	assert.False(t, ok)
}

func newModel(t *testing.T, o Options) Model {
	t.Helper()
	o.Logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	m, err := New(o)
	require.NoError(t, err)
	return send(m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func keys(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func TestModel_ClickTwiceCommitsLine(t *testing.T) {
	m := newModel(t, Options{})
	ox, oy, w, h := m.mapRect()
	assert.Equal(t, 83, w)
	assert.Equal(t, 37, h)

	m = send(m, click(ox+41, oy+18))
	require.Equal(t, 1, m.ctrl.Builder().Points().Count())
	p, _ := m.ctrl.Builder().Points().Get("P1")
	assert.InDelta(t, 0, p.Lat, 1e-9)
	assert.InDelta(t, 0, p.Lon, 1e-9)

	m = send(m, tea.MouseMsg{X: ox + 45, Y: oy + 18, Action: tea.MouseActionMotion})
	assert.True(t, m.ctrl.HasPreview())
	assert.True(t, m.hoverHasGeo)

	m = send(m, click(ox+51, oy+18))
	assert.Equal(t, 1, m.store.Len())
	assert.Contains(t, m.status, "committed Lines")
	assert.NotEmpty(t, m.View())
}

func TestModel_CoordinateEntry(t *testing.T) {
	m := newModel(t, Options{})
	m = send(m, keys("p"))
	require.True(t, m.entryMode)
	m = send(m, keys("34.0522 N 118.2437 W"))
	assert.Equal(t, "detected DD", m.status)
	m = send(m, enter)
	assert.False(t, m.entryMode)
	assert.Equal(t, 1, m.ctrl.Builder().Points().Count())

	m = send(m, keys("p"), keys("nowhere"), enter)
	assert.True(t, m.entryMode)
	assert.True(t, m.statusErr)
}

func TestModel_CircleFromForm(t *testing.T) {
	dir := t.TempDir()
	m := newModel(t, Options{ExportDir: dir, ExportFormat: "kml"})
	m = send(m, keys("2"))
	require.Equal(t, graphics.CircleTool, m.ctrl.Active())
	require.Len(t, m.form, 2)

	m = send(m, keys("f"))
	require.Equal(t, 0, m.focus)
	m = send(m, keys("34.0522 N 118.2437 W"), enter)
	require.Equal(t, 1, m.focus)
	m = send(m, keys("1000"), enter)
	assert.Equal(t, focusMap, m.focus)
	assert.Equal(t, "1000", m.form[1].input.Value())

	m = send(m, enter)
	assert.Equal(t, 1, m.store.Len())

	m = send(m, keys("e"))
	assert.Contains(t, m.status, "exported 1 shapes")
	matches, err := filepath.Glob(filepath.Join(dir, "*.kml"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	m = send(m, keys("a"))
	assert.True(t, m.showAttrs)
	assert.Len(t, m.tbl.Rows(), 1)
	m = send(m, keys("a"), keys("X"))
	assert.False(t, m.showAttrs)
	assert.Zero(t, m.store.Len())
}

func TestModel_RejectedFieldShowsError(t *testing.T) {
	m := newModel(t, Options{})
	m = send(m, keys("2"), keys("f"), enter, keys("-5"), enter)
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "invalid argument")
}

func TestModel_ModeUnitsAndNotation(t *testing.T) {
	m := newModel(t, Options{})
	m = send(m, keys("m"))
	assert.Equal(t, shape.ModeBearingDistance, m.ctrl.Builder().Mode())
	m = send(m, keys("u"), keys("b"))
	assert.NotEqual(t, m.ctrl.Builder().Units().Length.String(), "Meters")

	m = send(m, keys("n"))
	require.True(t, m.showPicker)
	m = send(m, tea.KeyMsg{Type: tea.KeyDown}, enter)
	assert.False(t, m.showPicker)
	assert.Equal(t, coord.DDM, m.ctrl.Notation())

	m = send(m, keys("t"))
	assert.True(t, m.statusErr)
	m = send(m, keys("2"), keys("t"))
	assert.False(t, m.statusErr)
	assert.Len(t, m.form, 4)
}

func TestModel_LoadsOverlay(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "roads.geojson")
	require.NoError(t, os.WriteFile(p, []byte(`{"type":"LineString","coordinates":[[5,5],[6,6]]}`), 0o644))

	m := newModel(t, Options{Overlay: p})
	require.NotNil(t, m.canvas.overlay)
	assert.Contains(t, m.status, "loaded: roads.geojson")
	assert.InDelta(t, 5.5, m.canvas.center.Lon(), 1e-9)

	m = newModel(t, Options{Overlay: filepath.Join(dir, "missing.kml")})
	assert.Nil(t, m.canvas.overlay)
	assert.True(t, m.statusErr)
}
