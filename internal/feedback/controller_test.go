package feedback

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoshape/internal/coord"
	"geoshape/internal/geodesy"
	"geoshape/internal/geoerr"
	"geoshape/internal/graphics"
	"geoshape/internal/metrics"
	"geoshape/internal/shape"
	"geoshape/internal/units"
)

type mockRenderer struct {
	AddGraphicFn func(g graphics.Geometry, style graphics.Style, temporary bool) (graphics.Handle, error)
	n            int
	live         map[graphics.Handle]graphics.Style
	zooms        []orb.Bound
}

func newMockRenderer() *mockRenderer {
	return &mockRenderer{live: map[graphics.Handle]graphics.Style{}}
}

func (m *mockRenderer) AddGraphic(g graphics.Geometry, style graphics.Style, temporary bool) (graphics.Handle, error) {
	if m.AddGraphicFn != nil {
		return m.AddGraphicFn(g, style, temporary)
	}
	m.n++
	h := graphics.Handle(fmt.Sprintf("g%d", m.n))
	m.live[h] = style
	return h, nil
}

func (m *mockRenderer) RemoveGraphic(h graphics.Handle) error {
	delete(m.live, h)
	return nil
}

func (m *mockRenderer) ZoomToExtent(b orb.Bound) error {
	m.zooms = append(m.zooms, b)
	return nil
}

type mockSink struct {
	SaveAllFn func(reqs []shape.Request, geoms []graphics.Geometry) error
	saved     []shape.Request
	geoms     []graphics.Geometry
}

func (m *mockSink) SaveAll(reqs []shape.Request, geoms []graphics.Geometry) error {
	if m.SaveAllFn != nil {
		return m.SaveAllFn(reqs, geoms)
	}
	m.saved = append(m.saved, reqs...)
	m.geoms = append(m.geoms, geoms...)
	return nil
}

// failingEngine fails Circle while fail is set.
type failingEngine struct {
	geodesy.Engine
	fail bool
}

func (e *failingEngine) Circle(center coord.Point, radius float64, unit units.LengthUnit, segments int) (orb.Ring, error) {
	if e.fail {
		return nil, errors.New("engine unavailable")
	}
	return e.Engine.Circle(center, radius, unit, segments)
}

type fixture struct {
	c        *Controller
	renderer *mockRenderer
	sink     *mockSink
	ledger   *graphics.Ledger
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newFixtureWith(t, shape.Deps{})
}

func newFixtureWith(t *testing.T, deps shape.Deps) fixture {
	t.Helper()
	r := newMockRenderer()
	s := &mockSink{}
	l := graphics.NewLedger()
	c, err := New(Options{
		Layer:  graphics.NewLayer(r, l),
		Sink:   s,
		Deps:   deps,
		Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	})
	require.NoError(t, err)
	return fixture{c: c, renderer: r, sink: s, ledger: l}
}

func count(l *graphics.Ledger, tool graphics.Tool, temporary bool) int {
	n := 0
	for _, r := range l.Records(tool) {
		if r.Temporary == temporary {
			n++
		}
	}
	return n
}

func TestController_LineClickMoveClick(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.c.OnMapPoint(coord.Point{Lat: 0, Lon: 0}))
	assert.Zero(t, count(f.ledger, graphics.LineTool, true))

	for _, lon := range []float64{0.2, 0.4, 0.6} {
		require.NoError(t, f.c.OnMapMove(coord.Point{Lat: 0, Lon: lon}))
		assert.Equal(t, 1, count(f.ledger, graphics.LineTool, true))
	}
	assert.True(t, f.c.HasPreview())
	assert.Len(t, f.renderer.live, 1)

	require.NoError(t, f.c.OnMapPoint(coord.Point{Lat: 0, Lon: 1}))
	assert.Zero(t, count(f.ledger, graphics.LineTool, true))
	assert.Equal(t, 1, count(f.ledger, graphics.LineTool, false))
	require.Len(t, f.sink.saved, 1)
	assert.Equal(t, graphics.KindLine, f.sink.saved[0].Kind)
	require.Len(t, f.renderer.zooms, 1)
	assert.InDelta(t, 1, f.renderer.zooms[0].Max.Lon(), 1e-9)
	assert.Equal(t, shape.Committed, f.c.Builder().State())
}

func TestController_EnterOnIncompleteShapeIsSilent(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.c.OnEnterPressed())
	assert.Empty(t, f.renderer.live)
	assert.Empty(t, f.sink.saved)
}

func TestController_RejectedEditKeepsPreview(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.OnTabActivated(graphics.CircleTool))
	require.NoError(t, f.c.OnMapPoint(coord.Point{Lat: 45, Lon: 7}))
	require.NoError(t, f.c.OnFieldChanged(shape.FieldRadius, "1000"))
	require.Equal(t, 1, count(f.ledger, graphics.CircleTool, true))
	before := f.ledger.Records(graphics.CircleTool)[0].Handle

	err := f.c.OnFieldChanged(shape.FieldRadius, "-5")
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
	recs := f.ledger.Records(graphics.CircleTool)
	require.Len(t, recs, 1)
	assert.Equal(t, before, recs[0].Handle)
	assert.Equal(t, "1000", f.c.Builder().FieldText(shape.FieldRadius))
}

func TestController_TabSwitchClearsWithoutReissue(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.OnMapPoint(coord.Point{}))
	require.NoError(t, f.c.OnMapMove(coord.Point{Lat: 1, Lon: 1}))
	require.Equal(t, 1, count(f.ledger, graphics.LineTool, true))

	require.NoError(t, f.c.OnTabActivated(graphics.EllipseTool))
	assert.Zero(t, count(f.ledger, graphics.LineTool, true))
	assert.Zero(t, count(f.ledger, graphics.EllipseTool, true))
	assert.Empty(t, f.renderer.live)
	assert.Equal(t, graphics.EllipseTool, f.c.Active())
	assert.Zero(t, f.c.BuilderFor(graphics.LineTool).Points().Count())
}

func TestController_RangeRingsCommit(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.OnTabActivated(graphics.RangeRingsTool))
	require.NoError(t, f.c.OnFieldChanged(shape.FieldRingCount, "3"))
	require.NoError(t, f.c.OnFieldChanged(shape.FieldInterval, "500"))
	require.NoError(t, f.c.OnFieldChanged(shape.FieldRadialCount, "2"))

	require.NoError(t, f.c.OnMapPoint(coord.Point{Lat: 10, Lon: 10}))
	assert.Equal(t, 5, count(f.ledger, graphics.RangeRingsTool, false))
	assert.Zero(t, count(f.ledger, graphics.RangeRingsTool, true))
	assert.Len(t, f.sink.saved, 5)
}

func TestController_CoordinateEntry(t *testing.T) {
	f := newFixture(t)
	format, err := f.c.OnCoordinateEntered("34.0522 N 118.2437 W")
	require.NoError(t, err)
	assert.Equal(t, coord.DD, format)
	p, ok := f.c.Builder().Points().Get("P1")
	require.True(t, ok)
	assert.InDelta(t, -118.2437, p.Lon, 1e-9)

	_, err = f.c.OnCoordinateEntered("not a place")
	assert.ErrorIs(t, err, geoerr.ErrInvalidCoordinate)
}

func TestController_TravelOnlyOnCircle(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.c.OnTravelToggled(true), geoerr.ErrInvalidArgument)
	require.NoError(t, f.c.OnTabActivated(graphics.CircleTool))
	assert.NoError(t, f.c.OnTravelToggled(true))
	assert.NoError(t, f.c.OnUnitChanged(shape.UnitTime, units.Hours))
	assert.ErrorIs(t, f.c.OnModeChanged(shape.ModeFixed), geoerr.ErrInvalidArgument)
}

func TestController_SinkFailureSurfaces(t *testing.T) {
	f := newFixture(t)
	f.sink.SaveAllFn = func([]shape.Request, []graphics.Geometry) error { return errors.New("disk full") }
	require.NoError(t, f.c.OnMapPoint(coord.Point{}))
	err := f.c.OnMapPoint(coord.Point{Lat: 1, Lon: 1})
	assert.ErrorContains(t, err, "disk full")

	assert.False(t, f.ledger.HasAnyPermanent(graphics.LineTool))
	assert.Empty(t, f.renderer.live)
	assert.Equal(t, shape.Ready, f.c.Builder().State())
	assert.Equal(t, 2, f.c.Builder().Points().Count())
}

func TestController_SamePointTwiceKeepsStart(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.OnMapPoint(coord.Point{Lat: 10, Lon: 10}))
	start := f.c.Builder().FieldText(shape.FieldStart)

	err := f.c.OnMapPoint(coord.Point{Lat: 10, Lon: 10})
	assert.ErrorIs(t, err, geoerr.ErrDegenerateGeometry)
	assert.Equal(t, shape.Collecting, f.c.Builder().State())
	assert.Equal(t, start, f.c.Builder().FieldText(shape.FieldStart))
	assert.Empty(t, f.sink.saved)
	assert.False(t, f.ledger.HasAnyPermanent(graphics.LineTool))

	require.NoError(t, f.c.OnMapPoint(coord.Point{Lat: 10, Lon: 11}))
	assert.Len(t, f.sink.saved, 1)
}

func TestController_EngineFailureKeepsInput(t *testing.T) {
	engine := &failingEngine{Engine: geodesy.NewSpherical(36)}
	f := newFixtureWith(t, shape.Deps{Engine: engine})
	require.NoError(t, f.c.OnTabActivated(graphics.CircleTool))
	require.NoError(t, f.c.OnMapPoint(coord.Point{Lat: 45, Lon: 7}))
	require.NoError(t, f.c.OnFieldChanged(shape.FieldRadius, "1000"))
	require.True(t, f.c.HasPreview())

	engine.fail = true
	assert.ErrorContains(t, f.c.OnEnterPressed(), "engine unavailable")
	b := f.c.Builder()
	assert.True(t, b.CanCreate())
	assert.Equal(t, shape.Ready, b.State())
	assert.Equal(t, "1000", b.FieldText(shape.FieldRadius))
	assert.Empty(t, f.sink.saved)
	assert.False(t, f.ledger.HasAnyPermanent(graphics.CircleTool))
	assert.Equal(t, 1, count(f.ledger, graphics.CircleTool, true))

	engine.fail = false
	require.NoError(t, f.c.OnEnterPressed())
	assert.Len(t, f.sink.saved, 1)
	assert.Equal(t, shape.Committed, f.c.Builder().State())
}

func TestController_DrawFailureRemovesPartialCommit(t *testing.T) {
	f := newFixture(t)
	calls := 0
	f.renderer.AddGraphicFn = func(g graphics.Geometry, style graphics.Style, temporary bool) (graphics.Handle, error) {
		calls++
		if calls == 3 {
			return "", errors.New("renderer gone")
		}
		f.renderer.n++
		h := graphics.Handle(fmt.Sprintf("g%d", f.renderer.n))
		f.renderer.live[h] = style
		return h, nil
	}
	require.NoError(t, f.c.OnTabActivated(graphics.RangeRingsTool))
	require.NoError(t, f.c.OnFieldChanged(shape.FieldRingCount, "3"))
	require.NoError(t, f.c.OnFieldChanged(shape.FieldInterval, "500"))
	require.NoError(t, f.c.OnFieldChanged(shape.FieldRadialCount, "2"))

	err := f.c.OnMapPoint(coord.Point{Lat: 10, Lon: 10})
	assert.ErrorContains(t, err, "renderer gone")
	assert.Empty(t, f.renderer.live)
	assert.Zero(t, count(f.ledger, graphics.RangeRingsTool, false))
	assert.Empty(t, f.sink.saved)
	assert.True(t, f.c.Builder().CanCreate())
}

func TestController_EmptyInteractiveRingsCommitIsNoop(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.OnTabActivated(graphics.RangeRingsTool))
	require.NoError(t, f.c.OnModeChanged(shape.ModeInteractive))
	require.NoError(t, f.c.OnMapPoint(coord.Point{Lat: 1, Lon: 1}))

	before := testutil.ToFloat64(metrics.Commits.WithLabelValues(graphics.RangeRingsTool.String()))
	require.NoError(t, f.c.OnEnterPressed())
	assert.Equal(t, before, testutil.ToFloat64(metrics.Commits.WithLabelValues(graphics.RangeRingsTool.String())))
	assert.Empty(t, f.sink.saved)
	assert.Equal(t, 1, f.c.Builder().Points().Count())
}

func TestController_LoxodromeBearingLine(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.OnModeChanged(shape.ModeBearingDistance))
	require.NoError(t, f.c.OnFieldChanged(shape.FieldLineType, "Loxodrome"))
	require.NoError(t, f.c.OnMapPoint(coord.Point{Lat: 40, Lon: -70}))
	require.NoError(t, f.c.OnFieldChanged(shape.FieldDistance, "5000000"))
	require.NoError(t, f.c.OnFieldChanged(shape.FieldAzimuth, "45"))
	require.NoError(t, f.c.OnEnterPressed())

	require.Len(t, f.sink.geoms, 1)
	path := f.sink.geoms[0].Paths[0]
	e := geodesy.NewSpherical(0)
	m, err := e.Length(path, geodesy.Loxodrome, units.Meters)
	require.NoError(t, err)
	assert.InDelta(t, 5000000, m, 1)

	want, err := e.Project(coord.Point{Lat: 40, Lon: -70}, 45, 5000000, units.Meters, geodesy.Loxodrome)
	require.NoError(t, err)
	assert.InDelta(t, want.Lat, path[len(path)-1].Lat(), 1e-9)
	assert.InDelta(t, want.Lon, path[len(path)-1].Lon(), 1e-9)
}

func TestController_ClearCommitted(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.OnMapPoint(coord.Point{}))
	require.NoError(t, f.c.OnMapPoint(coord.Point{Lat: 1, Lon: 1}))
	require.True(t, f.ledger.HasAnyPermanent(graphics.LineTool))
	require.NoError(t, f.c.OnClearCommitted())
	assert.False(t, f.ledger.HasAnyPermanent(graphics.LineTool))
}

func TestRealize_RingSet(t *testing.T) {
	e := geodesy.NewSpherical(36)
	g, err := Realize(e, shape.Request{
		Kind:    graphics.KindRingSet,
		Points:  []coord.Point{{Lat: 5, Lon: 5}},
		Radii:   []float64{1000, 2000},
		Radials: 4,
	})
	require.NoError(t, err)
	assert.Len(t, g.Paths, 6)

	_, err = Realize(e, shape.Request{Kind: graphics.KindCircle, Points: []coord.Point{{}}})
	assert.ErrorIs(t, err, geoerr.ErrDegenerateGeometry)

	_, err = Realize(e, shape.Request{Kind: graphics.KindLine})
	assert.Error(t, err)
}

func TestNew_RequiresLayer(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestController_NotationChange(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.c.OnMapPoint(coord.Point{Lat: -0.5, Lon: 0}))
	assert.Equal(t, coord.DD, f.c.Notation())

	require.NoError(t, f.c.OnNotationChanged(coord.GARS))
	assert.Equal(t, coord.GARS, f.c.Notation())
	assert.Regexp(t, `^361H`, f.c.Builder().FieldText(shape.FieldStart))
	assert.ErrorIs(t, f.c.OnNotationChanged(coord.Unknown), geoerr.ErrInvalidArgument)
}
