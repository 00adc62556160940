package shape

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoshape/internal/coord"
	"geoshape/internal/geodesy"
	"geoshape/internal/geoerr"
	"geoshape/internal/graphics"
	"geoshape/internal/units"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testDeps() Deps {
	return Deps{Now: func() time.Time { return fixedNow }}
}

// stubEngine answers Project with a canned point and defers the rest.
type stubEngine struct {
	geodesy.Engine
	projected coord.Point
	calls     int
}

func (s *stubEngine) Project(coord.Point, float64, float64, units.LengthUnit, geodesy.CurveType) (coord.Point, error) {
	s.calls++
	return s.projected, nil
}

func TestLine_PointsMode(t *testing.T) {
	l := NewLine(testDeps())
	assert.Equal(t, Idle, l.State())

	done, err := l.AddPoint(coord.Point{Lat: 0, Lon: 0})
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, Collecting, l.State())

	done, err = l.AddPoint(coord.Point{Lat: 0, Lon: 1})
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, Ready, l.State())

	d, ok := l.Value(FieldDistance)
	require.True(t, ok)
	assert.InDelta(t, 111319.5, d, 1)
	az, _ := l.Value(FieldAzimuth)
	assert.InDelta(t, 90, az, 1e-6)

	assert.True(t, l.ReadOnly(FieldDistance))
	assert.ErrorIs(t, l.SetField(FieldDistance, "5"), geoerr.ErrInvalidArgument)

	reqs, err := l.Commit()
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, graphics.KindLine, reqs[0].Kind)
	assert.True(t, reqs[0].Final)
	assert.Equal(t, "line", reqs[0].Attrs.Kind)
	assert.Equal(t, fixedNow, reqs[0].Attrs.Created)
	assert.Equal(t, Ready, l.State())
	assert.Equal(t, 2, l.Points().Count())

	l.Finish()
	assert.Equal(t, Committed, l.State())
	assert.Zero(t, l.Points().Count())
}

func TestLine_RejectsEndOnStart(t *testing.T) {
	l := NewLine(testDeps())
	_, err := l.AddPoint(coord.Point{Lat: 10, Lon: 10})
	require.NoError(t, err)

	done, err := l.AddPoint(coord.Point{Lat: 10, Lon: 10})
	assert.ErrorIs(t, err, geoerr.ErrDegenerateGeometry)
	assert.False(t, done)
	assert.False(t, l.CanCreate())
	assert.Equal(t, 1, l.Points().Count())

	assert.ErrorIs(t, l.SetField(FieldEnd, "10 10"), geoerr.ErrDegenerateGeometry)
	assert.False(t, l.Points().Has("P2"))
}

func TestLine_BearingDistanceFollowsLineType(t *testing.T) {
	l := NewLine(testDeps())
	require.NoError(t, l.SetMode(ModeBearingDistance))
	require.NoError(t, l.SetField(FieldLineType, "Loxodrome"))
	require.NoError(t, l.SetField(FieldStart, "40 -70"))
	require.NoError(t, l.SetField(FieldDistance, "5000000"))
	require.NoError(t, l.SetField(FieldAzimuth, "45"))

	start, ok := l.Points().Get("P1")
	require.True(t, ok)
	want, err := geodesy.NewSpherical(0).Project(start, 45, 5000000, units.Meters, geodesy.Loxodrome)
	require.NoError(t, err)

	reqs, err := l.Commit()
	require.NoError(t, err)
	assert.Equal(t, geodesy.Loxodrome, reqs[0].Curve)
	assert.Equal(t, want, reqs[0].Points[1])
}

func TestLine_BearingDistanceProjectsEnd(t *testing.T) {
	l := NewLine(testDeps())
	require.NoError(t, l.SetMode(ModeBearingDistance))
	require.NoError(t, l.SetUnit(UnitDistance, units.Kilometers))
	_, err := l.AddPoint(coord.Point{})
	require.NoError(t, err)
	require.NoError(t, l.SetField(FieldDistance, "100"))
	assert.False(t, l.CanCreate())
	require.NoError(t, l.SetField(FieldAzimuth, "90"))
	assert.True(t, l.CanCreate())

	req, ok := l.Preview()
	require.True(t, ok)
	require.Len(t, req.Points, 2)
	assert.InDelta(t, 0, req.Points[1].Lat, 1e-9)
	assert.InDelta(t, 0.8983, req.Points[1].Lon, 1e-4)

	reqs, err := l.Commit()
	require.NoError(t, err)
	assert.InDelta(t, 100000, reqs[0].Distance, 1e-6)
	assert.Equal(t, "100 km @ 90°", reqs[0].Attrs.Label)
}

func TestLine_BearingDistanceUsesEngine(t *testing.T) {
	stub := &stubEngine{Engine: geodesy.NewSpherical(0), projected: coord.Point{Lat: 0, Lon: 0.8983}}
	d := testDeps()
	d.Engine = stub
	l := NewLine(d)
	require.NoError(t, l.SetMode(ModeBearingDistance))
	require.NoError(t, l.SetField(FieldStart, "0 0"))
	require.NoError(t, l.SetField(FieldDistance, "100000"))
	require.NoError(t, l.SetField(FieldAzimuth, "90"))

	assert.Positive(t, stub.calls)
	assert.Equal(t, l.formatPoint(stub.projected), l.FieldText(FieldEnd))
	assert.True(t, l.ReadOnly(FieldEnd))
}

func TestLine_Validation(t *testing.T) {
	l := NewLine(testDeps())
	require.NoError(t, l.SetMode(ModeBearingDistance))
	require.NoError(t, l.SetField(FieldAzimuth, "45"))

	assert.ErrorIs(t, l.SetField(FieldDistance, "-1"), geoerr.ErrInvalidArgument)
	assert.ErrorIs(t, l.SetField(FieldAzimuth, "361"), geoerr.ErrInvalidArgument)
	assert.ErrorIs(t, l.SetField(FieldAzimuth, "abc"), geoerr.ErrInvalidArgument)
	assert.NoError(t, l.SetField(FieldAzimuth, "360"))

	require.NoError(t, l.SetUnit(UnitAngle, units.Mils))
	assert.NoError(t, l.SetField(FieldAzimuth, "6400"))
	assert.ErrorIs(t, l.SetField(FieldAzimuth, "6401"), geoerr.ErrInvalidArgument)

	err := l.SetField(FieldDistance, "20000001")
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
	assert.ErrorIs(t, err, geoerr.ErrDegenerateGeometry)

	_, err = l.Commit()
	assert.ErrorIs(t, err, geoerr.ErrPreconditionNotMet)
}

func TestLine_UnitSwitchKeepsValue(t *testing.T) {
	l := NewLine(testDeps())
	require.NoError(t, l.SetMode(ModeBearingDistance))
	require.NoError(t, l.SetField(FieldDistance, "1500"))
	require.NoError(t, l.SetField(FieldAzimuth, "90"))

	for _, u := range []units.LengthUnit{units.Feet, units.Miles, units.NauticalMiles, units.Meters} {
		require.NoError(t, l.SetUnit(UnitDistance, u))
	}
	assert.Equal(t, "1500", l.FieldText(FieldDistance))

	require.NoError(t, l.SetUnit(UnitAngle, units.Mils))
	assert.Equal(t, "1600", l.FieldText(FieldAzimuth))
	require.NoError(t, l.SetUnit(UnitAngle, units.Degrees))
	assert.Equal(t, "90", l.FieldText(FieldAzimuth))

	assert.ErrorIs(t, l.SetUnit(UnitTime, units.Hours), geoerr.ErrInvalidArgument)
}

func TestCircle_TravelRadius(t *testing.T) {
	const want = 120000.0
	cases := []struct {
		name string
		rate units.Rate
		time units.TimeUnit
	}{
		{"km/h and hours", units.Rate{Length: units.Kilometers, Per: units.Hours}, units.Hours},
		{"mi/h and minutes", units.Rate{Length: units.Miles, Per: units.Hours}, units.Minutes},
		{"m/s and hours", units.Rate{Length: units.Meters, Per: units.Seconds}, units.Hours},
		{"nmi/h and seconds", units.Rate{Length: units.NauticalMiles, Per: units.Hours}, units.Seconds},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewCircle(testDeps())
			require.NoError(t, c.SetTravel(true))
			require.NoError(t, c.SetUnit(UnitRateLength, tc.rate.Length))
			require.NoError(t, c.SetUnit(UnitRatePer, tc.rate.Per))
			require.NoError(t, c.SetUnit(UnitTime, tc.time))

			rate, err := tc.rate.FromMetersPerSecond(60000.0 / 3600)
			require.NoError(t, err)
			tm, err := units.ConvertTime(2, units.Hours, tc.time)
			require.NoError(t, err)

			require.NoError(t, c.SetField(FieldTravelRate, strconv.FormatFloat(rate, 'g', -1, 64)))
			require.NoError(t, c.SetField(FieldTravelTime, strconv.FormatFloat(tm, 'g', -1, 64)))

			r, ok := c.Value(FieldRadius)
			require.True(t, ok)
			assert.InDelta(t, want, r, 1e-6)
			assert.True(t, c.ReadOnly(FieldRadius))
		})
	}
}

func TestCircle_RejectsPerMinuteRate(t *testing.T) {
	c := NewCircle(testDeps())
	assert.ErrorIs(t, c.SetUnit(UnitRatePer, units.Minutes), geoerr.ErrInvalidArgument)
	assert.Equal(t, units.Hours, c.Units().Rate.Per)
}

func TestCircle_DiameterToggle(t *testing.T) {
	c := NewCircle(testDeps())
	require.NoError(t, c.SetUnit(UnitDistance, units.Kilometers))
	require.NoError(t, c.SetField(FieldRadius, "12.345678"))
	before := c.FieldText(FieldRadius)

	require.NoError(t, c.SetMode(ModeDiameter))
	assert.Equal(t, "24.691356", c.FieldText(FieldRadius))
	require.NoError(t, c.SetMode(ModeRadius))
	assert.Equal(t, before, c.FieldText(FieldRadius))

	require.NoError(t, c.SetMode(ModeDiameter))
	require.NoError(t, c.SetField(FieldRadius, "10"))
	require.NoError(t, c.SetMode(ModeRadius))
	assert.Equal(t, "5", c.FieldText(FieldRadius))
}

func TestCircle_CeilingLeavesStateIntact(t *testing.T) {
	c := NewCircle(testDeps())
	require.NoError(t, c.SetField(FieldRadius, "5000"))
	err := c.SetField(FieldRadius, "20000001")
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
	assert.ErrorIs(t, err, geoerr.ErrDegenerateGeometry)
	assert.Equal(t, "5000", c.FieldText(FieldRadius))

	require.NoError(t, c.SetTravel(true))
	require.NoError(t, c.SetField(FieldTravelRate, "100"))
	require.NoError(t, c.SetField(FieldTravelTime, "60"))
	assert.Equal(t, "100000", c.FieldText(FieldRadius))

	assert.Error(t, c.SetField(FieldTravelTime, "1000000"))
	assert.Equal(t, "60", c.FieldText(FieldTravelTime))
	assert.Equal(t, "100000", c.FieldText(FieldRadius))
}

func TestCircle_ClickSetsRadiusAndCommits(t *testing.T) {
	c := NewCircle(testDeps())
	done, err := c.AddPoint(coord.Point{Lat: 0, Lon: 0})
	require.NoError(t, err)
	assert.False(t, done)

	c.MovePoint(coord.Point{Lat: 0, Lon: 0.5})
	req, ok := c.Preview()
	require.True(t, ok)
	assert.InDelta(t, 55659.7, req.Distance, 1)

	done, err = c.AddPoint(coord.Point{Lat: 0, Lon: 1})
	require.NoError(t, err)
	assert.True(t, done)

	reqs, err := c.Commit()
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, graphics.KindCircle, reqs[0].Kind)
	assert.InDelta(t, 111319.5, reqs[0].Distance, 1)
	assert.Equal(t, Ready, c.State())
	c.Finish()
	assert.Equal(t, Committed, c.State())
}

func TestCircle_RejectedEditKeepsCommittedState(t *testing.T) {
	c := NewCircle(testDeps())
	require.NoError(t, c.SetField(FieldCenter, "1 1"))
	require.NoError(t, c.SetField(FieldRadius, "500"))
	_, err := c.Commit()
	require.NoError(t, err)
	c.Finish()
	require.Equal(t, Committed, c.State())

	assert.ErrorIs(t, c.SetField(FieldRadius, "-5"), geoerr.ErrInvalidArgument)
	assert.Equal(t, Committed, c.State())
	assert.ErrorIs(t, c.SetField(FieldCenter, "nowhere"), geoerr.ErrInvalidCoordinate)
	assert.Equal(t, Committed, c.State())

	require.NoError(t, c.SetField(FieldRadius, "10"))
	assert.Equal(t, Collecting, c.State())
}

func TestEllipse_MinorNotAboveMajor(t *testing.T) {
	e := NewEllipse(testDeps())
	require.NoError(t, e.SetField(FieldMajor, "1000"))
	err := e.SetField(FieldMinor, "2000")
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
	_, ok := e.Value(FieldMinor)
	assert.False(t, ok)
	assert.Equal(t, "1000", e.FieldText(FieldMajor))

	require.NoError(t, e.SetField(FieldMinor, "400"))
	assert.ErrorIs(t, e.SetField(FieldMajor, "300"), geoerr.ErrInvalidArgument)
	assert.Equal(t, "1000", e.FieldText(FieldMajor))
}

func TestEllipse_BuildAndCommit(t *testing.T) {
	e := NewEllipse(testDeps())
	_, err := e.Commit()
	assert.ErrorIs(t, err, geoerr.ErrPreconditionNotMet)

	_, err = e.AddPoint(coord.Point{Lat: 10, Lon: 10})
	require.NoError(t, err)
	require.NoError(t, e.SetField(FieldMajor, "2000"))

	req, ok := e.Preview()
	require.True(t, ok)
	assert.Equal(t, req.Distance, req.Minor)

	require.NoError(t, e.SetField(FieldMinor, "1000"))
	require.NoError(t, e.SetUnit(UnitAngle, units.Mils))
	require.NoError(t, e.SetField(FieldOrientation, "800"))
	assert.True(t, e.CanCreate())

	reqs, err := e.Commit()
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, 2000.0, reqs[0].Distance)
	assert.Equal(t, 1000.0, reqs[0].Minor)
	assert.InDelta(t, 45, reqs[0].Azimuth, 1e-9)
}

func TestRangeRings_FixedCommitsRingsAndRadials(t *testing.T) {
	r := NewRangeRings(testDeps())
	require.NoError(t, r.SetField(FieldRingCount, "3"))
	require.NoError(t, r.SetField(FieldInterval, "1000"))
	require.NoError(t, r.SetField(FieldRadialCount, "4"))

	done, err := r.AddPoint(coord.Point{Lat: 1, Lon: 1})
	require.NoError(t, err)
	assert.True(t, done)

	preview, ok := r.Preview()
	require.True(t, ok)
	assert.Equal(t, graphics.KindRingSet, preview.Kind)

	reqs, err := r.Commit()
	require.NoError(t, err)
	require.Len(t, reqs, 7)

	var rings, radials []Request
	for _, q := range reqs {
		switch q.Kind {
		case graphics.KindRing:
			rings = append(rings, q)
		case graphics.KindRadial:
			radials = append(radials, q)
		}
	}
	require.Len(t, rings, 3)
	require.Len(t, radials, 4)
	for i, q := range rings {
		assert.Equal(t, float64(i+1)*1000, q.Distance)
	}
	for i, q := range radials {
		assert.Equal(t, float64(i)*90, q.Azimuth)
		assert.Equal(t, 3000.0, q.Distance)
	}
}

func TestRangeRings_Bounds(t *testing.T) {
	r := NewRangeRings(testDeps())
	assert.ErrorIs(t, r.SetField(FieldRingCount, "0"), geoerr.ErrInvalidArgument)
	assert.ErrorIs(t, r.SetField(FieldRingCount, "181"), geoerr.ErrInvalidArgument)
	assert.ErrorIs(t, r.SetField(FieldRadialCount, "181"), geoerr.ErrInvalidArgument)
	assert.NoError(t, r.SetField(FieldRadialCount, "0"))
	assert.NoError(t, r.SetField(FieldRingCount, "180"))

	err := r.SetField(FieldInterval, "200000")
	assert.ErrorIs(t, err, geoerr.ErrDegenerateGeometry)
	_, ok := r.Value(FieldInterval)
	assert.False(t, ok)
}

func TestRangeRings_Cumulative(t *testing.T) {
	r := NewRangeRings(testDeps())
	require.NoError(t, r.SetMode(ModeCumulative))
	require.NoError(t, r.SetField(FieldCenter, "0 0"))
	assert.False(t, r.CanCreate())

	require.NoError(t, r.SetField(FieldIntervals, "10, 20, 15"))
	assert.Equal(t, []float64{10, 30, 45}, r.Radii())
	assert.Equal(t, "10, 20, 15", r.FieldText(FieldIntervals))

	reqs, err := r.Commit()
	require.NoError(t, err)
	var got []float64
	for _, q := range reqs {
		got = append(got, q.Distance)
	}
	assert.Equal(t, []float64{10, 30, 45}, got)
}

func TestRangeRings_OriginAndRejectedList(t *testing.T) {
	r := NewRangeRings(testDeps())
	require.NoError(t, r.SetMode(ModeOrigin))
	require.NoError(t, r.SetField(FieldIntervals, "10 20 15"))
	assert.Equal(t, []float64{10, 20, 15}, r.Radii())

	assert.ErrorIs(t, r.SetField(FieldIntervals, "5, -1"), geoerr.ErrInvalidArgument)
	assert.Equal(t, []float64{10, 20, 15}, r.Radii())

	require.NoError(t, r.SetField(FieldInterval, "40"))
	assert.Equal(t, []float64{10, 20, 15, 40}, r.Radii())
}

func TestRangeRings_ClickModes(t *testing.T) {
	r := NewRangeRings(testDeps())
	require.NoError(t, r.SetMode(ModeInteractive))
	_, err := r.AddPoint(coord.Point{})
	require.NoError(t, err)
	assert.True(t, r.CanCreate())
	_, err = r.AddPoint(coord.Point{Lat: 0, Lon: 1})
	require.NoError(t, err)
	require.Len(t, r.Radii(), 1)
	assert.InDelta(t, 111319.5, r.Radii()[0], 1)

	c := NewRangeRings(testDeps())
	require.NoError(t, c.SetMode(ModeCumulative))
	_, err = c.AddPoint(coord.Point{})
	require.NoError(t, err)
	_, err = c.AddPoint(coord.Point{Lat: 0, Lon: 1})
	require.NoError(t, err)
	_, err = c.AddPoint(coord.Point{Lat: 0, Lon: 0.5})
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
	_, err = c.AddPoint(coord.Point{Lat: 0, Lon: 2})
	require.NoError(t, err)
	radii := c.Radii()
	require.Len(t, radii, 2)
	assert.InDelta(t, 222639, radii[1], 1)
}

func TestNew_PicksBuilder(t *testing.T) {
	for _, tool := range graphics.Tools {
		b := New(tool, testDeps())
		assert.Equal(t, tool, b.Tool())
	}
	_, ok := New(graphics.CircleTool, testDeps()).(Traveler)
	assert.True(t, ok)
}
