package units_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoshape/internal/geoerr"
	"geoshape/internal/units"
)

func relEqual(t *testing.T, want, got float64) {
	t.Helper()
	if want == 0 {
		assert.InDelta(t, 0, got, 1e-12)
		return
	}
	assert.LessOrEqual(t, math.Abs(got-want)/math.Abs(want), 1e-9, "want %v got %v", want, got)
}

func TestConvertLength_Identity(t *testing.T) {
	for _, u := range units.LengthUnits {
		got, err := units.ConvertLength(123.456, u, u)
		require.NoError(t, err)
		assert.Equal(t, 123.456, got)
	}
}

func TestConvertLength_RoundTrip(t *testing.T) {
	values := []float64{0, 1e-6, 0.5, 1, 42, 1852, 123456.789, 2e7}
	for _, u := range units.LengthUnits {
		for _, v := range units.LengthUnits {
			for _, x := range values {
				there, err := units.ConvertLength(x, u, v)
				require.NoError(t, err)
				back, err := units.ConvertLength(there, v, u)
				require.NoError(t, err)
				relEqual(t, x, back)
			}
		}
	}
}

func TestConvertLength_Transitive(t *testing.T) {
	for _, a := range units.LengthUnits {
		for _, b := range units.LengthUnits {
			for _, c := range units.LengthUnits {
				direct, err := units.ConvertLength(777, a, c)
				require.NoError(t, err)
				mid, err := units.ConvertLength(777, a, b)
				require.NoError(t, err)
				via, err := units.ConvertLength(mid, b, c)
				require.NoError(t, err)
				relEqual(t, direct, via)
			}
		}
	}
}

func TestConvertLength_KnownValues(t *testing.T) {
	tests := []struct {
		from, to units.LengthUnit
		in, want float64
	}{
		{units.Kilometers, units.Meters, 1, 1000},
		{units.Miles, units.Meters, 1, 1609.344},
		{units.NauticalMiles, units.Meters, 1, 1852},
		{units.Yards, units.Feet, 1, 3},
		{units.Meters, units.Feet, 0.3048, 1},
		{units.Miles, units.Kilometers, 100, 160.9344},
	}
	for _, tt := range tests {
		got, err := units.ConvertLength(tt.in, tt.from, tt.to)
		require.NoError(t, err)
		relEqual(t, tt.want, got)
	}
}

func TestConvertLength_NegativeRejected(t *testing.T) {
	_, err := units.ConvertLength(-1, units.Meters, units.Feet)
	require.Error(t, err)
	assert.True(t, errors.Is(err, geoerr.ErrInvalidArgument))
}

func TestConvertAngle(t *testing.T) {
	assert.InDelta(t, 6400, units.ConvertAngle(360, units.Degrees, units.Mils), 1e-9)
	assert.InDelta(t, 0.05625, units.ConvertAngle(1, units.Mils, units.Degrees), 1e-15)
	assert.InDelta(t, 17.777778, units.ConvertAngle(1, units.Degrees, units.Mils), 1e-6)
	for _, a := range []float64{0, 0.1, 45, 90, 181.25, 359.999, 360} {
		mils := units.ConvertAngle(a, units.Degrees, units.Mils)
		relEqual(t, a, units.ConvertAngle(mils, units.Mils, units.Degrees))
	}
	assert.Equal(t, 12.5, units.ConvertAngle(12.5, units.Mils, units.Mils))
}

func TestValidateAzimuth(t *testing.T) {
	tests := []struct {
		v    float64
		u    units.AngleUnit
		ok   bool
		name string
	}{
		{0, units.Degrees, true, "zero"},
		{360, units.Degrees, true, "full circle inclusive"},
		{360.01, units.Degrees, false, "above degrees"},
		{-0.1, units.Degrees, false, "negative"},
		{6400, units.Mils, true, "mils inclusive"},
		{6400.5, units.Mils, false, "above mils"},
		{400, units.Mils, true, "mils in range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := units.ValidateAzimuth(tt.v, tt.u)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
			}
		})
	}
}

func TestRate(t *testing.T) {
	kmh := units.Rate{Length: units.Kilometers, Per: units.Hours}
	mps, err := kmh.ToMetersPerSecond(36)
	require.NoError(t, err)
	relEqual(t, 10, mps)
	back, err := kmh.FromMetersPerSecond(mps)
	require.NoError(t, err)
	relEqual(t, 36, back)
	assert.Equal(t, "km/h", kmh.String())

	_, err = units.Rate{Length: units.Miles, Per: units.Minutes}.ToMetersPerSecond(1)
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
}

func TestConvertTime(t *testing.T) {
	got, err := units.ConvertTime(2, units.Hours, units.Minutes)
	require.NoError(t, err)
	assert.Equal(t, 120.0, got)
	_, err = units.ConvertTime(-1, units.Hours, units.Minutes)
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
}

func TestParseUnits(t *testing.T) {
	u, err := units.ParseLength("NM")
	require.NoError(t, err)
	assert.Equal(t, units.NauticalMiles, u)
	a, err := units.ParseAngle("mils")
	require.NoError(t, err)
	assert.Equal(t, units.Mils, a)
	tu, err := units.ParseTime("hr")
	require.NoError(t, err)
	assert.Equal(t, units.Hours, tu)
	_, err = units.ParseLength("furlong")
	assert.ErrorIs(t, err, geoerr.ErrInvalidArgument)
}

func TestNextCycles(t *testing.T) {
	assert.Equal(t, units.Meters, units.NextLength(units.Yards))
	assert.Equal(t, units.Degrees, units.NextAngle(units.Mils))
	assert.Equal(t, units.Seconds, units.NextTime(units.Hours))
}
