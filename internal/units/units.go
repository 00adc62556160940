// Package units converts scalar lengths, angles and durations between the
// units the shape tools display. All tables are fixed; conversions route
// through meters, degrees and seconds.
package units

import (
	"fmt"
	"strings"

	"geoshape/internal/geoerr"
)

// Unit is implemented by LengthUnit, AngleUnit and TimeUnit so hosts can
// report a unit change through one entry point.
type Unit interface {
	fmt.Stringer
	Abbrev() string
	isUnit()
}

// LengthUnit is a unit of distance.
type LengthUnit int

const (
	Meters LengthUnit = iota
	Feet
	Kilometers
	Miles
	NauticalMiles
	Yards
)

// LengthUnits lists every length unit in display order.
var LengthUnits = []LengthUnit{Meters, Feet, Kilometers, Miles, NauticalMiles, Yards}

// meters per unit
var metersPer = [...]float64{
	Meters:        1,
	Feet:          0.3048,
	Kilometers:    1000,
	Miles:         1609.344,
	NauticalMiles: 1852,
	Yards:         0.9144,
}

func (u LengthUnit) valid() bool { return u >= Meters && u <= Yards }

func (LengthUnit) isUnit() {}

// String returns the unit name.
func (u LengthUnit) String() string {
	switch u {
	case Meters:
		return "Meters"
	case Feet:
		return "Feet"
	case Kilometers:
		return "Kilometers"
	case Miles:
		return "Miles"
	case NauticalMiles:
		return "NauticalMiles"
	case Yards:
		return "Yards"
	default:
		return "Unknown"
	}
}

// Abbrev returns the short label used next to values.
func (u LengthUnit) Abbrev() string {
	switch u {
	case Meters:
		return "m"
	case Feet:
		return "ft"
	case Kilometers:
		return "km"
	case Miles:
		return "mi"
	case NauticalMiles:
		return "nm"
	case Yards:
		return "yd"
	default:
		return "?"
	}
}

// MetersPer returns the number of meters in one u.
func (u LengthUnit) MetersPer() float64 {
	if !u.valid() {
		return 0
	}
	return metersPer[u]
}

// ConvertLength converts value from one length unit to another.
// Negative lengths are rejected.
func ConvertLength(value float64, from, to LengthUnit) (float64, error) {
	if !from.valid() || !to.valid() {
		return 0, fmt.Errorf("%w: unknown length unit", geoerr.ErrInvalidArgument)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: negative length %g", geoerr.ErrInvalidArgument, value)
	}
	if from == to {
		return value, nil
	}
	return value * metersPer[from] / metersPer[to], nil
}

// ToMeters converts a non-negative length in u to meters.
func ToMeters(value float64, u LengthUnit) (float64, error) {
	return ConvertLength(value, u, Meters)
}

// FromMeters converts a non-negative length in meters to u.
func FromMeters(meters float64, u LengthUnit) (float64, error) {
	return ConvertLength(meters, Meters, u)
}

// AngleUnit is a unit of direction.
type AngleUnit int

const (
	Degrees AngleUnit = iota
	Mils
)

// AngleUnits lists every angle unit in display order.
var AngleUnits = []AngleUnit{Degrees, Mils}

const (
	// DegreesPerMil is the NATO mil: 6400 mils to the circle.
	DegreesPerMil = 0.05625
	// MilsPerDegree is the exact reciprocal of DegreesPerMil (17.777…).
	MilsPerDegree = 1 / DegreesPerMil
)

func (u AngleUnit) valid() bool { return u == Degrees || u == Mils }

func (AngleUnit) isUnit() {}

// String returns the unit name.
func (u AngleUnit) String() string {
	switch u {
	case Degrees:
		return "Degrees"
	case Mils:
		return "Mils"
	default:
		return "Unknown"
	}
}

// Abbrev returns the short label used next to values.
func (u AngleUnit) Abbrev() string {
	switch u {
	case Degrees:
		return "°"
	case Mils:
		return "mil"
	default:
		return "?"
	}
}

// FullCircle returns the size of a full turn in u.
func (u AngleUnit) FullCircle() float64 {
	if u == Mils {
		return 6400
	}
	return 360
}

// ConvertAngle converts value between angle units.
func ConvertAngle(value float64, from, to AngleUnit) float64 {
	if from == to || !from.valid() || !to.valid() {
		return value
	}
	if from == Mils {
		return value * DegreesPerMil
	}
	return value * MilsPerDegree
}

// ValidateAzimuth checks value against the inclusive azimuth domain of u:
// [0,360] degrees or [0,6400] mils.
func ValidateAzimuth(value float64, u AngleUnit) error {
	if !u.valid() {
		return fmt.Errorf("%w: unknown angle unit", geoerr.ErrInvalidArgument)
	}
	if value < 0 || value > u.FullCircle() {
		return fmt.Errorf("%w: azimuth %g outside [0,%g] %s",
			geoerr.ErrInvalidArgument, value, u.FullCircle(), strings.ToLower(u.String()))
	}
	return nil
}

// TimeUnit is a unit of duration.
type TimeUnit int

const (
	Seconds TimeUnit = iota
	Minutes
	Hours
)

// TimeUnits lists every time unit in display order.
var TimeUnits = []TimeUnit{Seconds, Minutes, Hours}

var secondsPer = [...]float64{Seconds: 1, Minutes: 60, Hours: 3600}

func (u TimeUnit) valid() bool { return u >= Seconds && u <= Hours }

func (TimeUnit) isUnit() {}

// String returns the unit name.
func (u TimeUnit) String() string {
	switch u {
	case Seconds:
		return "Seconds"
	case Minutes:
		return "Minutes"
	case Hours:
		return "Hours"
	default:
		return "Unknown"
	}
}

// Abbrev returns the short label used next to values.
func (u TimeUnit) Abbrev() string {
	switch u {
	case Seconds:
		return "s"
	case Minutes:
		return "min"
	case Hours:
		return "h"
	default:
		return "?"
	}
}

// ConvertTime converts a non-negative duration between time units.
func ConvertTime(value float64, from, to TimeUnit) (float64, error) {
	if !from.valid() || !to.valid() {
		return 0, fmt.Errorf("%w: unknown time unit", geoerr.ErrInvalidArgument)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: negative duration %g", geoerr.ErrInvalidArgument, value)
	}
	if from == to {
		return value, nil
	}
	return value * secondsPer[from] / secondsPer[to], nil
}

// Rate is a speed unit: Length per Per. Only per-second and per-hour rates
// are offered.
type Rate struct {
	Length LengthUnit
	Per    TimeUnit
}

// Validate rejects unknown units and per-minute rates.
func (r Rate) Validate() error {
	if !r.Length.valid() {
		return fmt.Errorf("%w: unknown rate length unit", geoerr.ErrInvalidArgument)
	}
	if r.Per != Seconds && r.Per != Hours {
		return fmt.Errorf("%w: rate must be per second or per hour", geoerr.ErrInvalidArgument)
	}
	return nil
}

// String renders the rate unit, e.g. "km/h".
func (r Rate) String() string {
	return r.Length.Abbrev() + "/" + r.Per.Abbrev()
}

// ToMetersPerSecond converts a speed expressed in r to meters per second.
func (r Rate) ToMetersPerSecond(value float64) (float64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: negative rate %g", geoerr.ErrInvalidArgument, value)
	}
	return value * metersPer[r.Length] / secondsPer[r.Per], nil
}

// FromMetersPerSecond converts a speed in meters per second to r.
func (r Rate) FromMetersPerSecond(mps float64) (float64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if mps < 0 {
		return 0, fmt.Errorf("%w: negative rate %g", geoerr.ErrInvalidArgument, mps)
	}
	return mps * secondsPer[r.Per] / metersPer[r.Length], nil
}

// ParseLength resolves a unit name or abbreviation, case-insensitively.
func ParseLength(s string) (LengthUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "meter", "meters", "metre", "metres":
		return Meters, nil
	case "ft", "foot", "feet":
		return Feet, nil
	case "km", "kilometer", "kilometers", "kilometre", "kilometres":
		return Kilometers, nil
	case "mi", "mile", "miles":
		return Miles, nil
	case "nm", "nmi", "nauticalmile", "nauticalmiles", "nautical_miles":
		return NauticalMiles, nil
	case "yd", "yard", "yards":
		return Yards, nil
	}
	return 0, fmt.Errorf("%w: unknown length unit %q", geoerr.ErrInvalidArgument, s)
}

// ParseAngle resolves an angle unit name or abbreviation.
func ParseAngle(s string) (AngleUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deg", "degree", "degrees", "°":
		return Degrees, nil
	case "mil", "mils":
		return Mils, nil
	}
	return 0, fmt.Errorf("%w: unknown angle unit %q", geoerr.ErrInvalidArgument, s)
}

// ParseTime resolves a time unit name or abbreviation.
func ParseTime(s string) (TimeUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "sec", "second", "seconds":
		return Seconds, nil
	case "min", "minute", "minutes":
		return Minutes, nil
	case "h", "hr", "hour", "hours":
		return Hours, nil
	}
	return 0, fmt.Errorf("%w: unknown time unit %q", geoerr.ErrInvalidArgument, s)
}

// NextLength cycles through LengthUnits; hosts use it for unit toggles.
func NextLength(u LengthUnit) LengthUnit {
	return LengthUnits[(int(u)+1)%len(LengthUnits)]
}

// NextAngle cycles through AngleUnits.
func NextAngle(u AngleUnit) AngleUnit {
	return AngleUnits[(int(u)+1)%len(AngleUnits)]
}

// NextTime cycles through TimeUnits.
func NextTime(u TimeUnit) TimeUnit {
	return TimeUnits[(int(u)+1)%len(TimeUnits)]
}
