// Package shape holds the interactive shape builders. Each builder collects
// points and numeric fields for one tool, derives dependent values, and
// produces preview and commit requests for the geodesy engine.
//
// Lengths are stored in meters and directions in degrees. Unit selections
// only change what the fields display.
package shape

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"geoshape/internal/coord"
	"geoshape/internal/geodesy"
	"geoshape/internal/geoerr"
	"geoshape/internal/graphics"
	"geoshape/internal/points"
	"geoshape/internal/units"
)

// MaxRadius is the largest radius or distance, in meters, a builder accepts.
const MaxRadius = 20000000.0

// State is where a builder is in its construction cycle.
type State int

const (
	Idle State = iota
	Collecting
	Ready
	Committed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Collecting:
		return "collecting"
	case Ready:
		return "ready"
	case Committed:
		return "committed"
	}
	return "unknown"
}

// Mode is a tool-specific input mode.
type Mode int

const (
	ModePoints Mode = iota
	ModeBearingDistance
	ModeRadius
	ModeDiameter
	ModeFixed
	ModeInteractive
	ModeOrigin
	ModeCumulative
)

func (m Mode) String() string {
	switch m {
	case ModePoints:
		return "Points"
	case ModeBearingDistance:
		return "Bearing and Distance"
	case ModeRadius:
		return "Radius"
	case ModeDiameter:
		return "Diameter"
	case ModeFixed:
		return "Fixed"
	case ModeInteractive:
		return "Interactive"
	case ModeOrigin:
		return "Origin"
	case ModeCumulative:
		return "Cumulative"
	}
	return "Unknown"
}

// Field names an editable or derived value of a builder.
type Field int

const (
	FieldStart Field = iota
	FieldEnd
	FieldCenter
	FieldDistance
	FieldAzimuth
	FieldRadius
	FieldTravelRate
	FieldTravelTime
	FieldMajor
	FieldMinor
	FieldOrientation
	FieldRingCount
	FieldRadialCount
	FieldInterval
	FieldIntervals
	FieldLineType
)

func (f Field) String() string {
	switch f {
	case FieldStart:
		return "Start"
	case FieldEnd:
		return "End"
	case FieldCenter:
		return "Center"
	case FieldDistance:
		return "Distance"
	case FieldAzimuth:
		return "Azimuth"
	case FieldRadius:
		return "Radius"
	case FieldTravelRate:
		return "Rate"
	case FieldTravelTime:
		return "Time"
	case FieldMajor:
		return "Major"
	case FieldMinor:
		return "Minor"
	case FieldOrientation:
		return "Orientation"
	case FieldRingCount:
		return "Rings"
	case FieldRadialCount:
		return "Radials"
	case FieldInterval:
		return "Interval"
	case FieldIntervals:
		return "Intervals"
	case FieldLineType:
		return "Line type"
	}
	return "Unknown"
}

// UnitField selects which unit selection a unit change applies to.
type UnitField int

const (
	UnitDistance UnitField = iota
	UnitAngle
	UnitRateLength
	UnitRatePer
	UnitTime
)

// UnitSet is a builder's current unit selections.
type UnitSet struct {
	Length units.LengthUnit
	Angle  units.AngleUnit
	Rate   units.Rate
	Time   units.TimeUnit
}

// Attributes is the label record stored with a committed shape. Numeric
// values are in the units named alongside them.
type Attributes struct {
	ID         uuid.UUID
	Tool       string
	Kind       string
	Label      string
	Origin     string
	Distance   float64
	Minor      float64
	Azimuth    float64
	LengthUnit string
	AngleUnit  string
	Curve      string
	Created    time.Time
}

// Request describes geometry for the engine to build. Distances are in
// meters and angles in degrees regardless of display units.
type Request struct {
	Tool     graphics.Tool
	Kind     graphics.Kind
	Points   []coord.Point
	Distance float64 // line length, circle/ring radius, ellipse semi-major
	Minor    float64 // ellipse semi-minor
	Azimuth  float64 // line bearing, ellipse orientation, radial bearing
	Radii    []float64
	Radials  int
	Curve    geodesy.CurveType
	Final    bool
	Attrs    Attributes
}

// Builder is the common surface of every shape tool.
type Builder interface {
	Tool() graphics.Tool
	State() State
	Points() *points.Accumulator

	Modes() []Mode
	Mode() Mode
	SetMode(Mode) error

	Fields() []Field
	ReadOnly(Field) bool
	FieldText(Field) string
	Value(Field) (float64, bool)
	SetField(Field, string) error

	Units() UnitSet
	SetUnit(UnitField, units.Unit) error
	// SetNotation changes how coordinate fields are displayed.
	SetNotation(coord.Format)

	// AddPoint handles a map click. It reports true when the click
	// completed the shape and it should be committed.
	AddPoint(coord.Point) (bool, error)
	// MovePoint updates the floating preview point.
	MovePoint(coord.Point)

	CanCreate() bool
	CanPreview() bool
	Preview() (Request, bool)
	// Commit returns the requests for the finished shape without changing
	// the builder. Finish clears it once the requests were stored.
	Commit() ([]Request, error)
	Finish()
	Reset()
}

// Traveler is implemented by builders with a travel-time calculator.
type Traveler interface {
	Travel() bool
	SetTravel(bool) error
}

// Deps are the collaborators a builder needs.
type Deps struct {
	Engine   geodesy.Engine
	Codec    *coord.Codec
	Notation coord.Format
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Engine == nil {
		d.Engine = geodesy.NewSpherical(0)
	}
	if d.Codec == nil {
		d.Codec, _ = coord.NewCodec()
	}
	if d.Notation == coord.Unknown {
		d.Notation = coord.DD
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// New returns the builder for tool.
func New(tool graphics.Tool, d Deps) Builder {
	switch tool {
	case graphics.CircleTool:
		return NewCircle(d)
	case graphics.EllipseTool:
		return NewEllipse(d)
	case graphics.RangeRingsTool:
		return NewRangeRings(d)
	default:
		return NewLine(d)
	}
}

// base carries what every builder shares.
type base struct {
	tool      graphics.Tool
	deps      Deps
	pts       *points.Accumulator
	floating  *coord.Point
	units     UnitSet
	hasRate   bool
	committed bool
}

func newBase(tool graphics.Tool, d Deps, slots ...points.Slot) base {
	return base{
		tool: tool,
		deps: d.withDefaults(),
		pts:  points.New(slots...),
		units: UnitSet{
			Length: units.Meters,
			Angle:  units.Degrees,
			Rate:   units.Rate{Length: units.Kilometers, Per: units.Hours},
			Time:   units.Minutes,
		},
	}
}

func (b *base) Tool() graphics.Tool { return b.tool }

func (b *base) Points() *points.Accumulator { return b.pts }

func (b *base) Units() UnitSet { return b.units }

// MovePoint records the pointer position used by live previews.
func (b *base) MovePoint(p coord.Point) {
	b.touch()
	b.floating = &p
}

func (b *base) touch() { b.committed = false }

// applied clears the committed state once an edit went through.
func (b *base) applied(err error) error {
	if err == nil {
		b.touch()
	}
	return err
}

func (b *base) SetNotation(f coord.Format) {
	if f != coord.Unknown {
		b.deps.Notation = f
	}
}

// SetUnit changes a display unit. Stored values are untouched.
func (b *base) SetUnit(f UnitField, u units.Unit) error {
	switch f {
	case UnitDistance:
		if l, ok := u.(units.LengthUnit); ok {
			b.units.Length = l
			return nil
		}
	case UnitAngle:
		if a, ok := u.(units.AngleUnit); ok {
			b.units.Angle = a
			return nil
		}
	case UnitRateLength:
		if l, ok := u.(units.LengthUnit); ok && b.hasRate {
			b.units.Rate.Length = l
			return nil
		}
	case UnitRatePer:
		if t, ok := u.(units.TimeUnit); ok && b.hasRate {
			r := units.Rate{Length: b.units.Rate.Length, Per: t}
			if err := r.Validate(); err != nil {
				return err
			}
			b.units.Rate = r
			return nil
		}
	case UnitTime:
		if t, ok := u.(units.TimeUnit); ok && b.hasRate {
			b.units.Time = t
			return nil
		}
	}
	return fmt.Errorf("%w: unit %v does not apply here", geoerr.ErrInvalidArgument, u)
}

func (b *base) clearPoints() {
	b.floating = nil
	b.pts.Clear()
}

// setCoordinate parses text into slot; empty text clears it.
func (b *base) setCoordinate(slot points.Slot, text string) error {
	if strings.TrimSpace(text) == "" {
		b.pts.Unset(slot)
		return nil
	}
	p, err := b.deps.Codec.Parse(text)
	if err != nil {
		return err
	}
	b.pts.Set(slot, p)
	return nil
}

func (b *base) coordinateText(slot points.Slot) string {
	p, ok := b.pts.Get(slot)
	if !ok {
		return ""
	}
	return b.formatPoint(p)
}

func (b *base) formatPoint(p coord.Point) string {
	s, err := b.deps.Codec.Format(p, b.deps.Notation)
	if err != nil {
		return p.String()
	}
	return s
}

// measure returns the geodesic distance in meters and bearing from a to b.
func (b *base) measure(from, to coord.Point, curve geodesy.CurveType) (float64, float64, error) {
	path, err := b.deps.Engine.Line(from, to, curve)
	if err != nil {
		return 0, 0, err
	}
	d, err := b.deps.Engine.Length(path, curve, units.Meters)
	if err != nil {
		return 0, 0, err
	}
	az, err := b.deps.Engine.Azimuth(path)
	if err != nil {
		return 0, 0, err
	}
	return d, az, nil
}

func (b *base) lengthOut(meters float64) float64 {
	v, _ := units.FromMeters(meters, b.units.Length)
	return v
}

func (b *base) angleOut(deg float64) float64 {
	return units.ConvertAngle(deg, units.Degrees, b.units.Angle)
}

// lengthIn parses a display length into meters.
func (b *base) lengthIn(text string) (float64, bool, error) {
	v, empty, err := parseNumber(text)
	if err != nil || empty {
		return 0, empty, err
	}
	m, err := units.ToMeters(v, b.units.Length)
	if err != nil {
		return 0, false, err
	}
	return m, false, nil
}

// azimuthIn parses a display azimuth into degrees.
func (b *base) azimuthIn(text string) (float64, bool, error) {
	v, empty, err := parseNumber(text)
	if err != nil || empty {
		return 0, empty, err
	}
	if err := units.ValidateAzimuth(v, b.units.Angle); err != nil {
		return 0, false, err
	}
	return units.ConvertAngle(v, b.units.Angle, units.Degrees), false, nil
}

func (b *base) attributes(kind graphics.Kind, label string, origin coord.Point, dist, minor, az float64, curve string) Attributes {
	return Attributes{
		ID:         uuid.New(),
		Tool:       b.tool.String(),
		Kind:       kind.String(),
		Label:      label,
		Origin:     b.formatPoint(origin),
		Distance:   b.lengthOut(dist),
		Minor:      b.lengthOut(minor),
		Azimuth:    b.angleOut(az),
		LengthUnit: b.units.Length.Abbrev(),
		AngleUnit:  b.units.Angle.String(),
		Curve:      curve,
		Created:    b.deps.Now().UTC(),
	}
}

func stateOf(committed, ready, input bool) State {
	switch {
	case committed:
		return Committed
	case ready:
		return Ready
	case input:
		return Collecting
	}
	return Idle
}

func checkMode(m Mode, allowed []Mode) error {
	for _, a := range allowed {
		if a == m {
			return nil
		}
	}
	return fmt.Errorf("%w: mode %s not available", geoerr.ErrInvalidArgument, m)
}

func readOnly(f Field) error {
	return fmt.Errorf("%w: %s is read-only in this mode", geoerr.ErrInvalidArgument, f)
}

func unknownField(f Field) error {
	return fmt.Errorf("%w: field %s not used by this tool", geoerr.ErrInvalidArgument, f)
}

// checkCeiling rejects radii and distances beyond MaxRadius.
func checkCeiling(meters float64) error {
	if meters > MaxRadius {
		return fmt.Errorf("%w: %w: %.0f m exceeds the %.0f m limit",
			geoerr.ErrInvalidArgument, geoerr.ErrDegenerateGeometry, meters, MaxRadius)
	}
	return nil
}

func parseNumber(text string) (float64, bool, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, true, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, fmt.Errorf("%w: %q is not a number", geoerr.ErrInvalidArgument, text)
	}
	return v, false, nil
}

func parseCount(text string, lo, hi int) (int, bool, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, true, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q is not a whole number", geoerr.ErrInvalidArgument, text)
	}
	if n < lo || n > hi {
		return 0, false, fmt.Errorf("%w: %d outside [%d,%d]", geoerr.ErrInvalidArgument, n, lo, hi)
	}
	return n, false, nil
}

// formatNumber renders a display value rounded to six decimals.
func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}
