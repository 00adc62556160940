package shape

import (
	"fmt"

	"geoshape/internal/coord"
	"geoshape/internal/geodesy"
	"geoshape/internal/geoerr"
	"geoshape/internal/graphics"
	"geoshape/internal/points"
	"geoshape/internal/units"
)

// Circle builds a circle from a center and a radius. The radius may be
// entered directly, as a diameter, or derived from a travel rate and time.
type Circle struct {
	base
	mode      Mode
	radius    float64 // meters
	hasRadius bool
	travel    bool
	speed     float64 // meters per second
	hasSpeed  bool
	seconds   float64
	hasTime   bool
}

var circleModes = []Mode{ModeRadius, ModeDiameter}

// NewCircle returns a circle builder showing the radius.
func NewCircle(d Deps) *Circle {
	c := &Circle{base: newBase(graphics.CircleTool, d, points.P1), mode: ModeRadius}
	c.hasRate = true
	return c
}

func (c *Circle) Modes() []Mode { return circleModes }

func (c *Circle) Mode() Mode { return c.mode }

// SetMode toggles between showing the radius and the diameter. The stored
// radius does not change.
func (c *Circle) SetMode(m Mode) error {
	if err := checkMode(m, circleModes); err != nil {
		return err
	}
	c.touch()
	c.mode = m
	return nil
}

func (c *Circle) Travel() bool { return c.travel }

// SetTravel turns the travel-time calculator on or off. Turning it on
// derives the radius from rate and time when both are set.
func (c *Circle) SetTravel(on bool) error {
	if on {
		if err := c.deriveRadius(); err != nil {
			return err
		}
	}
	c.travel = on
	c.touch()
	return nil
}

func (c *Circle) deriveRadius() error {
	if !c.hasSpeed || !c.hasTime {
		return nil
	}
	r := c.speed * c.seconds
	if err := checkCeiling(r); err != nil {
		return err
	}
	c.radius, c.hasRadius = r, true
	return nil
}

func (c *Circle) Fields() []Field {
	if c.travel {
		return []Field{FieldCenter, FieldRadius, FieldTravelRate, FieldTravelTime}
	}
	return []Field{FieldCenter, FieldRadius}
}

func (c *Circle) ReadOnly(f Field) bool {
	return f == FieldRadius && c.travel
}

func (c *Circle) Value(f Field) (float64, bool) {
	switch f {
	case FieldRadius:
		v := c.radius
		if c.mode == ModeDiameter {
			v *= 2
		}
		return c.lengthOut(v), c.hasRadius
	case FieldTravelRate:
		v, _ := c.units.Rate.FromMetersPerSecond(c.speed)
		return v, c.hasSpeed
	case FieldTravelTime:
		v, _ := units.ConvertTime(c.seconds, units.Seconds, c.units.Time)
		return v, c.hasTime
	}
	return 0, false
}

func (c *Circle) FieldText(f Field) string {
	if f == FieldCenter {
		return c.coordinateText(points.P1)
	}
	if v, ok := c.Value(f); ok {
		return formatNumber(v)
	}
	return ""
}

// SetField applies an edit. A rejected edit leaves every value unchanged.
func (c *Circle) SetField(f Field, text string) error {
	if c.ReadOnly(f) {
		return readOnly(f)
	}
	return c.applied(c.setField(f, text))
}

func (c *Circle) setField(f Field, text string) error {
	switch f {
	case FieldCenter:
		return c.setCoordinate(points.P1, text)
	case FieldRadius:
		m, empty, err := c.lengthIn(text)
		if err != nil {
			return err
		}
		if c.mode == ModeDiameter {
			m /= 2
		}
		if err := checkCeiling(m); err != nil {
			return err
		}
		c.radius, c.hasRadius = m, !empty
	case FieldTravelRate:
		v, empty, err := parseNumber(text)
		if err != nil {
			return err
		}
		mps, err := c.units.Rate.ToMetersPerSecond(v)
		if err != nil {
			return err
		}
		return c.applyTravel(mps, !empty, c.seconds, c.hasTime)
	case FieldTravelTime:
		v, empty, err := parseNumber(text)
		if err != nil {
			return err
		}
		s, err := units.ConvertTime(v, c.units.Time, units.Seconds)
		if err != nil {
			return err
		}
		return c.applyTravel(c.speed, c.hasSpeed, s, !empty)
	default:
		return unknownField(f)
	}
	return nil
}

// applyTravel stores a new rate and time only if the radius they produce
// is acceptable.
func (c *Circle) applyTravel(speed float64, hasSpeed bool, seconds float64, hasTime bool) error {
	if hasSpeed && hasTime {
		if err := checkCeiling(speed * seconds); err != nil {
			return err
		}
	}
	c.speed, c.hasSpeed = speed, hasSpeed
	c.seconds, c.hasTime = seconds, hasTime
	return c.deriveRadius()
}

// AddPoint sets the center, then takes the radius from the second click
// and completes the circle. In travel mode the time is recomputed from the
// rate.
func (c *Circle) AddPoint(p coord.Point) (bool, error) {
	done, err := c.addPoint(p)
	return done, c.applied(err)
}

func (c *Circle) addPoint(p coord.Point) (bool, error) {
	center, ok := c.pts.Get(points.P1)
	if !ok {
		c.floating = nil
		c.pts.Set(points.P1, p)
		return c.CanCreate(), nil
	}
	d, _, err := c.measure(center, p, geodesy.Geodesic)
	if err != nil {
		return false, err
	}
	if err := checkCeiling(d); err != nil {
		return false, err
	}
	if c.travel {
		if !c.hasSpeed || c.speed <= 0 {
			return false, fmt.Errorf("%w: set a travel rate before picking the radius", geoerr.ErrPreconditionNotMet)
		}
		c.seconds, c.hasTime = d/c.speed, true
	}
	c.floating = nil
	c.radius, c.hasRadius = d, true
	return c.CanCreate(), nil
}

func (c *Circle) CanCreate() bool {
	return c.pts.Has(points.P1) && c.hasRadius && c.radius > 0
}

func (c *Circle) State() State {
	return stateOf(c.committed, c.CanCreate(), c.pts.Count() > 0 || c.hasRadius || c.hasSpeed || c.hasTime)
}

func (c *Circle) CanPreview() bool {
	_, ok := c.Preview()
	return ok
}

// Preview returns the circle at the current radius, or through the pointer
// when no radius is set yet.
func (c *Circle) Preview() (Request, bool) {
	center, ok := c.pts.Get(points.P1)
	if !ok {
		return Request{}, false
	}
	r := c.radius
	if !c.hasRadius || r <= 0 {
		if c.floating == nil {
			return Request{}, false
		}
		d, _, err := c.measure(center, *c.floating, geodesy.Geodesic)
		if err != nil || d > MaxRadius {
			return Request{}, false
		}
		r = d
	}
	return Request{
		Tool:     c.tool,
		Kind:     graphics.KindCircle,
		Points:   []coord.Point{center},
		Distance: r,
	}, true
}

func (c *Circle) Commit() ([]Request, error) {
	if !c.CanCreate() {
		return nil, fmt.Errorf("%w: circle needs a center and a positive radius", geoerr.ErrPreconditionNotMet)
	}
	center, _ := c.pts.Get(points.P1)
	shown, _ := c.Value(FieldRadius)
	label := fmt.Sprintf("%s %s %s", c.mode, formatNumber(shown), c.units.Length.Abbrev())
	if c.travel {
		rate, _ := c.Value(FieldTravelRate)
		tm, _ := c.Value(FieldTravelTime)
		label += fmt.Sprintf(" (%s %s for %s %s)", formatNumber(rate), c.units.Rate, formatNumber(tm), c.units.Time.Abbrev())
	}
	req := Request{
		Tool:     c.tool,
		Kind:     graphics.KindCircle,
		Points:   []coord.Point{center},
		Distance: c.radius,
		Final:    true,
		Attrs:    c.attributes(graphics.KindCircle, label, center, c.radius, 0, 0, ""),
	}
	return []Request{req}, nil
}

// Finish clears the builder after a commit was stored.
func (c *Circle) Finish() {
	c.Reset()
	c.committed = true
}

// Reset clears the center and every value. Mode, travel and units are kept.
func (c *Circle) Reset() {
	c.radius, c.hasRadius = 0, false
	c.speed, c.hasSpeed = 0, false
	c.seconds, c.hasTime = 0, false
	c.committed = false
	c.clearPoints()
}
