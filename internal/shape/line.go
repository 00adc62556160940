package shape

import (
	"fmt"
	"strings"

	"geoshape/internal/coord"
	"geoshape/internal/geodesy"
	"geoshape/internal/geoerr"
	"geoshape/internal/graphics"
	"geoshape/internal/points"
	"geoshape/internal/units"
)

// Line builds a line from two points, or from a start point plus distance
// and azimuth.
type Line struct {
	base
	mode     Mode
	curve    geodesy.CurveType
	distance float64
	azimuth  float64
	hasDist  bool
	hasAz    bool
	end      *coord.Point // projected end in bearing mode
}

var lineModes = []Mode{ModePoints, ModeBearingDistance}

var errSamePoint = fmt.Errorf("%w: end point equals start point", geoerr.ErrDegenerateGeometry)

// NewLine returns a line builder in Points mode.
func NewLine(d Deps) *Line {
	l := &Line{base: newBase(graphics.LineTool, d, points.P1, points.P2), mode: ModePoints}
	l.pts.Subscribe(func(points.Change) { l.derive() })
	return l
}

func (l *Line) Modes() []Mode { return lineModes }

func (l *Line) Mode() Mode { return l.mode }

// Curve returns the current line type.
func (l *Line) Curve() geodesy.CurveType { return l.curve }

// SetMode switches between Points and BearingDistance. The start point is
// kept; in bearing mode the last derived distance and azimuth become
// editable starting values.
func (l *Line) SetMode(m Mode) error {
	if err := checkMode(m, lineModes); err != nil {
		return err
	}
	l.touch()
	if m == l.mode {
		return nil
	}
	l.mode = m
	l.floating = nil
	if m == ModePoints {
		l.end = nil
		l.hasDist, l.hasAz = false, false
		l.derive()
		return nil
	}
	l.pts.Unset(points.P2)
	l.derive()
	return nil
}

// derive recomputes values that depend on the points.
func (l *Line) derive() {
	p1, ok1 := l.pts.Get(points.P1)
	switch l.mode {
	case ModePoints:
		p2, ok2 := l.pts.Get(points.P2)
		l.hasDist, l.hasAz = false, false
		if !ok1 || !ok2 {
			return
		}
		d, az, err := l.measure(p1, p2, l.curve)
		if err != nil {
			l.distance, l.hasDist = 0, true
			return
		}
		l.distance, l.azimuth = d, az
		l.hasDist, l.hasAz = true, true
	case ModeBearingDistance:
		l.end = nil
		if !ok1 || !l.hasDist || !l.hasAz || l.distance <= 0 {
			return
		}
		end, err := l.deps.Engine.Project(p1, l.azimuth, l.distance, units.Meters, l.curve)
		if err == nil {
			l.end = &end
		}
	}
}

func (l *Line) Fields() []Field {
	return []Field{FieldStart, FieldEnd, FieldDistance, FieldAzimuth, FieldLineType}
}

func (l *Line) ReadOnly(f Field) bool {
	switch f {
	case FieldDistance, FieldAzimuth:
		return l.mode == ModePoints
	case FieldEnd:
		return l.mode == ModeBearingDistance
	}
	return false
}

func (l *Line) Value(f Field) (float64, bool) {
	switch f {
	case FieldDistance:
		return l.lengthOut(l.distance), l.hasDist
	case FieldAzimuth:
		return l.angleOut(l.azimuth), l.hasAz
	}
	return 0, false
}

func (l *Line) FieldText(f Field) string {
	switch f {
	case FieldStart:
		return l.coordinateText(points.P1)
	case FieldEnd:
		if l.mode == ModeBearingDistance {
			if l.end == nil {
				return ""
			}
			return l.formatPoint(*l.end)
		}
		return l.coordinateText(points.P2)
	case FieldLineType:
		return l.curve.String()
	}
	if v, ok := l.Value(f); ok {
		return formatNumber(v)
	}
	return ""
}

func (l *Line) SetField(f Field, text string) error {
	if l.ReadOnly(f) {
		return readOnly(f)
	}
	return l.applied(l.setField(f, text))
}

func (l *Line) setField(f Field, text string) error {
	switch f {
	case FieldStart:
		return l.setCoordinate(points.P1, text)
	case FieldEnd:
		if p1, ok := l.pts.Get(points.P1); ok && strings.TrimSpace(text) != "" {
			p2, err := l.deps.Codec.Parse(text)
			if err != nil {
				return err
			}
			if p2 == p1 {
				return errSamePoint
			}
		}
		return l.setCoordinate(points.P2, text)
	case FieldDistance:
		m, empty, err := l.lengthIn(text)
		if err != nil {
			return err
		}
		if err := checkCeiling(m); err != nil {
			return err
		}
		l.distance, l.hasDist = m, !empty
	case FieldAzimuth:
		az, empty, err := l.azimuthIn(text)
		if err != nil {
			return err
		}
		l.azimuth, l.hasAz = az, !empty
	case FieldLineType:
		if strings.TrimSpace(text) == "" {
			l.curve = geodesy.Geodesic
			break
		}
		c, err := geodesy.ParseCurveType(text)
		if err != nil {
			return err
		}
		l.curve = c
	default:
		return unknownField(f)
	}
	l.derive()
	return nil
}

// AddPoint sets the start point, then either the end point (Points mode,
// completing the line) or the distance and azimuth toward the click.
func (l *Line) AddPoint(p coord.Point) (bool, error) {
	done, err := l.addPoint(p)
	return done, l.applied(err)
}

func (l *Line) addPoint(p coord.Point) (bool, error) {
	p1, ok := l.pts.Get(points.P1)
	if !ok {
		l.floating = nil
		l.pts.Set(points.P1, p)
		return false, nil
	}
	if p == p1 {
		return false, errSamePoint
	}
	if l.mode == ModePoints {
		l.floating = nil
		l.pts.Set(points.P2, p)
		return l.CanCreate(), nil
	}
	d, az, err := l.measure(p1, p, l.curve)
	if err != nil {
		return false, err
	}
	if err := checkCeiling(d); err != nil {
		return false, err
	}
	l.floating = nil
	l.distance, l.azimuth = d, az
	l.hasDist, l.hasAz = true, true
	l.derive()
	return false, nil
}

func (l *Line) CanCreate() bool {
	p1, ok := l.pts.Get(points.P1)
	if !ok {
		return false
	}
	if l.mode == ModePoints {
		p2, ok := l.pts.Get(points.P2)
		return ok && p2 != p1
	}
	return l.hasDist && l.distance > 0 && l.hasAz
}

func (l *Line) State() State {
	return stateOf(l.committed, l.CanCreate(), l.pts.Count() > 0 || l.hasDist || l.hasAz)
}

func (l *Line) CanPreview() bool {
	_, ok := l.Preview()
	return ok
}

// Preview returns the rubber-band line from the start point to the end,
// the pointer or the projected point.
func (l *Line) Preview() (Request, bool) {
	p1, ok := l.pts.Get(points.P1)
	if !ok {
		return Request{}, false
	}
	var end coord.Point
	switch {
	case l.mode == ModePoints && l.pts.Has(points.P2):
		end, _ = l.pts.Get(points.P2)
	case l.mode == ModeBearingDistance && l.end != nil:
		end = *l.end
	case l.mode == ModeBearingDistance && l.hasDist && l.distance > 0:
		p, err := l.deps.Engine.Project(p1, l.azimuth, l.distance, units.Meters, l.curve)
		if err != nil {
			return Request{}, false
		}
		end = p
	case l.floating != nil:
		end = *l.floating
	default:
		return Request{}, false
	}
	if end == p1 {
		return Request{}, false
	}
	return Request{
		Tool:   l.tool,
		Kind:   graphics.KindLine,
		Points: []coord.Point{p1, end},
		Curve:  l.curve,
	}, true
}

func (l *Line) Commit() ([]Request, error) {
	if !l.CanCreate() {
		return nil, fmt.Errorf("%w: line needs a start point and an end or distance and azimuth", geoerr.ErrPreconditionNotMet)
	}
	p1, _ := l.pts.Get(points.P1)
	var end coord.Point
	if l.mode == ModePoints {
		end, _ = l.pts.Get(points.P2)
	} else {
		if l.end == nil {
			return nil, fmt.Errorf("%w: end point could not be projected", geoerr.ErrDegenerateGeometry)
		}
		end = *l.end
	}
	label := fmt.Sprintf("%s %s @ %s%s", formatNumber(l.lengthOut(l.distance)), l.units.Length.Abbrev(),
		formatNumber(l.angleOut(l.azimuth)), l.units.Angle.Abbrev())
	req := Request{
		Tool:     l.tool,
		Kind:     graphics.KindLine,
		Points:   []coord.Point{p1, end},
		Distance: l.distance,
		Azimuth:  l.azimuth,
		Curve:    l.curve,
		Final:    true,
		Attrs:    l.attributes(graphics.KindLine, label, p1, l.distance, 0, l.azimuth, l.curve.String()),
	}
	return []Request{req}, nil
}

// Finish clears the builder after a commit was stored.
func (l *Line) Finish() {
	l.Reset()
	l.committed = true
}

// Reset clears points and values; mode, units and line type are kept.
func (l *Line) Reset() {
	l.distance, l.azimuth = 0, 0
	l.hasDist, l.hasAz = false, false
	l.end = nil
	l.committed = false
	l.clearPoints()
}
