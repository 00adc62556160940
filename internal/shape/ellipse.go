package shape

import (
	"fmt"

	"geoshape/internal/coord"
	"geoshape/internal/geodesy"
	"geoshape/internal/geoerr"
	"geoshape/internal/graphics"
	"geoshape/internal/points"
)

// Ellipse builds an ellipse from a center, semi-major and semi-minor axes
// and the orientation of the major axis.
type Ellipse struct {
	base
	major       float64
	minor       float64
	orientation float64
	hasMajor    bool
	hasMinor    bool
	hasOrient   bool
}

// NewEllipse returns an ellipse builder.
func NewEllipse(d Deps) *Ellipse {
	return &Ellipse{base: newBase(graphics.EllipseTool, d, points.P1)}
}

func (e *Ellipse) Modes() []Mode { return nil }

func (e *Ellipse) Mode() Mode { return ModePoints }

func (e *Ellipse) SetMode(m Mode) error {
	return fmt.Errorf("%w: ellipse has no modes", geoerr.ErrInvalidArgument)
}

func (e *Ellipse) Fields() []Field {
	return []Field{FieldCenter, FieldMajor, FieldMinor, FieldOrientation}
}

func (e *Ellipse) ReadOnly(Field) bool { return false }

func (e *Ellipse) Value(f Field) (float64, bool) {
	switch f {
	case FieldMajor:
		return e.lengthOut(e.major), e.hasMajor
	case FieldMinor:
		return e.lengthOut(e.minor), e.hasMinor
	case FieldOrientation:
		return e.angleOut(e.orientation), e.hasOrient
	}
	return 0, false
}

func (e *Ellipse) FieldText(f Field) string {
	if f == FieldCenter {
		return e.coordinateText(points.P1)
	}
	if v, ok := e.Value(f); ok {
		return formatNumber(v)
	}
	return ""
}

// SetField applies an edit. The minor axis may never exceed the major axis
// once both are set; such an edit is rejected and nothing changes.
func (e *Ellipse) SetField(f Field, text string) error {
	return e.applied(e.setField(f, text))
}

func (e *Ellipse) setField(f Field, text string) error {
	switch f {
	case FieldCenter:
		return e.setCoordinate(points.P1, text)
	case FieldMajor:
		m, empty, err := e.lengthIn(text)
		if err != nil {
			return err
		}
		if err := checkCeiling(m); err != nil {
			return err
		}
		if !empty && e.hasMinor && e.minor > m {
			return fmt.Errorf("%w: major axis smaller than minor axis", geoerr.ErrInvalidArgument)
		}
		e.major, e.hasMajor = m, !empty
	case FieldMinor:
		m, empty, err := e.lengthIn(text)
		if err != nil {
			return err
		}
		if err := checkCeiling(m); err != nil {
			return err
		}
		if !empty && e.hasMajor && m > e.major {
			return fmt.Errorf("%w: minor axis larger than major axis", geoerr.ErrInvalidArgument)
		}
		e.minor, e.hasMinor = m, !empty
	case FieldOrientation:
		az, empty, err := e.azimuthIn(text)
		if err != nil {
			return err
		}
		e.orientation, e.hasOrient = az, !empty
	default:
		return unknownField(f)
	}
	return nil
}

// AddPoint sets the center, then takes the major axis and orientation from
// the next click. The ellipse is completed with Enter.
func (e *Ellipse) AddPoint(p coord.Point) (bool, error) {
	done, err := e.addPoint(p)
	return done, e.applied(err)
}

func (e *Ellipse) addPoint(p coord.Point) (bool, error) {
	center, ok := e.pts.Get(points.P1)
	if !ok {
		e.floating = nil
		e.pts.Set(points.P1, p)
		return false, nil
	}
	d, az, err := e.measure(center, p, geodesy.Geodesic)
	if err != nil {
		return false, err
	}
	if err := checkCeiling(d); err != nil {
		return false, err
	}
	if e.hasMinor && e.minor > d {
		return false, fmt.Errorf("%w: major axis smaller than minor axis", geoerr.ErrInvalidArgument)
	}
	e.floating = nil
	e.major, e.hasMajor = d, true
	e.orientation, e.hasOrient = az, true
	return false, nil
}

func (e *Ellipse) CanCreate() bool {
	return e.pts.Has(points.P1) && e.hasMajor && e.hasMinor &&
		e.major > 0 && e.minor > 0 && e.minor <= e.major
}

func (e *Ellipse) State() State {
	return stateOf(e.committed, e.CanCreate(), e.pts.Count() > 0 || e.hasMajor || e.hasMinor || e.hasOrient)
}

func (e *Ellipse) CanPreview() bool {
	_, ok := e.Preview()
	return ok
}

// Preview draws the ellipse as far as it is known. Without a minor axis
// the preview is a circle of the major axis.
func (e *Ellipse) Preview() (Request, bool) {
	center, ok := e.pts.Get(points.P1)
	if !ok {
		return Request{}, false
	}
	major, az := e.major, e.orientation
	if !e.hasMajor || major <= 0 {
		if e.floating == nil {
			return Request{}, false
		}
		d, a, err := e.measure(center, *e.floating, geodesy.Geodesic)
		if err != nil || d > MaxRadius {
			return Request{}, false
		}
		major = d
		if !e.hasOrient {
			az = a
		}
	}
	minor := e.minor
	if !e.hasMinor || minor <= 0 || minor > major {
		minor = major
	}
	return Request{
		Tool:     e.tool,
		Kind:     graphics.KindEllipse,
		Points:   []coord.Point{center},
		Distance: major,
		Minor:    minor,
		Azimuth:  az,
	}, true
}

func (e *Ellipse) Commit() ([]Request, error) {
	if !e.CanCreate() {
		return nil, fmt.Errorf("%w: ellipse needs a center and both axes", geoerr.ErrPreconditionNotMet)
	}
	center, _ := e.pts.Get(points.P1)
	label := fmt.Sprintf("%s x %s %s @ %s%s",
		formatNumber(e.lengthOut(e.major)), formatNumber(e.lengthOut(e.minor)), e.units.Length.Abbrev(),
		formatNumber(e.angleOut(e.orientation)), e.units.Angle.Abbrev())
	req := Request{
		Tool:     e.tool,
		Kind:     graphics.KindEllipse,
		Points:   []coord.Point{center},
		Distance: e.major,
		Minor:    e.minor,
		Azimuth:  e.orientation,
		Final:    true,
		Attrs:    e.attributes(graphics.KindEllipse, label, center, e.major, e.minor, e.orientation, ""),
	}
	return []Request{req}, nil
}

// Finish clears the builder after a commit was stored.
func (e *Ellipse) Finish() {
	e.Reset()
	e.committed = true
}

func (e *Ellipse) Reset() {
	e.major, e.minor, e.orientation = 0, 0, 0
	e.hasMajor, e.hasMinor, e.hasOrient = false, false, false
	e.committed = false
	e.clearPoints()
}
