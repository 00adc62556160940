package shape

import (
	"fmt"
	"slices"
	"strings"

	"geoshape/internal/coord"
	"geoshape/internal/geodesy"
	"geoshape/internal/geoerr"
	"geoshape/internal/graphics"
	"geoshape/internal/points"
)

const (
	MaxRings   = 180
	MaxRadials = 180
)

// RangeRings builds concentric rings around a center, with optional radial
// spokes drawn out to the outermost ring.
type RangeRings struct {
	base
	mode      Mode
	count     int
	hasCount  bool
	interval  float64 // meters, Fixed mode
	hasIntv   bool
	intervals []float64 // meters, other modes
	radials   int
}

var ringModes = []Mode{ModeFixed, ModeInteractive, ModeOrigin, ModeCumulative}

// NewRangeRings returns a range ring builder in Fixed mode.
func NewRangeRings(d Deps) *RangeRings {
	return &RangeRings{base: newBase(graphics.RangeRingsTool, d, points.P1), mode: ModeFixed}
}

func (r *RangeRings) Modes() []Mode { return ringModes }

func (r *RangeRings) Mode() Mode { return r.mode }

// SetMode changes how radii are entered. The center and radial count are
// kept; recorded intervals are dropped.
func (r *RangeRings) SetMode(m Mode) error {
	if err := checkMode(m, ringModes); err != nil {
		return err
	}
	r.touch()
	if m != r.mode {
		r.mode = m
		r.intervals = nil
		r.floating = nil
	}
	return nil
}

func (r *RangeRings) Fields() []Field {
	switch r.mode {
	case ModeFixed:
		return []Field{FieldCenter, FieldRingCount, FieldInterval, FieldRadialCount}
	case ModeInteractive:
		return []Field{FieldCenter, FieldIntervals, FieldRadialCount}
	}
	return []Field{FieldCenter, FieldInterval, FieldIntervals, FieldRadialCount}
}

func (r *RangeRings) ReadOnly(f Field) bool {
	return f == FieldIntervals && r.mode == ModeInteractive
}

// Radii returns the ring radii in meters, innermost entry first.
func (r *RangeRings) Radii() []float64 {
	switch r.mode {
	case ModeFixed:
		if !r.hasCount || !r.hasIntv || r.interval <= 0 {
			return nil
		}
		out := make([]float64, r.count)
		for i := range out {
			out[i] = float64(i+1) * r.interval
		}
		return out
	case ModeCumulative:
		out := make([]float64, len(r.intervals))
		total := 0.0
		for i, v := range r.intervals {
			total += v
			out[i] = total
		}
		return out
	}
	return slices.Clone(r.intervals)
}

func maxOf(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	return slices.Max(vs)
}

func (r *RangeRings) Value(f Field) (float64, bool) {
	switch f {
	case FieldRingCount:
		if r.mode == ModeFixed {
			return float64(r.count), r.hasCount
		}
		return float64(len(r.intervals)), true
	case FieldRadialCount:
		return float64(r.radials), true
	case FieldInterval:
		if r.mode == ModeFixed {
			return r.lengthOut(r.interval), r.hasIntv
		}
		if n := len(r.intervals); n > 0 {
			return r.lengthOut(r.intervals[n-1]), true
		}
	}
	return 0, false
}

func (r *RangeRings) FieldText(f Field) string {
	switch f {
	case FieldCenter:
		return r.coordinateText(points.P1)
	case FieldIntervals:
		parts := make([]string, len(r.intervals))
		for i, v := range r.intervals {
			parts[i] = formatNumber(r.lengthOut(v))
		}
		return strings.Join(parts, ", ")
	}
	if v, ok := r.Value(f); ok {
		return formatNumber(v)
	}
	return ""
}

func (r *RangeRings) SetField(f Field, text string) error {
	if r.ReadOnly(f) {
		return readOnly(f)
	}
	return r.applied(r.setField(f, text))
}

func (r *RangeRings) setField(f Field, text string) error {
	switch f {
	case FieldCenter:
		return r.setCoordinate(points.P1, text)
	case FieldRingCount:
		if r.mode != ModeFixed {
			return unknownField(f)
		}
		n, empty, err := parseCount(text, 1, MaxRings)
		if err != nil {
			return err
		}
		if !empty && r.hasIntv {
			if err := checkCeiling(float64(n) * r.interval); err != nil {
				return err
			}
		}
		r.count, r.hasCount = n, !empty
	case FieldRadialCount:
		n, empty, err := parseCount(text, 0, MaxRadials)
		if err != nil {
			return err
		}
		if empty {
			n = 0
		}
		r.radials = n
	case FieldInterval:
		m, empty, err := r.lengthIn(text)
		if err != nil {
			return err
		}
		if r.mode == ModeFixed {
			if !empty && r.hasCount {
				if err := checkCeiling(float64(r.count) * m); err != nil {
					return err
				}
			}
			r.interval, r.hasIntv = m, !empty
			return nil
		}
		if empty {
			return nil
		}
		return r.appendInterval(m)
	case FieldIntervals:
		list, err := r.parseIntervals(text)
		if err != nil {
			return err
		}
		r.intervals = list
	default:
		return unknownField(f)
	}
	return nil
}

// parseIntervals reads a comma or space separated list of display lengths.
// The whole list is rejected if any entry is invalid.
func (r *RangeRings) parseIntervals(text string) ([]float64, error) {
	fields := strings.FieldsFunc(text, func(c rune) bool {
		return c == ',' || c == ';' || c == ' ' || c == '\t'
	})
	if len(fields) > MaxRings {
		return nil, fmt.Errorf("%w: at most %d rings", geoerr.ErrInvalidArgument, MaxRings)
	}
	out := make([]float64, 0, len(fields))
	total := 0.0
	for _, s := range fields {
		m, _, err := r.lengthIn(s)
		if err != nil {
			return nil, err
		}
		if m <= 0 {
			return nil, fmt.Errorf("%w: ring interval must be positive", geoerr.ErrInvalidArgument)
		}
		total += m
		if r.mode == ModeCumulative {
			err = checkCeiling(total)
		} else {
			err = checkCeiling(m)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *RangeRings) appendInterval(m float64) error {
	if m <= 0 {
		return fmt.Errorf("%w: ring interval must be positive", geoerr.ErrInvalidArgument)
	}
	if len(r.intervals) >= MaxRings {
		return fmt.Errorf("%w: at most %d rings", geoerr.ErrInvalidArgument, MaxRings)
	}
	next := m
	if r.mode == ModeCumulative {
		next += maxOf(r.Radii())
	}
	if err := checkCeiling(next); err != nil {
		return err
	}
	r.intervals = append(r.intervals, m)
	return nil
}

// AddPoint sets the center. In Fixed mode a ready builder completes on that
// click. In the other modes later clicks add a ring through the click.
func (r *RangeRings) AddPoint(p coord.Point) (bool, error) {
	done, err := r.addPoint(p)
	return done, r.applied(err)
}

func (r *RangeRings) addPoint(p coord.Point) (bool, error) {
	center, ok := r.pts.Get(points.P1)
	if !ok {
		r.floating = nil
		r.pts.Set(points.P1, p)
		return r.mode == ModeFixed && r.CanCreate(), nil
	}
	if r.mode == ModeFixed {
		r.floating = nil
		r.pts.Set(points.P1, p)
		return r.CanCreate(), nil
	}
	d, _, err := r.measure(center, p, geodesy.Geodesic)
	if err != nil {
		return false, err
	}
	if r.mode == ModeCumulative {
		d -= maxOf(r.Radii())
	}
	if err := r.appendInterval(d); err != nil {
		return false, err
	}
	r.floating = nil
	return false, nil
}

func (r *RangeRings) CanCreate() bool {
	if !r.pts.Has(points.P1) || r.radials < 0 {
		return false
	}
	switch r.mode {
	case ModeFixed:
		return r.hasCount && r.count > 0 && r.hasIntv && r.interval > 0
	case ModeOrigin, ModeCumulative:
		return len(r.intervals) > 0
	}
	return true
}

func (r *RangeRings) State() State {
	input := r.pts.Count() > 0 || r.hasCount || r.hasIntv || len(r.intervals) > 0
	return stateOf(r.committed, r.CanCreate(), input)
}

func (r *RangeRings) CanPreview() bool {
	_, ok := r.Preview()
	return ok
}

// Preview returns one ring set request. In the click-driven modes the
// pointer adds a provisional ring.
func (r *RangeRings) Preview() (Request, bool) {
	center, ok := r.pts.Get(points.P1)
	if !ok {
		return Request{}, false
	}
	radii := r.Radii()
	if r.mode != ModeFixed && r.floating != nil {
		if d, _, err := r.measure(center, *r.floating, geodesy.Geodesic); err == nil && d <= MaxRadius && d > maxOf(radii) {
			radii = append(radii, d)
		}
	}
	if maxOf(radii) <= 0 {
		return Request{}, false
	}
	return Request{
		Tool:    r.tool,
		Kind:    graphics.KindRingSet,
		Points:  []coord.Point{center},
		Radii:   radii,
		Radials: r.radials,
	}, true
}

// Commit emits one request per ring and one per radial. Radials are only
// drawn when there is a ring to reach.
func (r *RangeRings) Commit() ([]Request, error) {
	if !r.CanCreate() {
		return nil, fmt.Errorf("%w: range rings need a center and at least one ring", geoerr.ErrPreconditionNotMet)
	}
	center, _ := r.pts.Get(points.P1)
	radii := r.Radii()
	outer := maxOf(radii)
	unit := r.units.Length.Abbrev()

	reqs := make([]Request, 0, len(radii)+r.radials)
	for i, rad := range radii {
		label := fmt.Sprintf("Ring %d: %s %s", i+1, formatNumber(r.lengthOut(rad)), unit)
		reqs = append(reqs, Request{
			Tool:     r.tool,
			Kind:     graphics.KindRing,
			Points:   []coord.Point{center},
			Distance: rad,
			Final:    true,
			Attrs:    r.attributes(graphics.KindRing, label, center, rad, 0, 0, ""),
		})
	}
	if outer > 0 {
		step := 360 / float64(max(r.radials, 1))
		for i := 0; i < r.radials; i++ {
			az := float64(i) * step
			label := fmt.Sprintf("Radial %d: %s%s", i+1, formatNumber(r.angleOut(az)), r.units.Angle.Abbrev())
			reqs = append(reqs, Request{
				Tool:     r.tool,
				Kind:     graphics.KindRadial,
				Points:   []coord.Point{center},
				Distance: outer,
				Azimuth:  az,
				Curve:    geodesy.Geodesic,
				Final:    true,
				Attrs:    r.attributes(graphics.KindRadial, label, center, outer, 0, az, geodesy.Geodesic.String()),
			})
		}
	}
	return reqs, nil
}

// Finish clears the builder after a commit was stored.
func (r *RangeRings) Finish() {
	r.Reset()
	r.committed = true
}

// Reset clears the center and every value. Mode and units are kept.
func (r *RangeRings) Reset() {
	r.count, r.hasCount = 0, false
	r.interval, r.hasIntv = 0, false
	r.intervals = nil
	r.radials = 0
	r.committed = false
	r.clearPoints()
}
