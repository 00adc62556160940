package geodesy

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"geoshape/internal/coord"
	"geoshape/internal/geoerr"
	"geoshape/internal/units"
)

const (
	// DefaultSegments is the vertex count used for circles and ellipses.
	DefaultSegments = 72
	// lineSteps is the number of chords a drawn line is split into.
	lineSteps = 64
)

// Spherical is an Engine on a sphere of radius orb.EarthRadius. Geodesic,
// great elliptic and normal section curves all reduce to great circles.
type Spherical struct {
	Segments int
}

// NewSpherical returns an engine using segments vertices per closed shape.
func NewSpherical(segments int) *Spherical {
	if segments < 3 {
		segments = DefaultSegments
	}
	return &Spherical{Segments: segments}
}

var _ Engine = (*Spherical)(nil)

// normAzimuth folds degrees into [0,360).
func normAzimuth(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func normLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}

func (s *Spherical) destination(p orb.Point, azimuth, meters float64) orb.Point {
	d := geo.PointAtBearingAndDistance(p, azimuth, meters)
	return orb.Point{normLon(d[0]), d[1]}
}

// Circle returns a closed ring of points at radius from center.
func (s *Spherical) Circle(center coord.Point, radius float64, unit units.LengthUnit, segments int) (orb.Ring, error) {
	r, err := units.ToMeters(radius, unit)
	if err != nil {
		return nil, err
	}
	if r <= 0 {
		return nil, fmt.Errorf("%w: circle radius must be positive", geoerr.ErrDegenerateGeometry)
	}
	if segments <= 0 {
		segments = s.Segments
	}
	if segments < 3 {
		return nil, fmt.Errorf("%w: circle needs at least 3 segments", geoerr.ErrInvalidArgument)
	}
	c := center.Orb()
	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		ring = append(ring, s.destination(c, 360*float64(i)/float64(segments), r))
	}
	return append(ring, ring[0]), nil
}

// Ellipse returns a closed ring with the major axis along orientation.
func (s *Spherical) Ellipse(center coord.Point, semiMajor, semiMinor, orientation float64, unit units.LengthUnit) (orb.Ring, error) {
	a, err := units.ToMeters(semiMajor, unit)
	if err != nil {
		return nil, err
	}
	b, err := units.ToMeters(semiMinor, unit)
	if err != nil {
		return nil, err
	}
	if a <= 0 || b <= 0 {
		return nil, fmt.Errorf("%w: ellipse axes must be positive", geoerr.ErrDegenerateGeometry)
	}
	if b > a {
		return nil, fmt.Errorf("%w: minor axis exceeds major axis", geoerr.ErrInvalidArgument)
	}
	c := center.Orb()
	ring := make(orb.Ring, 0, s.Segments+1)
	for i := 0; i < s.Segments; i++ {
		t := 2 * math.Pi * float64(i) / float64(s.Segments)
		x, y := a*math.Cos(t), b*math.Sin(t)
		az := orientation + math.Atan2(y, x)*180/math.Pi
		ring = append(ring, s.destination(c, az, math.Hypot(x, y)))
	}
	return append(ring, ring[0]), nil
}

// Line returns a densified path from one point to another.
func (s *Spherical) Line(from, to coord.Point, curve CurveType) (orb.LineString, error) {
	a, b := from.Orb(), to.Orb()
	if a.Equal(b) {
		return nil, fmt.Errorf("%w: line endpoints coincide", geoerr.ErrDegenerateGeometry)
	}
	line := make(orb.LineString, 0, lineSteps+1)
	if curve == Loxodrome {
		dist, az := rhumbInverse(a, b)
		for i := 0; i <= lineSteps; i++ {
			line = append(line, rhumbDestination(a, az, dist*float64(i)/lineSteps))
		}
		line[len(line)-1] = b
		return line, nil
	}
	for i := 0; i <= lineSteps; i++ {
		line = append(line, greatCircleFraction(a, b, float64(i)/lineSteps))
	}
	return line, nil
}

// Project returns the point distance away from from along azimuth. A
// loxodrome keeps the azimuth for the whole distance.
func (s *Spherical) Project(from coord.Point, azimuth, distance float64, unit units.LengthUnit, curve CurveType) (coord.Point, error) {
	m, err := units.ToMeters(distance, unit)
	if err != nil {
		return coord.Point{}, err
	}
	if err := units.ValidateAzimuth(azimuth, units.Degrees); err != nil {
		return coord.Point{}, err
	}
	if curve == Loxodrome {
		return coord.FromOrb(rhumbDestination(from.Orb(), azimuth, m)), nil
	}
	return coord.FromOrb(s.destination(from.Orb(), azimuth, m)), nil
}

// Length sums the path in unit, measuring along curve.
func (s *Spherical) Length(path orb.LineString, curve CurveType, unit units.LengthUnit) (float64, error) {
	if len(path) < 2 {
		return 0, fmt.Errorf("%w: path needs two points", geoerr.ErrDegenerateGeometry)
	}
	total := 0.0
	for i := 1; i < len(path); i++ {
		if curve == Loxodrome {
			d, _ := rhumbInverse(path[i-1], path[i])
			total += d
		} else {
			total += geo.DistanceHaversine(path[i-1], path[i])
		}
	}
	return units.FromMeters(total, unit)
}

// Azimuth returns the initial bearing of the path in [0,360).
func (s *Spherical) Azimuth(path orb.LineString) (float64, error) {
	if len(path) < 2 || path[0].Equal(path[1]) {
		return 0, fmt.Errorf("%w: path has no direction", geoerr.ErrDegenerateGeometry)
	}
	return normAzimuth(geo.Bearing(path[0], path[1])), nil
}
