package feedback

import (
	"fmt"

	"github.com/paulmach/orb"

	"geoshape/internal/coord"
	"geoshape/internal/geodesy"
	"geoshape/internal/graphics"
	"geoshape/internal/shape"
	"geoshape/internal/units"
)

// Realize asks the engine for the geometry a request describes.
func Realize(e geodesy.Engine, req shape.Request) (graphics.Geometry, error) {
	g := graphics.Geometry{Kind: req.Kind}
	if len(req.Points) == 0 {
		return g, fmt.Errorf("realize %s: no points", req.Kind)
	}
	origin := req.Points[0]

	switch req.Kind {
	case graphics.KindPoint:
		g.Paths = orb.MultiLineString{{origin.Orb()}}
	case graphics.KindLine:
		if len(req.Points) < 2 {
			return g, fmt.Errorf("realize line: need two points")
		}
		line, err := e.Line(origin, req.Points[1], req.Curve)
		if err != nil {
			return g, fmt.Errorf("realize line: %w", err)
		}
		g.Paths = orb.MultiLineString{line}
	case graphics.KindCircle, graphics.KindRing:
		ring, err := e.Circle(origin, req.Distance, units.Meters, 0)
		if err != nil {
			return g, fmt.Errorf("realize %s: %w", req.Kind, err)
		}
		g.Paths = orb.MultiLineString{orb.LineString(ring)}
	case graphics.KindEllipse:
		ring, err := e.Ellipse(origin, req.Distance, req.Minor, req.Azimuth, units.Meters)
		if err != nil {
			return g, fmt.Errorf("realize ellipse: %w", err)
		}
		g.Paths = orb.MultiLineString{orb.LineString(ring)}
	case graphics.KindRadial:
		line, err := radial(e, origin, req.Azimuth, req.Distance, req.Curve)
		if err != nil {
			return g, fmt.Errorf("realize radial: %w", err)
		}
		g.Paths = orb.MultiLineString{line}
	case graphics.KindRingSet:
		outer := 0.0
		for _, r := range req.Radii {
			ring, err := e.Circle(origin, r, units.Meters, 0)
			if err != nil {
				return g, fmt.Errorf("realize ring %g: %w", r, err)
			}
			g.Paths = append(g.Paths, orb.LineString(ring))
			outer = max(outer, r)
		}
		if outer > 0 && req.Radials > 0 {
			step := 360 / float64(req.Radials)
			for i := 0; i < req.Radials; i++ {
				line, err := radial(e, origin, float64(i)*step, outer, geodesy.Geodesic)
				if err != nil {
					return g, fmt.Errorf("realize radial %d: %w", i, err)
				}
				g.Paths = append(g.Paths, line)
			}
		}
	default:
		return g, fmt.Errorf("realize: unknown kind %s", req.Kind)
	}
	return g, nil
}

func radial(e geodesy.Engine, center coord.Point, azimuth, meters float64, curve geodesy.CurveType) (orb.LineString, error) {
	end, err := e.Project(center, azimuth, meters, units.Meters, curve)
	if err != nil {
		return nil, err
	}
	return e.Line(center, end, curve)
}
