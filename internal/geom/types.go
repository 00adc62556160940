package geom

import (
	"fmt"

	"github.com/paulmach/orb"

	"geoshape/internal/graphics"
)

// Overlay is reference geometry loaded from a file and drawn beneath the
// shapes being built.
type Overlay struct {
	Name     string
	Points   []orb.Point
	Lines    []orb.LineString
	Polygons []orb.Polygon
}

// Empty reports whether the overlay holds no geometry.
func (o *Overlay) Empty() bool {
	return len(o.Points)+len(o.Lines)+len(o.Polygons) == 0
}

// Bound returns the extent of everything in the overlay.
func (o *Overlay) Bound() orb.Bound {
	var c orb.Collection
	for _, p := range o.Points {
		c = append(c, p)
	}
	for _, l := range o.Lines {
		c = append(c, l)
	}
	for _, p := range o.Polygons {
		c = append(c, p)
	}
	return c.Bound()
}

// Summary is a short count line for status bars.
func (o *Overlay) Summary() string {
	return fmt.Sprintf("pts=%d ls=%d poly=%d", len(o.Points), len(o.Lines), len(o.Polygons))
}

// Geometry flattens the overlay into drawable paths. Points become
// single-vertex paths and polygons contribute every ring.
func (o *Overlay) Geometry() graphics.Geometry {
	g := graphics.Geometry{Kind: graphics.KindLine}
	for _, p := range o.Points {
		g.Paths = append(g.Paths, orb.LineString{p})
	}
	for _, l := range o.Lines {
		g.Paths = append(g.Paths, l)
	}
	for _, p := range o.Polygons {
		for _, r := range p {
			g.Paths = append(g.Paths, orb.LineString(r))
		}
	}
	return g
}

// add sorts any orb geometry into the overlay's buckets.
func (o *Overlay) add(g orb.Geometry) {
	switch t := g.(type) {
	case nil:
	case orb.Point:
		o.Points = append(o.Points, t)
	case orb.MultiPoint:
		o.Points = append(o.Points, t...)
	case orb.LineString:
		if len(t) > 0 {
			o.Lines = append(o.Lines, t)
		}
	case orb.MultiLineString:
		for _, l := range t {
			o.add(l)
		}
	case orb.Ring:
		o.Polygons = append(o.Polygons, orb.Polygon{t})
	case orb.Polygon:
		if len(t) > 0 {
			o.Polygons = append(o.Polygons, t)
		}
	case orb.MultiPolygon:
		for _, p := range t {
			o.add(p)
		}
	case orb.Collection:
		for _, c := range t {
			o.add(c)
		}
	case orb.Bound:
		o.Polygons = append(o.Polygons, t.ToPolygon())
	}
}
