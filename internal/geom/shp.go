package geom

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// dBASE field names are limited to ten characters.
var shpFields = []shp.Field{
	shp.StringField("ID", 36),
	shp.StringField("TOOL", 16),
	shp.StringField("KIND", 10),
	shp.StringField("LABEL", 80),
	shp.StringField("ORIGIN", 60),
	shp.FloatField("DISTANCE", 18, 6),
	shp.FloatField("MINOR", 18, 6),
	shp.FloatField("AZIMUTH", 18, 6),
	shp.StringField("LENUNIT", 8),
	shp.StringField("ANGUNIT", 8),
	shp.StringField("CURVE", 16),
	shp.StringField("CREATED", 25),
}

// WriteShapefile writes areas to <base>_areas.shp and lines to
// <base>_lines.shp, creating only the files that have features. It
// returns the .shp paths written.
func WriteShapefile(base string, features []Feature) ([]string, error) {
	var areas, lines []Feature
	for _, f := range features {
		switch f.Geometry.(type) {
		case orb.Polygon:
			areas = append(areas, f)
		case orb.LineString, orb.MultiLineString:
			lines = append(lines, f)
		default:
			return nil, fmt.Errorf("shp: unsupported geometry %s", f.Geometry.GeoJSONType())
		}
	}

	var written []string
	if len(areas) > 0 {
		p := base + "_areas.shp"
		if err := writeShp(p, shp.POLYGON, areas); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	if len(lines) > 0 {
		p := base + "_lines.shp"
		if err := writeShp(p, shp.POLYLINE, lines); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}

func writeShp(path string, t shp.ShapeType, features []Feature) error {
	w, err := shp.Create(path, t)
	if err != nil {
		return fmt.Errorf("shp: %w", err)
	}
	defer w.Close()
	if err := w.SetFields(shpFields); err != nil {
		return fmt.Errorf("shp fields: %w", err)
	}

	for _, f := range features {
		parts := shpParts(f.Geometry)
		var row int32
		if t == shp.POLYGON {
			poly := shp.Polygon(*shp.NewPolyLine(parts))
			row = w.Write(&poly)
		} else {
			row = w.Write(shp.NewPolyLine(parts))
		}
		if err := writeAttributes(w, int(row), f); err != nil {
			return err
		}
	}
	return nil
}

func writeAttributes(w *shp.Writer, row int, f Feature) error {
	a := f.Attrs
	vals := []any{
		a.ID.String(), a.Tool, a.Kind, a.Label, a.Origin,
		a.Distance, a.Minor, a.Azimuth,
		a.LengthUnit, a.AngleUnit, a.Curve, a.Created.Format(time.RFC3339),
	}
	for i, v := range vals {
		if err := w.WriteAttribute(row, i, v); err != nil {
			return fmt.Errorf("shp attribute %s: %w", Columns[i], err)
		}
	}
	return nil
}

func shpParts(g orb.Geometry) [][]shp.Point {
	conv := func(ls []orb.Point) []shp.Point {
		out := make([]shp.Point, len(ls))
		for i, p := range ls {
			out[i] = shp.Point{X: p.Lon(), Y: p.Lat()}
		}
		return out
	}
	switch t := g.(type) {
	case orb.Polygon:
		parts := make([][]shp.Point, len(t))
		for i, r := range t {
			parts[i] = conv(r)
		}
		return parts
	case orb.LineString:
		return [][]shp.Point{conv(t)}
	case orb.MultiLineString:
		parts := make([][]shp.Point, len(t))
		for i, l := range t {
			parts[i] = conv(l)
		}
		return parts
	}
	return nil
}

// LoadShapefile reads points, polylines and polygons from a shapefile.
func LoadShapefile(path string) (*Overlay, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("shp: %w", err)
	}
	defer r.Close()

	o := &Overlay{}
	for r.Next() {
		_, s := r.Shape()
		switch g := s.(type) {
		case *shp.Point:
			o.Points = append(o.Points, orb.Point{g.X, g.Y})
		case *shp.MultiPoint:
			for _, p := range g.Points {
				o.Points = append(o.Points, orb.Point{p.X, p.Y})
			}
		case *shp.PolyLine:
			for _, part := range splitParts(g.Parts, g.Points) {
				o.add(orb.LineString(part))
			}
		case *shp.Polygon:
			var poly orb.Polygon
			for _, part := range splitParts(g.Parts, g.Points) {
				poly = append(poly, orb.Ring(part))
			}
			o.add(poly)
		}
	}
	if o.Empty() {
		return nil, errors.New("shp: no geometry found")
	}
	return o, nil
}

func splitParts(starts []int32, pts []shp.Point) [][]orb.Point {
	out := make([][]orb.Point, 0, len(starts))
	for i, s := range starts {
		end := int32(len(pts))
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		part := make([]orb.Point, 0, end-s)
		for _, p := range pts[s:end] {
			part = append(part, orb.Point{p.X, p.Y})
		}
		out = append(out, part)
	}
	return out
}
