package geom

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/paulmach/orb/geojson"
)

// LoadGeoJSON reads a FeatureCollection, a single Feature or a bare
// geometry.
func LoadGeoJSON(r io.Reader) (*Overlay, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("geojson: %w", err)
	}

	o := &Overlay{}
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("geojson: %w", err)
		}
		for _, f := range fc.Features {
			o.add(f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("geojson: %w", err)
		}
		o.add(f.Geometry)
	case "":
		return nil, errors.New("geojson: missing type")
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("geojson: %w", err)
		}
		o.add(g.Geometry())
	}
	if o.Empty() {
		return nil, errors.New("geojson: no geometry found")
	}
	return o, nil
}

// WriteGeoJSON writes features as an indented FeatureCollection.
func WriteGeoJSON(w io.Writer, features []Feature) error {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		gf := geojson.NewFeature(f.Geometry)
		gf.ID = f.Attrs.ID.String()
		gf.Properties = properties(f)
		fc.Append(gf)
	}
	b, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("geojson: %w", err)
	}
	_, err = w.Write(append(b, '\n'))
	return err
}

func properties(f Feature) geojson.Properties {
	a := f.Attrs
	return geojson.Properties{
		"tool":        a.Tool,
		"kind":        a.Kind,
		"label":       a.Label,
		"origin":      a.Origin,
		"distance":    a.Distance,
		"minor":       a.Minor,
		"azimuth":     a.Azimuth,
		"length_unit": a.LengthUnit,
		"angle_unit":  a.AngleUnit,
		"curve":       a.Curve,
		"created":     a.Created.Format(time.RFC3339),
	}
}
