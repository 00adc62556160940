package geom

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlBoundary struct {
	Ring kmlCoords `xml:"LinearRing"`
}

type kmlPolygon struct {
	Outer kmlBoundary   `xml:"outerBoundaryIs"`
	Inner []kmlBoundary `xml:"innerBoundaryIs,omitempty"`
}

type kmlMulti struct {
	Points   []kmlCoords  `xml:"Point"`
	Lines    []kmlCoords  `xml:"LineString"`
	Polygons []kmlPolygon `xml:"Polygon"`
}

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type kmlExtended struct {
	Data []kmlData `xml:"Data"`
}

type kmlPlacemark struct {
	XMLName      xml.Name     `xml:"Placemark"`
	Name         string       `xml:"name,omitempty"`
	ExtendedData *kmlExtended `xml:"ExtendedData,omitempty"`
	Point        *kmlCoords   `xml:"Point,omitempty"`
	LineString   *kmlCoords   `xml:"LineString,omitempty"`
	Polygon      *kmlPolygon  `xml:"Polygon,omitempty"`
	Multi        *kmlMulti    `xml:"MultiGeometry,omitempty"`
}

type kmlDocument struct {
	Name       string         `xml:"name"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlFile struct {
	XMLName  xml.Name    `xml:"kml"`
	NS       string      `xml:"xmlns,attr"`
	Document kmlDocument `xml:"Document"`
}

// LoadKML reads every Placemark, at any depth, and keeps its points,
// lines and polygons. KML tuples are "lon,lat[,alt]"; altitude is ignored.
func LoadKML(r io.Reader) (*Overlay, error) {
	dec := xml.NewDecoder(r)
	o := &Overlay{}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("kml: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}
		var pm kmlPlacemark
		if err := dec.DecodeElement(&pm, &se); err != nil {
			return nil, fmt.Errorf("kml: %w", err)
		}
		pm.addTo(o)
	}
	if o.Empty() {
		return nil, errors.New("kml: no geometry found")
	}
	return o, nil
}

func (pm kmlPlacemark) addTo(o *Overlay) {
	if pm.Point != nil {
		o.add(orb.MultiPoint(parseTuples(pm.Point.Coordinates)))
	}
	if pm.LineString != nil {
		o.add(orb.LineString(parseTuples(pm.LineString.Coordinates)))
	}
	if pm.Polygon != nil {
		o.add(pm.Polygon.polygon())
	}
	if pm.Multi != nil {
		for _, p := range pm.Multi.Points {
			o.add(orb.MultiPoint(parseTuples(p.Coordinates)))
		}
		for _, l := range pm.Multi.Lines {
			o.add(orb.LineString(parseTuples(l.Coordinates)))
		}
		for _, p := range pm.Multi.Polygons {
			o.add(p.polygon())
		}
	}
}

func (p kmlPolygon) polygon() orb.Polygon {
	outer := orb.Ring(parseTuples(p.Outer.Ring.Coordinates))
	if len(outer) == 0 {
		return nil
	}
	poly := orb.Polygon{outer}
	for _, in := range p.Inner {
		poly = append(poly, orb.Ring(parseTuples(in.Ring.Coordinates)))
	}
	return poly
}

// parseTuples splits whitespace separated "lon,lat[,alt]" tuples,
// skipping malformed ones.
func parseTuples(s string) []orb.Point {
	var out []orb.Point
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, orb.Point{lon, lat})
	}
	return out
}

func formatTuples(pts []orb.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = strconv.FormatFloat(p.Lon(), 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat(), 'f', -1, 64)
	}
	return strings.Join(parts, " ")
}

// WriteKML writes one Placemark per feature, attributes as ExtendedData.
func WriteKML(w io.Writer, name string, features []Feature) error {
	doc := kmlFile{
		NS:       "http://www.opengis.net/kml/2.2",
		Document: kmlDocument{Name: name},
	}
	for _, f := range features {
		pm := kmlPlacemark{Name: f.Attrs.Label, ExtendedData: &kmlExtended{}}
		for i, v := range f.Values() {
			pm.ExtendedData.Data = append(pm.ExtendedData.Data, kmlData{Name: Columns[i], Value: v})
		}
		switch g := f.Geometry.(type) {
		case orb.Point:
			pm.Point = &kmlCoords{Coordinates: formatTuples([]orb.Point{g})}
		case orb.LineString:
			pm.LineString = &kmlCoords{Coordinates: formatTuples(g)}
		case orb.Polygon:
			pm.Polygon = &kmlPolygon{Outer: kmlBoundary{Ring: kmlCoords{Coordinates: formatTuples(g[0])}}}
		case orb.MultiLineString:
			pm.Multi = &kmlMulti{}
			for _, l := range g {
				pm.Multi.Lines = append(pm.Multi.Lines, kmlCoords{Coordinates: formatTuples(l)})
			}
		default:
			return fmt.Errorf("kml: unsupported geometry %s", f.Geometry.GeoJSONType())
		}
		doc.Document.Placemarks = append(doc.Document.Placemarks, pm)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("kml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
