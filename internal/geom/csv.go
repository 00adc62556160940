package geom

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"

	"geoshape/internal/coord"
)

var (
	latColumns   = []string{"lat", "latitude", "y"}
	lonColumns   = []string{"lon", "lng", "long", "longitude", "x"}
	coordColumns = []string{"coordinate", "coordinates", "coord", "position", "location", "origin", "mgrs", "usng", "utm", "gars", "georef"}
)

func column(header []string, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}

// LoadCSV reads points from a CSV with a header row. Either a lat/lon
// column pair or a single coordinate column in any notation the codec
// understands is accepted. Rows that do not parse are skipped.
func LoadCSV(r io.Reader, codec *coord.Codec) (*Overlay, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	if len(recs) == 0 {
		return nil, errors.New("csv: empty file")
	}
	header := recs[0]
	idxLat, idxLon := column(header, latColumns), column(header, lonColumns)
	idxCoord := column(header, coordColumns)
	if (idxLat == -1 || idxLon == -1) && idxCoord == -1 {
		return nil, errors.New("csv: no latitude/longitude or coordinate column")
	}
	if codec == nil {
		codec, _ = coord.NewCodec()
	}

	o := &Overlay{}
	for _, row := range recs[1:] {
		var (
			p   coord.Point
			err error
		)
		if idxLat != -1 && idxLon != -1 {
			p, err = latLonCells(row, idxLat, idxLon)
		} else {
			p, err = coordCell(row, idxCoord, codec)
		}
		if err != nil {
			continue
		}
		o.Points = append(o.Points, p.Orb())
	}
	if len(o.Points) == 0 {
		return nil, errors.New("csv: no valid points parsed")
	}
	return o, nil
}

func latLonCells(row []string, lat, lon int) (coord.Point, error) {
	if lat >= len(row) || lon >= len(row) {
		return coord.Point{}, errors.New("short row")
	}
	y, err1 := strconv.ParseFloat(strings.TrimSpace(row[lat]), 64)
	x, err2 := strconv.ParseFloat(strings.TrimSpace(row[lon]), 64)
	if err1 != nil || err2 != nil {
		return coord.Point{}, errors.New("not a number")
	}
	return coord.NewPoint(y, x)
}

func coordCell(row []string, i int, codec *coord.Codec) (coord.Point, error) {
	if i >= len(row) {
		return coord.Point{}, errors.New("short row")
	}
	return codec.Parse(row[i])
}

// WriteCSV writes one row per feature: the attribute columns followed by
// the geometry as WKT.
func WriteCSV(w io.Writer, features []Feature) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, Columns...), "wkt")); err != nil {
		return err
	}
	for _, f := range features {
		if err := cw.Write(append(f.Values(), wkt.MarshalString(f.Geometry))); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
