// Package coord converts between free coordinate text and WGS84 points.
//
// A Codec detects which notation a string is written in, parses it into a
// Point and formats Points back out through per-notation templates. Parsing
// tries a fixed, ordered list of candidate grammars and keeps the first one
// that yields a structurally valid point.
package coord

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"geoshape/internal/geoerr"
)

// Point is an immutable WGS84 position in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewPoint validates lat/lon ranges and returns the point.
func NewPoint(lat, lon float64) (Point, error) {
	p := Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return Point{}, fmt.Errorf("%w: lat=%g lon=%g out of range", geoerr.ErrInvalidCoordinate, lat, lon)
	}
	return p, nil
}

// Valid reports whether the point is within [-90,90] x [-180,180].
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// String renders "lat,lon" with six decimals.
func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
}

// Orb returns the point as an orb.Point (lon, lat order).
func (p Point) Orb() orb.Point { return orb.Point{p.Lon, p.Lat} }

// FromOrb converts an orb.Point (lon, lat) to a Point.
func FromOrb(o orb.Point) Point { return Point{Lat: o.Lat(), Lon: o.Lon()} }

// Format names a coordinate notation.
type Format int

const (
	Unknown Format = iota
	DD
	DDM
	DMS
	MGRS
	USNG
	UTM
	UTMH
	GARS
	GEOREF
	Decimal
)

// Formats lists every concrete notation in display order.
var Formats = []Format{DD, DDM, DMS, MGRS, USNG, UTM, UTMH, GARS, GEOREF, Decimal}

// String returns the notation's short name.
func (f Format) String() string {
	switch f {
	case DD:
		return "DD"
	case DDM:
		return "DDM"
	case DMS:
		return "DMS"
	case MGRS:
		return "MGRS"
	case USNG:
		return "USNG"
	case UTM:
		return "UTM"
	case UTMH:
		return "UTM-H"
	case GARS:
		return "GARS"
	case GEOREF:
		return "GEOREF"
	case Decimal:
		return "Decimal"
	default:
		return "Unknown"
	}
}

// ParseFormat resolves a notation name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	n := strings.ToUpper(strings.TrimSpace(s))
	n = strings.NewReplacer("_", "-", " ", "-").Replace(n)
	switch n {
	case "DD":
		return DD, nil
	case "DDM":
		return DDM, nil
	case "DMS":
		return DMS, nil
	case "MGRS":
		return MGRS, nil
	case "USNG":
		return USNG, nil
	case "UTM":
		return UTM, nil
	case "UTM-H", "UTMH", "UTM-HEMISPHERE":
		return UTMH, nil
	case "GARS":
		return GARS, nil
	case "GEOREF":
		return GEOREF, nil
	case "DECIMAL", "PLAIN", "PLAIN-DECIMAL":
		return Decimal, nil
	}
	return Unknown, fmt.Errorf("%w: unknown notation %q", geoerr.ErrInvalidArgument, s)
}
