package coord

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"geoshape/internal/geoerr"
)

// mercatorExtent is the half-width of the spherical web-Mercator plane.
const mercatorExtent = 20037508.342789244

var mercatorRe = regexp.MustCompile(`^([-+]?\d+(?:\.\d+)?)\s*M?[\s,;:/\\]+([-+]?\d+(?:\.\d+)?)\s*M?$`)

// parseWebMercator reads "x y" meters on the EPSG:3857 plane.
func parseWebMercator(s string) (Point, error) {
	sm := mercatorRe.FindStringSubmatch(s)
	if sm == nil {
		return Point{}, fmt.Errorf("%w: not web mercator", geoerr.ErrInvalidCoordinate)
	}
	x, _ := strconv.ParseFloat(sm[1], 64)
	y, _ := strconv.ParseFloat(sm[2], 64)
	// both values inside the degree range means a failed lat/lon, not meters
	if math.Abs(x) <= 180 && math.Abs(y) <= 180 {
		return Point{}, fmt.Errorf("%w: %g,%g is not a web mercator position", geoerr.ErrInvalidCoordinate, x, y)
	}
	if math.Abs(x) > mercatorExtent || math.Abs(y) > mercatorExtent {
		return Point{}, fmt.Errorf("%w: web mercator %g,%g outside extent", geoerr.ErrInvalidCoordinate, x, y)
	}
	lon := rad2deg(x / wgs84A)
	lat := rad2deg(math.Atan(math.Sinh(y / wgs84A)))
	return NewPoint(lat, lon)
}
