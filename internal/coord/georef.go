package coord

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"geoshape/internal/geoerr"
)

const (
	georefLon15 = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	georefLat15 = "ABCDEFGHJKLM"
	georefDeg   = "ABCDEFGHJKLMNPQ"
)

var georefRe = regexp.MustCompile(`^([A-HJ-NP-Z])([A-HJ-M])([A-HJ-NP-Q])([A-HJ-NP-Q])(\d*)$`)

// parseGEOREF returns the centre of the referenced square.
func parseGEOREF(s string) (Point, error) {
	sm := georefRe.FindStringSubmatch(compact(s))
	if sm == nil {
		return Point{}, fmt.Errorf("%w: not GEOREF", geoerr.ErrInvalidCoordinate)
	}
	digits := sm[5]
	if len(digits)%2 != 0 || len(digits) == 2 || len(digits) > 12 {
		return Point{}, fmt.Errorf("%w: GEOREF minute digits %q", geoerr.ErrInvalidCoordinate, digits)
	}
	lon := -180 + float64(indexOf(georefLon15, sm[1][0]))*15 + float64(indexOf(georefDeg, sm[3][0]))
	lat := -90 + float64(indexOf(georefLat15, sm[2][0]))*15 + float64(indexOf(georefDeg, sm[4][0]))
	size := 1.0 // degrees
	if n := len(digits) / 2; n > 0 {
		scale := math.Pow(10, float64(n-2))
		lonMin, _ := strconv.Atoi(digits[:n])
		latMin, _ := strconv.Atoi(digits[n:])
		lm, tm := float64(lonMin)/scale, float64(latMin)/scale
		if lm >= 60 || tm >= 60 {
			return Point{}, fmt.Errorf("%w: GEOREF minutes must be below 60", geoerr.ErrInvalidCoordinate)
		}
		lon += lm / 60
		lat += tm / 60
		size = 1 / scale / 60
	}
	return NewPoint(lat+size/2, lon+size/2)
}

// georefFields encodes p with precision minute digits per axis (0, or 2..6).
func georefFields(p Point, precision int) (map[string]string, error) {
	if precision != 0 && (precision < 2 || precision > 6) {
		return nil, fmt.Errorf("%w: GEOREF precision must be 0 or 2..6", geoerr.ErrInvalidArgument)
	}
	lon := math.Min(p.Lon+180, 360-1e-9)
	lat := math.Min(p.Lat+90, 180-1e-9)
	lonT, latT := int(lon/15), int(lat/15)
	lonD, latD := int(math.Mod(lon, 15)), int(math.Mod(lat, 15))
	f := map[string]string{
		"Tiles":      string([]byte{georefLon15[lonT], georefLat15[latT], georefDeg[lonD], georefDeg[latD]}),
		"LonMinutes": "",
		"LatMinutes": "",
	}
	if precision > 0 {
		scale := math.Pow(10, float64(precision-2))
		lm := int(math.Floor((lon-math.Floor(lon))*60*scale + 1e-6))
		tm := int(math.Floor((lat-math.Floor(lat))*60*scale + 1e-6))
		f["LonMinutes"] = fmt.Sprintf("%0*d", precision, lm)
		f["LatMinutes"] = fmt.Sprintf("%0*d", precision, tm)
	}
	return f, nil
}
