package coord

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"geoshape/internal/geoerr"
)

const garsLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"

var garsRe = regexp.MustCompile(`^(\d{3})([A-HJ-NP-Q])([A-HJ-NP-Z])(?:([1-4])([1-9])?)?$`)

// garsCell is a decoded GARS reference: the south-west corner and size of
// the named cell, both in degrees.
type garsCell struct {
	lat, lon float64
	size     float64
}

func decodeGARS(s string) (garsCell, error) {
	sm := garsRe.FindStringSubmatch(compact(s))
	if sm == nil {
		return garsCell{}, fmt.Errorf("%w: not GARS", geoerr.ErrInvalidCoordinate)
	}
	lonBand, _ := strconv.Atoi(sm[1])
	if lonBand < 1 || lonBand > 720 {
		return garsCell{}, fmt.Errorf("%w: GARS longitude band %03d", geoerr.ErrInvalidCoordinate, lonBand)
	}
	latIdx := indexOf(garsLetters, sm[2][0])*24 + indexOf(garsLetters, sm[3][0])
	if latIdx > 359 {
		return garsCell{}, fmt.Errorf("%w: GARS latitude band %s%s", geoerr.ErrInvalidCoordinate, sm[2], sm[3])
	}
	c := garsCell{lat: -90 + float64(latIdx)*0.5, lon: -180 + float64(lonBand-1)*0.5, size: 0.5}
	if sm[4] != "" {
		q, _ := strconv.Atoi(sm[4])
		// 1 NW, 2 NE, 3 SW, 4 SE
		c.size = 0.25
		if q == 2 || q == 4 {
			c.lon += c.size
		}
		if q == 1 || q == 2 {
			c.lat += c.size
		}
	}
	if sm[5] != "" {
		k, _ := strconv.Atoi(sm[5])
		// keypad 1 is top-left, 9 bottom-right
		c.size = 0.25 / 3
		col := (k - 1) % 3
		row := 2 - (k-1)/3
		c.lon += float64(col) * c.size
		c.lat += float64(row) * c.size
	}
	return c, nil
}

// parseGARS returns the cell centre, or its south-west corner.
func parseGARS(s string, center bool) (Point, error) {
	c, err := decodeGARS(s)
	if err != nil {
		return Point{}, err
	}
	if center {
		return NewPoint(c.lat+c.size/2, c.lon+c.size/2)
	}
	return NewPoint(c.lat, c.lon)
}

func indexOf(set string, b byte) int {
	for i := 0; i < len(set); i++ {
		if set[i] == b {
			return i
		}
	}
	return -1
}

// garsFields encodes p at precision 30, 15 or 5 minutes.
func garsFields(p Point, precision int) (map[string]string, error) {
	if precision != 30 && precision != 15 && precision != 5 {
		return nil, fmt.Errorf("%w: GARS precision must be 30, 15 or 5 minutes", geoerr.ErrInvalidArgument)
	}
	lon, lat := p.Lon, p.Lat
	if lon >= 180 {
		lon = 180 - 1e-9
	}
	if lat >= 90 {
		lat = 90 - 1e-9
	}
	lonIdx := int(math.Floor((lon + 180) * 2))
	latIdx := int(math.Floor((lat + 90) * 2))
	f := map[string]string{
		"LonBand":  fmt.Sprintf("%03d", lonIdx+1),
		"LatBand":  string([]byte{garsLetters[latIdx/24], garsLetters[latIdx%24]}),
		"Quadrant": "",
		"Keypad":   "",
	}
	if precision == 30 {
		return f, nil
	}
	// minutes into the 30' cell
	mx := math.Mod((lon+180)*60, 30)
	my := math.Mod((lat+90)*60, 30)
	qx, qy := int(mx/15), int(my/15)
	f["Quadrant"] = strconv.Itoa(1 + qx + 2*(1-qy))
	if precision == 15 {
		return f, nil
	}
	kx := int(math.Mod(mx, 15) / 5)
	ky := int(math.Mod(my, 15) / 5)
	f["Keypad"] = strconv.Itoa((2-ky)*3 + kx + 1)
	return f, nil
}
