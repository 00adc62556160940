package coord

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"geoshape/internal/geoerr"
)

const (
	mgrsRows = "ABCDEFGHJKLMNPQRSTUV"
	// 100 km blocks repeat every 2,000 km of northing.
	mgrsRowCycle = 2000000.0
)

// column letter sets, by (zone-1) mod 3
var mgrsCols = [3]string{"ABCDEFGH", "JKLMNPQR", "STUVWXYZ"}

// minimum northing of each band, rounded down to 100 km
var mgrsMinNorthing = map[byte]float64{
	'C': 1100000, 'D': 2000000, 'E': 2800000, 'F': 3700000, 'G': 4600000,
	'H': 5500000, 'J': 6400000, 'K': 7300000, 'L': 8200000, 'M': 9100000,
	'N': 0, 'P': 800000, 'Q': 1700000, 'R': 2600000, 'S': 3500000,
	'T': 4400000, 'U': 5300000, 'V': 6200000, 'W': 7000000, 'X': 7900000,
}

// Lettering selects the row-letter offset scheme.
type Lettering int

const (
	// LetteringAA is the modern (WGS84) scheme.
	LetteringAA Lettering = iota
	// LetteringAL is the legacy scheme used on older datums.
	LetteringAL
)

func (l Lettering) rowOffset(zone int) int {
	even := zone%2 == 0
	switch l {
	case LetteringAL:
		if even {
			return 15
		}
		return 10
	default:
		if even {
			return 5
		}
		return 0
	}
}

// mgrsAnchor picks which point of the grid square a reference names.
type mgrsAnchor int

const (
	anchorCorner mgrsAnchor = iota
	anchorCenter
	anchorZone01At180
)

var (
	mgrsCompact = regexp.MustCompile(`^(\d{1,2})([C-HJ-NP-X])([A-HJ-NP-Z])([A-HJ-NP-V])(\d{0,10})$`)
	usngSpaced  = regexp.MustCompile(`^(\d{1,2})([C-HJ-NP-X]) ([A-HJ-NP-Z][A-HJ-NP-V])(?: (\d{1,5}) (\d{1,5}))?$`)
)

type mgrsRef struct {
	zone     int
	band     byte
	col, row byte
	digits   string // easting digits then northing digits
}

func matchMGRS(s string) (mgrsRef, error) {
	sm := mgrsCompact.FindStringSubmatch(compact(s))
	if sm == nil || len(sm[5])%2 != 0 {
		return mgrsRef{}, fmt.Errorf("%w: not MGRS", geoerr.ErrInvalidCoordinate)
	}
	zone, _ := strconv.Atoi(sm[1])
	if zone < 1 || zone > 60 {
		return mgrsRef{}, fmt.Errorf("%w: MGRS zone %d", geoerr.ErrInvalidCoordinate, zone)
	}
	return mgrsRef{zone: zone, band: sm[2][0], col: sm[3][0], row: sm[4][0], digits: sm[5]}, nil
}

// parseMGRS decodes a grid reference with the given lettering and anchor.
func parseMGRS(s string, l Lettering, anchor mgrsAnchor) (Point, error) {
	ref, err := matchMGRS(s)
	if err != nil {
		return Point{}, err
	}
	colIdx := strings.IndexByte(mgrsCols[(ref.zone-1)%3], ref.col)
	if colIdx < 0 {
		return Point{}, fmt.Errorf("%w: column %c not used in zone %d", geoerr.ErrInvalidCoordinate, ref.col, ref.zone)
	}
	rowIdx := strings.IndexByte(mgrsRows, ref.row)
	if rowIdx < 0 {
		return Point{}, fmt.Errorf("%w: row %c", geoerr.ErrInvalidCoordinate, ref.row)
	}

	half := len(ref.digits) / 2
	unit := 100000.0
	east, north := 0.0, 0.0
	if half > 0 {
		unit = math.Pow(10, float64(5-half))
		e, _ := strconv.Atoi(ref.digits[:half])
		n, _ := strconv.Atoi(ref.digits[half:])
		east, north = float64(e)*unit, float64(n)*unit
	}
	if anchor == anchorCenter {
		east += unit / 2
		north += unit / 2
	}

	east += float64(colIdx+1) * 100000
	offset := l.rowOffset(ref.zone)
	north += float64((rowIdx-offset+20)%20) * 100000
	minN, ok := mgrsMinNorthing[ref.band]
	if !ok {
		return Point{}, fmt.Errorf("%w: band %c", geoerr.ErrInvalidCoordinate, ref.band)
	}
	for north < minN {
		north += mgrsRowCycle
	}

	u := utmCoord{Zone: ref.zone, North: ref.band >= 'N', Easting: east, Northing: north}
	p, err := fromUTM(u)
	if err != nil {
		return Point{}, err
	}
	// the square must actually sit in the named band
	check := u
	if anchor != anchorCenter {
		check.Easting += unit / 2
		check.Northing += unit / 2
	}
	if c, err := fromUTM(check); err != nil || !bandContains(ref.band, c.Lat) {
		return Point{}, fmt.Errorf("%w: square %c%c outside band %c", geoerr.ErrInvalidCoordinate, ref.col, ref.row, ref.band)
	}
	if anchor == anchorZone01At180 {
		if ref.zone != 1 {
			return Point{}, fmt.Errorf("%w: antimeridian form requires zone 1", geoerr.ErrInvalidCoordinate)
		}
		if p.Lon <= -180+1e-9 {
			p.Lon = 180
		}
	}
	return p, nil
}

// isUSNGText reports whether s uses the spaced USNG layout.
func isUSNGText(s string) bool { return usngSpaced.MatchString(s) }

func mgrsFields(p Point, precision int, l Lettering) (map[string]string, error) {
	if precision < 0 || precision > 5 {
		return nil, fmt.Errorf("%w: MGRS precision %d outside 0..5", geoerr.ErrInvalidArgument, precision)
	}
	band, err := bandLetter(p.Lat)
	if err != nil {
		return nil, err
	}
	u := toUTM(p, utmZone(p.Lat, p.Lon))
	// truncate to whole meters first so the square and the digits agree
	east := int(gridFloor(u.Easting, 0))
	north := int(gridFloor(u.Northing, 0))
	colIdx := east/100000 - 1
	if colIdx < 0 || colIdx > 7 {
		return nil, fmt.Errorf("%w: easting %d outside MGRS columns", geoerr.ErrInvalidCoordinate, east)
	}
	rowIdx := (north/100000 + l.rowOffset(u.Zone)) % 20

	unit := int(math.Pow(10, float64(5-precision)))
	e := east % 100000 / unit
	n := north % 100000 / unit
	es, ns := "", ""
	if precision > 0 {
		es = fmt.Sprintf("%0*d", precision, e)
		ns = fmt.Sprintf("%0*d", precision, n)
	}
	return map[string]string{
		"Zone":     strconv.Itoa(u.Zone),
		"Band":     string(band),
		"Square":   string([]byte{mgrsCols[(u.Zone-1)%3][colIdx], mgrsRows[rowIdx]}),
		"Easting":  es,
		"Northing": ns,
	}, nil
}
