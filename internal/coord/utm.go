package coord

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"geoshape/internal/geoerr"
)

// WGS84 ellipsoid and UTM constants.
const (
	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563

	utmK0            = 0.9996
	utmFalseEast     = 500000.0
	utmFalseNorth    = 10000000.0
	utmMinLat        = -80.0
	utmMaxLat        = 84.0
	bandLetters      = "CDEFGHJKLMNPQRSTUVWX"
	bandLatTolerance = 0.5

	// gridEpsilon is added, in output units, before a grid value is
	// truncated. It sits far above the projection round-trip error and far
	// below one output unit.
	gridEpsilon = 1e-3
)

// Krüger series coefficients, sixth order in n.
var (
	tmN = wgs84F / (2 - wgs84F)
	tmA = wgs84A / (1 + tmN) * (1 + math.Pow(tmN, 2)/4 + math.Pow(tmN, 4)/64 + math.Pow(tmN, 6)/256)
	tmE = 2 * math.Sqrt(tmN) / (1 + tmN)

	tmAlpha = krueger([6][6]float64{
		{1.0 / 2, -2.0 / 3, 5.0 / 16, 41.0 / 180, -127.0 / 288, 7891.0 / 37800},
		{0, 13.0 / 48, -3.0 / 5, 557.0 / 1440, 281.0 / 630, -1983433.0 / 1935360},
		{0, 0, 61.0 / 240, -103.0 / 140, 15061.0 / 26880, 167603.0 / 181440},
		{0, 0, 0, 49561.0 / 161280, -179.0 / 168, 6601661.0 / 7257600},
		{0, 0, 0, 0, 34729.0 / 80640, -3418889.0 / 1995840},
		{0, 0, 0, 0, 0, 212378941.0 / 319334400},
	})
	tmBeta = krueger([6][6]float64{
		{1.0 / 2, -2.0 / 3, 37.0 / 96, -1.0 / 360, -81.0 / 512, 96199.0 / 604800},
		{0, 1.0 / 48, 1.0 / 15, -437.0 / 1440, 46.0 / 105, -1118711.0 / 3870720},
		{0, 0, 17.0 / 480, -37.0 / 840, -209.0 / 4480, 5569.0 / 90720},
		{0, 0, 0, 4397.0 / 161280, -11.0 / 504, -830251.0 / 7257600},
		{0, 0, 0, 0, 4583.0 / 161280, -108847.0 / 3991680},
		{0, 0, 0, 0, 0, 20648693.0 / 638668800},
	})
)

// krueger evaluates each row as a polynomial in tmN, lowest power first.
func krueger(rows [6][6]float64) [6]float64 {
	var out [6]float64
	for j, row := range rows {
		for k, c := range row {
			out[j] += c * math.Pow(tmN, float64(k+1))
		}
	}
	return out
}

// gridFloor truncates v to a multiple of 10^-precision.
func gridFloor(v float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	return math.Floor(v*scale+gridEpsilon) / scale
}

// utmCoord is a projected UTM position.
type utmCoord struct {
	Zone     int
	North    bool
	Easting  float64
	Northing float64
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
func rad2deg(r float64) float64 { return r * 180 / math.Pi }

func centralMeridian(zone int) float64 { return float64(zone-1)*6 - 180 + 3 }

// utmZone returns the zone for a position including the Norway and
// Svalbard exceptions. Longitude 180 falls in zone 60.
func utmZone(lat, lon float64) int {
	z := int(math.Floor((lon+180)/6)) + 1
	if z > 60 {
		z = 60
	}
	if z < 1 {
		z = 1
	}
	if lat >= 56 && lat < 64 && lon >= 3 && lon < 12 {
		return 32
	}
	if lat >= 72 && lat < 84 {
		switch {
		case lon >= 0 && lon < 9:
			return 31
		case lon >= 9 && lon < 21:
			return 33
		case lon >= 21 && lon < 33:
			return 35
		case lon >= 33 && lon < 42:
			return 37
		}
	}
	return z
}

// bandLetter returns the latitude band for lat in [-80, 84].
func bandLetter(lat float64) (byte, error) {
	if lat < utmMinLat || lat > utmMaxLat {
		return 0, fmt.Errorf("%w: latitude %g outside UTM coverage", geoerr.ErrInvalidCoordinate, lat)
	}
	i := int(math.Floor((lat - utmMinLat) / 8))
	if i > len(bandLetters)-1 {
		i = len(bandLetters) - 1
	}
	return bandLetters[i], nil
}

// bandRange returns the latitude span of a band letter.
func bandRange(b byte) (lo, hi float64, ok bool) {
	i := strings.IndexByte(bandLetters, b)
	if i < 0 {
		return 0, 0, false
	}
	lo = utmMinLat + float64(i)*8
	hi = lo + 8
	if b == 'X' {
		hi = utmMaxLat
	}
	return lo, hi, true
}

func bandContains(b byte, lat float64) bool {
	lo, hi, ok := bandRange(b)
	return ok && lat >= lo-bandLatTolerance && lat <= hi+bandLatTolerance
}

// toUTM projects p into the given zone.
func toUTM(p Point, zone int) utmCoord {
	phi := deg2rad(p.Lat)
	dLam := deg2rad(p.Lon - centralMeridian(zone))
	if dLam > math.Pi {
		dLam -= 2 * math.Pi
	} else if dLam < -math.Pi {
		dLam += 2 * math.Pi
	}

	sinPhi := math.Sin(phi)
	t := math.Sinh(math.Atanh(sinPhi) - tmE*math.Atanh(tmE*sinPhi))
	xiP := math.Atan2(t, math.Cos(dLam))
	etaP := math.Atanh(math.Sin(dLam) / math.Sqrt(1+t*t))

	xi, eta := xiP, etaP
	for j := 1; j <= len(tmAlpha); j++ {
		a := tmAlpha[j-1]
		xi += a * math.Sin(2*float64(j)*xiP) * math.Cosh(2*float64(j)*etaP)
		eta += a * math.Cos(2*float64(j)*xiP) * math.Sinh(2*float64(j)*etaP)
	}

	u := utmCoord{
		Zone:     zone,
		North:    p.Lat >= 0,
		Easting:  utmFalseEast + utmK0*tmA*eta,
		Northing: utmK0 * tmA * xi,
	}
	if !u.North {
		u.Northing += utmFalseNorth
	}
	return u
}

// fromUTM inverts toUTM.
func fromUTM(u utmCoord) (Point, error) {
	if u.Zone < 1 || u.Zone > 60 {
		return Point{}, fmt.Errorf("%w: UTM zone %d", geoerr.ErrInvalidCoordinate, u.Zone)
	}
	if u.Easting <= 0 || u.Easting >= 1000000 || u.Northing < 0 || u.Northing > utmFalseNorth {
		return Point{}, fmt.Errorf("%w: UTM easting/northing out of range", geoerr.ErrInvalidCoordinate)
	}
	n := u.Northing
	if !u.North {
		n -= utmFalseNorth
	}
	xi := n / (utmK0 * tmA)
	eta := (u.Easting - utmFalseEast) / (utmK0 * tmA)

	xiP, etaP := xi, eta
	for j := 1; j <= len(tmBeta); j++ {
		b := tmBeta[j-1]
		xiP -= b * math.Sin(2*float64(j)*xi) * math.Cosh(2*float64(j)*eta)
		etaP -= b * math.Cos(2*float64(j)*xi) * math.Sinh(2*float64(j)*eta)
	}
	tauP := math.Sin(xiP) / math.Sqrt(math.Sinh(etaP)*math.Sinh(etaP)+math.Cos(xiP)*math.Cos(xiP))
	phi := math.Atan(conformalInverse(tauP))
	lon := centralMeridian(u.Zone) + rad2deg(math.Atan2(math.Sinh(etaP), math.Cos(xiP)))
	if lon > 180 {
		lon -= 360
	} else if lon < -180 {
		lon += 360
	}
	return NewPoint(rad2deg(phi), lon)
}

// conformalInverse returns tan(phi) for the conformal tan(chi) tauP, by
// Newton iteration.
func conformalInverse(tauP float64) float64 {
	e2 := tmE * tmE
	tau := tauP
	for i := 0; i < 16; i++ {
		sigma := math.Sinh(tmE * math.Atanh(tmE*tau/math.Sqrt(1+tau*tau)))
		ti := tau*math.Sqrt(1+sigma*sigma) - sigma*math.Sqrt(1+tau*tau)
		d := (tauP - ti) / math.Sqrt(1+ti*ti) * (1 + (1-e2)*tau*tau) / ((1 - e2) * math.Sqrt(1+tau*tau))
		tau += d
		if math.Abs(d) < 1e-14 {
			break
		}
	}
	return tau
}

// UTM text grammars: zone, band or hemisphere letter, easting, northing,
// with or without E/N unit suffixes.
var (
	utmSuffixed = regexp.MustCompile(`^(\d{1,2})\s*([A-Z])[\s,;:/\\]*(\d+(?:\.\d+)?)\s*M?\s*E[\s,;:/\\]*(\d+(?:\.\d+)?)\s*M?\s*N$`)
	utmPlain    = regexp.MustCompile(`^(\d{1,2})\s*([A-Z])[\s,;:/\\]+(\d+(?:\.\d+)?)\s*M?[\s,;:/\\]+(\d+(?:\.\d+)?)\s*M?$`)
)

type utmVariant struct {
	hemisphere bool // letter is N/S rather than a band
	re         *regexp.Regexp
}

var utmVariants = []utmVariant{
	{false, utmSuffixed},
	{false, utmPlain},
	{true, utmSuffixed},
	{true, utmPlain},
}

func parseUTMVariant(v utmVariant, s string) (Point, error) {
	sm := v.re.FindStringSubmatch(s)
	if sm == nil {
		return Point{}, fmt.Errorf("%w: not UTM", geoerr.ErrInvalidCoordinate)
	}
	zone, _ := strconv.Atoi(sm[1])
	letter := sm[2][0]
	east, _ := strconv.ParseFloat(sm[3], 64)
	north, _ := strconv.ParseFloat(sm[4], 64)
	u := utmCoord{Zone: zone, Easting: east, Northing: north}
	if v.hemisphere {
		switch letter {
		case 'N':
			u.North = true
		case 'S':
		default:
			return Point{}, fmt.Errorf("%w: hemisphere %c", geoerr.ErrInvalidCoordinate, letter)
		}
	} else {
		if _, _, ok := bandRange(letter); !ok {
			return Point{}, fmt.Errorf("%w: band %c", geoerr.ErrInvalidCoordinate, letter)
		}
		u.North = letter >= 'N'
	}
	p, err := fromUTM(u)
	if err != nil {
		return Point{}, err
	}
	if !v.hemisphere && !bandContains(letter, p.Lat) {
		return Point{}, fmt.Errorf("%w: latitude %.4f not in band %c", geoerr.ErrInvalidCoordinate, p.Lat, letter)
	}
	if p.Lat < utmMinLat-bandLatTolerance || p.Lat > utmMaxLat+bandLatTolerance {
		return Point{}, fmt.Errorf("%w: latitude %g outside UTM coverage", geoerr.ErrInvalidCoordinate, p.Lat)
	}
	return p, nil
}

func utmFields(p Point, precision int) (map[string]string, error) {
	if p.Lat < utmMinLat || p.Lat > utmMaxLat {
		return nil, fmt.Errorf("%w: latitude %g outside UTM coverage", geoerr.ErrInvalidCoordinate, p.Lat)
	}
	band, err := bandLetter(p.Lat)
	if err != nil {
		return nil, err
	}
	u := toUTM(p, utmZone(p.Lat, p.Lon))
	hem := "N"
	if !u.North {
		hem = "S"
	}
	// truncated toward the grid origin
	e := gridFloor(u.Easting, precision)
	n := gridFloor(u.Northing, precision)
	return map[string]string{
		"Zone":       strconv.Itoa(u.Zone),
		"Band":       string(band),
		"Hemisphere": hem,
		"Easting":    strconv.FormatFloat(e, 'f', precision, 64),
		"Northing":   strconv.FormatFloat(n, 'f', precision, 64),
	}, nil
}
