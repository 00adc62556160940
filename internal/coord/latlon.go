package coord

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"geoshape/internal/geoerr"
)

// Angle component grammars. Degrees carry the sign; minutes and seconds
// are unsigned.
const (
	reDD  = `([-+]?\d+(?:\.\d+)?)(?:\s*°)?`
	reDDM = `([-+]?\d+)\s*(?:°\s*|[\s:]+)(\d+(?:\.\d+)?)(?:\s*')?`
	reDMS = `([-+]?\d+)\s*(?:°\s*|[\s:]+)(\d+)\s*(?:'\s*|[\s:]+)(\d+(?:\.\d+)?)(?:\s*")?`
	reSep = `(\s*[,;:/\\]\s*|\s+|)`
	reHem = `([NSEW])`
)

// angleGrammar matches a pair of angles written with hemisphere letters
// trailing (or absent) and, separately, leading.
type angleGrammar struct {
	format   Format
	parts    int
	trailing *regexp.Regexp
	leading  *regexp.Regexp
}

func newAngleGrammar(f Format, body string, parts int) angleGrammar {
	return angleGrammar{
		format:   f,
		parts:    parts,
		trailing: regexp.MustCompile(`^` + body + `(?:\s*` + reHem + `)?` + reSep + body + `(?:\s*` + reHem + `)?$`),
		leading:  regexp.MustCompile(`^` + reHem + `\s*` + body + reSep + reHem + `\s*` + body + `$`),
	}
}

var (
	ddGrammar  = newAngleGrammar(DD, reDD, 1)
	ddmGrammar = newAngleGrammar(DDM, reDDM, 2)
	dmsGrammar = newAngleGrammar(DMS, reDMS, 3)
)

// angleMatch is one matched pair before hemisphere resolution.
type angleMatch struct {
	vals    [2][]string
	hems    [2]string
	hasHint bool // hemisphere letter or degree glyph present
}

func (g angleGrammar) match(s string) (angleMatch, bool) {
	var m angleMatch
	if sm := g.trailing.FindStringSubmatch(s); sm != nil {
		// 1..parts, hem, sep, parts.., hem
		m.vals[0] = sm[1 : 1+g.parts]
		m.hems[0] = sm[1+g.parts]
		sep := sm[2+g.parts]
		m.vals[1] = sm[3+g.parts : 3+2*g.parts]
		m.hems[1] = sm[3+2*g.parts]
		if sep == "" && m.hems[0] == "" {
			return m, false
		}
	} else if sm := g.leading.FindStringSubmatch(s); sm != nil {
		// hem, 1..parts, sep, hem, parts..
		m.hems[0] = sm[1]
		m.vals[0] = sm[2 : 2+g.parts]
		m.hems[1] = sm[3+g.parts]
		m.vals[1] = sm[4+g.parts : 4+2*g.parts]
	} else {
		return m, false
	}
	m.hasHint = m.hems[0] != "" || m.hems[1] != "" || strings.ContainsAny(s, `°'"`)
	return m, true
}

// angleValue combines degree/minute/second strings into signed degrees.
func angleValue(parts []string) (float64, error) {
	deg, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, err
	}
	neg := strings.HasPrefix(parts[0], "-")
	total := math.Abs(deg)
	div := 60.0
	for _, p := range parts[1:] {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, err
		}
		if v >= 60 {
			return 0, fmt.Errorf("%w: minutes/seconds %g must be below 60", geoerr.ErrInvalidCoordinate, v)
		}
		total += v / div
		div *= 60
	}
	if neg {
		total = -total
	}
	return total, nil
}

func isLatHem(h string) bool { return h == "N" || h == "S" }

// resolve applies hemisphere letters and lat/lon ordering to a match.
func (m angleMatch) resolve() (Point, error) {
	var v [2]float64
	for i := range v {
		x, err := angleValue(m.vals[i])
		if err != nil {
			return Point{}, err
		}
		if m.hems[i] != "" && strings.ContainsAny(m.vals[i][0][:1], "+-") {
			return Point{}, fmt.Errorf("%w: sign combined with hemisphere letter", geoerr.ErrInvalidCoordinate)
		}
		if m.hems[i] == "S" || m.hems[i] == "W" {
			x = -x
		}
		v[i] = x
	}
	h0, h1 := m.hems[0], m.hems[1]
	swap := false
	switch {
	case h0 != "" && h1 != "":
		if isLatHem(h0) == isLatHem(h1) {
			return Point{}, fmt.Errorf("%w: hemisphere letters %s and %s name the same axis", geoerr.ErrInvalidCoordinate, h0, h1)
		}
		swap = !isLatHem(h0)
	case h0 != "":
		swap = !isLatHem(h0)
	case h1 != "":
		swap = isLatHem(h1)
	}
	if swap {
		v[0], v[1] = v[1], v[0]
	}
	return NewPoint(v[0], v[1])
}

// parseAngles tries grammar g on normalized text.
func parseAngles(g angleGrammar, s string) (Point, bool, error) {
	m, ok := g.match(s)
	if !ok {
		return Point{}, false, fmt.Errorf("%w: not %s", geoerr.ErrInvalidCoordinate, g.format)
	}
	p, err := m.resolve()
	return p, m.hasHint, err
}

// latLonFields holds the template values for the angle notations.
func latLonFields(p Point, f Format, precision int) map[string]string {
	lat, lon := p.Lat, p.Lon
	if roundsToZero(lat, f, precision) {
		lat = 0
	}
	if roundsToZero(lon, f, precision) {
		lon = 0
	}
	latHem, lonHem := "N", "E"
	if lat < 0 {
		latHem = "S"
	}
	if lon < 0 {
		lonHem = "W"
	}
	fields := map[string]string{
		"Lat":    strconv.FormatFloat(lat, 'f', precision, 64),
		"Lon":    strconv.FormatFloat(lon, 'f', precision, 64),
		"LatAbs": strconv.FormatFloat(math.Abs(p.Lat), 'f', precision, 64),
		"LonAbs": strconv.FormatFloat(math.Abs(p.Lon), 'f', precision, 64),
		"LatHem": latHem,
		"LonHem": lonHem,
	}
	switch f {
	case DDM:
		for _, ax := range []struct {
			name string
			v    float64
		}{{"Lat", p.Lat}, {"Lon", p.Lon}} {
			d, m := splitMinutes(math.Abs(ax.v), precision)
			fields[ax.name+"Deg"] = strconv.Itoa(d)
			fields[ax.name+"Min"] = padFloat(m, precision)
		}
	case DMS:
		for _, ax := range []struct {
			name string
			v    float64
		}{{"Lat", p.Lat}, {"Lon", p.Lon}} {
			d, m, s := splitSeconds(math.Abs(ax.v), precision)
			fields[ax.name+"Deg"] = strconv.Itoa(d)
			fields[ax.name+"Min"] = fmt.Sprintf("%02d", m)
			fields[ax.name+"Sec"] = padFloat(s, precision)
		}
	}
	return fields
}

// roundsToZero reports whether v prints as zero in f, so a tiny negative
// value is not labelled S or W.
func roundsToZero(v float64, f Format, precision int) bool {
	v = math.Abs(v)
	switch f {
	case DDM:
		v *= 60
	case DMS:
		v *= 3600
	}
	return roundTo(v, precision) == 0
}

func roundTo(v float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	return math.Round(v*scale) / scale
}

// splitMinutes rounds the total minutes first so 59.99995' carries into
// the degree.
func splitMinutes(deg float64, precision int) (int, float64) {
	total := roundTo(deg*60, precision)
	d := math.Floor(total / 60)
	return int(d), total - d*60
}

func splitSeconds(deg float64, precision int) (int, int, float64) {
	total := roundTo(deg*3600, precision)
	d := math.Floor(total / 3600)
	rest := total - d*3600
	m := math.Floor(rest / 60)
	return int(d), int(m), rest - m*60
}

// padFloat zero-pads the integer part to two digits.
func padFloat(v float64, precision int) string {
	w := 2
	if precision > 0 {
		w += precision + 1
	}
	return fmt.Sprintf("%0*.*f", w, precision, v)
}
