package coord

import (
	"fmt"
	"regexp"
	"strings"

	"geoshape/internal/geoerr"
)

var placeholderRe = regexp.MustCompile(`\{([A-Za-z]+)\}`)

var (
	ddPlaceholders  = []string{"Lat", "Lon", "LatAbs", "LonAbs", "LatHem", "LonHem"}
	ddmPlaceholders = append(append([]string{}, ddPlaceholders...), "LatDeg", "LatMin", "LonDeg", "LonMin")
	dmsPlaceholders = append(append([]string{}, ddmPlaceholders...), "LatSec", "LonSec")
	utmPlaceholders = []string{"Zone", "Band", "Hemisphere", "Easting", "Northing"}
)

// Placeholders lists the names a template for f may reference.
func Placeholders(f Format) []string {
	switch f {
	case DD, Decimal:
		return ddPlaceholders
	case DDM:
		return ddmPlaceholders
	case DMS:
		return dmsPlaceholders
	case UTM, UTMH:
		return utmPlaceholders
	case MGRS, USNG:
		return []string{"Zone", "Band", "Square", "Easting", "Northing"}
	case GARS:
		return []string{"LonBand", "LatBand", "Quadrant", "Keypad"}
	case GEOREF:
		return []string{"Tiles", "LonMinutes", "LatMinutes"}
	}
	return nil
}

// DefaultTemplates maps each notation to its stock output template.
var DefaultTemplates = map[Format]string{
	DD:      "{LatAbs}{LatHem} {LonAbs}{LonHem}",
	DDM:     "{LatDeg}°{LatMin}'{LatHem} {LonDeg}°{LonMin}'{LonHem}",
	DMS:     `{LatDeg}°{LatMin}'{LatSec}"{LatHem} {LonDeg}°{LonMin}'{LonSec}"{LonHem}`,
	MGRS:    "{Zone}{Band}{Square}{Easting}{Northing}",
	USNG:    "{Zone}{Band} {Square} {Easting} {Northing}",
	UTM:     "{Zone}{Band} {Easting}E {Northing}N",
	UTMH:    "{Zone}{Hemisphere} {Easting}E {Northing}N",
	GARS:    "{LonBand}{LatBand}{Quadrant}{Keypad}",
	GEOREF:  "{Tiles}{LonMinutes}{LatMinutes}",
	Decimal: "{Lat} {Lon}",
}

// ValidateTemplate checks that tmpl only references placeholders known
// to f.
func ValidateTemplate(f Format, tmpl string) error {
	known := Placeholders(f)
	if known == nil {
		return fmt.Errorf("%w: no templates for %s", geoerr.ErrInvalidArgument, f)
	}
	for _, m := range placeholderRe.FindAllStringSubmatch(tmpl, -1) {
		ok := false
		for _, k := range known {
			if m[1] == k {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%w: unknown placeholder {%s} for %s", geoerr.ErrInvalidArgument, m[1], f)
		}
	}
	return nil
}

// expand substitutes fields into tmpl.
func expand(tmpl string, fields map[string]string) (string, error) {
	var missing string
	out := placeholderRe.ReplaceAllStringFunc(tmpl, func(ph string) string {
		name := ph[1 : len(ph)-1]
		v, ok := fields[name]
		if !ok && missing == "" {
			missing = name
		}
		return v
	})
	if missing != "" {
		return "", fmt.Errorf("%w: unknown placeholder {%s}", geoerr.ErrInvalidArgument, missing)
	}
	return strings.TrimSpace(out), nil
}
