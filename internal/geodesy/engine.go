// Package geodesy defines the geometry-construction collaborator the shape
// tools call, plus a spherical reference engine.
package geodesy

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"geoshape/internal/coord"
	"geoshape/internal/geoerr"
	"geoshape/internal/units"
)

// CurveType selects how a line between two points is constructed.
type CurveType int

const (
	Geodesic CurveType = iota
	Loxodrome
	GreatElliptic
	NormalSection
)

// CurveTypes lists every curve type in display order.
var CurveTypes = []CurveType{Geodesic, Loxodrome, GreatElliptic, NormalSection}

func (c CurveType) String() string {
	switch c {
	case Geodesic:
		return "Geodesic"
	case Loxodrome:
		return "Loxodrome"
	case GreatElliptic:
		return "GreatElliptic"
	case NormalSection:
		return "NormalSection"
	}
	return "Unknown"
}

// ParseCurveType resolves a curve type name, case-insensitively.
func ParseCurveType(s string) (CurveType, error) {
	for _, c := range CurveTypes {
		if strings.EqualFold(strings.TrimSpace(s), c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown line type %q", geoerr.ErrInvalidArgument, s)
}

// Engine constructs geodetic geometry. Azimuths and orientations are in
// degrees clockwise from true north; lengths are in the given unit.
type Engine interface {
	Circle(center coord.Point, radius float64, unit units.LengthUnit, segments int) (orb.Ring, error)
	Ellipse(center coord.Point, semiMajor, semiMinor, orientation float64, unit units.LengthUnit) (orb.Ring, error)
	Line(from, to coord.Point, curve CurveType) (orb.LineString, error)
	// Project follows curve from from for distance along azimuth.
	Project(from coord.Point, azimuth, distance float64, unit units.LengthUnit, curve CurveType) (coord.Point, error)
	Length(path orb.LineString, curve CurveType, unit units.LengthUnit) (float64, error)
	Azimuth(path orb.LineString) (float64, error)
}
