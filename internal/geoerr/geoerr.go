// Package geoerr defines the error classes shared by the shape construction core.
package geoerr

import "errors"

var (
	// ErrInvalidArgument marks a rejected edit: negative distance, out-of-domain
	// azimuth, minor axis above major axis, counts out of bounds.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidCoordinate marks coordinate text that cannot be parsed or a
	// point outside the valid latitude/longitude range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrDegenerateGeometry marks a radius beyond the sanity ceiling.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
	// ErrPreconditionNotMet marks a commit attempted while the tool cannot create.
	// Hosts treat it as a silent no-op.
	ErrPreconditionNotMet = errors.New("precondition not met")
)

// UserFacing reports whether err belongs to a class hosts show to the user.
func UserFacing(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrInvalidCoordinate) ||
		errors.Is(err, ErrDegenerateGeometry)
}

// Class returns a short label for err, used for metrics and logs.
func Class(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrDegenerateGeometry):
		return "degenerate_geometry"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrInvalidCoordinate):
		return "invalid_coordinate"
	case errors.Is(err, ErrPreconditionNotMet):
		return "precondition_not_met"
	default:
		return "other"
	}
}
