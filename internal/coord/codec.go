package coord

import (
	"errors"
	"fmt"
	"strings"

	"geoshape/internal/geoerr"
)

// DefaultPrecisions are the precisions a new Codec starts with. The unit
// depends on the notation: decimals for the angle notations, digits per
// axis for the grids, cell minutes for GARS.
var DefaultPrecisions = map[Format]int{
	DD:      6,
	DDM:     4,
	DMS:     2,
	MGRS:    5,
	USNG:    5,
	UTM:     0,
	UTMH:    0,
	GARS:    5,
	GEOREF:  4,
	Decimal: 6,
}

// Codec parses and formats coordinates. The zero value is not usable; use
// NewCodec.
type Codec struct {
	precision map[Format]int
	templates map[Format]string
	lettering Lettering
}

// Option configures a Codec.
type Option func(*Codec) error

// WithPrecision overrides the precision for one notation.
func WithPrecision(f Format, p int) Option {
	return func(c *Codec) error { return c.SetPrecision(f, p) }
}

// WithTemplate overrides the output template for one notation.
func WithTemplate(f Format, tmpl string) Option {
	return func(c *Codec) error { return c.SetTemplate(f, tmpl) }
}

// WithLettering sets the MGRS lettering scheme tried first when parsing
// and used when formatting.
func WithLettering(l Lettering) Option {
	return func(c *Codec) error {
		c.lettering = l
		return nil
	}
}

// NewCodec returns a codec with default templates and precisions.
func NewCodec(opts ...Option) (*Codec, error) {
	c := &Codec{
		precision: make(map[Format]int, len(DefaultPrecisions)),
		templates: make(map[Format]string, len(DefaultTemplates)),
	}
	for f, p := range DefaultPrecisions {
		c.precision[f] = p
	}
	for f, t := range DefaultTemplates {
		c.templates[f] = t
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

var defaultCodec, _ = NewCodec()

// Parse converts text with a default codec.
func Parse(text string) (Point, error) { return defaultCodec.Parse(text) }

// Detect classifies text with a default codec.
func Detect(text string) Format { return defaultCodec.Detect(text) }

// FormatPoint renders p with a default codec.
func FormatPoint(p Point, f Format) (string, error) { return defaultCodec.Format(p, f) }

// Precision returns the current precision for f.
func (c *Codec) Precision(f Format) int { return c.precision[f] }

// Template returns the current template for f.
func (c *Codec) Template(f Format) string { return c.templates[f] }

// SetPrecision validates and stores a precision for f.
func (c *Codec) SetPrecision(f Format, p int) error {
	if err := validPrecision(f, p); err != nil {
		return err
	}
	c.precision[f] = p
	return nil
}

// SetTemplate validates and stores a template for f.
func (c *Codec) SetTemplate(f Format, tmpl string) error {
	if err := ValidateTemplate(f, tmpl); err != nil {
		return err
	}
	c.templates[f] = tmpl
	return nil
}

func validPrecision(f Format, p int) error {
	ok := false
	switch f {
	case DD, DDM, DMS, Decimal:
		ok = p >= 0 && p <= 10
	case UTM, UTMH:
		ok = p >= 0 && p <= 3
	case MGRS, USNG:
		ok = p >= 0 && p <= 5
	case GARS:
		ok = p == 30 || p == 15 || p == 5
	case GEOREF:
		ok = p == 0 || (p >= 2 && p <= 6)
	}
	if !ok {
		return fmt.Errorf("%w: precision %d not valid for %s", geoerr.ErrInvalidArgument, p, f)
	}
	return nil
}

type candidate struct {
	format Format
	parse  func(s string) (Point, Format, error)
}

func fixed(f Format, fn func(string) (Point, error)) candidate {
	return candidate{f, func(s string) (Point, Format, error) {
		p, err := fn(s)
		return p, f, err
	}}
}

func angles(g angleGrammar) candidate {
	return candidate{g.format, func(s string) (Point, Format, error) {
		p, hint, err := parseAngles(g, s)
		if g.format == DD && !hint {
			return p, Decimal, err
		}
		return p, g.format, err
	}}
}

func mgrsCandidate(l Lettering, a mgrsAnchor) candidate {
	return fixed(MGRS, func(s string) (Point, error) { return parseMGRS(s, l, a) })
}

// candidates returns the parse grammars in priority order.
func (c *Codec) candidates() []candidate {
	other := LetteringAL
	if c.lettering == LetteringAL {
		other = LetteringAA
	}
	list := []candidate{
		angles(ddGrammar),
		angles(ddmGrammar),
		angles(dmsGrammar),
		fixed(GARS, func(s string) (Point, error) { return parseGARS(s, true) }),
		fixed(GARS, func(s string) (Point, error) { return parseGARS(s, false) }),
	}
	for _, l := range []Lettering{c.lettering, other} {
		for _, a := range []mgrsAnchor{anchorCorner, anchorCenter, anchorZone01At180} {
			list = append(list, mgrsCandidate(l, a))
		}
	}
	list = append(list, fixed(USNG, func(s string) (Point, error) {
		if !isUSNGText(s) {
			return Point{}, fmt.Errorf("%w: not USNG", geoerr.ErrInvalidCoordinate)
		}
		return parseMGRS(s, LetteringAA, anchorCorner)
	}))
	for _, v := range utmVariants {
		f := UTM
		if v.hemisphere {
			f = UTMH
		}
		list = append(list, fixed(f, func(s string) (Point, error) { return parseUTMVariant(v, s) }))
	}
	return append(list,
		fixed(GEOREF, parseGEOREF),
		fixed(Unknown, parseWebMercator),
	)
}

// Parse converts free text in any supported notation to a Point.
func (c *Codec) Parse(text string) (Point, error) {
	p, _, err := c.ParseAs(text)
	return p, err
}

// ParseAs is Parse that also reports which notation matched. Web-Mercator
// text reports Unknown.
func (c *Codec) ParseAs(text string) (Point, Format, error) {
	s := normalize(text)
	if s == "" {
		return Point{}, Unknown, fmt.Errorf("%w: empty coordinate", geoerr.ErrInvalidCoordinate)
	}
	for _, cand := range c.candidates() {
		p, f, err := cand.parse(s)
		if err != nil {
			continue
		}
		if f == MGRS && isUSNGText(s) {
			f = USNG
		}
		return p, f, nil
	}
	return Point{}, Unknown, fmt.Errorf("%w: %q matches no notation", geoerr.ErrInvalidCoordinate, strings.TrimSpace(text))
}

// Detect reports which notation text is written in, or Unknown.
func (c *Codec) Detect(text string) Format {
	_, f, err := c.ParseAs(text)
	if err != nil {
		return Unknown
	}
	return f
}

// Format renders p in notation f with the codec's precision and template.
func (c *Codec) Format(p Point, f Format) (string, error) {
	return c.FormatWith(p, f, c.precision[f], c.templates[f])
}

// FormatWith renders p with an explicit precision and template.
func (c *Codec) FormatWith(p Point, f Format, precision int, tmpl string) (string, error) {
	if !p.Valid() {
		return "", fmt.Errorf("%w: %s", geoerr.ErrInvalidCoordinate, p)
	}
	if err := validPrecision(f, precision); err != nil {
		return "", err
	}
	var (
		fields map[string]string
		err    error
	)
	switch f {
	case DD, DDM, DMS, Decimal:
		fields = latLonFields(p, f, precision)
	case UTM, UTMH:
		fields, err = utmFields(p, precision)
	case MGRS, USNG:
		fields, err = mgrsFields(p, precision, c.lettering)
	case GARS:
		fields, err = garsFields(p, precision)
	case GEOREF:
		fields, err = georefFields(p, precision)
	default:
		return "", fmt.Errorf("%w: cannot format %s", geoerr.ErrInvalidArgument, f)
	}
	if err != nil {
		return "", err
	}
	return expand(tmpl, fields)
}

// IsCoordinateError reports whether err came from coordinate validation.
func IsCoordinateError(err error) bool {
	return errors.Is(err, geoerr.ErrInvalidCoordinate)
}
