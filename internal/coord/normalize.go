package coord

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

var glyphs = strings.NewReplacer(
	"º", "°", "˚", "°", "⁰", "°",
	"′", "'", "’", "'", "‘", "'", "´", "'", "`", "'",
	"″", `"`, "”", `"`, "“", `"`, "''", `"`,
	"−", "-", "–", "-",
	"\t", " ",
)

var spaces = regexp.MustCompile(`\s+`)

// normalize folds full-width characters, unifies degree/minute/second glyph
// variants, upper-cases and collapses whitespace.
func normalize(s string) string {
	s = width.Narrow.String(s)
	s = glyphs.Replace(s)
	s = strings.ToUpper(strings.TrimSpace(s))
	return spaces.ReplaceAllString(s, " ")
}

// compact strips every separator, for grid references written with or
// without spacing.
func compact(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', ',', ';', ':', '/', '\\', '-':
			return -1
		}
		return r
	}, s)
}
