package geom

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"
)

// ParseWKT reads one WKT geometry per non-empty line. Any line that fails
// to parse fails the whole text.
func ParseWKT(text string) (*Overlay, error) {
	o := &Overlay{}
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		g, err := wkt.Unmarshal(line)
		if err != nil {
			return nil, fmt.Errorf("wkt line %d: %w", i+1, err)
		}
		o.add(g)
	}
	if o.Empty() {
		return nil, errors.New("wkt: no geometry found")
	}
	return o, nil
}

// LoadWKT reads WKT text from r.
func LoadWKT(r io.Reader) (*Overlay, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseWKT(string(b))
}

// WriteWKT writes one geometry per line.
func WriteWKT(w io.Writer, features []Feature) error {
	bw := bufio.NewWriter(w)
	for _, f := range features {
		if _, err := bw.WriteString(wkt.MarshalString(f.Geometry) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
