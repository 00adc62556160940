package geom

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"geoshape/internal/coord"
	"geoshape/internal/geoerr"
	"geoshape/internal/metrics"
)

// Export writes features to a timestamped file in dir and returns the
// paths written. format is one of geojson, kml, shp, csv or wkt.
func Export(dir, format string, features []Feature, now time.Time) (paths []string, err error) {
	format = strings.ToLower(format)
	defer func() {
		metrics.Exports.WithLabelValues(format, metrics.Outcome(err)).Inc()
		if err == nil {
			metrics.ExportFeatures.Observe(float64(len(features)))
		}
	}()

	if len(features) == 0 {
		return nil, fmt.Errorf("export: %w: no committed shapes", geoerr.ErrPreconditionNotMet)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	base := filepath.Join(dir, "geoshape-"+now.Format("20060102-150405"))

	var write func(io.Writer) error
	switch format {
	case "geojson":
		write = func(w io.Writer) error { return WriteGeoJSON(w, features) }
	case "kml":
		write = func(w io.Writer) error { return WriteKML(w, filepath.Base(base), features) }
	case "csv":
		write = func(w io.Writer) error { return WriteCSV(w, features) }
	case "wkt":
		write = func(w io.Writer) error { return WriteWKT(w, features) }
	case "shp":
		return WriteShapefile(base, features)
	default:
		return nil, fmt.Errorf("export: %w: unknown format %q", geoerr.ErrInvalidArgument, format)
	}

	path := base + "." + format
	if err := writeFile(path, write); err != nil {
		return nil, fmt.Errorf("export %s: %w", format, err)
	}
	return []string{path}, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads an overlay file, choosing the reader by extension. CSV
// coordinate cells are parsed with codec.
func Load(path string, codec *coord.Codec) (*Overlay, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".shp" {
		o, err := LoadShapefile(path)
		if err != nil {
			return nil, err
		}
		o.Name = filepath.Base(path)
		return o, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var o *Overlay
	switch ext {
	case ".geojson", ".json":
		o, err = LoadGeoJSON(f)
	case ".kml":
		o, err = LoadKML(f)
	case ".csv":
		o, err = LoadCSV(f, codec)
	case ".wkt", ".txt":
		o, err = LoadWKT(f)
	default:
		return nil, fmt.Errorf("unsupported file: %s", ext)
	}
	if err != nil {
		return nil, err
	}
	o.Name = filepath.Base(path)
	return o, nil
}

// Supported reports whether Load can read path.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json", ".kml", ".csv", ".wkt", ".txt", ".shp":
		return true
	}
	return false
}
