package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoshape/internal/coord"
	"geoshape/internal/units"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, coord.DD, cfg.Notation())
	assert.Equal(t, units.Meters, cfg.LengthUnit())
	assert.Equal(t, units.Degrees, cfg.AngleUnit())
	assert.Equal(t, 72, cfg.Geodesy.Segments)
	assert.Equal(t, "geojson", cfg.Export.Format)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoad_EnvFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := []byte("display:\n  notation: UTM\n  precision:\n    mgrs: 3\nunits:\n  length: km\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "geoshape.yaml"), yaml, 0o644))
	t.Setenv("GEOSHAPE_UNITS_ANGLE", "mils")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	require.NoError(t, fs.Parse([]string{"--notation", "MGRS", "--log-level", "debug"}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, coord.MGRS, cfg.Notation())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, units.Kilometers, cfg.LengthUnit())
	assert.Equal(t, units.Mils, cfg.AngleUnit())

	c, err := cfg.Codec()
	require.NoError(t, err)
	assert.Equal(t, 3, c.Precision(coord.MGRS))
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	require.NoError(t, fs.Parse([]string{"--config", "nope.yaml"}))
	_, err := Load(fs)
	assert.Error(t, err)
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := Config{
		Log:     LogConfig{Level: "loud", Format: "xml"},
		Display: DisplayConfig{Notation: "OSGB", Lettering: "ZZ"},
		Units:   UnitsConfig{Length: "furlong", Angle: "grad"},
		Map:     MapConfig{CenterLat: 95, Span: 0},
		Geodesy: GeodesyConfig{Segments: 2},
		Export:  ExportConfig{Format: "dxf"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"log.level", "log.format", "display.notation", "display.lettering",
		"units.length", "units.angle", "map.center_lat", "map.span",
		"geodesy.segments", "export.format",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestCodec_RejectsBadPrecision(t *testing.T) {
	cfg := Config{Display: DisplayConfig{Precision: map[string]int{"dd": 99}}}
	_, err := cfg.Codec()
	assert.Error(t, err)
}
