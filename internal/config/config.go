package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"geoshape/internal/coord"
	"geoshape/internal/units"
)

// Config holds all application configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Display DisplayConfig `mapstructure:"display"`
	Units   UnitsConfig   `mapstructure:"units"`
	Map     MapConfig     `mapstructure:"map"`
	Geodesy GeodesyConfig `mapstructure:"geodesy"`
	Export  ExportConfig  `mapstructure:"export"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type DisplayConfig struct {
	Notation  string            `mapstructure:"notation"`
	Lettering string            `mapstructure:"lettering"`
	Precision map[string]int    `mapstructure:"precision"`
	Templates map[string]string `mapstructure:"templates"`
}

type UnitsConfig struct {
	Length string `mapstructure:"length"`
	Angle  string `mapstructure:"angle"`
}

type MapConfig struct {
	CenterLat float64 `mapstructure:"center_lat"`
	CenterLon float64 `mapstructure:"center_lon"`
	Span      float64 `mapstructure:"span"`
}

type GeodesyConfig struct {
	Segments int `mapstructure:"segments"`
}

type ExportConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// ExportFormats are the accepted export.format values.
var ExportFormats = []string{"geojson", "kml", "shp", "csv", "wkt"}

// Flags registers the command line overrides on fs.
func Flags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default geoshape.yaml in . or ./configs)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("log-file", "", "write logs to this file")
	fs.StringP("notation", "n", "", "display notation (DD, DDM, DMS, MGRS, USNG, UTM, UTM-H, GARS, GEOREF)")
	fs.String("units", "", "length unit (m, ft, km, mi, nmi, yd)")
	fs.String("export-dir", "", "directory for exported files")
	fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
}

var flagKeys = map[string]string{
	"log-level":    "log.level",
	"log-file":     "log.file",
	"notation":     "display.notation",
	"units":        "units.length",
	"export-dir":   "export.dir",
	"metrics-addr": "metrics.addr",
}

// Load reads configuration from defaults, file, .env, environment variables
// and flags, in increasing priority. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("display.notation", "DD")
	v.SetDefault("display.lettering", "AA")
	v.SetDefault("units.length", "m")
	v.SetDefault("units.angle", "deg")
	v.SetDefault("map.center_lat", 20.0)
	v.SetDefault("map.center_lon", 0.0)
	v.SetDefault("map.span", 360.0)
	v.SetDefault("geodesy.segments", 72)
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.format", "geojson")
	v.SetDefault("metrics.addr", "")

	// Config file (optional)
	file := ""
	if fs != nil {
		file, _ = fs.GetString("config")
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("geoshape")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		_ = v.ReadInConfig() // OK if missing
	}

	// Environment variables: GEOSHAPE_DISPLAY_NOTATION → display.notation
	v.SetEnvPrefix("GEOSHAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that every setting is usable and reports all problems
// together.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json or text, got %q", c.Log.Format))
	}
	if _, err := coord.ParseFormat(c.Display.Notation); err != nil {
		errs = append(errs, fmt.Sprintf("display.notation: %v", err))
	}
	if _, err := c.lettering(); err != nil {
		errs = append(errs, err.Error())
	} else if _, err := c.Codec(); err != nil {
		errs = append(errs, fmt.Sprintf("display: %v", err))
	}
	if _, err := units.ParseLength(c.Units.Length); err != nil {
		errs = append(errs, fmt.Sprintf("units.length: %v", err))
	}
	if _, err := units.ParseAngle(c.Units.Angle); err != nil {
		errs = append(errs, fmt.Sprintf("units.angle: %v", err))
	}
	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		errs = append(errs, fmt.Sprintf("map.center_lat must be in [-90,90], got %g", c.Map.CenterLat))
	}
	if c.Map.CenterLon < -180 || c.Map.CenterLon > 180 {
		errs = append(errs, fmt.Sprintf("map.center_lon must be in [-180,180], got %g", c.Map.CenterLon))
	}
	if c.Map.Span <= 0 || c.Map.Span > 360 {
		errs = append(errs, fmt.Sprintf("map.span must be in (0,360], got %g", c.Map.Span))
	}
	if c.Geodesy.Segments < 8 || c.Geodesy.Segments > 3600 {
		errs = append(errs, fmt.Sprintf("geodesy.segments must be 8-3600, got %d", c.Geodesy.Segments))
	}
	if !validExport(c.Export.Format) {
		errs = append(errs, fmt.Sprintf("export.format must be one of %s, got %q",
			strings.Join(ExportFormats, ", "), c.Export.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validExport(f string) bool {
	for _, e := range ExportFormats {
		if strings.EqualFold(e, f) {
			return true
		}
	}
	return false
}

func (c *Config) lettering() (coord.Lettering, error) {
	switch strings.ToUpper(c.Display.Lettering) {
	case "", "AA":
		return coord.LetteringAA, nil
	case "AL":
		return coord.LetteringAL, nil
	}
	return 0, fmt.Errorf("display.lettering must be AA or AL, got %q", c.Display.Lettering)
}

// Notation returns the configured display notation.
func (c *Config) Notation() coord.Format {
	f, err := coord.ParseFormat(c.Display.Notation)
	if err != nil {
		return coord.DD
	}
	return f
}

// LengthUnit returns the configured length unit.
func (c *Config) LengthUnit() units.LengthUnit {
	u, err := units.ParseLength(c.Units.Length)
	if err != nil {
		return units.Meters
	}
	return u
}

// AngleUnit returns the configured angle unit.
func (c *Config) AngleUnit() units.AngleUnit {
	u, err := units.ParseAngle(c.Units.Angle)
	if err != nil {
		return units.Degrees
	}
	return u
}

// Codec builds the coordinate codec with the configured precisions,
// templates and lettering.
func (c *Config) Codec() (*coord.Codec, error) {
	l, err := c.lettering()
	if err != nil {
		return nil, err
	}
	opts := []coord.Option{coord.WithLettering(l)}
	for name, p := range c.Display.Precision {
		f, err := coord.ParseFormat(name)
		if err != nil {
			return nil, fmt.Errorf("precision: %w", err)
		}
		opts = append(opts, coord.WithPrecision(f, p))
	}
	for name, t := range c.Display.Templates {
		f, err := coord.ParseFormat(name)
		if err != nil {
			return nil, fmt.Errorf("template: %w", err)
		}
		opts = append(opts, coord.WithTemplate(f, t))
	}
	return coord.NewCodec(opts...)
}
