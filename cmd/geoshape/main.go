package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"
	"github.com/spf13/pflag"

	"geoshape/internal/config"
	"geoshape/internal/geodesy"
	"geoshape/internal/logging"
	"geoshape/internal/metrics"
	"geoshape/internal/shape"
	"geoshape/internal/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "geoshape:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("geoshape", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: geoshape [flags] [overlay.geojson|.kml|.csv|.wkt|.shp]")
		fs.PrintDefaults()
	}
	config.Flags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}

	w, err := logging.OpenFile(cfg.Log.File)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer w.Close()
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format, w)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
			logger.Error("metrics server", "addr", cfg.Metrics.Addr, "error", err)
		}
	}()

	codec, err := cfg.Codec()
	if err != nil {
		return err
	}

	m, err := tui.New(tui.Options{
		Deps: shape.Deps{
			Engine:   geodesy.NewSpherical(cfg.Geodesy.Segments),
			Codec:    codec,
			Notation: cfg.Notation(),
		},
		Length:       cfg.LengthUnit(),
		Angle:        cfg.AngleUnit(),
		Center:       orb.Point{cfg.Map.CenterLon, cfg.Map.CenterLat},
		Span:         cfg.Map.Span,
		ExportDir:    cfg.Export.Dir,
		ExportFormat: cfg.Export.Format,
		Overlay:      fs.Arg(0),
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	logger.Info("starting",
		slog.String("notation", cfg.Notation().String()),
		slog.String("export_dir", cfg.Export.Dir),
		slog.String("metrics_addr", cfg.Metrics.Addr),
	)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("stopped")
	return nil
}
