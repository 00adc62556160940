// Package feedback turns host events into builder updates and keeps the
// map in step: every change retracts the active tool's preview and issues
// at most one new one; a commit draws the final shapes and stores them.
package feedback

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb"

	"geoshape/internal/coord"
	"geoshape/internal/geodesy"
	"geoshape/internal/geoerr"
	"geoshape/internal/graphics"
	"geoshape/internal/metrics"
	"geoshape/internal/shape"
	"geoshape/internal/units"
)

// Sink stores committed shapes. SaveAll stores every shape of one commit
// or none of them.
type Sink interface {
	SaveAll(reqs []shape.Request, geoms []graphics.Geometry) error
}

// Options configures a Controller. Layer is required.
type Options struct {
	Layer  *graphics.Layer
	Sink   Sink
	Deps   shape.Deps
	Logger *slog.Logger
	// Units applied to every builder on creation.
	Length units.LengthUnit
	Angle  units.AngleUnit
}

// Controller routes host events to the builder of the active tool.
type Controller struct {
	layer    *graphics.Layer
	sink     Sink
	deps     shape.Deps
	log      *slog.Logger
	builders map[graphics.Tool]shape.Builder
	active   graphics.Tool
	preview  bool
}

// New returns a controller with one builder per tool. The Line tool is
// active.
func New(o Options) (*Controller, error) {
	if o.Layer == nil {
		return nil, errors.New("feedback: layer is required")
	}
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}
	deps := o.Deps
	if deps.Codec == nil {
		deps.Codec, _ = coord.NewCodec()
	}
	if deps.Engine == nil {
		deps.Engine = geodesy.NewSpherical(0)
	}
	c := &Controller{
		layer:    o.Layer,
		sink:     o.Sink,
		deps:     deps,
		log:      log,
		builders: make(map[graphics.Tool]shape.Builder, len(graphics.Tools)),
		active:   graphics.LineTool,
	}
	for _, t := range graphics.Tools {
		b := shape.New(t, deps)
		if err := b.SetUnit(shape.UnitDistance, o.Length); err != nil {
			return nil, fmt.Errorf("feedback: %w", err)
		}
		if err := b.SetUnit(shape.UnitAngle, o.Angle); err != nil {
			return nil, fmt.Errorf("feedback: %w", err)
		}
		c.builders[t] = b
	}
	return c, nil
}

// Active returns the active tool.
func (c *Controller) Active() graphics.Tool { return c.active }

// Builder returns the active builder.
func (c *Controller) Builder() shape.Builder { return c.builders[c.active] }

// BuilderFor returns the builder of tool t.
func (c *Controller) BuilderFor(t graphics.Tool) shape.Builder { return c.builders[t] }

// Codec returns the coordinate codec the builders use.
func (c *Controller) Codec() *coord.Codec { return c.deps.Codec }

// HasPreview reports whether the active tool has a preview on the map.
func (c *Controller) HasPreview() bool { return c.preview }

// OnTabActivated switches tools. The previous tool's preview is removed
// and both tools start from a clean state.
func (c *Controller) OnTabActivated(t graphics.Tool) error {
	if _, ok := c.builders[t]; !ok {
		return fmt.Errorf("%w: unknown tool %d", geoerr.ErrInvalidArgument, int(t))
	}
	err := c.layer.ClearTemp(c.active)
	c.builders[c.active].Reset()
	c.preview = false
	if t != c.active {
		c.log.Debug("tool activated", "tool", t.String(), "previous", c.active.String())
	}
	c.active = t
	c.builders[t].Reset()
	return err
}

// OnMapPoint feeds a clicked point to the active builder and commits when
// the click completed the shape.
func (c *Controller) OnMapPoint(p coord.Point) error {
	if !p.Valid() {
		return c.reject(fmt.Errorf("%w: %s", geoerr.ErrInvalidCoordinate, p))
	}
	done, err := c.Builder().AddPoint(p)
	if err != nil {
		return c.reject(err)
	}
	if done {
		return c.commit()
	}
	return c.refresh()
}

// OnCoordinateEntered parses text in any notation and treats it as a map
// click.
func (c *Controller) OnCoordinateEntered(text string) (coord.Format, error) {
	p, f, err := c.deps.Codec.ParseAs(text)
	metrics.CoordinateParses.WithLabelValues(f.String(), metrics.Outcome(err)).Inc()
	if err != nil {
		return coord.Unknown, c.reject(err)
	}
	return f, c.OnMapPoint(p)
}

// OnMapMove updates the floating point once the shape has an origin.
func (c *Controller) OnMapMove(p coord.Point) error {
	b := c.Builder()
	if b.Points().Count() == 0 || !p.Valid() {
		return nil
	}
	b.MovePoint(p)
	return c.refresh()
}

// OnFieldChanged applies an edited field. A rejected value leaves the
// builder and its preview as they were.
func (c *Controller) OnFieldChanged(f shape.Field, text string) error {
	if err := c.Builder().SetField(f, text); err != nil {
		return c.reject(err)
	}
	return c.refresh()
}

// OnUnitChanged changes a display unit of the active builder.
func (c *Controller) OnUnitChanged(f shape.UnitField, u units.Unit) error {
	if err := c.Builder().SetUnit(f, u); err != nil {
		return c.reject(err)
	}
	return c.refresh()
}

// OnModeChanged switches the active builder's mode.
func (c *Controller) OnModeChanged(m shape.Mode) error {
	if err := c.Builder().SetMode(m); err != nil {
		return c.reject(err)
	}
	return c.refresh()
}

// OnTravelToggled turns the travel calculator on or off where the tool
// has one.
func (c *Controller) OnTravelToggled(on bool) error {
	tr, ok := c.Builder().(shape.Traveler)
	if !ok {
		return c.reject(fmt.Errorf("%w: %s has no travel calculator", geoerr.ErrInvalidArgument, c.active))
	}
	if err := tr.SetTravel(on); err != nil {
		return c.reject(err)
	}
	return c.refresh()
}

// OnNotationChanged switches the notation every builder displays
// coordinates in.
func (c *Controller) OnNotationChanged(f coord.Format) error {
	if f == coord.Unknown {
		return c.reject(fmt.Errorf("%w: unknown notation", geoerr.ErrInvalidArgument))
	}
	for _, b := range c.builders {
		b.SetNotation(f)
	}
	c.deps.Notation = f
	c.log.Debug("notation changed", "notation", f.String())
	return nil
}

// Notation returns the display notation.
func (c *Controller) Notation() coord.Format {
	if c.deps.Notation == coord.Unknown {
		return coord.DD
	}
	return c.deps.Notation
}

// OnEnterPressed commits the active shape. Committing an incomplete shape
// does nothing.
func (c *Controller) OnEnterPressed() error {
	return c.commit()
}

// OnClear resets the active builder and removes its preview.
func (c *Controller) OnClear() error {
	c.Builder().Reset()
	c.preview = false
	return c.layer.ClearTemp(c.active)
}

// OnClearCommitted removes every committed graphic of the active tool.
func (c *Controller) OnClearCommitted() error {
	c.preview = false
	return c.layer.ClearAll(c.active)
}

func (c *Controller) reject(err error) error {
	if errors.Is(err, geoerr.ErrPreconditionNotMet) {
		return nil
	}
	metrics.RejectedEdits.WithLabelValues(c.active.String(), geoerr.Class(err)).Inc()
	c.log.Debug("edit rejected", "tool", c.active.String(), "error", err)
	return err
}

// refresh retracts the active preview and draws the current one, if any.
func (c *Controller) refresh() error {
	if err := c.layer.ClearTemp(c.active); err != nil {
		c.log.Warn("clear preview", "tool", c.active.String(), "error", err)
	}
	c.preview = false
	req, ok := c.Builder().Preview()
	if !ok {
		return nil
	}
	g, err := Realize(c.deps.Engine, req)
	if err != nil {
		// An unrenderable preview is not an input error.
		c.log.Debug("preview skipped", "tool", c.active.String(), "error", err)
		return nil
	}
	if _, err := c.layer.Draw(c.active, g, true); err != nil {
		c.log.Error("draw preview", "tool", c.active.String(), "error", err)
		return err
	}
	c.preview = true
	metrics.PreviewsIssued.WithLabelValues(c.active.String()).Inc()
	return nil
}

// commit realizes, draws and stores every request of the active shape.
// The builder is only cleared once all of that succeeded; on failure the
// graphics drawn so far are removed and the input stays as it was.
func (c *Controller) commit() error {
	b := c.Builder()
	reqs, err := b.Commit()
	if err != nil {
		return c.reject(err)
	}
	if len(reqs) == 0 {
		c.log.Debug("nothing to commit", "tool", c.active.String())
		return nil
	}
	geoms := make([]graphics.Geometry, len(reqs))
	for i, r := range reqs {
		g, err := Realize(c.deps.Engine, r)
		if err != nil {
			c.log.Error("realize commit", "tool", c.active.String(), "error", err)
			return err
		}
		geoms[i] = g
	}

	drawn := make([]graphics.Record, 0, len(geoms))
	for _, g := range geoms {
		rec, err := c.layer.Draw(c.active, g, false)
		if err != nil {
			c.log.Error("draw commit", "tool", c.active.String(), "error", err)
			c.rollback(drawn)
			return err
		}
		drawn = append(drawn, rec)
	}
	if c.sink != nil {
		if err := c.sink.SaveAll(reqs, geoms); err != nil {
			c.log.Error("save commit", "tool", c.active.String(), "error", err)
			c.rollback(drawn)
			return fmt.Errorf("save %s: %w", c.active, err)
		}
	}

	if err := c.layer.ClearTemp(c.active); err != nil {
		c.log.Warn("clear preview", "tool", c.active.String(), "error", err)
	}
	c.preview = false
	b.Finish()

	metrics.Commits.WithLabelValues(c.active.String()).Inc()
	c.log.Info("shape committed", "tool", c.active.String(), "requests", len(reqs))

	extent := geoms[0].Bound()
	for _, g := range geoms[1:] {
		extent = extent.Union(g.Bound())
	}
	if err := c.layer.ZoomTo(graphics.Geometry{Paths: orb.MultiLineString{orb.LineString(extent.ToRing())}}); err != nil {
		c.log.Warn("zoom", "error", err)
	}
	return nil
}

func (c *Controller) rollback(drawn []graphics.Record) {
	if err := c.layer.Erase(drawn...); err != nil {
		c.log.Warn("remove partial commit", "tool", c.active.String(), "error", err)
	}
}
