package tui

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"geoshape/internal/geom"
	"geoshape/internal/graphics"
)

const (
	minSpan = 0.0005 // degrees of longitude across the map
	maxSpan = 360.0
)

type item struct {
	geom  graphics.Geometry
	style graphics.Style
}

// canvas is the terminal map. It implements graphics.Renderer and keeps
// an equirectangular viewport: a centre and the longitude span shown
// across the map width. Braille micro-pixels are close to square, so the
// latitude span follows from the map's shape.
type canvas struct {
	items   map[graphics.Handle]item
	order   []graphics.Handle
	overlay *geom.Overlay

	center orb.Point
	span   float64
	w, h   int // map size in cells
}

func newCanvas(center orb.Point, span float64) *canvas {
	c := &canvas{
		items:  make(map[graphics.Handle]item),
		center: center,
		span:   clamp(span, minSpan, maxSpan),
		w:      80,
		h:      20,
	}
	if span <= 0 {
		c.span = maxSpan
	}
	return c
}

func (c *canvas) AddGraphic(g graphics.Geometry, style graphics.Style, _ bool) (graphics.Handle, error) {
	if len(g.Paths) == 0 {
		return "", fmt.Errorf("canvas: %s has no paths", g.Kind)
	}
	h := graphics.Handle(uuid.NewString())
	c.items[h] = item{geom: g, style: style}
	c.order = append(c.order, h)
	return h, nil
}

func (c *canvas) RemoveGraphic(h graphics.Handle) error {
	if _, ok := c.items[h]; !ok {
		return fmt.Errorf("canvas: unknown graphic %s", h)
	}
	delete(c.items, h)
	for i, o := range c.order {
		if o == h {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// ZoomToExtent fits b in the map with a margin.
func (c *canvas) ZoomToExtent(b orb.Bound) error {
	if b.Min.Lon() > b.Max.Lon() || b.Min.Lat() > b.Max.Lat() {
		return fmt.Errorf("canvas: empty extent")
	}
	lonSpan := b.Max.Lon() - b.Min.Lon()
	latSpan := b.Max.Lat() - b.Min.Lat()
	c.center = b.Center()
	c.span = clamp(math.Max(lonSpan, latSpan/c.aspect())*1.2, minSpan, maxSpan)
	return nil
}

func (c *canvas) resize(w, h int) {
	c.w, c.h = max(2, w), max(2, h)
}

// aspect is latitude degrees per longitude degree on screen.
func (c *canvas) aspect() float64 {
	return float64(c.h*4) / float64(c.w*2)
}

func (c *canvas) bound() orb.Bound {
	half := c.span / 2
	halfLat := c.span * c.aspect() / 2
	return orb.Bound{
		Min: orb.Point{c.center.Lon() - half, c.center.Lat() - halfLat},
		Max: orb.Point{c.center.Lon() + half, c.center.Lat() + halfLat},
	}
}

func (c *canvas) zoom(factor float64) {
	c.span = clamp(c.span/factor, minSpan, maxSpan)
}

// pan moves the centre by fractions of the visible span.
func (c *canvas) pan(fx, fy float64) {
	lon := c.center.Lon() + fx*c.span
	lat := clamp(c.center.Lat()+fy*c.span*c.aspect(), -90, 90)
	c.center = orb.Point{clamp(lon, -180, 180), lat}
}

// project maps lon/lat to fractional micro-pixel coordinates.
func (c *canvas) project(p orb.Point) (float64, float64) {
	b := c.bound()
	nx := (p.Lon() - b.Min.Lon()) / (b.Max.Lon() - b.Min.Lon())
	ny := (p.Lat() - b.Min.Lat()) / (b.Max.Lat() - b.Min.Lat())
	return nx * float64(c.w*2-1), (1 - ny) * float64(c.h*4-1)
}

// screenXYMicro maps lon/lat to the micro-pixel grid.
func (c *canvas) screenXYMicro(p orb.Point) (int, int) {
	x, y := c.project(p)
	return int(math.Round(clamp(x, -1e6, 1e6))), int(math.Round(clamp(y, -1e6, 1e6)))
}

// cellToLonLat converts a map cell to the lon/lat at its centre. ok is
// false off the globe.
func (c *canvas) cellToLonLat(cx, cy int) (lon, lat float64, ok bool) {
	if cx < 0 || cy < 0 || cx >= c.w || cy >= c.h {
		return 0, 0, false
	}
	b := c.bound()
	nx := (float64(cx) + 0.5) / float64(c.w)
	ny := 1 - (float64(cy)+0.5)/float64(c.h)
	lon = b.Min.Lon() + nx*(b.Max.Lon()-b.Min.Lon())
	lat = b.Min.Lat() + ny*(b.Max.Lat()-b.Min.Lat())
	return lon, lat, lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

// extent is the bound of every graphic and the overlay.
func (c *canvas) extent() (orb.Bound, bool) {
	var all orb.Collection
	for _, h := range c.order {
		all = append(all, c.items[h].geom.Paths)
	}
	if c.overlay != nil && !c.overlay.Empty() {
		all = append(all, c.overlay.Bound())
	}
	if len(all) == 0 {
		return orb.Bound{}, false
	}
	return all.Bound(), true
}
