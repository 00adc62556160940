package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"

	"geoshape/internal/graphics"
)

// Layer indexes, lowest drawn first.
const (
	layerOverlay = iota
	layerFinal
	layerPreview
	layerCount
)

var layerStyles = [layerCount]lipgloss.Style{overlayStyle, finalStyle, previewStyle}

func styleLayer(s graphics.Style) int {
	switch s {
	case graphics.StylePreview:
		return layerPreview
	case graphics.StyleOverlay:
		return layerOverlay
	}
	return layerFinal
}

// drawPath rasterizes a path into br. Single-vertex paths are dots.
// Segments jumping more than half the globe in longitude are skipped.
func (c *canvas) drawPath(br *brailleBuf, path orb.LineString) {
	if len(path) == 1 {
		x, y := c.screenXYMicro(path[0])
		br.setPixel(x, y)
		return
	}
	xMax, yMax := float64(c.w*2-1), float64(c.h*4-1)
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		if math.Abs(b.Lon()-a.Lon()) > 180 {
			continue
		}
		ax, ay := c.project(a)
		bx, by := c.project(b)
		ax, ay, bx, by, ok := clipSegment(ax, ay, bx, by, 0, 0, xMax, yMax)
		if !ok {
			continue
		}
		br.drawLineMicro(int(math.Round(ax)), int(math.Round(ay)), int(math.Round(bx)), int(math.Round(by)))
	}
}

func (c *canvas) drawOverlay(br *brailleBuf) {
	o := c.overlay
	if o == nil {
		return
	}
	for _, poly := range o.Polygons {
		if len(poly) == 0 {
			continue
		}
		// fill the outer ring only; holes are outlined
		var mic [][2]int
		for _, p := range poly[0] {
			x, y := c.screenXYMicro(p)
			mic = append(mic, [2]int{x, y})
		}
		br.fillRing(mic)
		for _, r := range poly {
			c.drawPath(br, orb.LineString(r))
		}
	}
	for _, l := range o.Lines {
		c.drawPath(br, l)
	}
	for _, p := range o.Points {
		x, y := c.screenXYMicro(p)
		br.setPixel(x, y)
	}
}

// render draws every layer into a w x h block of text. hover, when
// non-nil, is the cell to mark.
func (c *canvas) render(hover *[2]int) string {
	w, h := c.w, c.h
	var bufs [layerCount]*brailleBuf
	for i := range bufs {
		bufs[i] = newBrailleBuf(w, h)
	}
	c.drawOverlay(bufs[layerOverlay])
	for _, hd := range c.order {
		it := c.items[hd]
		br := bufs[styleLayer(it.style)]
		for _, p := range it.geom.Paths {
			c.drawPath(br, p)
		}
	}

	lines := make([]string, h)
	for y := 0; y < h; y++ {
		var sb strings.Builder
		run := make([]rune, 0, w)
		runLayer := -1
		flush := func() {
			if len(run) == 0 {
				return
			}
			if runLayer < 0 {
				sb.WriteString(string(run))
			} else {
				sb.WriteString(layerStyles[runLayer].Render(string(run)))
			}
			run = run[:0]
		}
		for x := 0; x < w; x++ {
			if hover != nil && hover[0] == x && hover[1] == y {
				flush()
				runLayer = -1
				sb.WriteString(hoverStyle.Render("+"))
				continue
			}
			r, layer := ' ', -1
			for l := layerCount - 1; l >= 0; l-- {
				if g := bufs[l].glyph(x, y); g != 0 {
					r, layer = g, l
					break
				}
			}
			if layer != runLayer {
				flush()
				runLayer = layer
			}
			run = append(run, r)
		}
		flush()
		lines[y] = sb.String()
	}
	return strings.Join(lines, "\n")
}
