// Package graphics tracks which rendered graphics belong to which shape
// tool, and whether each is a temporary preview or a committed shape.
package graphics

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Tool identifies the shape tool that owns a graphic.
type Tool int

const (
	LineTool Tool = iota
	CircleTool
	EllipseTool
	RangeRingsTool
)

// Tools lists every tool in tab order.
var Tools = []Tool{LineTool, CircleTool, EllipseTool, RangeRingsTool}

func (t Tool) String() string {
	switch t {
	case LineTool:
		return "Lines"
	case CircleTool:
		return "Circle"
	case EllipseTool:
		return "Ellipse"
	case RangeRingsTool:
		return "Range Rings"
	}
	return "Unknown"
}

// Kind is the geometry kind of a graphic.
type Kind int

const (
	KindLine Kind = iota
	KindCircle
	KindEllipse
	KindRing
	KindRadial
	KindRingSet
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindCircle:
		return "circle"
	case KindEllipse:
		return "ellipse"
	case KindRing:
		return "ring"
	case KindRadial:
		return "radial"
	case KindRingSet:
		return "ringset"
	case KindPoint:
		return "point"
	}
	return "unknown"
}

// Geometry is what a renderer draws: one or more paths in lon/lat.
type Geometry struct {
	Kind  Kind
	Paths orb.MultiLineString
}

// Bound returns the bounding box of every path.
func (g Geometry) Bound() orb.Bound {
	return g.Paths.Bound()
}

// Style is the renderer hint for a graphic.
type Style int

const (
	StylePreview Style = iota
	StyleFinal
	StyleOverlay
)

// Handle is an opaque renderer reference.
type Handle string

// Renderer draws and removes graphics.
type Renderer interface {
	AddGraphic(g Geometry, style Style, temporary bool) (Handle, error)
	RemoveGraphic(h Handle) error
	ZoomToExtent(b orb.Bound) error
}

// Record is one rendered graphic owned by a tool.
type Record struct {
	ID        uuid.UUID
	Kind      Kind
	Owner     Tool
	Temporary bool
	Handle    Handle
}

// Ledger is the shared registry of rendered graphics. It is safe for
// concurrent use.
type Ledger struct {
	mu      sync.Mutex
	records []Record
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Add stores r, assigning an ID if it has none.
func (l *Ledger) Add(r Record) Record {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	l.mu.Lock()
	l.records = append(l.records, r)
	l.mu.Unlock()
	return r
}

// remove drops owner's records, only temporary ones when tempOnly.
func (l *Ledger) remove(owner Tool, tempOnly bool) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	var removed []Record
	kept := l.records[:0]
	for _, r := range l.records {
		if r.Owner == owner && (!tempOnly || r.Temporary) {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	l.records = kept
	return removed
}

// Remove drops the record with id and returns it.
func (l *Ledger) Remove(id uuid.UUID) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, r := range l.records {
		if r.ID == id {
			l.records = append(l.records[:i], l.records[i+1:]...)
			return r, true
		}
	}
	return Record{}, false
}

// RemoveAllTemp drops the owner's temporary records and returns them.
func (l *Ledger) RemoveAllTemp(owner Tool) []Record { return l.remove(owner, true) }

// RemoveAll drops every record of owner and returns them.
func (l *Ledger) RemoveAll(owner Tool) []Record { return l.remove(owner, false) }

// HasAnyPermanent reports whether owner has a committed graphic.
func (l *Ledger) HasAnyPermanent(owner Tool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.records {
		if r.Owner == owner && !r.Temporary {
			return true
		}
	}
	return false
}

// Records returns a copy of owner's records.
func (l *Ledger) Records(owner Tool) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Record
	for _, r := range l.records {
		if r.Owner == owner {
			out = append(out, r)
		}
	}
	return out
}

// Layer pairs a renderer with the ledger so drawing and bookkeeping stay
// in step.
type Layer struct {
	renderer Renderer
	ledger   *Ledger
}

// NewLayer returns a layer drawing through r and recording into l.
func NewLayer(r Renderer, l *Ledger) *Layer {
	return &Layer{renderer: r, ledger: l}
}

// Ledger returns the underlying ledger.
func (y *Layer) Ledger() *Ledger { return y.ledger }

// Draw renders g for owner and records it.
func (y *Layer) Draw(owner Tool, g Geometry, temporary bool) (Record, error) {
	style := StyleFinal
	if temporary {
		style = StylePreview
	}
	h, err := y.renderer.AddGraphic(g, style, temporary)
	if err != nil {
		return Record{}, fmt.Errorf("draw %s: %w", g.Kind, err)
	}
	return y.ledger.Add(Record{Kind: g.Kind, Owner: owner, Temporary: temporary, Handle: h}), nil
}

// ClearTemp removes owner's temporary graphics from renderer and ledger.
func (y *Layer) ClearTemp(owner Tool) error {
	return y.erase(y.ledger.RemoveAllTemp(owner))
}

// ClearAll removes every graphic of owner.
func (y *Layer) ClearAll(owner Tool) error {
	return y.erase(y.ledger.RemoveAll(owner))
}

// Erase removes the given records from renderer and ledger.
func (y *Layer) Erase(records ...Record) error {
	var removed []Record
	for _, r := range records {
		if got, ok := y.ledger.Remove(r.ID); ok {
			removed = append(removed, got)
		}
	}
	return y.erase(removed)
}

func (y *Layer) erase(records []Record) error {
	var first error
	for _, r := range records {
		if err := y.renderer.RemoveGraphic(r.Handle); err != nil && first == nil {
			first = fmt.Errorf("remove %s: %w", r.Kind, err)
		}
	}
	return first
}

// ZoomTo asks the renderer to frame g.
func (y *Layer) ZoomTo(g Geometry) error {
	if len(g.Paths) == 0 {
		return nil
	}
	return y.renderer.ZoomToExtent(g.Bound())
}
