package geom

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"geoshape/internal/geoerr"
	"geoshape/internal/graphics"
	"geoshape/internal/shape"
)

// Feature is one committed shape with its attributes.
type Feature struct {
	Kind     graphics.Kind
	Geometry orb.Geometry
	Attrs    shape.Attributes
}

// Columns are the attribute names every writer emits, in order.
var Columns = []string{
	"id", "tool", "kind", "label", "origin", "distance", "minor",
	"azimuth", "length_unit", "angle_unit", "curve", "created",
}

// Values returns the attributes aligned with Columns.
func (f Feature) Values() []string {
	a := f.Attrs
	return []string{
		a.ID.String(),
		a.Tool,
		a.Kind,
		a.Label,
		a.Origin,
		strconv.FormatFloat(a.Distance, 'f', -1, 64),
		strconv.FormatFloat(a.Minor, 'f', -1, 64),
		strconv.FormatFloat(a.Azimuth, 'f', -1, 64),
		a.LengthUnit,
		a.AngleUnit,
		a.Curve,
		a.Created.Format(time.RFC3339),
	}
}

// Closed reports whether the feature is an area (circle, ellipse, ring).
func (f Feature) Closed() bool {
	_, ok := f.Geometry.(orb.Polygon)
	return ok
}

// Collection stores committed features in commit order. It is safe for
// concurrent use and satisfies the controller's sink.
type Collection struct {
	mu       sync.RWMutex
	features []Feature
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Save stores the realized geometry of a committed request.
func (c *Collection) Save(req shape.Request, g graphics.Geometry) error {
	return c.SaveAll([]shape.Request{req}, []graphics.Geometry{g})
}

// SaveAll stores one feature per request. Either every feature is stored
// or none is.
func (c *Collection) SaveAll(reqs []shape.Request, geoms []graphics.Geometry) error {
	if len(reqs) != len(geoms) {
		return fmt.Errorf("save: %d requests for %d geometries", len(reqs), len(geoms))
	}
	batch := make([]Feature, 0, len(reqs))
	for i, req := range reqs {
		f, err := newFeature(req, geoms[i])
		if err != nil {
			return err
		}
		batch = append(batch, f)
	}

	c.mu.Lock()
	c.features = append(c.features, batch...)
	c.mu.Unlock()
	return nil
}

func newFeature(req shape.Request, g graphics.Geometry) (Feature, error) {
	if len(g.Paths) == 0 || len(g.Paths[0]) == 0 {
		return Feature{}, fmt.Errorf("save %s: %w: no vertices", req.Kind, geoerr.ErrDegenerateGeometry)
	}
	f := Feature{Kind: req.Kind, Attrs: req.Attrs}
	if f.Attrs.ID == uuid.Nil {
		f.Attrs.ID = uuid.New()
	}
	if f.Attrs.Kind == "" {
		f.Attrs.Kind = req.Kind.String()
	}

	switch req.Kind {
	case graphics.KindCircle, graphics.KindEllipse, graphics.KindRing:
		ring := orb.Ring(g.Paths[0].Clone())
		if !ring.Closed() {
			ring = append(ring, ring[0])
		}
		f.Geometry = orb.Polygon{ring}
	case graphics.KindLine, graphics.KindRadial:
		f.Geometry = g.Paths[0].Clone()
	case graphics.KindPoint:
		f.Geometry = g.Paths[0][0]
	default:
		f.Geometry = g.Paths.Clone()
	}
	return f, nil
}

// Features returns a copy of the stored features.
func (c *Collection) Features() []Feature {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Feature, len(c.features))
	copy(out, c.features)
	return out
}

// Len returns the number of stored features.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.features)
}

// RemoveTool drops every feature committed by tool and returns how many
// were removed.
func (c *Collection) RemoveTool(tool graphics.Tool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.features[:0]
	n := 0
	for _, f := range c.features {
		if f.Attrs.Tool == tool.String() {
			n++
			continue
		}
		kept = append(kept, f)
	}
	c.features = kept
	return n
}

// Bound returns the extent of every stored feature.
func (c *Collection) Bound() orb.Bound {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var all orb.Collection
	for _, f := range c.features {
		all = append(all, f.Geometry)
	}
	return all.Bound()
}
