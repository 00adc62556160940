package graphics

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	added   map[Handle]Geometry
	removed []Handle
	zoomed  []orb.Bound
	n       int
	failAdd bool
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{added: map[Handle]Geometry{}}
}

func (f *fakeRenderer) AddGraphic(g Geometry, _ Style, _ bool) (Handle, error) {
	if f.failAdd {
		return "", errors.New("renderer down")
	}
	f.n++
	h := Handle(fmt.Sprintf("h%d", f.n))
	f.added[h] = g
	return h, nil
}

func (f *fakeRenderer) RemoveGraphic(h Handle) error {
	f.removed = append(f.removed, h)
	delete(f.added, h)
	return nil
}

func (f *fakeRenderer) ZoomToExtent(b orb.Bound) error {
	f.zoomed = append(f.zoomed, b)
	return nil
}

func TestLedger_OwnerIsolation(t *testing.T) {
	l := NewLedger()
	l.Add(Record{Owner: LineTool, Temporary: true})
	l.Add(Record{Owner: LineTool})
	l.Add(Record{Owner: CircleTool, Temporary: true})

	removed := l.RemoveAllTemp(LineTool)
	require.Len(t, removed, 1)
	assert.Equal(t, LineTool, removed[0].Owner)
	assert.Len(t, l.Records(CircleTool), 1)
	assert.True(t, l.HasAnyPermanent(LineTool))
	assert.False(t, l.HasAnyPermanent(CircleTool))

	l.RemoveAll(LineTool)
	assert.Empty(t, l.Records(LineTool))
	assert.Len(t, l.Records(CircleTool), 1)
}

func TestLedger_AssignsIDs(t *testing.T) {
	l := NewLedger()
	a := l.Add(Record{})
	b := l.Add(Record{})
	assert.NotEqual(t, a.ID, b.ID)
}

func TestLedger_Concurrent(t *testing.T) {
	l := NewLedger()
	var wg sync.WaitGroup
	for _, tool := range Tools {
		wg.Add(1)
		go func(tool Tool) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				l.Add(Record{Owner: tool, Temporary: i%2 == 0})
				if i%10 == 0 {
					l.RemoveAllTemp(tool)
				}
			}
		}(tool)
	}
	wg.Wait()
	for _, tool := range Tools {
		assert.True(t, l.HasAnyPermanent(tool))
	}
}

func TestLayer_DrawAndClear(t *testing.T) {
	r := newFakeRenderer()
	y := NewLayer(r, NewLedger())
	g := Geometry{Kind: KindLine, Paths: orb.MultiLineString{{{0, 0}, {1, 1}}}}

	_, err := y.Draw(LineTool, g, true)
	require.NoError(t, err)
	_, err = y.Draw(LineTool, g, false)
	require.NoError(t, err)
	assert.Len(t, r.added, 2)

	require.NoError(t, y.ClearTemp(LineTool))
	assert.Len(t, r.added, 1)
	assert.Equal(t, []Handle{"h1"}, r.removed)

	require.NoError(t, y.ZoomTo(g))
	require.Len(t, r.zoomed, 1)
	assert.Equal(t, orb.Point{1, 1}, r.zoomed[0].Max)

	require.NoError(t, y.ClearAll(LineTool))
	assert.Empty(t, r.added)
	assert.False(t, y.Ledger().HasAnyPermanent(LineTool))
}

func TestLayer_DrawFailureRecordsNothing(t *testing.T) {
	r := newFakeRenderer()
	r.failAdd = true
	y := NewLayer(r, NewLedger())
	_, err := y.Draw(CircleTool, Geometry{Kind: KindCircle}, true)
	require.Error(t, err)
	assert.Empty(t, y.Ledger().Records(CircleTool))
}

func TestLayer_EraseRemovesOnlyGivenRecords(t *testing.T) {
	r := newFakeRenderer()
	y := NewLayer(r, NewLedger())
	g := Geometry{Kind: KindRing, Paths: orb.MultiLineString{{{0, 0}, {1, 0}, {1, 1}}}}

	keep, err := y.Draw(RangeRingsTool, g, false)
	require.NoError(t, err)
	first, err := y.Draw(RangeRingsTool, g, false)
	require.NoError(t, err)
	second, err := y.Draw(RangeRingsTool, g, false)
	require.NoError(t, err)

	require.NoError(t, y.Erase(first, second))
	assert.Equal(t, []Handle{first.Handle, second.Handle}, r.removed)
	assert.Equal(t, []Record{keep}, y.Ledger().Records(RangeRingsTool))

	// erasing again is a no-op
	require.NoError(t, y.Erase(first))
	assert.Len(t, r.removed, 2)

	_, ok := y.Ledger().Remove(first.ID)
	assert.False(t, ok)
	got, ok := y.Ledger().Remove(keep.ID)
	require.True(t, ok)
	assert.Equal(t, keep, got)
}
