// Package points holds the named points a shape tool has collected so far.
package points

import (
	"geoshape/internal/coord"
)

// Slot names a point position within a tool, e.g. start or center.
type Slot string

const (
	P1 Slot = "P1"
	P2 Slot = "P2"
	P3 Slot = "P3"
)

// Change describes one mutation of an Accumulator.
type Change struct {
	Slot    Slot
	Point   coord.Point
	Present bool
	Cleared bool // whole accumulator reset
}

// Observer is notified synchronously after every change.
type Observer func(Change)

// Accumulator is an ordered set of named slots with presence flags. It does
// not enforce fill order; callers check Has before setting a later slot.
type Accumulator struct {
	order     []Slot
	points    map[Slot]coord.Point
	present   map[Slot]bool
	observers []Observer
}

// New returns an accumulator over the given slots, in order.
func New(slots ...Slot) *Accumulator {
	return &Accumulator{
		order:   slots,
		points:  make(map[Slot]coord.Point, len(slots)),
		present: make(map[Slot]bool, len(slots)),
	}
}

// Subscribe registers o for future changes.
func (a *Accumulator) Subscribe(o Observer) {
	a.observers = append(a.observers, o)
}

func (a *Accumulator) notify(c Change) {
	for _, o := range a.observers {
		o(c)
	}
}

// Set stores p in slot and marks it present.
func (a *Accumulator) Set(slot Slot, p coord.Point) {
	a.points[slot] = p
	a.present[slot] = true
	a.notify(Change{Slot: slot, Point: p, Present: true})
}

// Unset removes a single slot.
func (a *Accumulator) Unset(slot Slot) {
	if !a.present[slot] {
		return
	}
	delete(a.points, slot)
	delete(a.present, slot)
	a.notify(Change{Slot: slot})
}

// Clear removes every point.
func (a *Accumulator) Clear() {
	clear(a.points)
	clear(a.present)
	a.notify(Change{Cleared: true})
}

// Has reports whether slot holds a point.
func (a *Accumulator) Has(slot Slot) bool { return a.present[slot] }

// Get returns the point in slot and whether it is present.
func (a *Accumulator) Get(slot Slot) (coord.Point, bool) {
	p, ok := a.points[slot]
	return p, ok && a.present[slot]
}

// Count returns how many slots are filled.
func (a *Accumulator) Count() int {
	n := 0
	for _, s := range a.order {
		if a.present[s] {
			n++
		}
	}
	return n
}

// Next returns the first empty slot in order, or false when all are set.
func (a *Accumulator) Next() (Slot, bool) {
	for _, s := range a.order {
		if !a.present[s] {
			return s, true
		}
	}
	return "", false
}

// Slots returns the slot order.
func (a *Accumulator) Slots() []Slot { return a.order }
