package domain

import (
	"maps"
	"slices"
	"strings"
)

// Collection is an immutable snapshot of an exam's points.
// Points are keyed by identity; presentation order derives from Order.
// Every mutating method returns a new Collection and leaves the receiver
// untouched, so a snapshot captured before an async call stays valid.
type Collection struct {
	points map[Identity]Point
}

// NewCollection builds a collection from points as given.
func NewCollection(points ...Point) Collection {
	m := make(map[Identity]Point, len(points))
	for _, p := range points {
		m[p.ID] = p.Clone()
	}
	return Collection{points: m}
}

// Len returns the number of points.
func (c Collection) Len() int {
	return len(c.points)
}

// Get looks a point up by identity.
func (c Collection) Get(id Identity) (Point, bool) {
	p, ok := c.points[id]
	if !ok {
		return Point{}, false
	}
	return p.Clone(), true
}

// Ordered returns the points sorted by Order.
// Ties fall back to CreatedAt, then to the raw identifier.
func (c Collection) Ordered() []Point {
	out := make([]Point, 0, len(c.points))
	for _, p := range c.points {
		out = append(out, p.Clone())
	}
	slices.SortFunc(out, func(a, b Point) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		if cmp := a.CreatedAt.Compare(b.CreatedAt); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

// At returns the point at a zero-based presentation index.
func (c Collection) At(index int) (Point, bool) {
	ordered := c.Ordered()
	if index < 0 || index >= len(ordered) {
		return Point{}, false
	}
	return ordered[index], true
}

// IndexOf returns the presentation index of id, or -1.
func (c Collection) IndexOf(id Identity) int {
	for i, p := range c.Ordered() {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Uncommitted returns the point still holding a temporary identity.
func (c Collection) Uncommitted() (Point, bool) {
	for _, p := range c.points {
		if !p.IsCommitted() {
			return p.Clone(), true
		}
	}
	return Point{}, false
}

// UnsavedCount counts points that are uncommitted or dirty.
func (c Collection) UnsavedCount() int {
	n := 0
	for _, p := range c.points {
		if p.State() != StateCommittedClean {
			n++
		}
	}
	return n
}

// With inserts p or replaces the point with the same identity.
func (c Collection) With(p Point) Collection {
	next := c.clone()
	next.points[p.ID] = p.Clone()
	return next
}

// Rekey replaces the point stored under old with p, which may carry a
// different identity. The entry keeps its position.
func (c Collection) Rekey(old Identity, p Point) (Collection, bool) {
	if _, ok := c.points[old]; !ok {
		return c, false
	}
	next := c.clone()
	delete(next.points, old)
	next.points[p.ID] = p.Clone()
	return next, true
}

// Without removes id and re-sequences Order to 1..N.
func (c Collection) Without(id Identity) Collection {
	next := c.clone()
	delete(next.points, id)
	return next.Resequenced()
}

// Resequenced returns a copy whose Order values are contiguous 1..N.
func (c Collection) Resequenced() Collection {
	ordered := c.Ordered()
	next := Collection{points: make(map[Identity]Point, len(ordered))}
	for i, p := range ordered {
		p.Order = i + 1
		next.points[p.ID] = p
	}
	return next
}

func (c Collection) clone() Collection {
	if c.points == nil {
		return Collection{points: make(map[Identity]Point)}
	}
	return Collection{points: maps.Clone(c.points)}
}
