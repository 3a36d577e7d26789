// Package spatial provides the proximity index used by the simulation: a
// fixed-capacity eight-way tree bounded by a box, and an unbounded wrapper
// that lazily allocates lattice-aligned root cells as entities roam.
package spatial

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ikkentim/AIWorld-sub000/geom"
)

// Capacity is the number of entities a node stores before it subdivides.
const Capacity = 5

// MinHalfExtent is the smallest half extent a node may split at. Nodes whose
// largest half extent is below it keep every further entity in their own
// bucket, so entities sharing a position cannot drive the tree past float
// precision.
const MinHalfExtent = 1.0 / 1024

var (
	// ErrNilEntity is returned when a nil entity is inserted.
	ErrNilEntity = errors.New("spatial: nil entity")
	// ErrOutOfBounds is returned when an entity lies outside the node it is inserted into.
	ErrOutOfBounds = errors.New("spatial: entity outside node boundaries")
	// ErrDuplicate is returned by callers that refuse to index an entity twice.
	ErrDuplicate = errors.New("spatial: entity already indexed")
)

// isNil reports whether e is nil or a nil pointer wrapped in the interface.
func isNil(e Entity) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Entity is anything that can be stored in the index. The index only reads
// the position and size; identity is interface equality, so implementations
// are expected to be pointers.
type Entity interface {
	Position() r3.Vec
	Size() float64
}

// QuadTree is a node of the eight-way spatial tree. Each node keeps up to
// Capacity entities in its own bucket and, once full, splits into eight
// octant children that receive further inserts.
type QuadTree struct {
	bounds   geom.AABB
	entities []Entity    // at most Capacity unless the node is too small to split
	children []*QuadTree // nil or exactly 8
}

// NewQuadTree creates an empty leaf covering bounds.
func NewQuadTree(bounds geom.AABB) *QuadTree {
	return &QuadTree{bounds: bounds}
}

// Bounds returns the region covered by the node.
func (q *QuadTree) Bounds() geom.AABB { return q.bounds }

// Children returns the eight children, or nil for a leaf.
func (q *QuadTree) Children() []*QuadTree { return q.children }

// Entities returns a copy of the node's own bucket.
func (q *QuadTree) Entities() []Entity {
	return slices.Clone(q.entities)
}

// IsEmpty reports whether the node holds nothing and has no children.
func (q *QuadTree) IsEmpty() bool {
	return len(q.entities) == 0 && q.children == nil
}

// ContainsPoint reports whether p lies within the node's boundaries.
func (q *QuadTree) ContainsPoint(p r3.Vec) bool {
	return q.bounds.ContainsPoint(p)
}

// Len returns the number of entities stored in the subtree.
func (q *QuadTree) Len() int {
	n := len(q.entities)
	for _, c := range q.children {
		n += c.Len()
	}
	return n
}

// Insert stores e in the subtree. The entity position must lie within the
// node's boundaries.
func (q *QuadTree) Insert(e Entity) error {
	if isNil(e) {
		return ErrNilEntity
	}
	p := e.Position()
	if !q.bounds.ContainsPoint(p) {
		return fmt.Errorf("inserting at %v into %v: %w", p, q.bounds, ErrOutOfBounds)
	}
	q.insert(e, p)
	return nil
}

func (q *QuadTree) insert(e Entity, p r3.Vec) {
	if len(q.entities) < Capacity || !q.splittable() {
		q.entities = append(q.entities, e)
		return
	}

	if q.children == nil {
		q.subdivide()
	}

	// Children share faces; the first in octant order wins.
	for _, c := range q.children {
		if c.bounds.ContainsPoint(p) {
			c.insert(e, p)
			return
		}
	}
	// Rounding left p on no child; the point is still inside this node.
	q.entities = append(q.entities, e)
}

// splittable reports whether the node is large enough to subdivide.
func (q *QuadTree) splittable() bool {
	h := q.bounds.HalfExtent
	return max(h.X, h.Y, h.Z) >= MinHalfExtent
}

// subdivide allocates the eight octant children.
func (q *QuadTree) subdivide() {
	q.children = make([]*QuadTree, 8)
	for i := range q.children {
		q.children[i] = NewQuadTree(q.bounds.Octant(i))
	}
}

// Remove deletes e from the subtree. Lookup is by identity, so it works even
// when the entity has already moved. Reports whether the entity was found.
func (q *QuadTree) Remove(e Entity) bool {
	if isNil(e) {
		return false
	}
	if q.removeFromBucket(e) {
		return true
	}

	for _, c := range q.children {
		if !c.ContainsEntity(e) {
			continue
		}
		c.Remove(e)
		q.pruneChildren()
		return true
	}
	return false
}

// removeFromBucket removes e from the node's own bucket, shifting the
// remaining entries left.
func (q *QuadTree) removeFromBucket(e Entity) bool {
	i := slices.Index(q.entities, e)
	if i < 0 {
		return false
	}
	q.removeAt(i)
	return true
}

func (q *QuadTree) removeAt(i int) {
	q.entities = slices.Delete(q.entities, i, i+1)
}

// pruneChildren turns the node back into a leaf when all children are empty.
func (q *QuadTree) pruneChildren() {
	if q.children == nil {
		return
	}
	for _, c := range q.children {
		if !c.IsEmpty() {
			return
		}
	}
	q.children = nil
}

// ContainsEntity reports whether e is stored anywhere in the subtree.
func (q *QuadTree) ContainsEntity(e Entity) bool {
	return q.GetNodeContainingEntity(e) != nil
}

// GetNodeContainingEntity searches the subtree by identity and returns the
// node whose bucket holds e, or nil.
func (q *QuadTree) GetNodeContainingEntity(e Entity) *QuadTree {
	if slices.Contains(q.entities, e) {
		return q
	}
	for _, c := range q.children {
		if n := c.GetNodeContainingEntity(e); n != nil {
			return n
		}
	}
	return nil
}

// FindNodeForEntity walks down from this node following the entity's current
// position and returns the node holding it. Returns nil when the entity has
// moved away from the branch it is stored in.
func (q *QuadTree) FindNodeForEntity(e Entity) *QuadTree {
	p := e.Position()
	if !q.bounds.ContainsPoint(p) {
		return nil
	}
	if slices.Contains(q.entities, e) {
		return q
	}
	for _, c := range q.children {
		if !c.bounds.ContainsPoint(p) {
			continue
		}
		if n := c.FindNodeForEntity(e); n != nil {
			return n
		}
	}
	return nil
}

// Query yields every entity in the subtree whose position lies inside box.
// The sequence is lazy and may be stopped early.
func (q *QuadTree) Query(box geom.AABB) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		q.query(box, yield)
	}
}

func (q *QuadTree) query(box geom.AABB, yield func(Entity) bool) bool {
	for _, e := range q.entities {
		if box.ContainsPoint(e.Position()) && !yield(e) {
			return false
		}
	}
	for _, c := range q.children {
		if c.bounds.Intersects(box) && !c.query(box, yield) {
			return false
		}
	}
	return true
}

// fixPositions relocates entities that moved out of the node they are stored
// in. Entities that still fit this node are reinserted here; the rest are
// returned so the caller can place them higher up.
func (q *QuadTree) fixPositions() []Entity {
	var escaped []Entity
	for i := 0; i < len(q.entities); {
		e := q.entities[i]
		if q.bounds.ContainsPoint(e.Position()) {
			i++
			continue
		}
		q.removeAt(i)
		escaped = append(escaped, e)
	}

	var percolated []Entity
	for _, c := range q.children {
		percolated = append(percolated, c.fixPositions()...)
	}
	q.pruneChildren()

	for _, e := range percolated {
		p := e.Position()
		if q.bounds.ContainsPoint(p) {
			q.insert(e, p)
			continue
		}
		escaped = append(escaped, e)
	}
	return escaped
}

// walk visits every node of the subtree depth-first.
func (q *QuadTree) walk(depth int, fn func(n *QuadTree, depth int)) {
	fn(q, depth)
	for _, c := range q.children {
		c.walk(depth+1, fn)
	}
}
