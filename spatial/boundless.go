package spatial

import (
	"iter"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ikkentim/AIWorld-sub000/geom"
)

// CellSize is the edge length of every root cell of the boundless index.
const CellSize = 20

// IndexStats summarizes the shape of the index.
type IndexStats struct {
	Cells    int
	Nodes    int
	Depth    int
	Entities int
}

// BoundlessQuadTree is an unbounded index made of lattice-aligned root cells.
// A cell is allocated the first time an entity lands in its region and
// dropped again once it becomes empty.
type BoundlessQuadTree struct {
	cells []*QuadTree
}

// NewBoundlessQuadTree creates an index without any cells.
func NewBoundlessQuadTree() *BoundlessQuadTree {
	return &BoundlessQuadTree{}
}

// GetCellCoordinate snaps a coordinate to the center of the lattice cell
// containing it along one axis.
func GetCellCoordinate(value float64) float64 {
	base := math.Trunc(value/CellSize) * CellSize
	if value < 0 {
		return base - CellSize/2
	}
	return base + CellSize/2
}

// CellFor returns the bounds of the lattice cell containing p.
func CellFor(p r3.Vec) geom.AABB {
	center := r3.Vec{
		X: GetCellCoordinate(p.X),
		Y: GetCellCoordinate(p.Y),
		Z: GetCellCoordinate(p.Z),
	}
	return geom.NewCube(center, CellSize/2)
}

// ContainsPoint is always true: the index covers all of space.
func (b *BoundlessQuadTree) ContainsPoint(r3.Vec) bool { return true }

// Cells returns the allocated root cells.
func (b *BoundlessQuadTree) Cells() []*QuadTree { return b.cells }

// Len returns the number of stored entities.
func (b *BoundlessQuadTree) Len() int {
	n := 0
	for _, c := range b.cells {
		n += c.Len()
	}
	return n
}

// Insert stores e in the cell covering its position, creating the cell when
// the region is not represented yet.
func (b *BoundlessQuadTree) Insert(e Entity) error {
	if isNil(e) {
		return ErrNilEntity
	}
	p := e.Position()
	for _, c := range b.cells {
		if c.ContainsPoint(p) {
			return c.Insert(e)
		}
	}

	cell := NewQuadTree(CellFor(p))
	b.cells = append(b.cells, cell)
	return cell.Insert(e)
}

// Remove deletes e from its owning cell and releases the cell once empty.
func (b *BoundlessQuadTree) Remove(e Entity) bool {
	if isNil(e) {
		return false
	}
	for i, c := range b.cells {
		if !c.ContainsEntity(e) {
			continue
		}
		c.Remove(e)
		if c.IsEmpty() {
			b.dropCell(i)
		}
		return true
	}
	return false
}

func (b *BoundlessQuadTree) dropCell(i int) {
	copy(b.cells[i:], b.cells[i+1:])
	b.cells[len(b.cells)-1] = nil
	b.cells = b.cells[:len(b.cells)-1]
}

// Query yields every stored entity whose position lies inside box.
func (b *BoundlessQuadTree) Query(box geom.AABB) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, c := range b.cells {
			if !c.bounds.Intersects(box) {
				continue
			}
			if !c.query(box, yield) {
				return
			}
		}
	}
}

// GetNodeContainingEntity searches all cells by identity.
func (b *BoundlessQuadTree) GetNodeContainingEntity(e Entity) *QuadTree {
	for _, c := range b.cells {
		if n := c.GetNodeContainingEntity(e); n != nil {
			return n
		}
	}
	return nil
}

// FindNodeForEntity locates the node holding e by following its position.
func (b *BoundlessQuadTree) FindNodeForEntity(e Entity) *QuadTree {
	p := e.Position()
	for _, c := range b.cells {
		if !c.ContainsPoint(p) {
			continue
		}
		if n := c.FindNodeForEntity(e); n != nil {
			return n
		}
	}
	return nil
}

// FixPositions is the per-tick maintenance pass. Entities that moved are
// relocated within their cell when possible, otherwise reinserted through
// Insert, which may allocate a new cell. Returns the number of entities that
// left their root cell.
func (b *BoundlessQuadTree) FixPositions() int {
	var escaped []Entity
	for _, c := range b.cells {
		escaped = append(escaped, c.fixPositions()...)
	}

	kept := b.cells[:0]
	for _, c := range b.cells {
		if !c.IsEmpty() {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(b.cells); i++ {
		b.cells[i] = nil
	}
	b.cells = kept

	for _, e := range escaped {
		// Cannot fail: a missing cell is created around the position.
		_ = b.Insert(e)
	}
	return len(escaped)
}

// Stats walks the index and reports its shape.
func (b *BoundlessQuadTree) Stats() IndexStats {
	s := IndexStats{Cells: len(b.cells)}
	for _, c := range b.cells {
		c.walk(1, func(n *QuadTree, depth int) {
			s.Nodes++
			s.Entities += len(n.entities)
			if depth > s.Depth {
				s.Depth = depth
			}
		})
	}
	return s
}
