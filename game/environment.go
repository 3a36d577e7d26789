package game

import (
	"fmt"
	"iter"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ikkentim/AIWorld-sub000/geom"
	"github.com/ikkentim/AIWorld-sub000/nav"
	"github.com/ikkentim/AIWorld-sub000/spatial"
	"github.com/ikkentim/AIWorld-sub000/steering"
)

var _ steering.Environment = (*World)(nil)

// AddEntity registers e with the spatial index. Agents and obstacles created
// through the world are registered already; adding them again fails with
// spatial.ErrDuplicate.
func (w *World) AddEntity(e spatial.Entity) error {
	if e != nil && w.index.GetNodeContainingEntity(e) != nil {
		return fmt.Errorf("adding entity at %v: %w", e.Position(), spatial.ErrDuplicate)
	}
	if err := w.index.Insert(e); err != nil {
		return err
	}
	w.maxRadius = max(w.maxRadius, e.Size())
	return nil
}

// RemoveEntity drops e from the spatial index. Reports whether it was there.
func (w *World) RemoveEntity(e spatial.Entity) bool {
	return w.index.Remove(e)
}

// Query yields every indexed entity positioned inside box.
func (w *World) Query(box geom.AABB) iter.Seq[spatial.Entity] {
	return w.index.Query(box)
}

// Find resolves a live agent by id.
func (w *World) Find(id int) (*steering.Vehicle, bool) {
	v, ok := w.vehicles[id]
	return v, ok
}

// Rand returns the world's random source.
func (w *World) Rand() *rand.Rand {
	return w.rng
}

// NearestNode returns the road node closest to p.
func (w *World) NearestNode(p r3.Vec) (r3.Vec, error) {
	return w.graph.NearestNode(p)
}

// ShortestPath returns the intermediate road nodes between two nodes in
// finish-to-start order. An unreachable finish yields an empty path.
func (w *World) ShortestPath(start, finish r3.Vec) ([]nav.Waypoint, error) {
	return w.graph.ShortestPath(start, finish)
}
