package nav

import (
	"container/heap"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ikkentim/AIWorld-sub000/geom"
)

// Waypoint is an immutable snapshot of a node on a computed path.
type Waypoint struct {
	Position r3.Vec
	Distance float64 // Cost from the search start
	Index    int     // Position in the returned path
}

// pathKey identifies a cached search.
type pathKey struct {
	start, finish r3.Vec
}

// CacheStats reports path cache usage.
type CacheStats struct {
	Entries int
	Hits    int
	Misses  int
}

// openEntry is an element of the A* open set.
type openEntry struct {
	node  *Node
	score float64 // distance + heuristic
	seq   int     // insertion order, breaks score ties
	index int     // heap index
}

// openHeap implements heap.Interface for the A* open set.
type openHeap []*openEntry

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].score != h[j].score {
		return h[i].score < h[j].score
	}
	return h[i].seq < h[j].seq
}
func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *openHeap) Push(x any) {
	e := x.(*openEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// searchState holds per-search node data. Reused between searches.
type searchState struct {
	distance []float64
	previous []int
	open     openHeap
	seq      int
}

func (s *searchState) reset(n int) {
	if cap(s.distance) < n {
		s.distance = make([]float64, n)
		s.previous = make([]int, n)
	}
	s.distance = s.distance[:n]
	s.previous = s.previous[:n]
	for i := range s.distance {
		s.distance[i] = math.Inf(1)
		s.previous[i] = -1
	}
	s.open = s.open[:0]
	s.seq = 0
}

func (s *searchState) push(n *Node, score float64) {
	heap.Push(&s.open, &openEntry{node: n, score: score, seq: s.seq})
	s.seq++
}

// ShortestPath finds the cheapest route between two nodes using A* with a
// Manhattan heuristic. The result runs from the node adjacent to finish back
// to the node adjacent to start; neither endpoint is included, so callers pop
// from the end to walk the route forward.
//
// An unreachable finish yields an empty path and a nil error. Positions that
// are not nodes of the graph are rejected with ErrUnknownNode.
//
// Results are cached per (start, finish) pair and every call returns its own
// copy.
func (g *Graph) ShortestPath(start, finish r3.Vec) ([]Waypoint, error) {
	key := pathKey{start: start, finish: finish}
	if cached, ok := g.cache[key]; ok {
		g.hits++
		return slices.Clone(cached), nil
	}

	from, ok := g.byPos[start]
	if !ok {
		return nil, fmt.Errorf("path start %v: %w", start, ErrUnknownNode)
	}
	to, ok := g.byPos[finish]
	if !ok {
		return nil, fmt.Errorf("path finish %v: %w", finish, ErrUnknownNode)
	}

	g.misses++
	path := g.search.run(g.nodes, from, to)
	g.cache[key] = path
	return slices.Clone(path), nil
}

// run executes the search and returns the intermediate nodes of the best
// route in finish-to-start order.
func (s *searchState) run(nodes []*Node, from, to *Node) []Waypoint {
	s.reset(len(nodes))
	s.distance[from.index] = 0
	s.push(from, geom.ManhattanDistance(from.Position, to.Position))

	for s.open.Len() > 0 {
		entry := heap.Pop(&s.open).(*openEntry)
		current := entry.node
		dist := s.distance[current.index]

		if math.IsInf(dist, 1) {
			return []Waypoint{}
		}
		// A better route to this node was found after the entry was queued.
		if entry.score > dist+geom.ManhattanDistance(current.Position, to.Position) {
			continue
		}

		if current == to {
			return s.collect(nodes, to)
		}

		for _, edge := range current.Edges {
			next := edge.Target
			tentative := dist + edge.Distance
			if tentative >= s.distance[next.index] {
				continue
			}
			s.distance[next.index] = tentative
			s.previous[next.index] = current.index
			s.push(next, tentative+geom.ManhattanDistance(next.Position, to.Position))
		}
	}

	return []Waypoint{}
}

// collect walks the previous chain from the node before finish and stops at
// the start node, which has no predecessor.
func (s *searchState) collect(nodes []*Node, to *Node) []Waypoint {
	path := []Waypoint{}
	i := s.previous[to.index]
	for i >= 0 && s.previous[i] >= 0 {
		path = append(path, Waypoint{
			Position: nodes[i].Position,
			Distance: s.distance[i],
			Index:    len(path),
		})
		i = s.previous[i]
	}
	return path
}

// InvalidateCache drops all cached paths. Called whenever an edge is added.
func (g *Graph) InvalidateCache() {
	if len(g.cache) > 0 {
		clear(g.cache)
	}
}

// CacheStats reports path cache usage.
func (g *Graph) CacheStats() CacheStats {
	return CacheStats{Entries: len(g.cache), Hits: g.hits, Misses: g.misses}
}

// PathLength returns the summed edge weights of a route from start through
// path (finish-to-start order) to finish. Parallel edges count at their
// cheapest. Reports false when two consecutive points are not joined by an
// edge.
func (g *Graph) PathLength(start r3.Vec, path []Waypoint, finish r3.Vec) (float64, bool) {
	if start == finish && len(path) == 0 {
		return 0, true
	}
	total := 0.0
	prev := start
	for i := len(path) - 1; i >= -1; i-- {
		next := finish
		if i >= 0 {
			next = path[i].Position
		}
		w, ok := g.edgeWeight(prev, next)
		if !ok {
			return 0, false
		}
		total += w
		prev = next
	}
	return total, true
}

func (g *Graph) edgeWeight(from, to r3.Vec) (float64, bool) {
	n, ok := g.byPos[from]
	if !ok {
		return 0, false
	}
	best, found := math.Inf(1), false
	for _, e := range n.Edges {
		if e.Target.Position == to && e.Distance < best {
			best, found = e.Distance, true
		}
	}
	return best, found
}

// DistanceBeforeFinish returns the cost from start recorded on the waypoint
// adjacent to finish, or zero for an empty path. The final edge into finish
// is not included.
func DistanceBeforeFinish(path []Waypoint) float64 {
	if len(path) == 0 {
		return 0
	}
	return path[0].Distance
}

// Reverse returns the path in start-to-finish order with indices renumbered.
func Reverse(path []Waypoint) []Waypoint {
	out := make([]Waypoint, len(path))
	for i, w := range path {
		j := len(path) - 1 - i
		w.Index = j
		out[j] = w
	}
	return out
}
