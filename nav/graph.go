// Package nav provides the waypoint graph agents plan routes over.
package nav

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ikkentim/AIWorld-sub000/geom"
)

var (
	// ErrEmptyGraph is returned by point queries on a graph without nodes.
	ErrEmptyGraph = errors.New("nav: graph has no nodes")
	// ErrUnknownNode is returned when a position is not a node of the graph.
	ErrUnknownNode = errors.New("nav: no node at position")
)

// Edge is a directed, weighted connection to another node.
type Edge struct {
	Target   *Node
	Distance float64
}

// Node is a waypoint with its outgoing edges in insertion order.
type Node struct {
	Position r3.Vec
	Edges    []Edge

	index int // position in Graph.nodes
}

// Graph is a sparse directed graph of 3D waypoints keyed by exact position.
type Graph struct {
	nodes  []*Node
	byPos  map[r3.Vec]*Node
	cache  map[pathKey][]Waypoint
	search searchState

	hits, misses int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		byPos: make(map[r3.Vec]*Node),
		cache: make(map[pathKey][]Waypoint),
	}
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Node returns the node at exactly position p.
func (g *Graph) Node(p r3.Vec) (*Node, bool) {
	n, ok := g.byPos[p]
	return n, ok
}

// node returns the node at p, creating it when missing.
func (g *Graph) node(p r3.Vec) *Node {
	if n, ok := g.byPos[p]; ok {
		return n
	}
	n := &Node{Position: p, index: len(g.nodes)}
	g.nodes = append(g.nodes, n)
	g.byPos[p] = n
	return n
}

// Add creates a directed edge from one position to another, weighted by the
// Euclidean distance between them. Missing nodes are created.
func (g *Graph) Add(from, to r3.Vec) {
	g.AddWeighted(from, to, geom.Distance(from, to))
}

// AddWeighted creates a directed edge with an explicit weight.
func (g *Graph) AddWeighted(from, to r3.Vec, distance float64) {
	a := g.node(from)
	b := g.node(to)
	a.Edges = append(a.Edges, Edge{Target: b, Distance: distance})
	g.InvalidateCache()
}

// Connect adds edges in both directions.
func (g *Graph) Connect(a, b r3.Vec) {
	g.Add(a, b)
	g.Add(b, a)
}

// NearestNode returns the position of the node closest to p.
func (g *Graph) NearestNode(p r3.Vec) (r3.Vec, error) {
	if len(g.nodes) == 0 {
		return r3.Vec{}, ErrEmptyGraph
	}
	best := g.nodes[0]
	bestDist := math.Inf(1)
	for _, n := range g.nodes {
		if d := geom.DistanceSq(n.Position, p); d < bestDist {
			bestDist = d
			best = n
		}
	}
	return best.Position, nil
}

// Road is a polyline of waypoints. One-way roads only connect in point order.
type Road struct {
	Points []r3.Vec
	TwoWay bool
}

// BuildRoads constructs a graph from a set of waypoint polylines. Roads that
// share a point are joined at that node.
func BuildRoads(roads []Road) *Graph {
	g := NewGraph()
	for _, r := range roads {
		if len(r.Points) == 1 {
			g.node(r.Points[0])
		}
		for i := 1; i < len(r.Points); i++ {
			if r.TwoWay {
				g.Connect(r.Points[i-1], r.Points[i])
			} else {
				g.Add(r.Points[i-1], r.Points[i])
			}
		}
	}
	return g
}
