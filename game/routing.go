package game

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ikkentim/AIWorld-sub000/components"
	"github.com/ikkentim/AIWorld-sub000/nav"
	"github.com/ikkentim/AIWorld-sub000/steering"
)

// PlanRoute routes an agent over the road graph from the node nearest to it
// to the node nearest to dest. The waypoint stack becomes the start node, the
// intermediate nodes and the goal node, visited in that order. Returns false
// when the goal cannot be reached; the agent then keeps its current path.
func (w *World) PlanRoute(id int, dest r3.Vec) (bool, error) {
	v, ok := w.vehicles[id]
	if !ok {
		return false, fmt.Errorf("plan route %d: %w", id, ErrUnknownAgent)
	}
	d := w.destMap.Get(w.entities[id])
	return w.planRoute(v, d, dest)
}

func (w *World) planRoute(v *steering.Vehicle, d *components.Destination, dest r3.Vec) (bool, error) {
	start, err := w.graph.NearestNode(v.Pos)
	if err != nil {
		return false, err
	}
	goal, err := w.graph.NearestNode(dest)
	if err != nil {
		return false, err
	}
	path, err := w.graph.ShortestPath(start, goal)
	if err != nil {
		return false, err
	}

	if start != goal && len(path) == 0 && !w.adjacent(start, goal) {
		d.Failed++
		w.collector.RecordRoute(false)
		return false, nil
	}

	stack := make([]r3.Vec, 0, len(path)+2)
	stack = append(stack, goal)
	for _, wp := range path {
		stack = append(stack, wp.Position)
	}
	if start != goal {
		stack = append(stack, start)
	}
	v.SetPath(stack)

	d.Target = goal
	d.Active = true
	d.Replans++
	w.collector.RecordRoute(true)
	return true, nil
}

// adjacent reports whether an edge runs from a to b.
func (w *World) adjacent(a, b r3.Vec) bool {
	n, ok := w.graph.Node(a)
	if !ok {
		return false
	}
	for _, e := range n.Edges {
		if e.Target.Position == b {
			return true
		}
	}
	return false
}

// randomNode picks a road node uniformly.
func (w *World) randomNode() (*nav.Node, bool) {
	nodes := w.graph.Nodes()
	if len(nodes) == 0 {
		return nil, false
	}
	return nodes[w.rng.Intn(len(nodes))], true
}

// updatePaths pops reached waypoints, completes arrived routes and sends
// idle roaming agents to a new random node.
func (w *World) updatePaths() {
	query := w.agentFilter.Query()
	for query.Next() {
		agent, _, dest, odo := query.Get()
		v := agent.Vehicle

		if dest.Active {
			v.AdvancePath(v.Params.WaypointDistance)
			if v.PathLen() == 0 {
				dest.Clear()
				odo.Arrivals++
				w.collector.RecordArrival()
			}
		}

		if !dest.Active && dest.Roaming {
			n, ok := w.randomNode()
			if !ok {
				continue
			}
			// Errors are impossible here: both endpoints are graph nodes.
			_, _ = w.planRoute(v, dest, n.Position)
		}
	}
}
