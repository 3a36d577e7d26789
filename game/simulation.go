package game

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/ikkentim/AIWorld-sub000/geom"
	"github.com/ikkentim/AIWorld-sub000/spatial"
	"github.com/ikkentim/AIWorld-sub000/steering"
	"github.com/ikkentim/AIWorld-sub000/telemetry"
)

// ErrInconsistent is wrapped by ConsistencyCheck failures.
var ErrInconsistent = errors.New("game: index inconsistent")

// Step runs a single tick of the simulation.
func (w *World) Step() {
	w.perf.StartTick(len(w.vehicles))

	// 1. Pop reached waypoints, replan roaming agents
	w.perf.StartPhase(telemetry.PhasePath)
	w.updatePaths()

	// 2. Every agent computes its force against the same positions
	w.perf.StartPhase(telemetry.PhaseSteering)
	w.updateSteering()

	// 3. Integrate all forces
	w.perf.StartPhase(telemetry.PhaseIntegrate)
	w.integrate()

	// 4. One maintenance pass over the index
	w.perf.StartPhase(telemetry.PhaseSpatial)
	w.collector.RecordRelocations(w.index.FixPositions())

	// 5. Contacts and window stats
	w.perf.StartPhase(telemetry.PhaseTelemetry)
	w.collector.RecordContacts(w.countContacts())
	w.tick++
	w.flushTelemetry()

	w.perf.EndTick()
}

// Run advances the simulation by n ticks.
func (w *World) Run(n int) {
	for range n {
		w.Step()
	}
}

// updateSteering stores each agent's steering force for this tick.
func (w *World) updateSteering() {
	dt := w.cfg.Sim.DT
	query := w.agentFilter.Query()
	for query.Next() {
		agent, _, _, _ := query.Get()
		agent.Vehicle.Force = agent.Vehicle.SteeringForce(dt)
	}
}

// integrate moves every agent by its stored force.
func (w *World) integrate() {
	dt := w.cfg.Sim.DT
	query := w.agentFilter.Query()
	for query.Next() {
		agent, _, _, odo := query.Get()
		v := agent.Vehicle
		before := v.Pos
		v.Integrate(v.Force, dt)
		odo.Record(geom.Distance(before, v.Pos), v.Speed())
	}
}

// countContacts counts overlapping agent pairs and agents touching an
// obstacle.
func (w *World) countContacts() (collisions, obstacleHits int) {
	query := w.agentFilter.Query()
	for query.Next() {
		agent, _, _, _ := query.Get()
		v := agent.Vehicle
		box := geom.NewCube(v.Pos, v.Radius+w.maxRadius)
		for e := range w.index.Query(box) {
			switch other := e.(type) {
			case *steering.Vehicle:
				// Count each pair once.
				if other.ID <= v.ID {
					continue
				}
				if geom.Distance(v.Pos, other.Pos) < v.Radius+other.Radius {
					collisions++
				}
			case *steering.Obstacle:
				if geom.Distance(v.Pos, other.Center) < v.Radius+other.Radius {
					obstacleHits++
				}
			}
		}
	}
	return collisions, obstacleHits
}

// ConsistencyCheck verifies that every agent and obstacle is stored in
// exactly the node its position leads to.
func (w *World) ConsistencyCheck() error {
	for _, id := range slices.Sorted(maps.Keys(w.vehicles)) {
		if err := w.checkIndexed(w.vehicles[id]); err != nil {
			return fmt.Errorf("agent %d: %w", id, err)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(w.obstacles)) {
		if err := w.checkIndexed(w.obstacles[id]); err != nil {
			return fmt.Errorf("obstacle %d: %w", id, err)
		}
	}
	return nil
}

func (w *World) checkIndexed(e spatial.Entity) error {
	held := w.index.GetNodeContainingEntity(e)
	if held == nil {
		return fmt.Errorf("not in the index: %w", ErrInconsistent)
	}
	if !held.Bounds().ContainsPoint(e.Position()) {
		return fmt.Errorf("position %v outside node %v: %w", e.Position(), held.Bounds().Center, ErrInconsistent)
	}
	if w.index.FindNodeForEntity(e) != held {
		return fmt.Errorf("node at %v not reachable by position: %w", held.Bounds().Center, ErrInconsistent)
	}
	return nil
}
