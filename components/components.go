// Package components defines ECS components for the simulation.
package components

import (
	"github.com/ikkentim/AIWorld-sub000/steering"
	"gonum.org/v1/gonum/spatial/r3"
)

// Agent wraps a steered vehicle. The vehicle is also registered in the
// spatial index, so the pointer is shared and must not be copied.
type Agent struct {
	Vehicle *steering.Vehicle
}

// Group records which configured group spawned an agent.
type Group struct {
	Name  string
	Index int // Position of the group in the config
}

// Destination is the routing goal of an agent.
type Destination struct {
	Target  r3.Vec
	Active  bool // Route planned and not yet reached
	Roaming bool // Pick a new random destination on arrival
	Replans int  // Routes planned for this agent
	Failed  int  // Unreachable destinations
}

// Clear marks the destination as reached.
func (d *Destination) Clear() {
	d.Active = false
}
