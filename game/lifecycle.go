package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ikkentim/AIWorld-sub000/components"
	"github.com/ikkentim/AIWorld-sub000/config"
	"github.com/ikkentim/AIWorld-sub000/geom"
	"github.com/ikkentim/AIWorld-sub000/steering"
)

// ErrUnknownAgent is returned when an id does not name a live agent.
var ErrUnknownAgent = errors.New("game: unknown agent")

// AgentSpec describes an agent to spawn.
type AgentSpec struct {
	Position  r3.Vec
	Heading   r3.Vec // Zero keeps the default +X heading
	MaxSpeed  float64 // 0 = vehicle default from config
	Group     string
	GroupIdx  int
	Roaming   bool
	Tags      map[string]string
	Behaviors []config.BehaviorConfig
}

// spawnGroups creates the configured groups in order.
func (w *World) spawnGroups() error {
	for gi, g := range w.cfg.Groups {
		center, half := g.SpawnCenter.Vec(), g.SpawnHalf.Vec()
		for range g.Count {
			spec := AgentSpec{
				Position: r3.Vec{
					X: center.X + (w.rng.Float64()*2-1)*half.X,
					Y: center.Y + (w.rng.Float64()*2-1)*half.Y,
					Z: center.Z + (w.rng.Float64()*2-1)*half.Z,
				},
				Heading:   randomHeading(w.rng.Float64()),
				MaxSpeed:  g.MaxSpeed,
				Group:     g.Name,
				GroupIdx:  gi,
				Roaming:   g.Roaming,
				Tags:      g.Tags,
				Behaviors: g.Behaviors,
			}
			if _, err := w.SpawnAgent(spec); err != nil {
				return fmt.Errorf("group %s: %w", g.Name, err)
			}
		}
	}
	return nil
}

// randomHeading maps u in [0,1) onto a horizontal unit vector.
func randomHeading(u float64) r3.Vec {
	a := u * 2 * math.Pi
	return r3.Vec{X: math.Cos(a), Z: math.Sin(a)}
}

// SpawnAgent creates a vehicle, activates its behaviors and registers it with
// the ECS world and the spatial index.
func (w *World) SpawnAgent(spec AgentSpec) (*steering.Vehicle, error) {
	vc := w.cfg.Vehicle
	v := steering.NewVehicle(w.nextID, spec.Position, w)
	v.Mass = vc.Mass
	v.MaxSpeed = vc.MaxSpeed
	v.MaxForce = vc.MaxForce
	v.Radius = vc.Radius
	if spec.MaxSpeed > 0 {
		v.MaxSpeed = spec.MaxSpeed
	}
	v.Params = w.params
	if !geom.IsZero(spec.Heading) {
		v.SetFrame(geom.NewFrame(spec.Heading, geom.WorldUp))
	}
	for k, val := range spec.Tags {
		v.SetTag(k, val)
	}

	for _, b := range spec.Behaviors {
		if _, err := steering.Apply(b.Name, v, b.Args); err != nil {
			return nil, fmt.Errorf("agent %d: %w", v.ID, err)
		}
	}

	if err := w.AddEntity(v); err != nil {
		return nil, fmt.Errorf("agent %d: %w", v.ID, err)
	}
	w.nextID++

	agent := components.Agent{Vehicle: v}
	group := components.Group{Name: spec.Group, Index: spec.GroupIdx}
	dest := components.Destination{Roaming: spec.Roaming}
	odo := components.Odometer{SpawnTick: w.tick}
	entity := w.agentMapper.NewEntity(&agent, &group, &dest, &odo)

	w.vehicles[v.ID] = v
	w.entities[v.ID] = entity
	w.collector.RecordSpawn()
	return v, nil
}

// Despawn removes an agent from the world. Behaviors of other agents that
// reference it fall back to zero force.
func (w *World) Despawn(id int) error {
	v, ok := w.vehicles[id]
	if !ok {
		return fmt.Errorf("despawn %d: %w", id, ErrUnknownAgent)
	}
	if !w.index.Remove(v) {
		slog.Warn("despawned agent was not indexed", "id", id)
	}
	w.ecs.RemoveEntity(w.entities[id])
	delete(w.vehicles, id)
	delete(w.entities, id)
	w.collector.RecordDespawn()
	return nil
}

// AddObstacle places a static spherical obstacle.
func (w *World) AddObstacle(center r3.Vec, radius float64) (*steering.Obstacle, error) {
	o := &steering.Obstacle{ID: w.nextID, Center: center, Radius: radius}
	if err := w.AddEntity(o); err != nil {
		return nil, fmt.Errorf("obstacle %d: %w", o.ID, err)
	}
	w.nextID++

	body := components.Obstacle{Body: o}
	w.obstacleMapper.NewEntity(&body)
	w.obstacles[o.ID] = o
	return o, nil
}
