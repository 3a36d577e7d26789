// Package game wires the spatial index, the road graph and steered agents
// into a tick-driven simulation.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/ikkentim/AIWorld-sub000/components"
	"github.com/ikkentim/AIWorld-sub000/config"
	"github.com/ikkentim/AIWorld-sub000/nav"
	"github.com/ikkentim/AIWorld-sub000/spatial"
	"github.com/ikkentim/AIWorld-sub000/steering"
	"github.com/ikkentim/AIWorld-sub000/telemetry"
)

// NeighbourRange is the half extent of the box searched for the nearest
// neighbour of an agent when sampling telemetry.
const NeighbourRange = 20.0

// Options configures a World beyond the loaded config.
type Options struct {
	Seed          int64
	LogStats      bool                          // Log every stats window
	OutputDir     string                        // CSV logs and config snapshot, empty = disabled
	StatsCallback func(telemetry.WindowStats) // Called after every window flush
}

// World holds the complete simulation state.
type World struct {
	cfg    *config.Config
	params steering.Params
	ecs    *ecs.World
	rng    *rand.Rand
	seed   int64

	// Agent entities
	agentMapper *ecs.Map4[
		components.Agent,
		components.Group,
		components.Destination,
		components.Odometer,
	]
	agentFilter *ecs.Filter4[
		components.Agent,
		components.Group,
		components.Destination,
		components.Odometer,
	]

	// Obstacle entities
	obstacleMapper *ecs.Map1[components.Obstacle]
	obstacleFilter *ecs.Filter1[components.Obstacle]

	// Individual component mappers for lookups
	groupMap *ecs.Map1[components.Group]
	destMap  *ecs.Map1[components.Destination]
	odoMap   *ecs.Map1[components.Odometer]

	index *spatial.BoundlessQuadTree
	graph *nav.Graph

	// Weak references resolve through these by numeric id.
	vehicles  map[int]*steering.Vehicle
	entities  map[int]ecs.Entity
	obstacles map[int]*steering.Obstacle
	nextID    int
	maxRadius float64

	// Telemetry
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)

	tick int32
}

// NewWorld builds the road graph, spawns the configured groups and places the
// obstacles. Agents get ids in group order starting at 1, obstacles follow.
func NewWorld(cfg *config.Config, opts Options) (*World, error) {
	world := ecs.NewWorld()

	w := &World{
		cfg:    cfg,
		params: paramsFromConfig(cfg.Steering),
		ecs:    world,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		seed:   opts.Seed,
		agentMapper: ecs.NewMap4[
			components.Agent,
			components.Group,
			components.Destination,
			components.Odometer,
		](world),
		agentFilter: ecs.NewFilter4[
			components.Agent,
			components.Group,
			components.Destination,
			components.Odometer,
		](world),
		obstacleMapper: ecs.NewMap1[components.Obstacle](world),
		obstacleFilter: ecs.NewFilter1[components.Obstacle](world),
		groupMap:       ecs.NewMap1[components.Group](world),
		destMap:        ecs.NewMap1[components.Destination](world),
		odoMap:         ecs.NewMap1[components.Odometer](world),
		index:          spatial.NewBoundlessQuadTree(),
		graph:          buildRoads(cfg.Roads),
		vehicles:       make(map[int]*steering.Vehicle),
		entities:       make(map[int]ecs.Entity),
		obstacles:      make(map[int]*steering.Obstacle),
		nextID:         1,
		collector:      telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Sim.DT),
		perf:           telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		logStats:       opts.LogStats,
		statsCallback:  opts.StatsCallback,
	}

	if err := w.spawnGroups(); err != nil {
		return nil, err
	}
	for i, o := range cfg.Obstacles {
		if _, err := w.AddObstacle(o.Center.Vec(), o.Radius); err != nil {
			return nil, fmt.Errorf("obstacles[%d]: %w", i, err)
		}
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	w.output = output
	if err := w.output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	slog.Info("world created",
		"seed", opts.Seed,
		"agents", len(w.vehicles),
		"obstacles", len(w.obstacles),
		"road_nodes", w.graph.Len(),
		"cells", len(w.index.Cells()),
	)
	return w, nil
}

// buildRoads converts the configured polylines into a graph.
func buildRoads(roads []config.RoadConfig) *nav.Graph {
	rs := make([]nav.Road, len(roads))
	for i, r := range roads {
		rs[i].TwoWay = r.TwoWay
		for _, p := range r.Points {
			rs[i].Points = append(rs[i].Points, p.Vec())
		}
	}
	return nav.BuildRoads(rs)
}

// paramsFromConfig maps the steering config section onto behavior tunables.
func paramsFromConfig(c config.SteeringConfig) steering.Params {
	return steering.Params{
		DecelerationTweaker:   c.DecelerationTweaker,
		BrakingWeight:         c.BrakingWeight,
		MinDetectionBoxLength: c.MinDetectionBoxLength,
		ObstacleMargin:        c.ObstacleMargin,
		WanderRadius:          c.WanderRadius,
		WanderDistance:        c.WanderDistance,
		WanderJitter:          c.WanderJitter,
		HeadOnThreshold:       c.HeadOnThreshold,
		WaypointDistance:      c.WaypointDistance,
	}
}

// Tick returns the number of completed steps.
func (w *World) Tick() int32 {
	return w.tick
}

// Seed returns the seed the world was created with.
func (w *World) Seed() int64 {
	return w.seed
}

// Graph returns the road graph.
func (w *World) Graph() *nav.Graph {
	return w.graph
}

// Index returns the spatial index.
func (w *World) Index() *spatial.BoundlessQuadTree {
	return w.index
}

// AgentCount returns the number of live agents.
func (w *World) AgentCount() int {
	return len(w.vehicles)
}

// Close flushes and closes the output files.
func (w *World) Close() error {
	return w.output.Close()
}
