package game

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ikkentim/AIWorld-sub000/components"
	"github.com/ikkentim/AIWorld-sub000/geom"
	"github.com/ikkentim/AIWorld-sub000/steering"
	"github.com/ikkentim/AIWorld-sub000/telemetry"
)

// flushTelemetry checks if the stats window should be flushed.
func (w *World) flushTelemetry() {
	if !w.collector.ShouldFlush(w.tick) {
		return
	}

	stats := w.collector.Flush(w.tick, w.sample())
	perfStats := w.perf.Stats()

	if w.statsCallback != nil {
		w.statsCallback(stats)
	}

	if w.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if w.output != nil {
		if err := w.output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := w.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// sample observes the world for a window flush.
func (w *World) sample() telemetry.Sample {
	s := telemetry.Sample{
		Agents:    len(w.vehicles),
		Obstacles: len(w.obstacles),
		Index:     w.index.Stats(),
		Cache:     w.graph.CacheStats(),
		Speeds:    make([]float64, 0, len(w.vehicles)),
	}

	query := w.agentFilter.Query()
	for query.Next() {
		agent, _, _, _ := query.Get()
		v := agent.Vehicle
		s.Speeds = append(s.Speeds, v.Speed())
		if d, ok := w.nearestAgent(v); ok {
			s.Nearest = append(s.Nearest, d)
		}
	}
	return s
}

// nearestAgent returns the distance to the closest other agent within
// NeighbourRange.
func (w *World) nearestAgent(v *steering.Vehicle) (float64, bool) {
	best := math.Inf(1)
	for e := range w.index.Query(geom.NewCube(v.Pos, NeighbourRange)) {
		other, ok := e.(*steering.Vehicle)
		if !ok || other == v {
			continue
		}
		best = min(best, geom.Distance(v.Pos, other.Pos))
	}
	return best, !math.IsInf(best, 1)
}

// Snapshot captures agents and obstacles in id order.
func (w *World) Snapshot() *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version: telemetry.SnapshotVersion,
		RNGSeed: w.seed,
		Tick:    w.tick,
	}

	for _, id := range slices.Sorted(maps.Keys(w.vehicles)) {
		v := w.vehicles[id]
		e := w.entities[id]
		group := w.groupMap.Get(e)
		dest := w.destMap.Get(e)
		odo := w.odoMap.Get(e)

		state := telemetry.AgentState{
			ID:       id,
			Group:    group.Name,
			Position: vec3(v.Pos),
			Velocity: vec3(v.Velocity),
			Heading:  vec3(v.Heading),
			Distance: odo.Distance,
			TopSpeed: odo.TopSpeed,
			Arrivals: odo.Arrivals,
		}
		if dest.Active {
			target := vec3(dest.Target)
			state.Destination = &target
		}
		for _, p := range v.Waypoints() {
			state.Waypoints = append(state.Waypoints, vec3(p))
		}
		snap.Agents = append(snap.Agents, state)
	}

	query := w.obstacleFilter.Query()
	for query.Next() {
		o := query.Get().Body
		snap.Obstacles = append(snap.Obstacles, telemetry.ObstacleState{
			ID:     o.ID,
			Center: vec3(o.Center),
			Radius: o.Radius,
		})
	}
	slices.SortFunc(snap.Obstacles, func(a, b telemetry.ObstacleState) int { return a.ID - b.ID })
	return snap
}

// SaveSnapshot writes a snapshot into the output directory. No-op when output
// is disabled.
func (w *World) SaveSnapshot() {
	path, err := w.output.WriteSnapshot(w.Snapshot())
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	if path != "" {
		slog.Info("snapshot saved", "path", path, "tick", w.tick)
	}
}

// Describe formats the inspectable fields of an agent as log attributes.
func (w *World) Describe(id int) ([]slog.Attr, bool) {
	v, ok := w.vehicles[id]
	if !ok {
		return nil, false
	}
	e := w.entities[id]
	dest := w.destMap.Get(e)
	odo := w.odoMap.Get(e)

	attrs := []slog.Attr{
		slog.Int("id", id),
		slog.String("group", w.groupMap.Get(e).Name),
	}
	for _, group := range components.AgentGroups() {
		var fields []any
		for _, d := range components.AgentFieldDescriptors() {
			if d.Group != group {
				continue
			}
			val := components.AgentValue(v, dest, odo, d.ID)
			fields = append(fields, slog.String(d.ID, fmt.Sprintf(d.Format, val)))
		}
		attrs = append(attrs, slog.Group(group, fields...))
	}
	return attrs, true
}

func vec3(v r3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}
