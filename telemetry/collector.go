package telemetry

import (
	"github.com/ikkentim/AIWorld-sub000/nav"
	"github.com/ikkentim/AIWorld-sub000/spatial"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32
	lastCache       nav.CacheStats

	// Event counters for current window
	spawns          int
	despawns        int
	relocations     int
	collisions      int
	obstacleHits    int
	routesPlanned   int
	routesCompleted int
	unreachable     int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordSpawn records an agent entering the world.
func (c *Collector) RecordSpawn() {
	c.spawns++
}

// RecordDespawn records an agent leaving the world.
func (c *Collector) RecordDespawn() {
	c.despawns++
}

// RecordRelocations records entities that changed root cell in one tick.
func (c *Collector) RecordRelocations(n int) {
	c.relocations += n
}

// RecordContacts records overlaps seen in one tick.
func (c *Collector) RecordContacts(collisions, obstacleHits int) {
	c.collisions += collisions
	c.obstacleHits += obstacleHits
}

// RecordRoute records the outcome of a route request.
func (c *Collector) RecordRoute(reachable bool) {
	if reachable {
		c.routesPlanned++
	} else {
		c.unreachable++
	}
}

// RecordArrival records an agent reaching its destination.
func (c *Collector) RecordArrival() {
	c.routesCompleted++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Sample is the world state observed at the end of a window.
type Sample struct {
	Agents    int
	Obstacles int
	Index     spatial.IndexStats
	Cache     nav.CacheStats // Cumulative; the collector reports the delta
	Speeds    []float64
	Nearest   []float64 // Per agent distance to the closest other agent
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s Sample) WindowStats {
	speedMean, speedStd, speedP10, speedP50, speedP90 := ComputeDistribution(s.Speeds)
	nearMean, _, nearP10, _, _ := ComputeDistribution(s.Nearest)

	hits := s.Cache.Hits - c.lastCache.Hits
	queries := hits + s.Cache.Misses - c.lastCache.Misses
	var hitRate float64
	if queries > 0 {
		hitRate = float64(hits) / float64(queries)
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Agents:    s.Agents,
		Obstacles: s.Obstacles,
		Spawns:    c.spawns,
		Despawns:  c.despawns,

		Cells:       s.Index.Cells,
		IndexNodes:  s.Index.Nodes,
		IndexDepth:  s.Index.Depth,
		Relocations: c.relocations,

		SpeedMean: speedMean,
		SpeedStd:  speedStd,
		SpeedP10:  speedP10,
		SpeedP50:  speedP50,
		SpeedP90:  speedP90,

		NearestMean:  nearMean,
		NearestP10:   nearP10,
		Collisions:   c.collisions,
		ObstacleHits: c.obstacleHits,

		PathQueries:     queries,
		PathCacheHits:   hits,
		CacheHitRate:    hitRate,
		CacheEntries:    s.Cache.Entries,
		RoutesPlanned:   c.routesPlanned,
		RoutesCompleted: c.routesCompleted,
		Unreachable:     c.unreachable,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.lastCache = s.Cache
	c.spawns = 0
	c.despawns = 0
	c.relocations = 0
	c.collisions = 0
	c.obstacleHits = 0
	c.routesPlanned = 0
	c.routesCompleted = 0
	c.unreachable = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
