package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Agents    int `csv:"agents"`
	Obstacles int `csv:"obstacles"`
	Spawns    int `csv:"spawns"`
	Despawns  int `csv:"despawns"`

	// Spatial index shape at window end
	Cells       int `csv:"cells"`
	IndexNodes  int `csv:"index_nodes"`
	IndexDepth  int `csv:"index_depth"`
	Relocations int `csv:"relocations"` // Entities that changed root cell during the window

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Crowding
	NearestMean  float64 `csv:"nearest_mean"` // Distance to the closest other agent
	NearestP10   float64 `csv:"nearest_p10"`
	Collisions   int     `csv:"collisions"`    // Overlapping agent pairs, summed over ticks
	ObstacleHits int     `csv:"obstacle_hits"` // Agents inside an obstacle, summed over ticks

	// Routing
	PathQueries     int     `csv:"path_queries"`
	PathCacheHits   int     `csv:"path_cache_hits"`
	CacheHitRate    float64 `csv:"cache_hit_rate"`
	CacheEntries    int     `csv:"cache_entries"`
	RoutesPlanned   int     `csv:"routes_planned"`
	RoutesCompleted int     `csv:"routes_completed"`
	Unreachable     int     `csv:"unreachable"`
}

// Quantile returns the empirical p-quantile of a sorted slice.
// Returns 0 if the slice is empty.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = min(max(p, 0), 1)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeDistribution calculates mean, std, and percentiles of values.
// The input is not modified.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	switch len(values) {
	case 0:
		return 0, 0, 0, 0, 0
	case 1:
		v := values[0]
		return v, 0, v, v, v
	}

	mean, std = stat.MeanStdDev(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	p10 = Quantile(sorted, 0.10)
	p50 = Quantile(sorted, 0.50)
	p90 = Quantile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("agents", s.Agents),
		slog.Int("obstacles", s.Obstacles),
		slog.Int("spawns", s.Spawns),
		slog.Int("despawns", s.Despawns),
		slog.Int("cells", s.Cells),
		slog.Int("index_nodes", s.IndexNodes),
		slog.Int("index_depth", s.IndexDepth),
		slog.Int("relocations", s.Relocations),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("nearest_mean", s.NearestMean),
		slog.Float64("nearest_p10", s.NearestP10),
		slog.Int("collisions", s.Collisions),
		slog.Int("obstacle_hits", s.ObstacleHits),
		slog.Int("path_queries", s.PathQueries),
		slog.Int("path_cache_hits", s.PathCacheHits),
		slog.Float64("cache_hit_rate", s.CacheHitRate),
		slog.Int("cache_entries", s.CacheEntries),
		slog.Int("routes_planned", s.RoutesPlanned),
		slog.Int("routes_completed", s.RoutesCompleted),
		slog.Int("unreachable", s.Unreachable),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"agents", s.Agents,
		"cells", s.Cells,
		"index_nodes", s.IndexNodes,
		"index_depth", s.IndexDepth,
		"relocations", s.Relocations,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"nearest_mean", s.NearestMean,
		"collisions", s.Collisions,
		"obstacle_hits", s.ObstacleHits,
		"path_queries", s.PathQueries,
		"cache_hit_rate", s.CacheHitRate,
		"routes_completed", s.RoutesCompleted,
		"unreachable", s.Unreachable,
	)
}
