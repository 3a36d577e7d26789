package main

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ikkentim/AIWorld-sub000/config"
	"github.com/ikkentim/AIWorld-sub000/game"
	"github.com/ikkentim/AIWorld-sub000/telemetry"
)

// Fitness weights. Lower fitness is better.
const (
	obstacleHitWeight = 5.0 // An obstacle hit costs this many agent collisions
	spacingWeight     = 2.0 // Per unit of nearest neighbour error
	warmupWindows     = 1   // Spawn boxes overlap, so the first windows are noisy
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params        *ParamVector
	ticks         int
	seeds         []int64
	baseConfig    *config.Config
	targetSpacing float64

	mu          sync.Mutex
	lastSpacing float64 // mean nearest neighbour distance from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, ticks int, seeds []int64, baseCfg *config.Config, targetSpacing float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:        params,
		ticks:         ticks,
		seeds:         seeds,
		baseConfig:    baseCfg,
		targetSpacing: targetSpacing,
	}
}

// LastSpacing returns the mean nearest neighbour distance of the most recent evaluation.
func (fe *FitnessEvaluator) LastSpacing() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSpacing
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	spacing float64
	err     error
}

// Evaluate computes fitness for a raw parameter vector. Runs that fail to
// build a world score +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg, err := fe.baseConfig.Clone()
	if err != nil {
		return math.Inf(1)
	}
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return math.Inf(1)
	}

	// Worlds share cfg read only; each seed owns its world.
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows, err := fe.runSimulation(cfg, s)
			if err != nil {
				results[idx] = seedResult{err: err}
				return
			}
			f, spacing := fe.computeFitness(windows)
			results[idx] = seedResult{fitness: f, spacing: spacing}
		}(i, seed)
	}
	wg.Wait()

	fitnesses := make([]float64, 0, len(results))
	spacings := make([]float64, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			return math.Inf(1)
		}
		fitnesses = append(fitnesses, r.fitness)
		spacings = append(spacings, r.spacing)
	}

	fe.mu.Lock()
	fe.lastSpacing = stat.Mean(spacings, nil)
	fe.mu.Unlock()

	return stat.Mean(fitnesses, nil)
}

// runSimulation runs one headless world and returns every stats window.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) ([]telemetry.WindowStats, error) {
	var windows []telemetry.WindowStats
	w, err := game.NewWorld(cfg, game.Options{
		Seed: seed,
		StatsCallback: func(s telemetry.WindowStats) {
			windows = append(windows, s)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("seed %d: %w", seed, err)
	}
	defer w.Close()

	w.Run(fe.ticks)
	return windows, nil
}

// computeFitness scores the windows of one run. Contacts are normalised by
// window count so runs of different length compare.
func (fe *FitnessEvaluator) computeFitness(windows []telemetry.WindowStats) (fitness, spacing float64) {
	if len(windows) > warmupWindows {
		windows = windows[warmupWindows:]
	}
	if len(windows) == 0 {
		return math.Inf(1), 0
	}

	contacts := make([]float64, len(windows))
	spacingErr := make([]float64, len(windows))
	nearest := make([]float64, len(windows))
	for i, w := range windows {
		contacts[i] = float64(w.Collisions) + obstacleHitWeight*float64(w.ObstacleHits)
		nearest[i] = w.NearestMean
		spacingErr[i] = math.Abs(w.NearestMean - fe.targetSpacing)
	}

	n := float64(len(windows))
	fitness = floats.Sum(contacts)/n + spacingWeight*floats.Sum(spacingErr)/n
	return fitness, stat.Mean(nearest, nil)
}
