package telemetry

import (
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Phase is a stage of the simulation step.
type Phase int

// Step phases in execution order.
const (
	PhasePath Phase = iota
	PhaseSteering
	PhaseIntegrate
	PhaseSpatial
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{"path", "steering", "integrate", "spatial", "telemetry"}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Phases lists the step phases in execution order.
var Phases = []Phase{PhasePath, PhaseSteering, PhaseIntegrate, PhaseSpatial, PhaseTelemetry}

// tickSample is the timing of one step.
type tickSample struct {
	total  time.Duration
	phases [numPhases]time.Duration
	agents int
}

// PerfCollector times the step phases over a rolling window of ticks.
type PerfCollector struct {
	samples []tickSample
	next    int
	filled  int

	current    tickSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{samples: make([]tickSample, windowSize)}
}

// StartTick begins timing a step that moves the given number of agents.
func (p *PerfCollector) StartTick(agents int) {
	p.tickStart = time.Now()
	p.current = tickSample{agents: agents}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase >= 0 && p.phase < numPhases {
		p.current.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// EndTick closes the last phase and records the step.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.current.total = now.Sub(p.tickStart)

	p.samples[p.next] = p.current
	p.next = (p.next + 1) % len(p.samples)
	p.filled = min(p.filled+1, len(p.samples))
}

// PhaseStats summarizes one phase over the window.
type PhaseStats struct {
	Avg time.Duration
	Max time.Duration
	Pct float64 // Share of the average tick
}

// PerfStats holds the timing of the current window.
type PerfStats struct {
	Ticks           int
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64
	AgentMicros     float64 // Average tick time per agent, microseconds
	Phase           [numPhases]PhaseStats
	Slowest         Phase // Phase with the largest average
}

// Stats aggregates the samples in the window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Ticks: p.filled}
	if p.filled == 0 {
		return s
	}

	totals := make([]float64, p.filled)
	agents := 0
	var phaseSum [numPhases]time.Duration
	for i, sample := range p.samples[:p.filled] {
		totals[i] = float64(sample.total)
		agents += sample.agents
		for ph, d := range sample.phases {
			phaseSum[ph] += d
			s.Phase[ph].Max = max(s.Phase[ph].Max, d)
		}
	}

	n := float64(p.filled)
	avg := floats.Sum(totals) / n
	s.AvgTickDuration = time.Duration(avg)
	s.MinTickDuration = time.Duration(floats.Min(totals))
	s.MaxTickDuration = time.Duration(floats.Max(totals))
	if avg > 0 {
		s.TicksPerSecond = float64(time.Second) / avg
	}
	if agents > 0 {
		s.AgentMicros = floats.Sum(totals) / float64(agents) / float64(time.Microsecond)
	}

	for ph, sum := range phaseSum {
		s.Phase[ph].Avg = sum / time.Duration(p.filled)
		if avg > 0 {
			s.Phase[ph].Pct = float64(s.Phase[ph].Avg) / avg * 100
		}
		if s.Phase[ph].Avg > s.Phase[s.Slowest].Avg {
			s.Slowest = Phase(ph)
		}
	}
	return s
}

// LogStats logs the window timing.
func (s PerfStats) LogStats() {
	slog.Info("perf", "perf", s)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
		slog.Float64("agent_us", s.AgentMicros),
		slog.String("slowest", s.Slowest.String()),
	}
	for _, ph := range Phases {
		attrs = append(attrs, slog.Float64(ph.String()+"_pct", s.Phase[ph].Pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd     int32   `csv:"window_end"`
	AvgTickUS     int64   `csv:"avg_tick_us"`
	MinTickUS     int64   `csv:"min_tick_us"`
	MaxTickUS     int64   `csv:"max_tick_us"`
	TicksPerSec   float64 `csv:"ticks_per_sec"`
	AgentUS       float64 `csv:"agent_us"`
	Slowest       string  `csv:"slowest"`
	PathPct       float64 `csv:"path_pct"`
	SteeringPct   float64 `csv:"steering_pct"`
	IntegratePct  float64 `csv:"integrate_pct"`
	SpatialPct    float64 `csv:"spatial_pct"`
	TelemetryPct  float64 `csv:"telemetry_pct"`
	SteeringMaxUS int64   `csv:"steering_max_us"`
	SpatialMaxUS  int64   `csv:"spatial_max_us"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:     windowEnd,
		AvgTickUS:     s.AvgTickDuration.Microseconds(),
		MinTickUS:     s.MinTickDuration.Microseconds(),
		MaxTickUS:     s.MaxTickDuration.Microseconds(),
		TicksPerSec:   s.TicksPerSecond,
		AgentUS:       s.AgentMicros,
		Slowest:       s.Slowest.String(),
		PathPct:       s.Phase[PhasePath].Pct,
		SteeringPct:   s.Phase[PhaseSteering].Pct,
		IntegratePct:  s.Phase[PhaseIntegrate].Pct,
		SpatialPct:    s.Phase[PhaseSpatial].Pct,
		TelemetryPct:  s.Phase[PhaseTelemetry].Pct,
		SteeringMaxUS: s.Phase[PhaseSteering].Max.Microseconds(),
		SpatialMaxUS:  s.Phase[PhaseSpatial].Max.Microseconds(),
	}
}
