package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick(4)
		pc.StartPhase(PhaseSpatial)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseSteering)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.Ticks != 5 {
		t.Errorf("Ticks = %d, want 5", stats.Ticks)
	}
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if stats.Phase[PhaseSpatial].Avg <= 0 || stats.Phase[PhaseSteering].Avg <= 0 {
		t.Errorf("phases not tracked: %+v", stats.Phase)
	}
	if stats.Phase[PhasePath].Avg != 0 {
		t.Errorf("path phase = %v, want zero when never started", stats.Phase[PhasePath].Avg)
	}
	if stats.Phase[PhaseSteering].Max < stats.Phase[PhaseSteering].Avg {
		t.Error("phase max below its average")
	}
	if stats.MinTickDuration > stats.AvgTickDuration || stats.AvgTickDuration > stats.MaxTickDuration {
		t.Errorf("min/avg/max = %v/%v/%v", stats.MinTickDuration, stats.AvgTickDuration, stats.MaxTickDuration)
	}
	if stats.AgentMicros <= 0 {
		t.Error("expected positive time per agent")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick(1)
		pc.StartPhase(PhaseSpatial)
		time.Sleep(10 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.Ticks != 5 {
		t.Errorf("Ticks = %d, want window size 5", stats.Ticks)
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_SlowestPhase(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick(0)
		pc.StartPhase(PhasePath)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseIntegrate)
		time.Sleep(2 * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.Slowest != PhaseIntegrate {
		t.Errorf("Slowest = %v, want integrate", stats.Slowest)
	}
	if stats.Phase[PhaseIntegrate].Pct <= stats.Phase[PhasePath].Pct {
		t.Errorf("integrate %v%% should exceed path %v%%", stats.Phase[PhaseIntegrate].Pct, stats.Phase[PhasePath].Pct)
	}
	if stats.AgentMicros != 0 {
		t.Errorf("AgentMicros = %v, want zero without agents", stats.AgentMicros)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()
	if stats.Ticks != 0 || stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
}

func TestPhaseString(t *testing.T) {
	want := []string{"path", "steering", "integrate", "spatial", "telemetry"}
	for i, ph := range Phases {
		if ph.String() != want[i] {
			t.Errorf("Phases[%d] = %q, want %q", i, ph, want[i])
		}
	}
	if got := Phase(9).String(); got != "Phase(9)" {
		t.Errorf("Phase(9) = %q", got)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	var s PerfStats
	s.AvgTickDuration = 1500 * time.Microsecond
	s.TicksPerSecond = 666
	s.Slowest = PhaseSteering
	s.Phase[PhasePath].Pct = 10
	s.Phase[PhaseSteering].Pct = 70
	s.Phase[PhaseSteering].Max = 3 * time.Millisecond
	s.Phase[PhaseSpatial].Pct = 20

	row := s.ToCSV(42)
	if row.WindowEnd != 42 || row.AvgTickUS != 1500 || row.Slowest != "steering" {
		t.Errorf("row = %+v", row)
	}
	if row.PathPct != 10 || row.SteeringPct != 70 || row.SpatialPct != 20 || row.IntegratePct != 0 {
		t.Errorf("phase columns = %+v", row)
	}
	if row.SteeringMaxUS != 3000 {
		t.Errorf("SteeringMaxUS = %d, want 3000", row.SteeringMaxUS)
	}
}
