package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	dest := [3]float64{40, 0, 80}
	snapshot := &Snapshot{
		Version: SnapshotVersion,
		RNGSeed: 42,
		Tick:    1000,
		Agents: []AgentState{
			{
				ID:          1,
				Group:       "traffic",
				Position:    [3]float64{10, 0, 5},
				Velocity:    [3]float64{1, 0, 0},
				Heading:     [3]float64{1, 0, 0},
				Destination: &dest,
				Waypoints:   [][3]float64{{40, 0, 80}, {40, 0, 40}},
				Distance:    123.5,
				TopSpeed:    7.5,
				Arrivals:    2,
			},
			{ID: 2, Group: "flock"},
		},
		Obstacles: []ObstacleState{{ID: 3, Center: [3]float64{20, 0, 20}, Radius: 3}},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}
	if expected := filepath.Join(tmpDir, "snapshot_1000.json"); path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.RNGSeed != snapshot.RNGSeed || loaded.Tick != snapshot.Tick {
		t.Errorf("header mismatch: got seed %d tick %d", loaded.RNGSeed, loaded.Tick)
	}
	if len(loaded.Agents) != 2 || len(loaded.Obstacles) != 1 {
		t.Fatalf("counts: %d agents, %d obstacles", len(loaded.Agents), len(loaded.Obstacles))
	}
	a := loaded.Agents[0]
	if a.Destination == nil || *a.Destination != dest {
		t.Errorf("destination = %v, want %v", a.Destination, dest)
	}
	if len(a.Waypoints) != 2 || a.Waypoints[1] != [3]float64{40, 0, 40} {
		t.Errorf("waypoints = %v", a.Waypoints)
	}
	if loaded.Agents[1].Destination != nil {
		t.Error("agent without destination gained one")
	}
}

func TestLoadSnapshotVersionMismatch(t *testing.T) {
	tmpDir := t.TempDir()
	path, err := SaveSnapshot(&Snapshot{Version: SnapshotVersion + 1, Tick: 7}, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version mismatch error")
	}
	if _, err := LoadSnapshot(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
