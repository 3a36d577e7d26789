package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the observable simulation state at one tick.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`
	Tick    int32 `json:"tick"`

	Agents    []AgentState    `json:"agents"`
	Obstacles []ObstacleState `json:"obstacles"`
}

// AgentState holds one agent's state.
type AgentState struct {
	ID    int    `json:"id"`
	Group string `json:"group"`

	// Position and movement
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
	Heading  [3]float64 `json:"heading"`

	// Routing
	Destination *[3]float64  `json:"destination,omitempty"`
	Waypoints   [][3]float64 `json:"waypoints,omitempty"` // Next waypoint last

	// Odometer
	Distance float64 `json:"distance"`
	TopSpeed float64 `json:"top_speed"`
	Arrivals int     `json:"arrivals"`
}

// ObstacleState holds one static obstacle.
type ObstacleState struct {
	ID     int        `json:"id"`
	Center [3]float64 `json:"center"`
	Radius float64    `json:"radius"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.Tick))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
