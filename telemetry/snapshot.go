package telemetry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pthm-cable/kinetic/agent"
	"github.com/pthm-cable/kinetic/vec"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the kinematic state of the whole population at one tick,
// for replay and offline analysis.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`
	Tick    int64 `json:"tick"`

	Boids []BoidState `json:"boids"`
}

// BoidState holds one boid's kinematic state.
type BoidState struct {
	ID   string  `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
	VelX float64 `json:"vel_x"`
	VelY float64 `json:"vel_y"`
	VelZ float64 `json:"vel_z"`
}

// CaptureSnapshot builds a snapshot from the current population state.
func CaptureSnapshot(tick, seed int64, boids []agent.Snapshot) Snapshot {
	out := Snapshot{
		Version: SnapshotVersion,
		Seed:    seed,
		Tick:    tick,
		Boids:   make([]BoidState, len(boids)),
	}
	for i, b := range boids {
		out.Boids[i] = BoidState{
			ID:   b.ID,
			X:    b.Position.X,
			Y:    b.Position.Y,
			Z:    b.Position.Z,
			VelX: b.Velocity.X,
			VelY: b.Velocity.Y,
			VelZ: b.Velocity.Z,
		}
	}
	return out
}

// Snapshots converts the stored boid states back to kinematic snapshots.
func (s *Snapshot) Snapshots() []agent.Snapshot {
	out := make([]agent.Snapshot, len(s.Boids))
	for i, b := range s.Boids {
		out[i] = agent.Snapshot{
			ID:       b.ID,
			Position: vec.V3(b.X, b.Y, b.Z),
			Velocity: vec.V3(b.VelX, b.VelY, b.VelZ),
		}
	}
	return out
}

// Save writes the snapshot as indented JSON.
func (s *Snapshot) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot file and checks its version.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	return &s, nil
}
