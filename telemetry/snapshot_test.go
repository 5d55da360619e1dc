package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/kinetic/agent"
	"github.com/pthm-cable/kinetic/vec"
)

func TestSnapshotRoundTrip(t *testing.T) {
	boids := []agent.Snapshot{
		{ID: "a", Position: vec.V3(1, 2, 3), Velocity: vec.V3(0.5, -0.5, 0)},
		{ID: "b", Position: vec.V3(-4, 0, 9), Velocity: vec.V3(0, 1, 0)},
	}

	snap := CaptureSnapshot(42, 7, boids)
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := snap.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	if loaded.Tick != 42 || loaded.Seed != 7 {
		t.Errorf("tick/seed = %d/%d, want 42/7", loaded.Tick, loaded.Seed)
	}

	restored := loaded.Snapshots()
	if len(restored) != len(boids) {
		t.Fatalf("restored %d boids, want %d", len(restored), len(boids))
	}
	for i := range boids {
		if restored[i] != boids[i] {
			t.Errorf("boid %d = %+v, want %+v", i, restored[i], boids[i])
		}
	}
}

func TestLoadSnapshotRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(`{"version": 99, "boids": []}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSnapshot(path); err == nil {
		t.Fatal("unknown version accepted")
	}
}

func TestOutputManagerWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	if err := om.WriteTelemetry(WindowStats{WindowEndTick: 10, Population: 3}); err != nil {
		t.Fatalf("WriteTelemetry: %v", err)
	}
	if err := om.WriteTelemetry(WindowStats{WindowEndTick: 20, Population: 4}); err != nil {
		t.Fatalf("WriteTelemetry: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("telemetry.csv has %d lines, want header + 2 records:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[0], "window_end") {
		t.Errorf("first line is not a header: %q", lines[0])
	}
	if strings.Contains(lines[1], "window_end") || strings.Contains(lines[2], "window_end") {
		t.Error("header repeated in record lines")
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	if om != nil {
		t.Fatal("empty dir should disable output")
	}

	// All operations are no-ops on a nil manager.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("WriteTelemetry on nil manager: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
}
