package sim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/kinetic/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.Population.Initial = 40
	cfg.Sim.Duration = 1.0
	return cfg
}

func TestRunnerRun(t *testing.T) {
	cfg := testConfig(t)

	r, err := NewRunner(cfg, Options{Seed: 1})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer r.Close()

	if r.Crowd().Len() != 40 {
		t.Fatalf("population = %d, want 40", r.Crowd().Len())
	}

	if err := r.Run(0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := r.Tick(); got != cfg.Derived.TotalTicks {
		t.Errorf("tick = %d, want %d", got, cfg.Derived.TotalTicks)
	}
}

func TestRunnerMaxTicksOverridesDuration(t *testing.T) {
	cfg := testConfig(t)

	r, err := NewRunner(cfg, Options{Seed: 1})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer r.Close()

	if err := r.Run(10); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.Tick() != 10 {
		t.Errorf("tick = %d, want 10", r.Tick())
	}
}

func TestRunnerNoLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sim.Duration = 0
	cfg.Derived.TotalTicks = 0

	r, err := NewRunner(cfg, Options{Seed: 1})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer r.Close()

	if err := r.Run(0); err == nil {
		t.Error("unbounded Run accepted without a limit")
	}
}

func TestRunnerWritesOutput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Telemetry.SnapshotInterval = 0.5
	cfg.Derived.SnapshotTicks = 30

	dir := t.TempDir()
	r, err := NewRunner(cfg, Options{Seed: 1, OutputDir: dir})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	if err := r.Run(0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// 60 ticks in 1 second at 1s windows: header plus one record.
	if len(lines) < 2 {
		t.Errorf("telemetry.csv has %d lines, want header plus records", len(lines))
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "snapshot_00000030.json")); err != nil {
		t.Errorf("snapshot at tick 30 not written: %v", err)
	}
}

func TestRunnerDeterministicForSeed(t *testing.T) {
	run := func() []float64 {
		cfg := testConfig(t)
		r, err := NewRunner(cfg, Options{Seed: 9})
		if err != nil {
			t.Fatalf("NewRunner: %v", err)
		}
		defer r.Close()

		if err := r.Run(20); err != nil {
			t.Fatalf("Run: %v", err)
		}

		var xs []float64
		for _, s := range r.Crowd().Snapshots() {
			xs = append(xs, s.Position.X)
		}
		return xs
	}

	a := run()
	b := run()
	if len(a) != len(b) {
		t.Fatalf("population diverged: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("boid %d: x diverged, %v vs %v", i, a[i], b[i])
		}
	}
}
