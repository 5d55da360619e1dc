// Package sim wires the crowd simulation to configuration, telemetry, and
// output for headless runs.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"

	"github.com/pthm-cable/kinetic/config"
	"github.com/pthm-cable/kinetic/flock"
	"github.com/pthm-cable/kinetic/telemetry"
	"github.com/pthm-cable/kinetic/vec"
)

// Options holds runtime options not covered by the config file.
type Options struct {
	Seed        int64  // RNG seed for spawning (0 = use config seed)
	LogStats    bool   // emit window stats via slog
	OutputDir   string // CSV output directory (empty = disabled)
	SnapshotDir string // state snapshot directory (empty = use OutputDir)
}

// Runner owns a crowd and drives it tick by tick, emitting telemetry on
// window boundaries.
type Runner struct {
	cfg   *config.Config
	crowd *flock.Crowd
	rng   *rand.Rand
	seed  int64

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager

	logStats    bool
	snapshotDir string
}

// NewRunner builds a runner from config, spawns the initial population,
// and opens output files if requested.
func NewRunner(cfg *config.Config, opts Options) (*Runner, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Sim.Seed
	}

	r := &Runner{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(seed)),
		seed:      seed,
		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Sim.DT, cfg.Analysis.CellSize),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		logStats:  opts.LogStats,
	}

	r.crowd = flock.NewCrowd(crowdConfig(cfg))
	r.spawnInitialPopulation()

	out, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("opening output: %w", err)
	}
	r.output = out
	if err := r.output.WriteConfig(cfg); err != nil {
		r.output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	r.snapshotDir = opts.SnapshotDir
	if r.snapshotDir == "" {
		r.snapshotDir = opts.OutputDir
	}

	return r, nil
}

// crowdConfig maps the loaded config onto flock parameters.
func crowdConfig(cfg *config.Config) flock.Config {
	e := cfg.Flock.BoundaryExtent
	return flock.Config{
		SeparationRadius: cfg.Flock.SeparationRadius,
		AlignmentRadius:  cfg.Flock.AlignmentRadius,
		CohesionRadius:   cfg.Flock.CohesionRadius,
		SeparationWeight: cfg.Flock.SeparationWeight,
		AlignmentWeight:  cfg.Flock.AlignmentWeight,
		CohesionWeight:   cfg.Flock.CohesionWeight,
		NeighborRadius:   cfg.Flock.NeighborRadius,
		MaxSpeed:         cfg.Flock.MaxSpeed,
		BoundaryMin:      vec.V3(-e, -e, -e),
		BoundaryMax:      vec.V3(e, e, e),
		BoundaryMargin:   cfg.Flock.BoundaryMargin,
		BoundaryStrength: cfg.Flock.BoundaryStrength,
	}
}

// spawnInitialPopulation creates the starting boids uniformly inside the
// spawn volume.
func (r *Runner) spawnInitialPopulation() {
	extent := r.cfg.Population.SpawnExtent
	speed := r.cfg.Population.InitialSpeed

	for i := 0; i < r.cfg.Population.Initial; i++ {
		pos := vec.V3(
			r.rng.Float64()*2*extent-extent,
			r.rng.Float64()*2*extent-extent,
			r.rng.Float64()*2*extent-extent,
		)
		vel := vec.V3(
			r.rng.Float64()*2*speed-speed,
			r.rng.Float64()*2*speed-speed,
			r.rng.Float64()*2*speed-speed,
		)
		r.crowd.AddBoid(pos, vel)
		r.collector.RecordSpawn()
	}
}

// Crowd returns the underlying crowd.
func (r *Runner) Crowd() *flock.Crowd { return r.crowd }

// Tick returns the completed tick count.
func (r *Runner) Tick() int64 { return r.crowd.Tick() }

// Step advances the simulation one tick, emitting telemetry on window
// boundaries.
func (r *Runner) Step() error {
	r.perf.StartTick()

	r.perf.StartPhase(telemetry.PhaseStep)
	if err := r.crowd.Step(r.cfg.Sim.DT); err != nil {
		return err
	}

	tick := r.crowd.Tick()

	if r.collector.ShouldEmit(tick) {
		r.perf.StartPhase(telemetry.PhaseAnalysis)
		boids := r.crowd.Snapshots()
		stats := r.collector.Emit(tick, boids)

		r.perf.StartPhase(telemetry.PhaseTelemetry)
		if r.logStats {
			stats.LogStats()
		}
		if err := r.output.WriteTelemetry(stats); err != nil {
			return err
		}
		if err := r.output.WritePerf(r.perf.Stats(), tick); err != nil {
			return err
		}
	}

	if ticks := r.cfg.Derived.SnapshotTicks; ticks > 0 && tick%ticks == 0 && r.snapshotDir != "" {
		if err := r.writeSnapshot(tick); err != nil {
			return err
		}
	}

	r.perf.EndTick()
	return nil
}

func (r *Runner) writeSnapshot(tick int64) error {
	snap := telemetry.CaptureSnapshot(tick, r.seed, r.crowd.Snapshots())
	path := filepath.Join(r.snapshotDir, fmt.Sprintf("snapshot_%08d.json", tick))
	return snap.Save(path)
}

// Run steps until the configured duration (or maxTicks, if positive and
// smaller) is reached.
func (r *Runner) Run(maxTicks int64) error {
	limit := r.cfg.Derived.TotalTicks
	if maxTicks > 0 && (limit == 0 || maxTicks < limit) {
		limit = maxTicks
	}

	if limit == 0 {
		return fmt.Errorf("no tick limit: set sim.duration or pass max ticks")
	}

	slog.Info("starting simulation",
		"seed", r.seed,
		"population", r.crowd.Len(),
		"ticks", limit,
		"dt", r.cfg.Sim.DT,
	)

	for r.crowd.Tick() < limit {
		if err := r.Step(); err != nil {
			return fmt.Errorf("tick %d: %w", r.crowd.Tick(), err)
		}
	}

	slog.Info("simulation complete", "tick", r.crowd.Tick(), "perf", r.perf.Stats())
	return nil
}

// Close releases the worker pool and output files.
func (r *Runner) Close() error {
	r.crowd.Close()
	return r.output.Close()
}
