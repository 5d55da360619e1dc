package telemetry

import (
	"github.com/pthm-cable/kinetic/agent"
	"github.com/pthm-cable/kinetic/analysis"
)

// Collector accumulates events within time windows and produces WindowStats
// from end-of-window population snapshots.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64
	dt                  float64
	cellSize            float64

	windowStartTick int64

	// Event counters for the current window
	spawns   int
	removals int
}

// NewCollector creates a stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
// dt: seconds per tick. cellSize: density grid resolution.
func NewCollector(windowDurationSec, dt, cellSize float64) *Collector {
	// Round to the nearest tick so near-integer ratios do not truncate.
	ticksPerWindow := int64(windowDurationSec/dt + 0.5)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		cellSize:            cellSize,
	}
}

// RecordSpawn records a boid addition.
func (c *Collector) RecordSpawn() {
	c.spawns++
}

// RecordRemoval records a boid removal.
func (c *Collector) RecordRemoval() {
	c.removals++
}

// ShouldEmit reports whether the current window ends at or before tick.
func (c *Collector) ShouldEmit(tick int64) bool {
	return tick-c.windowStartTick >= c.windowDurationTicks
}

// Emit closes the current window against the given population snapshot,
// resets the event counters, and starts the next window at tick.
func (c *Collector) Emit(tick int64, boids []agent.Snapshot) WindowStats {
	speeds := make([]float64, len(boids))
	for i := range boids {
		speeds[i] = boids[i].Velocity.Magnitude()
	}
	mean, p10, p50, p90 := ComputeSpeedStats(speeds)

	metrics := analysis.Measure(boids)
	pattern := analysis.DetectPattern(boids)
	density := analysis.AnalyzeDensity(boids, c.cellSize)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   tick,
		SimTimeSec:      float64(tick) * c.dt,
		Population:      len(boids),
		Spawns:          c.spawns,
		Removals:        c.removals,
		SpeedMean:       mean,
		SpeedP10:        p10,
		SpeedP50:        p50,
		SpeedP90:        p90,
		Alignment:       metrics.Alignment,
		Cohesion:        metrics.Cohesion,
		SpeedVariance:   metrics.SpeedVariance,
		Pattern:         pattern.String(),
		AverageDensity:  density.AverageDensity,
		MaxDensity:      density.MaxDensity,
		HotspotCount:    len(density.Hotspots),
	}

	c.windowStartTick = tick
	c.spawns = 0
	c.removals = 0

	return stats
}
