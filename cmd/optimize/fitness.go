package main

import (
	"math"
	"math/rand"
	"sync"

	"github.com/pthm-cable/kinetic/agent"
	"github.com/pthm-cable/kinetic/analysis"
	"github.com/pthm-cable/kinetic/config"
	"github.com/pthm-cable/kinetic/flock"
	"github.com/pthm-cable/kinetic/vec"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int64
	seeds      []int64
	baseConfig *config.Config

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestSummary *RunSummary
	lastQuality float64 // quality from most recent Evaluate call
}

// RunSummary aggregates the sampled metrics from one simulation run.
type RunSummary struct {
	Seed          int64   `json:"seed"`
	Samples       int     `json:"samples"`
	Alignment     float64 `json:"alignment"`
	Cohesion      float64 `json:"cohesion"`
	SpeedVariance float64 `json:"speed_variance"`
	FlockingFrac  float64 `json:"flocking_frac"`
	EscapedFrac   float64 `json:"escaped_frac"`
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestSummary returns the run summary from the best evaluation.
func (fe *FitnessEvaluator) BestSummary() *RunSummary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestSummary
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Sampling cadence and warmup in simulation seconds. The warmup gives the
// random initial population time to organize before metrics count.
const (
	sampleIntervalSec = 1.0
	warmupSec         = 5.0
)

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	quality float64
	summary RunSummary
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative flock quality: more ordered flocks score lower.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// Run all seeds in parallel
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			summary := fe.runSimulation(x, s)
			results[idx] = seedResult{
				quality: fe.computeQuality(summary),
				summary: summary,
			}
		}(i, seed)
	}
	wg.Wait()

	// Aggregate results
	var totalQuality float64
	bestSeedQuality := math.Inf(-1)
	var bestSeedSummary RunSummary

	for _, r := range results {
		totalQuality += r.quality
		if r.quality > bestSeedQuality {
			bestSeedQuality = r.quality
			bestSeedSummary = r.summary
		}
	}

	avgQuality := totalQuality / float64(len(fe.seeds))
	fitness := -avgQuality

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		best := bestSeedSummary
		fe.bestSummary = &best
	}
	fe.lastQuality = avgQuality
	fe.mu.Unlock()

	return fitness
}

// runSimulation executes a single headless simulation run and samples
// flock metrics at a fixed cadence past warmup.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) RunSummary {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	dt := cfg.Sim.DT
	sampleTicks := int64(sampleIntervalSec/dt + 0.5)
	warmupTicks := int64(warmupSec/dt + 0.5)

	extent := cfg.Flock.BoundaryExtent
	crowd := flock.NewCrowd(flock.Config{
		SeparationRadius: cfg.Flock.SeparationRadius,
		AlignmentRadius:  cfg.Flock.AlignmentRadius,
		CohesionRadius:   cfg.Flock.CohesionRadius,
		SeparationWeight: cfg.Flock.SeparationWeight,
		AlignmentWeight:  cfg.Flock.AlignmentWeight,
		CohesionWeight:   cfg.Flock.CohesionWeight,
		NeighborRadius:   cfg.Flock.NeighborRadius,
		MaxSpeed:         cfg.Flock.MaxSpeed,
		BoundaryMin:      vec.V3(-extent, -extent, -extent),
		BoundaryMax:      vec.V3(extent, extent, extent),
		BoundaryMargin:   cfg.Flock.BoundaryMargin,
		BoundaryStrength: cfg.Flock.BoundaryStrength,
	})
	defer crowd.Close()

	rng := rand.New(rand.NewSource(seed))
	spawnExtent := cfg.Population.SpawnExtent
	speed := cfg.Population.InitialSpeed
	for i := 0; i < cfg.Population.Initial; i++ {
		pos := vec.V3(
			rng.Float64()*2*spawnExtent-spawnExtent,
			rng.Float64()*2*spawnExtent-spawnExtent,
			rng.Float64()*2*spawnExtent-spawnExtent,
		)
		vel := vec.V3(
			rng.Float64()*2*speed-speed,
			rng.Float64()*2*speed-speed,
			rng.Float64()*2*speed-speed,
		)
		crowd.AddBoid(pos, vel)
	}

	summary := RunSummary{Seed: seed}
	var alignSum, cohSum, varSum, escSum float64
	var flockingCount int

	for crowd.Tick() < fe.maxTicks {
		if err := crowd.Step(dt); err != nil {
			break
		}

		tick := crowd.Tick()
		if tick < warmupTicks || tick%sampleTicks != 0 {
			continue
		}

		boids := crowd.Snapshots()
		metrics := analysis.Measure(boids)
		alignSum += metrics.Alignment
		cohSum += metrics.Cohesion
		varSum += metrics.SpeedVariance
		if analysis.DetectPattern(boids) == analysis.PatternFlocking {
			flockingCount++
		}
		escSum += escapedFraction(boids, extent)
		summary.Samples++
	}

	if summary.Samples > 0 {
		n := float64(summary.Samples)
		summary.Alignment = alignSum / n
		summary.Cohesion = cohSum / n
		summary.SpeedVariance = varSum / n
		summary.FlockingFrac = float64(flockingCount) / n
		summary.EscapedFrac = escSum / n
	}

	return summary
}

// escapedFraction reports the fraction of boids outside the boundary box.
func escapedFraction(boids []agent.Snapshot, extent float64) float64 {
	if len(boids) == 0 {
		return 0
	}
	escaped := 0
	for _, b := range boids {
		p := b.Position
		if p.X < -extent || p.X > extent ||
			p.Y < -extent || p.Y > extent ||
			p.Z < -extent || p.Z > extent {
			escaped++
		}
	}
	return float64(escaped) / float64(len(boids))
}

// copyConfig creates a copy of the base config for one evaluation.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// Quality component weights.
const (
	qualityWeightAlignment   = 0.35
	qualityWeightCohesion    = 0.25
	qualityWeightSteadiness  = 0.15
	qualityWeightFlocking    = 0.25
	qualityEscapePenaltyGain = 2.0
)

// computeQuality computes flock quality from a run summary. Ordered,
// grouped, steady flocks that stay inside the boundary score near 1.
func (fe *FitnessEvaluator) computeQuality(s RunSummary) float64 {
	if s.Samples == 0 {
		return 0
	}

	steadiness := 1.0 - clamp01(s.SpeedVariance)

	quality := qualityWeightAlignment*s.Alignment +
		qualityWeightCohesion*s.Cohesion +
		qualityWeightSteadiness*steadiness +
		qualityWeightFlocking*s.FlockingFrac

	quality -= qualityEscapePenaltyGain * s.EscapedFrac

	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
