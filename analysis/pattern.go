package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/kinetic/agent"
	"github.com/pthm-cable/kinetic/vec"
)

// Pattern classifies the collective motion of a population.
type Pattern int

const (
	PatternUnknown Pattern = iota
	PatternFlocking
	PatternSwarming
	PatternMilling
	PatternSplitting
	PatternSchooling
)

// String returns the pattern name.
func (p Pattern) String() string {
	switch p {
	case PatternFlocking:
		return "flocking"
	case PatternSwarming:
		return "swarming"
	case PatternMilling:
		return "milling"
	case PatternSplitting:
		return "splitting"
	case PatternSchooling:
		return "schooling"
	}
	return "unknown"
}

// minPopulation is the smallest population DetectPattern will classify.
const minPopulation = 3

// Classification thresholds.
const (
	flockingAlignment = 0.8
	flockingCohesion  = 0.7
	flockingVariance  = 0.3

	swarmingCohesion = 0.8
	swarmingVariance = 0.6

	millingAlignment = 0.3
	millingVariance  = 0.7

	splittingCohesion = 0.4
)

// Metrics are the normalized order parameters behind pattern detection,
// each in or near [0, 1].
type Metrics struct {
	// Alignment is the mean agreement between each boid's heading and the
	// population's mean velocity direction. 1 is perfect agreement.
	Alignment float64
	// Cohesion decays with the mean distance to the population centroid.
	// 1 is full collapse onto the centroid.
	Cohesion float64
	// SpeedVariance is the population speed standard deviation relative
	// to the mean speed.
	SpeedVariance float64
}

// Measure computes the order parameters for a population. An empty
// population yields zero metrics.
func Measure(boids []agent.Snapshot) Metrics {
	if len(boids) == 0 {
		return Metrics{}
	}
	return Metrics{
		Alignment:     alignmentLevel(boids),
		Cohesion:      cohesionLevel(boids),
		SpeedVariance: speedVariance(boids),
	}
}

// DetectPattern classifies the population's motion. Populations below
// minPopulation are Unknown. Rules are checked in order; the first match
// wins.
func DetectPattern(boids []agent.Snapshot) Pattern {
	if len(boids) < minPopulation {
		return PatternUnknown
	}

	m := Measure(boids)

	switch {
	case m.Alignment > flockingAlignment && m.Cohesion > flockingCohesion && m.SpeedVariance < flockingVariance:
		return PatternFlocking
	case m.Cohesion > swarmingCohesion && m.SpeedVariance > swarmingVariance:
		return PatternSwarming
	case m.Alignment < millingAlignment && m.SpeedVariance > millingVariance:
		return PatternMilling
	case m.Cohesion < splittingCohesion:
		return PatternSplitting
	default:
		return PatternSchooling
	}
}

// alignmentLevel averages per-boid agreement with the mean velocity
// direction, mapped from [-1, 1] to [0, 1]. Boids at rest contribute
// nothing to the sum but stay in the divisor, so a half-stationary
// population cannot read as fully aligned.
func alignmentLevel(boids []agent.Snapshot) float64 {
	var avg vec.Vec3
	for i := range boids {
		avg = avg.Add(boids[i].Velocity)
	}
	avg = avg.Scale(1 / float64(len(boids)))

	if avg.Magnitude() == 0 {
		return 0
	}
	avgDir := avg.Normalized()

	total := 0.0
	for i := range boids {
		v := boids[i].Velocity
		if v.Magnitude() == 0 {
			continue
		}
		dot := v.Normalized().Dot(avgDir)
		total += (dot + 1) / 2
	}

	return total / float64(len(boids))
}

func cohesionLevel(boids []agent.Snapshot) float64 {
	var center vec.Vec3
	for i := range boids {
		center = center.Add(boids[i].Position)
	}
	center = center.Scale(1 / float64(len(boids)))

	dists := make([]float64, len(boids))
	for i := range boids {
		dists[i] = boids[i].Position.Sub(center).Magnitude()
	}

	return 1 / (1 + stat.Mean(dists, nil)*0.1)
}

// speedVariance is the population (not sample) standard deviation of
// speed, normalized by the mean speed with a small offset so an
// all-stationary population reads as zero rather than dividing by zero.
func speedVariance(boids []agent.Snapshot) float64 {
	speeds := make([]float64, len(boids))
	for i := range boids {
		speeds[i] = boids[i].Velocity.Magnitude()
	}

	mean := stat.Mean(speeds, nil)
	variance := stat.MomentAbout(2, speeds, mean, nil)

	return math.Sqrt(variance) / (mean + 0.1)
}
