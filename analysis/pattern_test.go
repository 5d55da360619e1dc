package analysis

import (
	"math"
	"testing"

	"github.com/pthm-cable/kinetic/agent"
	"github.com/pthm-cable/kinetic/vec"
)

func snap(pos, vel vec.Vec3) agent.Snapshot {
	return agent.Snapshot{Position: pos, Velocity: vel}
}

func TestDetectPatternTooFew(t *testing.T) {
	boids := []agent.Snapshot{
		snap(vec.V3(0, 0, 0), vec.V3(1, 0, 0)),
		snap(vec.V3(1, 0, 0), vec.V3(1, 0, 0)),
	}
	if got := DetectPattern(boids); got != PatternUnknown {
		t.Errorf("pattern = %v, want unknown below minimum population", got)
	}
}

func TestDetectPatternFlocking(t *testing.T) {
	// Tight cluster, identical velocities: perfect alignment, high
	// cohesion, zero speed variance.
	v := vec.V3(3, 1, 0)
	boids := []agent.Snapshot{
		snap(vec.V3(0, 0, 0), v),
		snap(vec.V3(1, 0, 0), v),
		snap(vec.V3(0, 1, 0), v),
		snap(vec.V3(1, 1, 0), v),
	}

	m := Measure(boids)
	if m.Alignment <= flockingAlignment {
		t.Errorf("alignment = %v, want > %v", m.Alignment, flockingAlignment)
	}
	if m.SpeedVariance != 0 {
		t.Errorf("speed variance = %v, want 0", m.SpeedVariance)
	}
	if got := DetectPattern(boids); got != PatternFlocking {
		t.Errorf("pattern = %v, want flocking", got)
	}
}

func TestDetectPatternSwarming(t *testing.T) {
	// Tight cluster with wildly uneven speeds.
	boids := []agent.Snapshot{
		snap(vec.V3(0, 0, 0), vec.V3(0.1, 0, 0)),
		snap(vec.V3(0.5, 0, 0), vec.V3(0, 5, 0)),
		snap(vec.V3(0, 0.5, 0), vec.V3(10, 0, 0)),
	}

	m := Measure(boids)
	if m.Cohesion <= swarmingCohesion {
		t.Fatalf("cohesion = %v, want > %v for this fixture", m.Cohesion, swarmingCohesion)
	}
	if m.SpeedVariance <= swarmingVariance {
		t.Fatalf("speed variance = %v, want > %v for this fixture", m.SpeedVariance, swarmingVariance)
	}
	if got := DetectPattern(boids); got != PatternSwarming {
		t.Errorf("pattern = %v, want swarming", got)
	}
}

func TestDetectPatternMilling(t *testing.T) {
	// Opposed pairs cancel the mean velocity; speeds differ strongly.
	boids := []agent.Snapshot{
		snap(vec.V3(0, 0, 0), vec.V3(10, 0, 0)),
		snap(vec.V3(20, 0, 0), vec.V3(-10, 0, 0)),
		snap(vec.V3(0, 20, 0), vec.V3(0, 0.5, 0)),
		snap(vec.V3(20, 20, 0), vec.V3(0, -0.5, 0)),
	}

	m := Measure(boids)
	if m.Alignment >= millingAlignment {
		t.Fatalf("alignment = %v, want < %v for this fixture", m.Alignment, millingAlignment)
	}
	if got := DetectPattern(boids); got != PatternMilling {
		t.Errorf("pattern = %v, want milling", got)
	}
}

func TestDetectPatternSplitting(t *testing.T) {
	// Two aligned groups far apart: alignment stays high but cohesion
	// collapses.
	v := vec.V3(2, 0, 0)
	boids := []agent.Snapshot{
		snap(vec.V3(0, 0, 0), v),
		snap(vec.V3(1, 0, 0), v),
		snap(vec.V3(100, 0, 0), v),
		snap(vec.V3(101, 0, 0), v),
	}

	m := Measure(boids)
	if m.Cohesion >= splittingCohesion {
		t.Fatalf("cohesion = %v, want < %v for this fixture", m.Cohesion, splittingCohesion)
	}
	if got := DetectPattern(boids); got != PatternSplitting {
		t.Errorf("pattern = %v, want splitting", got)
	}
}

func TestDetectPatternSchooling(t *testing.T) {
	// Aligned and evenly spaced: cohesion lands between the splitting
	// and flocking thresholds, so no specific rule fires.
	v := vec.V3(1, 0, 0)
	boids := []agent.Snapshot{
		snap(vec.V3(0, 0, 0), v),
		snap(vec.V3(8, 0, 0), v),
		snap(vec.V3(16, 0, 0), v),
	}

	m := Measure(boids)
	if m.Cohesion <= splittingCohesion || m.Cohesion >= flockingCohesion {
		t.Fatalf("cohesion = %v, want between %v and %v for this fixture",
			m.Cohesion, splittingCohesion, flockingCohesion)
	}
	if got := DetectPattern(boids); got != PatternSchooling {
		t.Errorf("pattern = %v, want schooling", got)
	}
}

func TestMeasureStationaryPopulation(t *testing.T) {
	boids := []agent.Snapshot{
		snap(vec.V3(0, 0, 0), vec.Vec3{}),
		snap(vec.V3(1, 0, 0), vec.Vec3{}),
		snap(vec.V3(2, 0, 0), vec.Vec3{}),
	}

	m := Measure(boids)
	if m.Alignment != 0 {
		t.Errorf("alignment = %v, want 0 for stationary population", m.Alignment)
	}
	if m.SpeedVariance != 0 {
		t.Errorf("speed variance = %v, want 0 for stationary population", m.SpeedVariance)
	}
}

func TestMeasureRestingBoidsDiluteAlignment(t *testing.T) {
	moving := vec.V3(5, 0, 0)
	boids := []agent.Snapshot{
		snap(vec.V3(0, 0, 0), moving),
		snap(vec.V3(1, 0, 0), moving),
		snap(vec.V3(2, 0, 0), vec.Vec3{}),
		snap(vec.V3(3, 0, 0), vec.Vec3{}),
	}

	// Two resting boids contribute nothing but stay in the divisor.
	m := Measure(boids)
	if math.Abs(m.Alignment-0.5) > tol {
		t.Errorf("alignment = %v, want 0.5", m.Alignment)
	}
}

func TestPatternString(t *testing.T) {
	tests := []struct {
		p    Pattern
		want string
	}{
		{PatternUnknown, "unknown"},
		{PatternFlocking, "flocking"},
		{PatternSwarming, "swarming"},
		{PatternMilling, "milling"},
		{PatternSplitting, "splitting"},
		{PatternSchooling, "schooling"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("Pattern(%d).String() = %q, want %q", tt.p, got, tt.want)
		}
	}
}
