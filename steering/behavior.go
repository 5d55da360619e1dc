// Package steering implements force-generating steering behaviors and the
// controller that composes them into agent motion. Each behavior is a pure
// function of an agent and a neighbor snapshot; only Wander carries state
// across ticks (its wander target and random source).
package steering

import (
	"math/rand"

	"github.com/pthm-cable/kinetic/agent"
	"github.com/pthm-cable/kinetic/vec"
)

// Kind identifies a steering behavior variant.
type Kind uint8

const (
	KindSeek Kind = iota
	KindFlee
	KindWander
	KindSeparation
	KindAlignment
	KindCohesion
	KindAvoidance
)

// String returns the behavior name.
func (k Kind) String() string {
	switch k {
	case KindSeek:
		return "seek"
	case KindFlee:
		return "flee"
	case KindWander:
		return "wander"
	case KindSeparation:
		return "separation"
	case KindAlignment:
		return "alignment"
	case KindCohesion:
		return "cohesion"
	case KindAvoidance:
		return "avoidance"
	}
	return "unknown"
}

// Steering constants shared by the behaviors.
const (
	// targetSpeed is the magnitude desired velocities are renormalized to.
	targetSpeed = 10.0
	// wanderSpeed is the reduced seek speed used by Wander.
	wanderSpeed = 5.0
	// wanderMinSpeed is the speed below which Wander projects its circle
	// along a fixed default heading instead of the current velocity.
	wanderMinSpeed = 0.1
	// obstacleAgentRadius pads obstacle radii to account for agent size.
	obstacleAgentRadius = 1.0
)

// Default neighborhood radii.
const (
	DefaultWanderRadius     = 2.0
	DefaultWanderDistance   = 5.0
	DefaultWanderJitter     = 1.0
	DefaultSeparationRadius = 3.0
	DefaultAlignmentRadius  = 5.0
	DefaultCohesionRadius   = 8.0
	DefaultAvoidanceRadius  = 4.0
)

// Obstacle is an immutable static obstacle registered with Avoidance.
type Obstacle struct {
	Position vec.Vec3
	Radius   float64
}

// Behavior is a closed tagged variant over the seven steering behaviors.
// Weight defaults to 1.0 and Enabled to true; disabled behaviors contribute
// nothing when composed by a Controller.
type Behavior struct {
	kind    Kind
	Weight  float64
	Enabled bool

	// Seek target or Flee threat.
	target vec.Vec3

	// Neighborhood radius for the local behaviors.
	radius float64

	// Wander state: a persistent point on a circle of `radius`, perturbed
	// each call and projected `wanderDistance` ahead of the agent.
	wanderDistance float64
	wanderJitter   float64
	wanderTarget   vec.Vec3
	rng            *rand.Rand

	obstacles []Obstacle
}

func newBehavior(kind Kind) *Behavior {
	return &Behavior{kind: kind, Weight: 1.0, Enabled: true}
}

// Seek returns a behavior steering toward a fixed target position.
func Seek(target vec.Vec3) *Behavior {
	b := newBehavior(KindSeek)
	b.target = target
	return b
}

// Flee returns a behavior steering away from a threat position.
func Flee(threat vec.Vec3) *Behavior {
	b := newBehavior(KindFlee)
	b.target = threat
	return b
}

// Wander returns a meandering behavior. The random source must be non-nil;
// it is owned by this behavior so runs stay reproducible under a fixed seed.
func Wander(radius, distance, jitter float64, rng *rand.Rand) *Behavior {
	if rng == nil {
		panic("steering: Wander requires a non-nil random source")
	}
	b := newBehavior(KindWander)
	b.radius = radius
	b.wanderDistance = distance
	b.wanderJitter = jitter
	b.wanderTarget = vec.V3(0, 0, 1)
	b.rng = rng
	return b
}

// Separation returns a behavior pushing away from neighbors closer than radius.
func Separation(radius float64) *Behavior {
	b := newBehavior(KindSeparation)
	b.radius = radius
	return b
}

// Alignment returns a behavior matching the mean velocity of neighbors
// within radius.
func Alignment(radius float64) *Behavior {
	b := newBehavior(KindAlignment)
	b.radius = radius
	return b
}

// Cohesion returns a behavior steering toward the centroid of neighbors
// within radius.
func Cohesion(radius float64) *Behavior {
	b := newBehavior(KindCohesion)
	b.radius = radius
	return b
}

// Avoidance returns a behavior repelled by nearby agents and registered
// obstacles within radius.
func Avoidance(radius float64) *Behavior {
	b := newBehavior(KindAvoidance)
	b.radius = radius
	return b
}

// Kind returns the behavior's variant tag.
func (b *Behavior) Kind() Kind { return b.kind }

// SetTarget retargets a Seek behavior.
func (b *Behavior) SetTarget(target vec.Vec3) { b.target = target }

// SetThreat retargets a Flee behavior.
func (b *Behavior) SetThreat(threat vec.Vec3) { b.target = threat }

// Target returns the current Seek target or Flee threat.
func (b *Behavior) Target() vec.Vec3 { return b.target }

// AddObstacle registers a static obstacle with an Avoidance behavior.
func (b *Behavior) AddObstacle(position vec.Vec3, radius float64) {
	b.obstacles = append(b.obstacles, Obstacle{Position: position, Radius: radius})
}

// Compute returns the behavior's steering force for the agent against the
// given neighbor snapshot. Every variant returns the zero vector when no
// neighbor or target qualifies; no input produces NaN or Inf.
func (b *Behavior) Compute(a *agent.Agent, neighbors []agent.Snapshot) vec.Vec3 {
	switch b.kind {
	case KindSeek:
		return seekForce(a, b.target)
	case KindFlee:
		return fleeForce(a, b.target)
	case KindWander:
		return b.wanderForce(a)
	case KindSeparation:
		return separationForce(a, neighbors, b.radius)
	case KindAlignment:
		return alignmentForce(a, neighbors, b.radius)
	case KindCohesion:
		return cohesionForce(a, neighbors, b.radius)
	case KindAvoidance:
		return b.avoidanceForce(a, neighbors)
	}
	return vec.Vec3{}
}

func seekForce(a *agent.Agent, target vec.Vec3) vec.Vec3 {
	desired := target.Sub(a.Position).Normalized().Scale(targetSpeed)
	return desired.Sub(a.Velocity)
}

func fleeForce(a *agent.Agent, threat vec.Vec3) vec.Vec3 {
	desired := a.Position.Sub(threat).Normalized().Scale(targetSpeed)
	return desired.Sub(a.Velocity)
}

func (b *Behavior) wanderForce(a *agent.Agent) vec.Vec3 {
	// Perturb the persistent wander target and renormalize it back onto
	// the wander circle. Jitter is applied on the X/Z plane.
	jitter := vec.V3(
		b.rng.Float64()*2*b.wanderJitter-b.wanderJitter,
		0,
		b.rng.Float64()*2*b.wanderJitter-b.wanderJitter,
	)
	b.wanderTarget = b.wanderTarget.Add(jitter).Normalized().Scale(b.radius)

	heading := a.Velocity
	if heading.Magnitude() > wanderMinSpeed {
		heading = heading.Normalized()
	} else {
		heading = vec.V3(0, 0, 1)
	}

	center := a.Position.Add(heading.Scale(b.wanderDistance))
	target := center.Add(b.wanderTarget)

	desired := target.Sub(a.Position).Normalized().Scale(wanderSpeed)
	return desired.Sub(a.Velocity)
}

func separationForce(a *agent.Agent, neighbors []agent.Snapshot, radius float64) vec.Vec3 {
	var steer vec.Vec3
	count := 0

	for i := range neighbors {
		n := &neighbors[i]
		if n.ID == a.ID {
			continue
		}
		diff := a.Position.Sub(n.Position)
		d := diff.Magnitude()
		if d > 0 && d < radius {
			// Closer neighbors contribute more.
			steer = steer.Add(diff.Normalized().Scale(1 / d))
			count++
		}
	}

	if count > 0 {
		steer = steer.Scale(1 / float64(count))
		steer = steer.Normalized().Scale(targetSpeed)
		steer = steer.Sub(a.Velocity)
	}

	return steer
}

func alignmentForce(a *agent.Agent, neighbors []agent.Snapshot, radius float64) vec.Vec3 {
	var sum vec.Vec3
	count := 0

	for i := range neighbors {
		n := &neighbors[i]
		if n.ID == a.ID {
			continue
		}
		d := a.Position.Sub(n.Position).Magnitude()
		if d > 0 && d < radius {
			sum = sum.Add(n.Velocity)
			count++
		}
	}

	if count == 0 {
		return vec.Vec3{}
	}

	desired := sum.Scale(1 / float64(count)).Normalized().Scale(targetSpeed)
	return desired.Sub(a.Velocity)
}

func cohesionForce(a *agent.Agent, neighbors []agent.Snapshot, radius float64) vec.Vec3 {
	var sum vec.Vec3
	count := 0

	for i := range neighbors {
		n := &neighbors[i]
		if n.ID == a.ID {
			continue
		}
		d := a.Position.Sub(n.Position).Magnitude()
		if d > 0 && d < radius {
			sum = sum.Add(n.Position)
			count++
		}
	}

	if count == 0 {
		return vec.Vec3{}
	}

	centroid := sum.Scale(1 / float64(count))
	desired := centroid.Sub(a.Position).Normalized().Scale(targetSpeed)
	return desired.Sub(a.Velocity)
}

func (b *Behavior) avoidanceForce(a *agent.Agent, neighbors []agent.Snapshot) vec.Vec3 {
	var steer vec.Vec3

	for i := range neighbors {
		n := &neighbors[i]
		if n.ID == a.ID {
			continue
		}
		diff := a.Position.Sub(n.Position)
		d := diff.Magnitude()
		if d > 0 && d < b.radius {
			// Stronger repulsion when closer.
			steer = steer.Add(diff.Normalized().Scale(b.radius / d))
		}
	}

	for i := range b.obstacles {
		ob := &b.obstacles[i]
		diff := a.Position.Sub(ob.Position)
		d := diff.Magnitude()
		total := ob.Radius + obstacleAgentRadius
		if d > 0 && d < total+b.radius {
			steer = steer.Add(diff.Normalized().Scale((total + b.radius) / d))
		}
	}

	if steer.Magnitude() > 0 {
		steer = steer.Normalized().Scale(targetSpeed)
		steer = steer.Sub(a.Velocity)
	}

	return steer
}
