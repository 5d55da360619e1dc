package steering

import "github.com/pthm-cable/kinetic/agent"

// AnimationType classifies agent movement by speed.
type AnimationType int

const (
	AnimationIdle AnimationType = iota
	AnimationWalk
	AnimationRun
)

// String returns the animation name.
func (t AnimationType) String() string {
	switch t {
	case AnimationIdle:
		return "idle"
	case AnimationWalk:
		return "walk"
	case AnimationRun:
		return "run"
	}
	return "unknown"
}

// Extension store keys written by the animator.
const (
	MemoryKeyAnimationType = "animation_type"
	MemoryKeyAnimationTime = "animation_time"
)

// Speed thresholds between animation states.
const (
	idleSpeedMax = 0.1
	walkSpeedMax = 5.0
)

// MovementAnimator maps an agent's speed to an animation state and tracks
// time spent in that state. State and elapsed time are mirrored into the
// agent's extension store for decision layers to read.
type MovementAnimator struct {
	current AnimationType
	elapsed float64
}

// NewMovementAnimator creates an animator starting in the idle state.
func NewMovementAnimator() *MovementAnimator {
	return &MovementAnimator{current: AnimationIdle}
}

// Current returns the active animation state.
func (m *MovementAnimator) Current() AnimationType { return m.current }

// Elapsed returns the time spent in the active state.
func (m *MovementAnimator) Elapsed() float64 { return m.elapsed }

// Update advances the state clock and reclassifies from the agent's speed.
// A state change resets the clock and writes the new state to the agent's
// extension store; elapsed time is written every call.
func (m *MovementAnimator) Update(a *agent.Agent, deltaTime float64) {
	m.elapsed += deltaTime

	next := classifySpeed(a.Velocity.Magnitude())
	if next != m.current {
		m.current = next
		m.elapsed = 0
		a.SetMemory(MemoryKeyAnimationType, m.current)
	}
	a.SetMemory(MemoryKeyAnimationTime, m.elapsed)
}

func classifySpeed(speed float64) AnimationType {
	switch {
	case speed < idleSpeedMax:
		return AnimationIdle
	case speed < walkSpeedMax:
		return AnimationWalk
	default:
		return AnimationRun
	}
}
