// Package agent defines the kinematic agent record shared by the steering
// and flocking layers, plus the string-keyed extension store collaborating
// layers use to pass state through an agent.
package agent

import (
	"github.com/google/uuid"

	"github.com/pthm-cable/kinetic/vec"
)

// Vitals bounds for health and energy.
const (
	VitalsMin = 0.0
	VitalsMax = 100.0
)

// Agent is the minimal kinematic record: a stable identity, position and
// velocity, clamped vitals, and an open extension store. Position and
// velocity are mutated only by the controller/crowd layers; behaviors treat
// agents as read-only.
type Agent struct {
	ID       string
	Position vec.Vec3
	Velocity vec.Vec3

	health float64
	energy float64

	memory map[string]any

	// OnMemoryMiss, if set, is called whenever a typed memory read falls
	// back to its default because the key is absent or holds a different
	// type. Reason is "absent" or "type mismatch".
	OnMemoryMiss func(key, reason string)
}

// New creates an agent at the given position with a generated UUID,
// full health and energy, and zero velocity.
func New(position vec.Vec3) *Agent {
	return NewWithID(uuid.NewString(), position)
}

// NewWithID creates an agent with a caller-chosen identity.
func NewWithID(id string, position vec.Vec3) *Agent {
	return &Agent{
		ID:       id,
		Position: position,
		health:   VitalsMax,
		energy:   VitalsMax,
	}
}

// Health returns the current health in [0, 100].
func (a *Agent) Health() float64 { return a.health }

// Energy returns the current energy in [0, 100].
func (a *Agent) Energy() float64 { return a.energy }

// SetHealth sets health, clamped to [0, 100].
func (a *Agent) SetHealth(h float64) { a.health = clampVital(h) }

// SetEnergy sets energy, clamped to [0, 100].
func (a *Agent) SetEnergy(e float64) { a.energy = clampVital(e) }

func clampVital(v float64) float64 {
	if v < VitalsMin {
		return VitalsMin
	}
	if v > VitalsMax {
		return VitalsMax
	}
	return v
}

// SetMemory stores a value in the agent's extension store.
func (a *Agent) SetMemory(key string, value any) {
	if a.memory == nil {
		a.memory = make(map[string]any)
	}
	a.memory[key] = value
}

// HasMemory reports whether the key is present in the extension store.
func (a *Agent) HasMemory(key string) bool {
	_, ok := a.memory[key]
	return ok
}

// DeleteMemory removes a key from the extension store.
func (a *Agent) DeleteMemory(key string) {
	delete(a.memory, key)
}

// MemoryAs reads a typed value from the extension store. The second result
// is false when the key is absent or the stored value has a different type;
// callers that need to distinguish the two can use Agent.HasMemory.
func MemoryAs[T any](a *Agent, key string) (T, bool) {
	var zero T
	raw, ok := a.memory[key]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// MemoryOr reads a typed value from the extension store, substituting def
// when the key is absent or mistyped. Misses are reported through
// OnMemoryMiss so the silent fallback stays observable.
func MemoryOr[T any](a *Agent, key string, def T) T {
	raw, ok := a.memory[key]
	if !ok {
		a.noteMiss(key, "absent")
		return def
	}
	v, ok := raw.(T)
	if !ok {
		a.noteMiss(key, "type mismatch")
		return def
	}
	return v
}

func (a *Agent) noteMiss(key, reason string) {
	if a.OnMemoryMiss != nil {
		a.OnMemoryMiss(key, reason)
	}
}

// Snapshot is the frozen view of an agent used as a neighbor within one
// tick. All behaviors evaluated in a tick see the same snapshots.
type Snapshot struct {
	ID       string
	Position vec.Vec3
	Velocity vec.Vec3
}

// Snapshot returns the agent's current kinematic snapshot.
func (a *Agent) Snapshot() Snapshot {
	return Snapshot{ID: a.ID, Position: a.Position, Velocity: a.Velocity}
}
