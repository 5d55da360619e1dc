// Package flock implements the boid crowd simulation: an ECS-backed world
// of boids driven by the separation/alignment/cohesion triad with a speed
// cap and soft boundary containment.
package flock

import (
	"github.com/pthm-cable/kinetic/agent"
	"github.com/pthm-cable/kinetic/vec"
)

// Position is the boid position component.
type Position struct {
	V vec.Vec3
}

// Velocity is the boid velocity component.
type Velocity struct {
	V vec.Vec3
}

// Identity carries the boid's stable external ID.
type Identity struct {
	ID string
}

// Vitals holds the boid's health and energy, clamped to the agent vitals
// range on every write.
type Vitals struct {
	Health float64
	Energy float64
}

// FullVitals returns vitals at the maximum of both scales.
func FullVitals() Vitals {
	return Vitals{Health: agent.VitalsMax, Energy: agent.VitalsMax}
}

// SetHealth sets health, clamped to the vitals range.
func (v *Vitals) SetHealth(h float64) { v.Health = clampVital(h) }

// SetEnergy sets energy, clamped to the vitals range.
func (v *Vitals) SetEnergy(e float64) { v.Energy = clampVital(e) }

func clampVital(x float64) float64 {
	if x < agent.VitalsMin {
		return agent.VitalsMin
	}
	if x > agent.VitalsMax {
		return agent.VitalsMax
	}
	return x
}

// Boid caches the neighbor set computed for the most recent tick. The
// slice is replaced wholesale each tick and holds pre-tick snapshots, so
// every boid in a tick saw the same frozen state.
type Boid struct {
	Neighbors []agent.Snapshot
}
