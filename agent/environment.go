package agent

import (
	"fmt"
	"math"
)

// Updater advances one agent by deltaTime. The steering controller is the
// canonical implementation; decision layers may attach their own.
type Updater interface {
	Update(deltaTime float64) error
}

// Environment owns a collection of agents and drives their updaters each
// tick. Agents are exclusively owned: removing one drops both the agent
// and its updater.
type Environment struct {
	agents   map[string]*Agent
	updaters map[string]Updater
	order    []string // stable iteration order
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{
		agents:   make(map[string]*Agent),
		updaters: make(map[string]Updater),
	}
}

// Add registers an agent. A later Add with the same ID replaces the agent
// but keeps its position in the update order.
func (e *Environment) Add(a *Agent) {
	if _, exists := e.agents[a.ID]; !exists {
		e.order = append(e.order, a.ID)
	}
	e.agents[a.ID] = a
}

// Attach associates an updater with an agent ID. The updater is driven by
// Update until the agent is removed.
func (e *Environment) Attach(id string, u Updater) {
	e.updaters[id] = u
}

// Remove drops an agent and its updater.
func (e *Environment) Remove(id string) {
	if _, exists := e.agents[id]; !exists {
		return
	}
	delete(e.agents, id)
	delete(e.updaters, id)
	for i, oid := range e.order {
		if oid == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// Get returns the agent with the given ID, or nil.
func (e *Environment) Get(id string) *Agent {
	return e.agents[id]
}

// Len returns the number of agents.
func (e *Environment) Len() int {
	return len(e.agents)
}

// Agents returns the agents in insertion order.
func (e *Environment) Agents() []*Agent {
	out := make([]*Agent, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.agents[id])
	}
	return out
}

// Snapshots returns frozen kinematic views of all agents, in insertion
// order, for use as a shared neighbor set.
func (e *Environment) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.agents[id].Snapshot())
	}
	return out
}

// Update drives every attached updater once with deltaTime. deltaTime must
// be positive and finite.
func (e *Environment) Update(deltaTime float64) error {
	if err := ValidateDeltaTime(deltaTime); err != nil {
		return err
	}
	for _, id := range e.order {
		u, ok := e.updaters[id]
		if !ok {
			continue
		}
		if err := u.Update(deltaTime); err != nil {
			return fmt.Errorf("updating agent %s: %w", id, err)
		}
	}
	return nil
}

// ValidateDeltaTime rejects non-positive and non-finite timesteps before
// they can corrupt motion state.
func ValidateDeltaTime(dt float64) error {
	if math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("deltaTime must be finite, got %v", dt)
	}
	if dt <= 0 {
		return fmt.Errorf("deltaTime must be positive, got %v", dt)
	}
	return nil
}
