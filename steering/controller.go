package steering

import (
	"github.com/pthm-cable/kinetic/agent"
	"github.com/pthm-cable/kinetic/vec"
)

// Controller defaults.
const (
	DefaultMaxSpeed = 10.0
	DefaultMaxForce = 5.0
)

// Controller composes a caller-assembled list of weighted behaviors into a
// single clamped force and integrates one agent's velocity and position.
// After any successful Step, |velocity| <= maxSpeed holds exactly.
type Controller struct {
	agent     *agent.Agent
	behaviors []*Behavior
	maxSpeed  float64
	maxForce  float64

	// NeighborSource, if set, supplies the neighbor snapshot for Update.
	// Step takes neighbors explicitly and ignores it.
	NeighborSource func() []agent.Snapshot
}

// NewController creates a controller for the given agent with default
// speed and force caps.
func NewController(a *agent.Agent) *Controller {
	return &Controller{
		agent:    a,
		maxSpeed: DefaultMaxSpeed,
		maxForce: DefaultMaxForce,
	}
}

// Agent returns the controlled agent.
func (c *Controller) Agent() *agent.Agent { return c.agent }

// AddBehavior appends a behavior to the composition list.
func (c *Controller) AddBehavior(b *Behavior) {
	c.behaviors = append(c.behaviors, b)
}

// Behaviors returns the composition list for weight/enable adjustment by
// decision layers.
func (c *Controller) Behaviors() []*Behavior { return c.behaviors }

// SetMaxSpeed sets the velocity magnitude cap.
func (c *Controller) SetMaxSpeed(maxSpeed float64) { c.maxSpeed = maxSpeed }

// SetMaxForce sets the composed force magnitude cap.
func (c *Controller) SetMaxForce(maxForce float64) { c.maxForce = maxForce }

// ComposeForce sums weight * compute over all enabled behaviors and
// truncates the result to maxForce.
func (c *Controller) ComposeForce(neighbors []agent.Snapshot) vec.Vec3 {
	var total vec.Vec3
	for _, b := range c.behaviors {
		if !b.Enabled {
			continue
		}
		total = total.Add(b.Compute(c.agent, neighbors).Scale(b.Weight))
	}
	return total.Truncate(c.maxForce)
}

// Step advances the agent by deltaTime against the given neighbor
// snapshot: compose and clamp the force, integrate velocity (clamped to
// maxSpeed), then position.
func (c *Controller) Step(deltaTime float64, neighbors []agent.Snapshot) error {
	if err := agent.ValidateDeltaTime(deltaTime); err != nil {
		return err
	}

	force := c.ComposeForce(neighbors)

	c.agent.Velocity = c.agent.Velocity.Add(force.Scale(deltaTime)).Truncate(c.maxSpeed)
	c.agent.Position = c.agent.Position.Add(c.agent.Velocity.Scale(deltaTime))

	return nil
}

// Update implements agent.Updater, drawing neighbors from NeighborSource
// (an empty snapshot when unset).
func (c *Controller) Update(deltaTime float64) error {
	var neighbors []agent.Snapshot
	if c.NeighborSource != nil {
		neighbors = c.NeighborSource()
	}
	return c.Step(deltaTime, neighbors)
}
