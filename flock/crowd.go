package flock

import (
	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/kinetic/agent"
	"github.com/pthm-cable/kinetic/vec"
)

// Flocking defaults.
const (
	DefaultSeparationRadius = 2.0
	DefaultAlignmentRadius  = 4.0
	DefaultCohesionRadius   = 6.0

	DefaultSeparationWeight = 1.5
	DefaultAlignmentWeight  = 1.0
	DefaultCohesionWeight   = 1.0

	DefaultNeighborRadius = 10.0
	DefaultMaxSpeed       = 8.0

	DefaultBoundaryExtent   = 50.0
	DefaultBoundaryMargin   = 5.0
	DefaultBoundaryStrength = 20.0
)

// steerSpeed is the magnitude the triad forces renormalize to.
const steerSpeed = 10.0

// boundaryStep scales the boundary impulse. It is a fixed nominal frame
// time, deliberately decoupled from the simulation dt so containment
// strength does not change with step size.
const boundaryStep = 0.016

// Config holds the crowd parameters. Zero values are not meaningful; start
// from DefaultConfig.
type Config struct {
	SeparationRadius float64 `yaml:"separation_radius"`
	AlignmentRadius  float64 `yaml:"alignment_radius"`
	CohesionRadius   float64 `yaml:"cohesion_radius"`

	SeparationWeight float64 `yaml:"separation_weight"`
	AlignmentWeight  float64 `yaml:"alignment_weight"`
	CohesionWeight   float64 `yaml:"cohesion_weight"`

	// NeighborRadius bounds the per-tick neighbor query; the triad radii
	// filter further within it.
	NeighborRadius float64 `yaml:"neighbor_radius"`

	// MaxSpeed caps boid speed after force integration.
	MaxSpeed float64 `yaml:"max_speed"`

	BoundaryMin      vec.Vec3 `yaml:"-"`
	BoundaryMax      vec.Vec3 `yaml:"-"`
	BoundaryMargin   float64  `yaml:"boundary_margin"`
	BoundaryStrength float64  `yaml:"boundary_strength"`
}

// DefaultConfig returns the standard flocking parameters with a cubic
// boundary box of +/-50 per axis.
func DefaultConfig() Config {
	return Config{
		SeparationRadius: DefaultSeparationRadius,
		AlignmentRadius:  DefaultAlignmentRadius,
		CohesionRadius:   DefaultCohesionRadius,
		SeparationWeight: DefaultSeparationWeight,
		AlignmentWeight:  DefaultAlignmentWeight,
		CohesionWeight:   DefaultCohesionWeight,
		NeighborRadius:   DefaultNeighborRadius,
		MaxSpeed:         DefaultMaxSpeed,
		BoundaryMin:      vec.V3(-DefaultBoundaryExtent, -DefaultBoundaryExtent, -DefaultBoundaryExtent),
		BoundaryMax:      vec.V3(DefaultBoundaryExtent, DefaultBoundaryExtent, DefaultBoundaryExtent),
		BoundaryMargin:   DefaultBoundaryMargin,
		BoundaryStrength: DefaultBoundaryStrength,
	}
}

// Crowd is the boid simulation. Each Step runs in three phases: snapshot
// all boids, compute neighbor sets and movement intents against the frozen
// snapshot (in parallel above a population threshold), then apply intents
// single-threaded. Results are identical for any worker count.
type Crowd struct {
	cfg   Config
	world *ecs.World

	mapper *ecs.Map5[Position, Velocity, Identity, Vitals, Boid]
	filter *ecs.Filter4[Position, Velocity, Identity, Boid]

	posMap  *ecs.Map1[Position]
	velMap  *ecs.Map1[Velocity]
	vitMap  *ecs.Map1[Vitals]
	boidMap *ecs.Map1[Boid]

	byID map[string]ecs.Entity

	tick     int64
	parallel *parallelState
}

// NewCrowd creates an empty crowd with the given parameters.
func NewCrowd(cfg Config) *Crowd {
	world := ecs.NewWorld()

	return &Crowd{
		cfg:      cfg,
		world:    world,
		mapper:   ecs.NewMap5[Position, Velocity, Identity, Vitals, Boid](world),
		filter:   ecs.NewFilter4[Position, Velocity, Identity, Boid](world),
		posMap:   ecs.NewMap1[Position](world),
		velMap:   ecs.NewMap1[Velocity](world),
		vitMap:   ecs.NewMap1[Vitals](world),
		boidMap:  ecs.NewMap1[Boid](world),
		byID:     make(map[string]ecs.Entity),
		parallel: newParallelState(),
	}
}

// Config returns the crowd parameters.
func (c *Crowd) Config() Config { return c.cfg }

// Tick returns the number of completed steps.
func (c *Crowd) Tick() int64 { return c.tick }

// Len returns the boid count.
func (c *Crowd) Len() int { return len(c.byID) }

// AddBoid spawns a boid with a generated ID and returns the ID.
func (c *Crowd) AddBoid(position, velocity vec.Vec3) string {
	id := uuid.NewString()
	c.AddBoidWithID(id, position, velocity)
	return id
}

// AddBoidWithID spawns a boid with a caller-chosen ID. A duplicate ID
// replaces the existing boid.
func (c *Crowd) AddBoidWithID(id string, position, velocity vec.Vec3) {
	if old, ok := c.byID[id]; ok {
		c.mapper.Remove(old)
	}

	pos := Position{V: position}
	vel := Velocity{V: velocity}
	ident := Identity{ID: id}
	vit := FullVitals()
	boid := Boid{}

	c.byID[id] = c.mapper.NewEntity(&pos, &vel, &ident, &vit, &boid)
}

// RemoveBoid despawns a boid. It reports whether the ID was present.
func (c *Crowd) RemoveBoid(id string) bool {
	e, ok := c.byID[id]
	if !ok {
		return false
	}
	c.mapper.Remove(e)
	delete(c.byID, id)
	return true
}

// Snapshots returns the current kinematic state of all boids.
func (c *Crowd) Snapshots() []agent.Snapshot {
	out := make([]agent.Snapshot, 0, len(c.byID))

	query := c.filter.Query()
	for query.Next() {
		pos, vel, ident, _ := query.Get()
		out = append(out, agent.Snapshot{
			ID:       ident.ID,
			Position: pos.V,
			Velocity: vel.V,
		})
	}
	return out
}

// Boid returns the current snapshot of one boid.
func (c *Crowd) Boid(id string) (agent.Snapshot, bool) {
	e, ok := c.byID[id]
	if !ok {
		return agent.Snapshot{}, false
	}
	pos := c.posMap.Get(e)
	vel := c.velMap.Get(e)
	if pos == nil || vel == nil {
		return agent.Snapshot{}, false
	}
	return agent.Snapshot{ID: id, Position: pos.V, Velocity: vel.V}, true
}

// Vitals returns a pointer to the boid's vitals component, or nil when the
// ID is unknown. Use the component's setters so writes stay clamped.
func (c *Crowd) Vitals(id string) *Vitals {
	e, ok := c.byID[id]
	if !ok {
		return nil
	}
	return c.vitMap.Get(e)
}

// Neighbors returns the neighbor set cached for the boid on the most
// recent tick. The slice is owned by the crowd and valid until the next
// Step.
func (c *Crowd) Neighbors(id string) []agent.Snapshot {
	e, ok := c.byID[id]
	if !ok {
		return nil
	}
	b := c.boidMap.Get(e)
	if b == nil {
		return nil
	}
	return b.Neighbors
}

// Step advances the crowd by deltaTime.
func (c *Crowd) Step(deltaTime float64) error {
	if err := agent.ValidateDeltaTime(deltaTime); err != nil {
		return err
	}

	c.snapshotPhase()

	n := len(c.parallel.snapshots)
	if n == 0 {
		c.tick++
		return nil
	}

	c.parallel.resizeIntents(n)

	if n < parallelThreshold {
		c.computeChunk(0, n, deltaTime)
	} else {
		c.computeParallel(n, deltaTime)
	}

	c.applyIntents()
	c.tick++
	return nil
}

// Close stops the worker pool. The crowd remains usable; workers restart
// on demand.
func (c *Crowd) Close() {
	c.parallel.stopWorkers()
}

// snapshotPhase freezes boid state for this tick.
func (c *Crowd) snapshotPhase() {
	c.parallel.snapshots = c.parallel.snapshots[:0]

	query := c.filter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, vel, ident, _ := query.Get()

		c.parallel.snapshots = append(c.parallel.snapshots, boidSnapshot{
			Entity: entity,
			ID:     ident.ID,
			Pos:    pos.V,
			Vel:    vel.V,
		})
	}
}

// computeChunk computes movement intents for snapshot indices [i0, i1).
// It reads only the frozen snapshots, so chunks are safe to run
// concurrently.
func (c *Crowd) computeChunk(i0, i1 int, dt float64) {
	snaps := c.parallel.snapshots

	for i := i0; i < i1; i++ {
		snap := &snaps[i]
		intent := &c.parallel.intents[i]

		// Neighbor query: every other boid within the neighbor radius,
		// boundary inclusive. Coincident boids stay in the set; the triad
		// terms skip zero distances themselves.
		intent.Neighbors = intent.Neighbors[:0]
		for j := range snaps {
			if j == i {
				continue
			}
			d := snap.Pos.Sub(snaps[j].Pos).Magnitude()
			if d <= c.cfg.NeighborRadius {
				intent.Neighbors = append(intent.Neighbors, j)
			}
		}

		sep := c.separation(snap, intent.Neighbors)
		ali := c.alignment(snap, intent.Neighbors)
		coh := c.cohesion(snap, intent.Neighbors)

		force := sep.Scale(c.cfg.SeparationWeight).
			Add(ali.Scale(c.cfg.AlignmentWeight)).
			Add(coh.Scale(c.cfg.CohesionWeight))

		newVel := snap.Vel.Add(force.Scale(dt)).Truncate(c.cfg.MaxSpeed)
		newPos := snap.Pos.Add(newVel.Scale(dt))

		// Containment nudges velocity only; the position correction lands
		// next tick.
		if bf := c.boundaryForce(newPos); !bf.IsZero() {
			newVel = newVel.Add(bf.Scale(boundaryStep))
		}

		intent.NewVel = newVel
		intent.NewPos = newPos
	}
}

// separation pushes away from close neighbors, weighted by inverse
// distance. Unlike the steering package variant it does not brake against
// the current velocity; the raw renormalized push feeds the integrator.
func (c *Crowd) separation(snap *boidSnapshot, neighbors []int) vec.Vec3 {
	var steer vec.Vec3
	count := 0

	for _, j := range neighbors {
		n := &c.parallel.snapshots[j]
		diff := snap.Pos.Sub(n.Pos)
		d := diff.Magnitude()
		if d > 0 && d < c.cfg.SeparationRadius {
			steer = steer.Add(diff.Normalized().Scale(1 / d))
			count++
		}
	}

	if count > 0 {
		steer = steer.Scale(1 / float64(count))
		steer = steer.Normalized().Scale(steerSpeed)
	}

	return steer
}

func (c *Crowd) alignment(snap *boidSnapshot, neighbors []int) vec.Vec3 {
	var sum vec.Vec3
	count := 0

	for _, j := range neighbors {
		n := &c.parallel.snapshots[j]
		d := snap.Pos.Sub(n.Pos).Magnitude()
		if d > 0 && d < c.cfg.AlignmentRadius {
			sum = sum.Add(n.Vel)
			count++
		}
	}

	if count == 0 {
		return vec.Vec3{}
	}

	desired := sum.Scale(1 / float64(count)).Normalized().Scale(steerSpeed)
	return desired.Sub(snap.Vel)
}

func (c *Crowd) cohesion(snap *boidSnapshot, neighbors []int) vec.Vec3 {
	var sum vec.Vec3
	count := 0

	for _, j := range neighbors {
		n := &c.parallel.snapshots[j]
		d := snap.Pos.Sub(n.Pos).Magnitude()
		if d > 0 && d < c.cfg.CohesionRadius {
			sum = sum.Add(n.Pos)
			count++
		}
	}

	if count == 0 {
		return vec.Vec3{}
	}

	centroid := sum.Scale(1 / float64(count))
	desired := centroid.Sub(snap.Pos).Normalized().Scale(steerSpeed)
	return desired.Sub(snap.Vel)
}

// boundaryForce returns an inward axis-aligned force for every axis whose
// coordinate is on or past the margin. Comparisons are inclusive so a boid
// sitting exactly on the margin already feels the push.
func (c *Crowd) boundaryForce(pos vec.Vec3) vec.Vec3 {
	var f vec.Vec3
	s := c.cfg.BoundaryStrength
	m := c.cfg.BoundaryMargin

	if pos.X <= c.cfg.BoundaryMin.X+m {
		f.X += s
	}
	if pos.X >= c.cfg.BoundaryMax.X-m {
		f.X -= s
	}
	if pos.Y <= c.cfg.BoundaryMin.Y+m {
		f.Y += s
	}
	if pos.Y >= c.cfg.BoundaryMax.Y-m {
		f.Y -= s
	}
	if pos.Z <= c.cfg.BoundaryMin.Z+m {
		f.Z += s
	}
	if pos.Z >= c.cfg.BoundaryMax.Z-m {
		f.Z -= s
	}
	return f
}

// applyIntents writes computed state back to components and refreshes each
// boid's cached neighbor set with the pre-tick snapshots it was computed
// from. Single-threaded so application order is deterministic.
func (c *Crowd) applyIntents() {
	snaps := c.parallel.snapshots

	for i := range snaps {
		snap := &snaps[i]
		intent := &c.parallel.intents[i]

		pos := c.posMap.Get(snap.Entity)
		vel := c.velMap.Get(snap.Entity)
		boid := c.boidMap.Get(snap.Entity)
		if pos == nil || vel == nil || boid == nil {
			continue
		}

		pos.V = intent.NewPos
		vel.V = intent.NewVel

		boid.Neighbors = boid.Neighbors[:0]
		for _, j := range intent.Neighbors {
			n := &snaps[j]
			boid.Neighbors = append(boid.Neighbors, agent.Snapshot{
				ID:       n.ID,
				Position: n.Pos,
				Velocity: n.Vel,
			})
		}
	}
}
