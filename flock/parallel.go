package flock

import (
	"runtime"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/kinetic/vec"
)

// parallelThreshold is the minimum boid count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// boidSnapshot captures read-only boid state for the compute phase.
type boidSnapshot struct {
	Entity ecs.Entity
	ID     string
	Pos    vec.Vec3
	Vel    vec.Vec3
}

// boidIntent captures computed outputs to apply after the compute phase.
// Neighbors holds indices into the snapshot slice; its capacity is reused
// across ticks.
type boidIntent struct {
	NewVel    vec.Vec3
	NewPos    vec.Vec3
	Neighbors []int
}

// workChunk is a range of snapshot indices for one worker.
type workChunk struct {
	start, end int
	dt         float64
}

// parallelState holds the snapshot/intent buffers and the persistent
// worker pool.
type parallelState struct {
	snapshots  []boidSnapshot
	intents    []boidIntent
	numWorkers int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newParallelState() *parallelState {
	return &parallelState{
		numWorkers: runtime.GOMAXPROCS(0),
		snapshots:  make([]boidSnapshot, 0, 512),
		intents:    make([]boidIntent, 0, 512),
	}
}

// resizeIntents grows the intent slice to n, preserving the neighbor
// buffers of existing entries.
func (p *parallelState) resizeIntents(n int) {
	if cap(p.intents) < n {
		grown := make([]boidIntent, n)
		copy(grown, p.intents[:cap(p.intents)])
		p.intents = grown
		return
	}
	p.intents = p.intents[:n]
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(c *Crowd) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(c)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker processes chunks until stopped.
func (p *parallelState) worker(c *Crowd) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			c.computeChunk(chunk.start, chunk.end, chunk.dt)
			p.doneChan <- struct{}{}
		}
	}
}

// computeParallel dispatches the compute phase to the worker pool and
// blocks until every chunk is done.
func (c *Crowd) computeParallel(n int, dt float64) {
	if !c.parallel.running {
		c.parallel.startWorkers(c)
	}

	numWorkers := c.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	dispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		c.parallel.workChan <- workChunk{start: start, end: end, dt: dt}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-c.parallel.doneChan
	}
}
