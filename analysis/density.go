// Package analysis provides spatial density analysis and emergent behavior
// classification over boid snapshots. Both operate on frozen state and
// never mutate the simulation.
package analysis

import (
	"math"

	"github.com/pthm-cable/kinetic/agent"
	"github.com/pthm-cable/kinetic/vec"
)

// DefaultCellSize is the standard density grid resolution.
const DefaultCellSize = 5.0

// hotspotRatio marks cells whose density exceeds this fraction of the
// running maximum during the scan.
const hotspotRatio = 0.8

// DensityData is the result of a density analysis pass.
type DensityData struct {
	// AverageDensity is total cell density over the number of grid cells.
	AverageDensity float64
	// MaxDensity is the highest single-cell density.
	MaxDensity float64
	// Center is the population centroid.
	Center vec.Vec3
	// Hotspots are the min-corner positions of high-density cells, in
	// scan order (rows by Y, then X). Z is always zero: the grid is 2D.
	Hotspots []vec.Vec3
}

// AnalyzeDensity bins boids into a 2D grid over the X/Y bounding box of
// the population and reports density statistics. An empty population or a
// non-positive cell size yields the zero DensityData.
func AnalyzeDensity(boids []agent.Snapshot, cellSize float64) DensityData {
	var data DensityData
	if len(boids) == 0 || cellSize <= 0 {
		return data
	}

	minX, minY := boids[0].Position.X, boids[0].Position.Y
	maxX, maxY := minX, minY
	var centroid vec.Vec3
	for i := range boids {
		p := boids[i].Position
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
		centroid = centroid.Add(p)
	}
	data.Center = centroid.Scale(1 / float64(len(boids)))

	gridW := int((maxX-minX)/cellSize) + 1
	gridH := int((maxY-minY)/cellSize) + 1

	counts := make([]int, gridW*gridH)
	for i := range boids {
		p := boids[i].Position
		gx := int((p.X - minX) / cellSize)
		gy := int((p.Y - minY) / cellSize)
		if gx >= 0 && gx < gridW && gy >= 0 && gy < gridH {
			counts[gy*gridW+gx]++
		}
	}

	cellArea := cellSize * cellSize
	total := 0.0
	for y := 0; y < gridH; y++ {
		for x := 0; x < gridW; x++ {
			density := float64(counts[y*gridW+x]) / cellArea
			total += density
			data.MaxDensity = math.Max(data.MaxDensity, density)

			// Compared against the running maximum, so the cell that sets
			// a new maximum flags itself.
			if density > data.MaxDensity*hotspotRatio {
				data.Hotspots = append(data.Hotspots, vec.V3(minX+float64(x)*cellSize, minY+float64(y)*cellSize, 0))
			}
		}
	}

	data.AverageDensity = total / float64(gridW*gridH)
	return data
}

// LocalDensity returns the number of boids within radius of position
// (boundary inclusive) divided by the circle area. A non-positive radius
// yields zero.
func LocalDensity(position vec.Vec3, boids []agent.Snapshot, radius float64) float64 {
	if radius <= 0 {
		return 0
	}

	count := 0
	for i := range boids {
		if position.Sub(boids[i].Position).Magnitude() <= radius {
			count++
		}
	}

	return float64(count) / (math.Pi * radius * radius)
}
