package analysis

import (
	"math"
	"testing"

	"github.com/pthm-cable/kinetic/agent"
	"github.com/pthm-cable/kinetic/vec"
)

const tol = 1e-9

func boidsAt(positions ...vec.Vec3) []agent.Snapshot {
	out := make([]agent.Snapshot, len(positions))
	for i, p := range positions {
		out[i] = agent.Snapshot{Position: p}
	}
	return out
}

func TestAnalyzeDensityEmpty(t *testing.T) {
	data := AnalyzeDensity(nil, DefaultCellSize)
	if data.AverageDensity != 0 || data.MaxDensity != 0 || len(data.Hotspots) != 0 {
		t.Errorf("empty population produced %+v, want zeros", data)
	}
}

func TestAnalyzeDensityInvalidCellSize(t *testing.T) {
	boids := boidsAt(vec.V3(1, 1, 0))
	for _, cs := range []float64{0, -5} {
		data := AnalyzeDensity(boids, cs)
		if data.AverageDensity != 0 || data.MaxDensity != 0 {
			t.Errorf("cellSize %v produced %+v, want zeros", cs, data)
		}
	}
}

func TestAnalyzeDensitySingleCluster(t *testing.T) {
	// Four boids inside one 5x5 cell.
	boids := boidsAt(
		vec.V3(1, 1, 0),
		vec.V3(2, 2, 0),
		vec.V3(1, 2, 0),
		vec.V3(2, 1, 0),
	)

	data := AnalyzeDensity(boids, DefaultCellSize)

	want := 4.0 / 25.0
	if math.Abs(data.MaxDensity-want) > tol {
		t.Errorf("MaxDensity = %v, want %v", data.MaxDensity, want)
	}
	if math.Abs(data.AverageDensity-want) > tol {
		t.Errorf("AverageDensity = %v, want %v", data.AverageDensity, want)
	}
	if len(data.Hotspots) != 1 {
		t.Fatalf("hotspots = %d, want 1", len(data.Hotspots))
	}
	if !equalV3(data.Hotspots[0], vec.V3(1, 1, 0)) {
		t.Errorf("hotspot = %v, want cell corner (1,1,0)", data.Hotspots[0])
	}
	if !equalV3(data.Center, vec.V3(1.5, 1.5, 0)) {
		t.Errorf("Center = %v, want (1.5,1.5,0)", data.Center)
	}
}

func TestAnalyzeDensityTwoClusters(t *testing.T) {
	// Two equally dense clusters at opposite ends of a 5-cell row.
	boids := boidsAt(
		vec.V3(0, 0, 0), vec.V3(1, 1, 0), vec.V3(1, 0, 0),
		vec.V3(20, 0, 0), vec.V3(21, 1, 0), vec.V3(21, 0, 0),
	)

	data := AnalyzeDensity(boids, DefaultCellSize)

	cellDensity := 3.0 / 25.0
	if math.Abs(data.MaxDensity-cellDensity) > tol {
		t.Errorf("MaxDensity = %v, want %v", data.MaxDensity, cellDensity)
	}
	if want := 2 * cellDensity / 5; math.Abs(data.AverageDensity-want) > tol {
		t.Errorf("AverageDensity = %v, want %v", data.AverageDensity, want)
	}

	// Both occupied cells tie for the maximum, so both flag as hotspots;
	// the empty cells between them do not.
	if len(data.Hotspots) != 2 {
		t.Fatalf("hotspots = %v, want the two cluster cells", data.Hotspots)
	}
	if !equalV3(data.Hotspots[0], vec.V3(0, 0, 0)) || !equalV3(data.Hotspots[1], vec.V3(20, 0, 0)) {
		t.Errorf("hotspots = %v, want corners (0,0,0) and (20,0,0)", data.Hotspots)
	}
}

func TestLocalDensity(t *testing.T) {
	boids := boidsAt(
		vec.V3(0, 0, 0),
		vec.V3(1, 0, 0),
		vec.V3(0, 2, 0), // exactly on the radius, counted
		vec.V3(10, 0, 0),
	)

	got := LocalDensity(vec.V3(0, 0, 0), boids, 2)
	want := 3.0 / (math.Pi * 4)
	if math.Abs(got-want) > tol {
		t.Errorf("LocalDensity = %v, want %v", got, want)
	}

	if got := LocalDensity(vec.V3(0, 0, 0), boids, 0); got != 0 {
		t.Errorf("LocalDensity with zero radius = %v, want 0", got)
	}
}

func equalV3(a, b vec.Vec3) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}
