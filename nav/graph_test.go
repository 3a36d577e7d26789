package nav

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	pA = r3.Vec{X: 0}
	pB = r3.Vec{X: 1}
	pC = r3.Vec{X: 2}
	pD = r3.Vec{X: 50, Z: 3}
)

func lineGraph() *Graph {
	g := NewGraph()
	g.Connect(pA, pB)
	g.Connect(pB, pC)
	return g
}

func TestShortestPathLine(t *testing.T) {
	g := lineGraph()

	path, err := g.ShortestPath(pA, pC)
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	if len(path) != 1 || path[0].Position != pB {
		t.Fatalf("path = %+v, want [B]", path)
	}
	if path[0].Distance != 1 {
		t.Errorf("B distance from start = %v, want 1", path[0].Distance)
	}
	if got, ok := g.PathLength(pA, path, pC); !ok || got != 2 {
		t.Errorf("PathLength = %v, %v, want 2", got, ok)
	}
}

func TestShortestPathUnconnected(t *testing.T) {
	g := lineGraph()
	g.Add(pD, pD) // D exists but nothing leads to it

	path, err := g.ShortestPath(pA, pD)
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	if len(path) != 0 {
		t.Errorf("path to unconnected node = %+v, want empty", path)
	}
}

func TestShortestPathSameNode(t *testing.T) {
	g := lineGraph()
	path, err := g.ShortestPath(pB, pB)
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	if len(path) != 0 {
		t.Errorf("ShortestPath(B, B) = %+v, want empty", path)
	}
}

func TestShortestPathUnknownNode(t *testing.T) {
	g := lineGraph()
	if _, err := g.ShortestPath(pA, r3.Vec{X: 7}); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("error = %v, want ErrUnknownNode", err)
	}
	if _, err := g.ShortestPath(r3.Vec{X: 7}, pA); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("error = %v, want ErrUnknownNode", err)
	}
}

func TestEdgesAreDirected(t *testing.T) {
	g := NewGraph()
	g.Add(pA, pB)
	g.Add(pB, pC)

	if path, _ := g.ShortestPath(pA, pC); len(path) != 1 {
		t.Errorf("forward path = %+v, want [B]", path)
	}
	if path, _ := g.ShortestPath(pC, pA); len(path) != 0 {
		t.Errorf("reverse path = %+v, want empty", path)
	}
	if g.Len() != 3 {
		t.Errorf("Len = %d, want 3", g.Len())
	}
}

func TestShortestPathPrefersCheaperRoute(t *testing.T) {
	// Two routes from S to F: a short direct hop with a heavy weight and a
	// detour through two cheap nodes.
	s := r3.Vec{}
	f := r3.Vec{X: 10}
	m1 := r3.Vec{X: 3, Z: 1}
	m2 := r3.Vec{X: 7, Z: 1}
	g := NewGraph()
	g.AddWeighted(s, f, 50)
	g.AddWeighted(s, m1, 3)
	g.AddWeighted(m1, m2, 4)
	g.AddWeighted(m2, f, 3)

	path, err := g.ShortestPath(s, f)
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	if len(path) != 2 || path[0].Position != m2 || path[1].Position != m1 {
		t.Fatalf("path = %+v, want [m2 m1]", path)
	}
	if path[0].Index != 0 || path[1].Index != 1 {
		t.Errorf("indices = %d,%d, want 0,1", path[0].Index, path[1].Index)
	}
}

func TestShortestPathTieBreakIsDeterministic(t *testing.T) {
	// Two equal-cost routes around a square; the first edge added wins.
	s := r3.Vec{}
	up := r3.Vec{X: 1, Y: 1}
	down := r3.Vec{X: 1, Y: -1}
	f := r3.Vec{X: 2}

	build := func() *Graph {
		g := NewGraph()
		g.Add(s, up)
		g.Add(s, down)
		g.Add(up, f)
		g.Add(down, f)
		return g
	}

	first, _ := build().ShortestPath(s, f)
	for i := 0; i < 10; i++ {
		again, _ := build().ShortestPath(s, f)
		if len(again) != len(first) || again[0].Position != first[0].Position {
			t.Fatalf("run %d path = %+v, want %+v", i, again, first)
		}
	}
	if first[0].Position != up {
		t.Errorf("tie broken towards %v, want %v", first[0].Position, up)
	}
}

func TestShortestPathGridIsMinimal(t *testing.T) {
	// On a 4-connected unit grid every shortest path has Manhattan length.
	g := NewGraph()
	const n = 8
	for x := 0; x < n; x++ {
		for z := 0; z < n; z++ {
			p := r3.Vec{X: float64(x), Z: float64(z)}
			if x+1 < n {
				g.Connect(p, r3.Vec{X: float64(x + 1), Z: float64(z)})
			}
			if z+1 < n {
				g.Connect(p, r3.Vec{X: float64(x), Z: float64(z + 1)})
			}
		}
	}

	rng := rand.New(rand.NewSource(8))
	for i := 0; i < 30; i++ {
		a := r3.Vec{X: float64(rng.Intn(n)), Z: float64(rng.Intn(n))}
		b := r3.Vec{X: float64(rng.Intn(n)), Z: float64(rng.Intn(n))}
		path, err := g.ShortestPath(a, b)
		if err != nil {
			t.Fatalf("ShortestPath: %v", err)
		}
		want := math.Abs(a.X-b.X) + math.Abs(a.Z-b.Z)
		if a == b {
			if len(path) != 0 {
				t.Errorf("path %v->%v = %+v, want empty", a, b, path)
			}
			continue
		}
		if got, ok := g.PathLength(a, path, b); !ok || math.Abs(got-want) > 1e-9 {
			t.Errorf("path %v->%v length = %v, want %v", a, b, got, want)
		}
		if len(path) != int(want)-1 {
			t.Errorf("path %v->%v has %d nodes, want %d", a, b, len(path), int(want)-1)
		}
	}
}

func TestPathCacheReturnsCopies(t *testing.T) {
	g := lineGraph()

	first, _ := g.ShortestPath(pA, pC)
	first[0] = Waypoint{Position: r3.Vec{X: 99}}
	first = append(first, Waypoint{})

	second, _ := g.ShortestPath(pA, pC)
	if len(second) != 1 || second[0].Position != pB {
		t.Fatalf("cached path was mutated: %+v", second)
	}
	third, _ := g.ShortestPath(pA, pC)
	if len(third) != len(second) || third[0] != second[0] {
		t.Errorf("cached results differ: %+v vs %+v", second, third)
	}

	stats := g.CacheStats()
	if stats.Entries != 1 || stats.Misses != 1 || stats.Hits != 2 {
		t.Errorf("cache stats = %+v, want 1 entry, 1 miss, 2 hits", stats)
	}
}

func TestAddInvalidatesCache(t *testing.T) {
	g := lineGraph()
	path, _ := g.ShortestPath(pA, pC)
	if len(path) != 1 {
		t.Fatalf("path = %+v", path)
	}

	g.Add(pA, pC)
	if g.CacheStats().Entries != 0 {
		t.Error("adding an edge should drop cached paths")
	}
	path, _ = g.ShortestPath(pA, pC)
	if len(path) != 0 {
		t.Errorf("path after adding a direct edge = %+v, want empty", path)
	}
}

func TestNearestNode(t *testing.T) {
	g := NewGraph()
	if _, err := g.NearestNode(r3.Vec{}); !errors.Is(err, ErrEmptyGraph) {
		t.Errorf("NearestNode on empty graph error = %v, want ErrEmptyGraph", err)
	}

	g = lineGraph()
	tests := []struct {
		p    r3.Vec
		want r3.Vec
	}{
		{r3.Vec{X: -5}, pA},
		{r3.Vec{X: 0.9, Y: 3}, pB},
		{r3.Vec{X: 1.6}, pC},
		{r3.Vec{X: 100}, pC},
	}
	for _, tt := range tests {
		got, err := g.NearestNode(tt.p)
		if err != nil {
			t.Fatalf("NearestNode: %v", err)
		}
		if got != tt.want {
			t.Errorf("NearestNode(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestBuildRoads(t *testing.T) {
	g := BuildRoads([]Road{
		{Points: []r3.Vec{{X: 0}, {X: 10}, {X: 20}}, TwoWay: true},
		{Points: []r3.Vec{{X: 10}, {X: 10, Z: 10}}},
		{Points: []r3.Vec{{X: 5, Z: 5}}},
	})

	if g.Len() != 5 {
		t.Fatalf("Len = %d, want 5", g.Len())
	}
	path, _ := g.ShortestPath(r3.Vec{X: 20}, r3.Vec{X: 10, Z: 10})
	if len(path) != 1 || path[0].Position != (r3.Vec{X: 10}) {
		t.Errorf("path over junction = %+v, want [(10,0,0)]", path)
	}
	// One-way road cannot be driven backwards.
	path, _ = g.ShortestPath(r3.Vec{X: 10, Z: 10}, r3.Vec{X: 0})
	if len(path) != 0 {
		t.Errorf("path against one-way road = %+v, want empty", path)
	}
}

func BenchmarkShortestPathUncached(b *testing.B) {
	g := NewGraph()
	const n = 30
	for x := 0; x < n; x++ {
		for z := 0; z < n; z++ {
			p := r3.Vec{X: float64(x), Z: float64(z)}
			if x+1 < n {
				g.Connect(p, r3.Vec{X: float64(x + 1), Z: float64(z)})
			}
			if z+1 < n {
				g.Connect(p, r3.Vec{X: float64(x), Z: float64(z + 1)})
			}
		}
	}
	start := r3.Vec{}
	finish := r3.Vec{X: n - 1, Z: n - 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.InvalidateCache()
		g.ShortestPath(start, finish)
	}
}

func TestReverseAndDistanceBeforeFinish(t *testing.T) {
	g := NewGraph()
	g.Connect(pA, pB)
	g.Connect(pB, pC)
	g.Connect(pC, pD)

	path, _ := g.ShortestPath(pA, pD)
	if len(path) != 2 {
		t.Fatalf("path = %+v, want 2 waypoints", path)
	}
	if got := DistanceBeforeFinish(path); got != 2 {
		t.Errorf("DistanceBeforeFinish = %v, want 2", got)
	}
	want := 2 + math.Hypot(pD.X-pC.X, pD.Z-pC.Z)
	if got, ok := g.PathLength(pA, path, pD); !ok || math.Abs(got-want) > 1e-9 {
		t.Errorf("PathLength = %v, %v, want %v", got, ok, want)
	}
	if DistanceBeforeFinish(nil) != 0 {
		t.Error("DistanceBeforeFinish(nil) should be zero")
	}

	fwd := Reverse(path)
	if fwd[0].Position != pB || fwd[1].Position != pC {
		t.Errorf("Reverse = %+v, want [B C]", fwd)
	}
	for i, w := range fwd {
		if w.Index != i {
			t.Errorf("Reverse()[%d].Index = %d", i, w.Index)
		}
	}
	if path[0].Position != pC {
		t.Error("Reverse modified its input")
	}
}

func TestPathLengthUsesEdgeWeights(t *testing.T) {
	g := NewGraph()
	g.AddWeighted(pA, pB, 5)
	g.AddWeighted(pB, pC, 7)
	g.AddWeighted(pB, pC, 9)

	path, err := g.ShortestPath(pA, pC)
	if err != nil || len(path) != 1 {
		t.Fatalf("ShortestPath = %+v, %v", path, err)
	}
	if got, ok := g.PathLength(pA, path, pC); !ok || got != 12 {
		t.Errorf("PathLength = %v, %v, want 12", got, ok)
	}
	if _, ok := g.PathLength(pC, nil, pA); ok {
		t.Error("PathLength across a missing edge should report false")
	}
	if got, ok := g.PathLength(pA, nil, pA); !ok || got != 0 {
		t.Errorf("PathLength of an empty route = %v, %v", got, ok)
	}
}
