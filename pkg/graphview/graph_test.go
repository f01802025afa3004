package graphview

import (
	"math"
	"testing"
)

func TestBuildTriangle(t *testing.T) {
	edges := [][2]uint32{{0, 1}, {1, 2}, {2, 0}}
	g := Build(edges, 3, 2, 2)

	if g.NumNodes() != 3 {
		t.Fatalf("NumNodes = %d, want 3", g.NumNodes())
	}
	for v := uint32(0); v < 3; v++ {
		if got := g.Degree(v); got != 2 {
			t.Errorf("Degree(%d) = %d, want 2", v, got)
		}
	}
	if !g.IsConnected(0, 1) || !g.IsConnected(1, 0) {
		t.Errorf("expected 0-1 connected")
	}
	if g.IsConnected(0, 0) {
		t.Errorf("self should not be connected")
	}
}

func TestBuildDedupesDuplicateEdges(t *testing.T) {
	edges := [][2]uint32{{0, 1}, {0, 1}, {1, 0}}
	g := Build(edges, 2, 2, 2)
	if got := g.Degree(0); got != 1 {
		t.Fatalf("Degree(0) = %d, want 1 after dedup", got)
	}
	n0 := g.Neighbors(0)
	if len(n0) != 1 || n0[0] != 1 {
		t.Errorf("Neighbors(0) = %v, want [1]", n0)
	}
}

func TestNeighborsAreSorted(t *testing.T) {
	edges := [][2]uint32{{0, 3}, {0, 1}, {0, 2}}
	g := Build(edges, 4, 2, 2)
	n0 := g.Neighbors(0)
	for i := 1; i < len(n0); i++ {
		if n0[i-1] >= n0[i] {
			t.Fatalf("Neighbors(0) not sorted: %v", n0)
		}
	}
}

func TestWeightsPositiveAndMeanApproxOne(t *testing.T) {
	edges := [][2]uint32{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {0, 2}}
	g := Build(edges, 4, 3, 3)
	var sum float32
	for v := uint32(0); v < 4; v++ {
		w := g.Weight(v)
		if w <= 0 {
			t.Fatalf("Weight(%d) = %f, want > 0", v, w)
		}
		sum += w
	}
	mean := sum / 4
	if mean < 0.5 || mean > 2.0 {
		t.Errorf("mean weight = %f, want approximately 1", mean)
	}
}

func TestIsolatedVertexGetsFiniteWeight(t *testing.T) {
	edges := [][2]uint32{{0, 1}}
	g := Build(edges, 3, 2, 2) // node 2 is isolated
	w := g.Weight(2)
	if w <= 0 {
		t.Fatalf("Weight(isolated) = %f, want > 0", w)
	}
	if g.Degree(2) != 0 {
		t.Fatalf("Degree(isolated) = %d, want 0", g.Degree(2))
	}
}

func TestEdgelessGraphGetsFiniteWeights(t *testing.T) {
	g := Build(nil, 4, 2, 2)
	for v := uint32(0); v < 4; v++ {
		w := g.Weight(v)
		if w <= 0 || math.IsInf(float64(w), 0) {
			t.Fatalf("Weight(%d) = %f, want finite and > 0", v, w)
		}
	}
}
