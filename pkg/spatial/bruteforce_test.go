package spatial

import (
	"testing"

	"github.com/azybler/graphembed/pkg/vector"
)

// fakeGraph is a minimal Graph for index unit tests, independent of
// graphview so this package has no import-cycle risk.
type fakeGraph struct {
	weight []float32
	adj    map[[2]uint32]bool
}

func newFakeGraph(weight []float32, edges [][2]uint32) *fakeGraph {
	adj := make(map[[2]uint32]bool)
	for _, e := range edges {
		adj[[2]uint32{e[0], e[1]}] = true
		adj[[2]uint32{e[1], e[0]}] = true
	}
	return &fakeGraph{weight: weight, adj: adj}
}

func (g *fakeGraph) Weight(v uint32) float32      { return g.weight[v] }
func (g *fakeGraph) IsConnected(u, v uint32) bool { return g.adj[[2]uint32{u, v}] }

func TestBruteForceFindsCloseNode(t *testing.T) {
	g := newFakeGraph([]float32{1, 1, 1}, nil)
	bf := NewBruteForce(g)
	bf.UpdatePositions([]vector.Vector{
		{0, 0},
		{0.5, 0},
		{10, 10},
	}, NoDeltaMax)

	out := bf.NearestNeighbors(0, 1, nil)
	if len(out) != 1 || out[0] != 1 {
		t.Fatalf("NearestNeighbors(0,1) = %v, want [1]", out)
	}
}

func TestBruteForceExcludesSelf(t *testing.T) {
	g := newFakeGraph([]float32{1, 1}, nil)
	bf := NewBruteForce(g)
	bf.UpdatePositions([]vector.Vector{{0, 0}, {0, 0}}, NoDeltaMax)
	out := bf.NearestNeighbors(0, 1, nil)
	for _, u := range out {
		if u == 0 {
			t.Fatalf("NearestNeighbors included self")
		}
	}
}

func TestBruteForceRepellingNodesExcludesNeighbors(t *testing.T) {
	g := newFakeGraph([]float32{1, 1, 1}, [][2]uint32{{0, 1}})
	bf := NewBruteForce(g)
	bf.UpdatePositions([]vector.Vector{{0, 0}, {0.1, 0}, {0.2, 0}}, NoDeltaMax)
	out := bf.RepellingNodes(0, nil)
	for _, u := range out {
		if u == 1 {
			t.Fatalf("RepellingNodes included graph neighbor 1")
		}
	}
}

func TestPositionRoundTrip(t *testing.T) {
	g := newFakeGraph([]float32{1}, nil)
	bf := NewBruteForce(g)
	p := vector.Vector{1, 2, 3}
	bf.UpdatePositions([]vector.Vector{p}, NoDeltaMax)
	if got := bf.Position(0); !equalVecForTest(got, p) {
		t.Fatalf("Position(0) = %v, want %v", got, p)
	}
}

func TestNearestNeighborsPanicsOnNegativeRadius(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for negative rSquared")
		}
	}()
	g := newFakeGraph([]float32{1}, nil)
	bf := NewBruteForce(g)
	bf.UpdatePositions([]vector.Vector{{0, 0}}, NoDeltaMax)
	bf.NearestNeighbors(0, -1, nil)
}

func equalVecForTest(a, b vector.Vector) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
