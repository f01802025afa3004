package embedder

import (
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/azybler/graphembed/pkg/graphview"
	"github.com/azybler/graphembed/pkg/vector"
)

func testConfig() Config {
	c := DefaultConfig()
	c.D = 2
	c.H = 2
	c.Index = IndexBruteForce
	return c
}

// TestSingleNodeStepIsNoOp is the N=1 boundary case (§8): one embedder
// step on a single, edgeless node leaves its position unchanged.
func TestSingleNodeStepIsNoOp(t *testing.T) {
	g := graphview.Build(nil, 1, 2, 2)
	cfg := testConfig()
	e := NewFromPositions(g, cfg, []vector.Vector{{3, 4}}, zerolog.Nop())

	e.Step()

	if e.positions[0][0] != 3 || e.positions[0][1] != 4 {
		t.Fatalf("position changed on single-node step: %v", e.positions[0])
	}
	for _, c := range e.forces[0] {
		if c != 0 {
			t.Fatalf("force nonzero on single-node step: %v", e.forces[0])
		}
	}
}

// TestPathGraphConverges is a lighter-weight variant of E1: a 3-vertex
// path should converge with neighbor distances near weight(u)*weight(v).
func TestPathGraphConverges(t *testing.T) {
	edges := [][2]uint32{{0, 1}, {1, 2}}
	g := graphview.Build(edges, 3, 2, 2)

	cfg := testConfig()
	cfg.Seed = 42
	cfg.MaxIterations = 1000
	e := NewRandom(g, cfg, zerolog.Nop())
	e.Embed(nil)

	p := e.Positions()
	d01 := p[0].Dist(p[1])
	d12 := p[1].Dist(p[2])
	w01 := g.Weight(0) * g.Weight(1)
	w12 := g.Weight(1) * g.Weight(2)

	if rel := math.Abs(float64(d01-w01)) / float64(w01); rel > 0.25 {
		t.Errorf("‖p1-p0‖ = %f, want approximately %f (rel err %f)", d01, w01, rel)
	}
	if rel := math.Abs(float64(d12-w12)) / float64(w12); rel > 0.25 {
		t.Errorf("‖p2-p1‖ = %f, want approximately %f (rel err %f)", d12, w12, rel)
	}
}

func TestEmbedRespectsMaxIterations(t *testing.T) {
	edges := [][2]uint32{{0, 1}}
	g := graphview.Build(edges, 2, 2, 2)
	cfg := testConfig()
	cfg.MaxIterations = 5
	cfg.MinPositionChange = 0 // never converges, forcing the iteration cap
	e := NewRandom(g, cfg, zerolog.Nop())
	e.Embed(nil)
	if e.Iteration() != 5 {
		t.Fatalf("Iteration() = %d, want 5", e.Iteration())
	}
}

func TestHistorySampledEveryTenIterations(t *testing.T) {
	edges := [][2]uint32{{0, 1}}
	g := graphview.Build(edges, 2, 2, 2)
	cfg := testConfig()
	cfg.MaxIterations = 25
	cfg.MinPositionChange = 0
	e := NewRandom(g, cfg, zerolog.Nop())
	e.Embed(nil)

	hist := e.History()
	if len(hist) != 2 {
		t.Fatalf("len(History()) = %d, want 2 (iterations 10 and 20)", len(hist))
	}
	if hist[0].Iteration != 10 || hist[1].Iteration != 20 {
		t.Fatalf("history iterations = %v, want [10 20]", []int{hist[0].Iteration, hist[1].Iteration})
	}
}

func TestIdenticalPositionsProduceNoNaN(t *testing.T) {
	edges := [][2]uint32{{0, 1}, {1, 2}, {2, 0}}
	g := graphview.Build(edges, 3, 2, 2)
	cfg := testConfig()
	positions := []vector.Vector{{1, 1}, {1, 1}, {1, 1}}
	e := NewFromPositions(g, cfg, positions, zerolog.Nop())

	for i := 0; i < 5; i++ {
		e.Step()
	}
	for _, p := range e.Positions() {
		for _, c := range p {
			if math.IsNaN(float64(c)) {
				t.Fatalf("NaN produced from identical starting positions")
			}
		}
	}
}
