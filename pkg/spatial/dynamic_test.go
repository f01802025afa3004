package spatial

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azybler/graphembed/pkg/vector"
)

// TestDynamicMatchesBruteForceUnderSmallMoves is E6: after a converged
// embedding is perturbed by a small move, the dynamic wrapper's radius-1
// result must match brute force's, since the move is well within the
// cache's validity radius.
func TestDynamicMatchesBruteForceUnderSmallMoves(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const n = 60
	const d = 3

	weight := make([]float32, n)
	for i := range weight {
		weight[i] = 1
	}
	g := newFakeGraph(weight, nil)
	positions := randomPositions(n, d, rng)

	bf := NewBruteForce(g)
	bf.UpdatePositions(positions, NoDeltaMax)

	dyn := NewDynamic(NewTree(g, d), g)
	dyn.UpdatePositions(positions, NoDeltaMax)
	// Switch the wrapper into over-query mode with an initial small-delta
	// update (overquery engages only once 1+maxDeviation < overQueryRadius,
	// so the first call needs a nonzero but small deltaMax). The cache
	// itself is filled by the first query after this.
	dyn.UpdatePositions(positions, 0.01)

	perturbed := make([]vector.Vector, n)
	maxDelta := float32(0)
	for i, p := range positions {
		delta := vector.Random(d, -0.02, 0.02, rng)
		perturbed[i] = p.Add(delta)
		if dm := delta.Norm(); dm > maxDelta {
			maxDelta = dm
		}
	}
	bf.UpdatePositions(perturbed, maxDelta)
	dyn.UpdatePositions(perturbed, maxDelta)

	// Property 5's other direction: the emitted set must contain every
	// true neighbor within the safety margin q-Δ, not just be a subset
	// of the exact radius-1 set.
	safeRadius := dyn.overQueryRadius - maxDelta
	require.Greaterf(t, safeRadius, float32(0), "test setup: safety margin must stay positive")

	for v := uint32(0); v < n; v++ {
		bfSet := bf.NearestNeighbors(v, 1, nil)
		dynSet := dyn.NearestNeighbors(v, 1, nil)
		require.Subsetf(t, bfSet, dynSet,
			"v=%d: dynamic result must be a subset of the true radius-1 set", v)

		safeSet := bf.NearestNeighbors(v, safeRadius*safeRadius, nil)
		require.Subsetf(t, dynSet, safeSet,
			"v=%d: dynamic result must contain every true neighbor within the safety margin q-Δ", v)
	}
}

func TestDynamicPassesThroughWhenNotOverquerying(t *testing.T) {
	g := newFakeGraph([]float32{1, 1, 1}, nil)
	dyn := NewDynamicWithRadius(NewBruteForce(g), g, 1.2)
	positions := []vector.Vector{{0, 0}, {0.3, 0}, {5, 5}}
	// Large deltaMax keeps 1+maxDeviation >= overQueryRadius, so every
	// call forwards immediately (overquery stays false).
	dyn.UpdatePositions(positions, 10)
	out := dyn.NearestNeighbors(0, 1, nil)
	if len(out) != 1 || out[0] != 1 {
		t.Fatalf("NearestNeighbors(0,1) = %v, want [1]", out)
	}
}
