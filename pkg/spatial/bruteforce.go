package spatial

import "github.com/azybler/graphembed/pkg/vector"

// BruteForce is the O(n²) reference index (C4): every query iterates
// all nodes and tests the weighted squared-distance predicate directly.
// It exists to define query semantics and serve as the correctness
// oracle other variants are checked against (§8 property 1).
type BruteForce struct {
	graph     Graph
	positions []vector.Vector
}

// NewBruteForce constructs an empty brute-force index over graph; call
// UpdatePositions before querying.
func NewBruteForce(graph Graph) *BruteForce {
	return &BruteForce{graph: graph}
}

func (b *BruteForce) UpdatePositions(positions []vector.Vector, _ float32) {
	cp := make([]vector.Vector, len(positions))
	for i, p := range positions {
		cp[i] = p.Clone()
	}
	b.positions = cp
}

func (b *BruteForce) Position(v uint32) vector.Vector {
	return b.positions[v]
}

func (b *BruteForce) NumNodes() int {
	return len(b.positions)
}

func (b *BruteForce) NearestNeighbors(v uint32, rSquared float32, out []uint32) []uint32 {
	assertNonNegativeRadius(rSquared)
	pv := b.positions[v]
	n := uint32(len(b.positions))
	for u := uint32(0); u < n; u++ {
		if u == v {
			continue
		}
		bound := weightedDistSquaredBound(b.graph, v, u, rSquared)
		if pv.DistSquared(b.positions[u]) < bound {
			out = append(out, u)
		}
	}
	return out
}

func (b *BruteForce) RepellingNodes(v uint32, out []uint32) []uint32 {
	candidates := b.NearestNeighbors(v, 1, nil)
	return appendRepellingFromNeighbors(b.graph, v, candidates, out)
}
