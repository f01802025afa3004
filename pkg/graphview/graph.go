// Package graphview provides the read-only graph view (C2) consumed by
// every other component: per-node weight, sorted neighbor lists, and an
// O(1) adjacency membership test. A Graph is immutable once built; the
// CSR-style adjacency is constructed by counting + prefix sum, the same
// technique the teacher's graph builder uses for road-network edges.
package graphview

import "math"

// Graph is an undirected, read-only adjacency view with per-node weights.
// Once built, neighbor lists and weights never change (data model
// invariant 4).
type Graph struct {
	numNodes uint32

	// CSR adjacency: Neighbors[FirstOut[v]:FirstOut[v+1]] are v's sorted,
	// duplicate-free neighbor ids.
	firstOut  []uint32
	neighbors []uint32

	// adjSet mirrors neighbors into a hash set per node for amortized
	// O(1) IsConnected lookups.
	adjSet []map[uint32]struct{}

	weight []float32
}

// NumNodes returns N.
func (g *Graph) NumNodes() int {
	return int(g.numNodes)
}

// Weight returns the per-vertex weight, always > 0.
func (g *Graph) Weight(v uint32) float32 {
	return g.weight[v]
}

// Neighbors returns a borrowed, sorted, duplicate-free slice of v's
// neighbors. The caller must not mutate it; its lifetime is tied to g.
func (g *Graph) Neighbors(v uint32) []uint32 {
	return g.neighbors[g.firstOut[v]:g.firstOut[v+1]]
}

// Degree returns len(Neighbors(v)).
func (g *Graph) Degree(v uint32) int {
	return int(g.firstOut[v+1] - g.firstOut[v])
}

// IsConnected reports whether u and v are adjacent, in amortized O(1).
func (g *Graph) IsConnected(u, v uint32) bool {
	_, ok := g.adjSet[u][v]
	return ok
}

// Build constructs a Graph from a zero-based undirected edge list (as
// produced by gedge.Parse; duplicate edges are allowed and are removed
// here) plus the node count. dim is the
// embedding dimension D, hintDim is the caller-supplied weight-formula
// dimension hint H.
//
// Per-node weight is ((deg(v))^(D/H) · N/Σdeg)^(1/D); the formula
// normalizes so the mean weight is approximately 1.
func Build(edges [][2]uint32, numNodes int, dim, hintDim int) *Graph {
	n := uint32(numNodes)

	// Count degree (each undirected edge contributes to both endpoints).
	degree := make([]uint32, n)
	for _, e := range edges {
		degree[e[0]]++
		degree[e[1]]++
	}

	// Build adjacency via counting + prefix sum, then bucket-fill, then
	// sort+dedup each bucket (duplicate input edges are tolerated).
	firstOut := make([]uint32, n+1)
	for v := uint32(0); v < n; v++ {
		firstOut[v+1] = firstOut[v] + degree[v]
	}

	rawNeighbors := make([]uint32, firstOut[n])
	cursor := make([]uint32, n)
	copy(cursor, firstOut[:n])
	for _, e := range edges {
		u, v := e[0], e[1]
		rawNeighbors[cursor[u]] = v
		cursor[u]++
		rawNeighbors[cursor[v]] = u
		cursor[v]++
	}

	// Sort + dedup each bucket in place within rawNeighbors, recording
	// the deduped length per node, then compact into the final CSR
	// arrays with a fresh prefix sum.
	dedupedLen := make([]uint32, n)
	adjSet := make([]map[uint32]struct{}, n)
	for v := uint32(0); v < n; v++ {
		bucket := rawNeighbors[firstOut[v]:firstOut[v+1]]
		sortUint32(bucket)
		deduped := dedupUint32(bucket)
		dedupedLen[v] = uint32(len(deduped))
		m := make(map[uint32]struct{}, len(deduped))
		for _, u := range deduped {
			m[u] = struct{}{}
		}
		adjSet[v] = m
	}

	finalFirstOut := make([]uint32, n+1)
	for v := uint32(0); v < n; v++ {
		finalFirstOut[v+1] = finalFirstOut[v] + dedupedLen[v]
	}
	neighbors := make([]uint32, finalFirstOut[n])
	for v := uint32(0); v < n; v++ {
		src := rawNeighbors[firstOut[v] : firstOut[v]+dedupedLen[v]]
		copy(neighbors[finalFirstOut[v]:finalFirstOut[v+1]], src)
	}
	firstOut = finalFirstOut

	weight := computeWeights(firstOut, n, dim, hintDim)

	return &Graph{
		numNodes:  n,
		firstOut:  firstOut,
		neighbors: neighbors,
		adjSet:    adjSet,
		weight:    weight,
	}
}

// computeWeights implements §3's weight(v) = ((deg(v))^(D/H) · N/Σdeg)^(1/D).
func computeWeights(firstOut []uint32, n uint32, dim, hintDim int) []float32 {
	var totalDeg float64
	deg := make([]float64, n)
	for v := uint32(0); v < n; v++ {
		d := float64(firstOut[v+1] - firstOut[v])
		deg[v] = d
		totalDeg += d
	}

	if totalDeg == 0 {
		// Every node is isolated (a graph with nodes but no edges at
		// all): each contributes the same substituted degree-1 below,
		// so the sum they'd substitute to is n, not 0.
		totalDeg = float64(n)
	}

	weight := make([]float32, n)
	dimRatio := float64(dim) / float64(hintDim)
	invDim := 1.0 / float64(dim)
	for v := uint32(0); v < n; v++ {
		d := deg[v]
		if d == 0 {
			d = 1 // isolated vertex: treat as degree-1 for a finite, positive weight
		}
		w := math.Pow(math.Pow(d, dimRatio)*float64(n)/totalDeg, invDim)
		weight[v] = float32(w)
	}
	return weight
}

func sortUint32(s []uint32) {
	// Insertion sort is adequate: buckets are per-node degree-sized,
	// overwhelmingly small relative to N.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func dedupUint32(sorted []uint32) []uint32 {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

