// Package spatial implements the spatial index contract (C3) and its
// three variants: a brute-force reference oracle (C4), an accelerated
// recursive axis-split tree with leaf buckets (C5), and a dynamic-query
// wrapper that caches over-queried results across iterations (C6).
package spatial

import (
	"errors"
	"fmt"

	"github.com/azybler/graphembed/pkg/vector"
)

// NoDeltaMax signals that update_positions' Δ_max argument was not
// supplied (e.g. the very first push of positions into the index).
const NoDeltaMax float32 = -1

// ErrContractViolation is the assertion payload for the index contract
// check (§4.3: "indices do not fail... may, in debug builds, assert the
// contract"); the check runs in every build. It is never returned through the Index
// interface — callers that violate the contract get a panic carrying
// this error, matching vector.Truncate's panic-on-violation policy.
var ErrContractViolation = errors.New("spatial: contract violation")

// assertNonNegativeRadius panics with ErrContractViolation if rSquared
// is negative, the one contract precondition cheap enough to check
// unconditionally on every query.
func assertNonNegativeRadius(rSquared float32) {
	if rSquared < 0 {
		panic(fmt.Errorf("%w: rSquared = %f must be >= 0", ErrContractViolation, rSquared))
	}
}

// Graph is the minimal view of C2 the spatial layer depends on: the
// weighted-distance predicate needs per-node weight, and the default
// repelling-set filter needs adjacency. *graphview.Graph satisfies this.
type Graph interface {
	Weight(v uint32) float32
	IsConnected(u, v uint32) bool
}

// Index is the shared contract (C3) every spatial index variant
// satisfies. Implementations are side-effect-free with respect to the
// graph view and the caller's position array: UpdatePositions takes the
// array by value (copies it), never aliasing the embedder's own slice.
type Index interface {
	// UpdatePositions replaces the internal position array with a copy
	// of positions. deltaMax, if known, is an upper bound on the
	// per-node displacement since the previous update (NoDeltaMax if
	// unknown); C6 uses it for cache-validity decisions.
	UpdatePositions(positions []vector.Vector, deltaMax float32)

	// Position returns the index's current copy of v's position.
	Position(v uint32) vector.Vector

	// NumNodes returns N.
	NumNodes() int

	// NearestNeighbors appends to out every NodeId u != v such that
	// ‖P[v]-P[u]‖² < (weight(v)·weight(u))²·r², returning the extended
	// slice. An index may restrict its result to an asymmetric subset
	// for efficiency (e.g. only u < v); the caller symmetrizes (C9).
	NearestNeighbors(v uint32, rSquared float32, out []uint32) []uint32

	// RepellingNodes appends v's repelling set: non-adjacent,
	// non-self nodes within weighted radius 1. Default semantics are
	// NearestNeighbors(v, 1, out) filtered to non-adjacent.
	RepellingNodes(v uint32, out []uint32) []uint32
}

// weightedDistSquaredBound returns (weight(v)*weight(u))² * rSquared, the
// right-hand side of the weighted squared-distance predicate. rSquared
// is already a squared radius, per the nearest_neighbors(v, r², out)
// contract.
func weightedDistSquaredBound(g Graph, v, u uint32, rSquared float32) float32 {
	w := g.Weight(v) * g.Weight(u)
	return w * w * rSquared
}

// appendRepellingFromNeighbors applies the default RepellingNodes filter
// (non-adjacent, non-self) to a radius-1 NearestNeighbors result. It is
// shared by every index variant that does not special-case repulsion.
func appendRepellingFromNeighbors(g Graph, v uint32, candidates []uint32, out []uint32) []uint32 {
	for _, u := range candidates {
		if u == v {
			continue
		}
		if g.IsConnected(v, u) {
			continue
		}
		out = append(out, u)
	}
	return out
}
