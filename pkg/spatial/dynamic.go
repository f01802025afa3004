package spatial

import (
	"sort"
	"sync"

	"github.com/azybler/graphembed/pkg/vector"
)

// DefaultOverQueryRadius is C6's enlargement factor: the radius used
// when refreshing the cache, large enough that a run of small position
// deltas can be answered from the cache before a refresh is needed.
// The source varies between 1.1 and 1.2 across revisions (§9 open
// questions); graphembed exposes it as a configurable field with 1.2
// as the default.
const DefaultOverQueryRadius float32 = 1.2

// Dynamic wraps an inner Index (typically a Tree) with an over-query
// cache (C6): instead of repeating the exact radius-1 query every
// iteration, it periodically over-queries at OverQueryRadius and reuses
// the cached candidate set for subsequent iterations as long as the
// accumulated position drift hasn't invalidated it.
type Dynamic struct {
	inner            Index
	graph            Graph
	overQueryRadius  float32
	positions        []vector.Vector
	cache            []dynamicCacheEntry
	queryBuffer      float32
	overquery        bool
}

type dynamicCacheEntry struct {
	mu        sync.Mutex
	nodes     []uint32
	populated bool
}

// NewDynamic wraps inner with the default over-query radius.
func NewDynamic(inner Index, graph Graph) *Dynamic {
	return NewDynamicWithRadius(inner, graph, DefaultOverQueryRadius)
}

// NewDynamicWithRadius wraps inner with a caller-chosen over-query
// radius (must be > 1).
func NewDynamicWithRadius(inner Index, graph Graph, overQueryRadius float32) *Dynamic {
	return &Dynamic{
		inner:           inner,
		graph:           graph,
		overQueryRadius: overQueryRadius,
		queryBuffer:     overQueryRadius,
	}
}

func (d *Dynamic) UpdatePositions(positions []vector.Vector, deltaMax float32) {
	cp := make([]vector.Vector, len(positions))
	for i, p := range positions {
		cp[i] = p.Clone()
	}
	d.positions = cp

	if len(d.cache) != len(positions) {
		d.cache = make([]dynamicCacheEntry, len(positions))
	}

	// An unknown Δ_max (the first update, or any caller that doesn't
	// track it) must force a forward-and-rebuild, not be treated as "no
	// movement": mapping it to 0 left the inner index never built.
	// original_source/src/dynamic_queries.rs maps a missing delta to
	// 10. before doubling it into maxDeviation, a value large enough to
	// always exceed overQueryRadius; do the same here.
	if deltaMax == NoDeltaMax {
		deltaMax = 10
	}

	maxDeviation := deltaMax * 2

	if 1+maxDeviation >= d.overQueryRadius {
		d.overquery = false
		d.inner.UpdatePositions(positions, deltaMax)
		d.clearCache()
		return
	}

	d.overquery = true
	if d.queryBuffer-maxDeviation < 1 {
		d.inner.UpdatePositions(positions, deltaMax)
		d.clearCache()
		d.queryBuffer = d.overQueryRadius
	} else {
		d.queryBuffer -= maxDeviation
	}
}

func (d *Dynamic) clearCache() {
	for i := range d.cache {
		d.cache[i].populated = false
		d.cache[i].nodes = nil
	}
}

func (d *Dynamic) Position(v uint32) vector.Vector {
	return d.positions[v]
}

func (d *Dynamic) NumNodes() int {
	return len(d.positions)
}

// NearestNeighbors implements C6's radius-1 cache semantics. Only
// r == 1 (the repulsion-pass radius) is cache-accelerated; any other
// radius passes straight through to the inner index, matching the
// contract's "with r ≤ 1" scope.
func (d *Dynamic) NearestNeighbors(v uint32, rSquared float32, out []uint32) []uint32 {
	assertNonNegativeRadius(rSquared)
	if !d.overquery || rSquared != 1 {
		return d.inner.NearestNeighbors(v, rSquared, out)
	}

	entry := &d.cache[v]
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !entry.populated {
		candidates := d.inner.NearestNeighbors(v, d.overQueryRadius*d.overQueryRadius, nil)
		entry.nodes = tieBreakFilter(d.graph, v, candidates)
		entry.populated = true
	} else {
		entry.nodes = retainWithinBuffer(d.graph, v, entry.nodes, d.positions, d.queryBuffer*d.queryBuffer)
	}

	for _, u := range entry.nodes {
		if withinRadius1(d.graph, v, u, d.positions) {
			out = append(out, u)
		}
	}
	return out
}

// tieBreakFilter halves the cache by keeping only candidates u with
// weight(v) >= weight(u), breaking ties by NodeId, matching the "last
// committed variant" the source settles on (§9).
func tieBreakFilter(g Graph, v uint32, candidates []uint32) []uint32 {
	wv := g.Weight(v)
	out := candidates[:0]
	for _, u := range candidates {
		wu := g.Weight(u)
		if wv > wu || (wv == wu && v <= u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// retainWithinBuffer keeps only entries still within the weighted
// query_buffer radius, preserving the cache-as-superset invariant.
func retainWithinBuffer(g Graph, v uint32, candidates []uint32, positions []vector.Vector, bufferSquared float32) []uint32 {
	pv := positions[v]
	out := candidates[:0]
	for _, u := range candidates {
		bound := weightedDistSquaredBound(g, v, u, bufferSquared)
		if pv.DistSquared(positions[u]) < bound {
			out = append(out, u)
		}
	}
	return out
}

func withinRadius1(g Graph, v, u uint32, positions []vector.Vector) bool {
	bound := weightedDistSquaredBound(g, v, u, 1)
	return positions[v].DistSquared(positions[u]) < bound
}

func (d *Dynamic) RepellingNodes(v uint32, out []uint32) []uint32 {
	candidates := d.NearestNeighbors(v, 1, nil)
	return appendRepellingFromNeighbors(d.graph, v, candidates, out)
}
