package spatial

import (
	"math"
	"sort"

	"github.com/azybler/graphembed/pkg/vector"
)

// LeafSize is the default maximum leaf occupancy (§4.5).
const LeafSize = 50

// lutBuckets is the leaf bucket LUT resolution (§4.5 picks 50 to match
// the default leaf size; the two are independent constants that happen
// to share a value).
const lutBuckets = 50

type nodeKind uint8

const (
	kindEmpty nodeKind = iota
	kindInternal
	kindLeaf
)

// treeNode is addressed by implicit heap index (child(i) = 2i+1, 2i+2),
// an array-of-structs in place of per-node heap allocation (§9 design
// notes).
type treeNode struct {
	kind nodeKind

	// internal
	splitDim   int
	splitValue float32

	// leaf: a contiguous range [offset, offset+length) into the tree's
	// permuted NodeId/position arrays, plus a bucket LUT over dim.
	offset, length int
	dim            int
	lutMin         float32
	lutResolution  float32
	lut            [lutBuckets]uint32
}

// Tree is the accelerated recursive axis-split tree (C5): a pre-built
// spatial index with leaf buckets and a radius-reduction query that
// prunes subtrees via an incremental squared-distance bound.
type Tree struct {
	graph    Graph
	dim      int
	leafSize int

	positions []vector.Vector // caller-order positions, index = NodeId
	nodes     []treeNode      // implicit-heap-indexed

	// Parallel arrays in leaf-scan order.
	permutation   []uint32
	permPositions []vector.Vector

	maxWeightSquared float32
}

// NewTree constructs an empty tree over graph with embedding dimension
// dim; call UpdatePositions to build it.
func NewTree(graph Graph, dim int) *Tree {
	return &Tree{graph: graph, dim: dim, leafSize: LeafSize}
}

func (t *Tree) UpdatePositions(positions []vector.Vector, _ float32) {
	n := len(positions)
	cp := make([]vector.Vector, n)
	for i, p := range positions {
		cp[i] = p.Clone()
	}
	t.positions = cp

	t.maxWeightSquared = 0
	for v := 0; v < n; v++ {
		w := t.graph.Weight(uint32(v))
		if w*w > t.maxWeightSquared {
			t.maxWeightSquared = w * w
		}
	}

	order := make([]uint32, n)
	for i := range order {
		order[i] = uint32(i)
	}
	t.permutation = make([]uint32, n)
	t.permPositions = make([]vector.Vector, n)
	t.nodes = nil
	cursor := 0
	if n > 0 {
		t.build(order, 0, 0, &cursor)
	}
}

func (t *Tree) Position(v uint32) vector.Vector {
	return t.positions[v]
}

func (t *Tree) NumNodes() int {
	return len(t.positions)
}

func (t *Tree) ensureNode(layerID int) {
	if layerID >= len(t.nodes) {
		grown := make([]treeNode, layerID+1)
		copy(grown, t.nodes)
		t.nodes = grown
	}
}

// build recursively partitions ids (a subset of NodeIds) at the given
// depth and layer, writing the result into t.nodes/t.permutation/
// t.permPositions. cursor tracks the next free offset for leaf ranges.
func (t *Tree) build(ids []uint32, depth, layerID int, cursor *int) {
	sortByCoordinate(ids, t.positions, depth)

	if len(ids) <= t.leafSize {
		t.makeLeaf(ids, depth, layerID, cursor)
		return
	}

	splitPos := len(ids) / 2
	splitValue := t.positions[ids[splitPos]][depth]
	// Ties go to the right child: move the boundary left past any run
	// of entries equal to splitValue so the left child is strictly <.
	for splitPos > 0 && t.positions[ids[splitPos-1]][depth] == splitValue {
		splitPos--
	}
	if splitPos == 0 {
		// Degenerate: every entry in this subset shares the same
		// coordinate. Fall back to a leaf rather than recursing forever.
		t.makeLeaf(ids, depth, layerID, cursor)
		return
	}

	t.ensureNode(layerID)
	t.nodes[layerID] = treeNode{kind: kindInternal, splitDim: depth, splitValue: splitValue}

	nextDepth := (depth + 1) % t.dim
	t.build(ids[:splitPos], nextDepth, 2*layerID+1, cursor)
	t.build(ids[splitPos:], nextDepth, 2*layerID+2, cursor)
}

func (t *Tree) makeLeaf(ids []uint32, dim, layerID int, cursor *int) {
	offset := *cursor
	length := len(ids)
	*cursor += length

	for i, id := range ids {
		t.permutation[offset+i] = id
		t.permPositions[offset+i] = t.positions[id]
	}

	leaf := treeNode{kind: kindLeaf, offset: offset, length: length, dim: dim}
	if length > 0 {
		first := t.permPositions[offset][dim]
		last := t.permPositions[offset+length-1][dim]
		lo := float32(math.Floor(float64(first)))
		hi := float32(math.Ceil(float64(last)))
		leaf.lutMin = lo
		if hi > lo {
			leaf.lutResolution = lutBuckets / (hi - lo)
		} else {
			leaf.lutResolution = 1
		}
		for i := 0; i < lutBuckets; i++ {
			boundary := lo + float32(i)/leaf.lutResolution
			leaf.lut[i] = uint32(lowerBoundCoord(t.permPositions[offset:offset+length], dim, boundary))
		}
	}

	t.ensureNode(layerID)
	t.nodes[layerID] = leaf
}

// lowerBoundCoord returns the index (within positions) of the first
// entry whose dim-th coordinate is >= boundary. positions must already
// be sorted ascending by that coordinate.
func lowerBoundCoord(positions []vector.Vector, dim int, boundary float32) int {
	return sort.Search(len(positions), func(i int) bool {
		return positions[i][dim] >= boundary
	})
}

// sortKey maps a float32 to a uint32 that sorts in the same order as
// the float (monotonic bit-pattern transform): flip the sign bit for
// non-negatives, flip all bits for negatives. Using an integer key
// keeps the sort a cheap, branch-predictable comparison (§9 design
// notes: "integer-key sort on raw bit patterns ... for deterministic
// ordering").
func sortKey(x float32) uint32 {
	bits := math.Float32bits(x)
	if bits&0x80000000 != 0 {
		return ^bits
	}
	return bits | 0x80000000
}

func sortByCoordinate(ids []uint32, positions []vector.Vector, dim int) {
	sort.Slice(ids, func(i, j int) bool {
		return sortKey(positions[ids[i]][dim]) < sortKey(positions[ids[j]][dim])
	})
}

func (t *Tree) NearestNeighbors(v uint32, rSquared float32, out []uint32) []uint32 {
	assertNonNegativeRadius(rSquared)
	if len(t.nodes) == 0 {
		return out
	}
	wv := t.graph.Weight(v)
	wv2rSquared := wv * wv * rSquared
	initialR2 := wv2rSquared * t.maxWeightSquared
	delta := make([]float32, t.dim)
	return t.queryRecursive(v, 0, 0, initialR2, delta, wv2rSquared, out)
}

func (t *Tree) queryRecursive(v uint32, layerID, depth int, r2 float32, delta []float32, wv2rSquared float32, out []uint32) []uint32 {
	if layerID >= len(t.nodes) {
		return out
	}
	node := &t.nodes[layerID]
	if node.kind == kindEmpty {
		return out
	}

	pv := t.positions[v]

	if node.kind == kindLeaf {
		m := delta[node.dim]
		rho := float32(math.Sqrt(float64(r2 + m*m)))
		target := pv[node.dim]
		lo := target - rho
		hi := target + rho

		start := node.leafLowerBound(lo)
		for i := node.offset + start; i < node.offset+node.length; i++ {
			coord := t.permPositions[i][node.dim]
			if coord > hi {
				break
			}
			u := t.permutation[i]
			if u == v {
				continue
			}
			full := pv.DistSquared(t.permPositions[i])
			wu := t.graph.Weight(u)
			bound := wv2rSquared * wu * wu
			if full < bound {
				out = append(out, u)
			}
		}
		return out
	}

	// Internal node.
	nextDepth := (depth + 1) % t.dim
	s := node.splitValue
	pAtDepth := pv[depth]
	leftChild, rightChild := 2*layerID+1, 2*layerID+2

	var sameChild, otherChild int
	if pAtDepth < s {
		sameChild, otherChild = leftChild, rightChild
	} else {
		sameChild, otherChild = rightChild, leftChild
	}

	out = t.queryRecursive(v, sameChild, nextDepth, r2, delta, wv2rSquared, out)

	dOld := delta[depth]
	d := pAtDepth - s
	newR2 := r2 - (d*d - dOld*dOld)
	if newR2 <= 0 {
		return out
	}
	newDelta := make([]float32, len(delta))
	copy(newDelta, delta)
	newDelta[depth] = d
	return t.queryRecursive(v, otherChild, nextDepth, newR2, newDelta, wv2rSquared, out)
}

// leafLowerBound returns a conservative starting offset (relative to
// node.offset) for entries with coordinate >= x, using the bucket LUT.
func (n *treeNode) leafLowerBound(x float32) int {
	if n.length == 0 {
		return 0
	}
	if x <= n.lutMin {
		return 0
	}
	maxCoord := n.lutMin + lutBuckets/n.lutResolution
	if x > maxCoord {
		return n.length
	}
	bucket := int((x - n.lutMin) * n.lutResolution)
	if bucket < 0 {
		bucket = 0
	}
	if bucket >= lutBuckets {
		bucket = lutBuckets - 1
	}
	return int(n.lut[bucket])
}

func (t *Tree) RepellingNodes(v uint32, out []uint32) []uint32 {
	candidates := t.NearestNeighbors(v, 1, nil)
	return appendRepellingFromNeighbors(t.graph, v, candidates, out)
}
