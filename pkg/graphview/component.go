package graphview

// UnionFind is a disjoint-set structure with path halving and union by
// rank, used to discover a graph's weakly connected components.
type UnionFind struct {
	parent []uint32
	rank   []byte
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements, each its own
// singleton set.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range parent {
		parent[i] = uint32(i)
		size[i] = 1
	}
	return &UnionFind{parent: parent, rank: make([]byte, n), size: size}
}

// Find returns the representative of the set containing x.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y, returning false if they
// were already the same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx, ry := uf.Find(x), uf.Find(y)
	if rx == ry {
		return false
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Components partitions g's nodes into weakly connected components,
// returning one node-index slice per component. A force-directed layout
// places disconnected components arbitrarily far apart (nothing
// attracts them together), so callers that care — diagnostics, or
// per-component embedding — can use this to find the split ahead of
// time instead of reading it off the final positions.
func Components(g *Graph) [][]uint32 {
	if g.NumNodes() == 0 {
		return nil
	}
	n := g.NumNodes()
	uf := NewUnionFind(uint32(n))
	for v := uint32(0); v < uint32(n); v++ {
		for _, u := range g.Neighbors(v) {
			uf.Union(v, u)
		}
	}

	rootToComponent := make(map[uint32]int)
	var components [][]uint32
	for v := uint32(0); v < uint32(n); v++ {
		root := uf.Find(v)
		idx, ok := rootToComponent[root]
		if !ok {
			idx = len(components)
			rootToComponent[root] = idx
			components = append(components, nil)
		}
		components[idx] = append(components[idx], v)
	}
	return components
}

// LargestComponent returns the node indices of g's largest weakly
// connected component.
func LargestComponent(g *Graph) []uint32 {
	components := Components(g)
	var best []uint32
	for _, c := range components {
		if len(c) > len(best) {
			best = c
		}
	}
	return best
}
