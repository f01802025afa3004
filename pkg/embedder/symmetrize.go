package embedder

import "sync"

// symmetrizer merges an asymmetric set of per-node repulsion candidates
// into the symmetric closure required for force accumulation (C9).
//
// Each worker v first produces buf[v], its own candidates (no sort, no
// dedup required). A second parallel pass, for each u in buf[v],
// appends v into mirror[u] under a per-u mutex. The force pass for v
// then iterates buf[v] ∪ mirror[v], deduped, so each unordered
// repulsive pair is forced exactly once (§9's "last committed variant").
type symmetrizer struct {
	buf    [][]uint32
	mirror [][]uint32
	locks  []sync.Mutex
}

func newSymmetrizer(n int) *symmetrizer {
	return &symmetrizer{
		buf:    make([][]uint32, n),
		mirror: make([][]uint32, n),
		locks:  make([]sync.Mutex, n),
	}
}

// setCandidates records v's own candidate list (the first pass).
func (s *symmetrizer) setCandidates(v uint32, candidates []uint32) {
	s.buf[v] = candidates
}

// mirrorPass runs the second pass for v: for each u in buf[v], record v
// into mirror[u].
func (s *symmetrizer) mirrorPass(v uint32) {
	for _, u := range s.buf[v] {
		s.locks[u].Lock()
		s.mirror[u] = append(s.mirror[u], v)
		s.locks[u].Unlock()
	}
}

// combined returns the deduped union buf[v] ∪ mirror[v].
func (s *symmetrizer) combined(v uint32) []uint32 {
	seen := make(map[uint32]struct{}, len(s.buf[v])+len(s.mirror[v]))
	out := make([]uint32, 0, len(s.buf[v])+len(s.mirror[v]))
	for _, u := range s.buf[v] {
		if _, ok := seen[u]; !ok {
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	for _, u := range s.mirror[v] {
		if _, ok := seen[u]; !ok {
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}
