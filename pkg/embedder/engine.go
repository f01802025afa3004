// Package embedder implements the embedder engine (C8): the
// per-iteration orchestrator that pushes positions into the spatial
// index, computes attraction and repulsion forces, applies the Adam
// update, and tests for convergence. It also owns the query
// symmetrization layer (C9), since that merge happens entirely within
// the repulsion pass of one iteration.
package embedder

import (
	"math"
	"math/rand"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/azybler/graphembed/pkg/adam"
	"github.com/azybler/graphembed/pkg/graphview"
	"github.com/azybler/graphembed/pkg/spatial"
	"github.com/azybler/graphembed/pkg/vector"
)

// Snapshot is one entry in the position-history log, sampled every 10
// iterations (§3 data model, "history log sampled every 10 iterations").
type Snapshot struct {
	Iteration int
	Positions []vector.Vector
}

// Engine drives one embedding run. It owns the current and previous
// position arrays, per-node forces, the Adam optimizer state, and the
// spatial index; the graph view is shared read-only.
type Engine struct {
	graph  *graphview.Graph
	config Config
	index  spatial.Index
	optim  *adam.Optimizer
	log    zerolog.Logger

	positions    []vector.Vector
	oldPositions []vector.Vector
	forces       []vector.Vector

	hasOldPositions bool
	iteration       int
	lastMaxDelta    float32

	history []Snapshot
}

// NewRandom constructs an Engine with positions sampled uniformly at
// random: each coordinate in [0, N^(1/D)), per §4.8. The PRNG is seeded
// from config.Seed for determinism.
func NewRandom(graph *graphview.Graph, config Config, log zerolog.Logger) *Engine {
	n := graph.NumNodes()
	rng := rand.New(rand.NewSource(config.Seed))
	var cubeSide float32 = 1
	if n > 0 {
		cubeSide = float32(math.Pow(float64(n), 1.0/float64(config.D)))
	}
	positions := make([]vector.Vector, n)
	for v := 0; v < n; v++ {
		positions[v] = vector.Random(config.D, 0, cubeSide, rng)
	}
	return NewFromPositions(graph, config, positions, log)
}

// NewFromPositions constructs an Engine from a caller-supplied position
// array.
func NewFromPositions(graph *graphview.Graph, config Config, positions []vector.Vector, log zerolog.Logger) *Engine {
	n := graph.NumNodes()
	e := &Engine{
		graph:     graph,
		config:    config,
		optim:     adam.New(n, config.D, config.LearningRate, config.CoolingFactor),
		log:       log,
		positions: positions,
		forces:    make([]vector.Vector, n),
	}
	for v := range e.forces {
		e.forces[v] = vector.Zero(config.D)
	}
	e.index = e.buildIndex()
	return e
}

func (e *Engine) buildIndex() spatial.Index {
	switch e.config.Index {
	case IndexBruteForce:
		return spatial.NewBruteForce(e.graph)
	case IndexDynamic:
		return spatial.NewDynamicWithRadius(spatial.NewTree(e.graph, e.config.D), e.graph, e.config.OverQueryRadius)
	case IndexTree:
		fallthrough
	default:
		return spatial.NewTree(e.graph, e.config.D)
	}
}

// Positions returns the engine's current position array (borrowed;
// callers must not mutate it).
func (e *Engine) Positions() []vector.Vector { return e.positions }

// Iteration returns the number of completed iterations.
func (e *Engine) Iteration() int { return e.iteration }

// History returns the accumulated snapshot log.
func (e *Engine) History() []Snapshot { return e.history }

// LastMaxDelta returns the most recently observed maximum per-node
// displacement.
func (e *Engine) LastMaxDelta() float32 { return e.lastMaxDelta }

// Embed runs the iteration loop to convergence or max_iterations,
// invoking callback once per iteration before that iteration's work
// begins. Returns the final positions.
func (e *Engine) Embed(callback func(*Engine)) []vector.Vector {
	e.EmbedWithCallback(callback)
	return e.positions
}

// EmbedWithCallback is the named entry point from §6's exposed symbol
// list; Embed is a thin convenience wrapper around it.
func (e *Engine) EmbedWithCallback(callback func(*Engine)) bool {
	e.optim.Reset()
	for {
		if e.checkConvergence() || e.iteration >= e.config.MaxIterations {
			break
		}
		if callback != nil {
			callback(e)
		}
		e.Step()
	}
	return e.hasOldPositions && e.checkConvergence()
}

// Step runs exactly one iteration: save old positions, snapshot every
// 10 iterations, zero forces, push positions into the index, compute
// attraction and repulsion forces (C9 symmetrized), then apply the
// Adam update.
func (e *Engine) Step() {
	e.iteration++

	old := make([]vector.Vector, len(e.positions))
	for v, p := range e.positions {
		old[v] = p.Clone()
	}
	e.oldPositions = old
	e.hasOldPositions = true

	if e.iteration%10 == 0 {
		snap := make([]vector.Vector, len(e.positions))
		for v, p := range e.positions {
			snap[v] = p.Clone()
		}
		e.history = append(e.history, Snapshot{Iteration: e.iteration, Positions: snap})
	}

	for v := range e.forces {
		for d := range e.forces[v] {
			e.forces[v][d] = 0
		}
	}

	deltaMax := spatial.NoDeltaMax
	if e.iteration > 1 {
		deltaMax = e.lastMaxDelta
	}
	e.index.UpdatePositions(e.positions, deltaMax)

	e.attractionPass()
	e.repulsionPass()

	e.optim.Update(e.positions, e.forces)

	e.log.Debug().
		Int("iteration", e.iteration).
		Int("num_nodes", len(e.positions)).
		Msg("step complete")
}

// attractionPass computes, in parallel over v, the attraction force
// from each of v's graph neighbors and accumulates it into F[v].
func (e *Engine) attractionPass() {
	e.parallelForNodes(func(v uint32, rng *rand.Rand) {
		neighbors := e.graph.Neighbors(v)
		if len(neighbors) == 0 {
			return
		}
		pv := e.positions[v]
		wv := e.graph.Weight(v)
		sum := vector.Zero(e.config.D)
		for _, u := range neighbors {
			f := attractionForce(pv, e.positions[u], wv, e.graph.Weight(u), e.config.AttractionScale, rng)
			sum.AddInPlace(f)
		}
		e.forces[v].AddInPlace(sum)
	})
}

// repulsionPass implements §4.8 step (g) together with the C9
// symmetrization layer: gather each v's repelling candidates, mirror
// them to their destinations, then accumulate the deduped union's
// repulsion force into F[v].
func (e *Engine) repulsionPass() {
	n := len(e.positions)
	sym := newSymmetrizer(n)

	e.parallelForNodes(func(v uint32, _ *rand.Rand) {
		sym.setCandidates(v, e.index.RepellingNodes(v, nil))
	})

	e.parallelForNodes(func(v uint32, _ *rand.Rand) {
		sym.mirrorPass(v)
	})

	e.parallelForNodes(func(v uint32, rng *rand.Rand) {
		candidates := sym.combined(v)
		if len(candidates) == 0 {
			return
		}
		pv := e.positions[v]
		wv := e.graph.Weight(v)
		sum := vector.Zero(e.config.D)
		for _, u := range candidates {
			f := repulsionForce(pv, e.positions[u], wv, e.graph.Weight(u), e.config.RepulsionScale, rng)
			sum.AddInPlace(f)
		}
		e.forces[v].AddInPlace(sum)
	})
}

// checkConvergence implements §4.8's scale-invariant convergence test:
// S_d/S_n < min_position_change, where S_n is the summed squared norm
// of the old positions and S_d the summed squared per-node
// displacement. It also records the maximum per-node displacement for
// the next iteration's Δ_max.
func (e *Engine) checkConvergence() bool {
	if !e.hasOldPositions {
		return false
	}
	var sn, sd float32
	var maxDelta float32
	for v := range e.positions {
		sn += e.oldPositions[v].NormSquared()
		diff := e.positions[v].Sub(e.oldPositions[v])
		sd += diff.NormSquared()
		if m := diff.Norm(); m > maxDelta {
			maxDelta = m
		}
	}
	e.lastMaxDelta = maxDelta
	if sn == 0 {
		return false
	}
	return sd/sn < e.config.MinPositionChange
}

// parallelForNodes statically partitions [0,N) across
// runtime.GOMAXPROCS(0) workers and fans them out with an errgroup,
// following the teacher's static-partitioning preference (§3.1) over a
// dynamic work-stealing queue. Each worker gets its own PRNG, seeded
// deterministically from the run seed, the iteration, and its
// partition index, so jitter stays reproducible without a shared,
// mutex-guarded RNG on the hot path.
func (e *Engine) parallelForNodes(work func(v uint32, rng *rand.Rand)) {
	n := len(e.positions)
	if n == 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}
		seed := e.config.Seed ^ (int64(e.iteration) * 1_000_003) ^ int64(w)
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed))
			for v := start; v < end; v++ {
				work(uint32(v), rng)
			}
			return nil
		})
	}
	_ = g.Wait()
}
