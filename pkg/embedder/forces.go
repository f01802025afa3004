package embedder

import (
	"math/rand"

	"github.com/azybler/graphembed/pkg/vector"
)

const jitterBound = 0.01

// jitter returns a tiny random displacement, used when two positions
// coincide exactly and direction is otherwise undefined.
func jitter(d int, rng *rand.Rand) vector.Vector {
	return vector.Generate(d, func(int) float32 {
		return (rng.Float32()*2 - 1) * jitterBound
	})
}

// attractionForce returns the force pulling the point at p toward q
// (the force p experiences due to a graph neighbor at q), per §4.8.
// Weighted distance at or below 1 means the pair is already close
// enough; the force is zero there.
func attractionForce(p, q vector.Vector, wp, wq, scale float32, rng *rand.Rand) vector.Vector {
	dir := q.Sub(p)
	d := dir.Norm()
	if d == 0 {
		return jitter(len(p), rng)
	}
	w := wp * wq
	dw := d / w
	if dw <= 1 {
		return vector.Zero(len(p))
	}
	return dir.Scale(scale / (d * w))
}

// repulsionForce returns the force pushing the point at p away from q
// (the force p experiences due to a spatially close non-neighbor at
// q). Active only while weighted distance is below 1.
func repulsionForce(p, q vector.Vector, wp, wq, scale float32, rng *rand.Rand) vector.Vector {
	dir := p.Sub(q)
	d := dir.Norm()
	if d == 0 {
		return jitter(len(p), rng)
	}
	w := wp * wq
	dw := d / w
	if dw >= 1 {
		return vector.Zero(len(p))
	}
	return dir.Scale(scale / (d * w))
}
