// Package adam implements the Adam optimizer (C7): a per-coordinate
// adaptive step-size update with bias-corrected first and second
// moment estimates and a multiplicative cooling factor.
package adam

import (
	"math"

	"github.com/azybler/graphembed/pkg/vector"
)

const (
	beta1   = 0.9
	beta2   = 0.999
	epsilon = 1e-8
)

// Optimizer holds the Adam moment state for N vectors of dimension D.
type Optimizer struct {
	learningRate float32
	cooling      float32

	m []vector.Vector
	v []vector.Vector
	t int
}

// New constructs an Optimizer for n vectors of dimension dim.
// learningRate is α; cooling is the per-iteration decay factor cool ∈
// (0,1], applied as cool^t.
func New(n, dim int, learningRate, cooling float32) *Optimizer {
	o := &Optimizer{learningRate: learningRate, cooling: cooling}
	o.m = make([]vector.Vector, n)
	o.v = make([]vector.Vector, n)
	for i := range o.m {
		o.m[i] = vector.Zero(dim)
		o.v[i] = vector.Zero(dim)
	}
	return o
}

// Reset zeros both moment arrays and the timestep.
func (o *Optimizer) Reset() {
	o.t = 0
	for i := range o.m {
		for d := range o.m[i] {
			o.m[i][d] = 0
			o.v[i][d] = 0
		}
	}
}

// Update applies one Adam step to positions in place, driven by forces
// (the gradient proxy — the force direction is the ascent direction
// here, since the embedder maximizes separation rather than minimizing
// a loss).
func (o *Optimizer) Update(positions []vector.Vector, forces []vector.Vector) {
	o.t++
	biasCorrect1 := float32(1 - math.Pow(beta1, float64(o.t)))
	biasCorrect2 := float32(1 - math.Pow(beta2, float64(o.t)))
	coolFactor := float32(math.Pow(float64(o.cooling), float64(o.t)))
	step := o.learningRate * coolFactor

	for i := range positions {
		g := forces[i]
		mi := o.m[i]
		vi := o.v[i]
		for d := range mi {
			mi[d] = beta1*mi[d] + (1-beta1)*g[d]
			vi[d] = beta2*vi[d] + (1-beta2)*g[d]*g[d]

			mHat := mi[d] / biasCorrect1
			vHat := vi[d] / biasCorrect2

			positions[i][d] += step * mHat / (float32(math.Sqrt(float64(vHat))) + epsilon)
		}
	}
}
