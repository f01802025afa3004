// Package vector implements the fixed-dimension floating-point vector
// primitive used throughout graphembed. Dimension D is chosen once per
// run (an embedding always uses a single D), but since Go has no
// value-generics, a Vector is a flat []float32 of length D and all
// arithmetic is runtime-dimensioned rather than monomorphized per D.
package vector

import (
	"math"
	"math/rand"
)

// Vector is a D-dimensional point or displacement, 32-bit components.
type Vector []float32

// Zero returns a new zero vector of dimension d.
func Zero(d int) Vector {
	return make(Vector, d)
}

// Unit returns a new vector of dimension d with a 1 in component i.
func Unit(d, i int) Vector {
	v := make(Vector, d)
	v[i] = 1
	return v
}

// FromSlice copies components into a new vector.
func FromSlice(components []float32) Vector {
	v := make(Vector, len(components))
	copy(v, components)
	return v
}

// Generate builds a d-dimensional vector by calling f for each index.
func Generate(d int, f func(i int) float32) Vector {
	v := make(Vector, d)
	for i := range v {
		v[i] = f(i)
	}
	return v
}

// Random returns a vector with each component drawn uniformly from [lo, hi).
func Random(d int, lo, hi float32, rng *rand.Rand) Vector {
	span := hi - lo
	return Generate(d, func(int) float32 {
		return lo + span*rng.Float32()
	})
}

// Dim returns the number of components.
func (v Vector) Dim() int {
	return len(v)
}

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Add returns v + other, component-wise.
func (v Vector) Add(other Vector) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] + other[i]
	}
	return out
}

// Sub returns v - other, component-wise.
func (v Vector) Sub(other Vector) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] - other[i]
	}
	return out
}

// AddInPlace mutates v to v + other.
func (v Vector) AddInPlace(other Vector) {
	for i := range v {
		v[i] += other[i]
	}
}

// Scale returns v * s.
func (v Vector) Scale(s float32) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] * s
	}
	return out
}

// Div returns v / s.
func (v Vector) Div(s float32) Vector {
	return v.Scale(1 / s)
}

// Mul returns the element-wise (Hadamard) product.
func (v Vector) Mul(other Vector) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] * other[i]
	}
	return out
}

// Dot returns the dot product of v and other.
func (v Vector) Dot(other Vector) float32 {
	var sum float32
	for i := range v {
		sum += v[i] * other[i]
	}
	return sum
}

// NormSquared returns ‖v‖².
func (v Vector) NormSquared() float32 {
	return v.Dot(v)
}

// Norm returns ‖v‖. Avoid on hot paths; prefer NormSquared.
func (v Vector) Norm() float32 {
	return float32(math.Sqrt(float64(v.NormSquared())))
}

// DistSquared returns ‖v-other‖², the hot-path distance primitive. It
// never takes a square root; callers compare against squared radii.
func (v Vector) DistSquared(other Vector) float32 {
	var sum float32
	for i := range v {
		d := v[i] - other[i]
		sum += d * d
	}
	return sum
}

// Dist returns ‖v-other‖.
func (v Vector) Dist(other Vector) float32 {
	return float32(math.Sqrt(float64(v.DistSquared(other))))
}

// Map returns a new vector with f applied to each component.
func (v Vector) Map(f func(float32) float32) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = f(v[i])
	}
	return out
}

// Truncate returns the first d components as a new, lower-dimensional vector.
// Panics if d > v.Dim(), matching the contract-violation policy of §7.
func (v Vector) Truncate(d int) Vector {
	out := make(Vector, d)
	copy(out, v[:d])
	return out
}

// Slice extracts the contiguous sub-range [lo, hi) into a new vector of
// dimension hi-lo.
func (v Vector) Slice(lo, hi int) Vector {
	out := make(Vector, hi-lo)
	copy(out, v[lo:hi])
	return out
}
