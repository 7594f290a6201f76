package vector

import (
	"slices"

	"github.com/chewxy/math32"
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/blas/blas32"
)

type Number interface {
	constraints.Integer | constraints.Float
}

func NewZeros(n int) blas32.Vector {
	return blas32.Vector{
		N:    n,
		Inc:  1,
		Data: make([]float32, n),
	}
}

// FromSlice widens xs to float32. Integer labels and uint8 pixels pass through here.
func FromSlice[T Number](xs []T) blas32.Vector {
	vec := NewZeros(len(xs))
	for i, x := range xs {
		vec.Data[i] = float32(x)
	}
	return vec
}

func Clone(vec blas32.Vector) blas32.Vector {
	return blas32.Vector{
		N:    vec.N,
		Inc:  vec.Inc,
		Data: slices.Clone(vec.Data),
	}
}

// ToSlice returns the N logical elements of vec as a contiguous slice.
func ToSlice(vec blas32.Vector) []float32 {
	if vec.Inc == 1 {
		return slices.Clone(vec.Data[:vec.N])
	}
	y := make([]float32, vec.N)
	for i := range y {
		y[i] = vec.Data[i*vec.Inc]
	}
	return y
}

// Max returns -Inf for an empty vector and NaN if any element is NaN.
func Max(vec blas32.Vector) float32 {
	m := math32.Inf(-1)
	for i := 0; i < vec.N; i++ {
		e := vec.Data[i*vec.Inc]
		if math32.IsNaN(e) {
			return e
		}
		m = math32.Max(m, e)
	}
	return m
}
