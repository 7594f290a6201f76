package vectors

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/sw965/tst/blas32/vector"
	"gonum.org/v1/gonum/blas/blas32"
)

func Clone(vs []blas32.Vector) []blas32.Vector {
	clone := make([]blas32.Vector, len(vs))
	for i, v := range vs {
		clone[i] = vector.Clone(v)
	}
	return clone
}

func Scal(alpha float32, ys []blas32.Vector) {
	for _, y := range ys {
		blas32.Scal(alpha, y)
	}
}

// Max is the maximum over every element of every vector.
func Max(vs []blas32.Vector) float32 {
	m := math32.Inf(-1)
	for _, v := range vs {
		e := vector.Max(v)
		if math32.IsNaN(e) {
			return e
		}
		m = math32.Max(m, e)
	}
	return m
}

// SameN fails on the first vector whose N differs from vs[0].
func SameN(vs []blas32.Vector) error {
	if len(vs) == 0 {
		return nil
	}
	n := vs[0].N
	for i, v := range vs {
		if v.N != n {
			return fmt.Errorf("vectors.SameN: vs[%d].N = %d, want %d", i, v.N, n)
		}
	}
	return nil
}

func ToSlices(vs []blas32.Vector) [][]float32 {
	ys := make([][]float32, len(vs))
	for i, v := range vs {
		ys[i] = vector.ToSlice(v)
	}
	return ys
}
