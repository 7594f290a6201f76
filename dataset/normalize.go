package dataset

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/sw965/tst/blas32/vectors"
	"gonum.org/v1/gonum/blas/blas32"
)

func MaxValue(xs []blas32.Vector) float32 {
	return vectors.Max(xs)
}

// Normalize divides every element of xs in place by max.
func Normalize(xs []blas32.Vector, max float32) error {
	if max == 0 || math32.IsNaN(max) || math32.IsInf(max, 0) {
		return errors.Errorf("cannot normalize by %v", max)
	}
	vectors.Scal(1/max, xs)
	return nil
}
