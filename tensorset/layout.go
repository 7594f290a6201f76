package tensorset

import (
	"slices"

	"github.com/sw965/tst/blas32/tensor/3d"
)

// ToPlanar returns elem in storage order: channel-planar for rank-3 shapes,
// a copy of elem otherwise.
func ToPlanar(elem []float32, shape Shape) ([]float32, error) {
	if shape.Rank() != 3 {
		return slices.Clone(elem), nil
	}
	g, err := tensor3d.FromHWC(shape[0], shape[1], shape[2], elem)
	if err != nil {
		return nil, err
	}
	return g.Data, nil
}

// FromPlanar inverts ToPlanar.
func FromPlanar(elem []float32, shape Shape) ([]float32, error) {
	if shape.Rank() != 3 {
		return slices.Clone(elem), nil
	}
	g, err := tensor3d.New(shape[2], shape[0], shape[1], elem)
	if err != nil {
		return nil, err
	}
	return g.HWC(), nil
}

func recordHeaderSize(name string) int64 {
	return 8 + int64(len(name)) + 3*4
}

// EncodedSize is the exact stream length Encode produces for tensors.
func EncodedSize(tensors []Tensor) int64 {
	n := int64(len(Magic)) + 4
	for _, t := range tensors {
		n += recordHeaderSize(t.Name)
		n += int64(t.Shape.Size()) * int64(len(t.Elements)) * floatSize
	}
	return n
}
