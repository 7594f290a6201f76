// Package tensorset reads and writes the "TS_tensors" container: an ordered
// list of named float32 tensors with a flattened shape directory.
//
// Stream layout, all integers little-endian unsigned:
//
//	magic       [10]byte  "TS_tensors"
//	count       uint32
//	count × {
//	    nameLen  uint64
//	    name     [nameLen]byte
//	    dims     [3]uint32  element size, 1, element count
//	    data     [dims[0]*dims[2]]float32
//	}
//
// Elements of rank-3 tensors are stored channel-planar. The element shape is
// not persisted, so readers must know it out-of-band to rebuild (H, W, C).
package tensorset

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/sw965/tst/blas32/tensor/3d"
	"github.com/sw965/tst/blas32/vector"
	"github.com/sw965/tst/blas32/vectors"
	"gonum.org/v1/gonum/blas/blas32"
)

const (
	Magic = "TS_tensors"

	// DefaultMaxNameLen bounds tensor names on both sides of the codec.
	DefaultMaxNameLen = 4096

	reservedDim = 1
	floatSize   = 4
)

// Shape is the shape of a single element: (n), (rows, cols) or (height, width, channels).
type Shape []int

func (s Shape) Rank() int {
	return len(s)
}

func (s Shape) Size() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

func (s Shape) validate() error {
	if len(s) == 0 || len(s) > 3 {
		return fmt.Errorf("element rank %d not in [1, 3]", len(s))
	}
	n := uint64(1)
	for i, d := range s {
		if d <= 0 {
			return fmt.Errorf("dimension %d of %v is not positive", i, s)
		}
		n *= uint64(d)
		if n > math.MaxUint32 {
			return fmt.Errorf("element size of %v exceeds uint32", s)
		}
	}
	return nil
}

// Tensor is an encoder input. Every element is the row-major scalar vector of
// one sample; for rank-3 shapes that is the interleaved (H, W, C) order.
type Tensor struct {
	Name     string
	Shape    Shape
	Elements [][]float32
}

// NewTensor widens elems to float32.
func NewTensor[T vector.Number](name string, shape Shape, elems [][]T) Tensor {
	ys := make([][]float32, len(elems))
	for i, e := range elems {
		ys[i] = vector.FromSlice(e).Data
	}
	return Tensor{Name: name, Shape: shape, Elements: ys}
}

func NewTensorFromVectors(name string, shape Shape, vecs []blas32.Vector) Tensor {
	return Tensor{Name: name, Shape: shape, Elements: vectors.ToSlices(vecs)}
}

// Dims is only meaningful for a tensor that passed encoder validation.
func (t Tensor) Dims() Dims {
	return Dims{
		ElemSize: uint32(t.Shape.Size()),
		Reserved: reservedDim,
		Count:    uint32(len(t.Elements)),
	}
}

func (t Tensor) validate(maxNameLen int) error {
	if t.Name == "" {
		return &EncodeError{Reason: "empty tensor name"}
	}
	if len(t.Name) > maxNameLen {
		return &EncodeError{Tensor: t.Name, Reason: fmt.Sprintf("name length %d exceeds %d", len(t.Name), maxNameLen)}
	}
	if !utf8.ValidString(t.Name) {
		return &EncodeError{Tensor: t.Name, Reason: "name is not valid UTF-8"}
	}
	if err := t.Shape.validate(); err != nil {
		return &EncodeError{Tensor: t.Name, Reason: err.Error()}
	}
	if uint64(len(t.Elements)) > math.MaxUint32 {
		return &EncodeError{Tensor: t.Name, Reason: fmt.Sprintf("element count %d exceeds uint32", len(t.Elements))}
	}
	size := t.Shape.Size()
	for i, e := range t.Elements {
		if len(e) != size {
			return &EncodeError{
				Tensor: t.Name,
				Reason: fmt.Sprintf("element %d has %d scalars, shape %v needs %d", i, len(e), t.Shape, size),
			}
		}
	}
	return nil
}

// Dims is the persisted shape triple.
type Dims struct {
	ElemSize uint32
	Reserved uint32
	Count    uint32
}

// Len is the number of float32 values in the payload.
func (d Dims) Len() uint64 {
	return uint64(d.ElemSize) * uint64(d.Count)
}

// Record is one decoded directory entry together with its payload.
type Record struct {
	Name string
	Dims Dims
	Data []float32
}

func (r Record) Element(i int) []float32 {
	n := int(r.Dims.ElemSize)
	return r.Data[i*n : (i+1)*n]
}

func (r Record) Elements() [][]float32 {
	ys := make([][]float32, r.Dims.Count)
	for i := range ys {
		ys[i] = r.Element(i)
	}
	return ys
}

// Planes slices element i into channels chunks of ElemSize/channels scalars.
func (r Record) Planes(i, channels int) ([][]float32, error) {
	if i < 0 || i >= int(r.Dims.Count) {
		return nil, fmt.Errorf("tensorset: element %d out of range [0, %d)", i, r.Dims.Count)
	}
	if channels <= 0 || int(r.Dims.ElemSize)%channels != 0 {
		return nil, fmt.Errorf("tensorset: element size %d is not divisible into %d channels", r.Dims.ElemSize, channels)
	}
	g, err := tensor3d.New(channels, 1, int(r.Dims.ElemSize)/channels, r.Element(i))
	if err != nil {
		return nil, fmt.Errorf("tensorset: %s: %w", r.Name, err)
	}
	planes := make([][]float32, channels)
	for c := range planes {
		planes[c] = g.Plane(c)
	}
	return planes, nil
}

// Tensor rebuilds the encoder input for a caller-supplied element shape.
func (r Record) Tensor(shape Shape) (Tensor, error) {
	if err := shape.validate(); err != nil {
		return Tensor{}, fmt.Errorf("tensorset: %s: %w", r.Name, err)
	}
	if uint64(shape.Size()) != uint64(r.Dims.ElemSize) {
		return Tensor{}, fmt.Errorf("tensorset: %s: shape %v has %d scalars, record has %d", r.Name, shape, shape.Size(), r.Dims.ElemSize)
	}
	elems := make([][]float32, r.Dims.Count)
	for i := range elems {
		e, err := FromPlanar(r.Element(i), shape)
		if err != nil {
			return Tensor{}, fmt.Errorf("tensorset: %s: element %d: %w", r.Name, i, err)
		}
		elems[i] = e
	}
	return Tensor{Name: r.Name, Shape: shape, Elements: elems}, nil
}

// Lookup returns the first record with the given name.
func Lookup(records []Record, name string) (Record, bool) {
	for _, r := range records {
		if r.Name == name {
			return r, true
		}
	}
	return Record{}, false
}
