package tensorset

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

type Encoder struct {
	w          *bufio.Writer
	scratch    []byte
	MaxNameLen int
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:          bufio.NewWriter(w),
		MaxNameLen: DefaultMaxNameLen,
	}
}

// Encode writes the whole set. Every tensor is validated before the first
// byte is written; a write error leaves the sink holding a partial stream.
func (e *Encoder) Encode(tensors []Tensor) error {
	if err := e.validate(tensors); err != nil {
		return err
	}

	e.scratch = append(e.scratch[:0], Magic...)
	e.scratch = binary.LittleEndian.AppendUint32(e.scratch, uint32(len(tensors)))
	if _, err := e.w.Write(e.scratch); err != nil {
		return fmt.Errorf("tensorset: write header: %w", err)
	}

	for _, t := range tensors {
		if err := e.writeTensor(t); err != nil {
			return fmt.Errorf("tensorset: write %s: %w", t.Name, err)
		}
	}
	if err := e.w.Flush(); err != nil {
		return fmt.Errorf("tensorset: flush: %w", err)
	}
	return nil
}

func (e *Encoder) validate(tensors []Tensor) error {
	if uint64(len(tensors)) > math.MaxUint32 {
		return &EncodeError{Reason: fmt.Sprintf("tensor count %d exceeds uint32", len(tensors))}
	}
	seen := make(map[string]struct{}, len(tensors))
	for _, t := range tensors {
		if err := t.validate(e.MaxNameLen); err != nil {
			return err
		}
		if _, ok := seen[t.Name]; ok {
			return &EncodeError{Tensor: t.Name, Reason: "duplicate tensor name"}
		}
		seen[t.Name] = struct{}{}
	}
	return nil
}

func (e *Encoder) writeTensor(t Tensor) error {
	dims := t.Dims()
	e.scratch = binary.LittleEndian.AppendUint64(e.scratch[:0], uint64(len(t.Name)))
	e.scratch = append(e.scratch, t.Name...)
	e.scratch = binary.LittleEndian.AppendUint32(e.scratch, dims.ElemSize)
	e.scratch = binary.LittleEndian.AppendUint32(e.scratch, dims.Reserved)
	e.scratch = binary.LittleEndian.AppendUint32(e.scratch, dims.Count)
	if _, err := e.w.Write(e.scratch); err != nil {
		return err
	}

	for i, elem := range t.Elements {
		planar, err := ToPlanar(elem, t.Shape)
		if err != nil {
			return &EncodeError{Tensor: t.Name, Reason: fmt.Sprintf("element %d", i), Err: err}
		}
		if err := e.writeFloats(planar); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) writeFloats(xs []float32) error {
	e.scratch = e.scratch[:0]
	for _, x := range xs {
		e.scratch = binary.LittleEndian.AppendUint32(e.scratch, math.Float32bits(x))
	}
	_, err := e.w.Write(e.scratch)
	return err
}

func Encode(w io.Writer, tensors []Tensor) error {
	return NewEncoder(w).Encode(tensors)
}

func Marshal(tensors []Tensor) ([]byte, error) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	// EncodedSize trusts Shape, so size the buffer only once it matches the data.
	if err := enc.validate(tensors); err != nil {
		return nil, err
	}
	if n := EncodedSize(tensors); n > 0 && n <= math.MaxInt32 {
		buf.Grow(int(n))
	}
	if err := enc.Encode(tensors); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile removes the file again if encoding fails.
func WriteFile(path string, tensors []Tensor) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tensorset: %w", err)
	}
	if err := Encode(f, tensors); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("tensorset: %w", err)
	}
	return nil
}
