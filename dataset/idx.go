package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/sw965/tst/blas32/vector"
	"github.com/sw965/tst/tensorset"
	"gonum.org/v1/gonum/blas/blas32"
)

const (
	idxUbyte = 0x08

	// MaxIDXElemSize bounds the bytes of a single image declared by an idx header.
	MaxIDXElemSize = 1 << 26

	// idxPrealloc caps how many samples are reserved up front from the header count.
	idxPrealloc = 1 << 12
	labelChunk  = 1 << 16
)

// openIDX transparently unwraps gzip and returns the dimension sizes of an
// unsigned-byte IDX stream.
func openIDX(r io.Reader, ndims ...int) (io.Reader, []int, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(2); err == nil && head[0] == 0x1f && head[1] == 0x8b {
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open gzip")
		}
		r = gr
	} else {
		r = br
	}

	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, nil, errors.Wrap(err, "read idx magic")
	}
	if magic[0] != 0 || magic[1] != 0 || magic[2] != idxUbyte {
		return nil, nil, errors.Errorf("not an unsigned byte idx stream: % x", magic)
	}
	n := int(magic[3])
	ok := false
	for _, want := range ndims {
		ok = ok || n == want
	}
	if !ok {
		return nil, nil, errors.Errorf("idx stream has %d dimensions, want one of %v", n, ndims)
	}

	header := make([]byte, 4*n)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, nil, errors.Wrap(err, "read idx dimensions")
	}
	dims := make([]int, n)
	size := uint64(1)
	for i := range dims {
		d := binary.BigEndian.Uint32(header[i*4:])
		if uint64(d) > math.MaxInt {
			return nil, nil, errors.Errorf("idx dimension %d is too large: %d", i, d)
		}
		if i > 0 {
			if d == 0 {
				return nil, nil, errors.Errorf("idx dimension %d is zero", i)
			}
			size *= uint64(d)
			if size > MaxIDXElemSize {
				return nil, nil, errors.Errorf("idx element size exceeds %d bytes", MaxIDXElemSize)
			}
		}
		dims[i] = int(d)
	}
	return r, dims, nil
}

// ReadIDXImages reads an idx3 (count, rows, cols) or idx4 (count, rows, cols,
// channels) image stream. Pixels are widened to float32 without scaling; the
// returned shape is (rows, cols, channels).
func ReadIDXImages(r io.Reader) ([]blas32.Vector, tensorset.Shape, error) {
	r, dims, err := openIDX(r, 3, 4)
	if err != nil {
		return nil, nil, err
	}
	shape := tensorset.Shape{dims[1], dims[2], 1}
	if len(dims) == 4 {
		shape[2] = dims[3]
	}

	count := dims[0]
	images := make([]blas32.Vector, 0, min(count, idxPrealloc))
	buf := make([]byte, shape.Size())
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, nil, errors.Wrapf(err, "read image %d of %d", i, count)
		}
		images = append(images, vector.FromSlice(buf))
	}
	return images, shape, nil
}

func ReadIDXLabels(r io.Reader) ([]int, error) {
	r, dims, err := openIDX(r, 1)
	if err != nil {
		return nil, err
	}

	count := dims[0]
	labels := make([]int, 0, min(count, labelChunk))
	buf := make([]byte, min(count, labelChunk))
	for remaining := count; remaining > 0; {
		b := buf[:min(remaining, labelChunk)]
		if _, err := io.ReadFull(r, b); err != nil {
			return nil, errors.Wrapf(err, "read %d labels", count)
		}
		for _, l := range b {
			labels = append(labels, int(l))
		}
		remaining -= len(b)
	}
	return labels, nil
}
