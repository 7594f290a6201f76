package tensorset_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw965/tst/tensorset"
)

func fill(n, size int, v float32) [][]float32 {
	elems := make([][]float32, n)
	for i := range elems {
		elems[i] = make([]float32, size)
		for j := range elems[i] {
			elems[i][j] = v
		}
	}
	return elems
}

func referenceSet() []tensorset.Tensor {
	return []tensorset.Tensor{
		{Name: "train_inputs", Shape: tensorset.Shape{2, 2, 3}, Elements: fill(3, 12, 1)},
		{Name: "train_labels", Shape: tensorset.Shape{4}, Elements: fill(3, 4, 2)},
		{Name: "test_inputs", Shape: tensorset.Shape{2, 2, 3}, Elements: fill(2, 12, 3)},
		{Name: "test_labels", Shape: tensorset.Shape{4}, Elements: fill(2, 4, 4)},
	}
}

func requireFormatError(t *testing.T, err error) *tensorset.FormatError {
	t.Helper()
	var fe *tensorset.FormatError
	require.True(t, errors.As(err, &fe), "got %v", err)
	return fe
}

func TestDecodeNameAndDims(t *testing.T) {
	b, err := tensorset.Marshal([]tensorset.Tensor{{
		Name:     "train_inputs",
		Shape:    tensorset.Shape{4},
		Elements: [][]float32{{1, 2, 3, 4}},
	}})
	require.NoError(t, err)
	assert.EqualValues(t, 12, binary.LittleEndian.Uint64(b[14:22]))

	records, err := tensorset.Unmarshal(b)
	require.NoError(t, err)
	want := []tensorset.Record{{
		Name: "train_inputs",
		Dims: tensorset.Dims{ElemSize: 4, Reserved: 1, Count: 1},
		Data: []float32{1, 2, 3, 4},
	}}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeKeepsPlanarOrder(t *testing.T) {
	b, err := tensorset.Marshal([]tensorset.Tensor{imageTensor()})
	require.NoError(t, err)

	records, err := tensorset.Unmarshal(b)
	require.NoError(t, err)
	require.Len(t, records, 1)

	planes, err := records[0].Planes(0, 3)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 4, 7, 10}, {2, 5, 8, 11}, {3, 6, 9, 12}}, planes)
}

func TestRoundTrip(t *testing.T) {
	src := []tensorset.Tensor{
		imageTensor(),
		{Name: "vec", Shape: tensorset.Shape{3}, Elements: [][]float32{{0.1, -2, 3e9}, {float32(math.Inf(1)), 0, -0.5}}},
		{Name: "mat", Shape: tensorset.Shape{2, 2}, Elements: [][]float32{{1, 2, 3, 4}}},
		{Name: "none", Shape: tensorset.Shape{5, 5, 1}},
	}
	b, err := tensorset.Marshal(src)
	require.NoError(t, err)

	records, err := tensorset.Unmarshal(b)
	require.NoError(t, err)
	require.Len(t, records, len(src))

	for i, r := range records {
		got, err := r.Tensor(src[i].Shape)
		require.NoError(t, err)
		assert.Equal(t, src[i].Name, got.Name)
		assert.Equal(t, src[i].Dims(), r.Dims)
		if diff := cmp.Diff(src[i].Elements, got.Elements, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("%s elements mismatch (-want +got):\n%s", r.Name, diff)
		}
	}
}

func TestDecodeFourTensorsNoBleed(t *testing.T) {
	src := referenceSet()
	b, err := tensorset.Marshal(src)
	require.NoError(t, err)

	records, err := tensorset.Unmarshal(b)
	require.NoError(t, err)
	require.Len(t, records, 4)

	for i, r := range records {
		assert.Equal(t, src[i].Name, r.Name)
		assert.Equal(t, src[i].Dims(), r.Dims)
		want := float32(i + 1)
		for j, x := range r.Data {
			require.Equal(t, want, x, "%s[%d]", r.Name, j)
		}
	}

	r, ok := tensorset.Lookup(records, "test_inputs")
	require.True(t, ok)
	assert.EqualValues(t, 2, r.Dims.Count)
	_, ok = tensorset.Lookup(records, "validation")
	assert.False(t, ok)
}

func TestDecodeBadMagic(t *testing.T) {
	b, err := tensorset.Marshal(referenceSet())
	require.NoError(t, err)
	copy(b, "TS_tensorz")

	records, err := tensorset.Unmarshal(b)
	assert.Nil(t, records)
	fe := requireFormatError(t, err)
	assert.ErrorIs(t, err, tensorset.ErrBadMagic)
	assert.Zero(t, fe.Offset)
}

func TestDecodeTruncated(t *testing.T) {
	b, err := tensorset.Marshal(referenceSet())
	require.NoError(t, err)

	for n := 0; n < len(b); n++ {
		records, err := tensorset.Unmarshal(b[:n])
		require.Nil(t, records, "prefix %d", n)
		requireFormatError(t, err)
		require.ErrorIs(t, err, tensorset.ErrTruncated, "prefix %d", n)
	}
}

func TestDecodeHugeDeclaredPayload(t *testing.T) {
	b, err := tensorset.Marshal([]tensorset.Tensor{{Name: "a", Shape: tensorset.Shape{1}, Elements: [][]float32{{1}}}})
	require.NoError(t, err)

	count := len(tensorset.Magic) + 4 + 8 + 1 + 8
	binary.LittleEndian.PutUint32(b[count:], math.MaxUint32)

	_, err = tensorset.Unmarshal(b)
	requireFormatError(t, err)
	assert.ErrorIs(t, err, tensorset.ErrTruncated)
}

func TestDecodeReservedDim(t *testing.T) {
	b, err := tensorset.Marshal([]tensorset.Tensor{{Name: "a", Shape: tensorset.Shape{1}, Elements: [][]float32{{1}}}})
	require.NoError(t, err)

	reserved := len(tensorset.Magic) + 4 + 8 + 1 + 4
	binary.LittleEndian.PutUint32(b[reserved:], 2)

	_, err = tensorset.Unmarshal(b)
	fe := requireFormatError(t, err)
	assert.Equal(t, "a", fe.Tensor)
	assert.EqualValues(t, reserved, fe.Offset)
}

func TestDecodeZeroElemSize(t *testing.T) {
	for _, count := range []uint32{0, 3, math.MaxUint32} {
		b, err := tensorset.Marshal([]tensorset.Tensor{{Name: "a", Shape: tensorset.Shape{1}, Elements: [][]float32{{1}}}})
		require.NoError(t, err)

		dims := len(tensorset.Magic) + 4 + 8 + 1
		binary.LittleEndian.PutUint32(b[dims:], 0)
		binary.LittleEndian.PutUint32(b[dims+8:], count)

		records, err := tensorset.Unmarshal(b)
		fe := requireFormatError(t, err)
		assert.Nil(t, records)
		assert.Equal(t, "a", fe.Tensor)
		assert.EqualValues(t, dims, fe.Offset)
	}
}

func TestDecodeNameChecks(t *testing.T) {
	header := func(nameLen uint64, name string) []byte {
		var b []byte
		b = append(b, tensorset.Magic...)
		b = binary.LittleEndian.AppendUint32(b, 1)
		b = binary.LittleEndian.AppendUint64(b, nameLen)
		b = append(b, name...)
		return binary.LittleEndian.AppendUint32(append(b, make([]byte, 4)...), 1)
	}

	t.Run("empty", func(t *testing.T) {
		_, err := tensorset.Unmarshal(header(0, ""))
		requireFormatError(t, err)
	})
	t.Run("too long", func(t *testing.T) {
		dec := tensorset.NewDecoder(bytes.NewReader(header(9, "123456789")))
		dec.MaxNameLen = 8
		_, err := dec.Decode()
		requireFormatError(t, err)
		assert.NotErrorIs(t, err, tensorset.ErrTruncated)
	})
	t.Run("invalid utf8", func(t *testing.T) {
		_, err := tensorset.Unmarshal(header(2, "\xff\xfe"))
		requireFormatError(t, err)
		assert.NotErrorIs(t, err, tensorset.ErrTruncated)
	})
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	b, err := tensorset.Marshal([]tensorset.Tensor{imageTensor()})
	require.NoError(t, err)

	records, err := tensorset.Unmarshal(append(b, 0xde, 0xad))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRecordTensorShapeMismatch(t *testing.T) {
	b, err := tensorset.Marshal([]tensorset.Tensor{imageTensor()})
	require.NoError(t, err)
	records, err := tensorset.Unmarshal(b)
	require.NoError(t, err)

	_, err = records[0].Tensor(tensorset.Shape{3, 3, 1})
	assert.Error(t, err)
	_, err = records[0].Tensor(tensorset.Shape{})
	assert.Error(t, err)

	flat, err := records[0].Tensor(tensorset.Shape{12})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 4, 7, 10, 2, 5, 8, 11, 3, 6, 9, 12}, flat.Elements[0])
}

func TestRecordPlanesErrors(t *testing.T) {
	r := tensorset.Record{Name: "a", Dims: tensorset.Dims{ElemSize: 6, Reserved: 1, Count: 1}, Data: make([]float32, 6)}

	_, err := r.Planes(0, 4)
	assert.Error(t, err)
	_, err = r.Planes(1, 2)
	assert.Error(t, err)
	planes, err := r.Planes(0, 2)
	require.NoError(t, err)
	assert.Len(t, planes, 2)
	assert.Len(t, planes[0], 3)
}
