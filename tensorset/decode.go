package tensorset

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"unicode/utf8"
)

// payloadChunk caps how many floats are read per step, so a corrupt size
// field on a short stream fails on EOF instead of on allocation.
const payloadChunk = 1 << 16

type Decoder struct {
	r          io.Reader
	off        int64
	buf        []byte
	MaxNameLen int
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:          bufio.NewReader(r),
		MaxNameLen: DefaultMaxNameLen,
	}
}

// Decode reads the full set. Bytes after the last declared record are not read.
func (d *Decoder) Decode() ([]Record, error) {
	magic, err := d.read(len(Magic), "", "magic")
	if err != nil {
		return nil, err
	}
	if string(magic) != Magic {
		return nil, &FormatError{Offset: 0, Reason: fmt.Sprintf("got %q", magic), Err: ErrBadMagic}
	}

	b, err := d.read(4, "", "tensor count")
	if err != nil {
		return nil, err
	}
	count := binary.LittleEndian.Uint32(b)

	records := make([]Record, 0, min(count, 64))
	for i := uint32(0); i < count; i++ {
		r, err := d.decodeRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (d *Decoder) decodeRecord() (Record, error) {
	start := d.off
	b, err := d.read(8, "", "name length")
	if err != nil {
		return Record{}, err
	}
	nameLen := binary.LittleEndian.Uint64(b)
	if nameLen == 0 {
		return Record{}, &FormatError{Offset: start, Reason: "empty tensor name"}
	}
	if nameLen > uint64(d.MaxNameLen) {
		return Record{}, &FormatError{Offset: start, Reason: fmt.Sprintf("name length %d exceeds %d", nameLen, d.MaxNameLen)}
	}
	b, err = d.read(int(nameLen), "", "name")
	if err != nil {
		return Record{}, err
	}
	if !utf8.Valid(b) {
		return Record{}, &FormatError{Offset: start + 8, Reason: "name is not valid UTF-8"}
	}
	name := string(b)

	dimsOff := d.off
	b, err = d.read(12, name, "dims")
	if err != nil {
		return Record{}, err
	}
	dims := Dims{
		ElemSize: binary.LittleEndian.Uint32(b[0:4]),
		Reserved: binary.LittleEndian.Uint32(b[4:8]),
		Count:    binary.LittleEndian.Uint32(b[8:12]),
	}
	if dims.Reserved != reservedDim {
		return Record{}, &FormatError{Offset: dimsOff + 4, Tensor: name, Reason: fmt.Sprintf("reserved dimension is %d, want %d", dims.Reserved, reservedDim)}
	}
	if dims.ElemSize == 0 {
		return Record{}, &FormatError{Offset: dimsOff, Tensor: name, Reason: "element size is 0"}
	}

	data, err := d.readFloats(dims.Len(), name)
	if err != nil {
		return Record{}, err
	}
	return Record{Name: name, Dims: dims, Data: data}, nil
}

func (d *Decoder) readFloats(n uint64, tensor string) ([]float32, error) {
	if n > math.MaxInt/floatSize {
		return nil, &FormatError{Offset: d.off, Tensor: tensor, Reason: fmt.Sprintf("payload of %d floats does not fit in memory", n)}
	}
	data := make([]float32, 0, min(n, payloadChunk))
	for remaining := n; remaining > 0; {
		step := min(remaining, payloadChunk)
		b, err := d.read(int(step)*floatSize, tensor, "data")
		if err != nil {
			return nil, err
		}
		for i := 0; i < len(b); i += floatSize {
			data = append(data, math.Float32frombits(binary.LittleEndian.Uint32(b[i:])))
		}
		remaining -= step
	}
	return data, nil
}

// read returns a view of the internal buffer valid until the next call.
func (d *Decoder) read(n int, tensor, field string) ([]byte, error) {
	if cap(d.buf) < n {
		d.buf = make([]byte, n)
	}
	b := d.buf[:n]
	got, err := io.ReadFull(d.r, b)
	if err != nil {
		off := d.off + int64(got)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &FormatError{Offset: off, Tensor: tensor, Reason: fmt.Sprintf("reading %s: need %d bytes, got %d", field, n, got), Err: ErrTruncated}
		}
		return nil, fmt.Errorf("tensorset: read %s at offset %d: %w", field, off, err)
	}
	d.off += int64(n)
	return b, nil
}

func Decode(r io.Reader) ([]Record, error) {
	return NewDecoder(r).Decode()
}

func Unmarshal(data []byte) ([]Record, error) {
	return Decode(bytes.NewReader(data))
}

func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tensorset: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
