package tensor3d

import "fmt"

// General is a dense 3-D tensor. Axis names follow the planar (C, H, W)
// convention; the transposes treat the axes positionally, so an interleaved
// (H, W, C) buffer can be viewed as a General with Channels=H, Rows=W, Cols=C.
type General struct {
	Channels      int
	Rows          int
	Cols          int
	ChannelStride int
	RowStride     int
	Data          []float32
}

func NewZeros(chs, rows, cols int) General {
	rowStride := cols
	chStride := rows * rowStride
	n := chs * chStride
	return General{
		Channels:      chs,
		Rows:          rows,
		Cols:          cols,
		ChannelStride: chStride,
		RowStride:     rowStride,
		Data:          make([]float32, n),
	}
}

// New wraps data without copying.
func New(chs, rows, cols int, data []float32) (General, error) {
	if chs <= 0 || rows <= 0 || cols <= 0 {
		return General{}, fmt.Errorf("tensor3d.New: non-positive shape (%d, %d, %d)", chs, rows, cols)
	}
	if n := chs * rows * cols; len(data) != n {
		return General{}, fmt.Errorf("tensor3d.New: len(data) = %d, want %d", len(data), n)
	}
	return General{
		Channels:      chs,
		Rows:          rows,
		Cols:          cols,
		ChannelStride: rows * cols,
		RowStride:     cols,
		Data:          data,
	}, nil
}

// FromHWC converts an interleaved (height, width, channels) buffer into a
// planar General with Channels=c, Rows=h, Cols=w.
func FromHWC(h, w, c int, data []float32) (General, error) {
	hwc, err := New(h, w, c, data)
	if err != nil {
		return General{}, err
	}
	return hwc.Transpose201(), nil
}

// HWC returns the interleaved (Rows, Cols, Channels) layout of g.
func (g General) HWC() []float32 {
	return g.Transpose120().Data
}

// Plane is a view of channel ch in row-major order.
func (g General) Plane(ch int) []float32 {
	start := ch * g.ChannelStride
	return g.Data[start : start+g.Rows*g.Cols]
}

// Transpose120 maps axes (0, 1, 2) to (1, 2, 0): planar (C, H, W) to interleaved (H, W, C).
func (g General) Transpose120() General {
	dst := NewZeros(g.Rows, g.Cols, g.Channels)
	dstChStride := dst.ChannelStride
	dstRowStride := dst.RowStride
	for row := 0; row < g.Rows; row++ {
		srcRowBase := row * g.RowStride
		dstBase := row * dstChStride
		for col := 0; col < g.Cols; col++ {
			dstOff := dstBase + col*dstRowStride
			srcOff := srcRowBase + col
			for ch := 0; ch < g.Channels; ch++ {
				dst.Data[dstOff+ch] = g.Data[srcOff+ch*g.ChannelStride]
			}
		}
	}
	return dst
}

// Transpose201 maps axes (0, 1, 2) to (2, 0, 1): interleaved (H, W, C) to planar (C, H, W).
func (g General) Transpose201() General {
	dst := NewZeros(g.Cols, g.Channels, g.Rows)
	dstChStride := dst.ChannelStride
	dstRowStride := dst.RowStride
	for col := 0; col < g.Cols; col++ {
		dstBase := col * dstChStride
		for ch := 0; ch < g.Channels; ch++ {
			srcBase := ch*g.ChannelStride + col
			dstOff := dstBase + ch*dstRowStride
			for row := 0; row < g.Rows; row++ {
				dst.Data[dstOff+row] = g.Data[srcBase+row*g.RowStride]
			}
		}
	}
	return dst
}
