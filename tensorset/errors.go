package tensorset

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagic  = errors.New("bad magic")
	ErrTruncated = errors.New("truncated stream")
)

// FormatError reports a malformed or truncated stream.
type FormatError struct {
	Offset int64
	Tensor string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("tensorset: format error at offset %d", e.Offset)
	if e.Tensor != "" {
		msg += fmt.Sprintf(" (tensor %q)", e.Tensor)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// EncodeError reports a tensor the format cannot represent.
type EncodeError struct {
	Tensor string
	Reason string
	Err    error
}

func (e *EncodeError) Error() string {
	msg := "tensorset: cannot encode"
	if e.Tensor != "" {
		msg += fmt.Sprintf(" tensor %q", e.Tensor)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
