package iccraw

import (
	"errors"
	"fmt"
)

// ErrTruncated reports that the input ended before a required header field,
// directory record or tag payload could be fully read.
var ErrTruncated = errors.New("truncated input")

// TruncatedError records where in the profile a read came up short.
// It wraps ErrTruncated, so errors.Is(err, ErrTruncated) holds.
type TruncatedError struct {
	Section string // part of the profile being read, e.g. "header"
	Offset  int64  // byte offset of the start of the failed read
	Need    int    // bytes required
	Got     int    // bytes actually read
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("%s at offset 0x%X: need %d bytes, got %d: %v", e.Section, e.Offset, e.Need, e.Got, ErrTruncated)
}

func (e *TruncatedError) Unwrap() error {
	return ErrTruncated
}
