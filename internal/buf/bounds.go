package buf

import (
	"errors"
	"math"
)

var (
	// ErrOverflow is returned when a span computation overflows int.
	ErrOverflow = errors.New("buf: size overflow")
	// ErrBounds is returned when a span ends past its region.
	ErrBounds = errors.New("buf: span out of bounds")
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two non-negative ints, returning ok = false on
// overflow or a negative operand. Used for count * elementSize.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// CheckSpan validates that count elements of elemSize bytes starting at
// offset fit in a region of regionLen bytes, and returns the end offset.
//
//	end, err := buf.CheckSpan(len(trailer), wordOff*4, words, 4)
//	if err != nil {
//	    return fmt.Errorf("bitmap: %w", err)
//	}
func CheckSpan(regionLen, offset, count, elemSize int) (int, error) {
	if offset < 0 || count < 0 || elemSize < 0 {
		return 0, ErrBounds
	}
	total, ok := MulOverflowSafe(count, elemSize)
	if !ok {
		return 0, ErrOverflow
	}
	end, ok := AddOverflowSafe(offset, total)
	if !ok {
		return 0, ErrOverflow
	}
	if end > regionLen {
		return 0, ErrBounds
	}
	return end, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b). The
// result's capacity is clipped to its length.
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end:end], true
}
