package format

import (
	"encoding/binary"
	"errors"

	"github.com/joshuapare/quadpool/internal/buf"
)

// Block header layout written in front of every user-pool allocation:
//
//	0x00  uint32 LE  level<<28 | index
//	0x04  uint32 LE  pool registry id
const (
	HeaderSize = 8

	// MaxHeaderLevel is the deepest level representable in the header.
	MaxHeaderLevel = 0xF

	// MaxHeaderIndex is the largest block index representable in the header.
	MaxHeaderIndex = 1<<28 - 1

	headerLevelShift = 28
)

// ErrShortHeader is returned when fewer than HeaderSize bytes are available.
var ErrShortHeader = errors.New("format: short block header")

// Header identifies the block that owns a user allocation.
type Header struct {
	Level uint32
	Index uint32
	Pool  uint32
}

// PutHeader encodes h into the first HeaderSize bytes of b.
// Level and Index are masked to their field widths.
func PutHeader(b []byte, h Header) error {
	if len(b) < HeaderSize {
		return ErrShortHeader
	}
	word := (h.Level&MaxHeaderLevel)<<headerLevelShift | (h.Index & MaxHeaderIndex)
	binary.LittleEndian.PutUint32(b[0:4], word)
	binary.LittleEndian.PutUint32(b[4:8], h.Pool)
	return nil
}

// ReadHeader decodes a Header from the first HeaderSize bytes of b.
func ReadHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, ErrShortHeader
	}
	word := binary.LittleEndian.Uint32(b[0:4])
	return Header{
		Level: word >> headerLevelShift,
		Index: word & MaxHeaderIndex,
		Pool:  binary.LittleEndian.Uint32(b[4:8]),
	}, nil
}

// ReadU32 reads a little-endian uint32 at off. Returns 0 when out of range.
func ReadU32(b []byte, off int) uint32 {
	w, ok := buf.Slice(b, off, WordSize)
	if !ok {
		return 0
	}
	return buf.U32LE(w)
}

// PutU32 writes a little-endian uint32 at off. Out-of-range writes are dropped.
func PutU32(b []byte, off int, v uint32) {
	if w, ok := buf.Slice(b, off, WordSize); ok {
		buf.PutU32LE(w, v)
	}
}
