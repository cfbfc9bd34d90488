// Package arena provides the backing memory for pool arenas.
//
// Two backings are available: ordinary Go heap memory, and an anonymous
// private mapping obtained with mmap on unix systems. Mapped memory lives
// outside the Go heap, is never moved or scanned by the collector, and can
// optionally be locked into RAM.
package arena

import (
	"errors"
	"fmt"
)

// Backing selects where arena memory comes from.
type Backing uint8

const (
	// Heap allocates the arena with make([]byte, n).
	Heap Backing = iota
	// Mmap maps anonymous private memory. Falls back to Heap on platforms
	// without mmap.
	Mmap
)

// String returns the flag spelling of b.
func (b Backing) String() string {
	switch b {
	case Heap:
		return "heap"
	case Mmap:
		return "mmap"
	default:
		return fmt.Sprintf("backing(%d)", uint8(b))
	}
}

// ParseBacking parses "heap" or "mmap".
func ParseBacking(s string) (Backing, error) {
	switch s {
	case "heap", "":
		return Heap, nil
	case "mmap":
		return Mmap, nil
	default:
		return Heap, fmt.Errorf("arena: unknown backing %q", s)
	}
}

// ErrSize is returned for non-positive region sizes.
var ErrSize = errors.New("arena: size must be positive")

// Region is a contiguous block of memory owned by one pool.
type Region struct {
	data    []byte
	backing Backing
	release func() error
}

// New returns a zeroed region of exactly size bytes. When lock is set and the
// backing supports it, the pages are locked into RAM.
func New(size int, backing Backing, lock bool) (*Region, error) {
	if size <= 0 {
		return nil, ErrSize
	}
	if backing == Mmap {
		return mapRegion(size, lock)
	}
	return heapRegion(size), nil
}

func heapRegion(size int) *Region {
	return &Region{
		data:    make([]byte, size),
		backing: Heap,
		release: func() error { return nil },
	}
}

// Bytes returns the region's memory. The slice is invalid after Close.
func (r *Region) Bytes() []byte { return r.data }

// Len returns the region size in bytes.
func (r *Region) Len() int { return len(r.data) }

// Backing reports the backing actually in use.
func (r *Region) Backing() Backing { return r.backing }

// Close releases the region. Calling Close twice is a no-op.
func (r *Region) Close() error {
	if r.release == nil {
		return nil
	}
	err := r.release()
	r.release = nil
	r.data = nil
	return err
}
