// Package format defines the byte-level encodings shared by pool code: the
// 4-byte word granule, bitmap word helpers and the user block header.
package format

// Alignment utilities for pool layouts.
// Every block size in a pool is a multiple of the 4-byte word.

const (
	// WordSize is the allocation granule of every pool level.
	WordSize = 4

	// WordMask is WordSize-1, used for rounding.
	WordMask = WordSize - 1
)

// Align4 returns n aligned up to the next 4-byte boundary.
//
// Example:
//
//	Align4(1) = 4
//	Align4(4) = 4
//	Align4(5) = 8
func Align4(n int) int {
	return (n + WordMask) &^ WordMask
}

// Align4U32 is the uint32 form of Align4, used by the level table.
func Align4U32(n uint32) uint32 {
	return (n + WordMask) &^ WordMask
}

// WordsFor returns the number of 32-bit words needed to hold n bits.
func WordsFor(n int) int {
	return (n + 31) / 32
}
