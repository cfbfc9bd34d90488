package mempool

import (
	"math/bits"

	"github.com/joshuapare/quadpool/internal/format"
)

// levelBitmap holds one bit per block of a level: 1 = free and reachable.
// Small levels use the inline word; large ones address their words in the
// trailing region of the arena.
type levelBitmap struct {
	inline uint32
	ext    []byte // nil for inline levels
}

func (b *levelBitmap) word(index uint32) uint32 {
	if b.ext == nil {
		return b.inline
	}
	return format.ReadU32(b.ext, int(index/32)*format.WordSize)
}

func (b *levelBitmap) putWord(index, w uint32) {
	if b.ext == nil {
		b.inline = w
		return
	}
	format.PutU32(b.ext, int(index/32)*format.WordSize, w)
}

func (b *levelBitmap) get(index uint32) bool {
	return b.word(index)>>(index&31)&1 == 1
}

func (b *levelBitmap) set(index uint32) {
	b.putWord(index, b.word(index)|1<<(index&31))
}

func (b *levelBitmap) clear(index uint32) {
	b.putWord(index, b.word(index)&^(1<<(index&31)))
}

// partner returns the 4 free bits of the quad containing index, bit i
// belonging to sibling quadBase(index)+i. A quad never straddles a word.
func (b *levelBitmap) partner(index uint32) uint32 {
	return b.word(index) >> (quadBase(index) & 31) & 0xF
}

// words returns the number of 32-bit words backing the bitmap.
func (b *levelBitmap) words() int {
	if b.ext == nil {
		return 1
	}
	return len(b.ext) / format.WordSize
}

// count returns the number of set bits.
func (b *levelBitmap) count() int {
	if b.ext == nil {
		return bits.OnesCount32(b.inline)
	}
	total := 0
	for i := 0; i < len(b.ext); i += format.WordSize {
		total += bits.OnesCount32(format.ReadU32(b.ext, i))
	}
	return total
}

// splitSet marks broken blocks of one level. It lives in Go memory, outside
// the arena layout.
type splitSet []uint64

func newSplitSet(n int) splitSet {
	return make(splitSet, (n+63)/64)
}

func (s splitSet) get(index uint32) bool { return s[index/64]>>(index%64)&1 == 1 }
func (s splitSet) set(index uint32)      { s[index/64] |= 1 << (index % 64) }
func (s splitSet) clear(index uint32)    { s[index/64] &^= 1 << (index % 64) }

// Pool-level accessors. Callers hold the step lock.

func (p *Pool) freeBit(level int, index uint32) bool {
	return p.levels[level].bits.get(index)
}

func (p *Pool) setFreeBit(level int, index uint32) {
	p.levels[level].bits.set(index)
}

func (p *Pool) clearFreeBit(level int, index uint32) {
	p.levels[level].bits.clear(index)
}

func (p *Pool) partnerBits(level int, index uint32) uint32 {
	return p.levels[level].bits.partner(index)
}
