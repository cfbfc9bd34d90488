package mempool

import (
	"fmt"
	"math"

	"github.com/joshuapare/quadpool/internal/buf"
	"github.com/joshuapare/quadpool/internal/format"
)

// inlineLimit is the block count below which a level keeps its free bits in
// one inline word.
const inlineLimit = 32

// levelInfo is the immutable geometry of one level.
type levelInfo struct {
	size    uint32 // block size in bytes
	nblocks int    // arenaLen / size
	inline  bool   // free bits live in the level's inline word
	wordOff int    // first bitmap word in the trailing region (external levels)
	words   int    // bitmap words claimed from the trailing region
}

// layout is the full arena geometry of a pool. It is computed once by
// computeLayout and never changes.
type layout struct {
	levels         []levelInfo
	arenaLen       int // NumMax * MaxBlockSize
	bitmapWords    int // size of the trailing bitmap region in words
	maxInlineLevel int // deepest inline level, -1 when none
}

// levelSizes returns the block size of every level: size[0] is
// align4(maxBlock) and each deeper level is align4(size[i-1]/4).
func levelSizes(maxBlock, nLevels int) []uint32 {
	if nLevels <= 0 {
		return nil
	}
	sizes := make([]uint32, nLevels)
	sizes[0] = format.Align4U32(uint32(maxBlock))
	for i := 1; i < nLevels; i++ {
		sizes[i] = format.Align4U32(sizes[i-1] / 4)
	}
	return sizes
}

// computeLayout validates cfg and derives the level table and bitmap
// placement. It is the only place the layout formula lives.
func computeLayout(cfg Config) (*layout, error) {
	switch {
	case cfg.MaxBlockSize < format.WordSize:
		return nil, fmt.Errorf("%w: max block size %d < %d", ErrBadConfig, cfg.MaxBlockSize, format.WordSize)
	case cfg.MaxBlockSize%format.WordSize != 0:
		return nil, fmt.Errorf("%w: max block size %d not a multiple of %d", ErrBadConfig, cfg.MaxBlockSize, format.WordSize)
	case cfg.NumMax < 1:
		return nil, fmt.Errorf("%w: n_max %d < 1", ErrBadConfig, cfg.NumMax)
	case cfg.NumLevels < 1 || cfg.NumLevels > MaxLevels:
		return nil, fmt.Errorf("%w: levels %d outside [1, %d]", ErrBadConfig, cfg.NumLevels, MaxLevels)
	case cfg.Kind != KindKernel && cfg.Kind != KindUser:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrBadConfig, cfg.Kind)
	}
	arenaLen, ok := buf.MulOverflowSafe(cfg.NumMax, cfg.MaxBlockSize)
	if !ok || uint64(arenaLen) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: arena %d x %d exceeds 4GB", ErrBadConfig, cfg.NumMax, cfg.MaxBlockSize)
	}

	sizes := levelSizes(cfg.MaxBlockSize, cfg.NumLevels)
	lay := &layout{
		levels:         make([]levelInfo, cfg.NumLevels),
		arenaLen:       arenaLen,
		maxInlineLevel: -1,
	}

	for i, sz := range sizes {
		if sz < format.WordSize {
			return nil, fmt.Errorf("%w: level %d block size %d < %d", ErrBadConfig, i, sz, format.WordSize)
		}
		// children must tile their parent exactly, otherwise quads overlap
		// neighbouring blocks
		if i > 0 && 4*sz != sizes[i-1] {
			return nil, fmt.Errorf("%w: level %d size %d does not quarter level %d size %d",
				ErrBadConfig, i, sz, i-1, sizes[i-1])
		}

		nblocks := lay.arenaLen / int(sz)
		if nblocks-1 > format.MaxHeaderIndex {
			return nil, fmt.Errorf("%w: level %d has %d blocks, header holds %d",
				ErrBadConfig, i, nblocks, format.MaxHeaderIndex+1)
		}

		lv := levelInfo{size: sz, nblocks: nblocks}
		if nblocks < inlineLimit {
			lv.inline = true
			lay.maxInlineLevel = i
		} else {
			lv.wordOff = lay.bitmapWords
			lv.words = format.WordsFor(nblocks)
			lay.bitmapWords += lv.words
		}
		lay.levels[i] = lv
	}

	return lay, nil
}

// regionLen is the arena plus its trailing bitmap region.
func (l *layout) regionLen() int {
	return l.arenaLen + l.bitmapWords*format.WordSize
}

// allocLevel returns the deepest level whose blocks hold size bytes,
// or -1 when even level 0 is too small.
func (l *layout) allocLevel(size int) int {
	lvl := -1
	for i := range l.levels {
		if int(l.levels[i].size) < size {
			break
		}
		lvl = i
	}
	return lvl
}
