package mempool

// blockOffset returns the arena offset of block index at a level whose
// blocks are levelSize bytes.
func blockOffset(levelSize, index uint32) uint32 {
	return index * levelSize
}

// blockIndex is the inverse of blockOffset.
func blockIndex(offset, levelSize uint32) uint32 {
	return offset / levelSize
}

// blockFits reports whether block index at level lies entirely inside the
// arena. Blocks past the bound are never linked into a free list.
// computeLayout only accepts exact quartering, under which every block fits;
// the check guards the linking paths should that rule ever be relaxed.
func (p *Pool) blockFits(level int, index uint32) bool {
	sz := uint64(p.lay.levels[level].size)
	return uint64(index)*sz+sz <= uint64(p.lay.arenaLen)
}

// validBlock reports whether (level, index) names a block of this pool.
func (p *Pool) validBlock(level, index uint32) bool {
	return int(level) < len(p.lay.levels) && int(index) < p.lay.levels[level].nblocks
}

// quadBase returns the first sibling of the quad containing index.
func quadBase(index uint32) uint32 {
	return index &^ 3
}
