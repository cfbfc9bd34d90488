package mempool

// AllocBlock allocates a block of at least size bytes and returns its level,
// index and memory. The returned slice covers the whole block.
//
// Errors:
//   - ErrNoMem: size exceeds the level-0 block size, or no fitting level has
//     a free block.
//   - ErrAgain: the chosen free list was drained concurrently (kernel pools
//     only). The caller restarts the whole allocation.
//   - ErrClosed: the pool was closed.
func (p *Pool) AllocBlock(size int) (level, index uint32, data []byte, err error) {
	p.call.Lock()
	defer p.call.Unlock()
	if p.closed.Load() {
		return 0, 0, nil, ErrClosed
	}

	l, idx, err := p.allocBlock(size)
	if err != nil {
		return 0, 0, nil, err
	}
	return uint32(l), idx, p.blockBytes(l, idx), nil
}

// allocBlock runs the allocation algorithm. Callers hold the call lock.
func (p *Pool) allocBlock(size int) (int, uint32, error) {
	p.stats.allocCalls.Add(1)
	if size < 1 {
		size = 1
	}

	// Walk down the levels: allocL is the deepest level that still fits,
	// freeL the deepest level at or above it with a free block.
	allocL, freeL := -1, -1
	for i := range p.lay.levels {
		if int(p.lay.levels[i].size) < size {
			break
		}
		allocL = i
		if !p.levelEmpty(i) {
			freeL = i
		}
	}

	if allocL < 0 || freeL < 0 {
		p.stats.noMem.Add(1)
		return 0, 0, ErrNoMem
	}

	if p.beforePop != nil {
		p.beforePop(freeL)
	}

	bn, ok := p.popFree(freeL)
	if !ok {
		p.stats.again.Add(1)
		p.debugf("free list raced empty", "level", freeL, "size", size)
		return 0, 0, ErrAgain
	}

	for l := freeL; l < allocL; l++ {
		bn = p.breakBlock(l, bn)
	}

	p.stats.inUse.Add(int64(p.lay.levels[allocL].size))
	return allocL, bn, nil
}

// levelEmpty reports whether level has no linked free block.
func (p *Pool) levelEmpty(level int) bool {
	p.step.Lock()
	empty := p.levels[level].free.Empty()
	p.step.Unlock()
	return empty
}

// popFree unlinks the first free block of level and clears its free bit.
func (p *Pool) popFree(level int) (uint32, bool) {
	p.step.Lock()
	defer p.step.Unlock()

	i, ok := p.levels[level].free.PopHead()
	if !ok {
		return 0, false
	}
	bn := uint32(i)
	p.clearFreeBit(level, bn)
	return bn, true
}

// breakBlock splits block bn of level into its four children at level+1,
// frees children 1-3 and returns the index of child 0.
func (p *Pool) breakBlock(level int, bn uint32) uint32 {
	child := 4 * bn

	p.step.Lock()
	p.levels[level].split.set(bn)
	next := &p.levels[level+1]
	for i := uint32(1); i < 4; i++ {
		lbn := child + i
		p.setFreeBit(level+1, lbn)
		if p.blockFits(level+1, lbn) {
			next.free.Append(int32(lbn))
		}
	}
	p.step.Unlock()

	p.stats.splits.Add(1)
	p.debugf("split", "level", level, "block", bn)
	return child
}

// blockBytes returns the memory of block index at level.
func (p *Pool) blockBytes(level int, index uint32) []byte {
	sz := p.lay.levels[level].size
	off := blockOffset(sz, index)
	return p.buf[off : off+sz : off+sz]
}
