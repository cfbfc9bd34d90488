package mempool

import "fmt"

// FreeBlock returns block (level, index) to the pool, recombining free quads
// into their parents. The block must have been returned by AllocBlock and
// not freed since; a double free is not detected and corrupts the pool.
func (p *Pool) FreeBlock(level, index uint32) error {
	p.call.Lock()
	defer p.call.Unlock()
	if p.closed.Load() {
		return ErrClosed
	}
	if !p.validBlock(level, index) {
		return fmt.Errorf("%w: level %d block %d", ErrBadBlock, level, index)
	}

	p.freeBlock(int(level), index)
	return nil
}

// freeBlock runs the free/recombine loop. Each level is one step window;
// the loop runs at most once per level.
func (p *Pool) freeBlock(level int, bn uint32) {
	p.stats.freeCalls.Add(1)
	p.stats.inUse.Add(-int64(p.lay.levels[level].size))

	for {
		st := &p.levels[level]

		p.step.Lock()
		p.setFreeBit(level, bn)

		if level > 0 && p.partnerBits(level, bn) == 0xF {
			base := quadBase(bn)
			for i := uint32(0); i < 4; i++ {
				b := base + i
				p.clearFreeBit(level, b)
				// bn itself was never linked
				if b != bn && p.blockFits(level, b) {
					st.free.Remove(int32(b))
				}
			}
			p.levels[level-1].split.clear(bn / 4)
			p.step.Unlock()

			p.stats.recombines.Add(1)
			p.debugf("recombine", "level", level, "quad", base)

			level--
			bn /= 4
			continue
		}

		if p.blockFits(level, bn) {
			st.free.Append(int32(bn))
		}
		p.step.Unlock()
		return
	}
}
