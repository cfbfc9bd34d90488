package mempool

import "fmt"

// VerifyError describes the first invariant violation found by Verify.
type VerifyError struct {
	Level   int    // level of the offending block, -1 if N/A
	Index   int    // index of the offending block, -1 if N/A
	Message string // human-readable description
}

func (e *VerifyError) Error() string {
	if e.Level < 0 {
		return "mempool: verify: " + e.Message
	}
	return fmt.Sprintf("mempool: verify: level %d block %d: %s", e.Level, e.Index, e.Message)
}

// Verify checks the allocator invariants of every level:
//
//   - a block's free bit is set iff it is on its level's free list, except
//     for blocks past the arena bound, which are never linked;
//   - no block is both free and split, and no block at the deepest level
//     is split;
//   - below level 0, a free or split block has a split parent;
//   - below level 0, no quad is entirely free (it would have recombined);
//   - each free list holds exactly the linked free blocks of its level.
//
// Verify holds the pool's locks for the whole walk. It is meant for tests
// and diagnostics, not hot paths.
func (p *Pool) Verify() error {
	p.lockAll()
	defer p.unlockAll()
	if p.closed.Load() {
		return ErrClosed
	}

	last := len(p.lay.levels) - 1
	for l, lv := range p.lay.levels {
		st := &p.levels[l]
		linked := 0

		for i := 0; i < lv.nblocks; i++ {
			bn := uint32(i)
			free := st.bits.get(bn)
			split := st.split.get(bn)
			onList := st.free.Contains(int32(bn))
			fits := p.blockFits(l, bn)

			switch {
			case free && fits && !onList:
				return &VerifyError{l, i, "free bit set but not on free list"}
			case onList && !free:
				return &VerifyError{l, i, "on free list but free bit clear"}
			case onList && !fits:
				return &VerifyError{l, i, "past arena bound but linked"}
			case free && split:
				return &VerifyError{l, i, "block both free and split"}
			case split && l == last:
				return &VerifyError{l, i, "deepest-level block marked split"}
			}
			if onList {
				linked++
			}

			if l > 0 && (free || split) && !p.levels[l-1].split.get(bn/4) {
				return &VerifyError{l, i, "live child of a block that is not split"}
			}
			if l > 0 && bn == quadBase(bn) && st.bits.partner(bn) == 0xF {
				return &VerifyError{l, i, "quad entirely free but not recombined"}
			}
		}

		walked := 0
		var bad *VerifyError
		st.free.Each(func(i int32) bool {
			walked++
			switch {
			case walked > st.free.Len():
				bad = &VerifyError{l, -1, "free list links form a cycle"}
			case !st.bits.get(uint32(i)):
				bad = &VerifyError{l, int(i), "free list walk reached a block with a clear free bit"}
			}
			return bad == nil
		})
		if bad != nil {
			return bad
		}
		if walked != linked {
			return &VerifyError{l, -1, fmt.Sprintf("free list holds %d blocks, %d linked free bits", walked, linked)}
		}
	}
	return nil
}
