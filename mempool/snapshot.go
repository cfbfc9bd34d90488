package mempool

// BlockState is the state of one block as derived from the free and split
// bitmaps.
type BlockState uint8

const (
	// StateAbsent: the block does not currently exist because its parent is
	// free, allocated or itself absent.
	StateAbsent BlockState = iota
	StateFree
	StateAllocated
	StateSplit
)

// String returns a one-word name for s.
func (s BlockState) String() string {
	switch s {
	case StateFree:
		return "free"
	case StateAllocated:
		return "allocated"
	case StateSplit:
		return "split"
	default:
		return "absent"
	}
}

// Snapshot returns the state of every block, indexed [level][index].
func (p *Pool) Snapshot() [][]BlockState {
	p.lockAll()
	defer p.unlockAll()
	if p.closed.Load() {
		return nil
	}

	out := make([][]BlockState, len(p.lay.levels))
	for l, lv := range p.lay.levels {
		st := &p.levels[l]
		row := make([]BlockState, lv.nblocks)
		for i := range row {
			bn := uint32(i)
			switch {
			case l > 0 && out[l-1][bn/4] != StateSplit:
				row[i] = StateAbsent
			case st.bits.get(bn):
				row[i] = StateFree
			case st.split.get(bn):
				row[i] = StateSplit
			default:
				row[i] = StateAllocated
			}
		}
		out[l] = row
	}
	return out
}
