package mempool

import (
	"fmt"
	"io"
	"sync/atomic"
)

// counters holds the pool's running statistics.
type counters struct {
	allocCalls atomic.Uint64 // allocation attempts, restarts included
	freeCalls  atomic.Uint64
	splits     atomic.Uint64 // blocks broken into quads
	recombines atomic.Uint64 // quads merged into their parent
	again      atomic.Uint64 // ErrAgain results
	noMem      atomic.Uint64 // ErrNoMem results
	inUse      atomic.Int64  // bytes handed out, block granularity
}

// LevelStats describes one level at the time of a Stats call.
type LevelStats struct {
	Level      int
	BlockSize  int
	Blocks     int
	FreeBlocks int  // linked free blocks
	Inline     bool // free bits kept in the inline word
}

// Stats is a point-in-time summary of a pool.
type Stats struct {
	Name        string
	Kind        Kind
	ArenaBytes  int
	BitmapWords int
	Levels      []LevelStats

	AllocCalls uint64
	FreeCalls  uint64
	Splits     uint64
	Recombines uint64
	Restarts   uint64 // ErrAgain results
	NoMem      uint64 // ErrNoMem results
	BytesInUse int64
}

// FreeBytes returns the bytes held by linked free blocks.
func (s Stats) FreeBytes() int64 {
	var total int64
	for _, lv := range s.Levels {
		total += int64(lv.FreeBlocks) * int64(lv.BlockSize)
	}
	return total
}

// Stats returns a snapshot of the pool's counters and free lists.
func (p *Pool) Stats() Stats {
	s := Stats{
		Name:        p.cfg.Name,
		Kind:        p.cfg.Kind,
		ArenaBytes:  p.lay.arenaLen,
		BitmapWords: p.lay.bitmapWords,
		Levels:      make([]LevelStats, len(p.lay.levels)),
		AllocCalls:  p.stats.allocCalls.Load(),
		FreeCalls:   p.stats.freeCalls.Load(),
		Splits:      p.stats.splits.Load(),
		Recombines:  p.stats.recombines.Load(),
		Restarts:    p.stats.again.Load(),
		NoMem:       p.stats.noMem.Load(),
		BytesInUse:  p.stats.inUse.Load(),
	}

	p.lockAll()
	defer p.unlockAll()
	for i, lv := range p.lay.levels {
		free := 0
		if !p.closed.Load() {
			free = p.levels[i].free.Len()
		}
		s.Levels[i] = LevelStats{
			Level:      i,
			BlockSize:  int(lv.size),
			Blocks:     lv.nblocks,
			FreeBlocks: free,
			Inline:     i <= p.lay.maxInlineLevel,
		}
	}
	return s
}

// PrintStats writes a human-readable summary of the pool to w.
func (p *Pool) PrintStats(w io.Writer) {
	s := p.Stats()
	fmt.Fprintf(w, "Pool %q (%s): arena %d bytes, %d bitmap words\n",
		s.Name, s.Kind, s.ArenaBytes, s.BitmapWords)
	for _, lv := range s.Levels {
		storage := "external"
		if lv.Inline {
			storage = "inline"
		}
		fmt.Fprintf(w, "  level %2d: %8d B x %8d blocks, %8d free (%s bitmap)\n",
			lv.Level, lv.BlockSize, lv.Blocks, lv.FreeBlocks, storage)
	}
	fmt.Fprintf(w, "  allocs=%d frees=%d splits=%d recombines=%d restarts=%d nomem=%d in_use=%d\n",
		s.AllocCalls, s.FreeCalls, s.Splits, s.Recombines, s.Restarts, s.NoMem, s.BytesInUse)
}
