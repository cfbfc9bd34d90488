package mempool

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/joshuapare/quadpool/internal/arena"
	"github.com/joshuapare/quadpool/internal/buf"
	"github.com/joshuapare/quadpool/internal/dlist"
	"github.com/joshuapare/quadpool/internal/format"
	"github.com/joshuapare/quadpool/internal/logger"
)

// levelState is the mutable state of one level.
type levelState struct {
	free  *dlist.List // free block indices, in lockstep with bits
	bits  levelBitmap
	split splitSet
}

// Pool is the shared allocator core. It owns its arena, one free list and
// one free bitmap per level, and the layout they were built from.
//
// Most callers want KernelPool or UserPool; Pool exposes the raw block
// operations both are built on.
type Pool struct {
	cfg    Config
	lay    *layout
	region *arena.Region
	buf    []byte // arena bytes [0, arenaLen)

	levels []levelState

	// step guards elementary mutations, call guards whole operations.
	// Exactly one of them is a real lock; see lockers.
	step sync.Locker
	call sync.Locker

	stats  counters
	closed atomic.Bool
	log    *slog.Logger

	// Test hook: called between the level scan and the pop (nil in production)
	beforePop func(level int)
}

// Option configures a Pool at construction.
type Option func(*Pool)

// WithLogger sets the logger used for pool diagnostics. The default is the
// process-wide logger.L at the time of each call.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) { p.log = l }
}

// New lays out a pool for cfg and marks every level-0 block free.
func New(cfg Config, opts ...Option) (*Pool, error) {
	lay, err := computeLayout(cfg)
	if err != nil {
		return nil, err
	}

	region, err := arena.New(lay.regionLen(), cfg.Backing, cfg.LockPages)
	if err != nil {
		return nil, fmt.Errorf("mempool: arena for %q: %w", cfg.Name, err)
	}

	p := &Pool{
		cfg:    cfg,
		lay:    lay,
		region: region,
		buf:    region.Bytes()[:lay.arenaLen:lay.arenaLen],
		levels: make([]levelState, len(lay.levels)),
	}
	p.step, p.call = lockers(cfg.Kind)
	for _, opt := range opts {
		opt(p)
	}

	if err := p.init(); err != nil {
		region.Close()
		return nil, err
	}

	p.logger().Debug("pool initialized",
		"pool", cfg.Name,
		"kind", cfg.Kind.String(),
		"arena", lay.arenaLen,
		"levels", len(lay.levels),
		"bitmap_words", lay.bitmapWords,
		"max_inline_level", lay.maxInlineLevel,
		"backing", region.Backing().String(),
	)
	return p, nil
}

// init binds every level to its bitmap storage and free list, then seeds
// level 0 as entirely free.
func (p *Pool) init() error {
	trailer := p.region.Bytes()[p.lay.arenaLen:]

	for i, lv := range p.lay.levels {
		st := &p.levels[i]
		st.free = dlist.New(lv.nblocks)
		st.split = newSplitSet(lv.nblocks)
		if lv.inline {
			continue
		}
		words, err := bitmapWords(trailer, i, lv)
		if err != nil {
			return err
		}
		st.bits.ext = words
	}

	for i := 0; i < p.cfg.NumMax; i++ {
		p.levels[0].free.Append(int32(i))
		p.setFreeBit(0, uint32(i))
	}
	return nil
}

// bitmapWords returns the trailer bytes backing an external level's bitmap.
func bitmapWords(trailer []byte, level int, lv levelInfo) ([]byte, error) {
	off := lv.wordOff * format.WordSize
	end, err := buf.CheckSpan(len(trailer), off, lv.words, format.WordSize)
	if err != nil {
		return nil, fmt.Errorf("mempool: level %d bitmap words [%d, %d) in %d-byte trailer: %w",
			level, lv.wordOff, lv.wordOff+lv.words, len(trailer), err)
	}
	return trailer[off:end:end], nil
}

// Config returns the configuration the pool was built with.
func (p *Pool) Config() Config { return p.cfg }

// NumLevels returns the number of levels.
func (p *Pool) NumLevels() int { return len(p.lay.levels) }

// LevelSize returns the block size of level, or 0 when out of range.
func (p *Pool) LevelSize(level int) int {
	if level < 0 || level >= len(p.lay.levels) {
		return 0
	}
	return int(p.lay.levels[level].size)
}

// LevelBlocks returns the block count of level, or 0 when out of range.
func (p *Pool) LevelBlocks(level int) int {
	if level < 0 || level >= len(p.lay.levels) {
		return 0
	}
	return p.lay.levels[level].nblocks
}

// MaxInlineLevel returns the deepest level whose bitmap is inline, or -1.
func (p *Pool) MaxInlineLevel() int { return p.lay.maxInlineLevel }

// BitmapWords returns the size of the trailing bitmap region in words.
func (p *Pool) BitmapWords() int { return p.lay.bitmapWords }

// Arena returns the pool's arena bytes (without the bitmap region).
func (p *Pool) Arena() []byte { return p.buf }

// Close releases the arena. Close must not race with other operations on the
// pool; after it returns every operation fails with ErrClosed.
func (p *Pool) Close() error {
	p.lockAll()
	defer p.unlockAll()
	if p.closed.Swap(true) {
		return nil
	}
	p.buf = nil
	return p.region.Close()
}

func (p *Pool) logger() *slog.Logger {
	if p.log != nil {
		return p.log
	}
	return logger.L
}
