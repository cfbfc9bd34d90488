package mempool

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/joshuapare/quadpool/internal/buf"
	"github.com/joshuapare/quadpool/internal/format"
	"github.com/joshuapare/quadpool/internal/logger"
)

// UserPool is a mutex-guarded pool handing out plain byte slices. Each
// allocation is preceded by an 8-byte header naming its block and pool, so
// Free needs only the slice.
type UserPool struct {
	*Pool
	id   uint32
	base uintptr // arena start, fixed for the pool's lifetime
}

// NewUser builds a user pool and registers it for Free lookups.
// cfg.Kind is forced to KindUser.
func NewUser(cfg Config, opts ...Option) (*UserPool, error) {
	cfg.Kind = KindUser
	p, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	u := &UserPool{Pool: p, base: uintptr(unsafe.Pointer(unsafe.SliceData(p.buf)))}
	u.id = register(u)
	return u, nil
}

// ID returns the registry id written into block headers.
func (u *UserPool) ID() uint32 { return u.id }

// Alloc returns size bytes from the pool, or nil when the pool cannot
// satisfy the request or size <= 0. The slice's capacity extends to the end
// of the underlying block.
func (u *UserPool) Alloc(size int) []byte {
	if size <= 0 || size > math.MaxInt32-format.HeaderSize {
		return nil
	}

	u.call.Lock()
	defer u.call.Unlock()
	if u.closed.Load() {
		return nil
	}

	need := size + format.HeaderSize
	for i, n := 0, u.cfg.retries(); i < n; i++ {
		level, index, err := u.allocBlock(need)
		if errors.Is(err, ErrAgain) {
			continue
		}
		if err != nil {
			u.debugf("user alloc failed", "size", size, "err", err)
			return nil
		}

		block := u.blockBytes(level, index)
		// need >= HeaderSize and the block holds need bytes, so PutHeader cannot fail.
		_ = format.PutHeader(block, format.Header{Level: uint32(level), Index: index, Pool: u.id})
		return block[format.HeaderSize:need:len(block)]
	}
	return nil
}

// Calloc returns n*size zeroed bytes, or nil on overflow or exhaustion.
func (u *UserPool) Calloc(n, size int) []byte {
	if n <= 0 || size <= 0 {
		return nil
	}
	total, ok := buf.MulOverflowSafe(n, size)
	if !ok || total > math.MaxInt32 {
		return nil
	}
	b := u.Alloc(total)
	clear(b)
	return b
}

// Realloc resizes b. It returns b resliced when its block already holds
// size bytes; otherwise it allocates from u, copies and frees b. On failure
// it returns nil and b stays valid. Realloc(nil, n) is Alloc(n) and
// Realloc(b, 0) frees b.
func (u *UserPool) Realloc(b []byte, size int) []byte {
	if b == nil {
		return u.Alloc(size)
	}
	if size <= 0 {
		Free(b)
		return nil
	}
	if cap(b) >= size && Usable(b) >= size {
		return b[:size]
	}

	nb := u.Alloc(size)
	if nb == nil {
		return nil
	}
	copy(nb, b)
	Free(b)
	return nb
}

// Free returns b to the pool that allocated it. It is equivalent to the
// package-level Free.
func (u *UserPool) Free(b []byte) {
	Free(b)
}

// Close unregisters the pool and releases its arena.
func (u *UserPool) Close() error {
	unregister(u.id)
	return u.Pool.Close()
}

// Free returns b, which must have been returned by a user pool's Alloc,
// Calloc or Realloc, to its pool. Free(nil) is a no-op. Slices that do not
// belong to a live pool are logged and ignored.
func Free(b []byte) {
	if err := FreeErr(b); err != nil {
		logger.Warn("ignoring free of foreign slice", "err", err)
	}
}

// FreeErr is Free reporting ErrBadPointer or ErrClosed instead of logging.
func FreeErr(b []byte) error {
	if b == nil {
		return nil
	}
	u, off := owner(b)
	if u == nil {
		return ErrBadPointer
	}

	u.call.Lock()
	defer u.call.Unlock()
	h, err := u.header(off)
	if err != nil {
		return err
	}
	u.freeBlock(int(h.Level), h.Index)
	return nil
}

// Usable returns the bytes available behind b without reallocating, or 0
// when b does not belong to a live pool.
func Usable(b []byte) int {
	if b == nil {
		return 0
	}
	u, off := owner(b)
	if u == nil {
		return 0
	}

	u.call.Lock()
	defer u.call.Unlock()
	h, err := u.header(off)
	if err != nil {
		return 0
	}
	return int(u.lay.levels[h.Level].size) - format.HeaderSize
}

// owner finds the registered pool whose arena contains the start of b and
// returns b's offset in that arena.
func owner(b []byte) (*UserPool, uint32) {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))

	registry.mu.RLock()
	defer registry.mu.RUnlock()
	for _, u := range registry.pools {
		if addr >= u.base+format.HeaderSize && addr < u.base+uintptr(u.lay.arenaLen) {
			return u, uint32(addr - u.base)
		}
	}
	return nil, 0
}

// header decodes the header in front of arena offset off and checks that
// off is exactly the data start of the block it names. Callers hold the
// call lock.
func (u *UserPool) header(off uint32) (format.Header, error) {
	if u.closed.Load() {
		return format.Header{}, ErrClosed
	}
	h, err := format.ReadHeader(u.buf[off-format.HeaderSize : off])
	if err != nil {
		return format.Header{}, fmt.Errorf("%w: %w", ErrBadPointer, err)
	}
	if h.Pool != u.id {
		return format.Header{}, fmt.Errorf("%w: header names pool %d, arena belongs to %d", ErrBadPointer, h.Pool, u.id)
	}
	if !u.validBlock(h.Level, h.Index) {
		return format.Header{}, fmt.Errorf("%w: header names level %d block %d", ErrBadPointer, h.Level, h.Index)
	}
	want := blockOffset(u.lay.levels[h.Level].size, h.Index) + format.HeaderSize
	if off != want {
		return format.Header{}, fmt.Errorf("%w: offset %#x, header block data at %#x", ErrBadPointer, off, want)
	}
	return h, nil
}
