package mempool

import (
	"errors"
	"sync/atomic"
)

// KernelPool is a pool with per-step locking. It may be shared by any number
// of goroutines; no call blocks for longer than one elementary step.
type KernelPool struct {
	*Pool
}

// NewKernel builds a kernel pool. cfg.Kind is forced to KindKernel.
func NewKernel(cfg Config, opts ...Option) (*KernelPool, error) {
	cfg.Kind = KindKernel
	p, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &KernelPool{Pool: p}, nil
}

// Block is an allocated block handle. The handle owns the block until Free.
type Block struct {
	Level uint32
	Index uint32
	Data  []byte // the whole block

	pool     *Pool
	released atomic.Bool
}

// Alloc allocates a block of at least size bytes, restarting the allocation
// when a concurrent caller drains the chosen free list. After
// Config.MaxRetries restarts it gives up with ErrNoMem.
func (k *KernelPool) Alloc(size int) (*Block, error) {
	for i, n := 0, k.cfg.retries(); i < n; i++ {
		level, index, data, err := k.AllocBlock(size)
		if errors.Is(err, ErrAgain) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &Block{Level: level, Index: index, Data: data, pool: k.Pool}, nil
	}
	k.debugf("allocation retries exhausted", "size", size, "retries", k.cfg.retries())
	return nil, ErrNoMem
}

// Free returns the block to its pool. A second Free of the same handle
// returns ErrReleased and leaves the pool untouched.
func (b *Block) Free() error {
	if b == nil || b.pool == nil {
		return ErrBadBlock
	}
	if !b.released.CompareAndSwap(false, true) {
		return ErrReleased
	}
	b.Data = nil
	return b.pool.FreeBlock(b.Level, b.Index)
}

// Size returns the block size in bytes, 0 after Free.
func (b *Block) Size() int { return len(b.Data) }
