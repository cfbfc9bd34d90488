package mempool

import "errors"

var (
	// ErrNoMem indicates that no free block large enough exists in the pool.
	ErrNoMem = errors.New("mempool: no block large enough")

	// ErrAgain indicates that the chosen free list was drained by a concurrent
	// caller between the level scan and the pop. The whole allocation must be
	// restarted. Only kernel pools report it.
	ErrAgain = errors.New("mempool: free list raced empty, retry")

	// ErrBadConfig indicates an invalid pool configuration.
	ErrBadConfig = errors.New("mempool: bad config")

	// ErrBadBlock indicates a (level, index) pair outside the pool's layout.
	ErrBadBlock = errors.New("mempool: bad block id")

	// ErrBadPointer indicates a slice that was not returned by a live user pool.
	ErrBadPointer = errors.New("mempool: pointer not owned by a pool")

	// ErrReleased indicates a second Free of the same Block handle.
	ErrReleased = errors.New("mempool: block already released")

	// ErrClosed indicates an operation on a closed pool.
	ErrClosed = errors.New("mempool: pool closed")
)
