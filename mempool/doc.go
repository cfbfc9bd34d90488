// Package mempool provides fixed-arena quad-tree memory pools.
//
// # Overview
//
// A pool owns one contiguous arena of NumMax blocks of MaxBlockSize bytes.
// Blocks are organised in NumLevels size classes ("levels"): level 0 holds the
// largest blocks and every deeper level divides its parent into four equal
// children. Allocation picks the deepest level whose blocks still fit the
// request and breaks a larger free block down to it. Freeing a block marks it
// free and, when all four siblings of a quad are free, recombines them into
// their parent, repeating up the tree.
//
// Every level keeps a free bitmap and a doubly-linked free list. The two are
// kept in exact agreement; the verifier in verify.go checks this.
//
// # Pool Kinds
//
// The same algorithm core runs under two locking disciplines, selected by
// Config.Kind when the pool is built:
//
//   - KindKernel: each elementary step (a pop, a break of one level, one level
//     of free/recombine) runs in its own short critical section. Operations
//     as a whole are not atomic, so an allocation may find its chosen free
//     list drained by a concurrent caller and report ErrAgain. KernelPool
//     restarts such allocations automatically.
//   - KindUser: one mutex is held for the whole call. ErrAgain cannot occur.
//
// # Usage Example
//
// Kernel pools hand out Block handles:
//
//	kp, err := mempool.NewKernel(mempool.ConfigDefault)
//	if err != nil {
//	    return err
//	}
//	blk, err := kp.Alloc(200)
//	if err != nil {
//	    return err // mempool.ErrNoMem
//	}
//	copy(blk.Data, payload)
//	err = blk.Free()
//
// User pools hand out plain slices and record the owning block in an 8-byte
// header in front of the data, so Free needs no pool argument:
//
//	up, err := mempool.NewUser(mempool.ConfigSmall)
//	if err != nil {
//	    return err
//	}
//	buf := up.Alloc(100)
//	if buf == nil {
//	    // out of memory
//	}
//	mempool.Free(buf)
//
// # Memory Layout
//
// The arena is followed by the external bitmap region:
//
//	[ level-0 block 0 | block 1 | ... | block NumMax-1 ][ bitmap words ... ]
//
// Levels with fewer than 32 blocks keep their free bits in an inline word;
// larger levels claim ceil(blocks/32) little-endian words from the trailing
// region. The layout is computed once by computeLayout and reused for every
// address computation.
//
// # Limitations
//
// Double free and use after free are not detected: a free bit cannot tell
// "already free" from "never allocated". Block handles returned by KernelPool
// refuse a second Free on the same handle, which covers the common mistake.
package mempool
