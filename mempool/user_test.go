package mempool

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/quadpool/internal/format"
)

func TestUserPool_AllocWritesHeader(t *testing.T) {
	up := newUser(t, ConfigSmall)
	require.Equal(t, KindUser, up.Config().Kind)

	b := up.Alloc(100)
	require.NotNil(t, b)
	require.Len(t, b, 100)
	require.Equal(t, 256-format.HeaderSize, cap(b))
	require.Equal(t, 256-format.HeaderSize, Usable(b))

	h, err := format.ReadHeader(up.Arena()[:format.HeaderSize])
	require.NoError(t, err)
	require.Equal(t, format.Header{Level: 0, Index: 0, Pool: up.ID()}, h)

	Free(b)
	require.Len(t, freeList(up.Pool, 0), ConfigSmall.NumMax)
	requireVerified(t, up.Pool)
}

func TestUserPool_HeaderCountsTowardsLevel(t *testing.T) {
	up := newUser(t, ConfigSmall)

	// 8 data bytes + 8 header bytes fit a 16-byte block exactly
	b := up.Alloc(8)
	require.Equal(t, 8, Usable(b))

	// one more byte needs the 64-byte level
	c := up.Alloc(9)
	require.Equal(t, 64-format.HeaderSize, Usable(c))

	up.Free(b)
	up.Free(c)
	requireVerified(t, up.Pool)
}

func TestUserPool_AllocEdgeCases(t *testing.T) {
	up := newUser(t, ConfigTiny)

	require.Nil(t, up.Alloc(0))
	require.Nil(t, up.Alloc(-1))
	require.Nil(t, up.Alloc(64-format.HeaderSize+1))
	require.NotNil(t, up.Alloc(64-format.HeaderSize))
}

func TestUserPool_Exhaustion(t *testing.T) {
	up := newUser(t, ConfigTiny)

	var live [][]byte
	for {
		b := up.Alloc(1)
		if b == nil {
			break
		}
		live = append(live, b)
	}
	// every 16-byte block holds one header plus one byte
	require.Len(t, live, up.LevelBlocks(1))
	require.Equal(t, uint64(1), up.Stats().NoMem)

	for _, b := range live {
		require.NoError(t, FreeErr(b))
	}
	require.Len(t, freeList(up.Pool, 0), ConfigTiny.NumMax)
	requireVerified(t, up.Pool)
}

func TestUserPool_Calloc(t *testing.T) {
	up := newUser(t, Config{Name: "calloc", MaxBlockSize: 64, NumMax: 1, NumLevels: 1})

	b := up.Alloc(40)
	for i := range b {
		b[i] = 0xFF
	}
	Free(b)

	z := up.Calloc(4, 10)
	require.Len(t, z, 40)
	require.Equal(t, make([]byte, 40), z)

	require.Nil(t, up.Calloc(math.MaxInt, 2))
	require.Nil(t, up.Calloc(0, 4))
	require.Nil(t, up.Calloc(1<<20, 1<<20))
}

func TestUserPool_Realloc(t *testing.T) {
	up := newUser(t, ConfigSmall)

	b := up.Alloc(10)
	copy(b, "0123456789")
	usable := Usable(b)
	require.Equal(t, 64-format.HeaderSize, usable)

	t.Run("grows in place", func(t *testing.T) {
		r := up.Realloc(b, usable)
		require.Len(t, r, usable)
		require.Same(t, &b[0], &r[0])
		b = r[:10]
	})

	t.Run("moves", func(t *testing.T) {
		r := up.Realloc(b, 100)
		require.Len(t, r, 100)
		require.NotSame(t, &b[0], &r[0])
		require.Equal(t, "0123456789", string(r[:10]))
		b = r
	})

	t.Run("too large keeps original", func(t *testing.T) {
		require.Nil(t, up.Realloc(b, 1000))
		require.Equal(t, "0123456789", string(b[:10]))
	})

	t.Run("nil and zero", func(t *testing.T) {
		n := up.Realloc(nil, 5)
		require.Len(t, n, 5)
		require.Nil(t, up.Realloc(n, 0))
		require.Nil(t, up.Realloc(b, 0))
	})

	require.Len(t, freeList(up.Pool, 0), ConfigSmall.NumMax)
	requireVerified(t, up.Pool)
}

func TestFree_ForeignSlices(t *testing.T) {
	up := newUser(t, ConfigSmall)
	b := up.Alloc(32)
	b[0] = 0

	require.NoError(t, FreeErr(nil))
	Free(nil)

	require.ErrorIs(t, FreeErr(make([]byte, 16)), ErrBadPointer)
	require.ErrorIs(t, FreeErr(b[1:]), ErrBadPointer)
	require.ErrorIs(t, FreeErr(up.Arena()[:4]), ErrBadPointer)
	require.Zero(t, Usable(make([]byte, 16)))

	// a zeroed header in another block names no pool
	require.ErrorIs(t, FreeErr(up.Arena()[64+format.HeaderSize:]), ErrBadPointer)

	Free(make([]byte, 8))
	requireVerified(t, up.Pool)

	require.NoError(t, FreeErr(b))
	require.Len(t, freeList(up.Pool, 0), ConfigSmall.NumMax)
}

func TestFree_RoutesToOwningPool(t *testing.T) {
	a := newUser(t, ConfigTiny)
	b := newUser(t, ConfigTiny)
	require.NotEqual(t, a.ID(), b.ID())

	x := a.Alloc(4)
	y := b.Alloc(4)

	Free(y)
	require.Len(t, freeList(b.Pool, 0), ConfigTiny.NumMax)
	require.Len(t, freeList(a.Pool, 0), ConfigTiny.NumMax-1)

	// freeing through the wrong pool still reaches the owner
	b.Free(x)
	require.Len(t, freeList(a.Pool, 0), ConfigTiny.NumMax)
}

func TestUserPool_Close(t *testing.T) {
	up, err := NewUser(ConfigTiny)
	require.NoError(t, err)

	b := up.Alloc(4)
	id := up.ID()
	require.NoError(t, up.Close())
	require.NoError(t, up.Close())

	require.Nil(t, registered(id))
	require.Nil(t, up.Alloc(4))
	require.ErrorIs(t, FreeErr(b), ErrBadPointer)
	require.ErrorIs(t, up.Verify(), ErrClosed)
}
