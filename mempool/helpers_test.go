package mempool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// freeList returns the free list of level in list order.
func freeList(p *Pool, level int) []uint32 {
	out := []uint32{}
	p.levels[level].free.Each(func(i int32) bool {
		out = append(out, uint32(i))
		return true
	})
	return out
}

// registered returns the user pool registered under id, or nil.
func registered(id uint32) *UserPool {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.pools[id]
}

func newKernel(t testing.TB, cfg Config) *KernelPool {
	t.Helper()
	kp, err := NewKernel(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { kp.Close() })
	return kp
}

func newUser(t testing.TB, cfg Config) *UserPool {
	t.Helper()
	up, err := NewUser(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { up.Close() })
	return up
}

func requireVerified(t testing.TB, p *Pool) {
	t.Helper()
	require.NoError(t, p.Verify())
}

// permutations returns every ordering of 0..n-1.
func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, perm := range permutations(n - 1) {
		for pos := 0; pos <= len(perm); pos++ {
			p := make([]int, 0, n)
			p = append(p, perm[:pos]...)
			p = append(p, n-1)
			p = append(p, perm[pos:]...)
			out = append(out, p)
		}
	}
	return out
}
