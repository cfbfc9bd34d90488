package mempool

import "sync"

// registry maps the pool id stored in user block headers back to the pool.
// Ids start at 1 so a zeroed header never resolves.
var registry = struct {
	mu    sync.RWMutex
	pools map[uint32]*UserPool
	next  uint32
}{pools: make(map[uint32]*UserPool)}

func register(u *UserPool) uint32 {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.next++
	id := registry.next
	registry.pools[id] = u
	return id
}

func unregister(id uint32) {
	registry.mu.Lock()
	delete(registry.pools, id)
	registry.mu.Unlock()
}
