package mempool

import "sync"

// noLock satisfies sync.Locker without locking. It fills whichever of the
// step and call lock slots a pool kind does not use.
type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

// lockers returns the (step, call) lock pair for a pool kind.
//
// Kernel pools guard every elementary bit/list mutation with a short step
// window and take no call lock. User pools hold one call mutex across the
// whole operation, which makes step windows redundant.
func lockers(k Kind) (step, call sync.Locker) {
	if k == KindUser {
		return noLock{}, &sync.Mutex{}
	}
	return &sync.Mutex{}, noLock{}
}

// lockAll takes both locks in call-then-step order for whole-pool walks.
func (p *Pool) lockAll() {
	p.call.Lock()
	p.step.Lock()
}

func (p *Pool) unlockAll() {
	p.step.Unlock()
	p.call.Unlock()
}
