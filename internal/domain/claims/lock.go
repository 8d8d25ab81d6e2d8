package claims

import "sync"

// claimLocks hands out one mutex per claim id. Entries are dropped once no
// caller holds or waits on them.
type claimLocks struct {
	mu    sync.Mutex
	locks map[string]*claimLock
}

type claimLock struct {
	sync.Mutex
	refs int
}

func newClaimLocks() *claimLocks {
	return &claimLocks{locks: make(map[string]*claimLock)}
}

// lock blocks until id is free and returns the matching unlock.
func (l *claimLocks) lock(id string) func() {
	l.mu.Lock()
	cl, ok := l.locks[id]
	if !ok {
		cl = &claimLock{}
		l.locks[id] = cl
	}
	cl.refs++
	l.mu.Unlock()

	cl.Lock()
	return func() {
		cl.Unlock()
		l.mu.Lock()
		cl.refs--
		if cl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
