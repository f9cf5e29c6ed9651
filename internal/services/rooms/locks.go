package rooms

import "sync"

// roomLocks hands out one mutex per slug. Entries are ref-counted and
// dropped when the last holder unlocks, so idle rooms cost nothing.
type roomLocks struct {
	mu    sync.Mutex
	locks map[string]*roomLock
}

type roomLock struct {
	sync.Mutex
	refCnt int
}

func newRoomLocks() *roomLocks {
	return &roomLocks{locks: make(map[string]*roomLock)}
}

// lock blocks until slug is held and returns the matching unlock.
func (l *roomLocks) lock(slug string) func() {
	l.mu.Lock()
	e, ok := l.locks[slug]
	if !ok {
		e = &roomLock{}
		l.locks[slug] = e
	}
	e.refCnt++
	l.mu.Unlock()

	e.Lock()
	return func() {
		e.Unlock()

		l.mu.Lock()
		e.refCnt--
		if e.refCnt == 0 {
			delete(l.locks, slug)
		}
		l.mu.Unlock()
	}
}

func (l *roomLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
