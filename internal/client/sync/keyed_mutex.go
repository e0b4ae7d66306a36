package sync

import gosync "sync"

// keyLock carries the number of holders and waiters so an entry can be
// dropped once nobody references it.
type keyLock struct {
	mu   gosync.Mutex
	refs int
}

// KeyedMutex serializes work per record key. The reconciliation engine and
// the inventory service share one instance so a replay step and a local edit
// of the same record never interleave their read-modify-write cycles.
// Entries are evicted on the last unlock, so the map stays proportional to
// the number of keys currently contended, not to every key ever touched.
type KeyedMutex struct {
	mu    gosync.Mutex
	locks map[string]*keyLock
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyLock)}
}

// Lock acquires the mutex for key and returns the matching unlock.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
