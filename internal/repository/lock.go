package repository

import "sync"

// KeyedMutex hands out one mutex per store name. Every read-modify-write of
// a store's record or ledger runs under that store's mutex — "load JSON,
// compute, save JSON" is not atomic on its own, and two concurrent
// placements against the same store would otherwise silently lose a write.
// Different store names map to different mutexes, so unrelated stores never
// contend. Mutexes are created lazily and never discarded; the key space is
// the set of store names, which is small and effectively fixed.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex returns an empty lock table. One instance must be shared by
// every repository that mutates per-store state, otherwise a store record
// edit could interleave with a ledger append for the same store.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns the matching unlock. Callers
// must not acquire a second key while holding one — multi-store operations
// take their locks strictly one at a time to rule out deadlock.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
