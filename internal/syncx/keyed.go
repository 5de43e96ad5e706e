// Package syncx holds synchronization primitives missing from the standard
// library.
package syncx

import "sync"

// KeyedMutex serializes callers that share a key while letting different keys
// proceed in parallel. Entries are dropped once no goroutine holds or waits
// for them, so the map only grows with the number of keys in use.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*refLock)}
}

// Lock blocks until key is free and returns the matching unlock function.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
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

// PairKey returns the same key for (a, b) and (b, a).
func PairKey(prefix, a, b string) string {
	if a > b {
		a, b = b, a
	}
	return prefix + ":" + a + ":" + b
}

func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
