package service

import (
	"slices"
	"sync"
)

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// keyedMutex serializes scheduling decisions per resource. Holding the keys
// for a booking's theatre and doctor across the conflict check and the write
// closes the window where two requests could both see a free slot.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[string]*lockEntry),
	}
}

// Lock acquires every key and returns the matching unlock. Keys are
// deduplicated and taken in sorted order so two requests sharing a subset of
// keys can never deadlock each other.
func (k *keyedMutex) Lock(keys ...string) (unlock func()) {
	uniq := slices.Clone(keys)
	slices.Sort(uniq)
	uniq = slices.Compact(uniq)

	entries := make([]*lockEntry, len(uniq))

	for i, key := range uniq {
		k.mu.Lock()

		entry, ok := k.locks[key]
		if !ok {
			entry = &lockEntry{}
			k.locks[key] = entry
		}

		entry.refs++
		k.mu.Unlock()

		entry.mu.Lock()

		entries[i] = entry
	}

	return func() {
		for i := len(uniq) - 1; i >= 0; i-- {
			entries[i].mu.Unlock()

			k.mu.Lock()

			entries[i].refs--
			if entries[i].refs == 0 {
				delete(k.locks, uniq[i])
			}

			k.mu.Unlock()
		}
	}
}
