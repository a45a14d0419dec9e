package store

import "github.com/krisalay/revalidating-cache/types"

/*
This file defines how entries are actually stored.

Store is a plain map wrapper and is deliberately NOT synchronized. The
cache is the single owner of its store: every access happens inside the
cache's own exclusive section. Pushing a second layer of locking (or a
copy-on-write map) down here would buy nothing and would make the capacity
sweep — which deletes many entries in one pass — needlessly expensive.
*/
type Store[K comparable, V any] struct {
	entries map[K]types.Entry[V]
}

func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{entries: make(map[K]types.Entry[V])}
}

// Get retrieves an entry by key.
func (s *Store[K, V]) Get(key K) (types.Entry[V], bool) {
	ent, ok := s.entries[key]
	return ent, ok
}

// Put inserts or replaces an entry.
func (s *Store[K, V]) Put(key K, ent types.Entry[V]) {
	s.entries[key] = ent
}

// Delete removes an entry. Deleting a missing key is a no-op.
func (s *Store[K, V]) Delete(key K) {
	delete(s.entries, key)
}

// Len returns how many entries are stored, INCLUDING entries that have
// already expired but have not been observed yet. Expiry is lazy.
func (s *Store[K, V]) Len() int {
	return len(s.entries)
}

// Range calls f for every stored entry until f returns false.
// Iteration order is unspecified. f may delete entries (including the one
// it was called with); that is the basis of the capacity sweep.
func (s *Store[K, V]) Range(f func(key K, ent types.Entry[V]) bool) {
	for k, e := range s.entries {
		if !f(k, e) {
			return
		}
	}
}

// Keys returns a snapshot of the stored keys in unspecified order.
func (s *Store[K, V]) Keys() []K {
	out := make([]K, 0, len(s.entries))
	for k := range s.entries {
		out = append(out, k)
	}
	return out
}

// Clear drops every entry.
func (s *Store[K, V]) Clear() {
	clear(s.entries)
}
