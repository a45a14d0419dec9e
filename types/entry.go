package types

import "time"

/*
Entry is what the cache actually stores for one key.

It is the value itself plus the timing metadata the cache needs to decide
whether the value is still usable:

- WrittenAt: when the entry was last WRITTEN (inserted or refreshed).
  Reads never touch this. Only Set, a successful resolution, a successful
  revalidation, or a TTL refresh-on-read update it.

- TTL: how long the entry stays valid after WrittenAt. It is copied from
  the cache configuration at write time; there is no per-entry override.

Entries are never mutated in place. Every update is a full replacement
with a fresh Entry.
*/
type Entry[V any] struct {
	Value     V
	WrittenAt time.Time
	TTL       time.Duration
}

// Expired reports whether the entry is past its expiry deadline at the
// given moment. The deadline itself counts as expired: an entry written
// at T with TTL D is gone at exactly T+D.
func (e Entry[V]) Expired(now time.Time) bool {
	return !now.Before(e.WrittenAt.Add(e.TTL))
}

// ExpiresAt returns the moment the entry stops being valid.
func (e Entry[V]) ExpiresAt() time.Time {
	return e.WrittenAt.Add(e.TTL)
}
