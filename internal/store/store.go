// Package store implements the shared in-memory key-value store.
//
// Values optionally carry an expiration timer started at insert time.
// Expiration is lazy: a read that finds an elapsed timer reports the key
// as absent but does not remove the entry, so expired entries occupy
// memory until overwritten. There is no background sweeper.
package store

import (
	"time"

	"github.com/gohermgo/respcache/pkg/cmap"
)

// Entry is a stored value with an optional expiration timer.
type Entry struct {
	Data string
	// SetAt is the instant the entry was inserted; the timer starts here.
	SetAt time.Time
	// TTL is the timer duration. Only meaningful when HasTTL is true;
	// a zero TTL with HasTTL set expires immediately.
	TTL    time.Duration
	HasTTL bool
}

// Expired reports whether the entry's timer has elapsed.
func (e Entry) Expired() bool {
	return e.HasTTL && time.Since(e.SetAt) >= e.TTL
}

// Store is a concurrently-accessible map from keys to expiring entries.
// It is shared across all connections for the process lifetime.
type Store struct {
	entries *cmap.Map[Entry]
}

// New creates an empty store. shards must be a power of 2; invalid
// counts fall back to the cmap default.
func New(shards int) *Store {
	return &Store{entries: cmap.NewWithShards[Entry](shards)}
}

// Set inserts or overwrites a key with no expiration.
// Any previous value and its timer are replaced unconditionally.
func (s *Store) Set(key, data string) {
	s.entries.Set(key, Entry{Data: data, SetAt: time.Now()})
}

// SetWithTTL inserts or overwrites a key with an expiration timer
// started now.
func (s *Store) SetWithTTL(key, data string, ttl time.Duration) {
	s.entries.Set(key, Entry{Data: data, SetAt: time.Now(), TTL: ttl, HasTTL: true})
}

// Get returns the stored data for key, or false if the key is missing
// or its timer has elapsed. Expired entries are not evicted here.
func (s *Store) Get(key string) (string, bool) {
	e, ok := s.entries.Get(key)
	if !ok || e.Expired() {
		return "", false
	}
	return e.Data, true
}

// Len returns the number of entries, including expired ones that have
// not been overwritten.
func (s *Store) Len() int {
	return s.entries.Count()
}
