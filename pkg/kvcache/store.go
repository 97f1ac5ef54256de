// Package kvcache provides the shared key-value store used for the Zoom
// access token and the notification idempotency locks. Both consumers take
// the Store interface as an explicit dependency rather than reaching for a
// global cache, so tests can substitute their own implementations.
package kvcache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is a TTL-aware key-value store.
//
// Get/Set/Exists are check-then-act, not transactional: two concurrent
// callers can both miss and both write. Consumers tolerate that (a duplicate
// token fetch or, worst case, a duplicate notification within the TTL).
type Store interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Exists(key string) bool
	Delete(key string)
}

// MemoryStore is an in-process Store backed by patrickmn/go-cache
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a MemoryStore. Expired entries are swept every
// cleanupInterval; a zero interval disables the janitor.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

// Get returns the value for key if present and not expired
func (s *MemoryStore) Get(key string) (interface{}, bool) {
	return s.cache.Get(key)
}

// Set stores value under key for ttl; a zero ttl means no expiration
func (s *MemoryStore) Set(key string, value interface{}, ttl time.Duration) {
	s.cache.Set(key, value, ttl)
}

// Exists reports whether key is present and not expired
func (s *MemoryStore) Exists(key string) bool {
	_, found := s.cache.Get(key)
	return found
}

// Delete removes key from the store
func (s *MemoryStore) Delete(key string) {
	s.cache.Delete(key)
}
