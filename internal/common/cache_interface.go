package common

import "time"

// CacheInterface is the contract shared by the in-memory and Redis caches.
// Aggregate results, aircraft-model lookups and classifier answers all go
// through it, so services never care which backend is configured.
type CacheInterface interface {
	// Set stores a value under key for the given duration.
	Set(key string, value interface{}, duration time.Duration)

	// Get returns the cached value and true, or nil and false.
	Get(key string) (interface{}, bool)

	// Delete removes a single key.
	Delete(key string)

	// DeleteMany removes a batch of keys in one call. Write paths use this
	// to drop every aggregate variant for a user at once.
	DeleteMany(keys ...string)

	// GetOrSet returns the cached value, or runs loader and caches its
	// result for the given duration.
	GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error)

	// Close releases any underlying connections.
	Close() error
}
