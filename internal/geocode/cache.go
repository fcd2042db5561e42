// Package geocode maps (city, state) pairs to their nearest US airport,
// preferring a durable cache and falling back to an external lookup service
// under a bounded retry policy. Every outcome — positive, negative, or
// exhausted-retries — is cached, so repeated lookups never re-invoke the
// external service.
package geocode

import (
	"fmt"
	"regexp"

	"github.com/uaswatch/uas-sightings-etl/internal/domain"
)

var (
	// cacheKeyRe enforces the "<city>, <2-letter-state>" key contract.
	cacheKeyRe = regexp.MustCompile(`^.+,\s[A-Z]{2}$`)

	// cacheValueRe enforces the value contract: a 3-letter airport code or
	// one of the two terminal sentinels.
	cacheValueRe = regexp.MustCompile(`^([A-Z]{3}|UNKNOWN|GEO_TIMEOUT)$`)
)

// Cache is the growth-only city/state → airport-code mapping. It is an
// explicit object with a load/save lifecycle bracketing a run — there is no
// package-level state. Single-writer: the sequential pipeline is the only
// mutator.
type Cache struct {
	entries map[string]string
}

// NewCache wraps an already-validated mapping. Pass nil to start empty.
func NewCache(entries map[string]string) *Cache {
	if entries == nil {
		entries = make(map[string]string)
	}
	return &Cache{entries: entries}
}

// Key builds the canonical cache key for a city and normalized state.
func Key(city, state string) string {
	return fmt.Sprintf("%s, %s", city, state)
}

// Get returns the cached terminal value for a key, if present.
func (c *Cache) Get(key string) (string, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Put records a terminal value for a key. Entries are never evicted.
func (c *Cache) Put(key, value string) {
	c.entries[key] = value
}

// Len reports the number of cached locations.
func (c *Cache) Len() int { return len(c.entries) }

// Entries returns a copy of the underlying mapping for persistence.
func (c *Cache) Entries() map[string]string {
	out := make(map[string]string, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// ValidateEntries checks a mapping against the cache schema: keys must be
// "<city>, <ST>" and values a 3-letter code, UNKNOWN, or GEO_TIMEOUT.
func ValidateEntries(entries map[string]string) error {
	for k, v := range entries {
		if !cacheKeyRe.MatchString(k) {
			return fmt.Errorf("cache key %q does not match %q", k, cacheKeyRe)
		}
		if !cacheValueRe.MatchString(v) {
			return fmt.Errorf("cache value %q for key %q must be a 3-letter code, %q, or %q",
				v, k, domain.Unknown, domain.GeoTimeout)
		}
	}
	return nil
}
