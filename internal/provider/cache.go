package provider

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// fingerprint normalizes a request into a stable cache key. Whitespace
// runs collapse so cosmetic prompt differences hit the same entry.
func fingerprint(req Request) string {
	norm := strings.Join(strings.Fields(req.Prompt), " ")
	sum := sha256.Sum256([]byte(string(req.Intent) + "\x00" + norm))
	return hex.EncodeToString(sum[:])
}

type cacheEntry struct {
	result  Result
	expires time.Time
}

// responseCache bounds duplicate provider calls for identical prompts
// within the TTL window.
type responseCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

func (c *responseCache) get(key string, now time.Time) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || now.After(e.expires) {
		return nil, false
	}
	res := e.result
	res.Source = SourceCache
	return &res, true
}

func (c *responseCache) put(key string, res *Result, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{result: *res, expires: now.Add(c.ttl)}
}

// sweep evicts stale entries and returns how many were removed.
func (c *responseCache) sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}
