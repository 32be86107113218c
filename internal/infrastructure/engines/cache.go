package engines

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"searchhub/internal/domain/search"
)

const defaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	response *search.Response
	expires  time.Time
}

// responseCache is an in-memory TTL cache for search responses. Each adapter
// owns one instance; it is never shared across adapters or orchestrators.
type responseCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func newResponseCache(ttl time.Duration) *responseCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &responseCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns a copy of the cached response for key, if present and fresh.
// Callers may mutate the returned response freely.
func (c *responseCache) Get(key string) (*search.Response, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return copyResponse(entry.response), true
}

// Set stores a copy of resp under key.
func (c *responseCache) Set(key string, resp *search.Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Drop expired entries while we hold the lock so Len stays honest.
	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}

	c.entries[key] = cacheEntry{
		response: copyResponse(resp),
		expires:  now.Add(c.ttl),
	}
}

// Len reports the number of fresh entries.
func (c *responseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	count := 0
	for _, e := range c.entries {
		if !now.After(e.expires) {
			count++
		}
	}
	return count
}

// cacheKey derives a deterministic key from the effective query parameters.
// Extra parameters are sorted so map insertion order never changes the key.
func cacheKey(query search.Query) string {
	parts := []string{
		fmt.Sprintf("q=%s", query.Q),
		fmt.Sprintf("n=%d", query.MaxResults),
		fmt.Sprintf("o=%d", query.Offset),
	}

	if len(query.Extra) > 0 {
		keys := make([]string, 0, len(query.Extra))
		for k := range query.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("x:%s=%s", k, query.Extra[k]))
		}
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func copyResponse(resp *search.Response) *search.Response {
	if resp == nil {
		return nil
	}

	out := *resp
	out.Results = make([]search.Result, len(resp.Results))
	for i, r := range resp.Results {
		out.Results[i] = r
		if r.Metadata != nil {
			meta := make(map[string]any, len(r.Metadata))
			for k, v := range r.Metadata {
				meta[k] = v
			}
			out.Results[i].Metadata = meta
		}
	}
	if resp.Metadata != nil {
		meta := make(map[string]any, len(resp.Metadata))
		for k, v := range resp.Metadata {
			meta[k] = v
		}
		out.Metadata = meta
	}
	return &out
}
