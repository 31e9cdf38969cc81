// Package cache provides an in-memory TTL cache for generated replies, keyed
// by a fingerprint of the channel, system prompt, and normalized user text.
// Identical questions in the same channel under the same persona reuse the
// cached answer instead of burning another completion call.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"
)

type entry struct {
	reply     string
	createdAt time.Time
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

// ReplyCache caches completion replies with lazy TTL expiry and a hard entry
// cap. When the cap is reached, the oldest fifth of entries is evicted in one
// pass. Safe for concurrent use.
type ReplyCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	max     int
	hits    uint64
	misses  uint64
	now     func() time.Time
}

// New builds a cache with the given TTL and entry cap. A non-positive max
// falls back to 1000.
func New(ttl time.Duration, max int) *ReplyCache {
	if max <= 0 {
		max = 1000
	}
	return &ReplyCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		max:     max,
		now:     time.Now,
	}
}

// Fingerprint derives the cache key. User text is trimmed and lowercased so
// trivially restated questions collapse to one entry; channel and system
// prompt stay verbatim since they select the persona.
func Fingerprint(channelID, systemPrompt, text string) string {
	h := sha256.New()
	h.Write([]byte(channelID))
	h.Write([]byte{':'})
	h.Write([]byte(systemPrompt))
	h.Write([]byte{':'})
	h.Write([]byte(strings.ToLower(strings.TrimSpace(text))))
	return hex.EncodeToString(h.Sum(nil))
}

// Lookup returns the cached reply for key, if present and fresh. Expired
// entries are deleted on access.
func (c *ReplyCache) Lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return "", false
	}
	if c.now().Sub(e.createdAt) >= c.ttl {
		delete(c.entries, key)
		c.misses++
		return "", false
	}
	c.hits++
	return e.reply, true
}

// Store inserts a reply. At capacity the oldest 20% of entries (at least one)
// are evicted first.
func (c *ReplyCache) Store(key, reply string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok && len(c.entries) >= c.max {
		c.evictOldestLocked()
	}
	c.entries[key] = entry{reply: reply, createdAt: c.now()}
}

func (c *ReplyCache) evictOldestLocked() {
	type aged struct {
		key string
		at  time.Time
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{k, e.createdAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })
	n := len(all) / 5
	if n < 1 {
		n = 1
	}
	for _, a := range all[:n] {
		delete(c.entries, a.key)
	}
}

// Sweep removes every expired entry. Called periodically by the server loop
// so idle entries don't linger until the next Lookup.
func (c *ReplyCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.createdAt) >= c.ttl {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Clear drops all entries. Counters are kept.
func (c *ReplyCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Stats returns current counters.
func (c *ReplyCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}
