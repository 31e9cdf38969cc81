package cache

import (
	"testing"
	"time"
)

func newTestCache(ttl time.Duration, max int) (*ReplyCache, *time.Time) {
	c := New(ttl, max)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestFingerprintNormalization(t *testing.T) {
	a := Fingerprint("chan", "sys", "  How Do I Download?  ")
	b := Fingerprint("chan", "sys", "how do i download?")
	if a != b {
		t.Error("trimmed/lowercased text should fingerprint identically")
	}
	if a == Fingerprint("other", "sys", "how do i download?") {
		t.Error("channel ID must contribute to the fingerprint")
	}
	if a == Fingerprint("chan", "other prompt", "how do i download?") {
		t.Error("system prompt must contribute to the fingerprint")
	}
}

func TestLookupExpiry(t *testing.T) {
	c, now := newTestCache(5*time.Minute, 10)
	key := Fingerprint("c", "s", "q")
	c.Store(key, "answer")

	if got, ok := c.Lookup(key); !ok || got != "answer" {
		t.Fatalf("Lookup = %q, %v; want answer, true", got, ok)
	}
	*now = now.Add(5 * time.Minute)
	if _, ok := c.Lookup(key); ok {
		t.Error("Lookup after TTL returned a hit")
	}
	// expired entry was deleted on access
	if s := c.Stats(); s.Entries != 0 {
		t.Errorf("Entries after expired lookup = %d, want 0", s.Entries)
	}
}

func TestStoreEvictsOldestFifth(t *testing.T) {
	c, now := newTestCache(time.Hour, 10)
	for i := 0; i < 10; i++ {
		c.Store(Fingerprint("c", "s", string(rune('a'+i))), "r")
		*now = now.Add(time.Second)
	}
	if s := c.Stats(); s.Entries != 10 {
		t.Fatalf("Entries = %d, want 10", s.Entries)
	}

	c.Store(Fingerprint("c", "s", "overflow"), "r")
	// 2 oldest evicted, 1 added
	if s := c.Stats(); s.Entries != 9 {
		t.Errorf("Entries after eviction = %d, want 9", s.Entries)
	}
	if _, ok := c.Lookup(Fingerprint("c", "s", "a")); ok {
		t.Error("oldest entry survived eviction")
	}
	if _, ok := c.Lookup(Fingerprint("c", "s", "j")); !ok {
		t.Error("newest entry was evicted")
	}
}

func TestSweep(t *testing.T) {
	c, now := newTestCache(time.Minute, 10)
	c.Store(Fingerprint("c", "s", "old"), "r")
	*now = now.Add(2 * time.Minute)
	c.Store(Fingerprint("c", "s", "fresh"), "r")

	if removed := c.Sweep(); removed != 1 {
		t.Errorf("Sweep removed %d, want 1", removed)
	}
	if _, ok := c.Lookup(Fingerprint("c", "s", "fresh")); !ok {
		t.Error("Sweep removed a fresh entry")
	}
}

func TestClearAndStats(t *testing.T) {
	c, _ := newTestCache(time.Minute, 10)
	key := Fingerprint("c", "s", "q")
	c.Store(key, "r")
	c.Lookup(key)
	c.Lookup(Fingerprint("c", "s", "missing"))

	c.Clear()
	s := c.Stats()
	if s.Entries != 0 {
		t.Errorf("Entries after Clear = %d, want 0", s.Entries)
	}
	if s.Hits != 1 || s.Misses != 1 {
		t.Errorf("counters after Clear = %d hits %d misses, want 1/1", s.Hits, s.Misses)
	}
}
