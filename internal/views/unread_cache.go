package views

import (
	"sync"
	"time"
)

// DefaultUnreadTTL bounds how long a count survives without a local write.
// Writes on another replica never evict this process's entries.
const DefaultUnreadTTL = 30 * time.Second

type unreadEntry struct {
	count      int
	cached     bool
	storedAt   time.Time
	generation uint64
}

// UnreadCache memoises per-user unread notification counts. Every notification
// write for a user must call Evict.
//
// A reader takes a generation from Get before counting and hands it back to Set.
// Evict bumps the generation, so a count read before a concurrent write is dropped
// instead of cached.
type UnreadCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*unreadEntry
}

// NewUnreadCache returns a cache whose entries expire after ttl; ttl <= 0 disables caching.
func NewUnreadCache(ttl time.Duration) *UnreadCache {
	return &UnreadCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*unreadEntry),
	}
}

// Get returns the cached count if fresh, and the generation to pass to Set either way.
func (c *UnreadCache) Get(userID string) (count int, generation uint64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[userID]
	if !found {
		return 0, 0, false
	}
	if !e.cached || c.now().Sub(e.storedAt) >= c.ttl {
		return 0, e.generation, false
	}
	return e.count, e.generation, true
}

// Set stores count unless the user was evicted after generation was read.
func (c *UnreadCache) Set(userID string, count int, generation uint64) bool {
	if c.ttl <= 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[userID]
	if !found {
		if generation != 0 {
			return false
		}
		e = &unreadEntry{}
		c.entries[userID] = e
	}
	if e.generation != generation {
		return false
	}

	e.count = count
	e.cached = true
	e.storedAt = c.now()
	return true
}

// Evict invalidates the users' counts and any read still in flight.
func (c *UnreadCache) Evict(userIDs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range userIDs {
		e, found := c.entries[id]
		if !found {
			e = &unreadEntry{}
			c.entries[id] = e
		}
		e.generation++
		e.cached = false
	}
}
