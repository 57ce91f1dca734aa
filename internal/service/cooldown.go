package service

import (
	"sync"
	"time"
)

// cooldownCache tracks when a company/severity tier last produced an
// alert, so repeated near-identical findings inside the window are
// suppressed. Expired entries are compacted on write; the cache stays
// bounded by the number of companies actually alerting.
type cooldownCache struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	window time.Duration
	now    func() time.Time
}

func newCooldownCache(window time.Duration) *cooldownCache {
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &cooldownCache{
		seen:   make(map[string]time.Time),
		window: window,
		now:    time.Now,
	}
}

// TryMark atomically checks the key's window and, if it is open,
// starts it. Returns false when the key is still cooling down.
// Concurrent claimants for the same key serialize on the lock, so
// exactly one wins.
func (c *cooldownCache) TryMark(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if ts, ok := c.seen[key]; ok && now.Sub(ts) < c.window {
		return false
	}
	for k, v := range c.seen {
		if now.Sub(v) >= c.window {
			delete(c.seen, k)
		}
	}
	c.seen[key] = now
	return true
}

// Release clears the key's window so a failed emission does not
// suppress the next attempt.
func (c *cooldownCache) Release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.seen, key)
}

// MarkAt records an emission at an explicit time. Startup rehydration
// uses it to restore windows from persisted alerts.
func (c *cooldownCache) MarkAt(key string, ts time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, v := range c.seen {
		if now.Sub(v) >= c.window {
			delete(c.seen, k)
		}
	}
	c.seen[key] = ts
}
