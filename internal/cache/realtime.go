package cache

import (
	"log/slog"

	"github.com/taskpro/taskpro/internal/store"
)

// ObserveEvent reconciles one change-feed event against the cache. Events
// carrying a generation older than a pending local mutation on the same
// entity are ignored: the local write intent wins until it resolves, after
// which server state is authoritative again. Applied events invalidate the
// entity's views. Returns whether the event was applied.
func (c *Cache) ObserveEvent(ev store.Event) bool {
	key := entityKey(ev.Table, ev.EntityID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen, ok := c.pending[key]; ok && ev.Generation < gen {
		slog.Debug("ignoring stale feed event",
			"table", ev.Table, "entity", ev.EntityID,
			"event_generation", ev.Generation, "pending_generation", gen)
		return false
	}

	c.invalidateLocked(ev.Table, ev.UserID)
	return true
}

// Watch consumes a feed subscription channel until it closes, reconciling
// each event. Run it in its own goroutine.
func (c *Cache) Watch(ch <-chan store.Event) {
	for ev := range ch {
		c.ObserveEvent(ev)
	}
}
