// Package cache holds the process-wide view caches for tasks and
// subscriptions and the optimistic mutation pipeline that keeps them
// consistent. Any component may read; all writes go through this package so
// that a single task edit fans out to every dependent view.
package cache

import (
	"sync"
	"time"

	"github.com/taskpro/taskpro/internal/models"
)

// Entity names match the store's change-feed table names.
const (
	EntityTasks         = "tasks"
	EntitySubscriptions = "subscriptions"
)

// Fixed view scopes. Parameterized scopes are built with ProjectScope,
// SearchScope and FilterScope.
const (
	ScopeAll       = "all"
	ScopeToday     = "today"
	ScopeOverdue   = "overdue"
	ScopeUpcoming  = "upcoming"
	ScopeInbox     = "inbox"
	ScopeCompleted = "completed"
	ScopeFavorites = "favorites"
)

// ProjectScope returns the view scope for a single project's task list.
func ProjectScope(projectID string) string { return "project:" + projectID }

// SearchScope returns the view scope for a text search result list.
func SearchScope(query string) string { return "search:" + query }

// FilterScope returns the view scope for a custom filter's result list.
func FilterScope(filterID string) string { return "filter:" + filterID }

// Key identifies one cached view.
type Key struct {
	Entity string
	UserID string
	Scope  string
}

// GenerationSource hands out monotonic generation numbers shared with the
// change feed, so cached pending mutations and incoming feed events order
// against each other.
type GenerationSource interface {
	NextGeneration() uint64
}

type taskView struct {
	tasks []models.Task
}

// undoEntry is a registered inverse mutation. Expiry is checked lazily
// against the deadline; an expired entry simply stops being available.
type undoEntry struct {
	inverse  Mutation
	persist  PersistFunc
	deadline time.Time
}

// DefaultUndoWindow bounds how long an inverse mutation stays available.
const DefaultUndoWindow = 5 * time.Second

// Cache is the shared view cache. One instance per process.
type Cache struct {
	gens       GenerationSource
	undoWindow time.Duration
	now        func() time.Time

	mu       sync.Mutex
	views    map[Key]*taskView
	subs     map[string]models.Subscription
	inflight map[string]bool   // entity key, set while a mutation reconciles
	pending  map[string]uint64 // entity key -> generation of the pending local write
	undos    map[string]*undoEntry
}

// Option configures a Cache.
type Option func(*Cache)

// WithUndoWindow overrides the undo availability window.
func WithUndoWindow(d time.Duration) Option {
	return func(c *Cache) { c.undoWindow = d }
}

// WithNow injects the clock used for undo deadlines.
func WithNow(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates an empty cache drawing generations from gens.
func New(gens GenerationSource, opts ...Option) *Cache {
	c := &Cache{
		gens:       gens,
		undoWindow: DefaultUndoWindow,
		now:        time.Now,
		views:      make(map[Key]*taskView),
		subs:       make(map[string]models.Subscription),
		inflight:   make(map[string]bool),
		pending:    make(map[string]uint64),
		undos:      make(map[string]*undoEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func entityKey(entity, id string) string {
	return entity + "\x00" + id
}

// Tasks returns a copy of the cached task list for one view.
func (c *Cache) Tasks(userID, scope string) ([]models.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	view, ok := c.views[Key{Entity: EntityTasks, UserID: userID, Scope: scope}]
	if !ok {
		return nil, false
	}
	out := make([]models.Task, len(view.tasks))
	copy(out, view.tasks)
	return out, true
}

// PutTasks stores a freshly fetched task list for one view.
func (c *Cache) PutTasks(userID, scope string, tasks []models.Task) {
	stored := make([]models.Task, len(tasks))
	copy(stored, tasks)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.views[Key{Entity: EntityTasks, UserID: userID, Scope: scope}] = &taskView{tasks: stored}
}

// Subscription returns the cached subscription for a user.
func (c *Cache) Subscription(userID string) (models.Subscription, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sub, ok := c.subs[userID]
	return sub, ok
}

// PutSubscription stores a freshly fetched subscription record.
func (c *Cache) PutSubscription(userID string, sub models.Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs[userID] = sub
}

// Invalidate drops every cached view for (entity, user), forcing the next
// read to refetch. This is the single invalidation entry point; callers
// never enumerate view keys themselves.
func (c *Cache) Invalidate(entity, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(entity, userID)
}

func (c *Cache) invalidateLocked(entity, userID string) {
	switch entity {
	case EntityTasks:
		for key := range c.views {
			if key.Entity == entity && key.UserID == userID {
				delete(c.views, key)
			}
		}
	case EntitySubscriptions:
		delete(c.subs, userID)
	}
}
