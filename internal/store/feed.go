package store

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Op is the kind of change carried by a feed event.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event is a single change notification. Generation is a process-wide
// monotonic counter assigned at publish time; consumers use it to order
// events against their own pending writes.
type Event struct {
	Table      string
	Op         Op
	UserID     string
	EntityID   string
	Generation uint64
}

// Feed fans change events out to subscribers. Subscriptions are scoped by
// (table, user id), mirroring a per-table realtime channel filtered by owner.
type Feed struct {
	mu     sync.Mutex
	subs   map[string][]chan Event
	gen    atomic.Uint64
	closed bool
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{subs: make(map[string][]chan Event)}
}

const subBuffer = 64

func subKey(table, userID string) string {
	return table + "\x00" + userID
}

// Subscribe registers for change events on the given table scoped to the
// given user. Returns the delivery channel and an unsubscribe function.
// The channel is closed on unsubscribe or feed shutdown.
func (f *Feed) Subscribe(table, userID string) (<-chan Event, func()) {
	ch := make(chan Event, subBuffer)
	key := subKey(table, userID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	f.subs[key] = append(f.subs[key], ch)

	unsubscribe := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		chans := f.subs[key]
		for i, c := range chans {
			if c == ch {
				f.subs[key] = append(chans[:i], chans[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, unsubscribe
}

// NextGeneration reserves and returns the next generation number without
// publishing. The optimistic mutation layer stamps pending local writes with
// reserved generations so it can ignore stale feed events.
func (f *Feed) NextGeneration() uint64 {
	return f.gen.Add(1)
}

// Publish delivers an event to every subscriber of (table, user id).
// Delivery is non-blocking: a subscriber that has fallen behind loses the
// event and catches up on its next refetch.
func (f *Feed) Publish(table string, op Op, userID, entityID string) {
	f.PublishGeneration(table, op, userID, entityID, f.gen.Add(1))
}

// PublishGeneration delivers an event carrying a previously reserved
// generation number.
func (f *Feed) PublishGeneration(table string, op Op, userID, entityID string, generation uint64) {
	ev := Event{Table: table, Op: op, UserID: userID, EntityID: entityID, Generation: generation}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	for _, ch := range f.subs[subKey(table, userID)] {
		select {
		case ch <- ev:
		default:
			slog.Warn("feed subscriber lagging, dropping event",
				"table", table, "user", userID, "entity", entityID)
		}
	}
}

// Close shuts down the feed and closes all subscriber channels.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for _, chans := range f.subs {
		for _, ch := range chans {
			close(ch)
		}
	}
	f.subs = nil
}
