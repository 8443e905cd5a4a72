package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/taskpro/taskpro/internal/models"
	"github.com/taskpro/taskpro/internal/store"
)

const testUser = "user-1"

type fakeGens struct{ n atomic.Uint64 }

func (g *fakeGens) NextGeneration() uint64 { return g.n.Add(1) }

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(t *testing.T) (*Cache, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 1, 14, 10, 30, 0, 0, time.UTC)}
	return New(&fakeGens{}, WithNow(clock.now)), clock
}

func seedViews(c *Cache, task models.Task, scopes ...string) {
	for _, scope := range scopes {
		c.PutTasks(testUser, scope, []models.Task{task})
	}
}

func okPersist(context.Context) error { return nil }

func TestApplyFansOutToEveryView(t *testing.T) {
	c, _ := newTestCache(t)
	task := models.Task{ID: "tk-1", UserID: testUser, Title: "Report"}
	scopes := []string{ScopeAll, ScopeToday, ScopeInbox, SearchScope("rep")}
	seedViews(c, task, scopes...)

	var sawOptimistic bool
	persist := func(context.Context) error {
		// Mid-flight every view must already show the optimistic value.
		for _, scope := range scopes {
			tasks, ok := c.Tasks(testUser, scope)
			if !ok || len(tasks) != 1 || !tasks[0].Completed {
				return errors.New("optimistic value missing in view " + scope)
			}
		}
		sawOptimistic = true
		return nil
	}

	m := Mutation{UserID: testUser, ID: "tk-1", Update: func(t *models.Task) { t.Completed = true }}
	if err := c.Apply(context.Background(), m, persist); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !sawOptimistic {
		t.Fatal("persist ran before optimistic apply")
	}

	// Success invalidates the views so the next read refetches.
	for _, scope := range scopes {
		if _, ok := c.Tasks(testUser, scope); ok {
			t.Errorf("view %s not invalidated after success", scope)
		}
	}
}

func TestApplyRollsBackEveryViewOnFailure(t *testing.T) {
	c, _ := newTestCache(t)
	task := models.Task{ID: "tk-1", UserID: testUser, Title: "Report", Completed: false}
	scopes := []string{ScopeAll, ScopeToday, ScopeOverdue, ProjectScope("pr-1")}
	task.ProjectID = "pr-1"
	seedViews(c, task, scopes...)

	persistErr := errors.New("network down")
	m := Mutation{UserID: testUser, ID: "tk-1", Update: func(t *models.Task) { t.Completed = true }}
	err := c.Apply(context.Background(), m, func(context.Context) error { return persistErr })
	if !errors.Is(err, persistErr) {
		t.Fatalf("Apply error = %v, want %v", err, persistErr)
	}

	for _, scope := range scopes {
		tasks, ok := c.Tasks(testUser, scope)
		if !ok {
			t.Fatalf("view %s lost after rollback", scope)
		}
		if len(tasks) != 1 || tasks[0].Completed {
			t.Errorf("view %s not rolled back: %+v", scope, tasks)
		}
	}
}

func TestApplyRemoveAndRollback(t *testing.T) {
	c, _ := newTestCache(t)
	task := models.Task{ID: "tk-1", UserID: testUser, Title: "Report"}
	other := models.Task{ID: "tk-2", UserID: testUser, Title: "Other"}
	c.PutTasks(testUser, ScopeAll, []models.Task{task, other})

	failed := errors.New("constraint violation")
	m := Mutation{UserID: testUser, ID: "tk-1", Remove: true}
	err := c.Apply(context.Background(), m, func(ctx context.Context) error {
		tasks, _ := c.Tasks(testUser, ScopeAll)
		if len(tasks) != 1 || tasks[0].ID != "tk-2" {
			t.Errorf("task not optimistically removed: %+v", tasks)
		}
		return failed
	})
	if !errors.Is(err, failed) {
		t.Fatalf("Apply error = %v", err)
	}

	tasks, ok := c.Tasks(testUser, ScopeAll)
	if !ok || len(tasks) != 2 || tasks[0].ID != "tk-1" {
		t.Errorf("rollback did not restore the removed task: %+v", tasks)
	}
}

func TestApplyRejectsInterleavedMutations(t *testing.T) {
	c, _ := newTestCache(t)
	seedViews(c, models.Task{ID: "tk-1", UserID: testUser}, ScopeAll)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	m := Mutation{UserID: testUser, ID: "tk-1", Update: func(t *models.Task) { t.Favorite = true }}
	go func() {
		done <- c.Apply(context.Background(), m, func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	err := c.Apply(context.Background(), m, okPersist)
	if !errors.Is(err, ErrMutationInFlight) {
		t.Errorf("second mutation = %v, want ErrMutationInFlight", err)
	}

	// A different entity is not blocked.
	seedViews(c, models.Task{ID: "tk-2", UserID: testUser}, ScopeInbox)
	m2 := Mutation{UserID: testUser, ID: "tk-2", Update: func(t *models.Task) { t.Favorite = true }}
	if err := c.Apply(context.Background(), m2, okPersist); err != nil {
		t.Errorf("unrelated entity blocked: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first mutation: %v", err)
	}

	// After resolution the entity accepts mutations again.
	seedViews(c, models.Task{ID: "tk-1", UserID: testUser}, ScopeAll)
	if err := c.Apply(context.Background(), m, okPersist); err != nil {
		t.Errorf("mutation after resolution: %v", err)
	}
}

func TestUndoWithinWindow(t *testing.T) {
	c, clock := newTestCache(t)
	task := models.Task{ID: "tk-1", UserID: testUser, Title: "Report"}
	seedViews(c, task, ScopeAll, ScopeToday)

	complete := Mutation{UserID: testUser, ID: "tk-1", Update: func(t *models.Task) { t.Completed = true }}
	uncomplete := Mutation{UserID: testUser, ID: "tk-1", Update: func(t *models.Task) { t.Completed = false }}

	var persisted bool
	if err := c.ApplyUndoable(context.Background(), complete, okPersist, uncomplete, func(context.Context) error {
		persisted = true
		return nil
	}); err != nil {
		t.Fatalf("ApplyUndoable: %v", err)
	}
	if !c.UndoAvailable("tk-1") {
		t.Fatal("undo not available after undoable mutation")
	}

	// Re-seed after invalidation, as a refetch would, with the new state.
	completed := task
	completed.Completed = true
	seedViews(c, completed, ScopeAll, ScopeCompleted)

	clock.advance(3 * time.Second)
	if err := c.Undo(context.Background(), testUser, "tk-1"); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !persisted {
		t.Error("undo did not issue the inverse persistence call")
	}
	if c.UndoAvailable("tk-1") {
		t.Error("undo still available after being consumed")
	}
}

func TestUndoExpiresSilently(t *testing.T) {
	c, clock := newTestCache(t)
	seedViews(c, models.Task{ID: "tk-1", UserID: testUser}, ScopeAll)

	m := Mutation{UserID: testUser, ID: "tk-1", Update: func(t *models.Task) { t.Completed = true }}
	inv := Mutation{UserID: testUser, ID: "tk-1", Update: func(t *models.Task) { t.Completed = false }}
	if err := c.ApplyUndoable(context.Background(), m, okPersist, inv, okPersist); err != nil {
		t.Fatalf("ApplyUndoable: %v", err)
	}

	clock.advance(DefaultUndoWindow + time.Second)
	if c.UndoAvailable("tk-1") {
		t.Error("undo available past its window")
	}
	if err := c.Undo(context.Background(), testUser, "tk-1"); !errors.Is(err, ErrNoUndo) {
		t.Errorf("expired undo = %v, want ErrNoUndo", err)
	}
}

func TestNewMutationCancelsPendingUndo(t *testing.T) {
	c, _ := newTestCache(t)
	seedViews(c, models.Task{ID: "tk-1", UserID: testUser}, ScopeAll)

	m := Mutation{UserID: testUser, ID: "tk-1", Update: func(t *models.Task) { t.Completed = true }}
	inv := Mutation{UserID: testUser, ID: "tk-1", Update: func(t *models.Task) { t.Completed = false }}
	if err := c.ApplyUndoable(context.Background(), m, okPersist, inv, okPersist); err != nil {
		t.Fatalf("ApplyUndoable: %v", err)
	}

	seedViews(c, models.Task{ID: "tk-1", UserID: testUser, Completed: true}, ScopeAll)
	rename := Mutation{UserID: testUser, ID: "tk-1", Update: func(t *models.Task) { t.Title = "Renamed" }}
	if err := c.Apply(context.Background(), rename, okPersist); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if c.UndoAvailable("tk-1") {
		t.Error("pending undo survived a newer mutation")
	}
}

func TestInsertPlacesIntoCertainScopesOnly(t *testing.T) {
	c, _ := newTestCache(t)
	c.PutTasks(testUser, ScopeAll, nil)
	c.PutTasks(testUser, ScopeInbox, nil)
	c.PutTasks(testUser, ScopeToday, nil)
	c.PutTasks(testUser, ProjectScope("pr-1"), nil)

	restored := models.Task{ID: "tk-1", UserID: testUser, Title: "Back again"}
	m := Mutation{UserID: testUser, ID: "tk-1", Insert: &restored}

	var midFlight map[string]int
	err := c.Apply(context.Background(), m, func(context.Context) error {
		midFlight = map[string]int{}
		for _, scope := range []string{ScopeAll, ScopeInbox, ScopeToday, ProjectScope("pr-1")} {
			tasks, _ := c.Tasks(testUser, scope)
			midFlight[scope] = len(tasks)
		}
		return errors.New("fail to observe rollback")
	})
	if err == nil {
		t.Fatal("expected persist failure")
	}

	// A project-less task lands in all and inbox; date scopes wait for the
	// refetch, and a foreign project view is untouched.
	if midFlight[ScopeAll] != 1 || midFlight[ScopeInbox] != 1 {
		t.Errorf("insert missing from all/inbox: %v", midFlight)
	}
	if midFlight[ScopeToday] != 0 || midFlight[ProjectScope("pr-1")] != 0 {
		t.Errorf("insert leaked into uncertain scopes: %v", midFlight)
	}

	// Rollback removed it everywhere it was placed.
	tasks, _ := c.Tasks(testUser, ScopeAll)
	if len(tasks) != 0 {
		t.Errorf("insert not rolled back: %+v", tasks)
	}
}

func TestObserveEventGenerationRule(t *testing.T) {
	c, _ := newTestCache(t)
	seedViews(c, models.Task{ID: "tk-1", UserID: testUser}, ScopeAll)

	block := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)
	m := Mutation{UserID: testUser, ID: "tk-1", Update: func(t *models.Task) { t.Completed = true }}
	go func() {
		done <- c.Apply(context.Background(), m, func(context.Context) error {
			close(started)
			<-block
			return nil
		})
	}()
	<-started

	// Stale event, generation before the pending local write: ignored and
	// the optimistic view survives.
	stale := store.Event{Table: EntityTasks, Op: store.OpUpdate, UserID: testUser, EntityID: "tk-1", Generation: 0}
	if c.ObserveEvent(stale) {
		t.Error("stale event applied over pending local mutation")
	}
	if tasks, ok := c.Tasks(testUser, ScopeAll); !ok || !tasks[0].Completed {
		t.Error("stale event stomped the optimistic value")
	}

	// Newer event wins even mid-flight.
	newer := store.Event{Table: EntityTasks, Op: store.OpUpdate, UserID: testUser, EntityID: "tk-1", Generation: 99}
	if !c.ObserveEvent(newer) {
		t.Error("newer event was ignored")
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("Apply: %v", err)
	}

	// After resolution nothing is pending, so any event applies.
	if !c.ObserveEvent(stale) {
		t.Error("event ignored with no pending mutation")
	}
}

func TestObserveSubscriptionEvent(t *testing.T) {
	c, _ := newTestCache(t)
	c.PutSubscription(testUser, models.Subscription{UserID: testUser, Status: models.StatusTrial})

	ev := store.Event{Table: EntitySubscriptions, Op: store.OpUpdate, UserID: testUser, EntityID: "sub-1", Generation: 5}
	if !c.ObserveEvent(ev) {
		t.Fatal("subscription event not applied")
	}
	if _, ok := c.Subscription(testUser); ok {
		t.Error("subscription cache not invalidated by feed event")
	}
}
