package store

import (
	"testing"
	"time"

	"github.com/taskpro/taskpro/internal/models"
)

func recvEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed event")
		return Event{}
	}
}

func TestFeedSubscribeScopedByTableAndUser(t *testing.T) {
	feed := NewFeed()
	defer feed.Close()

	tasks, unsubTasks := feed.Subscribe("tasks", testUser)
	defer unsubTasks()
	subs, unsubSubs := feed.Subscribe("subscriptions", testUser)
	defer unsubSubs()

	feed.Publish("tasks", OpInsert, testUser, "tk-1")
	feed.Publish("tasks", OpInsert, "user-2", "tk-other")
	feed.Publish("subscriptions", OpUpdate, testUser, "sub-1")

	ev := recvEvent(t, tasks)
	if ev.Table != "tasks" || ev.Op != OpInsert || ev.EntityID != "tk-1" {
		t.Errorf("task event = %+v", ev)
	}

	ev = recvEvent(t, subs)
	if ev.Table != "subscriptions" || ev.EntityID != "sub-1" {
		t.Errorf("subscription event = %+v", ev)
	}

	select {
	case ev := <-tasks:
		t.Errorf("received other user's event: %+v", ev)
	default:
	}
}

func TestFeedGenerationsMonotonic(t *testing.T) {
	feed := NewFeed()
	defer feed.Close()

	ch, unsub := feed.Subscribe("tasks", testUser)
	defer unsub()

	feed.Publish("tasks", OpInsert, testUser, "tk-1")
	feed.Publish("tasks", OpUpdate, testUser, "tk-1")

	first := recvEvent(t, ch)
	second := recvEvent(t, ch)
	if second.Generation <= first.Generation {
		t.Errorf("generations not increasing: %d then %d", first.Generation, second.Generation)
	}
}

func TestFeedReservedGeneration(t *testing.T) {
	feed := NewFeed()
	defer feed.Close()

	ch, unsub := feed.Subscribe("tasks", testUser)
	defer unsub()

	// A reserved generation can be published later and keeps its slot
	// ahead of anything published in between.
	reserved := feed.NextGeneration()
	feed.Publish("tasks", OpInsert, testUser, "tk-live")
	feed.PublishGeneration("tasks", OpUpdate, testUser, "tk-reserved", reserved)

	live := recvEvent(t, ch)
	late := recvEvent(t, ch)
	if live.Generation <= reserved {
		t.Errorf("live generation %d should be greater than reserved %d", live.Generation, reserved)
	}
	if late.Generation != reserved {
		t.Errorf("reserved event generation = %d, want %d", late.Generation, reserved)
	}
}

func TestFeedUnsubscribeStopsDelivery(t *testing.T) {
	feed := NewFeed()
	defer feed.Close()

	ch, unsub := feed.Subscribe("tasks", testUser)
	unsub()

	feed.Publish("tasks", OpInsert, testUser, "tk-1")

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("received event after unsubscribe")
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStoreWritesReachFeed(t *testing.T) {
	s := testStore(t)

	ch, unsub := s.Feed().Subscribe("tasks", testUser)
	defer unsub()

	task := &models.Task{UserID: testUser, Title: "Watch me"}
	if err := s.CreateTask(task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	ev := recvEvent(t, ch)
	if ev.Op != OpInsert || ev.EntityID != task.ID {
		t.Errorf("event = %+v, want insert for %s", ev, task.ID)
	}

	if err := s.DeleteTask(testUser, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	ev = recvEvent(t, ch)
	if ev.Op != OpDelete || ev.EntityID != task.ID {
		t.Errorf("event = %+v, want delete for %s", ev, task.ID)
	}
}
