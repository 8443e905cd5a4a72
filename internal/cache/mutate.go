package cache

import (
	"context"
	"errors"

	"github.com/taskpro/taskpro/internal/models"
)

// ErrMutationInFlight is returned when a mutation targets an entity whose
// previous mutation has not resolved yet. The caller treats it as a no-op.
var ErrMutationInFlight = errors.New("mutation already in flight for this entity")

// ErrNoUndo is returned by Undo when no inverse is available for the entity,
// either because none was registered or because its window expired.
var ErrNoUndo = errors.New("no undo available")

// PersistFunc issues the persistence call backing an optimistic mutation.
type PersistFunc func(context.Context) error

// Mutation describes one optimistic change to a task. Exactly one of
// Update, Remove or Insert should be set.
type Mutation struct {
	UserID string
	ID     string

	// Update mutates the cached copy of the task in place.
	Update func(*models.Task)

	// Remove drops the task from every cached view.
	Remove bool

	// Insert re-adds a task, used by the undo of a deletion. The cached
	// placement is limited to the views whose membership is knowable
	// without re-running filters; the post-persist invalidation makes the
	// remaining views catch up.
	Insert *models.Task
}

// Apply runs the optimistic pipeline: snapshot the views holding the entity,
// apply the mutation to each, issue the persistence call, then either roll
// every touched view back to its snapshot (failure) or invalidate the task
// views so the next read refetches server-computed fields (success).
//
// A second Apply for the same entity while the first is unresolved returns
// ErrMutationInFlight without touching any view. Applying any mutation
// cancels a pending undo for the entity.
func (c *Cache) Apply(ctx context.Context, m Mutation, persist PersistFunc) error {
	return c.apply(ctx, m, persist, nil, nil)
}

// ApplyUndoable is Apply plus registration of an inverse mutation that stays
// available for the undo window. Only one undo per entity is live at a time.
func (c *Cache) ApplyUndoable(ctx context.Context, m Mutation, persist PersistFunc, inverse Mutation, inversePersist PersistFunc) error {
	return c.apply(ctx, m, persist, &inverse, inversePersist)
}

func (c *Cache) apply(ctx context.Context, m Mutation, persist PersistFunc, inverse *Mutation, inversePersist PersistFunc) error {
	key := entityKey(EntityTasks, m.ID)

	c.mu.Lock()
	if c.inflight[key] {
		c.mu.Unlock()
		return ErrMutationInFlight
	}
	c.inflight[key] = true
	c.pending[key] = c.gens.NextGeneration()
	delete(c.undos, key)

	snapshots := c.applyToViewsLocked(m)
	c.mu.Unlock()

	err := persist(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
	delete(c.pending, key)

	if err != nil {
		for viewKey, tasks := range snapshots {
			c.views[viewKey] = &taskView{tasks: tasks}
		}
		return err
	}

	c.invalidateLocked(EntityTasks, m.UserID)
	if inverse != nil {
		c.undos[key] = &undoEntry{
			inverse:  *inverse,
			persist:  inversePersist,
			deadline: c.now().Add(c.undoWindow),
		}
	}
	return nil
}

// Undo re-applies the registered inverse mutation for an entity through the
// same optimistic pipeline. Outside the window the inverse has silently
// expired and ErrNoUndo is returned.
func (c *Cache) Undo(ctx context.Context, userID, id string) error {
	key := entityKey(EntityTasks, id)

	c.mu.Lock()
	entry, ok := c.undos[key]
	if !ok || c.now().After(entry.deadline) {
		delete(c.undos, key)
		c.mu.Unlock()
		return ErrNoUndo
	}
	delete(c.undos, key)
	c.mu.Unlock()

	return c.Apply(ctx, entry.inverse, entry.persist)
}

// UndoAvailable reports whether an unexpired inverse is registered for the
// entity, without consuming it.
func (c *Cache) UndoAvailable(id string) bool {
	key := entityKey(EntityTasks, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.undos[key]
	return ok && !c.now().After(entry.deadline)
}

// applyToViewsLocked applies m to every cached view that holds the entity
// and returns pre-mutation snapshots of the views it touched.
func (c *Cache) applyToViewsLocked(m Mutation) map[Key][]models.Task {
	snapshots := make(map[Key][]models.Task)

	for key, view := range c.views {
		if key.Entity != EntityTasks || key.UserID != m.UserID {
			continue
		}

		switch {
		case m.Insert != nil:
			if !insertScopeMatch(key.Scope, m.Insert) {
				continue
			}
			snapshots[key] = snapshotTasks(view.tasks)
			view.tasks = append(view.tasks, *m.Insert)

		case m.Remove:
			idx := taskIndex(view.tasks, m.ID)
			if idx < 0 {
				continue
			}
			snapshots[key] = snapshotTasks(view.tasks)
			view.tasks = append(view.tasks[:idx], view.tasks[idx+1:]...)

		case m.Update != nil:
			idx := taskIndex(view.tasks, m.ID)
			if idx < 0 {
				continue
			}
			snapshots[key] = snapshotTasks(view.tasks)
			m.Update(&view.tasks[idx])
		}
	}
	return snapshots
}

// insertScopeMatch reports whether a re-created task certainly belongs to a
// view. Date and filter scopes need a filter evaluation, so the insert skips
// them and relies on invalidation instead.
func insertScopeMatch(scope string, task *models.Task) bool {
	switch scope {
	case ScopeAll:
		return true
	case ScopeInbox:
		return task.ProjectID == ""
	case ScopeCompleted:
		return task.Completed
	case ScopeFavorites:
		return task.Favorite
	}
	return scope == ProjectScope(task.ProjectID) && task.ProjectID != ""
}

func taskIndex(tasks []models.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func snapshotTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	return out
}
