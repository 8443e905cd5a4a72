package filter

import (
	"testing"

	"github.com/taskpro/taskpro/internal/models"
)

func TestGroupTasksNoDimension(t *testing.T) {
	tasks := []models.Task{{ID: "tk-1"}, {ID: "tk-2"}}
	groups := GroupTasks(testCtx(), tasks, "")
	if len(groups) != 1 || groups[0].Key != AllGroup {
		t.Fatalf("expected single %q group, got %+v", AllGroup, groups)
	}
	if len(groups[0].Tasks) != 2 {
		t.Errorf("single group has %d tasks, want 2", len(groups[0].Tasks))
	}
}

func TestGroupTasksByPriority(t *testing.T) {
	tasks := []models.Task{
		{ID: "tk-1", Priority: 2},
		{ID: "tk-2", Priority: 1},
		{ID: "tk-3", Priority: 2},
	}

	groups := GroupTasks(testCtx(), tasks, SortPriority)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	// First-occurrence order: Priority 2 before Priority 1.
	if groups[0].Key != "Priority 2" || groups[1].Key != "Priority 1" {
		t.Errorf("group order = [%s, %s], want [Priority 2, Priority 1]", groups[0].Key, groups[1].Key)
	}
	if len(groups[0].Tasks) != 2 || len(groups[1].Tasks) != 1 {
		t.Errorf("bucket sizes = [%d, %d], want [2, 1]", len(groups[0].Tasks), len(groups[1].Tasks))
	}
}

func TestGroupTasksByDueDate(t *testing.T) {
	tasks := []models.Task{
		{ID: "tk-1", DueDate: dueAt(0)},
		{ID: "tk-2"},
		{ID: "tk-3", DueDate: dueAt(0)},
		{ID: "tk-4", DueDate: dueAt(1)},
	}

	groups := GroupTasks(testCtx(), tasks, SortDueDate)
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	if groups[1].Key != NoDueDateGroup {
		t.Errorf("second group = %q, want %q", groups[1].Key, NoDueDateGroup)
	}
}

// Grouping completeness: union of buckets equals input exactly, each task in
// exactly one bucket.
func TestGroupTasksCompleteness(t *testing.T) {
	tasks := []models.Task{
		{ID: "tk-1", Priority: 1, ProjectID: "pr-1", DueDate: dueAt(0), Title: "a"},
		{ID: "tk-2", Priority: 4, Title: "b"},
		{ID: "tk-3", Priority: 1, ProjectID: "pr-2", DueDate: dueAt(3), Title: "a"},
		{ID: "tk-4", Priority: 2, DueDate: dueAt(0), Title: "c"},
	}

	for _, dim := range []string{SortTitle, SortPriority, SortProject, SortDueDate, ""} {
		groups := GroupTasks(testCtx(), tasks, dim)
		seen := make(map[string]int)
		total := 0
		for _, g := range groups {
			for _, task := range g.Tasks {
				seen[task.ID]++
				total++
			}
		}
		if total != len(tasks) {
			t.Errorf("dim %q: %d tasks across buckets, want %d", dim, total, len(tasks))
		}
		for _, task := range tasks {
			if seen[task.ID] != 1 {
				t.Errorf("dim %q: task %s appears %d times, want 1", dim, task.ID, seen[task.ID])
			}
		}
	}
}
