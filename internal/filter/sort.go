package filter

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/taskpro/taskpro/internal/models"
)

// Sort keys accepted by SortTasks and GroupTasks.
const (
	SortTitle    = "title"
	SortDueDate  = "dueDate"
	SortPriority = "priority"
	SortProject  = "project"
)

var titleCollator = collate.New(language.Und, collate.Loose)

// SortTasks returns a sorted copy of tasks. The sort is stable: equal keys
// retain their relative input order. Tasks without a due date sort after all
// tasks with one regardless of direction. Unknown keys return the input
// order unchanged.
func SortTasks(ctx *EvalContext, tasks []models.Task, sortBy string, desc bool) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)

	var less func(a, b models.Task) int
	switch sortBy {
	case SortTitle:
		less = func(a, b models.Task) int {
			return titleCollator.CompareString(a.Title, b.Title)
		}
	case SortDueDate:
		less = compareDue
	case SortPriority:
		less = func(a, b models.Task) int {
			return a.Priority - b.Priority
		}
	case SortProject:
		less = func(a, b models.Task) int {
			return titleCollator.CompareString(projectName(ctx, a), projectName(ctx, b))
		}
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		c := less(out[i], out[j])
		if c == 0 {
			return false
		}
		if sortBy == SortDueDate {
			// Missing due dates stay last in both directions.
			if out[i].DueDate == nil || out[j].DueDate == nil {
				return c < 0
			}
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// compareDue orders by due date, nil last.
func compareDue(a, b models.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	case a.DueDate.Before(*b.DueDate):
		return -1
	case a.DueDate.After(*b.DueDate):
		return 1
	default:
		return 0
	}
}

// projectName resolves a task's project display name, falling back to the
// raw id, with the empty ref rendered as Inbox.
func projectName(ctx *EvalContext, task models.Task) string {
	if task.ProjectID == "" {
		return "Inbox"
	}
	if ctx != nil && ctx.ProjectNames != nil {
		if name, ok := ctx.ProjectNames[task.ProjectID]; ok {
			return name
		}
	}
	return task.ProjectID
}
