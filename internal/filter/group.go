package filter

import (
	"fmt"

	"github.com/taskpro/taskpro/internal/dateparse"
	"github.com/taskpro/taskpro/internal/models"
)

// NoDueDateGroup is the bucket key for tasks without a due date when
// grouping by due date.
const NoDueDateGroup = "No Due Date"

// AllGroup is the single bucket key used when no group dimension is given.
const AllGroup = "all"

// Group is one bucket of a grouped task list.
type Group struct {
	Key   string
	Tasks []models.Task
}

// GroupTasks partitions tasks by the requested dimension using the same key
// derivation as sorting. Every task lands in exactly one bucket; bucket order
// follows the first occurrence of each key in the input sequence. An empty
// groupBy returns a single group holding all tasks.
func GroupTasks(ctx *EvalContext, tasks []models.Task, groupBy string) []Group {
	if groupBy == "" {
		return []Group{{Key: AllGroup, Tasks: tasks}}
	}

	index := make(map[string]int)
	var groups []Group
	for _, task := range tasks {
		key := groupKey(ctx, task, groupBy)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Tasks = append(groups[i].Tasks, task)
	}
	return groups
}

func groupKey(ctx *EvalContext, task models.Task, groupBy string) string {
	switch groupBy {
	case SortTitle:
		return task.Title
	case SortPriority:
		return fmt.Sprintf("Priority %d", task.Priority)
	case SortProject:
		return projectName(ctx, task)
	case SortDueDate:
		if task.DueDate == nil {
			return NoDueDateGroup
		}
		return dateparse.DayKey(*task.DueDate)
	default:
		return AllGroup
	}
}
