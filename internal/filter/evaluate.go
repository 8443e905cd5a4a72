package filter

import (
	"strconv"
	"time"

	"github.com/taskpro/taskpro/internal/dateparse"
	"github.com/taskpro/taskpro/internal/models"
)

// EvalContext provides context for filter evaluation.
type EvalContext struct {
	Now          time.Time         // injectable clock for deterministic evaluation
	ProjectNames map[string]string // project id -> display name, for sort/group/badges
}

// NewEvalContext creates an evaluation context anchored at the current time.
func NewEvalContext() *EvalContext {
	return &EvalContext{Now: time.Now()}
}

// Evaluate returns the subsequence of tasks matching the filter's condition
// set. Pure function of its inputs: no side effects, idempotent, and the
// output preserves input task order.
func Evaluate(ctx *EvalContext, tasks []models.Task, f *models.Filter) []models.Task {
	cs := f.Conditions
	combinator := models.NormalizeCombinator(string(cs.Combinator))

	var out []models.Task
	for _, task := range tasks {
		if matches(ctx, task, cs.Items, combinator) {
			out = append(out, task)
		}
	}
	return out
}

// matches combines per-condition results with the filter's combinator.
// A filter with no conditions matches everything.
func matches(ctx *EvalContext, task models.Task, conds []models.Condition, combinator models.Combinator) bool {
	if len(conds) == 0 {
		return true
	}

	if combinator == models.CombinatorOr {
		for _, c := range conds {
			if evalCondition(ctx, task, c) {
				return true
			}
		}
		return false
	}

	for _, c := range conds {
		if !evalCondition(ctx, task, c) {
			return false
		}
	}
	return true
}

// evalCondition evaluates a single condition against a task. Unrecognized
// condition types evaluate to true: the permissive pass-through keeps filters
// created by newer clients from hiding every task on older ones.
func evalCondition(ctx *EvalContext, task models.Task, c models.Condition) bool {
	var result bool
	switch c.Type {
	case models.ConditionDue:
		result = evalDue(ctx, task, c.Value)
	case models.ConditionPriority:
		n, err := strconv.Atoi(c.Value)
		result = err == nil && task.Priority == n
	case models.ConditionProject:
		if c.Value == models.ProjectInbox {
			result = task.ProjectID == ""
		} else {
			result = task.ProjectID == c.Value
		}
	case models.ConditionCompleted:
		result = task.Completed == (c.Value == "true")
	case models.ConditionFavorite:
		result = task.Favorite == (c.Value == "true")
	default:
		return true
	}

	if c.Operator == models.OpNotEquals {
		return !result
	}
	return result
}

// evalDue buckets a task's due date against a due keyword or explicit date.
// Tasks without a due date never match a due condition (before operator
// inversion).
func evalDue(ctx *EvalContext, task models.Task, value string) bool {
	if task.DueDate == nil {
		return false
	}
	due := *task.DueDate

	switch value {
	case models.DueToday:
		return dateparse.SameDay(ctx.Now, due)
	case models.DueTomorrow:
		return dateparse.SameDay(ctx.Now.AddDate(0, 0, 1), due)
	case models.DueThisWeek:
		return dateparse.WithinDays(due, ctx.Now, 7)
	case models.DueNextWeek:
		start, end := dateparse.NextWeekRange(ctx.Now)
		return !due.Before(start) && !due.After(end)
	default:
		// Explicit ISO date
		target, err := time.ParseInLocation("2006-01-02", value, ctx.Now.Location())
		if err != nil {
			return false
		}
		return dateparse.SameDay(target, due)
	}
}
