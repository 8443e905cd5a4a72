package filter

import (
	"fmt"

	"github.com/taskpro/taskpro/internal/models"
)

// ConditionBadges maps a filter's stored conditions to human-readable labels
// for display, e.g. "Due today", "Priority 1", or a resolved project name.
func ConditionBadges(ctx *EvalContext, f *models.Filter) []string {
	badges := make([]string, 0, len(f.Conditions.Items))
	for _, c := range f.Conditions.Items {
		badges = append(badges, conditionBadge(ctx, c))
	}
	return badges
}

func conditionBadge(ctx *EvalContext, c models.Condition) string {
	prefix := ""
	if c.Operator == models.OpNotEquals {
		prefix = "Not "
	}

	switch c.Type {
	case models.ConditionDue:
		switch c.Value {
		case models.DueToday:
			return prefix + "Due today"
		case models.DueTomorrow:
			return prefix + "Due tomorrow"
		case models.DueThisWeek:
			return prefix + "Due this week"
		case models.DueNextWeek:
			return prefix + "Due next week"
		default:
			return fmt.Sprintf("%sDue %s", prefix, c.Value)
		}
	case models.ConditionPriority:
		return fmt.Sprintf("%sPriority %s", prefix, c.Value)
	case models.ConditionProject:
		if c.Value == models.ProjectInbox {
			return prefix + "Inbox"
		}
		if ctx != nil && ctx.ProjectNames != nil {
			if name, ok := ctx.ProjectNames[c.Value]; ok {
				return prefix + name
			}
		}
		return prefix + c.Value
	case models.ConditionCompleted:
		if c.Value == "true" {
			return prefix + "Completed"
		}
		return prefix + "Not completed"
	case models.ConditionFavorite:
		if c.Value == "true" {
			return prefix + "Favorite"
		}
		return prefix + "Not favorite"
	default:
		return fmt.Sprintf("%s%s %s", prefix, c.Type, c.Value)
	}
}
