package filter

import (
	"errors"

	"github.com/taskpro/taskpro/internal/models"
)

// ErrStandardFilter is returned when a mutation targets a built-in filter.
var ErrStandardFilter = errors.New("standard filters cannot be modified")

// Standard filter IDs. These are process-wide constants, never persisted.
const (
	StandardToday     = "today"
	StandardUpcoming  = "upcoming"
	StandardPriority1 = "priority1"
)

var standardFilters = []models.Filter{
	{
		ID:       StandardToday,
		Name:     "Today",
		Standard: true,
		Conditions: models.ConditionSet{
			Combinator: models.CombinatorAnd,
			Items: []models.Condition{
				{Type: models.ConditionDue, Operator: models.OpEquals, Value: models.DueToday},
				{Type: models.ConditionCompleted, Operator: models.OpEquals, Value: "false"},
			},
		},
	},
	{
		ID:       StandardUpcoming,
		Name:     "Upcoming",
		Standard: true,
		Conditions: models.ConditionSet{
			Combinator: models.CombinatorAnd,
			Items: []models.Condition{
				{Type: models.ConditionDue, Operator: models.OpEquals, Value: models.DueThisWeek},
				{Type: models.ConditionCompleted, Operator: models.OpEquals, Value: "false"},
			},
		},
	},
	{
		ID:       StandardPriority1,
		Name:     "Priority 1",
		Standard: true,
		Conditions: models.ConditionSet{
			Combinator: models.CombinatorAnd,
			Items: []models.Condition{
				{Type: models.ConditionPriority, Operator: models.OpEquals, Value: "1"},
				{Type: models.ConditionCompleted, Operator: models.OpEquals, Value: "false"},
			},
		},
	},
}

// StandardFilters returns copies of the built-in filters. Callers get fresh
// values so the process-wide definitions cannot be mutated through the slice.
func StandardFilters() []models.Filter {
	out := make([]models.Filter, len(standardFilters))
	copy(out, standardFilters)
	return out
}

// GetStandard returns the built-in filter with the given id, or nil.
func GetStandard(id string) *models.Filter {
	for _, f := range standardFilters {
		if f.ID == id {
			cp := f
			return &cp
		}
	}
	return nil
}

// IsStandard reports whether id names a built-in filter.
func IsStandard(id string) bool {
	return GetStandard(id) != nil
}
