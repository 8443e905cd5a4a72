package filter

import (
	"testing"
	"time"

	"github.com/taskpro/taskpro/internal/models"
)

// Wednesday, 2026-01-14 10:30 local
var testNow = time.Date(2026, 1, 14, 10, 30, 0, 0, time.Local)

func testCtx() *EvalContext {
	return &EvalContext{Now: testNow}
}

func datePtr(t time.Time) *time.Time { return &t }

func dueAt(daysFromNow int) *time.Time {
	d := testNow.AddDate(0, 0, daysFromNow)
	return &d
}

func filterWith(combinator models.Combinator, conds ...models.Condition) *models.Filter {
	return &models.Filter{
		ID:   "fl-test",
		Name: "test",
		Conditions: models.ConditionSet{
			Combinator: combinator,
			Items:      conds,
		},
	}
}

func TestEvaluateSingleConditions(t *testing.T) {
	tests := []struct {
		name    string
		task    models.Task
		cond    models.Condition
		matches bool
	}{
		{
			name:    "due today matches",
			task:    models.Task{ID: "tk-1", DueDate: dueAt(0)},
			cond:    models.Condition{Type: models.ConditionDue, Operator: models.OpEquals, Value: "today"},
			matches: true,
		},
		{
			name:    "due today rejects tomorrow",
			task:    models.Task{ID: "tk-2", DueDate: dueAt(1)},
			cond:    models.Condition{Type: models.ConditionDue, Operator: models.OpEquals, Value: "today"},
			matches: false,
		},
		{
			name:    "due today rejects no due date",
			task:    models.Task{ID: "tk-3"},
			cond:    models.Condition{Type: models.ConditionDue, Operator: models.OpEquals, Value: "today"},
			matches: false,
		},
		{
			name:    "due tomorrow",
			task:    models.Task{ID: "tk-4", DueDate: dueAt(1)},
			cond:    models.Condition{Type: models.ConditionDue, Operator: models.OpEquals, Value: "tomorrow"},
			matches: true,
		},
		{
			name:    "due this_week includes day 7",
			task:    models.Task{ID: "tk-5", DueDate: dueAt(7)},
			cond:    models.Condition{Type: models.ConditionDue, Operator: models.OpEquals, Value: "this_week"},
			matches: true,
		},
		{
			name:    "due this_week excludes day 8",
			task:    models.Task{ID: "tk-6", DueDate: dueAt(8)},
			cond:    models.Condition{Type: models.ConditionDue, Operator: models.OpEquals, Value: "this_week"},
			matches: false,
		},
		{
			name:    "due next_week matches next Monday",
			task:    models.Task{ID: "tk-7", DueDate: datePtr(time.Date(2026, 1, 19, 12, 0, 0, 0, time.Local))},
			cond:    models.Condition{Type: models.ConditionDue, Operator: models.OpEquals, Value: "next_week"},
			matches: true,
		},
		{
			name:    "due explicit ISO date",
			task:    models.Task{ID: "tk-8", DueDate: datePtr(time.Date(2026, 2, 1, 18, 30, 0, 0, time.Local))},
			cond:    models.Condition{Type: models.ConditionDue, Operator: models.OpEquals, Value: "2026-02-01"},
			matches: true,
		},
		{
			name:    "priority exact match",
			task:    models.Task{ID: "tk-9", Priority: 1},
			cond:    models.Condition{Type: models.ConditionPriority, Operator: models.OpEquals, Value: "1"},
			matches: true,
		},
		{
			name:    "priority mismatch",
			task:    models.Task{ID: "tk-10", Priority: 2},
			cond:    models.Condition{Type: models.ConditionPriority, Operator: models.OpEquals, Value: "1"},
			matches: false,
		},
		{
			name:    "priority not_equals",
			task:    models.Task{ID: "tk-11", Priority: 2},
			cond:    models.Condition{Type: models.ConditionPriority, Operator: models.OpNotEquals, Value: "1"},
			matches: true,
		},
		{
			name:    "project exact id",
			task:    models.Task{ID: "tk-12", ProjectID: "pr-abc"},
			cond:    models.Condition{Type: models.ConditionProject, Operator: models.OpEquals, Value: "pr-abc"},
			matches: true,
		},
		{
			name:    "project inbox matches empty ref",
			task:    models.Task{ID: "tk-13"},
			cond:    models.Condition{Type: models.ConditionProject, Operator: models.OpEquals, Value: "inbox"},
			matches: true,
		},
		{
			name:    "project inbox rejects assigned task",
			task:    models.Task{ID: "tk-14", ProjectID: "pr-abc"},
			cond:    models.Condition{Type: models.ConditionProject, Operator: models.OpEquals, Value: "inbox"},
			matches: false,
		},
		{
			name:    "completed true",
			task:    models.Task{ID: "tk-15", Completed: true},
			cond:    models.Condition{Type: models.ConditionCompleted, Operator: models.OpEquals, Value: "true"},
			matches: true,
		},
		{
			name:    "completed false",
			task:    models.Task{ID: "tk-16"},
			cond:    models.Condition{Type: models.ConditionCompleted, Operator: models.OpEquals, Value: "false"},
			matches: true,
		},
		{
			name:    "favorite",
			task:    models.Task{ID: "tk-17", Favorite: true},
			cond:    models.Condition{Type: models.ConditionFavorite, Operator: models.OpEquals, Value: "true"},
			matches: true,
		},
		{
			name:    "unknown condition type passes through",
			task:    models.Task{ID: "tk-18"},
			cond:    models.Condition{Type: "label", Operator: models.OpEquals, Value: "urgent"},
			matches: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(testCtx(), []models.Task{tt.task}, filterWith(models.CombinatorAnd, tt.cond))
			if (len(got) == 1) != tt.matches {
				t.Errorf("matched=%v, want %v", len(got) == 1, tt.matches)
			}
		})
	}
}

func TestEvaluateAndOr(t *testing.T) {
	// priority=1, project=none (inbox), due=today
	task := models.Task{ID: "tk-1", Priority: 1, DueDate: dueAt(0)}

	// AND over [priority=1, project=inbox] includes the task
	f := filterWith(models.CombinatorAnd,
		models.Condition{Type: models.ConditionPriority, Operator: models.OpEquals, Value: "1"},
		models.Condition{Type: models.ConditionProject, Operator: models.OpEquals, Value: "inbox"},
	)
	if got := Evaluate(testCtx(), []models.Task{task}, f); len(got) != 1 {
		t.Error("AND [priority=1, project=inbox] should include the task")
	}

	// OR over [priority=2, due=today] includes the task (due matches)
	f = filterWith(models.CombinatorOr,
		models.Condition{Type: models.ConditionPriority, Operator: models.OpEquals, Value: "2"},
		models.Condition{Type: models.ConditionDue, Operator: models.OpEquals, Value: "today"},
	)
	if got := Evaluate(testCtx(), []models.Task{task}, f); len(got) != 1 {
		t.Error("OR [priority=2, due=today] should include the task")
	}

	// AND over the same conditions excludes it (priority fails)
	f = filterWith(models.CombinatorAnd,
		models.Condition{Type: models.ConditionPriority, Operator: models.OpEquals, Value: "2"},
		models.Condition{Type: models.ConditionDue, Operator: models.OpEquals, Value: "today"},
	)
	if got := Evaluate(testCtx(), []models.Task{task}, f); len(got) != 0 {
		t.Error("AND [priority=2, due=today] should exclude the task")
	}
}

func TestEvaluateDefaultsToAnd(t *testing.T) {
	task := models.Task{ID: "tk-1", Priority: 2, DueDate: dueAt(0)}
	f := filterWith("", // unspecified combinator
		models.Condition{Type: models.ConditionPriority, Operator: models.OpEquals, Value: "1"},
		models.Condition{Type: models.ConditionDue, Operator: models.OpEquals, Value: "today"},
	)
	if got := Evaluate(testCtx(), []models.Task{task}, f); len(got) != 0 {
		t.Error("unspecified combinator must behave as AND")
	}
}

func TestEvaluateDeterministicAndOrderPreserving(t *testing.T) {
	tasks := []models.Task{
		{ID: "tk-c", Priority: 1},
		{ID: "tk-a", Priority: 1},
		{ID: "tk-b", Priority: 2},
		{ID: "tk-d", Priority: 1},
	}
	f := filterWith(models.CombinatorAnd,
		models.Condition{Type: models.ConditionPriority, Operator: models.OpEquals, Value: "1"},
	)

	first := Evaluate(testCtx(), tasks, f)
	second := Evaluate(testCtx(), tasks, f)

	wantOrder := []string{"tk-c", "tk-a", "tk-d"}
	if len(first) != len(wantOrder) {
		t.Fatalf("got %d tasks, want %d", len(first), len(wantOrder))
	}
	for i, id := range wantOrder {
		if first[i].ID != id {
			t.Errorf("order[%d] = %s, want %s", i, first[i].ID, id)
		}
		if second[i].ID != first[i].ID {
			t.Errorf("second evaluation diverged at %d", i)
		}
	}
}

func TestEvaluateEmptyFilterMatchesAll(t *testing.T) {
	tasks := []models.Task{{ID: "tk-1"}, {ID: "tk-2"}}
	f := filterWith(models.CombinatorAnd)
	if got := Evaluate(testCtx(), tasks, f); len(got) != 2 {
		t.Errorf("empty filter matched %d tasks, want 2", len(got))
	}
}
