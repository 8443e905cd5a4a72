package filter

import (
	"testing"

	"github.com/taskpro/taskpro/internal/models"
)

func TestConditionBadges(t *testing.T) {
	ctx := testCtx()
	ctx.ProjectNames = map[string]string{"pr-1": "Work"}

	f := filterWith(models.CombinatorAnd,
		models.Condition{Type: models.ConditionDue, Operator: models.OpEquals, Value: "today"},
		models.Condition{Type: models.ConditionPriority, Operator: models.OpEquals, Value: "1"},
		models.Condition{Type: models.ConditionProject, Operator: models.OpEquals, Value: "pr-1"},
		models.Condition{Type: models.ConditionProject, Operator: models.OpEquals, Value: "pr-gone"},
		models.Condition{Type: models.ConditionProject, Operator: models.OpEquals, Value: "inbox"},
		models.Condition{Type: models.ConditionCompleted, Operator: models.OpEquals, Value: "false"},
		models.Condition{Type: models.ConditionFavorite, Operator: models.OpNotEquals, Value: "true"},
	)

	got := ConditionBadges(ctx, f)
	want := []string{
		"Due today",
		"Priority 1",
		"Work",
		"pr-gone", // unresolvable project falls back to the raw id
		"Inbox",
		"Not completed",
		"Not Favorite",
	}

	if len(got) != len(want) {
		t.Fatalf("got %d badges, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("badge[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
