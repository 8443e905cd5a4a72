package models

import "testing"

func TestIsValidPriority(t *testing.T) {
	tests := []struct {
		priority int
		valid    bool
	}{
		{0, false},
		{1, true},
		{2, true},
		{3, true},
		{4, true},
		{5, false},
		{-1, false},
	}

	for _, tt := range tests {
		if got := IsValidPriority(tt.priority); got != tt.valid {
			t.Errorf("IsValidPriority(%d) = %v, want %v", tt.priority, got, tt.valid)
		}
	}
}

func TestIsValidStatus(t *testing.T) {
	valid := []SubscriptionStatus{StatusTrial, StatusActive, StatusExpired, StatusCanceled}
	for _, s := range valid {
		if !IsValidStatus(s) {
			t.Errorf("IsValidStatus(%q) = false, want true", s)
		}
	}
	if IsValidStatus("pending") {
		t.Error("IsValidStatus(pending) = true, want false")
	}
}

func TestNormalizeCombinator(t *testing.T) {
	tests := []struct {
		in   string
		want Combinator
	}{
		{"", CombinatorAnd},
		{"and", CombinatorAnd},
		{"AND", CombinatorAnd},
		{"all", CombinatorAnd},
		{"or", CombinatorOr},
		{"OR", CombinatorOr},
		{"any", CombinatorOr},
		{"xor", Combinator("xor")},
	}

	for _, tt := range tests {
		if got := NormalizeCombinator(tt.in); got != tt.want {
			t.Errorf("NormalizeCombinator(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePlanType(t *testing.T) {
	if got := NormalizePlanType("month"); got != PlanMonthly {
		t.Errorf("NormalizePlanType(month) = %q, want monthly", got)
	}
	if got := NormalizePlanType("year"); got != PlanYearly {
		t.Errorf("NormalizePlanType(year) = %q, want yearly", got)
	}
	if got := NormalizePlanType("monthly"); got != PlanMonthly {
		t.Errorf("NormalizePlanType(monthly) = %q, want monthly", got)
	}
}

func TestIsValidConditionType(t *testing.T) {
	for _, ct := range []ConditionType{ConditionDue, ConditionPriority, ConditionProject, ConditionCompleted, ConditionFavorite} {
		if !IsValidConditionType(ct) {
			t.Errorf("IsValidConditionType(%q) = false, want true", ct)
		}
	}
	if IsValidConditionType("label") {
		t.Error("IsValidConditionType(label) = true, want false")
	}
}
