package dateparse

import (
	"testing"
	"time"
)

// Wednesday, 2026-01-14 10:30 local
var refNow = time.Date(2026, 1, 14, 10, 30, 0, 0, time.Local)

func TestParseDateFrom(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"2026-03-01", "2026-03-01", false},
		{"today", "2026-01-14", false},
		{"tomorrow", "2026-01-15", false},
		{"this-week", "2026-01-21", false},
		{"next-week", "2026-01-19", false}, // next Monday
		{"+7d", "2026-01-21", false},
		{"+2w", "2026-01-28", false},
		{"+1m", "2026-02-14", false},
		{"monday", "2026-01-19", false},
		{"wednesday", "2026-01-21", false}, // same weekday advances a full week
		{"friday", "2026-01-16", false},
		{"TODAY", "2026-01-14", false},
		{"  tomorrow  ", "2026-01-15", false},
		{"", "", true},
		{"+3x", "", true},
		{"someday", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDateFrom(tt.input, refNow)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDateFrom(%q) expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDateFrom(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("ParseDateFrom(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.want)
		}
		if got.Hour() != 0 || got.Minute() != 0 {
			t.Errorf("ParseDateFrom(%q) not at midnight: %v", tt.input, got)
		}
	}
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2026, 1, 14, 0, 0, 1, 0, time.Local)
	night := time.Date(2026, 1, 14, 23, 59, 59, 0, time.Local)
	nextDay := time.Date(2026, 1, 15, 0, 0, 0, 0, time.Local)

	if !SameDay(morning, night) {
		t.Error("SameDay(morning, night) = false, want true")
	}
	if SameDay(night, nextDay) {
		t.Error("SameDay(night, nextDay) = true, want false")
	}
}

func TestWithinDays(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"now itself", refNow, true},
		{"earlier today", StartOfDay(refNow), true},
		{"exactly 7 days out", refNow.AddDate(0, 0, 7), true},
		{"end of day 7", StartOfDay(refNow.AddDate(0, 0, 7)).Add(23 * time.Hour), true},
		{"8 days out", refNow.AddDate(0, 0, 8), false},
		{"yesterday", refNow.AddDate(0, 0, -1), false},
	}

	for _, tt := range tests {
		if got := WithinDays(tt.t, refNow, 7); got != tt.want {
			t.Errorf("%s: WithinDays = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNextWeekRange(t *testing.T) {
	start, end := NextWeekRange(refNow)
	if start.Format("2006-01-02") != "2026-01-19" {
		t.Errorf("next week start = %s, want 2026-01-19", start.Format("2006-01-02"))
	}
	if end.Format("2006-01-02") != "2026-01-25" {
		t.Errorf("next week end = %s, want 2026-01-25", end.Format("2006-01-02"))
	}

	// From a Monday, next week still starts the following Monday.
	monday := time.Date(2026, 1, 19, 9, 0, 0, 0, time.Local)
	start, _ = NextWeekRange(monday)
	if start.Format("2006-01-02") != "2026-01-26" {
		t.Errorf("next week start from Monday = %s, want 2026-01-26", start.Format("2006-01-02"))
	}
}
