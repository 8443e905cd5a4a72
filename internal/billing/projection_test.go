package billing

import (
	"testing"
	"time"

	"github.com/taskpro/taskpro/internal/models"
)

var projNow = time.Date(2026, 1, 14, 10, 30, 0, 0, time.UTC)

func tp(t time.Time) *time.Time { return &t }

func TestProject(t *testing.T) {
	tests := []struct {
		name              string
		sub               models.Subscription
		wantStatus        models.SubscriptionStatus
		wantActive        bool
		wantTrialActive   bool
		wantDaysRemaining int
	}{
		{
			name: "trial in window",
			sub: models.Subscription{
				Status:       models.StatusTrial,
				TrialEndDate: tp(projNow.AddDate(0, 0, 10)),
			},
			wantStatus:        models.StatusTrial,
			wantActive:        true,
			wantTrialActive:   true,
			wantDaysRemaining: 10,
		},
		{
			name: "trial ended reads as expired",
			sub: models.Subscription{
				Status:       models.StatusTrial,
				TrialEndDate: tp(projNow.Add(-time.Hour)),
			},
			wantStatus: models.StatusExpired,
		},
		{
			name: "active in period",
			sub: models.Subscription{
				Status:           models.StatusActive,
				PlanType:         models.PlanMonthly,
				CurrentPeriodEnd: tp(projNow.AddDate(0, 0, 20)),
			},
			wantStatus:        models.StatusActive,
			wantActive:        true,
			wantDaysRemaining: 20,
		},
		{
			name: "active past period end reads as expired",
			sub: models.Subscription{
				Status:           models.StatusActive,
				CurrentPeriodEnd: tp(projNow.Add(-time.Minute)),
			},
			wantStatus: models.StatusExpired,
		},
		{
			name: "canceled keeps access until period end",
			sub: models.Subscription{
				Status:           models.StatusCanceled,
				CurrentPeriodEnd: tp(projNow.AddDate(0, 0, 5)),
			},
			wantStatus:        models.StatusCanceled,
			wantActive:        true,
			wantDaysRemaining: 5,
		},
		{
			name: "canceled past period end",
			sub: models.Subscription{
				Status:           models.StatusCanceled,
				CurrentPeriodEnd: tp(projNow.Add(-time.Hour)),
			},
			wantStatus: models.StatusCanceled,
		},
		{
			name: "partial day rounds up",
			sub: models.Subscription{
				Status:       models.StatusTrial,
				TrialEndDate: tp(projNow.Add(25 * time.Hour)),
			},
			wantStatus:        models.StatusTrial,
			wantActive:        true,
			wantTrialActive:   true,
			wantDaysRemaining: 2,
		},
		{
			name: "expiry floors at zero",
			sub: models.Subscription{
				Status:       models.StatusTrial,
				TrialEndDate: tp(projNow.AddDate(0, 0, -30)),
			},
			wantStatus:        models.StatusExpired,
			wantDaysRemaining: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Project(&tt.sub, projNow)
			if p.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", p.Status, tt.wantStatus)
			}
			if p.IsActive != tt.wantActive {
				t.Errorf("IsActive = %v, want %v", p.IsActive, tt.wantActive)
			}
			if p.IsTrialActive != tt.wantTrialActive {
				t.Errorf("IsTrialActive = %v, want %v", p.IsTrialActive, tt.wantTrialActive)
			}
			if p.DaysRemaining != tt.wantDaysRemaining {
				t.Errorf("DaysRemaining = %d, want %d", p.DaysRemaining, tt.wantDaysRemaining)
			}
		})
	}
}

func TestProjectionIsPureFunctionOfNow(t *testing.T) {
	sub := models.Subscription{
		Status:       models.StatusTrial,
		TrialEndDate: tp(projNow.AddDate(0, 0, 1)),
	}

	before := Project(&sub, projNow)
	after := Project(&sub, projNow.AddDate(0, 0, 2))
	if !before.IsActive || after.IsActive {
		t.Error("projection must flip with the clock, not with stored state")
	}
	if after.Status != models.StatusExpired {
		t.Errorf("after status = %q, want expired", after.Status)
	}
}
