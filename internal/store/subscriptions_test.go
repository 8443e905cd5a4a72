package store

import (
	"errors"
	"testing"
	"time"

	"github.com/taskpro/taskpro/internal/models"
)

func TestSubscriptionLifecycleRows(t *testing.T) {
	s := testStore(t)

	if _, err := s.GetSubscription(testUser); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetSubscription before create = %v, want ErrNotFound", err)
	}

	trialEnds := time.Now().AddDate(0, 0, 14).UTC().Truncate(time.Second)
	sub := &models.Subscription{
		UserID:       testUser,
		Status:       models.StatusTrial,
		TrialEndDate: &trialEnds,
	}
	if err := s.CreateSubscription(sub); err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if sub.ID == "" {
		t.Fatal("CreateSubscription did not assign an ID")
	}

	got, err := s.GetSubscription(testUser)
	if err != nil {
		t.Fatalf("GetSubscription: %v", err)
	}
	if got.Status != models.StatusTrial {
		t.Errorf("status = %q, want trial", got.Status)
	}
	if got.TrialEndDate == nil || !got.TrialEndDate.Equal(trialEnds) {
		t.Errorf("trial ends = %v, want %v", got.TrialEndDate, trialEnds)
	}
	if got.ProviderSubID != "" || got.CurrentPeriodEnd != nil {
		t.Error("unset fields must come back empty")
	}

	// Activation rewrites the same row, keyed by user.
	periodEnd := trialEnds.AddDate(0, 1, 0)
	got.Status = models.StatusActive
	got.PlanType = models.PlanMonthly
	got.ProviderSubID = "I-ABC123"
	got.CurrentPeriodEnd = &periodEnd
	if err := s.UpdateSubscription(got); err != nil {
		t.Fatalf("UpdateSubscription: %v", err)
	}

	again, err := s.GetSubscription(testUser)
	if err != nil {
		t.Fatalf("GetSubscription after activate: %v", err)
	}
	if again.ID != sub.ID {
		t.Errorf("activation created a new row: %s vs %s", again.ID, sub.ID)
	}
	if again.Status != models.StatusActive || again.ProviderSubID != "I-ABC123" {
		t.Errorf("got %+v", again)
	}

	// The user_id unique index keeps one subscription per user.
	second := &models.Subscription{UserID: testUser, Status: models.StatusTrial}
	if err := s.CreateSubscription(second); err == nil {
		t.Error("second subscription for same user should fail")
	}
}

func TestCreateSubscriptionValidatesStatus(t *testing.T) {
	s := testStore(t)

	sub := &models.Subscription{UserID: testUser, Status: "suspended"}
	if err := s.CreateSubscription(sub); err == nil {
		t.Error("unknown status should be rejected")
	}
}

func TestUpdateSubscriptionMissingUser(t *testing.T) {
	s := testStore(t)

	sub := &models.Subscription{UserID: "nobody", Status: models.StatusActive}
	if err := s.UpdateSubscription(sub); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateSubscription missing = %v, want ErrNotFound", err)
	}
}
