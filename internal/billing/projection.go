package billing

import (
	"time"

	"github.com/taskpro/taskpro/internal/models"
)

// Projection is the derived access view consumers read instead of the raw
// subscription row. It is a pure function of stored timestamps and the
// current time, recomputed on every read.
type Projection struct {
	// Status is the effective status: a trial past its end or an active
	// period past its end reads as expired even when the stored status
	// string has not been rewritten.
	Status        models.SubscriptionStatus
	PlanType      models.PlanType
	IsActive      bool
	IsTrialActive bool
	DaysRemaining int
	ExpiresAt     *time.Time
	ProviderSubID string
}

// Project computes the access projection for a subscription at the given
// time.
func Project(sub *models.Subscription, now time.Time) Projection {
	p := Projection{
		Status:        sub.Status,
		PlanType:      sub.PlanType,
		ProviderSubID: sub.ProviderSubID,
	}

	trialActive := sub.Status == models.StatusTrial &&
		sub.TrialEndDate != nil && now.Before(*sub.TrialEndDate)
	p.IsTrialActive = trialActive

	// A canceled subscription keeps access until its paid period ends.
	periodActive := (sub.Status == models.StatusActive || sub.Status == models.StatusCanceled) &&
		sub.CurrentPeriodEnd != nil && now.Before(*sub.CurrentPeriodEnd)
	p.IsActive = trialActive || periodActive

	switch {
	case trialActive:
		p.ExpiresAt = sub.TrialEndDate
	case sub.CurrentPeriodEnd != nil:
		p.ExpiresAt = sub.CurrentPeriodEnd
	case sub.TrialEndDate != nil:
		p.ExpiresAt = sub.TrialEndDate
	}
	p.DaysRemaining = daysRemaining(p.ExpiresAt, now)

	switch sub.Status {
	case models.StatusTrial:
		if !trialActive {
			p.Status = models.StatusExpired
		}
	case models.StatusActive:
		if !periodActive {
			p.Status = models.StatusExpired
		}
	}
	return p
}

// daysRemaining is the ceiling of the time left in days, floored at zero.
func daysRemaining(end *time.Time, now time.Time) int {
	if end == nil || !now.Before(*end) {
		return 0
	}
	remaining := end.Sub(now)
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) != 0 {
		days++
	}
	return days
}
