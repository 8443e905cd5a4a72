package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taskpro/taskpro/internal/models"
)

// GetSubscription returns the user's subscription row, or ErrNotFound when
// the user has never been provisioned.
func (s *Store) GetSubscription(userID string) (*models.Subscription, error) {
	var sub models.Subscription
	var planType, providerID sql.NullString
	var trialStart, trialEnd, periodStart, periodEnd sql.NullTime

	err := s.conn.QueryRow(`
		SELECT id, user_id, status, plan_type, trial_start_date, trial_end_date,
		       current_period_start, current_period_end, provider_subscription_id, created_at, updated_at
		FROM subscriptions WHERE user_id = ?
	`, userID).Scan(
		&sub.ID, &sub.UserID, &sub.Status, &planType, &trialStart, &trialEnd,
		&periodStart, &periodEnd, &providerID, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("subscription for user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	sub.PlanType = models.PlanType(planType.String)
	sub.ProviderSubID = providerID.String
	if trialStart.Valid {
		sub.TrialStartDate = &trialStart.Time
	}
	if trialEnd.Valid {
		sub.TrialEndDate = &trialEnd.Time
	}
	if periodStart.Valid {
		sub.CurrentPeriodStart = &periodStart.Time
	}
	if periodEnd.Valid {
		sub.CurrentPeriodEnd = &periodEnd.Time
	}
	return &sub, nil
}

// CreateSubscription inserts a subscription row. The UNIQUE constraint on
// user_id enforces at most one row per user.
func (s *Store) CreateSubscription(sub *models.Subscription) error {
	if !models.IsValidStatus(sub.Status) {
		return fmt.Errorf("invalid subscription status %q", sub.Status)
	}

	err := s.withWriteLock(func() error {
		if sub.ID == "" {
			sub.ID = uuid.NewString()
		}
		now := time.Now()
		sub.CreatedAt = now
		sub.UpdatedAt = now

		_, err := s.conn.Exec(`
			INSERT INTO subscriptions (id, user_id, status, plan_type, trial_start_date, trial_end_date,
			                           current_period_start, current_period_end, provider_subscription_id,
			                           created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sub.ID, sub.UserID, sub.Status, string(sub.PlanType), sub.TrialStartDate, sub.TrialEndDate,
			sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.ProviderSubID, sub.CreatedAt, sub.UpdatedAt)
		return err
	})
	if err != nil {
		return err
	}

	s.feed.Publish("subscriptions", OpInsert, sub.UserID, sub.ID)
	return nil
}

// UpdateSubscription persists new subscription state in a single update
// keyed by user id.
func (s *Store) UpdateSubscription(sub *models.Subscription) error {
	if !models.IsValidStatus(sub.Status) {
		return fmt.Errorf("invalid subscription status %q", sub.Status)
	}

	err := s.withWriteLock(func() error {
		sub.UpdatedAt = time.Now()
		res, err := s.conn.Exec(`
			UPDATE subscriptions SET status = ?, plan_type = ?, trial_start_date = ?, trial_end_date = ?,
			                         current_period_start = ?, current_period_end = ?,
			                         provider_subscription_id = ?, updated_at = ?
			WHERE user_id = ?
		`, sub.Status, string(sub.PlanType), sub.TrialStartDate, sub.TrialEndDate,
			sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.ProviderSubID, sub.UpdatedAt, sub.UserID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("subscription for user %s: %w", sub.UserID, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.feed.Publish("subscriptions", OpUpdate, sub.UserID, sub.ID)
	return nil
}
