package billing

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/taskpro/taskpro/internal/cache"
	"github.com/taskpro/taskpro/internal/models"
	"github.com/taskpro/taskpro/internal/paypal"
	"github.com/taskpro/taskpro/internal/store"
)

// Return-URL query parameters set by the checkout redirect.
const (
	ParamSuccess        = "subscription_success"
	ParamSubscriptionID = "subscription_id"
	ParamPlanType       = "plan_type"
	ParamCancelled      = "subscription_cancelled"
)

// ReturnOutcome describes what a checkout redirect resolved to.
type ReturnOutcome int

const (
	// ReturnIgnored means the parameters carried no checkout result.
	ReturnIgnored ReturnOutcome = iota
	// ReturnActivated means the subscription was activated.
	ReturnActivated
	// ReturnDuplicate means this redirect was already processed.
	ReturnDuplicate
	// ReturnCancelled means the user backed out of checkout.
	ReturnCancelled
)

// StartCheckout creates a provider checkout for the plan and returns the
// approval URL to redirect the user to.
func (m *Manager) StartCheckout(userID string, plan models.PlanType) (*paypal.Checkout, error) {
	if !models.IsValidPlanType(plan) {
		return nil, fmt.Errorf("invalid plan type %q", plan)
	}
	checkout, err := m.provider.CreateCheckout(m.planID(plan), userID, m.cfg.ReturnURL, m.cfg.CancelURL)
	if err != nil {
		return nil, fmt.Errorf("create checkout: %w", err)
	}
	return checkout, nil
}

// ProcessReturn interprets the query parameters of a checkout redirect and
// runs the activation protocol when they carry a success result. The caller
// clears the parameters from the visible URL afterwards regardless of
// outcome.
func (m *Manager) ProcessReturn(userID string, params url.Values) (ReturnOutcome, error) {
	if params.Get(ParamCancelled) == "true" {
		return ReturnCancelled, nil
	}
	if params.Get(ParamSuccess) != "true" {
		return ReturnIgnored, nil
	}
	subID := params.Get(ParamSubscriptionID)
	if subID == "" {
		return ReturnIgnored, fmt.Errorf("success redirect missing %s", ParamSubscriptionID)
	}

	planHint := models.NormalizePlanType(params.Get(ParamPlanType))
	return m.Activate(userID, subID, planHint)
}

// Activate runs the activation handshake for a provider subscription id:
// fetch authoritative details from the provider, derive the plan type,
// compute the period window from now, and persist the active state in a
// single update keyed by user. Repeated calls with the same provider id are
// deduplicated for the token TTL; the token is always released when
// activation fails so a retry can proceed.
func (m *Manager) Activate(userID, providerSubID string, planHint models.PlanType) (ReturnOutcome, error) {
	if !m.acquireToken(providerSubID) {
		return ReturnDuplicate, nil
	}

	outcome, err := m.activate(userID, providerSubID, planHint)
	if err != nil {
		m.releaseToken(providerSubID)
		return outcome, err
	}
	return outcome, nil
}

func (m *Manager) activate(userID, providerSubID string, planHint models.PlanType) (ReturnOutcome, error) {
	provSub, err := m.provider.GetSubscription(providerSubID)
	if err != nil {
		return ReturnIgnored, fmt.Errorf("fetch provider subscription: %w", err)
	}
	if !provSub.Active() {
		return ReturnIgnored, fmt.Errorf("%w: status %s", ErrSubscriptionInactive, provSub.Status)
	}

	plan := m.planTypeFor(provSub.PlanID)
	if plan == "" {
		plan = planHint
	}
	if plan == "" {
		plan = models.PlanMonthly
	}

	now := m.now()
	end := periodEnd(now, plan)

	sub, err := m.EnsureTrial(userID)
	if err != nil {
		return ReturnIgnored, err
	}
	sub.Status = models.StatusActive
	sub.PlanType = plan
	sub.CurrentPeriodStart = &now
	sub.CurrentPeriodEnd = &end
	sub.ProviderSubID = providerSubID
	if err := m.store.UpdateSubscription(sub); err != nil {
		return ReturnIgnored, fmt.Errorf("persist activation: %w", err)
	}

	m.refreshAfterActivation(userID)
	return ReturnActivated, nil
}

// refreshAfterActivation refreshes the subscription cache immediately and
// schedules one delayed re-check to tolerate persistence lag. The delayed
// refresh is best effort; its failure is logged, never surfaced.
func (m *Manager) refreshAfterActivation(userID string) {
	m.cache.Invalidate(cache.EntitySubscriptions, userID)
	if _, err := m.Refresh(userID); err != nil {
		slog.Warn("post-activation cache refresh failed", "user", userID, "error", err)
	}

	time.AfterFunc(m.cfg.RecheckDelay, func() {
		if _, err := m.Refresh(userID); err != nil {
			slog.Warn("delayed subscription re-check failed", "user", userID, "error", err)
		}
	})
}

// acquireToken takes the deduplication token for a provider subscription id.
// Returns false when an unexpired token already exists.
func (m *Manager) acquireToken(providerSubID string) bool {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if expiry, ok := m.dedup[providerSubID]; ok && now.Before(expiry) {
		return false
	}
	m.dedup[providerSubID] = now.Add(m.cfg.DedupTTL)
	return true
}

func (m *Manager) releaseToken(providerSubID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.dedup, providerSubID)
}

// Cancel cancels the user's subscription. The provider-side cancel must
// succeed before the local status flips; billing state never diverges from
// the provider optimistically. Access remains until the period end.
func (m *Manager) Cancel(userID, reason string) error {
	sub, err := m.store.GetSubscription(userID)
	if err != nil {
		return err
	}
	if sub.ProviderSubID == "" {
		return ErrNoProviderSub
	}

	if err := m.provider.CancelSubscription(sub.ProviderSubID, reason); err != nil {
		return fmt.Errorf("provider cancel: %w", err)
	}

	sub.Status = models.StatusCanceled
	if err := m.store.UpdateSubscription(sub); err != nil {
		return fmt.Errorf("persist cancellation: %w", err)
	}
	m.cache.PutSubscription(userID, *sub)
	return nil
}

// Watch consumes subscription feed events for one user, refetching the row
// on every external write so projections recompute from authoritative state.
// Run it in its own goroutine; it returns when the channel closes.
func (m *Manager) Watch(ch <-chan store.Event) {
	for ev := range ch {
		if !m.cache.ObserveEvent(ev) {
			continue
		}
		if _, err := m.Refresh(ev.UserID); err != nil && !errors.Is(err, store.ErrNotFound) {
			slog.Warn("subscription refresh after feed event failed", "user", ev.UserID, "error", err)
		}
	}
}
