// Package billing manages the subscription lifecycle: trial provisioning,
// provider-backed activation and cancellation, and the derived access
// projections consumers read instead of raw subscription rows.
package billing

import (
	"errors"
	"sync"
	"time"

	"github.com/taskpro/taskpro/internal/cache"
	"github.com/taskpro/taskpro/internal/models"
	"github.com/taskpro/taskpro/internal/paypal"
	"github.com/taskpro/taskpro/internal/store"
)

// TrialDays is the length of the provisioning trial.
const TrialDays = 14

var (
	// ErrNoProviderSub is returned by Cancel when the subscription was
	// never activated with the provider.
	ErrNoProviderSub = errors.New("subscription has no provider subscription id")

	// ErrSubscriptionInactive is returned by Activate when the provider
	// reports the subscription as not billable.
	ErrSubscriptionInactive = errors.New("provider subscription is not active")
)

// Provider is the payment-provider surface the manager depends on.
// *paypal.Client satisfies it.
type Provider interface {
	CreateCheckout(planID, userID, returnURL, cancelURL string) (*paypal.Checkout, error)
	GetSubscription(id string) (*paypal.Subscription, error)
	CancelSubscription(id, reason string) error
}

// Config carries the provider plan catalog and tuning knobs.
type Config struct {
	MonthlyPlanID string
	YearlyPlanID  string
	ReturnURL     string
	CancelURL     string

	// DedupTTL bounds how long a processed activation stays deduplicated.
	// Zero means DefaultDedupTTL.
	DedupTTL time.Duration

	// RecheckDelay is the lag before the post-activation consistency
	// re-check. Zero means DefaultRecheckDelay.
	RecheckDelay time.Duration
}

const (
	DefaultDedupTTL     = 10 * time.Minute
	DefaultRecheckDelay = 3 * time.Second
)

// Manager is the subscription lifecycle manager. One instance per process.
type Manager struct {
	store    *store.Store
	provider Provider
	cache    *cache.Cache
	cfg      Config
	now      func() time.Time

	mu    sync.Mutex
	dedup map[string]time.Time // provider sub id -> dedup token expiry
}

// Option configures a Manager.
type Option func(*Manager)

// WithNow injects the clock used for trial windows, period bounds and dedup
// token expiry.
func WithNow(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New creates a subscription lifecycle manager.
func New(st *store.Store, provider Provider, c *cache.Cache, cfg Config, opts ...Option) *Manager {
	if cfg.DedupTTL == 0 {
		cfg.DedupTTL = DefaultDedupTTL
	}
	if cfg.RecheckDelay == 0 {
		cfg.RecheckDelay = DefaultRecheckDelay
	}
	m := &Manager{
		store:    st,
		provider: provider,
		cache:    c,
		cfg:      cfg,
		now:      time.Now,
		dedup:    make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// planID maps a plan type to the provider's plan catalog id.
func (m *Manager) planID(plan models.PlanType) string {
	if plan == models.PlanYearly {
		return m.cfg.YearlyPlanID
	}
	return m.cfg.MonthlyPlanID
}

// planTypeFor maps a provider plan id back to a plan type. Unknown ids
// return the empty plan type.
func (m *Manager) planTypeFor(providerPlanID string) models.PlanType {
	switch providerPlanID {
	case m.cfg.MonthlyPlanID:
		return models.PlanMonthly
	case m.cfg.YearlyPlanID:
		return models.PlanYearly
	}
	return ""
}

// periodEnd computes the end of a billing period starting at start.
func periodEnd(start time.Time, plan models.PlanType) time.Time {
	if plan == models.PlanYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

// EnsureTrial returns the user's subscription, provisioning a trial row when
// none exists. The current period mirrors the trial window.
func (m *Manager) EnsureTrial(userID string) (*models.Subscription, error) {
	sub, err := m.store.GetSubscription(userID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	now := m.now()
	trialEnd := now.AddDate(0, 0, TrialDays)
	sub = &models.Subscription{
		UserID:             userID,
		Status:             models.StatusTrial,
		TrialStartDate:     &now,
		TrialEndDate:       &trialEnd,
		CurrentPeriodStart: &now,
		CurrentPeriodEnd:   &trialEnd,
	}
	if err := m.store.CreateSubscription(sub); err != nil {
		// Lost a provisioning race; the winner's row is authoritative.
		if existing, getErr := m.store.GetSubscription(userID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}
	m.cache.PutSubscription(userID, *sub)
	return sub, nil
}

// Current returns the user's access projection, provisioning a trial first
// when needed. The projection is recomputed from stored timestamps on every
// call; only the raw row is cached.
func (m *Manager) Current(userID string) (Projection, error) {
	if sub, ok := m.cache.Subscription(userID); ok {
		return Project(&sub, m.now()), nil
	}
	sub, err := m.EnsureTrial(userID)
	if err != nil {
		return Projection{}, err
	}
	m.cache.PutSubscription(userID, *sub)
	return Project(sub, m.now()), nil
}

// Refresh refetches the subscription row into the cache and returns the
// fresh projection.
func (m *Manager) Refresh(userID string) (Projection, error) {
	sub, err := m.store.GetSubscription(userID)
	if err != nil {
		return Projection{}, err
	}
	m.cache.PutSubscription(userID, *sub)
	return Project(sub, m.now()), nil
}
