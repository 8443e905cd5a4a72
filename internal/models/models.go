package models

import (
	"time"
)

// SubscriptionStatus represents a user's stored billing state.
type SubscriptionStatus string

const (
	StatusTrial    SubscriptionStatus = "trial"
	StatusActive   SubscriptionStatus = "active"
	StatusExpired  SubscriptionStatus = "expired"
	StatusCanceled SubscriptionStatus = "canceled"
)

// PlanType represents a paid billing cadence.
type PlanType string

const (
	PlanMonthly PlanType = "monthly"
	PlanYearly  PlanType = "yearly"
)

// Combinator joins the per-condition results of a filter.
type Combinator string

const (
	CombinatorAnd Combinator = "and"
	CombinatorOr  Combinator = "or"
)

// ConditionType identifies the task dimension a filter condition tests.
type ConditionType string

const (
	ConditionDue       ConditionType = "due"
	ConditionPriority  ConditionType = "priority"
	ConditionProject   ConditionType = "project"
	ConditionCompleted ConditionType = "completed"
	ConditionFavorite  ConditionType = "favorite"
)

// ConditionOperator compares a task dimension against a condition value.
type ConditionOperator string

const (
	OpEquals    ConditionOperator = "equals"
	OpNotEquals ConditionOperator = "not_equals"
)

// Due keyword values accepted by due conditions (besides explicit ISO dates).
const (
	DueToday    = "today"
	DueTomorrow = "tomorrow"
	DueThisWeek = "this_week"
	DueNextWeek = "next_week"
)

// ProjectInbox is the special project condition value matching tasks
// without a project reference.
const ProjectInbox = "inbox"

// Priority bounds. 1 is highest, 4 is the default for new tasks.
const (
	PriorityHighest = 1
	PriorityDefault = 4
)

// Task represents a single todo item owned by a user.
type Task struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Notes     string     `json:"notes,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	AllDay    bool       `json:"all_day"`
	Priority  int        `json:"priority"`
	ProjectID string     `json:"project_id,omitempty"` // empty means Inbox
	Completed bool       `json:"completed"`
	Favorite  bool       `json:"favorite"`
	TagIDs    []string   `json:"tag_ids,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Project groups tasks under a named container.
type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	Favorite  bool      `json:"favorite"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag is a free-form label attachable to tasks.
type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Condition is a single type/operator/value predicate inside a filter.
type Condition struct {
	Type     ConditionType     `json:"type"`
	Operator ConditionOperator `json:"operator"`
	Value    string            `json:"value"`
}

// ConditionSet is the normalized shape of a filter's conditions: an explicit
// combinator plus an ordered condition list. Persisted condition payloads may
// arrive as a bare array or an {items, logic} wrapper; the filter package
// normalizes both into this form so nothing downstream branches on shape.
type ConditionSet struct {
	Combinator Combinator  `json:"combinator"`
	Items      []Condition `json:"items"`
}

// Filter is a user-defined saved query over tasks.
type Filter struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id"`
	Name       string       `json:"name"`
	Conditions ConditionSet `json:"conditions"`
	Favorite   bool         `json:"favorite"`
	Color      string       `json:"color,omitempty"`
	Standard   bool         `json:"standard,omitempty"` // built-in, read-only
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// Subscription is the single source of truth for a user's entitlement.
// At most one row exists per user. Consumers never branch on Status directly;
// they read the derived projection (see internal/billing).
type Subscription struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"user_id"`
	Status             SubscriptionStatus `json:"status"`
	PlanType           PlanType           `json:"plan_type,omitempty"`
	TrialStartDate     *time.Time         `json:"trial_start_date,omitempty"`
	TrialEndDate       *time.Time         `json:"trial_end_date,omitempty"`
	CurrentPeriodStart *time.Time         `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time         `json:"current_period_end,omitempty"`
	ProviderSubID      string             `json:"provider_subscription_id,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// Plan is an admin-managed subscription plan record.
type Plan struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	MonthlyPrice int64     `json:"monthly_price_cents"`
	YearlyPrice  int64     `json:"yearly_price_cents"`
	Features     []string  `json:"features,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Settings is the admin-managed application settings bundle.
type Settings struct {
	SiteName             string `json:"site_name"`
	MaintenanceMode      bool   `json:"maintenance_mode"`
	RegistrationEnabled  bool   `json:"registration_enabled"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	BackupFrequency      string `json:"backup_frequency"`
}

// IsValidPriority checks that a priority is within the 1-4 range.
func IsValidPriority(p int) bool {
	return p >= 1 && p <= 4
}

// IsValidStatus checks if a subscription status is valid.
func IsValidStatus(s SubscriptionStatus) bool {
	switch s {
	case StatusTrial, StatusActive, StatusExpired, StatusCanceled:
		return true
	}
	return false
}

// IsValidPlanType checks if a plan type is valid.
func IsValidPlanType(p PlanType) bool {
	switch p {
	case PlanMonthly, PlanYearly:
		return true
	}
	return false
}

// IsValidConditionType checks if a condition type is one the engine knows.
// Unknown types are still accepted by the evaluator (permissive pass-through)
// but are rejected at filter creation time.
func IsValidConditionType(t ConditionType) bool {
	switch t {
	case ConditionDue, ConditionPriority, ConditionProject, ConditionCompleted, ConditionFavorite:
		return true
	}
	return false
}

// IsValidOperator checks if a condition operator is valid.
func IsValidOperator(op ConditionOperator) bool {
	switch op {
	case OpEquals, OpNotEquals:
		return true
	}
	return false
}

// NormalizeCombinator converts alternate combinator spellings to canonical
// form and defaults unspecified combinators to "and".
func NormalizeCombinator(c string) Combinator {
	switch c {
	case "or", "OR", "any":
		return CombinatorOr
	case "", "and", "AND", "all":
		return CombinatorAnd
	default:
		return Combinator(c)
	}
}

// NormalizePlanType converts alternate plan spellings to canonical form.
// Accepts "month"/"year" as aliases.
func NormalizePlanType(p string) PlanType {
	switch p {
	case "month":
		return PlanMonthly
	case "year":
		return PlanYearly
	default:
		return PlanType(p)
	}
}
