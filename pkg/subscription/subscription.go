package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/momentumhq/billingkit/pkg/tier"
)

// Status represents the current state of a subscription.
type Status string

const (
	StatusActive    Status = "active"
	StatusPastDue   Status = "past_due"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Usage holds the per-period counters, one per metered resource.
// Counters are monotonically non-decreasing within a billing window and
// are zeroed exactly once per period transition.
type Usage map[tier.Resource]int64

// ZeroUsage returns a Usage map with every metered resource at zero.
func ZeroUsage() Usage {
	u := make(Usage, len(tier.AllResources()))
	for _, r := range tier.AllResources() {
		u[r] = 0
	}
	return u
}

// Clone returns a deep copy of the usage counters.
func (u Usage) Clone() Usage {
	out := make(Usage, len(u))
	for r, n := range u {
		out[r] = n
	}
	return out
}

// GatewayData carries the opaque identifiers used to reconcile payment
// gateway callbacks with a subscription row.
type GatewayData struct {
	TransactionToken  string
	RecurringID       string
	TransactionCode   string
	MorningCustomerID string
}

// Subscription is the one-row-per-user domain model. Owned exclusively by
// the Manager; the usage gate only reads it.
type Subscription struct {
	UserID        uuid.UUID
	Tier          *tier.Tier // nil means no active paid plan
	BillingPeriod tier.BillingPeriod
	Status        Status

	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time

	// Set together at cancellation. Tier is not cleared: access continues
	// until CancellationEffectiveAt, which always equals the
	// CurrentPeriodEnd captured at cancellation time.
	CancelledAt             *time.Time
	CancellationEffectiveAt *time.Time

	// Pending changes that apply only at the next successful renewal.
	ScheduledTier          *tier.Tier
	ScheduledBillingPeriod *tier.BillingPeriod

	// Reserved for a checkout that has not been confirmed yet. Distinct
	// from scheduled changes, which modify an already active subscription.
	PendingTier          *tier.Tier
	PendingBillingPeriod *tier.BillingPeriod

	GrowTransactionToken    string
	GrowRecurringID         string
	GrowLastTransactionCode string
	MorningCustomerID       string

	Usage       Usage
	LastResetAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasTier reports whether the user is on a paid plan.
func (s *Subscription) HasTier() bool {
	return s.Tier != nil
}

// IsCancelled reports whether the subscription was cancelled by the user.
func (s *Subscription) IsCancelled() bool {
	return s.Status == StatusCancelled
}

// EffectiveEnd returns the moment the subscription stops granting access
// when no renewal arrives: the cancellation effective date for a
// cancelled subscription, the period end otherwise.
func (s *Subscription) EffectiveEnd() time.Time {
	if s.Status == StatusCancelled && s.CancellationEffectiveAt != nil {
		return *s.CancellationEffectiveAt
	}
	return s.CurrentPeriodEnd
}

// HasScheduledChange reports whether a tier or billing-period change is
// queued for the next renewal.
func (s *Subscription) HasScheduledChange() bool {
	return s.ScheduledTier != nil || s.ScheduledBillingPeriod != nil
}
