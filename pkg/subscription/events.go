package subscription

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/momentumhq/billingkit/pkg/tier"
)

// EventKind identifies an audit event type. The set is closed: every
// state transition the Manager performs maps to exactly one kind.
type EventKind string

const (
	EventPaymentSuccess          EventKind = "payment_success"
	EventUpgraded                EventKind = "upgraded"
	EventDowngradeScheduled      EventKind = "downgrade_scheduled"
	EventScheduledChangeCancel   EventKind = "scheduled_change_cancelled"
	EventCancelled               EventKind = "cancelled"
	EventPaymentFailed           EventKind = "payment_failed"
	EventRenewed                 EventKind = "renewed"
)

// Event is one audit entry variant. Each state transition has its own
// struct so the metadata payload is typed; Meta flattens it for storage.
type Event interface {
	Kind() EventKind
	Meta() map[string]string
}

// PaymentSuccessEvent is emitted on activation.
type PaymentSuccessEvent struct {
	Tier            tier.Tier
	BillingPeriod   tier.BillingPeriod
	TransactionCode string
}

func (e PaymentSuccessEvent) Kind() EventKind { return EventPaymentSuccess }

func (e PaymentSuccessEvent) Meta() map[string]string {
	m := map[string]string{
		"tier":           string(e.Tier),
		"billing_period": string(e.BillingPeriod),
	}
	if e.TransactionCode != "" {
		m["transaction_code"] = e.TransactionCode
	}
	return m
}

// UpgradedEvent is emitted on an immediate mid-period upgrade.
type UpgradedEvent struct {
	FromTier        tier.Tier
	ToTier          tier.Tier
	ProratedAmount  tier.Money
}

func (e UpgradedEvent) Kind() EventKind { return EventUpgraded }

func (e UpgradedEvent) Meta() map[string]string {
	return map[string]string{
		"from_tier":       string(e.FromTier),
		"to_tier":         string(e.ToTier),
		"prorated_amount": strconv.FormatInt(e.ProratedAmount.Amount, 10),
		"currency":        e.ProratedAmount.Currency,
	}
}

// DowngradeScheduledEvent is emitted when a downgrade is queued for the
// next renewal.
type DowngradeScheduledEvent struct {
	FromTier    tier.Tier
	ToTier      tier.Tier
	EffectiveAt time.Time
}

func (e DowngradeScheduledEvent) Kind() EventKind { return EventDowngradeScheduled }

func (e DowngradeScheduledEvent) Meta() map[string]string {
	return map[string]string{
		"from_tier":    string(e.FromTier),
		"to_tier":      string(e.ToTier),
		"effective_at": e.EffectiveAt.UTC().Format(time.RFC3339),
	}
}

// ScheduledChangeCancelledEvent is emitted when pending scheduled changes
// are dropped.
type ScheduledChangeCancelledEvent struct {
	Tier tier.Tier
}

func (e ScheduledChangeCancelledEvent) Kind() EventKind { return EventScheduledChangeCancel }

func (e ScheduledChangeCancelledEvent) Meta() map[string]string {
	return map[string]string{"tier": string(e.Tier)}
}

// CancelledEvent is emitted when the user cancels; access continues until
// EffectiveAt.
type CancelledEvent struct {
	Tier        tier.Tier
	EffectiveAt time.Time
}

func (e CancelledEvent) Kind() EventKind { return EventCancelled }

func (e CancelledEvent) Meta() map[string]string {
	return map[string]string{
		"tier":         string(e.Tier),
		"effective_at": e.EffectiveAt.UTC().Format(time.RFC3339),
	}
}

// PaymentFailedEvent is emitted when the gateway reports a failed charge.
type PaymentFailedEvent struct{}

func (e PaymentFailedEvent) Kind() EventKind { return EventPaymentFailed }

func (e PaymentFailedEvent) Meta() map[string]string { return map[string]string{} }

// RenewedEvent is emitted on each successful renewal.
type RenewedEvent struct {
	Tier            tier.Tier
	BillingPeriod   tier.BillingPeriod
	TransactionCode string
	AppliedChange   bool // a scheduled tier/period change took effect
}

func (e RenewedEvent) Kind() EventKind { return EventRenewed }

func (e RenewedEvent) Meta() map[string]string {
	return map[string]string{
		"tier":             string(e.Tier),
		"billing_period":   string(e.BillingPeriod),
		"transaction_code": e.TransactionCode,
		"applied_change":   strconv.FormatBool(e.AppliedChange),
	}
}

// Record is the persisted form of an Event: append-only, never mutated.
type Record struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Kind      EventKind
	Meta      map[string]string
	CreatedAt time.Time
}

// NewRecord builds a storage record for an event.
func NewRecord(userID uuid.UUID, ev Event, at time.Time) Record {
	return Record{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      ev.Kind(),
		Meta:      ev.Meta(),
		CreatedAt: at,
	}
}
