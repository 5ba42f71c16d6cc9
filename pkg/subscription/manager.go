package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/momentumhq/billingkit/pkg/statemachine"
	"github.com/momentumhq/billingkit/pkg/tier"
)

// Manager implements the subscription state machine: activation, renewal,
// upgrade, scheduled downgrade, cancellation, payment-failure handling and
// the bulk expiration sweep. All operations either commit a consistent row
// or fail with no partial writes; audit events are advisory and never fail
// an operation.
type Manager struct {
	store   Store
	events  EventStore
	catalog *tier.Catalog
	table   *statemachine.Machine
	log     *slog.Logger
	now     func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for audit-append failures and sweep
// progress. Defaults to slog.Default().
func WithLogger(log *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a Manager. Panics if a required dependency is nil to
// fail fast during initialization.
func NewManager(store Store, events EventStore, catalog *tier.Catalog, opts ...ManagerOption) *Manager {
	if store == nil {
		panic("subscription: Store is required")
	}
	if events == nil {
		panic("subscription: EventStore is required")
	}
	if catalog == nil {
		panic("subscription: tier catalog is required")
	}

	m := &Manager{
		store:   store,
		events:  events,
		catalog: catalog,
		table:   newTransitionTable(),
		log:     slog.Default(),
		now:     func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// GetSubscription retrieves a user's subscription.
// Returns ErrSubscriptionNotFound when no row exists.
func (m *Manager) GetSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	return m.store.Get(ctx, userID)
}

// ActivateSubscription establishes a fresh billing period for the user:
// period dates from now, all usage counters zeroed, any pending, scheduled
// or cancellation state cleared. Idempotent upsert; this is the only
// operation that both sets the period and resets counters unconditionally.
func (m *Manager) ActivateSubscription(ctx context.Context, userID uuid.UUID, t tier.Tier, period tier.BillingPeriod, gw *GatewayData) error {
	if _, err := m.catalog.Config(t); err != nil {
		return err
	}
	if !period.Valid() {
		return fmt.Errorf("%w: %q", tier.ErrInvalidPeriod, period)
	}

	now := m.now()

	sub, err := m.store.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrSubscriptionNotFound) {
			return err
		}
		sub = &Subscription{UserID: userID, CreatedAt: now}
	}

	sub.Tier = &t
	sub.BillingPeriod = period
	sub.Status = StatusActive
	sub.CurrentPeriodStart = now
	sub.CurrentPeriodEnd = tier.PeriodEnd(now, period)
	sub.Usage = ZeroUsage()
	sub.LastResetAt = now

	sub.CancelledAt = nil
	sub.CancellationEffectiveAt = nil
	sub.ScheduledTier = nil
	sub.ScheduledBillingPeriod = nil
	sub.PendingTier = nil
	sub.PendingBillingPeriod = nil

	var txCode string
	if gw != nil {
		if gw.TransactionToken != "" {
			sub.GrowTransactionToken = gw.TransactionToken
		}
		if gw.RecurringID != "" {
			sub.GrowRecurringID = gw.RecurringID
		}
		if gw.TransactionCode != "" {
			sub.GrowLastTransactionCode = gw.TransactionCode
		}
		if gw.MorningCustomerID != "" {
			sub.MorningCustomerID = gw.MorningCustomerID
		}
		txCode = gw.TransactionCode
	}
	sub.UpdatedAt = now

	if err := m.store.Save(ctx, sub); err != nil {
		return errors.Join(ErrFailedToSave, err)
	}

	m.emit(ctx, userID, PaymentSuccessEvent{Tier: t, BillingPeriod: period, TransactionCode: txCode}, now)
	return nil
}

// RenewSubscription advances the billing period to [now, now+period).
// Scheduled tier/billing-period changes take effect here and only here.
// The counter reset is guarded against gateway webhook retries: counters
// are zeroed only when LastResetAt predates the new period start.
func (m *Manager) RenewSubscription(ctx context.Context, userID uuid.UUID, transactionCode string) error {
	sub, err := m.store.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !sub.HasTier() {
		return ErrNoActiveTier
	}
	if !m.allowed(sub.Status, evRenew) {
		return fmt.Errorf("%w: cannot renew a %s subscription", ErrInvalidTransition, sub.Status)
	}

	now := m.now()

	applied := false
	if sub.ScheduledTier != nil {
		sub.Tier = sub.ScheduledTier
		sub.ScheduledTier = nil
		applied = true
	}
	if sub.ScheduledBillingPeriod != nil {
		sub.BillingPeriod = *sub.ScheduledBillingPeriod
		sub.ScheduledBillingPeriod = nil
		applied = true
	}

	sub.Status = StatusActive
	sub.CurrentPeriodStart = now
	sub.CurrentPeriodEnd = tier.PeriodEnd(now, sub.BillingPeriod)

	// A retried webhook must not wipe counters already reset for this
	// period, so the reset only happens when LastResetAt is older than
	// the period start being established.
	if sub.LastResetAt.Before(sub.CurrentPeriodStart) {
		sub.Usage = ZeroUsage()
		sub.LastResetAt = now
	}

	if transactionCode != "" {
		sub.GrowLastTransactionCode = transactionCode
	}
	sub.UpdatedAt = now

	if err := m.store.Save(ctx, sub); err != nil {
		return errors.Join(ErrFailedToSave, err)
	}

	m.emit(ctx, userID, RenewedEvent{
		Tier:            *sub.Tier,
		BillingPeriod:   sub.BillingPeriod,
		TransactionCode: transactionCode,
		AppliedChange:   applied,
	}, now)
	return nil
}

// UpgradeResult carries the prorated amount owed for an immediate upgrade.
// The caller is responsible for charging it through the payment gateway;
// the tier change itself is already committed.
type UpgradeResult struct {
	ProratedAmount tier.Money
}

// UpgradeSubscription switches the user to a strictly more expensive tier
// immediately. Period dates and usage counters are untouched: access to
// the higher limits starts now, and usage already incurred is not erased.
// A pending scheduled downgrade is superseded and cleared.
func (m *Manager) UpgradeSubscription(ctx context.Context, userID uuid.UUID, newTier tier.Tier) (*UpgradeResult, error) {
	sub, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !sub.HasTier() {
		return nil, ErrNoActiveTier
	}

	current := *sub.Tier
	up, err := m.catalog.IsUpgrade(current, newTier, sub.BillingPeriod)
	if err != nil {
		return nil, err
	}
	if !up {
		return nil, fmt.Errorf("%w: %s is not an upgrade from %s", ErrNotAnUpgrade, newTier, current)
	}

	now := m.now()
	prorated, err := m.prorate(current, newTier, sub.BillingPeriod, sub.CurrentPeriodStart, sub.CurrentPeriodEnd, now)
	if err != nil {
		return nil, err
	}

	sub.Tier = &newTier
	sub.ScheduledTier = nil // an immediate upgrade supersedes a pending downgrade
	sub.UpdatedAt = now

	if err := m.store.Save(ctx, sub); err != nil {
		return nil, errors.Join(ErrFailedToSave, err)
	}

	m.emit(ctx, userID, UpgradedEvent{FromTier: current, ToTier: newTier, ProratedAmount: prorated}, now)
	return &UpgradeResult{ProratedAmount: prorated}, nil
}

// prorate computes (priceDiff / totalPeriodDays) * remainingPeriodDays in
// the smallest currency unit, truncating partial days.
func (m *Manager) prorate(from, to tier.Tier, period tier.BillingPeriod, start, end, now time.Time) (tier.Money, error) {
	fromPrice, err := m.catalog.Price(from, period)
	if err != nil {
		return tier.Money{}, err
	}
	toPrice, err := m.catalog.Price(to, period)
	if err != nil {
		return tier.Money{}, err
	}

	totalDays := wholeDays(end.Sub(start))
	if totalDays <= 0 {
		totalDays = 1
	}
	remainingDays := wholeDays(end.Sub(now))
	if remainingDays < 0 {
		remainingDays = 0
	}

	diff := toPrice.Amount - fromPrice.Amount
	return tier.Money{
		Amount:   diff * remainingDays / totalDays,
		Currency: toPrice.Currency,
	}, nil
}

func wholeDays(d time.Duration) int64 {
	return int64(d / (24 * time.Hour))
}

// DowngradeResult reports when a scheduled downgrade will take effect.
type DowngradeResult struct {
	EffectiveAt time.Time
}

// ScheduleDowngrade queues a switch to a strictly cheaper tier for the
// next renewal. The current tier, period dates and counters stay as they
// are: the user paid for the higher tier through the end of the period.
func (m *Manager) ScheduleDowngrade(ctx context.Context, userID uuid.UUID, newTier tier.Tier) (*DowngradeResult, error) {
	sub, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !sub.HasTier() {
		return nil, ErrNoActiveTier
	}

	current := *sub.Tier
	down, err := m.catalog.IsDowngrade(current, newTier, sub.BillingPeriod)
	if err != nil {
		return nil, err
	}
	if !down {
		return nil, fmt.Errorf("%w: %s is not a downgrade from %s", ErrNotADowngrade, newTier, current)
	}

	now := m.now()
	sub.ScheduledTier = &newTier
	sub.UpdatedAt = now

	if err := m.store.Save(ctx, sub); err != nil {
		return nil, errors.Join(ErrFailedToSave, err)
	}

	m.emit(ctx, userID, DowngradeScheduledEvent{FromTier: current, ToTier: newTier, EffectiveAt: sub.CurrentPeriodEnd}, now)
	return &DowngradeResult{EffectiveAt: sub.CurrentPeriodEnd}, nil
}

// CancelScheduledChange drops any pending scheduled tier or billing-period
// change without touching anything else.
func (m *Manager) CancelScheduledChange(ctx context.Context, userID uuid.UUID) error {
	sub, err := m.store.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !sub.HasScheduledChange() {
		return ErrNoScheduledChange
	}

	now := m.now()
	sub.ScheduledTier = nil
	sub.ScheduledBillingPeriod = nil
	sub.UpdatedAt = now

	if err := m.store.Save(ctx, sub); err != nil {
		return errors.Join(ErrFailedToSave, err)
	}

	var t tier.Tier
	if sub.Tier != nil {
		t = *sub.Tier
	}
	m.emit(ctx, userID, ScheduledChangeCancelledEvent{Tier: t}, now)
	return nil
}

// CancelResult reports when a cancellation takes effect.
type CancelResult struct {
	EffectiveAt time.Time
}

// CancelSubscription marks the subscription cancelled effective at the
// current period end. Tier, limits and counters are not touched: the user
// keeps full access until then, and the sweep expires the row afterwards.
func (m *Manager) CancelSubscription(ctx context.Context, userID uuid.UUID) (*CancelResult, error) {
	sub, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub.IsCancelled() {
		return nil, ErrAlreadyCancelled
	}
	if !sub.HasTier() {
		return nil, ErrNoActiveTier
	}
	if !m.allowed(sub.Status, evCancel) {
		return nil, fmt.Errorf("%w: cannot cancel a %s subscription", ErrInvalidTransition, sub.Status)
	}

	now := m.now()
	effective := sub.CurrentPeriodEnd

	sub.Status = StatusCancelled
	sub.CancelledAt = &now
	sub.CancellationEffectiveAt = &effective
	sub.UpdatedAt = now

	if err := m.store.Save(ctx, sub); err != nil {
		return nil, errors.Join(ErrFailedToSave, err)
	}

	m.emit(ctx, userID, CancelledEvent{Tier: *sub.Tier, EffectiveAt: effective}, now)
	return &CancelResult{EffectiveAt: effective}, nil
}

// HandlePaymentFailure marks the subscription past due. Tier and counters
// are unchanged; a later successful renewal reactivates it.
func (m *Manager) HandlePaymentFailure(ctx context.Context, userID uuid.UUID) error {
	sub, err := m.store.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !m.allowed(sub.Status, evPaymentFailure) {
		return fmt.Errorf("%w: cannot mark a %s subscription past due", ErrInvalidTransition, sub.Status)
	}

	now := m.now()
	sub.Status = StatusPastDue
	sub.UpdatedAt = now

	if err := m.store.Save(ctx, sub); err != nil {
		return errors.Join(ErrFailedToSave, err)
	}

	m.emit(ctx, userID, PaymentFailedEvent{}, now)
	return nil
}

// ProcessExpirations transitions every subscription whose effective end
// has passed to expired. This is the safety net for subscriptions that
// never receive a renewal webhook. Individual row failures are logged and
// skipped so one bad row cannot stall the sweep.
func (m *Manager) ProcessExpirations(ctx context.Context) (int, error) {
	now := m.now()

	subs, err := m.store.ListExpirable(ctx, now)
	if err != nil {
		return 0, errors.Join(ErrFailedToRead, err)
	}

	expired := 0
	for _, sub := range subs {
		if !m.allowed(sub.Status, evExpire) {
			continue
		}

		sub.Status = StatusExpired
		sub.UpdatedAt = now

		if err := m.store.Save(ctx, sub); err != nil {
			m.log.ErrorContext(ctx, "failed to expire subscription",
				slog.String("user_id", sub.UserID.String()),
				slog.Any("error", err))
			continue
		}
		expired++
	}

	if expired > 0 {
		m.log.InfoContext(ctx, "expiration sweep completed", slog.Int("expired", expired))
	}
	return expired, nil
}

// emit appends an audit record. Append failures are logged, never
// propagated: the audit log is advisory and must not fail an operation
// whose state change already committed.
func (m *Manager) emit(ctx context.Context, userID uuid.UUID, ev Event, at time.Time) {
	if err := m.events.Append(ctx, NewRecord(userID, ev, at)); err != nil {
		m.log.ErrorContext(ctx, "failed to append subscription event",
			slog.String("user_id", userID.String()),
			slog.String("kind", string(ev.Kind())),
			slog.Any("error", err))
	}
}
