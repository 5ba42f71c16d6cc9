package usage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/momentumhq/billingkit/pkg/subscription"
	"github.com/momentumhq/billingkit/pkg/tier"
)

// Reason explains a denied usage check. Callers map the two values to
// different HTTP semantics: NO_SUBSCRIPTION asks for payment (402),
// LIMIT_EXCEEDED denies an otherwise valid plan (403).
type Reason string

const (
	ReasonNoSubscription Reason = "NO_SUBSCRIPTION"
	ReasonLimitExceeded  Reason = "LIMIT_EXCEEDED"
)

// CheckResult is the outcome of a usage-limit check.
type CheckResult struct {
	Allowed     bool
	Enforced    bool
	Unlimited   bool
	AdminBypass bool
	Used        int64
	Limit       int64
	Remaining   int64
	Reason      Reason
}

// FeatureResult is the outcome of a feature-access check.
type FeatureResult struct {
	Allowed     bool
	Enforced    bool
	AdminBypass bool
	Tier        *tier.Tier
	// RequiredTier is the cheapest tier that includes the feature, set on
	// denial so callers can render an upgrade prompt.
	RequiredTier tier.Tier
}

// Store is the slice of subscription persistence the gate needs: reading
// tier and counters, and the atomic increment. subscription.Store
// satisfies it.
type Store interface {
	Get(ctx context.Context, userID uuid.UUID) (*subscription.Subscription, error)
	IncrementUsage(ctx context.Context, userID uuid.UUID, res tier.Resource) error
}

// AdminFunc reports whether the user bypasses all limit checks.
type AdminFunc func(ctx context.Context, userID uuid.UUID) (bool, error)

// Gate is the usage-metering gate every resource-creating operation goes
// through. The contract for consumers is check, then create, then
// increment, skipping the increment when the create fails.
type Gate struct {
	store   Store
	catalog *tier.Catalog
	cfg     Config
	isAdmin AdminFunc
	log     *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithAdminFunc installs the admin-bypass resolver. Without one, no
// caller is treated as admin.
func WithAdminFunc(fn AdminFunc) GateOption {
	return func(g *Gate) {
		if fn != nil {
			g.isAdmin = fn
		}
	}
}

// WithLogger sets the logger for increment failures and admin-resolver
// errors. Defaults to slog.Default().
func WithLogger(log *slog.Logger) GateOption {
	return func(g *Gate) {
		if log != nil {
			g.log = log
		}
	}
}

// NewGate creates a Gate. Panics if store or catalog is nil.
func NewGate(store Store, catalog *tier.Catalog, cfg Config, opts ...GateOption) *Gate {
	if store == nil {
		panic("usage: Store is required")
	}
	if catalog == nil {
		panic("usage: tier catalog is required")
	}

	g := &Gate{
		store:   store,
		catalog: catalog,
		cfg:     cfg,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CheckUsageLimit reports whether the user may create one more instance
// of the resource. Read-only: it never mutates counters.
//
// With the kill-switch off the check always allows and only reports the
// numbers it could read (silent tracking). Admin callers always pass.
func (g *Gate) CheckUsageLimit(ctx context.Context, userID uuid.UUID, res tier.Resource) (*CheckResult, error) {
	result := &CheckResult{Enforced: g.cfg.Enforced}

	if !g.cfg.Enforced {
		result.Allowed = true
		g.fillUsage(ctx, userID, res, result)
		return result, nil
	}

	if g.adminBypass(ctx, userID) {
		result.Allowed = true
		result.AdminBypass = true
		g.fillUsage(ctx, userID, res, result)
		return result, nil
	}

	sub, err := g.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, subscription.ErrSubscriptionNotFound) {
			result.Reason = ReasonNoSubscription
			return result, nil
		}
		return nil, err
	}
	if !sub.HasTier() {
		result.Reason = ReasonNoSubscription
		return result, nil
	}

	limit, err := g.catalog.Limit(*sub.Tier, res)
	if err != nil {
		return nil, err
	}

	result.Used = sub.Usage[res]
	result.Limit = limit

	if limit == tier.Unlimited {
		result.Allowed = true
		result.Unlimited = true
		result.Remaining = tier.Unlimited
		return result, nil
	}

	result.Allowed = result.Used < limit
	result.Remaining = max(limit-result.Used, 0)
	if !result.Allowed {
		result.Reason = ReasonLimitExceeded
	}
	return result, nil
}

// CheckFeatureAccess reports whether the user's tier includes a binary
// gated feature. Same kill-switch and admin semantics as
// CheckUsageLimit, but independent of any counter.
func (g *Gate) CheckFeatureAccess(ctx context.Context, userID uuid.UUID, feature tier.Feature) (*FeatureResult, error) {
	result := &FeatureResult{Enforced: g.cfg.Enforced}

	if !g.cfg.Enforced {
		result.Allowed = true
		return result, nil
	}

	if g.adminBypass(ctx, userID) {
		result.Allowed = true
		result.AdminBypass = true
		return result, nil
	}

	sub, err := g.store.Get(ctx, userID)
	if err != nil && !errors.Is(err, subscription.ErrSubscriptionNotFound) {
		return nil, err
	}

	if sub != nil && sub.HasTier() {
		result.Tier = sub.Tier
		if g.catalog.HasFeature(*sub.Tier, feature) {
			result.Allowed = true
			return result, nil
		}
	}

	if required, err := g.catalog.CheapestTierWithFeature(feature); err == nil {
		result.RequiredTier = required
	}
	return result, nil
}

// IncrementUsage adds one to the resource counter. Call it only after
// the guarded resource was successfully created, never speculatively.
// The counter is a best-effort metric, not a capacity reservation:
// failures are logged and must not roll back the created resource.
func (g *Gate) IncrementUsage(ctx context.Context, userID uuid.UUID, res tier.Resource) {
	if err := g.store.IncrementUsage(ctx, userID, res); err != nil {
		g.log.ErrorContext(ctx, "failed to increment usage counter",
			slog.String("user_id", userID.String()),
			slog.String("resource", string(res)),
			slog.Any("error", err))
	}
}

func (g *Gate) adminBypass(ctx context.Context, userID uuid.UUID) bool {
	if g.isAdmin == nil {
		return false
	}
	ok, err := g.isAdmin(ctx, userID)
	if err != nil {
		// Fail closed: an unreachable admin resolver must not grant bypass.
		g.log.WarnContext(ctx, "admin resolver failed",
			slog.String("user_id", userID.String()),
			slog.Any("error", err))
		return false
	}
	return ok
}

// fillUsage reports the numbers when the check passes unconditionally.
// Best effort: any read error leaves the counters at zero.
func (g *Gate) fillUsage(ctx context.Context, userID uuid.UUID, res tier.Resource, result *CheckResult) {
	sub, err := g.store.Get(ctx, userID)
	if err != nil || !sub.HasTier() {
		return
	}
	limit, err := g.catalog.Limit(*sub.Tier, res)
	if err != nil {
		return
	}
	result.Used = sub.Usage[res]
	result.Limit = limit
	if limit == tier.Unlimited {
		result.Unlimited = true
		result.Remaining = tier.Unlimited
		return
	}
	result.Remaining = max(limit-result.Used, 0)
}
