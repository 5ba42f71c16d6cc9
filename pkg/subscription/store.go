package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/momentumhq/billingkit/pkg/tier"
)

// Store defines subscription persistence. Each user has exactly one row,
// so UserID serves as the primary key.
type Store interface {
	// Get retrieves a subscription by user ID.
	// Returns ErrSubscriptionNotFound if no row exists.
	Get(ctx context.Context, userID uuid.UUID) (*Subscription, error)

	// Save creates or updates a subscription. The whole row is written:
	// callers mutate the domain model and persist it in one step.
	Save(ctx context.Context, sub *Subscription) error

	// ListExpirable returns subscriptions whose effective end (period end,
	// or cancellation effective date for cancelled ones) is at or before
	// now and whose status is not yet expired.
	ListExpirable(ctx context.Context, now time.Time) ([]*Subscription, error)

	// IncrementUsage atomically adds one to the counter for the resource.
	// Implemented at the store layer so two concurrent increments never
	// lose an update.
	IncrementUsage(ctx context.Context, userID uuid.UUID, res tier.Resource) error
}

// EventStore persists the append-only audit log. Records are never
// updated or deleted; they exist for support and audit, not control flow.
type EventStore interface {
	Append(ctx context.Context, rec Record) error
}
