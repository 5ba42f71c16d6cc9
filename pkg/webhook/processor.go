package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/momentumhq/billingkit/pkg/grow"
	"github.com/momentumhq/billingkit/pkg/subscription"
	"github.com/momentumhq/billingkit/pkg/tier"
)

// SubscriptionManager is the slice of the subscription manager the
// processor drives.
type SubscriptionManager interface {
	GetSubscription(ctx context.Context, userID uuid.UUID) (*subscription.Subscription, error)
	ActivateSubscription(ctx context.Context, userID uuid.UUID, t tier.Tier, period tier.BillingPeriod, gw *subscription.GatewayData) error
	RenewSubscription(ctx context.Context, userID uuid.UUID, transactionCode string) error
	HandlePaymentFailure(ctx context.Context, userID uuid.UUID) error
}

// Processor turns verified gateway notifications into subscription
// state changes. Each notification is verified, parsed, deduplicated
// by transaction code and dispatched to exactly one manager operation.
type Processor struct {
	manager SubscriptionManager
	deduper Deduper
	secret  string
	log     *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if log != nil {
			p.log = log
		}
	}
}

// NewProcessor creates a Processor. Panics if manager or deduper is
// nil; an empty secret is allowed here but rejects every notification
// at verification time.
func NewProcessor(manager SubscriptionManager, deduper Deduper, secret string, opts ...ProcessorOption) *Processor {
	if manager == nil {
		panic("webhook: subscription manager is required")
	}
	if deduper == nil {
		panic("webhook: deduper is required")
	}

	p := &Processor{
		manager: manager,
		deduper: deduper,
		secret:  secret,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process handles one raw webhook body end to end.
//
// Returned errors classify the outcome for the HTTP layer:
// ErrVerificationFailed for an unauthenticated notification,
// ErrDuplicateNotification for a retry of an already-applied one,
// ErrInvalidPayload when the notification cannot be dispatched, and
// ErrProcessingFailed (wrapping the cause) when the manager rejects
// the change.
func (p *Processor) Process(ctx context.Context, body []byte) error {
	payload := grow.ParseWebhookPayload(body)

	if !grow.VerifyWebhook(payload, p.secret, p.log) {
		return ErrVerificationFailed
	}

	if payload.TransactionCode != "" {
		dup, err := p.deduper.Seen(ctx, payload.TransactionCode)
		if err != nil {
			return errors.Join(ErrProcessingFailed, err)
		}
		if dup {
			p.log.Info("duplicate webhook notification, already applied",
				slog.String("transaction_code", payload.TransactionCode))
			return ErrDuplicateNotification
		}
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return fmt.Errorf("%w: bad user id %q", ErrInvalidPayload, payload.UserID)
	}

	log := p.log.With(
		slog.String("user_id", userID.String()),
		slog.String("transaction_code", payload.TransactionCode),
		slog.String("status", payload.Status))

	if err := p.dispatch(ctx, userID, payload, log); err != nil {
		return err
	}

	// marked only after the change is applied: a dispatch failure
	// returns 500 upstream and the gateway retry must not be swallowed
	// as a duplicate
	if payload.TransactionCode != "" {
		if err := p.deduper.Mark(ctx, payload.TransactionCode); err != nil {
			p.log.Warn("failed to mark webhook notification as applied",
				slog.String("transaction_code", payload.TransactionCode),
				slog.Any("error", err))
		}
	}
	return nil
}

func (p *Processor) dispatch(ctx context.Context, userID uuid.UUID, payload grow.WebhookPayload, log *slog.Logger) error {
	if !payload.Succeeded() {
		log.Warn("payment failure notification received")
		if err := p.manager.HandlePaymentFailure(ctx, userID); err != nil {
			return errors.Join(ErrProcessingFailed, err)
		}
		return nil
	}

	if p.isRenewal(ctx, userID, payload) {
		log.Info("recurring charge notification, renewing subscription")
		if err := p.manager.RenewSubscription(ctx, userID, payload.TransactionCode); err != nil {
			return errors.Join(ErrProcessingFailed, err)
		}
		return nil
	}

	t := tier.Tier(payload.Tier)
	period := tier.BillingPeriod(payload.BillingPeriod)

	log.Info("payment notification received, activating subscription",
		slog.String("tier", payload.Tier),
		slog.String("billing_period", payload.BillingPeriod))

	err := p.manager.ActivateSubscription(ctx, userID, t, period, &subscription.GatewayData{
		TransactionToken:  payload.TransactionToken,
		RecurringID:       payload.RecurringID,
		TransactionCode:   payload.TransactionCode,
		MorningCustomerID: payload.CustomerID,
	})
	if err != nil {
		if errors.Is(err, tier.ErrTierNotFound) || errors.Is(err, tier.ErrInvalidPeriod) {
			return errors.Join(ErrInvalidPayload, err)
		}
		return errors.Join(ErrProcessingFailed, err)
	}
	return nil
}

// isRenewal reports whether a successful notification is a recurring
// charge on the user's existing recurring profile. The passthrough
// tier and period fields keep echoing whatever payment page opened the
// profile, so they say nothing once the plan has changed in-app; only
// the recurring id identifies the charge. A different non-empty
// recurring id means a new payment page was used and is treated as an
// activation.
func (p *Processor) isRenewal(ctx context.Context, userID uuid.UUID, payload grow.WebhookPayload) bool {
	if payload.RecurringID == "" {
		return false
	}
	sub, err := p.manager.GetSubscription(ctx, userID)
	if err != nil || !sub.HasTier() {
		return false
	}
	return sub.GrowRecurringID == payload.RecurringID
}
