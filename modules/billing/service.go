package billing

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/momentumhq/billingkit/pkg/grow"
	"github.com/momentumhq/billingkit/pkg/subscription"
	"github.com/momentumhq/billingkit/pkg/tier"
	"github.com/momentumhq/billingkit/pkg/usage"
)

// Gateway is the slice of the payment gateway the billing endpoints
// use.
type Gateway interface {
	CreateRecurringPayment(ctx context.Context, t tier.Tier, p tier.BillingPeriod, userID uuid.UUID, urls grow.CallbackURLs, email, fullName string) (*grow.Result, error)
	CreateOneTimeCharge(ctx context.Context, amount tier.Money, description string, userID uuid.UUID, transactionToken string) (*grow.Result, error)
}

// Config holds the callback URLs attached to hosted payment pages.
type Config struct {
	NotifyURL  string `env:"BILLING_NOTIFY_URL,required"`
	SuccessURL string `env:"BILLING_SUCCESS_URL,required"`
	CancelURL  string `env:"BILLING_CANCEL_URL,required"`
}

// Service exposes the subscription lifecycle over HTTP. State changes
// from payments arrive through the webhook processor; these endpoints
// cover the user-initiated paths.
type Service struct {
	manager *subscription.Manager
	gateway Gateway
	urls    grow.CallbackURLs
	log     *slog.Logger
}

// NewService creates a Service. Panics on nil manager or gateway.
func NewService(manager *subscription.Manager, gateway Gateway, cfg Config, log *slog.Logger) *Service {
	if manager == nil {
		panic("billing: subscription manager is required")
	}
	if gateway == nil {
		panic("billing: payment gateway is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		manager: manager,
		gateway: gateway,
		urls: grow.CallbackURLs{
			NotifyURL:  cfg.NotifyURL,
			SuccessURL: cfg.SuccessURL,
			CancelURL:  cfg.CancelURL,
		},
		log: log,
	}
}

type checkoutRequest struct {
	Tier          string `json:"tier"`
	BillingPeriod string `json:"billing_period"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
}

// handleCheckout opens a hosted payment page for the requested plan.
// The subscription itself is activated later by the gateway webhook.
func (s *Service) handleCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := usage.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.gateway.CreateRecurringPayment(r.Context(),
		tier.Tier(req.Tier), tier.BillingPeriod(req.BillingPeriod),
		userID, s.urls, req.Email, req.FullName)
	if err != nil {
		if errors.Is(err, tier.ErrTierNotFound) || errors.Is(err, tier.ErrPriceNotConfigured) || errors.Is(err, grow.ErrPageCodeNotConfigured) {
			writeError(w, http.StatusBadRequest, "unknown tier or billing period")
			return
		}
		s.log.Error("checkout failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !res.Success {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": res.Error})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"redirect_url": res.RedirectURL})
}

type subscriptionResponse struct {
	Tier               *string          `json:"tier"`
	BillingPeriod      string           `json:"billing_period,omitempty"`
	Status             string           `json:"status,omitempty"`
	CurrentPeriodStart *time.Time       `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time       `json:"current_period_end,omitempty"`
	CancelledAt        *time.Time       `json:"cancelled_at,omitempty"`
	EffectiveUntil     *time.Time       `json:"effective_until,omitempty"`
	ScheduledTier      *string          `json:"scheduled_tier,omitempty"`
	Usage              map[string]int64 `json:"usage,omitempty"`
}

func (s *Service) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := usage.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sub, err := s.manager.GetSubscription(r.Context(), userID)
	if err != nil {
		if errors.Is(err, subscription.ErrSubscriptionNotFound) {
			// no row yet means the user is simply on the free plan
			writeJSON(w, http.StatusOK, subscriptionResponse{})
			return
		}
		s.log.Error("failed to read subscription", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := subscriptionResponse{
		BillingPeriod: string(sub.BillingPeriod),
		Status:        string(sub.Status),
		CancelledAt:   sub.CancelledAt,
	}
	if sub.HasTier() {
		t := string(*sub.Tier)
		resp.Tier = &t
		resp.CurrentPeriodStart = &sub.CurrentPeriodStart
		resp.CurrentPeriodEnd = &sub.CurrentPeriodEnd
		effective := sub.EffectiveEnd()
		resp.EffectiveUntil = &effective
		resp.Usage = make(map[string]int64, len(sub.Usage))
		for res, n := range sub.Usage {
			resp.Usage[string(res)] = n
		}
	}
	if sub.ScheduledTier != nil {
		st := string(*sub.ScheduledTier)
		resp.ScheduledTier = &st
	}
	writeJSON(w, http.StatusOK, resp)
}

type changeTierRequest struct {
	Tier string `json:"tier"`
}

// handleUpgrade applies the tier change immediately and charges the
// prorated difference against the stored payment token.
func (s *Service) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := usage.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req changeTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.manager.UpgradeSubscription(r.Context(), userID, tier.Tier(req.Tier))
	if err != nil {
		writeManagerError(w, s.log, err)
		return
	}

	if result.ProratedAmount.Amount > 0 {
		sub, err := s.manager.GetSubscription(r.Context(), userID)
		if err == nil && sub.GrowTransactionToken != "" {
			charge, err := s.gateway.CreateOneTimeCharge(r.Context(),
				result.ProratedAmount, "plan upgrade proration", userID, sub.GrowTransactionToken)
			if err != nil || !charge.Success {
				// the upgrade stands; renewals charge the list price,
				// so a failed proration charge is forgone, not retried
				s.log.Warn("proration charge failed",
					slog.String("user_id", userID.String()),
					slog.Any("error", err))
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"prorated_amount":   result.ProratedAmount.Amount,
		"prorated_currency": result.ProratedAmount.Currency,
	})
}

func (s *Service) handleDowngrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := usage.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req changeTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.manager.ScheduleDowngrade(r.Context(), userID, tier.Tier(req.Tier))
	if err != nil {
		writeManagerError(w, s.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"effective_at": result.EffectiveAt})
}

func (s *Service) handleCancelScheduledChange(w http.ResponseWriter, r *http.Request) {
	userID, ok := usage.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := s.manager.CancelScheduledChange(r.Context(), userID); err != nil {
		writeManagerError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleCancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := usage.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := s.manager.CancelSubscription(r.Context(), userID)
	if err != nil {
		writeManagerError(w, s.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"effective_at": result.EffectiveAt})
}

// writeManagerError maps subscription manager errors to HTTP codes.
func writeManagerError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, subscription.ErrSubscriptionNotFound),
		errors.Is(err, subscription.ErrNoActiveTier):
		writeError(w, http.StatusNotFound, "no active subscription")
	case errors.Is(err, subscription.ErrAlreadyCancelled):
		writeError(w, http.StatusConflict, "subscription is already cancelled")
	case errors.Is(err, subscription.ErrNoScheduledChange):
		writeError(w, http.StatusNotFound, "no scheduled change")
	case errors.Is(err, subscription.ErrNotAnUpgrade),
		errors.Is(err, subscription.ErrNotADowngrade),
		errors.Is(err, tier.ErrTierNotFound):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error("subscription operation failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
