package usage

import (
	"encoding/json"
	"net/http"

	"github.com/momentumhq/billingkit/pkg/tier"
)

// RequireResource is middleware for resource-creating routes. It runs the
// usage check before the handler and maps denials to the HTTP contract:
// 402 for a missing subscription, 403 for an exhausted limit. The handler
// itself remains responsible for calling Gate.IncrementUsage after a
// successful create.
func RequireResource(g *Gate, res tier.Resource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserIDFromContext(r.Context())
			if !ok {
				writeDenial(w, http.StatusUnauthorized, "authentication required")
				return
			}

			result, err := g.CheckUsageLimit(r.Context(), userID, res)
			if err != nil {
				writeDenial(w, http.StatusInternalServerError, "usage check failed")
				return
			}
			if !result.Allowed {
				switch result.Reason {
				case ReasonNoSubscription:
					writeDenial(w, http.StatusPaymentRequired, "an active subscription is required")
				default:
					writeDenial(w, http.StatusForbidden, "usage limit exceeded")
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireFeature is middleware for routes gated behind a binary feature.
// Denials are 403 with the required tier in the body.
func RequireFeature(g *Gate, feature tier.Feature) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserIDFromContext(r.Context())
			if !ok {
				writeDenial(w, http.StatusUnauthorized, "authentication required")
				return
			}

			result, err := g.CheckFeatureAccess(r.Context(), userID, feature)
			if err != nil {
				writeDenial(w, http.StatusInternalServerError, "feature check failed")
				return
			}
			if !result.Allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":         "feature not available on current tier",
					"required_tier": string(result.RequiredTier),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeDenial(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
