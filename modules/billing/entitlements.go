package billing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/momentumhq/billingkit/pkg/tier"
	"github.com/momentumhq/billingkit/pkg/usage"
)

// entitlements exposes the usage gate read-only, so product services
// can ask "may this user do X" without owning billing logic.
type entitlements struct {
	gate *usage.Gate
	log  *slog.Logger
}

func (e *entitlements) handleResource(w http.ResponseWriter, r *http.Request) {
	userID, ok := usage.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	res := tier.Resource(chi.URLParam(r, "resource"))
	result, err := e.gate.CheckUsageLimit(r.Context(), userID, res)
	if err != nil {
		e.log.Error("usage check failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"allowed":   result.Allowed,
		"unlimited": result.Unlimited,
		"used":      result.Used,
		"limit":     result.Limit,
		"remaining": result.Remaining,
		"reason":    result.Reason,
	})
}

func (e *entitlements) handleFeature(w http.ResponseWriter, r *http.Request) {
	userID, ok := usage.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	feature := tier.Feature(chi.URLParam(r, "feature"))
	result, err := e.gate.CheckFeatureAccess(r.Context(), userID, feature)
	if err != nil {
		e.log.Error("feature check failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := map[string]any{"allowed": result.Allowed}
	if !result.Allowed && result.RequiredTier != "" {
		resp["required_tier"] = string(result.RequiredTier)
	}
	writeJSON(w, http.StatusOK, resp)
}
