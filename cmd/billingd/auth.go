package main

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/momentumhq/billingkit/pkg/usage"
)

// userIDHeaderAuth trusts the X-User-ID header set by the edge proxy
// after session validation. billingd itself never sees credentials;
// it must not be exposed directly to the internet.
func userIDHeaderAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.Header.Get("X-User-ID"))
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(usage.SetUserIDToContext(r.Context(), userID)))
	})
}
