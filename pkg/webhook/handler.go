package webhook

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
)

// maxBodySize caps webhook bodies well above any real notification.
const maxBodySize = 1 << 20

// Handler returns an http.Handler for the gateway's notify URL.
//
// Status codes steer the gateway's retry behavior: 401 for a failed
// verification, 200 for applied and duplicate notifications, 200 for
// payloads that can never be applied (a retry would not help), and 500
// only for transient processing failures worth retrying.
func Handler(p *Processor, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			log.Error("failed to read webhook body", slog.Any("error", err))
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		switch err := p.Process(r.Context(), body); {
		case err == nil:
			w.WriteHeader(http.StatusOK)
		case errors.Is(err, ErrDuplicateNotification):
			w.WriteHeader(http.StatusOK)
		case errors.Is(err, ErrVerificationFailed):
			log.Warn("rejected unverified webhook notification",
				slog.String("remote_addr", r.RemoteAddr))
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		case errors.Is(err, ErrInvalidPayload):
			// acknowledged so the gateway stops retrying a payload
			// that will never become valid
			log.Warn("discarded undeliverable webhook notification",
				slog.Any("error", err))
			w.WriteHeader(http.StatusOK)
		default:
			log.Error("webhook processing failed", slog.Any("error", err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	})
}
