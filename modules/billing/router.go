package billing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/momentumhq/billingkit/pkg/usage"
)

// RouterOptions configures the billing module router. The webhook
// handler is mounted unauthenticated; everything else expects the user
// ID middleware to have run.
type RouterOptions struct {
	Service *Service
	// Gate enables the read-only entitlement endpoints. Optional.
	Gate *usage.Gate
	// Webhook receives gateway notifications. Optional so a worker
	// deployment can serve the API without the notify endpoint.
	Webhook http.Handler
	// Authenticate resolves the caller and puts the user ID in the
	// request context. Required for the user-facing routes.
	Authenticate func(http.Handler) http.Handler
	// Logger is used by the entitlement endpoints. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Router creates the billing module router.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Mount("/billing", billing.Router(billing.RouterOptions{
//		Service:      svc,
//		Webhook:      webhook.Handler(processor, log),
//		Authenticate: sessionAuth,
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	if opts.Webhook != nil {
		r.Method(http.MethodPost, "/webhooks/grow", opts.Webhook)
	}

	r.Group(func(api chi.Router) {
		if opts.Authenticate != nil {
			api.Use(opts.Authenticate)
		}
		if opts.Service != nil {
			api.Get("/subscription", opts.Service.handleGetSubscription)
			api.Post("/checkout", opts.Service.handleCheckout)
			api.Post("/upgrade", opts.Service.handleUpgrade)
			api.Post("/downgrade", opts.Service.handleDowngrade)
			api.Delete("/scheduled-change", opts.Service.handleCancelScheduledChange)
			api.Post("/cancel", opts.Service.handleCancel)
		}
		if opts.Gate != nil {
			log := opts.Logger
			if log == nil {
				log = slog.Default()
			}
			ent := &entitlements{gate: opts.Gate, log: log}
			api.Get("/entitlements/resources/{resource}", ent.handleResource)
			api.Get("/entitlements/features/{feature}", ent.handleFeature)
		}
	})

	return r
}
