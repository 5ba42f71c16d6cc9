// Package webhook receives Grow gateway notifications and applies them
// to subscriptions.
//
// Every notification passes through the same pipeline: constant-time
// secret verification, parsing, deduplication by transaction code, and
// dispatch to exactly one subscription operation. A successful first
// charge or plan change activates, a recurring charge against the
// current plan renews, and a failed charge marks the subscription past
// due.
//
// Deduplication uses Redis in production (NewRedisDeduper) so retried
// notifications are acknowledged without double-applying across
// instances; the in-memory deduper serves tests.
//
// # Usage
//
//	deduper := webhook.NewRedisDeduper(redisClient, log)
//	processor := webhook.NewProcessor(manager, deduper, cfg.WebhookSecret,
//		webhook.WithLogger(log))
//	mux.Method(http.MethodPost, "/webhooks/grow", webhook.Handler(processor, log))
package webhook
