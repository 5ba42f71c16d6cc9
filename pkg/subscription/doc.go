// Package subscription implements the subscription lifecycle: the
// one-row-per-user domain model, the Manager state machine that mutates
// it, and the append-only audit event log.
//
// The Manager owns every write to the subscription row. Operations either
// commit a fully consistent row or fail with no partial effects. Audit
// events are advisory: append failures are logged and never roll back a
// committed state change.
//
// Three independent actors mutate the row through the Manager: the user's
// own API requests (upgrade, cancel), asynchronous payment-gateway
// webhooks (activate, renew, payment failure) and the periodic expiration
// sweep. Renewal guards its counter reset against webhook redelivery by
// comparing LastResetAt with the period start being established;
// transaction-level dedupe lives upstream in the webhook processor.
//
// # Usage
//
//	store := subscription.NewPgStore(pool)
//	manager := subscription.NewManager(store, store, catalog,
//		subscription.WithLogger(log))
//
//	err := manager.ActivateSubscription(ctx, userID,
//		tier.TierMomentum, tier.PeriodMonthly, &subscription.GatewayData{
//			TransactionToken: payload.TransactionToken,
//			RecurringID:      payload.RecurringID,
//		})
package subscription
