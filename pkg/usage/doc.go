// Package usage implements the metering gate consumed by every
// resource-creating operation.
//
// The contract is a check-then-act split: the caller runs
// CheckUsageLimit (or CheckFeatureAccess for binary features), performs
// the domain create, and calls IncrementUsage only when the create
// succeeded. Keeping the gate out of the creation path means quota is
// never debited for attempts that failed for unrelated reasons, at the
// cost of a small over-admission window between two concurrent checks.
// Quota here is a soft business limit, not a capacity reservation, so
// the window is accepted rather than paid for with per-user locking.
//
// A global kill-switch (Config.Enforced) turns every check permissive
// while still recording usage, and an optional AdminFunc exempts staff
// accounts.
//
// # Usage
//
//	gate := usage.NewGate(store, catalog, cfg,
//		usage.WithAdminFunc(isAdmin))
//
//	result, err := gate.CheckUsageLimit(ctx, userID, tier.ResourceApplications)
//	if err != nil { ... }
//	if !result.Allowed { ... } // 402 or 403 depending on result.Reason
//
//	app, err := createApplication(ctx, ...)
//	if err != nil { ... }      // increment must NOT run
//	gate.IncrementUsage(ctx, userID, tier.ResourceApplications)
package usage
