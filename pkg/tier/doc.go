// Package tier defines the paid plan catalog: tier, billing-period,
// resource and feature identifiers, per-tier prices and limits, and the
// calendar arithmetic for billing windows.
//
// The catalog is validated exhaustively at construction time: every tier
// must carry a price for every billing period and a limit for every
// metered resource, and prices must be strictly ordered by tier. Adding a
// tier or resource is therefore a type-checked change, not a map edit
// that fails at request time.
//
// # Usage
//
//	catalog := tier.DefaultCatalog()
//
//	limit, err := catalog.Limit(tier.TierMomentum, tier.ResourceApplications)
//	ok, err := catalog.IsUpgrade(tier.TierSpark, tier.TierSummit, tier.PeriodMonthly)
//
// Deployments can override the built-in numbers with a YAML file:
//
//	catalog, err := tier.LoadCatalog(ctx, tier.FileSource("tiers.yaml"))
package tier
