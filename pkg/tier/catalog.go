package tier

import (
	"errors"
	"fmt"
	"slices"
)

// Config describes a single tier: its price per billing period and its
// resource/feature constraints.
type Config struct {
	Tier     Tier                    `yaml:"tier"`
	Prices   map[BillingPeriod]Money `yaml:"prices"`
	Limits   map[Resource]int64      `yaml:"limits"` // -1 represents unlimited
	Features []Feature               `yaml:"features"`
}

// HasFeature reports whether the tier includes the feature.
func (c Config) HasFeature(f Feature) bool {
	return slices.Contains(c.Features, f)
}

// Catalog is an immutable, validated lookup table of tier configurations.
// The maps are never modified after construction, so a Catalog is safe for
// concurrent use without locking.
type Catalog struct {
	configs map[Tier]Config
}

// NewCatalog validates the given configs and builds a Catalog.
// Validation is strict: every known tier must be configured with a price
// for every billing period and a limit for every metered resource, and
// prices must be strictly ordered by tier within each period. Catching
// holes here turns a stringly-typed map edit into a startup failure.
func NewCatalog(configs []Config) (*Catalog, error) {
	byTier := make(map[Tier]Config, len(configs))
	for _, cfg := range configs {
		if _, dup := byTier[cfg.Tier]; dup {
			return nil, errors.Join(ErrInvalidCatalog,
				fmt.Errorf("duplicate config for tier %q", cfg.Tier))
		}
		byTier[cfg.Tier] = cfg
	}

	for _, t := range AllTiers() {
		cfg, ok := byTier[t]
		if !ok {
			return nil, errors.Join(ErrInvalidCatalog,
				fmt.Errorf("missing config for tier %q", t))
		}
		for _, p := range AllPeriods() {
			if _, ok := cfg.Prices[p]; !ok {
				return nil, errors.Join(ErrInvalidCatalog,
					fmt.Errorf("tier %q has no price for period %q", t, p))
			}
		}
		for _, r := range AllResources() {
			limit, ok := cfg.Limits[r]
			if !ok {
				return nil, errors.Join(ErrInvalidCatalog,
					fmt.Errorf("tier %q has no limit for resource %q", t, r))
			}
			if limit < Unlimited {
				return nil, errors.Join(ErrInvalidCatalog,
					fmt.Errorf("tier %q has negative limit %d for resource %q", t, limit, r))
			}
		}
	}

	// Price ordering defines upgrade/downgrade direction, so it must be
	// strict for every period.
	tiers := AllTiers()
	for _, p := range AllPeriods() {
		for i := 1; i < len(tiers); i++ {
			lo := byTier[tiers[i-1]].Prices[p]
			hi := byTier[tiers[i]].Prices[p]
			if hi.Amount <= lo.Amount {
				return nil, errors.Join(ErrInvalidCatalog,
					fmt.Errorf("price of %q (%d) is not above %q (%d) for period %q",
						tiers[i], hi.Amount, tiers[i-1], lo.Amount, p))
			}
		}
	}

	return &Catalog{configs: byTier}, nil
}

// MustCatalog is NewCatalog that panics on invalid configuration.
// Intended for the built-in catalog, where a failure is a programming error.
func MustCatalog(configs []Config) *Catalog {
	c, err := NewCatalog(configs)
	if err != nil {
		panic(err)
	}
	return c
}

// Config returns the configuration for a tier.
func (c *Catalog) Config(t Tier) (Config, error) {
	cfg, ok := c.configs[t]
	if !ok {
		return Config{}, ErrTierNotFound
	}
	return cfg, nil
}

// Price returns the list price for a tier and billing period.
func (c *Catalog) Price(t Tier, p BillingPeriod) (Money, error) {
	cfg, ok := c.configs[t]
	if !ok {
		return Money{}, ErrTierNotFound
	}
	price, ok := cfg.Prices[p]
	if !ok {
		return Money{}, ErrPriceNotConfigured
	}
	return price, nil
}

// Limit returns the numeric limit for a resource on a tier.
// Unlimited (-1) means no limit is enforced.
func (c *Catalog) Limit(t Tier, r Resource) (int64, error) {
	cfg, ok := c.configs[t]
	if !ok {
		return 0, ErrTierNotFound
	}
	limit, ok := cfg.Limits[r]
	if !ok {
		return 0, ErrInvalidResource
	}
	return limit, nil
}

// HasFeature reports whether a tier includes a feature.
// Unknown tiers fail closed.
func (c *Catalog) HasFeature(t Tier, f Feature) bool {
	cfg, ok := c.configs[t]
	if !ok {
		return false
	}
	return cfg.HasFeature(f)
}

// IsUpgrade reports whether switching from one tier to another is a strict
// upgrade, i.e. the target is strictly more expensive for the given period.
func (c *Catalog) IsUpgrade(from, to Tier, p BillingPeriod) (bool, error) {
	fromPrice, err := c.Price(from, p)
	if err != nil {
		return false, err
	}
	toPrice, err := c.Price(to, p)
	if err != nil {
		return false, err
	}
	return toPrice.Amount > fromPrice.Amount, nil
}

// IsDowngrade reports whether the target tier is strictly cheaper for the
// given period.
func (c *Catalog) IsDowngrade(from, to Tier, p BillingPeriod) (bool, error) {
	up, err := c.IsUpgrade(to, from, p)
	if err != nil {
		return false, err
	}
	return up, nil
}

// CheapestTierWithFeature returns the least expensive tier (by monthly
// price) that includes the feature. Used to tell a denied caller what to
// upgrade to.
func (c *Catalog) CheapestTierWithFeature(f Feature) (Tier, error) {
	for _, t := range AllTiers() { // AllTiers is ordered cheapest first
		if c.configs[t].HasFeature(f) {
			return t, nil
		}
	}
	return "", ErrNoTierWithFeature
}
