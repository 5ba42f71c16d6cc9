package tier_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentumhq/billingkit/pkg/tier"
)

func TestNewCatalogValidation(t *testing.T) {
	t.Parallel()

	t.Run("default catalog is valid", func(t *testing.T) {
		t.Parallel()

		c, err := tier.NewCatalog(tier.DefaultConfigs())
		require.NoError(t, err)
		require.NotNil(t, c)
	})

	t.Run("missing tier", func(t *testing.T) {
		t.Parallel()

		configs := tier.DefaultConfigs()[:2]
		_, err := tier.NewCatalog(configs)
		require.ErrorIs(t, err, tier.ErrInvalidCatalog)
	})

	t.Run("duplicate tier", func(t *testing.T) {
		t.Parallel()

		configs := tier.DefaultConfigs()
		configs = append(configs, configs[0])
		_, err := tier.NewCatalog(configs)
		require.ErrorIs(t, err, tier.ErrInvalidCatalog)
	})

	t.Run("missing price", func(t *testing.T) {
		t.Parallel()

		configs := tier.DefaultConfigs()
		delete(configs[1].Prices, tier.PeriodQuarterly)
		_, err := tier.NewCatalog(configs)
		require.ErrorIs(t, err, tier.ErrInvalidCatalog)
	})

	t.Run("missing limit", func(t *testing.T) {
		t.Parallel()

		configs := tier.DefaultConfigs()
		delete(configs[0].Limits, tier.ResourceFileUploads)
		_, err := tier.NewCatalog(configs)
		require.ErrorIs(t, err, tier.ErrInvalidCatalog)
	})

	t.Run("limit below unlimited sentinel", func(t *testing.T) {
		t.Parallel()

		configs := tier.DefaultConfigs()
		configs[0].Limits[tier.ResourceApplications] = -2
		_, err := tier.NewCatalog(configs)
		require.ErrorIs(t, err, tier.ErrInvalidCatalog)
	})

	t.Run("prices must be strictly ordered by tier", func(t *testing.T) {
		t.Parallel()

		configs := tier.DefaultConfigs()
		configs[2].Prices[tier.PeriodMonthly] = tier.Money{Amount: 100, Currency: "ILS"}
		_, err := tier.NewCatalog(configs)
		require.ErrorIs(t, err, tier.ErrInvalidCatalog)
	})
}

func TestCatalogLookups(t *testing.T) {
	t.Parallel()

	c := tier.DefaultCatalog()

	price, err := c.Price(tier.TierMomentum, tier.PeriodMonthly)
	require.NoError(t, err)
	assert.Equal(t, tier.Money{Amount: 4900, Currency: "ILS"}, price)

	_, err = c.Price("platinum", tier.PeriodMonthly)
	require.ErrorIs(t, err, tier.ErrTierNotFound)

	limit, err := c.Limit(tier.TierMomentum, tier.ResourceApplications)
	require.NoError(t, err)
	assert.Equal(t, int64(15), limit)

	limit, err = c.Limit(tier.TierSummit, tier.ResourceApplications)
	require.NoError(t, err)
	assert.Equal(t, tier.Unlimited, limit)

	_, err = c.Limit(tier.TierSummit, "teleportations")
	require.ErrorIs(t, err, tier.ErrInvalidResource)
}

func TestCatalogFeatures(t *testing.T) {
	t.Parallel()

	c := tier.DefaultCatalog()

	assert.False(t, c.HasFeature(tier.TierSpark, tier.FeatureJobDiscovery))
	assert.True(t, c.HasFeature(tier.TierMomentum, tier.FeatureJobDiscovery))
	assert.False(t, c.HasFeature("platinum", tier.FeatureJobDiscovery))

	got, err := c.CheapestTierWithFeature(tier.FeatureJobDiscovery)
	require.NoError(t, err)
	assert.Equal(t, tier.TierMomentum, got)

	got, err = c.CheapestTierWithFeature(tier.FeatureDataExport)
	require.NoError(t, err)
	assert.Equal(t, tier.TierSummit, got)

	_, err = c.CheapestTierWithFeature("time_travel")
	require.ErrorIs(t, err, tier.ErrNoTierWithFeature)
}

func TestUpgradeDowngradeDirection(t *testing.T) {
	t.Parallel()

	c := tier.DefaultCatalog()

	up, err := c.IsUpgrade(tier.TierSpark, tier.TierSummit, tier.PeriodMonthly)
	require.NoError(t, err)
	assert.True(t, up)

	up, err = c.IsUpgrade(tier.TierSummit, tier.TierSpark, tier.PeriodMonthly)
	require.NoError(t, err)
	assert.False(t, up)

	down, err := c.IsDowngrade(tier.TierSummit, tier.TierMomentum, tier.PeriodYearly)
	require.NoError(t, err)
	assert.True(t, down)

	down, err = c.IsDowngrade(tier.TierMomentum, tier.TierMomentum, tier.PeriodYearly)
	require.NoError(t, err)
	assert.False(t, down)
}

func TestPeriodEnd(t *testing.T) {
	t.Parallel()

	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
	}

	assert.Equal(t, date(2025, time.April, 15),
		tier.PeriodEnd(date(2025, time.March, 15), tier.PeriodMonthly))
	assert.Equal(t, date(2025, time.June, 15),
		tier.PeriodEnd(date(2025, time.March, 15), tier.PeriodQuarterly))
	assert.Equal(t, date(2026, time.March, 15),
		tier.PeriodEnd(date(2025, time.March, 15), tier.PeriodYearly))

	// Jan 31 + 1 month normalizes past February's end
	assert.Equal(t, date(2025, time.March, 3),
		tier.PeriodEnd(date(2025, time.January, 31), tier.PeriodMonthly))
	// leap year: Feb 29 + 12 months lands on Mar 1
	assert.Equal(t, date(2025, time.March, 1),
		tier.PeriodEnd(date(2024, time.February, 29), tier.PeriodYearly))
}

func TestLoadCatalogFromFile(t *testing.T) {
	t.Parallel()

	c, err := tier.LoadCatalog(context.Background(), tier.FileSource("testdata/tiers.yaml"))
	require.NoError(t, err)

	price, err := c.Price(tier.TierSpark, tier.PeriodMonthly)
	require.NoError(t, err)
	assert.Equal(t, tier.Money{Amount: 1900, Currency: "ILS"}, price)

	_, err = tier.LoadCatalog(context.Background(), tier.FileSource("testdata/missing.yaml"))
	require.ErrorIs(t, err, tier.ErrFailedToLoadTiers)
}
