package tier

// DefaultCatalog returns the built-in tier catalog. Prices are in agorot.
// Deployments that need different numbers load a YAML file via FileSource
// instead of editing this table.
func DefaultCatalog() *Catalog {
	return MustCatalog(DefaultConfigs())
}

// DefaultConfigs returns the built-in tier configurations.
func DefaultConfigs() []Config {
	return []Config{
		{
			Tier: TierSpark,
			Prices: map[BillingPeriod]Money{
				PeriodMonthly:   {Amount: 2900, Currency: "ILS"},
				PeriodQuarterly: {Amount: 7900, Currency: "ILS"},
				PeriodYearly:    {Amount: 27900, Currency: "ILS"},
			},
			Limits: map[Resource]int64{
				ResourceApplications:      5,
				ResourceTailoredCVs:       3,
				ResourceInterviewPreps:    3,
				ResourceCompensationPlans: 1,
				ResourceJobDiscoveries:    5,
				ResourceFileUploads:       10,
			},
			Features: []Feature{},
		},
		{
			Tier: TierMomentum,
			Prices: map[BillingPeriod]Money{
				PeriodMonthly:   {Amount: 4900, Currency: "ILS"},
				PeriodQuarterly: {Amount: 13900, Currency: "ILS"},
				PeriodYearly:    {Amount: 46900, Currency: "ILS"},
			},
			Limits: map[Resource]int64{
				ResourceApplications:      15,
				ResourceTailoredCVs:       10,
				ResourceInterviewPreps:    10,
				ResourceCompensationPlans: 5,
				ResourceJobDiscoveries:    20,
				ResourceFileUploads:       50,
			},
			Features: []Feature{
				FeatureInterviewQuestions,
				FeatureJobDiscovery,
			},
		},
		{
			Tier: TierSummit,
			Prices: map[BillingPeriod]Money{
				PeriodMonthly:   {Amount: 9900, Currency: "ILS"},
				PeriodQuarterly: {Amount: 26900, Currency: "ILS"},
				PeriodYearly:    {Amount: 94900, Currency: "ILS"},
			},
			Limits: map[Resource]int64{
				ResourceApplications:      Unlimited,
				ResourceTailoredCVs:       Unlimited,
				ResourceInterviewPreps:    50,
				ResourceCompensationPlans: 20,
				ResourceJobDiscoveries:    Unlimited,
				ResourceFileUploads:       200,
			},
			Features: []Feature{
				FeatureCompensationStrategy,
				FeatureInterviewQuestions,
				FeatureJobDiscovery,
				FeaturePrioritySupport,
				FeatureDataExport,
			},
		},
	}
}
