package tier

import "time"

// Tier identifies a paid plan level.
type Tier string

const (
	TierSpark    Tier = "spark"
	TierMomentum Tier = "momentum"
	TierSummit   Tier = "summit"
)

// AllTiers lists every known tier. Catalog validation iterates this set,
// so adding a tier here forces a corresponding Config entry.
func AllTiers() []Tier {
	return []Tier{TierSpark, TierMomentum, TierSummit}
}

// BillingPeriod represents the cadence at which a tier is billed.
type BillingPeriod string

const (
	PeriodMonthly   BillingPeriod = "monthly"
	PeriodQuarterly BillingPeriod = "quarterly"
	PeriodYearly    BillingPeriod = "yearly"
)

// AllPeriods lists every supported billing period.
func AllPeriods() []BillingPeriod {
	return []BillingPeriod{PeriodMonthly, PeriodQuarterly, PeriodYearly}
}

// Months returns the calendar length of the period in months, or 0 for an
// unknown period.
func (p BillingPeriod) Months() int {
	switch p {
	case PeriodMonthly:
		return 1
	case PeriodQuarterly:
		return 3
	case PeriodYearly:
		return 12
	default:
		return 0
	}
}

// Valid reports whether the period is one of the supported cadences.
func (p BillingPeriod) Valid() bool {
	return p.Months() > 0
}

// PeriodEnd returns the end of a billing window that starts at start.
// Calendar-aware: a monthly period starting Jan 31 ends Mar 2/3 per
// time.AddDate normalization, not a fixed 30 days.
func PeriodEnd(start time.Time, period BillingPeriod) time.Time {
	return start.AddDate(0, period.Months(), 0)
}

// Resource represents a metered, numerically limited action.
type Resource string

const (
	ResourceApplications      Resource = "applications"
	ResourceTailoredCVs       Resource = "tailored_cvs"
	ResourceInterviewPreps    Resource = "interview_preps"
	ResourceCompensationPlans Resource = "compensation_plans"
	ResourceJobDiscoveries    Resource = "job_discoveries"
	ResourceFileUploads       Resource = "file_uploads"
)

// AllResources lists every metered resource. The subscription row carries
// one usage counter per entry.
func AllResources() []Resource {
	return []Resource{
		ResourceApplications,
		ResourceTailoredCVs,
		ResourceInterviewPreps,
		ResourceCompensationPlans,
		ResourceJobDiscoveries,
		ResourceFileUploads,
	}
}

// Unlimited indicates no limit for a resource (-1 chosen for SQL compatibility).
const Unlimited int64 = -1

// Feature represents a binary, tier-gated capability independent of a
// numeric counter.
type Feature string

const (
	FeatureCompensationStrategy Feature = "compensation_strategy"
	FeatureInterviewQuestions   Feature = "interview_questions"
	FeatureJobDiscovery         Feature = "job_discovery"
	FeaturePrioritySupport      Feature = "priority_support"
	FeatureDataExport           Feature = "data_export"
)

// Money represents a monetary amount in the smallest currency unit
// (agorot for ILS, cents for USD).
type Money struct {
	Amount   int64  `yaml:"amount"`
	Currency string `yaml:"currency"`
}
