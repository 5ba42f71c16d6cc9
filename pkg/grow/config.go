package grow

import (
	"errors"
	"fmt"

	"github.com/momentumhq/billingkit/pkg/tier"
)

// Config holds the Grow gateway credentials and the page-code table.
// Every field is required: a missing value is a configuration error
// surfaced at startup or at operation time, never a silent default.
type Config struct {
	APIURL        string `env:"GROW_API_URL,required"`
	UserID        string `env:"GROW_USER_ID,required"` // account identifier, sent as userId on every call
	WebhookSecret string `env:"GROW_WEBHOOK_SECRET,required"`

	// One hosted payment page per tier and billing period combination.
	PageCodeSparkMonthly      string `env:"GROW_PAGE_CODE_SPARK_MONTHLY,required"`
	PageCodeSparkQuarterly    string `env:"GROW_PAGE_CODE_SPARK_QUARTERLY,required"`
	PageCodeSparkYearly       string `env:"GROW_PAGE_CODE_SPARK_YEARLY,required"`
	PageCodeMomentumMonthly   string `env:"GROW_PAGE_CODE_MOMENTUM_MONTHLY,required"`
	PageCodeMomentumQuarterly string `env:"GROW_PAGE_CODE_MOMENTUM_QUARTERLY,required"`
	PageCodeMomentumYearly    string `env:"GROW_PAGE_CODE_MOMENTUM_YEARLY,required"`
	PageCodeSummitMonthly     string `env:"GROW_PAGE_CODE_SUMMIT_MONTHLY,required"`
	PageCodeSummitQuarterly   string `env:"GROW_PAGE_CODE_SUMMIT_QUARTERLY,required"`
	PageCodeSummitYearly      string `env:"GROW_PAGE_CODE_SUMMIT_YEARLY,required"`
}

// Validate checks that every required value is present.
func (c Config) Validate() error {
	if c.APIURL == "" {
		return errors.Join(ErrMissingConfiguration, errors.New("GROW_API_URL is required"))
	}
	if c.UserID == "" {
		return errors.Join(ErrMissingConfiguration, errors.New("GROW_USER_ID is required"))
	}
	if c.WebhookSecret == "" {
		return errors.Join(ErrMissingConfiguration, errors.New("GROW_WEBHOOK_SECRET is required"))
	}
	for _, t := range tier.AllTiers() {
		for _, p := range tier.AllPeriods() {
			if _, err := c.PageCode(t, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// PageCode resolves the hosted payment page for a tier and billing
// period. An empty configured value is an error, not a default.
func (c Config) PageCode(t tier.Tier, p tier.BillingPeriod) (string, error) {
	var code string
	switch t {
	case tier.TierSpark:
		switch p {
		case tier.PeriodMonthly:
			code = c.PageCodeSparkMonthly
		case tier.PeriodQuarterly:
			code = c.PageCodeSparkQuarterly
		case tier.PeriodYearly:
			code = c.PageCodeSparkYearly
		}
	case tier.TierMomentum:
		switch p {
		case tier.PeriodMonthly:
			code = c.PageCodeMomentumMonthly
		case tier.PeriodQuarterly:
			code = c.PageCodeMomentumQuarterly
		case tier.PeriodYearly:
			code = c.PageCodeMomentumYearly
		}
	case tier.TierSummit:
		switch p {
		case tier.PeriodMonthly:
			code = c.PageCodeSummitMonthly
		case tier.PeriodQuarterly:
			code = c.PageCodeSummitQuarterly
		case tier.PeriodYearly:
			code = c.PageCodeSummitYearly
		}
	}
	if code == "" {
		return "", fmt.Errorf("%w: no page code for tier %q period %q", ErrPageCodeNotConfigured, t, p)
	}
	return code, nil
}
