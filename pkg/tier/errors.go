package tier

import "errors"

var (
	ErrTierNotFound       = errors.New("tier not found in catalog")
	ErrInvalidPeriod      = errors.New("invalid billing period")
	ErrInvalidResource    = errors.New("invalid resource")
	ErrInvalidCatalog     = errors.New("invalid tier catalog configuration")
	ErrFailedToLoadTiers  = errors.New("failed to load tier catalog")
	ErrNoTierWithFeature  = errors.New("no tier includes the feature")
	ErrPriceNotConfigured = errors.New("tier has no price for billing period")
)
