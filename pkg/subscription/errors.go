package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// Business-rule violations, always rejected before any mutation.
	ErrInvalidTransition = errors.New("invalid subscription state transition")
	ErrNoActiveTier      = errors.New("subscription has no active tier")
	ErrAlreadyCancelled  = errors.New("subscription is already cancelled")
	ErrNotAnUpgrade      = errors.New("target tier is not an upgrade from current tier")
	ErrNotADowngrade     = errors.New("target tier is not a downgrade from current tier")
	ErrNoScheduledChange = errors.New("no scheduled change to cancel")

	ErrFailedToSave = errors.New("failed to save subscription")
	ErrFailedToRead = errors.New("failed to read subscription")
)
