package grow

import "errors"

var (
	ErrMissingConfiguration  = errors.New("grow gateway configuration is incomplete")
	ErrPageCodeNotConfigured = errors.New("grow page code not configured")
	ErrRequestFailed         = errors.New("grow gateway request failed")
	ErrInvalidResponse       = errors.New("grow gateway returned an unreadable response")
)
