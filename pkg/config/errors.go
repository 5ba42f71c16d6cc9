package config

import "errors"

// ErrParsingConfig is returned when environment variables cannot be
// parsed into the config struct.
var ErrParsingConfig = errors.New("failed to parse environment variables into config")
