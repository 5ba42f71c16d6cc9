package webhook

import "errors"

var (
	ErrVerificationFailed    = errors.New("webhook verification failed")
	ErrDuplicateNotification = errors.New("webhook notification already processed")
	ErrInvalidPayload        = errors.New("webhook payload is invalid")
	ErrProcessingFailed      = errors.New("webhook processing failed")
)
