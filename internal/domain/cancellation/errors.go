package cancellation

import "errors"

var (
	// ErrInvalidTransition means the booking can no longer be cancelled.
	ErrInvalidTransition = errors.New("cancellation not allowed in current lifecycle state")

	// ErrDataIntegrity means the stored amounts do not reconcile. Never coerce it.
	ErrDataIntegrity = errors.New("booking amounts do not reconcile")

	ErrTimingOutOfRange   = errors.New("cancellation instant out of range")
	ErrInvalidPolicy      = errors.New("invalid cancellation policy")
	ErrInvalidWithholding = errors.New("invalid deposit withholding")
)
