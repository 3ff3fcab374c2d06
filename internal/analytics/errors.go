package analytics

import "errors"

var (
	// ErrInvalidWindow is returned when a date window is missing a bound or
	// ends before it starts.
	ErrInvalidWindow = errors.New("invalid date window")

	// ErrUnknownEstimator is returned for a payment-method strategy name that
	// is not registered.
	ErrUnknownEstimator = errors.New("unknown payment method estimator")

	// ErrInvalidShares is returned when a share table cannot produce a
	// distribution that stays within the paid invoice count.
	ErrInvalidShares = errors.New("invalid payment method shares")
)
