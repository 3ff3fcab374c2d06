package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingServerKey is returned when no gateway server key is configured.
	ErrMissingServerKey = errors.New("missing checkout server key")

	// ErrAlreadyPaid is returned when a checkout is requested for a paid invoice.
	ErrAlreadyPaid = errors.New("invoice is already paid")

	// ErrInvalidAmount is returned for invoices whose total cannot be charged.
	ErrInvalidAmount = errors.New("invoice total must be positive")

	// ErrMissingToken is returned when the gateway answers without a token.
	ErrMissingToken = errors.New("token not found in gateway response")

	// ErrInvalidSignature is returned for notifications that fail verification.
	ErrInvalidSignature = errors.New("invalid notification signature")

	// ErrNotificationMismatch is returned when a signed notification does not
	// belong to the invoice it names.
	ErrNotificationMismatch = errors.New("notification does not match invoice")
)

// CheckoutError describes a failed call to the payment gateway.
type CheckoutError struct {
	Op         string
	StatusCode int
	Err        error
	Details    string
}

func (e *CheckoutError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Err)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Details != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Details)
	}
	return msg
}

func (e *CheckoutError) Unwrap() error {
	return e.Err
}

func (e *CheckoutError) Is(target error) bool {
	return errors.Is(e.Err, target)
}
