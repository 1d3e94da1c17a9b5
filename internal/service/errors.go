package service

import "errors"

// Validation errors are raised before any provider call; provider errors are
// wrapped with a provider-prefixed message. Handlers sanitize everything that
// crosses to the browser.
var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrMissingEmail         = errors.New("customer email is required")
	ErrMissingField         = errors.New("missing required field")
	ErrOutOfStock           = errors.New("out of stock")
	ErrCaptureIncomplete    = errors.New("payment capture not completed")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)

// CauseCode maps an error to the machine-readable cause code the storefront
// matches on. Empty for errors with no distinguished cause.
func CauseCode(err error) string {
	switch {
	case errors.Is(err, ErrOutOfStock):
		return "OutOfStock"
	case errors.Is(err, ErrEmptyCart):
		return "EmptyCart"
	case errors.Is(err, ErrMissingEmail):
		return "MissingEmail"
	case errors.Is(err, ErrMissingField):
		return "MissingField"
	case errors.Is(err, ErrCaptureIncomplete):
		return "CaptureIncomplete"
	}
	return ""
}
