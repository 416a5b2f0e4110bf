package payment

import "errors"

// Module errors.
var (
	ErrUnknownProvider    = errors.New("unknown payment provider")
	ErrWrongMethod        = errors.New("operation does not match transaction payment method")
	ErrNonPositiveAmount  = errors.New("amount due must be positive")
	ErrInsufficientTender = errors.New("tendered amount is less than amount due")
	ErrPollTimeout        = errors.New("payment not confirmed within polling window")
)
