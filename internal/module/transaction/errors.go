package transaction

import "errors"

// Module errors.
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrEmptyCart           = errors.New("transaction must contain at least one item")
	ErrInvalidMethod       = errors.New("invalid payment method")
	ErrInvalidFulfillment  = errors.New("invalid fulfillment status")
	ErrInvalidTransition   = errors.New("invalid payment status transition")
	ErrGatewayRefAssigned  = errors.New("gateway reference already assigned")
)
