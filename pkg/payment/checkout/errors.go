package checkout

import "errors"

var (
	// ErrInvalidRequest is returned when the request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrPaymentFailed is returned when the gateway reports an error
	ErrPaymentFailed = errors.New("payment failed")

	// ErrTransactionNotFound is returned for an unknown reference
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")

	// ErrUnauthorized is returned when the secret key is rejected
	ErrUnauthorized = errors.New("unauthorized: invalid secret key")
)
