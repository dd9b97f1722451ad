package domain

import "errors"

var (
	ErrMissingField         = errors.New("amount and PIN are required")
	ErrInvalidPin           = errors.New("PIN must be exactly 4 digits")
	ErrInvalidAmount        = errors.New("amount must be a positive number")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidCard          = errors.New("card number must be 16 digits")
	ErrConcurrentSubmission = errors.New("another submission of this kind is in flight")
	ErrNotEditing           = errors.New("no transaction is being composed")
	ErrIncorrectCredentials = errors.New("incorrect credentials")
	ErrNetworkUnavailable   = errors.New("backend unreachable")
	ErrRequestTimeout       = errors.New("request timed out")
	ErrMalformedResponse    = errors.New("malformed backend response")
	ErrNoCardSelected       = errors.New("no card selected")
)

// DeclineError carries the backend's verbatim decline message into the
// failed state of a workflow.
type DeclineError struct {
	Message string
}

func (e *DeclineError) Error() string {
	return e.Message
}
