package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for the credential manager; handlers map them to flash notices.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmptyToken         = errors.New("recovery token is empty")
	ErrTokenNotFound      = errors.New("recovery token not found")
	ErrTokenExpired       = errors.New("recovery token expired")
	ErrTokenAlreadyUsed   = errors.New("recovery token already used")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrPasswordTooLong    = errors.New("password is too long")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrDeliveryFailed     = errors.New("recovery mail delivery failed")
)

// DeliveryError reports a failed recovery mail. Code is the provider diagnostic and is for logs only.
type DeliveryError struct {
	Code string
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%v (code %q): %v", ErrDeliveryFailed, e.Code, e.Err)
}

// Unwrap lets errors.Is match both ErrDeliveryFailed and the transport error.
func (e *DeliveryError) Unwrap() []error {
	return []error{ErrDeliveryFailed, e.Err}
}
