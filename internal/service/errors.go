package service

import "errors"

var (
	// ErrForbidden is returned when the caller's session does not allow the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput is returned for requests that fail validation.
	ErrInvalidInput = errors.New("invalid input")
)
