package leads

import "errors"

var (
	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrInvalidStatus is returned on an unknown status transition target
	ErrInvalidStatus = errors.New("invalid lead status")
)
