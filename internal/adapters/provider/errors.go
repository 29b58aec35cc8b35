package provider

import "errors"

// Sentinel kinds for provider failures. They never escape Fetch; they only
// become the reason text of an Unavailable outcome.
var (
	ErrTransport      = errors.New("transport failure")
	ErrStatus         = errors.New("non-2xx status")
	ErrMalformed      = errors.New("malformed envelope")
	ErrNotSuccessful  = errors.New("provider reported failure")
	ErrNoData         = errors.New("envelope has no data")
	ErrUnexpectedData = errors.New("unexpected data shape")
	ErrInvalidEntry   = errors.New("invalid entry")
)
