package problem

import "errors"

var (
	// ErrInvalidArgument is returned when a Problem is built from malformed input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrReservedKeyConflict is returned when an extension key collides with a standard field.
	ErrReservedKeyConflict = errors.New("reserved key conflict")
	// ErrMalformedPayload is returned when a problem+json document cannot be decoded.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrMappingFailure is returned when an error cannot be converted into a response.
	ErrMappingFailure = errors.New("mapping failure")
)
