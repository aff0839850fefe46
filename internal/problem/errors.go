package problem

import "errors"

var (
	// ErrMalformedInput is returned when a problem or solution file line is missing required fields.
	ErrMalformedInput = errors.New("malformed input")
)
