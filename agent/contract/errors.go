package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrValidation      = errors.New("validation failed")

	// ErrLocationNotFound means geocoding produced no usable coordinate for
	// the given address text.
	ErrLocationNotFound = errors.New("location not found")

	// ErrNoCategories means a nearby search was requested with an empty
	// category set.
	ErrNoCategories = errors.New("no categories specified")

	// ErrUpstreamUnavailable masks transport-level failures talking to the
	// places API; the underlying error is logged, not propagated.
	ErrUpstreamUnavailable = errors.New("places api unavailable")
)
