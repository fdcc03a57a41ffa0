package templates

import "errors"

// Sentinel errors for the template engine. Callers classify failures with
// errors.Is; every error raised by this package wraps exactly one of
// these markers.
var (
	// ErrDefinition marks construction-time failures: malformed
	// definition strings, placeholders without a key, invalid defaults
	// or choices.
	ErrDefinition = errors.New("template definition error")

	// ErrValidation marks value failures: wrong type, failed choice or
	// filter constraints, frame-spec mismatches.
	ErrValidation = errors.New("validation error")

	// ErrMissingFields marks ApplyFields calls that lack a required key
	// with no default.
	ErrMissingFields = errors.New("missing fields")

	// ErrAmbiguous marks Fields calls where a string decomposes into
	// more than one type-valid field assignment, or into none while
	// several structural splits exist.
	ErrAmbiguous = errors.New("ambiguous values")

	// ErrNoMatch marks Fields calls where the string does not fit the
	// template shape at all.
	ErrNoMatch = errors.New("no match")
)
