package directive

import "fmt"

// ValidationError reports a malformed or missing directive field. It is a
// client input error and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Invalid returns a ValidationError for field. The API boundary uses it for
// decoding failures such as a malformed UUID.
func Invalid(field, reason string) error {
	return invalid(field, reason)
}
