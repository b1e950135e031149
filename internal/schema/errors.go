package schema

import (
	"errors"
	"fmt"
)

// Registry errors
var (
	ErrNotFound        = errors.New("property definition not found")
	ErrDuplicateSchema = errors.New("duplicate object type")
	ErrNilSchema       = errors.New("schema cannot be nil")
)

// ValidationError reports a capability or version violation detected
// locally, before any wire interaction. Always caller-recoverable.
type ValidationError struct {
	Property string // wire element name of the offending property
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("property %s: %s", e.Property, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConfigError reports a defect in schema registration, such as two
// definitions sharing a URI. It is raised as a panic during registry
// construction: a broken registry is a programming error, not a
// runtime condition.
type ConfigError struct {
	Detail string
}

func (e *ConfigError) Error() string {
	return "schema configuration: " + e.Detail
}
