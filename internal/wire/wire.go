// Package wire defines the abstract reader and writer the property
// engine marshals against, an XML implementation of both, and the
// update operations a diff produces. The engine itself never touches
// sockets, files, or an HTTP client; callers hand it a Reader or Writer
// positioned at the right element.
package wire

import (
	"fmt"
	"strconv"
)

// Namespace qualifies every element this engine reads and writes.
const Namespace = "urn:propwire:types"

// Marshaler is the shared marshalling contract. A value implementing it
// serializes itself as one complete element named WireName.
type Marshaler interface {
	WireName() string
	WriteXML(w Writer) error
}

// Unmarshaler hydrates a value from a reader positioned at the value's
// start element. Unrecognized child elements must be skipped, never
// rejected: the server schema grows ahead of clients.
type Unmarshaler interface {
	ReadXML(r Reader) error
}

// FormatError reports malformed or unexpected XML during hydration.
// State hydrated before the failure is retained best-effort.
type FormatError struct {
	Element string
	Err     error
}

func (e *FormatError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed element %s", e.Element)
	}
	return fmt.Sprintf("element %s: %v", e.Element, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// FormatBool renders a boolean the way the wire expects it.
func FormatBool(v bool) string {
	return strconv.FormatBool(v)
}

// ParseBool accepts the wire's boolean spellings.
func ParseBool(s string) (bool, error) {
	switch s {
	case "true", "1":
		return true, nil
	case "false", "0", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
