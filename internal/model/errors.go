package model

import "fmt"

// ParseError is raised on malformed XSD, an unresolved type reference, or a
// type-definition cycle that does not go through an element (spec.md §4.A).
// Cyclic element references through named types are legal; the enumerator's
// depth bound and (current-path, type, depth) visited-set handle those.
type ParseError struct {
	Reason   string
	Location string
}

func (e *ParseError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("xsd parse error at %s: %s", e.Location, e.Reason)
	}
	return fmt.Sprintf("xsd parse error: %s", e.Reason)
}

func newParseError(location, format string, args ...any) *ParseError {
	return &ParseError{Reason: fmt.Sprintf(format, args...), Location: location}
}
