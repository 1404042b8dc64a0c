package enumerate

import "fmt"

// Error is raised when the walker hits an internal invariant violation while
// enumerating the schema — chiefly a referenced type name that does not
// resolve (spec.md §4.B). Unlike model.ParseError, this always indicates a
// bug in the walk itself or a dangling reference the loader didn't catch,
// not malformed input XML.
type Error struct {
	Path   string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("enumeration error at %s: %s", e.Path, e.Reason)
}
