package schema

import "fmt"

// SchemaError reports a malformed schema declaration. It is detected when the
// schema is built, before any configuration is resolved, and is fatal: a
// program with a bad schema cannot meaningfully continue.
type SchemaError struct {
	// Field is the name of the offending field, or empty when the problem
	// is not attributable to a single field.
	Field string

	// Msg describes what is wrong with the declaration.
	Msg string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema: %s", e.Msg)
	}
	return fmt.Sprintf("schema: field %q: %s", e.Field, e.Msg)
}
