package resolve

import "fmt"

// Error reports an override that cannot be applied: an unknown dotted key or
// a malformed override token. It always carries the offending key so the
// user sees exactly which input to fix. Fatal for the run it belongs to.
type Error struct {
	// Key is the offending dotted key, or the raw token when it could not
	// be parsed into one.
	Key string

	// Msg describes why the override was rejected.
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("resolve: key %q: %s", e.Key, e.Msg)
}
