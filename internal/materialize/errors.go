package materialize

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFrozen is returned by Set when the configuration has been frozen.
var ErrFrozen = errors.New("configuration is frozen")

// Stage names the pipeline checkpoint at which a field failed.
type Stage string

const (
	// StageBefore is a pre-coercion hook failure.
	StageBefore Stage = "before"

	// StageCoerce is a type coercion failure.
	StageCoerce Stage = "coerce"

	// StageConstraint is a declared constraint failure.
	StageConstraint Stage = "constraint"

	// StageAfter is a post-coercion hook failure.
	StageAfter Stage = "after"

	// StageMissing marks a required field with no value from any source.
	StageMissing Stage = "missing"

	// StageUnknown marks a mapping key with no declared field, reported
	// only in strict mode.
	StageUnknown Stage = "unknown"
)

// FieldError is a single field's failure: the dotted path, the checkpoint
// it failed at, and the underlying cause.
type FieldError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e FieldError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Stage)
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// ValidationError aggregates every field failure found during one
// materialization. It is fatal for the mapping it belongs to, but callers
// running a sweep treat it as per-point: other sweep points continue.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("validation failed for %d field(s): %s",
		len(e.Fields), strings.Join(msgs, "; "))
}

// Paths returns the dotted paths of every failed field, in report order.
func (e *ValidationError) Paths() []string {
	paths := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		paths[i] = f.Path
	}
	return paths
}
