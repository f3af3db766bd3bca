package schema

import (
	"fmt"
	"os"
	"strings"
)

// Constraint is a pure predicate over a coerced candidate value. Check must
// not have side effects; effectful preparation (such as creating a
// directory) belongs in a BeforeHook instead.
type Constraint interface {
	// Check returns nil when the value satisfies the constraint.
	Check(value any) error

	// Describe returns a short human-readable summary for help output.
	Describe() string
}

// Range constrains a numeric field to an inclusive interval.
type Range struct {
	Min float64
	Max float64
}

// Check implements Constraint. The value must already be coerced to int64
// or float64.
func (r Range) Check(value any) error {
	var n float64
	switch v := value.(type) {
	case int64:
		n = float64(v)
	case float64:
		n = v
	default:
		return fmt.Errorf("range constraint requires a numeric value, got %T", value)
	}
	if n < r.Min || n > r.Max {
		return fmt.Errorf("value %v outside range [%v, %v]", value, r.Min, r.Max)
	}
	return nil
}

// Describe implements Constraint.
func (r Range) Describe() string {
	return fmt.Sprintf("in [%v, %v]", r.Min, r.Max)
}

// OneOf constrains a field to an enumerated set of string values, compared
// exactly. Declaration order is preserved for help output.
type OneOf struct {
	Values []string
}

// Check implements Constraint.
func (o OneOf) Check(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("enum constraint requires a string value, got %T", value)
	}
	for _, v := range o.Values {
		if s == v {
			return nil
		}
	}
	return fmt.Errorf("value %q not one of [%s]", s, strings.Join(o.Values, ", "))
}

// Describe implements Constraint.
func (o OneOf) Describe() string {
	return "one of {" + strings.Join(o.Values, ", ") + "}"
}

// PathExists constrains a path field to a path present on disk. When Dir is
// true the path must be a directory; when File is true it must be a regular
// file; when both are set either is accepted.
type PathExists struct {
	Dir  bool
	File bool
}

// Check implements Constraint.
func (p PathExists) Check(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("path constraint requires a string value, got %T", value)
	}
	info, err := os.Stat(s)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("path %q does not exist", s)
		}
		return fmt.Errorf("path %q: %w", s, err)
	}
	if p.Dir && !p.File && !info.IsDir() {
		return fmt.Errorf("path %q is not a directory", s)
	}
	if p.File && !p.Dir && info.IsDir() {
		return fmt.Errorf("path %q is not a file", s)
	}
	return nil
}

// Describe implements Constraint.
func (p PathExists) Describe() string {
	switch {
	case p.Dir && !p.File:
		return "existing directory"
	case p.File && !p.Dir:
		return "existing file"
	default:
		return "existing path"
	}
}
