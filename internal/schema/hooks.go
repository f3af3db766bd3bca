package schema

import (
	"fmt"
	"os"

	"github.com/spf13/cast"
)

// BeforeHook is a named pre-coercion transform attached to a field. Hooks
// run in declaration order before type coercion; each receives the current
// raw value and returns the value to feed forward. Hooks are the one place
// a field's pipeline may have a declared side effect (such as creating a
// directory), and any such effect must be idempotent so repeated
// materialization of the same mapping is safe.
type BeforeHook struct {
	Name      string
	Transform func(value any) (any, error)
}

// AfterHook is a named post-coercion check attached to a field. Hooks run in
// declaration order after coercion and the field's constraint succeed. They
// observe the coerced value and must not modify it.
type AfterHook struct {
	Name  string
	Check func(value any) error
}

// EnsureDir returns a BeforeHook that creates the directory named by the raw
// value when it does not exist. MkdirAll makes the effect idempotent.
func EnsureDir() BeforeHook {
	return BeforeHook{
		Name: "ensure_dir",
		Transform: func(value any) (any, error) {
			s, err := cast.ToStringE(value)
			if err != nil {
				return nil, fmt.Errorf("ensure_dir: %w", err)
			}
			if err := os.MkdirAll(s, 0o755); err != nil {
				return nil, fmt.Errorf("ensure_dir: %w", err)
			}
			return s, nil
		},
	}
}

// NonEmpty returns an AfterHook that rejects empty strings and empty
// slices or maps.
func NonEmpty() AfterHook {
	return AfterHook{
		Name: "non_empty",
		Check: func(value any) error {
			switch v := value.(type) {
			case string:
				if v == "" {
					return fmt.Errorf("non_empty: value is empty")
				}
			case []any:
				if len(v) == 0 {
					return fmt.Errorf("non_empty: value is empty")
				}
			case map[string]any:
				if len(v) == 0 {
					return fmt.Errorf("non_empty: value is empty")
				}
			}
			return nil
		},
	}
}
