package materialize

import (
	"fmt"

	"github.com/strataconf/strata/internal/resolve"
	"github.com/strataconf/strata/internal/schema"
)

// Options is the materialization policy. The zero value is permissive:
// unknown keys are dropped and later assignments bypass validation.
type Options struct {
	// Strict rejects mapping keys with no declared field instead of
	// silently dropping them.
	Strict bool

	// ValidateAssign re-runs a field's full pipeline on every later Set
	// call. When false, Set writes the raw value unchecked; that is the
	// deliberate unsafe fast path and callers own the consequences.
	ValidateAssign bool
}

// Materialize converts a resolved mapping into a validated configuration.
// Every leaf field runs the before/coerce/constraint/after pipeline; all
// failures are collected and returned together as a *ValidationError. On
// error no configuration is returned.
func Materialize(s *schema.Schema, mapping resolve.Mapping, opts Options) (*Config, error) {
	var failures []FieldError
	values := materializeRecord(s, map[string]any(mapping), "", opts, &failures)

	if len(failures) > 0 {
		return nil, &ValidationError{Fields: failures}
	}
	return &Config{schema: s, opts: opts, values: values}, nil
}

// materializeRecord validates one schema level against one mapping level,
// returning the coerced values for the fields that succeeded. Failures
// accumulate into failures; the caller decides whether any occurred.
func materializeRecord(s *schema.Schema, node map[string]any, prefix string, opts Options, failures *[]FieldError) map[string]any {
	out := make(map[string]any, s.Len())

	declared := make(map[string]bool, s.Len())
	for _, f := range s.Fields() {
		declared[f.Name] = true
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}

		raw, present := node[f.Name]

		if f.Kind == schema.KindRecord {
			nested, ok := raw.(map[string]any)
			if present && !ok {
				*failures = append(*failures, FieldError{Path: path, Stage: StageCoerce,
					Err: fmt.Errorf("value of type %T is not a record", raw)})
				continue
			}
			if !present {
				nested = map[string]any{}
			}
			out[f.Name] = materializeRecord(f.Record, nested, path, opts, failures)
			continue
		}

		if !present {
			// Resolution normally folds defaults in already; applying them
			// here as well keeps Materialize correct on hand-built mappings.
			if f.Default != nil {
				raw = f.Default
			} else if f.Required {
				*failures = append(*failures, FieldError{Path: path, Stage: StageMissing,
					Err: fmt.Errorf("required field has no value")})
				continue
			} else {
				continue
			}
		}

		value, ferr := runFieldPipeline(&f, raw)
		if ferr != nil {
			ferr.Path = path
			*failures = append(*failures, *ferr)
			continue
		}
		out[f.Name] = value
	}

	if opts.Strict {
		for key := range node {
			if !declared[key] {
				path := key
				if prefix != "" {
					path = prefix + "." + key
				}
				*failures = append(*failures, FieldError{Path: path, Stage: StageUnknown,
					Err: fmt.Errorf("key not declared in schema")})
			}
		}
	}

	return out
}

// runFieldPipeline drives one leaf value through before hooks, coercion,
// the constraint, and after hooks. The returned FieldError has no Path; the
// caller fills it in.
func runFieldPipeline(f *schema.Field, raw any) (any, *FieldError) {
	var err error
	for _, hook := range f.Before {
		raw, err = hook.Transform(raw)
		if err != nil {
			return nil, &FieldError{Stage: StageBefore, Err: fmt.Errorf("%s: %w", hook.Name, err)}
		}
	}

	value, err := coerce(f.Kind, raw)
	if err != nil {
		return nil, &FieldError{Stage: StageCoerce, Err: err}
	}

	if f.Constraint != nil {
		if err := f.Constraint.Check(value); err != nil {
			return nil, &FieldError{Stage: StageConstraint, Err: err}
		}
	}

	for _, hook := range f.After {
		if err := hook.Check(value); err != nil {
			return nil, &FieldError{Stage: StageAfter, Err: fmt.Errorf("%s: %w", hook.Name, err)}
		}
	}

	return value, nil
}
