package materialize

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-viper/mapstructure/v2"

	"github.com/strataconf/strata/internal/resolve"
	"github.com/strataconf/strata/internal/schema"
)

// Config is a validated configuration: the typed object graph produced by
// Materialize. Every value inside has passed its field's full pipeline.
//
// A Config starts mutable through the controlled Set path. Freeze makes it
// immutable; only frozen configs are hashable, and equality and hash are
// structural over field values, never object identity.
type Config struct {
	schema *schema.Schema
	opts   Options
	values map[string]any
	frozen bool
}

// Schema returns the schema this configuration was validated against.
func (c *Config) Schema() *schema.Schema {
	return c.schema
}

// Get retrieves the coerced value at a dotted path. The second return is
// false when the field holds no value.
func (c *Config) Get(path string) (any, bool) {
	segments := strings.Split(path, ".")
	var cur any = c.values
	for _, seg := range segments {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set assigns a new value to a field after materialization. With the
// ValidateAssign policy on, the value runs the field's full pipeline and an
// invalid value fails with *ValidationError, leaving the configuration
// untouched. With the policy off the raw value is written unchecked.
// Frozen configurations reject Set with ErrFrozen.
func (c *Config) Set(path string, value any) error {
	if c.frozen {
		return ErrFrozen
	}

	f, ok := c.schema.Lookup(path)
	if !ok {
		return &ValidationError{Fields: []FieldError{{Path: path, Stage: StageUnknown,
			Err: fmt.Errorf("key not declared in schema")}}}
	}
	if f.Kind == schema.KindRecord {
		return &ValidationError{Fields: []FieldError{{Path: path, Stage: StageCoerce,
			Err: fmt.Errorf("cannot assign directly to a record field")}}}
	}

	if c.opts.ValidateAssign {
		coerced, ferr := runFieldPipeline(f, value)
		if ferr != nil {
			ferr.Path = path
			return &ValidationError{Fields: []FieldError{*ferr}}
		}
		value = coerced
	}

	segments := strings.Split(path, ".")
	cur := c.values
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	cur[segments[len(segments)-1]] = value
	return nil
}

// Freeze makes the configuration immutable and returns it for chaining.
// Freezing twice is a no-op.
func (c *Config) Freeze() *Config {
	c.frozen = true
	return c
}

// Frozen reports whether the configuration has been frozen.
func (c *Config) Frozen() bool {
	return c.frozen
}

// Equal reports structural equality over schemas and field values.
// Two independently materialized configurations with the same values are
// equal regardless of identity or frozen state.
func (c *Config) Equal(other *Config) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	return c.schema.Equal(other.schema) && reflect.DeepEqual(c.values, other.values)
}

// Hash returns a structural hash over every field value, suitable for using
// the configuration as a map key. Only frozen configurations may be hashed;
// hashing a mutable one is an error because its hash could change under the
// caller.
func (c *Config) Hash() (uint64, error) {
	if !c.frozen {
		return 0, fmt.Errorf("hash requires a frozen configuration")
	}
	digest := xxhash.New()
	for _, entry := range c.AsMapping().Flatten() {
		_, _ = digest.WriteString(entry.Key)
		_, _ = digest.WriteString("=")
		_, _ = digest.WriteString(canonicalValue(entry.Value))
		_, _ = digest.WriteString("\n")
	}
	return digest.Sum64(), nil
}

// canonicalValue renders a value deterministically for hashing, with a type
// tag so 6 and "6" never collide.
func canonicalValue(v any) string {
	if ts, ok := v.(time.Time); ok {
		return "time:" + ts.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%T:%v", v, v)
}

// AsMapping exports the validated values as a resolved mapping (a deep
// copy). Re-materializing that mapping against the same schema yields an
// equal configuration, which is the round-trip property run artifacts rely
// on.
func (c *Config) AsMapping() resolve.Mapping {
	return resolve.Mapping(deepCopyValues(c.values))
}

func deepCopyValues(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		if nested, ok := v.(map[string]any); ok {
			dst[k] = deepCopyValues(nested)
			continue
		}
		dst[k] = v
	}
	return dst
}

// Decode unmarshals the validated values into a caller-defined struct using
// mapstructure tags, the same decode surface the tool's own settings use.
func (c *Config) Decode(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(c.values); err != nil {
		return fmt.Errorf("decode configuration: %w", err)
	}
	return nil
}
