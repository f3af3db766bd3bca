package materialize

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/strataconf/strata/internal/schema"
)

// dateLayouts are the accepted date spellings, tried in order.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// coerce converts a raw value to the field's declared type. Record fields
// are handled by the materializer's recursion, never here.
func coerce(kind schema.Kind, value any) (any, error) {
	switch kind {
	case schema.KindInt:
		return coerceInt(value)
	case schema.KindFloat:
		return coerceFloat(value)
	case schema.KindBool:
		return cast.ToBoolE(value)
	case schema.KindString, schema.KindEnum:
		return coerceString(value)
	case schema.KindPath:
		return coercePath(value)
	case schema.KindDate:
		return coerceDate(value)
	default:
		return nil, fmt.Errorf("cannot coerce to %s", kind)
	}
}

// coerceInt accepts integers, integral floats, and numeric strings. A
// fractional value fails rather than truncating: 6.0 becomes 6, 6.1 is an
// error.
func coerceInt(value any) (int64, error) {
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("value %v is not an integer", v)
		}
		return int64(v), nil
	case float32:
		return coerceInt(float64(v))
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", v)
		}
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("value %q is not an integer", v)
		}
		return int64(f), nil
	case bool:
		return 0, fmt.Errorf("value %v is a bool, not an integer", v)
	default:
		return cast.ToInt64E(value)
	}
}

func coerceFloat(value any) (float64, error) {
	if _, ok := value.(bool); ok {
		return 0, fmt.Errorf("value %v is a bool, not a number", value)
	}
	return cast.ToFloat64E(value)
}

func coerceString(value any) (string, error) {
	switch value.(type) {
	case map[string]any, []any:
		return "", fmt.Errorf("value of type %T is not a scalar", value)
	}
	return cast.ToStringE(value)
}

// coercePath normalizes the value to an absolute path string. Existence is
// a constraint concern, not a coercion concern.
func coercePath(value any) (string, error) {
	s, err := coerceString(value)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("path is empty")
	}
	abs, err := filepath.Abs(s)
	if err != nil {
		return "", fmt.Errorf("path %q: %w", s, err)
	}
	return abs, nil
}

func coerceDate(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, nil
			}
		}
		return time.Time{}, fmt.Errorf("value %q is not a date (want 2006-01-02 or RFC 3339)", v)
	default:
		return time.Time{}, fmt.Errorf("value of type %T is not a date", value)
	}
}
