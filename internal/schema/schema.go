package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Kind identifies the declared type of a field.
type Kind int

const (
	// KindString accepts any scalar and stores it as a string.
	KindString Kind = iota

	// KindInt accepts integers, integral floats (6.0), and numeric strings
	// ("6"). Non-integral floats are rejected, never truncated.
	KindInt

	// KindFloat accepts any numeric value or numeric string.
	KindFloat

	// KindBool accepts booleans and the usual string spellings (true/false,
	// 1/0, t/f).
	KindBool

	// KindPath stores a filesystem path, made absolute during coercion.
	// Pair with the PathExists constraint to require the path on disk.
	KindPath

	// KindDate stores a calendar date, parsed from ISO-8601 (2006-01-02)
	// or full RFC 3339 strings.
	KindDate

	// KindEnum stores a string restricted by a OneOf constraint.
	KindEnum

	// KindRecord nests a sub-schema. The field's Record must be non-nil.
	KindRecord
)

// String returns the lowercase name of the kind for error messages and the
// describe surface.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindPath:
		return "path"
	case KindDate:
		return "date"
	case KindEnum:
		return "enum"
	case KindRecord:
		return "record"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Field is the specification of a single configuration field. Fields are
// plain values; a Schema copies them on construction, so a Field slice may
// be reused to build several schemas.
type Field struct {
	// Name is the field's key within its schema. Must be non-empty and must
	// not contain a dot, since dots separate path segments.
	Name string

	// Kind is the declared type.
	Kind Kind

	// Default is the value used when no override set mentions the field.
	// Nil means the field has no default. Defaults pass through the same
	// coercion and constraint pipeline as any other value.
	Default any

	// Required marks the field as mandatory: materialization fails when
	// neither a default nor an override provides a value.
	Required bool

	// Constraint is an optional predicate checked after coercion.
	Constraint Constraint

	// Before holds named pre-coercion transforms, run in declaration order.
	Before []BeforeHook

	// After holds named post-coercion checks, run in declaration order.
	After []AfterHook

	// Record is the nested sub-schema for KindRecord fields and must be nil
	// for every other kind.
	Record *Schema
}

// Schema is an ordered, immutable mapping from field name to specification.
type Schema struct {
	fields []Field
	index  map[string]int
}

// New builds a Schema from the given fields, preserving declaration order.
// It returns a *SchemaError when a field name is empty, contains a dot, is
// duplicated, when a record field lacks (or a scalar field carries) a nested
// schema, or when nested schemas form a cycle.
func New(fields ...Field) (*Schema, error) {
	s := &Schema{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	copy(s.fields, fields)

	for i, f := range s.fields {
		if f.Name == "" {
			return nil, &SchemaError{Msg: "field name cannot be empty"}
		}
		if strings.Contains(f.Name, ".") {
			return nil, &SchemaError{Field: f.Name, Msg: "field name cannot contain a dot"}
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, &SchemaError{Field: f.Name, Msg: "duplicate field name"}
		}
		if f.Kind == KindRecord && f.Record == nil {
			return nil, &SchemaError{Field: f.Name, Msg: "record field requires a nested schema"}
		}
		if f.Kind != KindRecord && f.Record != nil {
			return nil, &SchemaError{Field: f.Name, Msg: fmt.Sprintf("%s field cannot carry a nested schema", f.Kind)}
		}
		s.index[f.Name] = i
	}

	if err := s.checkCycles(map[*Schema]bool{}); err != nil {
		return nil, err
	}

	return s, nil
}

// MustNew is New for statically-declared schemas that are known to be valid.
// It panics on error.
func MustNew(fields ...Field) *Schema {
	s, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// checkCycles walks nested schemas and fails when a schema is reachable from
// itself. onPath tracks the schemas on the current descent.
func (s *Schema) checkCycles(onPath map[*Schema]bool) error {
	if onPath[s] {
		return &SchemaError{Msg: "cyclic nested schema reference"}
	}
	onPath[s] = true
	defer delete(onPath, s)

	for _, f := range s.fields {
		if f.Record == nil {
			continue
		}
		if err := f.Record.checkCycles(onPath); err != nil {
			if se, ok := err.(*SchemaError); ok && se.Field == "" {
				return &SchemaError{Field: f.Name, Msg: se.Msg}
			}
			return err
		}
	}
	return nil
}

// Fields returns the field specifications in declaration order. The slice is
// a copy; mutating it does not affect the schema.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Len returns the number of top-level fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Lookup resolves a dotted path (e.g. "model.max_depth") to its field
// specification, descending through record fields. The second return is
// false when any segment is unknown or when the path descends through a
// non-record field.
func (s *Schema) Lookup(path string) (*Field, bool) {
	segments := strings.Split(path, ".")
	cur := s
	for i, seg := range segments {
		idx, ok := cur.index[seg]
		if !ok {
			return nil, false
		}
		f := &cur.fields[idx]
		if i == len(segments)-1 {
			return f, true
		}
		if f.Kind != KindRecord {
			return nil, false
		}
		cur = f.Record
	}
	return nil, false
}

// Defaults produces a nested mapping of every field's declared default,
// recursing into record fields. Fields without a default are omitted.
// The result is freshly allocated on each call.
func (s *Schema) Defaults() map[string]any {
	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		if f.Kind == KindRecord {
			nested := f.Record.Defaults()
			if len(nested) > 0 {
				out[f.Name] = nested
			}
			continue
		}
		if f.Default != nil {
			out[f.Name] = f.Default
		}
	}
	return out
}

// Equal reports structural equality: same fields, in the same order, with
// equal specifications, recursively through nested schemas. Hooks compare by
// name since function values have no useful equality.
func (s *Schema) Equal(other *Schema) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil || len(s.fields) != len(other.fields) {
		return false
	}
	for i := range s.fields {
		if !fieldEqual(&s.fields[i], &other.fields[i]) {
			return false
		}
	}
	return true
}

func fieldEqual(a, b *Field) bool {
	if a.Name != b.Name || a.Kind != b.Kind || a.Required != b.Required {
		return false
	}
	if !reflect.DeepEqual(a.Default, b.Default) {
		return false
	}
	if !reflect.DeepEqual(a.Constraint, b.Constraint) {
		return false
	}
	if len(a.Before) != len(b.Before) || len(a.After) != len(b.After) {
		return false
	}
	for i := range a.Before {
		if a.Before[i].Name != b.Before[i].Name {
			return false
		}
	}
	for i := range a.After {
		if a.After[i].Name != b.After[i].Name {
			return false
		}
	}
	if a.Kind == KindRecord {
		return a.Record.Equal(b.Record)
	}
	return true
}

// FieldDoc is one row of the describe surface: a flattened view of a single
// leaf field for help output.
type FieldDoc struct {
	Path       string
	Type       string
	Default    any
	Required   bool
	Constraint string
}

// Describe flattens the schema into one FieldDoc per leaf field, in
// declaration order, with dotted paths for nested fields.
func (s *Schema) Describe() []FieldDoc {
	var docs []FieldDoc
	s.describe("", &docs)
	return docs
}

func (s *Schema) describe(prefix string, docs *[]FieldDoc) {
	for _, f := range s.fields {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		if f.Kind == KindRecord {
			f.Record.describe(path, docs)
			continue
		}
		doc := FieldDoc{
			Path:     path,
			Type:     f.Kind.String(),
			Default:  f.Default,
			Required: f.Required,
		}
		if f.Constraint != nil {
			doc.Constraint = f.Constraint.Describe()
		}
		*docs = append(*docs, doc)
	}
}
