package schema_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataconf/strata/internal/schema"
)

// projectSchema builds the nested demo schema used across the test suite:
// a data record and a model record, mirroring a typical ML project config.
func projectSchema(t *testing.T) *schema.Schema {
	t.Helper()

	data, err := schema.New(
		schema.Field{Name: "data_format", Kind: schema.KindEnum, Required: true,
			Constraint: schema.OneOf{Values: []string{"DB", "SAP"}}},
		schema.Field{Name: "input_path", Kind: schema.KindPath, Required: true},
		schema.Field{Name: "start_date", Kind: schema.KindDate, Required: true},
		schema.Field{Name: "window", Kind: schema.KindInt, Default: 3,
			Constraint: schema.Range{Min: 1, Max: 365}},
	)
	require.NoError(t, err)

	model, err := schema.New(
		schema.Field{Name: "num_estimators", Kind: schema.KindInt, Default: 100},
		schema.Field{Name: "max_depth", Kind: schema.KindInt, Required: true},
	)
	require.NoError(t, err)

	project, err := schema.New(
		schema.Field{Name: "data", Kind: schema.KindRecord, Record: data},
		schema.Field{Name: "model", Kind: schema.KindRecord, Record: model},
	)
	require.NoError(t, err)

	return project
}

func TestNewRejectsDuplicateFieldNames(t *testing.T) {
	_, err := schema.New(
		schema.Field{Name: "window", Kind: schema.KindInt},
		schema.Field{Name: "window", Kind: schema.KindInt},
	)
	require.Error(t, err)

	var se *schema.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "window", se.Field)
}

func TestNewRejectsDottedFieldNames(t *testing.T) {
	_, err := schema.New(schema.Field{Name: "model.depth", Kind: schema.KindInt})

	var se *schema.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Error(), "dot")
}

func TestNewRejectsRecordWithoutNestedSchema(t *testing.T) {
	_, err := schema.New(schema.Field{Name: "data", Kind: schema.KindRecord})

	var se *schema.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "data", se.Field)
}

func TestSharedSubSchemaIsNotACycle(t *testing.T) {
	// The same sub-schema nested under two fields is ordinary composition
	// and must be accepted; only a schema on its own descent path is a cycle
	// (see the internal cycle test).
	inner := schema.MustNew(schema.Field{Name: "leaf", Kind: schema.KindInt})
	_, err := schema.New(
		schema.Field{Name: "first", Kind: schema.KindRecord, Record: inner},
		schema.Field{Name: "second", Kind: schema.KindRecord, Record: inner},
	)
	require.NoError(t, err)
}

func TestLookupResolvesDottedPaths(t *testing.T) {
	s := projectSchema(t)

	f, ok := s.Lookup("model.max_depth")
	require.True(t, ok)
	assert.Equal(t, "max_depth", f.Name)
	assert.Equal(t, schema.KindInt, f.Kind)

	_, ok = s.Lookup("model.learning_rate")
	assert.False(t, ok)

	// Descending through a scalar is not a valid path.
	_, ok = s.Lookup("model.max_depth.extra")
	assert.False(t, ok)
}

func TestDefaultsRecursesIntoRecords(t *testing.T) {
	s := projectSchema(t)

	defaults := s.Defaults()
	assert.Equal(t, map[string]any{
		"data":  map[string]any{"window": 3},
		"model": map[string]any{"num_estimators": 100},
	}, defaults)
}

func TestSchemaEquality(t *testing.T) {
	a := projectSchema(t)
	b := projectSchema(t)

	assert.True(t, a.Equal(b), "independently built identical schemas must be equal")

	c := schema.MustNew(schema.Field{Name: "window", Kind: schema.KindInt})
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestDescribeFlattensLeaves(t *testing.T) {
	s := projectSchema(t)

	docs := s.Describe()
	require.Len(t, docs, 6)

	assert.Equal(t, "data.data_format", docs[0].Path)
	assert.Equal(t, "enum", docs[0].Type)
	assert.Equal(t, "one of {DB, SAP}", docs[0].Constraint)
	assert.True(t, docs[0].Required)

	assert.Equal(t, "data.window", docs[3].Path)
	assert.Equal(t, 3, docs[3].Default)
	assert.Equal(t, "in [1, 365]", docs[3].Constraint)

	assert.Equal(t, "model.max_depth", docs[5].Path)
}

func TestRangeConstraint(t *testing.T) {
	r := schema.Range{Min: 1, Max: 10}

	assert.NoError(t, r.Check(int64(5)))
	assert.NoError(t, r.Check(10.0))
	assert.Error(t, r.Check(int64(0)))
	assert.Error(t, r.Check(10.5))
	assert.Error(t, r.Check("5"), "range requires a coerced numeric value")
}

func TestOneOfConstraint(t *testing.T) {
	o := schema.OneOf{Values: []string{"DB", "SAP"}}

	assert.NoError(t, o.Check("DB"))
	err := o.Check("CSV")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CSV")
}

func TestPathExistsConstraint(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(file, []byte("a,b\n"), 0o644))

	assert.NoError(t, schema.PathExists{}.Check(dir))
	assert.NoError(t, schema.PathExists{}.Check(file))
	assert.NoError(t, schema.PathExists{Dir: true}.Check(dir))
	assert.Error(t, schema.PathExists{Dir: true}.Check(file))
	assert.NoError(t, schema.PathExists{File: true}.Check(file))
	assert.Error(t, schema.PathExists{File: true}.Check(dir))
	assert.Error(t, schema.PathExists{}.Check(filepath.Join(dir, "missing")))
}

func TestEnsureDirHookIsIdempotent(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out", "run")
	hook := schema.EnsureDir()

	for i := 0; i < 2; i++ {
		got, err := hook.Transform(target)
		require.NoError(t, err)
		assert.Equal(t, target, got)
		info, err := os.Stat(target)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestNonEmptyHook(t *testing.T) {
	hook := schema.NonEmpty()

	assert.NoError(t, hook.Check("x"))
	assert.Error(t, hook.Check(""))
	assert.Error(t, hook.Check([]any{}))
	assert.NoError(t, hook.Check([]any{1}))
	assert.Error(t, hook.Check(map[string]any{}))
}
