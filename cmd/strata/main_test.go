package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataconf/strata/internal/materialize"
	"github.com/strataconf/strata/internal/resolve"
	"github.com/strataconf/strata/internal/schema"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

// writeBaseConfig writes a valid base YAML for the built-in schema and
// returns its path. input_path points at the directory itself so the
// existence constraint holds.
func writeBaseConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "base.yaml")
	doc := fmt.Sprintf(`data:
  data_format: DB
  input_path: %s
  start_date: 2024-01-15
model:
  max_depth: 6
`, dir)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestExitCodeTaxonomy(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"schema error", &schema.SchemaError{Msg: "bad"}, exitSchema},
		{"wrapped schema error", fmt.Errorf("startup: %w", &schema.SchemaError{Msg: "bad"}), exitSchema},
		{"resolution error", &resolve.Error{Key: "x", Msg: "unknown"}, exitResolution},
		{"validation error", &materialize.ValidationError{}, exitValidation},
		{"other error", fmt.Errorf("downstream"), exitFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, exitCode(tc.err))
		})
	}
}

func TestProjectSchemaIsValid(t *testing.T) {
	sch, err := projectSchema()
	require.NoError(t, err)

	f, ok := sch.Lookup("model.max_depth")
	require.True(t, ok)
	assert.True(t, f.Required)

	f, ok = sch.Lookup("output_dir")
	require.True(t, ok)
	require.Len(t, f.Before, 1)
	assert.Equal(t, "ensure_dir", f.Before[0].Name)
}

func TestDescribeListsEveryLeaf(t *testing.T) {
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf

	require.NoError(t, app.Run([]string{"strata", "describe"}))

	out := buf.String()
	for _, path := range []string{
		"data.data_format", "data.input_path", "data.start_date",
		"data.window", "model.num_estimators", "model.max_depth", "output_dir",
	} {
		assert.Contains(t, out, path)
	}
	assert.Contains(t, out, "one of {DB, SAP}")
	assert.Contains(t, out, "in [1, 365]")
}

func TestRunPersistsArtifactAndPrintsMapping(t *testing.T) {
	dir := t.TempDir()
	base := writeBaseConfig(t, dir)
	chdir(t, dir)

	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf

	err := app.Run([]string{"strata", "run", "-c", base, "data.window=14"})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "window: \"14\"")
	assert.Contains(t, buf.String(), "data_format: DB")

	artifacts, err := filepath.Glob(filepath.Join(dir, "outputs", "*", "*", "resolved.yaml"))
	require.NoError(t, err)
	require.Len(t, artifacts, 1, "exactly one run directory with a persisted mapping")
}

func TestRunRejectsUnknownOverride(t *testing.T) {
	dir := t.TempDir()
	base := writeBaseConfig(t, dir)
	chdir(t, dir)

	app := newApp()
	app.Writer = &bytes.Buffer{}

	err := app.Run([]string{"strata", "run", "-c", base, "model.learning_rate=0.1"})
	require.Error(t, err)
	assert.Equal(t, exitResolution, exitCode(err))
	assert.Contains(t, err.Error(), "model.learning_rate")
}

func TestRunFailsValidationWithAggregate(t *testing.T) {
	dir := t.TempDir()
	base := writeBaseConfig(t, dir)
	chdir(t, dir)

	app := newApp()
	app.Writer = &bytes.Buffer{}

	err := app.Run([]string{"strata", "run", "-c", base,
		"data.data_format=CSV", "data.window=6.1"})
	require.Error(t, err)
	assert.Equal(t, exitValidation, exitCode(err))

	var verr *materialize.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"data.data_format", "data.window"}, verr.Paths())
}

func TestMultirunExpandsSweep(t *testing.T) {
	dir := t.TempDir()
	base := writeBaseConfig(t, dir)
	chdir(t, dir)

	app := newApp()
	app.Writer = &bytes.Buffer{}

	err := app.Run([]string{"strata", "run", "-m", "-c", base,
		"data.window=5,10", "model.max_depth=2,4"})
	require.NoError(t, err)

	artifacts, err := filepath.Glob(filepath.Join(dir, "outputs", "*", "*", "resolved.yaml"))
	require.NoError(t, err)
	assert.Len(t, artifacts, 4, "2x2 sweep persists four run artifacts")
}

func TestMultirunContinuesPastFailingPoint(t *testing.T) {
	dir := t.TempDir()
	base := writeBaseConfig(t, dir)
	chdir(t, dir)

	app := newApp()
	app.Writer = &bytes.Buffer{}

	// window=400 violates the range constraint; window=5 is fine. The sweep
	// must finish the good point and still exit with the validation code.
	err := app.Run([]string{"strata", "run", "-m", "-c", base, "data.window=5,400"})
	require.Error(t, err)
	assert.Equal(t, exitValidation, exitCode(err))

	artifacts, globErr := filepath.Glob(filepath.Join(dir, "outputs", "*", "*", "resolved.yaml"))
	require.NoError(t, globErr)
	assert.Len(t, artifacts, 1, "the valid point still produced its artifact")
}

func TestReplayReproducesRun(t *testing.T) {
	dir := t.TempDir()
	base := writeBaseConfig(t, dir)
	chdir(t, dir)

	var first bytes.Buffer
	app := newApp()
	app.Writer = &first
	require.NoError(t, app.Run([]string{"strata", "run", "-c", base, "data.window=21"}))

	artifacts, err := filepath.Glob(filepath.Join(dir, "outputs", "*", "*", "resolved.yaml"))
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	runDir := filepath.Dir(artifacts[0])

	var second bytes.Buffer
	replay := newApp()
	replay.Writer = &second
	require.NoError(t, replay.Run([]string{"strata", "replay", runDir}))

	assert.Contains(t, second.String(), "window: \"21\"")
	assert.Contains(t, second.String(), "data_format: DB")
}

func TestReplayRequiresRunDirArgument(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}

	err := app.Run([]string{"strata", "replay"})
	require.Error(t, err)
}
