// Package main implements the strata command-line tool: layered
// configuration resolution, validation, sweep expansion, and run-artifact
// persistence for the built-in project schema.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/strataconf/strata/internal/materialize"
	"github.com/strataconf/strata/internal/resolve"
	"github.com/strataconf/strata/internal/schema"
)

// Exit codes distinguish pipeline failures from downstream ones so callers
// and scripts can tell a bad schema from a bad override from a bad value.
const (
	exitOK         = 0
	exitFailure    = 1
	exitSchema     = 2
	exitResolution = 3
	exitValidation = 4
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit code for its taxonomy class.
func exitCode(err error) int {
	var se *schema.SchemaError
	if errors.As(err, &se) {
		return exitSchema
	}
	var re *resolve.Error
	if errors.As(err, &re) {
		return exitResolution
	}
	var ve *materialize.ValidationError
	if errors.As(err, &ve) {
		return exitValidation
	}
	return exitFailure
}
