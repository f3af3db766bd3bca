package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/strataconf/strata/internal/config"
	"github.com/strataconf/strata/internal/materialize"
	"github.com/strataconf/strata/internal/platform/logger"
	"github.com/strataconf/strata/internal/resolve"
	"github.com/strataconf/strata/internal/runstore"
	"github.com/strataconf/strata/internal/schema"
)

// newApp assembles the strata command-line application.
func newApp() *cli.App {
	return &cli.App{
		Name:  "strata",
		Usage: "resolve, validate, and sweep layered configuration",
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "resolve overrides, validate, and persist a run artifact",
				ArgsUsage: "[key.subkey=value ...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "base configuration YAML file",
					},
					&cli.StringFlag{
						Name:  "env-prefix",
						Usage: "ingest environment variables with this prefix as overrides",
					},
					&cli.BoolFlag{
						Name:    "multirun",
						Aliases: []string{"m"},
						Usage:   "expand comma-separated override values into a sweep",
					},
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "reject resolved keys not declared in the schema",
					},
				},
				Action: runAction,
			},
			{
				Name:   "describe",
				Usage:  "print every declared field with its type, default, and constraint",
				Action: describeAction,
			},
			{
				Name:      "replay",
				Usage:     "re-run from a persisted run directory's resolved mapping",
				ArgsUsage: "<run-dir>",
				Action:    replayAction,
			},
		},
	}
}

// pipelineOptions derives the materialization policy from the tool settings,
// letting an explicitly passed --strict flag win over the configured default.
func pipelineOptions(ctx *cli.Context, cfg *config.Config) materialize.Options {
	opts := materialize.Options{
		Strict:         cfg.Pipeline.Strict,
		ValidateAssign: cfg.Pipeline.ValidateAssign,
	}
	if ctx.IsSet("strict") {
		opts.Strict = ctx.Bool("strict")
	}
	return opts
}

// gatherSets builds the override sets for one invocation, lowest priority
// first: base file, environment, command-line tokens. In multirun mode the
// token set carries sweep priority so comma values expand into axes.
func gatherSets(ctx *cli.Context) ([]resolve.Set, error) {
	var sets []resolve.Set

	if path := ctx.String("config"); path != "" {
		set, err := resolve.FromYAMLFile(path)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}

	if prefix := ctx.String("env-prefix"); prefix != "" {
		sets = append(sets, resolve.FromEnv(prefix, os.Environ()))
	}

	args, err := resolve.FromArgs(ctx.Args().Slice())
	if err != nil {
		return nil, err
	}
	if ctx.Bool("multirun") {
		args.Source = resolve.SourceSweep
	}
	if len(args.Entries) > 0 {
		sets = append(sets, args)
	}

	return sets, nil
}

func runAction(ctx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Setup(cfg.Log.Level, nil)

	sch, err := projectSchema()
	if err != nil {
		return err
	}

	sets, err := gatherSets(ctx)
	if err != nil {
		return err
	}

	store, err := runstore.New(cfg.Runs.Root)
	if err != nil {
		return err
	}

	opts := pipelineOptions(ctx, cfg)
	if ctx.Bool("multirun") {
		return runSweep(ctx, sch, sets, opts, store, cfg)
	}
	return runOnce(ctx, sch, sets, opts, store, cfg)
}

// runOnce resolves and materializes a single configuration, persists the
// resolved mapping into a fresh run directory, and prints it.
func runOnce(ctx *cli.Context, sch *schema.Schema, sets []resolve.Set, opts materialize.Options, store *runstore.Store, cfg *config.Config) error {
	mapping, err := resolve.Resolve(sch, sets...)
	if err != nil {
		return err
	}

	validated, err := materialize.Materialize(sch, mapping, opts)
	if err != nil {
		return err
	}

	run, err := store.Begin("run")
	if err != nil {
		return err
	}
	runLog, closer, err := logger.WithRunLog(os.Stderr, run.LogPath(), cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := run.SaveResolved(mapping); err != nil {
		return err
	}

	hash, err := validated.Freeze().Hash()
	if err != nil {
		return err
	}
	runLog.Info("configuration materialized",
		"run_id", run.ID,
		"run_dir", run.Dir,
		"config_hash", fmt.Sprintf("%016x", hash))

	return printMapping(ctx, mapping)
}

// runSweep expands sweep axes and materializes every point independently.
// A point failing validation is reported and skipped; the remaining points
// continue. Any other error aborts the sweep.
func runSweep(ctx *cli.Context, sch *schema.Schema, sets []resolve.Set, opts materialize.Options, store *runstore.Store, cfg *config.Config) error {
	it, err := resolve.Sweep(sch, sets...)
	if err != nil {
		return err
	}
	slog.Info("starting sweep", "points", it.Len(), "axes", len(it.Axes()))

	// The last validation failure is carried out of the loop so the process
	// exits with the validation code when any point failed.
	var failed error
	for {
		point, err := it.Next()
		if err != nil {
			return err
		}
		if point == nil {
			break
		}

		validated, err := materialize.Materialize(sch, point.Mapping, opts)
		if err != nil {
			var verr *materialize.ValidationError
			if errors.As(err, &verr) {
				slog.Error("sweep point failed validation",
					"index", point.Index,
					"overrides", pointLabel(point),
					"error", verr.Error())
				failed = verr
				continue
			}
			return err
		}

		run, err := store.Begin(pointLabel(point))
		if err != nil {
			return err
		}
		if err := run.SaveResolved(point.Mapping); err != nil {
			return err
		}

		hash, err := validated.Freeze().Hash()
		if err != nil {
			return err
		}
		runLog, closer, err := logger.WithRunLog(os.Stderr, run.LogPath(), cfg.Log.Level)
		if err != nil {
			return err
		}
		runLog.Info("sweep point materialized",
			"index", point.Index,
			"overrides", pointLabel(point),
			"run_dir", run.Dir,
			"config_hash", fmt.Sprintf("%016x", hash))
		if err := closer.Close(); err != nil {
			return err
		}
	}

	return failed
}

// pointLabel renders a sweep point's axis picks as a short run label.
func pointLabel(p *resolve.Point) string {
	if len(p.Overrides) == 0 {
		return "run"
	}
	parts := make([]string, len(p.Overrides))
	for i, e := range p.Overrides {
		parts[i] = fmt.Sprintf("%s=%v", e.Key, e.Value)
	}
	return strings.Join(parts, ",")
}

func describeAction(ctx *cli.Context) error {
	sch, err := projectSchema()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(ctx.App.Writer, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tTYPE\tDEFAULT\tREQUIRED\tCONSTRAINT")
	for _, doc := range sch.Describe() {
		def := "-"
		if doc.Default != nil {
			def = fmt.Sprintf("%v", doc.Default)
		}
		required := "no"
		if doc.Required {
			required = "yes"
		}
		constraint := doc.Constraint
		if constraint == "" {
			constraint = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", doc.Path, doc.Type, def, required, constraint)
	}
	return w.Flush()
}

func replayAction(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return fmt.Errorf("replay requires exactly one run directory argument")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Setup(cfg.Log.Level, nil)

	sch, err := projectSchema()
	if err != nil {
		return err
	}

	set, err := runstore.LoadResolved(ctx.Args().First())
	if err != nil {
		return err
	}

	mapping, err := resolve.Resolve(sch, set)
	if err != nil {
		return err
	}

	validated, err := materialize.Materialize(sch, mapping, materialize.Options{
		Strict:         cfg.Pipeline.Strict,
		ValidateAssign: cfg.Pipeline.ValidateAssign,
	})
	if err != nil {
		return err
	}

	hash, err := validated.Freeze().Hash()
	if err != nil {
		return err
	}
	slog.Info("replayed configuration",
		"run_dir", ctx.Args().First(),
		"config_hash", fmt.Sprintf("%016x", hash))

	return printMapping(ctx, mapping)
}

// printMapping writes the resolved mapping to the command's output as YAML.
func printMapping(ctx *cli.Context, m resolve.Mapping) error {
	data, err := yaml.Marshal(map[string]any(m))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(ctx.App.Writer, string(data))
	return err
}
