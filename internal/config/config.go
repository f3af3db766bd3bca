package config

// Config holds the tool's own settings: where run artifacts live and which
// pipeline policies apply by default. These are the settings of the strata
// binary itself, not of the schemas it resolves.
type Config struct {
	Runs     RunsConfig     `mapstructure:"runs" validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Log      LogConfig      `mapstructure:"log"`
}

// RunsConfig controls run-artifact persistence.
type RunsConfig struct {
	// Root is the directory under which one directory per run is created.
	Root string `mapstructure:"root" validate:"required"`
}

// PipelineConfig carries the default materialization policies. Both are
// overridable per invocation with CLI flags.
type PipelineConfig struct {
	// Strict rejects resolved keys not declared in the schema.
	Strict bool `mapstructure:"strict"`

	// ValidateAssign re-validates any post-materialization assignment.
	ValidateAssign bool `mapstructure:"validate_assign"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}
