// Package config loads and validates the strata tool's own settings from an
// optional strata.yaml file and STRATA_-prefixed environment variables.
// It covers the run-artifact root, default pipeline policies, and logging,
// keeping the binary's housekeeping separate from the schemas it resolves.
package config
