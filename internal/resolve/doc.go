// Package resolve merges prioritized override sets against a schema's
// defaults into a single nested mapping, and expands list-valued sweep
// overrides into the Cartesian product of all combinations.
//
// An override set is an ordered sequence of (dotted key, raw value) pairs
// tagged with the source it came from. Sources form a fixed priority chain,
// lowest to highest: defaults, file, environment, command-line flags, sweep
// axis, replay artifact. Later (higher-priority) sources win on scalar key
// collisions; record values merge per key, so a partial override of a nested
// record never erases sibling keys.
//
// Resolution performs no file or process I/O; ingestion constructors
// (FromYAMLFile, FromEnv, FromArgs) do the reading up front and hand plain
// sets to Resolve.
package resolve
