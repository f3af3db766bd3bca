// Package materialize converts a resolved mapping into a validated, typed
// configuration object.
//
// Each leaf field moves through a fixed pipeline: before hooks, type
// coercion, constraint check, after hooks. A failure at any checkpoint is
// terminal for that field, but materialization keeps going and reports every
// field failure together in one *ValidationError rather than stopping at the
// first. Materialization is all-or-nothing: a mapping with any failing field
// produces no configuration.
//
// Coercion is strict about integers: integral floats (6.0) and numeric
// strings ("6") coerce, but a fractional value such as 6.1 is rejected, never
// truncated.
package materialize
