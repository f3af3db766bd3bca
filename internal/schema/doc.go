// Package schema declares the shape and constraints of configuration data.
// A Schema is an ordered collection of field specifications, each carrying a
// declared type, an optional default, an optional constraint predicate, and
// ordered lists of named before/after hooks. Schemas nest by composition:
// a record field owns a sub-schema, never inherits from one.
//
// Schemas are immutable once built by New. Resolution and materialization
// consume them read-only, so a single Schema may be shared across sweep
// points without synchronization.
package schema
