// Package logging configures structured slog loggers for the catalog engine.
//
// Two output formats are supported: a pretty console handler for interactive
// use and a JSON handler for log aggregation. Typed attribute helpers
// (String, Int, Error, ...) keep call sites terse, and standardized field
// keys keep component, raw-name, and merge identifiers consistent across
// subsystems.
package logging
