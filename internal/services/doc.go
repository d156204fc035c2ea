// Package services defines shared error utilities consumed by the catalog
// store, the matcher, and the resolution surface.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent across components.
//   - Classification helpers the resolution layer uses to translate failures
//     into caller-facing status results.
//
// Use these helpers when wiring new catalog operations so error handling
// stays uniform across the module.
package services
