// Package resolution exposes the human-review workflow: listing unverified
// catalog entities and applying verify, rename, merge, undo, and remap
// corrections with uniform status results.
package resolution
