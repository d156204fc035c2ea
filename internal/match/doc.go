// Package match resolves raw POS item names against the canonical catalog
// through a short-circuiting pipeline: parsing-table lookup, exact name/type
// lookup, fuzzy name scoring, then variant resolution, producing a
// confidence-scored result.
package match
