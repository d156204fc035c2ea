// Package registry records raw POS occurrences against the canonical
// catalog, minting unverified menu items and variants on first sighting and
// predicting duplicate targets for human review.
package registry
