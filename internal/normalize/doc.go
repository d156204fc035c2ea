// Package normalize cleans raw point-of-sale item names into canonical
// (name, type, variant) triples.
//
// Normalization is deterministic and side-effect free: the same raw string
// always produces the same triple regardless of catalog state. The rules, in
// order: decode HTML entities, extract trailing parenthetical groups as the
// variant signal (the innermost nested group wins), fold boolean modifiers
// such as "eggless" into the canonical name, map unit and size keywords to
// canonical variant tokens, and normalize case and whitespace. Components
// that cannot be resolved yield the Unknown sentinel.
package normalize
