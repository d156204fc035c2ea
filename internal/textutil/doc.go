// Package textutil provides text processing primitives for comparing noisy
// point-of-sale item names.
//
// The primary use cases are:
//   - Tokenizing names into lowercase alphanumeric words, with optional
//     removal of catalog stop words
//   - Word-set Jaccard similarity and substring containment scoring
//   - Term-frequency fingerprints with cosine similarity for closest-match
//     suggestions
//
// Tokenization lowercases text and splits on non-alphanumeric characters.
// Stop words are the filler words of this catalog's product names ("ice",
// "cream", articles, conjunctions) that carry no distinguishing signal.
package textutil
