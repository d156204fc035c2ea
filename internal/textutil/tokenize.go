package textutil

import (
	"regexp"
	"strings"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// stopWords are words stripped before word-set comparison. They appear in
// nearly every item name in the catalog and would inflate overlap scores.
var stopWords = map[string]struct{}{
	"ice":   {},
	"cream": {},
	"the":   {},
	"a":     {},
	"an":    {},
	"and":   {},
	"or":    {},
	"with":  {},
	"amp":   {}, // residue of "&" after entity decoding and splitting
}

// significantLength is the minimum length for a token to count as a
// distinguishing word in significant-word overlap scoring.
const significantLength = 4

// Tokenize splits text into lowercase alphanumeric tokens. Empty tokens are
// dropped; stop words are kept.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	raw := tokenSplitPattern.Split(lowered, -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if token == "" {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// ContentWords tokenizes text and removes stop words.
func ContentWords(text string) []string {
	tokens := Tokenize(text)
	words := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := stopWords[token]; ok {
			continue
		}
		words = append(words, token)
	}
	return words
}

// SignificantWords returns the content words long enough to act as a
// distinguishing signal on their own.
func SignificantWords(text string) []string {
	words := ContentWords(text)
	significant := words[:0]
	for _, word := range words {
		if len(word) >= significantLength {
			significant = append(significant, word)
		}
	}
	return significant
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}
