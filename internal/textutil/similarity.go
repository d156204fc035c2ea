package textutil

import "strings"

// Jaccard computes the Jaccard index of two word lists treated as sets.
// Returns 0 when either list is empty.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := wordSet(a)
	setB := wordSet(b)
	var intersection int
	for word := range setA {
		if _, ok := setB[word]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// OverlapRatio computes the share of query words present in candidate.
// Returns 0 when the query is empty.
func OverlapRatio(query, candidate []string) float64 {
	if len(query) == 0 {
		return 0
	}
	setQ := wordSet(query)
	setC := wordSet(candidate)
	var matched int
	for word := range setQ {
		if _, ok := setC[word]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(setQ))
}

// ContainsFold reports whether one string contains the other,
// case-insensitively, ignoring surrounding whitespace.
func ContainsFold(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
