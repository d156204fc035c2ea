package match

import (
	"scoop/internal/normalize"
	"scoop/internal/textutil"
)

const containmentCap = 95.0

// scoreName rates how well a candidate catalog name matches the query name,
// on a 0-100 scale. Containment of one name in the other wins outright;
// otherwise stop-word-free Jaccard overlap is combined with a discounted
// significant-word overlap. An eggless disagreement between the two names
// penalizes the score, agreement boosts it.
func scoreName(query, candidate string) float64 {
	var score float64
	if textutil.ContainsFold(query, candidate) {
		score = containmentScore(query, candidate)
	} else {
		jaccard := textutil.Jaccard(textutil.ContentWords(query), textutil.ContentWords(candidate))
		significant := textutil.Jaccard(textutil.SignificantWords(query), textutil.SignificantWords(candidate))
		score = max(jaccard, significant*0.8) * 100
	}

	queryEggless := normalize.IsEggless(query)
	candidateEggless := normalize.IsEggless(candidate)
	switch {
	case queryEggless && candidateEggless:
		score *= 1.1
	case queryEggless:
		score *= 0.7
	case candidateEggless:
		score *= 0.8
	}

	return min(score, 100)
}

// containmentScore is the length ratio of the shorter name to the longer,
// capped so containment alone never beats an exact lookup.
func containmentScore(a, b string) float64 {
	shorter, longer := len(a), len(b)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if longer == 0 {
		return 0
	}
	return min(containmentCap, float64(shorter)/float64(longer)*100)
}
