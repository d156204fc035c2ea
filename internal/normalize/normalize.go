package normalize

import (
	"html"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Unknown is the sentinel for components normalization could not resolve.
const Unknown = "UNKNOWN"

// Normalized is the canonical triple derived from one raw POS item name.
type Normalized struct {
	Name    string
	Type    string
	Variant string
}

var titleCaser = cases.Title(language.English)

// typeKeywords maps, in priority order, name fragments to canonical item
// types. The first fragment found in the name wins.
var typeKeywords = []struct {
	fragment  string
	canonical string
}{
	{"ice cream", "Ice Cream"},
	{"sundae", "Sundae"},
	{"milkshake", "Shake"},
	{"shake", "Shake"},
	{"kulfi", "Kulfi"},
	{"cone", "Cone"},
	{"cake", "Cake"},
	{"topping", "Topping"},
}

// Normalize maps a raw POS item name to its canonical triple. It is pure:
// identical input always yields an identical triple.
func Normalize(raw string) Normalized {
	decoded := html.UnescapeString(raw)
	base, groups := extractGroups(decoded)

	// Parenthetical groups carrying boolean modifiers fold into the name;
	// the innermost remaining group is the variant signal.
	variantSignal := ""
	eggless := false
	alcohol := false
	for _, group := range groups {
		lower := strings.ToLower(group)
		switch {
		case containsEgglessWord(lower):
			eggless = true
		case strings.Contains(lower, "alcohol"):
			alcohol = true
		default:
			if variantSignal == "" {
				variantSignal = group
			}
		}
	}

	words := strings.Fields(base)
	nameWords := make([]string, 0, len(words))
	sizeSignal := ""
	for i := 0; i < len(words); i++ {
		word := words[i]
		lower := strings.ToLower(word)
		if containsEgglessWord(lower) {
			eggless = true
			continue
		}
		if lower == "contains" && i+1 < len(words) && strings.ToLower(words[i+1]) == "alcohol" {
			alcohol = true
			i++
			continue
		}
		// Inline size tokens ("200ml", "2 pcs") belong to the variant, not
		// the name. A bare number followed by a unit word is consumed whole.
		if token, consumed := sizeToken(words[i:]); token != "" {
			if sizeSignal == "" {
				sizeSignal = token
			}
			i += consumed - 1
			continue
		}
		nameWords = append(nameWords, word)
	}

	name := titleCaser.String(strings.Join(nameWords, " "))
	if eggless && name != "" {
		name = "Eggless " + name
	}
	if alcohol && name != "" {
		name += " Contains Alcohol"
	}
	if strings.TrimSpace(name) == "" {
		name = Unknown
	}

	itemType := detectType(strings.ToLower(name))

	variant := Unknown
	if variantSignal != "" {
		variant = VariantToken(variantSignal)
	} else if sizeSignal != "" {
		variant = VariantToken(sizeSignal)
	}

	return Normalized{Name: name, Type: itemType, Variant: variant}
}

// IsEggless reports whether a canonical or raw name carries the eggless
// modifier. Detection is prefix-tolerant so common POS misspellings
// ("Eggles", "Egless") still count.
func IsEggless(name string) bool {
	for _, word := range strings.Fields(strings.ToLower(name)) {
		if containsEgglessWord(word) {
			return true
		}
	}
	return false
}

func containsEgglessWord(lower string) bool {
	for _, word := range strings.Fields(lower) {
		word = strings.Trim(word, ".,;:!?")
		if strings.HasPrefix(word, "eggles") || word == "egless" || word == "eggless" {
			return true
		}
	}
	return false
}

func detectType(lowerName string) string {
	for _, entry := range typeKeywords {
		if strings.Contains(lowerName, entry.fragment) {
			return entry.canonical
		}
	}
	return Unknown
}

// extractGroups strips parenthetical groups from s, returning the remaining
// base text and the group contents innermost-first. A missing closing
// parenthesis is tolerated; the group runs to the end of the string.
func extractGroups(s string) (string, []string) {
	base := strings.Join(strings.Fields(s), " ")
	var groups []string
	for {
		open := strings.LastIndex(base, "(")
		if open == -1 {
			break
		}
		tail := base[open+1:]
		content := tail
		after := ""
		if close := strings.Index(tail, ")"); close != -1 {
			content = tail[:close]
			after = tail[close+1:]
		}
		content = strings.TrimSpace(content)
		if content != "" {
			groups = append(groups, content)
		}
		base = strings.Join(strings.Fields(base[:open]+" "+after), " ")
	}
	return strings.TrimSpace(base), groups
}
