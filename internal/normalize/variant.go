package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// sizePattern matches a combined quantity+unit token such as "200ml",
// "160gm", or "2pc".
var sizePattern = regexp.MustCompile(`^(\d+)(gms?|g|ml|pcs?|pieces?)$`)

// unitSuffixes maps unit spellings to their canonical form.
var unitSuffixes = map[string]string{
	"g":      "GMS",
	"gm":     "GMS",
	"gms":    "GMS",
	"ml":     "ML",
	"pc":     "PCS",
	"pcs":    "PCS",
	"piece":  "PCS",
	"pieces": "PCS",
}

// phraseAliases maps packaging phrases without an explicit size to the
// catalog's canonical variant tokens.
var phraseAliases = map[string]string{
	"mini":         "MINI_TUB_160GMS",
	"mini tub":     "MINI_TUB_160GMS",
	"regular":      "REGULAR_TUB_220GMS",
	"large":        "LARGE_TUB_500GMS",
	"regular tub":  "REGULAR_TUB_220GMS",
	"large tub":    "LARGE_TUB_500GMS",
	"family tub":   "LARGE_TUB_500GMS",
	"party tub":    "LARGE_TUB_500GMS",
	"tub":          "REGULAR_TUB_220GMS",
	"single scoop": "SINGLE_SCOOP",
	"scoop":        "SINGLE_SCOOP",
	"double scoop": "DOUBLE_SCOOP",
	"cup":          "CUP_200ML",
	"cone":         "CONE",
}

// sizeAliases maps canonical size suffixes to the full variant token the
// catalog uses for that packaging size.
var sizeAliases = map[string]string{
	"160GMS": "MINI_TUB_160GMS",
	"220GMS": "REGULAR_TUB_220GMS",
	"500GMS": "LARGE_TUB_500GMS",
	"200ML":  "CUP_200ML",
}

// sizeToken inspects the leading words for a size expression and returns the
// canonical suffix ("160GMS") plus the number of words consumed, or ("", 0).
func sizeToken(words []string) (string, int) {
	if len(words) == 0 {
		return "", 0
	}
	first := strings.ToLower(strings.Trim(words[0], ".,;:"))
	if m := sizePattern.FindStringSubmatch(first); m != nil {
		return m[1] + unitSuffixes[m[2]], 1
	}
	if _, err := strconv.Atoi(first); err == nil && len(words) > 1 {
		unit := strings.ToLower(strings.Trim(words[1], ".,;:"))
		if suffix, ok := unitSuffixes[unit]; ok {
			return first + suffix, 2
		}
	}
	return "", 0
}

// VariantToken maps a variant signal ("Regular Tub", "160 gms", "2 pcs
// pack") to its canonical token. Unresolvable signals compose a token from
// their own words; an empty signal yields Unknown.
func VariantToken(signal string) string {
	words := strings.Fields(strings.ToLower(signal))
	var descriptors []string
	suffix := ""
	for i := 0; i < len(words); i++ {
		if token, consumed := sizeToken(words[i:]); token != "" {
			if suffix == "" {
				suffix = token
			}
			i += consumed - 1
			continue
		}
		cleaned := strings.Trim(words[i], ".,;:&")
		if cleaned == "" {
			continue
		}
		descriptors = append(descriptors, cleaned)
	}

	if len(descriptors) == 0 && suffix == "" {
		return Unknown
	}

	if len(descriptors) == 0 {
		if alias, ok := sizeAliases[suffix]; ok {
			return alias
		}
		return suffix
	}

	phrase := strings.Join(descriptors, " ")
	if suffix == "" {
		if alias, ok := phraseAliases[phrase]; ok {
			return alias
		}
		return strings.ToUpper(strings.Join(descriptors, "_"))
	}

	// Descriptor plus explicit size: prefer the size alias when the
	// descriptors are already part of it ("tub 160 gms" is a mini tub).
	if alias, ok := sizeAliases[suffix]; ok && descriptorsWithin(descriptors, alias) {
		return alias
	}
	return strings.ToUpper(strings.Join(descriptors, "_")) + "_" + suffix
}

func descriptorsWithin(descriptors []string, token string) bool {
	parts := strings.Split(strings.ToLower(token), "_")
	set := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		set[part] = struct{}{}
	}
	for _, descriptor := range descriptors {
		if _, ok := set[descriptor]; !ok {
			return false
		}
	}
	return true
}

// SizeCandidates scans a raw name for size expressions and returns, in
// priority order, the variant tokens that size could correspond to. The
// matcher tries them in order and keeps the first one actually linked to the
// resolved menu item.
func SizeCandidates(raw string) []string {
	cleaned := strings.NewReplacer("(", " ", ")", " ").Replace(strings.ToLower(raw))
	words := strings.Fields(cleaned)
	var candidates []string
	seen := map[string]struct{}{}
	add := func(token string) {
		if token == "" {
			return
		}
		if _, ok := seen[token]; ok {
			return
		}
		seen[token] = struct{}{}
		candidates = append(candidates, token)
	}
	for i := 0; i < len(words); i++ {
		suffix, consumed := sizeToken(words[i:])
		if suffix == "" {
			continue
		}
		i += consumed - 1
		if alias, ok := sizeAliases[suffix]; ok {
			add(alias)
		}
		switch {
		case strings.HasSuffix(suffix, "GMS"):
			add("TUB_" + suffix)
		case strings.HasSuffix(suffix, "ML"):
			add("CUP_" + suffix)
			add("BOTTLE_" + suffix)
		case strings.HasSuffix(suffix, "PCS"):
			add("PACK_" + suffix)
		}
	}
	return candidates
}
