package match

import (
	"context"
	"log/slog"

	"scoop/internal/catalog"
	"scoop/internal/config"
	"scoop/internal/logging"
	"scoop/internal/normalize"
	"scoop/internal/textutil"
)

// Result methods, recorded alongside the order item so review can tell how a
// resolution was produced.
const (
	MethodParsingTable = "parsing_table"
	MethodSuggestion   = "suggestion"
	MethodNone         = "none"

	partialSuffix = "_partial"
)

const (
	verifiedTableConfidence   = 100
	unverifiedTableConfidence = 90
	normalizedConfidence      = 80

	variantFallbackFloor = 70
)

// Result is one confidence-scored resolution of a raw POS name.
type Result struct {
	MenuItemID string
	VariantID  string
	Confidence int
	Method     string
}

// Matched reports whether a menu item was resolved.
func (r *Result) Matched() bool {
	return r.MenuItemID != ""
}

// Matcher resolves raw names against existing catalog entities. It never
// mints menu items or variants; unmatched names yield a none result. Each
// matcher owns its lookup cache, which callers must invalidate after merges.
type Matcher struct {
	store     *catalog.Store
	cfg       *config.Config
	logger    *slog.Logger
	cache     *Cache
	threshold int
}

// Option customises the Matcher.
type Option func(*Matcher)

// WithCache installs a shared lookup cache.
func WithCache(cache *Cache) Option {
	return func(m *Matcher) {
		if cache != nil {
			m.cache = cache
		}
	}
}

// New constructs a matcher bound to the supplied catalog store.
func New(store *catalog.Store, cfg *config.Config, logger *slog.Logger, opts ...Option) *Matcher {
	m := &Matcher{
		store:     store,
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "match"),
		threshold: cfg.Matching.Threshold,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.cache == nil {
		m.cache = NewCache()
	}
	return m
}

// Invalidate clears the matcher's lookup cache. Must be called after any
// merge, since a merged source identity no longer exists.
func (m *Matcher) Invalidate() {
	m.cache.Invalidate()
}

// Match resolves one raw name. Canonicalization consults the parsing table
// first; a miss normalizes the raw name and persists the triple for future
// O(1) lookups. Addon names go through the same path.
func (m *Matcher) Match(ctx context.Context, raw string) (*Result, error) {
	triple, confidence, method, err := m.canonicalize(ctx, raw)
	if err != nil {
		return nil, err
	}

	menuItemID, err := m.resolveMenuItem(ctx, triple, &confidence)
	if err != nil {
		return nil, err
	}
	if menuItemID == "" {
		m.logger.Debug("no menu item resolved",
			logging.String(logging.FieldRawName, raw),
			logging.String("name", triple.Name))
		return &Result{Method: MethodNone}, nil
	}

	variantID, err := m.resolveVariant(ctx, raw, triple, menuItemID, &confidence)
	if err != nil {
		return nil, err
	}
	if variantID == "" {
		confidence = int(float64(confidence) * 0.7)
		method += partialSuffix
	}

	result := &Result{
		MenuItemID: menuItemID,
		VariantID:  variantID,
		Confidence: confidence,
		Method:     method,
	}
	m.logger.Debug("match resolved",
		logging.String(logging.FieldRawName, raw),
		logging.String(logging.FieldMenuItemID, result.MenuItemID),
		logging.String(logging.FieldVariantID, result.VariantID),
		logging.Int(logging.FieldConfidence, result.Confidence),
		logging.String(logging.FieldMethod, result.Method))
	return result, nil
}

// canonicalize produces the cleaned triple plus the base confidence and
// method for raw.
func (m *Matcher) canonicalize(ctx context.Context, raw string) (normalize.Normalized, int, string, error) {
	entry, err := m.store.GetParsingEntry(ctx, raw)
	if err != nil {
		return normalize.Normalized{}, 0, "", err
	}
	if entry != nil {
		confidence := unverifiedTableConfidence
		if entry.IsVerified {
			confidence = verifiedTableConfidence
		}
		triple := normalize.Normalized{Name: entry.CleanedName, Type: entry.Type, Variant: entry.Variant}
		return triple, confidence, MethodParsingTable, nil
	}

	triple := normalize.Normalize(raw)
	if err := m.store.UpsertParsingEntry(ctx, catalog.ParsingEntry{
		RawName:     raw,
		CleanedName: triple.Name,
		Type:        triple.Type,
		Variant:     triple.Variant,
	}); err != nil {
		return normalize.Normalized{}, 0, "", err
	}
	return triple, normalizedConfidence, MethodSuggestion, nil
}

// resolveMenuItem finds the catalog identity for the triple's name/type:
// exact lookup first, then fuzzy scoring against same-type candidates. An
// unknown query type widens fuzzy matching to the whole catalog. A fuzzy
// acceptance clamps confidence to the configured threshold.
func (m *Matcher) resolveMenuItem(ctx context.Context, triple normalize.Normalized, confidence *int) (string, error) {
	if id, ok := m.cache.item(triple.Name, triple.Type); ok {
		return id, nil
	}

	item, err := m.store.FindMenuItemByNameType(ctx, triple.Name, triple.Type)
	if err != nil {
		return "", err
	}
	if item != nil {
		m.cache.storeItem(triple.Name, triple.Type, item.ID)
		return item.ID, nil
	}

	candidateType := triple.Type
	if candidateType == normalize.Unknown {
		candidateType = ""
	}
	candidates, err := m.store.ListMenuItemsByType(ctx, candidateType)
	if err != nil {
		return "", err
	}

	var (
		best      *catalog.MenuItem
		bestScore float64
	)
	for i := range candidates {
		score := scoreName(triple.Name, candidates[i].Name)
		m.logger.Debug("fuzzy name candidate",
			logging.String("query", triple.Name),
			logging.String("candidate", candidates[i].Name),
			logging.Float64("score", score))
		if score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}
	if best == nil || bestScore < float64(m.threshold) {
		return "", nil
	}

	if *confidence > m.threshold {
		*confidence = m.threshold
	}
	m.logger.Debug("fuzzy name accepted",
		logging.String("query", triple.Name),
		logging.String("candidate", best.Name),
		logging.Float64("score", bestScore),
		logging.Int("threshold", m.threshold))
	m.cache.storeItem(triple.Name, triple.Type, best.ID)
	return best.ID, nil
}

// resolveVariant finds the variant identity for the triple's token: exact
// token lookup first, then size expressions from the raw name, then token
// overlap against the variants already linked to the resolved menu item.
// Either fallback caps confidence.
func (m *Matcher) resolveVariant(ctx context.Context, raw string, triple normalize.Normalized, menuItemID string, confidence *int) (string, error) {
	if triple.Variant != "" && triple.Variant != normalize.Unknown {
		if id, ok := m.cache.variant(triple.Variant); ok {
			return id, nil
		}
		variant, err := m.store.FindVariantByName(ctx, triple.Variant)
		if err != nil {
			return "", err
		}
		if variant != nil {
			m.cache.storeVariant(triple.Variant, variant.ID)
			return variant.ID, nil
		}
	}

	// Size expressions in the raw name map to ordered candidate tokens; the
	// first one actually linked to the resolved item wins.
	for _, token := range normalize.SizeCandidates(raw) {
		variant, err := m.store.FindVariantByName(ctx, token)
		if err != nil {
			return "", err
		}
		if variant == nil {
			continue
		}
		linked, err := m.store.VariantLinkedToItem(ctx, menuItemID, variant.ID)
		if err != nil {
			return "", err
		}
		if linked {
			m.capForFallbackVariant(confidence, "size_keyword", variant.VariantName)
			return variant.ID, nil
		}
	}

	if triple.Variant == "" || triple.Variant == normalize.Unknown {
		return "", nil
	}

	linked, err := m.store.ListVariantsForItem(ctx, menuItemID)
	if err != nil {
		return "", err
	}
	queryTokens := textutil.Tokenize(triple.Variant)
	var (
		best        *catalog.Variant
		bestOverlap float64
	)
	for i := range linked {
		overlap := textutil.OverlapRatio(queryTokens, textutil.Tokenize(linked[i].VariantName))
		if overlap > bestOverlap {
			best = &linked[i]
			bestOverlap = overlap
		}
	}
	if best == nil || bestOverlap < m.cfg.Matching.VariantOverlap {
		return "", nil
	}
	m.capForFallbackVariant(confidence, "token_overlap", best.VariantName)
	return best.ID, nil
}

// capForFallbackVariant lowers confidence when a variant was found by
// heuristics rather than exact token lookup.
func (m *Matcher) capForFallbackVariant(confidence *int, via, token string) {
	ceiling := *confidence - 10
	if ceiling < variantFallbackFloor {
		ceiling = variantFallbackFloor
	}
	if *confidence > ceiling {
		*confidence = ceiling
	}
	m.logger.Debug("variant resolved by fallback",
		logging.String("via", via),
		logging.String("variant", token),
		logging.Int(logging.FieldConfidence, *confidence))
}
