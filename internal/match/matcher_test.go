package match_test

import (
	"context"
	"testing"

	"scoop/internal/catalog"
	"scoop/internal/identity"
	"scoop/internal/logging"
	"scoop/internal/match"
	"scoop/internal/testsupport"
)

func TestMatchVerifiedParsingTableYieldsFullConfidence(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.SeedMenuItem(t, store, "Cherry & Chocolate Fudge Ice Cream", "Ice Cream", true)
	variant := testsupport.SeedVariant(t, store, "REGULAR_TUB_220GMS", true)

	raw := "Cherry & Chocolate Fudge Ice Cream (Regular Tub"
	if err := store.UpsertParsingEntry(ctx, catalog.ParsingEntry{
		RawName:     raw,
		CleanedName: "Cherry & Chocolate Fudge Ice Cream",
		Type:        "Ice Cream",
		Variant:     "REGULAR_TUB_220GMS",
		IsVerified:  true,
	}); err != nil {
		t.Fatalf("UpsertParsingEntry: %v", err)
	}

	result, err := match.New(store, cfg, logging.NewNop()).Match(ctx, raw)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if result.MenuItemID != item.ID || result.VariantID != variant.ID {
		t.Fatalf("wrong identities: %+v", result)
	}
	if result.Confidence != 100 || result.Method != match.MethodParsingTable {
		t.Fatalf("verified table hit must score 100: %+v", result)
	}
}

func TestMatchUnverifiedParsingTableBase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedMenuItem(t, store, "Mango Ice Cream", "Ice Cream", true)
	testsupport.SeedVariant(t, store, "MINI_TUB_160GMS", true)
	if err := store.UpsertParsingEntry(ctx, catalog.ParsingEntry{
		RawName:     "MANGO I/C MINI",
		CleanedName: "Mango Ice Cream",
		Type:        "Ice Cream",
		Variant:     "MINI_TUB_160GMS",
	}); err != nil {
		t.Fatalf("UpsertParsingEntry: %v", err)
	}

	result, err := match.New(store, cfg, logging.NewNop()).Match(ctx, "MANGO I/C MINI")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if result.Confidence != 90 || result.Method != match.MethodParsingTable {
		t.Fatalf("unverified table hit must score 90: %+v", result)
	}
}

func TestMatchMissPersistsParsingEntry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedMenuItem(t, store, "Mango Ice Cream", "Ice Cream", true)
	testsupport.SeedVariant(t, store, "REGULAR_TUB_220GMS", true)

	raw := "MANGO ICE CREAM (REGULAR TUB)"
	result, err := match.New(store, cfg, logging.NewNop()).Match(ctx, raw)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if !result.Matched() {
		t.Fatalf("expected a match: %+v", result)
	}
	if result.Confidence != 80 || result.Method != match.MethodSuggestion {
		t.Fatalf("normalized match must score 80: %+v", result)
	}

	entry, err := store.GetParsingEntry(ctx, raw)
	if err != nil {
		t.Fatalf("GetParsingEntry: %v", err)
	}
	if entry == nil {
		t.Fatal("match must persist the normalized triple for future lookups")
	}
	if entry.CleanedName != "Mango Ice Cream" || entry.Variant != "REGULAR_TUB_220GMS" {
		t.Fatalf("persisted triple wrong: %+v", entry)
	}
	if entry.IsVerified {
		t.Fatal("auto-persisted entries start unverified")
	}
}

func TestMatchFuzzyTypoWithEgglessBoost(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.SeedMenuItem(t, store, "Eggless Cherry & Chocolate", "Ice Cream", true)
	variant := testsupport.SeedVariant(t, store, "CUP_200ML", true)

	result, err := match.New(store, cfg, logging.NewNop()).Match(ctx, "Eggles Cherry & Chocolate 200ml")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if result.MenuItemID != item.ID {
		t.Fatalf("typo should fuzzy-resolve to the canonical item: %+v", result)
	}
	if result.VariantID != variant.ID {
		t.Fatalf("inline size should resolve the variant: %+v", result)
	}
	if result.Confidence != cfg.Matching.Threshold {
		t.Fatalf("fuzzy acceptance clamps to threshold: got %d want %d", result.Confidence, cfg.Matching.Threshold)
	}
}

func TestMatchFuzzyNeverExceedsThreshold(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithThreshold(60))
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedMenuItem(t, store, "Eggless Kesar Pista Kulfi", "Kulfi", true)
	testsupport.SeedVariant(t, store, "PACK_6PCS", true)
	// A verified cached parse whose name has a typo: base confidence 100,
	// but resolution has to go through fuzzy matching.
	if err := store.UpsertParsingEntry(ctx, catalog.ParsingEntry{
		RawName:     "KESAR PISTA KULFI EGGLES 6PC",
		CleanedName: "Eggles Kesar Pista Kulfi",
		Type:        "Kulfi",
		Variant:     "PACK_6PCS",
		IsVerified:  true,
	}); err != nil {
		t.Fatalf("UpsertParsingEntry: %v", err)
	}

	result, err := match.New(store, cfg, logging.NewNop()).Match(ctx, "KESAR PISTA KULFI EGGLES 6PC")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if !result.Matched() {
		t.Fatalf("expected fuzzy resolution: %+v", result)
	}
	// Base confidence from the verified table entry is 100, but the fuzzy
	// name resolution clamps it.
	if result.Confidence != cfg.Matching.Threshold {
		t.Fatalf("fuzzy match must clamp to threshold: got %d want %d", result.Confidence, cfg.Matching.Threshold)
	}
}

func TestMatchPartialWhenVariantUnresolved(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.SeedMenuItem(t, store, "Kesar Kulfi", "Kulfi", true)

	result, err := match.New(store, cfg, logging.NewNop()).Match(ctx, "KESAR KULFI")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if result.MenuItemID != item.ID {
		t.Fatalf("item should resolve exactly: %+v", result)
	}
	if result.VariantID != "" {
		t.Fatalf("no variant was seeded: %+v", result)
	}
	if result.Method != match.MethodSuggestion+"_partial" {
		t.Fatalf("unresolved variant must suffix the method: %q", result.Method)
	}
	if result.Confidence != 56 {
		t.Fatalf("partial result takes 70%% of name confidence: got %d", result.Confidence)
	}
}

func TestMatchNoItemYieldsNone(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	result, err := match.New(store, cfg, logging.NewNop()).Match(context.Background(), "UTTERLY UNKNOWN THING")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if result.Matched() {
		t.Fatalf("empty catalog cannot match: %+v", result)
	}
	if result.Method != match.MethodNone || result.Confidence != 0 {
		t.Fatalf("no-item result must be none: %+v", result)
	}
	if result.VariantID != "" {
		t.Fatalf("no-item result carries no partial data: %+v", result)
	}
}

func TestMatchVariantSizeKeywordFallbackCapsConfidence(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.SeedMenuItem(t, store, "Vanilla Ice Cream", "Ice Cream", true)
	// The catalog knows this size only under a non-alias token, linked to
	// the item through an earlier mapping.
	variant := testsupport.SeedVariant(t, store, "TUB_160GMS", true)
	testsupport.SeedOrderItem(t, store, "order-1", "VANILLA TUB 160", item.ID, variant.ID, 1, 160)

	result, err := match.New(store, cfg, logging.NewNop()).Match(ctx, "VANILLA ICE CREAM 160gm")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if result.MenuItemID != item.ID || result.VariantID != variant.ID {
		t.Fatalf("size keyword should find the linked variant: %+v", result)
	}
	if result.Confidence != 70 {
		t.Fatalf("fallback variant caps confidence at 70: got %d", result.Confidence)
	}
	if result.Method != match.MethodSuggestion {
		t.Fatalf("fallback variant is still a full resolution: %q", result.Method)
	}
}

func TestMatchStaleCacheUntilInvalidated(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.SeedMenuItem(t, store, "Mango Ice Cream", "Ice Cream", true)
	matcher := match.New(store, cfg, logging.NewNop())

	first, err := matcher.Match(ctx, "MANGO ICE CREAM")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if first.MenuItemID != item.ID {
		t.Fatalf("expected exact resolution: %+v", first)
	}

	// The identity changes out from under the cache.
	newID := identity.MenuItemKey("Alphonso Mango Ice Cream", "Ice Cream")
	if err := store.RenameMenuItem(ctx, item.ID, newID, "Alphonso Mango Ice Cream", "Ice Cream"); err != nil {
		t.Fatalf("RenameMenuItem: %v", err)
	}

	stale, err := matcher.Match(ctx, "MANGO ICE CREAM")
	if err != nil {
		t.Fatalf("Match stale: %v", err)
	}
	if stale.MenuItemID != item.ID {
		t.Fatalf("without invalidation the cache still serves the old identity: %+v", stale)
	}

	matcher.Invalidate()
	fresh, err := matcher.Match(ctx, "MANGO ICE CREAM")
	if err != nil {
		t.Fatalf("Match fresh: %v", err)
	}
	if fresh.MenuItemID == item.ID {
		t.Fatalf("invalidate must drop the stale identity: %+v", fresh)
	}
}
