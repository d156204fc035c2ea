package resolution_test

import (
	"context"
	"testing"

	"scoop/internal/catalog"
	"scoop/internal/identity"
	"scoop/internal/logging"
	"scoop/internal/match"
	"scoop/internal/resolution"
	"scoop/internal/testsupport"
)

func newService(t *testing.T, store *catalog.Store, opts ...resolution.Option) *resolution.Service {
	t.Helper()
	engine := catalog.NewEngine(store, logging.NewNop())
	return resolution.New(store, engine, logging.NewNop(), opts...)
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate() {
	c.calls++
}

func TestVerifyTransitionsItem(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item := testsupport.SeedMenuItem(t, store, "Guava Chilli", "Ice Cream", false)
	svc := newService(t, store)

	outcome := svc.Verify(ctx, item.ID)
	if outcome.Status != resolution.StatusSuccess {
		t.Fatalf("Verify failed: %+v", outcome)
	}

	stored, err := store.GetMenuItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetMenuItem: %v", err)
	}
	if !stored.IsVerified {
		t.Fatal("item not verified")
	}

	if outcome := svc.Verify(ctx, "missing"); outcome.Status != resolution.StatusError {
		t.Fatalf("verifying a missing item must fail: %+v", outcome)
	}
}

func TestRenameMovesIdentity(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item := testsupport.SeedMenuItem(t, store, "Choco Fudge", "Ice Cream", false)
	testsupport.SeedOrderItem(t, store, "oi-1", "CHOCO FUDGE", item.ID, "", 1, 100)
	svc := newService(t, store)

	outcome := svc.Rename(ctx, item.ID, "Chocolate Fudge Ice Cream", "Ice Cream")
	if outcome.Status != resolution.StatusSuccess {
		t.Fatalf("Rename failed: %+v", outcome)
	}

	newID := identity.MenuItemKey("Chocolate Fudge Ice Cream", "Ice Cream")
	renamed, err := store.GetMenuItem(ctx, newID)
	if err != nil {
		t.Fatalf("GetMenuItem: %v", err)
	}
	if renamed == nil || !renamed.IsVerified {
		t.Fatalf("renamed item missing or unverified: %+v", renamed)
	}

	mapping, err := store.GetMapping(ctx, "oi-1")
	if err != nil {
		t.Fatalf("GetMapping: %v", err)
	}
	if mapping.MenuItemID != newID {
		t.Fatalf("mapping not moved with rename: %+v", mapping)
	}
}

func TestRenameCollisionDegeneratesIntoMerge(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	duplicate := testsupport.SeedMenuItem(t, store, "Choclate Fudge", "Ice Cream", false)
	survivor := testsupport.SeedMenuItem(t, store, "Chocolate Fudge", "Ice Cream", true)
	testsupport.SeedOrderItem(t, store, "oi-2", "CHOCLATE FUDGE", duplicate.ID, "", 1, 100)

	inv := &countingInvalidator{}
	svc := newService(t, store, resolution.WithInvalidator(inv))

	outcome := svc.Rename(ctx, duplicate.ID, "Chocolate Fudge", "Ice Cream")
	if outcome.Status != resolution.StatusSuccess {
		t.Fatalf("Rename failed: %+v", outcome)
	}

	gone, err := store.GetMenuItem(ctx, duplicate.ID)
	if err != nil {
		t.Fatalf("GetMenuItem duplicate: %v", err)
	}
	if gone != nil {
		t.Fatal("collision rename must delete the duplicate via merge")
	}
	mapping, err := store.GetMapping(ctx, "oi-2")
	if err != nil {
		t.Fatalf("GetMapping: %v", err)
	}
	if mapping.MenuItemID != survivor.ID {
		t.Fatalf("mapping not merged onto survivor: %+v", mapping)
	}
	if inv.calls != 1 {
		t.Fatalf("merge must invalidate caches once, got %d", inv.calls)
	}

	records, err := store.ListMergeRecords(ctx)
	if err != nil {
		t.Fatalf("ListMergeRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("collision rename must leave an audit record: %+v", records)
	}
}

func TestRenameInPlaceKeepsIdentity(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item := testsupport.SeedMenuItem(t, store, "mango ice cream", "Ice Cream", false)
	svc := newService(t, store)

	// The normalized attributes are unchanged, only the display form moves.
	outcome := svc.Rename(ctx, item.ID, "Mango Ice Cream", "Ice Cream")
	if outcome.Status != resolution.StatusSuccess {
		t.Fatalf("Rename failed: %+v", outcome)
	}

	stored, err := store.GetMenuItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetMenuItem: %v", err)
	}
	if stored == nil || stored.Name != "Mango Ice Cream" || !stored.IsVerified {
		t.Fatalf("in-place rename wrong: %+v", stored)
	}
}

func TestMergeAndUndoInvalidateCaches(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	source := testsupport.SeedMenuItem(t, store, "Vanila", "Ice Cream", false)
	target := testsupport.SeedMenuItem(t, store, "Vanilla", "Ice Cream", true)

	inv := &countingInvalidator{}
	svc := newService(t, store, resolution.WithInvalidator(inv))

	outcome := svc.Merge(ctx, source.ID, target.ID)
	if outcome.Status != resolution.StatusSuccess {
		t.Fatalf("Merge failed: %+v", outcome)
	}
	if inv.calls != 1 {
		t.Fatalf("merge must invalidate caches: %d", inv.calls)
	}

	records, err := store.ListMergeRecords(ctx)
	if err != nil {
		t.Fatalf("ListMergeRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one merge record: %+v", records)
	}

	outcome = svc.Undo(ctx, records[0].MergeID)
	if outcome.Status != resolution.StatusSuccess {
		t.Fatalf("Undo failed: %+v", outcome)
	}
	if inv.calls != 2 {
		t.Fatalf("undo must invalidate caches: %d", inv.calls)
	}

	if outcome = svc.Undo(ctx, records[0].MergeID); outcome.Status != resolution.StatusError {
		t.Fatalf("second undo must fail: %+v", outcome)
	}
}

func TestMergeSelfIsRejected(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	item := testsupport.SeedMenuItem(t, store, "Vanilla", "Ice Cream", true)

	svc := newService(t, store)
	if outcome := svc.Merge(context.Background(), item.ID, item.ID); outcome.Status != resolution.StatusError {
		t.Fatalf("self merge must fail: %+v", outcome)
	}
}

func TestRemapValidatesTarget(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	wrong := testsupport.SeedMenuItem(t, store, "Kesar Pista", "Ice Cream", false)
	right := testsupport.SeedMenuItem(t, store, "Kesar Pista Kulfi", "Kulfi", true)
	testsupport.SeedOrderItem(t, store, "oi-7", "KESAR PISTA", wrong.ID, "", 1, 80)

	svc := newService(t, store)
	if outcome := svc.Remap(ctx, "oi-7", "missing", ""); outcome.Status != resolution.StatusError {
		t.Fatalf("remap to a missing item must fail: %+v", outcome)
	}
	if outcome := svc.Remap(ctx, "missing-order", right.ID, ""); outcome.Status != resolution.StatusError {
		t.Fatalf("remap of a missing order item must fail: %+v", outcome)
	}

	outcome := svc.Remap(ctx, "oi-7", right.ID, "")
	if outcome.Status != resolution.StatusSuccess {
		t.Fatalf("Remap failed: %+v", outcome)
	}
	mapping, err := store.GetMapping(ctx, "oi-7")
	if err != nil {
		t.Fatalf("GetMapping: %v", err)
	}
	if mapping.MenuItemID != right.ID || !mapping.IsVerified {
		t.Fatalf("remap result wrong: %+v", mapping)
	}

	// Remap never touches stats.
	item, err := store.GetMenuItem(ctx, right.ID)
	if err != nil {
		t.Fatalf("GetMenuItem: %v", err)
	}
	if item.TotalSold != 0 || item.TotalRevenue != 0 {
		t.Fatalf("remap must not mutate stats: %+v", item)
	}
}

func TestListUnverifiedAnnotatesSuggestions(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	verified := testsupport.SeedMenuItem(t, store, "Butterscotch", "Ice Cream", true)
	pending := testsupport.SeedMenuItem(t, store, "Buterscotch", "Ice Cream", false)
	if err := store.SetSuggestion(ctx, pending.ID, verified.ID); err != nil {
		t.Fatalf("SetSuggestion: %v", err)
	}

	svc := newService(t, store)
	items, err := svc.ListUnverified(ctx)
	if err != nil {
		t.Fatalf("ListUnverified: %v", err)
	}
	if len(items) != 1 || items[0].SuggestionName != "Butterscotch" {
		t.Fatalf("unexpected listing: %+v", items)
	}
}

func TestRenameKeepsTypeWhenOmitted(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item := testsupport.SeedMenuItem(t, store, "Chocolate Fundge", "Ice Cream", false)
	svc := newService(t, store)

	outcome := svc.Rename(ctx, item.ID, "Chocolate Fudge", "")
	if outcome.Status != resolution.StatusSuccess {
		t.Fatalf("Rename failed: %+v", outcome)
	}

	renamed, err := store.GetMenuItem(ctx, identity.MenuItemKey("Chocolate Fudge", "Ice Cream"))
	if err != nil {
		t.Fatalf("GetMenuItem: %v", err)
	}
	if renamed == nil {
		t.Fatal("renamed identity not derived from the current type")
	}
	if renamed.Type != "Ice Cream" {
		t.Fatalf("omitted type must keep the current one, got %q", renamed.Type)
	}
}

func TestVerifyVariantTransitions(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	variant := testsupport.SeedVariant(t, store, "CUP_200ML", false)
	svc := newService(t, store)

	if outcome := svc.VerifyVariant(ctx, variant.ID); outcome.Status != resolution.StatusSuccess {
		t.Fatalf("VerifyVariant failed: %+v", outcome)
	}
	stored, err := store.GetVariant(ctx, variant.ID)
	if err != nil {
		t.Fatalf("GetVariant: %v", err)
	}
	if !stored.IsVerified {
		t.Fatal("variant not verified")
	}

	if outcome := svc.VerifyVariant(ctx, "missing"); outcome.Status != resolution.StatusError {
		t.Fatalf("verifying a missing variant must fail: %+v", outcome)
	}
}

func TestVerifyParsePromotesCachedEntry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedMenuItem(t, store, "Mango Ice Cream", "Ice Cream", true)
	testsupport.SeedVariant(t, store, "REGULAR_TUB_220GMS", true)

	raw := "MANGO ICE CREAM (REGULAR TUB)"
	matcher := match.New(store, cfg, logging.NewNop())
	first, err := matcher.Match(ctx, raw)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if first.Confidence != 80 || first.Method != match.MethodSuggestion {
		t.Fatalf("first sighting should resolve via suggestion: %+v", first)
	}

	svc := newService(t, store)
	if outcome := svc.VerifyParse(ctx, raw); outcome.Status != resolution.StatusSuccess {
		t.Fatalf("VerifyParse failed: %+v", outcome)
	}
	entry, err := store.GetParsingEntry(ctx, raw)
	if err != nil {
		t.Fatalf("GetParsingEntry: %v", err)
	}
	if entry == nil || !entry.IsVerified {
		t.Fatalf("parse entry not promoted: %+v", entry)
	}

	second, err := matcher.Match(ctx, raw)
	if err != nil {
		t.Fatalf("Match after verify: %v", err)
	}
	if second.Confidence != 100 || second.Method != match.MethodParsingTable {
		t.Fatalf("verified parse must yield full confidence: %+v", second)
	}

	if outcome := svc.VerifyParse(ctx, "NEVER SEEN BEFORE"); outcome.Status != resolution.StatusError {
		t.Fatalf("verifying an uncached raw name must fail: %+v", outcome)
	}
}
