package catalog_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"scoop/internal/catalog"
	"scoop/internal/logging"
	"scoop/internal/testsupport"
)

func TestSnapshotExportWritesFullState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.SeedMenuItem(t, store, "Mango Ice Cream", "Ice Cream", true)
	variant := testsupport.SeedVariant(t, store, "REGULAR_TUB_220GMS", true)
	testsupport.SeedOrderItem(t, store, "order-1", "MANGO I/C 220", item.ID, variant.ID, 1, 220)
	testsupport.SeedOrderItem(t, store, "order-2", "MANGO ICE CREAM REG TUB", item.ID, variant.ID, 2, 220)

	snapshotter := catalog.NewSnapshotter(store, cfg.SnapshotPath(), logging.NewNop())
	if err := snapshotter.Export(ctx); err != nil {
		t.Fatalf("Export: %v", err)
	}

	data, err := os.ReadFile(cfg.SnapshotPath())
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var snapshot catalog.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}

	if got, ok := snapshot.MenuItems[item.ID]; !ok || got.Name != "Mango Ice Cream" || !got.IsVerified {
		t.Fatalf("menu item missing from snapshot: %+v", snapshot.MenuItems)
	}
	if got, ok := snapshot.Variants[variant.ID]; !ok || got.VariantName != "REGULAR_TUB_220GMS" {
		t.Fatalf("variant missing from snapshot: %+v", snapshot.Variants)
	}
	if len(snapshot.Mappings) != 1 {
		t.Fatalf("expected one mapping group, got %d", len(snapshot.Mappings))
	}
	group := snapshot.Mappings[0]
	if group.MenuItemID != item.ID || group.VariantID != variant.ID {
		t.Fatalf("mapping group identities wrong: %+v", group)
	}
	if len(group.OrderItemIDs) != 2 {
		t.Fatalf("expected both order items in group: %v", group.OrderItemIDs)
	}
}

func TestSnapshotImportGapFills(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.SeedMenuItem(t, store, "Sitaphal", "Ice Cream", true)
	variant := testsupport.SeedVariant(t, store, "MINI_TUB_160GMS", true)
	testsupport.SeedOrderItem(t, store, "order-1", "SITAPHAL 160", item.ID, variant.ID, 1, 160)

	snapshotter := catalog.NewSnapshotter(store, cfg.SnapshotPath(), logging.NewNop())
	if err := snapshotter.Export(ctx); err != nil {
		t.Fatalf("Export: %v", err)
	}

	// Import into a fresh catalog: everything from the snapshot lands.
	freshCfg := testsupport.NewConfig(t)
	fresh := testsupport.MustOpenStore(t, freshCfg)
	if err := os.MkdirAll(filepath.Dir(freshCfg.SnapshotPath()), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data, err := os.ReadFile(cfg.SnapshotPath())
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if err := os.WriteFile(freshCfg.SnapshotPath(), data, 0o644); err != nil {
		t.Fatalf("copy snapshot: %v", err)
	}

	importer := catalog.NewSnapshotter(fresh, freshCfg.SnapshotPath(), logging.NewNop())
	stats, err := importer.Import(ctx)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.MenuItemsUpserted != 1 || stats.VariantsUpserted != 1 {
		t.Fatalf("identity counts wrong: %+v", stats)
	}
	if stats.MappingsAdded != 1 || stats.MappingsSkipped != 0 {
		t.Fatalf("mapping counts wrong: %+v", stats)
	}

	restored, err := fresh.GetMenuItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetMenuItem: %v", err)
	}
	if restored == nil || restored.Name != "Sitaphal" || !restored.IsVerified {
		t.Fatalf("menu item not restored: %+v", restored)
	}
	mapping, err := fresh.GetMapping(ctx, "order-1")
	if err != nil {
		t.Fatalf("GetMapping: %v", err)
	}
	if mapping == nil || mapping.MenuItemID != item.ID || mapping.VariantID != variant.ID {
		t.Fatalf("mapping not restored: %+v", mapping)
	}

	// Importing again over live data only skips, never clobbers.
	stats, err = importer.Import(ctx)
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if stats.MappingsAdded != 0 || stats.MappingsSkipped != 1 {
		t.Fatalf("re-import should skip existing mappings: %+v", stats)
	}
}

func TestSnapshotImportDoesNotClobberNewerMapping(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	oldItem := testsupport.SeedMenuItem(t, store, "Roasted Almond", "Ice Cream", true)
	testsupport.SeedOrderItem(t, store, "order-1", "ROASTED ALMOND", oldItem.ID, "", 1, 200)

	snapshotter := catalog.NewSnapshotter(store, cfg.SnapshotPath(), logging.NewNop())
	if err := snapshotter.Export(ctx); err != nil {
		t.Fatalf("Export: %v", err)
	}

	// A correction made after the snapshot moves the mapping.
	newItem := testsupport.SeedMenuItem(t, store, "Roasted Almond Crunch", "Ice Cream", true)
	if _, err := store.Remap(ctx, "order-1", newItem.ID, ""); err != nil {
		t.Fatalf("Remap: %v", err)
	}

	if _, err := snapshotter.Import(ctx); err != nil {
		t.Fatalf("Import: %v", err)
	}

	mapping, err := store.GetMapping(ctx, "order-1")
	if err != nil {
		t.Fatalf("GetMapping: %v", err)
	}
	if mapping.MenuItemID != newItem.ID {
		t.Fatalf("import clobbered the corrected mapping: %+v", mapping)
	}
}

func TestSnapshotImportMissingFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	snapshotter := catalog.NewSnapshotter(store, cfg.SnapshotPath(), logging.NewNop())
	if _, err := snapshotter.Import(context.Background()); err == nil {
		t.Fatal("expected error for missing snapshot file")
	}
}
