package testsupport

import (
	"context"
	"testing"

	"scoop/internal/catalog"
	"scoop/internal/config"
	"scoop/internal/identity"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedMenuItem inserts a menu item keyed by (name, type) and returns the
// stored row.
func SeedMenuItem(t testing.TB, store *catalog.Store, name, itemType string, verified bool) *catalog.MenuItem {
	t.Helper()

	item, _, err := store.EnsureMenuItem(context.Background(), catalog.MenuItem{
		ID:         identity.MenuItemKey(name, itemType),
		Name:       name,
		Type:       itemType,
		IsVerified: verified,
	})
	if err != nil {
		t.Fatalf("EnsureMenuItem(%q): %v", name, err)
	}
	return item
}

// SeedVariant inserts a variant keyed by its token and returns the stored
// row.
func SeedVariant(t testing.TB, store *catalog.Store, token string, verified bool) *catalog.Variant {
	t.Helper()

	variant, _, err := store.EnsureVariant(context.Background(), catalog.Variant{
		ID:          identity.VariantKey(token),
		VariantName: token,
		IsVerified:  verified,
	})
	if err != nil {
		t.Fatalf("EnsureVariant(%q): %v", token, err)
	}
	return variant
}

// SeedOrderItem records an order item row plus its mapping, the shape every
// resolved ingest produces.
func SeedOrderItem(t testing.TB, store *catalog.Store, orderItemID, rawName, menuItemID, variantID string, quantity int64, unitPrice float64) {
	t.Helper()

	ctx := context.Background()
	if _, err := store.InsertOrderItem(ctx, catalog.OrderItem{
		ID:         orderItemID,
		RawName:    rawName,
		MenuItemID: menuItemID,
		VariantID:  variantID,
		Confidence: 100,
		Method:     "exact_match",
		Quantity:   quantity,
		UnitPrice:  unitPrice,
	}); err != nil {
		t.Fatalf("InsertOrderItem(%q): %v", orderItemID, err)
	}
	if _, err := store.InsertMapping(ctx, catalog.ItemMapping{
		OrderItemID: orderItemID,
		MenuItemID:  menuItemID,
		VariantID:   variantID,
	}); err != nil {
		t.Fatalf("InsertMapping(%q): %v", orderItemID, err)
	}
}
