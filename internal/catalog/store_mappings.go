package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetMapping fetches the mapping for one external order item. Returns
// (nil, nil) when the order item has never been mapped.
func (s *Store) GetMapping(ctx context.Context, orderItemID string) (*ItemMapping, error) {
	var (
		mapping    ItemMapping
		variantID  sql.NullString
		verified   int
		createdRaw sql.NullString
	)
	err := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT order_item_id, menu_item_id, variant_id, is_verified, created_at FROM item_mappings WHERE order_item_id = ?",
		orderItemID).Scan(&mapping.OrderItemID, &mapping.MenuItemID, &variantID, &verified, &createdRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mapping: %w", err)
	}
	mapping.VariantID = variantID.String
	mapping.IsVerified = verified != 0
	mapping.CreatedAt = parseTimestamp(createdRaw)
	return &mapping, nil
}

// InsertMapping records the mapping for an order item if none exists.
// The insert is conflict-ignored: the first writer wins and later calls
// leave the stored row untouched.
func (s *Store) InsertMapping(ctx context.Context, mapping ItemMapping) (bool, error) {
	res, err := s.execWithRetry(ctx,
		`INSERT INTO item_mappings (order_item_id, menu_item_id, variant_id, is_verified, created_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(order_item_id) DO NOTHING`,
		mapping.OrderItemID,
		mapping.MenuItemID,
		nullableString(mapping.VariantID),
		boolToInt(mapping.IsVerified),
		timestamp(time.Now()),
	)
	if err != nil {
		return false, fmt.Errorf("insert mapping: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return inserted > 0, nil
}

// Remap force-repoints one mapping to new identities without touching any
// stat counters. Returns false when the order item has no mapping.
func (s *Store) Remap(ctx context.Context, orderItemID, menuItemID, variantID string) (bool, error) {
	var affected int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE item_mappings SET menu_item_id = ?, variant_id = ?, is_verified = 1 WHERE order_item_id = ?",
			menuItemID, nullableString(variantID), orderItemID)
		if err != nil {
			return fmt.Errorf("remap mapping: %w", err)
		}
		if affected, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return nil
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE order_items SET menu_item_id = ?, variant_id = ? WHERE id = ?",
			menuItemID, nullableString(variantID), orderItemID)
		if err != nil {
			return fmt.Errorf("repoint order item: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// InsertOrderItem persists the identity-bearing slice of one ingested order
// item row. Conflict-ignored on the external ID.
func (s *Store) InsertOrderItem(ctx context.Context, item OrderItem) (bool, error) {
	res, err := s.execWithRetry(ctx,
		`INSERT INTO order_items (id, raw_name, menu_item_id, variant_id, confidence, method, quantity, unit_price, is_addon, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO NOTHING`,
		item.ID,
		item.RawName,
		nullableString(item.MenuItemID),
		nullableString(item.VariantID),
		item.Confidence,
		nullableString(item.Method),
		item.Quantity,
		item.UnitPrice,
		boolToInt(item.IsAddon),
		timestamp(time.Now()),
	)
	if err != nil {
		return false, fmt.Errorf("insert order item: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return inserted > 0, nil
}

// GetOrderItem fetches one ingested order item. Returns (nil, nil) when absent.
func (s *Store) GetOrderItem(ctx context.Context, id string) (*OrderItem, error) {
	var (
		item       OrderItem
		menuItemID sql.NullString
		variantID  sql.NullString
		confidence sql.NullInt64
		method     sql.NullString
		addon      int
		createdRaw sql.NullString
	)
	err := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT id, raw_name, menu_item_id, variant_id, confidence, method, quantity, unit_price, is_addon, created_at FROM order_items WHERE id = ?",
		id).Scan(&item.ID, &item.RawName, &menuItemID, &variantID, &confidence, &method, &item.Quantity, &item.UnitPrice, &addon, &createdRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order item: %w", err)
	}
	item.MenuItemID = menuItemID.String
	item.VariantID = variantID.String
	item.Confidence = int(confidence.Int64)
	item.Method = method.String
	item.IsAddon = addon != 0
	item.CreatedAt = parseTimestamp(createdRaw)
	return &item, nil
}
