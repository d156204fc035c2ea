package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Occurrence is the complete first-sighting write set for one ingested
// order item: the entities to mint, the mapping, and the order row carrying
// the sale attributes.
type Occurrence struct {
	MenuItem     MenuItem
	SuggestionID string
	Variant      *Variant
	OrderItem    OrderItem
}

// OccurrenceResult reports what IngestOccurrence changed. Existing is set
// instead when a concurrent writer already mapped the order item.
type OccurrenceResult struct {
	MintedMenuItem bool
	MintedVariant  bool
	Inserted       bool
	Existing       *ItemMapping
}

// IngestOccurrence applies the write set for one order item occurrence in a
// single transaction: entity minting, the mapping row, the order row, and
// the sale counters commit or roll back together, so a crash mid-ingestion
// never leaves a mapping without its sale. Inserts are conflict-ignored;
// when the mapping already exists nothing else is written and the stored
// row is returned.
func (s *Store) IngestOccurrence(ctx context.Context, occ Occurrence) (*OccurrenceResult, error) {
	result := &OccurrenceResult{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		now := timestamp(time.Now())

		res, err := tx.ExecContext(ctx,
			`INSERT INTO menu_items (id, name, type, is_verified, suggestion_id, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)
             ON CONFLICT(id) DO NOTHING`,
			occ.MenuItem.ID,
			occ.MenuItem.Name,
			occ.MenuItem.Type,
			boolToInt(occ.MenuItem.IsVerified),
			nullableString(occ.SuggestionID),
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert menu item: %w", err)
		}
		minted, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		result.MintedMenuItem = minted > 0

		if occ.Variant != nil {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO variants (id, variant_name, is_verified, created_at)
                 VALUES (?, ?, ?, ?)
                 ON CONFLICT(id) DO NOTHING`,
				occ.Variant.ID,
				occ.Variant.VariantName,
				boolToInt(occ.Variant.IsVerified),
				now,
			)
			if err != nil {
				return fmt.Errorf("insert variant: %w", err)
			}
			mintedVariant, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			result.MintedVariant = mintedVariant > 0
		}

		res, err = tx.ExecContext(ctx,
			`INSERT INTO item_mappings (order_item_id, menu_item_id, variant_id, is_verified, created_at)
             VALUES (?, ?, ?, 0, ?)
             ON CONFLICT(order_item_id) DO NOTHING`,
			occ.OrderItem.ID,
			occ.MenuItem.ID,
			nullableString(occ.OrderItem.VariantID),
			now,
		)
		if err != nil {
			return fmt.Errorf("insert mapping: %w", err)
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if inserted == 0 {
			existing, err := getMappingTx(ctx, tx, occ.OrderItem.ID)
			if err != nil {
				return err
			}
			result.Existing = existing
			return nil
		}
		result.Inserted = true

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (id, raw_name, menu_item_id, variant_id, confidence, method, quantity, unit_price, is_addon, created_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
             ON CONFLICT(id) DO NOTHING`,
			occ.OrderItem.ID,
			occ.OrderItem.RawName,
			nullableString(occ.MenuItem.ID),
			nullableString(occ.OrderItem.VariantID),
			occ.OrderItem.Confidence,
			nullableString(occ.OrderItem.Method),
			occ.OrderItem.Quantity,
			occ.OrderItem.UnitPrice,
			boolToInt(occ.OrderItem.IsAddon),
			now,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		soldAsItem := int64(0)
		soldAsAddon := int64(0)
		if occ.OrderItem.IsAddon {
			soldAsAddon = 1
		} else {
			soldAsItem = 1
		}
		revenue := float64(occ.OrderItem.Quantity) * occ.OrderItem.UnitPrice
		if _, err := tx.ExecContext(ctx,
			`UPDATE menu_items
             SET total_sold = total_sold + ?, total_revenue = total_revenue + ?,
                 sold_as_item = sold_as_item + ?, sold_as_addon = sold_as_addon + ?,
                 updated_at = ?
             WHERE id = ?`,
			occ.OrderItem.Quantity, revenue, soldAsItem, soldAsAddon, now, occ.MenuItem.ID,
		); err != nil {
			return fmt.Errorf("accumulate sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func getMappingTx(ctx context.Context, tx *sql.Tx, orderItemID string) (*ItemMapping, error) {
	var (
		mapping    ItemMapping
		variantID  sql.NullString
		verified   int
		createdRaw sql.NullString
	)
	err := tx.QueryRowContext(ctx,
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
