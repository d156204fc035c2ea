package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const variantColumns = "id, variant_name, is_verified, created_at"

func scanVariant(scanner interface{ Scan(dest ...any) error }) (*Variant, error) {
	var (
		variant    Variant
		verified   int
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&variant.ID, &variant.VariantName, &verified, &createdRaw); err != nil {
		return nil, err
	}
	variant.IsVerified = verified != 0
	variant.CreatedAt = parseTimestamp(createdRaw)
	return &variant, nil
}

// GetVariant fetches one variant by ID. Returns (nil, nil) when absent.
func (s *Store) GetVariant(ctx context.Context, id string) (*Variant, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+variantColumns+" FROM variants WHERE id = ?", id)
	variant, err := scanVariant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return variant, nil
}

// FindVariantByName looks up a variant by its canonical token,
// case-insensitively. Returns (nil, nil) when absent.
func (s *Store) FindVariantByName(ctx context.Context, token string) (*Variant, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+variantColumns+" FROM variants WHERE lower(variant_name) = lower(?)", token)
	variant, err := scanVariant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find variant: %w", err)
	}
	return variant, nil
}

// EnsureVariant inserts the variant if absent and returns the stored row
// plus whether an insert happened.
func (s *Store) EnsureVariant(ctx context.Context, variant Variant) (*Variant, bool, error) {
	res, err := s.execWithRetry(ctx,
		`INSERT INTO variants (id, variant_name, is_verified, created_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(id) DO NOTHING`,
		variant.ID,
		variant.VariantName,
		boolToInt(variant.IsVerified),
		timestamp(time.Now()),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert variant: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}
	stored, err := s.GetVariant(ctx, variant.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, inserted > 0, nil
}

// VerifyVariant marks a variant as human-verified.
func (s *Store) VerifyVariant(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx,
		"UPDATE variants SET is_verified = 1 WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("verify variant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListVariantsForItem returns the variants a menu item has actually been
// sold with, derived from its mapping rows.
func (s *Store) ListVariantsForItem(ctx context.Context, menuItemID string) ([]Variant, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT DISTINCT v.id, v.variant_name, v.is_verified, v.created_at
         FROM variants v
         JOIN item_mappings m ON m.variant_id = v.id
         WHERE m.menu_item_id = ?
         ORDER BY v.variant_name`, menuItemID)
	if err != nil {
		return nil, fmt.Errorf("list variants for item: %w", err)
	}
	defer rows.Close()

	var variants []Variant
	for rows.Next() {
		variant, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, *variant)
	}
	return variants, rows.Err()
}

// VariantLinkedToItem reports whether any mapping links the variant to the
// menu item.
func (s *Store) VariantLinkedToItem(ctx context.Context, menuItemID, variantID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT COUNT(1) FROM item_mappings WHERE menu_item_id = ? AND variant_id = ?",
		menuItemID, variantID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("variant linked: %w", err)
	}
	return count > 0, nil
}
