package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const menuItemColumns = "id, name, type, is_verified, suggestion_id, total_sold, total_revenue, sold_as_item, sold_as_addon, created_at, updated_at"

func scanMenuItem(scanner interface{ Scan(dest ...any) error }) (*MenuItem, error) {
	var (
		item         MenuItem
		verified     int
		suggestionID sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)
	if err := scanner.Scan(
		&item.ID,
		&item.Name,
		&item.Type,
		&verified,
		&suggestionID,
		&item.TotalSold,
		&item.TotalRevenue,
		&item.SoldAsItem,
		&item.SoldAsAddon,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	item.IsVerified = verified != 0
	item.SuggestionID = suggestionID.String
	item.CreatedAt = parseTimestamp(createdRaw)
	item.UpdatedAt = parseTimestamp(updatedRaw)
	return &item, nil
}

// GetMenuItem fetches one menu item by ID. Returns (nil, nil) when absent.
func (s *Store) GetMenuItem(ctx context.Context, id string) (*MenuItem, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+menuItemColumns+" FROM menu_items WHERE id = ?", id)
	item, err := scanMenuItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	return item, nil
}

// FindMenuItemByNameType looks up a menu item by its normalized name and
// type, case-insensitively. Returns (nil, nil) when absent.
func (s *Store) FindMenuItemByNameType(ctx context.Context, name, itemType string) (*MenuItem, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT "+menuItemColumns+" FROM menu_items WHERE lower(name) = lower(?) AND lower(type) = lower(?)",
		name, itemType)
	item, err := scanMenuItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find menu item: %w", err)
	}
	return item, nil
}

// EnsureMenuItem inserts the menu item if its ID is not already present and
// returns the stored row plus whether an insert happened. First writer wins.
func (s *Store) EnsureMenuItem(ctx context.Context, item MenuItem) (*MenuItem, bool, error) {
	now := timestamp(time.Now())
	res, err := s.execWithRetry(ctx,
		`INSERT INTO menu_items (id, name, type, is_verified, suggestion_id, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO NOTHING`,
		item.ID,
		item.Name,
		item.Type,
		boolToInt(item.IsVerified),
		nullableString(item.SuggestionID),
		now,
		now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert menu item: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("rows affected: %w", err)
	}
	stored, err := s.GetMenuItem(ctx, item.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, inserted > 0, nil
}

// SetSuggestion stores an advisory duplicate suggestion on a menu item.
func (s *Store) SetSuggestion(ctx context.Context, id, suggestionID string) error {
	_, err := s.execWithRetry(ctx,
		"UPDATE menu_items SET suggestion_id = ?, updated_at = ? WHERE id = ?",
		nullableString(suggestionID), timestamp(time.Now()), id)
	if err != nil {
		return fmt.Errorf("set suggestion: %w", err)
	}
	return nil
}

// VerifyMenuItem marks a menu item as human-verified. Returns false when no
// such item exists.
func (s *Store) VerifyMenuItem(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx,
		"UPDATE menu_items SET is_verified = 1, updated_at = ? WHERE id = ?",
		timestamp(time.Now()), id)
	if err != nil {
		return false, fmt.Errorf("verify menu item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// RenameMenuItem updates a menu item's identity in place: the row's ID,
// name, and type change together and every referencing row is repointed in
// the same transaction, so no reference ever dangles. The renamed item is
// marked verified.
func (s *Store) RenameMenuItem(ctx context.Context, oldID, newID, newName, newType string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE menu_items SET id = ?, name = ?, type = ?, is_verified = 1, updated_at = ? WHERE id = ?",
			newID, newName, newType, timestamp(time.Now()), oldID)
		if err != nil {
			return fmt.Errorf("rename menu item: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return sql.ErrNoRows
		}
		return relinkReferences(ctx, tx, oldID, newID)
	})
}

// ListUnverified returns every unverified menu item ordered by name, with
// the suggested duplicate's display name resolved when the suggestion still
// exists.
func (s *Store) ListUnverified(ctx context.Context) ([]UnverifiedItem, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT m.id, m.name, m.type, m.is_verified, m.suggestion_id, m.total_sold, m.total_revenue,
                m.sold_as_item, m.sold_as_addon, m.created_at, m.updated_at, s.name
         FROM menu_items m
         LEFT JOIN menu_items s ON s.id = m.suggestion_id
         WHERE m.is_verified = 0
         ORDER BY m.name`)
	if err != nil {
		return nil, fmt.Errorf("list unverified: %w", err)
	}
	defer rows.Close()

	var items []UnverifiedItem
	for rows.Next() {
		var (
			item           UnverifiedItem
			verified       int
			suggestionID   sql.NullString
			createdRaw     sql.NullString
			updatedRaw     sql.NullString
			suggestionName sql.NullString
		)
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Type,
			&verified,
			&suggestionID,
			&item.TotalSold,
			&item.TotalRevenue,
			&item.SoldAsItem,
			&item.SoldAsAddon,
			&createdRaw,
			&updatedRaw,
			&suggestionName,
		); err != nil {
			return nil, fmt.Errorf("scan unverified item: %w", err)
		}
		item.IsVerified = verified != 0
		item.SuggestionID = suggestionID.String
		item.CreatedAt = parseTimestamp(createdRaw)
		item.UpdatedAt = parseTimestamp(updatedRaw)
		item.SuggestionName = suggestionName.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListVerified returns verified menu items, optionally restricted to one
// type. Used for duplicate-suggestion prediction.
func (s *Store) ListVerified(ctx context.Context, itemType string) ([]MenuItem, error) {
	query := "SELECT " + menuItemColumns + " FROM menu_items WHERE is_verified = 1"
	args := []any{}
	if itemType != "" {
		query += " AND lower(type) = lower(?)"
		args = append(args, itemType)
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list verified: %w", err)
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verified item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ListMenuItemsByType returns all menu items with the given type; empty type
// returns everything. Used by fuzzy name matching to gather candidates.
func (s *Store) ListMenuItemsByType(ctx context.Context, itemType string) ([]MenuItem, error) {
	query := "SELECT " + menuItemColumns + " FROM menu_items"
	args := []any{}
	if itemType != "" {
		query += " WHERE lower(type) = lower(?)"
		args = append(args, itemType)
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// AccumulateSale adds one sale occurrence to a menu item's counters.
func (s *Store) AccumulateSale(ctx context.Context, id string, quantity int64, revenue float64, addon bool) error {
	soldAsItem := int64(0)
	soldAsAddon := int64(0)
	if addon {
		soldAsAddon = 1
	} else {
		soldAsItem = 1
	}
	_, err := s.execWithRetry(ctx,
		`UPDATE menu_items
         SET total_sold = total_sold + ?, total_revenue = total_revenue + ?,
             sold_as_item = sold_as_item + ?, sold_as_addon = sold_as_addon + ?,
             updated_at = ?
         WHERE id = ?`,
		quantity, revenue, soldAsItem, soldAsAddon, timestamp(time.Now()), id)
	if err != nil {
		return fmt.Errorf("accumulate sale: %w", err)
	}
	return nil
}
