package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetParsingEntry fetches the cached triple for a raw name. Returns
// (nil, nil) on a cache miss.
func (s *Store) GetParsingEntry(ctx context.Context, rawName string) (*ParsingEntry, error) {
	var (
		entry      ParsingEntry
		verified   int
		updatedRaw sql.NullString
	)
	err := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT raw_name, cleaned_name, type, variant, is_verified, updated_at FROM item_parsing_table WHERE raw_name = ?",
		rawName).Scan(&entry.RawName, &entry.CleanedName, &entry.Type, &entry.Variant, &verified, &updatedRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get parsing entry: %w", err)
	}
	entry.IsVerified = verified != 0
	entry.UpdatedAt = parseTimestamp(updatedRaw)
	return &entry, nil
}

// UpsertParsingEntry stores the cleaned triple for a raw name. The cache is
// upsert-only; a verified entry is never downgraded by an unverified write.
func (s *Store) UpsertParsingEntry(ctx context.Context, entry ParsingEntry) error {
	_, err := s.execWithRetry(ctx,
		`INSERT INTO item_parsing_table (raw_name, cleaned_name, type, variant, is_verified, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(raw_name) DO UPDATE SET
             cleaned_name = excluded.cleaned_name,
             type = excluded.type,
             variant = excluded.variant,
             is_verified = MAX(item_parsing_table.is_verified, excluded.is_verified),
             updated_at = excluded.updated_at`,
		entry.RawName,
		entry.CleanedName,
		entry.Type,
		entry.Variant,
		boolToInt(entry.IsVerified),
		timestamp(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("upsert parsing entry: %w", err)
	}
	return nil
}

// VerifyParsingEntry marks the cached parse for a raw name as confirmed.
func (s *Store) VerifyParsingEntry(ctx context.Context, rawName string) (bool, error) {
	res, err := s.execWithRetry(ctx,
		"UPDATE item_parsing_table SET is_verified = 1, updated_at = ? WHERE raw_name = ?",
		timestamp(time.Now()), rawName)
	if err != nil {
		return false, fmt.Errorf("verify parsing entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
