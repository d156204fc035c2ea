package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"scoop/internal/logging"
	"scoop/internal/services"
)

// Exporter triggers a canonical-state snapshot after catalog corrections so
// backups stay consistent with every mutation.
type Exporter interface {
	Export(ctx context.Context) error
}

// Engine applies and reverses merges. Every merge runs in one transaction:
// either the duplicate is fully absorbed into the survivor or nothing
// changes.
type Engine struct {
	store    *Store
	exporter Exporter
	logger   *slog.Logger
}

// EngineOption customises the Engine.
type EngineOption func(*Engine)

// WithExporter installs the snapshot exporter invoked after successful merges.
func WithExporter(exporter Exporter) EngineOption {
	return func(e *Engine) {
		if exporter != nil {
			e.exporter = exporter
		}
	}
}

// NewEngine constructs a merge engine bound to the supplied store.
func NewEngine(store *Store, logger *slog.Logger, opts ...EngineOption) *Engine {
	engine := &Engine{
		store:  store,
		logger: logging.NewComponentLogger(logger, "merge"),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

// Merge relinks every reference from the duplicate source onto the target,
// accumulates the source's counters onto the target, records the audit
// entry, and deletes the source. The mapping rows pointing at the source at
// merge time are captured exactly; undo restores exactly that set.
func (e *Engine) Merge(ctx context.Context, sourceID, targetID string) (*MergeResult, error) {
	if sourceID == targetID {
		return nil, services.Wrap(services.ErrSelfMerge, "merge", "validate", sourceID, nil)
	}

	result := MergeResult{MergeID: uuid.New().String()}
	err := e.store.withTx(ctx, func(tx *sql.Tx) error {
		source, err := getMenuItemTx(ctx, tx, sourceID)
		if err != nil {
			return err
		}
		if source == nil {
			return services.Wrap(services.ErrNotFound, "merge", "load source", sourceID, nil)
		}
		target, err := getMenuItemTx(ctx, tx, targetID)
		if err != nil {
			return err
		}
		if target == nil {
			return services.Wrap(services.ErrNotFound, "merge", "load target", targetID, nil)
		}

		affected, err := mappedOrderItemsTx(ctx, tx, sourceID)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE menu_items
             SET total_sold = total_sold + ?, total_revenue = total_revenue + ?,
                 sold_as_item = sold_as_item + ?, sold_as_addon = sold_as_addon + ?,
                 updated_at = ?
             WHERE id = ?`,
			source.TotalSold, source.TotalRevenue, source.SoldAsItem, source.SoldAsAddon,
			timestamp(time.Now()), targetID); err != nil {
			return fmt.Errorf("accumulate counters: %w", err)
		}

		relinked, mappings, err := relinkReferencesCounted(ctx, tx, sourceID, targetID)
		if err != nil {
			return err
		}
		result.RelinkedCount = relinked
		result.MappingsUpdated = mappings
		result.RevenueAdded = source.TotalRevenue

		affectedJSON, err := json.Marshal(affected)
		if err != nil {
			return fmt.Errorf("marshal affected set: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO merge_history (merge_id, source_id, target_id, source_name, source_type, affected_order_items, merged_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			result.MergeID, sourceID, targetID, source.Name, source.Type,
			string(affectedJSON), timestamp(time.Now())); err != nil {
			return fmt.Errorf("record merge history: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM menu_items WHERE id = ?", sourceID); err != nil {
			return fmt.Errorf("delete source: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrSelfMerge) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrTransaction, "merge", "apply", "", err)
	}

	e.logger.Info("merged duplicate menu item",
		logging.String("source_id", sourceID),
		logging.String("target_id", targetID),
		logging.String(logging.FieldMergeID, result.MergeID),
		logging.Int64("mappings_updated", result.MappingsUpdated),
		logging.Float64("revenue_added", result.RevenueAdded))

	e.exportSnapshot(ctx)
	return &result, nil
}

// Undo reverses a recorded merge. The source row is re-created (verified),
// exactly the recorded mapping set is repointed back, and both items'
// counters are recomputed from live referencing rows rather than by
// reversing the merge arithmetic, so intervening operations cannot drift the
// totals. The history record is consumed: undo is valid once.
func (e *Engine) Undo(ctx context.Context, mergeID string) (*MergeRecord, error) {
	var record *MergeRecord
	err := e.store.withTx(ctx, func(tx *sql.Tx) error {
		loaded, err := getMergeRecordTx(ctx, tx, mergeID)
		if err != nil {
			return err
		}
		if loaded == nil {
			return services.Wrap(services.ErrNotFound, "merge", "load history", mergeID, nil)
		}
		record = loaded

		now := timestamp(time.Now())
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO menu_items (id, name, type, is_verified, created_at, updated_at)
             VALUES (?, ?, ?, 1, ?, ?)
             ON CONFLICT(id) DO NOTHING`,
			record.SourceID, record.SourceName, record.SourceType, now, now); err != nil {
			return fmt.Errorf("restore source: %w", err)
		}

		for _, orderItemID := range record.AffectedOrderItems {
			if _, err := tx.ExecContext(ctx,
				"UPDATE item_mappings SET menu_item_id = ? WHERE order_item_id = ?",
				record.SourceID, orderItemID); err != nil {
				return fmt.Errorf("restore mapping %s: %w", orderItemID, err)
			}
			if _, err := tx.ExecContext(ctx,
				"UPDATE order_items SET menu_item_id = ? WHERE id = ?",
				record.SourceID, orderItemID); err != nil {
				return fmt.Errorf("restore order item %s: %w", orderItemID, err)
			}
		}

		for _, id := range []string{record.SourceID, record.TargetID} {
			if err := recomputeStatsTx(ctx, tx, id); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM merge_history WHERE merge_id = ?", mergeID); err != nil {
			return fmt.Errorf("consume merge history: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrTransaction, "merge", "undo", "", err)
	}

	e.logger.Info("merge undone",
		logging.String(logging.FieldMergeID, mergeID),
		logging.String("source_id", record.SourceID),
		logging.String("target_id", record.TargetID),
		logging.Int("mappings_restored", len(record.AffectedOrderItems)))

	e.exportSnapshot(ctx)
	return record, nil
}

func (e *Engine) exportSnapshot(ctx context.Context) {
	if e.exporter == nil {
		return
	}
	if err := e.exporter.Export(ctx); err != nil {
		// The merge itself committed; a failed backup must not unwind it.
		e.logger.Warn("post-merge snapshot export failed", logging.Error(err))
	}
}

// GetMergeRecord fetches one merge audit entry. Returns (nil, nil) when absent.
func (s *Store) GetMergeRecord(ctx context.Context, mergeID string) (*MergeRecord, error) {
	var record *MergeRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		loaded, err := getMergeRecordTx(ctx, tx, mergeID)
		if err != nil {
			return err
		}
		record = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListMergeRecords returns the audit trail newest-first.
func (s *Store) ListMergeRecords(ctx context.Context) ([]MergeRecord, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		"SELECT merge_id, source_id, target_id, source_name, source_type, affected_order_items, merged_at FROM merge_history ORDER BY merged_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list merge history: %w", err)
	}
	defer rows.Close()

	var records []MergeRecord
	for rows.Next() {
		record, err := scanMergeRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func getMenuItemTx(ctx context.Context, tx *sql.Tx, id string) (*MenuItem, error) {
	row := tx.QueryRowContext(ctx,
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

func mappedOrderItemsTx(ctx context.Context, tx *sql.Tx, menuItemID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT order_item_id FROM item_mappings WHERE menu_item_id = ? ORDER BY order_item_id", menuItemID)
	if err != nil {
		return nil, fmt.Errorf("mapped order items: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order item id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func getMergeRecordTx(ctx context.Context, tx *sql.Tx, mergeID string) (*MergeRecord, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT merge_id, source_id, target_id, source_name, source_type, affected_order_items, merged_at FROM merge_history WHERE merge_id = ?",
		mergeID)
	record, err := scanMergeRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return record, err
}

func scanMergeRecord(scanner interface{ Scan(dest ...any) error }) (*MergeRecord, error) {
	var (
		record      MergeRecord
		affectedRaw string
		mergedRaw   sql.NullString
	)
	if err := scanner.Scan(&record.MergeID, &record.SourceID, &record.TargetID,
		&record.SourceName, &record.SourceType, &affectedRaw, &mergedRaw); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(affectedRaw), &record.AffectedOrderItems); err != nil {
		return nil, fmt.Errorf("decode affected set: %w", err)
	}
	record.MergedAt = parseTimestamp(mergedRaw)
	return &record, nil
}

// relinkReferences repoints every row referencing oldID onto newID.
func relinkReferences(ctx context.Context, tx *sql.Tx, oldID, newID string) error {
	_, _, err := relinkReferencesCounted(ctx, tx, oldID, newID)
	return err
}

func relinkReferencesCounted(ctx context.Context, tx *sql.Tx, oldID, newID string) (orderRows, mappingRows int64, err error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE order_items SET menu_item_id = ? WHERE menu_item_id = ?", newID, oldID)
	if err != nil {
		return 0, 0, fmt.Errorf("repoint order items: %w", err)
	}
	if orderRows, err = res.RowsAffected(); err != nil {
		return 0, 0, fmt.Errorf("rows affected: %w", err)
	}

	res, err = tx.ExecContext(ctx,
		"UPDATE item_mappings SET menu_item_id = ? WHERE menu_item_id = ?", newID, oldID)
	if err != nil {
		return 0, 0, fmt.Errorf("repoint mappings: %w", err)
	}
	if mappingRows, err = res.RowsAffected(); err != nil {
		return 0, 0, fmt.Errorf("rows affected: %w", err)
	}
	return orderRows, mappingRows, nil
}

// recomputeStatsTx rebuilds one menu item's counters by summing its live
// order rows. This is the authoritative definition of correct stats.
func recomputeStatsTx(ctx context.Context, tx *sql.Tx, menuItemID string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE menu_items
         SET total_sold = COALESCE((SELECT SUM(quantity) FROM order_items WHERE menu_item_id = ?), 0),
             total_revenue = COALESCE((SELECT SUM(quantity * unit_price) FROM order_items WHERE menu_item_id = ?), 0),
             sold_as_item = COALESCE((SELECT COUNT(1) FROM order_items WHERE menu_item_id = ? AND is_addon = 0), 0),
             sold_as_addon = COALESCE((SELECT COUNT(1) FROM order_items WHERE menu_item_id = ? AND is_addon = 1), 0),
             updated_at = ?
         WHERE id = ?`,
		menuItemID, menuItemID, menuItemID, menuItemID, timestamp(time.Now()), menuItemID)
	if err != nil {
		return fmt.Errorf("recompute stats: %w", err)
	}
	return nil
}
