package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"scoop/internal/logging"
)

// Snapshot is the gap-filling JSON export of the whole canonical state.
type Snapshot struct {
	ExportedAt time.Time                   `json:"exported_at"`
	MenuItems  map[string]SnapshotMenuItem `json:"menu_items"`
	Variants   map[string]SnapshotVariant  `json:"variants"`
	Mappings   []SnapshotMapping           `json:"mappings"`
}

// SnapshotMenuItem is the identity slice of one menu item.
type SnapshotMenuItem struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	IsVerified bool   `json:"is_verified"`
}

// SnapshotVariant is the identity slice of one variant.
type SnapshotVariant struct {
	VariantName string `json:"variant_name"`
	IsVerified  bool   `json:"is_verified"`
}

// SnapshotMapping groups the mapped order items of one (menu item, variant)
// pair.
type SnapshotMapping struct {
	MenuItemID   string   `json:"menu_item_id"`
	VariantID    string   `json:"variant_id,omitempty"`
	OrderItemIDs []string `json:"order_item_ids"`
}

// ImportStats reports what a gap-fill import changed.
type ImportStats struct {
	MenuItemsUpserted int
	VariantsUpserted  int
	MappingsAdded     int
	MappingsSkipped   int
}

// Snapshotter exports and imports canonical-state snapshots. Export holds an
// advisory file lock so concurrent processes cannot interleave writes to the
// backup file.
type Snapshotter struct {
	store  *Store
	path   string
	logger *slog.Logger
}

// NewSnapshotter constructs a snapshotter writing to path.
func NewSnapshotter(store *Store, path string, logger *slog.Logger) *Snapshotter {
	return &Snapshotter{
		store:  store,
		path:   path,
		logger: logging.NewComponentLogger(logger, "snapshot"),
	}
}

// Path returns the snapshot file location.
func (s *Snapshotter) Path() string {
	return s.path
}

// Export serializes the full canonical state to the snapshot file. The write
// goes through a temp file and rename so a crashed export never truncates
// the previous backup.
func (s *Snapshotter) Export(ctx context.Context) error {
	snapshot, err := s.Build(ctx)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire snapshot lock: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	s.logger.Info("snapshot exported",
		logging.String("path", s.path),
		logging.Int("menu_items", len(snapshot.MenuItems)),
		logging.Int("variants", len(snapshot.Variants)),
		logging.Int("mapping_groups", len(snapshot.Mappings)))
	return nil
}

// Build assembles the snapshot document from the live catalog.
func (s *Snapshotter) Build(ctx context.Context) (*Snapshot, error) {
	ctx = ensureContext(ctx)
	snapshot := &Snapshot{
		ExportedAt: time.Now().UTC(),
		MenuItems:  map[string]SnapshotMenuItem{},
		Variants:   map[string]SnapshotVariant{},
	}

	items, err := s.store.ListMenuItemsByType(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		snapshot.MenuItems[item.ID] = SnapshotMenuItem{Name: item.Name, Type: item.Type, IsVerified: item.IsVerified}
	}

	rows, err := s.store.db.QueryContext(ctx, "SELECT id, variant_name, is_verified FROM variants ORDER BY variant_name")
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id       string
			name     string
			verified int
		)
		if err := rows.Scan(&id, &name, &verified); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		snapshot.Variants[id] = SnapshotVariant{VariantName: name, IsVerified: verified != 0}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	mappingRows, err := s.store.db.QueryContext(ctx,
		"SELECT menu_item_id, COALESCE(variant_id, ''), order_item_id FROM item_mappings ORDER BY menu_item_id, variant_id, order_item_id")
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	defer mappingRows.Close()

	index := map[[2]string]int{}
	for mappingRows.Next() {
		var menuItemID, variantID, orderItemID string
		if err := mappingRows.Scan(&menuItemID, &variantID, &orderItemID); err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		key := [2]string{menuItemID, variantID}
		pos, ok := index[key]
		if !ok {
			pos = len(snapshot.Mappings)
			index[key] = pos
			snapshot.Mappings = append(snapshot.Mappings, SnapshotMapping{MenuItemID: menuItemID, VariantID: variantID})
		}
		snapshot.Mappings[pos].OrderItemIDs = append(snapshot.Mappings[pos].OrderItemIDs, orderItemID)
	}
	return snapshot, mappingRows.Err()
}

// Import gap-fills the catalog from the snapshot file. Identity rows are
// upserted by ID; mapping rows already present are skipped, so importing
// over live data never clobbers post-snapshot mappings.
func (s *Snapshotter) Import(ctx context.Context) (*ImportStats, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("snapshot file %s does not exist", s.path)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	stats := &ImportStats{}
	ctx = ensureContext(ctx)
	now := timestamp(time.Now())

	for id, item := range snapshot.MenuItems {
		_, err := s.store.execWithRetry(ctx,
			`INSERT INTO menu_items (id, name, type, is_verified, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?)
             ON CONFLICT(id) DO UPDATE SET
                 name = excluded.name,
                 type = excluded.type,
                 is_verified = MAX(menu_items.is_verified, excluded.is_verified)`,
			id, item.Name, item.Type, boolToInt(item.IsVerified), now, now)
		if err != nil {
			return nil, fmt.Errorf("upsert menu item %s: %w", id, err)
		}
		stats.MenuItemsUpserted++
	}

	for id, variant := range snapshot.Variants {
		_, err := s.store.execWithRetry(ctx,
			`INSERT INTO variants (id, variant_name, is_verified, created_at)
             VALUES (?, ?, ?, ?)
             ON CONFLICT(id) DO UPDATE SET
                 variant_name = excluded.variant_name,
                 is_verified = MAX(variants.is_verified, excluded.is_verified)`,
			id, variant.VariantName, boolToInt(variant.IsVerified), now)
		if err != nil {
			return nil, fmt.Errorf("upsert variant %s: %w", id, err)
		}
		stats.VariantsUpserted++
	}

	for _, group := range snapshot.Mappings {
		for _, orderItemID := range group.OrderItemIDs {
			inserted, err := s.store.InsertMapping(ctx, ItemMapping{
				OrderItemID: orderItemID,
				MenuItemID:  group.MenuItemID,
				VariantID:   group.VariantID,
			})
			if err != nil {
				return nil, err
			}
			if inserted {
				stats.MappingsAdded++
			} else {
				stats.MappingsSkipped++
			}
		}
	}

	s.logger.Info("snapshot imported",
		logging.String("path", s.path),
		logging.Int("menu_items", stats.MenuItemsUpserted),
		logging.Int("variants", stats.VariantsUpserted),
		logging.Int("mappings_added", stats.MappingsAdded),
		logging.Int("mappings_skipped", stats.MappingsSkipped))
	return stats, nil
}
