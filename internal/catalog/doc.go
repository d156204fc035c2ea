// Package catalog persists the canonical menu-item catalog in SQLite.
//
// The store owns five tables: menu_items and variants (the canonical
// entities, keyed by content-addressable IDs), item_mappings (one row per
// external order item, repointed but never duplicated), item_parsing_table
// (the raw-name parse cache), and merge_history (the append-only merge audit
// trail). Order item rows ingested for reporting live in order_items and are
// relinked together with mappings during merges.
//
// Every mutating operation runs inside a single transaction; a merge or undo
// is never observable partially applied. The Engine type wraps merge and
// undo with stat accumulation, audit records, and the post-merge snapshot
// export.
package catalog
