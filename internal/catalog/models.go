package catalog

import "time"

// MenuItem is a canonical, deduplicated menu item. Its ID is a pure function
// of the normalized (name, type) pair.
type MenuItem struct {
	ID           string
	Name         string
	Type         string
	IsVerified   bool
	SuggestionID string // advisory duplicate suggestion, may dangle
	TotalSold    int64
	TotalRevenue float64
	SoldAsItem   int64
	SoldAsAddon  int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UnverifiedItem is a MenuItem annotated with its suggestion's display name
// for the review listing.
type UnverifiedItem struct {
	MenuItem
	SuggestionName string
}

// Variant is a canonical size/packaging modifier, entity-resolved
// independently of the menu item it is sold with.
type Variant struct {
	ID          string
	VariantName string
	IsVerified  bool
	CreatedAt   time.Time
}

// ItemMapping links one external order item occurrence to its resolved
// canonical identities. order_item_id is unique: a mapping is repointed by
// merges and remaps, never duplicated.
type ItemMapping struct {
	OrderItemID string
	MenuItemID  string
	VariantID   string
	IsVerified  bool
	CreatedAt   time.Time
}

// ParsingEntry caches the cleaned triple for one raw POS name. Entries are
// upserted and never deleted.
type ParsingEntry struct {
	RawName     string
	CleanedName string
	Type        string
	Variant     string
	IsVerified  bool
	UpdatedAt   time.Time
}

// OrderItem is the identity-bearing slice of an ingested order item row.
type OrderItem struct {
	ID         string
	RawName    string
	MenuItemID string
	VariantID  string
	Confidence int
	Method     string
	Quantity   int64
	UnitPrice  float64
	IsAddon    bool
	CreatedAt  time.Time
}

// MergeRecord is one append-only merge audit entry. AffectedOrderItems is
// exactly the set of mapping rows that pointed at the source when the merge
// ran; undo restores exactly that set and then consumes the record.
type MergeRecord struct {
	MergeID            string
	SourceID           string
	TargetID           string
	SourceName         string
	SourceType         string
	AffectedOrderItems []string
	MergedAt           time.Time
}

// MergeResult summarizes what a merge changed.
type MergeResult struct {
	MergeID         string
	RelinkedCount   int64
	MappingsUpdated int64
	RevenueAdded    float64
}
