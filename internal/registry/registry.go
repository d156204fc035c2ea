package registry

import (
	"context"
	"log/slog"

	"scoop/internal/catalog"
	"scoop/internal/config"
	"scoop/internal/identity"
	"scoop/internal/logging"
	"scoop/internal/normalize"
	"scoop/internal/textutil"
)

// Record is the resolved identity tuple for one ingested order item.
type Record struct {
	OrderItemID string
	MenuItemID  string
	VariantID   string
	Type        string
}

// Options carries the sale attributes recorded on first sighting of an
// order item.
type Options struct {
	Quantity  int64
	UnitPrice float64
	IsAddon   bool
}

// RecordOption customises one Record call.
type RecordOption func(*Options)

// WithSale attaches quantity and unit price, accumulated onto the menu
// item's counters on first sighting.
func WithSale(quantity int64, unitPrice float64) RecordOption {
	return func(o *Options) {
		o.Quantity = quantity
		o.UnitPrice = unitPrice
	}
}

// WithAddon marks the occurrence as an addon row.
func WithAddon() RecordOption {
	return func(o *Options) {
		o.IsAddon = true
	}
}

// Registry is the live ingestion entry point. Unlike the matcher it mints
// new unverified entities on first sighting instead of only matching
// existing ones.
type Registry struct {
	store  *catalog.Store
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs a registry bound to the supplied catalog store.
func New(store *catalog.Store, cfg *config.Config, logger *slog.Logger) *Registry {
	return &Registry{
		store:  store,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "registry"),
	}
}

// Record resolves one raw occurrence to canonical identities, minting
// unverified entities as needed. Idempotent per order item: a pre-existing
// mapping is returned unchanged with no re-matching or stat mutation.
func (r *Registry) Record(ctx context.Context, raw, orderItemID string, opts ...RecordOption) (*Record, error) {
	options := Options{Quantity: 1}
	for _, opt := range opts {
		opt(&options)
	}

	existing, err := r.store.GetMapping(ctx, orderItemID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return r.recordFromMapping(ctx, existing)
	}

	triple := normalize.Normalize(raw)
	menuItemID := identity.MenuItemKey(triple.Name, triple.Type)

	// The duplicate suggestion is predicted outside the transaction so the
	// write set below stays one atomic unit. It is only applied when this
	// call actually mints the item.
	suggestionID := ""
	current, err := r.store.GetMenuItem(ctx, menuItemID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		suggestionID, err = r.predictDuplicate(ctx, triple.Name, triple.Type, menuItemID)
		if err != nil {
			return nil, err
		}
	}

	occ := catalog.Occurrence{
		MenuItem: catalog.MenuItem{
			ID:   menuItemID,
			Name: triple.Name,
			Type: triple.Type,
		},
		SuggestionID: suggestionID,
		OrderItem: catalog.OrderItem{
			ID:         orderItemID,
			RawName:    raw,
			MenuItemID: menuItemID,
			Confidence: 80,
			Method:     "registry",
			Quantity:   options.Quantity,
			UnitPrice:  options.UnitPrice,
			IsAddon:    options.IsAddon,
		},
	}
	if triple.Variant != "" && triple.Variant != normalize.Unknown {
		occ.Variant = &catalog.Variant{
			ID:          identity.VariantKey(triple.Variant),
			VariantName: triple.Variant,
		}
		occ.OrderItem.VariantID = occ.Variant.ID
	}

	result, err := r.store.IngestOccurrence(ctx, occ)
	if err != nil {
		return nil, err
	}
	if result.Existing != nil {
		// A concurrent writer won the mapping; return what it recorded.
		return r.recordFromMapping(ctx, result.Existing)
	}
	if result.MintedMenuItem {
		r.logger.Info("minted unverified menu item",
			logging.String(logging.FieldMenuItemID, menuItemID),
			logging.String("name", triple.Name),
			logging.String("type", triple.Type),
			logging.String("suggestion_id", suggestionID))
	}
	if result.MintedVariant {
		r.logger.Info("minted unverified variant",
			logging.String(logging.FieldVariantID, occ.Variant.ID),
			logging.String("variant", occ.Variant.VariantName))
	}

	return &Record{OrderItemID: orderItemID, MenuItemID: menuItemID, VariantID: occ.OrderItem.VariantID, Type: triple.Type}, nil
}

func (r *Registry) recordFromMapping(ctx context.Context, mapping *catalog.ItemMapping) (*Record, error) {
	record := &Record{
		OrderItemID: mapping.OrderItemID,
		MenuItemID:  mapping.MenuItemID,
		VariantID:   mapping.VariantID,
	}
	item, err := r.store.GetMenuItem(ctx, mapping.MenuItemID)
	if err != nil {
		return nil, err
	}
	if item != nil {
		record.Type = item.Type
	}
	return record, nil
}

// predictDuplicate returns the closest verified same-type item for a name
// about to be minted, as an advisory suggestion. The relation is non-owning
// and may dangle after its target is merged away.
func (r *Registry) predictDuplicate(ctx context.Context, name, itemType, selfID string) (string, error) {
	verified, err := r.store.ListVerified(ctx, itemType)
	if err != nil {
		return "", err
	}
	if len(verified) == 0 {
		return "", nil
	}

	query := textutil.NewFingerprint(name)
	var (
		best      *catalog.MenuItem
		bestScore float64
	)
	for i := range verified {
		if verified[i].ID == selfID {
			continue
		}
		score := textutil.CosineSimilarity(query, textutil.NewFingerprint(verified[i].Name))
		if score > bestScore {
			best = &verified[i]
			bestScore = score
		}
	}
	if best == nil || bestScore < r.cfg.Matching.SuggestionCutoff {
		return "", nil
	}

	r.logger.Info("suggesting duplicate target",
		logging.String("name", name),
		logging.String("suggestion_id", best.ID),
		logging.String("suggestion_name", best.Name),
		logging.Float64("similarity", bestScore))
	return best.ID, nil
}
