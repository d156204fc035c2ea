package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRawName is the standardized structured logging key for raw POS item names.
	FieldRawName = "raw_name"
	// FieldMenuItemID is the standardized structured logging key for canonical menu item identifiers.
	FieldMenuItemID = "menu_item_id"
	// FieldVariantID is the standardized structured logging key for canonical variant identifiers.
	FieldVariantID = "variant_id"
	// FieldOrderItemID is the standardized structured logging key for external order item identifiers.
	FieldOrderItemID = "order_item_id"
	// FieldMergeID is the standardized structured logging key for merge audit record identifiers.
	FieldMergeID = "merge_id"
	// FieldMethod is the standardized structured logging key for match methods.
	FieldMethod = "method"
	// FieldConfidence is the standardized structured logging key for match confidence scores.
	FieldConfidence = "confidence"
)
