package resolution

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"scoop/internal/catalog"
	"scoop/internal/identity"
	"scoop/internal/logging"
	"scoop/internal/services"
)

// Status classifies the outcome of a resolution action.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Outcome is the uniform result of every resolution action.
type Outcome struct {
	Status  Status
	Message string
}

func success(format string, args ...any) Outcome {
	return Outcome{Status: StatusSuccess, Message: fmt.Sprintf(format, args...)}
}

func failure(err error) Outcome {
	return Outcome{Status: StatusError, Message: err.Error()}
}

// Invalidator clears a matcher's memoized lookups. Registered matchers are
// invalidated after every merge, because a merged identity no longer exists
// and a stale cache entry would reference it.
type Invalidator interface {
	Invalidate()
}

// Service is the human-review workflow over unverified catalog entities.
type Service struct {
	store        *catalog.Store
	engine       *catalog.Engine
	logger       *slog.Logger
	invalidators []Invalidator
}

// Option customises the Service.
type Option func(*Service)

// WithInvalidator registers a matcher cache to clear after merges.
func WithInvalidator(inv Invalidator) Option {
	return func(s *Service) {
		if inv != nil {
			s.invalidators = append(s.invalidators, inv)
		}
	}
}

// New constructs the resolution service.
func New(store *catalog.Store, engine *catalog.Engine, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:  store,
		engine: engine,
		logger: logging.NewComponentLogger(logger, "resolution"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// ListUnverified returns every unverified menu item ordered by name, with
// duplicate suggestions annotated.
func (s *Service) ListUnverified(ctx context.Context) ([]catalog.UnverifiedItem, error) {
	return s.store.ListUnverified(ctx)
}

// Verify marks a menu item as human-confirmed. Verification is terminal; a
// later merge changes the item's identity, not its state.
func (s *Service) Verify(ctx context.Context, id string) Outcome {
	ok, err := s.store.VerifyMenuItem(ctx, id)
	if err != nil {
		return failure(err)
	}
	if !ok {
		return failure(services.Wrap(services.ErrNotFound, "resolution", "verify", id, nil))
	}
	return success("menu item %s verified", id)
}

// VerifyVariant marks a variant as human-confirmed.
func (s *Service) VerifyVariant(ctx context.Context, id string) Outcome {
	ok, err := s.store.VerifyVariant(ctx, id)
	if err != nil {
		return failure(err)
	}
	if !ok {
		return failure(services.Wrap(services.ErrNotFound, "resolution", "verify variant", id, nil))
	}
	return success("variant %s verified", id)
}

// VerifyParse confirms the cached parse for a raw POS name, promoting
// future lookups of that exact name to full confidence.
func (s *Service) VerifyParse(ctx context.Context, rawName string) Outcome {
	ok, err := s.store.VerifyParsingEntry(ctx, rawName)
	if err != nil {
		return failure(err)
	}
	if !ok {
		return failure(services.Wrap(services.ErrNotFound, "resolution", "verify parse", rawName, nil))
	}
	return success("parse for %q verified", rawName)
}

// Rename gives a menu item new canonical attributes. The new attributes
// determine a new content-addressed identity; when that identity already
// exists the rename degenerates into a merge onto it.
func (s *Service) Rename(ctx context.Context, id, newName, newType string) Outcome {
	newName = strings.TrimSpace(newName)
	newType = strings.TrimSpace(newType)
	if newName == "" {
		return failure(services.Wrap(services.ErrValidation, "resolution", "rename", "new name is empty", nil))
	}

	current, err := s.store.GetMenuItem(ctx, id)
	if err != nil {
		return failure(err)
	}
	if current == nil {
		return failure(services.Wrap(services.ErrNotFound, "resolution", "rename", id, nil))
	}

	// An omitted type keeps the item's current one; only the name part of
	// the identity changes.
	if newType == "" {
		newType = current.Type
	}

	targetID := identity.MenuItemKey(newName, newType)
	if targetID == id {
		// Attributes normalize to the same identity; just fix the display
		// form and confirm it.
		if err := s.store.RenameMenuItem(ctx, id, targetID, newName, newType); err != nil {
			return failure(err)
		}
		return success("menu item %s renamed in place", id)
	}

	existing, err := s.store.GetMenuItem(ctx, targetID)
	if err != nil {
		return failure(err)
	}
	if existing != nil {
		outcome := s.Merge(ctx, id, targetID)
		if outcome.Status == StatusSuccess {
			outcome.Message = fmt.Sprintf("%q already exists; merged %s into %s", newName, id, targetID)
		}
		return outcome
	}

	if err := s.store.RenameMenuItem(ctx, id, targetID, newName, newType); err != nil {
		return failure(err)
	}
	s.logger.Info("menu item renamed",
		logging.String("old_id", id),
		logging.String("new_id", targetID),
		logging.String("name", newName),
		logging.String("type", newType))
	return success("menu item renamed to %q (%s)", newName, targetID)
}

// Merge absorbs the source menu item into the target and invalidates every
// registered matcher cache.
func (s *Service) Merge(ctx context.Context, sourceID, targetID string) Outcome {
	result, err := s.engine.Merge(ctx, sourceID, targetID)
	if err != nil {
		return failure(err)
	}
	s.invalidateCaches()
	return success("merged %s into %s (merge %s, %d mappings, %.2f revenue moved)",
		sourceID, targetID, result.MergeID, result.MappingsUpdated, result.RevenueAdded)
}

// Undo reverses a recorded merge and invalidates every registered matcher
// cache.
func (s *Service) Undo(ctx context.Context, mergeID string) Outcome {
	record, err := s.engine.Undo(ctx, mergeID)
	if err != nil {
		return failure(err)
	}
	s.invalidateCaches()
	return success("merge %s undone; %q restored with %d mappings",
		mergeID, record.SourceName, len(record.AffectedOrderItems))
}

// Remap force-repoints one order item's mapping without touching stats.
func (s *Service) Remap(ctx context.Context, orderItemID, menuItemID, variantID string) Outcome {
	item, err := s.store.GetMenuItem(ctx, menuItemID)
	if err != nil {
		return failure(err)
	}
	if item == nil {
		return failure(services.Wrap(services.ErrNotFound, "resolution", "remap", menuItemID, nil))
	}
	moved, err := s.store.Remap(ctx, orderItemID, menuItemID, variantID)
	if err != nil {
		return failure(err)
	}
	if !moved {
		return failure(services.Wrap(services.ErrNotFound, "resolution", "remap", orderItemID, nil))
	}
	return success("order item %s remapped to %s", orderItemID, menuItemID)
}

func (s *Service) invalidateCaches() {
	for _, inv := range s.invalidators {
		inv.Invalidate()
	}
}
