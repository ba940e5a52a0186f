package service

import (
	"context"
	"time"

	"invhub-rest-api/internal/domain"
	"invhub-rest-api/internal/idformat"
	"invhub-rest-api/internal/repository"
	"invhub-rest-api/internal/schema"
	"invhub-rest-api/pkg/uid"
)

// ItemService handles item creation and the unique custom-ID allocation
// that goes with it.
type ItemService struct {
	inventoryRepo repository.InventoryRepository
	itemRepo      repository.ItemRepository
	renderer      *idformat.Renderer
	events        EventPublisher
}

// NewItemService creates a new item service.
// Returns nil if either repository is nil (required dependencies). A nil
// renderer falls back to the default wall-clock renderer.
func NewItemService(inventoryRepo repository.InventoryRepository, itemRepo repository.ItemRepository, renderer *idformat.Renderer, events EventPublisher) *ItemService {
	if inventoryRepo == nil || itemRepo == nil {
		return nil
	}
	if renderer == nil {
		renderer = idformat.NewRenderer()
	}
	return &ItemService{
		inventoryRepo: inventoryRepo,
		itemRepo:      itemRepo,
		renderer:      renderer,
		events:        events, // Optional, can be nil
	}
}

// CreateItem allocates a custom ID from the inventory's template and inserts
// the item with the field values mapped onto its fixed slots.
//
// The collision pre-check here is advisory: concurrent creations can
// interleave between the count and the insert, so the UNIQUE
// (inventory_id, custom_id) constraint is the authoritative guard and a
// constraint rejection surfaces as the same ErrDuplicateID. Callers resubmit
// on duplicate; the failed attempt inserted nothing, so a pure-sequence
// template picks up the advanced count on the retry.
func (s *ItemService) CreateItem(ctx context.Context, inventoryID, createdBy string, values map[string]interface{}) (*domain.Item, error) {
	inv, err := s.inventoryRepo.GetInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	currentCount, err := s.itemRepo.CountItems(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	candidate := s.renderer.Render(inv.IDFormat, currentCount+1)

	exists, err := s.itemRepo.CustomIDExists(ctx, inventoryID, candidate)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateID
	}

	now := time.Now().UTC()
	item := &domain.Item{
		ID:          uid.New(),
		InventoryID: inventoryID,
		CustomID:    candidate,
		CreatedBy:   createdBy,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	item.SetSlots(schema.MapFieldValues(inv.Schema, values))

	if err := s.itemRepo.InsertItem(ctx, item); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.PublishEvent(ctx, inventoryID, "item_created", item)
	}
	return item, nil
}

// PreviewNextID renders the ID the next item would likely get. Display-only:
// the count may be stale by the time an item is actually created, and random
// elements re-roll on the real allocation. Nothing is reserved.
func (s *ItemService) PreviewNextID(ctx context.Context, inventoryID string) (string, int, error) {
	inv, err := s.inventoryRepo.GetInventory(ctx, inventoryID)
	if err != nil {
		return "", 0, err
	}

	currentCount, err := s.itemRepo.CountItems(ctx, inventoryID)
	if err != nil {
		return "", 0, err
	}

	ordinal := currentCount + 1
	return s.renderer.Render(inv.IDFormat, ordinal), ordinal, nil
}

// PreviewTemplate renders an ad-hoc template at a caller-chosen ordinal.
// Backs the template editor's live preview before the template is saved.
func (s *ItemService) PreviewTemplate(elements []idformat.Element, sequenceOrdinal int) string {
	return s.renderer.Render(elements, sequenceOrdinal)
}

// GetItem loads one item by record ID.
func (s *ItemService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	return s.itemRepo.GetItem(ctx, id)
}

// ListItems returns an inventory's items in creation order.
func (s *ItemService) ListItems(ctx context.Context, inventoryID string) ([]*domain.Item, error) {
	return s.itemRepo.ListItems(ctx, inventoryID)
}

// UpdateItem remaps field values onto the item's slots under the optimistic
// version check. The custom ID is immutable: edits never re-derive it, even
// if the template changed since creation.
func (s *ItemService) UpdateItem(ctx context.Context, id string, expectedVersion int64, values map[string]interface{}) (*domain.Item, error) {
	item, err := s.itemRepo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	inv, err := s.inventoryRepo.GetInventory(ctx, item.InventoryID)
	if err != nil {
		return nil, err
	}

	item.SetSlots(schema.MapFieldValues(inv.Schema, values))

	if err := s.itemRepo.UpdateItem(ctx, item, expectedVersion); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.PublishEvent(ctx, item.InventoryID, "item_updated", item)
	}
	return item, nil
}

// DeleteItem removes one item by record ID.
func (s *ItemService) DeleteItem(ctx context.Context, id string) error {
	return s.itemRepo.DeleteItem(ctx, id)
}
