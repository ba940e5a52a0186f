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

// EventPublisher fans live-update events out to interested subscribers.
// Optional everywhere; a nil publisher means no live updates.
type EventPublisher interface {
	PublishEvent(ctx context.Context, inventoryID, eventType string, payload interface{})
}

// InventoryService handles inventory business logic: CRUD, template edits
// and custom-field schema mutation.
type InventoryService struct {
	repo   repository.InventoryRepository
	events EventPublisher
}

// NewInventoryService creates a new inventory service.
// Returns nil if repo is nil (required dependency).
func NewInventoryService(repo repository.InventoryRepository, events EventPublisher) *InventoryService {
	if repo == nil {
		return nil // Cannot function without inventory repository
	}
	return &InventoryService{
		repo:   repo,
		events: events, // Optional, can be nil
	}
}

// CreateInventory creates a new inventory. The schema starts from whatever
// the caller supplies (usually empty) and the template may be empty; both
// are editable later.
func (s *InventoryService) CreateInventory(ctx context.Context, ownerID, title, description string, template []idformat.Element, fieldSchema schema.CustomFieldSchema) (*domain.Inventory, error) {
	now := time.Now().UTC()
	inv := &domain.Inventory{
		ID:          uid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		IDFormat:    template,
		Schema:      fieldSchema,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateInventory(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetInventory loads one inventory.
func (s *InventoryService) GetInventory(ctx context.Context, id string) (*domain.Inventory, error) {
	return s.repo.GetInventory(ctx, id)
}

// ListInventories returns inventories, optionally filtered by owner.
func (s *InventoryService) ListInventories(ctx context.Context, ownerID string) ([]*domain.Inventory, error) {
	return s.repo.ListInventories(ctx, ownerID)
}

// UpdateInventory edits title/description/template under the optimistic
// version check. Existing items keep the IDs they were created with; the new
// template only applies to items created after this call.
func (s *InventoryService) UpdateInventory(ctx context.Context, id string, expectedVersion int64, title, description string, template []idformat.Element) (*domain.Inventory, error) {
	inv, err := s.repo.GetInventory(ctx, id)
	if err != nil {
		return nil, err
	}

	inv.Title = title
	inv.Description = description
	inv.IDFormat = template

	if err := s.repo.UpdateInventory(ctx, inv, expectedVersion); err != nil {
		return nil, err
	}
	return inv, nil
}

// DeleteInventory removes an inventory and everything under it.
func (s *InventoryService) DeleteInventory(ctx context.Context, id string) error {
	return s.repo.DeleteInventory(ctx, id)
}

// AddField appends a named field to the schema bucket for fieldType and
// persists the updated schema. Duplicate names are silent no-ops. The
// re-derived slot layout is returned so callers see where the field landed
// (or that it fell past the 3-per-type capacity).
func (s *InventoryService) AddField(ctx context.Context, id string, expectedVersion int64, fieldType, name string) (*domain.Inventory, schema.FixedSlotSet, error) {
	return s.mutateSchema(ctx, id, expectedVersion, func(sc schema.CustomFieldSchema) schema.CustomFieldSchema {
		return sc.AddField(fieldType, name)
	})
}

// RemoveField removes a named field and persists the updated schema. The
// returned slot layout lets callers detect that later fields of the same
// pool shifted position, which changes what stored slot values mean for
// existing items.
func (s *InventoryService) RemoveField(ctx context.Context, id string, expectedVersion int64, fieldType, name string) (*domain.Inventory, schema.FixedSlotSet, error) {
	return s.mutateSchema(ctx, id, expectedVersion, func(sc schema.CustomFieldSchema) schema.CustomFieldSchema {
		return sc.RemoveField(fieldType, name)
	})
}

func (s *InventoryService) mutateSchema(ctx context.Context, id string, expectedVersion int64, mutate func(schema.CustomFieldSchema) schema.CustomFieldSchema) (*domain.Inventory, schema.FixedSlotSet, error) {
	inv, err := s.repo.GetInventory(ctx, id)
	if err != nil {
		return nil, schema.FixedSlotSet{}, err
	}

	inv.Schema = mutate(inv.Schema)

	if err := s.repo.UpdateInventory(ctx, inv, expectedVersion); err != nil {
		return nil, schema.FixedSlotSet{}, err
	}

	slots := schema.ToFixedSlots(inv.Schema)
	if s.events != nil {
		s.events.PublishEvent(ctx, inv.ID, "schema_changed", slots)
	}
	return inv, slots, nil
}

// SlotLayout derives the current physical slot layout for an inventory.
func (s *InventoryService) SlotLayout(inv *domain.Inventory) schema.FixedSlotSet {
	return schema.ToFixedSlots(inv.Schema)
}
