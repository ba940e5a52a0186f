package service

import (
	"context"
	"sync"

	"invhub-rest-api/internal/domain"
)

// memStore is an in-memory stand-in for the SQLite store, enforcing the
// same per-inventory custom-ID uniqueness on insert.
type memStore struct {
	mu          sync.Mutex
	inventories map[string]*domain.Inventory
	items       map[string]*domain.Item
	comments    []*domain.Comment
}

func newMemStore() *memStore {
	return &memStore{
		inventories: make(map[string]*domain.Inventory),
		items:       make(map[string]*domain.Item),
	}
}

func (m *memStore) CreateInventory(_ context.Context, inv *domain.Inventory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *inv
	m.inventories[inv.ID] = &cp
	return nil
}

func (m *memStore) GetInventory(_ context.Context, id string) (*domain.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.inventories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *memStore) ListInventories(_ context.Context, ownerID string) ([]*domain.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Inventory
	for _, inv := range m.inventories {
		if ownerID == "" || inv.OwnerID == ownerID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) UpdateInventory(_ context.Context, inv *domain.Inventory, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.inventories[inv.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	cp := *inv
	cp.Version = expectedVersion + 1
	m.inventories[inv.ID] = &cp
	inv.Version = cp.Version
	return nil
}

func (m *memStore) DeleteInventory(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inventories, id)
	return nil
}

func (m *memStore) CountItems(_ context.Context, inventoryID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, item := range m.items {
		if item.InventoryID == inventoryID {
			count++
		}
	}
	return count, nil
}

func (m *memStore) CustomIDExists(_ context.Context, inventoryID, customID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.customIDExistsLocked(inventoryID, customID), nil
}

func (m *memStore) customIDExistsLocked(inventoryID, customID string) bool {
	for _, item := range m.items {
		if item.InventoryID == inventoryID && item.CustomID == customID {
			return true
		}
	}
	return false
}

func (m *memStore) InsertItem(_ context.Context, item *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.customIDExistsLocked(item.InventoryID, item.CustomID) {
		return domain.ErrDuplicateID
	}
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *memStore) GetItem(_ context.Context, id string) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (m *memStore) ListItems(_ context.Context, inventoryID string) ([]*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Item
	for _, item := range m.items {
		if item.InventoryID == inventoryID {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) UpdateItem(_ context.Context, item *domain.Item, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return domain.ErrVersionConflict
	}
	cp := *item
	cp.Version = expectedVersion + 1
	m.items[item.ID] = &cp
	item.Version = cp.Version
	return nil
}

func (m *memStore) DeleteItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

func (m *memStore) BatchInsertComments(_ context.Context, comments []*domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range comments {
		cp := *c
		m.comments = append(m.comments, &cp)
	}
	return nil
}

func (m *memStore) ListComments(_ context.Context, inventoryID string) ([]*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Comment
	for _, c := range m.comments {
		if c.InventoryID == inventoryID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) PublishEvent(_ context.Context, inventoryID, eventType string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType+":"+inventoryID)
}
