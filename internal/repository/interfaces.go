package repository

import (
	"context"

	"invhub-rest-api/internal/domain"
)

// InventoryRepository defines inventory data access methods.
type InventoryRepository interface {
	CreateInventory(ctx context.Context, inv *domain.Inventory) error
	GetInventory(ctx context.Context, id string) (*domain.Inventory, error)
	ListInventories(ctx context.Context, ownerID string) ([]*domain.Inventory, error)
	// UpdateInventory persists title/description/template/schema changes.
	// Returns domain.ErrVersionConflict when expectedVersion no longer
	// matches the stored row.
	UpdateInventory(ctx context.Context, inv *domain.Inventory, expectedVersion int64) error
	DeleteInventory(ctx context.Context, id string) error
}

// ItemRepository defines item data access methods.
type ItemRepository interface {
	CountItems(ctx context.Context, inventoryID string) (int, error)
	CustomIDExists(ctx context.Context, inventoryID, customID string) (bool, error)
	// InsertItem returns domain.ErrDuplicateID when the
	// (inventory_id, custom_id) uniqueness constraint rejects the row.
	InsertItem(ctx context.Context, item *domain.Item) error
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	ListItems(ctx context.Context, inventoryID string) ([]*domain.Item, error)
	UpdateItem(ctx context.Context, item *domain.Item, expectedVersion int64) error
	DeleteItem(ctx context.Context, id string) error
}

// CommentRepository defines comment data access methods. Inserts are batched
// because comments arrive via the Redis write-behind buffer.
type CommentRepository interface {
	BatchInsertComments(ctx context.Context, comments []*domain.Comment) error
	ListComments(ctx context.Context, inventoryID string) ([]*domain.Comment, error)
}

// AccountRepository defines account lookup against the main users database.
type AccountRepository interface {
	GetAccountByAPIKey(ctx context.Context, apiKey string) (*domain.Account, error)
}
